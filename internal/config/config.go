package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	// HTTP Server
	Port string

	// Backend selection
	DataBackend string

	// GitHub backend
	GitHubOwner  string
	GitHubRepo   string
	GitHubToken  string
	GitHubBranch string
	GitHubFile   string

	// SQLite backend
	SQLiteDBPath string

	// Local fallback copy, always written
	LedgerFilePath string

	// AMQP
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string

	// Reports
	ReportOutputDir string

	// Recovery window after a treasury reset
	BackupTTL time.Duration
}

func Load() *Config {
	cfg := &Config{
		Port: getEnv("PORT", "8081"),

		DataBackend: getEnv("DATA_BACKEND", "file"),

		GitHubOwner:  getEnv("GITHUB_OWNER", ""),
		GitHubRepo:   getEnv("GITHUB_REPO", ""),
		GitHubToken:  getEnv("GITHUB_TOKEN", ""),
		GitHubBranch: getEnv("GITHUB_BRANCH", "main"),
		GitHubFile:   getEnv("GITHUB_FILE", "data.json"),

		SQLiteDBPath:   getEnv("SQLITE_DB_PATH", "./data/cassa.db"),
		LedgerFilePath: getEnv("LEDGER_FILE_PATH", "./data/cassa.json"),

		AMQPURL:      getEnv("AMQP_URL", ""),
		AMQPExchange: getEnv("AMQP_EXCHANGE", "cassa"),
		AMQPQueue:    getEnv("AMQP_QUEUE", "report_requests"),

		ReportOutputDir: getEnv("REPORT_OUTPUT_DIR", "./data/reports"),

		BackupTTL: getEnvDuration("BACKUP_TTL", 30*time.Minute),
	}

	return cfg
}

// Validate validates the configuration and returns an error if invalid
func (c *Config) Validate() error {
	var errors []string

	// Validate port
	if port, err := strconv.Atoi(c.Port); err != nil {
		errors = append(errors, fmt.Sprintf("invalid port '%s': must be a number", c.Port))
	} else if port < 1 || port > 65535 {
		errors = append(errors, fmt.Sprintf("invalid port %d: must be between 1 and 65535", port))
	}

	// Validate data backend
	validBackends := []string{"github", "sqlite", "file"}
	isValidBackend := false
	for _, backend := range validBackends {
		if c.DataBackend == backend {
			isValidBackend = true
			break
		}
	}
	if !isValidBackend {
		errors = append(errors, fmt.Sprintf("invalid data backend '%s': must be one of %v", c.DataBackend, validBackends))
	}

	// Validate GitHub configuration if backend is github
	if c.DataBackend == "github" {
		if c.GitHubOwner == "" {
			errors = append(errors, "GitHub owner is required when using github backend")
		}
		if c.GitHubRepo == "" {
			errors = append(errors, "GitHub repository is required when using github backend")
		}
		if c.GitHubToken == "" {
			errors = append(errors, "GitHub token is required when using github backend")
		}
	}

	// Validate SQLite configuration if backend is sqlite
	if c.DataBackend == "sqlite" {
		if c.SQLiteDBPath == "" {
			errors = append(errors, "SQLite database path cannot be empty when using sqlite backend")
		} else {
			dir := filepath.Dir(c.SQLiteDBPath)
			if dir != "." && dir != "" {
				if _, err := os.Stat(dir); os.IsNotExist(err) {
					if err := os.MkdirAll(dir, 0755); err != nil {
						errors = append(errors, fmt.Sprintf("cannot create SQLite database directory '%s': %v", dir, err))
					}
				}
			}
		}
	}

	if c.LedgerFilePath == "" {
		errors = append(errors, "ledger file path cannot be empty")
	}

	// Validate AMQP URL if provided
	if c.AMQPURL != "" {
		if parsedURL, err := url.Parse(c.AMQPURL); err != nil {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL '%s': %v", c.AMQPURL, err))
		} else if parsedURL.Scheme != "amqp" && parsedURL.Scheme != "amqps" {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL scheme '%s': must be 'amqp' or 'amqps'", parsedURL.Scheme))
		}
	}

	// Validate AMQP exchange and queue names if AMQP is configured
	if c.AMQPURL != "" {
		if c.AMQPExchange == "" {
			errors = append(errors, "AMQP exchange name cannot be empty when AMQP URL is provided")
		}
		if c.AMQPQueue == "" {
			errors = append(errors, "AMQP queue name cannot be empty when AMQP URL is provided")
		}
	}

	// Validate recovery window
	if c.BackupTTL < time.Minute {
		errors = append(errors, fmt.Sprintf("invalid backup TTL %v: must be at least 1 minute", c.BackupTTL))
	} else if c.BackupTTL > 24*time.Hour {
		errors = append(errors, fmt.Sprintf("invalid backup TTL %v: must be at most 24 hours", c.BackupTTL))
	}

	// Return combined errors
	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errors, "\n- "))
	}

	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
