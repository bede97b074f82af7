package backend

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/RiccardoZanardi/Calvenzano/internal/core"
	applog "github.com/RiccardoZanardi/Calvenzano/internal/log"
)

const githubAPIBase = "https://api.github.com"

// GitHubBackend persists the ledger as a JSON file inside a GitHub
// repository via the contents API. The file SHA returned by each read
// and write is tracked so updates target the expected revision; a 409
// means somebody else moved the file and triggers one refetch-retry.
type GitHubBackend struct {
	owner    string
	repo     string
	token    string
	branch   string
	filePath string

	client *http.Client
	logger *applog.Logger
	sha    string
}

// NewGitHubBackend validates the repository coordinates.
func NewGitHubBackend(owner, repo, token, branch, filePath string, logger *applog.Logger) (*GitHubBackend, error) {
	if owner == "" || repo == "" || token == "" {
		return nil, fmt.Errorf("github backend requires owner, repo and token")
	}
	if branch == "" {
		branch = "main"
	}
	if filePath == "" {
		filePath = "data.json"
	}
	return &GitHubBackend{
		owner:    owner,
		repo:     repo,
		token:    token,
		branch:   branch,
		filePath: filePath,
		client:   &http.Client{Timeout: 15 * time.Second},
		logger:   logger.WithComponent(applog.ComponentBackend),
	}, nil
}

type githubFile struct {
	Content string `json:"content"`
	SHA     string `json:"sha"`
}

type githubPutRequest struct {
	Message string `json:"message"`
	Content string `json:"content"`
	Branch  string `json:"branch"`
	SHA     string `json:"sha,omitempty"`
}

type githubPutResponse struct {
	Content struct {
		SHA string `json:"sha"`
	} `json:"content"`
}

func (b *GitHubBackend) contentsURL() string {
	return fmt.Sprintf("%s/repos/%s/%s/contents/%s", githubAPIBase, b.owner, b.repo, b.filePath)
}

func (b *GitHubBackend) authorize(req *http.Request) {
	req.Header.Set("Authorization", "token "+b.token)
	req.Header.Set("Accept", "application/vnd.github.v3+json")
	req.Header.Set("User-Agent", "calvenzano-cassa")
}

// ReadLedger implements Backend. A missing file yields the default
// ledger; it will materialize on the next write-through save.
func (b *GitHubBackend) ReadLedger(ctx context.Context) (*core.Ledger, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, b.contentsURL()+"?ref="+b.branch, nil)
	if err != nil {
		return nil, fmt.Errorf("build contents request: %w", err)
	}
	b.authorize(req)

	resp, err := b.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch ledger from github: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		b.logger.InfoContext(ctx, "Ledger file not found in repository, starting from default",
			applog.FieldOperation, applog.OpLoad)
		b.sha = ""
		return core.NewLedger(), nil
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("github contents API: unexpected status %s", resp.Status)
	}

	var file githubFile
	if err := json.NewDecoder(resp.Body).Decode(&file); err != nil {
		return nil, fmt.Errorf("decode contents response: %w", err)
	}
	raw, err := base64.StdEncoding.DecodeString(normalizeBase64(file.Content))
	if err != nil {
		return nil, fmt.Errorf("decode ledger content: %w", err)
	}

	var l core.Ledger
	if err := json.Unmarshal(raw, &l); err != nil {
		return nil, fmt.Errorf("decode ledger document: %w", err)
	}
	l.Normalize()
	b.sha = file.SHA
	return &l, nil
}

// WriteLedger implements Backend.
func (b *GitHubBackend) WriteLedger(ctx context.Context, l *core.Ledger) error {
	payload, err := json.MarshalIndent(l, "", "  ")
	if err != nil {
		return fmt.Errorf("encode ledger: %w", err)
	}

	err = b.put(ctx, payload, b.sha)
	if err == errSHAConflict {
		// Another writer updated the file; refresh the SHA and retry once.
		if _, rerr := b.ReadLedger(ctx); rerr != nil {
			return fmt.Errorf("refresh ledger sha after conflict: %w", rerr)
		}
		err = b.put(ctx, payload, b.sha)
	}
	return err
}

var errSHAConflict = fmt.Errorf("github contents API: sha conflict")

func (b *GitHubBackend) put(ctx context.Context, payload []byte, sha string) error {
	body, err := json.Marshal(githubPutRequest{
		Message: "Update ledger data - " + time.Now().UTC().Format(time.RFC3339),
		Content: base64.StdEncoding.EncodeToString(payload),
		Branch:  b.branch,
		SHA:     sha,
	})
	if err != nil {
		return fmt.Errorf("encode put request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, b.contentsURL(), bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build put request: %w", err)
	}
	b.authorize(req)
	req.Header.Set("Content-Type", "application/json")

	resp, err := b.client.Do(req)
	if err != nil {
		return fmt.Errorf("write ledger to github: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusConflict {
		return errSHAConflict
	}
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return fmt.Errorf("github contents API: unexpected status %s", resp.Status)
	}

	var put githubPutResponse
	if err := json.NewDecoder(resp.Body).Decode(&put); err != nil {
		return fmt.Errorf("decode put response: %w", err)
	}
	b.sha = put.Content.SHA
	return nil
}

// The contents API wraps base64 payloads with newlines.
func normalizeBase64(s string) string {
	out := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		if s[i] != '\n' && s[i] != '\r' {
			out = append(out, s[i])
		}
	}
	return string(out)
}
