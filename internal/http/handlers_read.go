package http

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/RiccardoZanardi/Calvenzano/internal/amqp"
	"github.com/RiccardoZanardi/Calvenzano/internal/core"
	applog "github.com/RiccardoZanardi/Calvenzano/internal/log"
	"github.com/RiccardoZanardi/Calvenzano/internal/period"
	"github.com/RiccardoZanardi/Calvenzano/internal/ranking"
	"github.com/RiccardoZanardi/Calvenzano/internal/report"
	"github.com/RiccardoZanardi/Calvenzano/internal/stats"
)

func (s *Server) handleGetData(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.respondJSON(w, http.StatusOK, s.store.Ledger())
}

func (s *Server) handleActivities(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.respondJSON(w, http.StatusOK, s.store.Ledger().Activities)
}

func periodFrom(r *http.Request) period.Period {
	switch r.URL.Query().Get("period") {
	case "monthly":
		return period.Monthly
	case "seasonal":
		return period.Seasonal
	default:
		return period.All
	}
}

func statusFrom(r *http.Request) stats.Status {
	if r.URL.Query().Get("status") == "assigned" {
		return stats.StatusAssigned
	}
	return stats.StatusPaid
}

// cached runs compute under the store lock unless the response for this
// URL is already cached, and writes the JSON either way.
func (s *Server) cached(w http.ResponseWriter, r *http.Request, compute func() any) {
	key := r.URL.RequestURI()
	if raw, ok := s.statsCache.Get(key); ok {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(raw)
		return
	}

	s.mu.Lock()
	payload := compute()
	s.mu.Unlock()

	raw, err := json.Marshal(payload)
	if err != nil {
		s.respondError(w, err)
		return
	}
	s.statsCache.Set(key, raw)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(raw)
}

func (s *Server) handleMemberStats(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if asOf := r.URL.Query().Get("asOf"); asOf != "" {
		cutoff, err := time.Parse(core.DateLayout, asOf)
		if err != nil {
			s.badRequest(w, err)
			return
		}
		s.cached(w, r, func() any {
			return stats.MemberAsOf(s.store.Ledger(), id, cutoff)
		})
		return
	}

	p, status := periodFrom(r), statusFrom(r)
	s.cached(w, r, func() any {
		return stats.Member(s.store.Ledger(), id, p, status, time.Now())
	})
}

func (s *Server) handleCategoryStats(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")
	p := periodFrom(r)
	s.cached(w, r, func() any {
		return stats.Category(s.store.Ledger(), key, p, time.Now())
	})
}

func (s *Server) handleTotals(w http.ResponseWriter, r *http.Request) {
	if asOf := r.URL.Query().Get("asOf"); asOf != "" {
		cutoff, err := time.Parse(core.DateLayout, asOf)
		if err != nil {
			s.badRequest(w, err)
			return
		}
		s.cached(w, r, func() any {
			return stats.GlobalAsOf(s.store.Ledger(), cutoff)
		})
		return
	}
	s.cached(w, r, func() any {
		return stats.Global(s.store.Ledger())
	})
}

func (s *Server) handleRanking(w http.ResponseWriter, r *http.Request) {
	kind := chi.URLParam(r, "kind")
	p := periodFrom(r)
	status := statusFrom(r)
	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			limit = n
		}
	}

	var compute func() any
	switch kind {
	case "contributors":
		compute = func() any {
			return ranking.TopContributors(s.store.Ledger(), p, status, time.Now(), limit)
		}
	case "assigned":
		compute = func() any { return ranking.Assigned(s.store.Ledger(), p, time.Now(), limit) }
	case "paid":
		compute = func() any { return ranking.Paid(s.store.Ledger(), p, time.Now(), limit) }
	case "ics":
		compute = func() any { return ranking.ICS(s.store.Ledger(), p, time.Now(), limit) }
	case "donations":
		compute = func() any { return ranking.Donations(s.store.Ledger(), p, time.Now(), limit) }
	case "categories":
		compute = func() any { return ranking.Categories(s.store.Ledger(), p, time.Now()) }
	case "donors":
		compute = func() any {
			entries, total, count := ranking.DonationsBreakdown(s.store.Ledger(), p, time.Now())
			return map[string]any{"entries": entries, "total": total, "count": count}
		}
	default:
		s.respondJSON(w, http.StatusNotFound, errorResponse{Error: "unknown ranking: " + kind})
		return
	}
	s.cached(w, r, compute)
}

func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	kind := chi.URLParam(r, "kind")
	if kind != report.KindMonthly && kind != report.KindProvisional {
		s.respondJSON(w, http.StatusNotFound, errorResponse{Error: "unknown report kind: " + kind})
		return
	}
	s.cached(w, r, func() any {
		l := s.store.Ledger()
		if kind == report.KindMonthly {
			return report.Monthly(l, time.Now())
		}
		return report.Provisional(l, time.Now())
	})
}

type requestReportRequest struct {
	Kind string `json:"kind" validate:"required,oneof=monthly provisional"`
	AsOf string `json:"asOf"`
}

// handleRequestReport queues asynchronous report generation. Rendering
// happens in the worker process consuming the queue.
func (s *Server) handleRequestReport(w http.ResponseWriter, r *http.Request) {
	if s.publisher == nil {
		s.respondJSON(w, http.StatusServiceUnavailable, errorResponse{Error: "report queue not configured"})
		return
	}
	var req requestReportRequest
	if err := s.decode(r, &req); err != nil {
		s.badRequest(w, err)
		return
	}
	if req.AsOf != "" {
		if _, err := time.Parse(core.DateLayout, req.AsOf); err != nil {
			s.badRequest(w, err)
			return
		}
	}
	if err := s.publisher.PublishReportRequest(r.Context(), req.Kind, req.AsOf); err != nil {
		s.logger.ErrorContext(r.Context(), "Failed to publish report request",
			applog.FieldOperation, applog.OpPublish,
			applog.FieldReportKind, req.Kind,
			applog.FieldError, err)
		s.respondJSON(w, http.StatusBadGateway, errorResponse{Error: "failed to queue report"})
		return
	}
	s.respondJSON(w, http.StatusAccepted, map[string]string{
		"status": "queued",
		"kind":   req.Kind,
	})
}

var _ ReportPublisher = (*amqp.Client)(nil)
