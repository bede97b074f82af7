// Package worker consumes queued report requests and renders them from
// the persisted ledger. The worker reads the document fresh for every
// request so it never needs the API process to be alive.
package worker

import (
	"context"
	"fmt"
	"time"

	"github.com/RiccardoZanardi/Calvenzano/internal/amqp"
	"github.com/RiccardoZanardi/Calvenzano/internal/backend"
	"github.com/RiccardoZanardi/Calvenzano/internal/core"
	applog "github.com/RiccardoZanardi/Calvenzano/internal/log"
	"github.com/RiccardoZanardi/Calvenzano/internal/report"
)

// ReportWorker renders reports from a persistence backend into a sink.
type ReportWorker struct {
	source backend.Backend
	sink   report.Sink
	logger *applog.Logger
	now    func() time.Time
}

// NewReportWorker creates a worker reading ledgers from source and
// writing rendered reports into sink.
func NewReportWorker(source backend.Backend, sink report.Sink, logger *applog.Logger) *ReportWorker {
	if logger == nil {
		logger = applog.New(applog.DefaultConfig())
	}
	return &ReportWorker{
		source: source,
		sink:   sink,
		logger: logger.WithComponent(applog.ComponentWorker),
		now:    time.Now,
	}
}

// HandleReportRequest renders one queued report. Unknown kinds fail so
// the message is not silently dropped into the sink.
func (w *ReportWorker) HandleReportRequest(msg *amqp.ReportRequestMessage) error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	l, err := w.source.ReadLedger(ctx)
	if err != nil {
		return fmt.Errorf("read ledger: %w", err)
	}

	now := w.now()
	var r *report.Report
	switch msg.Kind {
	case amqp.ReportKindMonthly:
		if msg.AsOf != "" {
			cutoff, err := time.Parse(core.DateLayout, msg.AsOf)
			if err != nil {
				return fmt.Errorf("parse cutoff %q: %w", msg.AsOf, err)
			}
			r = report.AsOf(l, report.KindMonthly, cutoff, now)
		} else {
			r = report.Monthly(l, now)
		}
	case amqp.ReportKindProvisional:
		r = report.Provisional(l, now)
	default:
		return fmt.Errorf("unknown report kind: %s", msg.Kind)
	}

	if err := w.sink.Write(r); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	w.logger.Info("Report rendered",
		applog.FieldOperation, applog.OpRender,
		applog.FieldReportKind, r.Kind,
		applog.FieldAsOf, r.AsOf)
	return nil
}
