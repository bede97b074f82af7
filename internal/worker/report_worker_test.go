package worker

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RiccardoZanardi/Calvenzano/internal/amqp"
	"github.com/RiccardoZanardi/Calvenzano/internal/core"
	"github.com/RiccardoZanardi/Calvenzano/internal/report"
)

type stubBackend struct {
	ledger  *core.Ledger
	readErr error
}

func (b *stubBackend) ReadLedger(ctx context.Context) (*core.Ledger, error) {
	if b.readErr != nil {
		return nil, b.readErr
	}
	return b.ledger, nil
}

func (b *stubBackend) WriteLedger(ctx context.Context, l *core.Ledger) error { return nil }

type captureSink struct {
	reports []*report.Report
	err     error
}

func (s *captureSink) Write(r *report.Report) error {
	if s.err != nil {
		return s.err
	}
	s.reports = append(s.reports, r)
	return nil
}

func workerLedger() *core.Ledger {
	l := core.NewLedger()
	l.Members = []core.Member{{
		ID: "m1", Name: "Mario", Surname: "Rossi", Active: true,
		Fines: []core.Fine{
			{Category: "ics", Amount: 1, Date: "2026-02-10", Paid: true, PaymentDate: "2026-02-12"},
		},
		Donations: []core.Donation{},
	}}
	return l
}

func TestHandleReportRequest(t *testing.T) {
	sink := &captureSink{}
	w := NewReportWorker(&stubBackend{ledger: workerLedger()}, sink, nil)
	w.now = func() time.Time { return time.Date(2026, 3, 15, 10, 0, 0, 0, time.UTC) }

	require.NoError(t, w.HandleReportRequest(&amqp.ReportRequestMessage{Kind: amqp.ReportKindMonthly}))
	require.Len(t, sink.reports, 1)
	assert.Equal(t, report.KindMonthly, sink.reports[0].Kind)
	assert.Equal(t, "2026-02-28", sink.reports[0].AsOf)
	assert.Equal(t, 1.0, sink.reports[0].Totals.PaidICS)

	require.NoError(t, w.HandleReportRequest(&amqp.ReportRequestMessage{Kind: amqp.ReportKindProvisional}))
	require.Len(t, sink.reports, 2)
	assert.Equal(t, "2026-03-15", sink.reports[1].AsOf)
}

func TestHandleReportRequestExplicitCutoff(t *testing.T) {
	sink := &captureSink{}
	w := NewReportWorker(&stubBackend{ledger: workerLedger()}, sink, nil)
	w.now = func() time.Time { return time.Date(2026, 3, 15, 10, 0, 0, 0, time.UTC) }

	require.NoError(t, w.HandleReportRequest(&amqp.ReportRequestMessage{
		Kind: amqp.ReportKindMonthly,
		AsOf: "2026-02-01",
	}))
	require.Len(t, sink.reports, 1)
	assert.Equal(t, "2026-02-01", sink.reports[0].AsOf)

	err := w.HandleReportRequest(&amqp.ReportRequestMessage{Kind: amqp.ReportKindMonthly, AsOf: "bad"})
	assert.Error(t, err)
}

func TestHandleReportRequestErrors(t *testing.T) {
	sink := &captureSink{}
	w := NewReportWorker(&stubBackend{readErr: errors.New("db down")}, sink, nil)
	assert.Error(t, w.HandleReportRequest(&amqp.ReportRequestMessage{Kind: amqp.ReportKindMonthly}))

	w = NewReportWorker(&stubBackend{ledger: workerLedger()}, sink, nil)
	assert.Error(t, w.HandleReportRequest(&amqp.ReportRequestMessage{Kind: "yearly"}))

	w = NewReportWorker(&stubBackend{ledger: workerLedger()}, &captureSink{err: errors.New("disk full")}, nil)
	assert.Error(t, w.HandleReportRequest(&amqp.ReportRequestMessage{Kind: amqp.ReportKindProvisional}))
}
