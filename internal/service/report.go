package service

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/google/uuid"

	"medstock/internal/metrics"
	"medstock/internal/model"
	"medstock/internal/repository"
	"medstock/internal/stock"
	"medstock/internal/storage"
)

const archiveURLExpiry = 15 * time.Minute

// ReportService produces monthly reconciliations and performs month close.
type ReportService interface {
	// Monthly reconciles every medicine's opening, flows and closing for p.
	Monthly(ctx context.Context, p stock.Period) ([]model.MonthlyReport, error)
	// CloseMonth finalizes p: positive closing balances are carried into the
	// next month as forward entries. A month can be closed only once.
	CloseMonth(ctx context.Context, p stock.Period, closedBy string) (*model.MonthCloseResult, error)
	Closes(ctx context.Context) ([]model.MonthClose, error)
	// OpenPeriod is the month the next close must target. ok is false while
	// nothing is closed and the ledger is empty, when any month may be closed.
	OpenPeriod(ctx context.Context) (p stock.Period, ok bool, err error)
	// ArchiveURL returns a time-limited download link for a closed month's CSV.
	ArchiveURL(ctx context.Context, p stock.Period) (string, error)
}

type reportService struct {
	repo    repository.ReportRepository
	store   storage.Storage
	metrics *metrics.Metrics
	logger  *slog.Logger
	loc     *time.Location
	now     func() time.Time
}

// NewReportService constructs a ReportService. store may be nil, in which
// case closed months are not archived.
func NewReportService(repo repository.ReportRepository, store storage.Storage, m *metrics.Metrics, logger *slog.Logger, loc *time.Location) ReportService {
	if logger == nil {
		logger = slog.Default()
	}
	if loc == nil {
		loc = time.UTC
	}
	return &reportService{repo: repo, store: store, metrics: m, logger: logger, loc: loc, now: time.Now}
}

func (s *reportService) Monthly(ctx context.Context, p stock.Period) ([]model.MonthlyReport, error) {
	if err := p.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPeriod, err)
	}
	act, err := s.repo.Activity(ctx, p.Start(), p.End())
	if err != nil {
		return nil, fmt.Errorf("month activity: %w", err)
	}
	return stock.Reconcile(p, act), nil
}

func (s *reportService) CloseMonth(ctx context.Context, p stock.Period, closedBy string) (*model.MonthCloseResult, error) {
	now := s.now()
	if err := p.ValidateClosable(now.In(s.loc)); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPeriod, err)
	}
	open, ok, err := s.OpenPeriod(ctx)
	if err != nil {
		return nil, err
	}
	if ok && open.Before(p) {
		s.metrics.MonthClosed("not_open", 0)
		return nil, fmt.Errorf("%w: close %s before %s", ErrPeriodNotOpen, open, p)
	}

	mc := &model.MonthClose{
		ID:       uuid.NewString(),
		Year:     p.Year,
		Month:    p.Month,
		ClosedBy: closedBy,
		ClosedAt: now.UTC(),
	}

	var (
		rows     []model.MonthlyReport
		forwards []model.StockTransaction
	)
	plan := func(act []model.MedicineActivity) ([]model.StockTransaction, error) {
		rows = stock.Reconcile(p, act)
		forwards = stock.PlanForwards(p, rows, closedBy, uuid.NewString, now.UTC())
		return forwards, nil
	}

	closed, _, err := s.repo.Close(ctx, mc, p.Start(), p.End(), plan)
	if err != nil {
		if errors.Is(err, repository.ErrConflict) {
			s.metrics.MonthClosed("already_closed", 0)
			return nil, fmt.Errorf("%w: %s", ErrMonthAlreadyClosed, p)
		}
		if errors.Is(err, repository.ErrPeriodNotOpen) {
			s.metrics.MonthClosed("not_open", 0)
			return nil, fmt.Errorf("%w: %s precedes the open month", ErrPeriodNotOpen, p)
		}
		s.metrics.MonthClosed("error", 0)
		return nil, fmt.Errorf("close month: %w", err)
	}
	s.metrics.MonthClosed("success", closed.ForwardedCount)
	s.logger.Info("month closed",
		"period", p.String(),
		"closed_by", closedBy,
		"medicines", len(rows),
		"forwarded", closed.ForwardedCount,
	)

	if key, err := s.archive(ctx, p, closed.ID, rows); err != nil {
		s.logger.Error("archive month report", "period", p.String(), "error", err)
	} else if key != "" {
		closed.ArchiveKey = key
	}

	return &model.MonthCloseResult{Close: *closed, Rows: rows, Forwards: forwards}, nil
}

// archive uploads the reconciliation as CSV and records its key on the close.
// The object is removed again if the key cannot be recorded.
func (s *reportService) archive(ctx context.Context, p stock.Period, closeID string, rows []model.MonthlyReport) (string, error) {
	if s.store == nil {
		return "", nil
	}
	body, err := reportCSV(rows)
	if err != nil {
		return "", err
	}
	key := ArchiveKey(p)
	_, err = s.store.Put(ctx, key, bytes.NewReader(body), storage.PutObjectOptions{
		Size:        int64(len(body)),
		ContentType: "text/csv",
		Metadata:    map[string]string{"period": p.String()},
	})
	if err != nil {
		return "", fmt.Errorf("upload to storage: %w", err)
	}
	if err := s.repo.SetArchiveKey(ctx, closeID, key); err != nil {
		if delErr := s.store.Delete(ctx, key); delErr != nil {
			return "", fmt.Errorf("record archive key: %v; rollback delete failed: %v", err, delErr)
		}
		return "", fmt.Errorf("record archive key: %w", err)
	}
	return key, nil
}

// ArchiveKey is the object key of the archived report for p.
func ArchiveKey(p stock.Period) string {
	return "month-close/" + p.String() + ".csv"
}

var csvHeader = []string{
	"medicine_id", "medicine", "unit", "dosage_form",
	"opening_stock", "total_return", "total_donation", "total_new_added",
	"total_dispensed", "closing_stock", "forwarded",
}

func reportCSV(rows []model.MonthlyReport) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(csvHeader); err != nil {
		return nil, err
	}
	for _, r := range rows {
		rec := []string{
			r.MedicineID,
			r.Medicine.Name,
			r.Medicine.Unit,
			r.Medicine.DosageForm,
			strconv.FormatInt(r.OpeningStock, 10),
			strconv.FormatInt(r.TotalReturn, 10),
			strconv.FormatInt(r.TotalDonation, 10),
			strconv.FormatInt(r.TotalNewAdded, 10),
			strconv.FormatInt(r.TotalDispensed, 10),
			strconv.FormatInt(r.ClosingStock, 10),
			strconv.FormatBool(r.Forward),
		}
		if err := w.Write(rec); err != nil {
			return nil, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (s *reportService) Closes(ctx context.Context) ([]model.MonthClose, error) {
	return s.repo.ListCloses(ctx)
}

func (s *reportService) OpenPeriod(ctx context.Context) (stock.Period, bool, error) {
	start, err := s.repo.OpenMonth(ctx)
	if err != nil {
		return stock.Period{}, false, fmt.Errorf("open month: %w", err)
	}
	if start.IsZero() {
		return stock.Period{}, false, nil
	}
	return stock.PeriodOf(start.Time), true, nil
}

func (s *reportService) ArchiveURL(ctx context.Context, p stock.Period) (string, error) {
	if err := p.Validate(); err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidPeriod, err)
	}
	if s.store == nil {
		return "", ErrArchiveUnavailable
	}
	closes, err := s.repo.ListCloses(ctx)
	if err != nil {
		return "", err
	}
	for _, c := range closes {
		if c.Year != p.Year || c.Month != p.Month {
			continue
		}
		if c.ArchiveKey == "" {
			return "", ErrArchiveUnavailable
		}
		if _, err := s.store.Stat(ctx, c.ArchiveKey); err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				return "", ErrArchiveUnavailable
			}
			return "", err
		}
		return s.store.PresignGet(ctx, c.ArchiveKey, archiveURLExpiry)
	}
	return "", ErrArchiveUnavailable
}
