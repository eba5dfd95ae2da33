package service

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"medstock/internal/model"
	"medstock/internal/repository"
	repoMocks "medstock/internal/repository/mocks"
	"medstock/internal/stock"
	"medstock/internal/storage"
	storeMocks "medstock/internal/storage/mocks"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func mayActivity() []model.MedicineActivity {
	return []model.MedicineActivity{
		{Medicine: model.Medicine{ID: "m1", Name: "Amoxicillin"}, Opening: 10, Return: 1, Donation: 2, NewAdded: 3, Dispensed: 6},
		{Medicine: model.Medicine{ID: "m2", Name: "Insulin"}, Opening: 4, Dispensed: 4},
		{Medicine: model.Medicine{ID: "m3", Name: "Paracetamol"}, NewAdded: 5, Dispensed: 7},
	}
}

func openMonth(s string) model.Date {
	d, _ := model.ParseDate(s)
	return d
}

func newTestReportService(repo *repoMocks.MockReportRepository, store storage.Storage, now time.Time) *reportService {
	svc := NewReportService(repo, store, nil, slog.New(slog.NewTextHandler(io.Discard, nil)), time.UTC).(*reportService)
	svc.now = func() time.Time { return now }
	return svc
}

func TestReportService_Monthly(t *testing.T) {
	ctx := context.Background()
	p := stock.Period{Year: 2024, Month: 5}

	mRepo := new(repoMocks.MockReportRepository)
	mRepo.On("Activity", ctx, p.Start(), p.End()).Return(mayActivity(), nil)
	svc := NewReportService(mRepo, nil, nil, nil, nil)

	rows, err := svc.Monthly(ctx, p)

	require.NoError(t, err)
	require.Len(t, rows, 3)
	for _, r := range rows {
		assert.Equal(t, r.OpeningStock+r.TotalIn()-r.TotalDispensed, r.ClosingStock)
		assert.Equal(t, 2024, r.Year)
		assert.Equal(t, 5, r.Month)
	}
	assert.Equal(t, int64(10), rows[0].ClosingStock)
	assert.Equal(t, int64(0), rows[1].ClosingStock)
	assert.Equal(t, int64(-2), rows[2].ClosingStock)
	mRepo.AssertExpectations(t)
}

func TestReportService_Monthly_InvalidPeriod(t *testing.T) {
	mRepo := new(repoMocks.MockReportRepository)
	svc := NewReportService(mRepo, nil, nil, nil, nil)

	_, err := svc.Monthly(context.Background(), stock.Period{Year: 2024, Month: 13})

	assert.ErrorIs(t, err, ErrInvalidPeriod)
	mRepo.AssertNotCalled(t, "Activity", mock.Anything, mock.Anything, mock.Anything)
}

func TestReportService_CloseMonth(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 6, 1, 0, 30, 0, 0, time.UTC)
	p := stock.Period{Year: 2024, Month: 5}

	mRepo := new(repoMocks.MockReportRepository)
	mRepo.On("OpenMonth", ctx).Return(p.Start(), nil)
	mRepo.On("Close", ctx, mock.MatchedBy(func(mc *model.MonthClose) bool {
		return mc.Year == 2024 && mc.Month == 5 && mc.ClosedBy == "admin" && mc.ID != ""
	}), p.Start(), p.End()).Return(nil, mayActivity(), nil)
	svc := newTestReportService(mRepo, nil, now)

	res, err := svc.CloseMonth(ctx, p, "admin")

	require.NoError(t, err)
	assert.Len(t, res.Rows, 3)
	require.Len(t, res.Forwards, 1, "only positive closing balances are carried")
	fwd := res.Forwards[0]
	assert.Equal(t, "m1", fwd.MedicineID)
	assert.Equal(t, int64(10), fwd.Quantity)
	assert.Equal(t, model.TxnForward, fwd.TxnTypeID)
	assert.Equal(t, "2024-06-01", fwd.TxnDate.String())
	assert.Equal(t, "Forwarded from 2024-05", fwd.Remarks)
	assert.Equal(t, 1, res.Close.ForwardedCount)
	assert.Empty(t, res.Close.ArchiveKey)
	assert.Equal(t, res.Forwards, mRepo.Planned)
	mRepo.AssertExpectations(t)
}

func TestReportService_CloseMonth_Errors(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 5, 20, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name       string
		period     stock.Period
		setupMocks func(mRepo *repoMocks.MockReportRepository)
		wantErr    error
		wantMsg    string
	}{
		{
			name:       "invalid month",
			period:     stock.Period{Year: 2024, Month: 0},
			setupMocks: func(mRepo *repoMocks.MockReportRepository) {},
			wantErr:    ErrInvalidPeriod,
		},
		{
			name:       "future month",
			period:     stock.Period{Year: 2024, Month: 6},
			setupMocks: func(mRepo *repoMocks.MockReportRepository) {},
			wantErr:    ErrInvalidPeriod,
		},
		{
			name:   "already closed",
			period: stock.Period{Year: 2024, Month: 4},
			setupMocks: func(mRepo *repoMocks.MockReportRepository) {
				mRepo.On("OpenMonth", ctx).Return(openMonth("2024-05-01"), nil)
				mRepo.On("Close", ctx, mock.Anything, mock.Anything, mock.Anything).
					Return(nil, nil, repository.ErrConflict)
			},
			wantErr: ErrMonthAlreadyClosed,
			wantMsg: "2024-04",
		},
		{
			name:   "earlier month still open",
			period: stock.Period{Year: 2024, Month: 5},
			setupMocks: func(mRepo *repoMocks.MockReportRepository) {
				mRepo.On("OpenMonth", ctx).Return(openMonth("2024-03-01"), nil)
			},
			wantErr: ErrPeriodNotOpen,
			wantMsg: "close 2024-03 before 2024-05",
		},
		{
			name:   "month before the open month",
			period: stock.Period{Year: 2024, Month: 2},
			setupMocks: func(mRepo *repoMocks.MockReportRepository) {
				mRepo.On("OpenMonth", ctx).Return(openMonth("2024-04-01"), nil)
				mRepo.On("Close", ctx, mock.Anything, mock.Anything, mock.Anything).
					Return(nil, nil, repository.ErrPeriodNotOpen)
			},
			wantErr: ErrPeriodNotOpen,
			wantMsg: "2024-02 precedes the open month",
		},
		{
			name:   "open month lookup fails",
			period: stock.Period{Year: 2024, Month: 5},
			setupMocks: func(mRepo *repoMocks.MockReportRepository) {
				mRepo.On("OpenMonth", ctx).Return(nil, errors.New("db fail"))
			},
			wantMsg: "open month: db fail",
		},
		{
			name:   "repository error",
			period: stock.Period{Year: 2024, Month: 5},
			setupMocks: func(mRepo *repoMocks.MockReportRepository) {
				mRepo.On("OpenMonth", ctx).Return(openMonth("2024-05-01"), nil)
				mRepo.On("Close", ctx, mock.Anything, mock.Anything, mock.Anything).
					Return(nil, nil, errors.New("db fail"))
			},
			wantMsg: "close month: db fail",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mRepo := new(repoMocks.MockReportRepository)
			tt.setupMocks(mRepo)
			svc := newTestReportService(mRepo, nil, now)

			res, err := svc.CloseMonth(ctx, tt.period, "admin")

			assert.Error(t, err)
			assert.Nil(t, res)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			}
			if tt.wantMsg != "" {
				assert.Contains(t, err.Error(), tt.wantMsg)
			}
			mRepo.AssertExpectations(t)
		})
	}
}

// Stock added in January is still open when February is closed. Closing
// February first would start the open period in March and the January units
// would no longer count towards current stock.
func TestReportService_CloseMonth_SkippingOpenMonth(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 3, 5, 9, 0, 0, 0, time.UTC)
	feb := stock.Period{Year: 2024, Month: 2}

	mRepo := new(repoMocks.MockReportRepository)
	mRepo.On("OpenMonth", ctx).Return(openMonth("2024-01-01"), nil)
	svc := newTestReportService(mRepo, nil, now)

	res, err := svc.CloseMonth(ctx, feb, "admin")

	assert.ErrorIs(t, err, ErrPeriodNotOpen)
	assert.Nil(t, res)
	mRepo.AssertNotCalled(t, "Close", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	mRepo.AssertExpectations(t)
}

func TestReportService_OpenPeriod(t *testing.T) {
	ctx := context.Background()

	t.Run("month of the open start", func(t *testing.T) {
		mRepo := new(repoMocks.MockReportRepository)
		mRepo.On("OpenMonth", ctx).Return(openMonth("2024-06-01"), nil)
		svc := NewReportService(mRepo, nil, nil, nil, nil)

		p, ok, err := svc.OpenPeriod(ctx)

		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, stock.Period{Year: 2024, Month: 6}, p)
	})

	t.Run("empty ledger", func(t *testing.T) {
		mRepo := new(repoMocks.MockReportRepository)
		mRepo.On("OpenMonth", ctx).Return(model.Date{}, nil)
		svc := NewReportService(mRepo, nil, nil, nil, nil)

		_, ok, err := svc.OpenPeriod(ctx)

		require.NoError(t, err)
		assert.False(t, ok)
	})
}

func TestReportService_CloseMonth_Archive(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 6, 3, 8, 0, 0, 0, time.UTC)
	p := stock.Period{Year: 2024, Month: 5}

	tests := []struct {
		name       string
		setupMocks func(mRepo *repoMocks.MockReportRepository, mStore *storeMocks.MockStorage)
		wantKey    string
	}{
		{
			name: "uploads csv and records key",
			setupMocks: func(mRepo *repoMocks.MockReportRepository, mStore *storeMocks.MockStorage) {
				mStore.On("Put", ctx, "month-close/2024-05.csv", mock.MatchedBy(func(r io.Reader) bool {
					recs, err := csv.NewReader(r).ReadAll()
					return err == nil && len(recs) == 4 && recs[0][0] == "medicine_id" && recs[1][9] == "10"
				}), mock.MatchedBy(func(opt storage.PutObjectOptions) bool {
					return opt.ContentType == "text/csv" && opt.Size > 0
				})).Return(storage.ObjectInfo{Key: "month-close/2024-05.csv"}, nil)
				mRepo.On("SetArchiveKey", ctx, mock.Anything, "month-close/2024-05.csv").Return(nil)
			},
			wantKey: "month-close/2024-05.csv",
		},
		{
			name: "upload failure does not fail the close",
			setupMocks: func(mRepo *repoMocks.MockReportRepository, mStore *storeMocks.MockStorage) {
				mStore.On("Put", ctx, mock.Anything, mock.Anything, mock.Anything).
					Return(storage.ObjectInfo{}, errors.New("storage down"))
			},
		},
		{
			name: "object removed when key cannot be recorded",
			setupMocks: func(mRepo *repoMocks.MockReportRepository, mStore *storeMocks.MockStorage) {
				mStore.On("Put", ctx, mock.Anything, mock.Anything, mock.Anything).
					Return(storage.ObjectInfo{}, nil)
				mRepo.On("SetArchiveKey", ctx, mock.Anything, mock.Anything).Return(errors.New("db fail"))
				mStore.On("Delete", ctx, "month-close/2024-05.csv").Return(nil)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mRepo := new(repoMocks.MockReportRepository)
			mStore := new(storeMocks.MockStorage)
			mRepo.On("OpenMonth", ctx).Return(p.Start(), nil)
			mRepo.On("Close", ctx, mock.Anything, p.Start(), p.End()).Return(nil, mayActivity(), nil)
			tt.setupMocks(mRepo, mStore)
			svc := newTestReportService(mRepo, mStore, now)

			res, err := svc.CloseMonth(ctx, p, "admin")

			require.NoError(t, err)
			assert.Equal(t, tt.wantKey, res.Close.ArchiveKey)
			mRepo.AssertExpectations(t)
			mStore.AssertExpectations(t)
		})
	}
}

func TestReportCSV(t *testing.T) {
	rows := stock.Reconcile(stock.Period{Year: 2024, Month: 5}, mayActivity())

	b, err := reportCSV(rows)

	require.NoError(t, err)
	recs, err := csv.NewReader(bytes.NewReader(b)).ReadAll()
	require.NoError(t, err)
	require.Len(t, recs, 4)
	assert.Equal(t, csvHeader, recs[0])
	assert.Equal(t, []string{"m3", "Paracetamol", "", "", "0", "0", "0", "5", "7", "-2", "false"}, recs[3])
}

func TestReportService_ArchiveURL(t *testing.T) {
	ctx := context.Background()
	closes := []model.MonthClose{
		{ID: "c3", Year: 2024, Month: 6, ArchiveKey: "month-close/2024-06.csv"},
		{ID: "c2", Year: 2024, Month: 5, ArchiveKey: "month-close/2024-05.csv"},
		{ID: "c1", Year: 2024, Month: 4},
	}

	tests := []struct {
		name    string
		period  stock.Period
		store   bool
		wantURL string
		wantErr error
	}{
		{name: "presigns archived month", period: stock.Period{Year: 2024, Month: 5}, store: true, wantURL: "https://minio/x"},
		{name: "archive object missing", period: stock.Period{Year: 2024, Month: 6}, store: true, wantErr: ErrArchiveUnavailable},
		{name: "closed without archive", period: stock.Period{Year: 2024, Month: 4}, store: true, wantErr: ErrArchiveUnavailable},
		{name: "month not closed", period: stock.Period{Year: 2024, Month: 3}, store: true, wantErr: ErrArchiveUnavailable},
		{name: "storage disabled", period: stock.Period{Year: 2024, Month: 5}, wantErr: ErrArchiveUnavailable},
		{name: "invalid period", period: stock.Period{Year: 2024, Month: 13}, store: true, wantErr: ErrInvalidPeriod},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mRepo := new(repoMocks.MockReportRepository)
			mRepo.On("ListCloses", ctx).Return(closes, nil).Maybe()
			var store storage.Storage
			if tt.store {
				mStore := new(storeMocks.MockStorage)
				mStore.On("Stat", ctx, "month-close/2024-05.csv").Return(storage.ObjectInfo{Key: "month-close/2024-05.csv"}, nil).Maybe()
				mStore.On("Stat", ctx, "month-close/2024-06.csv").Return(storage.ObjectInfo{}, storage.ErrNotFound).Maybe()
				mStore.On("PresignGet", ctx, "month-close/2024-05.csv", archiveURLExpiry).Return("https://minio/x", nil).Maybe()
				store = mStore
			}
			svc := NewReportService(mRepo, store, nil, nil, nil)

			url, err := svc.ArchiveURL(ctx, tt.period)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, tt.wantURL, url)
			}
		})
	}
}
