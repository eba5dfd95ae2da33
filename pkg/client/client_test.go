package client

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, h http.HandlerFunc) (*Client, *MemoryStore) {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	store := &MemoryStore{}
	c := New(srv.URL+"/api",
		WithHTTPClient(srv.Client()),
		WithTokenStore(store),
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
	)
	return c, store
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func TestLogin(t *testing.T) {
	c, store := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/login", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		if body["password"] != "secret" {
			writeJSON(w, http.StatusUnauthorized, map[string]any{
				"status": false, "code": "INVALID_CREDENTIALS", "message": "invalid username or password",
			})
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"status": true,
			"token":  "tok-1",
			"data": map[string]any{
				"user":       map[string]any{"id": "u1", "username": "admin", "role": "admin"},
				"expires_at": "2026-10-22T10:00:00Z",
			},
		})
	})

	t.Run("success stores token", func(t *testing.T) {
		s, err := c.Login(context.Background(), "admin", "secret")
		require.NoError(t, err)
		assert.Equal(t, "tok-1", s.Token)
		assert.Equal(t, "admin", s.User.Username)
		assert.Equal(t, 2026, s.ExpiresAt.Year())
		assert.Equal(t, "tok-1", store.Token())
		assert.True(t, c.Authenticated())
	})

	t.Run("bad credentials keep api error", func(t *testing.T) {
		require.NoError(t, store.Clear())
		_, err := c.Login(context.Background(), "admin", "nope")
		var apiErr *APIError
		require.ErrorAs(t, err, &apiErr)
		assert.Equal(t, http.StatusUnauthorized, apiErr.Status)
		assert.Equal(t, "INVALID_CREDENTIALS", apiErr.Code)
		assert.Equal(t, "invalid username or password", apiErr.Message)
		assert.False(t, errors.Is(err, ErrUnauthorized))
	})
}

func TestUnauthorizedClearsToken(t *testing.T) {
	c, store := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer stale", r.Header.Get("Authorization"))
		writeJSON(w, http.StatusUnauthorized, map[string]any{"status": false, "code": "UNAUTHORIZED", "message": "unauthorized"})
	})
	require.NoError(t, store.Set("stale"))

	_, err := c.ListMedicines(context.Background(), "")
	require.ErrorIs(t, err, ErrUnauthorized)
	assert.Empty(t, store.Token())
}

func TestSessionExpiredIsNotFatal(t *testing.T) {
	c, store := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, statusSessionExpired, map[string]any{"status": false, "message": "session expired"})
	})
	require.NoError(t, store.Set("tok"))

	_, err := c.Profile(context.Background())
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, statusSessionExpired, apiErr.Status)
	assert.Equal(t, "tok", store.Token())
}

func TestListMedicines(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/api/medicines", r.URL.Path)
		assert.Equal(t, "para", r.URL.Query().Get("q"))
		writeJSON(w, http.StatusOK, map[string]any{
			"status": true,
			"data": []map[string]any{
				{"id": "m1", "name": "Paracetamol", "unit": "tablet", "dosage_form": "oral", "current_stock": 12},
			},
		})
	})

	items, err := c.ListMedicines(context.Background(), "para")
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "Paracetamol", items[0].Name)
	assert.Equal(t, int64(12), items[0].CurrentStock)
}

func TestCreateMedicine_Validation(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]any{
			"status": false, "code": "VALIDATION_ERROR", "message": "name: is required",
		})
	})

	_, err := c.CreateMedicine(context.Background(), MedicineInput{})
	assert.True(t, IsCode(err, "VALIDATION_ERROR"))
	assert.EqualError(t, err, "api error 422 VALIDATION_ERROR: name: is required")
}

func TestUpdateAndDeleteMedicine(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/medicines/m1", r.URL.Path)
		switch r.Method {
		case http.MethodPut:
			var body map[string]any
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			assert.Equal(t, map[string]any{"unit": "box"}, body)
			writeJSON(w, http.StatusOK, map[string]any{"status": true, "data": map[string]any{"id": "m1", "unit": "box"}})
		case http.MethodDelete:
			writeJSON(w, http.StatusConflict, map[string]any{"status": false, "code": "MEDICINE_IN_USE", "message": "medicine has transactions"})
		}
	})

	unit := "box"
	m, err := c.UpdateMedicine(context.Background(), "m1", MedicinePatch{Unit: &unit})
	require.NoError(t, err)
	assert.Equal(t, "box", m.Unit)

	err = c.DeleteMedicine(context.Background(), "m1")
	assert.True(t, IsCode(err, "MEDICINE_IN_USE"))
}

func TestListTransactions(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "m1", q.Get("medicine_id"))
		assert.Equal(t, "20", q.Get("limit"))
		assert.Equal(t, "40", q.Get("offset"))
		writeJSON(w, http.StatusOK, map[string]any{
			"status": true,
			"data":   []map[string]any{{"id": "t1", "txn_type_id": 5, "txn_date": "2026-10-01", "quantity": 3}},
			"total":  41, "limit": 20, "offset": 40,
		})
	})

	page, err := c.ListTransactions(context.Background(), TransactionQuery{MedicineID: "m1", Limit: 20, Offset: 40})
	require.NoError(t, err)
	assert.Equal(t, 41, page.Total)
	assert.Equal(t, 20, page.Limit)
	assert.Equal(t, 40, page.Offset)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "2026-10-01", page.Items[0].TxnDate)
}

func TestCreateTransaction_InsufficientStock(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		var in TransactionInput
		require.NoError(t, json.NewDecoder(r.Body).Decode(&in))
		assert.Equal(t, TypeDispense, in.TxnTypeID)
		writeJSON(w, http.StatusUnprocessableEntity, map[string]any{
			"status": false, "code": "INSUFFICIENT_STOCK", "message": "requested 9, available 4",
		})
	})

	_, err := c.CreateTransaction(context.Background(), TransactionInput{MedicineID: "m1", TxnTypeID: TypeDispense, Quantity: 9})
	assert.True(t, IsCode(err, "INSUFFICIENT_STOCK"))
}

func TestReports(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/reports/daily":
			assert.Equal(t, "2026-10-14", r.URL.Query().Get("date"))
			writeJSON(w, http.StatusOK, map[string]any{"status": true, "data": map[string]any{
				"date": "2026-10-14", "total_stock_in": 10, "total_dispensed": 4,
			}})
		case "/api/reports/monthly":
			assert.Equal(t, "2026", r.URL.Query().Get("year"))
			assert.Equal(t, "9", r.URL.Query().Get("month"))
			writeJSON(w, http.StatusOK, map[string]any{"status": true, "data": []map[string]any{
				{"medicine_id": "m1", "opening_stock": 5, "total_return": 1, "total_donation": 2, "total_new_added": 3, "total_dispensed": 4, "closing_stock": 7, "forward": true},
			}})
		case "/api/reports/month-close":
			writeJSON(w, http.StatusConflict, map[string]any{"status": false, "code": "MONTH_ALREADY_CLOSED", "message": "month already closed"})
		case "/api/reports/month-close/2026/9/archive":
			writeJSON(w, http.StatusOK, map[string]any{"status": true, "data": map[string]any{"url": "http://minio/x"}})
		default:
			http.NotFound(w, r)
		}
	})
	ctx := context.Background()

	daily, err := c.DailyReport(ctx, "2026-10-14")
	require.NoError(t, err)
	assert.Equal(t, int64(10), daily.TotalStockIn)
	assert.Equal(t, int64(4), daily.TotalDispensed)

	rows, err := c.MonthlyReport(ctx, 2026, 9)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	r := rows[0]
	assert.Equal(t, r.OpeningStock+r.TotalReturn+r.TotalDonation+r.TotalNewAdded-r.TotalDispensed, r.ClosingStock)

	_, err = c.CloseMonth(ctx, 2026, 9)
	assert.True(t, IsCode(err, "MONTH_ALREADY_CLOSED"))

	u, err := c.ArchiveURL(ctx, 2026, 9)
	require.NoError(t, err)
	assert.Equal(t, "http://minio/x", u)
}

func TestNonJSONError(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = io.WriteString(w, "<html>bad gateway</html>")
	})

	_, err := c.ListTransactionTypes(context.Background())
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadGateway, apiErr.Status)
	assert.Equal(t, "Bad Gateway", apiErr.Message)
}

func TestLogout(t *testing.T) {
	calls := 0
	c, store := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		writeJSON(w, http.StatusOK, map[string]any{"status": true, "message": "logged out"})
	})

	assert.ErrorIs(t, c.Logout(context.Background()), ErrNotLoggedIn)
	assert.Equal(t, 0, calls)

	require.NoError(t, store.Set("tok"))
	require.NoError(t, c.Logout(context.Background()))
	assert.Equal(t, 1, calls)
	assert.False(t, c.Authenticated())
}

func TestFileStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "token.json")
	now := time.Date(2026, 10, 1, 8, 0, 0, 0, time.UTC)
	s := NewFileStore(path)
	s.now = func() time.Time { return now }

	assert.Empty(t, s.Token())
	require.NoError(t, s.Set("abc"))
	assert.Equal(t, "abc", s.Token())

	now = now.Add(TokenLifetime - time.Minute)
	assert.Equal(t, "abc", s.Token())

	now = now.Add(time.Minute)
	assert.Empty(t, s.Token())

	require.NoError(t, s.Clear())
	require.NoError(t, s.Clear())
}
