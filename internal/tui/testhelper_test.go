package tui

import (
	"context"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"medstock/pkg/client"
)

// fakeAPI records calls and serves canned data.
type fakeAPI struct {
	authed       bool
	loginErr     error
	medicines    []client.Medicine
	transactions []client.Transaction
	types        []client.TransactionType
	monthly      []client.MonthlyRow
	daily        *client.DailyReport
	createErr    error
	closeErr     error
	listErr      error

	created       []client.TransactionInput
	createdMeds   []client.MedicineInput
	updated       map[string]client.MedicinePatch
	deleted       []string
	closed        [][2]int
	refreshes     int
	dailyDates    []string
	monthlyCalled int
}

func (f *fakeAPI) Authenticated() bool { return f.authed }

func (f *fakeAPI) Login(_ context.Context, username, password string) (*client.Session, error) {
	if f.loginErr != nil {
		return nil, f.loginErr
	}
	f.authed = true
	return &client.Session{Token: "tok", User: client.User{Username: username, Name: "Admin"}}, nil
}

func (f *fakeAPI) Logout(context.Context) error {
	f.authed = false
	return nil
}

func (f *fakeAPI) Profile(context.Context) (*client.User, error) {
	if !f.authed {
		return nil, client.ErrUnauthorized
	}
	return &client.User{Username: "admin"}, nil
}

func (f *fakeAPI) ListMedicines(context.Context, string) ([]client.Medicine, error) {
	f.refreshes++
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.medicines, nil
}

func (f *fakeAPI) CreateMedicine(_ context.Context, in client.MedicineInput) (*client.Medicine, error) {
	f.createdMeds = append(f.createdMeds, in)
	return &client.Medicine{ID: "new", Name: in.Name}, f.createErr
}

func (f *fakeAPI) UpdateMedicine(_ context.Context, id string, patch client.MedicinePatch) (*client.Medicine, error) {
	if f.updated == nil {
		f.updated = map[string]client.MedicinePatch{}
	}
	f.updated[id] = patch
	return &client.Medicine{ID: id}, nil
}

func (f *fakeAPI) DeleteMedicine(_ context.Context, id string) error {
	f.deleted = append(f.deleted, id)
	return nil
}

func (f *fakeAPI) ListTransactions(context.Context, client.TransactionQuery) (*client.TransactionPage, error) {
	return &client.TransactionPage{Items: f.transactions, Total: len(f.transactions)}, nil
}

func (f *fakeAPI) CreateTransaction(_ context.Context, in client.TransactionInput) (*client.Transaction, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	f.created = append(f.created, in)
	return &client.Transaction{ID: "t-new", MedicineID: in.MedicineID, TxnTypeID: in.TxnTypeID, Quantity: in.Quantity}, nil
}

func (f *fakeAPI) ListTransactionTypes(context.Context) ([]client.TransactionType, error) {
	return f.types, nil
}

// DailyReport serves f.daily when set, otherwise totals f.transactions dated
// date the way the server does.
func (f *fakeAPI) DailyReport(_ context.Context, date string) (*client.DailyReport, error) {
	f.dailyDates = append(f.dailyDates, date)
	if f.daily != nil {
		return f.daily, nil
	}
	r := &client.DailyReport{Date: date}
	for _, t := range f.transactions {
		if t.TxnDate != date {
			continue
		}
		r.Transactions = append(r.Transactions, t)
		switch {
		case client.IsStockIn(t.TxnTypeID):
			r.TotalStockIn += t.Quantity
		case client.IsDispense(t.TxnTypeID):
			r.TotalDispensed += t.Quantity
		}
	}
	return r, nil
}

func (f *fakeAPI) MonthlyReport(context.Context, int, int) ([]client.MonthlyRow, error) {
	f.monthlyCalled++
	return f.monthly, nil
}

func (f *fakeAPI) CloseMonth(_ context.Context, year, month int) (*client.MonthCloseResult, error) {
	if f.closeErr != nil {
		return nil, f.closeErr
	}
	f.closed = append(f.closed, [2]int{year, month})
	return &client.MonthCloseResult{
		Close:    client.MonthClose{Year: year, Month: month},
		Rows:     f.monthly,
		Forwards: []client.Transaction{{ID: "fwd"}},
	}, nil
}

func seededAPI() *fakeAPI {
	return &fakeAPI{
		authed: true,
		medicines: []client.Medicine{
			{ID: "m1", Name: "Paracetamol", Unit: "tablet", DosageForm: "Tablet", CurrentStock: 40},
			{ID: "m2", Name: "Amoxicillin", Unit: "capsule", DosageForm: "Capsule", CurrentStock: 4},
			{ID: "m3", Name: "Salbutamol", Unit: "bottle", DosageForm: "Syrup", CurrentStock: 12},
		},
		transactions: []client.Transaction{
			{ID: "t1", MedicineID: "m1", TxnTypeID: client.TypeNewAdded, TxnDate: "2026-10-15", Quantity: 20},
			{ID: "t2", MedicineID: "m1", TxnTypeID: client.TypeDispense, TxnDate: "2026-10-15", Quantity: 5},
			{ID: "t3", MedicineID: "m2", TxnTypeID: client.TypeDonation, TxnDate: "2026-10-14", Quantity: 7},
		},
		types: []client.TransactionType{
			{ID: 1, Code: "FWD"}, {ID: 2, Code: "RET"}, {ID: 3, Code: "DON"}, {ID: 4, Code: "NEW"},
			{ID: 5, Code: "DSP"}, {ID: 6, Code: "DSP_WARD"}, {ID: 7, Code: "DSP_EXP"}, {ID: 8, Code: "DSP_DMG"},
		},
	}
}

// newTestApp returns a logged-in dashboard with its cache loaded from api.
func newTestApp(t *testing.T, api *fakeAPI) *App {
	t.Helper()
	a := New(context.Background(), api, 10)
	a.now = func() time.Time { return time.Date(2026, 10, 15, 9, 30, 0, 0, time.UTC) }
	a.resetPeriods()
	a.toastTTL = time.Millisecond
	a.width, a.height = 120, 40
	if api.authed {
		a.state.Authenticated = true
		a.state.User = &client.User{Username: "admin"}
		run(t, a, a.refresh())
	}
	return a
}

// run executes cmd and feeds the resulting message back into the model,
// following nested commands except timers.
func run(t *testing.T, a *App, cmd tea.Cmd) {
	t.Helper()
	if cmd == nil {
		return
	}
	msg := cmd()
	switch msg := msg.(type) {
	case nil, toastExpiredMsg:
		return
	case tea.BatchMsg:
		for _, c := range msg {
			run(t, a, c)
		}
		return
	}
	_, next := a.Update(msg)
	run(t, a, next)
}

// send delivers a key and runs whatever it triggers.
func send(t *testing.T, a *App, keys ...tea.KeyMsg) {
	t.Helper()
	for _, k := range keys {
		_, cmd := a.Update(k)
		run(t, a, cmd)
	}
}

// typeText delivers s one rune at a time.
func typeText(t *testing.T, a *App, s string) {
	t.Helper()
	for _, r := range s {
		send(t, a, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
}

func key(k tea.KeyType) tea.KeyMsg {
	return tea.KeyMsg{Type: k}
}
