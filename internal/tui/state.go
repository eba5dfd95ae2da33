package tui

import (
	"context"

	"medstock/internal/search"
	"medstock/pkg/client"
)

// API is the subset of the medstock client the dashboard uses.
type API interface {
	Authenticated() bool
	Login(ctx context.Context, username, password string) (*client.Session, error)
	Logout(ctx context.Context) error
	Profile(ctx context.Context) (*client.User, error)
	ListMedicines(ctx context.Context, query string) ([]client.Medicine, error)
	CreateMedicine(ctx context.Context, in client.MedicineInput) (*client.Medicine, error)
	UpdateMedicine(ctx context.Context, id string, patch client.MedicinePatch) (*client.Medicine, error)
	DeleteMedicine(ctx context.Context, id string) error
	ListTransactions(ctx context.Context, q client.TransactionQuery) (*client.TransactionPage, error)
	CreateTransaction(ctx context.Context, in client.TransactionInput) (*client.Transaction, error)
	ListTransactionTypes(ctx context.Context) ([]client.TransactionType, error)
	DailyReport(ctx context.Context, date string) (*client.DailyReport, error)
	MonthlyReport(ctx context.Context, year, month int) ([]client.MonthlyRow, error)
	CloseMonth(ctx context.Context, year, month int) (*client.MonthCloseResult, error)
}

var _ API = (*client.Client)(nil)

// recentTransactions is how many ledger entries the dashboard keeps cached.
const recentTransactions = 200

// State is the dashboard's cache of server data. It is only touched from
// the bubbletea update loop.
type State struct {
	Authenticated bool
	User          *client.User
	Medicines     []client.Medicine
	Transactions  []client.Transaction
	Types         []client.TransactionType
	// Today is the server's report for the current day.
	Today *client.DailyReport

	lowStock int64
}

// NewState returns an empty cache flagging medicines below lowStock.
func NewState(lowStock int64) *State {
	return &State{lowStock: lowStock}
}

// Reset drops everything, as after logout.
func (s *State) Reset() {
	*s = State{lowStock: s.lowStock}
}

// SearchMedicines filters the catalog on name, unit and dosage form.
func (s *State) SearchMedicines(query string) []client.Medicine {
	out := make([]client.Medicine, 0, len(s.Medicines))
	for _, m := range s.Medicines {
		if search.Match(query, m.Name, m.Unit, m.DosageForm) {
			out = append(out, m)
		}
	}
	return out
}

// Medicine looks a medicine up by id.
func (s *State) Medicine(id string) (client.Medicine, bool) {
	for _, m := range s.Medicines {
		if m.ID == id {
			return m, true
		}
	}
	return client.Medicine{}, false
}

// CurrentStock returns the cached stock of a medicine, 0 when unknown.
func (s *State) CurrentStock(id string) int64 {
	m, ok := s.Medicine(id)
	if !ok || m.CurrentStock < 0 {
		return 0
	}
	return m.CurrentStock
}

// LowStock lists medicines whose stock is under the threshold.
func (s *State) LowStock() []client.Medicine {
	var out []client.Medicine
	for _, m := range s.Medicines {
		if s.CurrentStock(m.ID) < s.lowStock {
			out = append(out, m)
		}
	}
	return out
}

// StockInTypes returns the RET/DON/NEW entries of the type list.
func (s *State) StockInTypes() []client.TransactionType {
	return s.typesWhere(client.IsStockIn)
}

// DispenseTypes returns the outbound entries of the type list.
func (s *State) DispenseTypes() []client.TransactionType {
	return s.typesWhere(client.IsDispense)
}

func (s *State) typesWhere(keep func(int) bool) []client.TransactionType {
	var out []client.TransactionType
	for _, t := range s.Types {
		if keep(t.ID) {
			out = append(out, t)
		}
	}
	return out
}

// TodayTotals returns today's stock-in and dispensed quantities as totalled by
// the server, or zeros before the first refresh.
func (s *State) TodayTotals() (in, dispensed int64) {
	if s.Today == nil {
		return 0, 0
	}
	return s.Today.TotalStockIn, s.Today.TotalDispensed
}
