package client

import "time"

// Medicine is a catalog entry with its derived stock level.
type Medicine struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Unit         string    `json:"unit"`
	DosageForm   string    `json:"dosage_form"`
	Description  string    `json:"description"`
	CurrentStock int64     `json:"current_stock"`
	LowStock     bool      `json:"low_stock"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// MedicineInput is the body of a create request.
type MedicineInput struct {
	Name        string `json:"name"`
	Unit        string `json:"unit"`
	DosageForm  string `json:"dosage_form"`
	Description string `json:"description"`
}

// MedicinePatch is the body of a partial update. Nil fields are left unchanged.
type MedicinePatch struct {
	Name        *string `json:"name,omitempty"`
	Unit        *string `json:"unit,omitempty"`
	DosageForm  *string `json:"dosage_form,omitempty"`
	Description *string `json:"description,omitempty"`
}

// TransactionType is one entry of the fixed ledger enumeration.
type TransactionType struct {
	ID        int    `json:"id"`
	Code      string `json:"code"`
	Label     string `json:"label"`
	Direction string `json:"direction"`
}

// Type ids as seeded by the server.
const (
	TypeForward      = 1
	TypeReturn       = 2
	TypeDonation     = 3
	TypeNewAdded     = 4
	TypeDispense     = 5
	TypeDispenseWard = 6
	TypeExpired      = 7
	TypeDamaged      = 8
)

// IsStockIn reports whether id is one of the RET/DON/NEW types.
func IsStockIn(id int) bool { return id >= TypeReturn && id <= TypeNewAdded }

// IsDispense reports whether id is an outbound type.
func IsDispense(id int) bool { return id >= TypeDispense && id <= TypeDamaged }

// Transaction is a stock ledger entry. TxnDate is YYYY-MM-DD.
type Transaction struct {
	ID              string           `json:"id"`
	MedicineID      string           `json:"medicine_id"`
	Medicine        *Medicine        `json:"medicine,omitempty"`
	TxnTypeID       int              `json:"txn_type_id"`
	TransactionType *TransactionType `json:"transaction_type,omitempty"`
	TxnDate         string           `json:"txn_date"`
	Quantity        int64            `json:"quantity"`
	Remarks         string           `json:"remarks,omitempty"`
	CreatedBy       string           `json:"created_by"`
	CreatedAt       time.Time        `json:"created_at"`
}

// TransactionInput is the body of a create request. An empty TxnDate means today.
type TransactionInput struct {
	MedicineID string `json:"medicine_id"`
	TxnTypeID  int    `json:"txn_type_id"`
	TxnDate    string `json:"txn_date,omitempty"`
	Quantity   int64  `json:"quantity"`
	Remarks    string `json:"remarks,omitempty"`
}

// TransactionQuery filters a transaction listing. Zero values use server defaults.
type TransactionQuery struct {
	MedicineID string
	Limit      int
	Offset     int
}

// TransactionPage is one page of transactions, newest first.
type TransactionPage struct {
	Items  []Transaction
	Total  int
	Limit  int
	Offset int
}

// DailyReport lists one day's transactions with totals.
type DailyReport struct {
	Date           string        `json:"date"`
	Transactions   []Transaction `json:"transactions"`
	TotalStockIn   int64         `json:"total_stock_in"`
	TotalDispensed int64         `json:"total_dispensed"`
}

// MonthlyRow is the reconciliation of one medicine over one month.
type MonthlyRow struct {
	MedicineID     string   `json:"medicine_id"`
	Medicine       Medicine `json:"medicine"`
	Year           int      `json:"year"`
	Month          int      `json:"month"`
	OpeningStock   int64    `json:"opening_stock"`
	TotalReturn    int64    `json:"total_return"`
	TotalDonation  int64    `json:"total_donation"`
	TotalNewAdded  int64    `json:"total_new_added"`
	TotalDispensed int64    `json:"total_dispensed"`
	ClosingStock   int64    `json:"closing_stock"`
	Forward        bool     `json:"forward"`
}

// MonthClose records a finalized month.
type MonthClose struct {
	ID             string    `json:"id"`
	Year           int       `json:"year"`
	Month          int       `json:"month"`
	ClosedBy       string    `json:"closed_by"`
	ClosedAt       time.Time `json:"closed_at"`
	ForwardedCount int       `json:"forwarded_count"`
	ArchiveKey     string    `json:"archive_key,omitempty"`
}

// MonthCloseResult is returned by CloseMonth.
type MonthCloseResult struct {
	Close    MonthClose    `json:"close"`
	Rows     []MonthlyRow  `json:"rows"`
	Forwards []Transaction `json:"forwards"`
}

// User is the authenticated account.
type User struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Name      string    `json:"name"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

// Session is the outcome of a successful login.
type Session struct {
	Token     string
	ExpiresAt time.Time
	User      User
}
