package model

import "time"

// MedicineActivity is the raw per-medicine aggregate of one month's ledger,
// before reconciliation.
type MedicineActivity struct {
	Medicine  Medicine
	Opening   int64
	Return    int64
	Donation  int64
	NewAdded  int64
	Dispensed int64
}

// MonthlyReport is the reconciled stock movement of one medicine in one month.
type MonthlyReport struct {
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

// TotalIn is the sum of all inbound (RDD) movements.
func (r MonthlyReport) TotalIn() int64 {
	return r.TotalReturn + r.TotalDonation + r.TotalNewAdded
}

// MonthClose records that a month has been finalized.
type MonthClose struct {
	ID             string    `json:"id"`
	Year           int       `json:"year"`
	Month          int       `json:"month"`
	ClosedBy       string    `json:"closed_by"`
	ClosedAt       time.Time `json:"closed_at"`
	ForwardedCount int       `json:"forwarded_count"`
	ArchiveKey     string    `json:"archive_key,omitempty"`
}

// MonthCloseResult is returned by a successful month close.
type MonthCloseResult struct {
	Close    MonthClose         `json:"close"`
	Rows     []MonthlyReport    `json:"rows"`
	Forwards []StockTransaction `json:"forwards"`
}
