package model

import "time"

// Direction classifies how a transaction type affects stock.
type Direction string

const (
	DirectionOpening Direction = "opening"
	DirectionIn      Direction = "in"
	DirectionOut     Direction = "out"
)

// Transaction type identifiers. The set is fixed and seeded by migration.
const (
	TxnForward      = 1
	TxnReturn       = 2
	TxnDonation     = 3
	TxnNewAdded     = 4
	TxnDispense     = 5
	TxnDispenseWard = 6
	TxnExpired      = 7
	TxnDamaged      = 8
)

// TransactionType is an entry of the fixed transaction type enumeration.
type TransactionType struct {
	ID        int       `json:"id"`
	Code      string    `json:"code"`
	Label     string    `json:"label"`
	Direction Direction `json:"direction"`
}

// TransactionTypes is the seeded enumeration, in id order.
var TransactionTypes = []TransactionType{
	{ID: TxnForward, Code: "FWD", Label: "Forward from previous month", Direction: DirectionOpening},
	{ID: TxnReturn, Code: "RET", Label: "Return", Direction: DirectionIn},
	{ID: TxnDonation, Code: "DON", Label: "Donation", Direction: DirectionIn},
	{ID: TxnNewAdded, Code: "NEW", Label: "New added", Direction: DirectionIn},
	{ID: TxnDispense, Code: "DSP", Label: "Dispense", Direction: DirectionOut},
	{ID: TxnDispenseWard, Code: "DSP_WARD", Label: "Dispense to ward", Direction: DirectionOut},
	{ID: TxnExpired, Code: "DSP_EXP", Label: "Expired / disposed", Direction: DirectionOut},
	{ID: TxnDamaged, Code: "DSP_DMG", Label: "Damaged / lost", Direction: DirectionOut},
}

// LookupTransactionType returns the enumeration entry for id.
func LookupTransactionType(id int) (TransactionType, bool) {
	for _, t := range TransactionTypes {
		if t.ID == id {
			return t, true
		}
	}
	return TransactionType{}, false
}

// IsStockIn reports whether id is one of the RDD (return, donation, new added) types.
func IsStockIn(id int) bool {
	return id >= TxnReturn && id <= TxnNewAdded
}

// IsDispense reports whether id is an outbound type.
func IsDispense(id int) bool {
	return id >= TxnDispense && id <= TxnDamaged
}

// StockTransaction is an append-only ledger entry. Quantity is always positive;
// the sign of its effect on stock comes from the transaction type.
type StockTransaction struct {
	ID              string           `json:"id"`
	MedicineID      string           `json:"medicine_id"`
	Medicine        *Medicine        `json:"medicine,omitempty"`
	TxnTypeID       int              `json:"txn_type_id"`
	TransactionType *TransactionType `json:"transaction_type,omitempty"`
	TxnDate         Date             `json:"txn_date"`
	Quantity        int64            `json:"quantity"`
	Remarks         string           `json:"remarks,omitempty"`
	CreatedBy       string           `json:"created_by"`
	CreatedAt       time.Time        `json:"created_at"`
}

// SignedQuantity returns the effect of t on stock.
func (t StockTransaction) SignedQuantity() int64 {
	if IsDispense(t.TxnTypeID) {
		return -t.Quantity
	}
	return t.Quantity
}

// TransactionFilter narrows a ledger listing.
type TransactionFilter struct {
	MedicineID string
	Limit      int
	Offset     int
}
