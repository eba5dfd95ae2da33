package stock

import (
	"fmt"
	"time"

	"medstock/internal/model"
)

// Closing applies opening + return + donation + new added - dispensed.
func Closing(a model.MedicineActivity) int64 {
	return a.Opening + a.Return + a.Donation + a.NewAdded - a.Dispensed
}

// Reconcile turns one month's raw activity into report rows. Rows keep the
// order of the input.
func Reconcile(p Period, activity []model.MedicineActivity) []model.MonthlyReport {
	rows := make([]model.MonthlyReport, 0, len(activity))
	for _, a := range activity {
		closing := Closing(a)
		rows = append(rows, model.MonthlyReport{
			MedicineID:     a.Medicine.ID,
			Medicine:       a.Medicine,
			Year:           p.Year,
			Month:          p.Month,
			OpeningStock:   a.Opening,
			TotalReturn:    a.Return,
			TotalDonation:  a.Donation,
			TotalNewAdded:  a.NewAdded,
			TotalDispensed: a.Dispensed,
			ClosingStock:   closing,
			Forward:        closing > 0,
		})
	}
	return rows
}

// ForwardRemark is the remark written on carry-forward entries for p.
func ForwardRemark(p Period) string {
	return fmt.Sprintf("Forwarded from %s", p)
}

// PlanForwards builds the opening-balance entries of the month after p.
// Only rows with a positive closing stock are carried; zero and negative
// balances are dropped.
func PlanForwards(p Period, rows []model.MonthlyReport, closedBy string, newID func() string, now time.Time) []model.StockTransaction {
	date := p.Next().Start()
	out := make([]model.StockTransaction, 0, len(rows))
	for _, r := range rows {
		if r.ClosingStock <= 0 {
			continue
		}
		out = append(out, model.StockTransaction{
			ID:         newID(),
			MedicineID: r.MedicineID,
			TxnTypeID:  model.TxnForward,
			TxnDate:    date,
			Quantity:   r.ClosingStock,
			Remarks:    ForwardRemark(p),
			CreatedBy:  closedBy,
			CreatedAt:  now,
		})
	}
	return out
}

// Accumulate folds a set of ledger entries into an activity aggregate. Entries
// of other medicines are ignored.
func Accumulate(m model.Medicine, txns []model.StockTransaction) model.MedicineActivity {
	a := model.MedicineActivity{Medicine: m}
	for _, t := range txns {
		if t.MedicineID != m.ID {
			continue
		}
		switch {
		case t.TxnTypeID == model.TxnForward:
			a.Opening += t.Quantity
		case t.TxnTypeID == model.TxnReturn:
			a.Return += t.Quantity
		case t.TxnTypeID == model.TxnDonation:
			a.Donation += t.Quantity
		case t.TxnTypeID == model.TxnNewAdded:
			a.NewAdded += t.Quantity
		case model.IsDispense(t.TxnTypeID):
			a.Dispensed += t.Quantity
		}
	}
	return a
}

// DayTotals sums stock-in and dispensed quantities of the entries dated day.
func DayTotals(day model.Date, txns []model.StockTransaction) (in, out int64) {
	for _, t := range txns {
		if !t.TxnDate.Equal(day.Time) {
			continue
		}
		switch {
		case model.IsStockIn(t.TxnTypeID):
			in += t.Quantity
		case model.IsDispense(t.TxnTypeID):
			out += t.Quantity
		}
	}
	return in, out
}
