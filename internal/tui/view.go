package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"medstock/pkg/client"
)

const (
	maxListRows   = 15
	maxMatchRows  = 8
	recentOnBoard = 5
)

// View implements tea.Model.
func (a *App) View() string {
	if a.quitting {
		return ""
	}

	var body string
	if !a.state.Authenticated {
		body = a.viewLogin()
	} else {
		body = lipgloss.JoinVertical(lipgloss.Left,
			a.viewHeader(),
			"",
			a.viewTab(),
			a.theme.Footer.Render(a.help()),
		)
	}
	if t := a.viewToasts(); t != "" {
		body = lipgloss.JoinVertical(lipgloss.Left, body, "", t)
	}
	return body
}

func (a *App) viewLogin() string {
	t := a.theme
	return t.Box.Render(lipgloss.JoinVertical(lipgloss.Left,
		t.Title.Render("Medstock - sign in"),
		"",
		a.login.Render(t),
		t.Muted.Render("tab: next field  enter: sign in  ctrl+c: quit"),
	))
}

func (a *App) viewHeader() string {
	t := a.theme
	tabs := make([]string, len(tabNames))
	for i, name := range tabNames {
		label := fmt.Sprintf("F%d %s", i+1, name)
		if Tab(i) == a.tab {
			tabs[i] = t.ActiveTab.Render(label)
		} else {
			tabs[i] = t.Tab.Render(label)
		}
	}
	user := ""
	if a.state.User != nil {
		user = t.Muted.Render("  " + displayName(*a.state.User))
	}
	status := ""
	if a.loading {
		status = t.Muted.Render("  loading...")
	}
	return lipgloss.JoinVertical(lipgloss.Left,
		t.Title.Render("Medstock")+user+status,
		lipgloss.JoinHorizontal(lipgloss.Top, tabs...),
	)
}

func (a *App) viewTab() string {
	switch a.tab {
	case TabMedicines:
		return a.viewMedicines()
	case TabStockIn:
		return a.viewTransactionForm("Stock In (Return / Donation / New)", a.stockIn)
	case TabDispense:
		return a.viewTransactionForm("Dispense", a.dispense)
	case TabReports:
		return a.viewReports()
	case TabMonthClose:
		return a.viewMonthClose()
	default:
		return a.viewDashboard()
	}
}

func (a *App) help() string {
	common := "F1-F6: tabs  ctrl+r: refresh  ctrl+l: logout  ctrl+c: quit"
	switch a.tab {
	case TabMedicines:
		if a.showMedForm {
			return "tab: next field  enter: save  esc: cancel"
		}
		return "type to search  up/down: select  ctrl+n: new  ctrl+e: edit  ctrl+d: delete  " + common
	case TabStockIn, TabDispense:
		return "tab: next field  up/down: pick medicine  left/right: type  enter: submit  esc: clear  " + common
	case TabReports:
		return "tab: next field  enter: load  " + common
	case TabMonthClose:
		return "enter: preview  ctrl+s: close month  " + common
	default:
		return "q: quit  " + common
	}
}

func (a *App) viewDashboard() string {
	t := a.theme
	today := a.today()
	in, out := a.state.TodayTotals()

	var b strings.Builder
	b.WriteString(t.Header.Render("Today "+today) + "\n")
	fmt.Fprintf(&b, "%s%d\n", t.Label.Render("Medicines"), len(a.state.Medicines))
	fmt.Fprintf(&b, "%s%s\n", t.Label.Render("Stock in"), t.Success.Render(fmt.Sprint(in)))
	fmt.Fprintf(&b, "%s%s\n", t.Label.Render("Dispensed"), t.Error.Render(fmt.Sprint(out)))

	low := a.state.LowStock()
	b.WriteString("\n")
	if len(low) == 0 {
		b.WriteString(t.Success.Render("No medicines running low") + "\n")
	} else {
		b.WriteString(t.Warning.Render(fmt.Sprintf("%d medicine(s) running low (less than %d units)", len(low), a.state.lowStock)) + "\n")
		for _, m := range low {
			fmt.Fprintf(&b, "  %-30s %6d %s\n", truncate(m.Name, 30), a.state.CurrentStock(m.ID), m.Unit)
		}
	}

	if n := len(a.state.Transactions); n > 0 {
		b.WriteString("\n" + t.Header.Render("Recent transactions") + "\n")
		for _, tx := range a.state.Transactions[:min(n, recentOnBoard)] {
			b.WriteString(a.transactionLine(tx) + "\n")
		}
	}
	return b.String()
}

func (a *App) transactionLine(tx client.Transaction) string {
	name := tx.MedicineID
	if tx.Medicine != nil {
		name = tx.Medicine.Name
	} else if m, ok := a.state.Medicine(tx.MedicineID); ok {
		name = m.Name
	}
	code := fmt.Sprint(tx.TxnTypeID)
	if tx.TransactionType != nil {
		code = tx.TransactionType.Code
	}
	qty := fmt.Sprintf("+%d", tx.Quantity)
	style := a.theme.Success
	if client.IsDispense(tx.TxnTypeID) {
		qty = fmt.Sprintf("-%d", tx.Quantity)
		style = a.theme.Error
	}
	return fmt.Sprintf("  %s  %-8s %-30s %s", tx.TxnDate, code, truncate(name, 30), style.Render(qty))
}

func (a *App) viewMedicines() string {
	t := a.theme
	var b strings.Builder

	if a.showMedForm {
		title := "New medicine"
		if a.editingID != "" {
			title = "Edit medicine"
		}
		b.WriteString(t.Header.Render(title) + "\n")
		b.WriteString(a.medForm.Render(t))
		return b.String()
	}

	b.WriteString(t.Label.Render("Search") + a.search.value + "_\n\n")
	list := a.visibleMedicines()
	if len(list) == 0 {
		b.WriteString(t.Muted.Render("No medicines found") + "\n")
		return b.String()
	}
	b.WriteString(t.Header.Render(fmt.Sprintf("  %-30s %-15s %-10s %8s", "Name", "Dosage form", "Unit", "Stock")) + "\n")
	start := max(0, a.medCursor-maxListRows+1)
	for i := start; i < len(list) && i < start+maxListRows; i++ {
		m := list[i]
		stock := a.state.CurrentStock(m.ID)
		line := fmt.Sprintf("%-30s %-15s %-10s %8d", truncate(m.Name, 30), truncate(m.DosageForm, 15), truncate(m.Unit, 10), stock)
		if stock < a.state.lowStock {
			line += t.Warning.Render(" low")
		}
		if i == a.medCursor {
			b.WriteString(t.Selected.Render("> "+line) + "\n")
		} else {
			b.WriteString("  " + line + "\n")
		}
	}
	if a.confirmDelete {
		if m, ok := a.selectedMedicine(); ok {
			b.WriteString("\n" + t.Warning.Render(fmt.Sprintf("Delete %s? (y/n)", m.Name)) + "\n")
		}
	}
	return b.String()
}

func (a *App) viewTransactionForm(title string, f *form) string {
	t := a.theme
	var b strings.Builder
	b.WriteString(t.Header.Render(title) + "\n")
	b.WriteString(f.Render(t))

	b.WriteString("\n")
	list := a.matches(f)
	if len(list) == 0 {
		b.WriteString(t.Muted.Render("No matching medicines") + "\n")
		return b.String()
	}
	pick := a.pick[a.tab]
	start := max(0, pick-maxMatchRows+1)
	for i := start; i < len(list) && i < start+maxMatchRows; i++ {
		m := list[i]
		line := fmt.Sprintf("%-30s %-15s available: %d %s", truncate(m.Name, 30), truncate(m.DosageForm, 15), a.state.CurrentStock(m.ID), m.Unit)
		if i == pick {
			b.WriteString(t.Selected.Render("> "+line) + "\n")
		} else {
			b.WriteString("  " + line + "\n")
		}
	}

	if a.tab == TabDispense {
		if m, ok := a.pickedMedicine(); ok {
			if q, err := parseQuantity(f.Value(txnQty)); err == nil && a.state.checkDispense(m.ID, q) != nil {
				b.WriteString("\n" + t.Error.Render(fmt.Sprintf("Only %d %s available", a.state.CurrentStock(m.ID), m.Unit)) + "\n")
			}
		}
	}
	return b.String()
}

func (a *App) viewReports() string {
	t := a.theme
	var b strings.Builder
	b.WriteString(t.Header.Render("Reports") + "\n")
	b.WriteString(a.reports.Render(t))

	if d := a.daily; d != nil {
		b.WriteString("\n" + t.Header.Render("Daily report "+d.Date) + "\n")
		fmt.Fprintf(&b, "%s%s   %s%s\n",
			t.Label.Render("Stock in"), t.Success.Render(fmt.Sprint(d.TotalStockIn)),
			t.Label.Render("Dispensed"), t.Error.Render(fmt.Sprint(d.TotalDispensed)))
		if len(d.Transactions) == 0 {
			b.WriteString(t.Muted.Render("  No transactions") + "\n")
		}
		for _, tx := range d.Transactions {
			b.WriteString(a.transactionLine(tx) + "\n")
		}
	}
	if a.monthly != nil {
		b.WriteString("\n" + t.Header.Render("Monthly report") + "\n")
		b.WriteString(a.monthlyTable(a.monthly, false))
	}
	return b.String()
}

func (a *App) viewMonthClose() string {
	t := a.theme
	var b strings.Builder
	b.WriteString(t.Header.Render("Month close") + "\n")
	b.WriteString(a.closeForm.Render(t))
	b.WriteString(t.Muted.Render("Closing carries every positive closing stock into next month's opening stock. This cannot be undone.") + "\n")

	if a.preview != nil {
		b.WriteString("\n" + t.Header.Render("Preview "+a.previewPeriod) + "\n")
		b.WriteString(a.monthlyTable(a.preview, true))
	}
	if a.confirmClose {
		b.WriteString("\n" + t.Warning.Render(fmt.Sprintf("Close %s? (y/n)", a.previewPeriod)) + "\n")
	}
	return b.String()
}

func (a *App) monthlyTable(rows []client.MonthlyRow, withForward bool) string {
	t := a.theme
	if len(rows) == 0 {
		return t.Muted.Render("  No medicines") + "\n"
	}
	var b strings.Builder
	head := fmt.Sprintf("  %-25s %8s %6s %6s %6s %9s %8s", "Medicine", "Opening", "Ret", "Don", "New", "Dispensed", "Closing")
	if withForward {
		head += "  Forward"
	}
	b.WriteString(t.Header.Render(head) + "\n")
	for _, r := range rows {
		name := r.Medicine.Name
		if name == "" {
			name = r.MedicineID
		}
		line := fmt.Sprintf("  %-25s %8d %6d %6d %6d %9d %8d", truncate(name, 25),
			r.OpeningStock, r.TotalReturn, r.TotalDonation, r.TotalNewAdded, r.TotalDispensed, r.ClosingStock)
		if withForward {
			if r.ClosingStock > 0 {
				line += t.Success.Render("  yes")
			} else {
				line += t.Muted.Render("  no")
			}
		}
		b.WriteString(line + "\n")
	}
	return b.String()
}

func (a *App) viewToasts() string {
	if len(a.toasts) == 0 {
		return ""
	}
	lines := make([]string, len(a.toasts))
	for i, tt := range a.toasts {
		if tt.level == toastError {
			lines[i] = a.theme.Error.Render("✗ " + tt.text)
		} else {
			lines[i] = a.theme.Success.Render("✓ " + tt.text)
		}
	}
	return strings.Join(lines, "\n")
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
