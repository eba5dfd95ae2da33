// Package tui is the terminal admin dashboard for medstock.
package tui

import (
	"context"
	"errors"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"medstock/pkg/client"
)

// Tab is one view of the dashboard.
type Tab int

const (
	TabDashboard Tab = iota
	TabMedicines
	TabStockIn
	TabDispense
	TabReports
	TabMonthClose
)

var tabNames = []string{"Dashboard", "Medicines", "Stock In", "Dispense", "Reports", "Month Close"}

func (t Tab) String() string {
	return tabNames[t]
}

var tabKeys = map[string]Tab{
	"f1": TabDashboard,
	"f2": TabMedicines,
	"f3": TabStockIn,
	"f4": TabDispense,
	"f5": TabReports,
	"f6": TabMonthClose,
}

// Field positions inside the forms.
const (
	loginUser = iota
	loginPass
)

const (
	medName = iota
	medUnit
	medDosage
	medDesc
)

const (
	txnMedicine = iota
	txnType
	txnQty
	txnRemarks
)

const (
	repDate = iota
	repYear
	repMonth
)

const (
	closeYear = iota
	closeMonth
)

const (
	toastTTL  = 4 * time.Second
	maxToasts = 3
)

type toastLevel int

const (
	toastInfo toastLevel = iota
	toastError
)

type toast struct {
	id    int
	level toastLevel
	text  string
}

type (
	profileMsg struct {
		user *client.User
		err  error
	}
	loginMsg struct {
		session *client.Session
		err     error
	}
	logoutMsg struct{ err error }
	dataMsg   struct {
		medicines    []client.Medicine
		transactions []client.Transaction
		types        []client.TransactionType
		today        *client.DailyReport
		err          error
	}
	mutationMsg struct {
		notice    string
		onSuccess func()
		err       error
	}
	reportsMsg struct {
		daily   *client.DailyReport
		monthly []client.MonthlyRow
		err     error
	}
	previewMsg struct {
		period string
		rows   []client.MonthlyRow
		err    error
	}
	closedMsg struct {
		result *client.MonthCloseResult
		err    error
	}
	toastExpiredMsg struct{ id int }
)

// App is the bubbletea model of the dashboard.
type App struct {
	api   API
	state *State
	theme *Theme
	ctx   context.Context
	now   func() time.Time

	width    int
	height   int
	tab      Tab
	loading  bool
	quitting bool

	login *form

	search        *field
	medCursor     int
	medForm       *form
	showMedForm   bool
	editingID     string
	confirmDelete bool

	stockIn  *form
	dispense *form
	pick     map[Tab]int

	reports *form
	daily   *client.DailyReport
	monthly []client.MonthlyRow

	closeForm     *form
	preview       []client.MonthlyRow
	previewPeriod string
	confirmClose  bool

	toasts    []toast
	nextToast int
	toastTTL  time.Duration
}

// New builds the dashboard around api. Medicines below lowStock are flagged.
func New(ctx context.Context, api API, lowStock int64) *App {
	a := &App{
		api:   api,
		state: NewState(lowStock),
		theme: NewTheme(),
		ctx:   ctx,
		now:   time.Now,
		pick:  map[Tab]int{},

		toastTTL: toastTTL,
		login: newForm(
			&field{label: "Username", maxLen: 64},
			&field{label: "Password", secret: true, maxLen: 128},
		),
		search: &field{label: "Search", optional: true, maxLen: 64},
		medForm: newForm(
			&field{label: "Name", maxLen: 255},
			&field{label: "Unit", maxLen: 50},
			&field{label: "Dosage form", maxLen: 100},
			&field{label: "Description", optional: true, maxLen: 500},
		),
		stockIn:   newTxnForm(),
		dispense:  newTxnForm(),
		reports:   newForm(&field{label: "Date", optional: true, maxLen: 10}, &field{label: "Year", maxLen: 4}, &field{label: "Month", maxLen: 2}),
		closeForm: newForm(&field{label: "Year", maxLen: 4}, &field{label: "Month", maxLen: 2}),
	}
	a.resetPeriods()
	return a
}

func newTxnForm() *form {
	return newForm(
		&field{label: "Medicine", optional: true, maxLen: 64},
		&field{label: "Type", isChoice: true},
		&field{label: "Quantity", maxLen: 9},
		&field{label: "Remarks", optional: true, maxLen: 255},
	)
}

func (a *App) resetPeriods() {
	now := a.now()
	a.reports.Set(repDate, now.Format("2006-01-02"))
	a.reports.Set(repYear, fmt.Sprint(now.Year()))
	a.reports.Set(repMonth, fmt.Sprint(int(now.Month())))

	prev := time.Date(now.Year(), now.Month()-1, 1, 0, 0, 0, 0, now.Location())
	a.closeForm.Set(closeYear, fmt.Sprint(prev.Year()))
	a.closeForm.Set(closeMonth, fmt.Sprint(int(prev.Month())))
}

func (a *App) today() string {
	return a.now().Format("2006-01-02")
}

// Init resumes a stored session when there is one.
func (a *App) Init() tea.Cmd {
	if !a.api.Authenticated() {
		return nil
	}
	api, ctx := a.api, a.ctx
	return func() tea.Msg {
		u, err := api.Profile(ctx)
		return profileMsg{user: u, err: err}
	}
}

// Update implements tea.Model.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return a.handleKey(msg)

	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		return a, nil

	case profileMsg:
		if msg.err != nil {
			a.state.Reset()
			return a, a.fail(msg.err)
		}
		a.state.Authenticated = true
		a.state.User = msg.user
		return a, a.refresh()

	case loginMsg:
		if msg.err != nil {
			return a, a.fail(msg.err)
		}
		a.state.Authenticated = true
		a.state.User = &msg.session.User
		a.login.Clear()
		return a, tea.Batch(a.refresh(), a.notify(toastInfo, "Welcome, "+displayName(msg.session.User)))

	case logoutMsg:
		a.state.Reset()
		a.tab = TabDashboard
		a.daily, a.monthly, a.preview = nil, nil, nil
		if msg.err != nil && !errors.Is(msg.err, client.ErrUnauthorized) {
			return a, a.fail(msg.err)
		}
		return a, a.notify(toastInfo, "Logged out")

	case dataMsg:
		a.loading = false
		if msg.err != nil {
			return a, a.fail(msg.err)
		}
		a.state.Medicines = msg.medicines
		a.state.Transactions = msg.transactions
		a.state.Types = msg.types
		a.state.Today = msg.today
		a.syncTypeOptions()
		a.clampCursors()
		return a, nil

	case mutationMsg:
		if msg.err != nil {
			return a, a.fail(msg.err)
		}
		if msg.onSuccess != nil {
			msg.onSuccess()
		}
		return a, tea.Batch(a.refresh(), a.notify(toastInfo, msg.notice))

	case reportsMsg:
		a.loading = false
		if msg.err != nil {
			return a, a.fail(msg.err)
		}
		a.daily = msg.daily
		a.monthly = msg.monthly
		return a, nil

	case previewMsg:
		a.loading = false
		if msg.err != nil {
			return a, a.fail(msg.err)
		}
		a.preview = msg.rows
		a.previewPeriod = msg.period
		return a, nil

	case closedMsg:
		a.loading = false
		if msg.err != nil {
			return a, a.fail(msg.err)
		}
		a.preview = msg.result.Rows
		text := fmt.Sprintf("Closed %04d-%02d, %d medicine(s) carried forward",
			msg.result.Close.Year, msg.result.Close.Month, len(msg.result.Forwards))
		return a, tea.Batch(a.refresh(), a.notify(toastInfo, text))

	case toastExpiredMsg:
		for i, t := range a.toasts {
			if t.id == msg.id {
				a.toasts = append(a.toasts[:i], a.toasts[i+1:]...)
				break
			}
		}
		return a, nil
	}

	return a, nil
}

func (a *App) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()
	if key == "ctrl+c" {
		a.quitting = true
		return a, tea.Quit
	}

	if !a.state.Authenticated {
		return a.handleLoginKey(key)
	}

	if t, ok := tabKeys[key]; ok {
		a.tab = t
		a.confirmClose = false
		a.confirmDelete = false
		return a, nil
	}
	switch key {
	case "ctrl+r":
		return a, a.refresh()
	case "ctrl+l":
		return a, a.logout()
	}

	switch a.tab {
	case TabDashboard:
		if key == "q" {
			a.quitting = true
			return a, tea.Quit
		}
	case TabMedicines:
		return a.handleMedicineKey(key)
	case TabStockIn, TabDispense:
		return a.handleTxnKey(key)
	case TabReports:
		return a.handleReportKey(key)
	case TabMonthClose:
		return a.handleCloseKey(key)
	}
	return a, nil
}

func (a *App) handleLoginKey(key string) (tea.Model, tea.Cmd) {
	if key != "enter" {
		a.login.HandleKey(key)
		return a, nil
	}
	if !a.login.Complete() {
		return a, a.fail(errMissingFields)
	}
	user, pass := a.login.Value(loginUser), a.login.fields[loginPass].value
	api, ctx := a.api, a.ctx
	return a, func() tea.Msg {
		s, err := api.Login(ctx, user, pass)
		return loginMsg{session: s, err: err}
	}
}

func (a *App) handleMedicineKey(key string) (tea.Model, tea.Cmd) {
	if a.confirmDelete {
		a.confirmDelete = false
		if key != "y" && key != "Y" {
			return a, nil
		}
		m, ok := a.selectedMedicine()
		if !ok {
			return a, nil
		}
		api, ctx := a.api, a.ctx
		return a, a.mutate("Medicine deleted", nil, func() error {
			return api.DeleteMedicine(ctx, m.ID)
		})
	}

	if a.showMedForm {
		switch key {
		case "esc":
			a.closeMedForm()
		case "enter":
			return a, a.submitMedicine()
		default:
			a.medForm.HandleKey(key)
		}
		return a, nil
	}

	switch key {
	case "up":
		if a.medCursor > 0 {
			a.medCursor--
		}
	case "down":
		if a.medCursor < len(a.visibleMedicines())-1 {
			a.medCursor++
		}
	case "ctrl+n":
		a.editingID = ""
		a.medForm.Clear()
		a.showMedForm = true
	case "ctrl+e":
		if m, ok := a.selectedMedicine(); ok {
			a.editingID = m.ID
			a.medForm.Clear()
			a.medForm.Set(medName, m.Name)
			a.medForm.Set(medUnit, m.Unit)
			a.medForm.Set(medDosage, m.DosageForm)
			a.medForm.Set(medDesc, m.Description)
			a.showMedForm = true
		}
	case "ctrl+d":
		if _, ok := a.selectedMedicine(); ok {
			a.confirmDelete = true
		}
	case "esc":
		a.search.value = ""
		a.medCursor = 0
	default:
		a.search.handleKey(key)
		a.medCursor = 0
	}
	return a, nil
}

func (a *App) closeMedForm() {
	a.showMedForm = false
	a.editingID = ""
	a.medForm.Clear()
}

func (a *App) submitMedicine() tea.Cmd {
	if !a.medForm.Complete() {
		return a.fail(errMissingFields)
	}
	name, unit, dosage, desc := a.medForm.Value(medName), a.medForm.Value(medUnit), a.medForm.Value(medDosage), a.medForm.Value(medDesc)
	api, ctx := a.api, a.ctx

	if id := a.editingID; id != "" {
		patch := client.MedicinePatch{Name: &name, Unit: &unit, DosageForm: &dosage, Description: &desc}
		return a.mutate("Medicine updated", a.closeMedForm, func() error {
			_, err := api.UpdateMedicine(ctx, id, patch)
			return err
		})
	}
	in := client.MedicineInput{Name: name, Unit: unit, DosageForm: dosage, Description: desc}
	return a.mutate("Medicine added", a.closeMedForm, func() error {
		_, err := api.CreateMedicine(ctx, in)
		return err
	})
}

func (a *App) visibleMedicines() []client.Medicine {
	return a.state.SearchMedicines(a.search.value)
}

func (a *App) selectedMedicine() (client.Medicine, bool) {
	list := a.visibleMedicines()
	if a.medCursor < 0 || a.medCursor >= len(list) {
		return client.Medicine{}, false
	}
	return list[a.medCursor], true
}

func (a *App) txnForm() *form {
	if a.tab == TabDispense {
		return a.dispense
	}
	return a.stockIn
}

func (a *App) matches(f *form) []client.Medicine {
	return a.state.SearchMedicines(f.fields[txnMedicine].value)
}

func (a *App) pickedMedicine() (client.Medicine, bool) {
	list := a.matches(a.txnForm())
	i := a.pick[a.tab]
	if i < 0 || i >= len(list) {
		return client.Medicine{}, false
	}
	return list[i], true
}

func (a *App) handleTxnKey(key string) (tea.Model, tea.Cmd) {
	f := a.txnForm()
	switch key {
	case "enter":
		return a, a.submitTransaction()
	case "esc":
		f.Clear()
		a.pick[a.tab] = 0
	case "up":
		if a.pick[a.tab] > 0 {
			a.pick[a.tab]--
		}
	case "down":
		if a.pick[a.tab] < len(a.matches(f))-1 {
			a.pick[a.tab]++
		}
	default:
		f.HandleKey(key)
		if f.focus == txnMedicine {
			a.pick[a.tab] = 0
		}
	}
	return a, nil
}

func (a *App) submitTransaction() tea.Cmd {
	f := a.txnForm()
	tab := a.tab
	if !f.Complete() {
		return a.fail(errMissingFields)
	}
	med, ok := a.pickedMedicine()
	if !ok {
		return a.fail(errNoMedicine)
	}
	qty, err := parseQuantity(f.Value(txnQty))
	if err != nil {
		return a.fail(err)
	}
	typeID := a.typeID(f.Value(txnType))
	if typeID == 0 {
		return a.fail(errMissingFields)
	}
	notice := fmt.Sprintf("Added %d %s of %s", qty, med.Unit, med.Name)
	if tab == TabDispense {
		if err := a.state.checkDispense(med.ID, qty); err != nil {
			return a.fail(err)
		}
		notice = fmt.Sprintf("Dispensed %d %s of %s", qty, med.Unit, med.Name)
	}

	in := client.TransactionInput{
		MedicineID: med.ID,
		TxnTypeID:  typeID,
		TxnDate:    a.today(),
		Quantity:   qty,
		Remarks:    f.Value(txnRemarks),
	}
	api, ctx := a.api, a.ctx
	return a.mutate(notice, func() {
		f.Clear()
		a.pick[tab] = 0
	}, func() error {
		_, err := api.CreateTransaction(ctx, in)
		return err
	})
}

func (a *App) typeID(code string) int {
	for _, t := range a.state.Types {
		if t.Code == code {
			return t.ID
		}
	}
	return 0
}

func (a *App) handleReportKey(key string) (tea.Model, tea.Cmd) {
	if key != "enter" {
		a.reports.HandleKey(key)
		return a, nil
	}
	if !a.reports.Complete() {
		return a, a.fail(errMissingFields)
	}
	year, month, err := parsePeriod(a.reports.Value(repYear), a.reports.Value(repMonth))
	if err != nil {
		return a, a.fail(err)
	}
	date := a.reports.Value(repDate)
	if date != "" {
		if _, err := time.Parse("2006-01-02", date); err != nil {
			return a, a.fail(errors.New("date must be YYYY-MM-DD"))
		}
	}

	a.loading = true
	api, ctx := a.api, a.ctx
	return a, func() tea.Msg {
		daily, err := api.DailyReport(ctx, date)
		if err != nil {
			return reportsMsg{err: err}
		}
		rows, err := api.MonthlyReport(ctx, year, month)
		return reportsMsg{daily: daily, monthly: rows, err: err}
	}
}

func (a *App) handleCloseKey(key string) (tea.Model, tea.Cmd) {
	if a.confirmClose {
		a.confirmClose = false
		if key != "y" && key != "Y" {
			return a, a.notify(toastInfo, "Month close cancelled")
		}
		year, month, err := parsePeriod(a.closeForm.Value(closeYear), a.closeForm.Value(closeMonth))
		if err != nil {
			return a, a.fail(err)
		}
		a.loading = true
		api, ctx := a.api, a.ctx
		return a, func() tea.Msg {
			res, err := api.CloseMonth(ctx, year, month)
			return closedMsg{result: res, err: err}
		}
	}

	switch key {
	case "enter":
		year, month, err := parsePeriod(a.closeForm.Value(closeYear), a.closeForm.Value(closeMonth))
		if err != nil {
			return a, a.fail(err)
		}
		a.loading = true
		api, ctx := a.api, a.ctx
		period := periodLabel(year, month)
		return a, func() tea.Msg {
			rows, err := api.MonthlyReport(ctx, year, month)
			return previewMsg{period: period, rows: rows, err: err}
		}
	case "ctrl+s":
		year, month, err := parsePeriod(a.closeForm.Value(closeYear), a.closeForm.Value(closeMonth))
		if err != nil {
			return a, a.fail(err)
		}
		if a.previewPeriod != periodLabel(year, month) {
			return a, a.fail(errors.New("preview the month with enter before closing it"))
		}
		a.confirmClose = true
	default:
		a.closeForm.HandleKey(key)
	}
	return a, nil
}

func periodLabel(year, month int) string {
	return fmt.Sprintf("%04d-%02d", year, month)
}

// refresh reloads the cache. It runs after login and after every mutation.
func (a *App) refresh() tea.Cmd {
	a.loading = true
	api, ctx, today := a.api, a.ctx, a.today()
	return func() tea.Msg {
		meds, err := api.ListMedicines(ctx, "")
		if err != nil {
			return dataMsg{err: err}
		}
		page, err := api.ListTransactions(ctx, client.TransactionQuery{Limit: recentTransactions})
		if err != nil {
			return dataMsg{err: err}
		}
		types, err := api.ListTransactionTypes(ctx)
		if err != nil {
			return dataMsg{err: err}
		}
		daily, err := api.DailyReport(ctx, today)
		if err != nil {
			return dataMsg{err: err}
		}
		return dataMsg{medicines: meds, transactions: page.Items, types: types, today: daily}
	}
}

func (a *App) mutate(notice string, onSuccess func(), call func() error) tea.Cmd {
	return func() tea.Msg {
		return mutationMsg{notice: notice, onSuccess: onSuccess, err: call()}
	}
}

func (a *App) logout() tea.Cmd {
	api, ctx := a.api, a.ctx
	return func() tea.Msg {
		return logoutMsg{err: api.Logout(ctx)}
	}
}

func (a *App) syncTypeOptions() {
	a.stockIn.SetOptions(txnType, typeCodes(a.state.StockInTypes()))
	a.dispense.SetOptions(txnType, typeCodes(a.state.DispenseTypes()))
}

func typeCodes(types []client.TransactionType) []string {
	out := make([]string, len(types))
	for i, t := range types {
		out[i] = t.Code
	}
	return out
}

func (a *App) clampCursors() {
	if n := len(a.visibleMedicines()); a.medCursor >= n {
		a.medCursor = max(n-1, 0)
	}
	for _, tab := range []Tab{TabStockIn, TabDispense} {
		f := a.stockIn
		if tab == TabDispense {
			f = a.dispense
		}
		if n := len(a.matches(f)); a.pick[tab] >= n {
			a.pick[tab] = max(n-1, 0)
		}
	}
}

// fail shows err as an error toast. An expired session drops back to login.
func (a *App) fail(err error) tea.Cmd {
	a.loading = false
	if errors.Is(err, client.ErrUnauthorized) {
		a.state.Reset()
		return a.notify(toastError, "Session expired, please log in again")
	}
	return a.notify(toastError, errorText(err))
}

func (a *App) notify(level toastLevel, text string) tea.Cmd {
	a.nextToast++
	id := a.nextToast
	a.toasts = append(a.toasts, toast{id: id, level: level, text: text})
	if len(a.toasts) > maxToasts {
		a.toasts = a.toasts[len(a.toasts)-maxToasts:]
	}
	return tea.Tick(a.toastTTL, func(time.Time) tea.Msg {
		return toastExpiredMsg{id: id}
	})
}

func errorText(err error) string {
	var apiErr *client.APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	return err.Error()
}

func displayName(u client.User) string {
	if u.Name != "" {
		return u.Name
	}
	return u.Username
}
