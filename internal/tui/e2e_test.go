package tui

import (
	"bytes"
	"context"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/x/exp/teatest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newE2EApp returns a dashboard that runs inside a real bubbletea program,
// so its session is resumed through Init rather than preloaded.
func newE2EApp(api *fakeAPI) *App {
	a := New(context.Background(), api, 10)
	a.now = func() time.Time { return time.Date(2026, 10, 15, 9, 30, 0, 0, time.UTC) }
	a.resetPeriods()
	a.toastTTL = 50 * time.Millisecond
	return a
}

func waitFor(t *testing.T, tm *teatest.TestModel, text string) {
	t.Helper()
	teatest.WaitFor(t, tm.Output(), func(bts []byte) bool {
		return bytes.Contains(bts, []byte(text))
	}, teatest.WithDuration(5*time.Second))
}

func TestE2E_ResumedSessionShowsDashboard(t *testing.T) {
	tm := teatest.NewTestModel(t, newE2EApp(seededAPI()), teatest.WithInitialTermSize(120, 40))
	t.Cleanup(func() { _ = tm.Quit() })

	waitFor(t, tm, "running low")

	tm.Send(tea.KeyMsg{Type: tea.KeyF2})
	waitFor(t, tm, "Salbutamol")
}

func TestE2E_LoginAndDispense(t *testing.T) {
	api := seededAPI()
	api.authed = false
	tm := teatest.NewTestModel(t, newE2EApp(api), teatest.WithInitialTermSize(120, 40))

	waitFor(t, tm, "sign in")
	tm.Type("admin")
	tm.Send(tea.KeyMsg{Type: tea.KeyTab})
	tm.Type("secret")
	tm.Send(tea.KeyMsg{Type: tea.KeyEnter})
	waitFor(t, tm, "Welcome, Admin")

	tm.Send(tea.KeyMsg{Type: tea.KeyF4})
	waitFor(t, tm, "available: 40")
	tm.Send(tea.KeyMsg{Type: tea.KeyTab})
	tm.Send(tea.KeyMsg{Type: tea.KeyTab})
	tm.Type("3")
	tm.Send(tea.KeyMsg{Type: tea.KeyEnter})
	waitFor(t, tm, "Dispensed 3 tablet of Paracetamol")

	tm.Send(tea.KeyMsg{Type: tea.KeyCtrlC})
	m := tm.FinalModel(t, teatest.WithFinalTimeout(5*time.Second))
	app, ok := m.(*App)
	require.True(t, ok)
	assert.True(t, app.quitting)
	require.Len(t, api.created, 1)
	assert.Equal(t, "m1", api.created[0].MedicineID)
}
