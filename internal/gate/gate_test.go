package gate

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/vk/assetgrid/internal/snapshot"
)

func dashboard(loggedIn bool) *snapshot.Context {
	return snapshot.New(snapshot.Input{
		Page:     "dashboard",
		PageID:   "12",
		LoggedIn: loggedIn,
		Options: map[string]any{
			"wcvendors_feedback_page_id":  "40",
			"wcvendors_pro_google_maps":   "api-key",
			"wcvendors_vendor_select":     "yes",
			"wcvendors_dashboard_page_id": 12,
		},
		Flags: map[string]bool{"maps": true},
		Query: map[string]string{"object": "settings"},
	})
}

func TestPrimitives(t *testing.T) {
	c := dashboard(true)

	testCases := []struct {
		name string
		gate Gate
		want bool
	}{
		{name: "always", gate: Always(), want: true},
		{name: "never", gate: Never(), want: false},
		{name: "page match", gate: Page("shop", "dashboard"), want: true},
		{name: "page mismatch", gate: Page("shop"), want: false},
		{name: "logged in", gate: LoggedIn(), want: true},
		{name: "flag set", gate: Flag("maps"), want: true},
		{name: "flag unset", gate: Flag("charts"), want: false},
		{name: "option set", gate: OptionSet("wcvendors_pro_google_maps"), want: true},
		{name: "option unset", gate: OptionSet("missing"), want: false},
		{name: "option equals", gate: OptionEquals("wcvendors_pro_google_maps", "api-key"), want: true},
		{name: "option equals missing", gate: OptionEquals("missing", ""), want: true},
		{name: "option true", gate: OptionTrue("wcvendors_vendor_select"), want: true},
		{name: "option true missing", gate: OptionTrue("missing"), want: false},
		{name: "query equals", gate: QueryEquals("object", "settings"), want: true},
		{name: "query missing", gate: QueryEquals("terms", "1"), want: false},
		{name: "option matches page", gate: OptionMatchesPage("wcvendors_dashboard_page_id"), want: true},
		{name: "option does not match page", gate: OptionMatchesPage("wcvendors_feedback_page_id"), want: false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Eval(tc.gate, c))
		})
	}
}

func TestCombinators(t *testing.T) {
	dashboardUser := And(Page("dashboard"), LoggedIn())

	assert.True(t, Eval(dashboardUser, dashboard(true)))
	assert.False(t, Eval(dashboardUser, dashboard(false)))
	assert.True(t, Eval(Or(Page("shop"), LoggedIn()), dashboard(true)))
	assert.False(t, Eval(Or(Page("shop"), Flag("charts")), dashboard(true)))
	assert.True(t, Eval(Not(LoggedIn()), dashboard(false)))
}

func TestEmptyCombinators(t *testing.T) {
	c := snapshot.Empty()

	assert.True(t, Eval(And(), c))
	assert.False(t, Eval(Or(), c))
}

func TestNilGateIsAlways(t *testing.T) {
	assert.True(t, Eval(nil, snapshot.Empty()))
	assert.False(t, Eval(Not(nil), snapshot.Empty()))
	assert.True(t, Eval(And(nil, Always()), snapshot.Empty()))
}

func TestOptionMatchesPage_EmptyPageIDNeverMatches(t *testing.T) {
	c := snapshot.New(snapshot.Input{Options: map[string]any{"feedback": ""}})
	assert.False(t, Eval(OptionMatchesPage("feedback"), c))
}

func TestAnd_ShortCircuits(t *testing.T) {
	called := false
	probe := func(*snapshot.Context) bool {
		called = true
		return true
	}

	assert.False(t, Eval(And(Never(), probe), snapshot.Empty()))
	assert.False(t, called)
}
