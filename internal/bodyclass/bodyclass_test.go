package bodyclass

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/vk/assetgrid/internal/gate"
	"github.com/vk/assetgrid/internal/snapshot"
)

func objectClass(c *snapshot.Context) []string {
	object := c.Query("object")
	if object == "" {
		return nil
	}
	if object == "shop_coupon" {
		object = "coupon"
	}
	return []string{"wcvendors-dashboard-" + object + "-page"}
}

var rules = []Rule{
	static(gate.Page("dashboard", "feedback"), "wcvendors wcvendors-pro wcvendors-page"),
	static(gate.Page("dashboard"), "wcvendors-pro-dashboard wcvendors-is-single"),
	static(gate.Page("dashboard"), "wcvendors-pro"),
	static(gate.OptionMatchesPage("wcvendors_feedback_page_id"), "wcv-ratings-page"),
	{Classes: objectClass},
	{Gate: gate.Never(), Classes: func(*snapshot.Context) []string { panic("gated out rules are not evaluated") }},
}

func TestEvaluate(t *testing.T) {
	testCases := []struct {
		name string
		in   snapshot.Input
		want []string
	}{
		{
			name: "dashboard with coupon object",
			in:   snapshot.Input{Page: "dashboard", Query: map[string]string{"object": "shop_coupon"}},
			want: []string{
				"wcvendors", "wcvendors-pro", "wcvendors-page",
				"wcvendors-pro-dashboard", "wcvendors-is-single",
				"wcvendors-dashboard-coupon-page",
			},
		},
		{
			name: "feedback page by id",
			in: snapshot.Input{
				Page:    "feedback",
				PageID:  "42",
				Options: map[string]any{"wcvendors_feedback_page_id": 42},
			},
			want: []string{"wcvendors", "wcvendors-pro", "wcvendors-page", "wcv-ratings-page"},
		},
		{
			name: "unrelated page",
			in:   snapshot.Input{Page: "shop"},
			want: []string{},
		},
		{
			name: "not found page",
			in:   snapshot.Input{Page: NotFoundPage, Query: map[string]string{"object": "product"}},
			want: nil,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := Evaluate(snapshot.New(tc.in), rules...)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestEvaluate_DropsEmpty(t *testing.T) {
	got := Evaluate(nil,
		Rule{Classes: func(*snapshot.Context) []string { return []string{"", "  ", "a"} }},
		Rule{Classes: nil},
	)
	assert.Equal(t, []string{"a"}, got)
}

// static returns a rule with a fixed class list.
func static(g gate.Gate, classes ...string) Rule {
	return Rule{
		Gate:    g,
		Classes: func(*snapshot.Context) []string { return classes },
	}
}
