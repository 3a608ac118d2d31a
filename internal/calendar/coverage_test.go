package calendar

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPlan(t *testing.T) {
	g := &Generator{Start: date(t, "2020-01-01"), RowCount: 366}

	tests := []struct {
		name        string
		watermark   Watermark
		wantDays    int
		wantTo      string
		truncated   bool
		missingDays int64
	}{
		{name: "undefined", watermark: Undefined()},
		{name: "before start", watermark: At(date(t, "2019-06-01"))},
		{name: "inside", watermark: At(date(t, "2020-02-29")), wantDays: 60, wantTo: "2020-02-29"},
		{name: "at horizon", watermark: At(date(t, "2020-12-31")), wantDays: 366, wantTo: "2020-12-31"},
		{
			name:        "past horizon",
			watermark:   At(date(t, "2021-01-31")),
			wantDays:    366,
			wantTo:      "2020-12-31",
			truncated:   true,
			missingDays: 31,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cov := g.Plan(tt.watermark)

			assert.Equal(t, date(t, "2020-12-31"), cov.Horizon)
			assert.Equal(t, tt.wantDays, cov.Days)
			assert.Equal(t, tt.truncated, cov.Truncated)
			assert.Equal(t, tt.missingDays, cov.MissingDays)
			if tt.wantTo != "" {
				assert.Equal(t, tt.wantTo, cov.To.Format(DateLayout))
				assert.Equal(t, g.Start, cov.From)
			} else {
				assert.True(t, cov.To.IsZero())
			}
		})
	}
}

func TestPlan_MatchesGenerate(t *testing.T) {
	g := &Generator{Start: date(t, "2024-12-01"), RowCount: 45}
	for _, wm := range []Watermark{Undefined(), At(date(t, "2024-11-30")), At(date(t, "2024-12-24")), At(date(t, "2025-03-01"))} {
		assert.Equal(t, g.Plan(wm).Days, len(g.Generate(wm).Rows), wm.String())
	}
}

func TestPlan_NonPositiveRowCount(t *testing.T) {
	g := &Generator{Start: date(t, "2020-01-01"), RowCount: 0}
	cov := g.Plan(At(date(t, "2020-06-01")))

	assert.True(t, cov.Empty())
	assert.True(t, cov.Horizon.IsZero())
	assert.Empty(t, g.Generate(At(date(t, "2020-06-01"))).Rows)
}

func TestCoverage_String(t *testing.T) {
	g := &Generator{Start: date(t, "2025-01-01"), RowCount: 5}

	assert.Equal(t, "2025-01-01..2025-01-03 (3 days)", g.Plan(At(date(t, "2025-01-03"))).String())
	assert.Equal(t,
		"2025-01-01..2025-01-05 (5 days), truncated at horizon 2025-01-05, 5 days short of watermark 2025-01-10",
		g.Plan(At(date(t, "2025-01-10"))).String())
	assert.Equal(t, "no days (start 2025-01-01, watermark none)", g.Plan(Undefined()).String())
}

func TestCoverage_JSON(t *testing.T) {
	g := &Generator{Start: date(t, "2025-01-01"), RowCount: 5}

	data, err := json.Marshal(g.Plan(Undefined()))
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Nil(t, decoded["watermark"])
	assert.NotContains(t, decoded, "from")

	data, err = json.Marshal(g.Plan(At(date(t, "2025-01-03"))))
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, "2025-01-03", decoded["watermark"])
	assert.InDelta(t, 3, decoded["days"], 0)
}
