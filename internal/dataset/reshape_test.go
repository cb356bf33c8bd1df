package dataset

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func wideFixture() WideTable {
	return WideTable{Rows: []WideRow{
		{
			Category: "Drug overdose",
			PopSize:  "Rural",
			Cells:    map[int]string{2020: "300 (CI 290-310)", 2021: "310 (CI 300-320)"},
		},
		{
			Category: "Drug overdose",
			PopSize:  "Large Metro",
			Cells:    map[int]string{2020: "250", 2021: "255.5"},
		},
		{
			Category: "Drug overdose",
			PopSize:  "Suppressed",
			Cells:    map[int]string{2020: "1", 2021: "2"},
		},
	}}
}

// TestReshape tests wide-to-long conversion with category filtering
func TestReshape(t *testing.T) {
	t.Run("retained rows contribute one record per year column", func(t *testing.T) {
		table, err := Reshape(wideFixture(), []int{2020, 2021}, DefaultCategories())
		require.NoError(t, err)

		// 2 allowed rows x 2 year columns; the unknown label is dropped silently
		require.Len(t, table, 4)
		for _, r := range table {
			assert.Equal(t, Actual, r.Provenance)
			assert.Equal(t, "Drug overdose", r.Category)
		}

		assert.Equal(t, Record{"Drug overdose", Rural, 2020, 300, Actual}, table[0])
		assert.Equal(t, Record{"Drug overdose", Rural, 2021, 310, Actual}, table[1])
		assert.Equal(t, Record{"Drug overdose", LargeMetro, 2020, 250, Actual}, table[2])
		assert.Equal(t, Record{"Drug overdose", LargeMetro, 2021, 255.5, Actual}, table[3])
	})

	t.Run("stable order across runs", func(t *testing.T) {
		first, err := Reshape(wideFixture(), []int{2020, 2021}, DefaultCategories())
		require.NoError(t, err)
		second, err := Reshape(wideFixture(), []int{2020, 2021}, DefaultCategories())
		require.NoError(t, err)
		assert.Equal(t, first, second)
	})

	t.Run("allowed set is explicit configuration", func(t *testing.T) {
		table, err := Reshape(wideFixture(), []int{2020, 2021}, NewCategorySet("Rural"))
		require.NoError(t, err)
		require.Len(t, table, 2)
		assert.Equal(t, Rural, table[0].PopSize)
	})

	t.Run("parse failure surfaces cell context", func(t *testing.T) {
		wide := WideTable{Rows: []WideRow{
			{Category: "c", PopSize: "Rural", Cells: map[int]string{2020: "not a rate"}},
		}}
		_, err := Reshape(wide, []int{2020}, DefaultCategories())
		require.Error(t, err)

		var perr *ParseError
		require.ErrorAs(t, err, &perr)
		assert.Equal(t, 0, perr.Row)
		assert.Equal(t, 2020, perr.Year)
		assert.Equal(t, "not a rate", perr.Raw)
	})

	t.Run("negative rate rejected", func(t *testing.T) {
		wide := WideTable{Rows: []WideRow{
			{Category: "c", PopSize: "Rural", Cells: map[int]string{2020: "-4.2"}},
		}}
		_, err := Reshape(wide, []int{2020}, DefaultCategories())

		var perr *ParseError
		require.ErrorAs(t, err, &perr)
		assert.Equal(t, "-4.2", perr.Raw)
	})

	t.Run("no year columns is an error", func(t *testing.T) {
		_, err := Reshape(wideFixture(), nil, DefaultCategories())
		assert.Error(t, err)
	})

	t.Run("missing cells are skipped, not invented", func(t *testing.T) {
		wide := WideTable{Rows: []WideRow{
			{Category: "c", PopSize: "Rural", Cells: map[int]string{2020: "300"}},
		}}
		table, err := Reshape(wide, []int{2020, 2021}, DefaultCategories())
		require.NoError(t, err)
		require.Len(t, table, 1)
		assert.Equal(t, 2020, table[0].Year)
	})
}

// TestParsePopSize tests the label mapping used for filtering
func TestParsePopSize(t *testing.T) {
	tests := []struct {
		label string
		want  PopSize
		ok    bool
	}{
		{"overall", Overall, true},
		{"Large Metro", LargeMetro, true},
		{"Small/Medium Metro", SmallMediumMetro, true},
		{"Rural", Rural, true},
		{"Suburban", 0, false},
		{"rural", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.label, func(t *testing.T) {
			got, ok := ParsePopSize(tt.label)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.want, got)
				assert.Equal(t, tt.label, got.String())
			}
		})
	}
}
