package chart

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mortrend/internal/dataset"
)

// TestRenderTrend tests that a combined table renders to a non-empty PNG
func TestRenderTrend(t *testing.T) {
	table := dataset.Table{
		{Category: "a", PopSize: dataset.LargeMetro, Year: 2019, Value: 200, Provenance: dataset.Actual},
		{Category: "a", PopSize: dataset.LargeMetro, Year: 2020, Value: 210, Provenance: dataset.Actual},
		{Category: "a", PopSize: dataset.LargeMetro, Year: 2023, Value: 240, Provenance: dataset.Predicted},
		{Category: "a", PopSize: dataset.Rural, Year: 2019, Value: 300, Provenance: dataset.Actual},
		{Category: "a", PopSize: dataset.Rural, Year: 2020, Value: 310, Provenance: dataset.Actual},
		{Category: "a", PopSize: dataset.Rural, Year: 2023, Value: 340, Provenance: dataset.Predicted},
	}

	path := filepath.Join(t.TempDir(), "trend.png")
	require.NoError(t, RenderTrend(path, table, "test chart"))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(0))
}

func TestRenderTrendEmpty(t *testing.T) {
	err := RenderTrend(filepath.Join(t.TempDir(), "empty.png"), nil, "empty")
	assert.Error(t, err)
}
