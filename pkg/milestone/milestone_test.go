package milestone

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var catalog, _ = NewCatalog([]Entry{
	{Id: "owl", Name: "Owl", ThresholdHours: 50},
	{Id: "sprout", Name: "Sprout", ThresholdHours: 1},
	{Id: "fox", Name: "Fox", ThresholdHours: 10},
	{Id: "dragon", Name: "Dragon", ThresholdHours: 100.5},
})

func hours(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestNewCatalog(t *testing.T) {
	t.Run("should sort by threshold", func(t *testing.T) {
		ids := make([]string, 0, len(catalog))
		for _, e := range catalog {
			ids = append(ids, e.Id)
		}
		assert.Equal(t, []string{"sprout", "fox", "owl", "dragon"}, ids)
	})

	t.Run("should reject duplicate ids", func(t *testing.T) {
		_, err := NewCatalog([]Entry{{Id: "a", ThresholdHours: 1}, {Id: "a", ThresholdHours: 2}})
		assert.ErrorIs(t, err, ErrInvalidCatalog)
	})
}

func TestEvaluate(t *testing.T) {
	tests := []struct {
		name     string
		hours    string
		shown    []string
		expected string
	}{
		{"nothing reached", "0.7", nil, ""},
		{"exact threshold", "1", nil, "sprout"},
		{"highest reached wins", "55.3", nil, "owl"},
		{"highest already shown", "55.3", []string{"owl"}, ""},
		{"lower unshown entries are not offered", "12", []string{"fox"}, ""},
		{"fractional threshold", "100.5", []string{"owl"}, "dragon"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			entry := Evaluate(hours(tt.hours), catalog, NewShownSet(tt.shown...))

			if tt.expected == "" {
				assert.Nil(t, entry)
			} else {
				require.NotNil(t, entry)
				assert.Equal(t, tt.expected, entry.Id)
			}
		})
	}
}

func TestEvaluate_ShownIsNeverReturnedAgain(t *testing.T) {
	for _, e := range catalog {
		shown := NewShownSet(e.Id)
		for h := decimal.Zero; h.LessThanOrEqual(hours("500")); h = h.Add(hours("0.7")) {
			entry := Evaluate(h, catalog, shown)
			if entry != nil {
				assert.NotEqual(t, e.Id, entry.Id, "returned shown %s at %s hours", e.Id, h)
			}
		}
		assert.Equal(t, []string{e.Id}, shown.IDs(), "evaluate must not modify the set")
	}
}

func TestUnlocked(t *testing.T) {
	unlocked := Unlocked(hours("50"), catalog)

	require.Len(t, unlocked, 3)
	assert.Equal(t, "owl", unlocked[2].Id)
	assert.Empty(t, Unlocked(decimal.Zero, catalog))
}

func TestShownSet(t *testing.T) {
	set := NewShownSet("a", "b", "a")

	assert.True(t, set.Add("c"))
	assert.False(t, set.Add("b"))
	assert.Equal(t, []string{"a", "b", "c"}, set.IDs())

	data, err := json.Marshal(set)
	require.NoError(t, err)
	assert.JSONEq(t, `["a","b","c"]`, string(data))

	decoded := NewShownSet()
	require.NoError(t, json.Unmarshal([]byte(`["x","y","x"]`), decoded))
	assert.Equal(t, []string{"x", "y"}, decoded.IDs())

	var empty *ShownSet
	assert.False(t, empty.Contains("a"))
	assert.Equal(t, []string{"x", "y", "a", "b", "c"}, decoded.Union(set).IDs())
}

func TestLoadCatalog(t *testing.T) {
	t.Run("should read and sort the yaml catalog", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "milestones.yaml")
		content := `milestones:
  - id: scholar
    name: Scholar
    threshold: 25
    description: Twenty-five hours of study
  - id: novice
    name: Novice
    threshold: 2.5
    image: novice.png
`
		require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

		loaded, err := LoadCatalog(path)

		require.NoError(t, err)
		require.Len(t, loaded, 2)
		assert.Equal(t, Entry{Id: "novice", Name: "Novice", ThresholdHours: 2.5, Image: "novice.png"}, loaded[0])
		assert.Equal(t, "Twenty-five hours of study", loaded[1].Description)
	})

	t.Run("should return an empty catalog when the file is missing", func(t *testing.T) {
		loaded, err := LoadCatalog(filepath.Join(t.TempDir(), "missing.yaml"))

		require.NoError(t, err)
		assert.Empty(t, loaded)
	})
}
