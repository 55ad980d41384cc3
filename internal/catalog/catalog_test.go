package catalog

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kalyxon/progress-server/internal/model"
)

func TestDefault(t *testing.T) {
	c, err := Default()
	require.NoError(t, err)

	assert.Equal(t, 7, c.Len())

	arrays, ok := c.Get("dsa-arrays")
	require.True(t, ok)
	assert.Equal(t, "DSA", arrays.Category)
	assert.Equal(t, "Beginner", arrays.Difficulty)
	assert.Contains(t, arrays.Content, "# Arrays")

	assert.Equal(t, []Category{{Name: "DSA", Count: 4}, {Name: "C++", Count: 3}}, c.Categories())
}

func TestLoad_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	doc := `
tutorials:
  - id: go-intro
    title: Go
    category: Go
    difficulty: Beginner
`
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o600))

	c, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, []model.Tutorial{{ID: "go-intro", Title: "Go", Category: "Go", Difficulty: "Beginner"}}, c.All())
}

func TestLoad_EmptyPathUsesDefault(t *testing.T) {
	c, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 7, c.Len())
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read catalog")
}

func TestNew_Validation(t *testing.T) {
	tests := []struct {
		name      string
		tutorials []model.Tutorial
		wantErr   string
	}{
		{
			name:      "invalid id",
			tutorials: []model.Tutorial{{ID: "a b", Category: "X"}},
			wantErr:   "invalid tutorial id",
		},
		{
			name:      "missing category",
			tutorials: []model.Tutorial{{ID: "a"}},
			wantErr:   "has no category",
		},
		{
			name:      "duplicate id",
			tutorials: []model.Tutorial{{ID: "a", Category: "X"}, {ID: "a", Category: "Y"}},
			wantErr:   "duplicate tutorial id",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.tutorials)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestParse_InvalidYAML(t *testing.T) {
	_, err := Parse([]byte("tutorials: [\n"))
	assert.Error(t, err)
}

func TestCatalog_AllReturnsCopy(t *testing.T) {
	c, err := New([]model.Tutorial{{ID: "a", Category: "X"}})
	require.NoError(t, err)

	all := c.All()
	all[0].Title = "changed"

	got, _ := c.Get("a")
	assert.Empty(t, got.Title)
}
