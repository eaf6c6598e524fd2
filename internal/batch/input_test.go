package batch

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tealeg/xlsx/v2"

	"github.com/sells-group/audit-cli/internal/model"
)

func writeInput(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadInputCSVWithHeader(t *testing.T) {
	t.Parallel()

	path := writeInput(t, "sites.csv", "company,website,notes\nAcme,https://acme.com,widgets\nBeta,https://beta.io,\n")
	entries, err := LoadInput(path)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "https://acme.com", entries[0].URL)
	assert.Equal(t, "https://beta.io", entries[1].URL)
}

func TestLoadInputCSVWithoutHeader(t *testing.T) {
	t.Parallel()

	path := writeInput(t, "sites.csv", "https://acme.com\nhttps://beta.io\n")
	entries, err := LoadInput(path)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "https://acme.com", entries[0].URL)
}

func TestLoadInputPlainLines(t *testing.T) {
	t.Parallel()

	path := writeInput(t, "sites.txt", "# batch of 2026-08-20\nhttps://acme.com\n\nhttps://beta.io\n")
	entries, err := LoadInput(path)
	require.NoError(t, err)
	require.Len(t, entries, 2)
}

func TestLoadInputYAMLEntries(t *testing.T) {
	t.Parallel()

	path := writeInput(t, "sites.yaml", "- url: https://acme.com\n  depth: 10\n- url: https://beta.io\n")
	entries, err := LoadInput(path)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, 10, entries[0].Depth)
	assert.Zero(t, entries[1].Depth)
}

func TestLoadInputYAMLBareURLs(t *testing.T) {
	t.Parallel()

	path := writeInput(t, "sites.yml", "- https://acme.com\n- https://beta.io\n")
	entries, err := LoadInput(path)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "https://beta.io", entries[1].URL)
}

func TestLoadInputXLSX(t *testing.T) {
	t.Parallel()

	f := xlsx.NewFile()
	sheet, err := f.AddSheet("Sites")
	require.NoError(t, err)
	for _, rowData := range [][]string{
		{"Company", "URL"},
		{"Acme", "https://acme.com"},
		{"Beta", "https://beta.io"},
	} {
		row := sheet.AddRow()
		for _, cellData := range rowData {
			row.AddCell().SetString(cellData)
		}
	}
	path := filepath.Join(t.TempDir(), "sites.xlsx")
	require.NoError(t, f.Save(path))

	entries, err := LoadInput(path)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "https://acme.com", entries[0].URL)
}

func TestItemsAppliesTemplate(t *testing.T) {
	t.Parallel()

	template := model.AnalysisRequest{
		Modules: model.AllModules(),
		Depth:   model.DepthStandard,
		Models:  model.ModelSelection{TextModel: "claude-sonnet-4-5-20250929"},
	}
	items := Items([]InputEntry{
		{URL: "https://acme.com"},
		{URL: "https://beta.io", Depth: 10},
	}, template)

	require.Len(t, items, 2)
	assert.Equal(t, "https://acme.com", items[0].Request.URL)
	assert.Equal(t, model.DepthStandard, items[0].Request.Depth)
	assert.Equal(t, model.DepthTier(10), items[1].Request.Depth)
	assert.True(t, items[1].Request.Modules.Visual)
	assert.Equal(t, "claude-sonnet-4-5-20250929", items[1].Request.Models.TextModel)
}
