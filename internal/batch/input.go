package batch

import (
	"encoding/csv"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"
	"gopkg.in/yaml.v3"

	"github.com/sells-group/audit-cli/internal/model"
)

// InputEntry is one row of a batch input file. Only the URL is required;
// per-entry overrides fall back to the batch-wide defaults.
type InputEntry struct {
	URL   string `yaml:"url"`
	Depth int    `yaml:"depth,omitempty"`
}

// LoadInput reads a batch input file. The format is chosen by extension:
// .csv, .xlsx, .yaml/.yml, and anything else as a plain URL-per-line
// list. Blank lines and #-comments are skipped.
func LoadInput(path string) ([]InputEntry, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return loadCSV(path)
	case ".xlsx":
		return loadXLSX(path)
	case ".yaml", ".yml":
		return loadYAML(path)
	default:
		return loadLines(path)
	}
}

// Items converts input entries to orchestrator items, applying the
// request template to every entry.
func Items(entries []InputEntry, template model.AnalysisRequest) []*Item {
	items := make([]*Item, 0, len(entries))
	for _, entry := range entries {
		req := template
		req.URL = entry.URL
		if entry.Depth > 0 {
			req.Depth = model.DepthTier(entry.Depth)
		}
		items = append(items, &Item{Request: req})
	}
	return items
}

func loadCSV(path string) ([]InputEntry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrap(err, "batch: open input")
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1
	reader.Comment = '#'

	var entries []InputEntry
	urlCol := 0
	first := true
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, eris.Wrap(err, "batch: read csv row")
		}
		if len(record) == 0 {
			continue
		}

		// A header row names the URL column; without one the first
		// column is assumed.
		if first {
			first = false
			if col, ok := findURLColumn(record); ok {
				urlCol = col
				continue
			}
		}
		if urlCol >= len(record) {
			continue
		}
		if url := strings.TrimSpace(record[urlCol]); url != "" {
			entries = append(entries, InputEntry{URL: url})
		}
	}
	return entries, nil
}

func findURLColumn(header []string) (int, bool) {
	for i, name := range header {
		switch strings.ToLower(strings.TrimSpace(name)) {
		case "url", "website", "site", "domain":
			return i, true
		}
	}
	return 0, false
}

func loadXLSX(path string) ([]InputEntry, error) {
	f, err := xlsx.OpenFile(path)
	if err != nil {
		return nil, eris.Wrap(err, "batch: open xlsx")
	}
	if len(f.Sheets) == 0 {
		return nil, eris.New("batch: xlsx has no sheets")
	}

	var entries []InputEntry
	urlCol := 0
	for i, row := range f.Sheets[0].Rows {
		cells := make([]string, len(row.Cells))
		for j, cell := range row.Cells {
			cells[j] = cell.String()
		}
		if i == 0 {
			if col, ok := findURLColumn(cells); ok {
				urlCol = col
				continue
			}
		}
		if urlCol >= len(cells) {
			continue
		}
		if url := strings.TrimSpace(cells[urlCol]); url != "" {
			entries = append(entries, InputEntry{URL: url})
		}
	}
	return entries, nil
}

func loadYAML(path string) ([]InputEntry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrap(err, "batch: read input")
	}

	// Either a list of bare URLs or a list of entry objects.
	var entries []InputEntry
	if err := yaml.Unmarshal(data, &entries); err == nil && validEntries(entries) {
		return entries, nil
	}

	var urls []string
	if err := yaml.Unmarshal(data, &urls); err != nil {
		return nil, eris.Wrap(err, "batch: parse yaml input")
	}
	for _, url := range urls {
		if url = strings.TrimSpace(url); url != "" {
			entries = append(entries, InputEntry{URL: url})
		}
	}
	return entries, nil
}

func validEntries(entries []InputEntry) bool {
	if len(entries) == 0 {
		return false
	}
	for _, entry := range entries {
		if entry.URL == "" {
			return false
		}
	}
	return true
}

func loadLines(path string) ([]InputEntry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrap(err, "batch: read input")
	}

	var entries []InputEntry
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		entries = append(entries, InputEntry{URL: line})
	}
	return entries, nil
}
