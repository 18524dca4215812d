package worklist

import (
	"encoding/csv"
	"io"
	"os"
	"strings"

	"sleeve/internal/services"
	"sleeve/internal/textutil"
)

// Row is one album entry from the worklist. Index is the 1-based position
// in the file, stable across runs of the same file. Year is zero when the
// column is absent or unparseable.
type Row struct {
	Index  int
	Genre  string
	Artist string
	Album  string
	Year   int
	Note   string
}

// columnAliases maps normalized header names to canonical columns. The
// worklists in circulation are inconsistent about header wording.
var columnAliases = map[string]string{
	"genre":         "genre",
	"artist":        "artist",
	"band":          "artist",
	"album":         "album",
	"release":       "album",
	"year":          "year",
	"date":          "year",
	"note":          "note",
	"notes":         "note",
	"why it scales": "note",
}

// Read parses the worklist from r. The first record is the header; rows
// missing both artist and album are dropped. limit caps the number of rows
// returned, with zero meaning no cap.
func Read(r io.Reader, limit int) ([]Row, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err == io.EOF {
		return nil, nil
	}
	if err != nil {
		return nil, services.Wrap(services.ErrParse, "worklist", "read", "reading header", err)
	}

	columns := make(map[int]string, len(header))
	for i, name := range header {
		normalized := strings.ToLower(strings.TrimSpace(name))
		if canonical, ok := columnAliases[normalized]; ok {
			columns[i] = canonical
		}
	}
	if !hasColumn(columns, "artist") || !hasColumn(columns, "album") {
		return nil, services.Wrap(services.ErrParse, "worklist", "read", "header is missing artist or album column", nil)
	}

	var rows []Row
	index := 0
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, services.Wrap(services.ErrParse, "worklist", "read", "reading record", err)
		}
		index++

		row := Row{Index: index}
		for i, value := range record {
			value = strings.TrimSpace(value)
			switch columns[i] {
			case "genre":
				row.Genre = value
			case "artist":
				row.Artist = value
			case "album":
				row.Album = value
			case "year":
				row.Year, _ = textutil.ParseYear(value)
			case "note":
				row.Note = value
			}
		}
		if row.Artist == "" && row.Album == "" {
			continue
		}
		rows = append(rows, row)
		if limit > 0 && len(rows) >= limit {
			break
		}
	}
	return rows, nil
}

// ReadFile opens path and reads its worklist.
func ReadFile(path string, limit int) ([]Row, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "worklist", "read", "opening worklist", err)
	}
	defer file.Close()
	return Read(file, limit)
}

func hasColumn(columns map[int]string, name string) bool {
	for _, canonical := range columns {
		if canonical == name {
			return true
		}
	}
	return false
}
