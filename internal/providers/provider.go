package providers

import (
	"context"
	"strconv"
	"strings"
)

// Query is the search input for one resolution round. Year is zero when
// unknown. A retry decision replaces the whole value.
type Query struct {
	Artist string
	Album  string
	Year   int
}

// Term joins artist and album into the free-text search term most catalogs
// expect.
func (q Query) Term() string {
	return strings.TrimSpace(strings.TrimSpace(q.Artist) + " " + strings.TrimSpace(q.Album))
}

// YearLabel renders the query year for filenames and display, "NA" when
// unknown.
func (q Query) YearLabel() string {
	if q.Year == 0 {
		return "NA"
	}
	return strconv.Itoa(q.Year)
}

// String renders the query for log lines.
func (q Query) String() string {
	return q.Artist + " - " + q.Album + " (" + q.YearLabel() + ")"
}

// Candidate is one discovered cover-art result. ImageURL points at the
// full-resolution image; ThumbURL may coincide with it. Title, Artist, and
// Year are provider-reported and may be absent.
type Candidate struct {
	Provider string
	ImageURL string
	ThumbURL string
	Title    string
	Artist   string
	Year     int
}

// Provider is the shared adapter capability: search one external source.
// Implementations return an empty slice for "no results" and reserve errors
// for transport or parse failures.
type Provider interface {
	Name() string
	Search(ctx context.Context, query Query, limit int) ([]Candidate, error)
}
