package queue

import (
	"fmt"
	"strings"
	"time"
)

// Status is the lifecycle state of a worklist row.
type Status string

const (
	StatusPending   Status = "pending"
	StatusSearching Status = "searching"
	StatusResolved  Status = "resolved"
	StatusSaved     Status = "saved"
	StatusExists    Status = "exists"
	StatusSkipped   Status = "skipped"
	StatusNotFound  Status = "not_found"
	StatusFailed    Status = "failed"
)

var allStatuses = []Status{
	StatusPending,
	StatusSearching,
	StatusResolved,
	StatusSaved,
	StatusExists,
	StatusSkipped,
	StatusNotFound,
	StatusFailed,
}

var statusSet = func() map[Status]struct{} {
	set := make(map[Status]struct{}, len(allStatuses))
	for _, status := range allStatuses {
		set[status] = struct{}{}
	}
	return set
}()

// RedoableStatuses are the terminal states a redo run picks up again.
var RedoableStatuses = []Status{StatusFailed, StatusSkipped, StatusNotFound}

// ParseStatus validates a status string from user input or storage.
func ParseStatus(raw string) (Status, error) {
	status := Status(strings.ToLower(strings.TrimSpace(raw)))
	if _, ok := statusSet[status]; !ok {
		return "", fmt.Errorf("unknown status %q", raw)
	}
	return status, nil
}

// Terminal reports whether the status ends processing for the row.
func (s Status) Terminal() bool {
	switch s {
	case StatusSaved, StatusExists, StatusSkipped, StatusNotFound, StatusFailed:
		return true
	}
	return false
}

// Item is one worklist row and its processing state.
type Item struct {
	ID           int64
	RowIndex     int
	Genre        string
	Artist       string
	Album        string
	Year         int
	Status       Status
	ImageURL     string
	SavedPath    string
	ErrorMessage string
	RunID        string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Label is a short human-readable identifier for log lines and tables.
func (i *Item) Label() string {
	switch {
	case i.Artist != "" && i.Album != "":
		return i.Artist + " - " + i.Album
	case i.Album != "":
		return i.Album
	default:
		return i.Artist
	}
}
