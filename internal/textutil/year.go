package textutil

import (
	"regexp"
	"strconv"
	"strings"
)

// leadingYearPattern matches a four-digit run at the start of a date string.
var leadingYearPattern = regexp.MustCompile(`^(\d{4})`)

// ParseYear extracts a release year from a free-form date string such as
// "1997-05-21" or "1997". Only a leading four-digit run is considered;
// anything else returns (0, false). Multi-date strings are not disambiguated
// beyond the leading run.
func ParseYear(date string) (int, bool) {
	date = strings.TrimSpace(date)
	if date == "" {
		return 0, false
	}
	match := leadingYearPattern.FindStringSubmatch(date)
	if match == nil {
		return 0, false
	}
	year, err := strconv.Atoi(match[1])
	if err != nil {
		return 0, false
	}
	return year, true
}
