package routing

import (
	"regexp"
	"slices"
	"strconv"
	"strings"
)

// These helpers serve the settings screens and CLI. The decision path never calls them.

var clockPattern = regexp.MustCompile(`^([01][0-9]|2[0-3]):[0-5][0-9]$`)

var dayNames = [...]string{"", "Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday"}

// ValidationResult is returned instead of an error so a form can show the reason inline.
type ValidationResult struct {
	IsValid bool   `json:"is_valid"`
	Error   string `json:"error,omitempty"`
}

// FormatBusinessDays renders days as a sorted comma-separated list, e.g. "1,2,3,4,5".
func FormatBusinessDays(days []int) string {
	sorted := slices.Clone(days)
	slices.Sort(sorted)
	parts := make([]string, len(sorted))
	for i, d := range sorted {
		parts[i] = strconv.Itoa(d)
	}
	return strings.Join(parts, ",")
}

// ParseBusinessDays parses a comma-separated list. Values that are not integers in 1..7 are dropped.
func ParseBusinessDays(v string) []int {
	out := []int{}
	for _, p := range strings.Split(v, ",") {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil || !validDay(n) {
			continue
		}
		out = append(out, n)
	}
	slices.Sort(out)
	return out
}

// DayNames renders days as English weekday names, e.g. "Monday, Tuesday".
func DayNames(days []int) string {
	sorted := slices.Clone(days)
	slices.Sort(sorted)
	names := make([]string, 0, len(sorted))
	for _, d := range sorted {
		if validDay(d) {
			names = append(names, dayNames[d])
		}
	}
	return strings.Join(names, ", ")
}

// ValidateBusinessHours checks a business hours configuration and reports the first problem found.
func ValidateBusinessHours(start, end string, days []int) ValidationResult {
	if !clockPattern.MatchString(start) {
		return invalid("Start time must be in HH:MM format (00:00 to 23:59)")
	}
	if !clockPattern.MatchString(end) {
		return invalid("End time must be in HH:MM format (00:00 to 23:59)")
	}
	// Zero-padded HH:MM compares correctly as a string.
	if start >= end {
		return invalid("Start time must be before end time")
	}
	if len(days) == 0 {
		return invalid("At least one business day must be selected")
	}
	for _, d := range days {
		if !validDay(d) {
			return invalid("Business days must be between 1 (Monday) and 7 (Sunday)")
		}
	}
	return ValidationResult{IsValid: true}
}

func invalid(msg string) ValidationResult {
	return ValidationResult{IsValid: false, Error: msg}
}
