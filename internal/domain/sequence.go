package domain

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// YearPlaceholder is the token in a counter prefix that is replaced by
// the current four-digit year when a number is formatted.
const YearPlaceholder = "{YYYY}"

// DefaultPadLength is the zero-padding applied to counters created
// lazily on first use.
const DefaultPadLength = 4

// EntityTypeMember is the counter key for member numbers.
const EntityTypeMember = "member"

// SequenceCounter generates formatted identifiers for one entity type
// within one club (e.g. member numbers). CurrentValue is advanced only
// through the atomic sequence store operation; UpdatedAt records the
// last advance and drives the year-reset decision.
type SequenceCounter struct {
	ClubID       string
	EntityType   string
	Prefix       string
	PadLength    int
	CurrentValue int64
	YearReset    bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// NextValue computes the counter value the next generated number gets.
// A year-resetting counter whose prefix carries the year placeholder
// starts over at 1 when the calendar year has rolled over since the
// last advance. A counter that has never been used always starts at 1.
func (c SequenceCounter) NextValue(now time.Time) int64 {
	if c.YearReset &&
		strings.Contains(c.Prefix, YearPlaceholder) &&
		c.CurrentValue > 0 &&
		c.UpdatedAt.Year() != now.Year() {
		return 1
	}
	return c.CurrentValue + 1
}

// FormatSequence composes a formatted sequence number: the prefix with
// the year placeholder resolved, followed by the zero-padded value.
// next() and the UI preview share this single formatter.
func FormatSequence(prefix string, value int64, padLength int, year int) string {
	if padLength < 1 {
		padLength = 1
	}
	resolved := strings.ReplaceAll(prefix, YearPlaceholder, strconv.Itoa(year))
	return resolved + fmt.Sprintf("%0*d", padLength, value)
}

// Format renders the given value with the counter's own prefix and
// padding.
func (c SequenceCounter) Format(value int64, now time.Time) string {
	return FormatSequence(c.Prefix, value, c.PadLength, now.Year())
}
