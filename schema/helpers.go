package schema

import (
	"fmt"
	"math"
	"sort"
	"time"
)

// WeekKey returns the ISO year-week bucket key for a timestamp,
// formatted as "YYYY-W##" with the week number padded to two digits.
// The timestamp is normalized to UTC before the week is derived.
func WeekKey(t time.Time) string {
	year, week := t.UTC().ISOWeek()
	return fmt.Sprintf("%d-W%02d", year, week)
}

// ParseWeekKey splits a "YYYY-W##" key into its year and week number.
func ParseWeekKey(key string) (year int, week int, err error) {
	if _, err = fmt.Sscanf(key, "%d-W%d", &year, &week); err != nil {
		return 0, 0, fmt.Errorf("invalid week key %q: %w", key, err)
	}
	return year, week, nil
}

// SortedWeekKeys returns the keys of a weekly map in chronological
// order. Keys that fail to parse sort last, by string value.
func SortedWeekKeys(weekly map[string]*WeekStats) []string {
	keys := make([]string, 0, len(weekly))
	for k := range weekly {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		yi, wi, erri := ParseWeekKey(keys[i])
		yj, wj, errj := ParseWeekKey(keys[j])
		if erri != nil || errj != nil {
			return keys[i] < keys[j]
		}
		if yi != yj {
			return yi < yj
		}
		return wi < wj
	})
	return keys
}

// Round2 rounds a value to two decimal places. Used for all derived
// percentages so recomputation from the same counts is idempotent.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// Percentage computes 100*part/total rounded to two decimal places,
// returning 0 when total is zero.
func Percentage(part, total int) float64 {
	if total == 0 {
		return 0
	}
	return Round2(float64(part) / float64(total) * 100)
}

// OrderedSet is a deduplicated string collection that preserves
// insertion order, so converted lists are deterministic across runs.
type OrderedSet struct {
	seen  map[string]struct{}
	items []string
}

// NewOrderedSet returns an empty OrderedSet.
func NewOrderedSet() *OrderedSet {
	return &OrderedSet{seen: make(map[string]struct{})}
}

// Add inserts a value unless it is empty or already present.
func (s *OrderedSet) Add(v string) {
	if v == "" {
		return
	}
	if _, ok := s.seen[v]; ok {
		return
	}
	s.seen[v] = struct{}{}
	s.items = append(s.items, v)
}

// Has reports whether the value is present.
func (s *OrderedSet) Has(v string) bool {
	_, ok := s.seen[v]
	return ok
}

// Len returns the number of distinct values.
func (s *OrderedSet) Len() int {
	return len(s.items)
}

// Values returns the values in insertion order. The returned slice is
// a copy; mutating it does not affect the set.
func (s *OrderedSet) Values() []string {
	out := make([]string, len(s.items))
	copy(out, s.items)
	return out
}
