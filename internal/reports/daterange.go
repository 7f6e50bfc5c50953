package reports

import (
	"strings"
	"time"

	"go-inventory-ledger/internal/models"
)

// Preset names accepted by ResolveRange.
const (
	PresetToday   = "today"
	PresetWeek    = "week"
	PresetMonth   = "month"
	PresetQuarter = "quarter"
	PresetYear    = "year"
	PresetCustom  = "custom"
	PresetAll     = "all"
)

// DefaultPreset is used when the caller does not pick one.
const DefaultPreset = PresetMonth

// Range is an inclusive [Start, End] window. A zero Range matches everything.
type Range struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// All reports whether r applies no filtering.
func (r Range) All() bool {
	return r.Start.IsZero() && r.End.IsZero()
}

// Contains reports whether t falls inside r, both ends inclusive.
func (r Range) Contains(t time.Time) bool {
	if !r.Start.IsZero() && t.Before(r.Start) {
		return false
	}
	if !r.End.IsZero() && t.After(r.End) {
		return false
	}
	return true
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// EndOfDay is the last representable instant of t's calendar day.
func EndOfDay(t time.Time) time.Time {
	return startOfDay(t).AddDate(0, 0, 1).Add(-time.Nanosecond)
}

// ResolveRange turns a preset into a window relative to now.
// "Last N days" presets run from now-N days up to now; today and year are
// calendar aligned. A custom range missing either bound, or an unknown
// preset, selects all sales.
func ResolveRange(preset string, from, to time.Time, now time.Time) Range {
	switch strings.ToLower(strings.TrimSpace(preset)) {
	case PresetToday:
		return Range{Start: startOfDay(now), End: EndOfDay(now)}
	case PresetWeek:
		return Range{Start: now.AddDate(0, 0, -7), End: now}
	case PresetMonth:
		return Range{Start: now.AddDate(0, 0, -30), End: now}
	case PresetQuarter:
		return Range{Start: now.AddDate(0, 0, -90), End: now}
	case PresetYear:
		start := time.Date(now.Year(), time.January, 1, 0, 0, 0, 0, now.Location())
		return Range{Start: start, End: start.AddDate(1, 0, 0).Add(-time.Nanosecond)}
	case PresetCustom:
		if from.IsZero() || to.IsZero() {
			return Range{}
		}
		return Range{Start: from, End: to}
	default:
		return Range{}
	}
}

// FilterSales keeps the sales dated inside r, preserving order.
func FilterSales(sales []models.Sale, r Range) []models.Sale {
	if r.All() {
		return sales
	}
	out := make([]models.Sale, 0, len(sales))
	for _, s := range sales {
		if r.Contains(s.Date) {
			out = append(out, s)
		}
	}
	return out
}

// FilterPurchases keeps the purchases dated inside r, preserving order.
func FilterPurchases(purchases []models.Purchase, r Range) []models.Purchase {
	if r.All() {
		return purchases
	}
	out := make([]models.Purchase, 0, len(purchases))
	for _, p := range purchases {
		if r.Contains(p.Date) {
			out = append(out, p)
		}
	}
	return out
}
