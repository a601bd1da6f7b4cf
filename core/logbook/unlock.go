package logbook

import (
	"sort"
	"time"
)

var nowFunc = time.Now // mockable

// ComputeUnlockedMonth returns the furthest month index the student may edit.
//
// Months are walked from 1 upwards; the walk stops at the first month that is
// missing from history or still in Draft. A submitted month after a gap does
// not unlock anything past the gap.
func ComputeUnlockedMonth(history []Summary) int {
	submitted := make(map[int]bool, len(history))
	for _, s := range history {
		if s.Status.Submitted() {
			submitted[s.Month] = true
		}
	}
	unlocked := 1
	for submitted[unlocked] {
		unlocked++
	}
	return unlocked
}

// MonthSlot is one selectable month of the placement timeline.
type MonthSlot struct {
	Month     int
	Year      int
	Status    Status // empty when no logbook exists yet
	LogbookID string
	Exists    bool
	Locked    bool
}

// MonthSlots lays out months 1..totalMonths with their status and lock state.
// Month 1 is never locked.
func MonthSlots(history []Summary, tl Timeline) []MonthSlot {
	unlocked := ComputeUnlockedMonth(history)
	byMonth := make(map[int]Summary, len(history))
	for _, s := range history {
		if prev, ok := byMonth[s.Month]; !ok || s.UpdatedAt.After(prev.UpdatedAt) {
			byMonth[s.Month] = s
		}
	}

	slots := make([]MonthSlot, 0, tl.TotalMonths)
	for m := 1; m <= tl.TotalMonths; m++ {
		slot := MonthSlot{Month: m, Year: tl.YearOf(m), Locked: m > unlocked && m > 1}
		if s, ok := byMonth[m]; ok {
			slot.Status = s.Status
			slot.LogbookID = s.ID
			slot.Year = s.Year
			slot.Exists = true
		}
		slots = append(slots, slot)
	}
	return slots
}

// IsLocked reports whether month may not be selected given history.
func IsLocked(history []Summary, month int) bool {
	return month > 1 && month > ComputeUnlockedMonth(history)
}

// DefaultView picks the month shown on load: the latest Approved month, else
// the latest month of any status, else month 1 of the current year.
func DefaultView(history []Summary) (month, year int) {
	if len(history) == 0 {
		return 1, nowFunc().Year()
	}

	sorted := make([]Summary, len(history))
	copy(sorted, history)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Year != sorted[j].Year {
			return sorted[i].Year > sorted[j].Year
		}
		return sorted[i].Month > sorted[j].Month
	})

	for _, s := range sorted {
		if s.Status == StatusApproved {
			return s.Month, s.Year
		}
	}
	return sorted[0].Month, sorted[0].Year
}

// SortHistory orders history by year then month, ascending.
func SortHistory(history []Summary) {
	sort.SliceStable(history, func(i, j int) bool {
		if history[i].Year != history[j].Year {
			return history[i].Year < history[j].Year
		}
		return history[i].Month < history[j].Month
	})
}
