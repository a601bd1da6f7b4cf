package logbook

import (
	"sort"
	"strings"
	"time"

	"github.com/trezcool/placement/core"
)

// WeeksPerMonth is the number of week entries a month logbook holds.
const WeeksPerMonth = 4

// Status of a month logbook.
type Status string

const (
	StatusDraft    Status = "Draft"
	StatusPending  Status = "Pending"
	StatusApproved Status = "Approved"
	StatusRejected Status = "Rejected"
)

func (s Status) Valid() bool {
	switch s {
	case StatusDraft, StatusPending, StatusApproved, StatusRejected:
		return true
	default:
		return false
	}
}

// Editable reports whether the student may change week entries.
// The empty status stands for a month with no logbook yet.
func (s Status) Editable() bool {
	return s == "" || s == StatusDraft || s == StatusRejected
}

// Submitted reports whether the month counts towards the sequential gate.
func (s Status) Submitted() bool {
	return s.Valid() && s != StatusDraft
}

type WeekEntry struct {
	WeekNumber        int    `json:"weekNumber"`
	Activities        string `json:"activities"`
	TechnicalSkills   string `json:"technicalSkills"`
	SoftSkills        string `json:"softSkills"`
	TrainingsReceived string `json:"trainingsReceived"`
}

// Filled reports whether the entry has the mandatory activities text.
func (w WeekEntry) Filled() bool {
	return strings.TrimSpace(w.Activities) != ""
}

type Logbook struct {
	ID              string      `json:"id"`
	StudentID       string      `json:"studentId"`
	Month           int         `json:"month"` // placement month index, 1-based
	Year            int         `json:"year"`
	Status          Status      `json:"status"`
	Weeks           []WeekEntry `json:"weeks"`
	MentorComments  string      `json:"mentorComments,omitempty"`
	RejectionReason string      `json:"rejectionReason,omitempty"`
	SignedPDFPath   string      `json:"signedPdfPath,omitempty"`
	UpdatedAt       time.Time   `json:"updatedAt"` // UTC
}

// Week returns the entry for week n, if filled.
func (lb Logbook) Week(n int) (WeekEntry, bool) {
	for _, w := range lb.Weeks {
		if w.WeekNumber == n {
			return w, true
		}
	}
	return WeekEntry{}, false
}

// FilledWeeks counts the weeks with a saved entry.
func (lb Logbook) FilledWeeks() int {
	seen := make(map[int]bool, WeeksPerMonth)
	for _, w := range lb.Weeks {
		if w.WeekNumber >= 1 && w.WeekNumber <= WeeksPerMonth {
			seen[w.WeekNumber] = true
		}
	}
	return len(seen)
}

// PutWeek inserts or replaces the entry for w.WeekNumber, keeping weeks ordered.
func (lb *Logbook) PutWeek(w WeekEntry) {
	for i := range lb.Weeks {
		if lb.Weeks[i].WeekNumber == w.WeekNumber {
			lb.Weeks[i] = w
			return
		}
	}
	lb.Weeks = append(lb.Weeks, w)
	sort.Slice(lb.Weeks, func(i, j int) bool { return lb.Weeks[i].WeekNumber < lb.Weeks[j].WeekNumber })
}

func (lb Logbook) Summary() Summary {
	return Summary{ID: lb.ID, Month: lb.Month, Year: lb.Year, Status: lb.Status, UpdatedAt: lb.UpdatedAt}
}

// Summary is one element of a student's logbook history.
type Summary struct {
	ID        string    `json:"id"`
	Month     int       `json:"month"`
	Year      int       `json:"year"`
	Status    Status    `json:"status"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// EntryDraft contains the information needed to save one week of a month logbook.
type EntryDraft struct {
	StudentID         string `json:"studentId" validate:"required"`
	Month             int    `json:"month" validate:"min=1"`
	Year              int    `json:"year" validate:"min=1"`
	WeekNumber        int    `json:"weekNumber" validate:"min=1,max=4"`
	Activities        string `json:"activities" validate:"notblank"`
	TechnicalSkills   string `json:"technicalSkills"`
	SoftSkills        string `json:"softSkills"`
	TrainingsReceived string `json:"trainingsReceived"`
}

func (d *EntryDraft) Clean() {
	d.StudentID = core.CleanString(d.StudentID)
	d.Activities = core.CleanString(d.Activities)
	d.TechnicalSkills = core.CleanString(d.TechnicalSkills)
	d.SoftSkills = core.CleanString(d.SoftSkills)
	d.TrainingsReceived = core.CleanString(d.TrainingsReceived)
}

func (d *EntryDraft) Validate(v *core.Validator) error {
	d.Clean()
	return v.Struct(d)
}

func (d EntryDraft) Entry() WeekEntry {
	return WeekEntry{
		WeekNumber:        d.WeekNumber,
		Activities:        d.Activities,
		TechnicalSkills:   d.TechnicalSkills,
		SoftSkills:        d.SoftSkills,
		TrainingsReceived: d.TrainingsReceived,
	}
}

type SubmitRequest struct {
	LogbookID string `json:"logbookId" validate:"required"`
}

// Action a mentor takes on a Pending month.
type Action string

const (
	ActionNone    Action = ""
	ActionApprove Action = "approve"
	ActionReject  Action = "reject"
)

func (a Action) Event() (Event, bool) {
	switch a {
	case ActionApprove:
		return EventApprove, true
	case ActionReject:
		return EventReject, true
	default:
		return "", false
	}
}

type VerifyRequest struct {
	Action   Action `json:"action" validate:"required,oneof=approve reject"`
	Reason   string `json:"reason,omitempty"`
	Comments string `json:"comments,omitempty"`
}

func (r *VerifyRequest) Validate(v *core.Validator) error {
	r.Reason = core.CleanString(r.Reason)
	r.Comments = core.CleanString(r.Comments)
	if err := v.Struct(r); err != nil {
		return err
	}
	if r.Action == ActionReject && r.Reason == "" {
		return core.NewValidationError(nil, core.FieldError{Field: "reason", Error: "a rejection reason is required"})
	}
	return nil
}

// Timeline is the part of a placement that bounds the logbook slots.
type Timeline struct {
	Start       time.Time
	TotalMonths int
}

// YearOf returns the calendar year of the given placement month index.
func (tl Timeline) YearOf(month int) int {
	if tl.Start.IsZero() || month < 1 {
		return nowFunc().Year()
	}
	first := time.Date(tl.Start.Year(), tl.Start.Month(), 1, 0, 0, 0, 0, time.UTC)
	return first.AddDate(0, month-1, 0).Year()
}

// LookupResult mirrors the `exists` envelope of a single-month fetch.
type LookupResult struct {
	Exists  bool     `json:"exists"`
	Logbook *Logbook `json:"logbook,omitempty"`
}
