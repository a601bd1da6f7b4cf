package placement

import (
	"time"

	"github.com/trezcool/placement/core"
	"github.com/trezcool/placement/core/logbook"
)

// Placement is the internship record bounding a student's logbook timeline.
// It is immutable once created.
type Placement struct {
	ID          string    `json:"id"`
	StudentID   string    `json:"studentId"`
	CompanyName string    `json:"companyName"`
	StartDate   time.Time `json:"startDate"`
	EndDate     time.Time `json:"endDate"`
	MentorName  string    `json:"mentorName"`
	MentorEmail string    `json:"mentorEmail"`
	MentorPhone string    `json:"mentorPhone,omitempty"`
	CreatedAt   time.Time `json:"createdAt"` // UTC
}

// TotalMonths is the inclusive number of calendar months between start and end.
func (p Placement) TotalMonths() int {
	if p.StartDate.IsZero() || p.EndDate.Before(p.StartDate) {
		return 0
	}
	sy, sm, _ := p.StartDate.Date()
	ey, em, _ := p.EndDate.Date()
	return (ey-sy)*12 + int(em-sm) + 1
}

// MonthOf returns the calendar month and year of the placement month index (1-based).
func (p Placement) MonthOf(index int) (time.Month, int) {
	first := time.Date(p.StartDate.Year(), p.StartDate.Month(), 1, 0, 0, 0, 0, time.UTC)
	t := first.AddDate(0, index-1, 0)
	return t.Month(), t.Year()
}

func (p Placement) Timeline() logbook.Timeline {
	return logbook.Timeline{Start: p.StartDate, TotalMonths: p.TotalMonths()}
}

// NewPlacement contains information needed to record a Placement.
type NewPlacement struct {
	StudentID   string    `json:"studentId,omitempty"`
	CompanyName string    `json:"companyName" validate:"notblank"`
	StartDate   time.Time `json:"startDate" validate:"required"`
	EndDate     time.Time `json:"endDate" validate:"required"`
	MentorName  string    `json:"mentorName" validate:"notblank"`
	MentorEmail string    `json:"mentorEmail" validate:"required,email"`
	MentorPhone string    `json:"mentorPhone,omitempty"`
}

func (np *NewPlacement) Validate(v *core.Validator) error {
	np.StudentID = core.CleanString(np.StudentID)
	np.CompanyName = core.CleanString(np.CompanyName)
	np.MentorName = core.CleanString(np.MentorName)
	np.MentorEmail = core.CleanString(np.MentorEmail, true /* lower */)
	np.MentorPhone = core.CleanString(np.MentorPhone)

	if err := v.Struct(np); err != nil {
		return err
	}
	if !np.EndDate.After(np.StartDate) {
		return core.NewValidationError(nil, core.FieldError{Field: "endDate", Error: "end date must be after the start date"})
	}
	return nil
}

// LookupResult mirrors the `exists` envelope of GET /placement.
type LookupResult struct {
	Exists    bool       `json:"exists"`
	Placement *Placement `json:"placement,omitempty"`
}
