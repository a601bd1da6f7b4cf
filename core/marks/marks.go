package marks

import (
	"context"
	"fmt"

	"github.com/pkg/errors"

	"github.com/trezcool/placement/core"
)

const (
	MaxIndustryMarks = 40
	MaxAcademicMarks = 60
	MaxTotal         = MaxIndustryMarks + MaxAcademicMarks

	StatusPending  = "Pending"
	StatusComplete = "Complete"
)

// FinalMarks holds both mentors' marks for a student. A nil component has not been awarded yet.
type FinalMarks struct {
	StudentID           string `json:"studentId"`
	AcademicMentorMarks *int   `json:"academicMentorMarks"`
	IndustryMentorMarks *int   `json:"industryMentorMarks"`
	Status              string `json:"status,omitempty"`
}

// Total returns the sum of both components; ok is false until both are present.
func (fm FinalMarks) Total() (total int, ok bool) {
	if fm.AcademicMentorMarks == nil || fm.IndustryMentorMarks == nil {
		return 0, false
	}
	return *fm.AcademicMentorMarks + *fm.IndustryMentorMarks, true
}

type IndustryMarks struct {
	StudentID string `json:"studentId" validate:"notblank"`
	Marks     int    `json:"industryMentorMarks"`
}

func (im *IndustryMarks) Validate(v *core.Validator) error {
	im.StudentID = core.CleanString(im.StudentID)
	if err := v.Struct(im); err != nil {
		return err
	}
	return checkRange("industryMentorMarks", im.Marks, MaxIndustryMarks)
}

type AcademicMarks struct {
	StudentID string `json:"studentId" validate:"notblank"`
	Marks     int    `json:"academicMentorMarks"`
}

func (am *AcademicMarks) Validate(v *core.Validator) error {
	am.StudentID = core.CleanString(am.StudentID)
	if err := v.Struct(am); err != nil {
		return err
	}
	return checkRange("academicMentorMarks", am.Marks, MaxAcademicMarks)
}

func checkRange(field string, marks, max int) error {
	if marks < 0 || marks > max {
		return core.NewValidationError(nil, core.FieldError{
			Field: field,
			Error: fmt.Sprintf("%s must be between 0 and %d", field, max),
		})
	}
	return nil
}

type (
	Gateway interface {
		GetMarks(ctx context.Context, studentID string) (FinalMarks, error)
		SubmitAcademicMarks(ctx context.Context, am AcademicMarks) (FinalMarks, error)
		SubmitIndustryMarks(ctx context.Context, im IndustryMarks) (FinalMarks, error)
	}

	Service struct {
		gw        Gateway
		validator *core.Validator
	}
)

func NewService(gw Gateway, validator *core.Validator) *Service {
	return &Service{gw: gw, validator: validator}
}

func (svc *Service) Get(ctx context.Context, studentID string) (FinalMarks, error) {
	fm, err := svc.gw.GetMarks(ctx, core.CleanString(studentID))
	if err != nil {
		return FinalMarks{}, errors.Wrap(err, "fetching final marks")
	}
	return fm, nil
}

// SubmitIndustry posts the industry mentor's marks. Out-of-range input never reaches the API.
func (svc *Service) SubmitIndustry(ctx context.Context, im IndustryMarks) (FinalMarks, error) {
	if err := im.Validate(svc.validator); err != nil {
		return FinalMarks{}, err
	}
	fm, err := svc.gw.SubmitIndustryMarks(ctx, im)
	if err != nil {
		return FinalMarks{}, errors.Wrap(err, "submitting industry marks")
	}
	return fm, nil
}

// SubmitAcademic posts the academic mentor's marks. Out-of-range input never reaches the API.
func (svc *Service) SubmitAcademic(ctx context.Context, am AcademicMarks) (FinalMarks, error) {
	if err := am.Validate(svc.validator); err != nil {
		return FinalMarks{}, err
	}
	fm, err := svc.gw.SubmitAcademicMarks(ctx, am)
	if err != nil {
		return FinalMarks{}, errors.Wrap(err, "submitting academic marks")
	}
	return fm, nil
}
