package echoapi

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/placement/core"
	"github.com/trezcool/placement/core/marks"
	"github.com/trezcool/placement/core/placement"
	"github.com/trezcool/placement/core/session"
	"github.com/trezcool/placement/core/submission"
	inmemdb "github.com/trezcool/placement/storage/inmem"
)

var (
	errPlacementExists    = echo.NewHTTPError(http.StatusConflict, "a placement has already been recorded")
	errAttemptsExhausted  = echo.NewHTTPError(http.StatusConflict, submission.ErrAttemptsExhausted.Error())
	errMissingArtifacts   = echo.NewHTTPError(http.StatusConflict, submission.ErrMissingArtifacts.Error())
	errLogbooksIncomplete = echo.NewHTTPError(http.StatusConflict, submission.ErrLogbooksIncomplete.Error())
)

type (
	notifyRequest struct {
		StudentID string `json:"studentId"`
	}

	successResponse struct {
		Success bool `json:"success"`
	}
)

func (api *sandboxAPI) getPlacement(ctx echo.Context) error {
	student, err := api.studentFor(ctx, ctx.QueryParam("studentId"))
	if err != nil {
		return err
	}
	p, err := api.db.GetPlacement(student.ID)
	if err != nil {
		return ctx.JSON(http.StatusOK, placement.LookupResult{Exists: false})
	}
	return ctx.JSON(http.StatusOK, placement.LookupResult{Exists: true, Placement: &p})
}

func (api *sandboxAPI) createPlacement(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return err
	}
	var data placement.NewPlacement
	if err = ctx.Bind(&data); err != nil {
		return err
	}
	data.StudentID = claims.Subject
	if err = data.Validate(api.validator); err != nil {
		return err
	}

	p, err := api.db.CreatePlacement(placement.Placement{
		StudentID:   data.StudentID,
		CompanyName: data.CompanyName,
		StartDate:   data.StartDate.UTC(),
		EndDate:     data.EndDate.UTC(),
		MentorName:  data.MentorName,
		MentorEmail: data.MentorEmail,
		MentorPhone: data.MentorPhone,
	})
	if err != nil {
		if errors.Is(err, inmemdb.ErrExists) {
			return errPlacementExists
		}
		return errors.Wrap(err, "creating placement")
	}
	return ctx.JSON(http.StatusCreated, p)
}

func (api *sandboxAPI) submissionStatus(ctx echo.Context) error {
	student, err := api.studentFor(ctx, ctx.Param("studentId"))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, api.db.GetSubmissions(student.ID))
}

func (api *sandboxAPI) uploadMarksheet(ctx echo.Context) error {
	kind := submission.Kind(core.CleanString(ctx.FormValue("kind")))
	if !kind.Marksheet() {
		return core.NewValidationError(nil, core.FieldError{Field: "kind", Error: fmt.Sprintf("invalid marksheet kind %q", kind)})
	}
	return api.upload(ctx, kind)
}

func (api *sandboxAPI) uploadPresentation(ctx echo.Context) error {
	return api.upload(ctx, submission.KindPresentation)
}

// upload records a final-stage file once every logbook month is approved, within the attempt cap.
func (api *sandboxAPI) upload(ctx echo.Context, kind submission.Kind) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return err
	}
	file, err := formFile(ctx)
	if err != nil {
		return err
	}

	p, err := api.db.GetPlacement(claims.Subject)
	if err != nil {
		return errLogbooksIncomplete
	}
	if err = submission.Gate(api.db.History(claims.Subject), p.TotalMonths()); err != nil {
		return errLogbooksIncomplete
	}
	if api.db.GetSubmissions(claims.Subject).Get(kind).AttemptsLeft() == 0 {
		return errAttemptsExhausted
	}

	sub := api.db.RecordSubmission(claims.Subject, kind, file)
	return ctx.JSON(http.StatusCreated, sub)
}

func (api *sandboxAPI) notifyCoordinator(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return err
	}
	var data notifyRequest
	if err = ctx.Bind(&data); err != nil {
		return err
	}
	if data.StudentID != "" && data.StudentID != claims.Subject {
		return errHttpForbidden
	}
	if !api.db.GetSubmissions(claims.Subject).Complete() {
		return errMissingArtifacts
	}

	api.notify(
		api.db.QueryAccounts(session.RoleCoordinator),
		fmt.Sprintf("%s has completed their placement submissions", claims.Name),
		"Both marksheets and the presentation have been uploaded and are ready for review.",
	)
	return ctx.JSON(http.StatusOK, successResponse{Success: true})
}

func (api *sandboxAPI) getMarks(ctx echo.Context) error {
	student, err := api.studentFor(ctx, ctx.Param("studentId"))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, api.db.GetMarks(student.ID))
}

func (api *sandboxAPI) submitAcademicMarks(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return err
	}
	var data marks.AcademicMarks
	if err = ctx.Bind(&data); err != nil {
		return err
	}
	if err = data.Validate(api.validator); err != nil {
		return err
	}
	student, err := api.db.GetAccountByID(data.StudentID)
	if err != nil || !student.IsStudent() {
		return errStudentNotFound
	}
	if student.AcademicMentorID != claims.Subject {
		return errHttpForbidden
	}

	fm := api.db.SetMarks(student.ID, func(fm *marks.FinalMarks) {
		m := data.Marks
		fm.AcademicMentorMarks = &m
	})
	return ctx.JSON(http.StatusOK, fm)
}

func (api *sandboxAPI) submitIndustryMarks(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return err
	}
	var data marks.IndustryMarks
	if err = ctx.Bind(&data); err != nil {
		return err
	}
	if err = data.Validate(api.validator); err != nil {
		return err
	}
	student, err := api.db.GetAccountByID(data.StudentID)
	if err != nil || !student.IsStudent() {
		return errStudentNotFound
	}
	if student.IndustryMentorID != claims.Subject {
		return errHttpForbidden
	}

	fm := api.db.SetMarks(student.ID, func(fm *marks.FinalMarks) {
		m := data.Marks
		fm.IndustryMentorMarks = &m
	})
	return ctx.JSON(http.StatusOK, fm)
}
