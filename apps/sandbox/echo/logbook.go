package echoapi

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/placement/core/logbook"
	"github.com/trezcool/placement/core/placement"
	"github.com/trezcool/placement/core/session"
	pdfsvc "github.com/trezcool/placement/services/pdf"
	inmemdb "github.com/trezcool/placement/storage/inmem"
)

var (
	errNoPlacement     = echo.NewHTTPError(http.StatusBadRequest, "record your placement before filling the logbook")
	errMonthOutOfRange = echo.NewHTTPError(http.StatusBadRequest, "month is outside the placement timeline")
	errNotEditable     = echo.NewHTTPError(http.StatusConflict, "this month can no longer be edited")
	errAlreadyVerified = echo.NewHTTPError(http.StatusConflict, "this logbook is not pending verification")
	errSignedRequired  = echo.NewHTTPError(http.StatusBadRequest, "upload the signed logbook before approving")
	errNoSignedPDF     = echo.NewHTTPError(http.StatusNotFound, "no signed logbook has been uploaded for this month")
	errNoApproved      = echo.NewHTTPError(http.StatusNotFound, "no approved logbooks yet")
)

func (api *sandboxAPI) getLogbook(ctx echo.Context) error {
	month, err := queryInt(ctx, "month")
	if err != nil {
		return err
	}
	year, err := queryInt(ctx, "year")
	if err != nil {
		return err
	}
	student, err := api.studentFor(ctx, ctx.QueryParam("studentId"))
	if err != nil {
		return err
	}

	lb, err := api.db.FindLogbook(student.ID, month, year)
	if err != nil {
		if errors.Is(err, inmemdb.ErrNotFound) {
			return ctx.JSON(http.StatusOK, logbook.LookupResult{Exists: false})
		}
		return errors.Wrap(err, "finding logbook")
	}
	return ctx.JSON(http.StatusOK, logbook.LookupResult{Exists: true, Logbook: &lb})
}

func (api *sandboxAPI) saveEntry(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return err
	}
	var data logbook.EntryDraft
	if err = ctx.Bind(&data); err != nil {
		return err
	}
	if data.StudentID == "" {
		data.StudentID = claims.Subject
	}
	if err = data.Validate(api.validator); err != nil {
		return err
	}
	if data.StudentID != claims.Subject {
		return errHttpForbidden
	}

	p, err := api.db.GetPlacement(data.StudentID)
	if err != nil {
		return errNoPlacement
	}
	if data.Month > p.TotalMonths() {
		return errMonthOutOfRange
	}
	if existing, err := api.db.FindLogbook(data.StudentID, data.Month, data.Year); err == nil && !existing.Status.Editable() {
		return errNotEditable
	}

	lb := api.db.UpsertEntry(data.StudentID, data.Month, data.Year, data.Entry())
	return ctx.JSON(http.StatusOK, lb)
}

func (api *sandboxAPI) submitLogbook(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return err
	}
	var data logbook.SubmitRequest
	if err = ctx.Bind(&data); err != nil {
		return err
	}
	if err = api.validator.Struct(&data); err != nil {
		return err
	}

	lb, err := api.db.GetLogbook(data.LogbookID)
	if err != nil {
		return errLogbookNotFound
	}
	if lb.StudentID != claims.Subject {
		return errHttpForbidden
	}
	to, err := logbook.Transition(lb.Status, logbook.EventSubmit)
	if err != nil {
		return err
	}
	if logbook.IsLocked(api.db.History(lb.StudentID), lb.Month) {
		return echo.NewHTTPError(http.StatusConflict, fmt.Sprintf("submit month %d before month %d", lb.Month-1, lb.Month))
	}

	lb.Status = to
	lb.RejectionReason = ""
	lb = api.db.SaveLogbook(lb)

	student, err := api.db.GetAccountByID(lb.StudentID)
	if err == nil {
		api.notify(
			api.accounts(student.AcademicMentorID, student.IndustryMentorID),
			fmt.Sprintf("Logbook for month %d awaits your verification", lb.Month),
			fmt.Sprintf("%s submitted their logbook for month %d (%d).", student.Name, lb.Month, lb.Year),
		)
	}
	return ctx.JSON(http.StatusOK, lb)
}

// mentoredLogbook loads the logbook named by the :id param and checks the caller mentors its student.
func (api *sandboxAPI) mentoredLogbook(ctx echo.Context) (logbook.Logbook, inmemdb.Account, error) {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return logbook.Logbook{}, inmemdb.Account{}, err
	}
	lb, err := api.db.GetLogbook(ctx.Param("id"))
	if err != nil {
		return logbook.Logbook{}, inmemdb.Account{}, errLogbookNotFound
	}
	student, err := api.db.GetAccountByID(lb.StudentID)
	if err != nil {
		return logbook.Logbook{}, inmemdb.Account{}, errStudentNotFound
	}
	if !student.MentorsStudent(claims.Subject) {
		return logbook.Logbook{}, inmemdb.Account{}, errHttpForbidden
	}
	return lb, student, nil
}

func (api *sandboxAPI) verifyLogbook(ctx echo.Context) error {
	lb, student, err := api.mentoredLogbook(ctx)
	if err != nil {
		return err
	}
	var data logbook.VerifyRequest
	if err = ctx.Bind(&data); err != nil {
		return err
	}
	if err = data.Validate(api.validator); err != nil {
		return err
	}

	ev, _ := data.Action.Event()
	to, err := logbook.Transition(lb.Status, ev)
	if err != nil {
		return errAlreadyVerified
	}
	if ev == logbook.EventApprove && lb.SignedPDFPath == "" {
		return errSignedRequired
	}

	lb.Status = to
	if data.Comments != "" {
		lb.MentorComments = data.Comments
	}
	if ev == logbook.EventReject {
		lb.RejectionReason = data.Reason
	}
	lb = api.db.SaveLogbook(lb)

	subject := fmt.Sprintf("Your logbook for month %d was %s", lb.Month, lb.Status)
	body := subject + "."
	if lb.RejectionReason != "" && lb.Status == logbook.StatusRejected {
		body += "\nReason: " + lb.RejectionReason
	}
	api.notify([]inmemdb.Account{student}, subject, body)
	return ctx.JSON(http.StatusOK, lb)
}

func (api *sandboxAPI) uploadSigned(ctx echo.Context) error {
	lb, _, err := api.mentoredLogbook(ctx)
	if err != nil {
		return err
	}
	if lb.Status != logbook.StatusPending {
		return errAlreadyVerified
	}
	file, err := formFile(ctx)
	if err != nil {
		return err
	}
	if err = api.db.PutSignedPDF(lb.ID, file); err != nil {
		return errors.Wrap(err, "storing signed pdf")
	}
	lb, err = api.db.GetLogbook(lb.ID)
	if err != nil {
		return errors.Wrap(err, "reloading logbook")
	}
	return ctx.JSON(http.StatusOK, lb)
}

func (api *sandboxAPI) downloadSigned(ctx echo.Context) error {
	lb, err := api.db.GetLogbook(ctx.Param("id"))
	if err != nil {
		return errLogbookNotFound
	}
	if _, err = api.studentFor(ctx, lb.StudentID); err != nil {
		return err
	}
	file, err := api.db.SignedPDF(lb.ID)
	if err != nil {
		return errNoSignedPDF
	}
	return pdfAttachment(ctx, fmt.Sprintf("logbook-month-%d.pdf", lb.Month), file.Data)
}

func (api *sandboxAPI) downloadConsolidated(ctx echo.Context) error {
	student, err := api.studentFor(ctx, ctx.Param("studentId"))
	if err != nil {
		return err
	}
	approved := api.db.QueryLogbooks(func(lb logbook.Logbook) bool {
		return lb.StudentID == student.ID && lb.Status == logbook.StatusApproved
	})
	if len(approved) == 0 {
		return errNoApproved
	}

	var p *placement.Placement
	if pl, err := api.db.GetPlacement(student.ID); err == nil {
		p = &pl
	}
	data, err := pdfsvc.Consolidated(student.User, p, approved)
	if err != nil {
		return errors.Wrap(err, "rendering consolidated logbook")
	}
	return pdfAttachment(ctx, fmt.Sprintf("logbook-%s.pdf", student.ID), data)
}

func (api *sandboxAPI) history(ctx echo.Context) error {
	student, err := api.studentFor(ctx, ctx.Param("studentId"))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, api.db.History(student.ID))
}

// pending lists the logbooks awaiting verification: a mentor sees their students', a coordinator sees all.
func (api *sandboxAPI) pending(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return err
	}
	usr := claims.User()

	var students []inmemdb.Account
	if usr.IsCoordinator() {
		students = api.db.QueryAccounts(session.RoleStudent)
	} else {
		students = api.db.StudentsOf(usr.ID)
	}
	ids := make(map[string]bool, len(students))
	for _, s := range students {
		ids[s.ID] = true
	}

	lbs := api.db.QueryLogbooks(func(lb logbook.Logbook) bool {
		return lb.Status == logbook.StatusPending && ids[lb.StudentID]
	})
	return ctx.JSON(http.StatusOK, lbs)
}
