package echoapi

import (
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/mail"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/placement/core"
	"github.com/trezcool/placement/core/document"
	"github.com/trezcool/placement/core/session"
	inmemdb "github.com/trezcool/placement/storage/inmem"
)

const maxUploadSize = 10 << 20

type sandboxAPI struct {
	conf      *core.Config
	logger    core.Logger
	db        *inmemdb.DB
	notifier  core.Notifier
	validator *core.Validator
}

func (api *sandboxAPI) login(ctx echo.Context) error {
	var creds session.Credentials
	if err := ctx.Bind(&creds); err != nil {
		return err
	}
	creds.Email = core.CleanString(creds.Email, true /* lower */)
	if err := api.validator.Struct(&creds); err != nil {
		return err
	}

	acc, err := authenticate(creds.Email, creds.Password, api.db)
	if err != nil {
		return err
	}
	token, err := GenerateToken(GetUserClaims(acc.User, api.conf), api.conf.Sandbox.SecretKey)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, session.Session{Token: token, User: acc.User})
}

// studentFor resolves the student a request is about and checks that the caller may see them:
// the student themselves, one of their mentors or a coordinator.
// An empty studentID means the calling student.
func (api *sandboxAPI) studentFor(ctx echo.Context, studentID string) (inmemdb.Account, error) {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return inmemdb.Account{}, err
	}
	usr := claims.User()
	if studentID == "" && usr.IsStudent() {
		studentID = usr.ID
	}

	student, err := api.db.GetAccountByID(studentID)
	if err != nil || !student.IsStudent() {
		return inmemdb.Account{}, errStudentNotFound
	}

	switch {
	case usr.IsStudent() && student.ID == usr.ID,
		usr.IsMentor() && student.MentorsStudent(usr.ID),
		usr.IsCoordinator():
		return student, nil
	default:
		return inmemdb.Account{}, errHttpForbidden
	}
}

func (api *sandboxAPI) notify(to []inmemdb.Account, subject, body string) {
	if api.notifier == nil || len(to) == 0 {
		return
	}
	n := &core.Notification{Subject: subject, Body: body}
	for _, acc := range to {
		n.To = append(n.To, mail.Address{Name: acc.Name, Address: acc.Email})
	}
	api.notifier.Notify(n)
}

func (api *sandboxAPI) accounts(ids ...string) []inmemdb.Account {
	accs := make([]inmemdb.Account, 0, len(ids))
	for _, id := range ids {
		if id == "" {
			continue
		}
		if acc, err := api.db.GetAccountByID(id); err == nil {
			accs = append(accs, acc)
		}
	}
	return accs
}

// formFile reads the "file" part of a multipart upload.
func formFile(ctx echo.Context) (document.Blob, error) {
	fh, err := ctx.FormFile("file")
	if err != nil {
		return document.Blob{}, core.NewValidationError(nil, core.FieldError{Field: "file", Error: "this field is required"})
	}
	return readFileHeader(fh)
}

func readFileHeader(fh *multipart.FileHeader) (document.Blob, error) {
	if fh.Size > maxUploadSize {
		return document.Blob{}, echo.NewHTTPError(http.StatusRequestEntityTooLarge, "file too large")
	}
	f, err := fh.Open()
	if err != nil {
		return document.Blob{}, errors.Wrap(err, "opening upload")
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return document.Blob{}, errors.Wrap(err, "reading upload")
	}
	blob := document.Blob{Data: data, ContentType: fh.Header.Get(echo.HeaderContentType), Filename: fh.Filename}
	if err = document.RequirePDF(blob); err != nil {
		return document.Blob{}, core.NewValidationError(nil, core.FieldError{Field: "file", Error: err.Error()})
	}
	return blob, nil
}

func queryInt(ctx echo.Context, name string) (int, error) {
	raw := ctx.QueryParam(name)
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return 0, core.NewValidationError(nil, core.FieldError{Field: name, Error: fmt.Sprintf("invalid %s %q", name, raw)})
	}
	return n, nil
}

func pdfAttachment(ctx echo.Context, filename string, data []byte) error {
	ctx.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", filename))
	return ctx.Blob(http.StatusOK, document.ContentTypePDF, data)
}
