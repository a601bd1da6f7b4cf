// Package testutil boots a seeded sandbox API for tests that need a live server.
package testutil

import (
	"context"
	"io"
	"log"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"

	echoapi "github.com/trezcool/placement/apps/sandbox/echo"
	"github.com/trezcool/placement/core"
	"github.com/trezcool/placement/core/document"
	"github.com/trezcool/placement/core/logbook"
	"github.com/trezcool/placement/core/placement"
	"github.com/trezcool/placement/core/session"
	apisvc "github.com/trezcool/placement/services/api"
	logsvc "github.com/trezcool/placement/services/logger"
	notifysvc "github.com/trezcool/placement/services/notify"
	pdfsvc "github.com/trezcool/placement/services/pdf"
	inmemdb "github.com/trezcool/placement/storage/inmem"
)

// Start is the first day of every placement seeded by SeedPlacement.
var Start = time.Date(2025, time.January, 6, 0, 0, 0, 0, time.UTC)

type Sandbox struct {
	App       *echoapi.Server
	Server    *httptest.Server
	Conf      *core.Config
	DB        *inmemdb.DB
	Notifier  notifysvc.ConsoleService
	Validator *core.Validator
	Fixtures  echoapi.Fixtures
}

// Config returns the configuration tests run with.
func Config() *core.Config {
	conf := core.NewConfig()
	conf.TestMode = true
	conf.Sandbox.DisableReqLogs = true
	conf.API.Timeout = 5 * time.Second
	return conf
}

func NewValidator() *core.Validator {
	return core.NewValidator(validator.New(), core.NewTranslator())
}

// NewSandbox serves a freshly seeded sandbox until the test ends.
func NewSandbox(t *testing.T) *Sandbox {
	t.Helper()

	conf := Config()
	db := inmemdb.Open()
	fx, err := echoapi.Seed(db, conf.Sandbox.SeedPassword)
	if err != nil {
		t.Fatalf("Seed() failed: %v", err)
	}

	logger := logsvc.NewRollbarLogger(log.New(io.Discard, "", 0), conf)
	logger.Enable(false)

	sb := &Sandbox{
		Conf:      conf,
		DB:        db,
		Notifier:  notifysvc.NewConsoleServiceMock(conf),
		Validator: NewValidator(),
		Fixtures:  fx,
	}
	sb.App = echoapi.NewServer(echoapi.ServerDeps{
		Conf:      conf,
		Logger:    logger,
		DB:        db,
		Notifier:  sb.Notifier,
		Validator: sb.Validator,
	})
	sb.Server = httptest.NewServer(sb.App)
	t.Cleanup(sb.Server.Close)
	return sb
}

// BaseURL is the API root clients are pointed at.
func (sb *Sandbox) BaseURL() string {
	return sb.Server.URL + "/api"
}

// Token signs a bearer token for acc without going through login.
func (sb *Sandbox) Token(t *testing.T, acc inmemdb.Account) string {
	t.Helper()
	token, err := echoapi.GenerateToken(echoapi.GetUserClaims(acc.User, sb.Conf), sb.Conf.Sandbox.SecretKey)
	if err != nil {
		t.Fatalf("GenerateToken() failed: %v", err)
	}
	return token
}

// Client returns an API client with no session.
func (sb *Sandbox) Client(tokens apisvc.TokenSource) *apisvc.Client {
	return apisvc.NewClient(apisvc.Options{
		BaseURL:   sb.BaseURL(),
		Timeout:   sb.Conf.API.Timeout,
		UserAgent: sb.Conf.API.UserAgent,
		Tokens:    tokens,
	})
}

// Login logs acc in through the API and returns a client carrying its session.
func (sb *Sandbox) Login(t *testing.T, acc inmemdb.Account) (*apisvc.Client, *session.Guard) {
	t.Helper()
	store := session.NewMemoryStore()
	guard := session.NewGuard(store)
	client := sb.Client(guard)

	if _, err := session.NewService(client, store, sb.Validator).Login(context.Background(), acc.Email, sb.Fixtures.Password); err != nil {
		t.Fatalf("Login(%s) failed: %v", acc.Email, err)
	}
	return client, guard
}

// SeedPlacement records a placement of the given number of months for the student, starting at Start.
func (sb *Sandbox) SeedPlacement(t *testing.T, studentID string, months int) placement.Placement {
	t.Helper()
	p, err := sb.DB.CreatePlacement(placement.Placement{
		StudentID:   studentID,
		CompanyName: "Acme Robotics",
		StartDate:   Start,
		EndDate:     Start.AddDate(0, months-1, 20),
		MentorName:  "Linus Industry",
		MentorEmail: "industry@placement.test",
	})
	if err != nil {
		t.Fatalf("CreatePlacement() failed: %v", err)
	}
	return p
}

// SeedLogbook stores a month with four filled weeks in the given status.
func (sb *Sandbox) SeedLogbook(t *testing.T, studentID string, month int, status logbook.Status) logbook.Logbook {
	t.Helper()
	lb := logbook.Logbook{StudentID: studentID, Month: month, Year: Start.Year(), Status: status}
	for w := 1; w <= logbook.WeeksPerMonth; w++ {
		lb.PutWeek(logbook.WeekEntry{WeekNumber: w, Activities: "shipped the week's tickets"})
	}
	return sb.DB.SaveLogbook(lb)
}

// SignedPDF renders a signed copy of lb, as a mentor would upload it.
func SignedPDF(t *testing.T, lb logbook.Logbook) document.Blob {
	t.Helper()
	data, err := pdfsvc.Signed(lb, "Grace Academic", time.Now())
	if err != nil {
		t.Fatalf("Signed() failed: %v", err)
	}
	return document.Blob{Data: data, ContentType: document.ContentTypePDF, Filename: "signed.pdf"}
}

// StaticToken is a TokenSource for a fixed bearer token.
type StaticToken string

func (s StaticToken) Token() string { return string(s) }
