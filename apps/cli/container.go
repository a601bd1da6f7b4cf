package main

import (
	"io"
	"log"
	"os"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"go.uber.org/dig"

	"github.com/trezcool/placement/core"
	"github.com/trezcool/placement/core/document"
	"github.com/trezcool/placement/core/logbook"
	"github.com/trezcool/placement/core/marks"
	"github.com/trezcool/placement/core/placement"
	"github.com/trezcool/placement/core/session"
	"github.com/trezcool/placement/core/submission"
	apisvc "github.com/trezcool/placement/services/api"
	logsvc "github.com/trezcool/placement/services/logger"
	"github.com/trezcool/placement/storage/sessionfile"
)

type cliParams struct {
	dig.In

	Conf        *core.Config
	Logger      core.Logger
	Out         io.Writer
	Guard       *session.Guard
	Sessions    *session.Service
	Placements  *placement.Service
	Logbooks    *logbook.Service
	Submissions *submission.Service
	Marks       *marks.Service
	Previews    *document.Previews
}

func newLogger(conf *core.Config) core.Logger {
	stdLogger := log.New(os.Stderr, "CLI : ", log.LstdFlags)
	logger := logsvc.NewRollbarLogger(stdLogger, conf)
	logger.Enable(!conf.Debug)
	return logger
}

func newGateway(conf *core.Config, guard *session.Guard, logger core.Logger) *apisvc.Client {
	return apisvc.NewClientFromConfig(conf, guard, logger)
}

func newSubmissionService(gw submission.Gateway, logbooks *logbook.Service, placements *placement.Service) *submission.Service {
	return submission.NewService(gw, logbooks, placements)
}

func newPreviews() *document.Previews {
	return document.NewPreviews("")
}

func newCommandLine(p cliParams) *commandLine {
	return &commandLine{
		conf:        p.Conf,
		logger:      p.Logger,
		out:         p.Out,
		guard:       p.Guard,
		sessions:    p.Sessions,
		placements:  p.Placements,
		logbooks:    p.Logbooks,
		submissions: p.Submissions,
		marks:       p.Marks,
		previews:    p.Previews,
	}
}

// newContainer returns the dig.Container the CLI is assembled from.
func newContainer(conf *core.Config, out io.Writer) *dig.Container {
	c := dig.New()

	must(c.Provide(func() *core.Config { return conf }))
	must(c.Provide(func() io.Writer { return out }))
	must(c.Provide(newLogger))
	must(c.Provide(validator.New))
	must(c.Provide(core.NewTranslator))
	must(c.Provide(core.NewValidator))
	must(c.Provide(sessionfile.NewFromConfig, dig.As(new(session.Store))))
	must(c.Provide(session.NewGuard))
	must(c.Provide(newGateway, dig.As(
		new(session.Gateway),
		new(placement.Gateway),
		new(logbook.Gateway),
		new(submission.Gateway),
		new(marks.Gateway),
	)))
	must(c.Provide(session.NewService))
	must(c.Provide(placement.NewService))
	must(c.Provide(logbook.NewService))
	must(c.Provide(newSubmissionService))
	must(c.Provide(marks.NewService))
	must(c.Provide(newPreviews))
	must(c.Provide(newCommandLine))

	return c
}

// must exits program if err happened
func must(err error) {
	if err != nil {
		log.Fatal(errors.Wrap(err, "failed to provide dependency").Error())
	}
}
