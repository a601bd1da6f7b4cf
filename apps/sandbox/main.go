// Command sandbox serves an in-memory rendition of the placement API for local runs and tests.
package main

import (
	"context"
	"fmt"

	"github.com/go-playground/validator/v10"

	echoapi "github.com/trezcool/placement/apps/sandbox/echo"
	"github.com/trezcool/placement/core"
	logsvc "github.com/trezcool/placement/services/logger"
	notifysvc "github.com/trezcool/placement/services/notify"
	inmemdb "github.com/trezcool/placement/storage/inmem"
)

func main() {
	// =========================================================================
	// Set up Dependencies

	conf := core.NewConfig()

	logger := logsvc.NewRollbarLogger(logsvc.NewStdLogger("SANDBOX"), conf)
	logger.Enable(!conf.Debug)

	db := inmemdb.Open()
	fx, err := echoapi.Seed(db, conf.Sandbox.SeedPassword)
	if err != nil {
		logger.Fatal(fmt.Sprintf("seeding sandbox: %v", err), err)
	}

	notifier := notifysvc.NewConsoleService(logsvc.NewStdLogger("NOTIFY"), conf)
	validate := core.NewValidator(validator.New(), core.NewTranslator())

	// =========================================================================
	// Initialize App

	logger.Info(fmt.Sprintf("Application initializing : version %q", conf.Build))
	defer logger.Info("Application stopped")

	for _, acc := range []inmemdb.Account{fx.Student, fx.Outsider, fx.AcademicMentor, fx.IndustryMentor, fx.Coordinator} {
		logger.Info(fmt.Sprintf("seeded %s <%s> as %s", acc.Name, acc.Email, acc.Role))
	}

	// =========================================================================
	// Start API Service

	server := echoapi.NewServer(
		echoapi.ServerDeps{
			Conf:      conf,
			Logger:    logger,
			DB:        db,
			Notifier:  notifier,
			Validator: validate,
		},
	)

	go func() {
		server.Start()
	}()

	// =========================================================================
	// Shutdown

	select {
	case err = <-server.Errors():
		logger.Fatal(fmt.Sprintf("server error: %v", err), err)

	case sig := <-server.ShutdownSignal():
		logger.Info(fmt.Sprintf("%v: Start shutdown...", sig))

		// give outstanding requests a deadline for completion
		ctx, cancel := context.WithTimeout(context.Background(), conf.Sandbox.ShutdownTimeout)
		defer cancel()

		// asking listener to shutdown and shed load
		if err = server.Shutdown(ctx); err != nil {
			logger.Error(fmt.Sprintf("could not stop server gracefully: %v", err), err)

			if err = server.Close(); err != nil {
				logger.Fatal(fmt.Sprintf("could not force stop server: %v", err), err)
			}
		}
	}
}
