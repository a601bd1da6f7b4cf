package echoapi

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"
	"github.com/pkg/errors"

	"github.com/trezcool/placement/core"
	"github.com/trezcool/placement/core/session"
	inmemdb "github.com/trezcool/placement/storage/inmem"
)

type (
	ServerDeps struct {
		Conf      *core.Config
		Logger    core.Logger
		DB        *inmemdb.DB
		Notifier  core.Notifier
		Validator *core.Validator
	}

	// Server is the sandbox rendition of the remote placement API.
	Server struct {
		deps     ServerDeps
		app      *echo.Echo
		errs     chan error
		shutdown chan os.Signal
	}
)

var _ http.Handler = (*Server)(nil)

func NewServer(deps ServerDeps) *Server {
	s := &Server{
		deps:     deps,
		app:      echo.New(),
		errs:     make(chan error, 1),
		shutdown: make(chan os.Signal, 1),
	}
	s.setup()
	return s
}

func (s *Server) setup() {
	conf := s.deps.Conf

	s.app.HideBanner = true
	s.app.Pre(middleware.RemoveTrailingSlash())
	s.app.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{
		TargetHeader: echo.HeaderXRequestID,
	}))
	if !conf.Sandbox.DisableReqLogs {
		s.app.Use(middleware.Logger())
	}
	// do not recover in DEV|TEST mode
	if !(conf.Debug || conf.TestMode) {
		s.app.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{LogLevel: log.ERROR}))
	}

	s.app.HTTPErrorHandler = newAppHTTPErrorHandler(s.deps.Logger, s.signalShutdown)
	s.app.Debug = conf.Debug

	s.app.GET("/", home)

	g := s.app.Group("/api")
	jwt := jwtMiddleware([]byte(conf.Sandbox.SecretKey))
	api := &sandboxAPI{
		conf:      conf,
		logger:    s.deps.Logger,
		db:        s.deps.DB,
		notifier:  s.deps.Notifier,
		validator: s.deps.Validator,
	}

	g.POST("/auth/login", api.login)

	lg := g.Group("/logbooks", jwt)
	lg.GET("", api.getLogbook)
	lg.POST("/entry", api.saveEntry, roleMiddleware(session.RoleStudent))
	lg.POST("/submit", api.submitLogbook, roleMiddleware(session.RoleStudent))
	lg.POST("/verify/:id", api.verifyLogbook, roleMiddleware(session.MentorRoles...))
	lg.POST("/upload-signed/:id", api.uploadSigned, roleMiddleware(session.MentorRoles...))
	lg.GET("/:id/download", api.downloadSigned)
	lg.GET("/consolidated/:studentId", api.downloadConsolidated)
	lg.GET("/history/:studentId", api.history)
	lg.GET("/pending", api.pending, roleMiddleware(session.RoleAcademicMentor, session.RoleIndustryMentor, session.RoleCoordinator))

	pg := g.Group("/placement", jwt)
	pg.GET("", api.getPlacement)
	pg.POST("", api.createPlacement, roleMiddleware(session.RoleStudent))

	sg := g.Group("/submissions", jwt)
	sg.GET("/:studentId", api.submissionStatus)
	sg.POST("/marksheet", api.uploadMarksheet, roleMiddleware(session.RoleStudent))
	sg.POST("/presentation", api.uploadPresentation, roleMiddleware(session.RoleStudent))
	sg.POST("/notify", api.notifyCoordinator, roleMiddleware(session.RoleStudent))

	mg := g.Group("/marks", jwt)
	mg.GET("/:studentId", api.getMarks)
	mg.POST("/academic", api.submitAcademicMarks, roleMiddleware(session.RoleAcademicMentor))
	mg.POST("/industry", api.submitIndustryMarks, roleMiddleware(session.RoleIndustryMentor))
}

// Start listens on the configured address and watches for SIGINT/SIGTERM.
// Listener failures are reported on Errors.
func (s *Server) Start() {
	signal.Notify(s.shutdown, os.Interrupt, syscall.SIGTERM)
	if err := s.app.Start(s.deps.Conf.Sandbox.Addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		s.errs <- err
	}
}

func (s *Server) Errors() <-chan error {
	return s.errs
}

func (s *Server) ShutdownSignal() <-chan os.Signal {
	return s.shutdown
}

func (s *Server) signalShutdown() {
	select {
	case s.shutdown <- syscall.SIGTERM:
	default:
	}
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.app.Shutdown(ctx)
}

func (s *Server) Close() error {
	return s.app.Close()
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) { // for tests
	s.app.ServeHTTP(w, r)
}

func home(ctx echo.Context) error {
	return ctx.String(http.StatusOK, "Placement sandbox API")
}
