package echoapi

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"

	"github.com/azedu/quizdesk/core"
	"github.com/azedu/quizdesk/core/dashboard"
	"github.com/azedu/quizdesk/core/department"
	"github.com/azedu/quizdesk/core/group"
	"github.com/azedu/quizdesk/core/quiz"
	"github.com/azedu/quizdesk/core/subject"
	"github.com/azedu/quizdesk/core/user"
)

type (
	ServerDeps struct {
		Conf           *core.Config
		Logger         core.Logger
		UserSvc        user.Service
		DepartmentSvc  department.Service
		GroupSvc       group.Service
		SubjectSvc     subject.Service
		QuizSvc        quiz.Service
		DashboardSvc   dashboard.Service
		Validate       *validator.Validate
		Translator     ut.Translator
		DisableReqLogs bool
	}

	Server interface {
		http.Handler
		Start()
		Errors() <-chan error
		ShutdownSignal() <-chan os.Signal
		Shutdown(context.Context) error
		Close() error
	}

	server struct {
		deps      ServerDeps
		app       *echo.Echo
		jwtConfig middleware.JWTConfig
		errCh     chan error
		sigCh     chan os.Signal
	}
)

var _ Server = (*server)(nil)

func NewServer(deps ServerDeps) Server {
	s := &server{
		deps:      deps,
		app:       echo.New(),
		jwtConfig: newJWTConfig(deps.Conf),
		errCh:     make(chan error, 1),
		sigCh:     make(chan os.Signal, 1),
	}
	signal.Notify(s.sigCh, syscall.SIGINT, syscall.SIGTERM)
	s.setup()
	return s
}

func (s *server) setup() {
	conf := s.deps.Conf

	s.app.Pre(middleware.RemoveTrailingSlash())
	if !s.deps.DisableReqLogs {
		s.app.Use(middleware.Logger())
	}
	// do not recover in DEV|TEST mode
	if !(conf.Debug || conf.TestMode) {
		s.app.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{LogLevel: log.ERROR}))
	}

	s.app.HTTPErrorHandler = newAppHTTPErrorHandler(s.deps.Logger, s.deps.Translator, s.signalShutdown)
	s.app.Debug = conf.Debug
	s.app.HideBanner = true

	s.app.GET("/", home)

	api := s.app.Group("/api")
	jwt := middleware.JWTWithConfig(s.jwtConfig)

	registerAuthAPI(api, jwt, s.deps)
	registerUserAPI(api, jwt, s.deps)
	registerDepartmentAPI(api, jwt, s.deps)
	registerGroupAPI(api, jwt, s.deps)
	registerSubjectAPI(api, jwt, s.deps)
	registerQuizAPI(api, jwt, s.deps)
	registerTakeQuizAPI(api, jwt, s.deps)
	registerGradingAPI(api, jwt, s.deps)
	registerDashboardAPI(api, jwt, s.deps)
}

func (s *server) Start() {
	if err := s.app.Start(s.deps.Conf.Server.Address()); err != nil && err != http.ErrServerClosed {
		s.errCh <- err
	}
}

func (s *server) Errors() <-chan error { return s.errCh }

func (s *server) ShutdownSignal() <-chan os.Signal { return s.sigCh }

// signalShutdown lets the error handler request a graceful stop when an
// integrity issue is caught.
func (s *server) signalShutdown() {
	s.sigCh <- syscall.SIGTERM
}

func (s *server) Shutdown(ctx context.Context) error {
	return s.app.Shutdown(ctx)
}

func (s *server) Close() error {
	return s.app.Close()
}

func (s *server) ServeHTTP(w http.ResponseWriter, r *http.Request) { // for tests
	s.app.ServeHTTP(w, r)
}

func home(ctx echo.Context) error {
	return ctx.String(http.StatusOK, "Welcome to Quizdesk API!")
}
