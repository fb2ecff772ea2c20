package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"golang.org/x/sync/errgroup"

	echoapi "github.com/azedu/quizdesk/apps/api/echo"
	"github.com/azedu/quizdesk/core"
	"github.com/azedu/quizdesk/core/dashboard"
	"github.com/azedu/quizdesk/core/department"
	"github.com/azedu/quizdesk/core/group"
	"github.com/azedu/quizdesk/core/quiz"
	"github.com/azedu/quizdesk/core/subject"
	"github.com/azedu/quizdesk/core/user"
	emailsvc "github.com/azedu/quizdesk/services/email"
	logsvc "github.com/azedu/quizdesk/services/logger"
	"github.com/azedu/quizdesk/storage/database"
	sqlxrepos "github.com/azedu/quizdesk/storage/database/sqlx"
	"github.com/azedu/quizdesk/storage/otp"
)

func main() {
	// =========================================================================
	// Set up Dependencies

	conf := core.NewConfig()

	// set up loggers
	logger := logsvc.NewRollbarLogger(
		log.New(os.Stdout, "API : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile),
		conf,
	)
	logger.Enable(!conf.Debug)

	// set up DB
	db, err := database.Open(conf)
	if err != nil {
		logger.Fatal(fmt.Sprintf("opening database: %v", err), err)
	}
	defer func() { _ = db.Close() }()
	if err = database.Ping(db); err != nil {
		logger.Fatal(fmt.Sprintf("pinging database: %v", err), err)
	}
	if err = database.Migrate(db, conf); err != nil {
		logger.Fatal(fmt.Sprintf("migrating database: %v", err), err)
	}

	// set up services
	var mailSvc core.EmailService
	if conf.Debug {
		mailSvc = emailsvc.NewConsoleService(conf)
	} else {
		mailSvc = emailsvc.NewSendgridService(conf, logger)
	}

	var otpStore user.OTPStore
	if conf.Debug {
		otpStore = otp.NewInMemStore()
	} else {
		redisStore := otp.NewRedisStore(conf)
		if err = redisStore.Ping(context.Background()); err != nil {
			logger.Fatal(fmt.Sprintf("pinging redis: %v", err), err)
		}
		defer func() { _ = redisStore.Close() }()
		otpStore = redisStore
	}

	usrSvc := user.NewService(sqlxrepos.NewUserRepository(db), mailSvc, otpStore, conf)
	depSvc := department.NewService(sqlxrepos.NewDepartmentRepository(db))
	grpSvc := group.NewService(sqlxrepos.NewGroupRepository(db))
	subSvc := subject.NewService(sqlxrepos.NewSubjectRepository(db))
	quizSvc := quiz.NewService(sqlxrepos.NewQuizRepository(db))
	dashSvc := dashboard.NewService(sqlxrepos.NewDashboardRepository(db))

	// =========================================================================
	// Initialize App

	logger.Info(fmt.Sprintf("Application initializing : version %q", conf.Build))
	defer logger.Info("Application stopped")

	validate, translator := core.NewValidator()
	user.RegisterValidators(validate, translator)
	quiz.RegisterValidators(validate, translator)

	// =========================================================================
	// Start API Service & Background Jobs

	server := echoapi.NewServer(echoapi.ServerDeps{
		Conf:          conf,
		Logger:        logger,
		UserSvc:       usrSvc,
		DepartmentSvc: depSvc,
		GroupSvc:      grpSvc,
		SubjectSvc:    subSvc,
		QuizSvc:       quizSvc,
		DashboardSvc:  dashSvc,
		Validate:      validate,
		Translator:    translator,
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		sweepExpiredQuizzes(gctx, quizSvc, logger, conf.Server.QuizSweepInterval)
		return nil
	})
	go server.Start()

	// =========================================================================
	// Shutdown

	select {
	case err = <-server.Errors():
		logger.Fatal(fmt.Sprintf("server error: %v", err), err)

	case sig := <-server.ShutdownSignal():
		logger.Info(fmt.Sprintf("%v: Start shutdown...", sig))

		// give outstanding requests a deadline for completion
		shutCtx, shutCancel := context.WithTimeout(context.Background(), conf.Server.ShutdownTimeout)
		defer shutCancel()

		// asking listener to shutdown and shed load
		if err = server.Shutdown(shutCtx); err != nil {
			logger.Error(fmt.Sprintf("could not stop server gracefully: %v", err), err)

			if err = server.Close(); err != nil {
				logger.Fatal(fmt.Sprintf("could not force stop server: %v", err), err)
			}
		}
	}

	cancel()
	_ = g.Wait()
}
