package logsvc

import (
	"log"
	"strconv"

	"github.com/rollbar/rollbar-go"
	"github.com/rollbar/rollbar-go/errors"

	"github.com/azedu/quizdesk/core"
	"github.com/azedu/quizdesk/core/user"
)

// RollbarLogger mirrors everything to stdout and, when enabled, to rollbar.
// A user.User passed among the args becomes the reported person.
type RollbarLogger struct {
	std *log.Logger
	rb  *rollbar.Client
}

var _ core.Logger = (*RollbarLogger)(nil)

func NewRollbarLogger(std *log.Logger, conf *core.Config) *RollbarLogger {
	rb := rollbar.New(conf.RollbarToken, conf.Env, conf.Build, conf.Server.Host, "")
	rb.SetStackTracer(errors.StackTracer)
	return &RollbarLogger{std: std, rb: rb}
}

func (l *RollbarLogger) Enable(enabled bool) {
	l.rb.SetEnabled(enabled)
}

func (l *RollbarLogger) Close() error {
	return l.rb.Close()
}

func (l *RollbarLogger) log(level, msg string, args []interface{}) {
	l.std.Println(msg)

	var person bool
	var reported error
	for _, arg := range args {
		l.std.Printf("%+v\n", arg)
		switch v := arg.(type) {
		case user.User:
			if !person {
				l.rb.SetPerson(strconv.Itoa(v.ID), v.FullName(), v.Email)
				person = true
			}
		case error:
			if reported == nil {
				reported = v
			}
		}
	}
	if !person {
		l.rb.ClearPerson()
	}
	if reported != nil {
		l.rb.ErrorWithLevel(level, reported)
		return
	}
	l.rb.Message(level, msg)
}

func (l *RollbarLogger) Debug(msg string, args ...interface{}) {
	l.log(rollbar.DEBUG, msg, args)
}

func (l *RollbarLogger) Info(msg string, args ...interface{}) {
	l.log(rollbar.INFO, msg, args)
}

func (l *RollbarLogger) Warn(msg string, args ...interface{}) {
	l.log(rollbar.WARN, msg, args)
}

func (l *RollbarLogger) Error(msg string, args ...interface{}) {
	l.log(rollbar.ERR, msg, args)
}

func (l *RollbarLogger) Fatal(msg string, args ...interface{}) {
	l.log(rollbar.CRIT, msg, args)
	l.rb.Wait()
	l.std.Fatal(msg)
}
