package logsvc

import (
	"log"

	"github.com/rollbar/rollbar-go"
	"github.com/rollbar/rollbar-go/errors"

	"github.com/trezcool/tutorparty/core"
	"github.com/trezcool/tutorparty/core/session"
)

// RollbarLogger writes to a standard logger and reports to Rollbar when enabled.
type RollbarLogger struct {
	std *log.Logger
}

var _ core.Logger = (*RollbarLogger)(nil)

func NewRollbarLogger(std *log.Logger, conf *core.Config) *RollbarLogger {
	rollbar.SetToken(conf.RollbarToken)
	rollbar.SetEnvironment(conf.Env)
	rollbar.SetServerHost(conf.Server.Host)
	rollbar.SetCodeVersion(conf.Build)
	rollbar.SetStackTracer(errors.StackTracer)
	return &RollbarLogger{std: std}
}

func (l RollbarLogger) Enable(enabled bool) {
	rollbar.SetEnabled(enabled)
}

// prepare turns logger args into rollbar args.
// expected fmt: msg | error, map[string]interface{}, session.Payload
func (l RollbarLogger) prepare(msg string, args []interface{}) []interface{} {
	var memberSet bool
	newArgs := make([]interface{}, 0, len(args)+1)
	newArgs = append(newArgs, msg)
	for _, arg := range args {
		// the acting member is reported as the rollbar person
		if sess, ok := member(arg); ok {
			if !memberSet {
				rollbar.SetPerson(sess.MemberID, sess.Name, "")
				memberSet = true
			}
			continue
		}
		newArgs = append(newArgs, arg)
	}
	if !memberSet {
		rollbar.ClearPerson()
	}
	return newArgs
}

func member(arg interface{}) (session.Payload, bool) {
	switch sess := arg.(type) {
	case session.Payload:
		return sess, true
	case *session.Payload:
		if sess != nil {
			return *sess, true
		}
	}
	return session.Payload{}, false
}

func (l RollbarLogger) print(level, msg string, args []interface{}) {
	l.std.Printf("%s: %s", level, msg)
	for _, arg := range args {
		if sess, ok := member(arg); ok {
			l.std.Printf("\tmember: %s (%s)", sess.Name, sess.MemberID)
			continue
		}
		l.std.Printf("\t%+v", arg)
	}
}

func (l RollbarLogger) Debug(msg string, args ...interface{}) {
	rollbar.Debug(l.prepare(msg, args)...)
	l.print("DEBUG", msg, args)
}

func (l RollbarLogger) Info(msg string, args ...interface{}) {
	rollbar.Info(l.prepare(msg, args)...)
	l.print("INFO", msg, args)
}

func (l RollbarLogger) Warn(msg string, args ...interface{}) {
	rollbar.Warning(l.prepare(msg, args)...)
	l.print("WARN", msg, args)
}

func (l RollbarLogger) Error(msg string, args ...interface{}) {
	rollbar.Error(l.prepare(msg, args)...)
	l.print("ERROR", msg, args)
}

func (l RollbarLogger) Fatal(msg string, args ...interface{}) {
	rollbar.Critical(l.prepare(msg, args)...)
	l.print("FATAL", msg, args)
	l.std.Fatal(msg)
}
