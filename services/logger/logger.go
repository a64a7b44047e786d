package logsvc

import (
	"fmt"

	"github.com/rollbar/rollbar-go"
	"github.com/rollbar/rollbar-go/errors"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/trezcool/hostel/core"
	"github.com/trezcool/hostel/core/user"
)

// Logger writes structured logs with zap and, when a Rollbar token is configured,
// reports warnings and errors to Rollbar.
type Logger struct {
	zl      *zap.Logger
	rollbar bool
}

var _ core.Logger = (*Logger)(nil)

func New(zl *zap.Logger, conf *core.Config) *Logger {
	l := &Logger{zl: zl}
	if conf.RollbarToken != "" {
		rollbar.SetToken(conf.RollbarToken)
		rollbar.SetEnvironment(conf.Env)
		rollbar.SetServerHost(conf.Server.Host)
		rollbar.SetCodeVersion(conf.Build)
		rollbar.SetStackTracer(errors.StackTracer)
		l.rollbar = true
	}
	return l
}

// NewNop discards everything; meant for tests.
func NewNop() *Logger {
	return &Logger{zl: zap.NewNop()}
}

func (l *Logger) Zap() *zap.Logger { return l.zl }

func (l *Logger) Sync() error {
	if l.rollbar {
		rollbar.Wait()
	}
	return l.zl.Sync()
}

// expected args: error, map[string]interface{}, user.Principal, anything else is logged as-is.
func (l *Logger) prepare(args []interface{}) (fields []zap.Field, rbArgs []interface{}) {
	var principalSet bool
	fields = make([]zap.Field, 0, len(args))
	rbArgs = make([]interface{}, 0, len(args))
	for i, arg := range args {
		switch a := arg.(type) {
		case user.Principal:
			if !principalSet { // only set one principal
				fields = append(fields, zap.String("user_id", a.ID), zap.Strings("roles", a.Roles))
				if l.rollbar {
					rollbar.SetPerson(a.ID, a.Name, a.Email)
				}
				principalSet = true
			}
		case error:
			fields = append(fields, zap.Error(a))
			rbArgs = append(rbArgs, a)
		case map[string]interface{}:
			for k, v := range a {
				fields = append(fields, zap.Any(k, v))
			}
			rbArgs = append(rbArgs, a)
		default:
			fields = append(fields, zap.Any(fmt.Sprintf("arg%d", i), a))
		}
	}
	if l.rollbar && !principalSet {
		rollbar.ClearPerson()
	}
	return fields, rbArgs
}

func (l *Logger) log(level zapcore.Level, msg string, args []interface{}) {
	fields, rbArgs := l.prepare(args)
	if l.rollbar {
		rbArgs = append([]interface{}{msg}, rbArgs...)
		switch level {
		case zapcore.WarnLevel:
			rollbar.Warning(rbArgs...)
		case zapcore.ErrorLevel:
			rollbar.Error(rbArgs...)
		case zapcore.FatalLevel:
			rollbar.Critical(rbArgs...)
			rollbar.Wait() // zap exits right after writing
		}
	}
	if ce := l.zl.Check(level, msg); ce != nil {
		ce.Write(fields...)
	}
}

func (l *Logger) Debug(msg string, args ...interface{}) { l.log(zapcore.DebugLevel, msg, args) }
func (l *Logger) Info(msg string, args ...interface{})  { l.log(zapcore.InfoLevel, msg, args) }
func (l *Logger) Warn(msg string, args ...interface{})  { l.log(zapcore.WarnLevel, msg, args) }
func (l *Logger) Error(msg string, args ...interface{}) { l.log(zapcore.ErrorLevel, msg, args) }
func (l *Logger) Fatal(msg string, args ...interface{}) { l.log(zapcore.FatalLevel, msg, args) }
