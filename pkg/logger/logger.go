package logger

import (
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest"
)

var logger Logger

type Logger interface {
	Debug(msg string, fields ...interface{})
	Debugf(msg string, args ...interface{})
	Info(msg string, fields ...interface{})
	Infof(msg string, args ...interface{})
	Warn(msg string, fields ...interface{})
	Warnf(msg string, args ...interface{})
	Error(msg string, fields ...interface{})
	Errorf(msg string, args ...interface{})
	Fatal(msg string, fields ...interface{})
	Fatalf(msg string, args ...interface{})
}

type ZapLogger struct {
	Logger       *zap.Logger
	loggerConfig zap.Config
}

type optionFunc func(*ZapLogger)

func InitLogger(opts ...optionFunc) error {
	if logger != nil {
		return nil
	}
	zapLogger, err := NewZapLogger(opts...)
	if err != nil {
		return err
	}
	logger = zapLogger
	return nil
}

func NewZapLogger(opts ...optionFunc) (*ZapLogger, error) {
	// SetLogger may have installed a non-zap implementation; only reuse
	// the installed logger when it actually is one of ours, and leave a
	// foreign logger in place.
	if zapLogger, ok := logger.(*ZapLogger); ok {
		return zapLogger, nil
	}
	loggerConfig := zap.NewProductionConfig()
	loggerZap := &ZapLogger{loggerConfig: loggerConfig}
	for _, opt := range opts {
		opt(loggerZap)
	}
	var err error
	loggerZap.Logger, err = loggerZap.loggerConfig.Build()
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = loggerZap
	}
	return loggerZap, nil
}

func NewZapLoggerForTest(t *testing.T) Logger {
	return &ZapLogger{
		Logger: zaptest.NewLogger(t),
	}
}

func WithLevel(level zapcore.Level) optionFunc {
	return func(zl *ZapLogger) {
		zl.loggerConfig.Level = zap.NewAtomicLevelAt(level)
	}
}

func WithEncodeTime(timeKey string, timeEncoder zapcore.TimeEncoder) optionFunc {
	return func(zl *ZapLogger) {
		zl.loggerConfig.EncoderConfig.TimeKey = timeKey
		zl.loggerConfig.EncoderConfig.EncodeTime = timeEncoder
	}
}

// SetLogger replaces the package logger, returning the previous one.
// Used by tests to capture output.
func SetLogger(l Logger) Logger {
	prev := logger
	logger = l
	return prev
}

func GetLogger() Logger {
	return get()
}

// get falls back to the default production logger when InitLogger was
// never called, so library code can log before main wires things up.
func get() Logger {
	if logger == nil {
		return DefaultLogger()
	}
	return logger
}

func Debug(msg string, fields ...interface{}) {
	get().Debug(msg, fields...)
}

func Debugf(msg string, fields ...interface{}) {
	get().Debugf(msg, fields...)
}

func Info(msg string, fields ...interface{}) {
	get().Info(msg, fields...)
}

func Infof(msg string, fields ...interface{}) {
	get().Infof(msg, fields...)
}

func Warn(msg string, fields ...interface{}) {
	get().Warn(msg, fields...)
}

func Warnf(msg string, fields ...interface{}) {
	get().Warnf(msg, fields...)
}

func Error(msg string, fields ...interface{}) {
	get().Error(msg, fields...)
}

func Errorf(msg string, fields ...interface{}) {
	get().Errorf(msg, fields...)
}

func Fatal(msg string, fields ...interface{}) {
	get().Fatal(msg, fields...)
}

func Fatalf(msg string, fields ...interface{}) {
	get().Fatalf(msg, fields...)
}

func (l *ZapLogger) Debug(msg string, fields ...interface{}) {
	l.Logger.Sugar().Debugw(msg, fields...)
}

func (l *ZapLogger) Debugf(msg string, args ...interface{}) {
	l.Logger.Sugar().Debugf(msg, args...)
}

func (l *ZapLogger) Info(msg string, fields ...interface{}) {
	l.Logger.Sugar().Infow(msg, fields...)
}

func (l *ZapLogger) Infof(msg string, args ...interface{}) {
	l.Logger.Sugar().Infof(msg, args...)
}

func (l *ZapLogger) Warn(msg string, fields ...interface{}) {
	l.Logger.Sugar().Warnw(msg, fields...)
}

func (l *ZapLogger) Warnf(msg string, args ...interface{}) {
	l.Logger.Sugar().Warnf(msg, args...)
}

func (l *ZapLogger) Error(msg string, fields ...interface{}) {
	l.Logger.Sugar().Errorw(msg, fields...)
}

func (l *ZapLogger) Errorf(msg string, args ...interface{}) {
	l.Logger.Sugar().Errorf(msg, args...)
}

func (l *ZapLogger) Fatal(msg string, fields ...interface{}) {
	l.Logger.Sugar().Fatalw(msg, fields...)
}

func (l *ZapLogger) Fatalf(msg string, args ...interface{}) {
	l.Logger.Sugar().Fatalf(msg, args...)
}

func DefaultLogger() Logger {
	logger, _ := NewZapLogger(WithLevel(zap.InfoLevel), WithEncodeTime("timestamp", zapcore.ISO8601TimeEncoder))
	return logger
}
