package bag

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger is the logger used by all packages of the converter. Replace it with
// SetLogger.
var Logger *zap.SugaredLogger

var atomicLevel = zap.NewAtomicLevelAt(zap.InfoLevel)

func init() {
	encCfg := zap.NewDevelopmentEncoderConfig()
	encCfg.TimeKey = ""
	core := zapcore.NewCore(
		zapcore.NewConsoleEncoder(encCfg),
		zapcore.Lock(os.Stderr),
		atomicLevel,
	)
	Logger = zap.New(core).Sugar()
}

// Level type
type Level int8

const (
	// FatalLevel logs and then calls os.Exit(1).
	FatalLevel Level = iota
	// ErrorLevel is used for errors that should definitely be noted.
	ErrorLevel
	// WarnLevel is for non-critical entries that deserve eyes.
	WarnLevel
	// InfoLevel is for general operational entries.
	InfoLevel
	// DebugLevel is usually only enabled when debugging. Very verbose logging.
	DebugLevel
)

// SetLogLevel sets the logging level of the default logger.
func SetLogLevel(level Level) {
	switch level {
	case FatalLevel:
		atomicLevel.SetLevel(zap.FatalLevel)
	case ErrorLevel:
		atomicLevel.SetLevel(zap.ErrorLevel)
	case WarnLevel:
		atomicLevel.SetLevel(zap.WarnLevel)
	case InfoLevel:
		atomicLevel.SetLevel(zap.InfoLevel)
	case DebugLevel:
		atomicLevel.SetLevel(zap.DebugLevel)
	}
}

// ParseLevel returns the level for names such as "debug" or "warn".
func ParseLevel(name string) (Level, error) {
	var zl zapcore.Level
	if err := zl.UnmarshalText([]byte(name)); err != nil {
		return InfoLevel, err
	}
	switch {
	case zl <= zapcore.DebugLevel:
		return DebugLevel, nil
	case zl == zapcore.InfoLevel:
		return InfoLevel, nil
	case zl == zapcore.WarnLevel:
		return WarnLevel, nil
	case zl == zapcore.ErrorLevel:
		return ErrorLevel, nil
	}
	return FatalLevel, nil
}

// SetLogger replaces the package logger. A nil logger discards everything.
func SetLogger(l *zap.Logger) {
	if l == nil {
		l = zap.NewNop()
	}
	Logger = l.Sugar()
}

// LogError logs with log level ErrorLevel
func LogError(args ...any) {
	Logger.Error(args...)
}

// LogWarn logs with log level WarnLevel
func LogWarn(args ...any) {
	Logger.Warn(args...)
}

// LogInfo logs with log level InfoLevel
func LogInfo(args ...any) {
	Logger.Info(args...)
}

// LogDebug logs with log level DebugLevel
func LogDebug(args ...any) {
	Logger.Debug(args...)
}

// Fields type, used to pass to `LogWithFields`.
type Fields map[string]any

// LogWithFields returns a logger that adds the key values to each entry.
func LogWithFields(f Fields) *zap.SugaredLogger {
	kv := make([]any, 0, 2*len(f))
	for k, v := range f {
		kv = append(kv, k, v)
	}
	return Logger.With(kv...)
}
