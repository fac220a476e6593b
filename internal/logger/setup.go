package logger

import (
	"log"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Level is the minimum severity the logger emits.
type Level string

const (
	Debug   Level = "debug"
	Info    Level = "info"
	Warning Level = "warning"
	Error   Level = "error"
)

// Config holds the logger settings.
//
// The level can be overridden through the LOG_LEVEL environment variable,
// which is how deployments tune verbosity without a rebuild.
type Config struct {
	Level       Level
	ServiceName string
}

// NewConfig reads the logger configuration from environment variables.
func NewConfig() Config {
	level := Info
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		level = Level(v)
	}

	service := os.Getenv("SERVICE_NAME")
	if service == "" {
		service = "mcp-server-qdrant"
	}

	return Config{
		Level:       level,
		ServiceName: service,
	}
}

// Logger is a wrapper around Uber's Zap logger.
// It provides a simplified interface to the underlying Zap logger; the Zap
// field is exposed for the rare cases that need Zap-specific functionality.
type Logger struct {
	Zap *zap.Logger
}

// NewLogger initializes a new structured logger based on configuration.
//
// The logger is configured with:
//   - JSON encoding for structured logging
//   - ISO8601 timestamp format
//   - Process ID and service name as default fields
//   - Output directed to stderr
//
// Everything goes to stderr on purpose: in stdio transport mode stdout
// belongs to the MCP protocol stream and must stay clean.
func NewLogger(cfg Config) *Logger {
	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.TimeKey = "timestamp"
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	encoderCfg.EncodeLevel = zapcore.CapitalLevelEncoder
	encoderCfg.EncodeDuration = zapcore.MillisDurationEncoder

	logLevel := zap.InfoLevel

	switch cfg.Level {
	case Debug:
		logLevel = zap.DebugLevel
	case Info:
		logLevel = zap.InfoLevel
	case Warning:
		logLevel = zap.WarnLevel
	case Error:
		logLevel = zap.ErrorLevel
	}

	config := zap.Config{
		Level:         zap.NewAtomicLevelAt(logLevel),
		Encoding:      "json",
		EncoderConfig: encoderCfg,
		OutputPaths: []string{
			"stderr",
		},
		ErrorOutputPaths: []string{
			"stderr",
		},
		InitialFields: map[string]interface{}{
			"pid":     os.Getpid(),
			"service": cfg.ServiceName,
		},
	}

	logger, err := config.Build(zap.AddCaller(), zap.AddCallerSkip(1))
	if err != nil {
		log.Fatal(err)
	}

	return &Logger{Zap: logger}
}

// Debug logs a message at debug level with optional structured fields.
func (l *Logger) Debug(msg string, err error, fields map[string]any) {
	l.Zap.Debug(msg, toZapFields(err, fields)...)
}

// Info logs a message at info level with optional structured fields.
func (l *Logger) Info(msg string, err error, fields map[string]any) {
	l.Zap.Info(msg, toZapFields(err, fields)...)
}

// Warn logs a message at warning level with optional structured fields.
func (l *Logger) Warn(msg string, err error, fields map[string]any) {
	l.Zap.Warn(msg, toZapFields(err, fields)...)
}

// Error logs a message at error level with optional structured fields.
func (l *Logger) Error(msg string, err error, fields map[string]any) {
	l.Zap.Error(msg, toZapFields(err, fields)...)
}

func toZapFields(err error, fields map[string]any) []zap.Field {
	out := make([]zap.Field, 0, len(fields)+1)
	if err != nil {
		out = append(out, zap.Error(err))
	}
	for k, v := range fields {
		out = append(out, zap.Any(k, v))
	}
	return out
}
