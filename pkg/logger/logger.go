package logger

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var Log = zap.NewNop().Sugar()

func InitLogger(levelStr string) {
	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	encoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder

	// Default to INFO if invalid or empty
	if levelStr == "" {
		levelStr = "info"
	}
	level, err := zapcore.ParseLevel(levelStr)
	if err != nil {
		level = zap.InfoLevel
	}

	// Progress lines and the statistics block go to stdout, so keep logs on stderr.
	consoleEncoder := zapcore.NewConsoleEncoder(encoderConfig)
	core := zapcore.NewCore(consoleEncoder, zapcore.AddSync(os.Stderr), level)

	logger := zap.New(core, zap.AddCaller())
	Log = logger.Sugar()
	Log.Debugf("Logger initialized at level: %s", level.String())
}

// Named returns a child of the global logger tagged with the component name.
func Named(component string) *zap.SugaredLogger {
	return Log.Named(component)
}

func Sync() {
	_ = Log.Sync()
}
