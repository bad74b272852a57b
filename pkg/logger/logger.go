package logger

import "go.uber.org/zap"

var log = zap.NewNop()

// Init replaces the no-op logger with a real one for the given environment
func Init(env string) {
	var err error
	if env == "production" {
		log, err = zap.NewProduction()
	} else {
		log, err = zap.NewDevelopment()
	}
	if err != nil {
		panic(err)
	}
}

func Info(msg string, fields ...zap.Field)  { log.Info(msg, fields...) }
func Warn(msg string, fields ...zap.Field)  { log.Warn(msg, fields...) }
func Error(msg string, fields ...zap.Field) { log.Error(msg, fields...) }
func Fatal(msg string, fields ...zap.Field) { log.Fatal(msg, fields...) }

// Sync flushes any buffered log entries
func Sync() { _ = log.Sync() }
