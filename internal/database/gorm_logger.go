package database

import (
	"time"

	"go.uber.org/zap"
	gormlogger "gorm.io/gorm/logger"

	"pennywise/internal/logger"
)

const slowQueryThreshold = 200 * time.Millisecond

// zapWriter feeds gorm's log lines into the application logger.
type zapWriter struct {
	log *zap.SugaredLogger
}

func (w zapWriter) Printf(format string, args ...interface{}) {
	w.log.Warnf(format, args...)
}

// newGormLogger reports failed and slow queries through zap. Lookups that
// find nothing are expected and stay quiet.
func newGormLogger() gormlogger.Interface {
	return gormlogger.New(zapWriter{log: logger.Named("gorm")}, gormlogger.Config{
		SlowThreshold:             slowQueryThreshold,
		LogLevel:                  gormlogger.Warn,
		IgnoreRecordNotFoundError: true,
		Colorful:                  false,
	})
}
