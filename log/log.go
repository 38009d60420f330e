package log

import (
	"go.uber.org/zap"
)

func init() {
	conf := zap.NewDevelopmentConfig()
	conf.DisableStacktrace = true
	logger, err := conf.Build()
	if err != nil {
		return
	}
	zap.ReplaceGlobals(logger)
}

func S() *zap.SugaredLogger {
	return zap.S()
}

// Sync flushes buffered log entries, ignoring the error zap returns for
// unsyncable outputs such as a terminal.
func Sync() {
	_ = zap.L().Sync()
}
