package testlog

import (
	"testing"

	"github.com/rs/zerolog"

	"github.com/sundialdb/sundial-go/internal/observability"
)

// Start returns a logger for one test. It honors the SUNDIAL_LOG_* env
// overrides so a failing run can be re-run with debug output.
func Start(t *testing.T) zerolog.Logger {
	t.Helper()
	logger := observability.InitLogger("test")
	logger.Debug().Str("test", t.Name()).Msg("start")
	return logger
}
