package vizcheck

import (
	"fmt"
	"os"

	"github.com/okian/biofitviz/pkg/logger"
)

// SetupLogging configures text logging to stderr, at debug level when verbose.
func SetupLogging(verbose bool) error {
	if err := logger.Init(logger.WithFormat(logger.FormatText), logger.WithOutput(os.Stderr)); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	if verbose {
		return logger.SetLevelString("debug")
	}
	return nil
}
