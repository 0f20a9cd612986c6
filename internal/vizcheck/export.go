package vizcheck

import (
	"context"
	"fmt"
	"io"

	app "github.com/okian/biofitviz/internal/app"
	"github.com/okian/biofitviz/internal/config"
	"github.com/okian/biofitviz/pkg/logger"
)

// Export loads the dataset described by cfg and writes the dashboard payload
// without starting a server.
func Export(ctx context.Context, cfg *config.Config, w io.Writer) error {
	svc := app.New(append(app.OptionsFromConfig(cfg), app.WithLogger(logger.Named("export")))...)
	if err := svc.Start(ctx); err != nil {
		return fmt.Errorf("start service: %w", err)
	}
	defer svc.Stop()

	res, err := svc.Data(ctx)
	if err != nil {
		return fmt.Errorf("compute payload: %w", err)
	}
	return WritePayload(w, res)
}
