package vizcheck

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/okian/biofitviz/pkg/logger"
)

// Run checks a live service and returns ErrChecksFailed when any check fails.
func Run(ctx context.Context, config *Config) error {
	stats := &Stats{StartTime: time.Now()}
	log := logger.Named("vizcheck")

	log.Info(ctx, "starting geometry check",
		logger.String("baseURL", config.BaseURL),
		logger.Duration("timeout", config.Timeout),
		logger.Int("maxTraces", config.MaxTraces),
		logger.Int("maxStates", config.MaxStates),
	)

	client := newHTTPClient(config.Timeout)

	if err := checkServiceHealth(ctx, client, config.BaseURL, stats); err != nil {
		return fmt.Errorf("service health check failed: %w", err)
	}

	snap, err := fetchSnapshot(ctx, client, config.BaseURL, stats)
	if err != nil {
		return fmt.Errorf("fetch failed: %w", err)
	}
	stats.Traces = len(snap.Payload.Data)
	stats.Hulls = len(snap.Payload.Hulls)
	stats.Trajectories = len(snap.Payload.Trajectories)
	for _, tr := range snap.Payload.Data {
		stats.Points += len(tr.X)
	}

	findings := Verify(snap, config, stats)
	for _, f := range findings {
		log.Error(ctx, "check failed", logger.String("check", f.Check), logger.String("detail", f.Detail))
	}

	if config.OutputFile != "" {
		if err := savePayload(config.OutputFile, &snap.Payload); err != nil {
			log.Warn(ctx, "failed to save payload", logger.Error(err))
		} else {
			log.Info(ctx, "payload saved", logger.String("file", config.OutputFile))
		}
	}

	stats.EndTime = time.Now()
	stats.Duration = stats.EndTime.Sub(stats.StartTime)
	displayFinalStats(ctx, log, stats, config.Verbose)

	if len(findings) > 0 {
		return fmt.Errorf("%d of %d: %w", stats.Failures, stats.Checks, ErrChecksFailed)
	}
	return nil
}

// WritePayload encodes a payload as indented JSON.
func WritePayload(w io.Writer, payload any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(payload); err != nil {
		return fmt.Errorf("encode payload: %w", err)
	}
	return nil
}

// savePayload writes the payload to path, creating parent directories.
func savePayload(path string, payload any) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, directoryPermission); err != nil {
			return fmt.Errorf("create output directory: %w", err)
		}
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, filePermission)
	if err != nil {
		return fmt.Errorf("create output file: %w", err)
	}
	if err := WritePayload(f, payload); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

func displayFinalStats(ctx context.Context, log logger.Logger, stats *Stats, verbose bool) {
	fields := []logger.Field{
		logger.Int("checks", stats.Checks),
		logger.Int("failures", stats.Failures),
		logger.Duration("duration", stats.Duration),
	}
	if verbose {
		fields = append(fields,
			logger.Int("requests", stats.Requests),
			logger.Int("traces", stats.Traces),
			logger.Int("points", stats.Points),
			logger.Int("hulls", stats.Hulls),
			logger.Int("trajectories", stats.Trajectories),
		)
	}
	log.Info(ctx, "geometry check finished", fields...)
}
