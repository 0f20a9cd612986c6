package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/okian/biofitviz/internal/config"
	"github.com/okian/biofitviz/internal/vizcheck"
	"github.com/spf13/cobra"
)

// Default flag values.
const (
	defaultURL       = "http://localhost:5000"
	defaultTimeout   = 30 * time.Second
	defaultRunBudget = 5 * time.Minute
)

var version = "dev"

var rootCmd = &cobra.Command{
	Use:     "vizcheck",
	Short:   "Inspect and verify biofitviz geometry",
	Version: version,
	Long: `
vizcheck exports the dashboard payload straight from the configured tables, or
fetches it from a running server and verifies the hull and reducer invariants.
`,
	SilenceUsage: true,
}

var checkFlags vizcheck.Config

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Fetch a running server's payload and verify it",
	Long: `Fetches /healthz, /api/data, /api/hulls and /api/workout_descriptions and
checks that every hull is convex, every displayed point lies inside its
cluster's hull, and traces stay within the given bounds.

$ vizcheck check --url http://localhost:5000 --max-traces 15 --max-states 4`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		if err := vizcheck.SetupLogging(checkFlags.Verbose); err != nil {
			return err
		}
		ctx, cancel := context.WithTimeout(cmd.Context(), defaultRunBudget)
		defer cancel()
		return vizcheck.Run(ctx, &checkFlags)
	},
}

var exportOut string

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Compute the payload from the configured tables and print it",
	Long: `Loads configuration the same way the server does (defaults, the file named
by BIOFITVIZ_CONFIG, then BIOFITVIZ_* variables) and writes the /api/data
payload as JSON.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		if err := vizcheck.SetupLogging(false); err != nil {
			return err
		}
		cfg, err := config.Load(cmd.Context())
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if exportOut != "" && exportOut != "-" {
			f, err := os.Create(exportOut)
			if err != nil {
				return err
			}
			defer func() { _ = f.Close() }()
			out = f
		}
		return vizcheck.Export(cmd.Context(), cfg, out)
	},
}

func init() {
	checkCmd.Flags().StringVar(&checkFlags.BaseURL, "url", defaultURL, "Base URL of the service")
	checkCmd.Flags().DurationVar(&checkFlags.Timeout, "timeout", defaultTimeout, "HTTP request timeout")
	checkCmd.Flags().StringVar(&checkFlags.OutputFile, "output", "", "Save the fetched payload to this file")
	checkCmd.Flags().IntVar(&checkFlags.MaxTraces, "max-traces", 0, "Fail if more traces are served (0 disables)")
	checkCmd.Flags().IntVar(&checkFlags.MaxStates, "max-states", 0, "Fail if a trace has more points (0 disables)")
	checkCmd.Flags().BoolVarP(&checkFlags.Verbose, "verbose", "v", false, "Enable verbose logging")

	exportCmd.Flags().StringVarP(&exportOut, "out", "o", "-", "Output file, - for stdout")

	rootCmd.AddCommand(checkCmd, exportCmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}
