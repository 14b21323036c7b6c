// Command jibsearch is the operator CLI for the JIB search backend.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/jibsearch/backend/config"
	"github.com/jibsearch/backend/internal/app"
	"github.com/jibsearch/backend/internal/observability"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

var (
	verbose bool

	cfg    *config.Config
	logger zerolog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "jibsearch",
	Short: "Operator tools for the JIB product search backend",
	Long: `jibsearch runs the search pipeline from the command line and maintains
the product catalog.

Configuration is read the same way as the server: .env, config.yaml and
JIBSEARCH_* environment variables.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}

		level := "warn"
		if verbose {
			level = "debug"
		}
		logger = observability.NewLogger(observability.LogConfig{
			Level:       level,
			Format:      "console",
			Output:      os.Stderr,
			ServiceName: "jibsearch-cli",
		})
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log pipeline decisions to stderr")

	rootCmd.AddCommand(newSearchCmd())
	rootCmd.AddCommand(newFilterCmd())
	rootCmd.AddCommand(newAnalyzeCmd())
	rootCmd.AddCommand(newCategoriesCmd())
	rootCmd.AddCommand(newSuggestCmd())
	rootCmd.AddCommand(newHealthCmd())
	rootCmd.AddCommand(newImportCmd())
	rootCmd.AddCommand(newPingLLMCmd())
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// withApp builds the pipeline, runs fn and releases resources
func withApp(ctx context.Context, fn func(a *app.App) error) error {
	a, err := app.New(ctx, cfg, logger, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err := a.Close(context.Background()); err != nil {
			logger.Warn().Err(err).Msg("close failed")
		}
	}()
	return fn(a)
}

func queryArg(args []string) string {
	return strings.TrimSpace(strings.Join(args, " "))
}

func printJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
