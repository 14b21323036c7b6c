package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jibsearch/backend/internal/app"
	"github.com/jibsearch/backend/internal/domain"
	"github.com/jibsearch/backend/internal/usecase"
	"github.com/spf13/cobra"
)

func newSearchCmd() *cobra.Command {
	var timeout time.Duration

	cmd := &cobra.Command{
		Use:     "search <query>",
		Short:   "Run the full search pipeline for a query",
		Example: `  jibsearch search "โน้ตบุ๊ค เล่นเกม งบ 20000"`,
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()

			return withApp(ctx, func(a *app.App) error {
				resp, err := a.Search.Search(ctx, queryArg(args))
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), resp)
			})
		},
	}
	cmd.Flags().DurationVar(&timeout, "timeout", 2*time.Minute, "overall deadline")
	return cmd
}

func newFilterCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "filter <query>",
		Short: "Show the catalog filter planned for a query",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			return withApp(ctx, func(a *app.App) error {
				return printJSON(cmd.OutOrStdout(), a.Search.Plan(ctx, queryArg(args)))
			})
		},
	}
}

func newAnalyzeCmd() *cobra.Command {
	var heuristicOnly bool

	cmd := &cobra.Command{
		Use:   "analyze <query>",
		Short: "Show the structured analysis and derived filter for a query",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			query := queryArg(args)
			if heuristicOnly {
				return printAnalysis(cmd, usecase.AnalyzeQuery(query))
			}
			ctx := cmd.Context()
			return withApp(ctx, func(a *app.App) error {
				return printAnalysis(cmd, a.Analyzer.Analyze(ctx, query))
			})
		},
	}
	cmd.Flags().BoolVar(&heuristicOnly, "heuristic", false, "skip the language model")
	return cmd
}

func printAnalysis(cmd *cobra.Command, analysis domain.QueryAnalysis) error {
	return printJSON(cmd.OutOrStdout(), struct {
		Analysis domain.QueryAnalysis `json:"analysis"`
		Filter   domain.Filter        `json:"filter"`
	}{analysis, usecase.BuildFilter(analysis)})
}

func newCategoriesCmd() *cobra.Command {
	var stored bool

	cmd := &cobra.Command{
		Use:   "categories",
		Short: "List the category enumeration, or the categories actually stored",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !stored {
				return printJSON(cmd.OutOrStdout(), map[string][]string{"categories": domain.Categories})
			}
			ctx := cmd.Context()
			return withApp(ctx, func(a *app.App) error {
				stats, err := a.Catalog.Stats(ctx)
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), stats)
			})
		},
	}
	cmd.Flags().BoolVar(&stored, "stored", false, "query distinct categories and record count from the store")
	return cmd
}

func newSuggestCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "suggest [partial query]",
		Short: "Complete a partially typed query",
		RunE: func(cmd *cobra.Command, args []string) error {
			return printJSON(cmd.OutOrStdout(), map[string][]string{"suggestions": usecase.Suggest(queryArg(args))})
		},
	}
}

func newHealthCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Check catalog store reachability",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			return withApp(ctx, func(a *app.App) error {
				status := a.Catalog.Health(ctx)
				if err := printJSON(cmd.OutOrStdout(), status); err != nil {
					return err
				}
				if status.Status != "healthy" {
					return errors.New("catalog unhealthy")
				}
				return nil
			})
		},
	}
}

func newImportCmd() *cobra.Command {
	var drop bool

	cmd := &cobra.Command{
		Use:   "import <file.json>",
		Short: "Load products from a JSON array file into the catalog",
		Long: `import reads a JSON array of product documents (MongoDB extended JSON is
accepted) and inserts them into the configured collection. With --drop the
collection is emptied first.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			docs, err := readCatalogFile(args[0])
			if err != nil {
				return err
			}
			if len(docs) == 0 {
				return fmt.Errorf("%s: no products found", args[0])
			}

			ctx := cmd.Context()
			return withApp(ctx, func(a *app.App) error {
				inserted, total, err := a.Catalog.Import(ctx, docs, drop)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "inserted %d products, collection now holds %d\n", inserted, total)

				sample, err := a.Catalog.SampleProducts(ctx)
				if err == nil && len(sample) > 0 {
					return printJSON(cmd.OutOrStdout(), sample[0])
				}
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&drop, "drop", false, "delete existing products before inserting")
	return cmd
}

func newPingLLMCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ping-llm",
		Short: "Send a trivial completion to the configured language model",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), time.Minute)
			defer cancel()

			return withApp(ctx, func(a *app.App) error {
				if a.Model == nil {
					return errors.New("no language model configured (set JIBSEARCH_LLM_API_KEY)")
				}
				start := time.Now()
				reply, err := a.Model.Complete(ctx, domain.CompletionRequest{
					System:    "You are a connectivity check. Reply with the single word OK.",
					User:      "ping",
					Model:     cfg.LLM.FilterModel,
					MaxTokens: 5,
				})
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s replied %q in %s\n", cfg.LLM.FilterModel, reply, time.Since(start).Round(time.Millisecond))
				return nil
			})
		},
	}
}
