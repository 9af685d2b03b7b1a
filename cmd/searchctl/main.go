package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"

	"qa-search-orchestrator/internal/di"
	"qa-search-orchestrator/internal/infra"
	"qa-search-orchestrator/internal/infra/config"
	"qa-search-orchestrator/internal/usecase"
	"qa-search-orchestrator/internal/usecase/preprocess"
	"qa-search-orchestrator/internal/usecase/retrieval"
)

var (
	topK       int
	searchMode string
	verbose    bool
)

var rootCmd = &cobra.Command{
	Use:   "searchctl",
	Short: "QA document search pipeline CLI",
	Long: `searchctl runs the hybrid search pipeline and its individual stages
from the command line, against the same store and endpoints as the server.

Example usage:
  searchctl query "neg test for login"        # preprocess only, no store access
  searchctl search "payment timeout"          # full hybrid pipeline
  searchctl search -m lexical "TC-123"        # single retrieval stage
  searchctl ensure-index                      # create the full-text index
  searchctl stats                             # corpus counts`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

var queryCmd = &cobra.Command{
	Use:   "query <text>",
	Short: "Preprocess a query and print the expansion",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		pre := preprocess.NewPreprocessor(preprocess.DefaultOptions(), newLogger())
		result := pre.Process(args[0])
		return printJSON(map[string]any{
			"original":     result.Original,
			"normalized":   result.Normalized,
			"expanded":     result.Expanded,
			"variations":   result.Variations,
			"identifiers":  result.Identifiers,
			"replacements": result.Replacements,
		})
	},
}

var searchCmd = &cobra.Command{
	Use:   "search <text>",
	Short: "Run a search against the document store",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		log := newLogger()
		cfg := config.Load()
		pool, err := connect(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		defer pool.Close()

		components, err := di.NewApplicationComponents(cfg, pool, log)
		if err != nil {
			return err
		}

		switch searchMode {
		case "hybrid":
			resp, err := components.Pipeline.Execute(cmd.Context(), usecase.SearchInput{Query: args[0], TopK: topK})
			if err != nil {
				return err
			}
			return printJSON(resp)
		case "lexical":
			result, fellBack, err := retrieval.LexicalSearch(cmd.Context(), components.DocumentRepo, args[0], topK, log)
			if err != nil {
				return err
			}
			return printJSON(map[string]any{"stage": result.Stage, "fallback": fellBack, "results": result.Results})
		case "semantic":
			semCfg := retrieval.DefaultSemanticConfig()
			semCfg.Limit = topK
			result, err := retrieval.SemanticSearch(cmd.Context(), components.DocumentRepo, components.Encoder, args[0], semCfg, log)
			if err != nil {
				return err
			}
			return printJSON(map[string]any{"stage": result.Stage, "results": result.Results})
		default:
			return fmt.Errorf("unknown mode %q, want hybrid, lexical or semantic", searchMode)
		}
	},
}

var ensureIndexCmd = &cobra.Command{
	Use:   "ensure-index",
	Short: "Create the full-text index if missing",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.Load()
		pool, err := connect(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		defer pool.Close()

		components, err := di.NewApplicationComponents(cfg, pool, newLogger())
		if err != nil {
			return err
		}
		ctx, cancel := context.WithTimeout(cmd.Context(), 60*time.Second)
		defer cancel()
		if err := components.DocumentRepo.EnsureTextIndex(ctx); err != nil {
			return err
		}
		fmt.Println("full-text index ready")
		return nil
	},
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Print document store counts",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.Load()
		pool, err := connect(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		defer pool.Close()

		components, err := di.NewApplicationComponents(cfg, pool, newLogger())
		if err != nil {
			return err
		}
		stats, err := components.DocumentRepo.Stats(cmd.Context())
		if err != nil {
			return err
		}
		return printJSON(stats)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	searchCmd.Flags().IntVarP(&topK, "top-k", "k", 5, "number of results")
	searchCmd.Flags().StringVarP(&searchMode, "mode", "m", "hybrid", "search mode: hybrid, lexical or semantic")
	rootCmd.AddCommand(queryCmd, searchCmd, ensureIndexCmd, statsCmd)
}

func newLogger() *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

func connect(ctx context.Context, cfg *config.Config) (*pgxpool.Pool, error) {
	dsn := fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable",
		cfg.DB.User, cfg.DB.Password, cfg.DB.Host, cfg.DB.Port, cfg.DB.Name)
	p, err := infra.NewPostgresDB(ctx, dsn, infra.PoolConfig{MaxConns: 2})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to db: %w", err)
	}
	return p, nil
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
