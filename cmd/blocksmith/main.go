package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/everstacklabs/blocksmith/internal/adapter"
	fileAdapter "github.com/everstacklabs/blocksmith/internal/adapter/providers/file"
	togetherAdapter "github.com/everstacklabs/blocksmith/internal/adapter/providers/togetherai"
	"github.com/everstacklabs/blocksmith/internal/cache"
	"github.com/everstacklabs/blocksmith/internal/catalog"
	"github.com/everstacklabs/blocksmith/internal/config"
	"github.com/everstacklabs/blocksmith/internal/diff"
	"github.com/everstacklabs/blocksmith/internal/httpclient"
	"github.com/everstacklabs/blocksmith/internal/pipeline"
	"github.com/everstacklabs/blocksmith/internal/roles"
	"github.com/everstacklabs/blocksmith/internal/validate"
)

// overrides holds the flags shared by every command. Set flags win over
// config file and environment values.
type overrides struct {
	cfgFile   string
	inputFile string
	apiKey    string
	outputDir string
	logLevel  string
	skipFree  bool
}

var flags overrides

func main() {
	rootCmd := &cobra.Command{
		Use:           "blocksmith",
		Short:         "Together AI model block generator",
		Long:          "Fetches the Together AI model catalog and writes one versioned configuration block per model.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&flags.cfgFile, "config", "", "config file (default: ./config.yaml)")
	pf.StringVarP(&flags.inputFile, "input-file", "f", "", "read models from a saved JSON file instead of the API")
	pf.StringVarP(&flags.apiKey, "api-key", "k", "", "Together AI API key (default: $TOGETHER_API_KEY)")
	pf.StringVarP(&flags.outputDir, "output-dir", "o", "", "directory for generated blocks (default: ./blocks/public)")
	pf.StringVar(&flags.logLevel, "log-level", "", "debug, info, warn, or error")
	pf.BoolVar(&flags.skipFree, "skip-free", false, "skip models whose input and output prices are both zero")

	rootCmd.AddCommand(
		generateCmd(),
		diffCmd(),
		classifyCmd(),
		validateCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, color.RedString("error:"), err)
		os.Exit(pipeline.ExitFailure)
	}
}

func generateCmd() *cobra.Command {
	var summary, forceRegenerate, dryRun bool

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Full run: fetch → classify → write blocks → save ledger → PR",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("summary") {
				cfg.Summary = summary
			}
			if cmd.Flags().Changed("force-regenerate") {
				cfg.ForceRegenerate = forceRegenerate
			}
			if cmd.Flags().Changed("dry-run") {
				cfg.DryRun = dryRun
			}

			configureAdapters(cfg)

			res, err := pipeline.New(cfg).Generate(cmd.Context())
			if res != nil {
				printRun(cfg, res.ChangeSet)
			}
			if err != nil {
				return err
			}

			if res.PRNumber > 0 {
				fmt.Printf("%s PR #%d opened (draft: %v)\n", color.GreenString("✓"), res.PRNumber, res.PRDraft)
				if len(res.DraftReasons) > 0 {
					fmt.Printf("  draft because: %s\n", strings.Join(res.DraftReasons, ", "))
				}
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&summary, "summary", false, "print detailed statistics after the run")
	cmd.Flags().BoolVar(&forceRegenerate, "force-regenerate", false, "ignore the ledger and regenerate every block")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "show what would change without writing")

	return cmd
}

func diffCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "diff",
		Short: "Show what would change (no writes)",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			configureAdapters(cfg)

			cs, err := pipeline.New(cfg).Diff(cmd.Context())
			if err != nil {
				return err
			}

			fmt.Print(diff.RenderDiffSummary(cs))
			if cs.HasChanges() {
				os.Exit(pipeline.ExitChanges)
			}
			return nil
		},
	}
}

func classifyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "classify",
		Short: "Fetch the catalog and print the roles each model would get",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			configureAdapters(cfg)

			records, err := pipeline.New(cfg).Discover(cmd.Context(), false)
			if err != nil {
				return err
			}

			allow := roles.NewAllowlist(cfg.Autocomplete)
			for _, rec := range records {
				rs := roles.Classify(rec, allow)
				fmt.Printf("%-50s %-12s %-8d %s\n", rec.ID, rec.Type, rec.ContextLength, strings.Join(rs.Strings(), ","))
			}

			fmt.Printf("\nTotal: %d models\n", len(records))
			return nil
		},
	}
}

func validateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Validate the generated blocks (CI check)",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			cat, err := catalog.Load(cfg.OutputDir)
			if err != nil {
				return fmt.Errorf("loading blocks: %w", err)
			}

			result := validate.ValidateCatalog(cat)
			fmt.Println(validate.FormatResult(result))

			if result.HasErrors() {
				return errors.New("validation failed")
			}
			fmt.Printf("%s %d blocks valid\n", color.GreenString("✓"), len(cat.Blocks))
			return nil
		},
	}
}

// printRun writes the colored status line and, when asked, the full report.
func printRun(cfg *config.Config, cs *diff.ChangeSet) {
	if cs == nil {
		return
	}

	status := color.GreenString("✓")
	if len(cs.Rejected) > 0 {
		status = color.YellowString("!")
	}
	verb := "wrote"
	if cfg.DryRun {
		verb = "would write"
	}
	fmt.Printf("%s %s %d blocks to %s (%d created, %d updated, %d unchanged, %d skipped, %d rejected)\n",
		status, verb, cs.TotalChanged(), cfg.OutputDir,
		len(cs.Created), len(cs.Updated), len(cs.Unchanged), len(cs.Skipped), len(cs.Rejected))

	for _, r := range cs.Rejected {
		fmt.Printf("  %s %s: %s\n", color.RedString("✗"), r.ID, r.Reason)
	}

	if cfg.Summary {
		fmt.Println()
		fmt.Print(diff.RenderReport(cs, cfg.Autocomplete))
	}
}

func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load(flags.cfgFile)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	f := cmd.Flags()
	if f.Changed("input-file") {
		cfg.InputFile = flags.inputFile
	}
	if f.Changed("api-key") {
		cfg.Together.APIKey = flags.apiKey
	}
	if f.Changed("output-dir") {
		cfg.OutputDir = flags.outputDir
	}
	if f.Changed("log-level") {
		cfg.LogLevel = flags.logLevel
	}
	if f.Changed("skip-free") {
		cfg.SkipFree = flags.skipFree
	}

	setupLogger(cfg.LogLevel)
	return cfg, nil
}

func setupLogger(level string) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		lvl = slog.LevelInfo
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl})))
}

func configureAdapters(cfg *config.Config) {
	// Set up cache
	var fileCache *cache.FileCache
	if !cfg.NoCache {
		fc, err := cache.New(cfg.CacheDir, cfg.CacheTTLDuration())
		if err != nil {
			slog.Warn("failed to create cache, continuing without", "error", err)
		} else {
			fileCache = fc
		}
	}

	// Set up HTTP client
	opts := []httpclient.Option{
		httpclient.WithRateLimit(2),
		httpclient.WithTimeout(cfg.RequestTimeout()),
	}
	if fileCache != nil {
		opts = append(opts, httpclient.WithCache(fileCache))
	}
	if cfg.NoCache {
		opts = append(opts, httpclient.WithNoCache())
	}
	client := httpclient.New(opts...)

	if a, err := adapter.Get("togetherai"); err == nil {
		if ta, ok := a.(*togetherAdapter.TogetherAI); ok {
			ta.Configure(cfg.Together.APIKey, cfg.Together.BaseURL, client)
		}
	}

	if a, err := adapter.Get("file"); err == nil {
		if fa, ok := a.(*fileAdapter.File); ok {
			fa.Configure(cfg.InputFile)
		}
	}
}
