package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"optiscope/adapters/excel"
	"optiscope/adapters/report"
	"optiscope/domain/optimization"
	"optiscope/internal"
	"optiscope/internal/analysis"
	"optiscope/internal/config"
)

func main() {
	_ = godotenv.Load()

	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var logLevel string

	rootCmd := &cobra.Command{
		Use:           "optiscope",
		Short:         "Analyze MetaTrader optimization reports",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if logLevel == "" {
				logLevel = os.Getenv("LOG_LEVEL")
			}
			if logLevel == "" {
				logLevel = "WARN"
			}
			internal.DefaultLogger.SetLevel(internal.ParseLogLevel(logLevel))
		},
	}
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "ERROR, WARN, INFO, DEBUG or TRACE (default WARN, or $LOG_LEVEL)")

	rootCmd.AddCommand(
		newAnalyzeCmd(),
		newColumnsCmd(),
	)
	return rootCmd
}

type analyzeOptions struct {
	params     optimization.Params
	topValues  int
	annualize  float64
	reportPath string
	jsonPath   string
	xlsxPath   string
	markdown   string
	delimiter  string
	sheet      string
}

func newAnalyzeCmd() *cobra.Command {
	defaults, topValues, annualize := cliDefaults()
	opts := analyzeOptions{}

	cmd := &cobra.Command{
		Use:   "analyze FILE",
		Short: "Filter, rank and summarize an optimization report",
		Long: `Filter the optimization runs of FILE (CSV, XLSX or MetaTrader XML) by profit and
drawdown, compute per-variable statistics, rank the best runs and print trading metrics.

The text report goes to stdout unless --report is given.

Example: optiscope analyze ReportOptimizer.xml --min-profit 5000 --max-drawdown 10 --top 20 --json out.json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAnalyze(cmd.OutOrStdout(), args[0], opts)
		},
	}

	cmd.Flags().Float64Var(&opts.params.MinProfit, "min-profit", defaults.MinProfit, "Minimum profit a run must reach")
	cmd.Flags().Float64Var(&opts.params.MaxDrawdown, "max-drawdown", defaults.MaxDrawdown, "Maximum drawdown percentage a run may have")
	cmd.Flags().IntVar(&opts.params.TopN, "top", defaults.TopN, "Number of best runs to list")
	cmd.Flags().IntVar(&opts.topValues, "top-values", topValues, "Best values kept per variable")
	cmd.Flags().Float64Var(&opts.annualize, "annualization", annualize, "Periods per year for the Calmar ratio")
	cmd.Flags().StringVar(&opts.reportPath, "report", "", "Write the text report to this file")
	cmd.Flags().StringVar(&opts.jsonPath, "json", "", "Write the JSON export to this file")
	cmd.Flags().StringVar(&opts.xlsxPath, "xlsx", "", "Write an XLSX workbook to this file")
	cmd.Flags().StringVar(&opts.markdown, "markdown", "", "Write a Markdown report to this file")
	cmd.Flags().StringVar(&opts.delimiter, "delimiter", "", "Force the CSV delimiter (default: detect)")
	cmd.Flags().StringVar(&opts.sheet, "sheet", "", "Worksheet to read (default: first)")

	return cmd
}

func runAnalyze(out io.Writer, path string, opts analyzeOptions) error {
	loader, err := newLoader(opts.delimiter, opts.sheet)
	if err != nil {
		return err
	}
	table, err := loader.Load(path)
	if err != nil {
		return err
	}

	analyzer := analysis.NewAnalyzer(
		analysis.WithTopValues(opts.topValues),
		analysis.WithAnnualizationFactor(opts.annualize),
	)
	result, err := analyzer.Run(table, opts.params)
	if err != nil {
		return err
	}

	if opts.reportPath != "" {
		f, err := os.Create(opts.reportPath)
		if err != nil {
			return fmt.Errorf("failed to create report: %w", err)
		}
		if err := report.WriteText(f, result); err != nil {
			f.Close()
			return err
		}
		if err := f.Close(); err != nil {
			return err
		}
		fmt.Fprintf(out, "Report written: %s\n", opts.reportPath)
	} else if err := report.WriteText(out, result); err != nil {
		return err
	}

	if opts.jsonPath != "" {
		if err := report.SaveJSON(opts.jsonPath, result); err != nil {
			return err
		}
		fmt.Fprintf(out, "JSON written: %s\n", opts.jsonPath)
	}
	if opts.markdown != "" {
		if err := os.WriteFile(opts.markdown, report.Markdown(result), 0o644); err != nil {
			return fmt.Errorf("failed to write markdown: %w", err)
		}
		fmt.Fprintf(out, "Markdown written: %s\n", opts.markdown)
	}
	if opts.xlsxPath != "" {
		if err := report.SaveWorkbook(opts.xlsxPath, result); err != nil {
			return err
		}
		fmt.Fprintf(out, "Workbook written: %s\n", opts.xlsxPath)
	}
	return nil
}

func newColumnsCmd() *cobra.Command {
	var delimiter, sheet string

	cmd := &cobra.Command{
		Use:   "columns FILE",
		Short: "Show how the columns of a report are classified",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runColumns(cmd.OutOrStdout(), args[0], delimiter, sheet)
		},
	}
	cmd.Flags().StringVar(&delimiter, "delimiter", "", "Force the CSV delimiter (default: detect)")
	cmd.Flags().StringVar(&sheet, "sheet", "", "Worksheet to read (default: first)")
	return cmd
}

func runColumns(out io.Writer, path, delimiter, sheet string) error {
	loader, err := newLoader(delimiter, sheet)
	if err != nil {
		return err
	}
	table, err := loader.Load(path)
	if err != nil {
		return err
	}

	cls := analysis.NewAnalyzer().Classify(table.Columns)
	fmt.Fprintf(out, "%s: %d columns, %d rows\n", table.Source.Name, len(table.Columns), table.Len())
	fmt.Fprintf(out, "  profit:   %s\n", orNone(cls.ProfitColumn))
	fmt.Fprintf(out, "  drawdown: %s\n", orNone(cls.DrawdownColumn))
	fmt.Fprintf(out, "  results:  %s\n", strings.Join(cls.ResultColumns, ", "))
	for _, cat := range optimization.Categories {
		if cols := cls.Bucket(cat); len(cols) > 0 {
			fmt.Fprintf(out, "  %-16s %s\n", string(cat)+":", strings.Join(cols, ", "))
		}
	}
	return nil
}

func newLoader(delimiter, sheet string) (*excel.Loader, error) {
	cfg := excel.DefaultLoaderConfig()
	cfg.Sheet = sheet
	switch delimiter {
	case "":
	case `\t`, "tab":
		cfg.Delimiter = '\t'
	default:
		r := []rune(delimiter)
		if len(r) != 1 {
			return nil, fmt.Errorf("delimiter must be a single character, got %q", delimiter)
		}
		cfg.Delimiter = r[0]
	}
	return excel.NewLoader(cfg, nil), nil
}

func orNone(s string) string {
	if s == "" {
		return "(none)"
	}
	return s
}

// cliDefaults starts from the optimizer defaults and applies ANALYSIS_* overrides from the
// environment. The server's larger top-N default only applies when ANALYSIS_TOP_N is set.
func cliDefaults() (optimization.Params, int, float64) {
	params := optimization.DefaultParams()
	cfg, err := config.Load()
	if err != nil {
		internal.DefaultLogger.Warn("ignoring environment defaults: %v", err)
		return params, analysis.DefaultTopValues, analysis.DefaultAnnualizationFactor
	}
	params.MinProfit = cfg.Analysis.MinProfit
	params.MaxDrawdown = cfg.Analysis.MaxDrawdown
	if _, ok := os.LookupEnv("ANALYSIS_TOP_N"); ok {
		params.TopN = cfg.Analysis.TopN
	}
	return params, cfg.Analysis.TopValues, cfg.Analysis.AnnualizationFactor
}
