// Command consolidate runs the bordereau pipeline from the terminal:
// discover source workbooks, extract one row per event and write the
// consolidated report without going through the HTTP service.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"bordereau/internal/bordereau"
	"bordereau/internal/config"
	"bordereau/internal/exporter"
	"bordereau/internal/files"
	"bordereau/internal/infrastructure"
	"bordereau/pkg/contracts"
)

var (
	inputDir   string
	outputPath string
	csvPath    string
	verbose    bool
)

var rootCmd = &cobra.Command{
	Use:   "consolidate",
	Short: "Consolidate per-event ticket-sales workbooks into one report",
	Long: `Consolidate scans a directory of per-event box-office workbooks,
derives the report schema from the first workbook and writes a single
consolidated report with one row per event.

A workbook that cannot be read is logged and skipped; the run only
fails when no schema can be derived at all.`,
	SilenceUsage: true,
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
	},
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a consolidation over the input directory",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runConsolidation(cmd.Context())
	},
}

var sampleCmd = &cobra.Command{
	Use:   "sample",
	Short: "Generate demo source workbooks",
	RunE: func(cmd *cobra.Command, args []string) error {
		return writeSamples(sampleDir, sampleCount)
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Display version and build information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println(contracts.VersionInfo())
	},
}

var (
	sampleDir   string
	sampleCount int
)

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	runCmd.Flags().StringVarP(&inputDir, "input", "i", "", "directory holding the source workbooks (default from config)")
	runCmd.Flags().StringVarP(&outputPath, "output", "o", "", "path of the consolidated report (default from config)")
	runCmd.Flags().StringVar(&csvPath, "csv", "", "path of the CSV mirror (default derived from the report path)")

	sampleCmd.Flags().StringVarP(&sampleDir, "dir", "d", ".", "directory to write the demo workbooks into")
	sampleCmd.Flags().IntVarP(&sampleCount, "count", "n", 3, "number of demo workbooks to generate")

	rootCmd.AddCommand(runCmd, sampleCmd, versionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// loadConfig applies flag overrides on top of the file and environment
// configuration.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	if inputDir != "" {
		cfg.Paths.InputDir = inputDir
	}
	if outputPath != "" {
		cfg.Paths.OutputFile = filepath.Base(outputPath)
	}
	if verbose {
		cfg.Logging.Level = "debug"
	}
	return cfg, nil
}

func runConsolidation(ctx context.Context) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer infrastructure.CloseLogFile()

	target := cfg.OutputPath()
	if outputPath != "" {
		target = outputPath
	}
	mirror := csvPath
	if mirror == "" {
		mirror = strings.TrimSuffix(target, filepath.Ext(target)) + ".csv"
	}

	discovery := files.NewDiscovery(cfg.Paths.InputDir)
	manager := files.NewManager(cfg.Paths.InputDir)

	found, err := discovery.FindSourceDocuments(cfg.Paths.InputDir, filepath.Base(target))
	if err != nil {
		return err
	}
	if len(found) == 0 {
		return fmt.Errorf("no source workbooks found in %s", cfg.Paths.InputDir)
	}
	fmt.Printf("Found %d workbook(s) in %s\n", len(found), cfg.Paths.InputDir)

	if err := manager.PrepareOutput(target); err != nil {
		return err
	}

	layout := bordereau.DefaultLayout()
	consolidator := bordereau.NewConsolidator(layout, logger)

	report, err := consolidator.Run(ctx, files.Paths(found), func(processed, failed, total int, document string) {
		fmt.Printf("  [%d/%d] %s\n", processed+failed, total, document)
	})
	if err != nil {
		return err
	}

	if err := exporter.NewXLSXWriter(layout.OutputSheetName, logger).Write(target, report); err != nil {
		return err
	}
	if err := exporter.NewCSVWriter(logger).Write(mirror, report); err != nil {
		return err
	}

	fmt.Println("\n=== Consolidation complete ===")
	fmt.Printf("Processed: %d\n", report.Processed)
	fmt.Printf("Skipped:   %d\n", report.Failed)
	fmt.Printf("Report:    %s\n", target)
	fmt.Printf("CSV:       %s\n", mirror)

	for _, result := range report.Results {
		if result.Err != nil {
			fmt.Printf("  skipped %s: %s\n", result.Document, result.Error)
		}
	}
	if report.Failed > 0 {
		logger.Warn("run finished with skipped documents", slog.Int("failed", report.Failed))
	}
	return nil
}

// writeSamples generates count demo workbooks so the pipeline can be
// exercised without real box-office exports.
func writeSamples(dir string, count int) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	layout := bordereau.DefaultLayout()
	for i := 0; i < count; i++ {
		ev := bordereau.DefaultSampleEvent()
		ev.Registration = fmt.Sprintf("2024/%03d", i+1)
		ev.Date = ev.Date.AddDate(0, 0, i*7)

		name := fmt.Sprintf("evento_2024_%03d.xlsx", i+1)
		path := filepath.Join(dir, name)
		if err := bordereau.WriteSampleDocument(path, layout, ev); err != nil {
			return fmt.Errorf("failed to write %s: %w", name, err)
		}
		fmt.Printf("  wrote %s\n", path)
	}
	return nil
}
