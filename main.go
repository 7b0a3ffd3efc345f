package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"tablestore/pkg/bench"
	"tablestore/pkg/bench/ui"
	"tablestore/pkg/logging"
	"tablestore/pkg/storage/alloc"
	"tablestore/pkg/table"
)

type Configuration struct {
	DataDir       string
	LogPath       string
	Rows          uint64
	ScalarColumns int
	KeepTables    bool
	WriteMode     string
	AllocMode     string
	ReportFile    string
	Interactive   bool
}

func main() {
	config := parseArguments()
	showSplashScreen()

	if err := initializeLogging(config); err != nil {
		log.Fatalf("Failed to initialize logging: %v", err)
	}
	defer logging.Close()

	if err := os.MkdirAll(config.DataDir, 0o750); err != nil {
		log.Fatalf("Failed to create data directory: %v", err)
	}

	cfg := bench.Config{
		DataDir:       config.DataDir,
		Rows:          config.Rows,
		ScalarColumns: config.ScalarColumns,
		KeepTables:    config.KeepTables,
	}

	if config.Interactive {
		if err := startInteractiveMode(cfg); err != nil {
			log.Fatalf("Failed to start UI: %v", err)
		}
		return
	}

	results, err := runBenchmarks(cfg, config)
	if err != nil {
		log.Fatalf("Benchmark failed: %v", err)
	}

	fmt.Println(bench.Render(results))

	if config.ReportFile != "" {
		if err := bench.SaveJSON(results, config.ReportFile); err != nil {
			log.Fatalf("Failed to save report: %v", err)
		}
		fmt.Printf("Report saved to %s\n", config.ReportFile)
	}
}

// parseArguments processes command-line flags
func parseArguments() Configuration {
	var config Configuration

	flag.StringVar(&config.DataDir, "data", "./data", "Data directory path")
	flag.StringVar(&config.LogPath, "log", "", "Log file path (default: stderr)")
	flag.Uint64Var(&config.Rows, "rows", 1000, "Rows per benchmark table")
	flag.IntVar(&config.ScalarColumns, "cols", 3, "Scalar columns per benchmark table")
	flag.BoolVar(&config.KeepTables, "keep", false, "Keep benchmark tables instead of removing them")
	flag.StringVar(&config.WriteMode, "write", "", "Run a single write strategy (cell_put, row_put, column_bulk_put)")
	flag.StringVar(&config.AllocMode, "alloc", "", "Run a single allocation strategy (lazy_zero_fill, pre_truncate, pre_reserve)")
	flag.StringVar(&config.ReportFile, "report", "", "JSON report output path")
	flag.BoolVar(&config.Interactive, "ui", false, "Run the interactive benchmark UI")

	flag.Parse()

	return config
}

// showSplashScreen displays the startup banner
func showSplashScreen() {
	splash := `
╔══════════════════════════════════════════════════════════╗
║                                                          ║
║   ████████╗ █████╗ ██████╗ ██╗     ███████╗              ║
║   ╚══██╔══╝██╔══██╗██╔══██╗██║     ██╔════╝              ║
║      ██║   ███████║██████╔╝██║     █████╗                ║
║      ██║   ██╔══██║██╔══██╗██║     ██╔══╝                ║
║      ██║   ██║  ██║██████╔╝███████╗███████╗              ║
║      ╚═╝   ╚═╝  ╚═╝╚═════╝ ╚══════╝╚══════╝              ║
║                                                          ║
║   ███████╗████████╗ ██████╗ ██████╗ ███████╗             ║
║   ██╔════╝╚══██╔══╝██╔═══██╗██╔══██╗██╔════╝             ║
║   ███████╗   ██║   ██║   ██║██████╔╝█████╗               ║
║   ╚════██║   ██║   ██║   ██║██╔══██╗██╔══╝               ║
║   ███████║   ██║   ╚██████╔╝██║  ██║███████╗             ║
║   ╚══════╝   ╚═╝    ╚═════╝ ╚═╝  ╚═╝╚══════╝             ║
║                                                          ║
║      Columnar Table Storage, Strategy by Strategy        ║
╚══════════════════════════════════════════════════════════╝
`

	style := lipgloss.NewStyle().
		Foreground(lipgloss.Color("#7C3AED")).
		Bold(true)

	fmt.Println(style.Render(splash))
}

// initializeLogging sets up the global logger from the configuration
func initializeLogging(config Configuration) error {
	logPath := config.LogPath
	if logPath != "" {
		logPath = filepath.Clean(logPath)
	}

	return logging.Init(logging.Config{
		Level:      logging.LevelInfo,
		OutputPath: logPath,
		Format:     "text",
	})
}

// runBenchmarks runs either the full matrix or a single selected
// strategy combination
func runBenchmarks(cfg bench.Config, config Configuration) ([]bench.Result, error) {
	ctx := context.Background()

	if config.WriteMode == "" && config.AllocMode == "" {
		fmt.Printf("Running full matrix: %d rows, %d scalar columns...\n\n", cfg.Rows, cfg.ScalarColumns)
		start := time.Now()
		results, err := bench.RunMatrix(ctx, cfg)
		if err != nil {
			return nil, err
		}
		fmt.Printf("Matrix completed in %s\n\n", time.Since(start).Round(time.Millisecond))
		return results, nil
	}

	write := table.ColumnBulkPut
	if config.WriteMode != "" {
		var err error
		write, err = table.ParseWriteStrategy(config.WriteMode)
		if err != nil {
			return nil, err
		}
	}

	strategy := alloc.LazyZeroFill
	if config.AllocMode != "" {
		var err error
		strategy, err = alloc.ParseStrategy(config.AllocMode)
		if err != nil {
			return nil, err
		}
	}

	fmt.Printf("Running %s / %s: %d rows...\n\n", write, strategy, cfg.Rows)
	res, err := bench.Run(ctx, cfg, write, strategy)
	if err != nil {
		return nil, err
	}
	return []bench.Result{res}, nil
}

// startInteractiveMode launches the Bubble Tea UI
func startInteractiveMode(cfg bench.Config) error {
	model := ui.NewModel(cfg)

	p := tea.NewProgram(
		model,
		tea.WithAltScreen(),
	)

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running program: %v", err)
	}

	return nil
}
