// Package main provides the CLI entry point for jsonsheet-go.
package main

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/ukaji3/jsonsheet-go/internal/config"
	"github.com/ukaji3/jsonsheet-go/internal/server"
	"github.com/ukaji3/jsonsheet-go/pkg/jsonsheet"
	"github.com/ukaji3/jsonsheet-go/pkg/jsonsheet/importer"
	"github.com/ukaji3/jsonsheet-go/pkg/jsonsheet/models"
	"github.com/ukaji3/jsonsheet-go/pkg/jsonsheet/output"
)

var (
	configPath string
	outputPath string
	search     string
	format     string
	pretty     bool
	sheetsDir  string
	verbose    bool
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "jsonsheet [input.json]",
		Short: "Convert JSON records into spreadsheet workbooks",
		Long: `jsonsheet-go flattens the records of a JSON document, optionally splits
them into one sheet per search phrase, and writes an xlsx workbook.`,
		Args:         cobra.ExactArgs(1),
		RunE:         run,
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file (yaml, json or toml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log progress to stderr")
	rootCmd.PersistentFlags().String("record-key", "", "Document member holding the records (default \"parallel\")")
	rootCmd.PersistentFlags().String("sheet-name", "", "Sheet name used when no search phrase is given (default \"Sheet1\")")
	rootCmd.PersistentFlags().String("encoding", "", "Input text encoding (default utf-8, BOM detected)")
	rootCmd.PersistentFlags().Int("chunk-size", importer.DefaultChunkSize, "Bytes read between cancellation checks")
	rootCmd.PersistentFlags().Bool("autofilter", false, "Add an autofilter over each exported sheet")

	rootCmd.Flags().StringVarP(&outputPath, "output", "o", "", "Output file path (default: input name with .xlsx, or stdout for json)")
	rootCmd.Flags().StringVarP(&search, "search", "s", "", "Comma-separated search phrases, one sheet each")
	rootCmd.Flags().StringVar(&format, "format", "xlsx", "Output format: xlsx, json")
	rootCmd.Flags().BoolVar(&pretty, "pretty", false, "Pretty-print JSON output")
	rootCmd.Flags().StringVar(&sheetsDir, "sheets-dir", "", "Directory for per-sheet JSON files")

	serveCmd := &cobra.Command{
		Use:          "serve",
		Short:        "Serve a conversion session over HTTP",
		Args:         cobra.NoArgs,
		RunE:         runServe,
		SilenceUsage: true,
	}
	serveCmd.Flags().String("addr", "", "Listen address (default \":8080\")")
	rootCmd.AddCommand(serveCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func loadConfig(cmd *cobra.Command) (*config.Config, *log.Logger, error) {
	cfg, err := config.Load(configPath, cmd.Flags())
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}

	logger := log.New(io.Discard, "", 0)
	if verbose || cmd.Name() == "serve" {
		logger = log.New(os.Stderr, cfg.Log.Prefix, log.LstdFlags)
	}
	return cfg, logger, nil
}

func run(cmd *cobra.Command, args []string) error {
	inputPath := args[0]

	// Validate input file exists
	info, err := os.Stat(inputPath)
	if os.IsNotExist(err) {
		return fmt.Errorf("file not found: %s", inputPath)
	}
	if err != nil {
		return err
	}

	switch format {
	case "xlsx", "json":
	default:
		return fmt.Errorf("invalid format: %s (must be xlsx or json)", format)
	}

	cfg, logger, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	opts := cfg.SessionOptions()
	opts.Logger = logger
	session := jsonsheet.NewSession(opts)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	f, err := os.Open(inputPath)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := session.Import(ctx, importer.File{Name: inputPath, Size: info.Size(), Body: f}); err != nil {
		return fmt.Errorf("import failed: %w", err)
	}

	session.SetSearchTerms(search)
	if err := session.Convert(ctx); err != nil {
		return fmt.Errorf("conversion failed: %w", err)
	}
	wb := session.Workbook()

	if sheetsDir != "" {
		if err := writeSheetFiles(wb, sheetsDir); err != nil {
			return fmt.Errorf("failed to write sheet files: %w", err)
		}
	}

	if format == "json" {
		jsonData, err := output.ToJSON(wb, pretty)
		if err != nil {
			return fmt.Errorf("serialization failed: %w", err)
		}
		if outputPath != "" {
			if err := os.WriteFile(outputPath, jsonData, 0644); err != nil {
				return fmt.Errorf("failed to write output: %w", err)
			}
		} else if sheetsDir == "" {
			fmt.Println(string(jsonData))
		}
		return nil
	}

	var buf bytes.Buffer
	name, err := session.ExportWorkbook(&buf)
	if err != nil {
		return fmt.Errorf("export failed: %w", err)
	}
	if outputPath == "" {
		outputPath = filepath.Join(filepath.Dir(inputPath), name)
	}
	if err := os.WriteFile(outputPath, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "wrote %s (%s)\n", outputPath, strings.Join(wb.SheetNames(), ", "))
	return nil
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, logger, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	srv := server.New(cfg, logger)
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	select {
	case err := <-errCh:
		return err
	case <-quit:
	}

	logger.Printf("server: shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(ctx)
}

func writeSheetFiles(wb *models.Workbook, dir string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	for i := range wb.Sheets {
		sheet := &wb.Sheets[i]
		jsonData, err := output.SheetToJSON(sheet, pretty)
		if err != nil {
			return err
		}

		filename := filepath.Join(dir, sheet.Name+".json")
		if err := os.WriteFile(filename, jsonData, 0644); err != nil {
			return err
		}
	}

	return nil
}
