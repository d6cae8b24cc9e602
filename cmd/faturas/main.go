package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/joseph-ayodele/invoice-extractor/internal/common"
	"github.com/joseph-ayodele/invoice-extractor/internal/core"
	"github.com/joseph-ayodele/invoice-extractor/internal/core/ocr"
	"github.com/joseph-ayodele/invoice-extractor/internal/export"
	"github.com/joseph-ayodele/invoice-extractor/internal/ingest"
	repo "github.com/joseph-ayodele/invoice-extractor/internal/repository"
)

var (
	cfg    *common.Config
	logger *slog.Logger
	inmem  bool
)

var rootCmd = &cobra.Command{
	Use:           "faturas",
	Short:         "Extract billing fields from utility invoices",
	Long:          "Reads utility invoices (PDF or pre-extracted text), recognizes customer, billing and net-metering fields, checks the energy-credit balance and exports CSV/XLSX tables.",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := common.LoadConfig()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		if inmem {
			c.Database.Driver = common.DriverSQLite
			c.Database.DSN = ":memory:"
		}
		if err := c.Validate(); err != nil {
			return err
		}
		cfg = c
		logger = common.NewLogger(cfg.Log, os.Stderr)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&inmem, "inmem", false, "use an in-memory SQLite database")
}

// appEnv holds the wired collaborators shared by the commands.
type appEnv struct {
	DB        *repo.DB
	Files     repo.InvoiceFileRepository
	Jobs      repo.ExtractJobRepository
	Records   repo.InvoiceRecordRepository
	Processor *core.Processor
	Ingestor  *ingest.FSIngestor
	Export    *export.Service
}

func (e *appEnv) Close() {
	if e.DB != nil {
		e.DB.Close()
	}
}

func newTextExtractor() *ocr.Extractor {
	return ocr.NewExtractor(ocr.ConfigFromText(cfg.Text), logger)
}

// initEnv opens the database, applies migrations and wires repositories.
func initEnv(ctx context.Context) (*appEnv, error) {
	db, err := repo.Open(ctx, repo.Config{
		Driver:           cfg.Database.Driver,
		DSN:              cfg.Database.DSN,
		MaxConns:         cfg.Database.MaxConns,
		MinConns:         cfg.Database.MinConns,
		MaxConnLifetime:  cfg.Database.MaxConnLifetime,
		MaxConnIdleTime:  cfg.Database.MaxConnIdleTime,
		DialTimeout:      cfg.Database.DialTimeout,
		StatementTimeout: cfg.Database.StatementTimeout,
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.Migrate(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	files := repo.NewInvoiceFileRepository(db, logger)
	jobs := repo.NewExtractJobRepository(db, logger)
	records := repo.NewInvoiceRecordRepository(db, logger)

	return &appEnv{
		DB:        db,
		Files:     files,
		Jobs:      jobs,
		Records:   records,
		Processor: core.NewProcessor(logger, newTextExtractor(), files, jobs, records),
		Ingestor:  ingest.NewFSIngestor(files, logger),
		Export:    export.NewService(records, cfg.Export, logger),
	}, nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		if _, werr := fmt.Fprintf(os.Stderr, "Error: %v\n", err); werr != nil {
			fmt.Printf("Error: %v\n", err)
		}
		os.Exit(1)
	}
}
