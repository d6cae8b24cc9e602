package main

import (
	"context"
	"fmt"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/joseph-ayodele/invoice-extractor/internal/common"
	"github.com/joseph-ayodele/invoice-extractor/internal/core/async"
	"github.com/joseph-ayodele/invoice-extractor/internal/entity"
	"github.com/joseph-ayodele/invoice-extractor/internal/ingest"
)

var (
	watchDir      string
	watchInitial  bool
	watchDebounce time.Duration
	watchExport   bool
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Watch a directory and extract invoices as they arrive",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		if watchDir == "" {
			return common.NewAppError("INVALID_ARGUMENT", "--dir is required", common.ErrInvalidInput)
		}

		env, err := initEnv(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		var exportMu sync.Mutex
		onResult := func(job async.Job, _ *entity.InvoiceRecord, err error) {
			if err != nil || !watchExport {
				return
			}
			exportMu.Lock()
			defer exportMu.Unlock()
			if _, err := env.Export.ExportFiles(ctx, "", nil); err != nil {
				logger.Warn("export after processing failed", "file_id", job.FileID, "error", err)
			}
		}
		q := async.NewProcessorQueue(env.Processor, logger,
			async.WithWorkers(cfg.Batch.Workers),
			async.WithResultFunc(onResult),
		)
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()
			q.Shutdown(shutdownCtx)
		}()

		events, errs, err := ingest.StartWatcher(ctx, ingest.WatchConfig{
			Roots:       []string{watchDir},
			InitialScan: watchInitial,
			Debounce:    watchDebounce,
			SkipHidden:  cfg.Batch.SkipHidden,
			Logger:      logger,
		})
		if err != nil {
			return fmt.Errorf("start watcher: %w", err)
		}
		logger.Info("watching for invoices", "dir", watchDir)

		for {
			select {
			case <-ctx.Done():
				return nil
			case err, ok := <-errs:
				if !ok {
					errs = nil
					continue
				}
				logger.Warn("watcher error", "error", err)
			case path, ok := <-events:
				if !ok {
					return nil
				}
				res, err := env.Ingestor.IngestPath(ctx, path)
				if err != nil {
					logger.Error("ingest failed", "path", path, "error", err)
					continue
				}
				if err := q.Enqueue(ctx, async.Job{FileID: res.FileID, Filename: res.Filename}); err != nil {
					logger.Error("enqueue failed", "file_id", res.FileID, "error", err)
				}
			}
		}
	},
}

func init() {
	watchCmd.Flags().StringVar(&watchDir, "dir", "", "directory to watch (required)")
	watchCmd.Flags().BoolVar(&watchInitial, "initial-scan", true, "process files already present")
	watchCmd.Flags().DurationVar(&watchDebounce, "debounce", 750*time.Millisecond, "coalesce bursts of file events")
	watchCmd.Flags().BoolVar(&watchExport, "export", true, "rewrite the export tables after each processed file")
	rootCmd.AddCommand(watchCmd)
}
