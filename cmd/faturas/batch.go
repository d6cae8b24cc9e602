package main

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"sync/atomic"
	"syscall"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/joseph-ayodele/invoice-extractor/internal/common"
	"github.com/joseph-ayodele/invoice-extractor/internal/core/balance"
	"github.com/joseph-ayodele/invoice-extractor/internal/entity"
	"github.com/joseph-ayodele/invoice-extractor/internal/ingest"
)

var (
	batchDir     string
	batchOutDir  string
	batchWorkers int
)

var batchCmd = &cobra.Command{
	Use:   "batch",
	Short: "Ingest a directory of invoices, extract every file and export the table",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		if batchDir == "" {
			return common.NewAppError("INVALID_ARGUMENT", "--dir is required", common.ErrInvalidInput)
		}
		workers := cfg.Batch.Workers
		if batchWorkers > 0 {
			workers = batchWorkers
		}

		env, err := initEnv(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		batchID := uuid.NewString()
		ctx = common.WithBatchID(ctx, batchID)
		ctx = common.WithLogger(ctx, logger.With("batch_id", batchID))
		results, stats, err := env.Ingestor.IngestDirectory(ctx, batchDir, cfg.Batch.SkipHidden)
		if err != nil {
			return fmt.Errorf("ingest: %w", err)
		}
		logger.Info("ingestion complete",
			"batch_id", common.BatchIDFromContext(ctx),
			"scanned", stats.Scanned, "matched", stats.Matched, "succeeded", stats.Succeeded,
			"deduplicated", stats.Deduplicated, "failed", stats.Failed)

		ids := ingestedFileIDs(results)
		sum, err := processBatch(ctx, ids, workers, env.Processor.ProcessFile)
		if err != nil {
			return err
		}

		out, err := env.Export.ExportFiles(ctx, batchOutDir, ids)
		if err != nil {
			return fmt.Errorf("export: %w", err)
		}

		fmt.Printf("Batch processing complete!\n")
		fmt.Printf("- Files ingested: %d\n", len(ids))
		fmt.Printf("- Files processed: %d\n", sum.Succeeded)
		fmt.Printf("- Failures: %d\n", sum.Failed)
		fmt.Printf("- CSV: %s\n", out.CSV)
		fmt.Printf("- XLSX: %s\n", out.XLSX)
		return nil
	},
}

func init() {
	batchCmd.Flags().StringVar(&batchDir, "dir", "", "directory to read invoices from (required)")
	batchCmd.Flags().StringVar(&batchOutDir, "out-dir", "", "output directory (defaults to export.dir)")
	batchCmd.Flags().IntVar(&batchWorkers, "workers", 0, "parallel documents (defaults to batch.workers)")
	rootCmd.AddCommand(batchCmd)
}

// ingestedFileIDs keeps the distinct files that were ingested without error.
func ingestedFileIDs(results []ingest.IngestionResult) []uuid.UUID {
	seen := map[uuid.UUID]bool{}
	var ids []uuid.UUID
	for _, r := range results {
		if r.Err != "" || r.FileID == uuid.Nil || seen[r.FileID] {
			continue
		}
		seen[r.FileID] = true
		ids = append(ids, r.FileID)
	}
	return ids
}

type processFunc func(ctx context.Context, fileID uuid.UUID) (*entity.InvoiceRecord, error)

type batchSummary struct {
	Succeeded int64
	Failed    int64
	Mismatch  int64
}

// processBatch runs process for every file with at most concurrency in flight.
// Individual failures are counted, not returned.
func processBatch(ctx context.Context, ids []uuid.UUID, concurrency int, process processFunc) (batchSummary, error) {
	if len(ids) == 0 {
		logger.Info("no invoices to process")
		return batchSummary{}, nil
	}
	if concurrency <= 0 {
		concurrency = 1
	}
	logger.Info("processing batch", "files", len(ids), "concurrency", concurrency)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	var succeeded, failed, mismatch atomic.Int64
	for _, id := range ids {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			rec, err := process(gctx, id)
			if err != nil {
				failed.Add(1)
				logger.Error("processing failed", "file_id", id, "error", err)
				return nil
			}
			succeeded.Add(1)
			if rec.BalanceStatus != string(balance.StatusOK) {
				mismatch.Add(1)
			}
			return nil
		})
	}

	err := g.Wait()
	sum := batchSummary{Succeeded: succeeded.Load(), Failed: failed.Load(), Mismatch: mismatch.Load()}
	if err != nil && !errors.Is(err, context.Canceled) {
		return sum, fmt.Errorf("batch processing: %w", err)
	}
	logger.Info("batch complete", "succeeded", sum.Succeeded, "failed", sum.Failed, "balance_not_ok", sum.Mismatch)
	return sum, err
}
