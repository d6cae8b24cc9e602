package core

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/invoice-extractor/constants"
	"github.com/joseph-ayodele/invoice-extractor/internal/common"
	"github.com/joseph-ayodele/invoice-extractor/internal/core/balance"
	"github.com/joseph-ayodele/invoice-extractor/internal/core/extract"
	"github.com/joseph-ayodele/invoice-extractor/internal/core/ocr"
	"github.com/joseph-ayodele/invoice-extractor/internal/entity"
	"github.com/joseph-ayodele/invoice-extractor/internal/repository"
)

// TextExtractor produces the page text of one document.
type TextExtractor interface {
	Extract(ctx context.Context, path string) (ocr.ExtractionResult, error)
}

// Processor coordinates page text extraction, field recognition and the balance check.
type Processor struct {
	logger      *slog.Logger
	text        TextExtractor
	filesRepo   repository.InvoiceFileRepository
	jobsRepo    repository.ExtractJobRepository
	recordsRepo repository.InvoiceRecordRepository
}

func NewProcessor(
	logger *slog.Logger,
	text TextExtractor,
	filesRepo repository.InvoiceFileRepository,
	jobsRepo repository.ExtractJobRepository,
	recordsRepo repository.InvoiceRecordRepository,
) *Processor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Processor{
		logger:      logger,
		text:        text,
		filesRepo:   filesRepo,
		jobsRepo:    jobsRepo,
		recordsRepo: recordsRepo,
	}
}

// Extraction is the outcome of processing one document without persistence.
type Extraction struct {
	Path    string
	Text    ocr.ExtractionResult
	Record  extract.Record
	Balance balance.Result
}

// ProcessFile extracts the page text of a stored file, recognizes its fields
// and stores the record (replacing any earlier one for the same file).
// The extract job is left in FAILED when any stage errors.
func (p *Processor) ProcessFile(ctx context.Context, fileID uuid.UUID) (*entity.InvoiceRecord, error) {
	start := time.Now()
	logger := common.LoggerFromContext(ctx, p.logger).With("file_id", fileID)

	row, err := p.filesRepo.GetByID(ctx, fileID)
	if err != nil {
		return nil, fmt.Errorf("get file: %w", err)
	}

	format := constants.MapExtToFormat(row.FileExt)
	if format == "" {
		return nil, fmt.Errorf("%w: %s", common.ErrUnsupportedFormat, row.FileExt)
	}

	job, err := p.jobsRepo.Start(ctx, row.ID, format)
	if err != nil {
		return nil, err
	}
	fail := func(stage string, err error) error {
		if ferr := p.jobsRepo.FinishFailure(ctx, job.ID, err.Error()); ferr != nil {
			logger.Warn("failed to mark job failed", "job_id", job.ID, "error", ferr)
		}
		logger.Error("processor."+stage+".failed", "job_id", job.ID, "error", err)
		return fmt.Errorf("%s: %w", stage, err)
	}

	// 1) page text
	text, err := p.text.Extract(ctx, row.SourcePath)
	if err != nil {
		return nil, fail("text", err)
	}
	if err := p.jobsRepo.FinishTextSuccess(ctx, job.ID, text.Text, text.Method, text.Pages); err != nil {
		return nil, fail("text", err)
	}
	for _, w := range text.Warnings {
		logger.Warn("text extraction warning", "job_id", job.ID, "warning", w)
	}

	// 2) fields + derived columns
	rec := extract.Extract(text.Text)
	res := balance.Compute(rec)
	p.logResult(logger, rec, res)

	stored, err := p.recordsRepo.Upsert(ctx, entity.NewInvoiceRecord(row.ID, row.Filename, rec, res))
	if err != nil {
		return nil, fail("store", err)
	}

	body, err := json.Marshal(rec)
	if err != nil {
		return nil, fail("store", err)
	}
	if err := p.jobsRepo.FinishExtracted(ctx, job.ID, stored.ID, body); err != nil {
		return nil, fail("store", err)
	}

	logger.Info("processor.file.ok",
		"job_id", job.ID, "record_id", stored.ID,
		"method", text.Method, "pages", text.Pages,
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return stored, nil
}

// ExtractPath runs text extraction and field recognition on a file path
// without touching the database.
func (p *Processor) ExtractPath(ctx context.Context, path string) (*Extraction, error) {
	logger := common.LoggerFromContext(ctx, p.logger).With("path", path)
	text, err := p.text.Extract(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("text: %w", err)
	}
	rec := extract.Extract(text.Text)
	res := balance.Compute(rec)
	p.logResult(logger, rec, res)
	return &Extraction{Path: path, Text: text, Record: rec, Balance: res}, nil
}

func (p *Processor) logResult(logger *slog.Logger, rec extract.Record, res balance.Result) {
	if missing := rec.Missing(); len(missing) > 0 {
		logger.Warn("extract.fields.missing", "fields", missing)
	}
	if res.Err != nil {
		logger.Warn("balance.unevaluated", "error", res.Err)
		return
	}
	logger.Debug("extract.fields.ok", "balance_status", res.Status)
}
