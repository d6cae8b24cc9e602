package core

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/invoice-extractor/constants"
	"github.com/joseph-ayodele/invoice-extractor/internal/common"
	"github.com/joseph-ayodele/invoice-extractor/internal/core/balance"
	"github.com/joseph-ayodele/invoice-extractor/internal/core/ocr"
	"github.com/joseph-ayodele/invoice-extractor/internal/ingest"
	"github.com/joseph-ayodele/invoice-extractor/internal/repository"
)

const invoiceText = `FULANO DE TAL DA SILVA
RUA DAS FLORES 100
7.012.345-6
B3 COMERCIAL
REF: JAN / 2025
TOTAL A PAGAR R$ 3.914,15
VENCIMENTO 20/01/2025
05/11/2025 08/12/2025 33 05/12/2025
CUSTO TUSD FIO B 1 1.262,22
SALDO ANTERIOR: 100 INJETADO: 50 COMPENSADO: 30 SALDO ATUAL: 120
`

type env struct {
	proc    *Processor
	ingest  *ingest.FSIngestor
	jobs    repository.ExtractJobRepository
	records repository.InvoiceRecordRepository
}

func newEnv(t *testing.T, text TextExtractor) env {
	t.Helper()
	ctx := context.Background()
	db, err := repository.Open(ctx, repository.Config{Driver: common.DriverSQLite, DSN: ":memory:"}, nil)
	require.NoError(t, err)
	t.Cleanup(db.Close)
	require.NoError(t, db.Migrate(ctx))

	files := repository.NewInvoiceFileRepository(db, nil)
	jobs := repository.NewExtractJobRepository(db, nil)
	records := repository.NewInvoiceRecordRepository(db, nil)
	if text == nil {
		text = ocr.NewExtractor(ocr.Config{}, nil)
	}
	return env{
		proc:    NewProcessor(nil, text, files, jobs, records),
		ingest:  ingest.NewFSIngestor(files, nil),
		jobs:    jobs,
		records: records,
	}
}

func writeInvoice(t *testing.T, name, content string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	return p
}

type failingText struct{}

func (failingText) Extract(context.Context, string) (ocr.ExtractionResult, error) {
	return ocr.ExtractionResult{}, errors.New("boom")
}

func TestProcessFile_StoresRecord(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t, nil)
	in, err := e.ingest.IngestPath(ctx, writeInvoice(t, "jan.txt", invoiceText))
	require.NoError(t, err)

	got, err := e.proc.ProcessFile(ctx, in.FileID)
	require.NoError(t, err)
	assert.Equal(t, "jan.txt", got.Filename)
	require.NotNil(t, got.Record.CustomerName)
	assert.Equal(t, "FULANO DE TAL DA SILVA", *got.Record.CustomerName)
	assert.Equal(t, "JAN/2025", *got.Record.BillingPeriod)
	assert.Equal(t, string(balance.StatusOK), got.BalanceStatus)
	require.NotNil(t, got.FeeRate)
	assert.Equal(t, "42.0740", got.FeeRate.StringFixed(4))

	// reprocessing replaces, not duplicates
	_, err = e.proc.ProcessFile(ctx, in.FileID)
	require.NoError(t, err)
	all, err := e.records.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, int64(120), *all[0].Record.CurrentBalance)
}

func TestProcessFile_TextFailureMarksJob(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t, failingText{})
	in, err := e.ingest.IngestPath(ctx, writeInvoice(t, "jan.txt", invoiceText))
	require.NoError(t, err)

	_, err = e.proc.ProcessFile(ctx, in.FileID)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "boom")

	all, err := e.records.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestProcessFile_UnknownFile(t *testing.T) {
	e := newEnv(t, nil)
	_, err := e.proc.ProcessFile(context.Background(), uuid.New())
	require.ErrorIs(t, err, common.ErrNotFound)
}

func TestExtractPath(t *testing.T) {
	e := newEnv(t, nil)
	out, err := e.proc.ExtractPath(context.Background(), writeInvoice(t, "x.txt", "nada aqui\n"))
	require.NoError(t, err)
	assert.Equal(t, ocr.ResultPlainText, out.Text.Method)
	// no credit section: the quartet is zeroed and balances trivially
	assert.Equal(t, int64(0), *out.Record.PriorBalance)
	assert.Equal(t, balance.StatusOK, out.Balance.Status)
	assert.Nil(t, out.Balance.FeeRate)
	assert.Contains(t, out.Record.Missing(), constants.FieldTotalPayable)
}

func TestExtractPath_Unsupported(t *testing.T) {
	e := newEnv(t, nil)
	_, err := e.proc.ExtractPath(context.Background(), writeInvoice(t, "x.png", "x"))
	require.ErrorIs(t, err, common.ErrUnsupportedFormat)
}
