package repository

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/invoice-extractor/constants"
	"github.com/joseph-ayodele/invoice-extractor/internal/common"
	"github.com/joseph-ayodele/invoice-extractor/internal/core/balance"
	"github.com/joseph-ayodele/invoice-extractor/internal/core/extract"
	"github.com/joseph-ayodele/invoice-extractor/internal/entity"
)

func newTestDB(t *testing.T) *DB {
	t.Helper()
	ctx := context.Background()
	db, err := Open(ctx, Config{Driver: common.DriverSQLite, DSN: ":memory:"}, nil)
	require.NoError(t, err)
	t.Cleanup(db.Close)
	require.NoError(t, db.Migrate(ctx))
	return db
}

func TestRebind(t *testing.T) {
	pg := &DB{driver: common.DriverPostgres}
	assert.Equal(t, "SELECT * FROM t WHERE a = $1 AND b IN ($2, $3)", pg.rebind("SELECT * FROM t WHERE a = ? AND b IN (?, ?)"))

	lite := &DB{driver: common.DriverSQLite}
	assert.Equal(t, "SELECT ?", lite.rebind("SELECT ?"))
}

func TestOpen_UnknownDriver(t *testing.T) {
	_, err := Open(context.Background(), Config{Driver: "oracle"}, nil)
	require.ErrorIs(t, err, common.ErrInvalidInput)
}

func TestMigrate_Idempotent(t *testing.T) {
	db := newTestDB(t)
	require.NoError(t, db.Migrate(context.Background()))
	require.NoError(t, db.HealthCheck(context.Background(), time.Second))
}

func TestInvoiceFileRepository_UpsertByHash(t *testing.T) {
	ctx := context.Background()
	repo := NewInvoiceFileRepository(newTestDB(t), nil)
	hash := []byte{0xde, 0xad, 0xbe, 0xef}
	now := time.Now()

	first, dedup, err := repo.UpsertByHash(ctx, "/in/a.pdf", "a.pdf", "pdf", 10, hash, now)
	require.NoError(t, err)
	assert.False(t, dedup)

	second, dedup, err := repo.UpsertByHash(ctx, "/in/copy.pdf", "copy.pdf", "pdf", 10, hash, now)
	require.NoError(t, err)
	assert.True(t, dedup)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, "a.pdf", second.Filename)

	got, err := repo.GetByID(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, hash, got.ContentHash)
	assert.Equal(t, 10, got.FileSize)

	_, err = repo.GetByID(ctx, uuid.New())
	require.ErrorIs(t, err, common.ErrNotFound)
}

func TestExtractJobRepository_Lifecycle(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	files := NewInvoiceFileRepository(db, nil)
	jobs := NewExtractJobRepository(db, nil)

	f, err := files.Create(ctx, "/in/a.txt", "a.txt", "txt", 3, []byte{1}, time.Now())
	require.NoError(t, err)

	job, err := jobs.Start(ctx, f.ID, constants.TEXT)
	require.NoError(t, err)
	assert.Equal(t, string(constants.JobStatusRunning), job.Status)

	require.NoError(t, jobs.FinishTextSuccess(ctx, job.ID, "page text", "text", 1))
	got, err := jobs.GetByID(ctx, job.ID)
	require.NoError(t, err)
	assert.Equal(t, string(constants.JobStatusTextOK), got.Status)
	require.NotNil(t, got.PageText)
	assert.Equal(t, "page text", *got.PageText)
	require.NotNil(t, got.Pages)
	assert.Equal(t, 1, *got.Pages)
	assert.Nil(t, got.FinishedAt)

	recordID := uuid.New()
	require.NoError(t, jobs.FinishExtracted(ctx, job.ID, recordID, json.RawMessage(`{"a":1}`)))
	got, err = jobs.GetByID(ctx, job.ID)
	require.NoError(t, err)
	assert.Equal(t, string(constants.JobStatusExtracted), got.Status)
	require.NotNil(t, got.RecordID)
	assert.Equal(t, recordID, *got.RecordID)
	assert.NotNil(t, got.FinishedAt)
	assert.JSONEq(t, `{"a":1}`, string(got.ExtractedJSON))

	err = jobs.FinishFailure(ctx, uuid.New(), "boom")
	require.ErrorIs(t, err, common.ErrNotFound)
}

func TestInvoiceRecordRepository_UpsertReplaces(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	files := NewInvoiceFileRepository(db, nil)
	records := NewInvoiceRecordRepository(db, nil)

	f, err := files.Create(ctx, "/in/fatura.txt", "fatura.txt", "txt", 3, []byte{2}, time.Now())
	require.NoError(t, err)

	rec := extract.Extract("SALDO ANTERIOR: 100 INJETADO: 50 COMPENSADO: 30 SALDO ATUAL: 120\nCUSTO TUSD FIO B 1.262,22")
	first, err := records.Upsert(ctx, entity.NewInvoiceRecord(f.ID, f.Filename, rec, balance.Compute(rec)))
	require.NoError(t, err)

	changed := extract.Extract("SALDO ANTERIOR: 100 INJETADO: 50 COMPENSADO: 30 SALDO ATUAL: 110")
	second, err := records.Upsert(ctx, entity.NewInvoiceRecord(f.ID, f.Filename, changed, balance.Compute(changed)))
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)

	all, err := records.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	got := all[0]
	assert.Equal(t, "fatura.txt", got.Filename)
	assert.Equal(t, string(balance.StatusMismatch), got.BalanceStatus)
	require.NotNil(t, got.BalanceDifference)
	assert.Equal(t, int64(-10), *got.BalanceDifference)
	require.NotNil(t, got.Record.CurrentBalance)
	assert.Equal(t, int64(110), *got.Record.CurrentBalance)
	assert.Nil(t, got.FeeRate)
}

func TestInvoiceRecordRepository_ListByFileIDs(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	files := NewInvoiceFileRepository(db, nil)
	records := NewInvoiceRecordRepository(db, nil)

	var ids []uuid.UUID
	for i, name := range []string{"b.txt", "a.txt", "c.txt"} {
		f, err := files.Create(ctx, "/in/"+name, name, "txt", 1, []byte{byte(10 + i)}, time.Now())
		require.NoError(t, err)
		rec := extract.Extract("INJETADO: 5\nCUSTO TUSD FIO B 2,00\nCOMPENSADO: 4")
		_, err = records.Upsert(ctx, entity.NewInvoiceRecord(f.ID, name, rec, balance.Compute(rec)))
		require.NoError(t, err)
		ids = append(ids, f.ID)
	}

	got, err := records.ListByFileIDs(ctx, ids[:2])
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "a.txt", got[0].Filename)
	assert.Equal(t, "b.txt", got[1].Filename)
	assert.Equal(t, string(balance.StatusUnevaluated), got[0].BalanceStatus)
	require.NotNil(t, got[0].BalanceError)
	assert.Contains(t, *got[0].BalanceError, "SALDO ANTERIOR (kWh)")
	require.NotNil(t, got[0].FeeRate)
	assert.Equal(t, "0.5", got[0].FeeRate.String())

	none, err := records.ListByFileIDs(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestExtractJobRepository_StartRejectsUnknownFormat(t *testing.T) {
	jobs := NewExtractJobRepository(newTestDB(t), nil)
	_, err := jobs.Start(context.Background(), uuid.New(), "DOCX")
	require.ErrorIs(t, err, common.ErrInvalidInput)
}
