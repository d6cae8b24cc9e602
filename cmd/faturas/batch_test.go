package main

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/invoice-extractor/internal/entity"
	"github.com/joseph-ayodele/invoice-extractor/internal/ingest"
)

func init() {
	logger = slog.Default()
}

func TestIngestedFileIDs(t *testing.T) {
	a, b := uuid.New(), uuid.New()
	ids := ingestedFileIDs([]ingest.IngestionResult{
		{FileID: a},
		{FileID: b, Deduplicated: true},
		{FileID: a, Deduplicated: true},
		{SourcePath: "/x/broken.pdf", Err: "permission denied"},
	})
	assert.Equal(t, []uuid.UUID{a, b}, ids)
}

func TestProcessBatch_CountsFailuresWithoutAborting(t *testing.T) {
	bad := uuid.New()
	ids := []uuid.UUID{uuid.New(), bad, uuid.New(), uuid.New()}

	var inFlight, maxInFlight atomic.Int32
	process := func(ctx context.Context, id uuid.UUID) (*entity.InvoiceRecord, error) {
		n := inFlight.Add(1)
		defer inFlight.Add(-1)
		for {
			m := maxInFlight.Load()
			if n <= m || maxInFlight.CompareAndSwap(m, n) {
				break
			}
		}
		if id == bad {
			return nil, errors.New("no text")
		}
		status := "OK"
		if id == ids[3] {
			status = "DIVERGENTE"
		}
		return &entity.InvoiceRecord{FileID: id, BalanceStatus: status}, nil
	}

	sum, err := processBatch(context.Background(), ids, 2, process)
	require.NoError(t, err)
	assert.EqualValues(t, 3, sum.Succeeded)
	assert.EqualValues(t, 1, sum.Failed)
	assert.EqualValues(t, 1, sum.Mismatch)
	assert.LessOrEqual(t, maxInFlight.Load(), int32(2))
}

func TestProcessBatch_Empty(t *testing.T) {
	sum, err := processBatch(context.Background(), nil, 4, nil)
	require.NoError(t, err)
	assert.Zero(t, sum)
}
