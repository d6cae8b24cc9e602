package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"log/slog"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/joseph-ayodele/invoice-extractor/internal/common"
	"github.com/joseph-ayodele/invoice-extractor/internal/entity"
)

type InvoiceRecordRepository interface {
	Upsert(ctx context.Context, rec *entity.InvoiceRecord) (*entity.InvoiceRecord, error)
	List(ctx context.Context) ([]entity.InvoiceRecord, error)
	ListByFileIDs(ctx context.Context, fileIDs []uuid.UUID) ([]entity.InvoiceRecord, error)
}

type invoiceRecordRepo struct {
	db     *DB
	logger *slog.Logger
}

func NewInvoiceRecordRepository(db *DB, logger *slog.Logger) InvoiceRecordRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &invoiceRecordRepo{db: db, logger: logger}
}

// Upsert stores the record for rec.FileID, replacing the result of an earlier run.
// The returned copy carries the persisted id.
func (r *invoiceRecordRepo) Upsert(ctx context.Context, rec *entity.InvoiceRecord) (*entity.InvoiceRecord, error) {
	body, err := json.Marshal(rec.Record)
	if err != nil {
		return nil, common.WrapError(err, "marshal record")
	}
	var feeRate decimal.NullDecimal
	if rec.FeeRate != nil {
		feeRate = decimal.NewNullDecimal(*rec.FeeRate)
	}

	_, err = r.db.exec(ctx, `
		INSERT INTO invoice_record (id, file_id, record_json, balance_status, balance_error,
			calculated_balance, balance_difference, fee_rate, processed_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (file_id) DO UPDATE SET
			record_json = excluded.record_json,
			balance_status = excluded.balance_status,
			balance_error = excluded.balance_error,
			calculated_balance = excluded.calculated_balance,
			balance_difference = excluded.balance_difference,
			fee_rate = excluded.fee_rate,
			processed_at = excluded.processed_at`,
		uuid.New(), rec.FileID, string(body), rec.BalanceStatus, rec.BalanceError,
		rec.CalculatedBalance, rec.BalanceDifference, feeRate, rec.ProcessedAt.UTC(),
	)
	if err != nil {
		r.logger.Error("failed to upsert invoice record", "file_id", rec.FileID, "error", err)
		return nil, common.DatabaseError("upsert invoice record", err)
	}

	out := *rec
	if err := r.db.queryRow(ctx, `SELECT id FROM invoice_record WHERE file_id = ?`, rec.FileID).Scan(&out.ID); err != nil {
		return nil, common.DatabaseError("read invoice record id", err)
	}
	return &out, nil
}

const recordSelect = `
	SELECT r.id, r.file_id, f.filename, r.record_json, r.balance_status, r.balance_error,
		r.calculated_balance, r.balance_difference, r.fee_rate, r.processed_at
	FROM invoice_record r
	JOIN invoice_file f ON f.id = r.file_id`

// List returns every stored record, oldest first.
func (r *invoiceRecordRepo) List(ctx context.Context) ([]entity.InvoiceRecord, error) {
	return r.list(ctx, recordSelect+` ORDER BY r.processed_at, f.filename`)
}

// ListByFileIDs returns the records of the given files, ordered by file name.
func (r *invoiceRecordRepo) ListByFileIDs(ctx context.Context, fileIDs []uuid.UUID) ([]entity.InvoiceRecord, error) {
	if len(fileIDs) == 0 {
		return nil, nil
	}
	args := make([]any, len(fileIDs))
	for i, id := range fileIDs {
		args[i] = id
	}
	return r.list(ctx, recordSelect+` WHERE r.file_id IN (`+placeholders(len(fileIDs))+`) ORDER BY f.filename`, args...)
}

func (r *invoiceRecordRepo) list(ctx context.Context, query string, args ...any) ([]entity.InvoiceRecord, error) {
	rows, err := r.db.query(ctx, query, args...)
	if err != nil {
		r.logger.Error("failed to list invoice records", "error", err)
		return nil, common.DatabaseError("list invoice records", err)
	}
	defer rows.Close()

	var out []entity.InvoiceRecord
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *rec)
	}
	if err := rows.Err(); err != nil {
		return nil, common.DatabaseError("iterate invoice records", err)
	}
	return out, nil
}

func scanRecord(row scannable) (*entity.InvoiceRecord, error) {
	var (
		rec        entity.InvoiceRecord
		body       []byte
		balanceErr sql.NullString
		calc       sql.NullInt64
		diff       sql.NullInt64
		feeRate    decimal.NullDecimal
	)
	if err := row.Scan(&rec.ID, &rec.FileID, &rec.Filename, &body, &rec.BalanceStatus, &balanceErr,
		&calc, &diff, &feeRate, &rec.ProcessedAt); err != nil {
		return nil, common.DatabaseError("scan invoice record", err)
	}
	if err := json.Unmarshal(body, &rec.Record); err != nil {
		return nil, common.WrapError(err, "unmarshal record")
	}
	if balanceErr.Valid {
		rec.BalanceError = &balanceErr.String
	}
	if calc.Valid {
		rec.CalculatedBalance = &calc.Int64
	}
	if diff.Valid {
		rec.BalanceDifference = &diff.Int64
	}
	if feeRate.Valid {
		rec.FeeRate = &feeRate.Decimal
	}
	return &rec, nil
}
