package repository

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/invoice-extractor/internal/common"
	"github.com/joseph-ayodele/invoice-extractor/internal/entity"
)

type InvoiceFileRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*entity.InvoiceFile, error)
	GetByHash(ctx context.Context, hash []byte) (*entity.InvoiceFile, error)
	Create(ctx context.Context, sourcePath, filename, ext string, size int, hash []byte, uploadedAt time.Time) (*entity.InvoiceFile, error)
	UpsertByHash(ctx context.Context, sourcePath, filename, ext string, size int, hash []byte, uploadedAt time.Time) (*entity.InvoiceFile, bool, error)
}

type invoiceFileRepo struct {
	db     *DB
	logger *slog.Logger
}

func NewInvoiceFileRepository(db *DB, logger *slog.Logger) InvoiceFileRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &invoiceFileRepo{
		db:     db,
		logger: logger,
	}
}

const fileColumns = `id, source_path, content_hash, filename, file_ext, file_size, uploaded_at`

func (r *invoiceFileRepo) GetByID(ctx context.Context, id uuid.UUID) (*entity.InvoiceFile, error) {
	row := r.db.queryRow(ctx, `SELECT `+fileColumns+` FROM invoice_file WHERE id = ?`, id)
	f, err := scanFile(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.NotFoundf("invoice file %s", id)
	}
	if err != nil {
		r.logger.Error("failed to get invoice file", "file_id", id, "error", err)
		return nil, common.DatabaseError("get invoice file", err)
	}
	return f, nil
}

func (r *invoiceFileRepo) GetByHash(ctx context.Context, hash []byte) (*entity.InvoiceFile, error) {
	row := r.db.queryRow(ctx, `SELECT `+fileColumns+` FROM invoice_file WHERE content_hash = ?`, hash)
	f, err := scanFile(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.NotFoundf("invoice file with hash %x", hash)
	}
	if err != nil {
		r.logger.Error("failed to get invoice file by hash", "error", err)
		return nil, common.DatabaseError("get invoice file by hash", err)
	}
	return f, nil
}

func (r *invoiceFileRepo) Create(ctx context.Context, sourcePath, filename, ext string, size int, hash []byte, uploadedAt time.Time) (*entity.InvoiceFile, error) {
	f := &entity.InvoiceFile{
		ID:          uuid.New(),
		SourcePath:  sourcePath,
		ContentHash: hash,
		Filename:    filename,
		FileExt:     ext,
		FileSize:    size,
		UploadedAt:  uploadedAt.UTC(),
	}
	_, err := r.db.exec(ctx,
		`INSERT INTO invoice_file (`+fileColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		f.ID, f.SourcePath, f.ContentHash, f.Filename, f.FileExt, f.FileSize, f.UploadedAt,
	)
	if err != nil {
		r.logger.Error("failed to create invoice file", "source_path", sourcePath, "filename", filename, "error", err)
		return nil, common.DatabaseError("create invoice file", err)
	}
	return f, nil
}

// UpsertByHash returns the existing row for hash, or creates one. The bool reports deduplication.
func (r *invoiceFileRepo) UpsertByHash(ctx context.Context, sourcePath, filename, ext string, size int, hash []byte, uploadedAt time.Time) (*entity.InvoiceFile, bool, error) {
	existing, err := r.GetByHash(ctx, hash)
	if err == nil {
		return existing, true, nil
	}
	if !errors.Is(err, common.ErrNotFound) {
		return nil, false, err
	}
	row, err := r.Create(ctx, sourcePath, filename, ext, size, hash, uploadedAt)
	if err != nil {
		r.logger.Error("failed to upsert invoice file by hash", "source_path", sourcePath, "filename", filename, "error", err)
		return nil, false, err
	}
	return row, false, nil
}

type scannable interface {
	Scan(dest ...any) error
}

func scanFile(row scannable) (*entity.InvoiceFile, error) {
	var f entity.InvoiceFile
	if err := row.Scan(&f.ID, &f.SourcePath, &f.ContentHash, &f.Filename, &f.FileExt, &f.FileSize, &f.UploadedAt); err != nil {
		return nil, err
	}
	return &f, nil
}
