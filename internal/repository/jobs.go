package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/invoice-extractor/constants"
	"github.com/joseph-ayodele/invoice-extractor/internal/common"
	"github.com/joseph-ayodele/invoice-extractor/internal/entity"
)

type ExtractJobRepository interface {
	Start(ctx context.Context, fileID uuid.UUID, format string) (*entity.ExtractJob, error)
	FinishTextSuccess(ctx context.Context, jobID uuid.UUID, pageText, method string, pages int) error
	FinishExtracted(ctx context.Context, jobID, recordID uuid.UUID, extracted json.RawMessage) error
	FinishFailure(ctx context.Context, jobID uuid.UUID, message string) error
	GetByID(ctx context.Context, jobID uuid.UUID) (*entity.ExtractJob, error)
}

type extractJobRepo struct {
	db  *DB
	log *slog.Logger
}

func NewExtractJobRepository(db *DB, log *slog.Logger) ExtractJobRepository {
	if log == nil {
		log = slog.Default()
	}
	return &extractJobRepo{db: db, log: log}
}

func (r *extractJobRepo) Start(ctx context.Context, fileID uuid.UUID, format string) (*entity.ExtractJob, error) {
	v := common.NewValidator().Field("format", format, common.Required, common.OneOf(constants.FileTypes...))
	if err := common.ValidateAndReturnError(v); err != nil {
		return nil, err
	}
	job := &entity.ExtractJob{
		ID:        uuid.New(),
		FileID:    fileID,
		Format:    format,
		Status:    string(constants.JobStatusRunning),
		StartedAt: time.Now().UTC(),
	}
	_, err := r.db.exec(ctx,
		`INSERT INTO extract_job (id, file_id, format, status, started_at) VALUES (?, ?, ?, ?, ?)`,
		job.ID, job.FileID, job.Format, job.Status, job.StartedAt,
	)
	if err != nil {
		r.log.Error("extract_job start failed", "file_id", fileID, "err", err)
		return nil, common.DatabaseError("start extract job", err)
	}
	r.log.Info("extract_job started", "job_id", job.ID, "file_id", fileID, "format", format)
	return job, nil
}

func (r *extractJobRepo) FinishTextSuccess(ctx context.Context, jobID uuid.UUID, pageText, method string, pages int) error {
	res, err := r.db.exec(ctx,
		`UPDATE extract_job SET page_text = ?, method = ?, pages = ?, status = ? WHERE id = ?`,
		pageText, method, pages, string(constants.JobStatusTextOK), jobID,
	)
	if err = checkUpdated(res, err, "extract job", jobID); err != nil {
		r.log.Error("extract_job finish(TEXT_OK) failed", "job_id", jobID, "err", err)
		return err
	}
	r.log.Info("extract_job text stored", "job_id", jobID, "method", method, "pages", pages)
	return nil
}

func (r *extractJobRepo) FinishExtracted(ctx context.Context, jobID, recordID uuid.UUID, extracted json.RawMessage) error {
	res, err := r.db.exec(ctx,
		`UPDATE extract_job SET record_id = ?, extracted_json = ?, finished_at = ?, status = ? WHERE id = ?`,
		recordID, string(extracted), time.Now().UTC(), string(constants.JobStatusExtracted), jobID,
	)
	if err = checkUpdated(res, err, "extract job", jobID); err != nil {
		r.log.Error("extract_job finish(EXTRACTED) failed", "job_id", jobID, "err", err)
		return err
	}
	r.log.Info("extract_job finished (EXTRACTED)", "job_id", jobID, "record_id", recordID)
	return nil
}

func (r *extractJobRepo) FinishFailure(ctx context.Context, jobID uuid.UUID, message string) error {
	res, err := r.db.exec(ctx,
		`UPDATE extract_job SET finished_at = ?, status = ?, error_message = ? WHERE id = ?`,
		time.Now().UTC(), string(constants.JobStatusFailed), message, jobID,
	)
	if err = checkUpdated(res, err, "extract job", jobID); err != nil {
		r.log.Error("extract_job finish(FAILED) failed", "job_id", jobID, "err", err)
		return err
	}
	r.log.Warn("extract_job finished (FAILED)", "job_id", jobID, "error", message)
	return nil
}

func (r *extractJobRepo) GetByID(ctx context.Context, jobID uuid.UUID) (*entity.ExtractJob, error) {
	row := r.db.queryRow(ctx,
		`SELECT id, file_id, record_id, format, status, started_at, finished_at, error_message, page_text, method, pages, extracted_json
		 FROM extract_job WHERE id = ?`, jobID)

	var (
		job       entity.ExtractJob
		recordID  uuid.NullUUID
		finished  sql.NullTime
		errMsg    sql.NullString
		pageText  sql.NullString
		method    sql.NullString
		pages     sql.NullInt64
		extracted []byte
	)
	err := row.Scan(&job.ID, &job.FileID, &recordID, &job.Format, &job.Status, &job.StartedAt,
		&finished, &errMsg, &pageText, &method, &pages, &extracted)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.NotFoundf("extract job %s", jobID)
	}
	if err != nil {
		return nil, common.DatabaseError("get extract job", err)
	}
	if recordID.Valid {
		job.RecordID = &recordID.UUID
	}
	if finished.Valid {
		job.FinishedAt = &finished.Time
	}
	if errMsg.Valid {
		job.ErrorMessage = &errMsg.String
	}
	if pageText.Valid {
		job.PageText = &pageText.String
	}
	if method.Valid {
		job.Method = &method.String
	}
	if pages.Valid {
		n := int(pages.Int64)
		job.Pages = &n
	}
	if len(extracted) > 0 {
		job.ExtractedJSON = json.RawMessage(extracted)
	}
	return &job, nil
}

func checkUpdated(res sql.Result, err error, what string, id uuid.UUID) error {
	if err != nil {
		return common.DatabaseError("update "+what, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return common.DatabaseError("rows affected", err)
	}
	if n == 0 {
		return common.NotFoundf("%s %s", what, id)
	}
	return nil
}
