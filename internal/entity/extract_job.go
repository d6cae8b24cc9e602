package entity

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// ExtractJob represents one processing attempt of an invoice file.
type ExtractJob struct {
	ID            uuid.UUID       `json:"id"`
	FileID        uuid.UUID       `json:"file_id"`
	RecordID      *uuid.UUID      `json:"record_id,omitempty"`
	Format        string          `json:"format"`
	Status        string          `json:"status"`
	StartedAt     time.Time       `json:"started_at"`
	FinishedAt    *time.Time      `json:"finished_at,omitempty"`
	ErrorMessage  *string         `json:"error_message,omitempty"`
	PageText      *string         `json:"page_text,omitempty"`
	Method        *string         `json:"method,omitempty"`
	Pages         *int            `json:"pages,omitempty"`
	ExtractedJSON json.RawMessage `json:"extracted_json,omitempty"`
}
