package constants

// JobStatus is the canonical status for rows in extract_jobs.
type JobStatus string

// Stable values (store these exact strings in DB).
const (
	JobStatusRunning   JobStatus = "RUNNING"   // in progress
	JobStatusTextOK    JobStatus = "TEXT_OK"   // stage 1 completed (page text extracted)
	JobStatusExtracted JobStatus = "EXTRACTED" // stage 2 completed (fields recognized)
	JobStatusFailed    JobStatus = "FAILED"    // terminal failure
)
