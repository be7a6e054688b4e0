package constants

// JobStatus is the canonical status for extraction jobs.
type JobStatus string

// Stable values (store these exact strings).
const (
	JobStatusQueued    JobStatus = "QUEUED"    // queued for processing
	JobStatusRunning   JobStatus = "RUNNING"   // in progress
	JobStatusTextOK    JobStatus = "TEXT_OK"   // stage 1 completed (text extracted)
	JobStatusLLMOK     JobStatus = "LLM_OK"    // stage 2 completed (fields extracted)
	JobStatusValidated JobStatus = "VALIDATED" // stage 3 completed (rules evaluated)
	JobStatusFailed    JobStatus = "FAILED"    // terminal failure
)
