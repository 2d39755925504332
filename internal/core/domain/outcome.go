package domain

import "time"

// ConversionOutcome is the terminal result of converting one file. Outcomes
// are plain values, never errors: a failed conversion is reported through
// Success=false plus the taxonomy fields.
type ConversionOutcome struct {
	Success      bool          `json:"success"`
	SourcePath   string        `json:"source_path"`
	OutputPath   string        `json:"output_path,omitempty"`
	SourceFormat Format        `json:"source_format,omitempty"`
	TargetFormat Format        `json:"target_format"`
	Attempts     int           `json:"attempts"`
	InputBytes   int64         `json:"input_bytes,omitempty"`
	OutputBytes  int64         `json:"output_bytes,omitempty"`
	Duration     time.Duration `json:"duration,omitempty"`

	// StructureChecked is false when structural validation was skipped
	// because the validator's parsing support is unavailable.
	StructureChecked bool `json:"structure_validation_available"`

	Error     string `json:"error,omitempty"`
	ErrorKind string `json:"error_kind,omitempty"`
}

type BatchStatus string

const (
	BatchQueued     BatchStatus = "queued"
	BatchProcessing BatchStatus = "processing"
	BatchSucceeded  BatchStatus = "succeeded"
	BatchPartial    BatchStatus = "partial"
	BatchFailed     BatchStatus = "failed"
)

// BatchOutcome aggregates the per-file outcomes of one batch run. Status is
// BatchSucceeded when every file converted, BatchPartial when at least one
// did, BatchFailed when none did. SuccessfulFiles holds output paths in
// completion order; FailedFiles holds source paths.
type BatchOutcome struct {
	Status          BatchStatus         `json:"status"`
	Requested       int                 `json:"requested"`
	Succeeded       int                 `json:"succeeded"`
	Failed          int                 `json:"failed"`
	SuccessfulFiles []string            `json:"successful_files,omitempty"`
	FailedFiles     []string            `json:"failed_files,omitempty"`
	Message         string              `json:"message,omitempty"`
	Error           string              `json:"error,omitempty"`
	Outcomes        []ConversionOutcome `json:"outcomes,omitempty"`
}

func (b BatchOutcome) Success() bool {
	return b.Status == BatchSucceeded || b.Status == BatchPartial
}
