package domain

import "time"

type JobStatus string

const (
	JobQueued     JobStatus = "queued"
	JobProcessing JobStatus = "processing"
	JobSucceeded  JobStatus = "succeeded"
	JobFailed     JobStatus = "failed"
)

// ConversionJob is the persisted record of one requested file conversion.
type ConversionJob struct {
	ID              string    `json:"id"`
	SourcePath      string    `json:"source_path"`
	SourceFormat    Format    `json:"source_format,omitempty"`
	TargetFormat    Format    `json:"target_format"`
	OutputPath      string    `json:"output_path,omitempty"`
	Status          JobStatus `json:"status"`
	Attempts        int       `json:"attempts,omitempty"`
	InputBytes      int64     `json:"input_bytes,omitempty"`
	OutputBytes     int64     `json:"output_bytes,omitempty"`
	SizeRatio       float64   `json:"size_ratio,omitempty"`
	DurationSeconds float64   `json:"duration_seconds,omitempty"`
	Error           string    `json:"error,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// ConversionBatch is the persisted record of one directory batch request.
type ConversionBatch struct {
	ID           string      `json:"id"`
	SourceDir    string      `json:"source_dir"`
	Pattern      string      `json:"pattern"`
	Recursive    bool        `json:"recursive"`
	TargetFormat Format      `json:"target_format"`
	OutputDir    string      `json:"output_dir"`
	Status       BatchStatus `json:"status"`
	Requested    int         `json:"requested,omitempty"`
	Succeeded    int         `json:"succeeded,omitempty"`
	Failed       int         `json:"failed,omitempty"`
	Message      string      `json:"message,omitempty"`
	Error        string      `json:"error,omitempty"`
	CreatedAt    time.Time   `json:"created_at"`
	UpdatedAt    time.Time   `json:"updated_at"`
}
