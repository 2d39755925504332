package domain

import "time"

// FileStat is a raw filesystem stat, before format inference.
type FileStat struct {
	Exists   bool      `json:"exists"`
	IsDir    bool      `json:"is_dir"`
	Size     int64     `json:"size"`
	Modified time.Time `json:"modified"`
}

// ValidationReport is the outcome of a structural validation pass.
// Checked is false when the validator's parsing support is unavailable
// and the document was accepted without inspection.
type ValidationReport struct {
	Valid    bool     `json:"valid"`
	Checked  bool     `json:"checked"`
	Errors   []string `json:"errors,omitempty"`
	Warnings []string `json:"warnings,omitempty"`
}

// SkippedValidation is the report used when structural checks cannot run.
func SkippedValidation() ValidationReport {
	return ValidationReport{Valid: true, Checked: false}
}
