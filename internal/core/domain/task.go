package domain

// ConversionTask describes one requested conversion. SourceFormat is an
// optional hint; when empty the engine infers it from the source path.
// OutputPath is optional for batch tasks, where it is derived from the
// source stem and the target format's extension.
type ConversionTask struct {
	SourcePath   string   `json:"source_path"`
	SourceFormat Format   `json:"source_format,omitempty"`
	TargetFormat Format   `json:"target_format"`
	OutputPath   string   `json:"output_path,omitempty"`
	ExtraArgs    []string `json:"extra_args,omitempty"`
}

// ConvertRequest is a single backend invocation prepared by the engine.
// OutputPath is set for targets the backend writes directly (docx);
// text targets come back inline in ConvertResult.Content.
type ConvertRequest struct {
	SourcePath   string
	SourceFormat Format
	TargetFormat Format
	OutputPath   string
	Args         []string
}

// ConvertResult is what a backend produced for one invocation.
type ConvertResult struct {
	Content   string
	WroteFile bool
}
