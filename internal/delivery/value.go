package delivery

import (
	"net/url"
	"path/filepath"
)

// FileRef is one entry of a deliverable value's fileRefs array.
type FileRef struct {
	Filename string `json:"filename"`
	Path     string `json:"path"`
	URI      string `json:"uri"`
}

func fileURI(path string) string {
	return (&url.URL{Scheme: "file", Path: filepath.ToSlash(path)}).String()
}

func newFileRef(path string) FileRef {
	return FileRef{
		Filename: filepath.Base(path),
		Path:     path,
		URI:      fileURI(path),
	}
}

// NeedsInfoValue is the structured deliverable returned when a job is
// missing required fields: the buyer must supply them before work can
// proceed.
type NeedsInfoValue struct {
	Status       string    `json:"status"`
	JobID        int64     `json:"jobId"`
	Offering     string    `json:"offering"`
	LocalPath    string    `json:"localPath"`
	FilesWritten []string  `json:"filesWritten"`
	FileRefs     []FileRef `json:"fileRefs"`
	IntakeFile   string    `json:"intakeFile"`
	IntakePath   string    `json:"intakePath"`
	IntakeURI    string    `json:"intakeUri"`
}

// BuildNeedsInfoValue constructs the needs-info deliverable value,
// referencing the intake artifact written at intakePath.
func BuildNeedsInfoValue(jobID int64, offering, jobDir string, filesWritten []string, intakePath string) NeedsInfoValue {
	refs := make([]FileRef, 0, len(filesWritten))
	for _, f := range filesWritten {
		refs = append(refs, newFileRef(f))
	}
	return NeedsInfoValue{
		Status:       "needs_info",
		JobID:        jobID,
		Offering:     offering,
		LocalPath:    jobDir,
		FilesWritten: filesWritten,
		FileRefs:     refs,
		IntakeFile:   filepath.Base(intakePath),
		IntakePath:   intakePath,
		IntakeURI:    fileURI(intakePath),
	}
}

// WrittenValue is the structured deliverable returned when the offering
// completed its work and wrote a report artifact.
type WrittenValue struct {
	Status       string    `json:"status"`
	JobID        int64     `json:"jobId"`
	Offering     string    `json:"offering"`
	LocalPath    string    `json:"localPath"`
	FilesWritten []string  `json:"filesWritten"`
	FileRefs     []FileRef `json:"fileRefs"`
	ReportFile   string    `json:"reportFile"`
	ReportPath   string    `json:"reportPath"`
	ReportURI    string    `json:"reportUri"`
}

// BuildWrittenValue constructs the written deliverable value,
// referencing the report artifact written at reportPath.
func BuildWrittenValue(jobID int64, offering, jobDir string, filesWritten []string, reportPath string) WrittenValue {
	refs := make([]FileRef, 0, len(filesWritten))
	for _, f := range filesWritten {
		refs = append(refs, newFileRef(f))
	}
	return WrittenValue{
		Status:       "written",
		JobID:        jobID,
		Offering:     offering,
		LocalPath:    jobDir,
		FilesWritten: filesWritten,
		FileRefs:     refs,
		ReportFile:   filepath.Base(reportPath),
		ReportPath:   reportPath,
		ReportURI:    fileURI(reportPath),
	}
}
