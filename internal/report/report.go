// Package report wraps an optimization result for export, reload and display.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/spigell/resume-optimizer/internal/optimizer"
	"github.com/spigell/resume-optimizer/internal/resume"
)

const fileTimeLayout = "20060102_150405"

// Report is the exported form of one optimization run.
type Report struct {
	ID             uuid.UUID         `json:"id"`
	CreatedAt      time.Time         `json:"created_at"`
	Model          string            `json:"model,omitempty"`
	Resume         resume.Document   `json:"resume"`
	JobDescription string            `json:"job_description,omitempty"`
	Results        optimizer.Results `json:"results"`
}

// New builds a report for results produced from resumeText and jobDescription.
func New(results optimizer.Results, model, resumeText, jobDescription string) *Report {
	return &Report{
		ID:             uuid.New(),
		CreatedAt:      time.Now().UTC().Truncate(time.Second),
		Model:          model,
		Resume:         resume.Parse(resumeText),
		JobDescription: jobDescription,
		Results:        results,
	}
}

// Marshal encodes the report as indented JSON.
func (r *Report) Marshal() ([]byte, error) {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal report: %w", err)
	}
	return data, nil
}

// FileName is the default export name, stamped with the creation time.
func (r *Report) FileName() string {
	return fmt.Sprintf("resume_optimization_%s.json", r.CreatedAt.Local().Format(fileTimeLayout))
}

// Save writes the report into dir under FileName and returns the path.
func (r *Report) Save(dir string) (string, error) {
	data, err := r.Marshal()
	if err != nil {
		return "", err
	}

	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create output dir: %w", err)
	}

	path := filepath.Join(dir, r.FileName())
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write report: %w", err)
	}

	return path, nil
}

// Load decodes a report previously written by Marshal.
func Load(r io.Reader) (*Report, error) {
	var report Report
	if err := json.NewDecoder(r).Decode(&report); err != nil {
		return nil, fmt.Errorf("decode report: %w", err)
	}
	return &report, nil
}

// LoadFile reads a report from path.
func LoadFile(path string) (*Report, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open report: %w", err)
	}
	defer f.Close()

	return Load(f)
}
