// Package upload validates material submissions before any network call.
package upload

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/dustin/go-humanize"
)

// Validation errors shown directly to the user.
var (
	ErrNoFile       = errors.New("No file selected")
	ErrNoTitle      = errors.New("Please enter a title.")
	ErrNoSubject    = errors.New("Please select a subject.")
	ErrNoGrade      = errors.New("Please select a grade.")
	ErrFileType     = errors.New("File type not supported. Please upload PDF, DOCX, or TXT files.")
	ErrFileTooLarge = errors.New("File size exceeds 200MB limit.")
)

var allowedExtensions = map[string]bool{
	".pdf":  true,
	".docx": true,
	".txt":  true,
}

// Request is the upload form as filled in by the user.
type Request struct {
	FilePath  string
	Title     string
	SubjectID string
	GradeID   string
}

// Limits bound the accepted file size. Warn marks the threshold above which
// the upload still proceeds but the user is told it may take a while.
type Limits struct {
	Max  int64
	Warn int64
}

// DefaultLimits matches the server contract: hard cap at 200 MiB, warning
// above 50 MiB.
func DefaultLimits() Limits {
	return Limits{Max: 200 << 20, Warn: 50 << 20}
}

// Validate checks every precondition and returns non-blocking warnings. Any
// returned error means the submission must not reach the network.
func Validate(req Request, limits Limits) ([]string, error) {
	if strings.TrimSpace(req.FilePath) == "" {
		return nil, ErrNoFile
	}
	if strings.TrimSpace(req.Title) == "" {
		return nil, ErrNoTitle
	}
	if strings.TrimSpace(req.SubjectID) == "" {
		return nil, ErrNoSubject
	}
	if strings.TrimSpace(req.GradeID) == "" {
		return nil, ErrNoGrade
	}
	ext := strings.ToLower(filepath.Ext(req.FilePath))
	if !allowedExtensions[ext] {
		return nil, ErrFileType
	}
	info, err := os.Stat(req.FilePath)
	if err != nil {
		return nil, fmt.Errorf("stat file: %w", err)
	}
	if info.IsDir() {
		return nil, ErrNoFile
	}
	return checkSize(info.Size(), limits)
}

func checkSize(size int64, limits Limits) ([]string, error) {
	if limits.Max > 0 && size > limits.Max {
		return nil, ErrFileTooLarge
	}
	var warnings []string
	if limits.Warn > 0 && size > limits.Warn {
		warnings = append(warnings, fmt.Sprintf(
			"Large file detected (%s). Upload may take longer.", humanize.IBytes(uint64(size))))
	}
	return warnings, nil
}
