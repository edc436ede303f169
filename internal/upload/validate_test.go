package upload

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeTemp(t *testing.T, name string, size int) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, make([]byte, size), 0o644); err != nil {
		t.Fatalf("write temp file: %v", err)
	}
	return path
}

func TestValidateRequiredFields(t *testing.T) {
	path := writeTemp(t, "algebra.pdf", 10)
	cases := []struct {
		name string
		req  Request
		want error
	}{
		{"missing file", Request{Title: "t", SubjectID: "s", GradeID: "g"}, ErrNoFile},
		{"missing title", Request{FilePath: path, SubjectID: "s", GradeID: "g"}, ErrNoTitle},
		{"missing subject", Request{FilePath: path, Title: "t", GradeID: "g"}, ErrNoSubject},
		{"missing grade", Request{FilePath: path, Title: "t", SubjectID: "s"}, ErrNoGrade},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := Validate(tc.req, DefaultLimits()); !errors.Is(err, tc.want) {
				t.Fatalf("got %v, want %v", err, tc.want)
			}
		})
	}
}

func TestValidateExtensions(t *testing.T) {
	cases := []struct {
		name string
		ok   bool
	}{
		{"notes.pdf", true},
		{"notes.PDF", true},
		{"notes.docx", true},
		{"notes.DoCx", true},
		{"notes.txt", true},
		{"notes.TXT", true},
		{"notes.exe", false},
		{"notes.md", false},
		{"notes", false},
		{"archive.tar.gz", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			path := writeTemp(t, tc.name, 10)
			req := Request{FilePath: path, Title: "t", SubjectID: "s", GradeID: "g"}
			_, err := Validate(req, DefaultLimits())
			if tc.ok && err != nil {
				t.Fatalf("expected valid, got %v", err)
			}
			if !tc.ok && !errors.Is(err, ErrFileType) {
				t.Fatalf("expected ErrFileType, got %v", err)
			}
		})
	}
}

func TestValidateSizeLimits(t *testing.T) {
	limits := Limits{Max: 200, Warn: 50}

	path := writeTemp(t, "big.pdf", 201)
	req := Request{FilePath: path, Title: "t", SubjectID: "s", GradeID: "g"}
	if _, err := Validate(req, limits); !errors.Is(err, ErrFileTooLarge) {
		t.Fatalf("expected ErrFileTooLarge, got %v", err)
	}

	// Between warn and max: valid with a warning, submission not blocked.
	path = writeTemp(t, "large.pdf", 51)
	req.FilePath = path
	warnings, err := Validate(req, limits)
	if err != nil {
		t.Fatalf("expected valid, got %v", err)
	}
	if len(warnings) != 1 || !strings.Contains(warnings[0], "Large file") {
		t.Fatalf("expected large-file warning, got %v", warnings)
	}

	path = writeTemp(t, "small.pdf", 50)
	req.FilePath = path
	warnings, err = Validate(req, limits)
	if err != nil {
		t.Fatalf("expected valid, got %v", err)
	}
	if len(warnings) != 0 {
		t.Fatalf("expected no warnings, got %v", warnings)
	}
}
