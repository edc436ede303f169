package main

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// failingServer fails the test if the client makes any request at all.
func failingServer(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func runCommand(t *testing.T, args ...string) error {
	t.Helper()
	root := newRootCommand()
	root.SetOut(&bytes.Buffer{})
	root.SetErr(&bytes.Buffer{})
	root.SetArgs(args)
	return root.Execute()
}

func TestFeedbackWithoutRatingIsBlockedClientSide(t *testing.T) {
	srv := failingServer(t)
	t.Setenv("EDURAG_BASE_URL", srv.URL)

	err := runCommand(t, "feedback", "ql-1")
	if err == nil || !strings.Contains(err.Error(), "Please select a rating.") {
		t.Fatalf("expected rating validation error, got %v", err)
	}
}

func TestGradesAddValidatesLevelClientSide(t *testing.T) {
	srv := failingServer(t)
	t.Setenv("EDURAG_BASE_URL", srv.URL)

	for _, level := range []string{"0", "13", "abc"} {
		err := runCommand(t, "grades", "add", level)
		if err == nil || !strings.Contains(err.Error(), "valid grade level") {
			t.Fatalf("level %s: expected validation error, got %v", level, err)
		}
	}
}

func TestUploadRejectsBadExtensionBeforeNetwork(t *testing.T) {
	srv := failingServer(t)
	t.Setenv("EDURAG_BASE_URL", srv.URL)
	t.Setenv("EDURAG_HISTORY_PATH", filepath.Join(t.TempDir(), "history.db"))

	path := filepath.Join(t.TempDir(), "notes.exe")
	if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}
	err := runCommand(t, "upload", path, "--title", "Notes", "--subject", "s1", "--grade", "g1")
	if err == nil || !strings.Contains(err.Error(), "File type not supported") {
		t.Fatalf("expected file type error, got %v", err)
	}
}

func TestAskBlocksEmptyQuestion(t *testing.T) {
	srv := failingServer(t)
	t.Setenv("EDURAG_BASE_URL", srv.URL)
	t.Setenv("EDURAG_HISTORY_PATH", filepath.Join(t.TempDir(), "history.db"))

	err := runCommand(t, "ask")
	if err == nil || !strings.Contains(err.Error(), "Please enter a question.") {
		t.Fatalf("expected empty-question error, got %v", err)
	}
}
