package ingest_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/petasbytes/go-assistants/internal/apperr"
	"github.com/petasbytes/go-assistants/internal/ingest"
	"github.com/petasbytes/go-assistants/internal/safety"
)

func newIngestor(t *testing.T) (*ingest.Ingestor, string) {
	t.Helper()
	root := filepath.Join(t.TempDir(), "thread_files")
	in, err := ingest.New(root, nil, nil)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	return in, root
}

func writeFiles(t *testing.T, dir string, files map[string]string) {
	t.Helper()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("prepare: %v", err)
	}
	for name, body := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644); err != nil {
			t.Fatalf("prepare: %v", err)
		}
	}
}

func TestReadFile_Degraded(t *testing.T) {
	in, _ := newIngestor(t)
	text, err := in.ReadFile(filepath.Join(t.TempDir(), "missing.txt"))
	if text != "" {
		t.Fatalf("expected no content, got %q", text)
	}
	if !errors.Is(err, apperr.ErrDegradedRead) {
		t.Fatalf("expected ErrDegradedRead, got %v", err)
	}
}

func TestReadFolder_JoinsInListingOrder_Idempotent(t *testing.T) {
	in, _ := newIngestor(t)
	src := filepath.Join(t.TempDir(), "docs")
	writeFiles(t, src, map[string]string{
		"b.txt":     "second",
		"a.md":      "first",
		"image.png": "binary",
	})

	text, report, err := in.ReadFolder(src)
	if err != nil {
		t.Fatalf("ReadFolder: %v", err)
	}
	if text != "first\nsecond" {
		t.Fatalf("got %q", text)
	}
	if len(report.Units) != 2 || len(report.Skipped) != 1 {
		t.Fatalf("unexpected report: %+v", report)
	}
	if !errors.Is(report.Skipped[0].Reason, ingest.ErrUnsupported) {
		t.Fatalf("skip reason: %v", report.Skipped[0].Reason)
	}

	again, _, err := in.ReadFolder(src)
	if err != nil {
		t.Fatalf("ReadFolder again: %v", err)
	}
	if again != text {
		t.Fatalf("not idempotent: %q vs %q", again, text)
	}
}

func TestReadFolder_NotADirectory(t *testing.T) {
	in, _ := newIngestor(t)
	f := filepath.Join(t.TempDir(), "file.txt")
	writeFiles(t, filepath.Dir(f), map[string]string{"file.txt": "x"})
	if _, _, err := in.ReadFolder(f); !errors.Is(err, apperr.ErrNotADirectory) {
		t.Fatalf("expected ErrNotADirectory, got %v", err)
	}
}

func TestFile_StagesCopyBeforeExtraction(t *testing.T) {
	in, root := newIngestor(t)
	srcDir := t.TempDir()
	writeFiles(t, srcDir, map[string]string{"notes.txt": "context body"})
	src := filepath.Join(srcDir, "notes.txt")

	unit, err := in.File(src, "helper", "thread_1")
	if err != nil {
		t.Fatalf("File: %v", err)
	}
	if unit.Text != "context body" || unit.SourcePath != src {
		t.Fatalf("unexpected unit: %+v", unit)
	}

	want := filepath.Join(root, "helper", "thread_1", "notes.txt")
	if r, err := filepath.EvalSymlinks(filepath.Dir(want)); err == nil {
		want = filepath.Join(r, "notes.txt")
	}
	if unit.StoredPath != want {
		t.Fatalf("stored at %q, want %q", unit.StoredPath, want)
	}

	// The copy survives the original going away.
	if err := os.Remove(src); err != nil {
		t.Fatalf("remove: %v", err)
	}
	b, err := os.ReadFile(unit.StoredPath)
	if err != nil || string(b) != "context body" {
		t.Fatalf("staged copy: %q, %v", b, err)
	}
}

func TestFile_MissingSource_Degraded(t *testing.T) {
	in, _ := newIngestor(t)
	_, err := in.File(filepath.Join(t.TempDir(), "gone.txt"), "helper", "thread_1")
	if !errors.Is(err, apperr.ErrDegradedRead) {
		t.Fatalf("expected ErrDegradedRead, got %v", err)
	}
}

func TestFile_InvalidThreadID_Violation(t *testing.T) {
	in, _ := newIngestor(t)
	srcDir := t.TempDir()
	writeFiles(t, srcDir, map[string]string{"a.txt": "x"})

	_, err := in.File(filepath.Join(srcDir, "a.txt"), "helper", "../escape")
	var v safety.Violation
	if !errors.As(err, &v) {
		t.Fatalf("expected safety.Violation, got %T: %v", err, err)
	}
}

func TestFile_InvalidAssistantName_Violation(t *testing.T) {
	in, _ := newIngestor(t)
	srcDir := t.TempDir()
	writeFiles(t, srcDir, map[string]string{"a.txt": "x"})

	_, err := in.File(filepath.Join(srcDir, "a.txt"), "..", "thread_1")
	var v safety.Violation
	if !errors.As(err, &v) || v.Code != "ERR_INVALID_NAME" {
		t.Fatalf("expected ERR_INVALID_NAME, got %T: %v", err, err)
	}
}

func TestFile_AnyExtensionReadAsText(t *testing.T) {
	in, _ := newIngestor(t)
	srcDir := t.TempDir()
	writeFiles(t, srcDir, map[string]string{
		"data.csv": "id,name\n1,ada\n",
		"Makefile": "all:\n\tgo build\n",
	})

	for name, want := range map[string]string{
		"data.csv": "id,name\n1,ada\n",
		"Makefile": "all:\n\tgo build\n",
	} {
		unit, err := in.File(filepath.Join(srcDir, name), "helper", "thread_1")
		if err != nil {
			t.Fatalf("%s: %v", name, err)
		}
		if unit.Text != want {
			t.Fatalf("%s: got %q want %q", name, unit.Text, want)
		}
	}
}

func TestFile_SameThreadIDAcrossAssistantsKeptApart(t *testing.T) {
	in, root := newIngestor(t)
	dirA, dirB := t.TempDir(), t.TempDir()
	writeFiles(t, dirA, map[string]string{"notes.txt": "from A"})
	writeFiles(t, dirB, map[string]string{"notes.txt": "from B"})

	a, err := in.File(filepath.Join(dirA, "notes.txt"), "A", "thread_1")
	if err != nil {
		t.Fatalf("A: %v", err)
	}
	b, err := in.File(filepath.Join(dirB, "notes.txt"), "B", "thread_1")
	if err != nil {
		t.Fatalf("B: %v", err)
	}
	if a.StoredPath == b.StoredPath {
		t.Fatalf("both assistants staged to %q", a.StoredPath)
	}
	for path, want := range map[string]string{a.StoredPath: "from A", b.StoredPath: "from B"} {
		got, err := os.ReadFile(path)
		if err != nil || string(got) != want {
			t.Fatalf("%s: %q, %v", path, got, err)
		}
	}
	if _, err := os.Stat(filepath.Join(root, "thread_1")); !os.IsNotExist(err) {
		t.Fatalf("unexpected un-namespaced thread dir: %v", err)
	}
}

func TestFolder_OneMatchingOneNot(t *testing.T) {
	in, _ := newIngestor(t)
	src := t.TempDir()
	writeFiles(t, src, map[string]string{
		"paper.txt":  "paper text",
		"sheet.xlsx": "ignored",
	})

	report, err := in.Folder(src, "helper", "t1")
	if err != nil {
		t.Fatalf("Folder: %v", err)
	}
	if len(report.Units) != 1 || report.Units[0].Text != "paper text" {
		t.Fatalf("units: %+v", report.Units)
	}
	if len(report.Skipped) != 1 || filepath.Base(report.Skipped[0].Path) != "sheet.xlsx" {
		t.Fatalf("skipped: %+v", report.Skipped)
	}
}

func TestFolder_DegradedFileDoesNotAbortBatch(t *testing.T) {
	in, _ := newIngestor(t)
	src := t.TempDir()
	writeFiles(t, src, map[string]string{
		"a.pdf": "this is not really a pdf",
		"b.txt": "still ingested",
	})

	report, err := in.Folder(src, "helper", "t1")
	if err != nil {
		t.Fatalf("Folder: %v", err)
	}
	if len(report.Units) != 1 || report.Units[0].Text != "still ingested" {
		t.Fatalf("units: %+v", report.Units)
	}
	if len(report.Skipped) != 1 || !errors.Is(report.Skipped[0].Reason, apperr.ErrDegradedRead) {
		t.Fatalf("skipped: %+v", report.Skipped)
	}
}

func TestFolder_SubdirectoriesSkipped(t *testing.T) {
	in, _ := newIngestor(t)
	src := t.TempDir()
	if err := os.Mkdir(filepath.Join(src, "nested.md"), 0o755); err != nil {
		t.Fatalf("prepare: %v", err)
	}
	report, err := in.Folder(src, "helper", "t1")
	if err != nil {
		t.Fatalf("Folder: %v", err)
	}
	if len(report.Units) != 0 || len(report.Skipped) != 1 {
		t.Fatalf("unexpected report: %+v", report)
	}
}

func TestFolder_NotADirectory(t *testing.T) {
	in, _ := newIngestor(t)
	if _, err := in.Folder(filepath.Join(t.TempDir(), "missing"), "helper", "t1"); !errors.Is(err, apperr.ErrNotADirectory) {
		t.Fatalf("expected ErrNotADirectory, got %v", err)
	}
}
