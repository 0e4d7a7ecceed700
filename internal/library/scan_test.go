package library

import (
	"os"
	"path/filepath"
	"testing"
)

func TestScanFolder(t *testing.T) {
	root := t.TempDir()
	sub := filepath.Join(root, "album")
	if err := os.Mkdir(sub, 0o755); err != nil {
		t.Fatal(err)
	}
	// Not valid audio, but the scanner keys off the extension and falls
	// back to the filename when tags are unreadable.
	files := map[string]string{
		filepath.Join(root, "one.mp3"):   "not really audio",
		filepath.Join(sub, "two.flac"):   "also not audio",
		filepath.Join(root, "notes.txt"): "skip me",
	}
	for path, content := range files {
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	tracks, err := ScanFolder(root, nil)
	if err != nil {
		t.Fatalf("ScanFolder: %v", err)
	}
	if len(tracks) != 2 {
		t.Fatalf("len = %d, want 2 (txt skipped)", len(tracks))
	}

	byTitle := map[string]int{}
	for i, tr := range tracks {
		byTitle[tr.Title] = i
	}
	i, ok := byTitle["one"]
	if !ok {
		t.Fatalf("missing track 'one' in %v", byTitle)
	}
	tr := tracks[i]
	if tr.ContentType != "audio/mpeg" {
		t.Errorf("ContentType = %q, want audio/mpeg", tr.ContentType)
	}
	if tr.MediaURL != tr.ID {
		t.Errorf("MediaURL = %q, ID = %q, want path for both", tr.MediaURL, tr.ID)
	}
	if tr.Size == 0 || tr.CreatedAt.IsZero() {
		t.Errorf("missing file metadata: %+v", tr)
	}

	if j, ok := byTitle["two"]; !ok {
		t.Error("missing track from subdirectory")
	} else if tracks[j].ContentType != "audio/flac" {
		t.Errorf("ContentType = %q, want audio/flac", tracks[j].ContentType)
	}
}

func TestScanFolderMissingRoot(t *testing.T) {
	if _, err := ScanFolder(filepath.Join(t.TempDir(), "missing"), nil); err == nil {
		t.Fatal("expected error for a missing folder")
	}
}

func TestScanFolderEmpty(t *testing.T) {
	tracks, err := ScanFolder(t.TempDir(), nil)
	if err != nil {
		t.Fatalf("ScanFolder: %v", err)
	}
	if len(tracks) != 0 {
		t.Errorf("len = %d, want 0", len(tracks))
	}
}
