package organizer_test

import (
	"os"
	"path/filepath"
	"testing"

	"sleeve/internal/logging"
	"sleeve/internal/organizer"
	"sleeve/internal/queue"
	"sleeve/internal/testsupport"
)

func TestExtensionFromURL(t *testing.T) {
	cases := []struct {
		url  string
		want string
	}{
		{"https://img.example.net/cover.jpg", ".jpg"},
		{"https://img.example.net/cover.PNG", ".png"},
		{"https://img.example.net/cover.jpeg?size=1000", ".jpeg"},
		{"https://img.example.net/cover.webp?x=1", ".webp"},
		{"https://img.example.net/cover.tiff", ".tiff"},
		{"https://coverartarchive.org/release/abc/front-500", ".jpg"},
		{"", ".jpg"},
	}
	for _, tc := range cases {
		if got := organizer.ExtensionFromURL(tc.url); got != tc.want {
			t.Errorf("ExtensionFromURL(%q) = %q, want %q", tc.url, got, tc.want)
		}
	}
}

func TestCoverPath(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	org := organizer.New(cfg, logging.NewNop())

	item := &queue.Item{Genre: "Art Rock", Artist: "Sigur Rós", Album: "Ágætis byrjun", Year: 1999}
	got := org.CoverPath(item, "https://img.example.net/cover.png")
	want := filepath.Join(cfg.Paths.OutputDir, "Art_Rock", "Sigur_Ros__Agtis_byrjun__1999.png")
	if got != want {
		t.Errorf("CoverPath = %q, want %q", got, want)
	}
}

func TestCoverPathDefaults(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	org := organizer.New(cfg, logging.NewNop())

	item := &queue.Item{Artist: "Burial", Album: "Untrue"}
	got := org.CoverPath(item, "https://coverartarchive.org/release/x/front-500")
	want := filepath.Join(cfg.Paths.OutputDir, "Unsorted", "Burial__Untrue__NA.jpg")
	if got != want {
		t.Errorf("CoverPath = %q, want %q", got, want)
	}
}

func TestExists(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	org := organizer.New(cfg, logging.NewNop())

	path := filepath.Join(cfg.Paths.OutputDir, "Rock", "a__b__NA.jpg")
	keep, err := org.Exists(path)
	if err != nil {
		t.Fatalf("Exists: %v", err)
	}
	if keep {
		t.Error("missing file should not be kept")
	}

	testsupport.WriteFile(t, path, 10)
	keep, err = org.Exists(path)
	if err != nil {
		t.Fatalf("Exists: %v", err)
	}
	if !keep {
		t.Error("existing file should be kept by default")
	}

	overwriting := organizer.New(testsupport.NewConfig(t, testsupport.WithOverwrite()), logging.NewNop())
	keep, err = overwriting.Exists(path)
	if err != nil {
		t.Fatalf("Exists: %v", err)
	}
	if keep {
		t.Error("overwrite mode should not keep existing files")
	}
}

func TestSave(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	org := organizer.New(cfg, logging.NewNop())

	path := filepath.Join(cfg.Paths.OutputDir, "Rock", "a__b__1997.jpg")
	data := []byte("image-bytes")
	if err := org.Save(path, data); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if string(got) != string(data) {
		t.Errorf("saved %q", got)
	}

	entries, err := os.ReadDir(filepath.Dir(path))
	if err != nil {
		t.Fatalf("ReadDir: %v", err)
	}
	if len(entries) != 1 {
		t.Errorf("temp files left behind: %v", entries)
	}
}

func TestSaveRejectsEmpty(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	org := organizer.New(cfg, logging.NewNop())
	if err := org.Save(filepath.Join(cfg.Paths.OutputDir, "x.jpg"), nil); err == nil {
		t.Fatal("expected error for empty image")
	}
}
