package archive

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/klauspost/compress/zip"

	"github.com/gogpu/spritekit"
)

type entry struct {
	name string
	body string
}

func buildZip(t *testing.T, entries ...entry) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, e := range entries {
		w, err := zw.Create(e.name)
		if err != nil {
			t.Fatalf("Create(%q) error = %v", e.name, err)
		}
		if _, err := w.Write([]byte(e.body)); err != nil {
			t.Fatal(err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func extractBytes(data []byte, dest string, limits Limits) error {
	return Extract(bytes.NewReader(data), int64(len(data)), dest, limits)
}

func TestExtract(t *testing.T) {
	data := buildZip(t,
		entry{"knight/", ""},
		entry{"knight/IDLE/1.png", "idle"},
		entry{"knight/walk/2.png", "walk"},
		entry{"__MACOSX/knight/._1.png", "junk"},
	)
	dest := t.TempDir()
	if err := extractBytes(data, dest, DefaultLimits); err != nil {
		t.Fatalf("Extract() error = %v", err)
	}

	got, err := os.ReadFile(filepath.Join(dest, "knight", "walk", "2.png"))
	if err != nil || string(got) != "walk" {
		t.Errorf("walk/2.png = %q, %v", got, err)
	}
}

func TestExtract_UnsafeEntries(t *testing.T) {
	tests := []struct {
		name  string
		entry string
	}{
		{"parent traversal", "../../etc/passwd"},
		{"nested traversal", "sprite/../../evil.png"},
		{"absolute", "/etc/passwd"},
		{"backslash traversal", `..\evil.png`},
		{"bare parent", ".."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			parent := t.TempDir()
			dest := filepath.Join(parent, "dest")
			if err := os.Mkdir(dest, 0o755); err != nil {
				t.Fatal(err)
			}
			data := buildZip(t, entry{"sprite/IDLE/1.png", "ok"}, entry{tt.entry, "pwned"})

			err := extractBytes(data, dest, DefaultLimits)
			if !errors.Is(err, spritekit.ErrUnsafeArchiveEntry) {
				t.Fatalf("Extract() error = %v, want ErrUnsafeArchiveEntry", err)
			}

			// Nothing is written, not even the safe entry.
			if entries, _ := os.ReadDir(dest); len(entries) != 0 {
				t.Errorf("dest has %d entries after rejected archive", len(entries))
			}
			if entries, _ := os.ReadDir(parent); len(entries) != 1 {
				t.Errorf("parent has %d entries, want only dest", len(entries))
			}
		})
	}
}

func TestExtract_Limits(t *testing.T) {
	big := string(bytes.Repeat([]byte("a"), 1024))

	tests := []struct {
		name   string
		limits Limits
	}{
		{"entry too large", Limits{MaxEntryBytes: 512}},
		{"total too large", Limits{MaxTotalBytes: 1500}},
		{"too many entries", Limits{MaxEntries: 1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := buildZip(t, entry{"s/a.png", big}, entry{"s/b.png", big})
			err := extractBytes(data, t.TempDir(), tt.limits)
			if !errors.Is(err, spritekit.ErrInvalidInput) || !errors.Is(err, errLimit) {
				t.Errorf("Extract() error = %v, want size limit", err)
			}
		})
	}
}

func TestExtract_NotAZip(t *testing.T) {
	err := extractBytes([]byte("plain text"), t.TempDir(), DefaultLimits)
	if !errors.Is(err, spritekit.ErrInvalidInput) {
		t.Errorf("Extract() error = %v, want ErrInvalidInput", err)
	}
}

func TestExtractToTemp(t *testing.T) {
	dir, cleanup, err := ExtractToTemp(buildZip(t, entry{"hero/IDLE/1.png", "x"}), "spritekit-test-")
	if err != nil {
		t.Fatalf("ExtractToTemp() error = %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "hero", "IDLE", "1.png")); err != nil {
		t.Errorf("extracted file missing: %v", err)
	}
	cleanup()
	cleanup()
	if _, err := os.Stat(dir); !os.IsNotExist(err) {
		t.Errorf("temp dir still present after cleanup: %v", err)
	}

	if _, _, err := ExtractToTemp(buildZip(t, entry{"../x", "x"}), "spritekit-test-"); !errors.Is(err, spritekit.ErrUnsafeArchiveEntry) {
		t.Errorf("ExtractToTemp() error = %v, want ErrUnsafeArchiveEntry", err)
	}
}

func TestFindRoot(t *testing.T) {
	tests := []struct {
		name    string
		dirs    []string
		files   []string
		want    string
		wantErr error
	}{
		{"single folder", []string{"knight"}, nil, "knight", nil},
		{"mac metadata ignored", []string{"knight", "__MACOSX"}, nil, "knight", nil},
		{"loose files ignored", []string{"knight"}, []string{"readme.txt"}, "knight", nil},
		{"no folder", nil, []string{"1.png"}, "", spritekit.ErrInvalidInput},
		{"two folders", []string{"a", "b"}, nil, "", spritekit.ErrInvalidInput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			for _, d := range tt.dirs {
				if err := os.Mkdir(filepath.Join(dir, d), 0o755); err != nil {
					t.Fatal(err)
				}
			}
			for _, f := range tt.files {
				if err := os.WriteFile(filepath.Join(dir, f), nil, 0o644); err != nil {
					t.Fatal(err)
				}
			}

			got, err := FindRoot(dir)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("FindRoot() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err == nil && got != filepath.Join(dir, tt.want) {
				t.Errorf("FindRoot() = %q, want %q", got, filepath.Join(dir, tt.want))
			}
		})
	}
}

func TestFindSubdirAndListPNG(t *testing.T) {
	dir := t.TempDir()
	walk := filepath.Join(dir, "Walk")
	if err := os.Mkdir(walk, 0o755); err != nil {
		t.Fatal(err)
	}
	for _, name := range []string{"b.png", "a.PNG", "c.gif", "notes.txt"} {
		if err := os.WriteFile(filepath.Join(walk, name), nil, 0o644); err != nil {
			t.Fatal(err)
		}
	}

	got, ok := FindSubdir(dir, "WALK")
	if !ok || got != walk {
		t.Fatalf("FindSubdir() = %q, %v, want %q", got, ok, walk)
	}
	if _, ok := FindSubdir(dir, "ATTACK"); ok {
		t.Error("FindSubdir() found a missing folder")
	}

	files, err := ListPNG(walk)
	if err != nil {
		t.Fatal(err)
	}
	want := []string{filepath.Join(walk, "a.PNG"), filepath.Join(walk, "b.png")}
	if len(files) != 2 || files[0] != want[0] || files[1] != want[1] {
		t.Errorf("ListPNG() = %v, want %v", files, want)
	}

	files, err = ListPNG(filepath.Join(dir, "missing"))
	if err != nil || files != nil {
		t.Errorf("ListPNG(missing) = %v, %v, want nil, nil", files, err)
	}
}
