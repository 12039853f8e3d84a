package filemgr

import (
	"os"
	"path/filepath"
	"testing"
)

func TestRemoveImageDeletesFileAndThumb(t *testing.T) {
	dir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(dir, "thumbs"), 0o755); err != nil {
		t.Fatal(err)
	}
	for _, p := range []string{filepath.Join(dir, "a.jpg"), filepath.Join(dir, "thumbs", "a.jpg")} {
		if err := os.WriteFile(p, []byte("x"), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	RemoveImage(dir, "a.jpg")

	for _, p := range []string{filepath.Join(dir, "a.jpg"), filepath.Join(dir, "thumbs", "a.jpg")} {
		if _, err := os.Stat(p); !os.IsNotExist(err) {
			t.Errorf("%s should be gone", p)
		}
	}
}

func TestRemoveImageRefusesDegenerateNames(t *testing.T) {
	dir := t.TempDir()

	// filepath.Base of an empty stored URL is "." — the upload directory
	// itself must survive that.
	for _, name := range []string{"", filepath.Base(""), "..", "/", "sub/file.jpg"} {
		RemoveImage(dir, name)
		if _, err := os.Stat(dir); err != nil {
			t.Fatalf("directory removed for name %q: %v", name, err)
		}
	}
}
