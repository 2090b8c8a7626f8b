package objectstore

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func TestDiskPut(t *testing.T) {
	root := t.TempDir()
	d := NewDisk(root, "/photos/")

	url, err := d.Put(context.Background(), "cafe-de-pijp/1-ab.jpg", "image/jpeg", []byte("data"))
	if err != nil {
		t.Fatalf("put: %v", err)
	}
	if url != "/photos/cafe-de-pijp/1-ab.jpg" {
		t.Fatalf("url = %q", url)
	}

	b, err := os.ReadFile(filepath.Join(root, "cafe-de-pijp", "1-ab.jpg"))
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	if string(b) != "data" {
		t.Fatalf("content = %q", b)
	}
}

func TestDiskPut_RejectsTraversal(t *testing.T) {
	d := NewDisk(t.TempDir(), "/photos")

	for _, p := range []string{"../escape.jpg", "/abs.jpg", "a/../../b.jpg", "."} {
		if _, err := d.Put(context.Background(), p, "image/jpeg", []byte("x")); err == nil {
			t.Errorf("path %q must be rejected", p)
		}
	}
}
