package imaging

import (
	"bytes"
	"image/png"
	"os"
	"path/filepath"
	"testing"
)

// writeTestPNG encodes a small white canvas to a temp PNG and returns
// its path.
func writeTestPNG(t *testing.T) string {
	t.Helper()
	img := whiteCanvas(20, 20)

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode png: %v", err)
	}

	path := filepath.Join(t.TempDir(), "test.png")
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		t.Fatalf("write png: %v", err)
	}
	return path
}

func TestImageCacheLoad(t *testing.T) {
	path := writeTestPNG(t)
	cache := NewImageCache()

	img, err := cache.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if img.Bounds().Dx() != 20 || img.Bounds().Dy() != 20 {
		t.Errorf("bounds: got %v, want 20x20", img.Bounds())
	}

	// Second load must hit the cache even after the file is gone.
	if err := os.Remove(path); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if _, err := cache.Load(path); err != nil {
		t.Errorf("cached Load after file removal: %v", err)
	}

	cache.Evict(path)
	if _, err := cache.Load(path); err == nil {
		t.Error("Load after Evict should re-read the missing file and fail")
	}
}

func TestImageCacheLoadErrors(t *testing.T) {
	cache := NewImageCache()

	if _, err := cache.Load(filepath.Join(t.TempDir(), "missing.png")); err == nil {
		t.Error("Load of missing file should fail")
	}

	bad := filepath.Join(t.TempDir(), "bad.png")
	if err := os.WriteFile(bad, []byte("not an image"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := cache.Load(bad); err == nil {
		t.Error("Load of non-image bytes should fail")
	}
}

func TestImageCacheClear(t *testing.T) {
	path := writeTestPNG(t)
	cache := NewImageCache()
	if _, err := cache.Load(path); err != nil {
		t.Fatalf("Load: %v", err)
	}

	cache.Clear()
	if err := os.Remove(path); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if _, err := cache.Load(path); err == nil {
		t.Error("Load after Clear should miss the cache and fail")
	}
}

func TestDecode(t *testing.T) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, whiteCanvas(8, 8)); err != nil {
		t.Fatalf("encode: %v", err)
	}

	img, err := Decode(buf.Bytes())
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if img.Bounds().Dx() != 8 {
		t.Errorf("width: got %d, want 8", img.Bounds().Dx())
	}

	if _, err := Decode([]byte("garbage")); err == nil {
		t.Error("Decode of garbage should fail")
	}
}
