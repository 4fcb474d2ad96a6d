package main

import (
	"bytes"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"testing"
)

func TestMimeType(t *testing.T) {
	testdata := []struct {
		filename string
		want     string
	}{
		{"photo.jpg", "image/jpeg"},
		{"photo.JPEG", "image/jpeg"},
		{"scan.png", "image/png"},
		{"anim.gif", "image/gif"},
		{"old.bmp", "image/bmp"},
		{"new.webp", "image/webp"},
		{"noextension", ""},
	}
	for _, tc := range testdata {
		if got := mimeType(tc.filename); got != tc.want {
			t.Errorf("mimeType(%q) = %q, want %q", tc.filename, got, tc.want)
		}
	}
}

func TestReadImages(t *testing.T) {
	dir := t.TempDir()
	var buf bytes.Buffer
	if err := png.Encode(&buf, image.NewGray(image.Rect(0, 0, 2, 2))); err != nil {
		t.Fatal(err)
	}
	pngFile := filepath.Join(dir, "a.png")
	if err := os.WriteFile(pngFile, buf.Bytes(), 0o644); err != nil {
		t.Fatal(err)
	}
	images, err := readImages([]string{pngFile})
	if err != nil {
		t.Fatal(err)
	}
	if len(images) != 1 || images[0].Name != "a.png" || images[0].MIME != "image/png" {
		t.Errorf("readImages() = %+v", images)
	}

	pdfFile := filepath.Join(dir, "b.pdf")
	if err = os.WriteFile(pdfFile, []byte("%PDF-1.7"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err = readImages([]string{pdfFile}); err == nil {
		t.Error("readImages should reject a PDF")
	}
	if _, err = readImages([]string{filepath.Join(dir, "missing.png")}); err == nil {
		t.Error("readImages should fail for a missing file")
	}
}
