package imaging

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"strings"
	"testing"
)

func encodePNG(t *testing.T, img image.Image) *bytes.Reader {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return bytes.NewReader(buf.Bytes())
}

func halfAndHalf() image.Image {
	img := image.NewGray(image.Rect(0, 0, 16, 16))
	for y := 0; y < 16; y++ {
		for x := 0; x < 16; x++ {
			if y < 8 {
				img.SetGray(x, y, color.Gray{Y: 255})
			}
		}
	}
	return img
}

func TestAverageHashShape(t *testing.T) {
	hash, err := AverageHash(encodePNG(t, halfAndHalf()))
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if len(hash) != HashBits {
		t.Fatalf("expected %d bits, got %d", HashBits, len(hash))
	}
	if strings.Trim(hash, "01") != "" {
		t.Fatalf("hash contains non-bit characters: %q", hash)
	}
	// Half the image is bright, so roughly half the bits are set.
	ones := strings.Count(hash, "1")
	if ones == 0 || ones == HashBits {
		t.Fatalf("expected a mixed hash, got %d ones", ones)
	}
}

func TestAverageHashStable(t *testing.T) {
	a, err := AverageHash(encodePNG(t, halfAndHalf()))
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	b, err := AverageHash(encodePNG(t, halfAndHalf()))
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if Distance(a, b) != 0 {
		t.Fatalf("identical images must hash identically: %q vs %q", a, b)
	}
}

func TestAverageHashRejectsGarbage(t *testing.T) {
	if _, err := AverageHash(bytes.NewReader([]byte("not an image"))); err == nil {
		t.Fatal("expected an error for undecodable input")
	}
}

func TestDistance(t *testing.T) {
	if d := Distance("0000", "0000"); d != 0 {
		t.Fatalf("expected 0, got %d", d)
	}
	if d := Distance("0000", "0101"); d != 2 {
		t.Fatalf("expected 2, got %d", d)
	}
	if d := Distance("00", "000000"); d != 6 {
		t.Fatalf("mismatched lengths must be maximally distant, got %d", d)
	}
}
