package image

import (
	"bytes"
	"encoding/base64"
	"errors"
	"image"
	"image/color"
	"image/jpeg"
	"strings"
	"testing"
)

// createTestImage creates a test JPEG image with specified dimensions
func createTestImage(t *testing.T, width, height int) []byte {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, color.RGBA{
				R: uint8((x + y) % 256),
				G: uint8((x * 2) % 256),
				B: uint8((y * 2) % 256),
				A: 255,
			})
		}
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: 95}); err != nil {
		t.Fatalf("Failed to create test image: %v", err)
	}
	return buf.Bytes()
}

// decodeDataURI decodes the JPEG payload of a data URI back into an image
func decodeDataURI(t *testing.T, uri string) image.Image {
	t.Helper()

	const prefix = "data:image/jpeg;base64,"
	if !strings.HasPrefix(uri, prefix) {
		t.Fatalf("output is not a JPEG data URI: %.40s", uri)
	}

	data, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(uri, prefix))
	if err != nil {
		t.Fatalf("Failed to decode base64 payload: %v", err)
	}

	img, err := jpeg.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("Failed to decode compressed JPEG: %v", err)
	}
	return img
}

func TestCompressToDataURIScalesDown(t *testing.T) {
	original := createTestImage(t, 3000, 2000)

	uri, err := CompressToDataURI(original)
	if err != nil {
		t.Fatalf("Failed to compress image: %v", err)
	}

	img := decodeDataURI(t, uri)
	bounds := img.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()

	if width != 1500 {
		t.Errorf("Expected longest dimension 1500, got width %d", width)
	}
	if height > 1500 {
		t.Errorf("Height %d exceeds max dimension", height)
	}

	// Aspect ratio preserved within integer rounding
	scaled := float64(2000) * 1500.0 / 3000.0
	expectedHeight := int(scaled + 0.5)
	if height < expectedHeight-1 || height > expectedHeight+1 {
		t.Errorf("Expected height ~%d, got %d", expectedHeight, height)
	}
}

func TestCompressToDataURIPortrait(t *testing.T) {
	original := createTestImage(t, 1000, 4000)

	uri, err := CompressToDataURI(original)
	if err != nil {
		t.Fatalf("Failed to compress image: %v", err)
	}

	bounds := decodeDataURI(t, uri).Bounds()
	if bounds.Dy() != 1500 {
		t.Errorf("Expected height 1500, got %d", bounds.Dy())
	}
	if bounds.Dx() > 1500 {
		t.Errorf("Width %d exceeds max dimension", bounds.Dx())
	}
}

func TestCompressToDataURIKeepsSmallImages(t *testing.T) {
	original := createTestImage(t, 800, 600)

	uri, err := CompressToDataURI(original)
	if err != nil {
		t.Fatalf("Failed to compress image: %v", err)
	}

	bounds := decodeDataURI(t, uri).Bounds()
	if bounds.Dx() != 800 || bounds.Dy() != 600 {
		t.Errorf("Expected unchanged 800x600, got %dx%d", bounds.Dx(), bounds.Dy())
	}
}

func TestCompressToDataURICorruptInput(t *testing.T) {
	_, err := CompressToDataURI([]byte("not an image at all"))
	if err == nil {
		t.Fatal("Expected error for corrupt input")
	}
	if !errors.Is(err, ErrImageLoad) {
		t.Errorf("Expected ErrImageLoad, got %v", err)
	}
}

func TestEncodeWithBudgetFallsBack(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 400, 300))
	for y := 0; y < 300; y++ {
		for x := 0; x < 400; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x * y % 256), G: uint8(x % 256), B: uint8(y % 256), A: 255})
		}
	}

	// Budget between the quality-80 and quality-60 sizes forces the fallback pass
	var q80, q60 bytes.Buffer
	if err := jpeg.Encode(&q80, img, &jpeg.Options{Quality: qualityPrimary}); err != nil {
		t.Fatalf("encode failed: %v", err)
	}
	if err := jpeg.Encode(&q60, img, &jpeg.Options{Quality: qualityFallback}); err != nil {
		t.Fatalf("encode failed: %v", err)
	}
	if q60.Len() >= q80.Len() {
		t.Skipf("fallback quality not smaller for this image: %d >= %d", q60.Len(), q80.Len())
	}

	budget := (q80.Len() + q60.Len()) / 2
	uri, err := encodeWithBudget(img, budget)
	if err != nil {
		t.Fatalf("Expected fallback encoding to fit, got error: %v", err)
	}
	if size := estimatedDecodedSize(uri); size > budget {
		t.Errorf("Fallback output %d bytes exceeds budget %d", size, budget)
	}
}

func TestEncodeWithBudgetTooLarge(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 200, 200))

	_, err := encodeWithBudget(img, 64)
	if err != ErrImageTooLarge {
		t.Errorf("Expected ErrImageTooLarge, got %v", err)
	}
}

func TestEstimatedDecodedSize(t *testing.T) {
	payload := base64.StdEncoding.EncodeToString(make([]byte, 3000))
	uri := "data:image/jpeg;base64," + payload

	size := estimatedDecodedSize(uri)
	if size != 3000 {
		t.Errorf("Expected estimate 3000, got %d", size)
	}
}

func TestOrientationDefaultsToUpright(t *testing.T) {
	if o := Orientation(createTestImage(t, 10, 10)); o != 1 {
		t.Errorf("Expected orientation 1 for image without EXIF, got %d", o)
	}
	if o := Orientation([]byte("garbage")); o != 1 {
		t.Errorf("Expected orientation 1 for undecodable data, got %d", o)
	}
}

func TestCorrectOrientationRotates(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 4, 2))
	img.Set(0, 0, color.RGBA{R: 255, A: 255})

	rotated := correctOrientation(img, 6)
	bounds := rotated.Bounds()
	if bounds.Dx() != 2 || bounds.Dy() != 4 {
		t.Fatalf("Expected 2x4 after 90 degree rotation, got %dx%d", bounds.Dx(), bounds.Dy())
	}

	r, _, _, _ := rotated.At(1, 0).RGBA()
	if r == 0 {
		t.Errorf("Expected marked pixel at (1,0) after rotation")
	}
}
