// Package image downscales and re-encodes user photos into size-bounded
// JPEG data URIs before they are sent to the vision model.
package image

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"
	"strings"

	"github.com/apex/log"
	"github.com/rwcarlsen/goexif/exif"
	"golang.org/x/image/draw"
)

const (
	maxDimension    = 1500            // longest side of the uploaded image
	qualityPrimary  = 80              // first JPEG encoding pass
	qualityFallback = 60              // second pass when the first is over budget
	maxDecodedBytes = 3 * 1024 * 1024 // budget for the decoded base64 payload
)

var (
	// ErrImageLoad means the input could not be decoded as a raster image.
	ErrImageLoad = errors.New("failed to load image")
	// ErrImageTooLarge means the image exceeds the size budget even at the
	// fallback quality. Callers should ask the user for a smaller image
	// rather than degrade further.
	ErrImageTooLarge = errors.New("image too large after compression")
)

// Orientation extracts the EXIF orientation tag from JPEG data.
// Returns 1 (upright) when the tag is absent or unreadable.
func Orientation(data []byte) int {
	x, err := exif.Decode(bytes.NewReader(data))
	if err != nil {
		return 1
	}

	tag, err := x.Get(exif.Orientation)
	if err != nil {
		return 1
	}

	value, err := tag.Int(0)
	if err != nil {
		return 1
	}

	return value
}

// CompressToDataURI decodes an image, corrects its EXIF orientation, scales
// it so that neither dimension exceeds 1500 pixels, and encodes it as a
// base64 JPEG data URI. Encoding starts at quality 80; if the estimated
// decoded payload exceeds 3 MiB it retries once at quality 60, then fails.
func CompressToDataURI(data []byte) (string, error) {
	orientation := Orientation(data)

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrImageLoad, err)
	}

	if orientation != 1 {
		img = correctOrientation(img, orientation)
		log.Infof("Applied orientation correction: %d", orientation)
	}

	bounds := img.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()

	newWidth, newHeight := fitDimensions(width, height)
	if newWidth != width || newHeight != height {
		scaled := image.NewRGBA(image.Rect(0, 0, newWidth, newHeight))
		draw.CatmullRom.Scale(scaled, scaled.Bounds(), img, bounds, draw.Over, nil)
		img = scaled
		log.Infof("Image scaled: %dx%d -> %dx%d", width, height, newWidth, newHeight)
	}

	return encodeWithBudget(img, maxDecodedBytes)
}

// fitDimensions computes target dimensions so that max(w, h) <= maxDimension
// while preserving aspect ratio. Images already within the limit keep their
// dimensions.
func fitDimensions(width, height int) (int, int) {
	if width <= maxDimension && height <= maxDimension {
		return width, height
	}

	if width > height {
		return maxDimension, int(float64(height)*float64(maxDimension)/float64(width) + 0.5)
	}
	return int(float64(width)*float64(maxDimension)/float64(height) + 0.5), maxDimension
}

// encodeWithBudget encodes img as a JPEG data URI, retrying once at the
// fallback quality when the estimated decoded size exceeds budget.
func encodeWithBudget(img image.Image, budget int) (string, error) {
	for _, quality := range []int{qualityPrimary, qualityFallback} {
		var buf bytes.Buffer
		if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: quality}); err != nil {
			return "", fmt.Errorf("failed to encode compressed image: %w", err)
		}

		uri := "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString(buf.Bytes())
		if estimatedDecodedSize(uri) <= budget {
			return uri, nil
		}
		log.Warnf("Encoded image over budget at quality %d: %d bytes", quality, buf.Len())
	}

	return "", ErrImageTooLarge
}

// estimatedDecodedSize estimates the decoded byte size of a base64 data URI
// as ceil(base64Length * 3 / 4), matching the upload budget check used by
// the browser client.
func estimatedDecodedSize(dataURI string) int {
	payload := dataURI
	if idx := strings.IndexByte(dataURI, ','); idx != -1 {
		payload = dataURI[idx+1:]
	}
	return (len(payload)*3 + 3) / 4
}

// correctOrientation rewrites img so that it displays upright for the given
// EXIF orientation value.
func correctOrientation(img image.Image, orientation int) image.Image {
	bounds := img.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()

	var out *image.RGBA
	var set func(x, y int)

	switch orientation {
	case 2: // flip horizontal
		out = image.NewRGBA(image.Rect(0, 0, width, height))
		set = func(x, y int) { out.Set(width-1-x, y, img.At(x, y)) }
	case 3: // rotate 180
		out = image.NewRGBA(image.Rect(0, 0, width, height))
		set = func(x, y int) { out.Set(width-1-x, height-1-y, img.At(x, y)) }
	case 4: // flip vertical
		out = image.NewRGBA(image.Rect(0, 0, width, height))
		set = func(x, y int) { out.Set(x, height-1-y, img.At(x, y)) }
	case 5: // transpose
		out = image.NewRGBA(image.Rect(0, 0, height, width))
		set = func(x, y int) { out.Set(y, x, img.At(x, y)) }
	case 6: // rotate 90 clockwise
		out = image.NewRGBA(image.Rect(0, 0, height, width))
		set = func(x, y int) { out.Set(height-1-y, x, img.At(x, y)) }
	case 7: // transverse
		out = image.NewRGBA(image.Rect(0, 0, height, width))
		set = func(x, y int) { out.Set(height-1-y, width-1-x, img.At(x, y)) }
	case 8: // rotate 90 counter-clockwise
		out = image.NewRGBA(image.Rect(0, 0, height, width))
		set = func(x, y int) { out.Set(y, width-1-x, img.At(x, y)) }
	default:
		return img
	}

	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			set(x, y)
		}
	}
	return out
}
