package utils

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	"log"
	"path/filepath"
	"strings"

	"github.com/adrium/goheif"
	"github.com/disintegration/imaging"
	"github.com/rwcarlsen/goexif/exif"
)

const jpegQuality = 90

// Checks if the MIME type or file name indicates a HEIC or HEIF image.
func IsHeifLike(mimeType, name string) bool {
	t := strings.ToLower(mimeType)
	if strings.Contains(t, "heic") || strings.Contains(t, "heif") {
		return true
	}
	ext := strings.ToLower(filepath.Ext(name))
	return ext == ".heic" || ext == ".heif"
}

// Converts HEIC/HEIF image data to JPEG, baking the EXIF orientation into the pixels.
func ConvertHeicToJpeg(input []byte) ([]byte, error) {
	img, err := goheif.Decode(bytes.NewReader(input))
	if err != nil {
		return nil, fmt.Errorf("failed to decode HEIC: %w", err)
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, orient(img, input), &jpeg.Options{Quality: jpegQuality}); err != nil {
		return nil, fmt.Errorf("failed to encode JPEG: %w", err)
	}

	return buf.Bytes(), nil
}

// EXIF orientation values: 1=normal, 2=flip-h, 3=180, 4=flip-v, 5=transpose, 6=270, 7=transverse, 8=90
func orient(img image.Image, input []byte) image.Image {
	x, err := exif.Decode(bytes.NewReader(input))
	if err != nil {
		return img
	}
	tag, err := x.Get(exif.Orientation)
	if err != nil {
		return img
	}
	o, err := tag.Int(0)
	if err != nil {
		return img
	}

	switch o {
	case 2:
		return imaging.FlipH(img)
	case 3:
		return imaging.Rotate180(img)
	case 4:
		return imaging.FlipV(img)
	case 5:
		return imaging.Transpose(img)
	case 6:
		return imaging.Rotate270(img)
	case 7:
		return imaging.Transverse(img)
	case 8:
		return imaging.Rotate90(img)
	default:
		return img
	}
}

// ConvertIfHeic returns JPEG bytes with a .jpg name for HEIC uploads and the
// input untouched otherwise. A failed conversion keeps the original bytes.
func ConvertIfHeic(name, mime string, data []byte) (string, string, []byte) {
	if !IsHeifLike(mime, name) {
		return name, mime, data
	}

	converted, err := ConvertHeicToJpeg(data)
	if err != nil {
		log.Printf("[HEIC] Conversion failed for %s, storing original: %v", name, err)
		return name, mime, data
	}

	if ext := filepath.Ext(name); ext != "" {
		name = strings.TrimSuffix(name, ext)
	}
	log.Printf("[HEIC] Converted %s to JPEG (%d -> %d bytes)", name, len(data), len(converted))

	return name + ".jpg", "image/jpeg", converted
}
