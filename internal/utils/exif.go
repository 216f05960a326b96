package utils

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/png"
	"math"
	"strconv"
	"strings"

	"github.com/rwcarlsen/goexif/exif"

	"portfolio-api/internal/models"
)

// squareTolerance is how far width/height may drift from 1 and still count as square.
const squareTolerance = 0.05

// ExifData is the subset of EXIF the portfolio cares about.
type ExifData struct {
	Details     models.TechnicalDetails
	Coordinates models.Coordinates
}

// ExtractExif reads camera settings and GPS position from image EXIF data.
// Missing tags are left empty; only an undecodable EXIF block is an error.
func ExtractExif(imageData []byte) (ExifData, error) {
	x, err := exif.Decode(bytes.NewReader(imageData))
	if err != nil {
		return ExifData{}, fmt.Errorf("failed to decode EXIF: %w", err)
	}

	var out ExifData
	out.Details.Camera = cameraName(stringTag(x, exif.Make), stringTag(x, exif.Model))
	out.Details.Lens = stringTag(x, exif.LensModel)

	if num, den, ok := ratTag(x, exif.FNumber); ok {
		out.Details.Aperture = FormatAperture(num, den)
	}
	if num, den, ok := ratTag(x, exif.ExposureTime); ok {
		out.Details.ShutterSpeed = FormatShutterSpeed(num, den)
	}
	if tag, err := x.Get(exif.ISOSpeedRatings); err == nil {
		if iso, err := tag.Int(0); err == nil && iso > 0 {
			out.Details.ISO = strconv.Itoa(iso)
		}
	}

	if lat, lng, err := x.LatLong(); err == nil {
		out.Coordinates = models.Coordinates{
			Lat: fmt.Sprintf("%.6f", lat),
			Lng: fmt.Sprintf("%.6f", lng),
		}
	}

	return out, nil
}

// DetectAspectRatio classifies the image by its displayed dimensions.
// EXIF orientations 5-8 rotate the image by 90 degrees, swapping width and height.
func DetectAspectRatio(imageData []byte) (models.AspectRatio, error) {
	cfg, _, err := image.DecodeConfig(bytes.NewReader(imageData))
	if err != nil {
		return "", fmt.Errorf("failed to read image dimensions: %w", err)
	}

	width, height := cfg.Width, cfg.Height
	if orientation(imageData) >= 5 {
		width, height = height, width
	}
	return AspectRatioFor(width, height), nil
}

// AspectRatioFor classifies a width x height pair.
func AspectRatioFor(width, height int) models.AspectRatio {
	if width <= 0 || height <= 0 {
		return ""
	}
	ratio := float64(width) / float64(height)
	switch {
	case math.Abs(ratio-1) <= squareTolerance:
		return models.AspectSquare
	case ratio > 1:
		return models.AspectLandscape
	default:
		return models.AspectPortrait
	}
}

// FormatAperture renders an f-number such as 28/10 as "f/2.8".
func FormatAperture(num, den int64) string {
	if den == 0 || num <= 0 {
		return ""
	}
	value := strconv.FormatFloat(float64(num)/float64(den), 'f', 1, 64)
	return "f/" + strings.TrimSuffix(value, ".0")
}

// FormatShutterSpeed renders exposure times below one second as a fraction ("1/250s").
func FormatShutterSpeed(num, den int64) string {
	if den == 0 || num <= 0 {
		return ""
	}
	seconds := float64(num) / float64(den)
	if seconds < 1 {
		return fmt.Sprintf("1/%ds", int64(math.Round(1/seconds)))
	}
	return strconv.FormatFloat(seconds, 'f', -1, 64) + "s"
}

// cameraName joins make and model, dropping the make when the model already repeats it.
func cameraName(maker, model string) string {
	switch {
	case model == "":
		return maker
	case maker == "" || strings.HasPrefix(strings.ToLower(model), strings.ToLower(maker)):
		return model
	default:
		return maker + " " + model
	}
}

func stringTag(x *exif.Exif, name exif.FieldName) string {
	tag, err := x.Get(name)
	if err != nil {
		return ""
	}
	s, err := tag.StringVal()
	if err != nil {
		return ""
	}
	return strings.TrimSpace(strings.TrimRight(s, "\x00"))
}

func ratTag(x *exif.Exif, name exif.FieldName) (int64, int64, bool) {
	tag, err := x.Get(name)
	if err != nil {
		return 0, 0, false
	}
	num, den, err := tag.Rat2(0)
	if err != nil {
		return 0, 0, false
	}
	return num, den, true
}

// orientation returns the EXIF orientation tag, or 1 when absent.
func orientation(imageData []byte) int {
	x, err := exif.Decode(bytes.NewReader(imageData))
	if err != nil {
		return 1
	}
	tag, err := x.Get(exif.Orientation)
	if err != nil {
		return 1
	}
	o, err := tag.Int(0)
	if err != nil {
		return 1
	}
	return o
}
