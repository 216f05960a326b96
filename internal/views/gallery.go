package views

import (
	"bytes"
	"embed"
	"html/template"
	"time"

	"portfolio-api/internal/models"
	"portfolio-api/internal/utils"
)

//go:embed templates/*.html
var templateFS embed.FS

var galleryTemplate = template.Must(
	template.New("gallery.html").Funcs(template.FuncMap{
		"displayDate": utils.FormatDisplayDate,
		"hasDetails":  func(d *models.TechnicalDetails) bool { return !d.IsEmpty() },
	}).ParseFS(templateFS, "templates/gallery.html"),
)

// GalleryPage is the data rendered by the gallery template.
type GalleryPage struct {
	Title  string
	Photos []*models.Photo
	Year   int
}

// RenderGallery renders the full gallery page, photos in the given order.
func RenderGallery(photos []*models.Photo) ([]byte, error) {
	page := GalleryPage{
		Title:  "Travel Portfolio",
		Photos: photos,
		Year:   time.Now().Year(),
	}

	var buf bytes.Buffer
	if err := galleryTemplate.Execute(&buf, page); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
