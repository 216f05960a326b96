package models

import "time"

type AspectRatio string

const (
	AspectLandscape AspectRatio = "landscape"
	AspectPortrait  AspectRatio = "portrait"
	AspectSquare    AspectRatio = "square"
)

// TechnicalDetails holds optional camera metadata. Empty fields are omitted
// from every stored and serialized form.
type TechnicalDetails struct {
	Camera       string      `firestore:"camera,omitempty" json:"camera,omitempty"`
	Lens         string      `firestore:"lens,omitempty" json:"lens,omitempty"`
	Aperture     string      `firestore:"aperture,omitempty" json:"aperture,omitempty"`
	ShutterSpeed string      `firestore:"shutterSpeed,omitempty" json:"shutterSpeed,omitempty"`
	ISO          string      `firestore:"iso,omitempty" json:"iso,omitempty"`
	AspectRatio  AspectRatio `firestore:"aspectRatio,omitempty" json:"aspectRatio,omitempty"`
}

// IsEmpty reports whether no detail is set.
func (t *TechnicalDetails) IsEmpty() bool {
	return t == nil || *t == TechnicalDetails{}
}

type Photo struct {
	ID               string            `firestore:"-" json:"id"`
	URL              string            `firestore:"imageUrl" json:"url"`
	Title            string            `firestore:"title" json:"title"`
	Location         string            `firestore:"location" json:"location"`
	Description      string            `firestore:"description" json:"description"`
	TechnicalDetails *TechnicalDetails `firestore:"technicalDetails,omitempty" json:"technicalDetails,omitempty"`
	CreatedAt        time.Time         `firestore:"createdAt" json:"createdAt,omitzero"`
}

// UploadRequest is the create form schema. File is nil when the form carried
// no file part.
type UploadRequest struct {
	File         []byte `validate:"-"`
	FileName     string `validate:"max=255"`
	ContentType  string `validate:"max=255"`
	Title        string `validate:"max=200"`
	Location     string `validate:"max=200"`
	Description  string `validate:"max=5000"`
	Camera       string `validate:"max=100"`
	Lens         string `validate:"max=100"`
	Aperture     string `validate:"max=50"`
	ShutterSpeed string `validate:"max=50"`
	ISO          string `validate:"max=50"`
	AspectRatio  string `validate:"omitempty,oneof=landscape portrait square"`
}

// TechnicalDetails returns the supplied technical fields, or nil when none
// of them is set.
func (r UploadRequest) TechnicalDetails() *TechnicalDetails {
	details := &TechnicalDetails{
		Camera:       r.Camera,
		Lens:         r.Lens,
		Aperture:     r.Aperture,
		ShutterSpeed: r.ShutterSpeed,
		ISO:          r.ISO,
		AspectRatio:  AspectRatio(r.AspectRatio),
	}
	if details.IsEmpty() {
		return nil
	}
	return details
}

type UploadResponse struct {
	Success bool   `json:"success"`
	Photo   *Photo `json:"photo,omitempty"`
	Error   string `json:"error,omitempty"`
}

type DeleteResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
}

type ListResponse struct {
	Success bool     `json:"success"`
	Photos  []*Photo `json:"photos"`
	Error   string   `json:"error,omitempty"`
}

type CacheEntry struct {
	Data        []byte
	ContentType string
	Expires     time.Time
}

// Coordinates is a GPS position read from EXIF, formatted to six decimals.
type Coordinates struct {
	Lat string
	Lng string
}

func (c Coordinates) IsZero() bool {
	return c.Lat == "" || c.Lng == ""
}
