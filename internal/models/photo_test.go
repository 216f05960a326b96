package models

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestUploadRequestTechnicalDetails(t *testing.T) {
	tests := []struct {
		name string
		req  UploadRequest
		want *TechnicalDetails
	}{
		{
			name: "no technical fields",
			req:  UploadRequest{Title: "Sunset"},
			want: nil,
		},
		{
			name: "only supplied keys",
			req:  UploadRequest{Camera: "X-T50", ISO: "200"},
			want: &TechnicalDetails{Camera: "X-T50", ISO: "200"},
		},
		{
			name: "aspect ratio alone",
			req:  UploadRequest{AspectRatio: "portrait"},
			want: &TechnicalDetails{AspectRatio: AspectPortrait},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.req.TechnicalDetails()
			if tt.want == nil {
				if got != nil {
					t.Fatalf("expected nil details, got %#v", got)
				}
				return
			}
			if got == nil || *got != *tt.want {
				t.Fatalf("TechnicalDetails() = %#v, want %#v", got, tt.want)
			}
		})
	}
}

func TestPhotoJSONOmitsEmptyDetails(t *testing.T) {
	photo := Photo{ID: "p1", URL: "/blobs/a.jpg", Title: "Sunset", Location: "Bali"}
	data, err := json.Marshal(photo)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	s := string(data)
	if strings.Contains(s, "technicalDetails") {
		t.Errorf("expected technicalDetails to be omitted, got %s", s)
	}
	if strings.Contains(s, "createdAt") {
		t.Errorf("expected zero createdAt to be omitted, got %s", s)
	}

	photo.TechnicalDetails = &TechnicalDetails{Lens: "23mm"}
	data, err = json.Marshal(photo)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if !strings.Contains(string(data), `"technicalDetails":{"lens":"23mm"}`) {
		t.Errorf("expected only lens in technicalDetails, got %s", data)
	}
}
