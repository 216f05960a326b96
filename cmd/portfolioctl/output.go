package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"portfolio-api/internal/models"
	"portfolio-api/internal/utils"
)

func writeJSON(w io.Writer, payload any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(payload)
}

func writePhotoList(w io.Writer, photos []*models.Photo) error {
	if len(photos) == 0 {
		_, err := fmt.Fprintln(w, "No photos yet")
		return err
	}
	for _, p := range photos {
		if _, err := fmt.Fprintf(w, "%s  %-12s  %s (%s)\n", p.ID, utils.FormatDisplayDate(p.CreatedAt), p.Title, p.Location); err != nil {
			return err
		}
	}
	return nil
}

func writePhotoDetail(w io.Writer, p *models.Photo) error {
	lines := []string{
		fmt.Sprintf("id: %s", p.ID),
		fmt.Sprintf("url: %s", p.URL),
		fmt.Sprintf("title: %s", p.Title),
		fmt.Sprintf("location: %s", p.Location),
	}
	if p.Description != "" {
		lines = append(lines, fmt.Sprintf("description: %s", p.Description))
	}
	if d := p.TechnicalDetails; !d.IsEmpty() {
		for _, kv := range [][2]string{
			{"camera", d.Camera},
			{"lens", d.Lens},
			{"aperture", d.Aperture},
			{"shutter_speed", d.ShutterSpeed},
			{"iso", d.ISO},
			{"aspect_ratio", string(d.AspectRatio)},
		} {
			if kv[1] != "" {
				lines = append(lines, fmt.Sprintf("%s: %s", kv[0], kv[1]))
			}
		}
	}
	if !p.CreatedAt.IsZero() {
		lines = append(lines, fmt.Sprintf("created: %s", utils.FormatDisplayDate(p.CreatedAt)))
	}

	_, err := fmt.Fprintln(w, strings.Join(lines, "\n"))
	return err
}
