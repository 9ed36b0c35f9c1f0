package scryfall

import (
	"errors"
	"fmt"
)

// Card is the subset of a Scryfall card object the tracker reads.
type Card struct {
	ID            string     `json:"id"`
	Name          string     `json:"name"`
	Layout        string     `json:"layout"`
	TypeLine      string     `json:"type_line"`
	ManaCost      string     `json:"mana_cost,omitempty"`
	ColorIdentity []string   `json:"color_identity"`
	ImageURIs     *ImageURIs `json:"image_uris,omitempty"`
	CardFaces     []CardFace `json:"card_faces,omitempty"`
	Legalities    Legalities `json:"legalities"`
}

// CardFace represents one face of a multi-faced card.
type CardFace struct {
	Name      string     `json:"name"`
	TypeLine  string     `json:"type_line"`
	ImageURIs *ImageURIs `json:"image_uris,omitempty"`
}

// ImageURIs contains URLs for card images in various sizes.
type ImageURIs struct {
	Small   string `json:"small"`
	Normal  string `json:"normal"`
	Large   string `json:"large"`
	PNG     string `json:"png"`
	ArtCrop string `json:"art_crop"`
}

// Legalities holds the format legalities the tracker cares about.
type Legalities struct {
	Commander string `json:"commander"`
}

// IsCommanderLegal reports whether the card may be played in Commander.
func (c *Card) IsCommanderLegal() bool {
	return c.Legalities.Commander == "legal"
}

// ImageURL returns the normal-size image, falling back to the front face
// for double-faced cards. Returns "" when the card has no image.
func (c *Card) ImageURL() string {
	if c.ImageURIs != nil && c.ImageURIs.Normal != "" {
		return c.ImageURIs.Normal
	}
	for _, face := range c.CardFaces {
		if face.ImageURIs != nil && face.ImageURIs.Normal != "" {
			return face.ImageURIs.Normal
		}
	}
	return ""
}

// Catalog is a list of strings, as returned by the autocomplete endpoint.
type Catalog struct {
	Object      string   `json:"object"`
	TotalValues int      `json:"total_values"`
	Data        []string `json:"data"`
}

// APIError represents an error response from the Scryfall API.
type APIError struct {
	Object   string   `json:"object"`
	Code     string   `json:"code"`
	Status   int      `json:"status"`
	Details  string   `json:"details"`
	Type     string   `json:"type,omitempty"`
	Warnings []string `json:"warnings,omitempty"`
}

// Error implements the error interface for APIError.
func (e *APIError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("Scryfall API error (HTTP %d): %s", e.Status, e.Details)
	}
	return fmt.Sprintf("Scryfall API error (HTTP %d): %s", e.Status, e.Code)
}

// NotFoundError represents a 404 error from the API.
type NotFoundError struct {
	URL string
}

// Error implements the error interface for NotFoundError.
func (e *NotFoundError) Error() string {
	return fmt.Sprintf("resource not found: %s", e.URL)
}

// IsNotFound returns true if err is or wraps a NotFoundError.
func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}
