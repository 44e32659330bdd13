package models

import "time"

// TextAlign constrains horizontal field alignment to what the renderer can do.
type TextAlign string

const (
	AlignLeft   TextAlign = "left"
	AlignCenter TextAlign = "center"
	AlignRight  TextAlign = "right"
)

// Field is one text placeholder within a template. Coordinates are authored
// against the renderer's fixed reference width; y is the text baseline.
type Field struct {
	Name        string    `json:"name"`
	Title       string    `json:"title"`
	NameDisplay string    `json:"nameDisplay"`
	X           float64   `json:"x"`
	Y           float64   `json:"y"`
	FontSize    float64   `json:"fontSize"`
	FontColor   string    `json:"fontColor"`
	FontFamily  string    `json:"fontFamily"`
	TextAlign   TextAlign `json:"textAlign"`
	IsBold      bool      `json:"isBold"`
	IsItalic    bool      `json:"isItalic"`
	// IsChosen marks fields the event-driven path resolves from top-level
	// payload keys. The synchronous path ignores it.
	IsChosen bool `json:"isChoose"`
}

// Template is a named, ordered layout of text fields over a background image.
// Field order is paint order.
type Template struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	// Background is a filesystem path or http(s) URL to the backdrop image.
	Background string  `json:"background,omitempty"`
	FontFamily string  `json:"fontFamily,omitempty"`
	Fields     []Field `json:"fields"`
	IsActive   bool    `json:"isActive"`
	IsDefault  bool    `json:"isDefault"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// Filter narrows template listings.
type Filter struct {
	IsActive *bool
}
