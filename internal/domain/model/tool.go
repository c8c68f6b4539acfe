package model

import "time"

// Tool is a curated entry in the public tools directory.
type Tool struct {
	ID          string
	Slug        string
	Name        string
	Description string
	URL         string
	Tags        []string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
