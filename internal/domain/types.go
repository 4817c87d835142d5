package domain

import (
	"strings"
	"time"
)

// Uncategorized is the category assigned to viewpoints saved without one
const Uncategorized = "Uncategorized"

// DefaultColor is used for categories created without an explicit color
const DefaultColor = "#007AFF"

// Viewpoint is a single journal entry
type Viewpoint struct {
	// Seq is the storage row key. IDs repeat after a backup is restored twice.
	Seq            int64     `json:"-"`
	ID             string    `json:"id"`
	Content        string    `json:"content"`
	Category       string    `json:"category"`
	CreatedAt      time.Time `json:"created_at"`
	ModifiedAt     time.Time `json:"modified_at"`
	WordCount      int       `json:"word_count"`
	CharacterCount int       `json:"character_count"`
	Tags           []string  `json:"tags,omitempty"`
	FilePath       string    `json:"file_path,omitempty"`
}

// SetContent replaces the content and refreshes the stored counts
func (v *Viewpoint) SetContent(content string) {
	v.Content = content
	v.WordCount = CountWords(content)
	v.CharacterCount = CountCharacters(content)
}

// Category is a user-defined bucket for viewpoints. Membership is derived
// from Viewpoint.Category, so ViewpointCount is only filled by queries that
// compute it.
type Category struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	Color          string    `json:"color"`
	DirectoryPath  string    `json:"directory_path,omitempty"`
	Description    string    `json:"description,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
	ViewpointCount int       `json:"viewpoint_count"`
}

// DailyStat aggregates all viewpoints created on one calendar day
type DailyStat struct {
	ID                  string    `json:"id"`
	Day                 Day       `json:"day"`
	ViewpointCount      int       `json:"viewpoint_count"`
	TotalWordCount      int       `json:"total_word_count"`
	TotalCharacterCount int       `json:"total_character_count"`
	Categories          []string  `json:"categories"`
	CreatedAt           time.Time `json:"created_at"`
}

// Intensity returns the heatmap level for this day
func (s DailyStat) Intensity() int {
	return Intensity(s.ViewpointCount)
}

// Intensity buckets a day's viewpoint count into a 0-4 display level
func Intensity(count int) int {
	switch {
	case count <= 0:
		return 0
	case count == 1:
		return 1
	case count <= 3:
		return 2
	case count <= 6:
		return 3
	default:
		return 4
	}
}

// ListSeparator joins tags and day category sets in storage
const ListSeparator = ","

// JoinList encodes a string list the way it is stored
func JoinList(items []string) string {
	return strings.Join(items, ListSeparator)
}

// SplitList decodes a comma-joined list, trimming entries and dropping empty ones
func SplitList(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	parts := strings.Split(s, ListSeparator)
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
