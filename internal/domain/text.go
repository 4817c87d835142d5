package domain

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/rivo/uniseg"
)

var hexColor = regexp.MustCompile(`^#[0-9A-Fa-f]{6}$`)

// CountWords counts whitespace-separated tokens, ignoring empty ones
func CountWords(s string) int {
	return len(strings.Fields(s))
}

// CountCharacters counts user-perceived characters (extended grapheme
// clusters), so an emoji with modifiers counts once.
func CountCharacters(s string) int {
	return uniseg.GraphemeClusterCount(s)
}

// ValidColor reports whether c is a #RRGGBB hex color
func ValidColor(c string) bool {
	return hexColor.MatchString(c)
}

// NormalizeTags splits tags on the list separator, trims them and drops
// empties and duplicates, keeping order
func NormalizeTags(tags []string) []string {
	seen := make(map[string]bool, len(tags))
	var out []string
	for _, raw := range tags {
		for _, t := range strings.Split(raw, ListSeparator) {
			t = strings.TrimSpace(t)
			if t == "" || seen[t] {
				continue
			}
			seen[t] = true
			out = append(out, t)
		}
	}
	return out
}

// CheckCategoryName rejects names that cannot be stored in a category list
func CheckCategoryName(name string) error {
	if strings.Contains(name, ListSeparator) {
		return NewValidationError(fmt.Sprintf("category name %q must not contain %q", name, ListSeparator))
	}
	return nil
}
