// Package search narrows a template's element list by free-text search.
package search

import (
	"sort"
	"strings"

	"github.com/starford/modelexplorer/internal/models"
)

// Tokens splits text on whitespace into lowercase tokens.
func Tokens(text string) []string {
	return strings.Fields(strings.ToLower(text))
}

// Matches reports whether name contains every token as a case-insensitive
// substring. Without tokens everything matches; an empty name matches nothing
// else.
func Matches(name string, tokens []string) bool {
	if len(tokens) == 0 {
		return true
	}
	n := strings.ToLower(name)
	if n == "" {
		return false
	}
	for _, tok := range tokens {
		if !strings.Contains(n, tok) {
			return false
		}
	}
	return true
}

// Filter returns the instances whose name matches all tokens of text, sorted
// by name. The input slice is not modified.
func Filter(instances []models.ElementRef, text string) []models.ElementRef {
	tokens := Tokens(text)
	out := make([]models.ElementRef, 0, len(instances))
	for _, ref := range instances {
		if Matches(ref.Name, tokens) {
			out = append(out, ref)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
