// Package categorize assigns a topical category to an article title
// using keyword scoring.
package categorize

import (
	"strings"

	"github.com/milefeed/milefeed/internal/model"
)

// Definition is one scored category: a name, its keyword list, and
// whether a nonzero score short-circuits the topical comparison.
type Definition struct {
	Name     string
	Keywords []string
	Priority bool
}

// Classifier scores a title against an ordered list of definitions.
// Priority definitions win outright on any match, in order. Among the
// rest, the highest score wins with ties going to the earlier
// definition; an all-zero score falls back to General.
type Classifier struct {
	defs []Definition
}

// New builds a classifier over the given definitions. The order of
// defs is the tie-break order.
func New(defs []Definition) *Classifier {
	return &Classifier{defs: defs}
}

// Categorize returns the category for a title. It is pure and never
// returns an empty category.
func (c *Classifier) Categorize(title string) string {
	lower := strings.ToLower(title)

	scores := make([]int, len(c.defs))
	for i, def := range c.defs {
		for _, kw := range def.Keywords {
			if strings.Contains(lower, kw) {
				scores[i]++
			}
		}
	}

	for i, def := range c.defs {
		if def.Priority && scores[i] > 0 {
			return def.Name
		}
	}

	best := -1
	for i, def := range c.defs {
		if def.Priority {
			continue
		}
		if scores[i] > 0 && (best == -1 || scores[i] > scores[best]) {
			best = i
		}
	}
	if best == -1 {
		return model.CategoryGeneral
	}
	return c.defs[best].Name
}

// Categories lists every category this classifier can return,
// including the General fallback.
func (c *Classifier) Categories() []string {
	out := make([]string, 0, len(c.defs)+1)
	for _, def := range c.defs {
		out = append(out, def.Name)
	}
	return append(out, model.CategoryGeneral)
}

// Preset names accepted in the sources config file.
const (
	PresetDefault = "default" // Bonus tier enabled
	PresetTopical = "topical" // Airline/Hotel only
)

// ForPreset returns the classifier for a named preset, or nil if the
// name is unknown.
func ForPreset(name string) *Classifier {
	switch name {
	case PresetDefault:
		return New([]Definition{
			{Name: model.CategoryBonus, Keywords: bonusKeywords, Priority: true},
			{Name: model.CategoryAirline, Keywords: airlineKeywords},
			{Name: model.CategoryHotel, Keywords: hotelKeywords},
		})
	case PresetTopical:
		return New([]Definition{
			{Name: model.CategoryAirline, Keywords: airlineKeywords},
			{Name: model.CategoryHotel, Keywords: hotelKeywords},
		})
	}
	return nil
}
