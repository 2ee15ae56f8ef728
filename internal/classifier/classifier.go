package classifier

import (
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/shivam060404/News-Aggregation-System/internal/models"
)

// Classifier tags articles with tracked entities found in their text.
//
// Matching is deliberately plain substring containment with no word-boundary
// enforcement: an entity name embedded in a longer word (e.g. "Meta" inside
// "Metadata") counts as a match. Downstream consumers rely on this behavior.
type Classifier struct {
	entitySet     models.EntitySet
	entitiesLower []string
	logger        *slog.Logger
}

// New builds a Classifier for the given tracked-entity set.
func New(entitySet models.EntitySet, logger *slog.Logger) *Classifier {
	lower := make([]string, len(entitySet.Entities))
	for i, entity := range entitySet.Entities {
		lower[i] = strings.ToLower(entity)
	}

	return &Classifier{
		entitySet:     entitySet,
		entitiesLower: lower,
		logger:        logger,
	}
}

// Classify returns every tracked entity mentioned in the title or body,
// preserving the entity set's order and original casing. An empty result
// means the article mentions none of the tracked entities.
func (c *Classifier) Classify(title, body string) []string {
	text := strings.ToLower(title + " " + body)

	var matched []string
	for i, entityLower := range c.entitiesLower {
		if strings.Contains(text, entityLower) {
			matched = append(matched, c.entitySet.Entities[i])
		}
	}

	if len(matched) > 0 {
		c.logger.Debug("article matched entities", "title", truncate(title, 50), "entities", matched)
	} else {
		c.logger.Debug("article matched no entities", "title", truncate(title, 50))
	}

	return matched
}

// ShouldInclude reports whether the article mentions at least one tracked entity.
func (c *Classifier) ShouldInclude(title, body string) bool {
	return len(c.Classify(title, body)) > 0
}

// truncate shortens s to at most n bytes, backing up to a rune boundary.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n] + "..."
}
