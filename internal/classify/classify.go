package classify

import (
	"sort"
	"strings"

	"github.com/selvester69/notifications/internal/domain"
)

// Classifier maps an event type to a preference category using
// longest-prefix rules. It is pure and total: input that matches no
// rule degrades to the default category instead of erroring.
type Classifier struct {
	rules        []rule
	defaultValue domain.Category
}

type rule struct {
	prefix   string
	category domain.Category
}

// DefaultRules mirrors the categories the preference store is keyed by
func DefaultRules() map[string]domain.Category {
	return map[string]domain.Category{
		"ORDER": domain.CategoryOrder,
		"USER":  domain.CategoryUserEvent,
	}
}

// New builds a classifier from a prefix table. Rules are ordered
// longest prefix first so overlapping prefixes resolve to the most
// specific match.
func New(rules map[string]domain.Category, defaultCategory domain.Category) *Classifier {
	ordered := make([]rule, 0, len(rules))
	for prefix, category := range rules {
		ordered = append(ordered, rule{prefix: prefix, category: category})
	}
	sort.Slice(ordered, func(i, j int) bool {
		if len(ordered[i].prefix) != len(ordered[j].prefix) {
			return len(ordered[i].prefix) > len(ordered[j].prefix)
		}
		return ordered[i].prefix < ordered[j].prefix
	})

	return &Classifier{
		rules:        ordered,
		defaultValue: defaultCategory,
	}
}

// Classify returns the category for an event type
func (c *Classifier) Classify(eventType string) domain.Category {
	for _, r := range c.rules {
		if strings.HasPrefix(eventType, r.prefix) {
			return r.category
		}
	}
	return c.defaultValue
}
