package routing

import (
	"encoding/json"
	"log"
	"os"
	"sort"
	"strings"
)

// Family identifies one of the interchangeable completion backends.
type Family string

const (
	FamilyGPT    Family = "gpt"
	FamilyGemini Family = "gemini"
	FamilyClaude Family = "claude"
	FamilyGroq   Family = "groq"
)

// DefaultFamily is the fallback for every classification failure.
const DefaultFamily = FamilyGPT

// KnownFamilies lists every routable backend family.
var KnownFamilies = []Family{FamilyGPT, FamilyGemini, FamilyClaude, FamilyGroq}

// IsKnownFamily reports whether s names a routable backend family.
func IsKnownFamily(s string) bool {
	for _, f := range KnownFamilies {
		if string(f) == s {
			return true
		}
	}
	return false
}

// familyPattern maps model-name substrings to a backend family. Order
// matters: the first pattern that matches a model decides.
type familyPattern struct {
	family   Family
	patterns []string
}

var familyPatterns = []familyPattern{
	{FamilyGemini, []string{"gemini", "google"}},
	{FamilyGPT, []string{"gpt", "openai", "o3", "o4"}},
	{FamilyClaude, []string{"claude", "anthropic"}},
	{FamilyGroq, []string{"groq", "llama"}},
}

// catalogUnmappedFamily is assigned to categories whose model list
// matches no pattern.
const catalogUnmappedFamily = FamilyGemini

// catalogSnapshot is the on-disk shape of the leaderboard snapshot:
// each task category maps to its ranked model names.
type catalogSnapshot struct {
	TaskCategories map[string][]string `json:"task_categories"`
}

// Catalog is the immutable category-to-family mapping built once per
// process from a leaderboard snapshot.
type Catalog struct {
	families map[string]Family
	labels   []string
}

// NewCatalog builds a catalog directly from category->family pairs.
// Labels are sorted so "first maximum" tie-breaks are stable.
func NewCatalog(families map[string]Family) *Catalog {
	labels := make([]string, 0, len(families))
	for label := range families {
		labels = append(labels, label)
	}
	sort.Strings(labels)
	return &Catalog{families: families, labels: labels}
}

// LoadCatalog reads a leaderboard snapshot file and collapses each
// category's model list to a backend family. A missing or malformed
// snapshot yields an empty catalog, logged, never an error: the
// classifier must keep working on its default family.
func LoadCatalog(path string, logger *log.Logger) *Catalog {
	raw, err := os.ReadFile(path)
	if err != nil {
		logger.Printf("[WARN] Catalog snapshot unavailable at %s, classifier will use default family: %v", path, err)
		return NewCatalog(nil)
	}

	var snapshot catalogSnapshot
	if err := json.Unmarshal(raw, &snapshot); err != nil {
		logger.Printf("[WARN] Catalog snapshot at %s is malformed, classifier will use default family: %v", path, err)
		return NewCatalog(nil)
	}

	return NewCatalog(preprocessCategories(snapshot.TaskCategories))
}

// preprocessCategories assigns each category the family of the first
// ranked model that matches a family pattern.
func preprocessCategories(taskCategories map[string][]string) map[string]Family {
	families := make(map[string]Family, len(taskCategories))
	for category, models := range taskCategories {
		assigned := catalogUnmappedFamily
		for _, model := range models {
			if family, ok := matchFamily(model); ok {
				assigned = family
				break
			}
		}
		families[category] = assigned
	}
	return families
}

func matchFamily(model string) (Family, bool) {
	modelLower := strings.ToLower(model)
	for _, fp := range familyPatterns {
		for _, pattern := range fp.patterns {
			if strings.Contains(modelLower, pattern) {
				return fp.family, true
			}
		}
	}
	return "", false
}

// Labels returns the category labels in sorted order.
func (c *Catalog) Labels() []string {
	return c.labels
}

// FamilyFor maps a category label to its backend family.
func (c *Catalog) FamilyFor(label string) (Family, bool) {
	family, ok := c.families[label]
	return family, ok
}

// Len returns the number of categories.
func (c *Catalog) Len() int {
	return len(c.labels)
}
