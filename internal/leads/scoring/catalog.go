package scoring

import (
	_ "embed"
	"fmt"
	"math"
	"strings"

	"gopkg.in/yaml.v3"
)

// CategoryOther tags a detected technology that matches no catalog key.
const CategoryOther = "Other"

// defaultCategoryValue is the monthly value of a category with no catalog entries.
const defaultCategoryValue = 50

//go:embed technologies.yaml
var technologiesYAML []byte

// Technology is one catalog row.
type Technology struct {
	Key      string `yaml:"key"`
	Category string `yaml:"category"`
	Monthly  int    `yaml:"monthly"`
}

// Catalog is the ordered technology table plus the category lists used by
// gap analysis.
type Catalog struct {
	EssentialCategories []string     `yaml:"essentialCategories"`
	GrowthCategories    []string     `yaml:"growthCategories"`
	Technologies        []Technology `yaml:"technologies"`

	averages map[string]int
}

var defaultCatalog = mustLoadCatalog(technologiesYAML)

// DefaultCatalog returns the embedded catalog.
func DefaultCatalog() *Catalog {
	return defaultCatalog
}

// ParseCatalog decodes a catalog document.
func ParseCatalog(raw []byte) (*Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(raw, &c); err != nil {
		return nil, fmt.Errorf("parse technology catalog: %w", err)
	}
	for i, t := range c.Technologies {
		if t.Key == "" || t.Category == "" {
			return nil, fmt.Errorf("parse technology catalog: entry %d needs key and category", i)
		}
		c.Technologies[i].Key = strings.ToLower(t.Key)
	}
	c.averages = make(map[string]int)
	sums := make(map[string]int)
	counts := make(map[string]int)
	for _, t := range c.Technologies {
		sums[t.Category] += t.Monthly
		counts[t.Category]++
	}
	for cat, n := range counts {
		c.averages[cat] = int(roundHalfUp(float64(sums[cat]) / float64(n)))
	}
	return &c, nil
}

func mustLoadCatalog(raw []byte) *Catalog {
	c, err := ParseCatalog(raw)
	if err != nil {
		panic(err)
	}
	return c
}

// CategoryOf returns the category of the last catalog key contained in
// tech (case-insensitive), or false when nothing matches.
func (c *Catalog) CategoryOf(tech string) (string, bool) {
	lower := strings.ToLower(tech)
	category, found := "", false
	for _, t := range c.Technologies {
		if strings.Contains(lower, t.Key) {
			category, found = t.Category, true
		}
	}
	return category, found
}

// DetectedCategories returns every category matched by any technology.
// A technology contributes all categories it matches, not only the last.
func (c *Catalog) DetectedCategories(technologies []string) map[string]struct{} {
	detected := make(map[string]struct{})
	for _, tech := range technologies {
		lower := strings.ToLower(tech)
		for _, t := range c.Technologies {
			if strings.Contains(lower, t.Key) {
				detected[t.Category] = struct{}{}
			}
		}
	}
	return detected
}

// AverageMonthly returns the rounded average monthly price of a category.
func (c *Catalog) AverageMonthly(category string) int {
	if avg, ok := c.averages[category]; ok {
		return avg
	}
	return defaultCategoryValue
}

// roundHalfUp rounds x.5 toward positive infinity.
func roundHalfUp(x float64) float64 {
	return math.Floor(x + 0.5)
}
