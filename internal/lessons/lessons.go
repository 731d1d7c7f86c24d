package lessons

import (
	_ "embed"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed lessons.yaml
var lessonData []byte

// single lesson testcase
type TestCase struct {
	Input          string `yaml:"input" json:"input"`
	ExpectedOutput string `yaml:"expected_output" json:"expectedOutput"`
}

// Lesson is external reference data consumed read-only as evaluation context.
type Lesson struct {
	ID             int        `yaml:"id" json:"id"`
	Title          string     `yaml:"title" json:"title"`
	Difficulty     string     `yaml:"difficulty" json:"difficulty"`
	Category       string     `yaml:"category" json:"category"`
	Description    string     `yaml:"description" json:"description"`
	Problem        string     `yaml:"problem" json:"problem"`
	ExpectedOutput []string   `yaml:"expected_output" json:"expectedOutput"`
	StarterCode    string     `yaml:"starter_code" json:"starterCode"`
	Solution       string     `yaml:"solution" json:"solution"`
	Hints          []string   `yaml:"hints" json:"hints"`
	TestCases      []TestCase `yaml:"test_cases" json:"testCases"`
}

// Catalog is the loaded lesson set.
type Catalog struct {
	byID    map[int]*Lesson
	byTitle map[string]*Lesson
	all     []Lesson
}

// NewCatalog loads the embedded lesson data.
func NewCatalog() (*Catalog, error) {
	var parsed struct {
		Lessons []Lesson `yaml:"lessons"`
	}
	if err := yaml.Unmarshal(lessonData, &parsed); err != nil {
		return nil, fmt.Errorf("failed to parse lesson data: %w", err)
	}
	if len(parsed.Lessons) == 0 {
		return nil, fmt.Errorf("no lessons found in embedded data")
	}

	c := &Catalog{
		byID:    make(map[int]*Lesson),
		byTitle: make(map[string]*Lesson),
		all:     parsed.Lessons,
	}
	for i := range c.all {
		lesson := &c.all[i]
		c.byID[lesson.ID] = lesson
		c.byTitle[strings.ToLower(lesson.Title)] = lesson
	}
	return c, nil
}

// ByID returns the lesson with the given ID, or nil.
func (c *Catalog) ByID(id int) *Lesson {
	return c.byID[id]
}

// ByTitle returns the lesson with the given title (case-insensitive), or nil.
func (c *Catalog) ByTitle(title string) *Lesson {
	return c.byTitle[strings.ToLower(strings.TrimSpace(title))]
}

// All returns every lesson in catalog order.
func (c *Catalog) All() []Lesson {
	return c.all
}
