package evaluation

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/wouterstultiens/boardgame-finder/internal/extraction"
	"github.com/wouterstultiens/boardgame-finder/internal/services"
)

// Case is one labelled listing.
type Case struct {
	Name               string            `yaml:"name"`
	Title              string            `yaml:"title"`
	Description        string            `yaml:"description"`
	ImageTexts         []string          `yaml:"image_texts"`
	ExpectedExtraction []extraction.Name `yaml:"expected_extraction"`
	ExpectedMatches    []ExpectedMatch   `yaml:"expected_matches"`
}

// ExpectedMatch lists the acceptable catalog ids for one extracted name.
// An empty IDs list expects no match.
type ExpectedMatch struct {
	IDs  []int  `yaml:"ids"`
	Name string `yaml:"name,omitempty"`
}

// Accepts reports whether id (0 for no match) satisfies the expectation.
func (m ExpectedMatch) Accepts(id int) bool {
	if len(m.IDs) == 0 {
		return id == 0
	}
	for _, want := range m.IDs {
		if want == id {
			return true
		}
	}
	return false
}

type caseFile struct {
	Cases []Case `yaml:"cases"`
}

// LoadCases reads a case file. Unknown keys are rejected so typos in
// hand-edited files surface early.
func LoadCases(path string) ([]Case, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, services.Wrap(services.ErrNotFound, "evaluation", "load cases", path, err)
		}
		return nil, fmt.Errorf("read cases: %w", err)
	}
	return ParseCases(data)
}

// ParseCases decodes and validates YAML case data.
func ParseCases(data []byte) ([]Case, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	var file caseFile
	if err := dec.Decode(&file); err != nil {
		return nil, services.Wrap(services.ErrValidation, "evaluation", "parse cases", "invalid case file", err)
	}
	seen := make(map[string]struct{}, len(file.Cases))
	for i, c := range file.Cases {
		if c.Name == "" {
			return nil, services.Wrap(services.ErrValidation, "evaluation", "parse cases",
				fmt.Sprintf("case %d has no name", i+1), nil)
		}
		if _, dup := seen[c.Name]; dup {
			return nil, services.Wrap(services.ErrValidation, "evaluation", "parse cases",
				fmt.Sprintf("duplicate case %q", c.Name), nil)
		}
		seen[c.Name] = struct{}{}
	}
	return file.Cases, nil
}
