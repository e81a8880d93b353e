// Package scenario loads declarative case files into static scenario content.
package scenario

import (
	"fmt"
	"io"
	"strings"

	"github.com/myrjola/interrogation/internal/errors"
	"github.com/myrjola/interrogation/internal/models"
	"gopkg.in/yaml.v3"
)

// Case is the authoring format of a scenario. JSON files parse too since JSON is a subset of YAML.
type Case struct {
	Title       string     `yaml:"title"`
	Description string     `yaml:"description"`
	CaseSummary string     `yaml:"case_summary"`
	Culprit     string     `yaml:"culprit"`
	Suspects    []Suspect  `yaml:"suspects"`
	Evidence    []Evidence `yaml:"evidence"`
	Secrets     []Secret   `yaml:"secrets"`
}

type Suspect struct {
	Name             string `yaml:"name"`
	Backstory        string `yaml:"backstory"`
	InitialStatement string `yaml:"initial_statement"`
	FinalPhrase      string `yaml:"final_phrase"`
}

type Evidence struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	Mandatory   bool   `yaml:"mandatory"`
}

// Secret references its suspect and evidence by name.
type Secret struct {
	Suspect  string `yaml:"suspect"`
	Evidence string `yaml:"evidence"`
	Content  string `yaml:"content"`
	Core     bool   `yaml:"core"`
}

// Parse decodes a case file. Unknown fields are rejected to catch typos early.
func Parse(r io.Reader) (*Case, error) {
	var c Case
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&c); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.Wrap(models.ErrInvalidInput, "empty case file")
		}
		return nil, errors.Wrap(errors.Join(models.ErrInvalidInput, err), "decode case file")
	}
	return &c, nil
}

// Validate reports every problem of the case at once.
func (c *Case) Validate() error {
	var problems []error
	problem := func(format string, args ...any) {
		problems = append(problems, errors.New(fmt.Sprintf(format, args...)))
	}

	if strings.TrimSpace(c.Title) == "" {
		problem("title is empty")
	}
	if len(c.Suspects) == 0 {
		problem("case has no suspects")
	}

	suspects := make(map[string]bool, len(c.Suspects))
	for i, s := range c.Suspects {
		switch {
		case strings.TrimSpace(s.Name) == "":
			problem("suspect %d has no name", i)
		case suspects[s.Name]:
			problem("suspect %q is defined twice", s.Name)
		}
		suspects[s.Name] = true
	}

	evidence := make(map[string]bool, len(c.Evidence))
	for i, e := range c.Evidence {
		switch {
		case strings.TrimSpace(e.Name) == "":
			problem("evidence %d has no name", i)
		case evidence[e.Name]:
			problem("evidence %q is defined twice", e.Name)
		}
		evidence[e.Name] = true
	}

	switch {
	case strings.TrimSpace(c.Culprit) == "":
		problem("culprit is not set")
	case !suspects[c.Culprit]:
		problem("culprit %q is not a suspect", c.Culprit)
	}

	for i, s := range c.Secrets {
		if !suspects[s.Suspect] {
			problem("secret %d references unknown suspect %q", i, s.Suspect)
		}
		if !evidence[s.Evidence] {
			problem("secret %d references unknown evidence %q", i, s.Evidence)
		}
		if strings.TrimSpace(s.Content) == "" {
			problem("secret %d has no content", i)
		}
	}

	if len(problems) > 0 {
		return errors.Wrap(errors.Join(append([]error{models.ErrInvalidInput}, problems...)...), "validate case",
			slogTitle(c.Title))
	}
	return nil
}
