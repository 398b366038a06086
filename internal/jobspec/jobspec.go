// Package jobspec loads the family's job description from a YAML file
// and renders it into the text the scorer evaluates against.
package jobspec

import (
	"os"
	"strings"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

// Spec is the top-level job description.
type Spec struct {
	Title        string   `yaml:"title"`
	Family       Family   `yaml:"family"`
	Schedule     Schedule `yaml:"schedule"`
	Address      string   `yaml:"address"`
	Duties       []string `yaml:"duties"`
	Requirements []string `yaml:"requirements"`
	NiceToHave   []string `yaml:"nice_to_have"`
	Notes        string   `yaml:"notes"`
}

// Family describes who the nanny works for.
type Family struct {
	Children []Child `yaml:"children"`
	Pets     string  `yaml:"pets,omitempty"`
}

// Child is one child with an age expressed as free text
// ("2 года", "8 месяцев").
type Child struct {
	Age   string `yaml:"age"`
	Notes string `yaml:"notes,omitempty"`
}

// Schedule describes the working hours.
type Schedule struct {
	Days  string `yaml:"days"`
	Hours string `yaml:"hours"`
}

// Load reads a job spec from a YAML file.
func Load(path string) (*Spec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "jobspec: read %s", path)
	}

	// The YAML has a top-level "job" key.
	var wrapper struct {
		Job Spec `yaml:"job"`
	}
	if err := yaml.Unmarshal(data, &wrapper); err != nil {
		return nil, eris.Wrap(err, "jobspec: parse")
	}

	spec := &wrapper.Job
	if spec.Title == "" && len(spec.Family.Children) == 0 && len(spec.Requirements) == 0 {
		return nil, eris.Errorf("jobspec: %s has no job section", path)
	}
	return spec, nil
}

// Render produces the plain-text job description fed to the scorer.
func (s *Spec) Render() string {
	var b strings.Builder

	if s.Title != "" {
		b.WriteString(s.Title)
		b.WriteString("\n\n")
	}

	if len(s.Family.Children) > 0 {
		b.WriteString("Children:\n")
		for _, c := range s.Family.Children {
			b.WriteString("- ")
			b.WriteString(c.Age)
			if c.Notes != "" {
				b.WriteString(" (")
				b.WriteString(c.Notes)
				b.WriteString(")")
			}
			b.WriteString("\n")
		}
	}
	if s.Family.Pets != "" {
		b.WriteString("Pets: ")
		b.WriteString(s.Family.Pets)
		b.WriteString("\n")
	}

	if s.Schedule.Days != "" || s.Schedule.Hours != "" {
		b.WriteString("Schedule: ")
		b.WriteString(strings.TrimSpace(s.Schedule.Days + " " + s.Schedule.Hours))
		b.WriteString("\n")
	}
	if s.Address != "" {
		b.WriteString("Location: ")
		b.WriteString(s.Address)
		b.WriteString("\n")
	}

	writeList(&b, "Duties", s.Duties)
	writeList(&b, "Requirements", s.Requirements)
	writeList(&b, "Nice to have", s.NiceToHave)

	if s.Notes != "" {
		b.WriteString("\n")
		b.WriteString(s.Notes)
		b.WriteString("\n")
	}

	return strings.TrimSpace(b.String())
}

func writeList(b *strings.Builder, heading string, items []string) {
	if len(items) == 0 {
		return
	}
	b.WriteString(heading)
	b.WriteString(":\n")
	for _, it := range items {
		b.WriteString("- ")
		b.WriteString(it)
		b.WriteString("\n")
	}
}
