package worker

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// MarshalTemplateYAML renders a Template as YAML, for checking a template
// into a repo alongside the job it configures.
func MarshalTemplateYAML(t Template) ([]byte, error) {
	out, err := yaml.Marshal(t)
	if err != nil {
		return nil, fmt.Errorf("marshaling template %q: %w", t.TemplateID, err)
	}
	return out, nil
}

// UnmarshalTemplateYAML parses a Template previously written by
// MarshalTemplateYAML (or hand-authored by an operator).
func UnmarshalTemplateYAML(data []byte) (Template, error) {
	var t Template
	if err := yaml.Unmarshal(data, &t); err != nil {
		return Template{}, fmt.Errorf("unmarshaling template: %w", err)
	}
	if t.TemplateID == "" {
		return Template{}, fmt.Errorf("template is missing required templateId field")
	}
	return t, nil
}
