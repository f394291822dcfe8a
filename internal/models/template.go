package models

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// SurveyTemplate is a canned survey definition offered on the authoring
// form as a starting point.
type SurveyTemplate struct {
	Name      string             `yaml:"name" json:"name"`
	Title     string             `yaml:"title" json:"title"`
	Questions []TemplateQuestion `yaml:"questions" json:"questions"`
}

type TemplateQuestion struct {
	Text    string   `yaml:"text" json:"text"`
	Choices []string `yaml:"choices" json:"choices"`
}

// LoadSurveyTemplates reads and parses the survey templates file.
func LoadSurveyTemplates(path string) ([]SurveyTemplate, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read templates file: %w", err)
	}

	var parsed struct {
		Templates []SurveyTemplate `yaml:"templates"`
	}
	if err := yaml.Unmarshal(data, &parsed); err != nil {
		return nil, fmt.Errorf("failed to unmarshal templates YAML: %w", err)
	}

	return parsed.Templates, nil
}
