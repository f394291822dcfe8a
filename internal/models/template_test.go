package models

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadSurveyTemplates(t *testing.T) {
	path := filepath.Join(t.TempDir(), "templates.yaml")
	content := `templates:
  - name: team-retro
    title: "Sprint retrospective"
    questions:
      - text: "How did the sprint go overall?"
        choices: ["Great", "Okay", "Poorly"]
      - text: "Was the sprint scope realistic?"
        choices: ["Yes", "No"]
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write templates file: %v", err)
	}

	templates, err := LoadSurveyTemplates(path)
	if err != nil {
		t.Fatalf("LoadSurveyTemplates: %v", err)
	}
	if len(templates) != 1 {
		t.Fatalf("expected 1 template, got %d", len(templates))
	}
	tpl := templates[0]
	if tpl.Name != "team-retro" || tpl.Title != "Sprint retrospective" {
		t.Errorf("unexpected template header: %+v", tpl)
	}
	if len(tpl.Questions) != 2 {
		t.Fatalf("expected 2 questions, got %d", len(tpl.Questions))
	}
	if tpl.Questions[0].Text != "How did the sprint go overall?" {
		t.Errorf("unexpected first question: %q", tpl.Questions[0].Text)
	}
	if got := tpl.Questions[1].Choices; len(got) != 2 || got[0] != "Yes" {
		t.Errorf("unexpected choices for second question: %v", got)
	}
}

func TestLoadSurveyTemplatesMissingFile(t *testing.T) {
	if _, err := LoadSurveyTemplates(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestLoadSurveyTemplatesRejectsBadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "templates.yaml")
	if err := os.WriteFile(path, []byte("templates: [not-a-template"), 0o644); err != nil {
		t.Fatalf("write templates file: %v", err)
	}
	if _, err := LoadSurveyTemplates(path); err == nil {
		t.Fatal("expected error for malformed YAML")
	}
}
