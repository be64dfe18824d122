package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/rvaldezm/docscope/internal/core/domain"
)

// LoadTriggers reads the static trigger table from a YAML file, preserving
// declaration order. Every entry must name a known category and a non-empty
// phrase.
func LoadTriggers(path string) ([]domain.Trigger, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read trigger table: %w", err)
	}

	var file struct {
		Triggers []domain.Trigger `yaml:"triggers"`
	}
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("parse trigger table: %w", err)
	}
	if len(file.Triggers) == 0 {
		return nil, fmt.Errorf("trigger table %s is empty", path)
	}

	for i, t := range file.Triggers {
		if _, err := domain.ParseCategory(string(t.Category)); err != nil {
			return nil, fmt.Errorf("trigger %d: %w", i, err)
		}
		if strings.TrimSpace(t.Phrase) == "" {
			return nil, fmt.Errorf("trigger %d: empty phrase for category %s", i, t.Category)
		}
	}
	return file.Triggers, nil
}

type reportFile struct {
	Forms map[string]struct {
		Prompt string `yaml:"prompt"`
		Schema string `yaml:"schema"`
	} `yaml:"forms"`
	Reports []struct {
		Kind     string            `yaml:"kind"`
		Slots    map[string]string `yaml:"slots"`
		Template string            `yaml:"template"`
	} `yaml:"reports"`
}

// LoadReportSpec reads form templates and report configurations. Form
// prompts must carry both substitution markers; report slots must refer to
// declared forms.
func LoadReportSpec(path string) (map[string]domain.FormTemplate, map[string]domain.ReportConfig, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("read report spec: %w", err)
	}

	var file reportFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return nil, nil, fmt.Errorf("parse report spec: %w", err)
	}

	forms := make(map[string]domain.FormTemplate, len(file.Forms))
	for name, f := range file.Forms {
		if !strings.Contains(f.Prompt, domain.SchemaPlaceholder) || !strings.Contains(f.Prompt, domain.TextPlaceholder) {
			return nil, nil, fmt.Errorf("form %s: prompt must contain %s and %s markers",
				name, domain.SchemaPlaceholder, domain.TextPlaceholder)
		}
		forms[name] = domain.FormTemplate{Prompt: f.Prompt, Schema: f.Schema}
	}

	reports := make(map[string]domain.ReportConfig, len(file.Reports))
	for _, r := range file.Reports {
		if r.Kind == "" {
			return nil, nil, fmt.Errorf("report with empty kind")
		}
		for slot, form := range r.Slots {
			if _, ok := forms[form]; !ok {
				return nil, nil, fmt.Errorf("report %s: slot %s references unknown form %s", r.Kind, slot, form)
			}
		}
		reports[r.Kind] = domain.ReportConfig{
			Kind:      r.Kind,
			SlotForms: r.Slots,
			Template:  r.Template,
		}
	}
	return forms, reports, nil
}
