package report

import (
	"fmt"
	"sort"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/ginjaninja78/sales-data-processor/internal/source"
	"github.com/ginjaninja78/sales-data-processor/internal/types"
)

// summaryDocument is the YAML layout of a run summary.
type summaryDocument struct {
	RunID      string              `yaml:"run_id"`
	Source     string              `yaml:"source"`
	StartedAt  string              `yaml:"started_at"`
	FinishedAt string              `yaml:"finished_at"`
	Duration   string              `yaml:"duration"`
	Summary    types.Summary       `yaml:"summary"`
	Rejections map[string]int      `yaml:"rejections,omitempty"`
	Skipped    []source.Diagnostic `yaml:"skipped_rows,omitempty"`
}

// GenerateYAML renders the summary part of the report.
func GenerateYAML(r *Report) ([]byte, error) {
	doc := summaryDocument{
		RunID:      r.RunID,
		Source:     r.Source,
		StartedAt:  formatTime(r.StartedAt),
		FinishedAt: formatTime(r.FinishedAt),
		Duration:   r.FinishedAt.Sub(r.StartedAt).String(),
		Summary:    r.Summary,
		Rejections: r.Rejections,
		Skipped:    r.Skipped,
	}

	data, err := yaml.Marshal(&doc)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal summary: %w", err)
	}
	return data, nil
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(time.RFC3339)
}

// sortedRules returns the rule names of a breakdown in a stable order.
func sortedRules(m map[string]int) []string {
	rules := make([]string, 0, len(m))
	for rule := range m {
		rules = append(rules, rule)
	}
	sort.Strings(rules)
	return rules
}
