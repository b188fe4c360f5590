package eval

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// RunConfig represents the configuration section of the results YAML
type RunConfig struct {
	Strategy    string `yaml:"strategy"`
	Model       string `yaml:"model"`
	DatasetPath string `yaml:"datasetpath"`
	SampleSize  int    `yaml:"samplesize"`
	Timestamp   string `yaml:"timestamp"`
}

// RunReport represents the complete evaluation output
type RunReport struct {
	Config  RunConfig    `yaml:"config"`
	Summary Summary      `yaml:"summary"`
	Results []ItemResult `yaml:"results"`
}

// SaveToYAML saves evaluation results to a YAML file in the evals/ directory
// and returns the file path
func SaveToYAML(strategy, model, datasetPath string, results []ItemResult) (string, error) {
	if err := os.MkdirAll("evals", 0755); err != nil {
		return "", fmt.Errorf("failed to create evals directory: %w", err)
	}

	timestamp := time.Now().Format("2006-01-02_15-04-05")

	report := RunReport{
		Config: RunConfig{
			Strategy:    strategy,
			Model:       model,
			DatasetPath: datasetPath,
			SampleSize:  len(results),
			Timestamp:   timestamp,
		},
		Summary: Summarize(results),
		Results: results,
	}

	filename := fmt.Sprintf("evals/%s-%s.yaml", model, timestamp)

	data, err := yaml.Marshal(&report)
	if err != nil {
		return "", fmt.Errorf("failed to marshal YAML: %w", err)
	}

	if err := os.WriteFile(filename, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write YAML file: %w", err)
	}

	return filename, nil
}
