package calcopp

import (
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/dewiedem/calcopp/internal/logger"
	"github.com/dewiedem/calcopp/internal/opp"
)

// Job is one conversion entry in a batch file.
type Job struct {
	Input       string  `yaml:"input"`
	Output      string  `yaml:"output"`
	Temperature float64 `yaml:"temperature"`
	Policy      string  `yaml:"policy"`   // min, max or custom
	Extremum    float64 `yaml:"extremum"` // custom policy only
}

// LoadJobs reads a YAML batch file: a list of jobs run in order.
func LoadJobs(path string) ([]Job, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var jobs []Job
	if err := yaml.Unmarshal(raw, &jobs); err != nil {
		return nil, fmt.Errorf("parse job file %s: %w", path, err)
	}
	return jobs, nil
}

// RunJobs converts each job sequentially, stopping at the first failure.
func RunJobs(jobs []Job, progress io.Writer, log logger.Logger) error {
	for i, job := range jobs {
		policy, err := opp.ParsePolicy(job.Policy)
		if err != nil {
			return fmt.Errorf("job %d: %w", i+1, err)
		}
		if progress != nil {
			fmt.Fprintf(progress, "=== Job %d of %d: %s ===\n", i+1, len(jobs), job.Input)
		}
		err = Convert(Options{
			InputPath:   job.Input,
			OutputPath:  job.Output,
			Temperature: job.Temperature,
			Policy:      policy,
			Extremum:    job.Extremum,
			Progress:    progress,
			Log:         log,
		})
		if err != nil {
			return fmt.Errorf("job %d (%s): %w", i+1, job.Input, err)
		}
	}
	return nil
}
