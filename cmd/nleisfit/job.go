package main

import (
	"bytes"
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/yuefan98/NLEIS-Toolbox/fit"
)

var errBadJob = errors.New("malformed job file")

// fitJob describes one fitting run. A job with only EIS data and circuit_1
// runs a single-spectrum fit; a job with both data files runs a simultaneous
// EIS/2nd-NLEIS fit.
type fitJob struct {
	EISData   string `yaml:"eis_data"`
	NLEISData string `yaml:"nleis_data,omitempty"`

	Circuit1 string `yaml:"circuit_1"`
	Circuit2 string `yaml:"circuit_2,omitempty"`
	Edited   string `yaml:"edited_circuit,omitempty"`

	Initial    []float64          `yaml:"initial"`
	Constants1 map[string]float64 `yaml:"constants_1,omitempty"`
	Constants2 map[string]float64 `yaml:"constants_2,omitempty"`

	Lower []float64 `yaml:"lower,omitempty"`
	Upper []float64 `yaml:"upper,omitempty"`

	Cost          float64 `yaml:"cost,omitempty"`
	MaxFreq       float64 `yaml:"max_f,omitempty"`
	KeepInductive bool    `yaml:"keep_inductive,omitempty"`
	Objective     string  `yaml:"objective,omitempty"`

	// PlotDir, when set, receives Nyquist overlays of data and fit.
	PlotDir string `yaml:"plot_dir,omitempty"`
}

func loadJob(path string) (*fitJob, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("unable to read job file: %w", err)
	}

	var job fitJob
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&job); err != nil {
		return nil, fmt.Errorf("unable to parse job file %s: %w", path, err)
	}

	if err := job.validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return &job, nil
}

func (j *fitJob) validate() error {
	if j.EISData == "" {
		return fmt.Errorf("%w: eis_data is required", errBadJob)
	}
	if j.Circuit1 == "" {
		return fmt.Errorf("%w: circuit_1 is required", errBadJob)
	}
	if len(j.Initial) == 0 {
		return fmt.Errorf("%w: initial guess is required", errBadJob)
	}
	if j.simultaneous() {
		if j.Circuit2 == "" {
			return fmt.Errorf("%w: circuit_2 is required with nleis_data", errBadJob)
		}
		if j.Edited == "" {
			return fmt.Errorf("%w: edited_circuit is required with nleis_data", errBadJob)
		}
	}
	switch j.Objective {
	case "", "max", "neglog":
	default:
		return fmt.Errorf("%w: unknown objective %q (want max or neglog)", errBadJob, j.Objective)
	}
	return nil
}

func (j *fitJob) simultaneous() bool { return j.NLEISData != "" }

func (j *fitJob) config() fit.Config {
	cfg := fit.Config{
		Cost:          j.Cost,
		MaxFreq:       j.MaxFreq,
		KeepInductive: j.KeepInductive,
		Lower:         j.Lower,
		Upper:         j.Upper,
	}
	if j.Objective == "neglog" {
		cfg.Objective = fit.ObjectiveNegLogLikelihood
	}
	return cfg
}
