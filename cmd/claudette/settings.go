package main

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Settings are the user-tunable globals read from <home>/config.yaml.
// A missing file means all defaults; a malformed file is an error rather
// than a silent fallback.
type Settings struct {
	RepoURL       string `yaml:"repo_url"`
	DefaultBranch string `yaml:"default_branch"`
	PythonVersion string `yaml:"python_version"`
	DoctorJobs    int    `yaml:"doctor_jobs"`
}

func defaultSettings() *Settings {
	return &Settings{
		RepoURL:       "https://github.com/apache/superset.git",
		DefaultBranch: "master",
		PythonVersion: "python3.11",
		DoctorJobs:    4,
	}
}

// loadSettings reads config.yaml from path, applying defaults for any
// field the file leaves unset.
func loadSettings(path string) (*Settings, error) {
	s := defaultSettings()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return s, nil
		}
		return nil, fmt.Errorf("read settings: %w", err)
	}

	var file Settings
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if file.RepoURL != "" {
		s.RepoURL = file.RepoURL
	}
	if file.DefaultBranch != "" {
		s.DefaultBranch = file.DefaultBranch
	}
	if file.PythonVersion != "" {
		s.PythonVersion = file.PythonVersion
	}
	if file.DoctorJobs > 0 {
		s.DoctorJobs = file.DoctorJobs
	}
	return s, nil
}
