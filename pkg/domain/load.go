package domain

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// File is the on-disk description of a domain and of the parties' declared
// preference profiles.
type File struct {
	Name     string             `yaml:"name"`
	Issues   []IssueSpec        `yaml:"issues"`
	Profiles map[string]Profile `yaml:"profiles,omitempty"`
}

// IssueSpec describes one issue in a domain file.
type IssueSpec struct {
	Name   string   `yaml:"name"`
	Values []string `yaml:"values"`
}

// Profile declares an additive utility function: a weight per issue and an
// evaluation per issue value. Evaluations are normalized per issue when used.
type Profile struct {
	Weights map[string]float64            `yaml:"weights"`
	Values  map[string]map[string]float64 `yaml:"values"`
}

// LoadFile reads and parses a domain file.
func LoadFile(path string) (*File, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return Parse(b)
}

// Parse decodes a domain file from YAML.
func Parse(b []byte) (*File, error) {
	var f File
	if err := yaml.Unmarshal(b, &f); err != nil {
		return nil, fmt.Errorf("parse domain: %w", err)
	}
	return &f, nil
}

// Build validates the file and returns its Domain.
func (f *File) Build() (*Domain, error) {
	issues := make([]Issue, 0, len(f.Issues))
	for _, is := range f.Issues {
		values := make([]Value, len(is.Values))
		for i, v := range is.Values {
			values[i] = Value(v)
		}
		issues = append(issues, Issue{Name: is.Name, Values: values})
	}
	d, err := New(f.Name, issues)
	if err != nil {
		return nil, fmt.Errorf("build domain %q: %w", f.Name, err)
	}
	return d, nil
}

// Profile returns the named profile.
func (f *File) Profile(name string) (Profile, bool) {
	p, ok := f.Profiles[name]
	return p, ok
}
