// Package source loads scaling candidates from external inputs.
package source

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"

	"github.com/sells-group/scaling-cli/internal/model"
)

// candidateFile is the on-disk document shape. A bare top-level array is also
// accepted.
type candidateFile struct {
	Candidates []model.Candidate `json:"candidates" yaml:"candidates"`
}

// LoadFile reads candidates from a JSON or YAML file, keyed off the file
// extension. Every candidate must carry an id and a non-negative revenue.
func LoadFile(path string) ([]model.Candidate, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "source: read %s", path)
	}

	var candidates []model.Candidate
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		candidates, err = decodeYAML(data)
	case ".json":
		candidates, err = decodeJSON(data)
	default:
		return nil, eris.Errorf("source: unsupported file extension %q", ext)
	}
	if err != nil {
		return nil, eris.Wrapf(err, "source: decode %s", path)
	}

	if err := Validate(candidates); err != nil {
		return nil, err
	}
	return candidates, nil
}

func decodeJSON(data []byte) ([]model.Candidate, error) {
	var doc candidateFile
	if err := json.Unmarshal(data, &doc); err == nil && doc.Candidates != nil {
		return doc.Candidates, nil
	}

	var bare []model.Candidate
	if err := json.Unmarshal(data, &bare); err != nil {
		return nil, err
	}
	return bare, nil
}

func decodeYAML(data []byte) ([]model.Candidate, error) {
	var doc candidateFile
	if err := yaml.Unmarshal(data, &doc); err == nil && doc.Candidates != nil {
		return doc.Candidates, nil
	}

	var bare []model.Candidate
	if err := yaml.Unmarshal(data, &bare); err != nil {
		return nil, err
	}
	return bare, nil
}

// Validate checks structural requirements on a candidate batch: unique
// non-empty ids and non-negative revenue figures.
func Validate(candidates []model.Candidate) error {
	seen := make(map[string]bool, len(candidates))
	for i, c := range candidates {
		if c.ID == "" {
			return eris.Errorf("source: candidate %d missing id", i)
		}
		if seen[c.ID] {
			return eris.Errorf("source: duplicate candidate id %q", c.ID)
		}
		seen[c.ID] = true

		if c.DailyRevenue < 0 {
			return eris.Errorf("source: candidate %q has negative revenue", c.ID)
		}
		for _, v := range c.History {
			if v < 0 {
				return eris.Errorf("source: candidate %q has negative history entry", c.ID)
			}
		}
	}
	return nil
}
