/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: snapshot.go
Description: On-disk form of a fitted model. Everything a later prediction needs (schema,
compressed names and training texts, the normalised model text and maxd) is written as one
YAML document.
*/

package storage

import (
	"encoding/base64"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/kleascm/cubist-go/pkg/encoding"
	"github.com/kleascm/cubist-go/pkg/model"
	"gopkg.in/yaml.v3"
)

// SnapshotVersion is bumped whenever the snapshot layout changes
const SnapshotVersion = 1

// Snapshot is a persisted fitted model
type Snapshot struct {
	Version      int               `yaml:"version"`
	ID           string            `yaml:"id"`
	CreatedAt    time.Time         `yaml:"created_at"`
	Seed         int               `yaml:"seed"`
	Neighbors    int               `yaml:"neighbors"`
	Schema       *encoding.Schema  `yaml:"schema"`
	Names        Blob              `yaml:"names"`
	TrainingData Blob              `yaml:"training_data"`
	Model        string            `yaml:"model"`
	MaxDistance  model.NullFloat   `yaml:"maxd"`
	Usage        []model.UsageStat `yaml:"usage"`
	Variables    model.Summary     `yaml:"variables"`
}

// MarshalYAML writes the blob as base64
func (b Blob) MarshalYAML() (interface{}, error) {
	return base64.StdEncoding.EncodeToString(b), nil
}

// UnmarshalYAML reads a base64 blob
func (b *Blob) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	raw, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return fmt.Errorf("decode blob: %w", err)
	}
	*b = raw
	return nil
}

// Save writes the snapshot to path, creating parent directories
func Save(path string, s *Snapshot) error {
	if s.Version == 0 {
		s.Version = SnapshotVersion
	}
	data, err := yaml.Marshal(s)
	if err != nil {
		return fmt.Errorf("failed to marshal snapshot: %w", err)
	}
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create snapshot directory: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write snapshot: %w", err)
	}
	return nil
}

// Load reads a snapshot written by Save
func Load(path string) (*Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read snapshot: %w", err)
	}
	var s Snapshot
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("failed to parse snapshot: %w", err)
	}
	if s.Version != SnapshotVersion {
		return nil, fmt.Errorf("unsupported snapshot version %d", s.Version)
	}
	if s.Schema == nil {
		return nil, fmt.Errorf("snapshot has no schema")
	}
	return &s, nil
}
