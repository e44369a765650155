package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/san-kum/beadsim/internal/config"
)

const (
	metadataFile = "metadata.json"
	configFile   = "config.yaml"
)

type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

type RunMetadata struct {
	ID            string             `json:"id"`
	Timestamp     time.Time          `json:"timestamp"`
	Seed          int64              `json:"seed"`
	Groups        int                `json:"groups"`
	BeadsPerGroup int                `json:"beads_per_group"`
	EndsOnly      bool               `json:"ends_only"`
	Frames        int                `json:"frames"`
	Captured      int                `json:"captured"`
	Backend       string             `json:"backend"`
	Workers       int                `json:"workers"`
	TotalNs       int64              `json:"total_ns"`
	MeanNs        int64              `json:"mean_ns"`
	Metrics       map[string]float64 `json:"metrics"`
}

// Create makes a fresh run directory and writes the run's configuration.
func (s *Store) Create(name string, cfg *config.Config) (string, string, error) {
	if name == "" {
		name = "run"
	}
	runID := fmt.Sprintf("%s_%d", name, time.Now().UnixNano())
	runDir := filepath.Join(s.baseDir, runID)

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", "", err
	}
	if err := config.Save(filepath.Join(runDir, configFile), cfg); err != nil {
		return "", "", fmt.Errorf("writing %s: %w", configFile, err)
	}
	return runID, runDir, nil
}

func (s *Store) RunDir(runID string) string {
	return filepath.Join(s.baseDir, runID)
}

func (s *Store) SaveMetadata(meta RunMetadata) error {
	f, err := os.Create(filepath.Join(s.RunDir(meta.ID), metadataFile))
	if err != nil {
		return err
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(meta)
}

func (s *Store) List() ([]RunMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []RunMetadata{}, nil
		}
		return nil, err
	}

	runs := make([]RunMetadata, 0)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}

		meta, err := s.Load(entry.Name())
		if err != nil {
			continue
		}
		runs = append(runs, *meta)
	}

	sort.Slice(runs, func(i, j int) bool {
		return runs[i].Timestamp.Before(runs[j].Timestamp)
	})
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.RunDir(runID), metadataFile))
	if err != nil {
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}
	return &meta, nil
}

func (s *Store) LoadConfig(runID string) (*config.Config, error) {
	return config.Load(filepath.Join(s.RunDir(runID), configFile))
}
