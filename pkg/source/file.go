package source

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"anima-hq/tulpa/pkg/facts"
)

// entityFile is the YAML document shape for one entity.
type entityFile struct {
	ID       string        `yaml:"id"`
	Name     string        `yaml:"name"`
	Owner    string        `yaml:"owner"`
	Facts    []string      `yaml:"facts"`
	Defaults *defaultsFile `yaml:"defaults"`
}

type defaultsFile struct {
	Edit      string `yaml:"edit"`
	View      string `yaml:"view"`
	Use       string `yaml:"use"`
	Blacklist string `yaml:"blacklist"`
}

// FileSource loads entities from YAML files on disk.
type FileSource struct {
	path   string
	logger *slog.Logger
}

// NewFileSource creates a file-based entity source. The path can be a
// single file or a directory; for a directory, all .yaml and .yml files
// are loaded.
func NewFileSource(path string, logger *slog.Logger) *FileSource {
	if logger == nil {
		logger = slog.Default().With("component", "source")
	}
	return &FileSource{path: path, logger: logger}
}

// Load reads all entities from the configured path. Invalid files in a
// directory are skipped with a warning; a broken single file is an
// error.
func (s *FileSource) Load() ([]*facts.Entity, error) {
	info, err := os.Stat(s.path)
	if err != nil {
		return nil, fmt.Errorf("failed to stat path %q: %w", s.path, err)
	}

	var entities []*facts.Entity
	if info.IsDir() {
		entities, err = s.loadDirectory()
	} else {
		var e *facts.Entity
		e, err = s.loadFile(s.path)
		if e != nil {
			entities = []*facts.Entity{e}
		}
	}
	if err != nil {
		return nil, err
	}

	s.logger.Info("loaded entities from source",
		"path", s.path,
		"entity_count", len(entities),
	)
	return entities, nil
}

func (s *FileSource) loadDirectory() ([]*facts.Entity, error) {
	var entities []*facts.Entity

	err := filepath.Walk(s.path, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}
		ext := filepath.Ext(path)
		if ext != ".yaml" && ext != ".yml" {
			return nil
		}

		entity, err := s.loadFile(path)
		if err != nil {
			s.logger.Warn("failed to load entity file, skipping",
				"path", path,
				"error", err,
			)
			return nil
		}
		entities = append(entities, entity)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return entities, nil
}

func (s *FileSource) loadFile(path string) (*facts.Entity, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %q: %w", path, err)
	}

	var f entityFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse %q: %w", path, err)
	}
	if f.Name == "" {
		return nil, fmt.Errorf("entity file %q has no name", path)
	}
	if f.Owner == "" {
		return nil, fmt.Errorf("entity file %q has no owner", path)
	}

	id := f.ID
	if id == "" {
		// Stable fallback: the file name without extension.
		id = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}

	return &facts.Entity{
		ID:       id,
		Name:     f.Name,
		OwnerID:  f.Owner,
		Facts:    f.Facts,
		Defaults: parseDefaults(f.Defaults),
	}, nil
}

func parseDefaults(d *defaultsFile) *facts.Defaults {
	if d == nil {
		return nil
	}
	out := &facts.Defaults{}
	if d.Edit != "" {
		out.Edit = facts.ParseList(d.Edit)
	}
	if d.View != "" {
		out.View = facts.ParseList(d.View)
	}
	if d.Use != "" {
		out.Use = facts.ParseList(d.Use)
	}
	if d.Blacklist != "" {
		out.Blacklist = facts.ParseList(d.Blacklist).Entries
	}
	return out
}
