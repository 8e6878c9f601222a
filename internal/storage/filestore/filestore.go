// Package filestore keeps profiles and spawn stations in plain files:
// one two-line file per player under PlayerData/ and the station list in
// homes.yml.
package filestore

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/udisondev/homestations/internal/storage"
)

const (
	playerDataDir = "PlayerData"
	homesFile     = "homes.yml"
)

// homes is the layout of homes.yml.
type homes struct {
	Homes struct {
		SpawnStations    []string `yaml:"Spawn Stations"`
		MainSpawnStation string   `yaml:"Main Spawn Station"`
	} `yaml:"Homes"`
}

// Store implements storage.LineStore and storage.StationStore on disk.
type Store struct {
	dir string
	mu  sync.Mutex
}

// New creates a Store rooted at dir, creating the directories it needs.
func New(dir string) (*Store, error) {
	if err := os.MkdirAll(filepath.Join(dir, playerDataDir), 0o755); err != nil {
		return nil, fmt.Errorf("creating data dir %s: %w", dir, err)
	}
	return &Store{dir: dir}, nil
}

// ReadLines implements storage.LineStore.
func (s *Store) ReadLines(ctx context.Context, key string) ([]string, error) {
	path, err := s.playerPath(key)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("reading player data %s: %w", key, err)
	}

	text := strings.ReplaceAll(string(data), "\r\n", "\n")
	text = strings.TrimSuffix(text, "\n")
	if text == "" {
		return nil, nil
	}
	return strings.Split(text, "\n"), nil
}

// WriteLines implements storage.LineStore.
func (s *Store) WriteLines(ctx context.Context, key string, lines []string) error {
	path, err := s.playerPath(key)
	if err != nil {
		return err
	}
	if err := writeFile(path, []byte(strings.Join(lines, "\n")+"\n")); err != nil {
		return fmt.Errorf("writing player data %s: %w", key, err)
	}
	return nil
}

// Exists implements storage.LineStore.
func (s *Store) Exists(ctx context.Context, key string) (bool, error) {
	path, err := s.playerPath(key)
	if err != nil {
		return false, err
	}
	_, err = os.Stat(path)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, os.ErrNotExist):
		return false, nil
	default:
		return false, fmt.Errorf("checking player data %s: %w", key, err)
	}
}

// Delete implements storage.LineStore.
func (s *Store) Delete(ctx context.Context, key string) error {
	path, err := s.playerPath(key)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("deleting player data %s: %w", key, err)
	}
	return nil
}

// LoadStations implements storage.StationStore. A missing file is an
// empty registry.
func (s *Store) LoadStations(ctx context.Context) (storage.StationRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(filepath.Join(s.dir, homesFile))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return storage.StationRecord{Main: storage.NotSet}, nil
		}
		return storage.StationRecord{}, fmt.Errorf("reading %s: %w", homesFile, err)
	}

	var h homes
	if err := yaml.Unmarshal(data, &h); err != nil {
		return storage.StationRecord{}, fmt.Errorf("parsing %s: %w", homesFile, err)
	}
	return storage.StationRecord{
		Spawns: h.Homes.SpawnStations,
		Main:   h.Homes.MainSpawnStation,
	}, nil
}

// SaveStations implements storage.StationStore.
func (s *Store) SaveStations(ctx context.Context, rec storage.StationRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var h homes
	h.Homes.SpawnStations = rec.Spawns
	if h.Homes.SpawnStations == nil {
		h.Homes.SpawnStations = []string{}
	}
	h.Homes.MainSpawnStation = rec.Main
	if h.Homes.MainSpawnStation == "" {
		h.Homes.MainSpawnStation = storage.NotSet
	}

	data, err := yaml.Marshal(&h)
	if err != nil {
		return fmt.Errorf("encoding %s: %w", homesFile, err)
	}
	if err := writeFile(filepath.Join(s.dir, homesFile), data); err != nil {
		return fmt.Errorf("writing %s: %w", homesFile, err)
	}
	return nil
}

func (s *Store) playerPath(key string) (string, error) {
	if key == "" || key == "." || key == ".." || strings.ContainsAny(key, `/\`) {
		return "", fmt.Errorf("invalid player data key %q", key)
	}
	return filepath.Join(s.dir, playerDataDir, key), nil
}

// writeFile replaces path through a temp file so readers never see a
// partial write.
func writeFile(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".tmp*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}
