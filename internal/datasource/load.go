package datasource

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	json "github.com/goccy/go-json"

	"github.com/tiohsa/flowboard/pkg/model"
)

// LoadSnapshot loads a board snapshot from an explicit file path,
// dispatching on the file extension.
func LoadSnapshot(path string) (*model.BoardSnapshot, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	src := DataSource{Path: abs, Type: SourceTypeJSON}
	if strings.HasSuffix(abs, ".db") || strings.HasSuffix(abs, ".sqlite") {
		src.Type = SourceTypeSQLite
	}
	return LoadFromSource(src)
}

// LoadBest performs smart multi-source detection and loading. It
// discovers all available sources in dir, validates them, selects the
// freshest valid one, and loads the snapshot from it. SQLite is
// preferred over JSON when both exist at comparable freshness.
func LoadBest(dir string) (*model.BoardSnapshot, DataSource, error) {
	sources, err := DiscoverSources(DiscoveryOptions{
		BoardDir:               dir,
		ValidateAfterDiscovery: true,
		IncludeInvalid:         false,
	})
	if err != nil {
		return nil, DataSource{}, err
	}
	if len(sources) == 0 {
		return nil, DataSource{}, fmt.Errorf("no valid sources discovered in %s", dir)
	}

	best, err := SelectBestSource(sources)
	if err != nil {
		return nil, DataSource{}, err
	}

	snap, err := LoadFromSource(best)
	if err != nil {
		return nil, DataSource{}, err
	}
	return snap, best, nil
}

// LoadFromSource loads a snapshot from a specific DataSource, dispatching
// to the appropriate reader based on source type.
func LoadFromSource(source DataSource) (*model.BoardSnapshot, error) {
	switch source.Type {
	case SourceTypeSQLite:
		reader, err := NewSQLiteReader(source)
		if err != nil {
			return nil, fmt.Errorf("failed to open SQLite source %s: %w", source.Path, err)
		}
		defer reader.Close()
		return reader.LoadSnapshot()

	case SourceTypeJSON:
		return loadJSONSnapshot(source.Path)

	default:
		return nil, fmt.Errorf("unknown source type: %s", source.Type)
	}
}

// loadJSONSnapshot reads and validates a JSON snapshot file.
func loadJSONSnapshot(path string) (*model.BoardSnapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading snapshot: %w", err)
	}

	var snap model.BoardSnapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("parsing snapshot %s: %w", path, err)
	}
	if err := snap.Validate(); err != nil {
		return nil, fmt.Errorf("invalid snapshot %s: %w", path, err)
	}
	return &snap, nil
}
