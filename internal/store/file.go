package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path"

	"github.com/madhava696/EACA/internal/conversation"
)

// FileStore implements Store using the OS file system, one JSON file per
// conversation key.
type FileStore struct {
	dir string // The directory keys will be relative to
}

func NewFileStore(dir string) (FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return FileStore{}, fmt.Errorf("failed to create store directory: %w", err)
	}
	return FileStore{dir: dir}, nil
}

func (fs FileStore) Get(_ context.Context, key string) ([]conversation.Turn, error) {
	b, err := os.ReadFile(path.Join(fs.dir, key+".json"))
	if errors.Is(err, os.ErrNotExist) {
		// The file doesn't exist so nothing is stored at this key
		return nil, nil
	} else if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	var turns []conversation.Turn
	if err := json.Unmarshal(b, &turns); err != nil {
		return nil, fmt.Errorf("failed to unmarshal conversation: %w", err)
	}
	return turns, nil
}

func (fs FileStore) Set(_ context.Context, key string, turns []conversation.Turn) error {
	b, err := json.Marshal(turns)
	if err != nil {
		return fmt.Errorf("failed to marshal conversation: %w", err)
	}
	if err := os.WriteFile(path.Join(fs.dir, key+".json"), b, 0o666); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}
	return nil
}

func (fs FileStore) Delete(_ context.Context, key string) error {
	err := os.Remove(path.Join(fs.dir, key+".json"))
	if errors.Is(err, os.ErrNotExist) {
		return nil
	} else if err != nil {
		return fmt.Errorf("failed to delete file: %w", err)
	}
	return nil
}
