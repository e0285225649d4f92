package settings

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// FileStore keeps the settings in a JSON file.
type FileStore struct {
	path string
}

func NewFileStore(path string) *FileStore {
	return &FileStore{
		path: path,
	}
}

func (f *FileStore) Path() string {
	return f.path
}

// Load returns empty settings if the file does not exist.
func (f *FileStore) Load(ctx context.Context) (*Settings, error) {
	b, err := os.ReadFile(f.path)
	if os.IsNotExist(err) {
		return &Settings{}, nil
	} else if err != nil {
		return nil, err
	}

	s := Settings{}
	if err := json.Unmarshal(b, &s); err != nil {
		return nil, fmt.Errorf("invalid settings file %v (%w)", f.path, err)
	}

	return &s, nil
}

// Save writes the settings to a temporary file and renames it over the original.
func (f *FileStore) Save(ctx context.Context, s *Settings) error {
	b, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return err
	}

	dir := filepath.Dir(f.path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(f.path)+".*")
	if err != nil {
		return err
	}

	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(b); err != nil {
		tmp.Close()
		return err
	}

	if err := tmp.Close(); err != nil {
		return err
	}

	if err := os.Chmod(tmp.Name(), 0600); err != nil {
		return err
	}

	return os.Rename(tmp.Name(), f.path)
}
