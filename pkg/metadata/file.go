package metadata

import (
	"encoding/json"
	"os"
	"path"
	"sync"

	"github.com/pkg/errors"
)

const metadataFileName = "metadata.json"

// File stores metadata as a single JSON document in the suite output
// directory. It needs no external service, making it the default backend.
type File struct {
	suiteID string
	path    string

	mu    sync.Mutex
	kinds map[string]map[string]string
}

type fileDocument struct {
	SuiteID string                       `json:"suite_id"`
	Kinds   map[string]map[string]string `json:"metadata"`
}

// NewFile returns a file backend writing to outputDir/metadata.json.
func NewFile(suiteID, outputDir string) (Metadata, error) {
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return nil, errors.Wrapf(err, "cannot create metadata output directory %q", outputDir)
	}
	return &File{
		suiteID: suiteID,
		path:    path.Join(outputDir, metadataFileName),
		kinds:   map[string]map[string]string{},
	}, nil
}

// Record stores a key and value and associates them with the suite id.
func (f *File) Record(key, value, kind string) error {
	return f.RecordMap(map[string]string{key: value}, kind)
}

// RecordMap stores a key and value map and associates it with the suite id.
// The whole document is rewritten on every call so a crash never loses more
// than the last map.
func (f *File) RecordMap(metadata map[string]string, kind string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	merged, ok := f.kinds[kind]
	if !ok {
		merged = map[string]string{}
		f.kinds[kind] = merged
	}
	for key, value := range metadata {
		merged[key] = value
	}
	return f.flush()
}

// GetByKind retrieves a single metadata kind from the store.
func (f *File) GetByKind(kind string) (map[string]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	stored, ok := f.kinds[kind]
	if !ok {
		return nil, errors.Errorf("no metadata of kind %q for suite %q", kind, f.suiteID)
	}
	out := map[string]string{}
	for key, value := range stored {
		out[key] = value
	}
	return out, nil
}

// Clear deletes all metadata entries associated with the current suite id.
func (f *File) Clear() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.kinds = map[string]map[string]string{}
	return errors.Wrapf(os.RemoveAll(f.path), "cannot remove metadata file %q", f.path)
}

func (f *File) flush() error {
	data, err := json.MarshalIndent(fileDocument{SuiteID: f.suiteID, Kinds: f.kinds}, "", "  ")
	if err != nil {
		return errors.Wrap(err, "cannot marshal metadata")
	}
	return errors.Wrapf(os.WriteFile(f.path, data, 0644), "cannot write metadata file %q", f.path)
}
