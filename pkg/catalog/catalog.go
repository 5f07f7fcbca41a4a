// Package catalog is the external collaborator that tracks which models
// exist, which engine family they belong to, and whether they have been
// downloaded to local disk. The transcription core only ever reads it.
package catalog

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/scribeline/transcribe-core/pkg/logger"
)

// EngineVariant discriminates which backend a model belongs to.
type EngineVariant string

const (
	Whisper  EngineVariant = "whisper"
	Parakeet EngineVariant = "parakeet"
)

// Descriptor is the read-only metadata the core consults when loading or
// switching models.
type Descriptor struct {
	ID            string        `json:"id"`
	DisplayName   string        `json:"display_name"`
	Engine        EngineVariant `json:"engine"`
	IsDownloaded  bool          `json:"is_downloaded"`
	OnDiskPath    string        `json:"on_disk_path"`
	AccuracyScore float64       `json:"accuracy_score"`
}

// Catalog is the interface the transcription core depends on. The default
// implementation below persists descriptors as JSON under the app's model
// directory; a host application may substitute its own implementation
// (e.g. one backed by a remote registry) without the core caring.
type Catalog interface {
	GetModelInfo(id string) (*Descriptor, bool)
	GetModelPath(id string) (string, error)
	GetAvailableModels() []Descriptor
}

// FileCatalog is the default Catalog, backed by a JSON file under the
// standard app directory, following the directory layout conventions of
// this project's ambient config package.
type FileCatalog struct {
	mu      sync.RWMutex
	entries map[string]Descriptor
	path    string
}

// NewFileCatalog loads (or creates empty) a catalog from modelDir/catalog.json.
func NewFileCatalog(modelDir string) (*FileCatalog, error) {
	path := filepath.Join(modelDir, "catalog.json")
	c := &FileCatalog{entries: make(map[string]Descriptor), path: path}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return c, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}

	var list []Descriptor
	if err := json.Unmarshal(data, &list); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}
	for _, d := range list {
		c.entries[d.ID] = d
	}
	logger.Debug(logger.CategoryCatalog, "loaded %d model descriptors from %s", len(c.entries), path)
	return c, nil
}

// Put inserts or replaces a descriptor and persists the catalog.
func (c *FileCatalog) Put(d Descriptor) error {
	c.mu.Lock()
	c.entries[d.ID] = d
	c.mu.Unlock()
	return c.save()
}

func (c *FileCatalog) save() error {
	c.mu.RLock()
	list := make([]Descriptor, 0, len(c.entries))
	for _, d := range c.entries {
		list = append(list, d)
	}
	c.mu.RUnlock()

	data, err := json.MarshalIndent(list, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal catalog: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(c.path), 0755); err != nil {
		return fmt.Errorf("create catalog dir: %w", err)
	}
	return os.WriteFile(c.path, data, 0644)
}

func (c *FileCatalog) GetModelInfo(id string) (*Descriptor, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	d, ok := c.entries[id]
	if !ok {
		return nil, false
	}
	return &d, true
}

func (c *FileCatalog) GetModelPath(id string) (string, error) {
	d, ok := c.GetModelInfo(id)
	if !ok {
		return "", fmt.Errorf("model %q not in catalog", id)
	}
	if !d.IsDownloaded {
		return "", fmt.Errorf("model %q not downloaded", id)
	}
	return d.OnDiskPath, nil
}

func (c *FileCatalog) GetAvailableModels() []Descriptor {
	c.mu.RLock()
	defer c.mu.RUnlock()
	list := make([]Descriptor, 0, len(c.entries))
	for _, d := range c.entries {
		list = append(list, d)
	}
	return list
}
