// Package assets handles model loading and caching.
package assets

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/DmitriyVTitov/size"

	"github.com/Faultbox/voxgeo/pkg/formats"
	"github.com/Faultbox/voxgeo/pkg/voxel"
)

// Manager loads model files and caches the parsed meshes until the file
// changes on disk.
type Manager struct {
	cache *Cache
}

// NewManager creates a new asset manager.
func NewManager() *Manager {
	return &Manager{
		cache: NewCache(),
	}
}

// Load returns the meshes of the model at path. A cached copy is used
// while the file's size and modification time are unchanged. Callers must
// not modify the returned buffers.
func (m *Manager) Load(path string) ([]voxel.Mesh, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolving %s: %w", path, err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("opening model %s: %w", path, err)
	}
	stamp := Stamp{ModTime: info.ModTime(), Size: info.Size()}

	// Check cache first
	if meshes, ok := m.cache.Get(abs, stamp); ok {
		return meshes, nil
	}

	meshes, err := formats.LoadMeshes(abs)
	if err != nil {
		return nil, fmt.Errorf("loading model %s: %w", path, err)
	}
	m.cache.Set(abs, stamp, meshes)
	return meshes, nil
}

// Forget drops the cached copy of path.
func (m *Manager) Forget(path string) {
	if abs, err := filepath.Abs(path); err == nil {
		m.cache.Delete(abs)
	}
}

// Cache returns the underlying cache.
func (m *Manager) Cache() *Cache {
	return m.cache
}

// Stamp identifies one version of a file on disk.
type Stamp struct {
	ModTime time.Time
	Size    int64
}

type entry struct {
	stamp  Stamp
	meshes []voxel.Mesh
}

// Cache is a simple in-memory cache for loaded meshes.
type Cache struct {
	data map[string]entry
	mu   sync.Mutex

	// Stats
	hits   int
	misses int
}

// NewCache creates a new cache.
func NewCache() *Cache {
	return &Cache{
		data: make(map[string]entry),
	}
}

// Get retrieves the meshes for key if they were stored with stamp.
func (c *Cache) Get(key string, stamp Stamp) ([]voxel.Mesh, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.data[key]
	if ok && e.stamp.Size == stamp.Size && e.stamp.ModTime.Equal(stamp.ModTime) {
		c.hits++
		return e.meshes, true
	}
	c.misses++
	return nil, false
}

// Set stores meshes for key.
func (c *Cache) Set(key string, stamp Stamp, meshes []voxel.Mesh) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = entry{stamp: stamp, meshes: meshes}
}

// Delete removes key.
func (c *Cache) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.data, key)
}

// Len returns the number of cached files.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.data)
}

// Bytes returns the approximate memory held by cached meshes.
func (c *Cache) Bytes() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return size.Of(c.data)
}

// Clear clears the cache.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data = make(map[string]entry)
	c.hits = 0
	c.misses = 0
}

// Stats returns cache statistics.
func (c *Cache) Stats() (hits, misses int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.hits, c.misses
}
