package workflowconfig

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"

	"gopkg.in/yaml.v3"
)

// CacheTTL is how long a parsed config is trusted before the loader
// re-reads disk on the next Load call for that directory.
const CacheTTL = 60 * time.Second

// FileName is the workflow YAML file the loader looks for within the
// configured directory.
const FileName = "workflow.yaml"

type cacheEntry struct {
	config    *WorkflowConfig
	expiresAt time.Time
}

// Loader is the config loader (C2). It is the only place in the system
// that reads workflow YAML off disk, and owns the process-wide,
// read-mostly, 60-second cache. The zero value is not usable; construct
// with NewLoader.
type Loader struct {
	mu    sync.RWMutex
	cache map[string]cacheEntry
}

// NewLoader constructs an empty, ready-to-use Loader.
func NewLoader() *Loader {
	return &Loader{cache: make(map[string]cacheEntry)}
}

// Load returns the workflow config for dir, consulting the cache first.
// A missing file, or one that fails to parse, both resolve to the
// bundled default: the caller never has to special-case "no config yet"
// versus "config is broken" - both look like DefaultWorkflow() with a
// logged warning in the latter case.
func (l *Loader) Load(dir string) (*WorkflowConfig, error) {
	key, err := filepath.Abs(dir)
	if err != nil {
		key = dir
	}

	l.mu.RLock()
	entry, ok := l.cache[key]
	l.mu.RUnlock()
	if ok && time.Now().Before(entry.expiresAt) {
		return entry.config, nil
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	// Double-check: another goroutine may have refreshed this key while
	// we waited for the write lock.
	if entry, ok := l.cache[key]; ok && time.Now().Before(entry.expiresAt) {
		return entry.config, nil
	}

	cfg := l.readAndParse(key)
	l.cache[key] = cacheEntry{config: cfg, expiresAt: time.Now().Add(CacheTTL)}
	return cfg, nil
}

// Reload forces the next Load call for dir to bypass the cache,
// regardless of TTL.
func (l *Loader) Reload(dir string) {
	key, err := filepath.Abs(dir)
	if err != nil {
		key = dir
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.cache, key)
}

func (l *Loader) readAndParse(dir string) *WorkflowConfig {
	path := filepath.Join(dir, FileName)
	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			log.Printf("workflowconfig: failed to read %s: %v; using default workflow", path, err)
		}
		return DefaultWorkflow()
	}

	var cfg WorkflowConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		log.Printf("workflowconfig: failed to parse %s: %v; using default workflow", path, err)
		return DefaultWorkflow()
	}

	normalize(&cfg)
	if err := validateFloor(&cfg); err != nil {
		log.Printf("workflowconfig: %s failed validation: %v; using default workflow", path, err)
		return DefaultWorkflow()
	}

	if cfg.AutoCascade.MaxDepth <= 0 {
		cfg.AutoCascade.MaxDepth = DefaultMaxCascadeDepth
	}

	return &cfg
}

// validateFloor enforces the config loader's mandatory floor: every
// container's default flow is non-empty, every flow referenced by a
// flow_mappings entry exists.
func validateFloor(cfg *WorkflowConfig) error {
	for _, ct := range []ContainerType{ContainerProject, ContainerFeature, ContainerTask} {
		flows := cfg.For(ct)
		if len(flows.DefaultFlow) == 0 {
			return fmt.Errorf("%s: default_flow must be non-empty", ct)
		}
		for _, m := range flows.FlowMappings {
			if _, ok := flows.NamedFlow(m.Flow); !ok {
				return fmt.Errorf("%s: flow_mappings references undefined flow %q", ct, m.Flow)
			}
		}
	}
	return nil
}
