package config

import (
	"context"
	"errors"
	"log"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

const reloadDebounce = 200 * time.Millisecond

// Runtime is the live view of the configuration. Handlers and middleware read
// through it so a config reload takes effect without a restart.
type Runtime struct {
	mu  sync.RWMutex
	cfg *Config
	loc *time.Location
}

// NewRuntime wraps a loaded config.
func NewRuntime(cfg *Config) *Runtime {
	return &Runtime{cfg: cfg, loc: cfg.location()}
}

// Reload swaps in a freshly loaded config.
func (r *Runtime) Reload(cfg *Config) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cfg = cfg
	r.loc = cfg.location()
}

// JWTSecret returns the token signing secret. The secret is not required at
// startup; only the first operation that needs it fails when it is missing.
func (r *Runtime) JWTSecret() (string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.cfg.JWTSecret == "" {
		return "", errors.New("JWT_SECRET environment variable is not set")
	}
	return r.cfg.JWTSecret, nil
}

// AllowedDomains returns the hostname suffixes the URL validator accepts.
func (r *Runtime) AllowedDomains() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if len(r.cfg.AllowedDomains) == 0 {
		return []string{"daktela.com"}
	}
	return r.cfg.AllowedDomains
}

// Daktela returns the static backend credentials.
func (r *Runtime) Daktela() DaktelaConfig {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.cfg.Daktela
}

// Location returns the timezone the backend's naive timestamps are parsed in.
func (r *Runtime) Location() *time.Location {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.loc
}

// Transport returns the configured transport ("stdio" or "http").
func (r *Runtime) Transport() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.cfg.Transport
}

// HTTPPort returns the HTTP listen port.
func (r *Runtime) HTTPPort() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.cfg.HTTPPort
}

// LogFile returns the log file path. Empty disables file logging, as do the
// explicit values "none" and "off".
func (r *Runtime) LogFile() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	lf := r.cfg.LogFile
	if lf == "none" || lf == "off" {
		return ""
	}
	return lf
}

// CacheEnabled reports whether the reference-data cache is on.
func (r *Runtime) CacheEnabled() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.cfg.Cache.Enabled
}

// CacheTTL returns the reference-data cache TTL.
func (r *Runtime) CacheTTL() time.Duration {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ttl := r.cfg.Cache.TTLSeconds
	if ttl <= 0 {
		ttl = 3600
	}
	return time.Duration(ttl) * time.Second
}

// CacheBackend returns the configured cache backend name.
func (r *Runtime) CacheBackend() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.cfg.Cache.Backend == "" {
		return "memory"
	}
	return r.cfg.Cache.Backend
}

// ValkeyURL returns the valkey connection URL for the shared cache backend.
func (r *Runtime) ValkeyURL() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.cfg.Cache.ValkeyURL
}

// Watch re-reads the config file whenever it changes and swaps the runtime
// view. Environment overrides are re-applied after each reload so they keep
// precedence. Returns when ctx is cancelled. If the watcher cannot be set up
// the config simply stays fixed.
func (r *Runtime) Watch(ctx context.Context, path string, logger *log.Logger) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		logger.Printf("config watch: fsnotify init failed (%v), config is fixed", err)
		return
	}
	defer watcher.Close()

	watchDir := filepath.Dir(path)
	name := filepath.Base(path)
	if err := watcher.Add(watchDir); err != nil {
		logger.Printf("config watch: cannot watch %s (%v), config is fixed", watchDir, err)
		return
	}

	var mu sync.Mutex
	var debounce *time.Timer
	reload := func() {
		cfg, err := LoadConfig(path)
		if err != nil {
			logger.Printf("config watch: reload failed: %v", err)
			return
		}
		cfg.ApplyEnv()
		r.Reload(cfg)
		logger.Printf("config reloaded from %s", path)
	}

	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if filepath.Base(event.Name) != name {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			mu.Lock()
			if debounce != nil {
				debounce.Stop()
			}
			debounce = time.AfterFunc(reloadDebounce, reload)
			mu.Unlock()
		case _, ok := <-watcher.Errors:
			if !ok {
				return
			}
		}
	}
}
