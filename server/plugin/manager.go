package plugin

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	goplugin "plugin"
	"runtime/debug"
	"slices"
	"strings"
	"sync"

	"github.com/df-mc/dragonfly/server/player"
	"github.com/df-mc/dragonfly/server/world"
)

var pluginFactorySymbols = []string{"InitPlugin", "Init", "NewPlugin", "New"}

type pluginInstance struct {
	name    string
	version string
	path    string
	plugin  Plugin
	api     *API
	cancel  context.CancelFunc
}

func (pi pluginInstance) info() Info {
	return Info{Name: pi.name, Version: pi.version, Path: pi.path}
}

type linkedFactory struct {
	name    string
	factory Factory
}

// Manager coordinates plugin loading and lifecycle management.
type Manager struct {
	host       Host
	cfg        Config
	log        *slog.Logger
	runtimeLog *slog.Logger

	once    sync.Once
	mu      sync.RWMutex
	linked  []linkedFactory
	plugins []pluginInstance
	events  *eventHub
}

// NewManager constructs a Manager using the provided host and configuration snapshot.
func NewManager(host Host, cfg Config) *Manager {
	manager := &Manager{
		host: host,
		cfg: Config{
			Enabled:       cfg.Enabled,
			Directory:     cfg.Directory,
			DataDirectory: cfg.DataDirectory,
			Files:         slices.Clone(cfg.Files),
			Disabled:      slices.Clone(cfg.Disabled),
		},
	}
	logger := host.Logger()
	if logger == nil {
		logger = slog.Default()
	}
	manager.log = logger
	manager.runtimeLog = logger.With("subsystem", "plugin.runtime")
	manager.events = newEventHub(manager, logger)
	return manager
}

// Enabled reports whether the plugin subsystem should run.
func (m *Manager) Enabled() bool {
	return m.cfg.Enabled
}

// Directory returns the directory used to resolve plugin files.
func (m *Manager) Directory() string {
	return m.directory()
}

// DataRoot returns the root directory used for plugin data storage.
func (m *Manager) DataRoot() string {
	return m.dataRoot()
}

// Register adds a plugin that is linked into the server binary. The name is
// used for the initial data directory and for matching Config.Disabled.
// Linked plugins are enabled by LoadConfigured in registration order.
func (m *Manager) Register(name string, factory Factory) {
	if factory == nil {
		return
	}
	m.mu.Lock()
	m.linked = append(m.linked, linkedFactory{name: name, factory: factory})
	m.mu.Unlock()
}

// LoadConfigured enables linked plugins and plugin files based on configuration.
func (m *Manager) LoadConfigured() {
	m.once.Do(func() {
		m.loadConfigured()
	})
}

// Infos returns metadata for all loaded plugins.
func (m *Manager) Infos() []Info {
	m.mu.RLock()
	defer m.mu.RUnlock()

	infos := make([]Info, len(m.plugins))
	for i, p := range m.plugins {
		infos[i] = p.info()
	}
	return infos
}

// Plugin returns a loaded plugin by its case-insensitive name.
func (m *Manager) Plugin(name string) (Plugin, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, p := range m.plugins {
		if strings.EqualFold(p.name, name) {
			return p.plugin, true
		}
	}
	return nil, false
}

// EnableLinked enables a linked plugin through its factory.
func (m *Manager) EnableLinked(name string, factory Factory) (Info, error) {
	if !m.Enabled() {
		return Info{}, ErrDisabled
	}
	if factory == nil {
		return Info{}, fmt.Errorf("enable %s: nil factory", name)
	}
	return m.enable(name, "", "linked", factory)
}

// Enable loads and enables a Go plugin file.
func (m *Manager) Enable(path string) (Info, error) {
	if !m.Enabled() {
		return Info{}, ErrDisabled
	}
	resolved := m.resolvePath(path)

	m.mu.RLock()
	for _, existing := range m.plugins {
		if existing.path != "" && existing.path == resolved {
			m.mu.RUnlock()
			return existing.info(), ErrAlreadyLoaded
		}
	}
	m.mu.RUnlock()

	mod, err := goplugin.Open(resolved)
	if err != nil {
		return Info{}, fmt.Errorf("open plugin: %w", err)
	}
	factory, symbol, err := lookupPluginFactory(mod)
	if err != nil {
		return Info{}, fmt.Errorf("locate plugin factory: %w", err)
	}
	return m.enable(pluginBaseName(resolved), resolved, symbol, factory)
}

func (m *Manager) enable(initialName, path, symbol string, factory Factory) (info Info, err error) {
	if err := m.ensureDataRoot(); err != nil {
		return Info{}, fmt.Errorf("prepare plugin data storage: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	api := newAPI(m, m.host, initialName)
	api.setContext(ctx)
	initialDataDir := m.pluginDataDirectory(initialName)
	if err := os.MkdirAll(initialDataDir, 0o755); err != nil {
		cancel()
		return Info{}, fmt.Errorf("create plugin data directory: %w", err)
	}
	api.setDataDirectory(initialDataDir)
	defer func() {
		if err != nil {
			cancel()
			m.events.clear(api.pluginName())
		}
	}()
	inst, err := factory(api)
	if err != nil {
		return Info{}, fmt.Errorf("initialise plugin via %s: %w", symbol, err)
	}
	if inst == nil {
		return Info{}, fmt.Errorf("initialise plugin via %s: factory returned nil", symbol)
	}

	previousName := api.pluginName()
	name := inst.Name()
	if name == "" {
		name = previousName
	}
	api.setName(name)
	if previousName != name {
		m.events.rename(previousName, name)
	}

	if targetDir := m.pluginDataDirectory(name); targetDir != api.DataDirectory() {
		if err := m.migrateDataDirectory(api.DataDirectory(), targetDir); err != nil {
			m.runtimeLog.Error("Migrate plugin data directory.", "plugin", name, "error", err)
		} else {
			api.setDataDirectory(targetDir)
		}
	}

	version := ""
	if v, ok := inst.(VersionedPlugin); ok {
		version = v.Version()
	}

	entry := pluginInstance{
		name:    name,
		version: version,
		path:    path,
		plugin:  inst,
		api:     api,
		cancel:  cancel,
	}

	m.mu.Lock()
	for _, existing := range m.plugins {
		if strings.EqualFold(existing.name, entry.name) {
			m.mu.Unlock()
			if err := entry.plugin.Close(); err != nil {
				m.log.Error("Close conflicting plugin instance.", "error", err, "name", entry.name)
			}
			return Info{}, fmt.Errorf("%w: %s", ErrNameConflict, entry.name)
		}
	}
	m.plugins = append(m.plugins, entry)
	m.mu.Unlock()

	attrs := []any{"name", entry.name, "symbol", symbol}
	if entry.path != "" {
		attrs = append(attrs, "path", entry.path)
	}
	if entry.version != "" {
		attrs = append(attrs, "version", entry.version)
	}
	m.log.Info("Plugin enabled.", attrs...)

	return entry.info(), nil
}

// Disable disables a plugin by its case-insensitive name and removes it from the manager.
func (m *Manager) Disable(name string) (Info, error) {
	if !m.Enabled() {
		return Info{}, ErrDisabled
	}

	m.mu.Lock()
	index := -1
	var entry pluginInstance
	for i, p := range m.plugins {
		if strings.EqualFold(p.name, name) {
			index = i
			entry = p
			m.plugins = append(m.plugins[:i], m.plugins[i+1:]...)
			break
		}
	}
	m.mu.Unlock()

	if index == -1 {
		return Info{}, ErrNotFound
	}

	if err := entry.plugin.Close(); err != nil {
		m.mu.Lock()
		m.plugins = append(m.plugins, entry)
		m.mu.Unlock()
		return Info{}, fmt.Errorf("close plugin: %w", err)
	}

	if entry.cancel != nil {
		entry.cancel()
	}
	m.events.clear(entry.name)

	m.log.Info("Plugin disabled.", "name", entry.name)
	return entry.info(), nil
}

// DisableAll disables all currently loaded plugins in reverse load order.
// The returned slice contains metadata for every plugin that was disabled in
// the order the operations were performed.
func (m *Manager) DisableAll() ([]Info, error) {
	if !m.Enabled() {
		return nil, ErrDisabled
	}

	m.mu.RLock()
	names := make([]string, len(m.plugins))
	for i, p := range m.plugins {
		names[i] = p.name
	}
	m.mu.RUnlock()

	infos := make([]Info, 0, len(names))
	for i := len(names) - 1; i >= 0; i-- {
		info, err := m.Disable(names[i])
		if err != nil {
			return infos, err
		}
		infos = append(infos, info)
	}
	return infos, nil
}

// Shutdown disables all plugins in reverse load order.
func (m *Manager) Shutdown() {
	m.mu.Lock()
	plugins := slices.Clone(m.plugins)
	m.plugins = nil
	m.mu.Unlock()

	for i := len(plugins) - 1; i >= 0; i-- {
		entry := plugins[i]
		m.events.clear(entry.name)
		if err := entry.plugin.Close(); err != nil {
			m.log.Error("disable plugin", "error", err, "name", entry.name)
		} else {
			m.log.Info("Plugin disabled.", "name", entry.name)
		}
		if entry.cancel != nil {
			entry.cancel()
		}
	}
}

func (m *Manager) loadConfigured() {
	if !m.cfg.Enabled {
		m.log.Debug("Plugin system disabled.")
		return
	}

	m.mu.RLock()
	linked := slices.Clone(m.linked)
	m.mu.RUnlock()

	for _, l := range linked {
		if m.disabledByConfig(l.name) {
			m.log.Info("Plugin disabled by configuration.", "name", l.name)
			continue
		}
		if _, err := m.EnableLinked(l.name, l.factory); err != nil {
			m.log.Error("Enable plugin.", "error", err, "name", l.name)
		}
	}

	seen := map[string]struct{}{}
	var paths []string
	for _, file := range m.cfg.Files {
		path := m.resolvePath(file)
		if _, ok := seen[path]; ok {
			continue
		}
		seen[path] = struct{}{}
		paths = append(paths, path)
	}
	slices.Sort(paths)
	for _, path := range paths {
		if _, err := m.Enable(path); err != nil {
			m.log.Error("Enable plugin.", "error", err, "path", path)
		}
	}
}

func (m *Manager) disabledByConfig(name string) bool {
	return slices.ContainsFunc(m.cfg.Disabled, func(s string) bool {
		return strings.EqualFold(strings.TrimSpace(s), name)
	})
}

func (m *Manager) directory() string {
	if m.cfg.Directory == "" {
		return "plugins"
	}
	return m.cfg.Directory
}

func (m *Manager) resolvePath(path string) string {
	if path == "" {
		return ""
	}

	cleaned := filepath.Clean(path)
	if filepath.IsAbs(cleaned) {
		return cleaned
	}

	dir := filepath.Clean(m.directory())
	if cleaned == dir {
		return dir
	}

	// Avoid double-joining the plugin directory when the caller already provided a
	// path relative to it (for example "plugins/harotorch.so").
	if rel, err := filepath.Rel(dir, cleaned); err == nil && rel != ".." && !strings.HasPrefix(rel, fmt.Sprintf("..%c", filepath.Separator)) {
		return cleaned
	}

	return filepath.Clean(filepath.Join(dir, cleaned))
}

func (m *Manager) dataRoot() string {
	dir := m.cfg.DataDirectory
	if dir == "" {
		dir = filepath.Join(m.directory(), "data")
	} else if !filepath.IsAbs(dir) {
		dir = filepath.Join(m.directory(), dir)
	}
	return filepath.Clean(dir)
}

func (m *Manager) ensureDataRoot() error {
	return os.MkdirAll(m.dataRoot(), 0o755)
}

func (m *Manager) pluginDataDirectory(name string) string {
	return filepath.Join(m.dataRoot(), sanitizePluginDirectory(name))
}

func (m *Manager) migrateDataDirectory(from, to string) error {
	if from == to {
		return nil
	}
	if to == "" {
		return fmt.Errorf("empty target data directory")
	}
	if from == "" {
		return os.MkdirAll(to, 0o755)
	}
	info, err := os.Stat(from)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return os.MkdirAll(to, 0o755)
		}
		return fmt.Errorf("stat source data directory: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("source data directory is not a directory")
	}
	if _, err := os.Stat(to); err == nil {
		// The target already holds data from an earlier run; keep it and drop
		// the freshly created initial directory if it is empty.
		_ = os.Remove(from)
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(to), 0o755); err != nil {
		return fmt.Errorf("ensure target parent: %w", err)
	}
	if err := os.Rename(from, to); err != nil {
		return fmt.Errorf("rename data directory: %w", err)
	}
	return nil
}

func (m *Manager) handlePluginPanic(name string, reason any) {
	pluginName := name
	if pluginName == "" {
		pluginName = "plugin"
	}
	stack := debug.Stack()
	m.events.clear(pluginName)
	m.runtimeLog.Error("Plugin panic.", "plugin", pluginName, "panic", reason, "stack", string(stack))
	go func() {
		info, err := m.Disable(pluginName)
		if err != nil {
			if !errors.Is(err, ErrNotFound) {
				m.runtimeLog.Error("Disable panic plugin.", "plugin", pluginName, "error", err)
			}
			return
		}
		attrs := []any{"name", info.Name}
		if info.Version != "" {
			attrs = append(attrs, "version", info.Version)
		}
		m.runtimeLog.Warn("Plugin disabled after panic.", attrs...)
	}()
}

func pluginBaseName(path string) string {
	base := filepath.Base(path)
	ext := filepath.Ext(base)
	if ext != "" {
		base = strings.TrimSuffix(base, ext)
	}
	base = strings.TrimSpace(base)
	if base == "" || base == "." {
		return "plugin"
	}
	return base
}

func sanitizePluginDirectory(name string) string {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return "plugin"
	}
	sanitized := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z':
			return r
		case r >= '0' && r <= '9':
			return r
		case r == '-' || r == '_' || r == '.':
			return r
		default:
			return '-'
		}
	}, strings.ToLower(trimmed))
	sanitized = strings.Trim(sanitized, "-_.")
	if sanitized == "" {
		return "plugin"
	}
	return sanitized
}

func lookupPluginFactory(mod *goplugin.Plugin) (Factory, string, error) {
	for _, symbol := range pluginFactorySymbols {
		sym, err := mod.Lookup(symbol)
		if err != nil {
			continue
		}
		switch fn := sym.(type) {
		case Factory:
			return fn, symbol, nil
		case *Factory:
			return *fn, symbol, nil
		case func(*API) (Plugin, error):
			return fn, symbol, nil
		case *func(*API) (Plugin, error):
			return *fn, symbol, nil
		default:
			return nil, symbol, fmt.Errorf("symbol %s has incompatible type %T", symbol, sym)
		}
	}
	return nil, "", fmt.Errorf("no compatible factory symbol found")
}

// PlayerHandlerWrap wraps the provided handler so plugin callbacks are invoked alongside existing logic.
func (m *Manager) PlayerHandlerWrap(p *player.Player, base player.Handler) player.Handler {
	return m.events.wrapPlayer(p, base)
}

// WorldHandlerWrap wraps the world handler to invoke plugin callbacks.
func (m *Manager) WorldHandlerWrap(w *world.World, base world.Handler) world.Handler {
	return m.events.wrapWorld(w, base)
}
