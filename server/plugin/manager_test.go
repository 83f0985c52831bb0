package plugin

import (
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/df-mc/dragonfly/server/player"
	"github.com/df-mc/dragonfly/server/world"
	"github.com/google/uuid"
)

type testHost struct{}

func (testHost) Logger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelDebug}))
}
func (testHost) World() *world.World                          { return nil }
func (testHost) Nether() *world.World                         { return nil }
func (testHost) End() *world.World                            { return nil }
func (testHost) Player(uuid.UUID) (*world.EntityHandle, bool) { return nil, false }
func (testHost) Conn(uuid.UUID) (Conn, bool)                  { return nil, false }

func TestSanitizePluginDirectory(t *testing.T) {
	cases := map[string]string{
		"":                 "plugin",
		"   ":              "plugin",
		"HaroTorch":        "harotorch",
		"Haro Torch":       "haro-torch",
		"Haro_Torch":       "haro_torch",
		"Haro.Torch":       "haro.torch",
		"Haro@Torch#":      "haro-torch",
		"--Already-Safe--": "already-safe",
	}

	for input, want := range cases {
		if got := sanitizePluginDirectory(input); got != want {
			t.Fatalf("sanitizePluginDirectory(%q) = %q, want %q", input, got, want)
		}
	}
}

func TestPluginBaseName(t *testing.T) {
	cases := map[string]string{
		"":                     "plugin",
		"file":                 "file",
		"harotorch.so":         "harotorch",
		"path/to/plugin":       "plugin",
		"path/to/harotorch.so": "harotorch",
	}

	for input, want := range cases {
		if got := pluginBaseName(input); got != want {
			t.Fatalf("pluginBaseName(%q) = %q, want %q", input, got, want)
		}
	}
}

func TestManagerPluginDataDirectory(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	manager := NewManager(testHost{}, Config{Enabled: true, Directory: root})

	got := manager.pluginDataDirectory("HaroTorch")
	want := filepath.Join(root, "data", "harotorch")
	if got != want {
		t.Fatalf("pluginDataDirectory returned %q, want %q", got, want)
	}

	manager.cfg.DataDirectory = "custom"
	got = manager.pluginDataDirectory("Another Plugin")
	want = filepath.Join(root, "custom", "another-plugin")
	if got != want {
		t.Fatalf("pluginDataDirectory with custom root returned %q, want %q", got, want)
	}
}

func TestManagerMigrateDataDirectory(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	manager := NewManager(testHost{}, Config{Enabled: true, Directory: root})

	from := filepath.Join(root, "old")
	to := filepath.Join(root, "new")
	if err := os.MkdirAll(from, 0o755); err != nil {
		t.Fatalf("create source directory: %v", err)
	}
	payload := []byte("payload")
	if err := os.WriteFile(filepath.Join(from, "data.txt"), payload, 0o644); err != nil {
		t.Fatalf("write source data: %v", err)
	}

	if err := manager.migrateDataDirectory(from, to); err != nil {
		t.Fatalf("migrate data directory: %v", err)
	}
	data, err := os.ReadFile(filepath.Join(to, "data.txt"))
	if err != nil {
		t.Fatalf("read migrated file: %v", err)
	}
	if string(data) != string(payload) {
		t.Fatalf("migrated data mismatch: got %q, want %q", string(data), string(payload))
	}
	if _, err := os.Stat(from); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("source directory still exists after migrate")
	}
}

func TestManagerMigrateDataDirectoryKeepsExistingTarget(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	manager := NewManager(testHost{}, Config{Enabled: true, Directory: root})

	from := filepath.Join(root, "initial")
	to := filepath.Join(root, "named")
	for _, dir := range []string{from, to} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			t.Fatalf("create %s: %v", dir, err)
		}
	}
	if err := os.WriteFile(filepath.Join(to, "torches"), []byte("kept"), 0o644); err != nil {
		t.Fatalf("write target data: %v", err)
	}

	if err := manager.migrateDataDirectory(from, to); err != nil {
		t.Fatalf("migrate data directory: %v", err)
	}
	if data, err := os.ReadFile(filepath.Join(to, "torches")); err != nil || string(data) != "kept" {
		t.Fatalf("existing target data was not kept: %q, %v", data, err)
	}
	if _, err := os.Stat(from); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("empty initial directory was not removed")
	}
}

func TestManagerDirectoryResolution(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	manager := NewManager(testHost{}, Config{Enabled: true, Directory: root, DataDirectory: "state"})

	if got, want := manager.Directory(), root; got != want {
		t.Fatalf("Directory() = %q, want %q", got, want)
	}
	if got, want := manager.DataRoot(), filepath.Join(root, "state"); got != want {
		t.Fatalf("DataRoot() = %q, want %q", got, want)
	}
	if got, want := manager.resolvePath("harotorch.so"), filepath.Join(root, "harotorch.so"); got != want {
		t.Fatalf("resolvePath relative = %q, want %q", got, want)
	}
	abs := filepath.Join(root, "other.so")
	if got := manager.resolvePath(abs); got != abs {
		t.Fatalf("resolvePath absolute = %q, want %q", got, abs)
	}
}

type closingPlugin struct {
	name   string
	closed chan struct{}
}

func (p *closingPlugin) Name() string { return p.name }

func (p *closingPlugin) Close() error {
	select {
	case <-p.closed:
	default:
		close(p.closed)
	}
	return nil
}

func TestManagerEnableLinked(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	manager := NewManager(testHost{}, Config{Enabled: true, Directory: root})

	var dataDir string
	info, err := manager.EnableLinked("linked", func(api *API) (Plugin, error) {
		return &closingPlugin{name: "HaroTorch", closed: make(chan struct{})}, nil
	})
	if err != nil {
		t.Fatalf("EnableLinked() error = %v", err)
	}
	if info.Name != "HaroTorch" || info.Path != "" {
		t.Fatalf("EnableLinked() info = %+v", info)
	}
	manager.mu.RLock()
	dataDir = manager.plugins[0].api.DataDirectory()
	manager.mu.RUnlock()
	if want := filepath.Join(root, "data", "harotorch"); dataDir != want {
		t.Fatalf("data directory = %q, want %q", dataDir, want)
	}

	_, err = manager.EnableLinked("again", func(api *API) (Plugin, error) {
		return &closingPlugin{name: "harotorch", closed: make(chan struct{})}, nil
	})
	if !errors.Is(err, ErrNameConflict) {
		t.Fatalf("EnableLinked() with duplicate name error = %v, want ErrNameConflict", err)
	}
}

func TestManagerDisableCancelsPluginContext(t *testing.T) {
	t.Parallel()

	manager := NewManager(testHost{}, Config{Enabled: true, Directory: t.TempDir()})
	var api *API
	if _, err := manager.EnableLinked("ctx", func(a *API) (Plugin, error) {
		api = a
		return &closingPlugin{name: "ctx", closed: make(chan struct{})}, nil
	}); err != nil {
		t.Fatalf("EnableLinked() error = %v", err)
	}
	ctx := api.Context()
	if ctx.Err() != nil {
		t.Fatalf("plugin context done while enabled: %v", ctx.Err())
	}
	if _, err := manager.Disable("ctx"); err != nil {
		t.Fatalf("Disable() error = %v", err)
	}
	select {
	case <-ctx.Done():
	case <-time.After(2 * time.Second):
		t.Fatalf("plugin context not cancelled after Disable")
	}
}

func TestManagerEnableLinkedFactoryError(t *testing.T) {
	t.Parallel()

	manager := NewManager(testHost{}, Config{Enabled: true, Directory: t.TempDir()})
	boom := errors.New("boom")
	_, err := manager.EnableLinked("broken", func(api *API) (Plugin, error) {
		api.Events().OnPlayer(player.NopHandler{})
		return nil, boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("EnableLinked() error = %v, want %v", err, boom)
	}
	if regs := manager.events.loadPlayerChain(); len(regs) != 0 {
		t.Fatalf("handlers of a failed plugin were not cleared, got %d", len(regs))
	}
}

func TestManagerLoadConfiguredSkipsDisabled(t *testing.T) {
	t.Parallel()

	manager := NewManager(testHost{}, Config{Enabled: true, Directory: t.TempDir(), Disabled: []string{" HaroTorch "}})
	var calls atomic.Int32
	manager.Register("harotorch", func(api *API) (Plugin, error) {
		calls.Add(1)
		return &closingPlugin{name: "HaroTorch", closed: make(chan struct{})}, nil
	})
	manager.LoadConfigured()

	if calls.Load() != 0 {
		t.Fatalf("disabled plugin factory was called")
	}
	if got := manager.Infos(); len(got) != 0 {
		t.Fatalf("Infos() = %v, want none", got)
	}
}

func TestManagerDisableAll(t *testing.T) {
	t.Parallel()

	manager := NewManager(testHost{}, Config{Enabled: true})

	first := &closingPlugin{name: "first", closed: make(chan struct{})}
	second := &closingPlugin{name: "second", closed: make(chan struct{})}

	manager.plugins = []pluginInstance{
		{name: first.name, plugin: first},
		{name: second.name, plugin: second},
	}

	infos, err := manager.DisableAll()
	if err != nil {
		t.Fatalf("DisableAll() error = %v", err)
	}
	if len(infos) != 2 {
		t.Fatalf("DisableAll() returned %d infos, want 2", len(infos))
	}
	if infos[0].Name != "second" || infos[1].Name != "first" {
		t.Fatalf("DisableAll() order = %v", infos)
	}
	for _, p := range []*closingPlugin{first, second} {
		select {
		case <-p.closed:
		default:
			t.Fatalf("%s plugin was not closed", p.name)
		}
	}
}

func TestManagerDisableAllDisabled(t *testing.T) {
	t.Parallel()

	manager := NewManager(testHost{}, Config{Enabled: false})

	if infos, err := manager.DisableAll(); !errors.Is(err, ErrDisabled) || infos != nil {
		t.Fatalf("DisableAll() = (%v, %v), want (nil, ErrDisabled)", infos, err)
	}
}

func TestManagerHandlePluginPanicDisablesPlugin(t *testing.T) {
	t.Parallel()

	manager := NewManager(testHost{}, Config{Enabled: true})

	closed := make(chan struct{})
	manager.plugins = []pluginInstance{
		{name: "panic", plugin: &closingPlugin{name: "panic", closed: closed}},
	}
	manager.events.addPlayer("panic", player.NopHandler{})

	manager.handlePluginPanic("panic", errors.New("boom"))

	select {
	case <-closed:
	case <-time.After(2 * time.Second):
		t.Fatalf("plugin close was not invoked after panic")
	}

	deadline := time.Now().Add(2 * time.Second)
	for {
		manager.mu.RLock()
		remaining := len(manager.plugins)
		manager.mu.RUnlock()
		if remaining == 0 {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("plugin was not removed after panic")
		}
		time.Sleep(10 * time.Millisecond)
	}

	if regs := manager.events.loadPlayerChain(); len(regs) != 0 {
		t.Fatalf("expected player handlers to be cleared, got %d registrations", len(regs))
	}
}

func TestAPIDataPathRejectsEscapes(t *testing.T) {
	t.Parallel()

	manager := NewManager(testHost{}, Config{Enabled: true, Directory: t.TempDir()})
	api := newAPI(manager, testHost{}, "harotorch")

	for _, name := range []string{"", "../outside", "/etc/passwd"} {
		if _, err := api.DataPath(name); err == nil {
			t.Fatalf("DataPath(%q) succeeded, want error", name)
		}
	}
	path, err := api.DataPath("torches")
	if err != nil {
		t.Fatalf("DataPath(torches) error = %v", err)
	}
	if want := filepath.Join(manager.pluginDataDirectory("harotorch"), "torches"); path != want {
		t.Fatalf("DataPath(torches) = %q, want %q", path, want)
	}
}

var _ Host = testHost{}
