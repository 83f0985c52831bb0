package builtin

import (
	"errors"
	"strings"
	"testing"

	"github.com/df-mc/dragonfly/server/cmd"
	"github.com/dm-vev/harotorch/server/plugin"
)

type fakeManager struct {
	enabled  bool
	infos    []plugin.Info
	disabled []string
}

func (m *fakeManager) Enabled() bool        { return m.enabled }
func (m *fakeManager) Infos() []plugin.Info { return append([]plugin.Info(nil), m.infos...) }
func (m *fakeManager) Enable(path string) (plugin.Info, error) {
	return plugin.Info{}, errors.New("open plugin: " + path)
}
func (m *fakeManager) Disable(name string) (plugin.Info, error) {
	for i, info := range m.infos {
		if strings.EqualFold(info.Name, name) {
			m.infos = append(m.infos[:i], m.infos[i+1:]...)
			m.disabled = append(m.disabled, info.Name)
			return info, nil
		}
	}
	return plugin.Info{}, plugin.ErrNotFound
}

func messages(o *cmd.Output) []string {
	var out []string
	for _, m := range o.Messages() {
		out = append(out, m.String())
	}
	return out
}

func TestPluginList(t *testing.T) {
	m := &fakeManager{enabled: true, infos: []plugin.Info{
		{Name: "zeta", Path: "/srv/plugins/zeta.so"},
		{Name: "HaroTorch", Version: "2.3.0"},
	}}
	o := &cmd.Output{}
	pluginListCommand{plugins: m}.Run(nil, o, nil)
	got := messages(o)
	want := []string{"HaroTorch v2.3.0 (linked)", "zeta (/srv/plugins/zeta.so)"}
	if len(got) != len(want) || got[0] != want[0] || got[1] != want[1] {
		t.Fatalf("plugin list = %q, want %q", got, want)
	}

	o = &cmd.Output{}
	pluginListCommand{plugins: &fakeManager{}}.Run(nil, o, nil)
	if got := messages(o); len(got) != 1 || got[0] != "Plugin subsystem disabled." {
		t.Fatalf("plugin list with subsystem disabled = %q", got)
	}
}

func TestPluginDisable(t *testing.T) {
	m := &fakeManager{enabled: true, infos: []plugin.Info{{Name: "HaroTorch"}}}
	o := &cmd.Output{}
	pluginDisableCommand{Name: " harotorch ", plugins: m}.Run(nil, o, nil)
	if len(m.disabled) != 1 || len(o.Errors()) != 0 {
		t.Fatalf("plugin disable: disabled %v, errors %v", m.disabled, o.Errors())
	}

	o = &cmd.Output{}
	pluginDisableCommand{Name: "missing", plugins: m}.Run(nil, o, nil)
	if len(o.Errors()) != 1 {
		t.Fatalf("disabling a missing plugin reported no error")
	}
}

func TestPluginEnableRequiresPath(t *testing.T) {
	o := &cmd.Output{}
	pluginEnableCommand{File: "  ", plugins: &fakeManager{enabled: true}}.Run(nil, o, nil)
	if len(o.Errors()) != 1 {
		t.Fatalf("enable without a path reported %d errors", len(o.Errors()))
	}
}

func TestStopCommand(t *testing.T) {
	var stopped bool
	o := &cmd.Output{}
	stopCommand{stop: func() { stopped = true }}.Run(nil, o, nil)
	if !stopped {
		t.Fatalf("/stop did not stop the server")
	}
	if !(stopCommand{}).Allow(nil) {
		t.Fatalf("/stop is not allowed for the console")
	}
}

func TestAboutListsPlugins(t *testing.T) {
	o := &cmd.Output{}
	aboutCommand{plugins: &fakeManager{infos: []plugin.Info{{Name: "HaroTorch", Version: "2.3.0"}}}}.Run(nil, o, nil)
	got := messages(o)
	if last := got[len(got)-1]; last != "Plugin: HaroTorch v2.3.0 (linked)" {
		t.Fatalf("about output ends with %q", last)
	}
}
