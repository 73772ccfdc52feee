// Package prefs stores the user's app preferences next to the data file.
package prefs

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/meltforce/liftlog/internal/persist"
)

// Theme selects the color scheme.
type Theme string

const (
	ThemeSystem Theme = "system"
	ThemeLight  Theme = "light"
	ThemeDark   Theme = "dark"
)

// Valid reports whether t is a known theme.
func (t Theme) Valid() bool {
	switch t {
	case ThemeSystem, ThemeLight, ThemeDark:
		return true
	}
	return false
}

type Preferences struct {
	Theme             Theme `yaml:"theme" json:"theme"`
	PrefersBiometrics bool  `yaml:"prefers_biometrics" json:"prefersBiometrics"`
}

// Defaults are used until the user changes something.
func Defaults() Preferences {
	return Preferences{Theme: ThemeSystem, PrefersBiometrics: true}
}

// Manager loads and saves preferences at a fixed path.
type Manager struct {
	path string
	log  *slog.Logger

	mu       sync.Mutex
	current  Preferences
	onChange []func(Preferences)
}

// Open reads the preferences file. A missing file yields defaults; an
// unreadable one is logged and also yields defaults.
func Open(path string, log *slog.Logger) *Manager {
	m := &Manager{path: path, log: log, current: Defaults()}

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return m
	case err != nil:
		log.Warn("reading preferences", "path", path, "error", err)
		return m
	}

	p := Defaults()
	if err := yaml.Unmarshal(data, &p); err != nil {
		log.Warn("parsing preferences", "path", path, "error", err)
		return m
	}
	if !p.Theme.Valid() {
		p.Theme = ThemeSystem
	}
	m.current = p
	return m
}

// Get returns the current preferences.
func (m *Manager) Get() Preferences {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.current
}

// OnChange registers fn to run after every successful update.
func (m *Manager) OnChange(fn func(Preferences)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onChange = append(m.onChange, fn)
}

// SetTheme changes the theme.
func (m *Manager) SetTheme(t Theme) error {
	if !t.Valid() {
		return fmt.Errorf("unknown theme %q", t)
	}
	return m.update(func(p *Preferences) { p.Theme = t })
}

// SetBiometrics changes whether biometric unlock is preferred.
func (m *Manager) SetBiometrics(enabled bool) error {
	return m.update(func(p *Preferences) { p.PrefersBiometrics = enabled })
}

// Set replaces all preferences.
func (m *Manager) Set(p Preferences) error {
	if !p.Theme.Valid() {
		return fmt.Errorf("unknown theme %q", p.Theme)
	}
	return m.update(func(cur *Preferences) { *cur = p })
}

func (m *Manager) update(fn func(*Preferences)) error {
	m.mu.Lock()
	next := m.current
	fn(&next)
	data, err := yaml.Marshal(next)
	if err != nil {
		m.mu.Unlock()
		return fmt.Errorf("encoding preferences: %w", err)
	}
	if err := persist.WriteAtomic(m.path, data); err != nil {
		m.mu.Unlock()
		return fmt.Errorf("saving preferences: %w", err)
	}
	m.current = next
	hooks := append([]func(Preferences){}, m.onChange...)
	m.mu.Unlock()

	for _, fn := range hooks {
		fn(next)
	}
	return nil
}
