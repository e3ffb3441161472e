// Package featureflags evaluates the FEATURE_FLAGS setting.
package featureflags

import (
	"fmt"
	"hash/fnv"
	"sort"
	"strconv"
	"strings"
)

// Flag names understood by folio.
const (
	GoogleOAuth    = "google_oauth"
	MarkdownRender = "markdown_render"
)

// Manager holds flags parsed from a comma separated key=value list, e.g.
// "google_oauth=on,markdown_render=25%".
type Manager struct {
	flags map[string]string
}

// NewManager parses raw. Malformed pairs are skipped.
func NewManager(raw string) *Manager {
	out := make(map[string]string)

	for _, pair := range strings.Split(raw, ",") {
		key, value, ok := strings.Cut(strings.TrimSpace(pair), "=")
		if !ok {
			continue
		}
		key, value = normalize(key), normalize(value)
		if key == "" || value == "" {
			continue
		}
		out[key] = value
	}

	return &Manager{flags: out}
}

// Enabled reports whether name is on for userID. Values on/true/1 and
// off/false/0 are global; "N%" enables a stable N percent of users.
// Unknown flags are off.
func (m *Manager) Enabled(name string, userID uint) bool {
	value, ok := m.lookup(name)
	if !ok {
		return false
	}

	if on, global := parseToggle(value); global {
		return on
	}

	pct, ok := parsePercent(value)
	if !ok || pct <= 0 {
		return false
	}
	if pct >= 100 {
		return true
	}
	if userID == 0 {
		return false
	}
	return rolloutBucket(name, userID) < pct
}

// EnabledOr is Enabled for flags evaluated without a user. A flag that is
// not configured returns fallback.
func (m *Manager) EnabledOr(name string, fallback bool) bool {
	value, ok := m.lookup(name)
	if !ok {
		return fallback
	}
	if on, global := parseToggle(value); global {
		return on
	}
	pct, ok := parsePercent(value)
	return ok && pct >= 100
}

// Names returns the configured flag names in sorted order.
func (m *Manager) Names() []string {
	if m == nil {
		return nil
	}
	names := make([]string, 0, len(m.flags))
	for name := range m.flags {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Snapshot returns evaluated flag status for one user.
func (m *Manager) Snapshot(userID uint) map[string]bool {
	out := make(map[string]bool)
	for _, name := range m.Names() {
		out[name] = m.Enabled(name, userID)
	}
	return out
}

func (m *Manager) lookup(name string) (string, bool) {
	if m == nil {
		return "", false
	}
	v, ok := m.flags[normalize(name)]
	return v, ok
}

func parseToggle(value string) (on, global bool) {
	switch value {
	case "on", "true", "1":
		return true, true
	case "off", "false", "0":
		return false, true
	}
	return false, false
}

func parsePercent(value string) (int, bool) {
	raw, ok := strings.CutSuffix(value, "%")
	if !ok {
		return 0, false
	}
	pct, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false
	}
	return pct, true
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func rolloutBucket(name string, userID uint) int {
	h := fnv.New32a()
	_, _ = fmt.Fprintf(h, "%s:%d", normalize(name), userID)
	return int(h.Sum32() % 100)
}
