package theme

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Catalog maps theme names to themes.
var Catalog = map[string]Theme{}

func init() {
	register(Dark)
	register(Light)
	register(CatppuccinMocha)
	register(Dracula)
}

func register(t Theme) {
	Catalog[normalizeKey(t.Name)] = t
}

// Get returns a theme by name.
func Get(name string) (Theme, bool) {
	t, ok := Catalog[normalizeKey(name)]
	return t, ok
}

// Names returns all registered theme names, sorted.
func Names() []string {
	names := make([]string, 0, len(Catalog))
	for _, t := range Catalog {
		names = append(names, t.Name)
	}
	sort.Strings(names)
	return names
}

// Resolve looks up a theme by name: catalog, then <dir>/<name>.yaml, then
// the default.
func Resolve(name, dir string) Theme {
	if t, ok := Get(name); ok {
		return t
	}
	if dir != "" && name != "" {
		path := filepath.Join(dir, normalizeKey(name)+".yaml")
		if _, err := os.Stat(path); err == nil {
			if t, err := LoadCustomTheme(path); err == nil {
				return t
			}
		}
	}
	return Default()
}

func normalizeKey(name string) string {
	return strings.ToLower(strings.ReplaceAll(strings.TrimSpace(name), " ", "-"))
}
