package theme

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"gopkg.in/yaml.v3"
)

// yamlTheme is the YAML representation of a theme.
type yamlTheme struct {
	Name    string `yaml:"name"`
	Surface string `yaml:"surface"`
	Text    string `yaml:"text"`
	Subtext string `yaml:"subtext"`
	Muted   string `yaml:"muted"`
	Accent  string `yaml:"accent"`

	Green  string `yaml:"green"`
	Blue   string `yaml:"blue"`
	Amber  string `yaml:"amber"`
	Purple string `yaml:"purple"`
	Red    string `yaml:"red"`
	Grey   string `yaml:"grey"`

	Syntax string `yaml:"syntax"`
}

// LoadCustomTheme loads a theme from a YAML file. Colors left out are taken
// from the default theme.
func LoadCustomTheme(path string) (Theme, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Theme{}, fmt.Errorf("reading theme file: %w", err)
	}

	var yt yamlTheme
	if err := yaml.Unmarshal(data, &yt); err != nil {
		return Theme{}, fmt.Errorf("parsing theme YAML: %w", err)
	}

	if yt.Name == "" {
		base := filepath.Base(path)
		yt.Name = strings.TrimSuffix(base, filepath.Ext(base))
	}

	t := Default()
	t.Name = yt.Name
	set := func(dst *lipgloss.Color, v string) {
		if v != "" {
			*dst = lipgloss.Color(v)
		}
	}
	set(&t.Surface, yt.Surface)
	set(&t.Text, yt.Text)
	set(&t.Subtext, yt.Subtext)
	set(&t.Muted, yt.Muted)
	set(&t.Accent, yt.Accent)
	set(&t.Green, yt.Green)
	set(&t.Blue, yt.Blue)
	set(&t.Amber, yt.Amber)
	set(&t.Purple, yt.Purple)
	set(&t.Red, yt.Red)
	set(&t.Grey, yt.Grey)
	if yt.Syntax != "" {
		t.Syntax = yt.Syntax
	}
	return t, nil
}
