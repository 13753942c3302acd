package theme

import "github.com/charmbracelet/lipgloss"

// Dark is the default theme.
var Dark = Theme{
	Name:    "Dark",
	Surface: lipgloss.Color("#1f2937"),
	Text:    lipgloss.Color("#f3f4f6"),
	Subtext: lipgloss.Color("#d1d5db"),
	Muted:   lipgloss.Color("#6b7280"),
	Accent:  lipgloss.Color("#818cf8"),

	Green:  lipgloss.Color("#4ade80"),
	Blue:   lipgloss.Color("#60a5fa"),
	Amber:  lipgloss.Color("#fbbf24"),
	Purple: lipgloss.Color("#c084fc"),
	Red:    lipgloss.Color("#f87171"),
	Grey:   lipgloss.Color("#9ca3af"),

	Syntax: "monokai",
}

// Light suits light terminal backgrounds.
var Light = Theme{
	Name:    "Light",
	Surface: lipgloss.Color("#f3f4f6"),
	Text:    lipgloss.Color("#111827"),
	Subtext: lipgloss.Color("#374151"),
	Muted:   lipgloss.Color("#9ca3af"),
	Accent:  lipgloss.Color("#4f46e5"),

	Green:  lipgloss.Color("#15803d"),
	Blue:   lipgloss.Color("#1d4ed8"),
	Amber:  lipgloss.Color("#b45309"),
	Purple: lipgloss.Color("#7e22ce"),
	Red:    lipgloss.Color("#b91c1c"),
	Grey:   lipgloss.Color("#374151"),

	Syntax: "github",
}

// CatppuccinMocha maps the badge colors onto the Catppuccin Mocha palette.
var CatppuccinMocha = Theme{
	Name:    "Catppuccin Mocha",
	Surface: lipgloss.Color("#313244"),
	Text:    lipgloss.Color("#cdd6f4"),
	Subtext: lipgloss.Color("#a6adc8"),
	Muted:   lipgloss.Color("#585b70"),
	Accent:  lipgloss.Color("#cba6f7"),

	Green:  lipgloss.Color("#a6e3a1"),
	Blue:   lipgloss.Color("#89b4fa"),
	Amber:  lipgloss.Color("#f9e2af"),
	Purple: lipgloss.Color("#cba6f7"),
	Red:    lipgloss.Color("#f38ba8"),
	Grey:   lipgloss.Color("#7f849c"),

	Syntax: "catppuccin-mocha",
}

// Dracula maps the badge colors onto the Dracula palette.
var Dracula = Theme{
	Name:    "Dracula",
	Surface: lipgloss.Color("#44475a"),
	Text:    lipgloss.Color("#f8f8f2"),
	Subtext: lipgloss.Color("#bfbfbf"),
	Muted:   lipgloss.Color("#6272a4"),
	Accent:  lipgloss.Color("#bd93f9"),

	Green:  lipgloss.Color("#50fa7b"),
	Blue:   lipgloss.Color("#8be9fd"),
	Amber:  lipgloss.Color("#f1fa8c"),
	Purple: lipgloss.Color("#bd93f9"),
	Red:    lipgloss.Color("#ff5555"),
	Grey:   lipgloss.Color("#6272a4"),

	Syntax: "dracula",
}

// Default returns the default theme.
func Default() Theme {
	return Dark
}
