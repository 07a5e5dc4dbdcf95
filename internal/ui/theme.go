package ui

import (
	"os"
	"strings"

	"github.com/gdamore/tcell/v2"
)

// Theme defines UI color tokens used across widgets and text tags.
type Theme struct {
	// Widget colors
	Bg          tcell.Color
	Surface     tcell.Color
	Border      tcell.Color
	FocusBorder tcell.Color
	SelectionBg tcell.Color
	SelectionFg tcell.Color
	TextPrimary tcell.Color
	TextMuted   tcell.Color
	Accent      tcell.Color
	Error       tcell.Color

	// Text tag colors (for tview dynamic color markup)
	TagTextPrimary string
	TagMuted       string
	TagAccent      string
	TagSuccess     string
	TagWarning     string
	TagError       string
}

// helpers
func hex(s string) tcell.Color { return tcell.GetColor(s) }

// themeNames lists the palettes in cycle order
var themeNames = []string{"dark", "light", "neon", "high-contrast"}

// themeByName falls back to dark for unknown names
func themeByName(name string) (string, Theme) {
	switch name {
	case "light":
		return name, themeLight()
	case "neon":
		return name, themeNeon()
	case "high-contrast":
		return name, themeHighContrast()
	default:
		return "dark", themeDark()
	}
}

func nextTheme(current string) string {
	for i, n := range themeNames {
		if n == current {
			return themeNames[(i+1)%len(themeNames)]
		}
	}
	return themeNames[0]
}

func themeDark() Theme {
	return Theme{
		Bg:          hex("#0e1116"),
		Surface:     hex("#12161e"),
		Border:      hex("#2b3240"),
		FocusBorder: hex("#4aa8ff"),
		SelectionBg: hex("#2b3240"),
		SelectionFg: hex("#cfd8e3"),
		TextPrimary: hex("#e6edf3"),
		TextMuted:   hex("#8a939f"),
		Accent:      hex("#2dd4bf"),
		Error:       hex("#ef4444"),

		TagTextPrimary: "#e6edf3",
		TagMuted:       "#8a939f",
		TagAccent:      "#2dd4bf",
		TagSuccess:     "#22c55e",
		TagWarning:     "#f59e0b",
		TagError:       "#ef4444",
	}
}

func themeLight() Theme {
	return Theme{
		Bg:          hex("#f6f8fa"),
		Surface:     hex("#ffffff"),
		Border:      hex("#d0d7de"),
		FocusBorder: hex("#1f6feb"),
		SelectionBg: hex("#e2e8f0"),
		SelectionFg: hex("#111827"),
		TextPrimary: hex("#111827"),
		TextMuted:   hex("#6b7280"),
		Accent:      hex("#2563eb"),
		Error:       hex("#b91c1c"),

		TagTextPrimary: "#111827",
		TagMuted:       "#6b7280",
		TagAccent:      "#2563eb",
		TagSuccess:     "#15803d",
		TagWarning:     "#b45309",
		TagError:       "#b91c1c",
	}
}

func themeNeon() Theme {
	return Theme{
		Bg:          hex("#0f0b14"),
		Surface:     hex("#14111a"),
		Border:      hex("#45385a"),
		FocusBorder: hex("#ff79c6"), // pink focus ring
		SelectionBg: hex("#2a1f3d"),
		SelectionFg: hex("#f8f5ff"),
		TextPrimary: hex("#f8f5ff"),
		TextMuted:   hex("#b8a8c9"),
		Accent:      hex("#ff6ac1"),
		Error:       hex("#ff5555"),

		TagTextPrimary: "#f8f5ff",
		TagMuted:       "#b8a8c9",
		TagAccent:      "#ff6ac1",
		TagSuccess:     "#00d084",
		TagWarning:     "#ffd166",
		TagError:       "#ff5555",
	}
}

func themeHighContrast() Theme {
	return Theme{
		Bg:          hex("#000000"),
		Surface:     hex("#000000"),
		Border:      hex("#ffffff"),
		FocusBorder: hex("#ffff00"),
		SelectionBg: hex("#ffffff"),
		SelectionFg: hex("#000000"),
		TextPrimary: hex("#ffffff"),
		TextMuted:   hex("#cccccc"),
		Accent:      hex("#00ffff"),
		Error:       hex("#ff0000"),

		TagTextPrimary: "#ffffff",
		TagMuted:       "#cccccc",
		TagAccent:      "#00ffff",
		TagSuccess:     "#00ff00",
		TagWarning:     "#ffff00",
		TagError:       "#ff0000",
	}
}

// detectTrueColor is a best-effort check without initializing the screen
func detectTrueColor() bool {
	ct := strings.ToLower(os.Getenv("COLORTERM"))
	if strings.Contains(ct, "truecolor") || strings.Contains(ct, "24bit") {
		return true
	}
	term := strings.ToLower(os.Getenv("TERM"))
	return strings.Contains(term, "truecolor") || strings.Contains(term, "24bit") || strings.Contains(term, "256color")
}
