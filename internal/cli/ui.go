package cli

import (
	"fmt"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/matzehuels/acknowledge/pkg/pipeline"
)

// ANSI 256 palette.
var (
	colorCyan   = lipgloss.Color("36")
	colorGreen  = lipgloss.Color("35")
	colorYellow = lipgloss.Color("220")
	colorRed    = lipgloss.Color("167")
	colorBlue   = lipgloss.Color("75")
	colorWhite  = lipgloss.Color("255")
	colorGray   = lipgloss.Color("245")
	colorDim    = lipgloss.Color("240")
)

var (
	StyleLink    = lipgloss.NewStyle().Foreground(colorBlue).Underline(true)
	StyleDim     = lipgloss.NewStyle().Foreground(colorDim)
	StyleValue   = lipgloss.NewStyle().Foreground(colorWhite)
	StyleWarning = lipgloss.NewStyle().Foreground(colorYellow)
)

var (
	styleIconSuccess = lipgloss.NewStyle().Foreground(colorGreen)
	styleIconWarning = lipgloss.NewStyle().Foreground(colorYellow)
	styleIconInfo    = lipgloss.NewStyle().Foreground(colorGray)
	styleIconSpinner = lipgloss.NewStyle().Foreground(colorCyan)

	styleCached   = lipgloss.NewStyle().Foreground(colorGreen)
	styleComputed = lipgloss.NewStyle().Foreground(colorGray)
	styleFailed   = lipgloss.NewStyle().Foreground(colorRed)
)

const (
	iconSuccess = "✓"
	iconWarning = "!"
	iconInfo    = "›"
	iconArrow   = "→"
	iconCached  = "cached"
	iconFresh   = "fresh"
)

// Status lines go to stdout. Logs and the spinner use stderr.
func printSuccess(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Println(styleIconSuccess.Render(iconSuccess) + " " + msg)
}

func printWarning(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Println(styleIconWarning.Render(iconWarning) + " " + StyleWarning.Render(msg))
}

func printInfo(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Println(styleIconInfo.Render(iconInfo) + " " + msg)
}

func printDetail(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Println("  " + StyleDim.Render(msg))
}

func printFile(path string) {
	fmt.Println("  " + StyleDim.Render(iconArrow) + " " + StyleValue.Render(path))
}

func printKeyValue(key, value string) {
	keyStyle := lipgloss.NewStyle().Foreground(colorGray).Width(12)
	fmt.Println(keyStyle.Render(key) + " " + StyleValue.Render(value))
}

func printStats(stats pipeline.Stats) {
	fmt.Println(statsLine(stats))
}

func statsLine(stats pipeline.Stats) string {
	parts := []string{
		StyleDim.Render(fmt.Sprintf("%d dependencies", stats.Dependencies)),
		StyleDim.Render(fmt.Sprintf("%d repositories", stats.Repositories)),
	}
	if stats.CacheHits > 0 {
		parts = append(parts, styleCached.Render(fmt.Sprintf("%d %s", stats.CacheHits, iconCached)))
	}
	if stats.Fetched > 0 {
		parts = append(parts, styleComputed.Render(fmt.Sprintf("%d %s", stats.Fetched, iconFresh)))
	}
	if stats.Failed > 0 {
		parts = append(parts, styleFailed.Render(fmt.Sprintf("%d failed", stats.Failed)))
	}
	parts = append(parts, StyleDim.Render(stats.Duration.Round(time.Millisecond).String()))

	line := "  "
	for i, part := range parts {
		if i > 0 {
			line += StyleDim.Render(" · ")
		}
		line += part
	}
	return line
}
