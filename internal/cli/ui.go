package cli

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/matzehuels/locuszoom/pkg/pipeline"
)

// ui is where status lines go. Command payloads (JSON, tables, paths) are
// written to cmd.OutOrStdout instead.
var ui io.Writer = os.Stdout

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

// Styles shared by the commands.
var (
	StyleHighlight = lipgloss.NewStyle().Foreground(colorCyan)
	StyleLink      = lipgloss.NewStyle().Foreground(colorBlue).Underline(true)
	StyleDim       = lipgloss.NewStyle().Foreground(colorDim)
	StyleValue     = lipgloss.NewStyle().Foreground(colorWhite)
	StyleWarning   = lipgloss.NewStyle().Foreground(colorYellow)

	styleIconSuccess = lipgloss.NewStyle().Foreground(colorGreen)
	styleIconError   = lipgloss.NewStyle().Foreground(colorRed)
	styleIconInfo    = lipgloss.NewStyle().Foreground(colorGray)
	styleIconSpinner = lipgloss.NewStyle().Foreground(colorCyan)
	styleKey         = lipgloss.NewStyle().Foreground(colorGray).Width(12)
	styleCached      = lipgloss.NewStyle().Foreground(colorGreen)
	styleCommand     = lipgloss.NewStyle().Foreground(colorBlue)
)

const (
	iconSuccess = "✓"
	iconError   = "✗"
	iconWarning = "!"
	iconInfo    = "›"
	iconArrow   = "→"
)

func printLine(icon string, format string, args ...any) {
	fmt.Fprintln(ui, icon+" "+fmt.Sprintf(format, args...))
}

func printSuccess(format string, args ...any) {
	printLine(styleIconSuccess.Render(iconSuccess), format, args...)
}

func printError(format string, args ...any) {
	printLine(styleIconError.Render(iconError), format, args...)
}

func printWarning(format string, args ...any) {
	printLine(StyleWarning.Render(iconWarning), "%s", StyleWarning.Render(fmt.Sprintf(format, args...)))
}

func printInfo(format string, args ...any) {
	printLine(styleIconInfo.Render(iconInfo), format, args...)
}

// printDetail prints an indented, dimmed line under the previous one.
func printDetail(format string, args ...any) {
	fmt.Fprintln(ui, "  "+StyleDim.Render(fmt.Sprintf(format, args...)))
}

// printFile prints a written artifact path.
func printFile(path string) {
	fmt.Fprintln(ui, "  "+StyleDim.Render(iconArrow)+" "+StyleValue.Render(path))
}

func printKeyValue(key, value string) {
	fmt.Fprintln(ui, styleKey.Render(key)+" "+StyleValue.Render(value))
}

func printNextStep(description, cmd string) {
	fmt.Fprintln(ui, StyleDim.Render(description+":")+" "+styleCommand.Render(cmd))
}

func printNewline() {
	fmt.Fprintln(ui)
}

// printStats prints one summary line for a render, e.g.
// "3 panels · mapped in 412ms · 1 failed · fresh".
func printStats(res *pipeline.Result) {
	var parts []string
	if res.Plot != nil {
		parts = append(parts, fmt.Sprintf("%d panels", len(res.Plot.Panels())))
	}
	if res.Stats.MapTime > 0 {
		parts = append(parts, "mapped in "+res.Stats.MapTime.Round(time.Millisecond).String())
	}
	if n := len(res.Faults); n > 0 {
		parts = append(parts, fmt.Sprintf("%d failed", n))
	}
	for i, p := range parts {
		parts[i] = StyleDim.Render(p)
	}
	if res.CacheInfo.RenderHit {
		parts = append(parts, styleCached.Render("cached"))
	} else {
		parts = append(parts, StyleDim.Render("fresh"))
	}
	fmt.Fprintln(ui, "  "+strings.Join(parts, StyleDim.Render(" · ")))
}
