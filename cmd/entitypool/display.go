package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/l1jgo/entitypool/internal/world"
)

// ── Startup display helpers ────────────────────────────────────────

var (
	accent = lipgloss.Color("#00CCCC")
	muted  = lipgloss.Color("#666666")
	good   = lipgloss.Color("#00CC66")
	warn   = lipgloss.Color("#CCCC00")
)

var (
	bannerStyle  = lipgloss.NewStyle().Bold(true).Foreground(accent).Border(lipgloss.RoundedBorder()).BorderForeground(accent).Padding(0, 4)
	sectionStyle = lipgloss.NewStyle().Foreground(warn)
	mutedStyle   = lipgloss.NewStyle().Foreground(muted)
	countStyle   = lipgloss.NewStyle().Foreground(good)
	okStyle      = lipgloss.NewStyle().Foreground(good).Bold(true)
)

func printBanner(v string) {
	fmt.Println()
	fmt.Println(bannerStyle.Render(fmt.Sprintf("entitypool  v%s", v)))
	fmt.Println()
}

func printSection(title string) {
	lineLen := 46 - lipgloss.Width(title) - 1
	if lineLen < 3 {
		lineLen = 3
	}
	fmt.Printf("  %s\n", sectionStyle.Render("── "+title+" "+strings.Repeat("─", lineLen)))
}

func printStat(label string, count int) {
	numStr := fmt.Sprintf("%d", count)
	dotsLen := 42 - lipgloss.Width(label) - len(numStr)
	if dotsLen < 3 {
		dotsLen = 3
	}
	fmt.Printf("  %s %s %s\n", label, mutedStyle.Render(strings.Repeat("·", dotsLen)), countStyle.Render(numStr))
}

func printOK(msg string) {
	fmt.Printf("  %s %s\n", okStyle.Render("✓"), msg)
}

func printReady(msg string) {
	fmt.Printf("  %s %s\n", okStyle.Render("▶"), msg)
}

func printStats(st world.Stats) {
	printStat("entities", st.Entities)
	printStat("pending", st.Pending)
	for _, g := range st.Groups {
		printStat("group "+g.Name, g.Len)
	}
	for i, s := range st.Systems {
		name := s.Name
		if name == "" {
			name = fmt.Sprintf("#%d", i)
		}
		printStat("system "+name, s.Len)
	}
}
