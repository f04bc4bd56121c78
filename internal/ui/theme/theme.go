// Package theme holds the colours and styles of the exam preview.
package theme

import (
	"charm.land/lipgloss/v2"
)

// Palette. Exams are proofread on dark terminals, so ink colours are light
// and the key colours stay distinguishable for colour-blind readers.
var (
	Ink      = lipgloss.Color("#E2E8F0")
	InkMuted = lipgloss.Color("#7C8BA1")
	Heading  = lipgloss.Color("#A78BFA")
	LetterFg = lipgloss.Color("#38BDF8")
	KeyFg    = lipgloss.Color("#FACC15")
	ScoreFg  = lipgloss.Color("#FB923C")
	Alert    = lipgloss.Color("#F87171")
	Rule     = lipgloss.Color("#475569")
)

// Version headers and run metadata.
var (
	Title    = lipgloss.NewStyle().Bold(true).Foreground(Heading).MarginTop(1)
	Subtitle = lipgloss.NewStyle().Foreground(InkMuted)
)

// Question cards.
var (
	Card = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(Rule).
		Padding(0, 1)

	Body   = lipgloss.NewStyle().Foreground(Ink)
	Hint   = lipgloss.NewStyle().Foreground(InkMuted).Italic(true)
	Letter = lipgloss.NewStyle().Foreground(LetterFg).Bold(true)
	Score  = lipgloss.NewStyle().Foreground(ScoreFg)
)

// Answer key.
var (
	Correct = lipgloss.NewStyle().Foreground(KeyFg).Bold(true)
	Key     = lipgloss.NewStyle().Foreground(KeyFg)
)

var Warning = lipgloss.NewStyle().Foreground(Alert)
