package main

import (
	"strings"
	"unicode"

	"github.com/charmbracelet/lipgloss"

	"github.com/robalobadob/wordle-solver/internal/feedback"
	"github.com/robalobadob/wordle-solver/internal/words"
)

var (
	tileBase      = lipgloss.NewStyle().Bold(true).Padding(0, 1).Foreground(lipgloss.Color("255"))
	tileCorrect   = tileBase.Background(lipgloss.Color("28"))
	tileMisplaced = tileBase.Background(lipgloss.Color("178"))
	tileWrong     = tileBase.Background(lipgloss.Color("240"))

	dimStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	headStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("63"))
)

func tileStyle(m feedback.Mark) lipgloss.Style {
	switch m {
	case feedback.Correct:
		return tileCorrect
	case feedback.Misplaced:
		return tileMisplaced
	default:
		return tileWrong
	}
}

// renderRow draws guess as coloured tiles followed by the pattern symbols,
// so the row stays readable without colour.
func renderRow(guess words.Word, p feedback.Pattern) string {
	marks := p.Marks()
	tiles := make([]string, len(guess))
	for i, r := range guess {
		tiles[i] = tileStyle(marks[i]).Render(string(unicode.ToUpper(r)))
	}
	return strings.Join(tiles, " ") + "  " + dimStyle.Render(p.String())
}
