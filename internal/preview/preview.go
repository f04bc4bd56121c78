// Package preview renders generated exams and menus for the terminal.
package preview

import (
	"fmt"
	"io"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/examgen/internal/answerkey"
	"github.com/abhisek/examgen/internal/exam"
	"github.com/abhisek/examgen/internal/ui/theme"
)

// Exam renders every version of res. With showKey set the correct
// alternatives are highlighted and each version ends with its key.
func Exam(res *exam.Result, showKey bool) string {
	var blocks []string
	blocks = append(blocks, theme.Subtitle.Render(fmt.Sprintf("run %s · seed %d · %s ×%d",
		res.RunID, res.RunSeed, res.Mode, res.Workers)))

	for _, v := range res.Versions {
		blocks = append(blocks, theme.Title.Render("Version "+v.Label))
		for n, q := range v.Questions {
			blocks = append(blocks, question(n+1, q, showKey))
		}
		if showKey {
			blocks = append(blocks, theme.Key.Render("Key: "+strings.Join(v.AnswerKey(), " ")))
		}
	}
	if len(res.Warnings) > 0 {
		blocks = append(blocks, warnings(res.WarningMessages()))
	}
	return lipgloss.JoinVertical(lipgloss.Left, blocks...)
}

// Menu renders a catalogue listing with the correct answers marked.
func Menu(m *exam.Menu) string {
	var blocks []string
	for _, e := range m.Entries {
		header := fmt.Sprintf("#%d", e.TemplateID)
		if e.Subject != "" || e.Topic != "" {
			header += " " + strings.TrimSpace(e.Subject+" / "+e.Topic)
		}
		blocks = append(blocks, theme.Subtitle.Render(header))
		blocks = append(blocks, question(0, e.Question, true))
	}
	if len(m.Warnings) > 0 {
		msgs := make([]string, len(m.Warnings))
		for i, w := range m.Warnings {
			msgs[i] = w.Message
		}
		blocks = append(blocks, warnings(msgs))
	}
	return lipgloss.JoinVertical(lipgloss.Left, blocks...)
}

// Write prints s to w, downsampling colours to what w supports.
func Write(w io.Writer, s string) error {
	_, err := lipgloss.Fprintln(w, s)
	return err
}

func question(n int, q exam.Question, showKey bool) string {
	var lines []string
	head := q.Body
	if n > 0 {
		head = fmt.Sprintf("%d. %s", n, q.Body)
	}
	if q.Score != "" {
		head += " " + theme.Score.Render("("+q.Score+")")
	}
	lines = append(lines, theme.Body.Render(head))
	if q.Image != "" {
		lines = append(lines, theme.Hint.Render(fmt.Sprintf("[image %s, %d%%]", q.Image, q.ImageWidth)))
	}

	switch p := q.Payload.(type) {
	case exam.MultipleChoice:
		for i, alt := range p.Alternatives {
			letter := theme.Letter.Render(answerkey.Letter(i) + ")")
			text := alt
			if showKey && i == p.Correct {
				text = theme.Correct.Render(alt)
			}
			lines = append(lines, letter+" "+text)
		}
	case exam.TrueFalse:
		line := "( ) True   ( ) False"
		if showKey {
			line += "  " + theme.Correct.Render(p.Key())
		}
		lines = append(lines, line)
	case exam.Open:
		lines = append(lines, theme.Hint.Render("(open answer)"))
	}
	return theme.Card.Render(strings.Join(lines, "\n"))
}

func warnings(msgs []string) string {
	lines := []string{theme.Warning.Render(fmt.Sprintf("%d warning(s):", len(msgs)))}
	for _, m := range msgs {
		lines = append(lines, theme.Warning.Render("  - "+m))
	}
	return strings.Join(lines, "\n")
}
