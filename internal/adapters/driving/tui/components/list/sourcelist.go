// Package list provides list display components for the TUI.
package list

import (
	"fmt"
	"path/filepath"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/askdocs/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/askdocs/internal/core/domain"
)

// SourceList displays the matches that backed the last answer.
type SourceList struct {
	matches  []domain.Match
	selected int
	styles   *styles.Styles
	width    int
	height   int
}

// NewSourceList creates an empty source list.
func NewSourceList(s *styles.Styles) *SourceList {
	if s == nil {
		s = styles.DefaultStyles()
	}

	return &SourceList{
		styles: s,
		width:  80,
		height: 10,
	}
}

// Init initialises the source list.
func (l *SourceList) Init() tea.Cmd {
	return nil
}

// Update handles arrow-key navigation.
func (l *SourceList) Update(msg tea.Msg) (*SourceList, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		//nolint:exhaustive // handling only relevant key types
		switch msg.Type {
		case tea.KeyUp:
			l.MoveUp()
		case tea.KeyDown:
			l.MoveDown()
		default:
		}
	}
	return l, nil
}

// View renders the list.
func (l *SourceList) View() string {
	if len(l.matches) == 0 {
		return l.styles.Muted.Render("No sources")
	}

	lines := make([]string, 0, len(l.matches)+2)
	lines = append(lines, l.styles.Subtitle.Render(fmt.Sprintf("Sources (%d)", len(l.matches))), "")

	// Each match takes two lines.
	visible := (l.height - 2) / 2
	if visible < 1 {
		visible = 1
	}
	start := 0
	if l.selected >= visible {
		start = l.selected - visible + 1
	}
	end := start + visible
	if end > len(l.matches) {
		end = len(l.matches)
	}

	for i := start; i < end; i++ {
		lines = append(lines, l.renderMatch(i, &l.matches[i]))
	}
	return strings.Join(lines, "\n")
}

func (l *SourceList) renderMatch(index int, m *domain.Match) string {
	indicator := "  "
	if index == l.selected {
		indicator = "> "
	}

	name := m.ID
	if m.Metadata.Source != "" {
		name = filepath.Base(m.Metadata.Source)
	}
	score := "-"
	if m.Scored {
		score = fmt.Sprintf("%.2f", m.Score)
	}

	title := l.styles.Normal.Render(indicator+name) + "  " + l.styles.Score.Render(score)
	preview := l.styles.Muted.Render("    " + truncate(oneLine(m.Metadata.Text), l.width-6))
	return title + "\n" + preview
}

// oneLine collapses whitespace so a chunk previews on a single line.
func oneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func truncate(s string, maxLen int) string {
	if maxLen < 20 {
		maxLen = 20
	}
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	return string(r[:maxLen-3]) + "..."
}

// SetMatches replaces the listed matches.
func (l *SourceList) SetMatches(matches []domain.Match) {
	l.matches = matches
	l.selected = 0
}

// Matches returns the listed matches.
func (l *SourceList) Matches() []domain.Match {
	return l.matches
}

// Selected returns the index of the selected match.
func (l *SourceList) Selected() int {
	return l.selected
}

// SelectedMatch returns the selected match, or nil if the list is empty.
func (l *SourceList) SelectedMatch() *domain.Match {
	if l.selected < 0 || l.selected >= len(l.matches) {
		return nil
	}
	return &l.matches[l.selected]
}

// MoveUp moves selection up.
func (l *SourceList) MoveUp() {
	if l.selected > 0 {
		l.selected--
	}
}

// MoveDown moves selection down.
func (l *SourceList) MoveDown() {
	if l.selected < len(l.matches)-1 {
		l.selected++
	}
}

// SetDimensions sets the component dimensions.
func (l *SourceList) SetDimensions(width, height int) {
	l.width = width
	l.height = height
}

// Count returns the number of matches.
func (l *SourceList) Count() int {
	return len(l.matches)
}
