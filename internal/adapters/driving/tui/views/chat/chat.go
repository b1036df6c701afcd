// Package chat provides the conversation view for the TUI.
package chat

import (
	"context"
	"errors"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/askdocs/internal/adapters/driving/tui/components/input"
	"github.com/custodia-labs/askdocs/internal/adapters/driving/tui/components/list"
	"github.com/custodia-labs/askdocs/internal/adapters/driving/tui/components/status"
	"github.com/custodia-labs/askdocs/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/askdocs/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/askdocs/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/askdocs/internal/core/domain"
	"github.com/custodia-labs/askdocs/internal/core/ports/driving"
)

// ErrNoConversationService is returned when a question is asked without a
// conversation service.
var ErrNoConversationService = errors.New("conversation service not available")

// Session identifies the conversation shown by the view.
type Session struct {
	Namespace string
	UserEmail string

	// ChatID resumes an existing chat when set.
	ChatID string
}

// View shows the transcript, the question input and the sources of the
// last answer.
type View struct {
	styles     *styles.Styles
	keymap     *keymap.KeyMap
	input      *input.QuestionInput
	sources    *list.SourceList
	statusbar  *status.Bar
	transcript viewport.Model

	conversation driving.ConversationService
	namespaces   driving.NamespaceService
	ctx          context.Context

	session     Session
	turns       []domain.ConversationTurn
	pending     string
	showSources bool
	err         error

	width  int
	height int
	ready  bool
}

// NewView creates a chat view. namespaces may be nil; it is only used to
// display the transcript of a resumed chat.
func NewView(
	s *styles.Styles,
	km *keymap.KeyMap,
	conversation driving.ConversationService,
	namespaces driving.NamespaceService,
	session Session,
) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if km == nil {
		km = keymap.DefaultKeyMap()
	}

	bar := status.NewBar(s, km)
	bar.SetNamespace(session.Namespace)

	return &View{
		styles:       s,
		keymap:       km,
		input:        input.NewQuestionInput(s),
		sources:      list.NewSourceList(s),
		statusbar:    bar,
		transcript:   viewport.New(80, 16),
		conversation: conversation,
		namespaces:   namespaces,
		ctx:          context.Background(),
		session:      session,
		width:        80,
		height:       24,
	}
}

// WithContext sets the context used for service calls.
func (v *View) WithContext(ctx context.Context) *View {
	v.ctx = ctx
	return v
}

// Init starts the cursor and loads the transcript of a resumed chat.
func (v *View) Init() tea.Cmd {
	cmds := []tea.Cmd{v.input.Init()}
	if v.session.ChatID != "" && v.namespaces != nil {
		cmds = append(cmds, v.loadHistory(v.session.ChatID))
	}
	return tea.Batch(cmds...)
}

// Update handles messages for the chat view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
		return v, nil

	case tea.KeyMsg:
		return v.handleKeyMsg(msg)

	case messages.AnswerReceived:
		return v, v.handleAnswer(msg)

	case messages.HistoryLoaded:
		v.handleHistory(msg)
		return v, nil

	case messages.ErrorOccurred:
		v.setError(msg.Err)
		return v, nil
	}

	var cmd tea.Cmd
	v.statusbar, cmd = v.statusbar.Update(msg)
	return v, cmd
}

func (v *View) handleKeyMsg(msg tea.KeyMsg) (*View, tea.Cmd) {
	keyStr := msg.String()

	switch {
	case key.Matches(msg, v.keymap.Send):
		return v, v.submit()

	case key.Matches(msg, v.keymap.Sources):
		v.showSources = !v.showSources
		v.layout()
		return v, nil

	case key.Matches(msg, v.keymap.ScrollUp):
		v.scroll(-v.transcript.Height / 2)
		return v, nil

	case key.Matches(msg, v.keymap.ScrollDown):
		v.scroll(v.transcript.Height / 2)
		return v, nil

	case key.Matches(msg, v.keymap.Clear):
		v.Reset()
		return v, nil
	}

	if v.showSources && (keyStr == "up" || keyStr == "down") {
		v.sources, _ = v.sources.Update(msg)
		return v, nil
	}

	if v.pending != "" {
		return v, nil
	}

	var cmd tea.Cmd
	v.input, cmd = v.input.Update(msg)
	return v, cmd
}

// submit sends the typed question unless one is already pending.
func (v *View) submit() tea.Cmd {
	if v.pending != "" {
		return nil
	}
	question := strings.TrimSpace(v.input.Value())
	if question == "" {
		return nil
	}

	v.pending = question
	v.err = nil
	v.input.Reset()
	v.input.Blur()
	v.refresh()

	return tea.Batch(v.statusbar.SetState(status.StateThinking), v.ask(question))
}

func (v *View) ask(question string) tea.Cmd {
	conversation := v.conversation
	ctx := v.ctx
	req := domain.ChatRequest{
		ChatID:    v.session.ChatID,
		Namespace: v.session.Namespace,
		UserEmail: v.session.UserEmail,
		Question:  question,
	}
	return func() tea.Msg {
		if conversation == nil {
			return messages.AnswerReceived{Question: question, Err: ErrNoConversationService}
		}
		resp, err := conversation.Send(ctx, req)
		return messages.AnswerReceived{Question: question, Response: resp, Err: err}
	}
}

func (v *View) loadHistory(chatID string) tea.Cmd {
	namespaces := v.namespaces
	ctx := v.ctx
	return func() tea.Msg {
		msgs, err := namespaces.Messages(ctx, chatID)
		return messages.HistoryLoaded{ChatID: chatID, Messages: msgs, Err: err}
	}
}

func (v *View) handleAnswer(msg messages.AnswerReceived) tea.Cmd {
	v.pending = ""
	focus := v.input.Focus()

	if msg.Err != nil {
		v.setError(msg.Err)
		v.refresh()
		return focus
	}

	v.err = nil
	v.session.ChatID = msg.Response.ChatID
	v.turns = append(v.turns, domain.HumanTurn(msg.Question), domain.AssistantTurn(msg.Response.Text))
	v.sources.SetMatches(msg.Response.SourceDocuments)
	v.statusbar.SetState(status.StateReady)
	v.statusbar.SetMessage("")
	v.statusbar.SetTurns(v.questionCount())
	v.refresh()
	return focus
}

func (v *View) handleHistory(msg messages.HistoryLoaded) {
	if msg.Err != nil {
		v.setError(msg.Err)
		return
	}
	turns := make([]domain.ConversationTurn, 0, len(msg.Messages))
	for _, m := range msg.Messages {
		if m.Sender == domain.SenderBot {
			turns = append(turns, domain.AssistantTurn(m.Content))
		} else {
			turns = append(turns, domain.HumanTurn(m.Content))
		}
	}
	v.turns = append(turns, v.turns...)
	v.statusbar.SetTurns(v.questionCount())
	v.refresh()
}

func (v *View) setError(err error) {
	v.err = err
	v.statusbar.SetState(status.StateError)
	v.statusbar.SetMessage(err.Error())
}

func (v *View) questionCount() int {
	n := 0
	for _, t := range v.turns {
		if t.Speaker == domain.SpeakerHuman {
			n++
		}
	}
	return n
}

func (v *View) scroll(lines int) {
	v.transcript.SetYOffset(v.transcript.YOffset + lines)
}

// refresh re-renders the transcript and scrolls to the latest line.
func (v *View) refresh() {
	v.transcript.SetContent(v.renderTranscript())
	v.transcript.GotoBottom()
}

func (v *View) renderTranscript() string {
	if len(v.turns) == 0 && v.pending == "" {
		return v.styles.Muted.Render("Ask anything about the documents in " + v.session.Namespace + ".")
	}

	wrap := lipgloss.NewStyle().Width(v.width - 2)
	blocks := make([]string, 0, len(v.turns)+2)
	for _, t := range v.turns {
		blocks = append(blocks, wrap.Render(v.label(t.Speaker)+" "+t.Text))
	}
	if v.pending != "" {
		blocks = append(blocks, wrap.Render(v.label(domain.SpeakerHuman)+" "+v.pending))
	}
	if v.err != nil {
		blocks = append(blocks, v.styles.Error.Render("Error: "+v.err.Error()))
	}
	return strings.Join(blocks, "\n\n")
}

func (v *View) label(s domain.Speaker) string {
	if s == domain.SpeakerAssistant {
		return v.styles.BotLabel.Render("Assistant:")
	}
	return v.styles.UserLabel.Render("You:")
}

// View renders the chat view.
func (v *View) View() string {
	if !v.ready {
		return "Initialising..."
	}

	sections := []string{
		v.styles.Title.Render("askdocs · " + v.session.Namespace),
		v.transcript.View(),
	}
	if v.showSources {
		sections = append(sections, v.sources.View())
	}
	sections = append(sections, v.input.View(), v.statusbar.View())

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.ready = true
	v.layout()
}

// layout divides the height between transcript, sources, input and status.
func (v *View) layout() {
	// Title, input box (3 lines) and status bar.
	reserved := 5
	sourcesHeight := 0
	if v.showSources {
		sourcesHeight = v.height / 3
		v.sources.SetDimensions(v.width, sourcesHeight)
	}

	transcriptHeight := v.height - reserved - sourcesHeight
	if transcriptHeight < 3 {
		transcriptHeight = 3
	}

	v.transcript.Width = v.width
	v.transcript.Height = transcriptHeight
	v.input.SetWidth(v.width)
	v.statusbar.SetWidth(v.width)
	v.refresh()
}

// Reset starts a new chat in the same namespace.
func (v *View) Reset() {
	v.session.ChatID = ""
	v.turns = nil
	v.pending = ""
	v.err = nil
	v.sources.SetMatches(nil)
	v.statusbar.Clear()
	v.input.Reset()
	v.input.Focus()
	v.refresh()
}

// ChatID returns the current chat ID, empty before the first answer.
func (v *View) ChatID() string {
	return v.session.ChatID
}

// Turns returns the transcript shown in the view.
func (v *View) Turns() []domain.ConversationTurn {
	return v.turns
}

// Pending returns the question awaiting an answer.
func (v *View) Pending() string {
	return v.pending
}

// SourcesVisible reports whether the sources panel is shown.
func (v *View) SourcesVisible() bool {
	return v.showSources
}

// Err returns the last error, if any.
func (v *View) Err() error {
	return v.err
}

// Ready returns whether the view has received its dimensions.
func (v *View) Ready() bool {
	return v.ready
}

// Input exposes the question input for the app and tests.
func (v *View) Input() *input.QuestionInput {
	return v.input
}
