package domain

import "strings"

// Speaker identifies the author of a ConversationTurn.
type Speaker string

// Conversation speakers.
const (
	SpeakerHuman     Speaker = "human"
	SpeakerAssistant Speaker = "assistant"
)

// Label returns the prefix used when rendering history into a prompt.
func (s Speaker) Label() string {
	switch s {
	case SpeakerHuman:
		return "Human"
	case SpeakerAssistant:
		return "Assistant"
	default:
		return string(s)
	}
}

// ConversationTurn is one line of dialogue history.
type ConversationTurn struct {
	Speaker Speaker `json:"speaker"`
	Text    string  `json:"text"`
}

// HumanTurn builds a turn spoken by the user.
func HumanTurn(text string) ConversationTurn {
	return ConversationTurn{Speaker: SpeakerHuman, Text: text}
}

// AssistantTurn builds a turn spoken by the assistant.
func AssistantTurn(text string) ConversationTurn {
	return ConversationTurn{Speaker: SpeakerAssistant, Text: text}
}

// RenderHistory serialises turns in chronological order as
// "Human: ..." / "Assistant: ..." lines joined by newlines.
func RenderHistory(history []ConversationTurn) string {
	lines := make([]string, 0, len(history))
	for _, turn := range history {
		lines = append(lines, turn.Speaker.Label()+": "+turn.Text)
	}
	return strings.Join(lines, "\n")
}

// PairsToHistory converts [question, answer] pairs into turns.
// Pairs with an empty answer contribute only the question.
func PairsToHistory(pairs [][2]string) []ConversationTurn {
	history := make([]ConversationTurn, 0, len(pairs)*2)
	for _, pair := range pairs {
		history = append(history, HumanTurn(pair[0]))
		if pair[1] != "" {
			history = append(history, AssistantTurn(pair[1]))
		}
	}
	return history
}

// SanitizeQuestion trims the question and replaces newlines with spaces.
func SanitizeQuestion(question string) string {
	q := strings.TrimSpace(question)
	q = strings.ReplaceAll(q, "\r\n", " ")
	return strings.ReplaceAll(q, "\n", " ")
}

// Query is the input of the conversational chain.
type Query struct {
	// Namespace is the raw namespace name; it is normalised before use.
	Namespace string

	// Question is the user's latest question.
	Question string

	// History is the prior dialogue, oldest first. It is never modified.
	History []ConversationTurn
}

// ChainState is a state of the conversational chain.
type ChainState string

// Chain states.
const (
	StateStart      ChainState = "start"
	StateCondensing ChainState = "condensing"
	StateRetrieving ChainState = "retrieving"
	StateGenerating ChainState = "generating"
	StateDone       ChainState = "done"
	StateFailed     ChainState = "failed"
)

// Answer is the output of the conversational chain.
type Answer struct {
	// Text is the generated answer.
	Text string `json:"text"`

	// StandaloneQuestion is the condensed question used for retrieval.
	StandaloneQuestion string `json:"standalone_question"`

	// Context is the bounded retrieval context given to the generator.
	Context string `json:"context"`

	// Matches are the hits that survived the score filter, best first.
	Matches []Match `json:"matches"`

	// Trace lists the states the chain went through.
	Trace []ChainState `json:"trace"`
}

// ChatRequest is one message sent to a persisted conversation.
type ChatRequest struct {
	// ChatID continues an existing conversation. Empty starts a new one.
	ChatID string

	Namespace string
	UserEmail string
	Question  string
	History   []ConversationTurn
}

// ChatResponse is the reply to a ChatRequest.
type ChatResponse struct {
	ChatID          string  `json:"chat_id"`
	Text            string  `json:"text"`
	SourceDocuments []Match `json:"source_documents"`
}
