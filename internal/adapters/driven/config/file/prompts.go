package file

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/custodia-labs/askdocs/internal/core/domain"
	"github.com/custodia-labs/askdocs/internal/core/ports/driven"
	"github.com/custodia-labs/askdocs/internal/logger"
)

// Ensure PromptStore implements the interface.
var _ driven.PromptStore = (*PromptStore)(nil)

// builtinPrompt is a template shipped with the binary and the placeholders
// an edited copy is expected to keep.
type builtinPrompt struct {
	template     string
	placeholders []string
}

var builtinPrompts = map[string]builtinPrompt{
	driven.PromptCondense: {
		template:     domain.DefaultCondenseTemplate,
		placeholders: []string{domain.PlaceholderChatHistory, domain.PlaceholderQuestion},
	},
	driven.PromptAnswer: {
		template:     domain.DefaultAnswerTemplate,
		placeholders: []string{domain.PlaceholderContext, domain.PlaceholderQuestion},
	},
}

const promptReadme = `# askdocs prompts

askdocs reads two templates from this directory:

  condense.txt  rewrites a follow-up into a standalone question
  answer.txt    answers the standalone question from retrieved text

Placeholders are replaced in a single pass, so placeholder-like text
inside your documents is never expanded:

  {chat_history}  earlier turns as "Human:" / "Assistant:" lines
  {question}      the question being asked
  {context}       retrieved document text (answer.txt)

Delete a file to go back to the built-in template. Edits are picked up
by the next command.
`

// PromptStore serves templates from <dir>/<name>.txt. The directory is
// seeded with the built-in templates and a README on first use, and a
// missing file falls back to the built-in template. Loaded templates are
// cached until Reload.
type PromptStore struct {
	dir string

	seedOnce sync.Once
	seedErr  error

	mu     sync.RWMutex
	loaded map[string]string
}

// NewPromptStore creates a prompt store rooted at dir, or ~/.askdocs/prompts
// when dir is empty. Nothing is written until the first Load.
func NewPromptStore(dir string) (*PromptStore, error) {
	if dir == "" {
		base, err := DefaultDir()
		if err != nil {
			return nil, err
		}
		dir = filepath.Join(base, "prompts")
	}
	return &PromptStore{dir: dir, loaded: make(map[string]string)}, nil
}

// Load returns the named template with surrounding whitespace trimmed.
func (s *PromptStore) Load(name string) (string, error) {
	builtin, ok := builtinPrompts[name]
	if !ok {
		return "", fmt.Errorf("unknown prompt %q", name)
	}

	s.seedOnce.Do(s.seed)
	if s.seedErr != nil {
		logger.Debug("Prompt directory unavailable, using built-in %s: %v", name, s.seedErr)
		return builtin.template, nil
	}

	s.mu.RLock()
	tmpl, cached := s.loaded[name]
	s.mu.RUnlock()
	if cached {
		return tmpl, nil
	}

	tmpl, err := s.read(name)
	if err != nil {
		logger.Debug("Prompt %s: %v, using built-in template", name, err)
		tmpl = builtin.template
	}
	for _, p := range builtin.placeholders {
		if !strings.Contains(tmpl, p) {
			logger.Warn("Prompt %s does not use %s", name, p)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if existing, ok := s.loaded[name]; ok {
		return existing, nil
	}
	s.loaded[name] = tmpl
	return tmpl, nil
}

// Reload drops cached templates so the next Load reads the files again.
func (s *PromptStore) Reload() {
	s.mu.Lock()
	defer s.mu.Unlock()
	clear(s.loaded)
}

// Dir returns the prompt directory.
func (s *PromptStore) Dir() string {
	return s.dir
}

func (s *PromptStore) read(name string) (string, error) {
	data, err := os.ReadFile(s.path(name))
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}

func (s *PromptStore) path(name string) string {
	return filepath.Join(s.dir, name+".txt")
}

// seed creates the directory and writes any file that does not exist yet.
func (s *PromptStore) seed() {
	if err := os.MkdirAll(s.dir, 0700); err != nil {
		s.seedErr = fmt.Errorf("create prompt directory: %w", err)
		return
	}

	files := map[string]string{filepath.Join(s.dir, "README.md"): promptReadme}
	for name, builtin := range builtinPrompts {
		files[s.path(name)] = builtin.template
	}
	for path, content := range files {
		if err := writeIfAbsent(path, content); err != nil {
			s.seedErr = fmt.Errorf("seed %s: %w", filepath.Base(path), err)
			return
		}
	}
}

func writeIfAbsent(path, content string) error {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0600)
	if errors.Is(err, fs.ErrExist) {
		return nil
	}
	if err != nil {
		return err
	}
	if _, err := f.WriteString(content); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
