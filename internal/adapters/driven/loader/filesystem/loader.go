// Package filesystem loads documents from a local directory and watches it
// for changes.
package filesystem

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"mime"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	gitignore "github.com/sabhiram/go-gitignore"

	"github.com/custodia-labs/askdocs/internal/core/domain"
	"github.com/custodia-labs/askdocs/internal/core/ports/driven"
	"github.com/custodia-labs/askdocs/internal/logger"
	"github.com/custodia-labs/askdocs/internal/normalisers/docx"
	"github.com/custodia-labs/askdocs/internal/normalisers/eml"
)

// Ensure Loader implements the interface.
var _ driven.DocumentLoader = (*Loader)(nil)

const (
	// DefaultMaxFileSize is the largest file read by Load.
	DefaultMaxFileSize int64 = 10 << 20

	// DefaultDebounce is how long Watch waits for a directory to settle.
	DefaultDebounce = 500 * time.Millisecond
)

// ignoreFiles are read from the root directory; their patterns use
// .gitignore syntax.
var ignoreFiles = []string{".gitignore", ".askdocsignore"}

// Loader reads and normalises every supported file below a root.
type Loader struct {
	registry    driven.NormaliserRegistry
	maxFileSize int64
	debounce    time.Duration
}

// Option configures a Loader.
type Option func(*Loader)

// WithMaxFileSize skips files larger than n bytes.
func WithMaxFileSize(n int64) Option {
	return func(l *Loader) {
		l.maxFileSize = n
	}
}

// WithDebounce sets the quiet period before Watch reports changes.
func WithDebounce(d time.Duration) Option {
	return func(l *Loader) {
		l.debounce = d
	}
}

// New creates a loader that normalises files with registry.
func New(registry driven.NormaliserRegistry, opts ...Option) *Loader {
	l := &Loader{
		registry:    registry,
		maxFileSize: DefaultMaxFileSize,
		debounce:    DefaultDebounce,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Load returns the documents found under root in lexical path order.
// root may also name a single file. Hidden and ignored paths are skipped,
// as are files no normaliser supports and files with no text.
func (l *Loader) Load(ctx context.Context, root string) ([]domain.Document, error) {
	if l.registry == nil {
		return nil, fmt.Errorf("%w: no normaliser registry", domain.ErrConfig)
	}

	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", root, err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s does not exist", domain.ErrInvalidInput, root)
		}
		return nil, fmt.Errorf("stat %s: %w", root, err)
	}

	logger.Section("Load")

	if !info.IsDir() {
		doc, err := l.loadFile(ctx, abs, info)
		if err != nil {
			return nil, err
		}
		if doc == nil {
			return nil, nil
		}
		return []domain.Document{*doc}, nil
	}

	ignore, err := loadIgnore(abs)
	if err != nil {
		return nil, err
	}

	var docs []domain.Document
	err = filepath.WalkDir(abs, func(path string, d fs.DirEntry, walkErr error) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		if walkErr != nil {
			logger.Warn("Skipping %s: %v", path, walkErr)
			if d != nil && d.IsDir() && path != abs {
				return fs.SkipDir
			}
			return nil
		}
		if path == abs {
			return nil
		}

		rel, _ := filepath.Rel(abs, path)
		if isHidden(rel) || ignore.matches(rel) {
			if d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}

		info, err := d.Info()
		if err != nil {
			logger.Warn("Skipping %s: %v", path, err)
			return nil
		}
		doc, err := l.loadFile(ctx, path, info)
		if err != nil {
			return err
		}
		if doc != nil {
			docs = append(docs, *doc)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk %s: %w", root, err)
	}

	logger.Debug("Loaded %d documents from %s", len(docs), abs)
	return docs, nil
}

// loadFile reads and normalises one file. A nil document means the file
// was skipped.
func (l *Loader) loadFile(ctx context.Context, path string, info fs.FileInfo) (*domain.Document, error) {
	if l.maxFileSize > 0 && info.Size() > l.maxFileSize {
		logger.Warn("Skipping %s: %d bytes exceeds limit of %d", path, info.Size(), l.maxFileSize)
		return nil, nil
	}

	content, err := os.ReadFile(path)
	if err != nil {
		logger.Warn("Skipping %s: %v", path, err)
		return nil, nil
	}

	raw := &domain.RawDocument{
		URI:      path,
		MIMEType: detectMIMEType(path),
		Content:  content,
		Metadata: map[string]any{
			"size":     info.Size(),
			"modified": info.ModTime().UTC().Format(time.RFC3339),
		},
	}

	result, err := l.registry.Normalise(ctx, raw)
	switch {
	case errors.Is(err, domain.ErrUnsupportedType):
		logger.Debug("Skipping %s: unsupported type %s", path, raw.MIMEType)
		return nil, nil
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return nil, err
	case err != nil:
		logger.Warn("Skipping %s: %v", path, err)
		return nil, nil
	}

	if strings.TrimSpace(result.Document.Content) == "" {
		logger.Debug("Skipping %s: no text", path)
		return nil, nil
	}
	return &result.Document, nil
}

// Watch reports created, updated and deleted files under root until ctx is
// cancelled, then closes the returned channel. Events are held until the
// directory has been quiet for the debounce period and are then emitted
// once per path, in path order.
func (l *Loader) Watch(ctx context.Context, root string) (<-chan domain.DocumentChange, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", root, err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", root, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: watch needs a directory, got %s", domain.ErrInvalidInput, root)
	}

	ignore, err := loadIgnore(abs)
	if err != nil {
		return nil, err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}

	w := &dirWatcher{
		loader:  l,
		root:    abs,
		ignore:  ignore,
		watcher: watcher,
		pending: make(map[string]domain.ChangeType),
	}
	if err := w.addRecursive(abs); err != nil {
		_ = watcher.Close()
		return nil, err
	}

	changes := make(chan domain.DocumentChange, 64)
	go w.run(ctx, changes)

	logger.Debug("Watching %s", abs)
	return changes, nil
}

// dirWatcher holds the state of one Watch call.
type dirWatcher struct {
	loader  *Loader
	root    string
	ignore  *ignoreMatcher
	watcher *fsnotify.Watcher

	mu      sync.Mutex
	pending map[string]domain.ChangeType
}

func (w *dirWatcher) run(ctx context.Context, changes chan<- domain.DocumentChange) {
	defer close(changes)
	defer w.watcher.Close()

	timer := time.NewTimer(w.loader.debounce)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			change := w.handleFsEvent(event)
			if change == nil {
				continue
			}
			w.record(*change)
			timer.Reset(w.loader.debounce)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			logger.Warn("Watch error: %v", err)

		case <-timer.C:
			for _, change := range w.flush() {
				select {
				case changes <- change:
				case <-ctx.Done():
					return
				}
			}
		}
	}
}

// handleFsEvent maps a raw fsnotify event to a document change.
// New directories are added to the watch and produce no change.
func (w *dirWatcher) handleFsEvent(event fsnotify.Event) *domain.DocumentChange {
	rel, err := filepath.Rel(w.root, event.Name)
	if err != nil || isHidden(rel) || w.ignore.matches(rel) {
		return nil
	}

	switch {
	case event.Has(fsnotify.Create):
		info, err := os.Stat(event.Name)
		if err != nil {
			return nil
		}
		if info.IsDir() {
			if err := w.addRecursive(event.Name); err != nil {
				logger.Warn("Watching %s: %v", event.Name, err)
			}
			return nil
		}
		if !w.supported(event.Name) {
			return nil
		}
		return &domain.DocumentChange{Type: domain.ChangeCreated, URI: event.Name}

	case event.Has(fsnotify.Write):
		if !w.supported(event.Name) {
			return nil
		}
		return &domain.DocumentChange{Type: domain.ChangeUpdated, URI: event.Name}

	case event.Has(fsnotify.Remove), event.Has(fsnotify.Rename):
		if !w.supported(event.Name) {
			return nil
		}
		return &domain.DocumentChange{Type: domain.ChangeDeleted, URI: event.Name}
	}

	return nil
}

// record merges change into the pending set. A deletion always wins and a
// creation is not downgraded to an update.
func (w *dirWatcher) record(change domain.DocumentChange) {
	w.mu.Lock()
	defer w.mu.Unlock()

	prev, ok := w.pending[change.URI]
	if ok && prev == domain.ChangeCreated && change.Type == domain.ChangeUpdated {
		return
	}
	w.pending[change.URI] = change.Type
}

// flush drains the pending set sorted by URI.
func (w *dirWatcher) flush() []domain.DocumentChange {
	w.mu.Lock()
	defer w.mu.Unlock()

	out := make([]domain.DocumentChange, 0, len(w.pending))
	for uri, typ := range w.pending {
		out = append(out, domain.DocumentChange{Type: typ, URI: uri})
	}
	w.pending = make(map[string]domain.ChangeType)

	sort.Slice(out, func(i, j int) bool { return out[i].URI < out[j].URI })
	return out
}

// addRecursive watches dir and every visible directory below it.
func (w *dirWatcher) addRecursive(dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if path != w.root {
			rel, _ := filepath.Rel(w.root, path)
			if isHidden(rel) || w.ignore.matches(rel) {
				return fs.SkipDir
			}
		}
		if err := w.watcher.Add(path); err != nil {
			return fmt.Errorf("watch %s: %w", path, err)
		}
		return nil
	})
}

func (w *dirWatcher) supported(path string) bool {
	mimeType := detectMIMEType(path)
	for _, t := range w.loader.registry.SupportedMIMETypes() {
		if t == mimeType {
			return true
		}
	}
	return false
}

// mimeOverrides covers extensions the mime package does not know or
// reports inconsistently across platforms.
var mimeOverrides = map[string]string{
	".md":       "text/markdown",
	".markdown": "text/markdown",
	".txt":      "text/plain",
	".rst":      "text/x-rst",
	".go":       "text/x-go",
	".py":       "text/x-python",
	".rs":       "text/x-rust",
	".java":     "text/x-java",
	".c":        "text/x-c",
	".h":        "text/x-c",
	".ts":       "text/typescript",
	".tsx":      "text/typescript-jsx",
	".jsx":      "text/javascript-jsx",
	".js":       "text/javascript",
	".css":      "text/css",
	".yaml":     "text/yaml",
	".yml":      "text/yaml",
	".toml":     "text/toml",
	".sh":       "text/x-shellscript",
	".bash":     "text/x-shellscript",
	".sql":      "text/x-sql",
	".csv":      "text/csv",
	".json":     "application/json",
	".xml":      "application/xml",
	".html":     "text/html",
	".htm":      "text/html",
	".docx":     docx.MIMEType,
	".eml":      eml.MIMEType,
}

// detectMIMEType guesses a MIME type from the file extension.
// Parameters such as charset are dropped.
func detectMIMEType(path string) string {
	ext := strings.ToLower(filepath.Ext(path))
	if ext == "" {
		return "text/plain"
	}
	if t, ok := mimeOverrides[ext]; ok {
		return t
	}
	if t := mime.TypeByExtension(ext); t != "" {
		if i := strings.Index(t, ";"); i >= 0 {
			t = t[:i]
		}
		return strings.TrimSpace(t)
	}
	return "application/octet-stream"
}

// isHidden reports whether any element of path starts with a dot.
// "." and ".." are not hidden.
func isHidden(path string) bool {
	for _, part := range strings.Split(filepath.ToSlash(path), "/") {
		if len(part) > 1 && part[0] == '.' && part != ".." {
			return true
		}
	}
	return false
}

// ignoreMatcher applies the root's ignore files. A nil matcher ignores
// nothing.
type ignoreMatcher struct {
	patterns *gitignore.GitIgnore
}

func loadIgnore(root string) (*ignoreMatcher, error) {
	var lines []string
	for _, name := range ignoreFiles {
		data, err := os.ReadFile(filepath.Join(root, name))
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", name, err)
		}
		for _, line := range strings.Split(string(data), "\n") {
			line = strings.TrimSpace(line)
			if line == "" || strings.HasPrefix(line, "#") {
				continue
			}
			lines = append(lines, line)
		}
	}
	if len(lines) == 0 {
		return nil, nil
	}
	logger.Debug("Ignore patterns: %d", len(lines))
	return &ignoreMatcher{patterns: gitignore.CompileIgnoreLines(lines...)}, nil
}

func (m *ignoreMatcher) matches(rel string) bool {
	if m == nil {
		return false
	}
	return m.patterns.MatchesPath(filepath.ToSlash(rel))
}
