// Package library stores generated books as markdown files in a directory.
package library

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"

	"topicbook/pkg/topicbook"
)

// DefaultDir is the output directory used when none is configured.
const DefaultDir = "Generated-Books"

const bookExt = ".md"

// cacheSize bounds the number of book bodies kept in memory.
const cacheSize = 64

var unsafeFilenameChars = regexp.MustCompile(`[\\/*?:"<>|]`)

// Library is a directory of markdown books.
type Library struct {
	dir string
	// mu serializes Save so two tasks with the same topic get distinct names.
	mu sync.Mutex
	// Saved books are never rewritten, so cached bodies stay valid.
	cache *lru.Cache[string, topicbook.Book]
}

// New returns a library rooted at dir. The directory is created on first save.
func New(dir string) *Library {
	if strings.TrimSpace(dir) == "" {
		dir = DefaultDir
	}
	cache, _ := lru.New[string, topicbook.Book](cacheSize)
	return &Library{dir: dir, cache: cache}
}

// Dir returns the library directory.
func (l *Library) Dir() string {
	return l.dir
}

// List returns book filenames sorted by name. A missing directory is empty.
func (l *Library) List() ([]string, error) {
	entries, err := os.ReadDir(l.dir)
	if errors.Is(err, fs.ErrNotExist) {
		return []string{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("list books: %w", err)
	}
	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), bookExt) {
			continue
		}
		names = append(names, entry.Name())
	}
	sort.Strings(names)
	return names, nil
}

// Get reads one book by filename.
func (l *Library) Get(filename string) (topicbook.Book, error) {
	if !validFilename(filename) {
		return topicbook.Book{}, fmt.Errorf("get book %q: %w", filename, topicbook.ErrBookNotFound)
	}
	if book, ok := l.cache.Get(filename); ok {
		return book, nil
	}
	data, err := os.ReadFile(filepath.Join(l.dir, filename))
	if errors.Is(err, fs.ErrNotExist) {
		return topicbook.Book{}, fmt.Errorf("get book %q: %w", filename, topicbook.ErrBookNotFound)
	}
	if err != nil {
		return topicbook.Book{}, fmt.Errorf("get book %q: %w", filename, err)
	}
	book := topicbook.Book{Filename: filename, Content: string(data)}
	l.cache.Add(filename, book)
	return book, nil
}

// Save writes content under a filename derived from topic and returns the
// path written. Existing books are never overwritten; a numeric suffix is
// appended instead.
func (l *Library) Save(topic, content string) (string, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if err := os.MkdirAll(l.dir, 0o755); err != nil {
		return "", fmt.Errorf("create library dir: %w", err)
	}
	base := BaseFilename(topic)
	for counter := 0; ; counter++ {
		name := base + bookExt
		if counter > 0 {
			name = base + "_" + strconv.Itoa(counter) + bookExt
		}
		path := filepath.Join(l.dir, name)
		file, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
		if errors.Is(err, fs.ErrExist) {
			continue
		}
		if err != nil {
			return "", fmt.Errorf("save book: %w", err)
		}
		if _, err := file.WriteString(content); err != nil {
			_ = file.Close()
			return "", fmt.Errorf("save book: %w", err)
		}
		if err := file.Close(); err != nil {
			return "", fmt.Errorf("save book: %w", err)
		}
		return path, nil
	}
}

// BaseFilename strips characters that are unsafe in filenames and replaces
// spaces with underscores.
func BaseFilename(topic string) string {
	base := unsafeFilenameChars.ReplaceAllString(topic, "")
	base = strings.ReplaceAll(base, " ", "_")
	if base == "" || base == "." || base == ".." {
		return "book"
	}
	return base
}

func validFilename(name string) bool {
	if name == "" || name != filepath.Base(name) || strings.ContainsAny(name, `/\`) {
		return false
	}
	return strings.HasSuffix(name, bookExt) && !strings.HasPrefix(name, ".")
}
