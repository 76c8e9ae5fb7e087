// Package catalog presents finished books: list formatting, selection and
// markdown rendering for the terminal.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"

	"topicbook/pkg/topicbook"
)

// EmptyMessage is printed when no books exist.
const EmptyMessage = "No books generated yet."

// ErrAmbiguous reports a selector matching more than one book.
var ErrAmbiguous = errors.New("selector matches more than one book")

// FormatList renders names as a numbered list of titles.
func FormatList(names []string, noColor bool) string {
	if len(names) == 0 {
		return EmptyMessage + "\n"
	}
	index := lipgloss.NewStyle().Foreground(lipgloss.Color("242"))
	file := lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	width := len(strconv.Itoa(len(names)))

	var b strings.Builder
	for i, name := range names {
		num := fmt.Sprintf("%*d.", width, i+1)
		suffix := "(" + name + ")"
		if !noColor {
			num = index.Render(num)
			suffix = file.Render(suffix)
		}
		fmt.Fprintf(&b, "%s %s %s\n", num, topicbook.BookTitle(name), suffix)
	}
	return b.String()
}

// Resolve maps a selector to a filename from names. The selector may be a
// 1-based list index, an exact filename, or a title (case-insensitive).
func Resolve(names []string, selector string) (string, error) {
	selector = strings.TrimSpace(selector)
	if selector == "" {
		return "", errors.New("book selector is required")
	}
	if n, err := strconv.Atoi(selector); err == nil {
		if n < 1 || n > len(names) {
			return "", fmt.Errorf("book %d: %w", n, topicbook.ErrBookNotFound)
		}
		return names[n-1], nil
	}
	var matches []string
	for _, name := range names {
		if name == selector {
			return name, nil
		}
		if strings.EqualFold(topicbook.BookTitle(name), selector) {
			matches = append(matches, name)
		}
	}
	switch len(matches) {
	case 0:
		return "", fmt.Errorf("book %q: %w", selector, topicbook.ErrBookNotFound)
	case 1:
		return matches[0], nil
	default:
		return "", fmt.Errorf("%q: %w: %s", selector, ErrAmbiguous, strings.Join(matches, ", "))
	}
}

// RenderOptions controls markdown rendering.
type RenderOptions struct {
	Width   int
	NoColor bool
}

// Render formats book content for the terminal.
func Render(book topicbook.Book, opts RenderOptions) (string, error) {
	width := opts.Width
	if width <= 0 {
		width = 80
	}
	style := glamour.WithAutoStyle()
	if opts.NoColor {
		style = glamour.WithStandardStyle("ascii")
	}
	renderer, err := glamour.NewTermRenderer(style, glamour.WithWordWrap(width-4))
	if err != nil {
		return "", fmt.Errorf("markdown renderer: %w", err)
	}
	out, err := renderer.Render(book.Content)
	if err != nil {
		return "", fmt.Errorf("render %s: %w", book.Filename, err)
	}
	return out, nil
}

// Lookup fetches the book a selector refers to.
func Lookup(ctx context.Context, cat topicbook.Catalog, selector string) (topicbook.Book, error) {
	if strings.HasSuffix(selector, ".md") {
		return cat.GetBook(ctx, selector)
	}
	names, err := cat.ListBooks(ctx)
	if err != nil {
		return topicbook.Book{}, err
	}
	name, err := Resolve(names, selector)
	if err != nil {
		return topicbook.Book{}, err
	}
	return cat.GetBook(ctx, name)
}
