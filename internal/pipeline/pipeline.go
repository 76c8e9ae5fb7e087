// Package pipeline produces books for the dev backend. The scripted
// pipeline walks the same stages as the production generator (plan,
// research, structure, write) and reports progress line by line, but
// derives its content from the request alone.
package pipeline

import (
	"context"
	"fmt"
	"strings"
	"time"

	"topicbook/pkg/topicbook"
)

// Emit receives one progress line.
type Emit func(line string)

// Pipeline turns a request into markdown book content.
type Pipeline interface {
	Run(ctx context.Context, req topicbook.TaskRequest, emit Emit) (string, error)
}

// Scripted is a deterministic Pipeline with an optional delay between steps.
type Scripted struct {
	StepDelay time.Duration
}

var _ Pipeline = Scripted{}

// Run emits the progress of each stage and returns the finished book.
func (s Scripted) Run(ctx context.Context, req topicbook.TaskRequest, emit Emit) (string, error) {
	topic := strings.TrimSpace(req.Topic)
	description := strings.TrimSpace(req.Description)

	emit(fmt.Sprintf("🚀 Starting TopicBook generation for: '%s'", topic))
	if description != "" {
		emit(fmt.Sprintf("   User context: '%s'", description))
	}
	for _, query := range PlanQueries(topic, description) {
		if err := s.pause(ctx); err != nil {
			return "", err
		}
		emit(fmt.Sprintf("--- Executing search: %q ---", query))
		emit(fmt.Sprintf("-> Gathering sources for: %s", query))
	}
	emit("✅ Total research content gathered.")

	if err := s.pause(ctx); err != nil {
		return "", err
	}
	chapters := Chapters(topic)
	emit("--- Generated Personalized Structure --- \n" + Structure(topic, chapters))
	emit("-> Planning and searching for relevant images...")
	for _, chapter := range chapters {
		emit(fmt.Sprintf("   - Image query for '%s': '%s %s diagram'", chapter, topic, strings.ToLower(chapter)))
	}

	var body strings.Builder
	for i, chapter := range chapters {
		if err := s.pause(ctx); err != nil {
			return "", err
		}
		emit(fmt.Sprintf("-> Writing chapter %d: %s", i+1, chapter))
		writeChapter(&body, i+1, chapter, topic, description)
	}
	return renderBook(topic, description, chapters, body.String()), nil
}

// PlanQueries returns the research queries for a topic.
func PlanQueries(topic, description string) []string {
	queries := []string{
		topic,
		topic + " fundamentals",
		topic + " practical examples",
	}
	if description != "" {
		queries = append(queries, topic+" for "+firstWords(description, 6))
	}
	return queries
}

// Chapters returns the chapter titles of the book outline.
func Chapters(topic string) []string {
	return []string{
		"Introduction to " + topic,
		"Core Concepts",
		"Worked Examples",
		"Common Pitfalls",
		"Summary and Next Steps",
	}
}

// Structure renders the outline as markdown headings.
func Structure(topic string, chapters []string) string {
	var b strings.Builder
	b.WriteString("# " + topic)
	for i, chapter := range chapters {
		fmt.Fprintf(&b, "\n## %d. %s", i+1, chapter)
	}
	return b.String()
}

func writeChapter(b *strings.Builder, n int, chapter, topic, description string) {
	fmt.Fprintf(b, "\n## %d. %s\n\n", n, chapter)
	fmt.Fprintf(b, "This chapter covers %s as part of %s.", strings.ToLower(chapter), topic)
	if description != "" {
		fmt.Fprintf(b, " It is tailored to the reader's context: %s.", description)
	}
	b.WriteString("\n")
}

func renderBook(topic, description string, chapters []string, body string) string {
	var b strings.Builder
	b.WriteString("# " + topic + "\n")
	if description != "" {
		b.WriteString("\n> " + description + "\n")
	}
	b.WriteString("\n## Table of Contents\n\n")
	for i, chapter := range chapters {
		fmt.Fprintf(&b, "%d. %s\n", i+1, chapter)
	}
	b.WriteString(body)
	return b.String()
}

func (s Scripted) pause(ctx context.Context) error {
	if s.StepDelay <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(s.StepDelay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func firstWords(text string, n int) string {
	words := strings.Fields(text)
	if len(words) > n {
		words = words[:n]
	}
	return strings.Join(words, " ")
}
