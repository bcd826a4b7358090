package exporters

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/mrlokans/clippings/internal/kindle"
	"github.com/mrlokans/clippings/internal/utils"
)

// Book groups the entries of one title/author pair.
type Book struct {
	Title   string
	Author  string // empty when the clippings carry no author
	Entries []kindle.Entry
}

// GroupByBook groups entries by case-insensitive title and author, keeping
// books in the order they first appear and entries in file order.
func GroupByBook(entries []kindle.Entry) []Book {
	index := make(map[string]int)
	var books []Book

	for _, e := range entries {
		author, _ := e.Author()
		key := bookKey(e.Title(), author)

		i, exists := index[key]
		if !exists {
			i = len(books)
			index[key] = i
			books = append(books, Book{Title: e.Title(), Author: author})
		}
		books[i].Entries = append(books[i].Entries, e)
	}

	return books
}

func bookKey(title, author string) string {
	return strings.ToLower(title) + "|" + strings.ToLower(author)
}

// GenerateMarkdown renders a book as an Obsidian note with YAML front matter.
func GenerateMarkdown(book Book, createdAt time.Time) string {
	var builder strings.Builder

	fmt.Fprintf(&builder, "---\n")
	fmt.Fprintf(&builder, "content_source: kindle\n")
	fmt.Fprintf(&builder, "content_type: book_highlights\n")
	fmt.Fprintf(&builder, "created_at: %s\n", createdAt.Format("2006-01-02"))
	fmt.Fprintf(&builder, "title: \"%s\"\n", strings.ReplaceAll(book.Title, "\"", "\\\""))
	fmt.Fprintf(&builder, "author: \"%s\"\n", strings.ReplaceAll(book.Author, "\"", "\\\""))
	fmt.Fprintf(&builder, "tags: highlights, books\n")
	fmt.Fprintf(&builder, "---\n\n")
	fmt.Fprintf(&builder, "## Highlights\n\n")

	for _, e := range book.Entries {
		fmt.Fprintf(&builder, "### %s\n\n", e.Date())
		if position := describePosition(e); position != "" {
			fmt.Fprintf(&builder, "*%s*\n\n", position)
		}

		content, ok := e.Content()
		if !ok {
			continue
		}
		if e.Action() == kindle.ActionNote {
			fmt.Fprintf(&builder, "**Note:** %s\n\n", content)
		} else {
			fmt.Fprintf(&builder, "> %s\n\n", strings.ReplaceAll(content, "\n", "\n> "))
		}
	}

	return builder.String()
}

// describePosition returns e.g. "Bookmark, page 8, location 64-64".
func describePosition(e kindle.Entry) string {
	var parts []string
	if e.Action() == kindle.ActionBookmark {
		parts = append(parts, "Bookmark")
	}
	if page, ok := e.Page(); ok && page != "" {
		parts = append(parts, "page "+page)
	}
	if location, ok := e.Location(); ok && location != "" {
		parts = append(parts, "location "+location)
	}
	if len(parts) == 0 {
		return ""
	}
	s := strings.Join(parts, ", ")
	return strings.ToUpper(s[:1]) + s[1:]
}

// MarkdownExporter writes one markdown file per book into OutputDir.
type MarkdownExporter struct {
	OutputDir string
	Now       func() time.Time
	log       logrus.FieldLogger
}

var _ EntryExporter = (*MarkdownExporter)(nil)

func NewMarkdownExporter(outputDir string, logger logrus.FieldLogger) *MarkdownExporter {
	if logger == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		logger = l
	}
	return &MarkdownExporter{
		OutputDir: outputDir,
		Now:       time.Now,
		log:       logger,
	}
}

func (exporter *MarkdownExporter) Export(entries []kindle.Entry) (ExportResult, error) {
	var result ExportResult

	if err := os.MkdirAll(exporter.OutputDir, 0755); err != nil {
		return result, fmt.Errorf("failed to create export directory: %w", err)
	}

	createdAt := exporter.Now()
	for _, book := range GroupByBook(entries) {
		outputPath := filepath.Join(exporter.OutputDir, utils.BookFilename(book.Title, book.Author))

		if err := os.WriteFile(outputPath, []byte(GenerateMarkdown(book, createdAt)), 0644); err != nil {
			exporter.log.WithError(err).WithField("path", outputPath).Error("Failed to write book")
			result.BooksFailed++
			result.EntriesFailed += len(book.Entries)
			continue
		}

		exporter.log.WithFields(logrus.Fields{
			"book":    book.Title,
			"path":    outputPath,
			"entries": len(book.Entries),
		}).Info("Exported book")
		result.BooksProcessed++
		result.EntriesProcessed += len(book.Entries)
	}

	return result, nil
}
