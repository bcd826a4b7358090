package kindle

import (
	"fmt"
	"io"
	"regexp"
	"strings"

	"github.com/sirupsen/logrus"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// A line of ten or more '=' separates clippings.
var separatorPattern = regexp.MustCompile(`^={10,}$`)

const byteOrderMark = "\ufeff"

// Report is the outcome of parsing a whole clippings file.
type Report struct {
	Entries  []Entry
	Failures []*MalformedBlockError
}

// Parser parses Kindle My Clippings.txt format. It holds no per-call state
// and may be shared between goroutines.
type Parser struct {
	log logrus.FieldLogger
}

// NewParser returns a parser that reports skipped blocks to logger. A nil
// logger discards them.
func NewParser(logger logrus.FieldLogger) *Parser {
	if logger == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		logger = l
	}
	return &Parser{log: logger}
}

// Parse parses content with a parser that does not log.
func Parse(content string) []Entry {
	return NewParser(nil).Parse(content)
}

// Parse returns the entries of every well-formed block in file order.
// Malformed blocks are logged and skipped.
func (p *Parser) Parse(content string) []Entry {
	return p.ParseWithReport(content).Entries
}

// ParseWithReport is Parse that also returns the skipped blocks.
func (p *Parser) ParseWithReport(content string) Report {
	var report Report

	for i, block := range splitBlocks(content) {
		entry, err := parseBlock(block)
		if err != nil {
			err.Block = i
			err.Text = strings.Join(block, "\n")
			p.log.WithFields(logrus.Fields{
				"block":  err.Block,
				"line":   err.Line,
				"reason": err.Reason,
			}).Warn("Skipping malformed clipping")
			report.Failures = append(report.Failures, err)
			continue
		}
		report.Entries = append(report.Entries, entry)
	}

	p.log.WithFields(logrus.Fields{
		"entries": len(report.Entries),
		"skipped": len(report.Failures),
	}).Debug("Parsed clippings")

	return report
}

// ParseReader reads a whole clippings file. A UTF-8 byte order mark is
// dropped and UTF-16 files with a byte order mark are transcoded.
func (p *Parser) ParseReader(r io.Reader) (Report, error) {
	decoder := unicode.BOMOverride(unicode.UTF8.NewDecoder())
	data, err := io.ReadAll(transform.NewReader(r, decoder))
	if err != nil {
		return Report{}, fmt.Errorf("error reading clippings: %w", err)
	}
	return p.ParseWithReport(string(data)), nil
}

// splitBlocks cuts content at separator lines. Lines are right-trimmed,
// leading blank lines of each block are dropped and blank blocks are
// discarded.
func splitBlocks(content string) [][]string {
	var blocks [][]string
	var current []string

	flush := func() {
		if len(current) > 0 {
			blocks = append(blocks, current)
		}
		current = nil
	}

	for _, raw := range strings.Split(content, "\n") {
		line := strings.TrimRight(strings.TrimPrefix(raw, byteOrderMark), " \t\r\v\f")

		if separatorPattern.MatchString(line) {
			flush()
			continue
		}
		if len(current) == 0 && strings.TrimSpace(line) == "" {
			continue
		}
		current = append(current, line)
	}
	flush()

	return blocks
}

func parseBlock(lines []string) (Entry, *MalformedBlockError) {
	// First line: Title (Author) or just Title
	titleLine := strings.TrimSpace(lines[0])
	if titleLine == "" {
		return Entry{}, &MalformedBlockError{Line: 0, Reason: "empty title line"}
	}
	title, author := splitTitleAuthor(titleLine)

	// Second line: metadata (action, page, location, date)
	if len(lines) < 2 {
		return Entry{}, &MalformedBlockError{Line: 1, Reason: "missing metadata line"}
	}
	metadataLine := strings.TrimSpace(lines[1])
	if metadataLine == "" {
		return Entry{}, &MalformedBlockError{Line: 1, Reason: "empty metadata line"}
	}
	meta, err := parseMetadata(metadataLine)
	if err != nil {
		return Entry{}, &MalformedBlockError{Line: 1, Reason: err.Error()}
	}

	// Remaining lines: an optional blank separator, then the text
	entry := Entry{
		title:    title,
		author:   author,
		action:   meta.action,
		page:     meta.page,
		location: meta.location,
		date:     meta.date,
	}
	if len(lines) > 2 {
		if text := joinContent(lines[2:]); text != "" {
			entry.content = &text
		}
	}

	return entry, nil
}

// joinContent joins the non-blank lines of a clipping's text, right-trimmed,
// with "\n".
func joinContent(lines []string) string {
	var kept []string
	for _, line := range lines {
		line = strings.TrimRight(strings.TrimPrefix(line, byteOrderMark), " \t\r\v\f")
		if strings.TrimSpace(line) == "" {
			continue
		}
		kept = append(kept, line)
	}
	return strings.TrimSpace(strings.Join(kept, "\n"))
}

// splitTitleAuthor separates a trailing "(Author)" group from the title,
// honouring nested parentheses. Without a non-empty group the whole line is
// the title.
func splitTitleAuthor(line string) (string, *string) {
	if !strings.HasSuffix(line, ")") {
		return line, nil
	}

	depth := 0
	for i := len(line) - 1; i >= 0; i-- {
		switch line[i] {
		case ')':
			depth++
		case '(':
			depth--
			if depth > 0 {
				continue
			}
			title := strings.TrimSpace(line[:i])
			author := strings.TrimSpace(line[i+1 : len(line)-1])
			if title == "" || author == "" {
				return line, nil
			}
			return title, &author
		}
	}

	return line, nil
}
