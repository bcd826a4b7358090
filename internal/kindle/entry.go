// Package kindle parses Kindle "My Clippings.txt" exports into entries and
// writes entries back in the same format.
package kindle

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Action is the normalized kind of a clipping.
type Action string

const (
	ActionHighlight Action = "highlight"
	ActionNote      Action = "note"
	ActionBookmark  Action = "bookmark"
	ActionOther     Action = "other"
)

// ParseAction normalizes an action phrase such as "Your Highlight",
// "Highlight" or "note". Unknown non-empty phrases map to ActionOther and
// blank input yields the empty Action.
func ParseAction(phrase string) Action {
	phrase = strings.TrimSpace(phrase)
	if phrase == "" {
		return ""
	}

	fields := strings.Fields(strings.ToLower(phrase))
	word := fields[len(fields)-1]
	if len(fields) > 1 && fields[0] == "your" {
		word = fields[1]
	}

	switch Action(word) {
	case ActionHighlight, ActionNote, ActionBookmark, ActionOther:
		return Action(word)
	default:
		return ActionOther
	}
}

// phrase returns the word Kindle uses for the action in metadata lines.
func (a Action) phrase() string {
	switch a {
	case ActionHighlight:
		return "Highlight"
	case ActionNote:
		return "Note"
	case ActionBookmark:
		return "Bookmark"
	default:
		return "Clipping"
	}
}

// Entry is a single clipping. It is immutable; use NewEntry to build one.
type Entry struct {
	title    string
	author   *string
	action   Action
	page     *string
	location *string
	date     string
	content  *string
}

// EntryOption sets an optional field on an Entry under construction.
type EntryOption func(*Entry)

// WithAuthor sets the author shown in parentheses after the title.
func WithAuthor(author string) EntryOption {
	return func(e *Entry) { e.author = &author }
}

// WithPage sets the page, kept as written ("12", "xii", "207-207").
func WithPage(page string) EntryOption {
	return func(e *Entry) { e.page = &page }
}

// WithLocation sets the Kindle location, kept as written.
func WithLocation(location string) EntryOption {
	return func(e *Entry) { e.location = &location }
}

// WithContent sets the clipped text or note.
func WithContent(content string) EntryOption {
	return func(e *Entry) { e.content = &content }
}

// NewEntry builds an Entry. Title, action and date are required; the action
// is normalized with ParseAction.
//
// Fields are normalized the way the parser reads them back, so Export output
// parses to an equal entry: single-line fields are trimmed, and content loses
// blank lines and trailing whitespace. Line breaks in single-line fields and
// separator lines anywhere are rejected with ErrInvalidEntry.
func NewEntry(title, action, date string, opts ...EntryOption) (Entry, error) {
	title, err := singleLine("title", title)
	if err != nil {
		return Entry{}, err
	}
	if title == "" {
		return Entry{}, fmt.Errorf("%w: title is required", ErrInvalidEntry)
	}
	if separatorPattern.MatchString(title) {
		return Entry{}, fmt.Errorf("%w: title cannot be a separator line", ErrInvalidEntry)
	}

	if _, err := singleLine("action", action); err != nil {
		return Entry{}, err
	}
	normalized := ParseAction(action)
	if normalized == "" {
		return Entry{}, fmt.Errorf("%w: action is required", ErrInvalidEntry)
	}

	date, err = singleLine("date", date)
	if err != nil {
		return Entry{}, err
	}
	if date == "" {
		return Entry{}, fmt.Errorf("%w: date is required", ErrInvalidEntry)
	}

	e := Entry{
		title:  title,
		action: normalized,
		date:   date,
	}
	for _, opt := range opts {
		opt(&e)
	}

	for _, field := range []struct {
		name  string
		value **string
	}{
		{"author", &e.author},
		{"page", &e.page},
		{"location", &e.location},
	} {
		if *field.value == nil {
			continue
		}
		v, err := singleLine(field.name, **field.value)
		if err != nil {
			return Entry{}, err
		}
		*field.value = &v
	}

	if e.content != nil {
		content := joinContent(strings.Split(*e.content, "\n"))
		for _, line := range strings.Split(content, "\n") {
			if separatorPattern.MatchString(line) {
				return Entry{}, fmt.Errorf("%w: content cannot contain a separator line", ErrInvalidEntry)
			}
		}
		e.content = &content
	}

	return e, nil
}

// singleLine trims value and rejects embedded line breaks.
func singleLine(field, value string) (string, error) {
	value = strings.TrimSpace(strings.TrimPrefix(value, byteOrderMark))
	if strings.ContainsAny(value, "\r\n") {
		return "", fmt.Errorf("%w: %s must be a single line", ErrInvalidEntry, field)
	}
	return value, nil
}

func (e Entry) Title() string  { return e.title }
func (e Entry) Action() Action { return e.action }
func (e Entry) Date() string   { return e.date }

func (e Entry) Author() (string, bool)   { return deref(e.author) }
func (e Entry) Page() (string, bool)     { return deref(e.page) }
func (e Entry) Location() (string, bool) { return deref(e.location) }
func (e Entry) Content() (string, bool)  { return deref(e.content) }

// AuthorContains reports whether the author contains sequence. It is case
// sensitive and false when the entry has no author.
func (e Entry) AuthorContains(sequence string) bool {
	if e.author == nil {
		return false
	}
	return strings.Contains(*e.author, sequence)
}

// Equal reports whether both entries carry the same fields, treating an
// absent optional as different from an empty one.
func (e Entry) Equal(other Entry) bool {
	return e.title == other.title &&
		e.action == other.action &&
		e.date == other.date &&
		optionalEqual(e.author, other.author) &&
		optionalEqual(e.page, other.page) &&
		optionalEqual(e.location, other.location) &&
		optionalEqual(e.content, other.content)
}

func (e Entry) String() string {
	author, ok := e.Author()
	if !ok {
		author = "no author"
	}
	return fmt.Sprintf("%s %q (%s) added on %s", e.action, e.title, author, e.date)
}

// entryView is the serialized shape of an Entry.
type entryView struct {
	Title    string  `json:"title" yaml:"title"`
	Author   *string `json:"author,omitempty" yaml:"author,omitempty"`
	Action   Action  `json:"action" yaml:"action"`
	Page     *string `json:"page,omitempty" yaml:"page,omitempty"`
	Location *string `json:"location,omitempty" yaml:"location,omitempty"`
	Date     string  `json:"date" yaml:"date"`
	Content  *string `json:"content,omitempty" yaml:"content,omitempty"`
}

func (e Entry) view() entryView {
	return entryView{
		Title:    e.title,
		Author:   e.author,
		Action:   e.action,
		Page:     e.page,
		Location: e.location,
		Date:     e.date,
		Content:  e.content,
	}
}

func (e Entry) MarshalJSON() ([]byte, error) {
	return json.Marshal(e.view())
}

func (e Entry) MarshalYAML() (interface{}, error) {
	return e.view(), nil
}

func deref(s *string) (string, bool) {
	if s == nil {
		return "", false
	}
	return *s, true
}

func optionalEqual(a, b *string) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}
