package kindle

import (
	"errors"
	"os"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/unicode"
)

// Test fixtures are adapted from https://github.com/biokraft/kindle2readwise/tree/main/tests/fixtures

func optional(value string, ok bool) *string {
	if !ok {
		return nil
	}
	return &value
}

func TestParse_GrapesOfWrath(t *testing.T) {
	input := "The Grapes of Wrath (John Steinbeck)\n- Your Highlight on page 12453252 | Added on Friday, 5 July 2024 09:55:52\nHow can we live without our lives ? How will we know it's us without our past ? No. Leave it. Burn it.\n"

	entries := Parse(input)
	require.Len(t, entries, 1)

	entry := entries[0]
	assert.Equal(t, "The Grapes of Wrath", entry.Title())
	author, ok := entry.Author()
	assert.True(t, ok)
	assert.Equal(t, "John Steinbeck", author)
	assert.Equal(t, ActionHighlight, entry.Action())
	page, ok := entry.Page()
	assert.True(t, ok)
	assert.Equal(t, "12453252", page)
	_, ok = entry.Location()
	assert.False(t, ok)
	assert.Equal(t, "Friday, 5 July 2024 09:55:52", entry.Date())
	content, ok := entry.Content()
	assert.True(t, ok)
	assert.Equal(t, "How can we live without our lives ? How will we know it's us without our past ? No. Leave it. Burn it.", content)
}

func TestParser_Parse_BasicHighlight(t *testing.T) {
	input := `The_Power_of_Now (Eckhart Tolle)
- Your Highlight on page 8 | Location 64-64 | Added on Tuesday, April 15, 2025 10:16:21 PM

would change for the better. Values would shift in the flotsam
==========
`

	entries := NewParser(nil).Parse(input)
	require.Len(t, entries, 1)

	entry := entries[0]
	assert.Equal(t, "The_Power_of_Now", entry.Title())
	assert.True(t, entry.AuthorContains("Tolle"))
	assert.Equal(t, ActionHighlight, entry.Action())
	assert.Equal(t, strPtr("8"), optional(entry.Page()))
	assert.Equal(t, strPtr("64-64"), optional(entry.Location()))
	assert.Equal(t, "Tuesday, April 15, 2025 10:16:21 PM", entry.Date())
	assert.Equal(t, strPtr("would change for the better. Values would shift in the flotsam"), optional(entry.Content()))
}

func TestParser_Parse_Bookmark(t *testing.T) {
	input := `Fahrenheit 451 (Ray Bradbury)
- Your Bookmark at location 346 | Added on Saturday, 26 March 2016 15:46:21


==========
`

	entries := Parse(input)
	require.Len(t, entries, 1)

	entry := entries[0]
	assert.Equal(t, ActionBookmark, entry.Action())
	assert.Equal(t, strPtr("346"), optional(entry.Location()))
	assert.Nil(t, optional(entry.Page()))
	assert.Nil(t, optional(entry.Content()), "bookmark without text has no content")
}

func TestParser_Parse_NoAuthor(t *testing.T) {
	input := `Harry_Potter_und_die_Kammer_des_Schreckens
- Your Highlight on page 207-207 | Added on Monday, April 21, 2025 8:55:24 PM

Harry drehte sich auf die Seite
==========
`

	entries := Parse(input)
	require.Len(t, entries, 1)

	entry := entries[0]
	assert.Equal(t, "Harry_Potter_und_die_Kammer_des_Schreckens", entry.Title())
	_, ok := entry.Author()
	assert.False(t, ok, "author must be absent, not empty")
	assert.False(t, entry.AuthorContains("Harry"))
	assert.Equal(t, strPtr("207-207"), optional(entry.Page()))
}

func TestParser_Parse_MultiLineHighlight(t *testing.T) {
	input := `Test Book (Test Author)
- Your Highlight on page 1 | Location 10-15 | Added on Wednesday, January 1, 2025 12:00:00 PM

This highlight spans
multiple lines of text
that should be preserved.
==========
`

	entries := Parse(input)
	require.Len(t, entries, 1)
	assert.Equal(t, strPtr("This highlight spans\nmultiple lines of text\nthat should be preserved."), optional(entries[0].Content()))
}

func TestParser_Parse_BlankLinesInsideContent(t *testing.T) {
	input := "Book (Author)\n- Your Highlight on page 1 | Added on Monday\n\nfirst\n\n   \nsecond  \n\n==========\n"

	entries := Parse(input)
	require.Len(t, entries, 1)
	assert.Equal(t, strPtr("first\nsecond"), optional(entries[0].Content()))
}

func TestParser_Parse_WithoutBlankSeparatorLine(t *testing.T) {
	input := "Book (Author)\n- Your Note on page 3 | Added on Monday, 1 January 2024 10:00:00\nNote text right after metadata\n=========="

	entries := Parse(input)
	require.Len(t, entries, 1)
	assert.Equal(t, ActionNote, entries[0].Action())
	assert.Equal(t, strPtr("Note text right after metadata"), optional(entries[0].Content()))
}

func TestParser_Parse_WindowsLineEndingsAndBOM(t *testing.T) {
	input := "\ufeffBook (Author)\r\n- Your Highlight on page 3 | Location 40 | Added on Monday, 1 January 2024 10:00:00\r\n\r\nSome text\r\n==========\r\n" +
		"\ufeffOther Book\r\n- Your Bookmark on page 9 | Added on Tuesday, 2 January 2024 11:00:00\r\n\r\n\r\n==========\r\n"

	entries := Parse(input)
	require.Len(t, entries, 2)

	assert.Equal(t, "Book", entries[0].Title())
	assert.Equal(t, strPtr("Author"), optional(entries[0].Author()))
	assert.Equal(t, strPtr("40"), optional(entries[0].Location()))
	assert.Equal(t, "Monday, 1 January 2024 10:00:00", entries[0].Date())
	assert.Equal(t, strPtr("Some text"), optional(entries[0].Content()))

	assert.Equal(t, "Other Book", entries[1].Title())
	assert.Nil(t, optional(entries[1].Content()))
}

func TestParser_Parse_EmptyInput(t *testing.T) {
	for _, input := range []string{"", "\n\n", "==========\n", "==========\n\n==========\n   \n"} {
		report := NewParser(nil).ParseWithReport(input)
		assert.Empty(t, report.Entries, "input %q", input)
		assert.Empty(t, report.Failures, "input %q", input)
	}
}

func TestParser_Parse_LongSeparator(t *testing.T) {
	input := "A (B)\n- Your Highlight | Added on Monday\n\none\n====================\nC (D)\n- Your Highlight | Added on Tuesday\n\ntwo\n"

	entries := Parse(input)
	require.Len(t, entries, 2)
	assert.Equal(t, strPtr("one"), optional(entries[0].Content()))
	assert.Equal(t, strPtr("two"), optional(entries[1].Content()))
}

func TestParser_Parse_PreservesOrder(t *testing.T) {
	var b strings.Builder
	titles := []string{"Zeta", "Alpha", "Mu", "Beta", "Omega"}
	for _, title := range titles {
		b.WriteString(title + " (Someone)\n- Your Highlight on page 1 | Added on Monday, 1 January 2024 10:00:00\n\ntext\n==========\n")
	}

	entries := Parse(b.String())
	require.Len(t, entries, len(titles))
	for i, title := range titles {
		assert.Equal(t, title, entries[i].Title())
	}
}

func TestParser_Parse_SkipsMalformedBlock(t *testing.T) {
	input := `First Book (First Author)
- Your Highlight on page 1 | Added on Monday, 1 January 2024 10:00:00

first
==========
Broken Book (Nobody)
- Your Highlight on page 2 without a date
==========
Third Book (Third Author)
- Your Highlight on page 3 | Added on Wednesday, 3 January 2024 10:00:00

third
==========
`

	logger, hook := logtest.NewNullLogger()
	report := NewParser(logger).ParseWithReport(input)

	require.Len(t, report.Entries, 2)
	assert.Equal(t, "First Book", report.Entries[0].Title())
	assert.Equal(t, "Third Book", report.Entries[1].Title())

	require.Len(t, report.Failures, 1)
	failure := report.Failures[0]
	assert.Equal(t, 1, failure.Block)
	assert.Equal(t, 1, failure.Line)
	assert.Equal(t, "missing date segment", failure.Reason)
	assert.Contains(t, failure.Text, "Broken Book (Nobody)")
	assert.True(t, errors.Is(failure, ErrMalformedLine))

	require.Len(t, hook.AllEntries(), 1)
	assert.Equal(t, logrus.WarnLevel, hook.LastEntry().Level)
	assert.Equal(t, 1, hook.LastEntry().Data["block"])
}

func TestParser_Parse_MalformedBlocks(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		line   int
		reason string
	}{
		{"title only", "Lonely Title\n", 1, "missing metadata line"},
		{"blank metadata", "Title\n   \ncontent\n", 1, "empty metadata line"},
		{"no dash", "Title\nYour Highlight | Added on Monday\n", 1, "missing dash segment"},
		{"no action", "Title\n- | Added on Monday\n", 1, "missing action segment"},
		{"empty date", "Title\n- Your Highlight on page 3 | Added on   \n", 1, "missing date segment"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			report := NewParser(nil).ParseWithReport(tt.input)
			assert.Empty(t, report.Entries)
			require.Len(t, report.Failures, 1)
			assert.Equal(t, tt.line, report.Failures[0].Line)
			assert.Equal(t, tt.reason, report.Failures[0].Reason)
			assert.ErrorIs(t, report.Failures[0], ErrMalformedLine)
		})
	}
}

func TestParser_ParseReader_SampleFile(t *testing.T) {
	f, err := os.Open("testdata/sample_clippings.txt")
	require.NoError(t, err)
	defer f.Close()

	report, err := NewParser(nil).ParseReader(f)
	require.NoError(t, err)

	require.Len(t, report.Entries, 6)
	require.Len(t, report.Failures, 1)
	assert.Equal(t, 4, report.Failures[0].Block)
	assert.Equal(t, "missing dash segment", report.Failures[0].Reason)

	titles := make([]string, 0, len(report.Entries))
	for _, e := range report.Entries {
		titles = append(titles, e.Title())
	}
	assert.Equal(t, []string{
		"The_Power_of_Now",
		"The_Power_of_Now",
		"Fahrenheit 451",
		"Harry_Potter_und_die_Kammer_des_Schreckens",
		"The Selfish Gene: 30th Anniversary Edition",
		"Book With (Nested (Parentheses))",
	}, titles)

	selfish := report.Entries[4]
	assert.Equal(t, ActionHighlight, selfish.Action())
	assert.Equal(t, strPtr("1234-35"), optional(selfish.Location()))
	assert.Equal(t, "Monday, March 12, 2012, 07:01 PM", selfish.Date())

	clipping := report.Entries[5]
	assert.Equal(t, ActionOther, clipping.Action())
	assert.Equal(t, strPtr("Author Name"), optional(clipping.Author()))
	assert.Equal(t, strPtr("Clipped article text\nspanning two lines"), optional(clipping.Content()))
}

func TestParser_ParseReader_UTF16(t *testing.T) {
	input := "Der Prozess (Franz Kafka)\n- Your Highlight on page 5 | Added on Montag, 1. Januar 2024 10:00:00\n\nJemand mußte Josef K. verleumdet haben\n==========\n"
	encoded, err := unicode.UTF16(unicode.LittleEndian, unicode.UseBOM).NewEncoder().String(input)
	require.NoError(t, err)

	report, err := NewParser(nil).ParseReader(strings.NewReader(encoded))
	require.NoError(t, err)
	require.Len(t, report.Entries, 1)

	entry := report.Entries[0]
	assert.Equal(t, "Der Prozess", entry.Title())
	assert.Equal(t, "Montag, 1. Januar 2024 10:00:00", entry.Date())
	assert.Equal(t, strPtr("Jemand mußte Josef K. verleumdet haben"), optional(entry.Content()))
}

func TestSplitTitleAuthor(t *testing.T) {
	tests := []struct {
		input          string
		expectedTitle  string
		expectedAuthor *string
	}{
		{"The_Power_of_Now (Eckhart Tolle)", "The_Power_of_Now", strPtr("Eckhart Tolle")},
		{"The Selfish Gene: 30th Anniversary Edition (Richard Dawkins)", "The Selfish Gene: 30th Anniversary Edition", strPtr("Richard Dawkins")},
		{"Harry_Potter_und_die_Kammer_des_Schreckens", "Harry_Potter_und_die_Kammer_des_Schreckens", nil},
		{"Book With (Nested (Parentheses)) (Author Name)", "Book With (Nested (Parentheses))", strPtr("Author Name")},
		{"Anthology (Smith, John (ed.))", "Anthology", strPtr("Smith, John (ed.)")},
		{"Empty Author ()", "Empty Author ()", nil},
		{"Blank Author (   )", "Blank Author (   )", nil},
		{"(Only Parentheses)", "(Only Parentheses)", nil},
		{"Unbalanced )", "Unbalanced )", nil},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			title, author := splitTitleAuthor(tt.input)
			assert.Equal(t, tt.expectedTitle, title)
			assert.Equal(t, tt.expectedAuthor, author)
		})
	}
}

func TestParseMetadata(t *testing.T) {
	tests := []struct {
		input    string
		action   Action
		page     *string
		location *string
		date     string
	}{
		{
			input:    "- Your Highlight on page 8 | Location 64-64 | Added on Tuesday, April 15, 2025 10:16:21 PM",
			action:   ActionHighlight,
			page:     strPtr("8"),
			location: strPtr("64-64"),
			date:     "Tuesday, April 15, 2025 10:16:21 PM",
		},
		{
			input:    "- Your Highlight at location 784-785 | Added on Saturday, 26 March 2016 18:37:26",
			action:   ActionHighlight,
			location: strPtr("784-785"),
			date:     "Saturday, 26 March 2016 18:37:26",
		},
		{
			input:  "- Your Bookmark on page 12453252 | Added on Friday, 5 July 2024 09:55:52",
			action: ActionBookmark,
			page:   strPtr("12453252"),
			date:   "Friday, 5 July 2024 09:55:52",
		},
		{
			input:    "- Your Highlight on Location 275 | Added on Monday, January 6, 2025 3:10:00 PM",
			action:   ActionHighlight,
			location: strPtr("275"),
			date:     "Monday, January 6, 2025 3:10:00 PM",
		},
		{
			input:    "- Your Note | Location 10 | on page 3 | Added on Monday",
			action:   ActionNote,
			page:     strPtr("3"),
			location: strPtr("10"),
			date:     "Monday",
		},
		{
			input:    "- Highlight Loc. 1234-35 | Added on Monday, March 12, 2012, 07:01 PM",
			action:   ActionHighlight,
			location: strPtr("1234-35"),
			date:     "Monday, March 12, 2012, 07:01 PM",
		},
		{
			input:  "- Your Highlight on page xii | Added on Monday",
			action: ActionHighlight,
			page:   strPtr("xii"),
			date:   "Monday",
		},
		{
			input:  "- Your Clipping | Added on Sunday, 1 June 2025 10:00:00",
			action: ActionOther,
			date:   "Sunday, 1 June 2025 10:00:00",
		},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			m, err := parseMetadata(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.action, m.action)
			assert.Equal(t, tt.page, m.page)
			assert.Equal(t, tt.location, m.location)
			assert.Equal(t, tt.date, m.date)
		})
	}
}

func strPtr(s string) *string {
	return &s
}
