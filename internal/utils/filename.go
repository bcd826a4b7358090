package utils

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

const maxFilenameLength = 200

var (
	// Characters invalid in filenames on most filesystems
	invalidFilenameChars = regexp.MustCompile(`[<>:"/\\|?*\x00-\x1f]`)
	multipleSpaces       = regexp.MustCompile(`\s+`)
)

// SanitizeFilename makes a book title usable as a markdown file name.
// Separators and control characters are dropped, whitespace is collapsed,
// Obsidian link syntax is defused and the result is capped at 200 bytes
// without splitting a UTF-8 sequence.
func SanitizeFilename(filename string) string {
	filename = strings.NewReplacer("\r", " ", "\n", " ", "\t", " ").Replace(filename)
	filename = invalidFilenameChars.ReplaceAllString(filename, "")
	filename = multipleSpaces.ReplaceAllString(filename, " ")

	filename = strings.ReplaceAll(filename, "#", "")
	filename = strings.ReplaceAll(filename, "[", "(")
	filename = strings.ReplaceAll(filename, "]", ")")

	if len(filename) > maxFilenameLength {
		cut := maxFilenameLength
		for cut > 0 && !utf8.RuneStart(filename[cut]) {
			cut--
		}
		filename = filename[:cut]
	}

	// Windows rejects names ending in a dot or space
	filename = strings.TrimRight(strings.TrimSpace(filename), ".")

	if filename == "" {
		filename = "Untitled"
	}
	return filename
}

// BookFilename returns "<title> - <author>.md", or "<title>.md" when the
// author is unknown.
func BookFilename(title, author string) string {
	name := title
	if author != "" {
		name = title + " - " + author
	}
	return SanitizeFilename(name) + ".md"
}
