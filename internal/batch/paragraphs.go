package batch

import "strings"

// ParagraphSeparator delimits paragraphs in prompt and reply text.
const ParagraphSeparator = "\n\n"

// SplitParagraphs splits text on blank lines. Empty text yields an empty,
// non-nil slice; text without a blank line yields one element.
func SplitParagraphs(text string) []string {
	if text == "" {
		return []string{}
	}
	return strings.Split(text, ParagraphSeparator)
}
