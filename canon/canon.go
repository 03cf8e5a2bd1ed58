// Package canon implements the fixed text-normalization pipeline applied to
// both queries and documents before embedding and tokenization.
package canon

import (
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"
)

const codeSentinel = "⟪code⟫"

var (
	atxHeadingPattern    = regexp.MustCompile(`(?m)^\s{0,3}#{1,6}\s+(.*?)\s*#*\s*$`)
	setextHeadingPattern = regexp.MustCompile(`(?m)^(.+)\n[=-]{2,}\s*$`)
	fencedCodePattern    = regexp.MustCompile("(?s)```.*?```|~~~.*?~~~")
	indentedCodePattern  = regexp.MustCompile(`(?m)^(?: {4,}|\t).*(?:\n(?: {4,}|\t).*)*`)
	boldPattern          = regexp.MustCompile(`\*\*(.+?)\*\*|__(.+?)__`)
	italicPattern        = regexp.MustCompile(`\*(.+?)\*|_(.+?)_`)
	strikethroughPattern = regexp.MustCompile(`~~(.+?)~~`)
	whitespaceRunPattern = regexp.MustCompile(`\s+`)

	importLinePattern = regexp.MustCompile(`^\s*(import\s+\S|from\s+\S+\s+import\b|#include\s*[<"]|use\s+[A-Za-z0-9_:]+;?)`)
)

// Canonicalize reduces text to its comparable form: Unicode NFC, markdown
// headings and emphasis stripped to their inner content, fenced and
// indented code collapsed to a single sentinel token, and runs of import
// declarations removed. The steps are reapplied until the output stops
// changing, so the result is idempotent.
func Canonicalize(text string) string {
	s := canonicalizeOnce(text)
	for {
		next := canonicalizeOnce(s)
		if next == s {
			return s
		}
		s = next
	}
}

// canonicalizeOnce applies each normalization step a single time.
func canonicalizeOnce(text string) string {
	s := norm.NFC.String(text)

	s = atxHeadingPattern.ReplaceAllString(s, "$1")
	s = setextHeadingPattern.ReplaceAllString(s, "$1")

	s = fencedCodePattern.ReplaceAllString(s, codeSentinel)
	s = indentedCodePattern.ReplaceAllString(s, codeSentinel)

	s = boldPattern.ReplaceAllString(s, "$1$2")
	s = strikethroughPattern.ReplaceAllString(s, "$1")
	s = italicPattern.ReplaceAllString(s, "$1$2")

	s = stripImportRuns(s)

	s = whitespaceRunPattern.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

// stripImportRuns drops any contiguous run of 3 or more lines that each
// look like an import-style declaration, across several language idioms.
func stripImportRuns(s string) string {
	lines := strings.Split(s, "\n")
	out := make([]string, 0, len(lines))

	i := 0
	for i < len(lines) {
		if importLinePattern.MatchString(lines[i]) {
			j := i
			for j < len(lines) && importLinePattern.MatchString(lines[j]) {
				j++
			}
			if j-i >= 3 {
				i = j
				continue
			}
		}
		out = append(out, lines[i])
		i++
	}
	return strings.Join(out, "\n")
}
