package lexical

import (
	"strings"
	"unicode"

	"github.com/blevesearch/bleve/v2/analysis"
	"github.com/blevesearch/bleve/v2/registry"
)

const (
	codeTokenizerName = "code_aware"
	codeAnalyzerName  = "code_aware"
)

// codeTokenizer splits on non-word boundaries, then further splits each
// resulting run on camelCase and snake_case boundaries, so an identifier
// like "parseHTTPRequest" or "parse_http_request" indexes the same way a
// natural-language query for "parse http request" tokenizes.
type codeTokenizer struct{}

func (codeTokenizer) Tokenize(input []byte) analysis.TokenStream {
	var stream analysis.TokenStream
	pos := 1

	start := -1
	text := string(input)
	flush := func(wordStart, wordEnd int) {
		for _, sub := range splitCodeToken(text[wordStart:wordEnd]) {
			if len(sub) < 2 {
				continue
			}
			stream = append(stream, &analysis.Token{
				Term:     []byte(strings.ToLower(sub)),
				Start:    wordStart,
				End:      wordEnd,
				Position: pos,
				Type:     analysis.AlphaNumeric,
			})
			pos++
		}
	}

	for i, r := range text {
		isWordChar := r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
		switch {
		case isWordChar && start < 0:
			start = i
		case !isWordChar && start >= 0:
			flush(start, i)
			start = -1
		}
	}
	if start >= 0 {
		flush(start, len(text))
	}
	return stream
}

// splitCodeToken splits a snake_case identifier into parts, recursively
// splitting camelCase within each part.
func splitCodeToken(token string) []string {
	if strings.Contains(token, "_") {
		var out []string
		for _, part := range strings.Split(token, "_") {
			if part != "" {
				out = append(out, splitCamelCase(part)...)
			}
		}
		return out
	}
	return splitCamelCase(token)
}

// splitCamelCase splits camelCase and PascalCase identifiers, keeping
// acronym runs (e.g. "HTTPHandler" -> "HTTP", "Handler") intact.
func splitCamelCase(s string) []string {
	if s == "" {
		return nil
	}

	var out []string
	var current strings.Builder
	runes := []rune(s)

	for i, r := range runes {
		if i > 0 && unicode.IsUpper(r) {
			prevLower := unicode.IsLower(runes[i-1])
			nextLower := i+1 < len(runes) && unicode.IsLower(runes[i+1])
			if (prevLower || nextLower) && current.Len() > 0 {
				out = append(out, current.String())
				current.Reset()
			}
		}
		current.WriteRune(r)
	}
	if current.Len() > 0 {
		out = append(out, current.String())
	}
	return out
}

func init() {
	registry.RegisterTokenizer(codeTokenizerName, func(_ map[string]interface{}, _ *registry.Cache) (analysis.Tokenizer, error) {
		return codeTokenizer{}, nil
	})
}
