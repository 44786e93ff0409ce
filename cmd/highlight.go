package cmd

import (
	"strings"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/formatters"
	"github.com/alecthomas/chroma/v2/lexers"
	chromaStyles "github.com/alecthomas/chroma/v2/styles"
)

const highlightStyle = "monokai"

// highlighter colors single lines of one file by its language.
type highlighter struct {
	lexer     chroma.Lexer
	style     *chroma.Style
	formatter chroma.Formatter
}

// newHighlighter picks a lexer from the file name. Returns nil for unknown languages.
func newHighlighter(path string) *highlighter {
	lexer := lexers.Match(path)
	if lexer == nil {
		return nil
	}

	style := chromaStyles.Get(highlightStyle)
	if style == nil {
		style = chromaStyles.Fallback
	}
	formatter := formatters.Get("terminal256")
	if formatter == nil {
		formatter = formatters.Fallback
	}

	return &highlighter{
		lexer:     chroma.Coalesce(lexer),
		style:     style,
		formatter: formatter,
	}
}

// line highlights s. Lines are tokenised on their own, so constructs spanning
// lines (block comments, raw strings) may be colored wrong. On failure s is
// returned unchanged.
func (h *highlighter) line(s string) string {
	if h == nil || s == "" {
		return s
	}

	iterator, err := h.lexer.Tokenise(nil, s)
	if err != nil {
		return s
	}
	// lexers with EnsureNL append a newline we must not print
	tokens := iterator.Tokens()
	for len(tokens) > 0 {
		last := &tokens[len(tokens)-1]
		last.Value = strings.TrimRight(last.Value, "\n")
		if last.Value != "" {
			break
		}
		tokens = tokens[:len(tokens)-1]
	}

	var buf strings.Builder
	if err := h.formatter.Format(&buf, h.style, chroma.Literator(tokens...)); err != nil {
		return s
	}
	return buf.String()
}
