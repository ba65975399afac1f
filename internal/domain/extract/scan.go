package extract

import "strings"

// Token is the literal a candidate object must contain.
const Token = "peerId"

// maxNesting is how many levels of balanced braces a candidate may hold
// below its own level.
const maxNesting = 1

// Candidates returns every maximal balanced-brace substring of text that
// contains Token anywhere inside it and nests at most maxNesting levels of
// braces. Matching is leftmost first; after a match the scan resumes behind
// its closing brace, otherwise at the next opening brace. Whether the token
// is the object's own peerId field is left to the parser.
func Candidates(text string) []string {
	var out []string
	for i := 0; i < len(text); i++ {
		if text[i] != '{' {
			continue
		}
		end, ok := matchObject(text, i)
		if !ok {
			continue
		}
		out = append(out, text[i:end])
		i = end - 1
	}
	return out
}

// matchObject walks the braces opened at text[start] and returns the offset
// just past the matching close brace. ok is false when the braces never
// balance, nest deeper than maxNesting, or Token never shows up.
func matchObject(text string, start int) (end int, ok bool) {
	var (
		depth    int
		quote    byte
		escaped  bool
		sawToken bool
	)
	for pos := start; pos < len(text); pos++ {
		c := text[pos]

		if !sawToken && c == Token[0] && strings.HasPrefix(text[pos:], Token) {
			sawToken = true
		}

		if quote != 0 {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == quote:
				quote = 0
			}
			continue
		}

		switch c {
		case '"', '\'', '`':
			quote = c
		case '{':
			depth++
			if depth > maxNesting+1 {
				return 0, false
			}
		case '}':
			depth--
			if depth == 0 {
				return pos + 1, sawToken
			}
		}
	}
	return 0, false
}
