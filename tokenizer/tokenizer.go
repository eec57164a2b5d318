package tokenizer

// Token is one extracted N-gram and its position within the source text.
// Positions count extraction slots, so a query and a document that share
// a substring produce tokens with matching relative positions.
type Token struct {
	Position int
	Text     string
}

// isIgnoredChar reports whether a code point separates tokens instead of
// being part of one: ASCII whitespace, ASCII punctuation, and a few
// full-width CJK punctuation marks.
func isIgnoredChar(u rune) bool {
	switch u {
	case ' ', '\f', '\n', '\r', '\t', '\v',
		'!', '"', '#', '$', '%', '&',
		'\'', '(', ')', '*', '+', ',',
		'-', '.', '/',
		':', ';', '<', '=', '>', '?', '@',
		'[', '\\', ']', '^', '_', '`',
		'{', '|', '}', '~',
		0x3000, // full-width space
		0x3001, // 、
		0x3002, // 。
		0xFF08, // （
		0xFF09: // ）
		return true
	}
	return false
}

// ngramNext skips leading ignored characters in text and greedily takes
// up to n indexable characters. It returns the offset of the token start
// and the token length; a zero length means the input is exhausted.
func ngramNext(text []rune, n int) (start, length int) {
	for start < len(text) && isIgnoredChar(text[start]) {
		start++
	}
	end := start
	for end < len(text) && end-start < n && !isIgnoredChar(text[end]) {
		end++
	}
	return start, end - start
}

// Split breaks a UTF-32 string into positional N-grams, re-encoded as
// UTF-8. With query set, trailing fragments shorter than n are dropped
// (they can never match an indexed N-gram) but still consume a position
// slot, keeping query positions aligned with index positions.
func Split(text []rune, n int, query bool) ([]Token, error) {
	var tokens []Token
	for position := 0; ; position++ {
		start, length := ngramNext(text, n)
		if length == 0 {
			break
		}
		if length >= n || !query {
			s, err := UTF32ToUTF8(text[start : start+length])
			if err != nil {
				return nil, err
			}
			tokens = append(tokens, Token{Position: position, Text: s})
		}
		text = text[start+1:]
	}
	return tokens, nil
}
