package tts

import (
	"strings"
	"unicode"
)

// SplitText breaks text into chunks of at most maxRunes runes for synthesis.
// Sentences are kept whole where they fit; longer sentences are split at the
// last space before the limit, or hard at the limit when there is none.
func SplitText(text string, maxRunes int) []string {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	if maxRunes <= 0 {
		return []string{text}
	}

	var (
		chunks  []string
		current []rune
	)
	flush := func() {
		if s := strings.TrimSpace(string(current)); s != "" {
			chunks = append(chunks, s)
		}
		current = current[:0]
	}

	for _, sentence := range sentences(text) {
		for _, piece := range splitLong([]rune(sentence), maxRunes) {
			sep := 0
			if len(current) > 0 {
				sep = 1
			}
			if len(current)+sep+len(piece) > maxRunes {
				flush()
				sep = 0
			}
			if sep == 1 {
				current = append(current, ' ')
			}
			current = append(current, piece...)
		}
	}
	flush()
	return chunks
}

// sentences splits text after each sentence boundary.
func sentences(text string) []string {
	var (
		out []string
		buf []rune
	)
	for _, r := range text {
		buf = append(buf, r)
		if isSentenceBoundary(r) {
			if s := strings.TrimSpace(string(buf)); s != "" {
				out = append(out, s)
			}
			buf = buf[:0]
		}
	}
	if s := strings.TrimSpace(string(buf)); s != "" {
		out = append(out, s)
	}
	return out
}

func splitLong(r []rune, maxRunes int) [][]rune {
	var pieces [][]rune
	for len(r) > maxRunes {
		cut := maxRunes
		for i := maxRunes; i > 0; i-- {
			if unicode.IsSpace(r[i]) {
				cut = i
				break
			}
		}
		pieces = append(pieces, []rune(strings.TrimSpace(string(r[:cut]))))
		r = []rune(strings.TrimSpace(string(r[cut:])))
	}
	if len(r) > 0 {
		pieces = append(pieces, r)
	}
	return pieces
}

func isSentenceBoundary(r rune) bool {
	switch r {
	case '\n', '.', '!', '?', ';', '…':
		return true
	default:
		return false
	}
}
