package speech

import (
	"strings"
	"unicode"
)

// minChunkLen is the shortest fragment worth sending to the synthesizer
// on its own; anything shorter is merged into the previous fragment.
const minChunkLen = 20

const devanagariDanda = '।'

func isTerminal(r rune) bool {
	switch r {
	case '.', '!', '?', devanagariDanda, '\n':
		return true
	default:
		return false
	}
}

// Segment splits text into speakable chunks of at most maxLen runes,
// breaking at sentence-terminal punctuation and falling back to
// space-boundary hard splits. Chunks come out in document order and
// that order is the playback contract.
func Segment(text string, maxLen int) []string {
	if maxLen <= 0 {
		maxLen = 500
	}

	sentences := splitSentences(text)
	merged := mergeShort(sentences)

	var chunks []string
	for _, sentence := range merged {
		chunks = append(chunks, hardSplit(sentence, maxLen)...)
	}

	return chunks
}

func splitSentences(text string) []string {
	var (
		sentences []string
		current   strings.Builder
	)

	runes := []rune(text)
	for i, r := range runes {
		if r == '\n' {
			flush(&sentences, &current)
			continue
		}

		current.WriteRune(r)

		if isTerminal(r) {
			next := rune(0)
			if i+1 < len(runes) {
				next = runes[i+1]
			}

			if next == 0 || unicode.IsSpace(next) {
				flush(&sentences, &current)
			}
		}
	}
	flush(&sentences, &current)

	return sentences
}

func flush(sentences *[]string, current *strings.Builder) {
	s := strings.TrimSpace(current.String())
	current.Reset()

	if s != "" {
		*sentences = append(*sentences, s)
	}
}

func mergeShort(sentences []string) []string {
	var merged []string

	for _, s := range sentences {
		if len(merged) > 0 && len([]rune(s)) < minChunkLen {
			merged[len(merged)-1] += " " + s
			continue
		}

		merged = append(merged, s)
	}

	return merged
}

// hardSplit cuts an over-long sentence at the last space at or before
// maxLen, or at maxLen exactly when there is no space, until the
// remainder fits.
func hardSplit(sentence string, maxLen int) []string {
	var parts []string

	runes := []rune(sentence)
	for len(runes) > maxLen {
		cut := maxLen

		for i := maxLen; i > 0; i-- {
			if unicode.IsSpace(runes[i-1]) {
				cut = i
				break
			}
		}

		part := strings.TrimSpace(string(runes[:cut]))
		if part != "" {
			parts = append(parts, part)
		}

		runes = []rune(strings.TrimSpace(string(runes[cut:])))
	}

	if len(runes) > 0 {
		parts = append(parts, string(runes))
	}

	return parts
}
