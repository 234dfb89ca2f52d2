package speech

import "strings"

// Empirically tuned rejection thresholds for transcripts fabricated
// from near-silent or tiny audio. Do not derive these from first
// principles, they came from replaying failed recordings.
const (
	smallAudioBytes     = 100 * 1024
	longTranscriptChars = 150

	bytesPerCharFloor    = 50
	ratioTranscriptChars = 100

	repeatSpanChars = 15
	repeatMinCount  = 3
)

// FilterTranscript rejects speech-to-text output that is likely
// hallucinated. The three heuristics are independent and OR-ed: a long
// transcript from small audio, an implausibly low bytes-per-character
// ratio, or a phrase repeated three or more times back to back covering
// at least 15 characters. Rejection returns an empty transcript with
// zero confidence; accepted text passes through with confidence 1.
func FilterTranscript(transcript string, audioByteLength int) (string, float64) {
	length := len([]rune(transcript))

	if audioByteLength < smallAudioBytes && length > longTranscriptChars {
		return "", 0
	}

	if length > ratioTranscriptChars && audioByteLength/max(length, 1) < bytesPerCharFloor {
		return "", 0
	}

	if hasConsecutiveRepeat(transcript) {
		return "", 0
	}

	return transcript, 1
}

// hasConsecutiveRepeat looks for a repeating unit appearing at least
// repeatMinCount times in a row whose total span is repeatSpanChars or
// more. Checked both over words (catches "buy now buy now buy now")
// and over raw rune blocks (catches scripts without spaces).
func hasConsecutiveRepeat(transcript string) bool {
	words := strings.Fields(transcript)

	for phraseLen := 1; phraseLen <= len(words)/repeatMinCount; phraseLen++ {
		for start := 0; start+repeatMinCount*phraseLen <= len(words); start++ {
			if !wordsRepeat(words, start, phraseLen, repeatMinCount) {
				continue
			}

			span := len(strings.Join(words[start:start+repeatMinCount*phraseLen], " "))
			if span >= repeatSpanChars {
				return true
			}
		}
	}

	runes := []rune(transcript)
	for blockLen := repeatSpanChars; blockLen <= min(len(runes)/repeatMinCount, 100); blockLen++ {
		for start := 0; start+repeatMinCount*blockLen <= len(runes); start++ {
			if runesRepeat(runes, start, blockLen, repeatMinCount) {
				return true
			}
		}
	}

	return false
}

func wordsRepeat(words []string, start, phraseLen, count int) bool {
	for rep := 1; rep < count; rep++ {
		for i := 0; i < phraseLen; i++ {
			if words[start+i] != words[start+rep*phraseLen+i] {
				return false
			}
		}
	}

	return true
}

func runesRepeat(runes []rune, start, blockLen, count int) bool {
	for rep := 1; rep < count; rep++ {
		for i := 0; i < blockLen; i++ {
			if runes[start+i] != runes[start+rep*blockLen+i] {
				return false
			}
		}
	}

	return true
}
