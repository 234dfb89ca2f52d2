package speech

import (
	"strings"
	"testing"
)

func normalize(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func TestSegmentBasicSentences(t *testing.T) {
	chunks := Segment("This is the first sentence. This is the second one! And is this the third?", 200)

	want := []string{
		"This is the first sentence.",
		"This is the second one!",
		"And is this the third?",
	}

	if len(chunks) != len(want) {
		t.Fatalf("got %d chunks, want %d: %#v", len(chunks), len(want), chunks)
	}
	for i := range want {
		if chunks[i] != want[i] {
			t.Fatalf("chunk %d = %q, want %q", i, chunks[i], want[i])
		}
	}
}

func TestSegmentMergesShortFragments(t *testing.T) {
	chunks := Segment("Take rest and drink plenty of fluids. Okay? Yes.", 200)

	if len(chunks) != 1 {
		t.Fatalf("short trailing fragments should merge into the previous chunk, got %#v", chunks)
	}
}

func TestSegmentDevanagariDanda(t *testing.T) {
	chunks := Segment("आपको आराम करना चाहिए और पानी पीना चाहिए। अगर बुखार दो दिन से ज़्यादा रहे तो डॉक्टर से मिलें।", 200)

	if len(chunks) != 2 {
		t.Fatalf("danda should terminate sentences, got %d chunks: %#v", len(chunks), chunks)
	}
}

func TestSegmentHardSplitRespectsMaxLen(t *testing.T) {
	long := strings.Repeat("word ", 100) // a single 500-char "sentence" with no terminal punctuation

	chunks := Segment(long, 64)

	if len(chunks) < 2 {
		t.Fatalf("expected multiple chunks, got %d", len(chunks))
	}
	for i, c := range chunks {
		if n := len([]rune(c)); n == 0 || n > 64 {
			t.Fatalf("chunk %d has length %d, want 1..64", i, n)
		}
	}
}

func TestSegmentHardSplitWithoutSpaces(t *testing.T) {
	chunks := Segment(strings.Repeat("x", 150), 64)

	for i, c := range chunks {
		if n := len([]rune(c)); n == 0 || n > 64 {
			t.Fatalf("chunk %d has length %d, want 1..64", i, n)
		}
	}
}

func TestSegmentRoundTrip(t *testing.T) {
	inputs := []string{
		"Hello there. How are you feeling today? I have a headache!\nIt started yesterday.",
		"बुखार है। सिर में दर्द भी है। कल से तबीयत ठीक नहीं है।",
		"Mixed script वाक्य here. दूसरा sentence भी has English words!",
		strings.Repeat("A fairly ordinary sentence that keeps going for a while. ", 150),
	}

	for _, input := range inputs {
		chunks := Segment(input, 120)

		for i, c := range chunks {
			if n := len([]rune(c)); n == 0 || n > 120 {
				t.Fatalf("chunk %d has length %d, want 1..120", i, n)
			}
		}

		got := normalize(strings.Join(chunks, " "))
		want := normalize(input)
		if got != want {
			t.Fatalf("round trip mismatch:\n got %q\nwant %q", got, want)
		}
	}
}
