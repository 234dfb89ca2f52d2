package tts

import (
	"bytes"
	"encoding/binary"
	"testing"
)

func makeWAV(data []byte) []byte {
	out := make([]byte, wavHeaderSize+len(data))

	copy(out[0:4], "RIFF")
	binary.LittleEndian.PutUint32(out[4:], uint32(36+len(data)))
	copy(out[8:12], "WAVE")
	copy(out[12:16], "fmt ")
	binary.LittleEndian.PutUint32(out[16:], 16)
	copy(out[36:40], "data")
	binary.LittleEndian.PutUint32(out[40:], uint32(len(data)))
	copy(out[wavHeaderSize:], data)

	return out
}

func TestConcatWAV(t *testing.T) {
	a := makeWAV([]byte{1, 2, 3, 4})
	b := makeWAV([]byte{5, 6})
	c := makeWAV([]byte{7, 8, 9})

	out, err := ConcatWAV([][]byte{a, b, c})
	if err != nil {
		t.Fatalf("ConcatWAV failed: %v", err)
	}

	if len(out) != wavHeaderSize+9 {
		t.Fatalf("output length = %d, want %d", len(out), wavHeaderSize+9)
	}

	wantData := []byte{1, 2, 3, 4, 5, 6, 7, 8, 9}
	if !bytes.Equal(out[wavHeaderSize:], wantData) {
		t.Fatalf("data section = %v, want %v", out[wavHeaderSize:], wantData)
	}

	if got := binary.LittleEndian.Uint32(out[4:]); got != uint32(len(out)-8) {
		t.Fatalf("RIFF size = %d, want %d", got, len(out)-8)
	}
	if got := binary.LittleEndian.Uint32(out[40:]); got != 9 {
		t.Fatalf("data size = %d, want 9", got)
	}
}

func TestConcatWAVSinglePayload(t *testing.T) {
	a := makeWAV([]byte{1, 2, 3})

	out, err := ConcatWAV([][]byte{a})
	if err != nil {
		t.Fatalf("ConcatWAV failed: %v", err)
	}

	if !bytes.Equal(out, a) {
		t.Fatal("single payload should pass through with consistent sizes")
	}
}

func TestConcatWAVRejectsGarbage(t *testing.T) {
	if _, err := ConcatWAV([][]byte{[]byte("nope")}); err == nil {
		t.Fatal("short payload should be rejected")
	}
	if _, err := ConcatWAV(nil); err == nil {
		t.Fatal("empty input should be rejected")
	}
}
