package tts

import (
	"bytes"
	"encoding/binary"
	"fmt"
)

const (
	wavHeaderSize = 44

	riffSizeOffset = 4
	dataSizeOffset = 40
)

// ConcatWAV joins several complete WAV payloads into one container:
// the first payload's header is reused, the headers of the rest are
// stripped, and the two size fields are rewritten for the new total.
// All payloads must share the same format, which holds here because
// they come from one synthesizer voice.
func ConcatWAV(parts [][]byte) ([]byte, error) {
	if len(parts) == 0 {
		return nil, fmt.Errorf("no audio payloads to concatenate")
	}

	for i, part := range parts {
		if len(part) < wavHeaderSize {
			return nil, fmt.Errorf("payload %d is shorter than a WAV header", i)
		}
		if !bytes.HasPrefix(part, []byte("RIFF")) {
			return nil, fmt.Errorf("payload %d is not a RIFF container", i)
		}
	}

	totalData := 0
	for _, part := range parts {
		totalData += len(part) - wavHeaderSize
	}

	out := make([]byte, 0, wavHeaderSize+totalData)
	out = append(out, parts[0]...)
	for _, part := range parts[1:] {
		out = append(out, part[wavHeaderSize:]...)
	}

	binary.LittleEndian.PutUint32(out[riffSizeOffset:], uint32(len(out)-8))
	binary.LittleEndian.PutUint32(out[dataSizeOffset:], uint32(totalData))

	return out, nil
}
