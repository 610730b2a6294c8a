package audio

import (
	"encoding/binary"
	"errors"
)

// wavFormat holds the playback parameters read from a WAV header.
type wavFormat struct {
	SampleRate int
	Channels   int
	BitDepth   int
}

// parseWAV walks the RIFF chunks of a WAV file and returns the format
// and raw PCM data.
func parseWAV(wav []byte) (wavFormat, []byte, error) {
	var f wavFormat

	if len(wav) < 12 || string(wav[0:4]) != "RIFF" || string(wav[8:12]) != "WAVE" {
		return f, nil, errors.New("not a valid WAV file")
	}

	var pcm []byte
	pos := 12
	for pos+8 <= len(wav) {
		chunkID := string(wav[pos : pos+4])
		chunkSize := int(binary.LittleEndian.Uint32(wav[pos+4 : pos+8]))
		body := pos + 8

		switch chunkID {
		case "fmt ":
			if body+16 > len(wav) {
				return f, nil, errors.New("truncated fmt chunk")
			}
			f.Channels = int(binary.LittleEndian.Uint16(wav[body+2 : body+4]))
			f.SampleRate = int(binary.LittleEndian.Uint32(wav[body+4 : body+8]))
			f.BitDepth = int(binary.LittleEndian.Uint16(wav[body+14 : body+16]))
		case "data":
			end := body + chunkSize
			if end > len(wav) {
				end = len(wav)
			}
			pcm = wav[body:end]
		}

		pos = body + chunkSize
		// Chunks are word-aligned.
		if chunkSize%2 != 0 {
			pos++
		}
	}

	if f.SampleRate == 0 {
		return f, nil, errors.New("fmt chunk not found in WAV")
	}
	if pcm == nil {
		return f, nil, errors.New("data chunk not found in WAV")
	}
	return f, pcm, nil
}
