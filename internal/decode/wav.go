package decode

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"

	"github.com/cartomix/mixcraft/internal/errorsx"
)

// wavFmt mirrors the canonical RIFF "fmt " chunk.
type wavFmt struct {
	audioFormat   uint16
	numChannels   uint16
	sampleRate    uint32
	bitsPerSample uint16
}

const (
	formatPCM   = 1
	formatFloat = 3
)

// decodeWAV walks the RIFF chunk list looking for "fmt " and "data",
// downmixes interleaved channels to mono, and converts samples to
// float64 in [-1, 1].
func decodeWAV(r io.Reader) (*PCM, error) {
	var riffHeader [12]byte
	if _, err := io.ReadFull(r, riffHeader[:]); err != nil {
		return nil, errorsx.Wrap(errorsx.DecodeFailed, err)
	}
	if string(riffHeader[0:4]) != "RIFF" || string(riffHeader[8:12]) != "WAVE" {
		return nil, errorsx.New(errorsx.DecodeFailed, "not a RIFF/WAVE stream")
	}

	var format *wavFmt
	var chunkHeader [8]byte

	for {
		_, err := io.ReadFull(r, chunkHeader[:])
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			break
		}
		if err != nil {
			return nil, errorsx.Wrap(errorsx.DecodeFailed, err)
		}
		id := string(chunkHeader[0:4])
		size := binary.LittleEndian.Uint32(chunkHeader[4:8])

		switch id {
		case "fmt ":
			body := make([]byte, size)
			if _, err := io.ReadFull(r, body); err != nil {
				return nil, errorsx.Wrap(errorsx.DecodeFailed, err)
			}
			if len(body) < 16 {
				return nil, errorsx.New(errorsx.DecodeFailed, "truncated fmt chunk")
			}
			format = &wavFmt{
				audioFormat:   binary.LittleEndian.Uint16(body[0:2]),
				numChannels:   binary.LittleEndian.Uint16(body[2:4]),
				sampleRate:    binary.LittleEndian.Uint32(body[4:8]),
				bitsPerSample: binary.LittleEndian.Uint16(body[14:16]),
			}
		case "data":
			if format == nil {
				return nil, errorsx.New(errorsx.DecodeFailed, "data chunk before fmt chunk")
			}
			body := make([]byte, size)
			if _, err := io.ReadFull(r, body); err != nil {
				return nil, errorsx.Wrap(errorsx.DecodeFailed, err)
			}
			samples, err := pcmToMono(body, format)
			if err != nil {
				return nil, err
			}
			return &PCM{SampleRate: int(format.sampleRate), Samples: samples}, nil
		default:
			// Skip unknown chunks (LIST, fact, cue, bext, ...); chunks are
			// word-aligned.
			skip := int64(size)
			if size%2 == 1 {
				skip++
			}
			if _, err := io.CopyN(io.Discard, r, skip); err != nil {
				return nil, errorsx.Wrap(errorsx.DecodeFailed, err)
			}
		}
	}

	return nil, errorsx.New(errorsx.DecodeFailed, "no data chunk found")
}

func pcmToMono(data []byte, f *wavFmt) ([]float64, error) {
	if f.numChannels == 0 {
		return nil, errorsx.New(errorsx.DecodeFailed, "zero channel count")
	}
	bytesPerSample := int(f.bitsPerSample / 8)
	if bytesPerSample == 0 {
		return nil, errorsx.New(errorsx.DecodeFailed, fmt.Sprintf("unsupported bit depth %d", f.bitsPerSample))
	}
	frameSize := bytesPerSample * int(f.numChannels)
	if frameSize == 0 || len(data) < frameSize {
		return []float64{}, nil
	}
	numFrames := len(data) / frameSize
	out := make([]float64, numFrames)
	numChannels := int(f.numChannels)

	for i := 0; i < numFrames; i++ {
		base := i * frameSize
		var sum float64
		for ch := 0; ch < numChannels; ch++ {
			off := base + ch*bytesPerSample
			var v float64
			switch {
			case f.audioFormat == formatFloat && f.bitsPerSample == 32:
				bits := binary.LittleEndian.Uint32(data[off : off+4])
				v = float64(math.Float32frombits(bits))
			case f.audioFormat == formatPCM && f.bitsPerSample == 16:
				v = float64(int16(binary.LittleEndian.Uint16(data[off:off+2]))) / 32768.0
			case f.audioFormat == formatPCM && f.bitsPerSample == 24:
				raw := int32(data[off]) | int32(data[off+1])<<8 | int32(data[off+2])<<16
				if raw&0x800000 != 0 {
					raw |= ^0xFFFFFF
				}
				v = float64(raw) / 8388608.0
			case f.audioFormat == formatPCM && f.bitsPerSample == 32:
				v = float64(int32(binary.LittleEndian.Uint32(data[off:off+4]))) / 2147483648.0
			default:
				return nil, errorsx.New(errorsx.DecodeFailed,
					fmt.Sprintf("unsupported format=%d depth=%d", f.audioFormat, f.bitsPerSample))
			}
			sum += v
		}
		out[i] = sum / float64(numChannels)
	}
	return out, nil
}
