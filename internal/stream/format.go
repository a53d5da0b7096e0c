package stream

import "strings"

// Codec is the audio codec of a resolved stream.
type Codec string

const (
	CodecMP3     Codec = "mp3"
	CodecFLAC    Codec = "flac"
	CodecAAC     Codec = "aac"
	CodecUnknown Codec = "unknown"
)

const (
	// hiResBitrateThreshold is the observed bit rate (bps) above which
	// lossless-tagged content is assumed to be 24-bit.
	hiResBitrateThreshold = 1_000_000

	defaultBitDepth   = 16
	hiResBitDepth     = 24
	defaultSampleRate = 44100
)

// Format is the classified audio format of a stream candidate.
type Format struct {
	Codec       Codec
	BitDepth    int
	BitrateKbps int
}

// ClassifyFormat maps a container tag and observed bit rate to codec and bit
// depth. The 24-bit upgrade for FLAC above the bit-rate threshold is a
// heuristic, not a guarantee: the upstream API does not report bit depth, so
// high-bitrate lossless content is assumed to be hi-res.
func ClassifyFormat(containerTag string, bitrate int) Format {
	codec := CodecUnknown
	switch strings.ToLower(containerTag) {
	case "mp3":
		codec = CodecMP3
	case "flac":
		codec = CodecFLAC
	case "m4a", "aac":
		codec = CodecAAC
	}

	bitDepth := defaultBitDepth
	if codec == CodecFLAC && bitrate >= hiResBitrateThreshold {
		bitDepth = hiResBitDepth
	}

	return Format{
		Codec:       codec,
		BitDepth:    bitDepth,
		BitrateKbps: bitrate / 1000,
	}
}
