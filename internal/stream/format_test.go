package stream

import "testing"

func TestClassifyFormat(t *testing.T) {
	tests := []struct {
		name         string
		containerTag string
		bitrate      int
		wantCodec    Codec
		wantBitDepth int
		wantKbps     int
	}{
		{
			name:         "High-bitrate FLAC assumed 24-bit",
			containerTag: "flac",
			bitrate:      1_200_000,
			wantCodec:    CodecFLAC,
			wantBitDepth: 24,
			wantKbps:     1200,
		},
		{
			name:         "Regular FLAC stays 16-bit",
			containerTag: "flac",
			bitrate:      600_000,
			wantCodec:    CodecFLAC,
			wantBitDepth: 16,
			wantKbps:     600,
		},
		{
			name:         "MP3 never upgrades",
			containerTag: "mp3",
			bitrate:      1_500_000,
			wantCodec:    CodecMP3,
			wantBitDepth: 16,
			wantKbps:     1500,
		},
		{
			name:         "m4a maps to AAC",
			containerTag: "m4a",
			bitrate:      256_000,
			wantCodec:    CodecAAC,
			wantBitDepth: 16,
			wantKbps:     256,
		},
		{
			name:         "Container tag is case-insensitive",
			containerTag: "FLAC",
			bitrate:      1_411_000,
			wantCodec:    CodecFLAC,
			wantBitDepth: 24,
			wantKbps:     1411,
		},
		{
			name:         "Unknown tag",
			containerTag: "ogg",
			bitrate:      192_000,
			wantCodec:    CodecUnknown,
			wantBitDepth: 16,
			wantKbps:     192,
		},
		{
			name:         "Empty tag",
			containerTag: "",
			bitrate:      0,
			wantCodec:    CodecUnknown,
			wantBitDepth: 16,
			wantKbps:     0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			format := ClassifyFormat(tt.containerTag, tt.bitrate)
			if format.Codec != tt.wantCodec {
				t.Errorf("Codec = %q, want %q", format.Codec, tt.wantCodec)
			}
			if format.BitDepth != tt.wantBitDepth {
				t.Errorf("BitDepth = %d, want %d", format.BitDepth, tt.wantBitDepth)
			}
			if format.BitrateKbps != tt.wantKbps {
				t.Errorf("BitrateKbps = %d, want %d", format.BitrateKbps, tt.wantKbps)
			}
		})
	}
}
