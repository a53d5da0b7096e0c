// Package stream resolves a track identifier to a playable audio stream,
// probing the upstream quality ladder and falling back to an alternate-source
// rescue path when the primary path yields nothing usable.
package stream

// Quality is one rung of the upstream quality ladder. Values are the wire
// names the /song/url/v1 endpoint accepts for its level parameter.
type Quality string

const (
	QualityMaster      Quality = "jymaster"
	QualityDolby       Quality = "dolby"
	QualitySky         Quality = "sky"
	QualityImmersive   Quality = "jyeffect"
	QualityHiRes       Quality = "hires"
	QualityLossless    Quality = "lossless"
	QualityExtremeHigh Quality = "exhigh"
	QualityHigh        Quality = "higher"
	QualityStandard    Quality = "standard"
)

// ladder orders the quality tiers highest to lowest. The order is total and
// fixed; probe sequences are suffixes of it.
var ladder = []Quality{
	QualityMaster,
	QualityDolby,
	QualitySky,
	QualityImmersive,
	QualityHiRes,
	QualityLossless,
	QualityExtremeHigh,
	QualityHigh,
	QualityStandard,
}

// defaultSequence is probed when the configured quality is not a recognized
// ladder entry. An unrecognized configuration value must never abort
// resolution.
var defaultSequence = []Quality{QualityExtremeHigh, QualityHigh, QualityStandard}

// ParseQuality reports whether s names a ladder entry.
func ParseQuality(s string) (Quality, bool) {
	q := Quality(s)
	for _, entry := range ladder {
		if entry == q {
			return q, true
		}
	}
	return "", false
}

// ProbeSequence returns the ladder suffix starting at the configured quality,
// or the default sub-sequence when the quality is unrecognized. The returned
// slice is a fresh copy.
func ProbeSequence(configured Quality) []Quality {
	for i, entry := range ladder {
		if entry == configured {
			return append([]Quality(nil), ladder[i:]...)
		}
	}
	return append([]Quality(nil), defaultSequence...)
}
