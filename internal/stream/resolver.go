package stream

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"
)

// ErrNoPlayableSource reports that neither the quality ladder nor the rescue
// path produced a candidate with a URL. The caller decides user-visible
// behavior (typically skipping the track).
var ErrNoPlayableSource = errors.New("stream: no playable source")

// Candidate is the outcome of one quality-level probe against the primary
// provider. It is produced fresh per probe and never mutated after return.
type Candidate struct {
	URL        string
	Type       string // container tag as reported upstream, e.g. "flac"
	Bitrate    int    // bps
	SampleRate int
	Size       int64
	MD5        string
	DurationMS int64
	Preview    bool // truncated trial clip served in place of the full track
}

// UnblockResult is the outcome of the rescue path. Its field set differs from
// Candidate; the two are merged, never substituted, when both exist.
type UnblockResult struct {
	URL     string
	Type    string
	Bitrate int
	Size    int64
	MD5     string
	Source  string
}

// Prober issues the two upstream lookups the resolver depends on. A nil
// candidate with a nil error means "no candidate at this level".
type Prober interface {
	SongURL(ctx context.Context, trackID string, level Quality) (*Candidate, error)
	MatchSong(ctx context.Context, trackID string, sources []string) (*UnblockResult, error)
}

// ResolvedStream is the externally visible resolution result. URL is always
// non-empty; construction fails otherwise.
type ResolvedStream struct {
	TrackID     string
	URL         string
	Codec       Codec
	SampleRate  int
	BitDepth    int
	BitrateKbps int
	Duration    time.Duration // zero when upstream did not report one
	Preview     bool          // true when only a trial clip was reachable
	Rescued     bool          // true when the URL came from the rescue path
}

// DefaultRescueSources is the fixed, ordered list of alternate-source tags
// passed to the rescue endpoint.
var DefaultRescueSources = []string{"kuwo", "kugou", "migu", "bilibili"}

// Resolver finds the best reachable stream for a track. Probes are strictly
// sequential: each outcome decides whether the next level is attempted.
// Concurrent Resolve calls are independent and share no mutable state.
type Resolver struct {
	prober  Prober
	sources []string
	logger  *zap.Logger
}

func NewResolver(prober Prober, rescueSources []string, logger *zap.Logger) *Resolver {
	if len(rescueSources) == 0 {
		rescueSources = DefaultRescueSources
	}
	return &Resolver{
		prober:  prober,
		sources: rescueSources,
		logger:  logger,
	}
}

// Resolve probes the quality ladder starting at the configured quality and
// returns the first full candidate. When the ladder yields only previews or
// nothing, the rescue path is consulted once and its result merged with the
// retained preview. Fails with ErrNoPlayableSource on total exhaustion.
func (r *Resolver) Resolve(ctx context.Context, trackID string, configured Quality) (*ResolvedStream, error) {
	sequence := ProbeSequence(configured)

	full, preview := r.probeLadder(ctx, trackID, sequence)
	if full != nil {
		return newResolvedStream(trackID, full, false)
	}

	merged, rescued := r.rescue(ctx, trackID, preview)
	if merged == nil || merged.URL == "" {
		return nil, ErrNoPlayableSource
	}
	return newResolvedStream(trackID, merged, rescued)
}

// probeLadder walks the probe sequence as an early-exit search: the first
// candidate with a URL and no preview flag terminates the walk. The first
// preview seen is retained as a last resort; later previews at lower levels
// are discarded. A failed probe counts as no candidate at that level, never
// as a resolution-wide abort.
func (r *Resolver) probeLadder(ctx context.Context, trackID string, sequence []Quality) (full, preview *Candidate) {
	for _, level := range sequence {
		candidate, err := r.prober.SongURL(ctx, trackID, level)
		if err != nil {
			r.logger.Warn("Quality probe failed",
				zap.String("track_id", trackID),
				zap.String("level", string(level)),
				zap.Error(err))
			continue
		}
		if candidate == nil || candidate.URL == "" {
			continue
		}
		if !candidate.Preview {
			return candidate, preview
		}
		if preview == nil {
			preview = candidate
		}
	}
	return nil, preview
}

// rescue consults the alternate-source path once and merges its result with
// the retained preview. Rescue failures are absorbed; the preview clip then
// stands as the fallback of last resort.
func (r *Resolver) rescue(ctx context.Context, trackID string, preview *Candidate) (*Candidate, bool) {
	result, err := r.prober.MatchSong(ctx, trackID, r.sources)
	if err != nil {
		r.logger.Warn("Rescue lookup failed",
			zap.String("track_id", trackID),
			zap.Strings("sources", r.sources),
			zap.Error(err))
		return preview, false
	}
	if result == nil || result.URL == "" {
		return preview, false
	}

	r.logger.Info("Rescue path supplied stream",
		zap.String("track_id", trackID),
		zap.String("source", result.Source))
	return mergeRescue(result, preview), true
}

// mergeRescue is the total merge of the two result shapes. Rescue fields win;
// any field the rescue path does not supply is backfilled from the preview so
// metadata degrades gracefully instead of being dropped. The preview flag is
// cleared: a rescue hit is a full track.
func mergeRescue(rescue *UnblockResult, preview *Candidate) *Candidate {
	merged := &Candidate{
		URL:     rescue.URL,
		Type:    rescue.Type,
		Bitrate: rescue.Bitrate,
		Size:    rescue.Size,
		MD5:     rescue.MD5,
	}
	if preview == nil {
		return merged
	}
	if merged.Type == "" {
		merged.Type = preview.Type
	}
	if merged.Bitrate == 0 {
		merged.Bitrate = preview.Bitrate
	}
	if merged.Size == 0 {
		merged.Size = preview.Size
	}
	if merged.MD5 == "" {
		merged.MD5 = preview.MD5
	}
	merged.SampleRate = preview.SampleRate
	merged.DurationMS = preview.DurationMS
	return merged
}

func newResolvedStream(trackID string, c *Candidate, rescued bool) (*ResolvedStream, error) {
	if strings.TrimSpace(c.URL) == "" {
		return nil, ErrNoPlayableSource
	}

	format := ClassifyFormat(c.Type, c.Bitrate)

	sampleRate := c.SampleRate
	if sampleRate == 0 {
		sampleRate = defaultSampleRate
	}

	return &ResolvedStream{
		TrackID:     trackID,
		URL:         c.URL,
		Codec:       format.Codec,
		SampleRate:  sampleRate,
		BitDepth:    format.BitDepth,
		BitrateKbps: format.BitrateKbps,
		Duration:    time.Duration(c.DurationMS) * time.Millisecond,
		Preview:     c.Preview,
		Rescued:     rescued,
	}, nil
}
