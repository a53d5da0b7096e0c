// Package provider is the host-facing facade of the cloud-music source: it
// ties the upstream client, the catalog adapter and the stream resolver into
// the operations a playback host consumes.
package provider

import (
	"context"
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"
	"go.uber.org/zap"

	"cloudtune/internal/catalog"
	"cloudtune/internal/core"
	"cloudtune/internal/ncm"
	"cloudtune/internal/stream"
	"cloudtune/pkg/fuzzy"
)

// Domain identifies this provider type in provider-scoped mappings.
const Domain = "cloudtune"

// entityCacheSize bounds each per-kind detail cache. Resolved stream URLs are
// deliberately never cached; only catalog entities are.
const entityCacheSize = 512

const defaultSearchLimit = 20

// Client is the upstream surface the provider consumes; *ncm.Client
// implements it.
type Client interface {
	stream.Prober

	Search(ctx context.Context, keywords string, kind ncm.SearchKind, limit int) (*ncm.SearchResponse, error)
	SongDetail(ctx context.Context, id string) (*ncm.SongDetailResponse, error)
	AlbumDetail(ctx context.Context, id string) (*ncm.AlbumDetailResponse, error)
	ArtistDetail(ctx context.Context, id string) (*ncm.ArtistDetailResponse, error)
	PlaylistDetail(ctx context.Context, id string) (*ncm.PlaylistDetailResponse, error)
	PlaylistTracks(ctx context.Context, id string) (*ncm.PlaylistTracksResponse, error)
	UserAccount(ctx context.Context) (*ncm.UserAccountResponse, error)
	UserPlaylists(ctx context.Context, uid int64) (*ncm.UserPlaylistsResponse, error)
}

type Provider struct {
	instance   string
	client     Client
	adapter    *catalog.Adapter
	resolver   *stream.Resolver
	normalizer *fuzzy.Normalizer
	quality    stream.Quality
	logger     *zap.Logger

	tracks    *lru.Cache[string, *catalog.Track]
	albums    *lru.Cache[string, *catalog.Album]
	artists   *lru.Cache[string, *catalog.Artist]
	playlists *lru.Cache[string, *catalog.Playlist]
}

func New(instance string, cfg *core.StreamConfig, client Client, logger *zap.Logger) *Provider {
	quality, ok := stream.ParseQuality(cfg.Quality)
	if !ok {
		// The resolver substitutes a safe default sequence for anything
		// unrecognized, so pass the raw value through instead of failing.
		quality = stream.Quality(cfg.Quality)
		logger.Warn("Configured quality is not a known ladder entry, resolver will use defaults",
			zap.String("quality", cfg.Quality))
	}

	tracks, _ := lru.New[string, *catalog.Track](entityCacheSize)
	albums, _ := lru.New[string, *catalog.Album](entityCacheSize)
	artists, _ := lru.New[string, *catalog.Artist](entityCacheSize)
	playlists, _ := lru.New[string, *catalog.Playlist](entityCacheSize)

	return &Provider{
		instance:   instance,
		client:     client,
		adapter:    catalog.NewAdapter(Domain, instance),
		resolver:   stream.NewResolver(client, cfg.RescueSources, logger.Named("resolver")),
		normalizer: fuzzy.NewNormalizer(),
		quality:    quality,
		logger:     logger,
		tracks:     tracks,
		albums:     albums,
		artists:    artists,
		playlists:  playlists,
	}
}

// Search queries the upstream catalog for the requested media kinds.
// Malformed entries in a result list are skipped, not fatal.
func (p *Provider) Search(ctx context.Context, query string, kinds []catalog.MediaKind, limit int) (*catalog.SearchResults, error) {
	if limit <= 0 {
		limit = defaultSearchLimit
	}
	query = p.normalizer.NormalizeQuery(query)

	results := &catalog.SearchResults{}
	for _, kind := range kinds {
		if err := p.searchKind(ctx, query, kind, limit, results); err != nil {
			return nil, err
		}
	}
	return results, nil
}

func (p *Provider) searchKind(ctx context.Context, query string, kind catalog.MediaKind, limit int, results *catalog.SearchResults) error {
	switch kind {
	case catalog.KindTrack:
		resp, err := p.client.Search(ctx, query, ncm.SearchSongs, limit)
		if err != nil {
			return fmt.Errorf("search tracks: %w", err)
		}
		if resp.Code != ncm.StatusOK {
			return nil
		}
		for i := range resp.Result.Songs {
			track, err := p.adapter.Track(&resp.Result.Songs[i])
			if err != nil {
				p.logSkipped(catalog.KindTrack, err)
				continue
			}
			results.Tracks = append(results.Tracks, *track)
		}
	case catalog.KindAlbum:
		resp, err := p.client.Search(ctx, query, ncm.SearchAlbums, limit)
		if err != nil {
			return fmt.Errorf("search albums: %w", err)
		}
		if resp.Code != ncm.StatusOK {
			return nil
		}
		for i := range resp.Result.Albums {
			album, err := p.adapter.Album(&resp.Result.Albums[i])
			if err != nil {
				p.logSkipped(catalog.KindAlbum, err)
				continue
			}
			results.Albums = append(results.Albums, *album)
		}
	case catalog.KindArtist:
		resp, err := p.client.Search(ctx, query, ncm.SearchArtists, limit)
		if err != nil {
			return fmt.Errorf("search artists: %w", err)
		}
		if resp.Code != ncm.StatusOK {
			return nil
		}
		for i := range resp.Result.Artists {
			artist, err := p.adapter.Artist(&resp.Result.Artists[i])
			if err != nil {
				p.logSkipped(catalog.KindArtist, err)
				continue
			}
			results.Artists = append(results.Artists, *artist)
		}
	case catalog.KindPlaylist:
		resp, err := p.client.Search(ctx, query, ncm.SearchPlaylists, limit)
		if err != nil {
			return fmt.Errorf("search playlists: %w", err)
		}
		if resp.Code != ncm.StatusOK {
			return nil
		}
		for i := range resp.Result.Playlists {
			playlist, err := p.adapter.Playlist(&resp.Result.Playlists[i])
			if err != nil {
				p.logSkipped(catalog.KindPlaylist, err)
				continue
			}
			results.Playlists = append(results.Playlists, *playlist)
		}
	}
	return nil
}

func (p *Provider) logSkipped(kind catalog.MediaKind, err error) {
	p.logger.Debug("Skipping malformed search entry",
		zap.String("kind", string(kind)),
		zap.Error(err))
}

func (p *Provider) GetTrack(ctx context.Context, id string) (*catalog.Track, error) {
	if track, ok := p.tracks.Get(id); ok {
		return track, nil
	}

	resp, err := p.client.SongDetail(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("track %s: %w", id, err)
	}
	if resp.Code != ncm.StatusOK || len(resp.Songs) == 0 {
		return nil, fmt.Errorf("track %s: %w", id, ErrNotFound)
	}

	track, err := p.adapter.Track(&resp.Songs[0])
	if err != nil {
		return nil, fmt.Errorf("track %s: %w", id, err)
	}
	p.tracks.Add(id, track)
	return track, nil
}

func (p *Provider) GetAlbum(ctx context.Context, id string) (*catalog.Album, error) {
	if album, ok := p.albums.Get(id); ok {
		return album, nil
	}

	resp, err := p.client.AlbumDetail(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("album %s: %w", id, err)
	}
	if resp.Code != ncm.StatusOK || resp.Album.ID == 0 {
		return nil, fmt.Errorf("album %s: %w", id, ErrNotFound)
	}

	album, err := p.adapter.Album(&resp.Album)
	if err != nil {
		return nil, fmt.Errorf("album %s: %w", id, err)
	}
	p.albums.Add(id, album)
	return album, nil
}

func (p *Provider) GetArtist(ctx context.Context, id string) (*catalog.Artist, error) {
	if artist, ok := p.artists.Get(id); ok {
		return artist, nil
	}

	resp, err := p.client.ArtistDetail(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("artist %s: %w", id, err)
	}
	if resp.Code != ncm.StatusOK || resp.Artist.ID == 0 {
		return nil, fmt.Errorf("artist %s: %w", id, ErrNotFound)
	}

	artist, err := p.adapter.Artist(&resp.Artist)
	if err != nil {
		return nil, fmt.Errorf("artist %s: %w", id, err)
	}
	p.artists.Add(id, artist)
	return artist, nil
}

func (p *Provider) GetPlaylist(ctx context.Context, id string) (*catalog.Playlist, error) {
	if playlist, ok := p.playlists.Get(id); ok {
		return playlist, nil
	}

	resp, err := p.client.PlaylistDetail(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("playlist %s: %w", id, err)
	}
	if resp.Code != ncm.StatusOK || resp.Playlist.ID == 0 {
		return nil, fmt.Errorf("playlist %s: %w", id, ErrNotFound)
	}

	playlist, err := p.adapter.Playlist(&resp.Playlist)
	if err != nil {
		return nil, fmt.Errorf("playlist %s: %w", id, err)
	}
	p.playlists.Add(id, playlist)
	return playlist, nil
}

// GetPlaylistTracks lists every track of a playlist. An unknown playlist or
// an empty one both come back as an empty slice.
func (p *Provider) GetPlaylistTracks(ctx context.Context, id string) ([]catalog.Track, error) {
	resp, err := p.client.PlaylistTracks(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("playlist %s tracks: %w", id, err)
	}
	if resp.Code != ncm.StatusOK {
		return nil, nil
	}

	tracks := make([]catalog.Track, 0, len(resp.Songs))
	for i := range resp.Songs {
		track, err := p.adapter.Track(&resp.Songs[i])
		if err != nil {
			p.logSkipped(catalog.KindTrack, err)
			continue
		}
		tracks = append(tracks, *track)
	}
	return tracks, nil
}

// GetLibraryPlaylists lists the logged-in account's playlists.
func (p *Provider) GetLibraryPlaylists(ctx context.Context) ([]catalog.Playlist, error) {
	account, err := p.client.UserAccount(ctx)
	if err != nil {
		return nil, fmt.Errorf("user account: %w", err)
	}
	if account.Code != ncm.StatusOK || account.Account.ID == 0 {
		return nil, ErrUnauthorized
	}

	resp, err := p.client.UserPlaylists(ctx, account.Account.ID)
	if err != nil {
		return nil, fmt.Errorf("user playlists: %w", err)
	}
	if resp.Code != ncm.StatusOK {
		return nil, nil
	}

	playlists := make([]catalog.Playlist, 0, len(resp.Playlist))
	for i := range resp.Playlist {
		playlist, err := p.adapter.Playlist(&resp.Playlist[i])
		if err != nil {
			p.logSkipped(catalog.KindPlaylist, err)
			continue
		}
		playlists = append(playlists, *playlist)
	}
	return playlists, nil
}

// GetStream resolves the playable stream for a track at the configured
// quality. Results are never cached.
func (p *Provider) GetStream(ctx context.Context, trackID string) (*stream.ResolvedStream, error) {
	return p.resolver.Resolve(ctx, trackID, p.quality)
}
