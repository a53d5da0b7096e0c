package ncm

import (
	"context"
	"net/url"
	"strconv"
	"strings"

	"cloudtune/internal/auth"
	"cloudtune/internal/catalog"
	"cloudtune/internal/stream"
)

// SearchKind selects the entity type for the /cloudsearch endpoint.
type SearchKind int

const (
	SearchSongs     SearchKind = 1
	SearchAlbums    SearchKind = 10
	SearchArtists   SearchKind = 100
	SearchPlaylists SearchKind = 1000
)

type SearchResponse struct {
	envelope
	Result struct {
		Songs     []catalog.TrackPayload    `json:"songs"`
		Albums    []catalog.AlbumPayload    `json:"albums"`
		Artists   []catalog.ArtistPayload   `json:"artists"`
		Playlists []catalog.PlaylistPayload `json:"playlists"`
	} `json:"result"`
}

func (c *Client) Search(ctx context.Context, keywords string, kind SearchKind, limit int) (*SearchResponse, error) {
	params := url.Values{}
	params.Set("keywords", keywords)
	params.Set("type", strconv.Itoa(int(kind)))
	params.Set("limit", strconv.Itoa(limit))

	var resp SearchResponse
	if err := c.get(ctx, "/cloudsearch", params, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

type SongDetailResponse struct {
	envelope
	Songs []catalog.TrackPayload `json:"songs"`
}

func (c *Client) SongDetail(ctx context.Context, id string) (*SongDetailResponse, error) {
	var resp SongDetailResponse
	if err := c.get(ctx, "/song/detail", url.Values{"ids": {id}}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

type AlbumDetailResponse struct {
	envelope
	Album catalog.AlbumPayload `json:"album"`
}

func (c *Client) AlbumDetail(ctx context.Context, id string) (*AlbumDetailResponse, error) {
	var resp AlbumDetailResponse
	if err := c.get(ctx, "/album", url.Values{"id": {id}}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

type ArtistDetailResponse struct {
	envelope
	Artist catalog.ArtistPayload `json:"artist"`
}

func (c *Client) ArtistDetail(ctx context.Context, id string) (*ArtistDetailResponse, error) {
	var resp ArtistDetailResponse
	if err := c.get(ctx, "/artists", url.Values{"id": {id}}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

type PlaylistDetailResponse struct {
	envelope
	Playlist catalog.PlaylistPayload `json:"playlist"`
}

func (c *Client) PlaylistDetail(ctx context.Context, id string) (*PlaylistDetailResponse, error) {
	var resp PlaylistDetailResponse
	if err := c.get(ctx, "/playlist/detail", url.Values{"id": {id}}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

type PlaylistTracksResponse struct {
	envelope
	Songs []catalog.TrackPayload `json:"songs"`
}

func (c *Client) PlaylistTracks(ctx context.Context, id string) (*PlaylistTracksResponse, error) {
	var resp PlaylistTracksResponse
	if err := c.get(ctx, "/playlist/track/all", url.Values{"id": {id}}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

type UserAccountResponse struct {
	envelope
	Account struct {
		ID int64 `json:"id"`
	} `json:"account"`
}

func (c *Client) UserAccount(ctx context.Context) (*UserAccountResponse, error) {
	var resp UserAccountResponse
	if err := c.get(ctx, "/user/account", nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

type UserPlaylistsResponse struct {
	envelope
	Playlist []catalog.PlaylistPayload `json:"playlist"`
}

func (c *Client) UserPlaylists(ctx context.Context, uid int64) (*UserPlaylistsResponse, error) {
	var resp UserPlaylistsResponse
	if err := c.get(ctx, "/user/playlist", url.Values{"uid": {strconv.FormatInt(uid, 10)}}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

type songURLResponse struct {
	envelope
	Data []struct {
		ID            int64  `json:"id"`
		URL           string `json:"url"`
		BR            int    `json:"br"`
		Size          int64  `json:"size"`
		MD5           string `json:"md5"`
		Type          string `json:"type"`
		SR            int    `json:"sr"`
		Time          int64  `json:"time"`
		FreeTrialInfo *struct {
			Start int64 `json:"start"`
			End   int64 `json:"end"`
		} `json:"freeTrialInfo"`
	} `json:"data"`
}

// SongURL probes one quality level. A nil candidate with a nil error means
// the upstream had nothing at this level; transport and decode failures come
// back as errors for the resolver to absorb.
func (c *Client) SongURL(ctx context.Context, trackID string, level stream.Quality) (*stream.Candidate, error) {
	params := url.Values{}
	params.Set("id", trackID)
	params.Set("level", string(level))

	var resp songURLResponse
	if err := c.get(ctx, "/song/url/v1", params, &resp); err != nil {
		return nil, err
	}
	if resp.Code != StatusOK || len(resp.Data) == 0 {
		return nil, nil
	}

	d := resp.Data[0]
	return &stream.Candidate{
		URL:        d.URL,
		Type:       strings.ToLower(d.Type),
		Bitrate:    d.BR,
		SampleRate: d.SR,
		Size:       d.Size,
		MD5:        d.MD5,
		DurationMS: d.Time,
		Preview:    d.FreeTrialInfo != nil,
	}, nil
}

type matchResponse struct {
	envelope
	Data struct {
		URL    string `json:"url"`
		BR     int    `json:"br"`
		Size   int64  `json:"size"`
		MD5    string `json:"md5"`
		Type   string `json:"type"`
		Source string `json:"source"`
	} `json:"data"`
}

// MatchSong consults the alternate-source rescue endpoint.
func (c *Client) MatchSong(ctx context.Context, trackID string, sources []string) (*stream.UnblockResult, error) {
	params := url.Values{}
	params.Set("id", trackID)
	params.Set("source", strings.Join(sources, ","))

	var resp matchResponse
	if err := c.get(ctx, "/song/url/match", params, &resp); err != nil {
		return nil, err
	}
	if resp.Code != StatusOK || resp.Data.URL == "" {
		return nil, nil
	}

	return &stream.UnblockResult{
		URL:     resp.Data.URL,
		Type:    strings.ToLower(resp.Data.Type),
		Bitrate: resp.Data.BR,
		Size:    resp.Data.Size,
		MD5:     resp.Data.MD5,
		Source:  resp.Data.Source,
	}, nil
}

type qrKeyResponse struct {
	envelope
	Data struct {
		Unikey string `json:"unikey"`
	} `json:"data"`
}

func (c *Client) QRKey(ctx context.Context) (string, error) {
	var resp qrKeyResponse
	if err := c.get(ctx, "/login/qr/key", nil, &resp); err != nil {
		return "", err
	}
	if resp.Code != StatusOK || resp.Data.Unikey == "" {
		return "", errCode("/login/qr/key", resp.Code)
	}
	return resp.Data.Unikey, nil
}

type qrCreateResponse struct {
	envelope
	Data struct {
		Qrurl string `json:"qrurl"`
		Qrimg string `json:"qrimg"`
	} `json:"data"`
}

func (c *Client) QRCreate(ctx context.Context, key string) (string, error) {
	params := url.Values{}
	params.Set("key", key)
	params.Set("qrimg", "true")

	var resp qrCreateResponse
	if err := c.get(ctx, "/login/qr/create", params, &resp); err != nil {
		return "", err
	}
	if resp.Code != StatusOK || resp.Data.Qrurl == "" {
		return "", errCode("/login/qr/create", resp.Code)
	}
	return resp.Data.Qrurl, nil
}

type qrCheckResponse struct {
	envelope
	Cookie string `json:"cookie"`
}

func (c *Client) QRCheck(ctx context.Context, key string) (*auth.CheckStatus, error) {
	var resp qrCheckResponse
	if err := c.get(ctx, "/login/qr/check", url.Values{"key": {key}}, &resp); err != nil {
		return nil, err
	}
	return &auth.CheckStatus{Code: resp.Code, Cookie: resp.Cookie}, nil
}
