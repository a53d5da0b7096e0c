package catalog

import (
	"errors"
	"fmt"
	"strconv"
)

// ErrMissingID marks a payload with no usable identifier; the shape is
// considered malformed and no entity is constructed from it.
var ErrMissingID = errors.New("catalog: payload missing identifier")

// coverSizeParam is appended to every cover URL as a size hint for the CDN.
const coverSizeParam = "?param=300y300"

// Adapter converts raw upstream payloads into normalized entities scoped to
// one provider instance. It is stateless; entities are immutable once built.
type Adapter struct {
	domain   string
	instance string
}

func NewAdapter(domain, instance string) *Adapter {
	return &Adapter{domain: domain, instance: instance}
}

func (a *Adapter) Track(p *TrackPayload) (*Track, error) {
	if p.ID == 0 {
		return nil, fmt.Errorf("track: %w", ErrMissingID)
	}
	id := formatID(p.ID)

	artists := make([]EntityRef, 0, len(p.Artists))
	for _, ar := range p.Artists {
		artists = append(artists, a.artistRef(ar))
	}

	album := EntityRef{
		Kind:     KindAlbum,
		ItemID:   formatID(p.Album.ID),
		Provider: a.instance,
		Name:     fallbackName(p.Album.Name, UnknownAlbumName),
	}

	return &Track{
		ItemID:       id,
		Provider:     a.instance,
		Name:         fallbackName(p.Name, UnknownTrackName),
		Mapping:      a.mapping(id),
		Artists:      artists,
		Album:        album,
		DurationSecs: int(p.DurationMS / 1000),
		Images:       coverImages(p.Album.PicURL),
	}, nil
}

func (a *Adapter) Album(p *AlbumPayload) (*Album, error) {
	if p.ID == 0 {
		return nil, fmt.Errorf("album: %w", ErrMissingID)
	}
	id := formatID(p.ID)

	artists := make([]EntityRef, 0, len(p.Artists))
	for _, ar := range p.Artists {
		artists = append(artists, a.artistRef(ar))
	}

	return &Album{
		ItemID:   id,
		Provider: a.instance,
		Name:     fallbackName(p.Name, UnknownAlbumName),
		Mapping:  a.mapping(id),
		Artists:  artists,
		Images:   coverImages(p.PicURL),
	}, nil
}

func (a *Adapter) Artist(p *ArtistPayload) (*Artist, error) {
	if p.ID == 0 {
		return nil, fmt.Errorf("artist: %w", ErrMissingID)
	}
	id := formatID(p.ID)

	picURL := p.PicURL
	if picURL == "" {
		picURL = p.Img1v1URL
	}

	return &Artist{
		ItemID:   id,
		Provider: a.instance,
		Name:     fallbackName(p.Name, UnknownArtistName),
		Mapping:  a.mapping(id),
		Images:   coverImages(picURL),
	}, nil
}

func (a *Adapter) Playlist(p *PlaylistPayload) (*Playlist, error) {
	if p.ID == 0 {
		return nil, fmt.Errorf("playlist: %w", ErrMissingID)
	}
	id := formatID(p.ID)

	return &Playlist{
		ItemID:   id,
		Provider: a.instance,
		Name:     fallbackName(p.Name, UnknownPlaylistName),
		Mapping:  a.mapping(id),
		Owner:    p.Creator.Nickname,
		Images:   coverImages(p.CoverImgURL),
	}, nil
}

func (a *Adapter) artistRef(p ArtistRefPayload) EntityRef {
	return EntityRef{
		Kind:     KindArtist,
		ItemID:   formatID(p.ID),
		Provider: a.instance,
		Name:     fallbackName(p.Name, UnknownArtistName),
	}
}

func (a *Adapter) mapping(id string) ProviderMapping {
	return ProviderMapping{
		ItemID:   id,
		Domain:   a.domain,
		Instance: a.instance,
	}
}

// coverImages rewrites a cover URL with the size-hint suffix. No cover means
// zero images, never a placeholder.
func coverImages(picURL string) []Image {
	if picURL == "" {
		return nil
	}
	return []Image{{URL: picURL + coverSizeParam}}
}

func fallbackName(name, fallback string) string {
	if name == "" {
		return fallback
	}
	return name
}

func formatID(id int64) string {
	return strconv.FormatInt(id, 10)
}
