// Package catalog normalizes upstream cloud-music payloads into media entities.
package catalog

// MediaKind identifies the type of a normalized entity.
type MediaKind string

const (
	KindTrack    MediaKind = "track"
	KindAlbum    MediaKind = "album"
	KindArtist   MediaKind = "artist"
	KindPlaylist MediaKind = "playlist"
)

// Placeholder names used when the upstream payload omits the display name.
const (
	UnknownTrackName    = "Unknown Track"
	UnknownAlbumName    = "Unknown Album"
	UnknownArtistName   = "Unknown Artist"
	UnknownPlaylistName = "Unknown Playlist"
)

// ProviderMapping pairs an entity id with the provider instance that owns it,
// so the same logical entity can be disambiguated across upstream sources.
type ProviderMapping struct {
	ItemID   string
	Domain   string
	Instance string
}

// EntityRef is a lightweight pointer to another entity (id, provider scope,
// display name). Cross-references use refs instead of embedded entities so a
// track does not drag a full album/artist graph along with it.
type EntityRef struct {
	Kind     MediaKind
	ItemID   string
	Provider string
	Name     string
}

type Image struct {
	URL string
}

type Track struct {
	ItemID       string
	Provider     string
	Name         string
	Mapping      ProviderMapping
	Artists      []EntityRef
	Album        EntityRef
	DurationSecs int
	Images       []Image
}

type Album struct {
	ItemID   string
	Provider string
	Name     string
	Mapping  ProviderMapping
	Artists  []EntityRef
	Images   []Image
}

type Artist struct {
	ItemID   string
	Provider string
	Name     string
	Mapping  ProviderMapping
	Images   []Image
}

type Playlist struct {
	ItemID   string
	Provider string
	Name     string
	Mapping  ProviderMapping
	Owner    string
	Images   []Image
}

type SearchResults struct {
	Tracks    []Track
	Albums    []Album
	Artists   []Artist
	Playlists []Playlist
}
