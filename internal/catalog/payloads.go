package catalog

// Raw upstream JSON shapes. Field names follow the wire format, which uses
// abbreviated keys for search/detail song objects ("ar", "al", "dt").

type TrackPayload struct {
	ID         int64              `json:"id"`
	Name       string             `json:"name"`
	Artists    []ArtistRefPayload `json:"ar"`
	Album      AlbumRefPayload    `json:"al"`
	DurationMS int64              `json:"dt"`
}

type ArtistRefPayload struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type AlbumRefPayload struct {
	ID     int64  `json:"id"`
	Name   string `json:"name"`
	PicURL string `json:"picUrl"`
}

type AlbumPayload struct {
	ID      int64              `json:"id"`
	Name    string             `json:"name"`
	PicURL  string             `json:"picUrl"`
	Artists []ArtistRefPayload `json:"artists"`
}

type ArtistPayload struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	PicURL    string `json:"picUrl"`
	Img1v1URL string `json:"img1v1Url"`
}

type PlaylistPayload struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	CoverImgURL string `json:"coverImgUrl"`
	Creator     struct {
		Nickname string `json:"nickname"`
	} `json:"creator"`
}
