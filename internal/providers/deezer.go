package providers

import (
	"context"
	"fmt"
	"net/url"

	"sleeve/internal/fetch"
	"sleeve/internal/textutil"
)

const deezerAPIBase = "https://api.deezer.com"

// Deezer searches the Deezer album catalog. The search endpoint does not
// report release dates; when FetchReleaseDates is set, a detail request per
// album recovers the year, with per-candidate failures degrading to an
// unknown year.
type Deezer struct {
	client            *fetch.Client
	baseURL           string
	FetchReleaseDates bool
}

// NewDeezer constructs the Deezer adapter.
func NewDeezer(client *fetch.Client, fetchReleaseDates bool) *Deezer {
	return &Deezer{client: client, baseURL: deezerAPIBase, FetchReleaseDates: fetchReleaseDates}
}

// Name implements Provider.
func (p *Deezer) Name() string { return "deezer" }

type deezerArtist struct {
	Name string `json:"name"`
}

type deezerAlbum struct {
	ID          int64        `json:"id"`
	Title       string       `json:"title"`
	Cover       string       `json:"cover"`
	CoverMedium string       `json:"cover_medium"`
	CoverBig    string       `json:"cover_big"`
	CoverXL     string       `json:"cover_xl"`
	Artist      deezerArtist `json:"artist"`
}

type deezerSearchResponse struct {
	Data []deezerAlbum `json:"data"`
}

type deezerAlbumDetail struct {
	ReleaseDate string `json:"release_date"`
}

// Search implements Provider against the Deezer album search endpoint.
func (p *Deezer) Search(ctx context.Context, query Query, limit int) ([]Candidate, error) {
	term := query.Term()
	if term == "" {
		return nil, nil
	}

	params := url.Values{}
	params.Set("q", term)

	var payload deezerSearchResponse
	if err := p.client.GetJSON(ctx, p.baseURL+"/search/album", params, &payload); err != nil {
		return nil, err
	}

	albums := payload.Data
	if len(albums) > limit {
		albums = albums[:limit]
	}

	out := make([]Candidate, 0, len(albums))
	for _, album := range albums {
		full := firstNonEmpty(album.CoverXL, album.CoverBig, album.CoverMedium, album.Cover)
		thumb := firstNonEmpty(album.CoverMedium, full)

		year := 0
		if p.FetchReleaseDates {
			year = p.albumYear(ctx, album.ID)
		}

		out = append(out, Candidate{
			Provider: p.Name(),
			ImageURL: full,
			ThumbURL: thumb,
			Title:    album.Title,
			Artist:   album.Artist.Name,
			Year:     year,
		})
	}
	return out, nil
}

// albumYear fetches the album detail record for its release date. Failures
// leave the year unknown rather than failing the whole search.
func (p *Deezer) albumYear(ctx context.Context, albumID int64) int {
	var detail deezerAlbumDetail
	if err := p.client.GetJSON(ctx, fmt.Sprintf("%s/album/%d", p.baseURL, albumID), nil, &detail); err != nil {
		return 0
	}
	year, _ := textutil.ParseYear(detail.ReleaseDate)
	return year
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
