package providers

import (
	"context"
	"net/url"
	"regexp"
	"strconv"

	"sleeve/internal/fetch"
	"sleeve/internal/textutil"
)

const itunesSearchURL = "https://itunes.apple.com/search"

// artworkSizePattern matches the size segment of an iTunes artwork URL so it
// can be rewritten to other resolutions.
var artworkSizePattern = regexp.MustCompile(`/\d+x\d+bb\.(jpg|png)$`)

// ITunes searches the iTunes album catalog.
type ITunes struct {
	client  *fetch.Client
	baseURL string
}

// NewITunes constructs the iTunes adapter.
func NewITunes(client *fetch.Client) *ITunes {
	return &ITunes{client: client, baseURL: itunesSearchURL}
}

// Name implements Provider.
func (p *ITunes) Name() string { return "itunes" }

type itunesResult struct {
	ArtworkURL100  string `json:"artworkUrl100"`
	ArtworkURL60   string `json:"artworkUrl60"`
	CollectionName string `json:"collectionName"`
	ArtistName     string `json:"artistName"`
	ReleaseDate    string `json:"releaseDate"`
}

type itunesResponse struct {
	Results []itunesResult `json:"results"`
}

// Search implements Provider against the iTunes Search API. Artwork URLs are
// upscaled to 1000x1000 for the full image and 200x200 for the thumbnail.
func (p *ITunes) Search(ctx context.Context, query Query, limit int) ([]Candidate, error) {
	term := query.Term()
	if term == "" {
		return nil, nil
	}

	params := url.Values{}
	params.Set("term", term)
	params.Set("media", "music")
	params.Set("entity", "album")
	params.Set("limit", strconv.Itoa(limit))

	var payload itunesResponse
	if err := p.client.GetJSON(ctx, p.baseURL, params, &payload); err != nil {
		return nil, err
	}

	out := make([]Candidate, 0, len(payload.Results))
	for _, r := range payload.Results {
		art := r.ArtworkURL100
		if art == "" {
			art = r.ArtworkURL60
		}
		full, thumb := art, art
		if art != "" {
			full = artworkSizePattern.ReplaceAllString(art, "/1000x1000bb.$1")
			thumb = artworkSizePattern.ReplaceAllString(art, "/200x200bb.$1")
		}
		year, _ := textutil.ParseYear(r.ReleaseDate)
		out = append(out, Candidate{
			Provider: p.Name(),
			ImageURL: full,
			ThumbURL: thumb,
			Title:    r.CollectionName,
			Artist:   r.ArtistName,
			Year:     year,
		})
	}
	return out, nil
}
