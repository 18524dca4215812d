package providers

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/pborman/uuid"
	"golang.org/x/time/rate"
	caa "gopkg.in/mineo/gocaa.v1"

	"sleeve/internal/fetch"
	"sleeve/internal/textutil"
)

const (
	musicBrainzReleaseURL = "https://musicbrainz.org/ws/2/release/"
	coverArtFrontURL      = "https://coverartarchive.org/release/%s/front-500"

	// minCoverBytes guards against placeholder responses; anything smaller
	// is not a real image.
	minCoverBytes = 400
)

// CoverArtClient is the Cover Art Archive surface the adapter needs,
// satisfied by gocaa's client.
type CoverArtClient interface {
	GetReleaseFront(mbid uuid.UUID, size int) (caa.CoverArtImage, error)
}

// MusicBrainz searches the MusicBrainz release index and verifies cover
// availability against the Cover Art Archive. Each release costs one archive
// round trip; releases without a retrievable front image are skipped rather
// than failing the search. Requests to MusicBrainz are throttled to one per
// second per their API guidelines.
type MusicBrainz struct {
	client  *fetch.Client
	coverer CoverArtClient
	limiter *rate.Limiter
	baseURL string
}

// NewMusicBrainz constructs the MusicBrainz adapter. The user agent is
// forwarded to both MusicBrainz and the Cover Art Archive; MusicBrainz
// requires a descriptive one.
func NewMusicBrainz(client *fetch.Client, userAgent string) *MusicBrainz {
	return &MusicBrainz{
		client:  client,
		coverer: caa.NewCAAClient(userAgent),
		limiter: rate.NewLimiter(rate.Every(time.Second), 1),
		baseURL: musicBrainzReleaseURL,
	}
}

// Name implements Provider.
func (p *MusicBrainz) Name() string { return "musicbrainz" }

type mbRelease struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	Date  string `json:"date"`
}

type mbReleaseResponse struct {
	Releases []mbRelease `json:"releases"`
}

// Search implements Provider. The query is expressed in MusicBrainz Lucene
// syntax; the optional year narrows by release date.
func (p *MusicBrainz) Search(ctx context.Context, query Query, limit int) ([]Candidate, error) {
	if strings.TrimSpace(query.Artist) == "" && strings.TrimSpace(query.Album) == "" {
		return nil, nil
	}

	if err := p.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	terms := make([]string, 0, 3)
	if artist := strings.TrimSpace(query.Artist); artist != "" {
		terms = append(terms, fmt.Sprintf("artist:%q", artist))
	}
	if album := strings.TrimSpace(query.Album); album != "" {
		terms = append(terms, fmt.Sprintf("release:%q", album))
	}
	if query.Year != 0 {
		terms = append(terms, "date:"+strconv.Itoa(query.Year))
	}

	params := url.Values{}
	params.Set("fmt", "json")
	params.Set("query", strings.Join(terms, " AND "))
	params.Set("limit", strconv.Itoa(limit))

	var payload mbReleaseResponse
	if err := p.client.GetJSON(ctx, p.baseURL, params, &payload); err != nil {
		return nil, err
	}

	out := make([]Candidate, 0, len(payload.Releases))
	for _, release := range payload.Releases {
		if release.ID == "" {
			continue
		}
		if !p.hasFrontImage(release.ID) {
			continue
		}
		year, _ := textutil.ParseYear(release.Date)
		imageURL := fmt.Sprintf(coverArtFrontURL, release.ID)
		out = append(out, Candidate{
			Provider: p.Name(),
			ImageURL: imageURL,
			ThumbURL: imageURL,
			Title:    release.Title,
			Year:     year,
		})
	}
	return out, nil
}

// hasFrontImage verifies a release actually has usable front art in the
// archive. Any failure means "no candidate", never an aborted search.
func (p *MusicBrainz) hasFrontImage(mbid string) bool {
	img, err := p.coverer.GetReleaseFront(caa.StringToUUID(mbid), caa.ImageSize500)
	if err != nil {
		return false
	}
	return len(img.Data) > minCoverBytes
}
