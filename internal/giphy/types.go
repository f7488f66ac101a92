package giphy

import (
	"strconv"
	"strings"
	"time"

	"github.com/five82/gifbox/internal/gif"
)

const giphyTimestampLayout = "2006-01-02 15:04:05"

// ListResponse mirrors the payload returned by /v1/gifs/trending and /v1/gifs/search.
type ListResponse struct {
	Data       []GIF      `json:"data"`
	Pagination Pagination `json:"pagination"`
	Meta       Meta       `json:"meta"`
}

// Items converts the payload into domain items, skipping entries without an ID.
func (r ListResponse) Items() []gif.Item {
	items := make([]gif.Item, 0, len(r.Data))
	for _, g := range r.Data {
		if strings.TrimSpace(g.ID) == "" {
			continue
		}
		items = append(items, g.Item())
	}
	return items
}

// Pagination describes the window returned by a list endpoint.
type Pagination struct {
	TotalCount int `json:"total_count"`
	Count      int `json:"count"`
	Offset     int `json:"offset"`
}

// Meta carries the API status envelope.
type Meta struct {
	Status     int    `json:"status"`
	Msg        string `json:"msg"`
	ResponseID string `json:"response_id"`
}

// GIF is a single GIF object in transport form.
type GIF struct {
	Type             string    `json:"type"`
	ID               string    `json:"id"`
	Slug             string    `json:"slug"`
	URL              string    `json:"url"`
	Title            string    `json:"title"`
	Rating           string    `json:"rating"`
	Username         string    `json:"username"`
	ImportDatetime   string    `json:"import_datetime"`
	TrendingDatetime string    `json:"trending_datetime"`
	Images           Rendition `json:"images"`
}

// Rendition groups the image variants Giphy returns for a GIF.
type Rendition struct {
	Original         Image `json:"original"`
	FixedHeight      Image `json:"fixed_height"`
	FixedHeightSmall Image `json:"fixed_height_small"`
	FixedWidth       Image `json:"fixed_width"`
	Downsized        Image `json:"downsized"`
}

// Image is one rendition. Giphy encodes numbers as strings.
type Image struct {
	URL    string `json:"url"`
	Width  string `json:"width"`
	Height string `json:"height"`
	Size   string `json:"size"`
	MP4    string `json:"mp4"`
	WebP   string `json:"webp"`
}

// Item converts the transport GIF into a domain item.
func (g GIF) Item() gif.Item {
	preview := g.Images.FixedHeightSmall.URL
	if preview == "" {
		preview = g.Images.FixedHeight.URL
	}
	if preview == "" {
		preview = g.Images.Original.URL
	}
	return gif.Item{
		ID:         g.ID,
		Title:      strings.TrimSpace(g.Title),
		URL:        g.URL,
		PreviewURL: preview,
		Width:      atoi(g.Images.Original.Width),
		Height:     atoi(g.Images.Original.Height),
		Size:       atoi64(g.Images.Original.Size),
		Rating:     g.Rating,
		Username:   g.Username,
	}
}

// ParsedImportTime returns the import timestamp when parseable.
func (g GIF) ParsedImportTime() time.Time {
	return parseTime(g.ImportDatetime)
}

// ParsedTrendingTime returns the trending timestamp; Giphy reports
// "0000-00-00 00:00:00" for GIFs that never trended.
func (g GIF) ParsedTrendingTime() time.Time {
	return parseTime(g.TrendingDatetime)
}

func parseTime(value string) time.Time {
	if value == "" || strings.HasPrefix(value, "0000") {
		return time.Time{}
	}
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339} {
		if t, err := time.Parse(layout, value); err == nil {
			return t
		}
	}
	if t, err := time.ParseInLocation(giphyTimestampLayout, value, time.UTC); err == nil {
		return t
	}
	return time.Time{}
}

func atoi(value string) int {
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return 0
	}
	return n
}

func atoi64(value string) int64 {
	n, err := strconv.ParseInt(strings.TrimSpace(value), 10, 64)
	if err != nil {
		return 0
	}
	return n
}
