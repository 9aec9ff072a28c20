package invidious

const (
	PlaceholderThumbnail = "https://via.placeholder.com/250x180?text=No+Image"
	PlaceholderAvatar    = "https://via.placeholder.com/120x120?text=No+Avatar"
)

// VideoSummary is one entry of a listing.
type VideoSummary struct {
	ID            string `json:"id"`
	Title         string `json:"title"`
	Author        string `json:"author"`
	AuthorID      string `json:"author_id,omitempty"`
	Thumbnail     string `json:"thumbnail"`
	Views         *int64 `json:"views,omitempty"`
	LengthSeconds int64  `json:"length_seconds,omitempty"`
	Published     string `json:"published,omitempty"`
}

// VideoDetail is everything needed to render a watch page.
type VideoDetail struct {
	VideoSummary
	Description  string          `json:"description"`
	Likes        *int64          `json:"likes,omitempty"`
	Dislikes     *int64          `json:"dislikes,omitempty"`
	AuthorAvatar string          `json:"author_avatar"`
	HLSURL       string          `json:"hls_url,omitempty"`
	Variants     []StreamVariant `json:"variants"`
	Related      []VideoSummary  `json:"related"`
}

// StreamVariant is one playable quality of a video.
type StreamVariant struct {
	Quality    string `json:"quality"`
	Container  string `json:"container,omitempty"`
	URL        string `json:"url"`
	Resolution int    `json:"resolution"`
}

type ChannelDetail struct {
	ID          string         `json:"id"`
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Subscribers *int64         `json:"subscribers,omitempty"`
	Avatar      string         `json:"avatar"`
	Banner      string         `json:"banner,omitempty"`
	Videos      []VideoSummary `json:"videos"`
}
