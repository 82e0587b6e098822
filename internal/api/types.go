package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

const backendTimestampLayout = "2006-01-02 15:04:05"

// ID is a resource identifier. Backends emit either JSON strings or numbers;
// both decode into the same string form.
type ID string

// UnmarshalJSON accepts "abc", 42 and null.
func (id *ID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = ID(strings.TrimSpace(s))
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("id: %w", err)
	}
	*id = ID(n.String())
	return nil
}

// String returns the identifier as a plain string.
func (id ID) String() string { return string(id) }

// Count is a non-negative statistic. The YouTube Data API sends counts as
// numeric strings, so both "12" and 12 are accepted.
type Count uint64

// UnmarshalJSON accepts numbers, numeric strings, empty strings and null.
func (c *Count) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*c = 0
		return nil
	}
	raw := string(data)
	if len(data) > 0 && data[0] == '"' {
		if err := json.Unmarshal(data, &raw); err != nil {
			return err
		}
		raw = strings.TrimSpace(raw)
		if raw == "" {
			*c = 0
			return nil
		}
	}
	n, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return fmt.Errorf("count %q: %w", raw, err)
	}
	*c = Count(n)
	return nil
}

// Rating is the current user's rating of the video.
type Rating string

const (
	RatingLike    Rating = "like"
	RatingDislike Rating = "dislike"
	RatingNone    Rating = "none"
)

// ParseRating validates a wire value. An empty value means none.
func ParseRating(value string) (Rating, error) {
	switch r := Rating(strings.ToLower(strings.TrimSpace(value))); r {
	case RatingLike, RatingDislike, RatingNone:
		return r, nil
	case "":
		return RatingNone, nil
	default:
		return "", &SchemaError{Type: "rating", Field: "rating", Detail: fmt.Sprintf("unknown value %q", value)}
	}
}

// UnmarshalJSON rejects values outside like/dislike/none.
func (r *Rating) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseRating(s)
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}

// Toggle returns the rating that results from selecting clicked while r is
// active. Selecting the active rating again clears it.
func (r Rating) Toggle(clicked Rating) Rating {
	if r == clicked {
		return RatingNone
	}
	return clicked
}

// User is the authenticated account.
type User struct {
	ID      ID     `json:"id"`
	Name    string `json:"name"`
	Picture string `json:"picture"`
	Email   string `json:"email"`
}

// Validate checks required fields.
func (u User) Validate() error {
	if u.ID == "" {
		return &SchemaError{Type: "user", Field: "id"}
	}
	return nil
}

// DisplayName prefers the name, then the email.
func (u User) DisplayName() string {
	if name := strings.TrimSpace(u.Name); name != "" {
		return name
	}
	return strings.TrimSpace(u.Email)
}

// Thumbnail is one rendition of the video thumbnail.
type Thumbnail struct {
	URL    string `json:"url"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

// Statistics are aggregate counters maintained by the backend.
type Statistics struct {
	ViewCount    Count `json:"viewCount"`
	LikeCount    Count `json:"likeCount"`
	CommentCount Count `json:"commentCount"`
}

// Video mirrors GET /video.
type Video struct {
	ID           ID                   `json:"id"`
	Title        string               `json:"title"`
	Description  string               `json:"description"`
	ChannelTitle string               `json:"channelTitle"`
	Thumbnails   map[string]Thumbnail `json:"thumbnails"`
	Statistics   Statistics           `json:"statistics"`
	PublishedAt  string               `json:"publishedAt"`
}

// Validate checks required fields.
func (v Video) Validate() error {
	if v.ID == "" {
		return &SchemaError{Type: "video", Field: "id"}
	}
	return nil
}

// ParsedPublishedAt returns the publish time, or the zero time.
func (v Video) ParsedPublishedAt() time.Time {
	return parseTime(v.PublishedAt)
}

// WatchURL links to the public watch page.
func (v Video) WatchURL() string {
	return "https://www.youtube.com/watch?v=" + v.ID.String()
}

// Thumbnail returns the best available thumbnail URL.
func (v Video) Thumbnail() string {
	for _, size := range []string{"maxres", "high", "medium", "default"} {
		if t, ok := v.Thumbnails[size]; ok && t.URL != "" {
			return t.URL
		}
	}
	return ""
}

// VideoUpdate is the partial body for PATCH /video/update. Nil fields are
// left untouched by the backend.
type VideoUpdate struct {
	Title       *string `json:"title,omitempty"`
	Description *string `json:"description,omitempty"`
}

// Empty reports whether the update carries no fields.
func (u VideoUpdate) Empty() bool {
	return u.Title == nil && u.Description == nil
}

// Reply is a second-level comment.
type Reply struct {
	ID                    ID     `json:"id"`
	Text                  string `json:"text"`
	AuthorDisplayName     string `json:"authorDisplayName"`
	AuthorProfileImageURL string `json:"authorProfileImageUrl"`
	PublishedAt           string `json:"publishedAt"`
}

// Validate checks required fields.
func (r Reply) Validate() error {
	if r.ID == "" {
		return &SchemaError{Type: "reply", Field: "id"}
	}
	return nil
}

// ParsedPublishedAt returns the publish time, or the zero time.
func (r Reply) ParsedPublishedAt() time.Time {
	return parseTime(r.PublishedAt)
}

// Comment is a top-level comment thread. Replies do not nest further.
type Comment struct {
	CommentID             ID      `json:"commentId"`
	Text                  string  `json:"text"`
	AuthorDisplayName     string  `json:"authorDisplayName"`
	AuthorProfileImageURL string  `json:"authorProfileImageUrl"`
	PublishedAt           string  `json:"publishedAt"`
	Replies               []Reply `json:"replies"`
}

// Validate checks required fields on the comment and its replies.
func (c Comment) Validate() error {
	if c.CommentID == "" {
		return &SchemaError{Type: "comment", Field: "commentId"}
	}
	for i, r := range c.Replies {
		if err := r.Validate(); err != nil {
			return fmt.Errorf("reply %d of comment %s: %w", i, c.CommentID, err)
		}
	}
	return nil
}

// ParsedPublishedAt returns the publish time, or the zero time.
func (c Comment) ParsedPublishedAt() time.Time {
	return parseTime(c.PublishedAt)
}

// Note is a private note attached to one video.
type Note struct {
	ID        ID     `json:"id"`
	VideoID   ID     `json:"videoId"`
	Content   string `json:"content"`
	CreatedAt string `json:"createdAt"`
	UpdatedAt string `json:"updatedAt"`
}

// Validate checks required fields.
func (n Note) Validate() error {
	if n.ID == "" {
		return &SchemaError{Type: "note", Field: "id"}
	}
	return nil
}

// ParsedCreatedAt returns the creation time, or the zero time.
func (n Note) ParsedCreatedAt() time.Time {
	return parseTime(n.CreatedAt)
}

type ratingResponse struct {
	Rating Rating `json:"rating"`
}

type rateRequest struct {
	Rating Rating `json:"rating"`
}

type commentRequest struct {
	Text string `json:"text"`
}

type replyRequest struct {
	CommentID ID     `json:"commentId"`
	Text      string `json:"text"`
}

type noteRequest struct {
	VideoID ID     `json:"videoId,omitempty"`
	Content string `json:"content"`
}

type errorBody struct {
	Message string `json:"message"`
	Error   string `json:"error"`
}

func parseTime(value string) time.Time {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}
	}
	if ts, err := time.Parse(time.RFC3339Nano, value); err == nil {
		return ts
	}
	if ts, err := time.Parse(time.RFC3339, value); err == nil {
		return ts
	}
	if ts, err := time.ParseInLocation(backendTimestampLayout, value, time.Local); err == nil {
		return ts
	}
	return time.Time{}
}
