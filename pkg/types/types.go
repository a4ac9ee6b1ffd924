package types

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// FlexString is a string field that Instagram sometimes encodes as a JSON number
// (location IDs, pagination IDs, timestamps). Both forms decode to the same text.
type FlexString string

// UnmarshalJSON implements json.Unmarshaler to accept strings, numbers and null.
func (f *FlexString) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)

	if bytes.Equal(trimmed, []byte("null")) {
		*f = ""
		return nil
	}

	// Quoted string.
	if len(trimmed) > 0 && trimmed[0] == '"' {
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return err
		}
		*f = FlexString(s)
		return nil
	}

	// Bare number, kept verbatim so large IDs do not lose precision.
	var n json.Number
	if err := json.Unmarshal(trimmed, &n); err == nil {
		*f = FlexString(n.String())
		return nil
	}

	return fmt.Errorf("unrecognized type for string field: %s", string(data))
}

// String returns the value as a plain string.
func (f FlexString) String() string {
	return string(f)
}

// Meta is the status sub-object carried by every successful response envelope.
type Meta struct {
	Code         int    `json:"code"`
	ErrorType    string `json:"error_type,omitempty"`
	ErrorMessage string `json:"error_message,omitempty"`
}

// Pagination is embedded by Instagram in list responses. Only NextURL and one of
// NextMaxID / NextCursor are needed to request the following page.
type Pagination struct {
	NextURL       string     `json:"next_url,omitempty"`
	NextMaxID     FlexString `json:"next_max_id,omitempty"`
	NextMaxLikeID FlexString `json:"next_max_like_id,omitempty"`
	NextMaxTagID  FlexString `json:"next_max_tag_id,omitempty"`
	NextMinID     FlexString `json:"next_min_id,omitempty"`
	MinTagID      FlexString `json:"min_tag_id,omitempty"`
	NextCursor    FlexString `json:"next_cursor,omitempty"`
}

// HasNext reports whether the pagination object points at another page.
func (p *Pagination) HasNext() bool {
	return p != nil && p.NextURL != ""
}

// Status describes the outcome of a single API call. It is returned with every
// result and attached to every APIError, so callers never have to read it back
// from shared client state.
type Status struct {
	// Code is meta.code for successes or the top-level code for API errors.
	Code int `json:"code"`
	// ErrorType and ErrorMessage are set only when the API reported an error.
	ErrorType    string `json:"error_type,omitempty"`
	ErrorMessage string `json:"error_message,omitempty"`
	// RateLimitRemaining is the X-Ratelimit-Remaining value; valid when RateLimitKnown.
	RateLimitRemaining int  `json:"rate_limit_remaining"`
	RateLimitKnown     bool `json:"rate_limit_known"`
	// HTTPStatus is the HTTP status code of the response.
	HTTPStatus int `json:"http_status"`
}

// Response is a successful response envelope with the data left undecoded.
type Response struct {
	Meta       Meta            `json:"meta"`
	Data       json.RawMessage `json:"data,omitempty"`
	Pagination *Pagination     `json:"pagination,omitempty"`
	Status     Status          `json:"-"`
}

// Result is a successful response envelope whose data has been decoded into T.
type Result[T any] struct {
	Meta       Meta        `json:"meta"`
	Data       T           `json:"data"`
	Pagination *Pagination `json:"pagination,omitempty"`
	Status     Status      `json:"-"`
}

// UserCounts holds the counters attached to a full user object.
type UserCounts struct {
	Media      int `json:"media"`
	Follows    int `json:"follows"`
	FollowedBy int `json:"followed_by"`
}

// User is an Instagram account.
type User struct {
	ID             string      `json:"id"`
	Username       string      `json:"username"`
	FullName       string      `json:"full_name"`
	ProfilePicture string      `json:"profile_picture"`
	Bio            string      `json:"bio,omitempty"`
	Website        string      `json:"website,omitempty"`
	IsBusiness     bool        `json:"is_business,omitempty"`
	Counts         *UserCounts `json:"counts,omitempty"`
}

// Image is one rendition of a photo or video.
type Image struct {
	URL    string `json:"url"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

// Count wraps the {"count": n} objects used for likes and comments.
type Count struct {
	Count int `json:"count"`
}

// Position is a relative coordinate inside a photo.
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// UserInPhoto is a user tagged at a position in a photo.
type UserInPhoto struct {
	User     User     `json:"user"`
	Position Position `json:"position"`
}

// CarouselItem is one element of a carousel post.
type CarouselItem struct {
	Type         string           `json:"type"`
	Images       map[string]Image `json:"images,omitempty"`
	Videos       map[string]Image `json:"videos,omitempty"`
	UsersInPhoto []UserInPhoto    `json:"users_in_photo,omitempty"`
}

// Comment is a comment on a media item; captions use the same shape.
type Comment struct {
	ID          string     `json:"id"`
	Text        string     `json:"text"`
	CreatedTime FlexString `json:"created_time"`
	From        User       `json:"from"`
}

// Location is a place media can be attached to.
type Location struct {
	ID        FlexString `json:"id"`
	Name      string     `json:"name"`
	Latitude  float64    `json:"latitude"`
	Longitude float64    `json:"longitude"`
}

// Media is a photo, video or carousel post.
type Media struct {
	ID            string           `json:"id"`
	Type          string           `json:"type"`
	Link          string           `json:"link"`
	Filter        string           `json:"filter,omitempty"`
	Tags          []string         `json:"tags,omitempty"`
	CreatedTime   FlexString       `json:"created_time"`
	Caption       *Comment         `json:"caption,omitempty"`
	User          User             `json:"user"`
	Images        map[string]Image `json:"images,omitempty"`
	Videos        map[string]Image `json:"videos,omitempty"`
	Likes         Count            `json:"likes"`
	Comments      Count            `json:"comments"`
	Location      *Location        `json:"location,omitempty"`
	UserHasLiked  bool             `json:"user_has_liked"`
	UsersInPhoto  []UserInPhoto    `json:"users_in_photo,omitempty"`
	CarouselMedia []CarouselItem   `json:"carousel_media,omitempty"`
}

// Tag is a hashtag with its media count.
type Tag struct {
	Name       string `json:"name"`
	MediaCount int    `json:"media_count"`
}

// Relationship describes how the authenticated user relates to another user.
type Relationship struct {
	OutgoingStatus      string `json:"outgoing_status"`
	IncomingStatus      string `json:"incoming_status,omitempty"`
	TargetUserIsPrivate bool   `json:"target_user_is_private,omitempty"`
}

// OAuthToken is the token endpoint's answer to a successful code exchange.
type OAuthToken struct {
	AccessToken string `json:"access_token"`
	User        *User  `json:"user,omitempty"`
}

// Oembed is the embed description returned for a media permalink.
type Oembed struct {
	MediaID         string `json:"media_id,omitempty"`
	AuthorID        int64  `json:"author_id,omitempty"`
	AuthorName      string `json:"author_name,omitempty"`
	AuthorURL       string `json:"author_url,omitempty"`
	Title           string `json:"title,omitempty"`
	HTML            string `json:"html,omitempty"`
	Type            string `json:"type,omitempty"`
	Version         string `json:"version,omitempty"`
	Width           int    `json:"width,omitempty"`
	Height          *int   `json:"height,omitempty"`
	ProviderName    string `json:"provider_name,omitempty"`
	ProviderURL     string `json:"provider_url,omitempty"`
	ThumbnailURL    string `json:"thumbnail_url,omitempty"`
	ThumbnailWidth  int    `json:"thumbnail_width,omitempty"`
	ThumbnailHeight int    `json:"thumbnail_height,omitempty"`
}
