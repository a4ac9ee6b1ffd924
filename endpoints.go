package instagram

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/jamesprial/go-instagram-api-wrapper/internal"
	pkgerrs "github.com/jamesprial/go-instagram-api-wrapper/pkg/errors"
	"github.com/jamesprial/go-instagram-api-wrapper/pkg/types"
)

const selfID = "self"

// call executes the request and decodes the data of the response into T.
func call[T any](ctx context.Context, c *Client, spec internal.RequestSpec) (*types.Result[T], error) {
	resp, err := c.client.Execute(ctx, spec)
	if err != nil {
		return nil, err
	}
	return decodeResult[T](spec.ResourcePath, resp)
}

func decodeResult[T any](operation string, resp *types.Response) (*types.Result[T], error) {
	result := &types.Result[T]{
		Meta:       resp.Meta,
		Pagination: resp.Pagination,
		Status:     resp.Status,
	}

	data := bytes.TrimSpace(resp.Data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return result, nil
	}

	if err := json.Unmarshal(data, &result.Data); err != nil {
		return nil, &pkgerrs.MalformedResponseError{
			Operation:  operation,
			HTTPStatus: resp.Status.HTTPStatus,
			Message:    fmt.Sprintf("data does not decode into %T", result.Data),
			Err:        err,
		}
	}
	return result, nil
}

func get(path string, params internal.Params) internal.RequestSpec {
	return internal.RequestSpec{ResourcePath: path, Params: params, Verb: internal.VerbGet}
}

func orDefault(n, def int) int {
	if n <= 0 {
		return def
	}
	return n
}

// optional returns nil for an empty string so the parameter is left out.
func optional(s string) any {
	if s == "" {
		return nil
	}
	return s
}

// userPath returns "users/<id>", with an empty id meaning the authenticated user.
func (c *Client) userPath(id string) (string, error) {
	if id == "" {
		id = selfID
	}
	if err := c.validator.ValidatePathSegment("id", id); err != nil {
		return "", err
	}
	return "users/" + id, nil
}

func (c *Client) segment(name, value string) (string, error) {
	if err := c.validator.ValidatePathSegment(name, value); err != nil {
		return "", err
	}
	return value, nil
}

// Users

// SearchUser searches for users by name. A limit of zero requests DefaultLimit results.
func (c *Client) SearchUser(ctx context.Context, name string, limit int) (*types.Result[[]types.User], error) {
	return call[[]types.User](ctx, c, get("users/search", internal.Params{
		"q":     name,
		"limit": orDefault(limit, DefaultLimit),
	}))
}

// GetUser returns a user's profile. An empty id returns the authenticated user.
func (c *Client) GetUser(ctx context.Context, id string) (*types.Result[types.User], error) {
	path, err := c.userPath(id)
	if err != nil {
		return nil, err
	}
	return call[types.User](ctx, c, get(path, nil))
}

// GetUserMedia returns a user's most recent media. An empty id means the
// authenticated user.
func (c *Client) GetUserMedia(ctx context.Context, id string, limit int) (*types.Result[[]types.Media], error) {
	path, err := c.userPath(id)
	if err != nil {
		return nil, err
	}
	return call[[]types.Media](ctx, c, get(path+"/media/recent", internal.Params{
		"count": orDefault(limit, DefaultLimit),
	}))
}

// GetUserLikes returns media the authenticated user liked, optionally starting
// before maxLikeID.
func (c *Client) GetUserLikes(ctx context.Context, limit int, maxLikeID string) (*types.Result[[]types.Media], error) {
	return call[[]types.Media](ctx, c, get("users/self/media/liked", internal.Params{
		"count":       orDefault(limit, DefaultLimit),
		"max_like_id": optional(maxLikeID),
	}))
}

// GetUserFollows returns the users the authenticated user follows.
func (c *Client) GetUserFollows(ctx context.Context, limit int) (*types.Result[[]types.User], error) {
	return call[[]types.User](ctx, c, get("users/self/follows", internal.Params{
		"count": orDefault(limit, DefaultLimit),
	}))
}

// GetUserFollower returns the users following the authenticated user.
func (c *Client) GetUserFollower(ctx context.Context, limit int) (*types.Result[[]types.User], error) {
	return call[[]types.User](ctx, c, get("users/self/followed-by", internal.Params{
		"count": orDefault(limit, DefaultLimit),
	}))
}

// GetUserRequest returns the users who requested to follow the authenticated user.
func (c *Client) GetUserRequest(ctx context.Context, limit int) (*types.Result[[]types.User], error) {
	return call[[]types.User](ctx, c, get("users/self/requested-by", internal.Params{
		"count": orDefault(limit, DefaultLimit),
	}))
}

// GetUserRelationship returns the relationship between the authenticated user and id.
func (c *Client) GetUserRelationship(ctx context.Context, id string) (*types.Result[types.Relationship], error) {
	id, err := c.segment("id", id)
	if err != nil {
		return nil, err
	}
	return call[types.Relationship](ctx, c, get("users/"+id+"/relationship", nil))
}

// ModifyRelationship follows, unfollows, approves or ignores a user.
//
// Returns a *errors.ArgumentError, without any request, when action is not one
// of follow, unfollow, approve or ignore.
func (c *Client) ModifyRelationship(ctx context.Context, action, id string) (*types.Result[types.Relationship], error) {
	if err := c.validator.ValidateAction(action); err != nil {
		return nil, err
	}
	id, err := c.segment("id", id)
	if err != nil {
		return nil, err
	}
	return call[types.Relationship](ctx, c, internal.RequestSpec{
		ResourcePath: "users/" + id + "/relationship",
		Params:       internal.Params{"action": action},
		Verb:         internal.VerbPost,
	})
}

// Media

// SearchMedia returns media taken near a point. A distance of zero searches
// DefaultDistance metres.
func (c *Client) SearchMedia(ctx context.Context, lat, lng float64, distance int) (*types.Result[[]types.Media], error) {
	if err := c.validator.ValidateCoordinates(lat, lng); err != nil {
		return nil, err
	}
	return call[[]types.Media](ctx, c, get("media/search", internal.Params{
		"lat":      lat,
		"lng":      lng,
		"distance": orDefault(distance, DefaultDistance),
	}))
}

// GetMedia returns a media item by ID.
func (c *Client) GetMedia(ctx context.Context, id string) (*types.Result[types.Media], error) {
	id, err := c.segment("id", id)
	if err != nil {
		return nil, err
	}
	return call[types.Media](ctx, c, get("media/"+id, nil))
}

// GetMediaShort returns a media item by the shortcode found in its permalink.
func (c *Client) GetMediaShort(ctx context.Context, code string) (*types.Result[types.Media], error) {
	code, err := c.segment("code", code)
	if err != nil {
		return nil, err
	}
	return call[types.Media](ctx, c, get("media/shortcode/"+code, nil))
}

// GetMediaLikes returns the users who liked a media item.
func (c *Client) GetMediaLikes(ctx context.Context, id string) (*types.Result[[]types.User], error) {
	id, err := c.segment("id", id)
	if err != nil {
		return nil, err
	}
	return call[[]types.User](ctx, c, get("media/"+id+"/likes", nil))
}

// GetMediaComments returns the comments on a media item.
func (c *Client) GetMediaComments(ctx context.Context, id string) (*types.Result[[]types.Comment], error) {
	id, err := c.segment("id", id)
	if err != nil {
		return nil, err
	}
	return call[[]types.Comment](ctx, c, get("media/"+id+"/comments", nil))
}

// AddMediaComment comments on a media item.
func (c *Client) AddMediaComment(ctx context.Context, id, text string) (*types.Response, error) {
	id, err := c.segment("id", id)
	if err != nil {
		return nil, err
	}
	return c.client.Execute(ctx, internal.RequestSpec{
		ResourcePath: "media/" + id + "/comments",
		Params:       internal.Params{"text": text},
		Verb:         internal.VerbPost,
	})
}

// DeleteMediaComment removes a comment from a media item.
func (c *Client) DeleteMediaComment(ctx context.Context, id, commentID string) (*types.Response, error) {
	id, err := c.segment("id", id)
	if err != nil {
		return nil, err
	}
	commentID, err = c.segment("commentID", commentID)
	if err != nil {
		return nil, err
	}
	return c.client.Execute(ctx, internal.RequestSpec{
		ResourcePath: "media/" + id + "/comments/" + commentID,
		Verb:         internal.VerbDelete,
	})
}

// LikeMedia likes a media item as the authenticated user.
func (c *Client) LikeMedia(ctx context.Context, id string) (*types.Response, error) {
	id, err := c.segment("id", id)
	if err != nil {
		return nil, err
	}
	return c.client.Execute(ctx, internal.RequestSpec{
		ResourcePath: "media/" + id + "/likes",
		Verb:         internal.VerbPost,
	})
}

// DeleteLikedMedia removes the authenticated user's like from a media item.
func (c *Client) DeleteLikedMedia(ctx context.Context, id string) (*types.Response, error) {
	id, err := c.segment("id", id)
	if err != nil {
		return nil, err
	}
	return c.client.Execute(ctx, internal.RequestSpec{
		ResourcePath: "media/" + id + "/likes",
		Verb:         internal.VerbDelete,
	})
}

// Tags

// SearchTags searches for tags by name.
func (c *Client) SearchTags(ctx context.Context, name string) (*types.Result[[]types.Tag], error) {
	return call[[]types.Tag](ctx, c, get("tags/search", internal.Params{"q": name}))
}

// GetTag returns a tag with its media count.
func (c *Client) GetTag(ctx context.Context, name string) (*types.Result[types.Tag], error) {
	name, err := c.segment("name", name)
	if err != nil {
		return nil, err
	}
	return call[types.Tag](ctx, c, get("tags/"+name, nil))
}

// GetTagMedia returns recently tagged media. minTagID and maxTagID are optional.
func (c *Client) GetTagMedia(ctx context.Context, name string, limit int, minTagID, maxTagID string) (*types.Result[[]types.Media], error) {
	name, err := c.segment("name", name)
	if err != nil {
		return nil, err
	}
	return call[[]types.Media](ctx, c, get("tags/"+name+"/media/recent", internal.Params{
		"count":      orDefault(limit, DefaultLimit),
		"min_tag_id": optional(minTagID),
		"max_tag_id": optional(maxTagID),
	}))
}

// Locations

// GetLocation returns a location by ID.
func (c *Client) GetLocation(ctx context.Context, id string) (*types.Result[types.Location], error) {
	id, err := c.segment("id", id)
	if err != nil {
		return nil, err
	}
	return call[types.Location](ctx, c, get("locations/"+id, nil))
}

// GetLocationMedia returns recent media taken at a location.
func (c *Client) GetLocationMedia(ctx context.Context, id string) (*types.Result[[]types.Media], error) {
	id, err := c.segment("id", id)
	if err != nil {
		return nil, err
	}
	return call[[]types.Media](ctx, c, get("locations/"+id+"/media/recent", nil))
}

// SearchLocation returns locations near a point. fbPlacesID is optional; a
// distance of zero searches DefaultDistance metres.
func (c *Client) SearchLocation(ctx context.Context, lat, lng float64, fbPlacesID string, distance int) (*types.Result[[]types.Location], error) {
	if err := c.validator.ValidateCoordinates(lat, lng); err != nil {
		return nil, err
	}
	return call[[]types.Location](ctx, c, get("locations/search", internal.Params{
		"lat":                lat,
		"lng":                lng,
		"facebook_places_id": optional(fbPlacesID),
		"distance":           orDefault(distance, DefaultDistance),
	}))
}
