package instagram

import (
	"context"
	"errors"
	"net/url"
	"strings"

	"github.com/jamesprial/go-instagram-api-wrapper/internal"
	pkgerrs "github.com/jamesprial/go-instagram-api-wrapper/pkg/errors"
	"github.com/jamesprial/go-instagram-api-wrapper/pkg/types"
)

// ErrNoMoreItems is returned by Iterator.Next once every page has been consumed.
var ErrNoMoreItems = errors.New("instagram: no more items available")

// Paginate fetches the page a pagination object points at. The next call is
// derived from next_url: its path, relative to the API base, becomes the
// resource path, and the cursor is sent as max_id or cursor together with
// count. A limit of zero or less leaves count out.
//
// Paginate returns (nil, nil) when there is no next page: page is nil, it has
// no next_url, or the next_url has no query string.
func (c *Client) Paginate(ctx context.Context, page *types.Pagination, limit int) (*types.Response, error) {
	spec, ok, err := c.nextPageSpec(page, limit)
	if err != nil || !ok {
		return nil, err
	}
	return c.client.Execute(ctx, spec)
}

// NextPage is Paginate with the data decoded into T.
func NextPage[T any](ctx context.Context, c *Client, page *types.Pagination, limit int) (*types.Result[T], error) {
	spec, ok, err := c.nextPageSpec(page, limit)
	if err != nil || !ok {
		return nil, err
	}
	return call[T](ctx, c, spec)
}

func (c *Client) nextPageSpec(page *types.Pagination, limit int) (internal.RequestSpec, bool, error) {
	if !page.HasNext() {
		return internal.RequestSpec{}, false, nil
	}

	rawPath, rawQuery, found := strings.Cut(page.NextURL, "?")
	if !found {
		return internal.RequestSpec{}, false, nil
	}

	next, err := url.Parse(rawPath)
	if err != nil {
		return internal.RequestSpec{}, false, &pkgerrs.MalformedResponseError{
			Operation: "pagination",
			Message:   "next_url is not a valid URL",
			Body:      page.NextURL,
			Err:       err,
		}
	}

	resource := c.resourcePath(next.Path)
	if resource == "" {
		return internal.RequestSpec{}, false, &pkgerrs.MalformedResponseError{
			Operation: "pagination",
			Message:   "next_url does not name a resource",
			Body:      page.NextURL,
		}
	}
	for _, part := range strings.Split(resource, "/") {
		if err := c.validator.ValidatePathSegment("next_url", part); err != nil {
			return internal.RequestSpec{}, false, &pkgerrs.MalformedResponseError{
				Operation: "pagination",
				Message:   "next_url path is not a plain resource path",
				Body:      page.NextURL,
				Err:       err,
			}
		}
	}

	params := internal.Params{}
	if limit > 0 {
		params["count"] = limit
	}

	switch {
	case page.NextMaxID != "":
		params["max_id"] = page.NextMaxID.String()
	case page.NextCursor != "":
		params["cursor"] = page.NextCursor.String()
	case page.NextMaxTagID != "":
		params["max_tag_id"] = page.NextMaxTagID.String()
	case page.NextMaxLikeID != "":
		params["max_like_id"] = page.NextMaxLikeID.String()
	default:
		// Fall back to the cursor carried in next_url itself.
		query, _ := url.ParseQuery(rawQuery)
		if cursor := query.Get("cursor"); cursor != "" {
			params["cursor"] = cursor
		}
	}

	return get(resource, params), true, nil
}

// resourcePath strips the API base path from an absolute path, e.g.
// "/v1/users/1/followed-by" becomes "users/1/followed-by".
func (c *Client) resourcePath(path string) string {
	if base, err := internal.ParseBaseURL(c.config.BaseURL); err == nil {
		if rest, ok := strings.CutPrefix(path, base.Path); ok {
			return rest
		}
	}
	if rest, ok := strings.CutPrefix(path, "/v1/"); ok {
		return rest
	}
	return strings.TrimPrefix(path, "/")
}

// Iterator walks a list endpoint item by item, fetching pages as needed.
//
// Example:
//
//	it := client.NewFollowerIterator(ctx, 50)
//	for it.HasNext() {
//		user, err := it.Next()
//		if err != nil {
//			break
//		}
//		fmt.Println(user.Username)
//	}
type Iterator[T any] struct {
	ctx       context.Context
	client    *Client
	first     func(context.Context) (*types.Result[[]T], error)
	limit     int
	buffer    []T
	bufferIdx int
	next      *types.Pagination
	started   bool
	hasMore   bool
	err       error
}

// NewIterator returns an iterator whose first page is fetched by first and
// whose later pages follow the pagination cursor with limit items each.
func NewIterator[T any](ctx context.Context, c *Client, limit int, first func(context.Context) (*types.Result[[]T], error)) *Iterator[T] {
	return &Iterator[T]{
		ctx:     ctx,
		client:  c,
		first:   first,
		limit:   orDefault(limit, DefaultLimit),
		hasMore: true,
	}
}

// NewUserMediaIterator iterates over a user's recent media. An empty id means
// the authenticated user.
func (c *Client) NewUserMediaIterator(ctx context.Context, id string, limit int) *Iterator[types.Media] {
	return NewIterator(ctx, c, limit, func(ctx context.Context) (*types.Result[[]types.Media], error) {
		return c.GetUserMedia(ctx, id, limit)
	})
}

// NewUserLikesIterator iterates over media the authenticated user liked.
func (c *Client) NewUserLikesIterator(ctx context.Context, limit int) *Iterator[types.Media] {
	return NewIterator(ctx, c, limit, func(ctx context.Context) (*types.Result[[]types.Media], error) {
		return c.GetUserLikes(ctx, limit, "")
	})
}

// NewFollowsIterator iterates over the users the authenticated user follows.
func (c *Client) NewFollowsIterator(ctx context.Context, limit int) *Iterator[types.User] {
	return NewIterator(ctx, c, limit, func(ctx context.Context) (*types.Result[[]types.User], error) {
		return c.GetUserFollows(ctx, limit)
	})
}

// NewFollowerIterator iterates over the users following the authenticated user.
func (c *Client) NewFollowerIterator(ctx context.Context, limit int) *Iterator[types.User] {
	return NewIterator(ctx, c, limit, func(ctx context.Context) (*types.Result[[]types.User], error) {
		return c.GetUserFollower(ctx, limit)
	})
}

// NewTagMediaIterator iterates over recently tagged media.
func (c *Client) NewTagMediaIterator(ctx context.Context, name string, limit int) *Iterator[types.Media] {
	return NewIterator(ctx, c, limit, func(ctx context.Context) (*types.Result[[]types.Media], error) {
		return c.GetTagMedia(ctx, name, limit, "", "")
	})
}

// HasNext returns true if there may be more items to iterate through.
func (it *Iterator[T]) HasNext() bool {
	if it.err != nil {
		return false
	}
	return it.bufferIdx < len(it.buffer) || it.hasMore
}

// Next returns the next item, fetching the next page when the current one is
// exhausted. It returns ErrNoMoreItems after the last item.
func (it *Iterator[T]) Next() (T, error) {
	var zero T
	if it.err != nil {
		return zero, it.err
	}

	if it.bufferIdx >= len(it.buffer) {
		if !it.hasMore {
			return zero, ErrNoMoreItems
		}

		result, err := it.fetch()
		if err != nil {
			it.err = err
			return zero, err
		}

		if result == nil {
			it.buffer = nil
			it.hasMore = false
		} else {
			it.buffer = result.Data
			it.next = result.Pagination
			it.hasMore = result.Pagination.HasNext()
		}
		it.bufferIdx = 0

		// An empty page ends the iteration even if a cursor came with it
		if len(it.buffer) == 0 {
			it.hasMore = false
			return zero, ErrNoMoreItems
		}
	}

	item := it.buffer[it.bufferIdx]
	it.bufferIdx++
	return item, nil
}

func (it *Iterator[T]) fetch() (*types.Result[[]T], error) {
	if !it.started {
		it.started = true
		return it.first(it.ctx)
	}
	return NextPage[[]T](it.ctx, it.client, it.next, it.limit)
}

// Err returns any error encountered during iteration.
func (it *Iterator[T]) Err() error {
	return it.err
}

// Reset rewinds the iterator to the first page.
func (it *Iterator[T]) Reset() {
	it.buffer = nil
	it.bufferIdx = 0
	it.next = nil
	it.started = false
	it.hasMore = true
	it.err = nil
}

// Collect fetches all remaining items, up to maxItems when it is positive.
func (it *Iterator[T]) Collect(maxItems int) ([]T, error) {
	var items []T

	for it.HasNext() && (maxItems <= 0 || len(items) < maxItems) {
		item, err := it.Next()
		if errors.Is(err, ErrNoMoreItems) {
			break
		}
		if err != nil {
			return items, err
		}
		items = append(items, item)
	}

	return items, nil
}
