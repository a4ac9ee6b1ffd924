package instagram

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgerrs "github.com/jamesprial/go-instagram-api-wrapper/pkg/errors"
	"github.com/jamesprial/go-instagram-api-wrapper/test_helpers"
)

const oembedBody = `{
	"author_id": 25025320,
	"author_name": "instagram",
	"author_url": "https://www.instagram.com/instagram",
	"height": null,
	"html": "<blockquote class=\"instagram-media\"></blockquote>",
	"media_id": "1572698022136473813_25025320",
	"provider_name": "Instagram",
	"provider_url": "https://www.instagram.com",
	"thumbnail_height": 640,
	"thumbnail_url": "https://scontent.cdninstagram.com/t51.jpg",
	"thumbnail_width": 640,
	"title": "Happy weekend!",
	"type": "rich",
	"version": "1.0",
	"width": 658
}`

func TestGetOembed(t *testing.T) {
	tests := []struct {
		name    string
		q       string
		wantURL string
	}{
		{"bare shortcode", "BXUdtPeB9F1", "https://www.instagram.com/p/BXUdtPeB9F1"},
		{"full permalink", "https://www.instagram.com/p/BXUdtPeB9F1/?taken-by=instagram", "https://www.instagram.com/p/BXUdtPeB9F1/?taken-by=instagram"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := newMockServer(t)
			server.SetResponse(http.MethodGet, test_helpers.OembedPath, &test_helpers.MockResponse{
				Status: http.StatusOK,
				Body:   oembedBody,
			})
			client := newMockClient(t, server)
			client.SetAccessToken("")

			oembed, err := client.GetOembed(context.Background(), tt.q)
			require.NoError(t, err)
			assert.Equal(t, "1572698022136473813_25025320", oembed.MediaID)
			assert.Equal(t, int64(25025320), oembed.AuthorID)
			assert.Equal(t, "rich", oembed.Type)
			assert.Nil(t, oembed.Height)
			assert.Equal(t, 658, oembed.Width)

			req, ok := server.LastRequest()
			require.True(t, ok)
			assert.Equal(t, test_helpers.OembedPath, req.Path)
			assert.Equal(t, "true", req.Query.Get("hidecaption"))
			assert.Equal(t, tt.wantURL, req.Query.Get("url"))
			assert.False(t, req.Query.Has("access_token"))
		})
	}
}

func TestGetOembed_RejectsInvalidShortcode(t *testing.T) {
	server := newMockServer(t)
	client := newMockClient(t, server)

	_, err := client.GetOembed(context.Background(), "abc/../def")

	var argErr *pkgerrs.ArgumentError
	require.True(t, errors.As(err, &argErr))
	assert.Equal(t, "q", argErr.Argument)
	assert.Empty(t, server.GetRequestLog())
}

func TestGetOembed_NotFound(t *testing.T) {
	server := newMockServer(t)
	server.SetResponse(http.MethodGet, test_helpers.OembedPath, &test_helpers.MockResponse{
		Status: http.StatusNotFound,
		Body:   "No Media Match",
	})
	client := newMockClient(t, server)

	_, err := client.GetOembed(context.Background(), "missing")

	var apiErr *pkgerrs.APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, 404, apiErr.Code)
	assert.Equal(t, http.StatusNotFound, apiErr.HTTPStatus)
	assert.Contains(t, apiErr.ErrorMessage, "No Media Match")
}

func TestGetMediaID(t *testing.T) {
	server := newMockServer(t)
	server.SetResponse(http.MethodGet, test_helpers.OembedPath, &test_helpers.MockResponse{
		Status: http.StatusOK,
		Body:   oembedBody,
	})
	client := newMockClient(t, server)

	id, err := client.GetMediaID(context.Background(), "BXUdtPeB9F1")
	require.NoError(t, err)
	assert.Equal(t, "1572698022136473813_25025320", id)

	server.SetResponse(http.MethodGet, test_helpers.OembedPath, &test_helpers.MockResponse{
		Status: http.StatusOK,
		Body:   `{"type":"rich","version":"1.0"}`,
	})
	id, err = client.GetMediaID(context.Background(), "BXUdtPeB9F1")
	require.NoError(t, err)
	assert.Empty(t, id)
}

func TestGetOembed_MalformedBody(t *testing.T) {
	server := newMockServer(t)
	server.SetResponse(http.MethodGet, test_helpers.OembedPath, &test_helpers.MockResponse{
		Status: http.StatusOK,
		Body:   "<html>maintenance</html>",
	})
	client := newMockClient(t, server)

	_, err := client.GetOembed(context.Background(), "BXUdtPeB9F1")

	var malformed *pkgerrs.MalformedResponseError
	require.True(t, errors.As(err, &malformed))
	assert.Equal(t, http.StatusOK, malformed.HTTPStatus)
}
