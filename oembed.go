package instagram

import (
	"context"
	"net/url"
	"strings"

	"github.com/jamesprial/go-instagram-api-wrapper/pkg/types"
)

const permalinkPrefix = "https://www.instagram.com/p/"

// GetOembed returns the embed description of a media permalink. q is either a
// full URL or a bare shortcode, which is expanded to an instagram.com permalink.
// No access token is needed.
func (c *Client) GetOembed(ctx context.Context, q string) (*types.Oembed, error) {
	if !strings.Contains(q, "http") {
		code, err := c.segment("q", q)
		if err != nil {
			return nil, err
		}
		q = permalinkPrefix + code
	}

	endpoint := c.config.OembedURL + "?hidecaption=true&url=" + url.QueryEscape(q)

	var oembed types.Oembed
	if _, err := c.client.FetchJSON(ctx, endpoint, &oembed); err != nil {
		return nil, err
	}
	return &oembed, nil
}

// GetMediaID resolves a permalink or shortcode to its media ID. It returns ""
// when the oEmbed answer carries no media_id.
func (c *Client) GetMediaID(ctx context.Context, q string) (string, error) {
	oembed, err := c.GetOembed(ctx, q)
	if err != nil {
		return "", err
	}
	return oembed.MediaID, nil
}
