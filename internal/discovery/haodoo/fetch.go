package haodoo

import (
	"context"
	"fmt"
)

// FetchBook retrieves raw EPUB bytes from a download URL.
//
// One request, no retries, no caching: every call is an independent
// round trip. The Referer and mobile User-Agent headers set in
// doRequest are what get the request past the site's hotlink check.
// Upstream failure surfaces as an error, never as partial bytes.
func (c *Client) FetchBook(ctx context.Context, downloadURL string) ([]byte, error) {
	body, err := c.doRequest(ctx, downloadURL)
	if err != nil {
		return nil, wrapError("fetch", downloadURL, err)
	}
	if len(body) == 0 {
		return nil, wrapError("fetch", downloadURL, fmt.Errorf("%w: empty body", ErrServer))
	}
	return body, nil
}
