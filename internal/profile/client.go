// Package profile fetches user profiles over HTTP and renders them through a
// small state machine with loading, error and success states.
package profile

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
)

const maxProfileBytes = 1 << 20

// User is the profile returned by the user endpoint.
type User struct {
	Name  string
	Email string
}

// StatusError is returned for non-2xx responses.
type StatusError struct {
	StatusCode int
	Status     string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status %s", e.Status)
}

// Client fetches users from GET <base>/<resource>/<id>.
type Client struct {
	http     *http.Client
	base     *url.URL
	resource string
}

// NewClient returns a Client for the given base URL and resource path
// segment. A nil httpClient means http.DefaultClient.
func NewClient(baseURL, resource string, httpClient *http.Client) (*Client, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, errors.Wrap(err, "parse base url")
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, errors.Errorf("base url %q must be absolute", baseURL)
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{http: httpClient, base: u, resource: resource}, nil
}

// FetchUser returns the user with the given id.
func (c *Client) FetchUser(ctx context.Context, id string) (*User, error) {
	u := c.base.JoinPath(c.resource, url.PathEscape(id))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), http.NoBody)
	if err != nil {
		return nil, errors.Wrap(err, "create request")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "do request")
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StatusError{StatusCode: resp.StatusCode, Status: resp.Status}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxProfileBytes))
	if err != nil {
		return nil, errors.Wrap(err, "read body")
	}
	user, err := decodeUser(jx.DecodeBytes(body))
	if err != nil {
		return nil, errors.Wrap(err, "decode user")
	}
	return user, nil
}

func decodeUser(d *jx.Decoder) (*User, error) {
	var u User
	if err := d.ObjBytes(func(d *jx.Decoder, key []byte) error {
		var err error
		switch string(key) {
		case "name":
			u.Name, err = d.Str()
		case "email":
			u.Email, err = d.Str()
		default:
			err = d.Skip()
		}
		return err
	}); err != nil {
		return nil, err
	}
	return &u, nil
}
