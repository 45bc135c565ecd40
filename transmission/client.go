// Package transmission implements the subset of the Transmission RPC
// protocol that maintenance needs: listing torrents with an explicit field
// set and removing them, optionally together with their downloaded data.
package transmission

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"sync"

	"github.com/pkg/errors"

	"github.com/boinkor-net/gearbox-maintenance/janitor"
	"github.com/boinkor-net/gearbox-maintenance/torrent"
)

// sessionHeader carries the CSRF token Transmission hands out on a 409
// response; every later request must echo it.
const sessionHeader = "X-Transmission-Session-Id"

// requestFields is the exact set of torrent fields a snapshot needs.
var requestFields = []string{
	"id",
	"hashString",
	"name",
	"error",
	"errorString",
	"status",
	"uploadRatio",
	"uploadedEver",
	"doneDate",
	"files",
	"totalSize",
	"trackers",
}

// Client speaks the Transmission RPC protocol to one instance. It is safe
// for use from a single poller; the session id is refreshed transparently
// when the instance invalidates it.
type Client struct {
	url      string
	user     string
	password string
	http     *http.Client

	mu        sync.Mutex
	sessionID string
}

var _ janitor.Repository = &Client{}

// New creates a client for the Transmission RPC endpoint at url,
// authenticating with HTTP basic auth when user is non-empty.
func New(url, user, password string) *Client {
	return &Client{
		url:      url,
		user:     user,
		password: password,
		http:     &http.Client{},
	}
}

type rpcRequest struct {
	Method    string      `json:"method"`
	Arguments interface{} `json:"arguments,omitempty"`
}

type rpcResponse struct {
	Result    string          `json:"result"`
	Arguments json.RawMessage `json:"arguments"`
}

type torrentGetArgs struct {
	Fields []string `json:"fields"`
}

type torrentGetResponse struct {
	Torrents []rpcTorrent `json:"torrents"`
}

type torrentRemoveArgs struct {
	IDs             []string `json:"ids"`
	DeleteLocalData bool     `json:"delete-local-data"`
}

// List retrieves a snapshot of all torrents on the instance.
func (c *Client) List(ctx context.Context) ([]torrent.Torrent, error) {
	var args torrentGetResponse
	err := c.call(ctx, "torrent-get", torrentGetArgs{Fields: requestFields}, &args)
	if err != nil {
		return nil, err
	}

	torrents := make([]torrent.Torrent, 0, len(args.Torrents))
	for _, rt := range args.Torrents {
		t, err := rt.snapshot()
		if err != nil {
			return nil, err
		}
		torrents = append(torrents, t)
	}

	return torrents, nil
}

// Remove deletes the torrents with the given hashes. When deleteData is
// set, the downloaded data is removed from disk as well.
func (c *Client) Remove(ctx context.Context, hashes []string, deleteData bool) error {
	return c.call(ctx, "torrent-remove", torrentRemoveArgs{
		IDs:             hashes,
		DeleteLocalData: deleteData,
	}, nil)
}

// call performs one RPC round trip, unmarshalling the response arguments
// into result when it is non-nil. A 409 response carries a fresh session id
// and is retried once.
func (c *Client) call(ctx context.Context, method string, args interface{}, result interface{}) error {
	body, err := json.Marshal(rpcRequest{Method: method, Arguments: args})
	if err != nil {
		return errors.Wrapf(err, "encoding %s request", method)
	}

	resp, err := c.post(ctx, body)
	if err != nil {
		return err
	}
	if resp.StatusCode == http.StatusConflict {
		c.setSessionID(resp.Header.Get(sessionHeader))
		resp.Body.Close()

		resp, err = c.post(ctx, body)
		if err != nil {
			return err
		}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return errors.Errorf("%s: unexpected response status %q", method, resp.Status)
	}

	var decoded rpcResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return errors.Wrapf(err, "decoding %s response", method)
	}
	if decoded.Result != "success" {
		return errors.Errorf("%s failed: %s", method, decoded.Result)
	}

	if result != nil {
		if err := json.Unmarshal(decoded.Arguments, result); err != nil {
			return errors.Wrapf(err, "decoding %s response arguments", method)
		}
	}

	return nil
}

func (c *Client) post(ctx context.Context, body []byte) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}

	req.Header.Set("Content-Type", "application/json")
	if id := c.getSessionID(); id != "" {
		req.Header.Set(sessionHeader, id)
	}
	if c.user != "" {
		req.SetBasicAuth(c.user, c.password)
	}

	return c.http.Do(req)
}

func (c *Client) setSessionID(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sessionID = id
}

func (c *Client) getSessionID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sessionID
}
