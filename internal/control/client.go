package control

import (
	"fmt"

	"go.klb.dev/clipdeck/internal/ipc"
	"go.klb.dev/clipdeck/internal/message"
	"go.klb.dev/clipdeck/internal/wire"
)

// Client sends one request per connection to a running daemon.
type Client struct {
	Path string
}

// NewClient returns a client for the socket at path.
func NewClient(path string) *Client {
	return &Client{Path: path}
}

func (c *Client) do(req *message.Message) (*message.Message, error) {
	conn, err := ipc.Dial(c.Path)
	if err != nil {
		return nil, err
	}
	wc := wire.New(conn)
	defer wc.Close()
	return wc.RoundTrip(req)
}

// Toggle asks the daemon to show or hide its view.
func (c *Client) Toggle() error {
	_, err := c.do(&message.Message{Type: message.TypeToggle})
	return err
}

// Quit asks the daemon to exit.
func (c *Client) Quit() error {
	_, err := c.do(&message.Message{Type: message.TypeQuit})
	return err
}

// Push adds text to the daemon's history and reports whether it changed.
func (c *Client) Push(text string) (bool, error) {
	resp, err := c.do(&message.Message{Type: message.TypePush, Text: text})
	if err != nil {
		return false, err
	}
	return resp.Changed, nil
}

// List returns the daemon's history, ranked against query when it is set.
func (c *Client) List(query string, limit int) ([]message.Entry, error) {
	resp, err := c.do(&message.Message{Type: message.TypeList, Query: query, Limit: limit})
	if err != nil {
		return nil, err
	}
	if resp.Type != message.TypeHistory {
		return nil, fmt.Errorf("unexpected reply %q", resp.Type)
	}
	return resp.Entries, nil
}
