// Package wire handles reading and writing newline-delimited JSON messages
// over a net.Conn.
//
// Wire format:
//
//	<json>\n
package wire

import (
	"bufio"
	"fmt"
	"net"
	"time"

	"go.klb.dev/clipdeck/internal/message"
)

const (
	// MaxMessageSize is the largest message we will read (16 MiB).
	MaxMessageSize = 16 * 1024 * 1024

	writeDeadline = 5 * time.Second
)

// Conn wraps a net.Conn with buffered newline-delimited JSON framing.
type Conn struct {
	conn net.Conn
	br   *bufio.Reader
}

// New wraps conn.
func New(conn net.Conn) *Conn {
	return &Conn{
		conn: conn,
		br:   bufio.NewReaderSize(conn, 64*1024),
	}
}

// SetReadDeadline sets or clears the read deadline.
func (c *Conn) SetReadDeadline(d time.Duration) {
	if d == 0 {
		_ = c.conn.SetReadDeadline(time.Time{})
	} else {
		_ = c.conn.SetReadDeadline(time.Now().Add(d))
	}
}

// SetWriteDeadline sets or clears the write deadline.
func (c *Conn) SetWriteDeadline(d time.Duration) {
	if d == 0 {
		_ = c.conn.SetWriteDeadline(time.Time{})
	} else {
		_ = c.conn.SetWriteDeadline(time.Now().Add(d))
	}
}

// Close closes the underlying connection.
func (c *Conn) Close() error { return c.conn.Close() }

// WriteMsg serialises msg to JSON and writes it followed by a newline.
func (c *Conn) WriteMsg(msg *message.Message) error {
	raw, err := msg.Encode()
	if err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	line := append(raw, '\n')

	c.SetWriteDeadline(writeDeadline)
	_, err = c.conn.Write(line)
	c.SetWriteDeadline(0)
	return err
}

// ReadMsg reads one newline-terminated line and deserialises it into a
// Message. Lines longer than MaxMessageSize are rejected without being
// buffered in full.
func (c *Conn) ReadMsg() (*message.Message, error) {
	var line []byte
	for {
		chunk, isPrefix, err := c.br.ReadLine()
		if err != nil {
			return nil, err
		}
		line = append(line, chunk...)
		if len(line) > MaxMessageSize {
			return nil, fmt.Errorf("message too large (>%d bytes)", MaxMessageSize)
		}
		if !isPrefix {
			break
		}
	}
	return message.Decode(line)
}

// RoundTrip writes req and reads one reply. An ERROR reply is returned as an
// error.
func (c *Conn) RoundTrip(req *message.Message) (*message.Message, error) {
	if err := c.WriteMsg(req); err != nil {
		return nil, fmt.Errorf("send %s: %w", req.Type, err)
	}
	resp, err := c.ReadMsg()
	if err != nil {
		return nil, fmt.Errorf("read reply to %s: %w", req.Type, err)
	}
	if err := resp.Err(); err != nil {
		return nil, err
	}
	return resp, nil
}
