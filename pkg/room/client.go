package room

import (
	"errors"
	"fmt"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"holdem-server/pkg/token"
)

const sendBufferSize = 256

// ErrRateLimited is returned when a connection sends messages too quickly
var ErrRateLimited = errors.New("too many messages, slow down")

// Client is a client connected to the server via websockets
type Client struct {
	// ID identifies the connection
	ID string

	// UserID is the authenticated user
	UserID int64

	// Conn is the underlying websocket connection
	Conn *websocket.Conn

	// send is a channel for sending messages to the client
	send chan interface{}

	// Close is a channel for closing the client
	Close chan string

	// CloseError contains the reason why the connection was closed
	CloseError error

	limiter *rate.Limiter

	// roomID is guarded by the PitBoss
	roomID string
}

// NewClient returns a new client object
// A nil limiter lets every message through
func NewClient(conn *websocket.Conn, userID int64, limiter *rate.Limiter) (*Client, error) {
	suffix, err := token.Generate(12)
	if err != nil {
		return nil, err
	}

	if limiter == nil {
		limiter = rate.NewLimiter(rate.Inf, 0)
	}

	return &Client{
		ID:      fmt.Sprintf("%d-%s", userID, suffix),
		UserID:  userID,
		Conn:    conn,
		send:    make(chan interface{}, sendBufferSize),
		Close:   make(chan string, 1),
		limiter: limiter,
	}, nil
}

// Send queues a message for the web client
// Messages are dropped if the client has stopped reading
func (c *Client) Send(msg interface{}) bool {
	select {
	case c.send <- msg:
		return true
	default:
		logrus.WithField("client", c.String()).Warn("send buffer is full, dropping message")
		return false
	}
}

// SendChan returns a read-only channel
func (c *Client) SendChan() <-chan interface{} {
	return c.send
}

// String returns a traceable identifier for the connection
func (c *Client) String() string {
	return c.ID
}

func (c *Client) allow() bool {
	return c.limiter.Allow()
}
