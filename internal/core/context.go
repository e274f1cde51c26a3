package core

import (
	"context"
	"net"
)

// Client identifies who triggered an operation. It is copied onto journal entries.
type Client struct {
	IP        string
	UserAgent string
}

type clientKey struct{}

// WithClient attaches c to ctx. A port on c.IP is dropped.
func WithClient(ctx context.Context, c Client) context.Context {
	if host, _, err := net.SplitHostPort(c.IP); err == nil {
		c.IP = host
	}
	return context.WithValue(ctx, clientKey{}, c)
}

// ClientFrom returns the client attached to ctx, or the zero Client.
func ClientFrom(ctx context.Context) Client {
	c, _ := ctx.Value(clientKey{}).(Client)
	return c
}
