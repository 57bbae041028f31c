package collector

import (
	"context"
	"fmt"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/protobuf/types/known/structpb"
)

// Client submits envelopes to a collector.
type Client struct {
	conn *grpc.ClientConn
}

// Dial connects to a collector at target, plaintext.
func Dial(target string) (*Client, error) {
	conn, err := grpc.NewClient(target,
		grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, fmt.Errorf("collector: dial %s: %w", target, err)
	}
	return &Client{conn: conn}, nil
}

// NewClient wraps an existing connection; the caller keeps ownership of it.
func NewClient(conn *grpc.ClientConn) *Client {
	return &Client{conn: conn}
}

func (c *Client) Close() error {
	return c.conn.Close()
}

// Submit sends one envelope and returns the collector's ack.
func (c *Client) Submit(ctx context.Context, env *structpb.Struct) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.conn.Invoke(ctx, SubmitMethod, env, out); err != nil {
		return nil, err
	}
	return out, nil
}
