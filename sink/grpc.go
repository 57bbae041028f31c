package sink

import (
	"context"

	"pandump/api/collector"
	"pandump/envelope"
	"pandump/outbox"
)

// GRPCSink submits envelopes straight to a collector service.
type GRPCSink struct {
	cli *collector.Client
}

func NewGRPC(target string) (*GRPCSink, error) {
	cli, err := collector.Dial(target)
	if err != nil {
		return nil, err
	}
	return &GRPCSink{cli: cli}, nil
}

// NewGRPCWithClient wires an existing client, mostly for tests.
func NewGRPCWithClient(cli *collector.Client) *GRPCSink {
	return &GRPCSink{cli: cli}
}

func (s *GRPCSink) Publish(ctx context.Context, rep *outbox.Report) error {
	env, err := envelope.ToStruct(rep)
	if err != nil {
		return err
	}
	_, err = s.cli.Submit(ctx, env)
	return err
}

func (s *GRPCSink) Close() error {
	return s.cli.Close()
}
