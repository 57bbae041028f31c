package collector

import (
	"context"
	"fmt"

	"github.com/cockroachdb/pebble"
	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"pandump/envelope"
	"pandump/outbox"
)

// Server archives submitted crash envelopes, one entry per report, keyed
// by origin host and sequence. Replays from at-least-once shippers land on
// the same key and deduplicate themselves. Entries rest as JSON so the
// archive stays greppable without tooling.
type Server struct {
	db     *pebble.DB
	logger log.Logger
}

type Config struct {
	ArchiveDir string
	Logger     log.Logger
}

func NewServer(cfg Config) (*Server, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = log.NewNopLogger()
	}
	db, err := pebble.Open(cfg.ArchiveDir, &pebble.Options{})
	if err != nil {
		return nil, fmt.Errorf("collector: open archive %s: %w", cfg.ArchiveDir, err)
	}
	return &Server{db: db, logger: logger}, nil
}

func (s *Server) Close() error {
	return s.db.Close()
}

// Submit implements CollectorServer.
func (s *Server) Submit(ctx context.Context, env *structpb.Struct) (*structpb.Struct, error) {
	rep, err := envelope.FromStruct(env)
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}
	blob, err := envelope.JSONSerializer{}.Encode(rep)
	if err != nil {
		return nil, status.Error(codes.Internal, err.Error())
	}
	if err := s.db.Set(archiveKey(rep.Host, rep.Seq), blob, pebble.Sync); err != nil {
		return nil, status.Error(codes.Internal, err.Error())
	}

	level.Info(s.logger).Log(
		"msg", "archived crash report",
		"host", rep.Host,
		"proc", rep.Proc,
		"seq", rep.Seq,
		"bytes", len(rep.Message),
	)

	ack, err := structpb.NewStruct(map[string]interface{}{
		"status": "archived",
		"seq":    rep.Seq,
	})
	if err != nil {
		return nil, status.Error(codes.Internal, err.Error())
	}
	return ack, nil
}

// ScanHost visits one host's archived reports in sequence order.
func (s *Server) ScanHost(host string, fn func(rep *outbox.Report) error) error {
	prefix := fmt.Sprintf("archive/%s/", host)
	iter, err := s.db.NewIter(&pebble.IterOptions{
		LowerBound: []byte(prefix),
		UpperBound: []byte(prefix + "~"),
	})
	if err != nil {
		return err
	}
	defer iter.Close()

	for iter.First(); iter.Valid(); iter.Next() {
		rep, err := envelope.JSONSerializer{}.Decode(iter.Value())
		if err != nil {
			return err
		}
		if err := fn(rep); err != nil {
			return err
		}
	}
	return iter.Error()
}

func archiveKey(host string, seq uint64) []byte {
	return []byte(fmt.Sprintf("archive/%s/%020d", host, seq))
}
