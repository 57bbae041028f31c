// The collector binary receives crash envelopes from the fleet and
// archives them.
package main

import (
	"context"
	"flag"
	"log"
	"net"
	"os"
	"os/signal"
	"syscall"

	kitlog "github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"google.golang.org/grpc"

	"pandump/api/collector"
)

func main() {
	var (
		listen     = flag.String("listen", ":50051", "grpc listen address")
		archiveDir = flag.String("archive", "./collector-archive", "archive store directory")
	)
	flag.Parse()

	logger := kitlog.NewLogfmtLogger(kitlog.NewSyncWriter(os.Stderr))
	logger = kitlog.With(logger, "ts", kitlog.DefaultTimestampUTC, "component", "collector")

	srv, err := collector.NewServer(collector.Config{
		ArchiveDir: *archiveDir,
		Logger:     logger,
	})
	if err != nil {
		log.Fatalf("collector init failed: %v", err)
	}
	defer srv.Close()

	lis, err := net.Listen("tcp", *listen)
	if err != nil {
		log.Fatalf("listen failed: %v", err)
	}

	gs := grpc.NewServer()
	collector.RegisterCollectorServer(gs, srv)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	go func() {
		<-ctx.Done()
		gs.GracefulStop()
	}()

	level.Info(logger).Log("msg", "listening", "addr", *listen, "archive", *archiveDir)
	if err := gs.Serve(lis); err != nil {
		log.Fatalf("grpc server exited: %v", err)
	}
}
