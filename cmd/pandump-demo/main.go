// The demo binary walks the whole loop: recover last run's crash record,
// park it in the outbox, broadcast it through the chosen sink, then
// optionally crash itself so the next run has something to recover.
//
// Run it twice with -crash, then once without, and watch the report come
// out the other side:
//
//	pandump-demo -sink log -crash
//	pandump-demo -sink log
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	kitlog "github.com/go-kit/log"
	"github.com/go-kit/log/level"

	"pandump/broadcaster"
	"pandump/envelope"
	"pandump/hook"
	"pandump/outbox"
	"pandump/region"
	"pandump/service"
	"pandump/sink"
)

func main() {
	var (
		regionPath = flag.String("region", "/dev/shm/pandump-demo.region", "backing file for the crash region")
		regionSize = flag.Int("size", 4096, "crash region size in bytes")
		outboxDir  = flag.String("outbox", "./pandump-outbox", "outbox store directory")
		sinkKind   = flag.String("sink", "log", "where reports go: log, kafka or grpc")
		brokers    = flag.String("brokers", "localhost:9092", "kafka brokers, comma separated")
		topic      = flag.String("topic", "crash-reports", "kafka topic")
		collector  = flag.String("collector", "localhost:50051", "collector address")
		withStack  = flag.Bool("stack", false, "persist the goroutine stack too")
		crash      = flag.Bool("crash", false, "panic on purpose after draining")
		linger     = flag.Duration("linger", 3*time.Second, "time to let the broadcaster drain")
	)
	flag.Parse()

	logger := kitlog.NewLogfmtLogger(kitlog.NewSyncWriter(os.Stderr))
	logger = kitlog.With(logger, "ts", kitlog.DefaultTimestampUTC)

	// ---------------- Region ----------------

	reg, err := region.MapFile(*regionPath, *regionSize)
	if err != nil {
		log.Fatalf("region init failed: %v", err)
	}
	defer reg.Close()

	// ---------------- Outbox ----------------

	box, err := outbox.Open(*outboxDir)
	if err != nil {
		log.Fatalf("outbox init failed: %v", err)
	}
	defer box.Close()

	// ---------------- Recovery ----------------

	rec := service.NewRecovery(reg, box, service.Config{Logger: logger})
	if seq, ok, err := rec.CheckAndEnqueue(); err != nil {
		log.Fatalf("recovery failed: %v", err)
	} else if ok {
		level.Info(logger).Log("msg", "previous run crashed", "seq", seq)
	} else {
		level.Info(logger).Log("msg", "previous run shut down clean")
	}

	// ---------------- Broadcast ----------------

	snk, err := buildSink(*sinkKind, *brokers, *topic, *collector, logger)
	if err != nil {
		log.Fatalf("sink init failed: %v", err)
	}
	defer snk.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	broadcaster.New(box, snk, broadcaster.Config{Logger: logger}).Start(ctx)

	// ---------------- Arm the hook ----------------

	hook.Install(reg, hook.Options{WithStack: *withStack, PanicOnFault: true})
	defer hook.Recover()

	time.Sleep(*linger)

	if *crash {
		level.Info(logger).Log("msg", "crashing on purpose")
		xs := []int{1, 2, 3}
		fmt.Println(xs[len(xs)+2]) // index out of range, straight into the hook
	}
	level.Info(logger).Log("msg", "done")
}

func buildSink(kind, brokers, topic, collectorAddr string, logger kitlog.Logger) (sink.Sink, error) {
	switch kind {
	case "log":
		return sink.NewLog(logger), nil
	case "kafka":
		return sink.NewKafka(strings.Split(brokers, ","), topic, envelope.ProtoSerializer{}), nil
	case "grpc":
		return sink.NewGRPC(collectorAddr)
	default:
		return nil, fmt.Errorf("unknown sink %q", kind)
	}
}
