// crashtail follows the crash topic and prints each report as it lands,
// for watching a fleet from a terminal.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/IBM/sarama"
	kitlog "github.com/go-kit/log"
	"github.com/go-kit/log/level"

	"pandump/envelope"
	"pandump/outbox"
)

func main() {
	var (
		brokers = flag.String("brokers", "localhost:9092", "kafka brokers, comma separated")
		topic   = flag.String("topic", "crash-reports", "kafka topic")
		group   = flag.String("group", "crashtail", "consumer group id")
	)
	flag.Parse()

	logger := kitlog.NewLogfmtLogger(kitlog.NewSyncWriter(os.Stderr))
	logger = kitlog.With(logger, "ts", kitlog.DefaultTimestampUTC, "component", "crashtail")

	cfg := sarama.NewConfig()
	cfg.Version = sarama.V2_1_0_0
	cfg.Consumer.Offsets.Initial = sarama.OffsetOldest

	cg, err := sarama.NewConsumerGroup(strings.Split(*brokers, ","), *group, cfg)
	if err != nil {
		log.Fatalf("consumer group init failed: %v", err)
	}
	defer cg.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	level.Info(logger).Log("msg", "tailing", "topic", *topic, "group", *group)
	h := &tailHandler{logger: logger}
	for {
		if err := cg.Consume(ctx, []string{*topic}, h); err != nil {
			level.Error(logger).Log("msg", "consume failed", "err", err)
		}
		if ctx.Err() != nil {
			return
		}
	}
}

type tailHandler struct {
	logger kitlog.Logger
}

func (h *tailHandler) Setup(sarama.ConsumerGroupSession) error   { return nil }
func (h *tailHandler) Cleanup(sarama.ConsumerGroupSession) error { return nil }

func (h *tailHandler) ConsumeClaim(sess sarama.ConsumerGroupSession, claim sarama.ConsumerGroupClaim) error {
	for msg := range claim.Messages() {
		rep, err := decodeAny(msg.Value)
		if err != nil {
			level.Warn(h.logger).Log("msg", "undecodable envelope",
				"partition", msg.Partition, "offset", msg.Offset, "err", err)
			sess.MarkMessage(msg, "")
			continue
		}
		printReport(msg, rep)
		sess.MarkMessage(msg, "")
	}
	return nil
}

// decodeAny accepts either wire format; fleets migrate one host at a time.
func decodeAny(b []byte) (*outbox.Report, error) {
	rep, err := envelope.ProtoSerializer{}.Decode(b)
	if err == nil {
		return rep, nil
	}
	return envelope.JSONSerializer{}.Decode(b)
}

func printReport(msg *sarama.ConsumerMessage, rep *outbox.Report) {
	fmt.Printf("---- %s/%s seq=%d captured=%s (partition=%d offset=%d) ----\n%s\n",
		rep.Host, rep.Proc, rep.Seq,
		time.Unix(0, rep.CapturedAt).UTC().Format(time.RFC3339),
		msg.Partition, msg.Offset,
		rep.Message,
	)
}
