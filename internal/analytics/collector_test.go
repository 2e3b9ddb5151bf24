package analytics

import (
	"context"
	"testing"
	"time"

	"github.com/nlcmd/translator/pkg/config"
	"github.com/nlcmd/translator/pkg/kafka"
)

func testCollector(bufferSize int) *Collector {
	producer := kafka.NewProducer(config.KafkaConfig{
		Brokers: []string{"localhost:9092"},
	}, "translate-events")
	return NewCollector(producer, bufferSize)
}

func TestTrackAfterCloseIsDropped(t *testing.T) {
	// Shutdown closes the collector while in-flight handlers may still be
	// tracking events; late events must be dropped, not panic.
	c := testCollector(4)
	ctx, cancel := context.WithCancel(context.Background())
	c.Start(ctx)
	cancel()
	c.Close()

	c.Track(TranslateEvent{Sentence: "late event", Timestamp: time.Now().UTC()})
}

func TestCloseIsIdempotent(t *testing.T) {
	c := testCollector(4)
	ctx, cancel := context.WithCancel(context.Background())
	c.Start(ctx)
	cancel()
	c.Close()
	c.Close()
}
