package analytics

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/nlcmd/translator/pkg/config"
)

func feedEvent(t *testing.T, a *Aggregator, event TranslateEvent) {
	t.Helper()
	data, err := json.Marshal(event)
	if err != nil {
		t.Fatalf("marshaling event: %v", err)
	}
	if err := HandleEvent(a)(context.Background(), nil, data); err != nil {
		t.Fatalf("HandleEvent: %v", err)
	}
}

func testAggregator() *Aggregator {
	return NewAggregator(config.KafkaConfig{
		Brokers:       []string{"localhost:9092"},
		ConsumerGroup: "aggregator-test",
	}, "translate-events")
}

func TestAggregatorCounts(t *testing.T) {
	a := testAggregator()

	feedEvent(t, a, TranslateEvent{Sentence: "copy the file", Returned: 3, LatencyMs: 10, CacheHit: false})
	feedEvent(t, a, TranslateEvent{Sentence: "copy the file", Returned: 3, LatencyMs: 2, CacheHit: true})
	feedEvent(t, a, TranslateEvent{Sentence: "frobnicate widget", Returned: 0, LatencyMs: 30})

	stats := a.Stats()
	if stats.TotalTranslations != 3 {
		t.Errorf("TotalTranslations = %d, want 3", stats.TotalTranslations)
	}
	if stats.CacheHits != 1 || stats.CacheMisses != 2 {
		t.Errorf("cache counters = %d/%d, want 1/2", stats.CacheHits, stats.CacheMisses)
	}
	if stats.ZeroResultCount != 1 {
		t.Errorf("ZeroResultCount = %d, want 1", stats.ZeroResultCount)
	}
	if len(stats.ZeroResultSentences) != 1 || stats.ZeroResultSentences[0].Sentence != "frobnicate widget" {
		t.Errorf("ZeroResultSentences = %v", stats.ZeroResultSentences)
	}
	if want := float64(10+2+30) / 3; stats.AvgLatencyMs != want {
		t.Errorf("AvgLatencyMs = %g, want %g", stats.AvgLatencyMs, want)
	}
}

func TestAggregatorTopSentences(t *testing.T) {
	a := testAggregator()
	for i := 0; i < 3; i++ {
		feedEvent(t, a, TranslateEvent{Sentence: "list files", Returned: 1})
	}
	feedEvent(t, a, TranslateEvent{Sentence: "copy the file", Returned: 1})

	stats := a.Stats()
	if len(stats.TopSentences) != 2 {
		t.Fatalf("TopSentences = %v, want 2 entries", stats.TopSentences)
	}
	if stats.TopSentences[0].Sentence != "list files" || stats.TopSentences[0].Count != 3 {
		t.Errorf("TopSentences[0] = %+v", stats.TopSentences[0])
	}
}

func TestAggregatorPercentiles(t *testing.T) {
	a := testAggregator()
	for i := int64(1); i <= 100; i++ {
		feedEvent(t, a, TranslateEvent{Sentence: "s", Returned: 1, LatencyMs: i})
	}

	stats := a.Stats()
	if stats.P50LatencyMs != 51 {
		t.Errorf("P50LatencyMs = %d, want 51", stats.P50LatencyMs)
	}
	if stats.P95LatencyMs != 96 {
		t.Errorf("P95LatencyMs = %d, want 96", stats.P95LatencyMs)
	}
	if stats.P99LatencyMs != 100 {
		t.Errorf("P99LatencyMs = %d, want 100", stats.P99LatencyMs)
	}
}

func TestAggregatorIgnoresMalformedEvents(t *testing.T) {
	a := testAggregator()
	if err := HandleEvent(a)(context.Background(), nil, []byte("not json")); err != nil {
		t.Fatalf("malformed events must be dropped, got error: %v", err)
	}
	if stats := a.Stats(); stats.TotalTranslations != 0 {
		t.Errorf("TotalTranslations = %d, want 0", stats.TotalTranslations)
	}
}
