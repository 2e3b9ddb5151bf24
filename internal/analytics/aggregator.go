package analytics

import (
	"context"
	"log/slog"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/nlcmd/translator/pkg/config"
	"github.com/nlcmd/translator/pkg/kafka"
)

// AggregatedStats summarises the translation traffic seen so far.
type AggregatedStats struct {
	TotalTranslations   int64           `json:"total_translations"`
	CacheHits           int64           `json:"cache_hits"`
	CacheMisses         int64           `json:"cache_misses"`
	ZeroResultCount     int64           `json:"zero_result_count"`
	AvgLatencyMs        float64         `json:"avg_latency_ms"`
	P50LatencyMs        int64           `json:"p50_latency_ms"`
	P95LatencyMs        int64           `json:"p95_latency_ms"`
	P99LatencyMs        int64           `json:"p99_latency_ms"`
	TopSentences        []SentenceCount `json:"top_sentences"`
	ZeroResultSentences []SentenceCount `json:"zero_result_sentences"`
	RequestsPerMinute   float64         `json:"requests_per_minute"`
}

// SentenceCount pairs a sentence with how often it was requested.
type SentenceCount struct {
	Sentence string `json:"sentence"`
	Count    int64  `json:"count"`
}

// Aggregator consumes translate events from Kafka and keeps running
// statistics in memory.
type Aggregator struct {
	mu                  sync.RWMutex
	totalTranslations   atomic.Int64
	cacheHits           atomic.Int64
	cacheMisses         atomic.Int64
	zeroResults         atomic.Int64
	latencies           []int64
	sentenceCounts      map[string]int64
	zeroResultSentences map[string]int64
	startTime           time.Time

	consumer *kafka.Consumer
	logger   *slog.Logger
}

// NewAggregator creates an Aggregator consuming translate events from the
// given topic.
func NewAggregator(cfg config.KafkaConfig, topic string) *Aggregator {
	a := &Aggregator{
		latencies:           make([]int64, 0, 10000),
		sentenceCounts:      make(map[string]int64),
		zeroResultSentences: make(map[string]int64),
		startTime:           time.Now(),
		logger:              slog.Default().With("component", "analytics-aggregator"),
	}
	a.consumer = kafka.NewConsumer(cfg, topic, HandleEvent(a))
	return a
}

// Start enters the consume loop until ctx is cancelled.
func (a *Aggregator) Start(ctx context.Context) error {
	a.logger.Info("analytics aggregator starting")
	return a.consumer.Start(ctx)
}

// HandleEvent returns the kafka handler that feeds events into agg.
func HandleEvent(agg *Aggregator) kafka.MessageHandler {
	return func(ctx context.Context, key []byte, value []byte) error {
		event, err := kafka.DecodeJSON[TranslateEvent](value)
		if err != nil {
			agg.logger.Error("failed to decode analytics event", "error", err)
			return nil
		}
		agg.record(event)
		return nil
	}
}

func (a *Aggregator) record(event TranslateEvent) {
	a.totalTranslations.Add(1)
	if event.CacheHit {
		a.cacheHits.Add(1)
	} else {
		a.cacheMisses.Add(1)
	}
	if event.Returned == 0 {
		a.zeroResults.Add(1)
	}

	a.mu.Lock()
	a.latencies = append(a.latencies, event.LatencyMs)
	a.sentenceCounts[event.Sentence]++
	if event.Returned == 0 {
		a.zeroResultSentences[event.Sentence]++
	}
	a.mu.Unlock()
}

// Stats returns a snapshot of the aggregated statistics.
func (a *Aggregator) Stats() AggregatedStats {
	a.mu.RLock()
	defer a.mu.RUnlock()

	stats := AggregatedStats{
		TotalTranslations: a.totalTranslations.Load(),
		CacheHits:         a.cacheHits.Load(),
		CacheMisses:       a.cacheMisses.Load(),
		ZeroResultCount:   a.zeroResults.Load(),
	}
	if len(a.latencies) > 0 {
		sorted := make([]int64, len(a.latencies))
		copy(sorted, a.latencies)
		sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

		var sum int64
		for _, l := range sorted {
			sum += l
		}
		stats.AvgLatencyMs = float64(sum) / float64(len(sorted))
		stats.P50LatencyMs = percentile(sorted, 50)
		stats.P95LatencyMs = percentile(sorted, 95)
		stats.P99LatencyMs = percentile(sorted, 99)
	}
	stats.TopSentences = topN(a.sentenceCounts, 10)
	stats.ZeroResultSentences = topN(a.zeroResultSentences, 10)
	elapsed := time.Since(a.startTime).Minutes()
	if elapsed > 0 {
		stats.RequestsPerMinute = float64(stats.TotalTranslations) / elapsed
	}
	return stats
}

func percentile(sorted []int64, p int) int64 {
	if len(sorted) == 0 {
		return 0
	}
	idx := len(sorted) * p / 100
	if idx >= len(sorted) {
		idx = len(sorted) - 1
	}
	return sorted[idx]
}

func topN(counts map[string]int64, n int) []SentenceCount {
	out := make([]SentenceCount, 0, len(counts))
	for sentence, count := range counts {
		out = append(out, SentenceCount{Sentence: sentence, Count: count})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Sentence < out[j].Sentence
	})
	if len(out) > n {
		out = out[:n]
	}
	return out
}
