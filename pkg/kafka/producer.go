package kafka

import (
	"context"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/segmentio/kafka-go"
)

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Message is an already-encoded event. Headers travel as Kafka record headers.
type Message struct {
	Key     []byte
	Value   []byte
	Headers map[string]string
}

// Producer writes to one topic. Messages are hashed by key so every
// crop/state pair keeps its order on a single partition.
type Producer struct {
	w     messageWriter
	topic string
	now   func() time.Time
}

func NewProducer(cfg ProducerConfig) (*Producer, error) {
	cfg.applyDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	comp, _ := codec(cfg.Compression)

	w := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Topic:        cfg.Topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequiredAcks(cfg.RequiredAcks),
		Compression:  comp,
		MaxAttempts:  cfg.MaxAttempts,
		WriteTimeout: cfg.WriteTimeout,
		ReadTimeout:  cfg.ReadTimeout,
		BatchSize:    cfg.BatchSize,
		BatchBytes:   int64(cfg.BatchBytes),
		BatchTimeout: cfg.BatchTimeout,
		Async:        cfg.Async,
	}
	return newProducer(w, cfg.Topic), nil
}

func newProducer(w messageWriter, topic string) *Producer {
	initProducerMetrics()
	return &Producer{w: w, topic: topic, now: time.Now}
}

func (p *Producer) Topic() string { return p.topic }

// Write sends msgs in one call to the writer.
func (p *Producer) Write(ctx context.Context, msgs ...Message) error {
	if len(msgs) == 0 {
		return nil
	}
	start := p.now()
	out := make([]kafka.Message, len(msgs))
	var size int
	for i, m := range msgs {
		out[i] = kafka.Message{Key: m.Key, Value: m.Value, Time: start}
		for k, v := range m.Headers {
			out[i].Headers = append(out[i].Headers, kafka.Header{Key: k, Value: []byte(v)})
		}
		size += len(m.Value)
	}

	err := p.w.WriteMessages(ctx, out...)
	observe(p.topic, len(msgs), size, time.Since(start), err)
	return err
}

func (p *Producer) Close() error {
	if p.w == nil {
		return nil
	}
	return p.w.Close()
}

var (
	producedTotal  *prometheus.CounterVec
	producedBytes  *prometheus.CounterVec
	produceLatency *prometheus.HistogramVec
	metricsOnce    sync.Once
)

func initProducerMetrics() {
	metricsOnce.Do(func() {
		producedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "croppulse_kafka_messages_total",
			Help: "Messages handed to Kafka by result",
		}, []string{"topic", "result"})
		producedBytes = promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "croppulse_kafka_bytes_total",
			Help: "Payload bytes handed to Kafka",
		}, []string{"topic"})
		produceLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "croppulse_kafka_write_seconds",
			Help:    "Latency of one write call",
			Buckets: prometheus.DefBuckets,
		}, []string{"topic"})
	})
}

func observe(topic string, count, size int, took time.Duration, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	producedTotal.WithLabelValues(topic, result).Add(float64(count))
	producedBytes.WithLabelValues(topic).Add(float64(size))
	produceLatency.WithLabelValues(topic).Observe(took.Seconds())
}
