// Package kafka reads and publishes raw incident records on a Kafka topic.
package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/couchcryptid/crime-insights-service/internal/config"
	"github.com/couchcryptid/crime-insights-service/internal/domain"
)

// Reader takes a snapshot of every record on the topic, from the first
// retained offset up to the high-water mark observed when Fetch starts.
type Reader struct {
	brokers []string
	topic   string
	timeout time.Duration
	logger  *slog.Logger
}

// NewReader creates a snapshot reader for the configured topic.
func NewReader(cfg *config.Config, logger *slog.Logger) *Reader {
	return &Reader{
		brokers: cfg.KafkaBrokers,
		topic:   cfg.KafkaTopic,
		timeout: cfg.DataFetchTimeout,
		logger:  logger,
	}
}

// Identity names the source for cache keys.
func (r *Reader) Identity() string {
	return "kafka:" + r.topic
}

// Fetch reads all partitions of the topic. Any broker error or undecodable
// message fails the whole snapshot with ErrDataUnavailable.
func (r *Reader) Fetch(ctx context.Context) ([]domain.RawRecord, error) {
	if len(r.brokers) == 0 {
		return nil, fmt.Errorf("%w: no kafka brokers configured", domain.ErrDataUnavailable)
	}
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	conn, err := kafkago.DialContext(ctx, "tcp", r.brokers[0])
	if err != nil {
		return nil, fmt.Errorf("%w: dial kafka: %w", domain.ErrDataUnavailable, err)
	}
	partitions, err := conn.ReadPartitions(r.topic)
	conn.Close() //nolint:errcheck // metadata connection only
	if err != nil {
		return nil, fmt.Errorf("%w: read partitions of %s: %w", domain.ErrDataUnavailable, r.topic, err)
	}

	var records []domain.RawRecord
	for _, p := range partitions {
		recs, err := r.readPartition(ctx, p.ID)
		if err != nil {
			return nil, err
		}
		records = append(records, recs...)
	}

	r.logger.Info("kafka snapshot read",
		"topic", r.topic,
		"partitions", len(partitions),
		"rows", len(records),
	)
	return records, nil
}

func (r *Reader) readPartition(ctx context.Context, partition int) ([]domain.RawRecord, error) {
	leader, err := kafkago.DialLeader(ctx, "tcp", r.brokers[0], r.topic, partition)
	if err != nil {
		return nil, fmt.Errorf("%w: dial partition %d leader: %w", domain.ErrDataUnavailable, partition, err)
	}
	first, last, err := leader.ReadOffsets()
	leader.Close() //nolint:errcheck // offsets already read
	if err != nil {
		return nil, fmt.Errorf("%w: read partition %d offsets: %w", domain.ErrDataUnavailable, partition, err)
	}
	if last <= first {
		return nil, nil
	}

	rd := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:   r.brokers,
		Topic:     r.topic,
		Partition: partition,
		MaxBytes:  10e6,
	})
	defer rd.Close()
	if err := rd.SetOffset(first); err != nil {
		return nil, fmt.Errorf("%w: seek partition %d: %w", domain.ErrDataUnavailable, partition, err)
	}

	return drainPartition(ctx, rd, partition, last)
}

// messageReader is the part of kafkago.Reader that drainPartition uses.
type messageReader interface {
	ReadMessage(ctx context.Context) (kafkago.Message, error)
	Offset() int64
}

// drainPartition reads messages until the next offset to read reaches last,
// the high-water mark. Offsets may skip ahead over compacted records, so the
// reader's position decides when the partition is done, not a message count.
func drainPartition(ctx context.Context, rd messageReader, partition int, last int64) ([]domain.RawRecord, error) {
	var records []domain.RawRecord
	for rd.Offset() < last {
		msg, err := rd.ReadMessage(ctx)
		if err != nil {
			if errors.Is(err, context.DeadlineExceeded) {
				return nil, fmt.Errorf("%w: partition %d: timed out at offset %d of %d",
					domain.ErrDataUnavailable, partition, rd.Offset(), last)
			}
			return nil, fmt.Errorf("%w: read partition %d: %w", domain.ErrDataUnavailable, partition, err)
		}
		rec, err := mapMessageToRawRecord(msg)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
		if msg.Offset+1 >= last {
			break
		}
	}
	return records, nil
}

// mapMessageToRawRecord decodes a message value published by Publisher.
func mapMessageToRawRecord(msg kafkago.Message) (domain.RawRecord, error) {
	var rec domain.RawRecord
	if err := json.Unmarshal(msg.Value, &rec); err != nil {
		return domain.RawRecord{}, fmt.Errorf("%w: decode %s/%d@%d: %w",
			domain.ErrDataUnavailable, msg.Topic, msg.Partition, msg.Offset, err)
	}
	return rec, nil
}
