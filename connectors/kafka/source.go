package kafka

import (
	"errors"
	"fmt"
	"strings"

	"github.com/twmb/franz-go/pkg/kgo"

	"github.com/birdayz/kflow/kserde"
)

var ErrInvalidConfig = errors.New("invalid kafka connector config")

// RecordError wraps a failure to decode a record with its coordinates.
type RecordError struct {
	Topic     string
	Partition int32
	Offset    int64
	Err       error
}

func (e *RecordError) Error() string {
	return fmt.Sprintf("record [topic=%s, partition=%d, offset=%d]: %v", e.Topic, e.Partition, e.Offset, e.Err)
}

func (e *RecordError) Unwrap() error {
	return e.Err
}

// Source consumes one or more topics. It is unbounded.
type Source[T any] struct {
	topics []string
	value  kserde.Deserializer[T]
	config config
}

func NewSource[T any](topics []string, value kserde.Deserializer[T], opts ...Option) (*Source[T], error) {
	if len(topics) == 0 {
		return nil, fmt.Errorf("%w: no topics", ErrInvalidConfig)
	}
	for _, t := range topics {
		if t == "" {
			return nil, fmt.Errorf("%w: empty topic name", ErrInvalidConfig)
		}
	}
	if value == nil {
		return nil, fmt.Errorf("%w: deserializer is nil", ErrInvalidConfig)
	}
	return &Source[T]{
		topics: append([]string(nil), topics...),
		value:  value,
		config: newConfig(opts),
	}, nil
}

func (s *Source[T]) Name() string {
	return "Kafka: " + strings.Join(s.topics, ",")
}

func (s *Source[T]) Bounded() bool { return false }

func (s *Source[T]) Topics() []string {
	return append([]string(nil), s.topics...)
}

func (s *Source[T]) ConsumerGroup() string { return s.config.group }

// ClientOptions returns the franz-go options a consuming client is built
// with. Pass-through options come last and win.
func (s *Source[T]) ClientOptions() []kgo.Opt {
	opts := s.config.clientOptions(kgo.ConsumeTopics(s.topics...))
	if s.config.group != "" {
		opts = append(opts, kgo.ConsumerGroup(s.config.group), kgo.DisableAutoCommit())
	}
	if s.config.readCommitted {
		opts = append(opts, kgo.FetchIsolationLevel(kgo.ReadCommitted()))
	}
	return append(opts, s.config.opts...)
}

func (s *Source[T]) NewClient() (*kgo.Client, error) {
	client, err := kgo.NewClient(s.ClientOptions()...)
	if err != nil {
		return nil, fmt.Errorf("failed to create consumer for %s: %w", s.Name(), err)
	}
	return client, nil
}

// Decode deserializes the value of a fetched record.
func (s *Source[T]) Decode(r *kgo.Record) (T, error) {
	v, err := s.value(r.Value)
	if err != nil {
		var zero T
		return zero, &RecordError{Topic: r.Topic, Partition: r.Partition, Offset: r.Offset, Err: err}
	}
	return v, nil
}
