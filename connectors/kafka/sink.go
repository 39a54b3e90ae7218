package kafka

import (
	"fmt"

	"github.com/twmb/franz-go/pkg/kgo"

	"github.com/birdayz/kflow/kserde"
)

// Sink produces every element to one topic.
type Sink[T any] struct {
	topic  string
	value  kserde.Serializer[T]
	config config
}

func NewSink[T any](topic string, value kserde.Serializer[T], opts ...Option) (*Sink[T], error) {
	if topic == "" {
		return nil, fmt.Errorf("%w: empty topic name", ErrInvalidConfig)
	}
	if value == nil {
		return nil, fmt.Errorf("%w: serializer is nil", ErrInvalidConfig)
	}
	return &Sink[T]{topic: topic, value: value, config: newConfig(opts)}, nil
}

func (s *Sink[T]) Name() string {
	return "Kafka: " + s.topic
}

func (s *Sink[T]) Topic() string { return s.topic }

func (s *Sink[T]) ClientOptions() []kgo.Opt {
	opts := s.config.clientOptions(kgo.DefaultProduceTopic(s.topic))
	if s.config.transactionalID != "" {
		opts = append(opts, kgo.TransactionalID(s.config.transactionalID))
	}
	return append(opts, s.config.opts...)
}

func (s *Sink[T]) NewClient() (*kgo.Client, error) {
	client, err := kgo.NewClient(s.ClientOptions()...)
	if err != nil {
		return nil, fmt.Errorf("failed to create producer for %s: %w", s.Name(), err)
	}
	return client, nil
}

// Record encodes v into a record for the sink's topic.
func (s *Sink[T]) Record(v T) (*kgo.Record, error) {
	value, err := s.value(v)
	if err != nil {
		return nil, fmt.Errorf("failed to encode value for %s: %w", s.topic, err)
	}
	r := &kgo.Record{Topic: s.topic, Value: value}
	if s.config.key != nil {
		key, err := s.config.key(v)
		if err != nil {
			return nil, fmt.Errorf("failed to encode key for %s: %w", s.topic, err)
		}
		r.Key = key
	}
	return r, nil
}
