package kafka

import (
	"github.com/twmb/franz-go/pkg/kgo"

	"github.com/birdayz/kflow/kserde"
)

// Option configures a Source or a Sink. Options that only concern one side
// are ignored by the other.
type Option func(*config)

type config struct {
	brokers []string
	opts    []kgo.Opt

	group         string
	readCommitted bool

	transactionalID string
	key             func(any) ([]byte, error)
}

func newConfig(opts []Option) config {
	var c config
	for _, opt := range opts {
		opt(&c)
	}
	return c
}

var WithBrokers = func(brokers ...string) Option {
	return func(c *config) {
		c.brokers = append(c.brokers, brokers...)
	}
}

// WithClientOpts passes raw franz-go options through to every client the
// connector creates. They are applied last.
var WithClientOpts = func(opts ...kgo.Opt) Option {
	return func(c *config) {
		c.opts = append(c.opts, opts...)
	}
}

var WithConsumerGroup = func(group string) Option {
	return func(c *config) {
		c.group = group
	}
}

// WithReadCommitted only consumes records of committed transactions.
var WithReadCommitted = func() Option {
	return func(c *config) {
		c.readCommitted = true
	}
}

var WithTransactionalID = func(id string) Option {
	return func(c *config) {
		c.transactionalID = id
	}
}

// WithRecordKey derives the record key of produced records from each
// element. Records with equal keys land in the same partition.
func WithRecordKey[T, K any](selector func(T) K, serializer kserde.Serializer[K]) Option {
	return func(c *config) {
		c.key = func(v any) ([]byte, error) {
			return serializer(selector(v.(T)))
		}
	}
}

func (c config) clientOptions(first ...kgo.Opt) []kgo.Opt {
	opts := first
	if len(c.brokers) > 0 {
		opts = append(opts, kgo.SeedBrokers(c.brokers...))
	}
	return opts
}
