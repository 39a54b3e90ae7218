package kflow

import (
	"errors"

	"go.uber.org/multierr"

	"github.com/birdayz/kflow/kgraph"
	"github.com/birdayz/kflow/ktype"
)

type opConfig struct {
	name           string
	description    string
	uid            string
	parallelism    int
	maxParallelism int
	resources      *kgraph.Resources
	outputType     *ktype.Descriptor
	err            error
}

// OpOption configures the operator a call creates.
type OpOption func(*opConfig)

// WithName overrides the operator name. Names are for display only.
var WithName = func(name string) OpOption {
	return func(c *opConfig) {
		c.name = name
	}
}

// WithDescription overrides the operator description.
var WithDescription = func(description string) OpOption {
	return func(c *opConfig) {
		c.description = description
	}
}

// WithUID sets a stable operator id.
var WithUID = func(uid string) OpOption {
	return func(c *opConfig) {
		if uid == "" {
			c.err = multierr.Append(c.err, errors.New("uid must not be empty"))
		}
		c.uid = uid
	}
}

// WithParallelism creates the operator with its own parallelism instead of
// the environment default. The partitioners of the operator's input edges
// are decided with it.
var WithParallelism = func(n int) OpOption {
	return func(c *opConfig) {
		if n < 1 {
			c.err = multierr.Append(c.err, errors.New("parallelism must be at least 1"))
		}
		c.parallelism = n
	}
}

// WithMaxParallelism creates the operator with its own key-group count.
var WithMaxParallelism = func(n int) OpOption {
	return func(c *opConfig) {
		c.maxParallelism = n
	}
}

// WithResources records the minimum and preferred resources of the
// operator.
var WithResources = func(minimum, preferred kgraph.ResourceSpec) OpOption {
	return func(c *opConfig) {
		c.resources = &kgraph.Resources{Min: minimum, Preferred: preferred}
	}
}

// WithOutputType overrides the type descriptor of the operator's output,
// e.g. when the Go type is an interface.
var WithOutputType = func(d *ktype.Descriptor) OpOption {
	return func(c *opConfig) {
		c.outputType = d
	}
}

type keyConfig struct {
	keyType *ktype.Descriptor
}

// KeyOption configures how a stream is keyed.
type KeyOption func(*keyConfig)

// WithKeyType overrides the key type descriptor derived from the selector's
// return type.
var WithKeyType = func(d *ktype.Descriptor) KeyOption {
	return func(c *keyConfig) {
		c.keyType = d
	}
}
