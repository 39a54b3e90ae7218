// Package kpartition defines how elements travel along an edge between two
// operators.
package kpartition

import (
	"errors"
	"fmt"

	"github.com/birdayz/kflow/ktype"
)

// Kind identifies a partitioner variant.
type Kind int

const (
	KindForward Kind = iota
	KindRebalance
	KindRescale
	KindShuffle
	KindBroadcast
	KindGlobal
	KindKeyGroup
	KindCustom
)

func (k Kind) String() string {
	switch k {
	case KindForward:
		return "FORWARD"
	case KindRebalance:
		return "REBALANCE"
	case KindRescale:
		return "RESCALE"
	case KindShuffle:
		return "SHUFFLE"
	case KindBroadcast:
		return "BROADCAST"
	case KindGlobal:
		return "GLOBAL"
	case KindKeyGroup:
		return "HASH"
	case KindCustom:
		return "CUSTOM"
	default:
		return "UNKNOWN"
	}
}

// KeySelector extracts the key of an element.
type KeySelector func(element any) (any, error)

// CustomFunc maps a key to the index of the target subtask.
type CustomFunc func(key any, numPartitions int) int

// Partitioner is one of the variants declared in this package. The set is
// closed.
type Partitioner interface {
	Kind() Kind
	String() string
	// IsPointwise reports whether each producer subtask talks to a fixed
	// subset of consumer subtasks instead of all of them.
	IsPointwise() bool

	isPartitioner()
}

// Forward sends elements to the consumer subtask with the same index.
type Forward struct{}

// Rebalance distributes elements round-robin over all consumer subtasks.
type Rebalance struct{}

// Rescale distributes elements round-robin over a local subset of consumer
// subtasks.
type Rescale struct{}

// Shuffle distributes elements uniformly at random.
type Shuffle struct{}

// Broadcast sends every element to every consumer subtask.
type Broadcast struct{}

// Global sends all elements to subtask 0.
type Global struct{}

// KeyGroup hashes the key of each element into one of MaxParallelism key
// groups and routes the group to the subtask owning it.
type KeyGroup struct {
	Selector KeySelector
	KeyType  *ktype.Descriptor
	// MaxParallelism is the number of key groups. Zero means the consumer's
	// current max parallelism, see ResolveKeyGroups.
	MaxParallelism int
}

// Custom routes elements with a user function over the selected key. It does
// not create keyed state.
type Custom struct {
	Func     CustomFunc
	Selector KeySelector
}

func (Forward) Kind() Kind   { return KindForward }
func (Rebalance) Kind() Kind { return KindRebalance }
func (Rescale) Kind() Kind   { return KindRescale }
func (Shuffle) Kind() Kind   { return KindShuffle }
func (Broadcast) Kind() Kind { return KindBroadcast }
func (Global) Kind() Kind    { return KindGlobal }
func (KeyGroup) Kind() Kind  { return KindKeyGroup }
func (Custom) Kind() Kind    { return KindCustom }

func (Forward) String() string   { return KindForward.String() }
func (Rebalance) String() string { return KindRebalance.String() }
func (Rescale) String() string   { return KindRescale.String() }
func (Shuffle) String() string   { return KindShuffle.String() }
func (Broadcast) String() string { return KindBroadcast.String() }
func (Global) String() string    { return KindGlobal.String() }
func (Custom) String() string    { return KindCustom.String() }

func (p KeyGroup) String() string {
	return fmt.Sprintf("%s(%s)", KindKeyGroup, p.KeyType)
}

func (Forward) IsPointwise() bool   { return true }
func (Rebalance) IsPointwise() bool { return false }
func (Rescale) IsPointwise() bool   { return true }
func (Shuffle) IsPointwise() bool   { return false }
func (Broadcast) IsPointwise() bool { return false }
func (Global) IsPointwise() bool    { return false }
func (KeyGroup) IsPointwise() bool  { return false }
func (Custom) IsPointwise() bool    { return false }

func (Forward) isPartitioner()   {}
func (Rebalance) isPartitioner() {}
func (Rescale) isPartitioner()   {}
func (Shuffle) isPartitioner()   {}
func (Broadcast) isPartitioner() {}
func (Global) isPartitioner()    {}
func (KeyGroup) isPartitioner()  {}
func (Custom) isPartitioner()    {}

var (
	// ErrParallelismMismatch is returned when a pointwise partitioner is asked
	// to connect operators of different parallelism.
	ErrParallelismMismatch = errors.New("partitioner does not allow a change of parallelism")
	// ErrInvalidPartitioner is returned for incomplete partitioner arguments.
	ErrInvalidPartitioner = errors.New("invalid partitioner")
)

// NewKeyGroup returns a key-group partitioner after validating the key type.
// The error wraps ktype.ErrKeyRejected if the key type is unsound.
func NewKeyGroup(selector KeySelector, keyType *ktype.Descriptor) (KeyGroup, error) {
	if selector == nil {
		return KeyGroup{}, fmt.Errorf("%w: key selector is nil", ErrInvalidPartitioner)
	}
	if err := ktype.Validate(keyType); err != nil {
		return KeyGroup{}, err
	}
	return KeyGroup{Selector: selector, KeyType: keyType}, nil
}

// NewCustom returns a custom partitioner. The key type is not validated.
func NewCustom(fn CustomFunc, selector KeySelector) (Custom, error) {
	if fn == nil {
		return Custom{}, fmt.Errorf("%w: partition function is nil", ErrInvalidPartitioner)
	}
	if selector == nil {
		return Custom{}, fmt.Errorf("%w: key selector is nil", ErrInvalidPartitioner)
	}
	return Custom{Func: fn, Selector: selector}, nil
}

// Endpoints describes the two operators an edge connects at the time the
// edge is created.
type Endpoints struct {
	ProducerParallelism int
	ConsumerParallelism int
}

// Select decides the partitioner of a new edge. requested is what the
// producing stream handle carries; nil asks for the default rule: Forward
// between operators of equal parallelism, Rebalance otherwise.
func Select(requested Partitioner, ep Endpoints) (Partitioner, error) {
	switch p := requested.(type) {
	case nil:
		if ep.ProducerParallelism == ep.ConsumerParallelism {
			return Forward{}, nil
		}
		return Rebalance{}, nil
	case Forward:
		if ep.ProducerParallelism != ep.ConsumerParallelism {
			return nil, fmt.Errorf("%w: %s from parallelism %d to %d",
				ErrParallelismMismatch, p, ep.ProducerParallelism, ep.ConsumerParallelism)
		}
		return p, nil
	default:
		return requested, nil
	}
}

// ResolveKeyGroups returns p with the key-group count of a KeyGroup that
// follows its consumer filled in. Every other partitioner, and a KeyGroup
// with an explicit count, is returned unchanged.
func ResolveKeyGroups(p Partitioner, consumerMaxParallelism int) Partitioner {
	kg, ok := p.(KeyGroup)
	if !ok || kg.MaxParallelism != 0 {
		return p
	}
	kg.MaxParallelism = consumerMaxParallelism
	return kg
}

// KeyMaterial returns the selector and key type of a key-group partitioner.
// ok is false for every other variant.
func KeyMaterial(p Partitioner) (selector KeySelector, keyType *ktype.Descriptor, ok bool) {
	kg, ok := p.(KeyGroup)
	if !ok {
		return nil, nil, false
	}
	return kg.Selector, kg.KeyType, true
}
