// Package kflow builds the logical topology of a streaming dataflow job.
//
// A topology is built fluently from an Environment: sources create streams,
// transformations consume a stream and return a new one, sinks end it. Every
// call that creates an operator appends one node and its input edges to the
// environment's graph; calls that only change how data is routed (KeyBy,
// Union, Broadcast, ...) return virtual handles that are resolved when the
// next operator is attached.
//
//	env := kflow.MustNewEnvironment(kflow.WithDefaultParallelism(4))
//	lines := kflow.Must(kflow.FromSource[string](env, src))
//	words := kflow.Must(kflow.FlatMap(lines, kprocessor.FlatMap(strings.Fields)))
//	keyed := kflow.Must(kflow.KeyBy(words, func(w string) string { return w }))
//	counts := kflow.Must(kflow.RollingReduce(keyed, sum))
//	kflow.Must(kflow.Print(counts))
//
//	if err := env.Validate(); err != nil {
//		...
//	}
//	snapshot := env.Export()
//
// # Partitioning
//
// The partitioner of an edge is decided when the consuming operator is
// created and never changes afterwards. A handle without an explicit
// partitioner connects with Forward if producer and consumer have the same
// parallelism and with Rebalance otherwise. Keyed handles connect with a
// key-group partitioner.
//
// # Errors
//
// Failing calls leave the graph untouched and return an error wrapping one
// of ErrKeyRejected, ErrOperatorMismatch or ErrStructuralMisuse.
//
// IMPORTANT: an Environment and its handles are NOT safe for concurrent use.
package kflow
