// Package kafka describes Kafka topics as sources and sinks of a kflow
// topology.
//
// Source and Sink are descriptors: building a topology never opens a
// connection. They carry the franz-go client options and the codecs the
// runtime needs, and create clients on demand.
//
//	src, err := kafka.NewSource([]string{"clicks"}, kserde.JSON[Click]().Deserializer,
//		kafka.WithBrokers("localhost:9092"),
//		kafka.WithConsumerGroup("click-counter"),
//	)
//	clicks, err := kflow.FromSource[Click](env, src)
package kafka
