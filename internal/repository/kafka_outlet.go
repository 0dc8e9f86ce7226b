package repository

import (
	"context"

	"PulseLab/internal/domain/models"
	"PulseLab/internal/domain/repository"
	pkgkafka "PulseLab/pkg/kafka"
)

// KafkaOutlet implements Outlet over Kafka: one topic per signal type,
// named after the upstream LSL stream identities. Subscribers see samples
// in publish order per topic; batch boundaries carry no meaning.
type KafkaOutlet struct {
	producer *pkgkafka.Producer
	topics   map[models.SignalType]string
}

// NewKafkaOutlet creates the per-signal outlet set. topicPrefix namespaces
// the stream topics (e.g. "pulselab" -> "pulselab.RRinterval").
func NewKafkaOutlet(producer *pkgkafka.Producer, topicPrefix string) repository.Outlet {
	topics := make(map[models.SignalType]string, len(models.SignalTypes))
	for _, sig := range models.SignalTypes {
		topics[sig] = topicPrefix + "." + string(sig)
	}
	return &KafkaOutlet{producer: producer, topics: topics}
}

// Topic returns the transport topic carrying one signal stream.
func (o *KafkaOutlet) Topic(sig models.SignalType) string { return o.topics[sig] }

func (o *KafkaOutlet) Publish(ctx context.Context, sig models.SignalType, s models.TimestampedSample) error {
	return o.producer.Publish(ctx, o.topics[sig], []byte(sig), outletMessage(sig, s))
}

func (o *KafkaOutlet) PublishBatch(ctx context.Context, sig models.SignalType, batch []models.TimestampedSample) error {
	if len(batch) == 0 {
		return nil
	}
	msgs := make([]pkgkafka.Message, len(batch))
	for i, s := range batch {
		msgs[i] = pkgkafka.Message{
			Key:   []byte(sig),
			Value: outletMessage(sig, s),
		}
	}
	return o.producer.PublishBatch(ctx, o.topics[sig], msgs)
}

func (o *KafkaOutlet) Close() error {
	if o.producer != nil {
		return o.producer.Close()
	}
	return nil
}

// outletMessage is the wire schema subscribers consume: resolved
// wall-clock time in unix milliseconds plus the scalar sample value.
func outletMessage(sig models.SignalType, s models.TimestampedSample) map[string]interface{} {
	return map[string]interface{}{
		"signal": string(sig),
		"t":      s.Timestamp.UnixMilli(),
		"v":      s.Sample.Value(),
	}
}
