package notify

import (
	"context"
	"encoding/json"
	"time"

	"github.com/IBM/sarama"
)

const kafkaKey = "orders"

// KafkaRelay produces one Event per hub signal to a Kafka topic.
type KafkaRelay struct {
	producer sarama.SyncProducer
	topic    string
	now      func() time.Time
}

func NewKafkaRelay(brokers []string, topic string) (*KafkaRelay, error) {
	cfg := sarama.NewConfig()
	cfg.Producer.Return.Successes = true
	cfg.Producer.RequiredAcks = sarama.WaitForAll
	cfg.Producer.Retry.Max = 5

	producer, err := sarama.NewSyncProducer(brokers, cfg)
	if err != nil {
		return nil, err
	}
	return NewKafkaRelayWithProducer(producer, topic), nil
}

func NewKafkaRelayWithProducer(p sarama.SyncProducer, topic string) *KafkaRelay {
	return &KafkaRelay{producer: p, topic: topic, now: time.Now}
}

func (k *KafkaRelay) Notify(context.Context) error {
	b, err := json.Marshal(newEvent(k.now()))
	if err != nil {
		return err
	}

	_, _, err = k.producer.SendMessage(&sarama.ProducerMessage{
		Topic: k.topic,
		Key:   sarama.StringEncoder(kafkaKey),
		Value: sarama.ByteEncoder(b),
	})
	return err
}

func (k *KafkaRelay) Close() error {
	return k.producer.Close()
}
