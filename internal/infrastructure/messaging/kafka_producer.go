package messaging

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"clinic-booking/config"

	"github.com/segmentio/kafka-go"
	"github.com/sirupsen/logrus"
)

const writeTimeout = 5 * time.Second

type kafkaProducer struct {
	writer *kafka.Writer
	log    *logrus.Logger
}

// NewKafkaProducer returns a publisher writing to cfg.Topic, or a no-op
// publisher when no broker is configured.
func NewKafkaProducer(cfg config.KafkaConfig, log *logrus.Logger) EventPublisher {
	if len(cfg.Brokers) == 0 {
		log.Info("Kafka brokers not configured, appointment events disabled")
		return NewNoopPublisher()
	}

	writer := &kafka.Writer{
		Addr:                   kafka.TCP(cfg.Brokers...),
		Topic:                  cfg.Topic,
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireOne,
		AllowAutoTopicCreation: true,
		WriteTimeout:           writeTimeout,
	}

	log.WithFields(logrus.Fields{"brokers": cfg.Brokers, "topic": cfg.Topic}).Info("Kafka producer initialized")
	return &kafkaProducer{writer: writer, log: log}
}

func (p *kafkaProducer) Publish(ctx context.Context, event AppointmentEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()

	// Keyed by appointment so one appointment's events stay ordered on a partition.
	msg := kafka.Message{
		Key:   []byte(strconv.FormatInt(event.AppointmentID, 10)),
		Value: payload,
		Time:  event.OccurredAt,
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("write message: %w", err)
	}

	p.log.Debugf("Published %s for appointment %d", event.Type, event.AppointmentID)
	return nil
}

func (p *kafkaProducer) Close() error {
	return p.writer.Close()
}
