package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/IBM/sarama"

	"courier-dispatch/internal/domain"
	"courier-dispatch/internal/gateway/notify"
	"courier-dispatch/internal/logx"
)

var newSyncProducer = sarama.NewSyncProducer

// OfferProducer publishes offer notifications to the offers topic,
// keyed by courier so one courier's offers stay ordered.
type OfferProducer struct {
	producer sarama.SyncProducer
	topic    string
	logger   logx.Logger
}

// NewOfferProducer creates a producer. It returns nil, nil when Kafka is not configured.
func NewOfferProducer(logger logx.Logger, brokers []string, topic string) (*OfferProducer, error) {
	if len(brokers) == 0 || strings.TrimSpace(topic) == "" {
		return nil, nil
	}

	cfg := sarama.NewConfig()
	cfg.Producer.RequiredAcks = sarama.WaitForAll
	cfg.Producer.Retry.Max = 3
	cfg.Producer.Return.Successes = true
	cfg.Producer.Compression = sarama.CompressionSnappy

	p, err := newSyncProducer(brokers, cfg)
	if err != nil {
		return nil, fmt.Errorf("create kafka producer: %w", err)
	}
	return newOfferProducer(p, topic, logger), nil
}

func newOfferProducer(p sarama.SyncProducer, topic string, logger logx.Logger) *OfferProducer {
	if logger == nil {
		logger = logx.Nop()
	}
	return &OfferProducer{producer: p, topic: topic, logger: logger}
}

// Notify publishes n. Broker-side transient failures are marked temporary.
func (p *OfferProducer) Notify(ctx context.Context, n domain.OfferNotice) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := json.Marshal(OfferFromDomain(n))
	if err != nil {
		return fmt.Errorf("marshal offer: %w", err)
	}

	msg := &sarama.ProducerMessage{
		Topic: p.topic,
		Key:   sarama.StringEncoder(strconv.FormatInt(n.CourierID, 10)),
		Value: sarama.ByteEncoder(data),
		Headers: []sarama.RecordHeader{
			{Key: []byte("event_type"), Value: []byte("order_offered")},
			{Key: []byte("event_id"), Value: []byte(n.EventID)},
			{Key: []byte("timestamp"), Value: []byte(n.CreatedAt.Format(time.RFC3339))},
		},
	}

	partition, offset, err := p.producer.SendMessage(msg)
	if err != nil {
		err = fmt.Errorf("send to %s: %w", p.topic, err)
		if temporary(err) {
			return notify.Temporary(err)
		}
		return err
	}

	p.logger.Debug("offer published",
		logx.String("topic", p.topic),
		logx.Int("partition", int(partition)),
		logx.Int64("offset", offset),
		logx.String("event_id", n.EventID),
	)
	return nil
}

// Close closes the underlying producer.
func (p *OfferProducer) Close() error {
	if p == nil {
		return nil
	}
	return p.producer.Close()
}

func temporary(err error) bool {
	for _, target := range []error{
		sarama.ErrOutOfBrokers,
		sarama.ErrNotConnected,
		sarama.ErrRequestTimedOut,
		sarama.ErrBrokerNotAvailable,
		sarama.ErrLeaderNotAvailable,
		sarama.ErrNotLeaderForPartition,
		sarama.ErrNotEnoughReplicas,
		sarama.ErrNotEnoughReplicasAfterAppend,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
