// Copyright (c) 2025 the Votechain authors.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package event

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/votechain/server/models"
)

type KafkaPublisher struct {
	writer *kafka.Writer
}

// NewKafkaPublisher builds a writer keyed by election id, so all events
// for one election land on the same partition in cast order.
func NewKafkaPublisher(brokers []string, topic string) *KafkaPublisher {
	w := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireAll,
		BatchTimeout: 10 * time.Millisecond,
		MaxAttempts:  5,
		Compression:  kafka.Snappy,
	}

	return &KafkaPublisher{writer: w}
}

func (kp *KafkaPublisher) Publish(ctx context.Context, vote models.VoteEvent) error {
	vb, err := json.Marshal(vote)
	if err != nil {
		return fmt.Errorf("failed to marshal vote event: %v", err)
	}

	msg := kafka.Message{
		Key:   []byte(strconv.FormatInt(vote.ElectionID, 10)),
		Value: vb,
	}

	if err := kp.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("failed to write vote event to kafka: %v", err)
	}

	return nil
}

func (kp *KafkaPublisher) Close() error {
	if err := kp.writer.Close(); err != nil {
		return fmt.Errorf("failed to close kafka writer: %v", err)
	}
	return nil
}
