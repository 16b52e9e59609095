// FILE: internal/service/consumer_service.go
package service

import (
	"context"
	"encoding/json"

	"presto-copilot-be/internal/constant"
	"presto-copilot-be/internal/pkg/logger"
	"presto-copilot-be/pkg/admin/usage"
	"presto-copilot-be/pkg/events"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

type IConsumerService interface {
	Consume(ctx context.Context) error
}

type consumerService struct {
	pubSub    *gochannel.GoChannel
	topicName string
	tracker   *usage.Tracker
	logger    logger.ILogger
}

func NewConsumerService(
	pubSub *gochannel.GoChannel,
	topicName string,
	tracker *usage.Tracker,
	logger logger.ILogger,
) IConsumerService {
	return &consumerService{
		pubSub:    pubSub,
		topicName: topicName,
		tracker:   tracker,
		logger:    logger,
	}
}

func (cs *consumerService) Consume(ctx context.Context) error {
	messages, err := cs.pubSub.Subscribe(ctx, cs.topicName)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			cs.processMessage(msg)
		}
	}()

	return nil
}

func (cs *consumerService) processMessage(msg *message.Message) {
	if typ := msg.Metadata.Get(metadataEventType); typ != "" && typ != events.TypeQueryCompleted {
		msg.Ack() // not ours, drop it
		return
	}

	var event events.QueryCompletedEvent
	if err := json.Unmarshal(msg.Payload, &event); err != nil {
		cs.logger.Error(constant.LogModuleUsage, "Failed to unmarshal query event", map[string]interface{}{
			"message_id": msg.UUID,
			"error":      err.Error(),
		})
		msg.Ack() // Ack invalid messages to prevent infinite retry
		return
	}

	cs.tracker.Record(event.StoreKey, event.Model, event.Outcome, event.Attempts)

	cs.logger.Debug(constant.LogModuleUsage, "Query usage recorded", map[string]interface{}{
		"session_id": event.SessionID,
		"store_key":  event.StoreKey,
		"model":      event.Model,
		"outcome":    event.Outcome,
		"attempts":   event.Attempts,
	})

	msg.Ack()
}
