package service

import (
	"context"
	"encoding/json"

	"ai-consultancy-be/internal/mapper"
	"ai-consultancy-be/internal/pkg/logger"
	"ai-consultancy-be/internal/repository/specification"
	"ai-consultancy-be/internal/repository/unitofwork"
	"ai-consultancy-be/internal/websocket"
	"ai-consultancy-be/pkg/events"
	pktNats "ai-consultancy-be/pkg/nats"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

type IConsumerService interface {
	Consume(ctx context.Context) error
}

// consumerService is the fan-out half of the change feed. It re-reads
// each changed session from the store so watchers always receive the
// durable state, never an in-flight value.
type consumerService struct {
	pubSub         *gochannel.GoChannel
	topicName      string
	uowFactory     unitofwork.RepositoryFactory
	hub            *websocket.Hub
	eventPublisher *pktNats.Publisher
	sessionMapper  *mapper.SessionMapper
	logger         logger.ILogger
}

func NewConsumerService(
	pubSub *gochannel.GoChannel,
	topicName string,
	uowFactory unitofwork.RepositoryFactory,
	hub *websocket.Hub,
	eventPublisher *pktNats.Publisher,
	log logger.ILogger,
) IConsumerService {
	return &consumerService{
		pubSub:         pubSub,
		topicName:      topicName,
		uowFactory:     uowFactory,
		hub:            hub,
		eventPublisher: eventPublisher,
		sessionMapper:  mapper.NewSessionMapper(),
		logger:         log,
	}
}

func (cs *consumerService) Consume(ctx context.Context) error {
	messages, err := cs.pubSub.Subscribe(ctx, cs.topicName)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			cs.processMessage(ctx, msg)
		}
	}()

	return nil
}

func (cs *consumerService) processMessage(ctx context.Context, msg *message.Message) {
	var payload SessionChangedMessage
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		cs.logger.Error("Consumer", "Failed to unmarshal change message", map[string]interface{}{
			"error": err.Error(),
		})
		// Malformed payloads are acked to stop redelivery.
		msg.Ack()
		return
	}

	uow := cs.uowFactory.NewUnitOfWork(ctx)
	session, err := uow.ConsultSessionRepository().FindOne(ctx, specification.ByID{ID: payload.SessionId})
	if err != nil {
		cs.logger.Error("Consumer", "Failed to load changed session", map[string]interface{}{
			"session_id": payload.SessionId,
			"error":      err.Error(),
		})
		msg.Nack()
		return
	}
	if session == nil {
		// Deleted between publish and consume.
		msg.Ack()
		return
	}

	cs.hub.Send(session.Id, cs.sessionMapper.ToResponse(session))

	if cs.eventPublisher != nil {
		evt := events.NewSessionUpdated(session.Id.String(), session.UserId.String(), string(session.CurrentState))
		if err := cs.eventPublisher.Publish(ctx, evt); err != nil {
			cs.logger.Warn("Consumer", "Failed to mirror event to NATS", map[string]interface{}{
				"session_id": session.Id,
				"error":      err.Error(),
			})
		}
	}

	msg.Ack()
}
