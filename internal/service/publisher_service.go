package service

import (
	"context"
	"encoding/json"

	"contextllm-be/internal/dto"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

type IPublisherService interface {
	Publish(ctx context.Context, payload []byte) error
	PublishIngest(callerId, document string) error
}

type publisherService struct {
	topicName string
	pubSub    *gochannel.GoChannel
}

func NewPublisherService(topicName string, pubSub *gochannel.GoChannel) IPublisherService {
	return &publisherService{
		topicName: topicName,
		pubSub:    pubSub,
	}
}

func (p *publisherService) Publish(ctx context.Context, payload []byte) error {
	msg := message.NewMessage(watermill.NewUUID(), payload)
	msg.SetContext(ctx)
	return p.pubSub.Publish(p.topicName, msg)
}

// PublishIngest wraps a caller's document into an ingestion message.
// Satisfies contextmgr.IngestDispatcher.
func (p *publisherService) PublishIngest(callerId, document string) error {
	payload := dto.PublishIngestMessage{
		CallerId: callerId,
		Document: document,
	}
	payloadJson, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	return p.Publish(context.Background(), payloadJson)
}
