package service

import (
	"context"
	"encoding/json"
	"log"

	"contextllm-be/internal/dto"
	"contextllm-be/pkg/utils"
	"contextllm-be/pkg/vectorstore"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

type IConsumerService interface {
	Consume(ctx context.Context) error
}

type consumerService struct {
	pubSub    *gochannel.GoChannel
	topicName string
	index     vectorstore.SimilarityIndex
}

func NewConsumerService(
	pubSub *gochannel.GoChannel,
	topicName string,
	index vectorstore.SimilarityIndex,
) IConsumerService {
	return &consumerService{
		pubSub:    pubSub,
		topicName: topicName,
		index:     index,
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
	var payload dto.PublishIngestMessage
	err := json.Unmarshal(msg.Payload, &payload)
	if err != nil {
		log.Printf("[ERROR] Failed to unmarshal ingestion message: %v", err)
		msg.Ack() // Ack invalid messages to prevent infinite retry
		return
	}

	if payload.CallerId == "" || payload.Document == "" {
		log.Printf("[WARN] Dropping ingestion message with empty caller or document")
		msg.Ack()
		return
	}

	log.Printf("[INFO] Processing ingestion for caller %s (length: %d)", payload.CallerId, len(payload.Document))

	// ChunkSize: 1500 chars (approx 375 tokens) - Ultra safe for context limits
	// Overlap: 200 chars
	chunks := utils.SplitText(payload.Document, 1500, 200)

	if err := cs.index.Upsert(ctx, payload.CallerId, chunks); err != nil {
		log.Printf("[ERROR] Failed to upsert %d chunks for caller %s: %v", len(chunks), payload.CallerId, err)
		msg.Nack() // Nack for retriable errors
		return
	}

	log.Printf("[SUCCESS] Ingested %d chunks for caller %s", len(chunks), payload.CallerId)
	msg.Ack()
}
