package dto

// PublishIngestMessage is the payload carried on the background
// ingestion topic. Document is the full text unit to embed; chunking
// happens consumer-side.
type PublishIngestMessage struct {
	CallerId string `json:"caller_id"`
	Document string `json:"document"`
}
