package contextmgr

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"

	"contextllm-be/pkg/vectorstore"
)

// TopK is the number of similarity-index fragments appended to the
// retrieved context on every extraction.
const TopK = 3

// IngestDispatcher hands an ingestion record to the background queue.
// Publishing must not block on embedding or storage work.
type IngestDispatcher interface {
	PublishIngest(callerId, document string) error
}

// Manager owns the short-term conversation memory for one caller: the
// most recent exchange, kept in process, plus retrieval and ingestion
// against the similarity index.
//
// The exchange cache is updated synchronously after a successful
// generation so the next call in the same process sees it even when the
// asynchronous index upsert has not completed yet. That ordering
// guarantee is why the cache exists separately from the index.
type Manager struct {
	callerId   string
	index      vectorstore.SimilarityIndex
	dispatcher IngestDispatcher
	logger     *log.Logger

	mu         sync.Mutex
	prevPrompt string
	prevOutput string
}

func NewManager(callerId string, index vectorstore.SimilarityIndex, dispatcher IngestDispatcher, logger *log.Logger) *Manager {
	return &Manager{
		callerId:   callerId,
		index:      index,
		dispatcher: dispatcher,
		logger:     logger,
	}
}

// ExtractContext builds the retrieved-context block for a prompt: the
// cached previous exchange first, verbatim, then the top-K most similar
// stored fragments in the index's ranking order. Index failures degrade
// to cache-only context.
func (m *Manager) ExtractContext(ctx context.Context, prompt string) string {
	var parts []string

	prevPrompt, prevOutput := m.Exchange()
	if prevPrompt != "" || prevOutput != "" {
		parts = append(parts, fmt.Sprintf("Previous conversation: User: %s\nAssistant: %s", prevPrompt, prevOutput))
	}

	fragments, err := m.index.Query(ctx, m.callerId, prompt, TopK)
	if err != nil {
		m.logger.Printf("[WARN] Similarity index query failed, using only previous exchange: %v", err)
		return strings.Join(parts, "\n")
	}
	for _, fragment := range fragments {
		parts = append(parts, fragment.Text)
	}

	return strings.Join(parts, "\n")
}

// Ingest dispatches a text unit to the background ingestion queue.
// Best-effort, at-most-once: failures are logged and never retried.
func (m *Manager) Ingest(document string) {
	if document == "" {
		return
	}
	if err := m.dispatcher.PublishIngest(m.callerId, document); err != nil {
		m.logger.Printf("[ERROR] Failed to dispatch ingestion for caller %s: %v", m.callerId, err)
	}
}

// SetExchange records the latest successful exchange. Called in-process,
// immediately after generation, before any ingestion completes.
func (m *Manager) SetExchange(prompt, output string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.prevPrompt = prompt
	m.prevOutput = output
}

// Exchange returns the cached previous exchange, empty strings if none
func (m *Manager) Exchange() (prompt, output string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.prevPrompt, m.prevOutput
}

// Reset clears the cached exchange. The similarity index is long-term
// memory and is left alone.
func (m *Manager) Reset() {
	m.SetExchange("", "")
}
