package contextmgr

import (
	"context"
	"errors"
	"log"
	"os"
	"strings"
	"testing"

	"contextllm-be/pkg/vectorstore"
)

type fakeIndex struct {
	fragments []vectorstore.Fragment
	err       error
	lastQuery string
	lastTopK  int
}

func (f *fakeIndex) Upsert(ctx context.Context, callerId string, texts []string) error {
	return errors.New("not used")
}

func (f *fakeIndex) Query(ctx context.Context, callerId, query string, topK int) ([]vectorstore.Fragment, error) {
	f.lastQuery = query
	f.lastTopK = topK
	if f.err != nil {
		return nil, f.err
	}
	return f.fragments, nil
}

type fakeDispatcher struct {
	callerIds []string
	documents []string
	err       error
}

func (f *fakeDispatcher) PublishIngest(callerId, document string) error {
	f.callerIds = append(f.callerIds, callerId)
	f.documents = append(f.documents, document)
	return f.err
}

func testLogger() *log.Logger {
	return log.New(os.Stderr, "", 0)
}

func TestExtractContextOrdering(t *testing.T) {
	// The cached exchange comes first, verbatim; retrieved fragments
	// follow in the index's own ranking order.
	index := &fakeIndex{fragments: []vectorstore.Fragment{
		{Text: "fragment one", Score: 0.91},
		{Text: "fragment two", Score: 0.85},
		{Text: "fragment three", Score: 0.60},
	}}
	m := NewManager("caller-1", index, &fakeDispatcher{}, testLogger())
	m.SetExchange("what is pgvector", "A Postgres extension for vector similarity.")

	got := m.ExtractContext(context.Background(), "how do I query it")

	want := "Previous conversation: User: what is pgvector\nAssistant: A Postgres extension for vector similarity.\n" +
		"fragment one\nfragment two\nfragment three"
	if got != want {
		t.Errorf("context block:\n got %q\nwant %q", got, want)
	}
	if index.lastTopK != TopK {
		t.Errorf("topK = %d, want %d", index.lastTopK, TopK)
	}
	if index.lastQuery != "how do I query it" {
		t.Errorf("query = %q", index.lastQuery)
	}
}

func TestExtractContextNoExchange(t *testing.T) {
	index := &fakeIndex{fragments: []vectorstore.Fragment{{Text: "only fragment"}}}
	m := NewManager("caller-1", index, &fakeDispatcher{}, testLogger())

	got := m.ExtractContext(context.Background(), "anything")
	if got != "only fragment" {
		t.Errorf("context = %q, want the fragment alone", got)
	}
}

func TestExtractContextIndexFailure(t *testing.T) {
	// Index failures degrade to cache-only context instead of erroring.
	index := &fakeIndex{err: errors.New("connection refused")}
	m := NewManager("caller-1", index, &fakeDispatcher{}, testLogger())
	m.SetExchange("ping", "pong")

	got := m.ExtractContext(context.Background(), "anything")
	if got != "Previous conversation: User: ping\nAssistant: pong" {
		t.Errorf("context = %q", got)
	}
}

func TestSetExchangeImmediatelyVisible(t *testing.T) {
	index := &fakeIndex{}
	m := NewManager("caller-1", index, &fakeDispatcher{}, testLogger())

	m.SetExchange("first question", "first answer")
	got := m.ExtractContext(context.Background(), "second question")

	if !strings.Contains(got, "first question") || !strings.Contains(got, "first answer") {
		t.Errorf("previous exchange not visible to the immediately following call: %q", got)
	}
}

func TestIngestDispatch(t *testing.T) {
	dispatcher := &fakeDispatcher{}
	m := NewManager("caller-1", &fakeIndex{}, dispatcher, testLogger())

	m.Ingest("User: hi\nAssistant: hello")

	if len(dispatcher.documents) != 1 || dispatcher.documents[0] != "User: hi\nAssistant: hello" {
		t.Errorf("dispatched documents = %v", dispatcher.documents)
	}
	if dispatcher.callerIds[0] != "caller-1" {
		t.Errorf("caller id = %q", dispatcher.callerIds[0])
	}
}

func TestIngestSkipsEmpty(t *testing.T) {
	dispatcher := &fakeDispatcher{}
	m := NewManager("caller-1", &fakeIndex{}, dispatcher, testLogger())

	m.Ingest("")
	if len(dispatcher.documents) != 0 {
		t.Errorf("empty document should not dispatch, got %v", dispatcher.documents)
	}
}

func TestIngestFailureIsSilent(t *testing.T) {
	dispatcher := &fakeDispatcher{err: errors.New("channel closed")}
	m := NewManager("caller-1", &fakeIndex{}, dispatcher, testLogger())

	// Must not panic or surface the error to the caller.
	m.Ingest("some document")
}

func TestResetClearsOnlyExchange(t *testing.T) {
	index := &fakeIndex{fragments: []vectorstore.Fragment{{Text: "long-term memory"}}}
	m := NewManager("caller-1", index, &fakeDispatcher{}, testLogger())
	m.SetExchange("q", "a")

	m.Reset()

	got := m.ExtractContext(context.Background(), "anything")
	if got != "long-term memory" {
		t.Errorf("context after reset = %q, want index fragments only", got)
	}
}
