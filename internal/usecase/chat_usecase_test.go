package usecase

import (
	"context"
	"errors"
	"testing"

	"rag-gateway/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClassifier struct {
	intent domain.QueryIntent
	err    error
}

func (f *fakeClassifier) Classify(context.Context, string) (domain.QueryIntent, error) {
	return f.intent, f.err
}

type fakeRetriever struct {
	out   *RetrieveContextOutput
	err   error
	calls int
	input RetrieveContextInput
}

func (f *fakeRetriever) Execute(_ context.Context, input RetrieveContextInput) (*RetrieveContextOutput, error) {
	f.calls++
	f.input = input
	return f.out, f.err
}

type fakeSports struct {
	items []domain.RetrievedItem
	calls int
}

func (f *fakeSports) Execute(context.Context, domain.QueryIntent, string) []domain.RetrievedItem {
	f.calls++
	return f.items
}

type fakeLLM struct {
	answer    string
	genErr    error
	chunks    []string
	streamErr error

	systemPrompt string
}

func (f *fakeLLM) Generate(_ context.Context, system string, _ string, _ domain.GenerateOptions) (string, error) {
	f.systemPrompt = system
	return f.answer, f.genErr
}

func (f *fakeLLM) GenerateStream(context.Context, string, string, domain.GenerateOptions) (<-chan string, <-chan error, error) {
	if f.streamErr != nil {
		return nil, nil, f.streamErr
	}
	chunks := make(chan string, len(f.chunks))
	errs := make(chan error, 1)
	for _, c := range f.chunks {
		chunks <- c
	}
	close(chunks)
	close(errs)
	return chunks, errs, nil
}

func newChatFixture(classifier *fakeClassifier, retriever *fakeRetriever, sports *fakeSports, llm *fakeLLM) ChatUsecase {
	return NewChatUsecase(classifier, retriever, sports, llm, testLogger(), 5, 0.3)
}

func TestChat_Execute_GeneralPath(t *testing.T) {
	retriever := &fakeRetriever{out: &RetrieveContextOutput{Items: []domain.RetrievedItem{docItem("a", 0.8)}}}
	sports := &fakeSports{}
	u := newChatFixture(
		&fakeClassifier{intent: domain.GeneralQueryIntent()},
		retriever, sports,
		&fakeLLM{answer: "the answer"},
	)

	out, err := u.Execute(context.Background(), ChatInput{Query: "what is in my docs?"})

	require.NoError(t, err)
	assert.Equal(t, "the answer", out.Answer)
	assert.NotEmpty(t, out.SessionID)
	require.Len(t, out.Sources, 1)
	assert.Equal(t, "document", out.Sources[0].Type)
	assert.Equal(t, 0, sports.calls)
	assert.Equal(t, 1, retriever.calls)
}

func TestChat_Execute_PredictionPathSkipsDocumentRetrieval(t *testing.T) {
	sports := &fakeSports{items: []domain.RetrievedItem{{
		ID: "game:1", Content: "odds", Similarity: 0.9, SourceType: domain.SourceSportsData,
	}}}
	retriever := &fakeRetriever{out: &RetrieveContextOutput{}}
	u := newChatFixture(
		&fakeClassifier{intent: domain.QueryIntent{
			Intent: domain.IntentPrediction, Sport: "nba", Teams: []string{"Lakers", "Celtics"},
		}},
		retriever,
		sports,
		&fakeLLM{answer: "analysis"},
	)

	out, err := u.Execute(context.Background(), ChatInput{Query: "lakers vs celtics tonight?"})

	require.NoError(t, err)
	assert.Equal(t, 1, sports.calls)
	assert.Equal(t, 0, retriever.calls)
	require.Len(t, out.Sources, 1)
	assert.Equal(t, "sports_data", out.Sources[0].Type)
}

func TestChat_Execute_PredictionOptionsShapePrompt(t *testing.T) {
	llm := &fakeLLM{answer: "analysis"}
	u := newChatFixture(
		&fakeClassifier{intent: domain.QueryIntent{
			Intent: domain.IntentPrediction, Sport: "nba", Teams: []string{"Lakers"},
		}},
		&fakeRetriever{out: &RetrieveContextOutput{}},
		&fakeSports{},
		llm,
	)

	_, err := u.Execute(context.Background(), ChatInput{
		Query:           "lakers tonight?",
		PredictionType:  "winner",
		ConfidenceLevel: true,
	})

	require.NoError(t, err)
	assert.Contains(t, llm.systemPrompt, "winner prediction")
	assert.Contains(t, llm.systemPrompt, "confidence score")
}

func TestChat_Execute_WebSearchFlagReachesRetriever(t *testing.T) {
	retriever := &fakeRetriever{out: &RetrieveContextOutput{}}
	u := newChatFixture(
		&fakeClassifier{intent: domain.GeneralQueryIntent()},
		retriever,
		&fakeSports{},
		&fakeLLM{answer: "ok"},
	)

	_, err := u.Execute(context.Background(), ChatInput{Query: "latest news?", UseWebSearch: true})

	require.NoError(t, err)
	require.Equal(t, 1, retriever.calls)
	assert.True(t, retriever.input.AllowWebSearch)
}

func TestChat_Execute_ClassifierFailureFallsBackToGeneral(t *testing.T) {
	sports := &fakeSports{}
	u := newChatFixture(
		&fakeClassifier{err: errors.New("classifier down")},
		&fakeRetriever{out: &RetrieveContextOutput{}},
		sports,
		&fakeLLM{answer: "still answered"},
	)

	out, err := u.Execute(context.Background(), ChatInput{Query: "lakers game tonight?"})

	require.NoError(t, err)
	assert.Equal(t, "still answered", out.Answer)
	assert.Equal(t, domain.IntentGeneralQuery, out.Intent.Intent)
	assert.Equal(t, 0, sports.calls)
}

func TestChat_Execute_RetrievalFailureStillAnswers(t *testing.T) {
	u := newChatFixture(
		&fakeClassifier{intent: domain.GeneralQueryIntent()},
		&fakeRetriever{err: errors.New("store down")},
		&fakeSports{},
		&fakeLLM{answer: "unaided answer"},
	)

	out, err := u.Execute(context.Background(), ChatInput{Query: "anything"})

	require.NoError(t, err)
	assert.Equal(t, "unaided answer", out.Answer)
	assert.Empty(t, out.Sources)
}

func TestChat_Execute_EmptyQuery(t *testing.T) {
	u := newChatFixture(&fakeClassifier{}, &fakeRetriever{}, &fakeSports{}, &fakeLLM{})

	_, err := u.Execute(context.Background(), ChatInput{Query: "   "})

	assert.Error(t, err)
}

func TestChat_Stream_EmitsMetaDeltasDone(t *testing.T) {
	u := newChatFixture(
		&fakeClassifier{intent: domain.GeneralQueryIntent()},
		&fakeRetriever{out: &RetrieveContextOutput{Items: []domain.RetrievedItem{docItem("a", 0.8)}}},
		&fakeSports{},
		&fakeLLM{chunks: []string{"Hel", "lo"}},
	)

	var kinds []StreamEventKind
	var answer string
	for ev := range u.Stream(context.Background(), ChatInput{Query: "q", SessionID: "sess-1"}) {
		kinds = append(kinds, ev.Kind)
		switch ev.Kind {
		case StreamEventKindMeta:
			meta := ev.Payload.(StreamMeta)
			assert.Equal(t, "sess-1", meta.SessionID)
			assert.Len(t, meta.Sources, 1)
		case StreamEventKindDone:
			answer = ev.Payload.(*ChatOutput).Answer
		}
	}

	assert.Equal(t, []StreamEventKind{
		StreamEventKindMeta, StreamEventKindDelta, StreamEventKindDelta, StreamEventKindDone,
	}, kinds)
	assert.Equal(t, "Hello", answer)
}

func TestChat_Stream_SetupFailureEmitsFallback(t *testing.T) {
	u := newChatFixture(
		&fakeClassifier{intent: domain.GeneralQueryIntent()},
		&fakeRetriever{out: &RetrieveContextOutput{}},
		&fakeSports{},
		&fakeLLM{streamErr: errors.New("model cold")},
	)

	var kinds []StreamEventKind
	for ev := range u.Stream(context.Background(), ChatInput{Query: "q"}) {
		kinds = append(kinds, ev.Kind)
	}

	assert.Equal(t, []StreamEventKind{StreamEventKindMeta, StreamEventKindFallback}, kinds)
}
