package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/futig/notes-backend/internal/entity"
)

type fakeLLM struct {
	structured func(req *entity.StructuredRequest) (json.RawMessage, error)
	text       func(req *entity.TextRequest) (string, error)
	last       *entity.StructuredRequest
}

func (f *fakeLLM) CompleteStructured(_ context.Context, req *entity.StructuredRequest) (json.RawMessage, error) {
	f.last = req
	return f.structured(req)
}

func (f *fakeLLM) CompleteText(_ context.Context, req *entity.TextRequest) (string, error) {
	return f.text(req)
}

type fakeRetriever struct {
	query func(ctx context.Context, question string) (string, error)
}

func (f *fakeRetriever) Query(ctx context.Context, _ entity.CorpusHandle, question string) (string, error) {
	return f.query(ctx, question)
}

type fakeTTS struct {
	calls atomic.Int32
	fail  map[string]bool
}

func (f *fakeTTS) Synthesize(_ context.Context, text string, _ entity.Voice) ([]byte, error) {
	f.calls.Add(1)
	if f.fail[text] {
		return nil, entity.ErrSynthesisFailed
	}
	return []byte("audio:" + text), nil
}

type memCache struct {
	mu      sync.Mutex
	version int64
	audio   map[int][]byte
}

func newMemCache(version int64) *memCache {
	return &memCache{version: version, audio: map[int][]byte{}}
}

func (c *memCache) Get(version int64, slide int) ([]byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if version != c.version {
		return nil, false
	}
	a, ok := c.audio[slide]
	return a, ok
}

func (c *memCache) Put(version int64, slide int, audio []byte) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if version != c.version {
		return false
	}
	c.audio[slide] = audio
	return true
}

func TestSummarizer_Success(t *testing.T) {
	llm := &fakeLLM{structured: func(*entity.StructuredRequest) (json.RawMessage, error) {
		return json.RawMessage(`{"title":" Neural Nets ","abstract":"About nets.","key_points":["a",""],"main_topics":["ml"],
			"difficulty_level":"Advanced","estimated_read_time":"10 minutes","document_type":"Research Paper","authors":["X"],"publication_date":"2020"}`), nil
	}}

	out := NewSummarizer(llm, 15000).Summarize(context.Background(), SummaryInput{Text: "body", FileName: "nets.pdf"})

	if out.Degraded {
		t.Fatalf("Degraded = true, reason %q", out.Reason)
	}
	if out.Value.Title != "Neural Nets" {
		t.Errorf("Title = %q, want Neural Nets", out.Value.Title)
	}
	if out.Value.DifficultyLevel != entity.DifficultyAdvanced {
		t.Errorf("DifficultyLevel = %q, want advanced", out.Value.DifficultyLevel)
	}
	if out.Value.DocumentType != entity.DocumentTypeResearchPaper {
		t.Errorf("DocumentType = %q, want research_paper", out.Value.DocumentType)
	}
	if len(out.Value.KeyPoints) != 1 {
		t.Errorf("KeyPoints = %v, want blanks dropped", out.Value.KeyPoints)
	}
	if !llm.last.Required || llm.last.SchemaName != entity.SchemaDocumentSummary {
		t.Errorf("request = %+v, want required %s schema", llm.last, entity.SchemaDocumentSummary)
	}
}

func TestSummarizer_TruncatesInput(t *testing.T) {
	llm := &fakeLLM{structured: func(*entity.StructuredRequest) (json.RawMessage, error) {
		return json.RawMessage(`{"title":"t","abstract":"a"}`), nil
	}}

	NewSummarizer(llm, 10).Summarize(context.Background(), SummaryInput{Text: strings.Repeat("x", 50), FileName: "f.pdf"})

	if !strings.HasSuffix(llm.last.Prompt, strings.Repeat("x", 10)+"...") {
		t.Errorf("prompt tail = %q, want 10 chars and ellipsis", llm.last.Prompt[len(llm.last.Prompt)-20:])
	}
	if strings.Contains(llm.last.Prompt, strings.Repeat("x", 11)) {
		t.Error("prompt contains more than 10 characters of text")
	}
}

func TestSummarizer_FallbackCases(t *testing.T) {
	tests := []struct {
		name string
		llm  LLMConnector
	}{
		{"no provider", nil},
		{"transport failure", &fakeLLM{structured: func(*entity.StructuredRequest) (json.RawMessage, error) {
			return nil, entity.ErrProviderUnavailable
		}}},
		{"schema omitted", &fakeLLM{structured: func(*entity.StructuredRequest) (json.RawMessage, error) {
			return nil, entity.ErrSchemaOmitted
		}}},
		{"malformed json", &fakeLLM{structured: func(*entity.StructuredRequest) (json.RawMessage, error) {
			return json.RawMessage(`{"title": `), nil
		}}},
		{"missing title", &fakeLLM{structured: func(*entity.StructuredRequest) (json.RawMessage, error) {
			return json.RawMessage(`{"abstract":"a"}`), nil
		}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := NewSummarizer(tt.llm, 100).Summarize(context.Background(), SummaryInput{
				Text:     "text",
				FileName: "deep_learning-intro.pdf",
				Analysis: &entity.HeuristicAnalysis{Topics: []string{"neural networks"}, Complexity: entity.DifficultyBeginner, ReadingTime: "3 minutes"},
			})
			if !out.Degraded {
				t.Fatal("Degraded = false, want fallback")
			}
			if out.Reason == "" {
				t.Error("Reason is empty")
			}
			if out.Value.Title != "deep learning intro" {
				t.Errorf("Title = %q, want deep learning intro", out.Value.Title)
			}
			if out.Value.MainTopics[0] != "neural networks" || out.Value.EstimatedReadTime != "3 minutes" {
				t.Errorf("fallback ignores analysis: %+v", out.Value)
			}
		})
	}
}

func TestDocumentTitle(t *testing.T) {
	tests := map[string]string{
		"report.pdf":         "report",
		"my_great-paper.pdf": "my great paper",
		".pdf":               "Uploaded Document",
		"":                   "Uploaded Document",
	}
	for in, want := range tests {
		if got := DocumentTitle(in); got != want {
			t.Errorf("DocumentTitle(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestParseQuestions(t *testing.T) {
	raw := "Here are some questions:\n\n1. What is A?\n2) Why B?\n- How does C work?\n* **What about D?**\nNot a question\nQ6: Where is E?\n7. When F?\n8. Who G?"

	got := ParseQuestions(raw, 7)

	want := []string{"What is A?", "Why B?", "How does C work?", "What about D?", "Where is E?", "When F?", "Who G?"}
	if len(got) != len(want) {
		t.Fatalf("ParseQuestions() = %q, want %q", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("question[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestParseQuestions_Cap(t *testing.T) {
	raw := strings.Repeat("Is this a question?\n", 20)
	if got := ParseQuestions(raw, 7); len(got) != 7 {
		t.Errorf("len = %d, want 7", len(got))
	}
}

func TestQuestionGenerator_Fallback(t *testing.T) {
	summary := entity.DocumentSummary{Title: "Graphs", DocumentType: entity.DocumentTypeBookChapter}
	tests := []struct {
		name string
		llm  LLMConnector
	}{
		{"no provider", nil},
		{"error", &fakeLLM{text: func(*entity.TextRequest) (string, error) { return "", errors.New("boom") }}},
		{"no questions", &fakeLLM{text: func(*entity.TextRequest) (string, error) { return "I cannot help.", nil }}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := NewQuestionGenerator(tt.llm, 7).Generate(context.Background(), summary)
			if !out.Degraded {
				t.Fatal("Degraded = false, want fallback")
			}
			if len(out.Value) != 5 {
				t.Fatalf("len = %d, want 5 template questions", len(out.Value))
			}
			if !strings.Contains(out.Value[0], `"Graphs"`) || !strings.Contains(out.Value[1], "book chapter") {
				t.Errorf("templates not filled: %q", out.Value)
			}
		})
	}
}

func TestAnswerAll_PreservesOrder(t *testing.T) {
	retriever := &fakeRetriever{query: func(_ context.Context, q string) (string, error) {
		if q == "Q1" {
			time.Sleep(50 * time.Millisecond)
		}
		return "answer to " + q, nil
	}}

	pairs := NewAnswerRetriever(retriever, 5).AnswerAll(context.Background(), "vs_1", []string{"Q1", "Q2", "Q3"})

	for i, q := range []string{"Q1", "Q2", "Q3"} {
		if pairs[i].Question != q || pairs[i].Answer != "answer to "+q || pairs[i].Position != i+1 {
			t.Errorf("pairs[%d] = %+v, want %s in position %d", i, pairs[i], q, i+1)
		}
	}
}

func TestAnswerAll_FailureIsolated(t *testing.T) {
	retriever := &fakeRetriever{query: func(_ context.Context, q string) (string, error) {
		if q == "Q2" {
			return "", errors.New("timeout")
		}
		return "ok", nil
	}}

	pairs := NewAnswerRetriever(retriever, 2).AnswerAll(context.Background(), "vs_1", []string{"Q1", "Q2", "Q3"})

	if pairs[1].Answer != UnableToRetrieve {
		t.Errorf("pairs[1].Answer = %q, want sentinel", pairs[1].Answer)
	}
	if pairs[0].Answer != "ok" || pairs[2].Answer != "ok" {
		t.Errorf("siblings affected: %+v", pairs)
	}
}

func TestAnswerAll_BoundedConcurrency(t *testing.T) {
	var inFlight, peak atomic.Int32
	retriever := &fakeRetriever{query: func(context.Context, string) (string, error) {
		n := inFlight.Add(1)
		for {
			p := peak.Load()
			if n <= p || peak.CompareAndSwap(p, n) {
				break
			}
		}
		time.Sleep(10 * time.Millisecond)
		inFlight.Add(-1)
		return "ok", nil
	}}

	questions := make([]string, 12)
	for i := range questions {
		questions[i] = "Q?"
	}
	NewAnswerRetriever(retriever, 3).AnswerAll(context.Background(), "vs_1", questions)

	if peak.Load() > 3 {
		t.Errorf("peak concurrency = %d, want <= 3", peak.Load())
	}
}

func TestAnswer_ZeroHandle(t *testing.T) {
	called := false
	retriever := &fakeRetriever{query: func(context.Context, string) (string, error) {
		called = true
		return "x", nil
	}}

	answer, ok := NewAnswerRetriever(retriever, 1).Answer(context.Background(), "", "Q?")

	if ok || answer != UnableToRetrieve || called {
		t.Errorf("Answer() = %q, %v, called = %v; want sentinel without query", answer, ok, called)
	}
}

func TestDecodeSlides_Renumbers(t *testing.T) {
	raw := json.RawMessage(`{"slides":[
		{"slide_number":3,"title":"A","content":"a"},
		{"slide_number":3,"title":"B","content":"b"},
		{"slide_number":0,"title":"","content":""},
		{"slide_number":9,"title":"C","content":"c"}]}`)

	slides, err := DecodeSlides(raw)
	if err != nil {
		t.Fatalf("DecodeSlides() error = %v", err)
	}

	if len(slides) != 3 {
		t.Fatalf("len = %d, want 3", len(slides))
	}
	for i, s := range slides {
		if s.Number != i+1 {
			t.Errorf("slides[%d].Number = %d, want %d", i, s.Number, i+1)
		}
	}
	if slides[0].Title != "A" || slides[2].Title != "C" {
		t.Errorf("order changed: %+v", slides)
	}
}

func TestSlideSynthesizer_Fallback(t *testing.T) {
	summary := entity.DocumentSummary{Title: "Graphs", Abstract: "About graphs.", DocumentType: entity.DocumentTypeTutorial}
	tests := []struct {
		name string
		llm  LLMConnector
	}{
		{"transport", &fakeLLM{structured: func(*entity.StructuredRequest) (json.RawMessage, error) {
			return nil, entity.ErrProviderUnavailable
		}}},
		{"malformed", &fakeLLM{structured: func(*entity.StructuredRequest) (json.RawMessage, error) {
			return json.RawMessage(`{"slides": "nope"}`), nil
		}}},
		{"schema omitted", &fakeLLM{structured: func(*entity.StructuredRequest) (json.RawMessage, error) {
			return nil, entity.ErrSchemaOmitted
		}}},
		{"empty deck", &fakeLLM{structured: func(*entity.StructuredRequest) (json.RawMessage, error) {
			return json.RawMessage(`{"slides": []}`), nil
		}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := NewSlideSynthesizer(tt.llm).Synthesize(context.Background(), summary, nil)
			if !out.Degraded {
				t.Fatal("Degraded = false, want fallback")
			}
			if len(out.Value) != 1 || out.Value[0].Number != 1 || out.Value[0].Title != "Graphs" {
				t.Errorf("fallback = %+v, want one title slide", out.Value)
			}
			if !strings.Contains(out.Value[0].Content, "tutorial") {
				t.Errorf("fallback content = %q, want document type", out.Value[0].Content)
			}
		})
	}
}

func TestSlidesPrompt_SkipsSentinelAnswers(t *testing.T) {
	prompt := slidesPrompt(entity.DocumentSummary{Title: "T"}, []entity.QAPair{
		{Question: "Good?", Answer: "Yes."},
		{Question: "Bad?", Answer: UnableToRetrieve},
	})
	if !strings.Contains(prompt, "Q: Good?") || strings.Contains(prompt, "Q: Bad?") {
		t.Errorf("prompt = %q", prompt)
	}
}

func TestNarrationText(t *testing.T) {
	if got := NarrationText(entity.Slide{Title: "Intro", Content: "Hello"}); got != "Intro. Hello" {
		t.Errorf("NarrationText() = %q, want %q", got, "Intro. Hello")
	}
	if got := NarrationText(entity.Slide{Title: "Intro"}); got != "Intro" {
		t.Errorf("NarrationText() = %q, want Intro", got)
	}
}

func TestSpeak_RejectsBeforeProvider(t *testing.T) {
	tts := &fakeTTS{}
	n := NewNarrator(tts, 4000, entity.VoiceAlloy, 2)

	_, err := n.Speak(context.Background(), strings.Repeat("a", 4001), "")
	if !errors.Is(err, entity.ErrTextTooLong) {
		t.Errorf("err = %v, want ErrTextTooLong", err)
	}
	_, err = n.Speak(context.Background(), "   ", "")
	if !errors.Is(err, entity.ErrMissingField) {
		t.Errorf("err = %v, want ErrMissingField", err)
	}
	_, err = n.Speak(context.Background(), "hi", "robot")
	if !errors.Is(err, entity.ErrInvalidVoice) {
		t.Errorf("err = %v, want ErrInvalidVoice", err)
	}
	if tts.calls.Load() != 0 {
		t.Errorf("provider calls = %d, want 0", tts.calls.Load())
	}

	if _, err := n.Speak(context.Background(), strings.Repeat("a", 4000), ""); err != nil {
		t.Errorf("Speak() at limit error = %v", err)
	}
}

func TestNarrateSlide_CachesByVersion(t *testing.T) {
	tts := &fakeTTS{}
	n := NewNarrator(tts, 4000, entity.VoiceNova, 2)
	deck := &entity.Deck{Version: 2, Slides: []entity.Slide{{Number: 1, Title: "A", Content: "a"}}}
	cache := newMemCache(2)

	first, err := n.NarrateSlide(context.Background(), deck, 1, cache)
	if err != nil {
		t.Fatalf("NarrateSlide() error = %v", err)
	}
	second, _ := n.NarrateSlide(context.Background(), deck, 1, cache)

	if string(first) != string(second) || tts.calls.Load() != 1 {
		t.Errorf("calls = %d, want cached second narration", tts.calls.Load())
	}
}

func TestNarrateSlide_NotFound(t *testing.T) {
	tts := &fakeTTS{}
	cache := newMemCache(1)
	deck := &entity.Deck{Version: 1, Slides: []entity.Slide{{Number: 1, Title: "A"}, {Number: 2, Title: "B"}, {Number: 3, Title: "C"}}}

	_, err := NewNarrator(tts, 4000, entity.VoiceAlloy, 1).NarrateSlide(context.Background(), deck, 99, cache)

	if !errors.Is(err, entity.ErrSlideNotFound) {
		t.Errorf("err = %v, want ErrSlideNotFound", err)
	}
	if len(cache.audio) != 0 || tts.calls.Load() != 0 {
		t.Errorf("cache = %d entries, calls = %d; want untouched", len(cache.audio), tts.calls.Load())
	}
}

func TestNarrateDeck_RecordsFailures(t *testing.T) {
	tts := &fakeTTS{fail: map[string]bool{"B. b": true}}
	deck := &entity.Deck{Version: 4, Slides: []entity.Slide{
		{Number: 1, Title: "A", Content: "a"},
		{Number: 2, Title: "B", Content: "b"},
		{Number: 3, Title: "C", Content: "c"},
	}}
	cache := newMemCache(4)

	result := NewNarrator(tts, 4000, entity.VoiceAlloy, 2).NarrateDeck(context.Background(), deck, cache)

	if result.DeckVersion != 4 {
		t.Errorf("DeckVersion = %d, want 4", result.DeckVersion)
	}
	if len(result.Narrated) != 2 || result.Narrated[0] != 1 || result.Narrated[1] != 3 {
		t.Errorf("Narrated = %v, want [1 3]", result.Narrated)
	}
	if len(result.Failed) != 1 || result.Failed[0] != 2 {
		t.Errorf("Failed = %v, want [2]", result.Failed)
	}
	if len(cache.audio) != 2 {
		t.Errorf("cached = %d, want 2", len(cache.audio))
	}
}

func TestNarrateDeck_StaleVersionNotCached(t *testing.T) {
	deck := &entity.Deck{Version: 1, Slides: []entity.Slide{{Number: 1, Title: "A"}}}
	cache := newMemCache(2)

	result := NewNarrator(&fakeTTS{}, 4000, entity.VoiceAlloy, 1).NarrateDeck(context.Background(), deck, cache)

	if len(result.Narrated) != 1 {
		t.Errorf("Narrated = %v, want [1]", result.Narrated)
	}
	if len(cache.audio) != 0 {
		t.Errorf("cached = %d, want 0 for stale deck", len(cache.audio))
	}
}

func TestParseReferences(t *testing.T) {
	raw := "The document cites the following works:\n" +
		"1. Dijkstra, A note on two problems | https://doi.org/10.1007/BF01386390 | Original shortest path paper\n" +
		"- Graph Theory Notes | not a url | Lecture notes\n" +
		"- **Graph Theory Notes** | | duplicate without url\n" +
		"* | https://example.com/graphs |\n" +
		"NONE |  |\n"

	refs := ParseReferences(raw, 10)

	if len(refs) != 3 {
		t.Fatalf("refs = %+v, want 3 entries", refs)
	}
	if refs[0].Title != "Dijkstra, A note on two problems" || refs[0].URL != "https://doi.org/10.1007/BF01386390" {
		t.Errorf("refs[0] = %+v", refs[0])
	}
	if refs[0].Description != "Original shortest path paper" {
		t.Errorf("refs[0].Description = %q", refs[0].Description)
	}
	if refs[1].URL != "" {
		t.Errorf("refs[1].URL = %q, want invalid url dropped", refs[1].URL)
	}
	if refs[2].Title != "https://example.com/graphs" {
		t.Errorf("refs[2].Title = %q, want url used as title", refs[2].Title)
	}
}

func TestParseReferences_Limit(t *testing.T) {
	raw := "A | https://a.test |\nB | https://b.test |\nC | https://c.test |"
	if got := ParseReferences(raw, 2); len(got) != 2 {
		t.Errorf("refs = %d, want 2", len(got))
	}
}

func TestReferenceExtractor(t *testing.T) {
	var asked string
	retriever := &fakeRetriever{query: func(_ context.Context, q string) (string, error) {
		asked = q
		return "Graph Theory | https://example.com | Intro", nil
	}}

	out := NewReferenceExtractor(retriever, 5).Extract(context.Background(), "vs_1")
	if out.Degraded || len(out.Value) != 1 {
		t.Fatalf("outcome = %+v, want one reference", out)
	}
	if !strings.Contains(asked, "title | url") {
		t.Errorf("question = %q, want the line format requested", asked)
	}

	failing := &fakeRetriever{query: func(context.Context, string) (string, error) {
		return "", errors.New("boom")
	}}
	out = NewReferenceExtractor(failing, 5).Extract(context.Background(), "vs_1")
	if !out.Degraded || out.Value == nil || len(out.Value) != 0 {
		t.Errorf("outcome = %+v, want empty degraded list", out)
	}

	out = NewReferenceExtractor(retriever, 5).Extract(context.Background(), "")
	if !out.Degraded || !strings.Contains(out.Reason, entity.ErrCorpusNotReady.Error()) {
		t.Errorf("outcome = %+v, want corpus not ready", out)
	}
}
