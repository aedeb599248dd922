package state

import (
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/futig/notes-backend/internal/entity"
)

// Document is the uploaded document a session works on.
type Document struct {
	ID         string
	FileName   string
	Text       string
	PageCount  int
	Analysis   entity.HeuristicAnalysis
	UploadedAt time.Time
}

// Session holds the current document and everything derived from it.
// Provider calls never run under the lock: callers snapshot, compute, then commit
// against the document id they started from, and a commit for a replaced
// document is dropped.
type Session struct {
	ID string

	mu        sync.RWMutex
	document  *Document
	summary   *entity.Outcome[entity.DocumentSummary]
	corpus    entity.CorpusHandle
	indexing  string
	refs      []entity.ReferenceLink
	refsSet   bool
	qa        []entity.QAPair
	deck      *entity.Deck
	deckSeq   int64
	current   int
	messages  []entity.Message
	narration *NarrationCache
	feed      *Feed
}

func newSession(id string, maxLiveUpdates int) *Session {
	return &Session{
		ID:        id,
		narration: NewNarrationCache(),
		feed:      newFeed(maxLiveUpdates),
	}
}

// ReplaceDocument makes doc current and drops all state derived from the previous one.
// It returns the corpus of the previous document so the caller can release it.
func (s *Session) ReplaceDocument(doc Document, indexing string) entity.CorpusHandle {
	s.mu.Lock()
	defer s.mu.Unlock()

	previous := s.corpus

	s.document = &doc
	s.summary = nil
	s.corpus = ""
	s.indexing = indexing
	s.refs = nil
	s.refsSet = false
	s.qa = nil
	s.deck = nil
	s.current = 0
	s.narration.Reset(0)

	return previous
}

func (s *Session) Document() (Document, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.document == nil {
		return Document{}, false
	}
	return *s.document, true
}

func (s *Session) isCurrent(docID string) bool {
	return s.document != nil && s.document.ID == docID
}

// SetSummaryOnce stores the summary for docID unless the document already has one.
// It returns the summary the document keeps and whether this call stored it.
// For a replaced docID nothing is stored and summary is returned as is.
func (s *Session) SetSummaryOnce(docID string, summary entity.Outcome[entity.DocumentSummary]) (entity.Outcome[entity.DocumentSummary], bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.isCurrent(docID) {
		return summary, false
	}
	if s.summary != nil {
		return *s.summary, false
	}
	s.summary = &summary
	return summary, true
}

func (s *Session) Summary() (entity.Outcome[entity.DocumentSummary], bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.summary == nil {
		return entity.Outcome[entity.DocumentSummary]{}, false
	}
	return *s.summary, true
}

func (s *Session) SetCorpus(docID string, handle entity.CorpusHandle) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.isCurrent(docID) {
		return false
	}
	s.corpus = handle
	s.indexing = entity.IndexingCompleted
	return true
}

func (s *Session) Corpus() entity.CorpusHandle {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.corpus
}

// SetIndexing records the indexing state of docID.
func (s *Session) SetIndexing(docID, indexing string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.isCurrent(docID) {
		return false
	}
	s.indexing = indexing
	return true
}

func (s *Session) Indexing() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.indexing
}

func (s *Session) SetReferences(docID string, refs []entity.ReferenceLink) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.isCurrent(docID) {
		return false
	}
	s.refs = slices.Clone(refs)
	s.refsSet = true
	return true
}

// References returns the references extracted for the current document, if any.
func (s *Session) References() ([]entity.ReferenceLink, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.refs), s.refsSet
}

// SetQA replaces the question/answer set wholesale.
func (s *Session) SetQA(docID string, qa []entity.QAPair) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.isCurrent(docID) {
		return false
	}
	s.qa = slices.Clone(qa)
	return true
}

func (s *Session) QA() []entity.QAPair {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.qa)
}

// ReplaceDeck stores deck under a new version and invalidates all narration
// cached for the previous one in the same critical section.
func (s *Session) ReplaceDeck(docID string, deck entity.Deck) (entity.Deck, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.isCurrent(docID) {
		return entity.Deck{}, false
	}

	s.deckSeq++
	deck.Version = s.deckSeq
	deck.Slides = slices.Clone(deck.Slides)
	deck.Ready = deckComplete(deck.Slides)

	s.deck = &deck
	s.current = 1
	s.narration.Reset(deck.Version)

	return cloneDeck(deck), true
}

func (s *Session) Deck() (entity.Deck, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.deck == nil {
		return entity.Deck{}, false
	}
	return cloneDeck(*s.deck), true
}

func (s *Session) Narration() *NarrationCache {
	return s.narration
}

func (s *Session) Feed() *Feed {
	return s.feed
}

// Publish records a pipeline event for live subscribers.
func (s *Session) Publish(kind entity.UpdateKind, message string, data any) {
	s.feed.Publish(kind, message, data)
}

func (s *Session) CurrentSlide() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// Navigate moves the current slide pointer within 1..N.
func (s *Session) Navigate(action entity.NavigationAction, number int) (entity.NavigateResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.deck == nil || len(s.deck.Slides) == 0 {
		return entity.NavigateResponse{}, entity.ErrDeckNotReady
	}
	total := len(s.deck.Slides)

	switch action {
	case entity.NavigateNext:
		s.current = min(s.current+1, total)
	case entity.NavigatePrevious:
		s.current = max(s.current-1, 1)
	case entity.NavigateGoto:
		if number < 1 || number > total {
			return entity.NavigateResponse{}, fmt.Errorf("%w: slide %d of %d", entity.ErrSlideNotFound, number, total)
		}
		s.current = number
	default:
		return entity.NavigateResponse{}, fmt.Errorf("%w: navigation action %q", entity.ErrInvalidParameter, action)
	}

	return entity.NavigateResponse{
		CurrentSlide: s.current,
		TotalSlides:  total,
		Slide:        s.deck.Slides[s.current-1],
	}, nil
}

func (s *Session) AppendMessage(m entity.Message) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.messages = append(s.messages, m)
}

func (s *Session) Messages() []entity.Message {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.messages)
}

func deckComplete(slides []entity.Slide) bool {
	if len(slides) == 0 {
		return false
	}
	for _, sl := range slides {
		if sl.Title == "" || sl.Content == "" {
			return false
		}
	}
	return true
}

func cloneDeck(d entity.Deck) entity.Deck {
	d.Slides = slices.Clone(d.Slides)
	return d
}
