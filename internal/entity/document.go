package entity

import "time"

// Document is an uploaded file. It only lives for the duration of an upload request.
type Document struct {
	ID        string
	FileName  string
	MediaType string
	Content   []byte
}

// ExtractedText is the plain text of a document.
type ExtractedText struct {
	Text      string
	PageCount int
}

type DifficultyLevel string

const (
	DifficultyBeginner     DifficultyLevel = "beginner"
	DifficultyIntermediate DifficultyLevel = "intermediate"
	DifficultyAdvanced     DifficultyLevel = "advanced"
)

func (d DifficultyLevel) IsValid() bool {
	switch d {
	case DifficultyBeginner, DifficultyIntermediate, DifficultyAdvanced:
		return true
	default:
		return false
	}
}

type DocumentType string

const (
	DocumentTypeResearchPaper DocumentType = "research_paper"
	DocumentTypeTutorial      DocumentType = "tutorial"
	DocumentTypeBookChapter   DocumentType = "book_chapter"
	DocumentTypeArticle       DocumentType = "article"
)

func (d DocumentType) IsValid() bool {
	switch d {
	case DocumentTypeResearchPaper, DocumentTypeTutorial, DocumentTypeBookChapter, DocumentTypeArticle:
		return true
	default:
		return false
	}
}

// DocumentSummary is the structured summary of the current document.
type DocumentSummary struct {
	Title             string          `json:"title"`
	Abstract          string          `json:"abstract"`
	KeyPoints         []string        `json:"key_points"`
	MainTopics        []string        `json:"main_topics"`
	DifficultyLevel   DifficultyLevel `json:"difficulty_level"`
	EstimatedReadTime string          `json:"estimated_read_time"`
	DocumentType      DocumentType    `json:"document_type"`
	Authors           []string        `json:"authors"`
	PublicationDate   string          `json:"publication_date"`
}

// CorpusHandle names a document indexed by the retrieval provider.
type CorpusHandle string

func (h CorpusHandle) IsZero() bool {
	return h == ""
}

type IndexStatus string

const (
	IndexStatusCompleted IndexStatus = "completed"
	IndexStatusFailed    IndexStatus = "failed"
)

// HeuristicAnalysis is the local, provider-independent analysis of extracted text.
type HeuristicAnalysis struct {
	WordCount       int             `json:"word_count"`
	ReadingTime     string          `json:"reading_time"`
	Topics          []string        `json:"topics"`
	Sections        []string        `json:"sections"`
	Complexity      DifficultyLevel `json:"complexity"`
	EstimatedSlides int             `json:"estimated_slides"`
}

// UploadResult is returned synchronously from an upload.
type UploadResult struct {
	DocumentID string `json:"document_id"`
	FileName   string `json:"filename"`
	FileSize   string `json:"file_size"`
	PageCount  int    `json:"page_count"`
	HeuristicAnalysis
	ProcessingTime   string    `json:"processing_time"`
	DetectedLanguage string    `json:"detected_language"`
	AIAvailable      bool      `json:"ai_available"`
	Indexing         string    `json:"indexing"`
	UploadedAt       time.Time `json:"uploaded_at"`
}

// Indexing states of the current document
const (
	IndexingStarted   = "started"
	IndexingSkipped   = "skipped"
	IndexingCompleted = "completed"
	IndexingFailed    = "failed"
)

// UploadInfo describes what the upload endpoint accepts.
type UploadInfo struct {
	Message          string   `json:"message"`
	MaxFileSize      string   `json:"max_file_size"`
	MaxFileSizeBytes int64    `json:"max_file_size_bytes"`
	SupportedFormats []string `json:"supported_formats"`
	Status           string   `json:"status"`
	AIAvailable      bool     `json:"ai_available"`
}

// DocumentStatus describes the AI-backed state of the current document.
type DocumentStatus struct {
	Summary     DocumentSummary `json:"summary"`
	Degraded    bool            `json:"degraded"`
	Reason      string          `json:"reason,omitempty"`
	AIAvailable bool            `json:"ai_available"`
	CorpusReady bool            `json:"corpus_ready"`
	Indexing    string          `json:"indexing,omitempty"`
}
