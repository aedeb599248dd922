package analyzer

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/futig/notes-backend/internal/config"
	"github.com/futig/notes-backend/internal/entity"
)

// topicVocabulary is scanned in order; matches are reported in this order.
var topicVocabulary = []string{
	"Machine Learning",
	"Artificial Intelligence",
	"Neural Network",
	"Deep Learning",
	"Data Analysis",
	"Algorithm",
	"Statistics",
	"Optimization",
	"Security",
	"Database",
	"Cloud",
	"Software",
	"Programming",
	"Mathematics",
	"Physics",
	"Biology",
	"Chemistry",
	"Economics",
	"Finance",
	"Education",
	"Research",
	"Engineering",
}

type sectionRule struct {
	title    string
	triggers []string
}

var sectionRules = []sectionRule{
	{title: "Introduction", triggers: []string{"introduction"}},
	{title: "Methodology", triggers: []string{"method", "approach"}},
	{title: "Results", triggers: []string{"result", "finding"}},
	{title: "Conclusion", triggers: []string{"conclusion"}},
}

var defaultSections = []string{"Overview", "Main Content", "Summary"}

// Analyzer is the local fallback analysis over extracted text.
// It is pure: the same text and config always produce the same result.
type Analyzer struct {
	cfg config.AnalyzerConfig
}

func New(cfg config.AnalyzerConfig) *Analyzer {
	return &Analyzer{cfg: cfg}
}

func (a *Analyzer) Analyze(text string) entity.HeuristicAnalysis {
	lower := strings.ToLower(text)
	words := len(strings.Fields(text))
	topics := a.Topics(lower)
	sections := Sections(lower)

	return entity.HeuristicAnalysis{
		WordCount:       words,
		ReadingTime:     FormatReadingTime(a.ReadingMinutes(words)),
		Topics:          topics,
		Sections:        sections,
		Complexity:      a.Complexity(words, len(topics)),
		EstimatedSlides: a.EstimatedSlides(len(sections)),
	}
}

// ReadingMinutes is ceil(words / wpm), at least one minute.
func (a *Analyzer) ReadingMinutes(words int) int {
	wpm := a.cfg.WordsPerMinute
	if wpm <= 0 {
		wpm = 200
	}
	minutes := (words + wpm - 1) / wpm
	return max(minutes, 1)
}

// FormatReadingTime renders "N minutes" below an hour and "Xh Ym" above.
func FormatReadingTime(minutes int) string {
	if minutes < 60 {
		return fmt.Sprintf("%d minutes", minutes)
	}
	return fmt.Sprintf("%dh %dm", minutes/60, minutes%60)
}

// Topics returns up to MaxTopics vocabulary entries found in lower.
func (a *Analyzer) Topics(lower string) []string {
	topics := make([]string, 0, a.cfg.MaxTopics)
	for _, topic := range topicVocabulary {
		if len(topics) >= a.cfg.MaxTopics {
			break
		}
		if strings.Contains(lower, strings.ToLower(topic)) {
			topics = append(topics, topic)
		}
	}
	return topics
}

func Sections(lower string) []string {
	var sections []string
	for _, rule := range sectionRules {
		for _, trigger := range rule.triggers {
			if strings.Contains(lower, trigger) {
				sections = append(sections, rule.title)
				break
			}
		}
	}
	if len(sections) == 0 {
		return append([]string(nil), defaultSections...)
	}
	return sections
}

func (a *Analyzer) Complexity(words, topics int) entity.DifficultyLevel {
	switch {
	case words > a.cfg.AdvancedWords || topics > a.cfg.AdvancedTopics:
		return entity.DifficultyAdvanced
	case words >= a.cfg.IntermediateWords:
		return entity.DifficultyIntermediate
	default:
		return entity.DifficultyBeginner
	}
}

func (a *Analyzer) EstimatedSlides(sections int) int {
	return min(max(sections*a.cfg.SlidesPerSection, a.cfg.MinSlides), a.cfg.MaxSlides)
}

// DetectLanguage is a coarse script check: mostly Latin letters read as English.
func DetectLanguage(text string) string {
	var latin, letters int
	for _, r := range text {
		if !unicode.IsLetter(r) {
			continue
		}
		letters++
		if r < unicode.MaxASCII {
			latin++
		}
	}
	if letters == 0 {
		return "Unknown"
	}
	if latin*100/letters >= 80 {
		return "English"
	}
	return "Unknown"
}
