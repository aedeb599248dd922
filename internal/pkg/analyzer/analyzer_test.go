package analyzer

import (
	"reflect"
	"strings"
	"testing"

	"github.com/futig/notes-backend/internal/config"
	"github.com/futig/notes-backend/internal/entity"
)

func defaultConfig() config.AnalyzerConfig {
	return config.AnalyzerConfig{
		WordsPerMinute:    200,
		MaxTopics:         8,
		IntermediateWords: 5000,
		AdvancedWords:     10000,
		AdvancedTopics:    5,
		SlidesPerSection:  2,
		MinSlides:         4,
		MaxSlides:         12,
	}
}

func words(n int) string {
	return strings.TrimSpace(strings.Repeat("word ", n))
}

func TestFormatReadingTime(t *testing.T) {
	a := New(defaultConfig())

	cases := []struct {
		words int
		want  string
	}{
		{0, "1 minutes"},
		{50, "1 minutes"},
		{199, "1 minutes"},
		{201, "2 minutes"},
		{11800, "59 minutes"},
		{12000, "1h 0m"},
		{12001, "1h 1m"},
		{30000, "2h 30m"},
	}

	for _, tc := range cases {
		if got := FormatReadingTime(a.ReadingMinutes(tc.words)); got != tc.want {
			t.Errorf("reading time for %d words = %q, want %q", tc.words, got, tc.want)
		}
	}
}

func TestAnalyze_ShortDocumentDefaults(t *testing.T) {
	got := New(defaultConfig()).Analyze(words(50))

	if got.WordCount != 50 {
		t.Errorf("word count = %d, want 50", got.WordCount)
	}
	if got.ReadingTime != "1 minutes" {
		t.Errorf("reading time = %q, want '1 minutes'", got.ReadingTime)
	}
	if got.Complexity != entity.DifficultyBeginner {
		t.Errorf("complexity = %q, want beginner", got.Complexity)
	}
	if !reflect.DeepEqual(got.Sections, []string{"Overview", "Main Content", "Summary"}) {
		t.Errorf("sections = %v, want 3 default sections", got.Sections)
	}
	if got.EstimatedSlides != 6 {
		t.Errorf("estimated slides = %d, want 6", got.EstimatedSlides)
	}
	if len(got.Topics) != 0 {
		t.Errorf("topics = %v, want none", got.Topics)
	}
}

func TestAnalyze_Deterministic(t *testing.T) {
	text := "An Introduction to machine learning. Our METHOD and the results. Statistics, security, cloud."
	a := New(defaultConfig())

	first := a.Analyze(text)
	for i := 0; i < 5; i++ {
		if got := a.Analyze(text); !reflect.DeepEqual(got, first) {
			t.Fatalf("run %d = %+v, want %+v", i, got, first)
		}
	}
}

func TestComplexity(t *testing.T) {
	a := New(defaultConfig())

	cases := []struct {
		name   string
		words  int
		topics int
		want   entity.DifficultyLevel
	}{
		{"short", 4999, 0, entity.DifficultyBeginner},
		{"intermediate boundary", 5000, 0, entity.DifficultyIntermediate},
		{"ten thousand is not advanced", 10000, 5, entity.DifficultyIntermediate},
		{"long", 10001, 0, entity.DifficultyAdvanced},
		{"many topics", 100, 6, entity.DifficultyAdvanced},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := a.Complexity(tc.words, tc.topics); got != tc.want {
				t.Errorf("Complexity(%d, %d) = %q, want %q", tc.words, tc.topics, got, tc.want)
			}
		})
	}
}

func TestTopics_CappedInVocabularyOrder(t *testing.T) {
	text := strings.ToLower("engineering research physics biology chemistry economics finance education " +
		"mathematics programming software cloud database security optimization statistics algorithm")

	got := New(defaultConfig()).Topics(text)

	want := []string{"Algorithm", "Statistics", "Optimization", "Security", "Database", "Cloud", "Software", "Programming"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("topics = %v, want %v", got, want)
	}
}

func TestSections_Triggers(t *testing.T) {
	got := Sections("we describe our approach and the main findings; in conclusion it works")
	want := []string{"Methodology", "Results", "Conclusion"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("sections = %v, want %v", got, want)
	}
}

func TestEstimatedSlides_Clamped(t *testing.T) {
	a := New(defaultConfig())
	cases := map[int]int{0: 4, 1: 4, 2: 4, 3: 6, 4: 8, 6: 12, 9: 12}
	for sections, want := range cases {
		if got := a.EstimatedSlides(sections); got != want {
			t.Errorf("EstimatedSlides(%d) = %d, want %d", sections, got, want)
		}
	}
}

func TestDetectLanguage(t *testing.T) {
	if got := DetectLanguage("A plain English sentence."); got != "English" {
		t.Errorf("language = %q, want English", got)
	}
	if got := DetectLanguage("Обычный русский текст"); got != "Unknown" {
		t.Errorf("language = %q, want Unknown", got)
	}
	if got := DetectLanguage("1234 5678"); got != "Unknown" {
		t.Errorf("language = %q, want Unknown", got)
	}
}
