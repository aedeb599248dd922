package entity

// QAPair is one generated question and its grounded answer.
type QAPair struct {
	Position int    `json:"position"`
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// Slide is one slide of a deck. Number is 1-based.
type Slide struct {
	Number           int    `json:"slide_number"`
	Title            string `json:"title"`
	Content          string `json:"content"`
	ImageDescription string `json:"image_description"`
	SpeakerNotes     string `json:"speaker_notes"`
}

// Deck is the ordered slide set generated for the current document.
type Deck struct {
	Version  int64   `json:"version"`
	Title    string  `json:"title"`
	Slides   []Slide `json:"slides"`
	Ready    bool    `json:"ready"`
	Degraded bool    `json:"degraded"`
}

// Slide returns the slide with the given number.
func (d *Deck) Slide(number int) (Slide, bool) {
	if d == nil || number < 1 || number > len(d.Slides) {
		return Slide{}, false
	}
	s := d.Slides[number-1]
	return s, s.Number == number
}

func (d *Deck) Numbers() []int {
	numbers := make([]int, 0, len(d.Slides))
	for _, s := range d.Slides {
		numbers = append(numbers, s.Number)
	}
	return numbers
}

type SlidesMetadata struct {
	Total   int   `json:"total"`
	Numbers []int `json:"numbers"`
}

type SlidesInfo struct {
	TotalSlides     int     `json:"total_slides"`
	CurrentSlide    int     `json:"current_slide"`
	DocumentTitle   string  `json:"document_title"`
	SlidesAvailable bool    `json:"slides_available"`
	Slides          []Slide `json:"slides"`
}

type NavigationAction string

const (
	NavigateNext     NavigationAction = "next"
	NavigatePrevious NavigationAction = "previous"
	NavigateGoto     NavigationAction = "goto"
)

func (a NavigationAction) IsValid() bool {
	switch a {
	case NavigateNext, NavigatePrevious, NavigateGoto:
		return true
	default:
		return false
	}
}

type NavigateRequest struct {
	Action      NavigationAction `json:"action"`
	SlideNumber int              `json:"slide_number,omitempty"`
}

type NavigateResponse struct {
	CurrentSlide int   `json:"current_slide"`
	TotalSlides  int   `json:"total_slides"`
	Slide        Slide `json:"slide"`
}

type PresenterInstructions struct {
	DocumentTitle string `json:"document_title"`
	TotalSlides   int    `json:"total_slides"`
	Instructions  string `json:"instructions"`
}

type NarrationBatchResult struct {
	DeckVersion int64 `json:"deck_version"`
	Narrated    []int `json:"narrated"`
	Failed      []int `json:"failed"`
}

type ResultFormat string

const (
	FormatMarkdown ResultFormat = "markdown"
	FormatDOCX     ResultFormat = "docx"
	FormatPDF      ResultFormat = "pdf"
)

func (f ResultFormat) IsValid() bool {
	switch f {
	case FormatMarkdown, FormatDOCX, FormatPDF:
		return true
	default:
		return false
	}
}
