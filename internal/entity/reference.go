package entity

// ReferenceLink is a work or link cited by the current document.
type ReferenceLink struct {
	Title       string `json:"title"`
	URL         string `json:"url,omitempty"`
	Description string `json:"description,omitempty"`
}

// ReferenceList is the response of the references endpoint.
type ReferenceList struct {
	References []ReferenceLink `json:"references"`
	Degraded   bool            `json:"degraded"`
	Reason     string          `json:"reason,omitempty"`
}
