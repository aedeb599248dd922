package entity

type Voice string

const (
	VoiceAlloy   Voice = "alloy"
	VoiceEcho    Voice = "echo"
	VoiceFable   Voice = "fable"
	VoiceOnyx    Voice = "onyx"
	VoiceNova    Voice = "nova"
	VoiceShimmer Voice = "shimmer"
)

var Voices = []Voice{VoiceAlloy, VoiceEcho, VoiceFable, VoiceOnyx, VoiceNova, VoiceShimmer}

func (v Voice) IsValid() bool {
	for _, known := range Voices {
		if v == known {
			return true
		}
	}
	return false
}

// NarrationRequest is a custom narration of arbitrary text.
type NarrationRequest struct {
	Text  string `json:"text"`
	Voice Voice  `json:"voice"`
}

const AudioContentType = "audio/mpeg"
