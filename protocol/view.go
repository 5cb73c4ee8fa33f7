package protocol

// Mode tells a presenter which screen to draw
type Mode string

const (
	Loading     Mode = "loading"
	Unavailable Mode = "unavailable"
	Playing     Mode = "playing"
	Paused      Mode = "paused"
	Defeated    Mode = "defeated"
	Victorious  Mode = "victorious"
)

// View is everything a presenter needs to draw one frame
type View struct {
	Mode         Mode           `json:"mode"`
	Card         *CardView      `json:"card,omitempty"`
	Preview      *CardView      `json:"preview,omitempty"`
	Resources    []ResourceView `json:"resources"`
	Day          int            `json:"day"`
	CardsPlayed  int            `json:"cardsPlayed"`
	StoryIndex   int            `json:"storyIndex"`
	StoryCount   int            `json:"storyCount"`
	DefeatReason string         `json:"defeatReason,omitempty"`
	Status       string         `json:"status,omitempty"`
	Busy         bool           `json:"busy"`
}

type CardView struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	Text  string `json:"text"`
	Image string `json:"image,omitempty"`
	Story bool   `json:"story"`
	Left  string `json:"left"`
	Right string `json:"right"`
}

// ResourceView is one gauge. Percent is the value scaled to 0-100.
type ResourceView struct {
	Key     string `json:"key"`
	Label   string `json:"label"`
	Value   int    `json:"value"`
	Percent int    `json:"percent"`
}
