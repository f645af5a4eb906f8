package domain

// IncomingMessage is a text message delivered by the chat transport.
type IncomingMessage struct {
	UpdateID  int
	ChatID    int64
	MessageID int
	UserID    int64
	FirstName string
	LastName  string
	Username  string
	Text      string
}

// SenderName returns "First" or "First Last".
func (m IncomingMessage) SenderName() string {
	if m.LastName == "" {
		return m.FirstName
	}
	return m.FirstName + " " + m.LastName
}

// SentMessage identifies a message the bot has posted.
type SentMessage struct {
	ChatID    int64
	MessageID int
}

// ResolvedMedia is what the resolver service extracts from a VSCO post.
type ResolvedMedia struct {
	Image       string `json:"image"`
	Description string `json:"description"`
	ProfileLink string `json:"profileLink"`
	Name        string `json:"name"`
}

// MediaKind classifies a resolved media URL.
type MediaKind int

const (
	MediaUnknown MediaKind = iota
	MediaPhoto
	MediaVideo
)

func (k MediaKind) String() string {
	switch k {
	case MediaPhoto:
		return "photo"
	case MediaVideo:
		return "video"
	default:
		return "unknown"
	}
}
