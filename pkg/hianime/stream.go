package hianime

import (
	"net/url"

	"github.com/pkg/errors"
)

type Language string

const (
	Sub Language = "sub"
	Dub Language = "dub"
)

// ParseLanguage maps "" to Sub and rejects anything but sub or dub.
func ParseLanguage(s string) (Language, error) {
	switch Language(s) {
	case "", Sub:
		return Sub, nil
	case Dub:
		return Dub, nil
	}
	return "", errors.Errorf("unknown language %q, want sub or dub", s)
}

func (l Language) Label() string {
	if l == Dub {
		return "English (DUB)"
	}
	return "Japanese (SUB)"
}

// StreamInfo describes the player page for one episode. Nothing is fetched;
// the URL is only shown to the user.
type StreamInfo struct {
	EpisodeID string   `json:"episodeId"`
	Language  Language `json:"language"`
	Label     string   `json:"label"`
	URL       string   `json:"url"`
}

func (s Site) StreamInfo(episodeID string, lang Language) StreamInfo {
	return StreamInfo{
		EpisodeID: episodeID,
		Language:  lang,
		Label:     lang.Label(),
		URL:       s.streamBase + "/" + url.PathEscape(episodeID) + "/" + string(lang),
	}
}
