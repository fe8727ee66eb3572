package hianime

import (
	"net/url"
	"regexp"
	"strings"
)

type Anime struct {
	ID        string `json:"animeId"`
	Title     string `json:"name"`
	PosterURL string `json:"image"`
}

type Episode struct {
	ID     string `json:"episodeId"`
	Number string `json:"episodeNumber"`
	Name   string `json:"episodeName"`
}

// The patterns are the contract with the site's markup. Attribute order
// matters, and a card whose anchor lacks data-id or title lets the lazy gaps
// run on into the following card.
var (
	animeCardRe = regexp.MustCompile(`<div[^>]*class="[^"]*flw-item[^"]*"[\s\S]*?` +
		`<a[^>]*class="[^"]*film-poster-ahref[^"]*"[^>]*data-id="([^"]*)"[^>]*title="([^"]*)"[\s\S]*?` +
		`<img[^>]*class="[^"]*film-poster-img[^"]*"[^>]*data-src="([^"]*)"`)

	episodeItemRe = regexp.MustCompile(`<a[^>]*class="[^"]*ep-item[^"]*"[^>]*data-id="([^"]*)"[^>]*data-number="([^"]*)"[\s\S]*?` +
		`<div[^>]*class="[^"]*ep-name[^"]*"[^>]*>([^<]*)</div>`)

	serverIDRe = regexp.MustCompile(`data-id="([^"]+)"`)
)

// ParseAnime extracts anime cards in document order. Relative poster paths
// are resolved against the site base. Cards missing an id, title or poster
// are dropped.
func (s Site) ParseAnime(html string) []Anime {
	list := []Anime{}
	for _, m := range animeCardRe.FindAllStringSubmatch(html, -1) {
		id, title, image := m[1], m[2], m[3]
		if image != "" && !strings.HasPrefix(image, "http") {
			image = s.absolute(image)
		}
		if id == "" || title == "" || image == "" {
			continue
		}
		list = append(list, Anime{ID: id, Title: title, PosterURL: image})
	}
	return list
}

// ParseEpisodes extracts episode anchors in document order. Names are
// trimmed; items without an id are dropped.
func ParseEpisodes(html string) []Episode {
	list := []Episode{}
	for _, m := range episodeItemRe.FindAllStringSubmatch(html, -1) {
		if m[1] == "" {
			continue
		}
		list = append(list, Episode{ID: m[1], Number: m[2], Name: strings.TrimSpace(m[3])})
	}
	return list
}

// FirstServerID returns the first non-empty data-id attribute value.
func FirstServerID(html string) (string, bool) {
	m := serverIDRe.FindStringSubmatch(html)
	if m == nil {
		return "", false
	}
	return m[1], true
}

func (s Site) absolute(ref string) string {
	r, err := url.Parse(ref)
	if err != nil {
		return s.base.String() + ref
	}
	return s.base.ResolveReference(r).String()
}
