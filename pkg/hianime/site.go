// Package hianime knows the upstream site's URL layout and how to pull anime
// and episode records out of its markup.
package hianime

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/goccy/go-json"
	"github.com/pkg/errors"
)

const (
	DefaultBase       = "https://hianime.to"
	DefaultStreamBase = "https://megaplay.buzz/stream/s-2"
)

// Site holds the base URLs injected at startup.
type Site struct {
	base       *url.URL
	streamBase string
}

func NewSite(base, streamBase string) (Site, error) {
	u, err := url.Parse(strings.TrimRight(base, "/"))
	if err != nil {
		return Site{}, errors.Wrapf(err, "parse upstream base %q", base)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return Site{}, errors.Errorf("upstream base %q must be an absolute http(s) URL", base)
	}
	if _, err := url.Parse(streamBase); err != nil || streamBase == "" {
		return Site{}, errors.Errorf("stream base %q is not a URL", streamBase)
	}
	return Site{base: u, streamBase: strings.TrimRight(streamBase, "/")}, nil
}

func (s Site) Base() string {
	return s.base.String()
}

// SearchURL falls back to the recently-updated listing when keyword is empty.
func (s Site) SearchURL(keyword string, page int) string {
	if keyword == "" {
		return s.RecentlyUpdatedURL(page)
	}
	q := url.Values{}
	q.Set("keyword", keyword)
	q.Set("page", strconv.Itoa(page))
	return s.base.String() + "/search?" + q.Encode()
}

func (s Site) RecentlyUpdatedURL(page int) string {
	return s.base.String() + "/recently-updated?page=" + strconv.Itoa(page)
}

func (s Site) HomeURL() string {
	return s.base.String() + "/home"
}

func (s Site) EpisodeListURL(animeID string) string {
	return s.base.String() + "/ajax/v2/episode/list/" + url.PathEscape(animeID)
}

func (s Site) ServersURL(episodeID string) string {
	return s.base.String() + "/ajax/v2/episode/servers?episodeId=" + url.QueryEscape(episodeID)
}

func (s Site) SourcesURL(serverID string) string {
	return s.base.String() + "/ajax/v2/episode/sources?id=" + url.QueryEscape(serverID)
}

// ajaxEnvelope is the JSON wrapper the site's ajax endpoints return.
type ajaxEnvelope struct {
	HTML string `json:"html"`
}

// AjaxHTML decodes an ajax envelope and returns its html field, or "" when
// the field is absent.
func AjaxHTML(body []byte) (string, error) {
	var env ajaxEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		return "", errors.Wrap(err, "decode ajax response")
	}
	return env.HTML, nil
}
