package hianime

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSiteValidation(t *testing.T) {
	_, err := NewSite("hianime.to", DefaultStreamBase)
	assert.Error(t, err)

	_, err = NewSite("ftp://hianime.to", DefaultStreamBase)
	assert.Error(t, err)

	_, err = NewSite(DefaultBase, "")
	assert.Error(t, err)

	s, err := NewSite("https://hianime.to///", DefaultStreamBase)
	require.NoError(t, err)
	assert.Equal(t, "https://hianime.to", s.Base())
}

func TestSiteURLs(t *testing.T) {
	s := testSite(t)

	assert.Equal(t, "https://hianime.to/search?keyword=one+piece&page=2", s.SearchURL("one piece", 2))
	assert.Equal(t, "https://hianime.to/recently-updated?page=3", s.SearchURL("", 3))
	assert.Equal(t, "https://hianime.to/home", s.HomeURL())
	assert.Equal(t, "https://hianime.to/ajax/v2/episode/list/100", s.EpisodeListURL("100"))
	assert.Equal(t, "https://hianime.to/ajax/v2/episode/list/a%2Fb", s.EpisodeListURL("a/b"))
	assert.Equal(t, "https://hianime.to/ajax/v2/episode/servers?episodeId=2142", s.ServersURL("2142"))
	assert.Equal(t, "https://hianime.to/ajax/v2/episode/sources?id=abc%26x", s.SourcesURL("abc&x"))
}

func TestAjaxHTML(t *testing.T) {
	html, err := AjaxHTML([]byte(`{"status":true,"html":"<a class=\"ep-item\"></a>","totalItems":12}`))
	require.NoError(t, err)
	assert.Equal(t, `<a class="ep-item"></a>`, html)

	html, err = AjaxHTML([]byte(`{"status":false}`))
	require.NoError(t, err)
	assert.Empty(t, html)

	_, err = AjaxHTML([]byte(`<!DOCTYPE html><html>Just a moment...</html>`))
	assert.Error(t, err)
}

func TestStreamInfo(t *testing.T) {
	s := testSite(t)

	lang, err := ParseLanguage("")
	require.NoError(t, err)
	assert.Equal(t, StreamInfo{
		EpisodeID: "2142",
		Language:  Sub,
		Label:     "Japanese (SUB)",
		URL:       "https://megaplay.buzz/stream/s-2/2142/sub",
	}, s.StreamInfo("2142", lang))

	lang, err = ParseLanguage("dub")
	require.NoError(t, err)
	info := s.StreamInfo("2142", lang)
	assert.Equal(t, "https://megaplay.buzz/stream/s-2/2142/dub", info.URL)
	assert.Equal(t, "English (DUB)", info.Label)

	_, err = ParseLanguage("raw")
	assert.Error(t, err)
}
