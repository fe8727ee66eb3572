package upstream

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const rulesYAML = `
- domain: hianime.to
  headers:
    referer: https://hianime.to/home
    x-forwarded-for: none
  regexRules:
    - match: '<script[^>]*ads[^>]*></script>'
      replace: ''
- domains:
    - megaplay.buzz
    - cdn.megaplay.buzz
  paths:
    - /stream
  headers:
    user-agent: okhttp/4.9
`

func writeRules(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadRulesetFromDirectory(t *testing.T) {
	dir := t.TempDir()
	writeRules(t, dir, "hianime.yaml", rulesYAML)
	writeRules(t, dir, "notes.txt", "ignored")

	rs, err := LoadRuleset(dir, log.New(nopWriter{}))
	require.NoError(t, err)

	assert.Equal(t, 2, rs.Count())
	assert.Equal(t, 3, rs.DomainCount())
	assert.Equal(t, []string{"hianime.to", "megaplay.buzz", "cdn.megaplay.buzz"}, rs.Domains())
	require.NotNil(t, rs[0].RegexRules[0].re)
}

func TestLoadRulesetMultiplePaths(t *testing.T) {
	dir := t.TempDir()
	a := writeRules(t, dir, "a.yml", "- domain: a.example\n")
	b := writeRules(t, dir, "b.yml", "- domain: b.example\n")

	rs, err := LoadRuleset(a+" ; "+b, log.New(nopWriter{}))
	require.NoError(t, err)
	assert.Equal(t, []string{"a.example", "b.example"}, rs.Domains())
}

func TestLoadRulesetEmptyPath(t *testing.T) {
	rs, err := LoadRuleset("", log.New(nopWriter{}))
	require.NoError(t, err)
	assert.Empty(t, rs)
}

func TestLoadRulesetErrors(t *testing.T) {
	dir := t.TempDir()

	_, err := LoadRuleset(filepath.Join(dir, "missing.yml"), log.New(nopWriter{}))
	assert.Error(t, err)

	bad := writeRules(t, dir, "bad.yml", "- domain: [unterminated\n")
	_, err = LoadRuleset(bad, log.New(nopWriter{}))
	assert.Error(t, err)

	badRegex := writeRules(t, dir, "regex.yml", "- domain: x\n  regexRules:\n    - match: '('\n")
	_, err = LoadRuleset(badRegex, log.New(nopWriter{}))
	assert.Error(t, err)
}

func TestRuleSetMatch(t *testing.T) {
	dir := t.TempDir()
	rs, err := LoadRuleset(writeRules(t, dir, "r.yml", rulesYAML), log.New(nopWriter{}))
	require.NoError(t, err)

	tests := []struct {
		name    string
		host    string
		path    string
		referer string
		ua      string
	}{
		{name: "exact domain", host: "hianime.to", path: "/search", referer: "https://hianime.to/home"},
		{name: "subdomain", host: "img.hianime.to", path: "/x.jpg", referer: "https://hianime.to/home"},
		{name: "path filter hit", host: "cdn.megaplay.buzz", path: "/stream/s-2/1/sub", ua: "okhttp/4.9"},
		{name: "path filter miss", host: "megaplay.buzz", path: "/other"},
		{name: "suffix is not subdomain", host: "nothianime.to", path: "/"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rule := rs.Match(tt.host, tt.path)
			assert.Equal(t, tt.referer, rule.Headers.Referer)
			assert.Equal(t, tt.ua, rule.Headers.UserAgent)
		})
	}
}
