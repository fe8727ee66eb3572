package upstream

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/charmbracelet/log"
)

// rewrite applies a rule's regex replacements and then its HTML injections.
// An injection whose document cannot be parsed or rendered is skipped.
func rewrite(body string, rule Rule, logger *log.Logger) string {
	for _, rr := range rule.RegexRules {
		body = rr.re.ReplaceAllString(body, rr.Replace)
	}

	for _, inj := range rule.Injections {
		doc, err := goquery.NewDocumentFromReader(strings.NewReader(body))
		if err != nil {
			logger.Warn("could not parse HTML for injection", "err", err)
			continue
		}

		sel := doc.Find(inj.Position)
		if inj.Replace != "" {
			sel.ReplaceWithHtml(inj.Replace)
		}
		if inj.Append != "" {
			sel.AppendHtml(inj.Append)
		}
		if inj.Prepend != "" {
			sel.PrependHtml(inj.Prepend)
		}

		html, err := doc.Html()
		if err != nil {
			logger.Warn("could not render HTML after injection", "err", err)
			continue
		}
		body = html
	}

	return body
}
