package upstream

import (
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

type Regex struct {
	Match   string `yaml:"match"`
	Replace string `yaml:"replace"`

	re *regexp.Regexp
}

type Injection struct {
	Position string `yaml:"position,omitempty"`
	Append   string `yaml:"append,omitempty"`
	Prepend  string `yaml:"prepend,omitempty"`
	Replace  string `yaml:"replace,omitempty"`
}

// Rule adjusts outbound headers and rewrites text bodies for the domains it
// names. A header value of "none" removes that header from the request.
type Rule struct {
	Domain  string   `yaml:"domain,omitempty"`
	Domains []string `yaml:"domains,omitempty"`
	Paths   []string `yaml:"paths,omitempty"`
	Headers struct {
		UserAgent     string `yaml:"user-agent,omitempty"`
		XForwardedFor string `yaml:"x-forwarded-for,omitempty"`
		Referer       string `yaml:"referer,omitempty"`
		Cookie        string `yaml:"cookie,omitempty"`
	} `yaml:"headers,omitempty"`
	RegexRules []Regex      `yaml:"regexRules,omitempty"`
	Injections []Injection `yaml:"injections,omitempty"`
}

type RuleSet []Rule

// LoadRuleset reads every .yml/.yaml file found under the ';'-separated list
// of files or directories in paths. Regex rules are compiled up front so a bad
// pattern fails at startup rather than on a live request.
func LoadRuleset(paths string, logger *log.Logger) (RuleSet, error) {
	if logger == nil {
		logger = log.Default()
	}
	if strings.TrimSpace(paths) == "" {
		logger.Warn("no ruleset specified, set RULESET to load one")
		return RuleSet{}, nil
	}

	var ruleSet RuleSet
	var errs []string

	for _, rulePath := range strings.Split(paths, ";") {
		rulePath = strings.TrimSpace(rulePath)
		if rulePath == "" {
			continue
		}

		err := filepath.Walk(rulePath, func(path string, info os.FileInfo, err error) error {
			if err != nil {
				return err
			}
			if info.IsDir() || !(strings.HasSuffix(path, ".yml") || strings.HasSuffix(path, ".yaml")) {
				return nil
			}
			raw, err := os.ReadFile(path)
			if err != nil {
				return errors.Wrapf(err, "read rules file %q", path)
			}
			var rs RuleSet
			if err := yaml.Unmarshal(raw, &rs); err != nil {
				return errors.Wrapf(err, "syntax error in rules file %q", path)
			}
			if err := rs.compile(); err != nil {
				return errors.Wrapf(err, "rules file %q", path)
			}
			ruleSet = append(ruleSet, rs...)
			return nil
		})
		if err != nil {
			errs = append(errs, err.Error())
		}
	}

	if len(errs) > 0 {
		return nil, errors.Errorf("errors while loading rulesets: %s", strings.Join(errs, "; "))
	}

	logger.Info("loaded ruleset", "rules", ruleSet.Count(), "domains", ruleSet.DomainCount())
	return ruleSet, nil
}

func (rs RuleSet) compile() error {
	for i := range rs {
		for j := range rs[i].RegexRules {
			re, err := regexp.Compile(rs[i].RegexRules[j].Match)
			if err != nil {
				return errors.Wrapf(err, "regex rule %q", rs[i].RegexRules[j].Match)
			}
			rs[i].RegexRules[j].re = re
		}
	}
	return nil
}

// Match returns the first rule covering host (exactly or as a subdomain) and
// path. The zero Rule is returned when nothing matches.
func (rs RuleSet) Match(host, path string) Rule {
	for _, rule := range rs {
		for _, d := range rule.domains() {
			if d != host && !strings.HasSuffix(host, "."+d) {
				continue
			}
			if len(rule.Paths) > 0 && !hasPrefix(path, rule.Paths) {
				continue
			}
			return rule
		}
	}
	return Rule{}
}

func (r Rule) domains() []string {
	if r.Domain == "" {
		return r.Domains
	}
	return append([]string{r.Domain}, r.Domains...)
}

func (r Rule) rewritesBody() bool {
	return len(r.RegexRules) > 0 || len(r.Injections) > 0
}

func (rs RuleSet) Domains() []string {
	var domains []string
	for _, rule := range rs {
		domains = append(domains, rule.domains()...)
	}
	return domains
}

func (rs RuleSet) DomainCount() int {
	return len(rs.Domains())
}

func (rs RuleSet) Count() int {
	return len(rs)
}

func hasPrefix(s string, prefixes []string) bool {
	for _, p := range prefixes {
		if strings.HasPrefix(s, p) {
			return true
		}
	}
	return false
}
