package engine

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Vocabulary holds the static term lists used to shorten queries and questions.
// Order is significant: matched terms are emitted in list order.
type Vocabulary struct {
	QueryTerms    []string          `yaml:"queryTerms"`
	GuidanceTerms []string          `yaml:"guidanceTerms"`
	Questions     map[string]string `yaml:"questions"`
}

var defaultQueryTerms = []string{
	"email", "outlook", "exchange", "smtp", "imap", "mailbox", "spam", "phishing",
	"vpn", "network", "dns", "dhcp", "firewall", "proxy", "wifi", "router", "latency", "bandwidth",
	"password", "login", "authentication", "sso", "mfa", "ldap", "active directory",
	"certificate", "ssl", "tls", "security", "malware", "virus", "ransomware",
	"access", "permission", "server", "database", "timeout", "outage", "printer",
}

var defaultGuidanceOnlyTerms = []string{
	"root cause", "impact", "workaround", "resolution", "immediate actions", "prevention",
	"escalation", "monitoring", "rollback", "restart", "reboot", "logs", "configuration",
	"patch", "backup",
}

var defaultQuestions = map[string]string{
	"What is the underlying root cause?":          "root cause",
	"What immediate actions should be taken?":     "immediate actions",
	"What are the resolution steps?":              "resolution",
	"How can this be prevented from recurring?":   "prevention",
	"What is the business impact?":                "impact",
	"Is there a workaround available?":            "workaround",
	"Who should this be escalated to?":            "escalation",
	"What should be monitored after the fix?":     "monitoring",
	"How do we roll back the change safely?":      "rollback",
	"Which configuration changes are required?":   "configuration",
	"What logs should be checked for this issue?": "logs",
}

// DefaultVocabulary returns a fresh copy of the built-in vocabulary. The guidance list is a
// superset of the query list.
func DefaultVocabulary() *Vocabulary {
	questions := make(map[string]string, len(defaultQuestions))
	for q, term := range defaultQuestions {
		questions[q] = term
	}
	guidance := append(append([]string(nil), defaultGuidanceOnlyTerms...), defaultQueryTerms...)
	return &Vocabulary{
		QueryTerms:    append([]string(nil), defaultQueryTerms...),
		GuidanceTerms: guidance,
		Questions:     questions,
	}
}

// LoadVocabulary reads a YAML override. Lists present in the file replace the defaults;
// questions are merged over the defaults. An empty or missing path yields the defaults.
func LoadVocabulary(path string, logger *slog.Logger) (*Vocabulary, error) {
	vocab := DefaultVocabulary()
	if path == "" {
		return vocab, nil
	}
	if logger == nil {
		logger = slog.Default()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			logger.Warn("vocabulary file not found, using built-in terms", slog.String("path", path))
			return vocab, nil
		}
		return nil, fmt.Errorf("read vocabulary: %w", err)
	}

	var override Vocabulary
	if err := yaml.Unmarshal(data, &override); err != nil {
		return nil, fmt.Errorf("parse vocabulary: %w", err)
	}
	if terms := normaliseTerms(override.QueryTerms); len(terms) > 0 {
		vocab.QueryTerms = terms
	}
	if terms := normaliseTerms(override.GuidanceTerms); len(terms) > 0 {
		vocab.GuidanceTerms = terms
	}
	for q, term := range override.Questions {
		if strings.TrimSpace(q) == "" || strings.TrimSpace(term) == "" {
			continue
		}
		vocab.Questions[strings.TrimSpace(q)] = strings.TrimSpace(term)
	}
	return vocab, nil
}

// MatchQueryTerms returns the query terms found in text, in vocabulary order.
func (v *Vocabulary) MatchQueryTerms(text string) []string {
	return matchTerms(text, v.QueryTerms)
}

// MatchGuidanceTerms returns the guidance terms found in text, in vocabulary order.
func (v *Vocabulary) MatchGuidanceTerms(text string) []string {
	return matchTerms(text, v.GuidanceTerms)
}

// MapQuestion returns the canonical term for a known question.
func (v *Vocabulary) MapQuestion(question string) (string, bool) {
	term, ok := v.Questions[strings.TrimSpace(question)]
	return term, ok
}

func matchTerms(text string, terms []string) []string {
	lower := strings.ToLower(text)
	var matched []string
	for _, term := range terms {
		if term != "" && strings.Contains(lower, strings.ToLower(term)) {
			matched = append(matched, term)
		}
	}
	return matched
}

func normaliseTerms(terms []string) []string {
	out := make([]string, 0, len(terms))
	seen := make(map[string]struct{}, len(terms))
	for _, term := range terms {
		term = strings.TrimSpace(term)
		key := strings.ToLower(term)
		if term == "" {
			continue
		}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, term)
	}
	return out
}
