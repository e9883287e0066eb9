// Ideaforge - Heuristic Idea Recommendation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ideaforge

package features

import (
	"crypto/sha256"
	"encoding/hex"
	"regexp"
	"sort"
	"strings"
	"sync"
	"time"
)

// Severity grades an ethics assessment.
type Severity string

const (
	SeverityNone   Severity = "none"
	SeverityMedium Severity = "medium"
	SeverityHigh   Severity = "high"
)

// Action is what the pipeline does with an assessed idea.
type Action string

const (
	ActionPass     Action = "pass"
	ActionDownrank Action = "downrank"
	ActionBlock    Action = "block"
	ActionReview   Action = "review"
)

const maxEthicsText = 5000

var (
	prohibitedKeywords = []string{
		"violence", "weapon", "harmful", "illegal", "discriminatory",
		"racist", "sexist", "hate", "exploit", "manipulate",
		"mislead", "fraud", "scam", "pyramid", "ponzi",
	}
	highRiskDomains = []string{
		"cryptocurrency", "gambling", "tobacco", "alcohol",
		"pharmaceutical", "medical device", "financial services",
	}
	complianceKeywords = []string{
		"ethical", "compliant", "regulated", "certified",
		"transparent", "privacy", "consent", "gdpr", "hipaa",
	}
	ethicalIndicators = []weightedKeyword{
		{"sustainable", 0.15},
		{"ethical", 0.15},
		{"fair", 0.10},
		{"inclusive", 0.10},
		{"accessible", 0.10},
		{"transparent", 0.10},
		{"responsible", 0.10},
		{"community", 0.10},
		{"environmental", 0.10},
	}

	wordPatterns = compileWordPatterns(prohibitedKeywords, highRiskDomains, complianceKeywords, indicatorWords())

	dataCollection    = regexp.MustCompile(`\b(collect|gather|track|monitor)\b.*\bdata\b`)
	privacySafeguards = regexp.MustCompile(`\b(privacy|consent|gdpr|anonymous|encrypt)\b`)
	personalData      = regexp.MustCompile(`\b(personal|sensitive|private)\b.*\b(information|data)\b`)
	securityMention   = regexp.MustCompile(`\b(protect|secure|encrypt|privacy)\b`)
)

func indicatorWords() []string {
	out := make([]string, len(ethicalIndicators))
	for i, ind := range ethicalIndicators {
		out[i] = ind.keyword
	}
	return out
}

func compileWordPatterns(lists ...[]string) map[string]*regexp.Regexp {
	m := make(map[string]*regexp.Regexp)
	for _, list := range lists {
		for _, w := range list {
			if _, ok := m[w]; !ok {
				m[w] = regexp.MustCompile(`\b` + regexp.QuoteMeta(w) + `\b`)
			}
		}
	}
	return m
}

// EthicsFlag is one reason an idea was flagged.
type EthicsFlag struct {
	Type           string   `json:"type"`
	Keywords       []string `json:"keywords,omitempty"`
	Domains        []string `json:"domains,omitempty"`
	Issues         []string `json:"issues,omitempty"`
	Severity       Severity `json:"severity"`
	Action         Action   `json:"action"`
	Recommendation string   `json:"recommendation,omitempty"`
}

// EthicsAssessment is the result of screening one idea.
type EthicsAssessment struct {
	Flagged          bool         `json:"flagged"`
	Severity         Severity     `json:"severity"`
	Flags            []EthicsFlag `json:"flags"`
	ComplianceScore  float64      `json:"compliance_score"`
	EthicalScore     float64      `json:"ethical_score"`
	Action           Action       `json:"action"`
	AdjustmentFactor float64      `json:"adjustment_factor"`
	TextHash         string       `json:"text_hash"`
}

// clipRunes returns the first n runes of s.
func clipRunes(s string, n int) string {
	i := 0
	for pos := range s {
		if i == n {
			return s[:pos]
		}
		i++
	}
	return s
}

// AssessEthics screens text and tags. Prohibited terms force severity high
// and a zero adjustment factor. A high-risk domain without compliance terms
// forces medium. A privacy concern alone raises none to medium without
// flagging the idea.
func AssessEthics(text string, tags []string, esgTotal float64) EthicsAssessment {
	safe := strings.ToLower(clipRunes(text, maxEthicsText))

	a := EthicsAssessment{Severity: SeverityNone, Flags: []EthicsFlag{}, TextHash: textHash(text)}

	if found := matchWords(safe, prohibitedKeywords); len(found) > 0 {
		a.Flags = append(a.Flags, EthicsFlag{
			Type:     "prohibited_content",
			Keywords: found,
			Severity: SeverityHigh,
			Action:   ActionBlock,
		})
		a.Severity = SeverityHigh
		a.Flagged = true
	}

	if domains := highRiskMatches(safe, tags); len(domains) > 0 {
		compliance := matchWords(safe, complianceKeywords)
		if len(compliance) == 0 {
			a.Flags = append(a.Flags, EthicsFlag{
				Type:           "missing_compliance",
				Domains:        domains,
				Severity:       SeverityMedium,
				Action:         ActionDownrank,
				Recommendation: "Add compliance documentation",
			})
			if a.Severity != SeverityHigh {
				a.Severity = SeverityMedium
			}
			a.Flagged = true
		} else {
			a.ComplianceScore = Clamp(float64(len(compliance))/5, 0, 1)
		}
	}

	a.EthicalScore = ethicalScore(safe, esgTotal)

	if concerns := privacyConcerns(safe); len(concerns) > 0 {
		a.Flags = append(a.Flags, EthicsFlag{
			Type:           "privacy_concern",
			Issues:         concerns,
			Severity:       SeverityMedium,
			Action:         ActionReview,
			Recommendation: "Ensure GDPR/privacy compliance",
		})
		if a.Severity == SeverityNone {
			a.Severity = SeverityMedium
		}
	}

	switch a.Severity {
	case SeverityHigh:
		a.Action = ActionBlock
	case SeverityMedium:
		a.Action = ActionDownrank
	default:
		a.Action = ActionPass
	}
	a.AdjustmentFactor = adjustmentFactor(a.Severity, a.EthicalScore)
	return a
}

func matchWords(text string, words []string) []string {
	var found []string
	for _, w := range words {
		if wordPatterns[w].MatchString(text) {
			found = append(found, w)
		}
	}
	sort.Strings(found)
	return found
}

func highRiskMatches(text string, tags []string) []string {
	set := make(map[string]struct{})
	for _, d := range matchWords(text, highRiskDomains) {
		set[d] = struct{}{}
	}
	for _, tag := range tags {
		t := strings.ToLower(tag)
		for _, d := range highRiskDomains {
			if t == d {
				set[d] = struct{}{}
			}
		}
	}
	out := make([]string, 0, len(set))
	for d := range set {
		out = append(out, d)
	}
	sort.Strings(out)
	return out
}

func privacyConcerns(text string) []string {
	var concerns []string
	if dataCollection.MatchString(text) && !privacySafeguards.MatchString(text) {
		concerns = append(concerns, "Data collection without privacy safeguards mentioned")
	}
	if personalData.MatchString(text) && !securityMention.MatchString(text) {
		concerns = append(concerns, "Personal information handling without security mention")
	}
	return concerns
}

func ethicalScore(text string, esgTotal float64) float64 {
	var score float64
	for _, ind := range ethicalIndicators {
		if wordPatterns[ind.keyword].MatchString(text) {
			score += ind.weight
		}
	}
	score += Sanitize(esgTotal, 0, 1, 0) * 0.2
	return Clamp(score, 0, 1)
}

func adjustmentFactor(sev Severity, ethical float64) float64 {
	switch sev {
	case SeverityHigh:
		return 0
	case SeverityMedium:
		return Clamp(0.5+ethical*0.3, 0, 1)
	default:
		return Clamp(1+ethical*0.1, 0, 1)
	}
}

func textHash(text string) string {
	sum := sha256.Sum256([]byte(text))
	return hex.EncodeToString(sum[:])[:16]
}

// EthicsLogEntry records one screening decision.
type EthicsLogEntry struct {
	TextHash  string       `json:"text_hash"`
	Flagged   bool         `json:"flagged"`
	Flags     []EthicsFlag `json:"flags"`
	Severity  Severity     `json:"severity"`
	Timestamp time.Time    `json:"timestamp"`
}

// EthicsLog is an append-only record of screening decisions.
type EthicsLog struct {
	mu      sync.RWMutex
	entries []EthicsLogEntry
}

// Append records an assessment.
func (l *EthicsLog) Append(a EthicsAssessment) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append(l.entries, EthicsLogEntry{
		TextHash:  a.TextHash,
		Flagged:   a.Flagged,
		Flags:     a.Flags,
		Severity:  a.Severity,
		Timestamp: time.Now().UTC(),
	})
}

// Entries returns a copy of the log.
func (l *EthicsLog) Entries() []EthicsLogEntry {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return append([]EthicsLogEntry(nil), l.entries...)
}

// Len returns the number of entries.
func (l *EthicsLog) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.entries)
}
