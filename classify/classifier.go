// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package classify

import (
	"regexp"
	"slices"

	"github.com/poiesic/hybridkb/core"
)

// minTermLength is the exclusive lower bound on keyword and name length.
const minTermLength = 3

var identifierPattern = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9_]*$`)

// Classify turns raw query text into a classified core.Query.
// It never fails: empty or unrecognizable text classifies as GENERAL.
func Classify(rawText string) core.Query {
	n := normalize(rawText)

	domain := classifyDomain(n)
	complexity := classifyComplexity(n, domain)
	intent := classifyIntent(n)

	return core.Query{
		Text:                 rawText,
		Domain:               domain,
		Complexity:           complexity,
		Intent:               intent,
		Strategy:             SelectStrategy(domain, complexity, intent),
		Keywords:             extractKeywords(n),
		CandidateEntityNames: extractCandidateNames(n),
	}
}

// classifyDomain scores the three concrete domains. Any cross-domain marker
// wins outright, even over a strong single-domain score.
func classifyDomain(n normalized) core.Domain {
	if n.hasAny(crossDomainMarkers) {
		return core.DomainCross
	}

	scores := []struct {
		domain core.Domain
		score  int
	}{
		{core.DomainSoftware, n.score(softwareKeywords)},
		{core.DomainTrading, n.score(tradingKeywords)},
		{core.DomainArchitecture, n.score(architectureKeywords)},
	}

	best, bestScore, tied := core.DomainGeneral, 0, false
	for _, s := range scores {
		switch {
		case s.score > bestScore:
			best, bestScore, tied = s.domain, s.score, false
		case s.score == bestScore && s.score > 0:
			tied = true
		}
	}
	if bestScore == 0 || tied {
		return core.DomainGeneral
	}
	return best
}

func classifyComplexity(n normalized, domain core.Domain) core.Complexity {
	for _, rule := range complexityRules {
		if n.hasAny(rule.phrases) {
			return rule.complexity
		}
	}
	if c, ok := domainComplexity[domain]; ok {
		return c
	}
	return core.ComplexityFactual
}

func classifyIntent(n normalized) core.Intent {
	for _, rule := range intentRules {
		if n.hasAny(rule.phrases) {
			return rule.intent
		}
	}
	return core.IntentUnderstand
}

// SelectStrategy applies the strategy decision table. Rows are checked in
// order and the first match wins.
func SelectStrategy(domain core.Domain, complexity core.Complexity, _ core.Intent) core.Strategy {
	switch {
	case domain == core.DomainSoftware && complexity == core.ComplexityFactual:
		return core.StrategyDeterministic
	case domain == core.DomainTrading:
		return core.StrategyGraph
	case complexity == core.ComplexityComparative:
		return core.StrategyHybrid
	case domain == core.DomainArchitecture:
		return core.StrategyGenerative
	default:
		return core.StrategyHybrid
	}
}

// extractKeywords returns the sorted set of lowercase tokens longer than
// minTermLength that are not stop words.
func extractKeywords(n normalized) []string {
	keywords := make([]string, 0, len(n.tokens))
	for _, t := range n.tokens {
		if len([]rune(t.lower)) > minTermLength && !stopWords[t.lower] {
			keywords = append(keywords, t.lower)
		}
	}
	slices.Sort(keywords)
	return slices.Compact(keywords)
}

// extractCandidateNames returns identifier-like tokens in first-occurrence
// order, keeping their original case.
func extractCandidateNames(n normalized) []string {
	names := make([]string, 0, len(n.tokens))
	seen := make(map[string]struct{}, len(n.tokens))
	for _, t := range n.tokens {
		if len(t.raw) <= minTermLength || stopWords[t.lower] || !identifierPattern.MatchString(t.raw) {
			continue
		}
		if _, dup := seen[t.raw]; dup {
			continue
		}
		seen[t.raw] = struct{}{}
		names = append(names, t.raw)
	}
	return names
}
