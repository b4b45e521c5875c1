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

import "strings"

// punctuation trimmed from both ends of every token.
const punctuation = ".,!?;:'\"-()[]{}"

// token is one whitespace-separated word of the query.
type token struct {
	raw   string // punctuation trimmed, original case
	lower string
}

// tokenize splits text on whitespace and trims surrounding punctuation.
// Tokens that are pure punctuation are dropped.
func tokenize(text string) []token {
	fields := strings.Fields(text)
	tokens := make([]token, 0, len(fields))
	for _, field := range fields {
		raw := strings.Trim(field, punctuation)
		if raw == "" {
			continue
		}
		tokens = append(tokens, token{raw: raw, lower: strings.ToLower(raw)})
	}
	return tokens
}

// normalized holds a query in the forms the rules match against.
type normalized struct {
	tokens []token
}

func normalize(text string) normalized {
	return normalized{tokens: tokenize(text)}
}

// count returns how many token windows spell out phrase. Adjacent
// occurrences are each counted.
func (n normalized) count(phrase string) int {
	words := strings.Fields(phrase)
	if len(words) == 0 {
		return 0
	}
	total := 0
	for i := 0; i+len(words) <= len(n.tokens); i++ {
		if n.matchesAt(i, words) {
			total++
		}
	}
	return total
}

func (n normalized) matchesAt(i int, words []string) bool {
	for j, w := range words {
		if n.tokens[i+j].lower != w {
			return false
		}
	}
	return true
}

// has reports whether phrase occurs as whole words.
func (n normalized) has(phrase string) bool {
	words := strings.Fields(phrase)
	if len(words) == 0 {
		return false
	}
	for i := 0; i+len(words) <= len(n.tokens); i++ {
		if n.matchesAt(i, words) {
			return true
		}
	}
	return false
}

// hasAny reports whether any phrase occurs as whole words.
func (n normalized) hasAny(phrases []string) bool {
	for _, p := range phrases {
		if n.has(p) {
			return true
		}
	}
	return false
}

// score sums whole-word occurrences of every phrase.
func (n normalized) score(phrases []string) int {
	total := 0
	for _, p := range phrases {
		total += n.count(p)
	}
	return total
}
