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


package respond

import "github.com/poiesic/hybridkb/core"

var domainApproaches = map[core.Domain]string{
	core.DomainSoftware:     "Approach: check the implementation against the referenced APIs and test it in isolation.",
	core.DomainTrading:      "Approach: validate the idea with a backtest and size positions against risk limits.",
	core.DomainArchitecture: "Approach: weigh the trade-offs against scalability, coupling and operational cost.",
	core.DomainCross:        "Approach: compare the candidates on the criteria that matter for your context.",
}

func domainApproach(domain core.Domain) string {
	if a, ok := domainApproaches[domain]; ok {
		return a
	}
	return "Approach: start from the best match and follow its relationships."
}

var domainSuggestions = map[core.Domain][]string{
	core.DomainSoftware: {
		"Ask for a code example of the top match.",
		"Ask which libraries implement it.",
	},
	core.DomainTrading: {
		"Ask how to backtest a strategy built on it.",
		"Ask which indicators confirm the signal.",
	},
	core.DomainArchitecture: {
		"Ask about failure modes and how to mitigate them.",
		"Ask how the design scales with load.",
	},
	core.DomainCross: {
		"Ask for a side by side comparison on a specific criterion.",
	},
}

var intentSuggestions = map[core.Intent]string{
	core.IntentImplement:  "Ask for step by step implementation guidance.",
	core.IntentUnderstand: "Ask for a simpler explanation or an analogy.",
	core.IntentCompare:    "Ask which option fits a concrete scenario.",
	core.IntentDesign:     "Ask for a reference design that uses these components.",
	core.IntentDebug:      "Describe the exact error or symptom to narrow the cause.",
}

// suggestions returns follow-up prompts for the query's domain and intent.
func suggestions(query core.Query) []string {
	out := append([]string{}, domainSuggestions[query.Domain]...)
	if s, ok := intentSuggestions[query.Intent]; ok {
		out = append(out, s)
	}
	if len(out) == 0 {
		out = append(out, "Ask a more specific follow-up question.")
	}
	return out
}
