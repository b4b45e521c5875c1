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

import "github.com/poiesic/hybridkb/core"

// Domain keyword sets. Entries may be multi-word phrases; every entry is
// matched as whole words against the normalized query.
var (
	softwareKeywords = []string{
		"code", "coding", "function", "method", "class", "interface", "api",
		"rest", "graphql", "grpc", "endpoint", "database", "sql", "query language",
		"bug", "debug", "compile", "compiler", "test", "testing", "unit test",
		"library", "framework", "refactor", "refactoring", "programming",
		"variable", "loop", "recursion", "exception", "data structure",
		"algorithm", "python", "golang", "javascript", "typescript", "java",
		"rust", "git", "deploy", "deployment", "concurrency", "goroutine",
		"thread", "memory leak", "http", "json", "orm", "schema",
	}

	tradingKeywords = []string{
		"trading", "trade", "trader", "trading strategy", "market", "markets",
		"stock", "stocks", "forex", "fx", "currency", "currency pair", "pip",
		"pips", "price", "momentum", "volatility", "portfolio", "hedge",
		"hedging", "risk management", "position sizing", "order book",
		"candlestick", "indicator", "rsi", "macd", "moving average",
		"backtest", "backtesting", "arbitrage", "liquidity", "spread",
		"leverage", "bullish", "bearish", "scalping", "swing trading",
		// Major currency pairs
		"eurusd", "gbpusd", "usdjpy", "usdchf", "audusd", "usdcad", "nzdusd",
		"eurgbp", "eurjpy", "gbpjpy", "eur/usd", "gbp/usd", "usd/jpy",
	}

	architectureKeywords = []string{
		"architecture", "architectural", "microservice", "microservices",
		"monolith", "scalability", "scalable", "distributed", "system design",
		"design pattern", "pattern", "patterns", "event-driven", "event driven",
		"message queue", "message broker", "load balancer", "load balancing",
		"caching", "service mesh", "layered", "hexagonal", "cqrs",
		"event sourcing", "domain-driven", "ddd", "coupling", "cohesion",
		"infrastructure", "high availability", "fault tolerance",
		"circuit breaker", "sharding", "replication",
	}
)

// crossDomainMarkers force CROSS_DOMAIN regardless of keyword scores.
var crossDomainMarkers = []string{
	"compare", "versus", "vs", "alternative", "alternatives", "approach", "approaches",
}

// complexityRule pairs a complexity with the phrases that indicate it.
type complexityRule struct {
	complexity core.Complexity
	phrases    []string
}

// complexityRules are tested in order; the first rule with a matching phrase wins.
var complexityRules = []complexityRule{
	{core.ComplexityFactual, []string{
		"what is", "what are", "what's", "define", "definition", "who", "when was",
		"list", "how many", "which",
	}},
	{core.ComplexityStrategy, []string{
		"strategy", "strategies", "when to", "should i", "best way", "optimize",
		"optimise", "improve", "how to", "how do i", "how should",
	}},
	{core.ComplexityArchitectural, []string{
		"architecture", "design", "structure", "scale", "scaling", "system",
		"components",
	}},
	{core.ComplexityComparative, []string{
		"compare", "comparison", "versus", "vs", "difference", "differences",
		"better", "pros and cons", "trade-off", "tradeoff", "tradeoffs",
	}},
}

// domainComplexity is used when no complexity phrase matches.
var domainComplexity = map[core.Domain]core.Complexity{
	core.DomainSoftware:     core.ComplexityFactual,
	core.DomainTrading:      core.ComplexityStrategy,
	core.DomainArchitecture: core.ComplexityArchitectural,
}

// intentRule pairs an intent with the phrases that indicate it.
type intentRule struct {
	intent  core.Intent
	phrases []string
}

// intentRules are tested in order; the first rule with a matching phrase wins.
var intentRules = []intentRule{
	{core.IntentImplement, []string{"implement", "implementing", "implementation", "code", "coding", "example", "examples"}},
	{core.IntentUnderstand, []string{"understand", "understanding", "explain", "explaining", "explanation", "meaning"}},
	{core.IntentCompare, []string{"compare", "comparing", "comparison", "versus", "better"}},
	{core.IntentDesign, []string{"design", "designing", "architecture", "architectures", "system", "systems"}},
	{core.IntentDebug, []string{"debug", "debugging", "error", "errors", "problem", "problems"}},
}

// stopWords are excluded from keywords and candidate entity names.
// Only words longer than three characters need listing.
var stopWords = map[string]bool{
	"what": true, "which": true, "when": true, "where": true, "does": true,
	"about": true, "into": true, "than": true, "then": true, "there": true,
	"their": true, "these": true, "those": true, "would": true, "should": true,
	"could": true, "your": true, "with": true, "from": true, "this": true,
	"that": true, "have": true, "were": true, "been": true, "being": true,
	"they": true, "them": true, "just": true, "some": true, "more": true,
	"most": true, "other": true, "such": true, "only": true, "also": true,
	"very": true, "tell": true, "explain": true, "please": true, "between": true,
	"work": true, "works": true, "using": true, "make": true, "will": true,
}
