// Copyright 2025 The payx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package ai

import (
	"encoding/json"
	"strings"

	"github.com/pkoukk/tiktoken-go"
)

// historyTokenBudget caps the share of the prompt spent on historical
// records, leaving the rest of the context window for the subject
// record and the instructions.
const historyTokenBudget = 2000

// A tokenCounter measures prompt text in model tokens.
type tokenCounter interface {
	count(s string) int
}

type bpeCounter struct {
	enc *tiktoken.Tiktoken
}

func (c bpeCounter) count(s string) int {
	return len(c.enc.Encode(s, nil, nil))
}

// approxCounter stands in when no BPE encoding is available, such as
// in an offline environment where the encoding file cannot be fetched.
// Four bytes per token overestimates slightly for JSON, which only
// makes the trim more conservative.
type approxCounter struct{}

func (approxCounter) count(s string) int {
	return (len(s) + 3) / 4
}

func newCounter(model string) tokenCounter {
	if enc, err := tiktoken.EncodingForModel(model); err == nil {
		return bpeCounter{enc: enc}
	}
	if enc, err := tiktoken.GetEncoding("cl100k_base"); err == nil {
		return bpeCounter{enc: enc}
	}
	return approxCounter{}
}

// trimToBudget returns the longest suffix of docs that fits the token
// budget. Callers order docs oldest first, so the newest records
// survive the trim.
func trimToBudget(counter tokenCounter, docs []string, budget int) []string {
	total := 0
	i := len(docs)
	for i > 0 {
		n := counter.count(docs[i-1])
		if total+n > budget {
			break
		}
		total += n
		i--
	}
	return docs[i:]
}

// renderHistory marshals each record to one JSON document per line,
// trimmed to the token budget, oldest first.
func renderHistory[T any](counter tokenCounter, records []T, budget int) string {
	docs := make([]string, 0, len(records))
	for _, r := range records {
		b, err := json.Marshal(r)
		if err != nil {
			continue
		}
		docs = append(docs, string(b))
	}
	docs = trimToBudget(counter, docs, budget)
	if len(docs) == 0 {
		return "(none)"
	}
	return strings.Join(docs, "\n")
}
