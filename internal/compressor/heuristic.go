package compressor

import (
	"context"
	"math"
	"sort"
	"strings"

	"compressd/pkg/types"
)

// defaultRate is applied when a request carries neither a rate nor a target
// token count.
const defaultRate = 0.5

// heuristicCompressor drops high-frequency (low-information) tokens until
// each context meets its target. Deterministic: same input, same params,
// same output. Whitespace tokenization; token order is preserved.
type heuristicCompressor struct {
	cfg types.PoolConfig
}

func newHeuristicCompressor(cfg types.PoolConfig) *heuristicCompressor {
	return &heuristicCompressor{cfg: cfg}
}

func (c *heuristicCompressor) Compress(ctx context.Context, contexts []string, params types.CompressionParams) (types.CompressionResult, error) {
	if err := ctx.Err(); err != nil {
		return types.CompressionResult{}, err
	}
	tokenized := make([][]string, len(contexts))
	total := 0
	for i, s := range contexts {
		tokenized[i] = strings.Fields(s)
		total += len(tokenized[i])
	}

	targets := perContextTargets(tokenized, total, params)
	boundary := chunkEndSet(params.ChunkEndTokens)

	out := make([]string, len(contexts))
	kept := 0
	for i, toks := range tokenized {
		sel := selectTokens(toks, targets[i], boundary)
		out[i] = strings.Join(sel, " ")
		kept += len(sel)
	}

	rate := 0.0
	if total > 0 {
		rate = float64(kept) / float64(total)
	}
	return types.CompressionResult{
		CompressedPrompts: out,
		OriginTokens:      total,
		CompressedTokens:  kept,
		Rate:              rate,
	}, nil
}

func (c *heuristicCompressor) Close() error { return nil }

// perContextTargets resolves the requested parameters into a kept-token
// budget per context. Per-context parameters win over the overall ones; an
// overall budget is distributed proportionally to context length.
func perContextTargets(tokenized [][]string, total int, params types.CompressionParams) []int {
	targets := make([]int, len(tokenized))
	switch {
	case params.ContextLevelTargetToken > 0:
		for i, toks := range tokenized {
			targets[i] = minInt(params.ContextLevelTargetToken, len(toks))
		}
	case params.ContextLevelRate > 0:
		for i, toks := range tokenized {
			targets[i] = ceilRate(len(toks), params.ContextLevelRate)
		}
	case params.TargetContextLevelRate > 0:
		r := math.Min(params.TargetContextLevelRate, 1)
		for i, toks := range tokenized {
			targets[i] = ceilRate(len(toks), r)
		}
	default:
		budget := params.TargetToken
		if budget <= 0 {
			r := params.Rate
			if r <= 0 {
				r = defaultRate
			}
			budget = ceilRate(total, r)
		}
		if budget >= total {
			for i, toks := range tokenized {
				targets[i] = len(toks)
			}
			return targets
		}
		for i, toks := range tokenized {
			if total > 0 {
				targets[i] = int(math.Round(float64(budget) * float64(len(toks)) / float64(total)))
			}
		}
	}
	return targets
}

// selectTokens keeps the `keep` rarest tokens of the context plus every
// chunk-boundary token, in original order. A non-empty context always
// retains at least one token.
func selectTokens(tokens []string, keep int, boundary map[rune]struct{}) []string {
	if len(tokens) == 0 {
		return tokens
	}
	if keep >= len(tokens) {
		return tokens
	}
	if keep < 1 {
		keep = 1
	}
	freq := make(map[string]int, len(tokens))
	for _, t := range tokens {
		freq[strings.ToLower(t)]++
	}
	order := make([]int, len(tokens))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		fa := freq[strings.ToLower(tokens[order[a]])]
		fb := freq[strings.ToLower(tokens[order[b]])]
		if fa != fb {
			return fa < fb
		}
		return order[a] < order[b]
	})

	keepSet := make(map[int]struct{}, keep)
	for _, idx := range order[:keep] {
		keepSet[idx] = struct{}{}
	}
	for i, t := range tokens {
		if endsOnBoundary(t, boundary) {
			keepSet[i] = struct{}{}
		}
	}

	out := make([]string, 0, len(keepSet))
	for i, t := range tokens {
		if _, ok := keepSet[i]; ok {
			out = append(out, t)
		}
	}
	return out
}

// chunkEndSet interprets the chunk_end_tokens string as a set of boundary
// runes (e.g. ".\n").
func chunkEndSet(s string) map[rune]struct{} {
	if s == "" {
		return nil
	}
	set := make(map[rune]struct{}, len(s))
	for _, r := range s {
		set[r] = struct{}{}
	}
	return set
}

func endsOnBoundary(token string, boundary map[rune]struct{}) bool {
	if len(boundary) == 0 || token == "" {
		return false
	}
	runes := []rune(token)
	_, ok := boundary[runes[len(runes)-1]]
	return ok
}

func ceilRate(n int, rate float64) int {
	return int(math.Ceil(float64(n) * rate))
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
