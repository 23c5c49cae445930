//go:build llama

package compressor

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"

	llama "github.com/go-skynet/go-llama.cpp"

	"compressd/pkg/types"
)

// llamaBuilt indicates this binary was compiled with real llama support.
var llamaBuilt = true

// llamaCompressor owns one loaded model. Loading is expensive and the model
// context is stateful, so an instance must never serve two callers at once;
// the pool enforces that.
type llamaCompressor struct {
	model   *llama.LLama
	threads int
	cfg     types.PoolConfig
}

func newLlamaCompressor(cfg types.PoolConfig, opts Options) (*llamaCompressor, error) {
	if strings.TrimSpace(cfg.Model) == "" {
		return nil, errors.New("model path is empty")
	}
	mo := []llama.ModelOption{
		llama.SetContext(zn(opts.CtxSize, 2048)),
		llama.EnableEmbeddings,
	}
	if cfg.Device == "cuda" {
		mo = append(mo, llama.SetGPULayers(zn(opts.GPULayers, 32)))
	}
	m, err := llama.New(cfg.Model, mo...)
	if err != nil {
		return nil, fmt.Errorf("load model %s: %w", cfg.Model, err)
	}
	return &llamaCompressor{model: m, threads: zn(opts.Threads, 4), cfg: cfg}, nil
}

func (c *llamaCompressor) Compress(ctx context.Context, contexts []string, params types.CompressionParams) (types.CompressionResult, error) {
	if c.model == nil {
		return types.CompressionResult{}, errors.New("llama model not initialized")
	}
	if err := ctx.Err(); err != nil {
		return types.CompressionResult{}, err
	}

	counts := make([]int, len(contexts))
	total := 0
	for i, s := range contexts {
		counts[i] = c.countTokens(s)
		total += counts[i]
	}

	// Context-level stage: when the request asks for fewer whole contexts,
	// rank contexts by embedding centrality and blank out the least central.
	kept := contexts
	if r := params.TargetContextLevelRate; r > 0 && r < 1 && len(contexts) > 1 {
		kept = c.selectContexts(contexts, r)
	}

	// Token-level stage. The binding exposes no per-token logits, so
	// in-context selection uses the frequency scorer over model tokens.
	tokenParams := params
	tokenParams.TargetContextLevelRate = 0
	h := heuristicCompressor{cfg: c.cfg}
	res, err := h.Compress(ctx, kept, tokenParams)
	if err != nil {
		return types.CompressionResult{}, err
	}

	compressed := 0
	for _, s := range res.CompressedPrompts {
		compressed += c.countTokens(s)
	}
	rate := 0.0
	if total > 0 {
		rate = float64(compressed) / float64(total)
	}
	return types.CompressionResult{
		CompressedPrompts: res.CompressedPrompts,
		OriginTokens:      total,
		CompressedTokens:  compressed,
		Rate:              rate,
	}, nil
}

func (c *llamaCompressor) Close() error {
	if c.model != nil {
		c.model.Free()
		c.model = nil
	}
	return nil
}

// countTokens counts model tokens, falling back to whitespace tokens when
// the tokenizer fails.
func (c *llamaCompressor) countTokens(s string) int {
	if s == "" {
		return 0
	}
	n, _, err := c.model.TokenizeString(s, llama.SetThreads(c.threads))
	if err != nil || n <= 0 {
		return len(strings.Fields(s))
	}
	return int(n)
}

// selectContexts keeps the ceil(rate*n) contexts whose embeddings are most
// central, blanking the rest so the output stays aligned with the input.
func (c *llamaCompressor) selectContexts(contexts []string, rate float64) []string {
	embs := make([][]float32, len(contexts))
	for i, s := range contexts {
		e, err := c.model.Embeddings(s, llama.SetThreads(c.threads))
		if err != nil {
			// Without embeddings there is no ranking signal; keep everything.
			return contexts
		}
		embs[i] = e
	}
	centroid := meanVector(embs)
	keep := ceilRate(len(contexts), rate)
	type scored struct {
		idx int
		sim float64
	}
	ranked := make([]scored, len(contexts))
	for i, e := range embs {
		ranked[i] = scored{idx: i, sim: cosine(e, centroid)}
	}
	for i := 0; i < len(ranked); i++ {
		for j := i + 1; j < len(ranked); j++ {
			if ranked[j].sim > ranked[i].sim {
				ranked[i], ranked[j] = ranked[j], ranked[i]
			}
		}
	}
	keepSet := make(map[int]struct{}, keep)
	for _, s := range ranked[:keep] {
		keepSet[s.idx] = struct{}{}
	}
	out := make([]string, len(contexts))
	for i, s := range contexts {
		if _, ok := keepSet[i]; ok {
			out[i] = s
		}
	}
	return out
}

func meanVector(vs [][]float32) []float32 {
	if len(vs) == 0 || len(vs[0]) == 0 {
		return nil
	}
	out := make([]float32, len(vs[0]))
	for _, v := range vs {
		for i := range out {
			if i < len(v) {
				out[i] += v[i]
			}
		}
	}
	for i := range out {
		out[i] /= float32(len(vs))
	}
	return out
}

func cosine(a, b []float32) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	var dot, na, nb float64
	for i := 0; i < n; i++ {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}

func zn(v, def int) int {
	if v > 0 {
		return v
	}
	return def
}
