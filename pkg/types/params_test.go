package types

import "testing"

func TestBuildCompressionParamsValidRanges(t *testing.T) {
	req := CompressRequest{
		Rate:                    0.4,
		TargetToken:             200,
		TargetContextLevelRate:  1.5,
		ContextLevelRate:        0.7,
		ContextLevelTargetToken: 80,
		ChunkEndTokens:          ".\n",
	}
	p := BuildCompressionParams(req)
	if p.Rate != 0.4 {
		t.Fatalf("rate=%v", p.Rate)
	}
	if p.TargetToken != 200 {
		t.Fatalf("target_token=%d", p.TargetToken)
	}
	if p.TargetContextLevelRate != 1.5 {
		t.Fatalf("target_context_level_rate=%v", p.TargetContextLevelRate)
	}
	if p.ContextLevelRate != 0.7 {
		t.Fatalf("context_level_rate=%v", p.ContextLevelRate)
	}
	if p.ContextLevelTargetToken != 80 {
		t.Fatalf("context_level_target_token=%d", p.ContextLevelTargetToken)
	}
	if p.ChunkEndTokens != ".\n" {
		t.Fatalf("chunk_end_tokens=%q", p.ChunkEndTokens)
	}
}

func TestBuildCompressionParamsDropsInvalid(t *testing.T) {
	req := CompressRequest{
		Rate:                    1.5, // > 1
		TargetToken:             -3,
		TargetContextLevelRate:  0,
		ContextLevelRate:        0, // unset
		ContextLevelTargetToken: 0,
	}
	p := BuildCompressionParams(req)
	if p != (CompressionParams{}) {
		t.Fatalf("expected empty params, got %+v", p)
	}
}

func TestBuildCompressionParamsRateBoundary(t *testing.T) {
	p := BuildCompressionParams(CompressRequest{Rate: 1.0})
	if p.Rate != 1.0 {
		t.Fatalf("rate 1.0 must be accepted, got %v", p.Rate)
	}
	p = BuildCompressionParams(CompressRequest{Rate: 0})
	if p.Rate != 0 {
		t.Fatalf("rate 0 must be dropped, got %v", p.Rate)
	}
}

func TestBuildCompressionParamsIgnoresQuery(t *testing.T) {
	// Query is accepted on the wire but never forwarded to workers.
	p := BuildCompressionParams(CompressRequest{Query: "what changed?"})
	if p != (CompressionParams{}) {
		t.Fatalf("expected empty params, got %+v", p)
	}
}
