package types

// CompressionParams is the validated parameter set handed to a worker.
// Zero values mean "not requested"; the worker applies its own defaults.
type CompressionParams struct {
	Rate                    float64
	TargetToken             int
	TargetContextLevelRate  float64
	ContextLevelRate        float64
	ContextLevelTargetToken int
	ChunkEndTokens          string
}

// CompressionResult is the raw outcome produced by a worker.
type CompressionResult struct {
	CompressedPrompts []string
	OriginTokens      int
	CompressedTokens  int
	Rate              float64
}

// BuildCompressionParams extracts the valid compression parameters from a
// request. Out-of-range values are dropped rather than rejected, so a request
// with a bad rate still compresses with defaults.
func BuildCompressionParams(req CompressRequest) CompressionParams {
	var p CompressionParams
	if req.Rate > 0 && req.Rate <= 1 {
		p.Rate = req.Rate
	}
	if req.TargetToken > 0 {
		p.TargetToken = req.TargetToken
	}
	if req.TargetContextLevelRate > 0 {
		p.TargetContextLevelRate = req.TargetContextLevelRate
	}
	if req.ContextLevelRate > 0 && req.ContextLevelRate <= 1 {
		p.ContextLevelRate = req.ContextLevelRate
	}
	if req.ContextLevelTargetToken > 0 {
		p.ContextLevelTargetToken = req.ContextLevelTargetToken
	}
	if req.ChunkEndTokens != "" {
		p.ChunkEndTokens = req.ChunkEndTokens
	}
	return p
}
