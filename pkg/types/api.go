package types

// CompressRequest is the payload accepted by POST /compress.
type CompressRequest struct {
	// Prompt segments to compress. Each entry is treated as one context.
	// example: ["Meeting notes from Monday ...", "Action items ..."]
	Prompts []string `json:"prompts"`
	// Overall compression rate in (0, 1]. Values outside the range are ignored.
	// example: 0.5
	Rate float64 `json:"rate,omitempty" example:"0.5"`
	// Target token count for the compressed output. Must be > 0 to take effect.
	// example: 256
	TargetToken int `json:"target_token,omitempty" example:"256"`
	// Target rate applied when selecting whole contexts. Must be > 0.
	// example: 1.2
	TargetContextLevelRate float64 `json:"target_context_level_rate,omitempty" example:"1.2"`
	// Per-context compression rate in (0, 1]. Values outside the range are ignored.
	// example: 0.6
	ContextLevelRate float64 `json:"context_level_rate,omitempty" example:"0.6"`
	// Per-context target token count. Must be > 0 to take effect.
	// example: 128
	ContextLevelTargetToken int `json:"context_level_target_token,omitempty" example:"128"`
	// Tokens that mark chunk boundaries and are always retained.
	// example: ".\n"
	ChunkEndTokens string `json:"chunk_end_tokens,omitempty" example:".\n"`
	// Optional query hint. Accepted for API compatibility; not forwarded to the worker.
	Query string `json:"query,omitempty"`
}

// CompressResponse is returned by POST /compress.
type CompressResponse struct {
	// Compressed prompt segments, one per input context.
	Prompts []string `json:"prompts"`
	// Token count of the input across all contexts.
	// example: 1024
	OriginalTokens int `json:"original_tokens" example:"1024"`
	// Token count of the compressed output across all contexts.
	// example: 512
	CompressedTokens int `json:"compressed_tokens" example:"512"`
	// Achieved compression rate (compressed / original).
	// example: 0.5
	Rate float64 `json:"rate" example:"0.5"`
}

// PoolConfig is the worker configuration bound to every instance in the pool.
// On POST /reconfigure, empty fields inherit the current value.
type PoolConfig struct {
	// Model identifier: a local model path or a remote model id.
	// example: microsoft/llmlingua-2-xlm-roberta-large-meetingbank
	Model string `json:"model,omitempty" example:"microsoft/llmlingua-2-xlm-roberta-large-meetingbank"`
	// Execution device the model is loaded on.
	// example: cpu
	Device string `json:"device,omitempty" example:"cpu"`
	// Selects the lingua2 token-classification compression variant.
	// example: true
	UseLingua2 bool `json:"use_lingua2,omitempty" example:"true"`
}

// PoolStatus summarizes the worker pool for /status and /health.
type PoolStatus struct {
	// Fixed number of worker slots.
	// example: 2
	PoolSize int `json:"pool_size" example:"2"`
	// Slots currently available for checkout.
	// example: 1
	Available int `json:"available" example:"1"`
	// Slots currently checked out.
	// example: 1
	InUse int `json:"in_use" example:"1"`
	// Model identifier bound to the workers.
	Model string `json:"model"`
	// Device the workers run on.
	// example: cpu
	Device string `json:"device" example:"cpu"`
}

// StatusResponse is returned by GET /status.
type StatusResponse struct {
	// Overall service state (ready, degraded).
	// example: ready
	State string `json:"state" example:"ready"`
	// Compression backend in use (llama, heuristic).
	// example: llama
	Backend string `json:"backend" example:"llama"`
	// Worker pool snapshot.
	Pool PoolStatus `json:"pool"`
	// Uptime of the server in seconds.
	// example: 3600
	UptimeSeconds int64 `json:"uptime_seconds" example:"3600"`
	// Server time in unix seconds.
	// example: 1700000000
	ServerTimeUnix int64 `json:"server_time_unix" example:"1700000000"`
}

// HealthResponse is returned by GET /health.
type HealthResponse struct {
	// Health state: healthy or initializing.
	// example: healthy
	Status string `json:"status" example:"healthy"`
	// Worker pool snapshot, omitted while the pool has no workers.
	PoolStatus *PoolStatus `json:"pool_status"`
}

// ErrorResponse is a consistent JSON error payload.
type ErrorResponse struct {
	// Error message.
	// example: invalid JSON body
	Error string `json:"error" example:"invalid JSON body"`
	// HTTP status code.
	// example: 400
	Code int `json:"code" example:"400"`
}
