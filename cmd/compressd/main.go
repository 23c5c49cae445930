package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"compressd/internal/compressor"
	"compressd/internal/config"
	"compressd/internal/httpapi"
	"compressd/internal/pool"
	"compressd/internal/registry"
	"compressd/pkg/types"
)

const (
	defaultAddr            = ":8000"
	defaultModelPath       = "./models/llmlingua-2-xlm-roberta-large-meetingbank"
	defaultRemoteModel     = "microsoft/llmlingua-2-xlm-roberta-large-meetingbank"
	defaultDevice          = "cuda"
	defaultPoolSize        = 2
	defaultAcquireTimeout  = 30
	defaultIdleTimeout     = 900
	defaultShutdownTimeout = 900
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "compressd",
		Short:         "Prompt compression service backed by a bounded worker pool",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          run,
	}
	// Flags with environment variable defaults
	f := root.Flags()
	f.String("config", envStr("COMPRESSD_CONFIG", ""), "Path to config file (.yaml, .json or .toml)")
	f.String("addr", envStr("COMPRESSD_ADDR", ""), "HTTP listen address, e.g. :8000")
	f.String("model-path", envStr("COMPRESSD_MODEL_PATH", ""), "Local model directory; when missing, --model is used")
	f.String("model", envStr("COMPRESSD_MODEL", ""), "Remote model id used when --model-path does not exist")
	f.String("device", envStr("COMPRESSD_DEVICE", ""), "Device to place workers on: cuda or cpu")
	f.Int("pool-size", envInt("COMPRESSD_POOL_SIZE", 0), "Number of compressor workers in the pool")
	f.String("backend", envStr("COMPRESSD_BACKEND", ""), "Compression backend: llama or heuristic")
	f.String("log-level", envStr("COMPRESSD_LOG_LEVEL", ""), "Log level: debug|info|warn|error")
	f.String("log-format", envStr("COMPRESSD_LOG_FORMAT", ""), "Log format: json or console")
	return root
}

func run(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}

	logger := buildLogger(cfg.LogLevel, cfg.LogFormat)
	httpapi.SetLogger(logger)

	modelRef, local, err := registry.ResolveModel(cfg.ModelPath, cfg.Model)
	if err != nil {
		return fmt.Errorf("resolve model: %w", err)
	}
	if local {
		logger.Info().Str("path", modelRef).Msg("using local model path")
	} else {
		logger.Info().Str("model", modelRef).Msg("local model path not found, using remote model")
	}

	factory, err := compressor.NewFactory(cfg.Backend, compressor.Options{
		CtxSize:   cfg.LlamaCtx,
		Threads:   cfg.LlamaThreads,
		GPULayers: cfg.GPULayers,
	})
	if err != nil {
		return err
	}

	useLingua2 := true
	if cfg.UseLingua2 != nil {
		useLingua2 = *cfg.UseLingua2
	}
	p, err := pool.New(pool.Settings{
		Capacity: cfg.PoolSize,
		Factory:  factory,
		Config: types.PoolConfig{
			Model:      modelRef,
			Device:     cfg.Device,
			UseLingua2: useLingua2,
		},
		PollInterval: time.Duration(cfg.PollIntervalMS) * time.Millisecond,
		Logger:       &logger,
	})
	if err != nil {
		return fmt.Errorf("initialize pool: %w", err)
	}
	svc := pool.NewService(p, pool.ServiceSettings{
		AcquireTimeout: time.Duration(cfg.AcquireTimeoutSeconds) * time.Second,
		Backend:        cfg.Backend,
		Logger:         &logger,
	})
	defer svc.Close()

	baseCtx, cancelBase := context.WithCancel(context.Background())
	defer cancelBase()
	httpapi.SetBaseContext(baseCtx)
	if cfg.MaxBodyBytes > 0 {
		httpapi.SetMaxBodyBytes(cfg.MaxBodyBytes)
	}
	if cfg.CORSEnabled {
		httpapi.SetCORSOptions(true, splitCSV(cfg.CORSOrigins), splitCSV(cfg.CORSMethods), splitCSV(cfg.CORSHeaders))
	}
	if cfg.ThrottleRPS > 0 {
		httpapi.SetThrottle(cfg.ThrottleRPS, cfg.ThrottleBurst)
	}

	srv := &http.Server{
		Addr:        cfg.Addr,
		Handler:     httpapi.NewMux(svc),
		IdleTimeout: time.Duration(cfg.IdleTimeoutSeconds) * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info().Str("addr", cfg.Addr).Str("backend", cfg.Backend).Int("pool_size", cfg.PoolSize).Msg("compressd listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	// Graceful shutdown (Ctrl+C / SIGTERM)
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	case sig := <-stop:
		logger.Info().Str("signal", sig.String()).Msg("shutting down")
	}

	// Cancel in-flight work first, then drain the listener.
	cancelBase()
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.ShutdownTimeoutSeconds)*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("graceful shutdown error: %v", err)
	}
	return nil
}

// resolveConfig merges, in increasing precedence: built-in defaults, the
// config file (if any), then flags (whose defaults already carry the
// COMPRESSD_* environment values).
func resolveConfig(cmd *cobra.Command) (config.Config, error) {
	var cfg config.Config
	if path, _ := cmd.Flags().GetString("config"); path != "" {
		loaded, err := config.Load(path)
		if err != nil {
			return cfg, fmt.Errorf("load config %s: %w", path, err)
		}
		cfg = loaded
	}

	f := cmd.Flags()
	if v, _ := f.GetString("addr"); v != "" {
		cfg.Addr = v
	}
	if v, _ := f.GetString("model-path"); v != "" {
		cfg.ModelPath = v
	}
	if v, _ := f.GetString("model"); v != "" {
		cfg.Model = v
	}
	if v, _ := f.GetString("device"); v != "" {
		cfg.Device = v
	}
	if v, _ := f.GetInt("pool-size"); v != 0 {
		cfg.PoolSize = v
	}
	if v, _ := f.GetString("backend"); v != "" {
		cfg.Backend = v
	}
	if v, _ := f.GetString("log-level"); v != "" {
		cfg.LogLevel = v
	}
	if v, _ := f.GetString("log-format"); v != "" {
		cfg.LogFormat = v
	}

	if cfg.Addr == "" {
		cfg.Addr = defaultAddr
	}
	if cfg.ModelPath == "" {
		cfg.ModelPath = defaultModelPath
	}
	if cfg.Model == "" {
		cfg.Model = defaultRemoteModel
	}
	if cfg.Device == "" {
		cfg.Device = defaultDevice
	}
	if cfg.PoolSize <= 0 {
		cfg.PoolSize = defaultPoolSize
	}
	if cfg.Backend == "" {
		cfg.Backend = compressor.BackendLlama
	}
	if cfg.AcquireTimeoutSeconds <= 0 {
		cfg.AcquireTimeoutSeconds = defaultAcquireTimeout
	}
	if cfg.IdleTimeoutSeconds <= 0 {
		cfg.IdleTimeoutSeconds = defaultIdleTimeout
	}
	if cfg.ShutdownTimeoutSeconds <= 0 {
		cfg.ShutdownTimeoutSeconds = defaultShutdownTimeout
	}
	return cfg, nil
}

// buildLogger constructs the process logger. Console output is the default
// for interactive use; json is meant for log collectors.
func buildLogger(level, format string) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil || level == "" {
		lvl = zerolog.InfoLevel
	}
	var l zerolog.Logger
	if strings.EqualFold(format, "json") {
		l = zerolog.New(os.Stderr)
	} else {
		l = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	}
	return l.Level(lvl).With().Timestamp().Str("service", "compressd").Logger()
}

func envStr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		var n int
		if _, err := fmt.Sscanf(v, "%d", &n); err == nil {
			return n
		}
	}
	return def
}

// splitCSV splits a comma-separated list, trimming blanks.
func splitCSV(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
