package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/recallkit/recallkit/internal/adapters/memoryapi"
	"github.com/recallkit/recallkit/internal/adapters/ollama"
	tomlrepo "github.com/recallkit/recallkit/internal/adapters/repo/toml"
	"github.com/recallkit/recallkit/internal/adapters/spawn"
	"github.com/recallkit/recallkit/internal/adapters/transcript"
	"github.com/recallkit/recallkit/internal/debuglog"
	"github.com/recallkit/recallkit/internal/domain"
	"github.com/recallkit/recallkit/internal/ports"
)

type config struct {
	apiBaseURL      string
	searchTimeout   time.Duration
	feedbackTimeout time.Duration
	storeTimeout    time.Duration

	llmBaseURL       string
	model            string
	handoffModel     string
	summaryTimeout   time.Duration
	decisionsTimeout time.Duration
	handoffTimeout   time.Duration

	searchLimit   int
	minSimilarity float64
	searchDomain  string

	threshold float64

	stateDir  string
	workerBin string
}

func loadConfig() config {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("toml")
	if home, err := os.UserHomeDir(); err == nil {
		v.AddConfigPath(filepath.Join(home, ".config", "recallkit"))
	}
	v.SetEnvPrefix("RECALLKIT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("api.base_url", "http://localhost:8765")
	v.SetDefault("api.search_timeout", "3500ms")
	v.SetDefault("api.feedback_timeout", "8s")
	v.SetDefault("api.store_timeout", "10s")
	v.SetDefault("llm.base_url", "http://localhost:11434")
	v.SetDefault("llm.model", "qwen3:4b")
	v.SetDefault("llm.handoff_model", "qwen3:8b")
	v.SetDefault("llm.summary_timeout", "20s")
	v.SetDefault("llm.decisions_timeout", "45s")
	v.SetDefault("llm.handoff_timeout", "120s")
	v.SetDefault("search.limit", 5)
	v.SetDefault("search.min_similarity", 0.25)
	v.SetDefault("search.domain", "")
	v.SetDefault("handoff.threshold", domain.DefaultHandoffThreshold)
	v.SetDefault("handoff.worker_bin", "")
	v.SetDefault("state.dir", defaultStateDir())

	// A missing config file is the common case; defaults and env cover it.
	_ = v.ReadInConfig()

	cfg := config{
		apiBaseURL:       v.GetString("api.base_url"),
		searchTimeout:    v.GetDuration("api.search_timeout"),
		feedbackTimeout:  v.GetDuration("api.feedback_timeout"),
		storeTimeout:     v.GetDuration("api.store_timeout"),
		llmBaseURL:       v.GetString("llm.base_url"),
		model:            v.GetString("llm.model"),
		handoffModel:     v.GetString("llm.handoff_model"),
		summaryTimeout:   v.GetDuration("llm.summary_timeout"),
		decisionsTimeout: v.GetDuration("llm.decisions_timeout"),
		handoffTimeout:   v.GetDuration("llm.handoff_timeout"),
		searchLimit:      v.GetInt("search.limit"),
		minSimilarity:    v.GetFloat64("search.min_similarity"),
		searchDomain:     v.GetString("search.domain"),
		threshold:        v.GetFloat64("handoff.threshold"),
		stateDir:         v.GetString("state.dir"),
		workerBin:        v.GetString("handoff.worker_bin"),
	}
	if strings.TrimSpace(cfg.stateDir) == "" {
		cfg.stateDir = defaultStateDir()
	}

	return cfg
}

func defaultStateDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), "recallkit")
	}
	return filepath.Join(home, ".cache", "recallkit")
}

func (c config) workerBinPath() string {
	if c.workerBin != "" {
		return c.workerBin
	}
	if bin, err := os.Executable(); err == nil {
		return bin
	}
	return os.Args[0]
}

type app struct {
	cfg      config
	store    ports.SessionStore
	memories ports.MemoryService
	llm      ports.Generator
	reader   ports.TranscriptReader
	detacher ports.Detacher
	clock    ports.Clock
}

func wireApp() (*app, error) {
	cfg := loadConfig()

	store, err := tomlrepo.NewSessionStore(cfg.stateDir)
	if err != nil {
		return nil, fmt.Errorf("wire session store: %w", err)
	}

	return &app{
		cfg:   cfg,
		store: store,
		memories: memoryapi.NewClient(memoryapi.Config{
			BaseURL:         cfg.apiBaseURL,
			SearchTimeout:   cfg.searchTimeout,
			FeedbackTimeout: cfg.feedbackTimeout,
			StoreTimeout:    cfg.storeTimeout,
		}),
		llm:      ollama.NewClient(cfg.llmBaseURL),
		reader:   transcript.NewReader(),
		detacher: spawn.NewDetacher(cfg.workerBinPath(), filepath.Join(cfg.stateDir, "handoff")),
		clock:    ports.SystemClock{},
	}, nil
}

func (a *app) hookLogger(hook, sessionID string) *slog.Logger {
	return debuglog.Open(filepath.Join(a.cfg.stateDir, "handoff.log"), hook, sessionID)
}
