package cli

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/recdex/internal/config"
	"github.com/kailas-cloud/recdex/internal/corpus"
	domrec "github.com/kailas-cloud/recdex/internal/domain/recommend"
	logpkg "github.com/kailas-cloud/recdex/internal/logger"
	"github.com/kailas-cloud/recdex/internal/metrics"
)

// loadConfig reads the config file named by --config, or config/$ENV.yaml,
// and applies the --corpus override.
func loadConfig(opts *options) (config.Config, string, error) {
	env := config.GetEnv()

	var (
		cfg config.Config
		err error
	)
	if opts.configPath != "" {
		cfg, err = config.LoadFile(opts.configPath)
	} else {
		cfg, err = config.Load(env)
	}
	if err != nil {
		return config.Config{}, "", fmt.Errorf("load config: %w", err)
	}

	if opts.corpusPath != "" {
		cfg.Corpus.Path = opts.corpusPath
	}
	if cfg.Corpus.Path == "" {
		return config.Config{}, "", fmt.Errorf("corpus path is required (corpus.path or --corpus)")
	}
	return cfg, env, nil
}

func newLogger(env string, cfg config.Config) (*zap.Logger, error) {
	logger, err := logpkg.New(logpkg.Options{Env: env, Level: cfg.Logging.Level, Format: cfg.Logging.Format})
	if err != nil {
		return nil, fmt.Errorf("create logger: %w", err)
	}
	return logger, nil
}

// buildIndex loads the corpus and fits the index.
func buildIndex(cfg config.Config, logger *zap.Logger) (*domrec.Index, error) {
	start := time.Now()

	items, err := corpus.LoadFile(cfg.Corpus.Path, cfg.Corpus.Columns.ToDomain())
	if err != nil {
		return nil, fmt.Errorf("load corpus: %w", err)
	}

	vecCfg, err := cfg.Vectorizer.ToDomain()
	if err != nil {
		return nil, fmt.Errorf("vectorizer config: %w", err)
	}

	ix, err := domrec.Build(items, vecCfg, domrec.WithWorkers(cfg.Recommend.Workers))
	if err != nil {
		return nil, fmt.Errorf("build index: %w", err)
	}

	vocab := ix.Vocabulary().Len()
	metrics.IndexItems.Set(float64(ix.Len()))
	metrics.IndexVocabularySize.Set(float64(vocab))

	logger.Info("Index built",
		zap.String("corpus", cfg.Corpus.Path),
		zap.Int("items", ix.Len()),
		zap.Int("vocabulary", vocab),
		zap.String("fingerprint", ix.Fingerprint()),
		zap.Duration("duration", time.Since(start)),
	)
	return ix, nil
}
