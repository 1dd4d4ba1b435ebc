package cli

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	recommenduc "github.com/kailas-cloud/recdex/internal/usecase/recommend"
)

// openService builds the index and a service over it, without a cache.
func openService(opts *options) (*recommenduc.Service, *zap.Logger, error) {
	cfg, env, err := loadConfig(opts)
	if err != nil {
		return nil, nil, err
	}
	logger, err := newLogger(env, cfg)
	if err != nil {
		return nil, nil, err
	}
	ix, err := buildIndex(cfg, logger)
	if err != nil {
		return nil, nil, err
	}
	limits := recommenduc.Limits{DefaultK: cfg.Recommend.DefaultK, MaxK: cfg.Recommend.MaxK}
	return recommenduc.New(ix, nil, limits, logger), logger, nil
}

func newRecommendCommand(opts *options) *cobra.Command {
	var (
		k    int
		byID bool
	)

	cmd := &cobra.Command{
		Use:   "recommend <title>",
		Short: "Recommend items similar to a title",
		Long: `Recommend prints the k items most similar to the queried item, best first.
The query is matched by exact title; when several items share it the first
one in the corpus is used. With --id the argument is an item id instead.`,
		Example: `  recdex recommend "Batman Begins" -k 3
  recdex recommend --id 272 -o json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, logger, err := openService(opts)
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}

			var res recommenduc.Result
			if byID {
				id, perr := strconv.ParseInt(args[0], 10, 64)
				if perr != nil {
					return fmt.Errorf("invalid item id %q", args[0])
				}
				res, err = svc.RecommendByID(ctx, id, k)
			} else {
				res, err = svc.Recommend(ctx, args[0], k)
			}
			if err != nil {
				return err
			}

			return printRecommendations(cmd.OutOrStdout(), opts.output, res)
		},
	}

	cmd.Flags().IntVarP(&k, "k", "k", 0, "number of recommendations (default from config)")
	cmd.Flags().BoolVar(&byID, "id", false, "treat the argument as an item id")
	return cmd
}

func newTermsCommand(opts *options) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "terms",
		Short: "Print the corpus token-frequency table",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if limit < 0 {
				return fmt.Errorf("limit must not be negative, got %d", limit)
			}

			svc, logger, err := openService(opts)
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			terms := svc.Terms(context.Background(), limit)
			return printTerms(cmd.OutOrStdout(), opts.output, terms)
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "number of terms, 0 for all")
	return cmd
}
