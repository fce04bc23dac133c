// Package main 是 basketrec 命令行：加载篮子数据，挖掘关联规则，并输出推荐。
//
//	basketrec recommend "Bacon Cheese" "Chef Burger" --top-n 2
//	basketrec rules --data baskets.yaml --sort-by lift
//	basketrec itemsets --redis-addr localhost:6379 --redis-key baskets
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/rushteam/basketrec/config"
	"github.com/rushteam/basketrec/core"
	"github.com/rushteam/basketrec/mining"
	"github.com/rushteam/basketrec/pipeline"
	"github.com/rushteam/basketrec/pkg/logging"
	"github.com/rushteam/basketrec/service"
	"github.com/rushteam/basketrec/store"
)

var version = "dev"

// defaultQueries 是未指定物品时演示用的查询
var defaultQueries = []string{"Bacon Cheese", "Chef Burger", "Freestyle Soda", "Chocolate Shake"}

type options struct {
	configPath   string
	pipelinePath string
	dataPath     string
	redisAddr    string
	redisKey     string
	redisDB      int
	topN         int
	sortBy       string
	jsonOut      bool
	logLevel     string
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &options{}
	root := &cobra.Command{
		Use:           "basketrec",
		Short:         "Association-rule recommendations from shopping baskets",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	pf := root.PersistentFlags()
	pf.StringVar(&opts.configPath, "config", "", "app config file (yaml/json)")
	pf.StringVar(&opts.pipelinePath, "pipeline", "", "pipeline file (yaml/json); overrides the pipeline section of --config")
	pf.StringVar(&opts.dataPath, "data", "", "baskets file (yaml/json); defaults to the built-in sample")
	pf.StringVar(&opts.redisAddr, "redis-addr", "", "read baskets from a Redis list at this address")
	pf.StringVar(&opts.redisKey, "redis-key", "baskets", "Redis list key holding JSON baskets")
	pf.IntVar(&opts.redisDB, "redis-db", 0, "Redis database")
	pf.IntVar(&opts.topN, "top-n", 0, "number of recommendations (default from config)")
	pf.StringVar(&opts.sortBy, "sort-by", "", "confidence or lift (default from config)")
	pf.BoolVar(&opts.jsonOut, "json", false, "print JSON instead of text")
	pf.StringVar(&opts.logLevel, "log-level", "", "log level override")

	root.AddCommand(newRecommendCmd(opts), newRulesCmd(opts), newItemsetsCmd(opts))
	return root
}

func newRecommendCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "recommend [item...]",
		Short: "Recommend items that go with each given item",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, engine, err := setup(cmd.Context(), opts)
			if err != nil {
				return err
			}
			queries := args
			if len(queries) == 0 {
				queries = defaultQueries
			}
			results, err := engine.RecommendBatch(cmd.Context(), queries, cfg.Recommend.TopN, cfg.Recommend.SortBy)
			if err != nil {
				return err
			}
			return printRecommendations(cmd.OutOrStdout(), results, opts.jsonOut)
		},
	}
}

func newRulesCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "rules",
		Short: "List mined association rules",
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, engine, err := setup(cmd.Context(), opts)
			if err != nil {
				return err
			}
			return printRules(cmd.OutOrStdout(), engine.Model().Rules, opts.jsonOut)
		},
	}
}

func newItemsetsCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "itemsets",
		Short: "List frequent itemsets",
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, engine, err := setup(cmd.Context(), opts)
			if err != nil {
				return err
			}
			m := engine.Model()
			return printItemsets(cmd.OutOrStdout(), m.Itemsets, m.MinSupport, opts.jsonOut)
		},
	}
}

// setup 加载配置、初始化日志、构建模型
func setup(ctx context.Context, opts *options) (*config.AppConfig, *service.Engine, error) {
	cfg := config.DefaultAppConfig()
	if opts.configPath != "" {
		loaded, err := config.LoadAppConfig(opts.configPath)
		if err != nil {
			return nil, nil, err
		}
		cfg = loaded
	}
	if opts.pipelinePath != "" {
		pc, err := pipeline.Load(opts.pipelinePath)
		if err != nil {
			return nil, nil, core.WrapDomainError(core.ModuleConfig, core.ErrorCodeConfiguration, "load pipeline "+opts.pipelinePath, err)
		}
		cfg.Pipeline = &pc.Pipeline
	}
	if opts.topN != 0 {
		cfg.Recommend.TopN = opts.topN
	}
	if opts.sortBy != "" {
		cfg.Recommend.SortBy = opts.sortBy
	}
	if opts.logLevel != "" {
		cfg.Log.Level = opts.logLevel
	}
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}
	logging.Init(cfg.Log)

	src, err := openSource(ctx, opts)
	if err != nil {
		return nil, nil, err
	}
	if c, ok := src.(io.Closer); ok {
		defer c.Close()
	}

	engine, err := service.NewEngineFromConfig(cfg)
	if err != nil {
		return nil, nil, err
	}
	if _, err := engine.Build(ctx, src); err != nil {
		return nil, nil, err
	}
	return cfg, engine, nil
}

func openSource(ctx context.Context, opts *options) (core.TransactionSource, error) {
	switch {
	case opts.redisAddr != "":
		return store.DialRedisSource(ctx, opts.redisAddr, opts.redisDB, opts.redisKey)
	case opts.dataPath != "":
		return store.NewFileSource(opts.dataPath), nil
	default:
		return store.NewMemorySource(store.SampleBaskets()), nil
	}
}

func printRecommendations(w io.Writer, results []*service.Result, jsonOut bool) error {
	if jsonOut {
		return writeJSON(w, results)
	}
	for i, res := range results {
		if i > 0 {
			fmt.Fprintln(w)
		}
		fmt.Fprintln(w, res.String())
	}
	return nil
}

func printRules(w io.Writer, rules []mining.Rule, jsonOut bool) error {
	if jsonOut {
		type ruleOut struct {
			Antecedents []string `json:"antecedents"`
			Consequents []string `json:"consequents"`
			Support     float64  `json:"support"`
			Confidence  float64  `json:"confidence"`
			Lift        float64  `json:"lift"`
			Leverage    float64  `json:"leverage"`
			Conviction  string   `json:"conviction"`
		}
		out := make([]ruleOut, 0, len(rules))
		for _, r := range rules {
			out = append(out, ruleOut{
				Antecedents: r.Antecedents,
				Consequents: r.Consequents,
				Support:     r.Support,
				Confidence:  r.Confidence,
				Lift:        r.Lift,
				Leverage:    r.Leverage,
				// JSON 不能表示 +Inf
				Conviction: strconv.FormatFloat(r.Conviction, 'f', 4, 64),
			})
		}
		return writeJSON(w, out)
	}
	fmt.Fprintf(w, "%-40s %10s %10s %10s\n", "RULE", "SUPPORT", "CONFIDENCE", "LIFT")
	for _, r := range rules {
		fmt.Fprintf(w, "%-40s %10.4f %10.4f %10.4f\n", r.String(), r.Support, r.Confidence, r.Lift)
	}
	return nil
}

func printItemsets(w io.Writer, itemsets []mining.Itemset, minSupport float64, jsonOut bool) error {
	if jsonOut {
		return writeJSON(w, map[string]any{
			"min_support": minSupport,
			"itemsets":    itemsets,
		})
	}
	fmt.Fprintf(w, "min_support = %.4f\n", minSupport)
	for _, s := range itemsets {
		fmt.Fprintf(w, "%-40s %6d %8.4f\n", s.String(), s.Count, s.Support)
	}
	return nil
}

func writeJSON(w io.Writer, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}
