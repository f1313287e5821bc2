package main

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/sofahub/sofahub/internal/logging"
	"github.com/sofahub/sofahub/internal/resource"
	"github.com/sofahub/sofahub/internal/sofascore"
)

func checkConfigCmd(opts *cliOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "check-config",
		Short: "仅校验配置后退出",
		Args:  usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, logger, err := loadConfig(opts)
			if err != nil {
				return err
			}
			fields := logging.BaseFields("check_config", cfg.Path)
			fields["cache_dir"] = cfg.Global.CacheDir
			fields["resources"] = len(cfg.Resources)
			fields["proxy"] = cfg.Global.ProxyMode()
			fields["result"] = "ok"
			logger.WithFields(fields).Info("配置校验通过")
			return nil
		},
	}
}

// cacheStatsCmd 输出各资源类型的磁盘占用与生效策略。
func cacheStatsCmd(opts *cliOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "cache-stats",
		Short: "统计缓存目录中每种资源的条目数与大小",
		Args:  usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, _ []string) error {
			rt, err := buildRuntime(opts)
			if err != nil {
				return err
			}
			usage, err := rt.store.Usage(cmd.Context())
			if err != nil {
				return err
			}

			type row struct {
				Resource string `json:"resource"`
				Entries  int    `json:"entries"`
				Bytes    int64  `json:"bytes"`
				Policy   string `json:"policy"`
			}
			names := resource.Names()
			sort.Strings(names)
			rows := make([]row, 0, len(names))
			for _, name := range names {
				u := usage[name]
				rows = append(rows, row{
					Resource: name,
					Entries:  u.Entries,
					Bytes:    u.Bytes,
					Policy:   rt.client.Policies().For(resource.Type(name)).String(),
				})
			}
			return printJSON(map[string]any{"root": rt.store.Root(), "resources": rows})
		},
	}
}

type matchFetch func(ctx context.Context, c *sofascore.Client, id int, call []sofascore.CallOption) (any, error)

type seasonFetch func(ctx context.Context, c *sofascore.Client, league, year string, call []sofascore.CallOption) (any, error)

// matchCmd 构建以 <id|url> 为参数的命令；无法解析的比赛引用视为用法错误。
func matchCmd(opts *cliOptions, use, short string, fetch matchFetch) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <id|url>",
		Short: short,
		Args:  usageArgs(cobra.ExactArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := sofascore.ParseMatchRef(args[0])
			if err != nil {
				return &usageError{err: err}
			}
			rt, err := buildRuntime(opts)
			if err != nil {
				return err
			}
			out, err := fetch(cmd.Context(), rt.client, id, callOptions(opts))
			if err != nil {
				return err
			}
			return printJSON(out)
		},
	}
}

// seasonCmd 构建以 <league> <year> 为参数的命令。
func seasonCmd(opts *cliOptions, use, short string, fetch seasonFetch) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <league> <year>",
		Short: short,
		Args:  usageArgs(cobra.ExactArgs(2)),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := buildRuntime(opts)
			if err != nil {
				return err
			}
			out, err := fetch(cmd.Context(), rt.client, args[0], args[1], callOptions(opts))
			if err != nil {
				return err
			}
			return printJSON(out)
		},
	}
}

// queryCmds 构建直接调用 API 客户端的查询命令，结果以缩进 JSON 输出。
func queryCmds(opts *cliOptions) []*cobra.Command {
	return []*cobra.Command{
		matchCmd(opts, "match", "比赛元数据", func(ctx context.Context, c *sofascore.Client, id int, call []sofascore.CallOption) (any, error) {
			return c.MatchDict(ctx, id, call...)
		}),
		matchCmd(opts, "finished", "仅查询缓存判断比赛是否结束", func(ctx context.Context, c *sofascore.Client, id int, _ []sofascore.CallOption) (any, error) {
			return map[string]any{"id": id, "finished": c.IsMatchFinished(ctx, id)}, nil
		}),
		matchCmd(opts, "odds", "比赛赔率", func(ctx context.Context, c *sofascore.Client, id int, call []sofascore.CallOption) (any, error) {
			return c.MatchOdds(ctx, id, call...)
		}),
		matchCmd(opts, "stats", "球队技术统计", func(ctx context.Context, c *sofascore.Client, id int, call []sofascore.CallOption) (any, error) {
			return c.TeamMatchStats(ctx, id, call...)
		}),
		matchCmd(opts, "players", "阵容球员 ID", func(ctx context.Context, c *sofascore.Client, id int, call []sofascore.CallOption) (any, error) {
			return c.PlayerIDs(ctx, id, call...)
		}),
		{
			Use:   "seasons <league>",
			Short: "联赛的有效赛季",
			Args:  usageArgs(cobra.ExactArgs(1)),
			RunE: func(cmd *cobra.Command, args []string) error {
				rt, err := buildRuntime(opts)
				if err != nil {
					return err
				}
				seasons, err := rt.client.ValidSeasons(cmd.Context(), args[0], callOptions(opts)...)
				if err != nil {
					return err
				}
				return printJSON(seasons)
			},
		},
		seasonCmd(opts, "matches", "赛季全部比赛", func(ctx context.Context, c *sofascore.Client, league, year string, call []sofascore.CallOption) (any, error) {
			return c.MatchDicts(ctx, year, league, call...)
		}),
		seasonCmd(opts, "standings", "赛季积分榜", func(ctx context.Context, c *sofascore.Client, league, year string, call []sofascore.CallOption) (any, error) {
			return c.LeagueStandings(ctx, league, year, call...)
		}),
		seasonCmd(opts, "movements", "赛季升降级与资格", func(ctx context.Context, c *sofascore.Client, league, year string, call []sofascore.CallOption) (any, error) {
			return c.LeagueMovements(ctx, league, year, call...)
		}),
	}
}

func callOptions(opts *cliOptions) []sofascore.CallOption {
	if opts.noCache {
		return []sofascore.CallOption{sofascore.NoCache()}
	}
	return nil
}

func printJSON(v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(stdOut, string(data))
	return err
}
