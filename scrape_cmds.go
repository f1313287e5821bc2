package main

import (
	"context"
	"fmt"
	"slices"

	"github.com/spf13/cobra"

	"github.com/sofahub/sofahub/internal/sofascore"
)

// scrapeCmds 构建不经过缓存的抓取命令，上游无数据时输出空结果。
func scrapeCmds(opts *cliOptions) []*cobra.Command {
	return []*cobra.Command{
		matchCmd(opts, "momentum", "比赛走势曲线", func(ctx context.Context, c *sofascore.Client, id int, _ []sofascore.CallOption) (any, error) {
			return c.MatchMomentum(ctx, id)
		}),
		matchCmd(opts, "shots", "射门分布", func(ctx context.Context, c *sofascore.Client, id int, _ []sofascore.CallOption) (any, error) {
			return c.MatchShots(ctx, id)
		}),
		matchCmd(opts, "average-positions", "球员平均站位", func(ctx context.Context, c *sofascore.Client, id int, _ []sofascore.CallOption) (any, error) {
			return c.PlayerAveragePositions(ctx, id)
		}),
		matchCmd(opts, "heatmaps", "球员热图", func(ctx context.Context, c *sofascore.Client, id int, _ []sofascore.CallOption) (any, error) {
			return c.Heatmaps(ctx, id)
		}),
		matchCmd(opts, "player-stats", "单场球员统计", func(ctx context.Context, c *sofascore.Client, id int, _ []sofascore.CallOption) (any, error) {
			return c.PlayerMatchStats(ctx, id)
		}),
		leaguePlayerStatsCmd(opts),
	}
}

func leaguePlayerStatsCmd(opts *cliOptions) *cobra.Command {
	var (
		accumulation string
		positions    []string
	)
	cmd := &cobra.Command{
		Use:   "league-player-stats <league> <year>",
		Short: "赛季全部球员统计（按 100 条分页抓取）",
		Args:  usageArgs(cobra.ExactArgs(2)),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !slices.Contains(sofascore.Accumulations, accumulation) {
				return &usageError{err: fmt.Errorf("--accumulation must be one of %v", sofascore.Accumulations)}
			}
			for _, pos := range positions {
				if !slices.Contains(sofascore.AllPositions, pos) {
					return &usageError{err: fmt.Errorf("--positions: %q must be one of %v", pos, sofascore.AllPositions)}
				}
			}
			rt, err := buildRuntime(opts)
			if err != nil {
				return err
			}
			rows, err := rt.client.PlayerLeagueStats(cmd.Context(), args[1], args[0], accumulation, positions)
			if err != nil {
				return err
			}
			return printJSON(rows)
		},
	}
	cmd.Flags().StringVar(&accumulation, "accumulation", "total", "累计方式：total|per90|perMatch")
	cmd.Flags().StringSliceVar(&positions, "positions", nil, "位置过滤（默认全部）：Goalkeepers,Defenders,Midfielders,Forwards")
	return cmd
}
