package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var (
	stdOut io.Writer = os.Stdout
	stdErr io.Writer = os.Stderr
)

// cliOptions 汇总全局标志，便于在测试中注入。
type cliOptions struct {
	configPath string
	noCache    bool
}

// usageError 表示参数或标志错误，对应退出码 2。
type usageError struct {
	err error
}

func (e *usageError) Error() string { return e.err.Error() }
func (e *usageError) Unwrap() error { return e.err }

func main() {
	os.Exit(run(os.Args[1:]))
}

// run 执行命令并返回退出码：0 成功，1 运行时错误，2 用法错误。
func run(args []string) int {
	root := newRootCmd(&cliOptions{})
	root.SetArgs(args)
	root.SetOut(stdOut)
	root.SetErr(stdErr)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := root.ExecuteContext(ctx)
	if err == nil {
		return 0
	}
	fmt.Fprintln(stdErr, err.Error())
	var usage *usageError
	if errors.As(err, &usage) {
		return 2
	}
	return 1
}

func newRootCmd(opts *cliOptions) *cobra.Command {
	root := &cobra.Command{
		Use:           "sofahub",
		Short:         "Sofascore fetcher with an on-disk JSON cache",
		Long:          "Fetch match, league and player data from the Sofascore API, caching every payload on disk.",
		SilenceErrors: true,
		SilenceUsage:  true,
		Args:          usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, _ []string) error {
			_ = cmd.Help()
			return &usageError{err: errors.New("a command is required")}
		},
	}
	root.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return &usageError{err: err}
	})

	root.PersistentFlags().StringVar(&opts.configPath, "config", "", "配置文件路径（默认 ./config.toml，可被 SOFAHUB_CONFIG 覆盖）")
	root.PersistentFlags().BoolVar(&opts.noCache, "no-cache", false, "跳过缓存读写，直接访问上游")

	root.AddCommand(
		versionCmd(),
		checkConfigCmd(opts),
		serveCmd(opts),
		cacheStatsCmd(opts),
	)
	root.AddCommand(queryCmds(opts)...)
	root.AddCommand(scrapeCmds(opts)...)
	return root
}

// usageArgs 将参数校验错误标记为用法错误。
func usageArgs(validate cobra.PositionalArgs) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if err := validate(cmd, args); err != nil {
			return &usageError{err: err}
		}
		return nil
	}
}
