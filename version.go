package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sofahub/sofahub/internal/version"
)

func versionCmd() *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "version",
		Short: "显示版本信息",
		Args:  usageArgs(cobra.NoArgs),
		RunE: func(*cobra.Command, []string) error {
			return printVersion(asJSON)
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "以 JSON 输出版本与提交信息")
	return cmd
}

// printVersion 输出构建时注入的版本与提交；asJSON 时与查询命令保持相同的 JSON 格式。
func printVersion(asJSON bool) error {
	if asJSON {
		return printJSON(map[string]string{
			"name":    "sofahub",
			"version": version.Version,
			"commit":  version.Commit,
		})
	}
	_, err := fmt.Fprintln(stdOut, version.Full())
	return err
}
