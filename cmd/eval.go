package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"yqhp/rpncalc/internal/batch"
	"yqhp/rpncalc/internal/output"
)

func newEvalCmd(g *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "eval [file]",
		Short: "批量求值表达式",
		Long: `从文件或标准输入读取批量表达式并逐个求值。

输入格式：第一个词为表达式数量 E，随后是 E 个以 '.' 结尾的表达式，
词之间以空白分隔，表达式可以跨行。省略 file 或 file 为 "-" 时读取标准输入。`,
		Example: `  echo "1 ( 1 + 2 ) * 3 ." | rpncalc eval
  rpncalc eval --trace equations.txt
  rpncalc eval --format json equations.txt`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEval(cmd, g, args)
		},
	}

	cmd.Flags().String("format", "text", "输出格式 (text, json)")
	cmd.Flags().Bool("trace", false, "输出后缀表达式与每一步的操作数栈")
	cmd.Flags().Bool("color", false, "彩色输出错误")
	return cmd
}

func runEval(cmd *cobra.Command, g *globalOptions, args []string) error {
	var in io.Reader = cmd.InOrStdin()
	if len(args) == 1 && args[0] != "-" {
		f, err := os.Open(args[0])
		if err != nil {
			return fmt.Errorf("打开输入文件失败: %w", err)
		}
		defer f.Close()
		in = f
	}

	renderer, err := output.New(output.Options{
		Format: g.cfg.Output.Format,
		Trace:  g.cfg.Output.Trace,
		Color:  g.cfg.Output.Color,
	})
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(contextOf(cmd), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	runner := batch.NewRunner(renderer, g.cfg.Output.Trace, g.log)
	if _, err := runner.Run(ctx, in, cmd.OutOrStdout()); err != nil {
		return fmt.Errorf("批量求值失败: %w", err)
	}
	return nil
}

func contextOf(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
