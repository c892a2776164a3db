package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"yqhp/rpncalc/internal/expression"
	"yqhp/rpncalc/internal/output"
)

func newCalcCmd(g *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "calc <expr>...",
		Short: "求值命令行给出的表达式",
		Long: `把每个参数作为一个独立的表达式求值。结尾的 '.' 可以省略。
任一表达式出错时命令以非零状态退出。`,
		Example: `  rpncalc calc "5 - 3 - 1"
  rpncalc calc "MAX(1,7,4)" "IF ( 0 , 10 , 20 )"`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCalc(cmd, g, args)
		},
	}

	cmd.Flags().String("format", "text", "输出格式 (text, json)")
	cmd.Flags().Bool("trace", false, "输出后缀表达式与每一步的操作数栈")
	cmd.Flags().Bool("color", false, "彩色输出错误")
	return cmd
}

func runCalc(cmd *cobra.Command, g *globalOptions, args []string) error {
	renderer, err := output.New(output.Options{
		Format: g.cfg.Output.Format,
		Trace:  g.cfg.Output.Trace,
		Color:  g.cfg.Output.Color,
	})
	if err != nil {
		return err
	}

	failed := 0
	for i, expr := range args {
		outcome := expression.ProcessString(expr, g.cfg.Output.Trace)
		rec := output.FromOutcome(i, expr, outcome)
		if !rec.OK() {
			failed++
			g.log.Debug("表达式求值失败", zap.String("infix", expr), zap.Error(outcome.Err))
		}
		if err := renderer.Render(cmd.OutOrStdout(), rec); err != nil {
			return fmt.Errorf("写出结果失败: %w", err)
		}
	}

	if failed > 0 {
		return fmt.Errorf("%d/%d 个表达式求值失败", failed, len(args))
	}
	return nil
}
