// Package cmd 提供 rpncalc CLI 的命令实现
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"yqhp/rpncalc/internal/config"
	"yqhp/rpncalc/pkg/logger"
)

const (
	// Version 是当前版本号
	Version = "0.1.0"
	// Banner 是启动时显示的 ASCII 艺术
	Banner = `
   ___  ___  _  __         __
  / _ \/ _ \/ |/ /______ _/ /______
 / , _/ ___/    / __/ _ '/ / __/ -_)  %s
/_/|_/_/  /_/|_/\__/\_,_/_/\__/\__/
`
)

// overrideFlags 把子命令 flag 映射到配置路径
var overrideFlags = map[string]string{
	"format":  "output.format",
	"trace":   "output.trace",
	"color":   "output.color",
	"address": "server.address",
}

// globalOptions 保存全局 flag 以及加载后的配置，供子命令共享
type globalOptions struct {
	cfgFile string
	debug   bool
	quiet   bool

	cfg *config.Config
	log *zap.Logger
}

// NewRootCmd 创建根命令。每次调用返回独立的命令树
func NewRootCmd() *cobra.Command {
	g := &globalOptions{}

	rootCmd := &cobra.Command{
		Use:   "rpncalc",
		Short: "中缀表达式转后缀并求值",
		Long: `rpncalc 使用调度场算法把中缀整数表达式转换为后缀 (RPN) 形式并求值，
支持 + - * /、一元负号 N、条件 IF(c, a, b) 以及可变参数的 MIN/MAX。`,
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return g.load(cmd)
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			logger.Sync()
		},
	}

	// 全局 flags
	rootCmd.PersistentFlags().StringVar(&g.cfgFile, "config", "", "配置文件路径")
	rootCmd.PersistentFlags().BoolVar(&g.debug, "debug", false, "启用调试日志")
	rootCmd.PersistentFlags().BoolVarP(&g.quiet, "quiet", "q", false, "静默模式")

	// 禁用默认的 completion 命令
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	// 自定义版本模板
	rootCmd.SetVersionTemplate(fmt.Sprintf(Banner, Version) + "\n")

	rootCmd.AddCommand(newEvalCmd(g), newCalcCmd(g), newServeCmd(g))
	return rootCmd
}

// Execute 执行根命令
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// load 加载配置并初始化日志
func (g *globalOptions) load(cmd *cobra.Command) error {
	args := make(map[string]string)
	for name, key := range overrideFlags {
		if f := cmd.Flags().Lookup(name); f != nil && f.Changed {
			args[key] = f.Value.String()
		}
	}
	switch {
	case g.debug:
		args["logging.level"] = "debug"
	case g.quiet:
		args["logging.level"] = "error"
	}

	loader := config.NewLoader().WithCmdArgs(args)
	if g.cfgFile != "" {
		loader = loader.WithConfigPath(g.cfgFile)
	}

	cfg, err := loader.Load()
	if err != nil {
		return fmt.Errorf("加载配置失败: %w", err)
	}
	g.cfg = cfg

	logger.Init(cfg.Logger())
	g.log = logger.L()
	g.log.Debug("配置已加载", zap.String("config", g.cfgFile), zap.String("format", cfg.Output.Format))
	return nil
}
