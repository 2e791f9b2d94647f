package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/BaSui01/figurebot/config"
	"github.com/BaSui01/figurebot/figurine"
)

// AppOption customizes App dependencies.
type AppOption func(*App)

// App holds the CLI state shared by all subcommands.
type App struct {
	root *cobra.Command

	stdout io.Writer
	stderr io.Writer

	cfgFile  string
	logLevel string

	cfg    *config.Config
	logger *zap.Logger

	// 测试注入
	fixedLogger   *zap.Logger
	pluginOptions []figurine.Option
}

// WithIO injects output streams.
func WithIO(stdout, stderr io.Writer) AppOption {
	return func(a *App) {
		if stdout != nil {
			a.stdout = stdout
		}
		if stderr != nil {
			a.stderr = stderr
		}
	}
}

// WithLogger replaces the logger built from LogConfig.
func WithLogger(logger *zap.Logger) AppOption {
	return func(a *App) {
		a.fixedLogger = logger
	}
}

// WithPluginOptions passes extra options to every figurine.New call.
func WithPluginOptions(opts ...figurine.Option) AppOption {
	return func(a *App) {
		a.pluginOptions = append(a.pluginOptions, opts...)
	}
}

// NewApp creates the CLI with default dependencies.
func NewApp(opts ...AppOption) *App {
	a := &App{
		stdout: os.Stdout,
		stderr: os.Stderr,
	}
	for _, opt := range opts {
		opt(a)
	}
	a.root = a.newRootCommand()
	return a
}

func (a *App) newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   "figurebot",
		Short: "figurebot - 手办化图片生成插件与本地宿主",
		Long: `figurebot 把聊天消息里的图片或文字转发给图片生成 API，并返回生成的图片。

serve 启动一个本地 HTTP 宿主，generate 从命令行执行一次生成。`,
		SilenceUsage: true,
	}
	root.SetOut(a.stdout)
	root.SetErr(a.stderr)

	root.PersistentFlags().StringVar(&a.cfgFile, "config", "", "path to YAML config file")
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "override log level (debug, info, warn, error)")

	root.AddCommand(a.newServeCommand())
	root.AddCommand(a.newGenerateCommand())
	root.AddCommand(a.newVersionCommand())
	root.AddCommand(a.newHealthCommand())

	return root
}

// Execute runs the root command.
func (a *App) Execute() error {
	return a.root.Execute()
}

// ExecuteContext runs the root command with ctx available to subcommands.
func (a *App) ExecuteContext(ctx context.Context) error {
	return a.root.ExecuteContext(ctx)
}

// loadConfig 加载并验证配置，随后构建 logger
func (a *App) loadConfig() error {
	loader := config.NewLoader()
	if a.cfgFile != "" {
		loader = loader.WithConfigPath(a.cfgFile)
	}

	cfg, err := loader.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if a.logLevel != "" {
		cfg.Log.Level = a.logLevel
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	a.cfg = cfg

	if a.fixedLogger != nil {
		a.logger = a.fixedLogger
	} else {
		a.logger = initLogger(cfg.Log)
	}
	return nil
}

// syncLogger flushes buffered log entries; stdout sync errors are ignored.
func (a *App) syncLogger() {
	if a.logger != nil && a.fixedLogger == nil {
		_ = a.logger.Sync()
	}
}
