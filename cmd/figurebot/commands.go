package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"regexp"
	"runtime"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/BaSui01/figurebot/config"
	"github.com/BaSui01/figurebot/figurine"
	"github.com/BaSui01/figurebot/types"
)

// errGenerationFailed is returned by generate when the plugin answered with
// text instead of an image. The text itself has already been printed.
var errGenerationFailed = errors.New("generation did not produce an image")

// =============================================================================
// 🖥️ serve 命令
// =============================================================================

func (a *App) newServeCommand() *cobra.Command {
	var port int
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the local host HTTP server",
		Long: `Start an HTTP host that accepts chat events on POST /v1/events and
dispatches them through the plugin registry. /health and /metrics are served
on the same port.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.loadConfig(); err != nil {
				return err
			}
			defer a.syncLogger()

			if cmd.Flags().Changed("port") {
				a.cfg.Server.HTTPPort = port
			}

			a.logger.Info("starting figurebot",
				zap.String("version", Version),
				zap.String("build_time", BuildTime),
				zap.String("git_commit", GitCommit),
			)

			srv := NewServer(a.cfg, a.logger, a.pluginOptions...)
			if err := srv.Run(cmd.Context()); err != nil {
				a.logger.Error("server stopped with error", zap.Error(err))
				return err
			}
			a.logger.Info("figurebot stopped")
			return nil
		},
	}
	cmd.Flags().IntVar(&port, "port", 0, "override server.http_port")
	return cmd
}

// =============================================================================
// 🎨 generate 命令
// =============================================================================

func (a *App) newGenerateCommand() *cobra.Command {
	var (
		images []string
		output string
	)
	cmd := &cobra.Command{
		Use:   "generate [message text...]",
		Short: "Run one plugin invocation and save the image",
		Long: `Build a chat message from the arguments and flags, hand it to the figurine
plugin exactly like the HTTP host does, and write the resulting image to a file.

In pattern mode the message text defaults to the trigger keyword, so passing
--image is enough. In command mode pass the command, e.g. "/draw a cat".`,
		Example: `  figurebot generate --image https://example.com/cat.png -o figure.png
  figurebot generate --config draw.yaml /draw 一只戴帽子的猫`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.loadConfig(); err != nil {
				return err
			}
			defer a.syncLogger()

			content := strings.Join(args, " ")
			if content == "" {
				content = defaultContent(a.cfg.Figurine)
			}
			if content == "" {
				return fmt.Errorf("message text is required in %s mode", a.cfg.Figurine.TriggerMode)
			}

			return a.generate(cmd.Context(), &types.Message{Text: content, ImageURLs: images}, output)
		},
	}
	cmd.Flags().StringArrayVarP(&images, "image", "i", nil, "image URL attached to the message (repeatable)")
	cmd.Flags().StringVarP(&output, "output", "o", "figurine.png", "file the generated image is written to")
	return cmd
}

func (a *App) generate(ctx context.Context, msg *types.Message, output string) error {
	p, err := figurine.New(a.cfg.Figurine, a.logger, a.pluginOptions...)
	if err != nil {
		return err
	}
	if err := p.Init(ctx); err != nil {
		return fmt.Errorf("init plugin: %w", err)
	}
	defer func() { _ = p.Shutdown(context.WithoutCancel(ctx)) }()

	if !p.Match(msg) {
		return fmt.Errorf("message %q does not trigger the %s plugin", msg.Text, p.Name())
	}

	res := p.Handle(ctx, msg)
	if !res.IsImage() {
		fmt.Fprintln(a.stderr, res.Text)
		return errGenerationFailed
	}

	if err := os.WriteFile(output, res.Image, 0o644); err != nil {
		return fmt.Errorf("write image: %w", err)
	}
	fmt.Fprintf(a.stdout, "wrote %d bytes to %s\n", len(res.Image), output)
	return nil
}

// defaultContent 在 pattern 模式下把不含正则元字符的关键词当作消息文本
func defaultContent(cfg config.FigurineConfig) string {
	if cfg.TriggerMode == config.TriggerModeCommand {
		return ""
	}
	if cfg.Keyword == "" || regexp.QuoteMeta(cfg.Keyword) != cfg.Keyword {
		return ""
	}
	return cfg.Keyword
}

// =============================================================================
// 🏥 health 命令
// =============================================================================

func (a *App) newHealthCommand() *cobra.Command {
	var (
		addr    string
		timeout time.Duration
	)
	cmd := &cobra.Command{
		Use:   "health",
		Short: "Check a running server's /health endpoint",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()

			req, err := http.NewRequestWithContext(ctx, http.MethodGet, strings.TrimRight(addr, "/")+"/health", nil)
			if err != nil {
				return fmt.Errorf("health check failed: %w", err)
			}
			resp, err := http.DefaultClient.Do(req)
			if err != nil {
				return fmt.Errorf("health check failed: %w", err)
			}
			defer resp.Body.Close()

			if resp.StatusCode != http.StatusOK {
				return fmt.Errorf("health check failed: status %d", resp.StatusCode)
			}

			fmt.Fprintln(a.stdout, "OK")
			return nil
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "http://localhost:8080", "server address")
	cmd.Flags().DurationVar(&timeout, "timeout", 5*time.Second, "request timeout")
	return cmd
}

// =============================================================================
// 📋 version 命令
// =============================================================================

// versionInfo 是 version --json 的输出
type versionInfo struct {
	Version       string `json:"version"`
	BuildTime     string `json:"build_time"`
	GitCommit     string `json:"git_commit"`
	PluginName    string `json:"plugin"`
	PluginVersion string `json:"plugin_version"`
	GoVersion     string `json:"go_version"`
	Platform      string `json:"platform"`
}

func (a *App) newVersionCommand() *cobra.Command {
	var jsonOutput bool
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		RunE: func(cmd *cobra.Command, args []string) error {
			info := versionInfo{
				Version:       Version,
				BuildTime:     BuildTime,
				GitCommit:     GitCommit,
				PluginName:    figurine.PluginName,
				PluginVersion: figurine.PluginVersion,
				GoVersion:     runtime.Version(),
				Platform:      runtime.GOOS + "/" + runtime.GOARCH,
			}
			if jsonOutput {
				return json.NewEncoder(a.stdout).Encode(info)
			}

			fmt.Fprintf(a.stdout, "figurebot %s\n", info.Version)
			fmt.Fprintf(a.stdout, "  Build Time: %s\n", info.BuildTime)
			fmt.Fprintf(a.stdout, "  Git Commit: %s\n", info.GitCommit)
			fmt.Fprintf(a.stdout, "  Plugin:     %s %s\n", info.PluginName, info.PluginVersion)
			fmt.Fprintf(a.stdout, "  Go:         %s %s\n", info.GoVersion, info.Platform)
			return nil
		},
	}
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "emit JSON output")
	return cmd
}
