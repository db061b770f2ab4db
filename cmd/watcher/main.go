package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"

	"github.com/hamed0406/portwatch/internal/config"
	"github.com/hamed0406/portwatch/internal/httpapi"
	"github.com/hamed0406/portwatch/internal/logging"
	"github.com/hamed0406/portwatch/internal/metrics"
	"github.com/hamed0406/portwatch/internal/notify"
	"github.com/hamed0406/portwatch/internal/probe"
	"github.com/hamed0406/portwatch/internal/repo/memory"
	"github.com/hamed0406/portwatch/internal/scheduler"
)

func main() {
	rt := config.FromEnv()

	app := &cli.App{
		Name:  "portwatch",
		Usage: "watch TCP services and report when their reachability changes",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config", Aliases: []string{"c"}, Value: rt.ConfigPath, Usage: "watch file (JSON or YAML)"},
			&cli.StringFlag{Name: "addr", Value: rt.Addr, Usage: "status API address; empty disables the API"},
			&cli.StringFlag{Name: "log-dir", Value: rt.LogDir, Usage: "directory for watcher.log"},
			&cli.StringFlag{Name: "log-level", Value: rt.LogLevel, Usage: "debug, info, warn or error"},
			&cli.DurationFlag{Name: "probe-timeout", Value: rt.ProbeTimeout, Usage: "bound for one TCP connect"},
			&cli.DurationFlag{Name: "notify-timeout", Value: rt.NotifyTimeout, Usage: "bound for delivering one message"},
		},
		Action: func(c *cli.Context) error {
			rt.ConfigPath = c.String("config")
			rt.Addr = c.String("addr")
			rt.LogDir = c.String("log-dir")
			rt.LogLevel = c.String("log-level")
			rt.ProbeTimeout = c.Duration("probe-timeout")
			rt.NotifyTimeout = c.Duration("notify-timeout")
			return run(c.Context, rt)
		},
	}
	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func run(parent context.Context, rt config.Runtime) error {
	logger, err := logging.NewLogger(rt.LogDir, rt.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync()

	f, err := config.Load(rt.ConfigPath)
	if err != nil {
		return err
	}
	if err := config.Validate(f); err != nil {
		logger.Error("config_invalid", zap.String("path", rt.ConfigPath), zap.Error(err))
		return err
	}
	for _, w := range config.Lint(f, rt.ProbeTimeout) {
		logger.Warn("config_warning", zap.String("detail", w))
	}
	hosts := config.Build(f)

	channels, closeChannels := buildNotifier(f)
	defer closeChannels()

	store := memory.New()
	if err := store.Register(parent, hosts); err != nil {
		return err
	}
	m := metrics.New()

	sup := scheduler.NewSupervisor(logger, probe.NewTCPChecker(rt.ProbeTimeout), channels,
		scheduler.WithObservers(m, scheduler.RecordTo(store, logger)),
		scheduler.WithProbeTimeout(rt.ProbeTimeout),
		scheduler.WithNotifyTimeout(rt.NotifyTimeout),
	)

	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	h, err := sup.Start(context.Background(), hosts)
	if err != nil {
		return err
	}
	banner(channels, logger, rt.NotifyTimeout, notify.BannerStarted)

	var srv *http.Server
	if rt.Addr != "" {
		api := httpapi.NewServer(logger, store, hosts, promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{}), rt.APIKeys)
		srv = &http.Server{Addr: rt.Addr, Handler: api.Router(), ReadHeaderTimeout: 5 * time.Second}
		go func() {
			logger.Info("api_listen", zap.String("addr", rt.Addr))
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("api_failed", zap.Error(err))
			}
		}()
	}

	<-ctx.Done()
	logger.Info("shutdown_requested")

	if srv != nil {
		sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		_ = srv.Shutdown(sctx)
		cancel()
	}
	h.Stop()
	banner(channels, logger, rt.NotifyTimeout, notify.BannerStopped)
	logger.Info("shutdown_complete")
	return nil
}

func buildNotifier(f *config.File) (notify.Multi, func()) {
	var channels notify.Multi
	closeFn := func() {}

	if f.Console() {
		channels = append(channels, notify.NewConsole(nil))
	}
	if f.Log.Filename != "" {
		file := notify.NewFile(f.Log.Filename)
		channels = append(channels, file)
		closeFn = func() { _ = file.Close() }
	}
	if tg := notify.NewTelegram(f.Telegram.APIBase, f.Telegram.Token, f.Telegram.ChannelID); tg != nil {
		channels = append(channels, tg)
	}
	if sl := notify.NewSlack(f.Slack.Webhook); sl != nil {
		channels = append(channels, sl)
	}
	return channels, closeFn
}

func banner(n notify.Notifier, logger *zap.Logger, timeout time.Duration, text string) {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	if err := n.Deliver(ctx, notify.Banner(time.Now(), text)); err != nil {
		logger.Warn("notify_failed", zap.String("banner", text), zap.Error(err))
	}
}
