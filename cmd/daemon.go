package cmd

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/qlimitd/qlimitd/common"
	"github.com/qlimitd/qlimitd/internal/api"
	"github.com/qlimitd/qlimitd/internal/config"
	"github.com/qlimitd/qlimitd/internal/engine"
	"github.com/qlimitd/qlimitd/internal/limiter"
	"github.com/qlimitd/qlimitd/internal/qbit"
	"github.com/qlimitd/qlimitd/internal/server"
	"github.com/qlimitd/qlimitd/pkg/logger"
	"github.com/spf13/afero"
	"github.com/urfave/cli"
)

var (
	configPath string

	daemonFlags = []cli.Flag{
		cli.StringFlag{
			Name:        "config, c",
			Usage:       "path to the configuration file",
			Destination: &configPath,
		},
	}
)

// tcpPort returns the fallback TCP port, honouring the environment
// override.
func tcpPort() int {
	if port := os.Getenv(common.TCPPortEnv); port != "" {
		if p, err := strconv.Atoi(port); err == nil && p >= 1 && p <= 65535 {
			return p
		}
	}
	return common.DefaultTCPPort
}

func daemon(ctx *cli.Context) error {
	l := logger.NewStandardLogger(log.Default())
	defer l.Close()

	path := configPath
	if path == "" {
		path = config.DefaultPath()
	}
	fsys := afero.NewOsFs()
	cfg, err := config.Load(fsys, path)
	if err != nil {
		printRuntimeErr(ctx, "daemon", "load_config", err)
		return nil
	}

	client, err := qbit.NewClient(qbit.Options{
		URL:      cfg.Downloader.URL,
		Username: cfg.Downloader.Username,
		Password: cfg.Downloader.Password,
		Timeout:  cfg.Timeout(),
	}, l)
	if err != nil {
		printRuntimeErr(ctx, "daemon", "downloader_client", err)
		return nil
	}

	eng := engine.New(limiter.NewApplier(client, l), cfg.Rules, l)

	var ws *server.WebServer
	if cfg.WebEnabled() {
		rpc := server.NewRPCServer(&server.RPCConfig{
			Secret:    cfg.Web.Secret,
			Version:   appVersion,
			Commit:    appCommit,
			BuildType: appBuildType,
		}, eng)
		ws = server.NewWebServer(l, cfg.Web.Listen, rpc)
	}
	serv := server.NewServer(l, tcpPort(), ws)

	runCtx, cancel := context.WithCancel(context.Background())
	defer cancel()

	eng.OnEvent(func(ev common.EventResponse) {
		serv.Pool().BroadcastEvent(ev)
		if ws != nil {
			ws.Notifier().BroadcastEvent(ev)
		}
	})

	// Reload swaps the rule list only. Downloader and web endpoint
	// changes take effect on the next daemon restart.
	reload := func(rctx context.Context) (int, error) {
		cfg, err := config.Load(fsys, path)
		if err != nil {
			return 0, err
		}
		n, ok := eng.Reload(rctx, cfg.Rules)
		if !ok {
			return 0, errors.New("evaluation loop unavailable")
		}
		return n, nil
	}

	a := api.NewApi(l, eng, reload, cancel, appVersion, appCommit, appBuildType)
	a.RegisterHandlers(serv)

	go eng.Run(runCtx)

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sig
		l.Info("shutdown signal received")
		cancel()
	}()

	hup := make(chan os.Signal, 1)
	notifyReload(hup)
	go func() {
		for range hup {
			if _, err := reload(runCtx); err != nil {
				l.Error("reload failed: %s", err.Error())
			}
		}
	}()

	l.Info("qlimitd daemon starting, %d rules configured", len(cfg.Rules))
	return serv.Start(runCtx)
}
