package cmd

import (
	"context"
	"fmt"

	"github.com/qlimitd/qlimitd/common"
	"github.com/qlimitd/qlimitd/internal/config"
	"github.com/qlimitd/qlimitd/internal/limiter"
	"github.com/qlimitd/qlimitd/internal/qbit"
	"github.com/qlimitd/qlimitd/pkg/limitcli"
	"github.com/qlimitd/qlimitd/pkg/logger"
	"github.com/spf13/afero"
	"github.com/urfave/cli"
)

var (
	statusLive bool

	statusFlags = []cli.Flag{
		cli.BoolFlag{
			Name:        "live, l",
			Usage:       "also read the limits currently set on the downloader",
			Destination: &statusLive,
		},
		cli.StringFlag{
			Name:        "config, c",
			Usage:       "path to the configuration file",
			Destination: &configPath,
		},
	}
)

func status(ctx *cli.Context) error {
	if ctx.Command.Name == "" && ctx.Args().First() != "" {
		return printErrWithHelp(ctx, fmt.Errorf("command not found: %s", ctx.Args().First()))
	}
	client, err := limitcli.NewClient()
	if err != nil {
		printRuntimeErr(ctx, "status", "connect", err)
		return nil
	}
	defer client.Close()
	state, err := client.State()
	if err != nil {
		printRuntimeErr(ctx, "status", "get_state", err)
		return nil
	}
	printState(state)
	if statusLive {
		printLiveLimits(ctx)
	}
	return nil
}

// printLiveLimits reads the limits straight off the downloader instead of
// the daemon's view of them.
func printLiveLimits(ctx *cli.Context) {
	path := configPath
	if path == "" {
		path = config.DefaultPath()
	}
	cfg, err := config.Load(afero.NewOsFs(), path)
	if err != nil {
		printRuntimeErr(ctx, "status", "load_config", err)
		return
	}
	client, err := qbit.NewClient(qbit.Options{
		URL:      cfg.Downloader.URL,
		Username: cfg.Downloader.Username,
		Password: cfg.Downloader.Password,
		Timeout:  cfg.Timeout(),
	}, logger.NewNopLogger())
	if err != nil {
		printRuntimeErr(ctx, "status", "downloader_client", err)
		return
	}
	timeout := cfg.Timeout()
	if timeout <= 0 {
		timeout = qbit.DefaultTimeout
	}
	cctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	up, down, err := client.CurrentLimits(cctx)
	if err != nil {
		printRuntimeErr(ctx, "status", "current_limits", err)
		return
	}
	fmt.Printf("Downloader reports:\n\tUpload: %s\n\tDownload: %s\n",
		limiter.FormatKBps(up), limiter.FormatKBps(down))
}

func printState(state *common.StateResponse) {
	if state.Code != common.StateCodeOK {
		fmt.Printf("Status: not configured (%s)\n", state.Msg)
		return
	}
	if state.Data == nil {
		fmt.Println("Status: no active rule, limits untouched")
		return
	}
	fmt.Printf("Status: limits active\n\tUpload: %s\n\tDownload: %s\n",
		limiter.FormatKBps(state.Data.UploadLimit),
		limiter.FormatKBps(state.Data.DownloadLimit),
	)
}
