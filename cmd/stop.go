package cmd

import (
	"fmt"

	"github.com/qlimitd/qlimitd/pkg/limitcli"
	"github.com/urfave/cli"
)

func stop(ctx *cli.Context) error {
	client, err := limitcli.NewClient()
	if err != nil {
		printRuntimeErr(ctx, "stop", "connect", err)
		return nil
	}
	defer client.Close()
	if err = client.StopDaemon(); err != nil {
		printRuntimeErr(ctx, "stop", "stop_daemon", err)
		return nil
	}
	fmt.Println("Daemon stopped")
	return nil
}
