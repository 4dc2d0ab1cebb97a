package cmd

import (
	"fmt"

	"github.com/qlimitd/qlimitd/pkg/limitcli"
	"github.com/urfave/cli"
)

func reload(ctx *cli.Context) error {
	client, err := limitcli.NewClient()
	if err != nil {
		printRuntimeErr(ctx, "reload", "connect", err)
		return nil
	}
	defer client.Close()
	resp, err := client.Reload()
	if err != nil {
		printRuntimeErr(ctx, "reload", "reload", err)
		return nil
	}
	fmt.Printf("Configuration reloaded, %d rules loaded\n", resp.RuleCount)
	return nil
}
