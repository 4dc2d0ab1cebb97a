package cmd

import (
	"fmt"

	"github.com/qlimitd/qlimitd/pkg/limitcli"
	"github.com/urfave/cli"
)

func trigger(ctx *cli.Context) error {
	client, err := limitcli.NewClient()
	if err != nil {
		printRuntimeErr(ctx, "trigger", "connect", err)
		return nil
	}
	defer client.Close()
	resp, err := client.Trigger()
	if err != nil {
		printRuntimeErr(ctx, "trigger", "trigger", err)
		return nil
	}
	if !resp.Triggered {
		fmt.Println("Evaluation rejected, daemon is shutting down")
		return nil
	}
	fmt.Println("Evaluation triggered")
	return nil
}
