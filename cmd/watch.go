package cmd

import (
	"fmt"
	"time"

	"github.com/qlimitd/qlimitd/common"
	"github.com/qlimitd/qlimitd/pkg/limitcli"
	"github.com/urfave/cli"
)

func watch(ctx *cli.Context) error {
	client, err := limitcli.NewClient()
	if err != nil {
		printRuntimeErr(ctx, "watch", "connect", err)
		return nil
	}
	defer client.Close()
	fmt.Println("Watching for limit changes, press Ctrl+C to stop")
	err = client.Watch(limitcli.NewEventHandler("", printEvent))
	if err != nil {
		printRuntimeErr(ctx, "watch", "watch", err)
	}
	return nil
}

func printEvent(ev *common.EventResponse) error {
	stamp := ev.At.Local().Format(time.Kitchen)
	switch ev.Action {
	case common.EventApplied:
		fmt.Printf("[%s] applied: up %s, down %s\n", stamp, ev.UploadText, ev.DownloadText)
	case common.EventApplyFailed:
		fmt.Printf("[%s] apply failed: %s\n", stamp, ev.Error)
	case common.EventNoActiveRule:
		fmt.Printf("[%s] no active rule\n", stamp)
	case common.EventReloaded:
		fmt.Printf("[%s] rules reloaded\n", stamp)
	default:
		fmt.Printf("[%s] %s\n", stamp, ev.Action)
	}
	if ev.Next != nil {
		fmt.Printf("\tnext transition at %s\n", ev.Next.Local().Format(time.Kitchen))
	}
	return nil
}
