package cmd

import (
	"fmt"
	"time"

	"github.com/qlimitd/qlimitd/common"
	"github.com/qlimitd/qlimitd/internal/limiter"
	"github.com/qlimitd/qlimitd/pkg/limitcli"
	"github.com/urfave/cli"
)

func rulesCmd(ctx *cli.Context) error {
	client, err := limitcli.NewClient()
	if err != nil {
		printRuntimeErr(ctx, "rules", "connect", err)
		return nil
	}
	defer client.Close()
	resp, err := client.Rules()
	if err != nil {
		printRuntimeErr(ctx, "rules", "get_rules", err)
		return nil
	}
	if len(resp.Rules) == 0 {
		fmt.Println("No rules configured")
		return nil
	}
	for i, rule := range resp.Rules {
		fmt.Printf("%d. %s\n", i+1, describeRule(rule))
	}
	if resp.NextTransition != nil {
		fmt.Printf("\nNext transition: %s\n", resp.NextTransition.Local().Format(time.RFC1123))
	}
	return nil
}

func describeRule(rule common.RuleInfo) string {
	if !rule.Valid {
		return fmt.Sprintf("%q\tinvalid: %s", rule.Cron, rule.Error)
	}
	desc := fmt.Sprintf("%q\tup %s, down %s",
		rule.Cron,
		limiter.FormatKBps(limiter.ToKBps(rule.UploadLimit)),
		limiter.FormatKBps(limiter.ToKBps(rule.DownloadLimit)),
	)
	if rule.Active && rule.WindowStart != nil && rule.WindowEnd != nil {
		desc += fmt.Sprintf("\tactive %s - %s",
			rule.WindowStart.Local().Format("15:04"),
			rule.WindowEnd.Local().Format("15:04"),
		)
	}
	return desc
}
