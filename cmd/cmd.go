// Package cmd implements the qlimitd command-line interface: the daemon
// entrypoint and the client commands that talk to it over the control
// socket.
package cmd

import (
	"fmt"
	"runtime"

	"github.com/urfave/cli"
)

type BuildArgs struct {
	Version   string
	BuildType string
	Date      string
	Commit    string
}

var (
	appVersion   string
	appCommit    string
	appBuildType string
)

func Execute(args []string, bArgs BuildArgs) error {
	appVersion = bArgs.Version
	appCommit = bArgs.Commit
	appBuildType = bArgs.BuildType
	app := cli.App{
		Name:                  "qlimitd",
		HelpName:              "qlimitd",
		Usage:                 "A scheduled speed limiter for qBittorrent.",
		Version:               fmt.Sprintf("%s-%s", bArgs.Version, bArgs.BuildType),
		UsageText:             "qlimitd <command> [arguments...]",
		Description:           DESCRIPTION,
		CustomAppHelpTemplate: HELP_TEMPL,
		OnUsageError:          usageErrorCallback,
		Commands: []cli.Command{
			{
				Name:               "daemon",
				Usage:              "run the scheduler daemon",
				Description:        DaemonDescription,
				OnUsageError:       usageErrorCallback,
				CustomHelpTemplate: CMD_HELP_TEMPL,
				Action:             daemon,
				Flags:              daemonFlags,
			},
			{
				Name:               "status",
				Aliases:            []string{"s"},
				Usage:              "show the limits currently in effect",
				Description:        StatusDescription,
				OnUsageError:       usageErrorCallback,
				CustomHelpTemplate: CMD_HELP_TEMPL,
				Action:             status,
				Flags:              statusFlags,
			},
			{
				Name:               "trigger",
				Aliases:            []string{"t"},
				Usage:              "force an immediate re-evaluation",
				Description:        TriggerDescription,
				OnUsageError:       usageErrorCallback,
				CustomHelpTemplate: CMD_HELP_TEMPL,
				Action:             trigger,
			},
			{
				Name:               "rules",
				Aliases:            []string{"r"},
				Usage:              "list the configured rules and their status",
				Description:        RulesDescription,
				OnUsageError:       usageErrorCallback,
				CustomHelpTemplate: CMD_HELP_TEMPL,
				Action:             rulesCmd,
			},
			{
				Name:               "reload",
				Usage:              "make the daemon re-read its configuration",
				Description:        ReloadDescription,
				OnUsageError:       usageErrorCallback,
				CustomHelpTemplate: CMD_HELP_TEMPL,
				Action:             reload,
			},
			{
				Name:               "watch",
				Aliases:            []string{"w"},
				Usage:              "stream evaluation events from the daemon",
				Description:        WatchDescription,
				OnUsageError:       usageErrorCallback,
				CustomHelpTemplate: CMD_HELP_TEMPL,
				Action:             watch,
			},
			{
				Name:               "auth",
				Usage:              "manage the WebUI password in the OS keyring",
				Description:        AuthDescription,
				OnUsageError:       usageErrorCallback,
				CustomHelpTemplate: CMD_HELP_TEMPL,
				Subcommands: []cli.Command{
					{
						Name:   "set",
						Usage:  "store the password for a WebUI user",
						Action: authSet,
					},
					{
						Name:   "delete",
						Usage:  "remove the stored password for a WebUI user",
						Action: authDelete,
					},
				},
			},
			{
				Name:   "stop",
				Usage:  "stop the running daemon",
				Action: stop,
			},
			{
				Name:    "help",
				Aliases: []string{"h"},
				Usage:   "prints the help message",
				Action:  help,
			},
			{
				Name:               "version",
				Aliases:            []string{"v"},
				Usage:              "prints the installed version of qlimitd",
				UsageText:          " ",
				CustomHelpTemplate: CMD_HELP_TEMPL,
				Action:             getVersion,
			},
		},
		Action:      status,
		HideHelp:    true,
		HideVersion: true,
	}
	versionCmdStr = fmt.Sprintf("%s %s (%s_%s)\nBuild: %s=%s\n",
		app.Name,
		app.Version,
		runtime.GOOS,
		runtime.GOARCH,
		bArgs.Date, bArgs.Commit,
	)
	return app.Run(args)
}
