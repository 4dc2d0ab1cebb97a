package cmd

const DESCRIPTION = `
qlimitd schedules upload and download speed limits for a qBittorrent
instance. Rules are cron expressions paired with limits; the daemon
keeps the downloader's limits in sync with whichever rule is in effect.
`

const (
	DaemonDescription = `The daemon command starts the scheduler daemon. It connects
to the configured qBittorrent WebUI, applies the active rule
immediately and keeps the limits in sync at every schedule
transition.

Example:
        qlimitd daemon

`
	StatusDescription = `The status command shows the speed limits currently in
effect, as resolved by the running daemon.

Example:
        qlimitd status

`
	TriggerDescription = `The trigger command forces the daemon to re-evaluate the
rules and re-apply the active limits right now.

Example:
        qlimitd trigger

`
	RulesDescription = `The rules command lists the configured rules together with
their validity, their current activation window and which one
is in effect.

Example:
        qlimitd rules

`
	ReloadDescription = `The reload command makes the daemon re-read its
configuration file and install the new rule list without a
restart.

Example:
        qlimitd reload

`
	WatchDescription = `The watch command streams evaluation events from the daemon:
every applied limit change, failed apply and reload, as it
happens.

Example:
        qlimitd watch

`
	AuthDescription = `The auth command stores or removes the qBittorrent WebUI
password in the operating system keyring, so it never has to
live in the configuration file.

Example:
        qlimitd auth set admin
        qlimitd auth delete admin

`
)
