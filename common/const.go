package common

type UpdateType string

const (
	UPDATE_STATE   UpdateType = "state"
	UPDATE_TRIGGER UpdateType = "trigger"
	UPDATE_RULES   UpdateType = "rules"
	UPDATE_RELOAD  UpdateType = "reload"
	UPDATE_WATCH   UpdateType = "watch"
	UPDATE_EVENT   UpdateType = "event"
	UPDATE_VERSION UpdateType = "version"
	UPDATE_STOP    UpdateType = "stop"
)

// EventAction classifies the events broadcast to attached watchers.
type EventAction string

const (
	EventApplied      EventAction = "applied"
	EventApplyFailed  EventAction = "apply_failed"
	EventNoActiveRule EventAction = "no_active_rule"
	EventReloaded     EventAction = "reloaded"
)

// State codes returned by the state query, mirroring the configured
// downloader-limit contract: 1 means the limiter is not configured or not
// enabled, 0 means the query succeeded (data carries the resolved limits,
// or is null when no rule is currently active).
const (
	StateCodeOK            = 0
	StateCodeNotConfigured = 1
)

// MaxMessageSize bounds a single framed message on the control socket.
const MaxMessageSize = 4 << 20

// TCPHost is the bind address used when falling back to TCP transport.
const TCPHost = "127.0.0.1"

// DefaultTCPPort is the fallback TCP port for the control connection.
const DefaultTCPPort = 4338
