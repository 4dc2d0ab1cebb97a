package common

import "time"

// StateData carries the resolved limits in the downloader's native unit
// (KB/s, -1 = unlimited).
type StateData struct {
	UploadLimit   int64 `json:"upload_limit"`
	DownloadLimit int64 `json:"download_limit"`
}

// StateResponse is the result of the state query. Data is kept as a pointer
// without omitempty so "no active rule" serialises as data=null, which
// clients distinguish from the not-configured case via Code.
type StateResponse struct {
	Code int        `json:"code"`
	Msg  string     `json:"msg"`
	Data *StateData `json:"data"`
}

// TriggerResponse acknowledges a manual re-evaluation request.
type TriggerResponse struct {
	Triggered bool `json:"triggered"`
}

// RuleInfo describes one configured rule together with its evaluation
// status at the time of the query.
type RuleInfo struct {
	Cron          string     `json:"cron"`
	UploadLimit   int64      `json:"upload_limit"`
	DownloadLimit int64      `json:"download_limit"`
	Valid         bool       `json:"valid"`
	Error         string     `json:"error,omitempty"`
	Active        bool       `json:"active"`
	WindowStart   *time.Time `json:"window_start,omitempty"`
	WindowEnd     *time.Time `json:"window_end,omitempty"`
}

type RulesResponse struct {
	Rules          []RuleInfo `json:"rules"`
	NextTransition *time.Time `json:"next_transition,omitempty"`
}

type ReloadResponse struct {
	RuleCount int `json:"rule_count"`
}

// EventResponse is broadcast to attached watchers whenever an evaluation
// cycle completes. Limits are in KB/s; the *Text fields carry the
// human-readable rendering ("1.0MB/s", "unlimited").
type EventResponse struct {
	Action        EventAction `json:"action"`
	UploadLimit   int64       `json:"upload_limit,omitempty"`
	DownloadLimit int64       `json:"download_limit,omitempty"`
	UploadText    string      `json:"upload_text,omitempty"`
	DownloadText  string      `json:"download_text,omitempty"`
	Error         string      `json:"error,omitempty"`
	At            time.Time   `json:"at"`
	Next          *time.Time  `json:"next,omitempty"`
}

type VersionResponse struct {
	Version   string `json:"version"`
	Commit    string `json:"commit,omitempty"`
	BuildType string `json:"build_type,omitempty"`
}
