// Package engine runs the evaluation loop: a single goroutine that resolves
// the active speed rule, pushes its limits to the downloader and sleeps
// until the next schedule transition, with a 60-second max-sleep-cap to
// handle NTP steps, DST transitions and system sleep.
package engine

import (
	"context"
	"sync"
	"time"

	"github.com/qlimitd/qlimitd/common"
	"github.com/qlimitd/qlimitd/internal/limiter"
	"github.com/qlimitd/qlimitd/internal/rules"
	"github.com/qlimitd/qlimitd/pkg/logger"
)

const maxSleepCap = 60 * time.Second

// EventSink receives one event per completed evaluation cycle.
type EventSink func(common.EventResponse)

type reloadReq struct {
	rules []rules.Rule
	done  chan int
}

// Engine owns the rule list and the last applied limits. All mutation goes
// through the run goroutine; queries take a read lock.
type Engine struct {
	applier *limiter.Applier
	log     logger.Logger
	sink    EventSink

	// now is injectable for tests.
	now func() time.Time

	mu          sync.RWMutex
	rules       []rules.Rule
	lastApplied *limiter.Applied
	warned      map[int]bool

	triggerCh chan chan bool
	reloadCh  chan reloadReq
}

// New creates an Engine. Run must be called for triggers and reloads to be
// served.
func New(applier *limiter.Applier, ruleList []rules.Rule, log logger.Logger) *Engine {
	return &Engine{
		applier:   applier,
		log:       log,
		now:       time.Now,
		rules:     ruleList,
		warned:    make(map[int]bool),
		triggerCh: make(chan chan bool),
		reloadCh:  make(chan reloadReq),
	}
}

// OnEvent registers the event sink. Must be called before Run.
func (e *Engine) OnEvent(sink EventSink) {
	e.sink = sink
}

func (e *Engine) emit(ev common.EventResponse) {
	if e.sink != nil {
		e.sink(ev)
	}
}

// Run executes the evaluation loop until ctx is cancelled. The first
// evaluation happens immediately so a freshly started daemon converges
// without waiting for a schedule boundary.
func (e *Engine) Run(ctx context.Context) {
	e.evaluate(ctx, true)

	var timer *time.Timer
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	resetTimer := func() <-chan time.Time {
		if timer != nil {
			timer.Stop()
		}
		now := e.now()
		e.mu.RLock()
		rs := e.rules
		e.mu.RUnlock()
		dur := maxSleepCap
		if next, ok := rules.NextTransition(rs, now); ok {
			if d := next.Sub(now); d < dur {
				dur = d
			}
		}
		if dur < 0 {
			dur = 0
		}
		timer = time.NewTimer(dur)
		return timer.C
	}

	timerCh := resetTimer()

	for {
		select {
		case <-ctx.Done():
			return

		case done := <-e.triggerCh:
			e.evaluate(ctx, true)
			done <- true
			timerCh = resetTimer()

		case req := <-e.reloadCh:
			e.mu.Lock()
			e.rules = req.rules
			e.lastApplied = nil
			e.warned = make(map[int]bool)
			e.mu.Unlock()
			e.emit(common.EventResponse{Action: common.EventReloaded, At: e.now()})
			e.evaluate(ctx, true)
			req.done <- len(req.rules)
			timerCh = resetTimer()

		case <-timerCh:
			e.evaluate(ctx, false)
			timerCh = resetTimer()
		}
	}
}

// evaluate resolves the active rule at the current instant and applies its
// limits. Cap wakeups where the target has not changed are skipped unless
// force is set.
func (e *Engine) evaluate(ctx context.Context, force bool) {
	now := e.now()
	e.mu.RLock()
	rs := e.rules
	last := e.lastApplied
	e.mu.RUnlock()

	ev := rules.Evaluate(rs, now)
	e.warnInvalid(ev.Invalid)

	var nextPtr *time.Time
	if ev.HasNext {
		next := ev.Next
		nextPtr = &next
	}

	if ev.Active == nil {
		e.mu.Lock()
		hadApplied := e.lastApplied != nil
		e.lastApplied = nil
		e.mu.Unlock()
		if force || hadApplied {
			e.emit(common.EventResponse{Action: common.EventNoActiveRule, At: now, Next: nextPtr})
		}
		return
	}

	r := ev.Active.Rule
	up := limiter.ToKBps(r.UploadLimit)
	dl := limiter.ToKBps(r.DownloadLimit)
	if !force && last != nil && last.UploadKBps == up && last.DownloadKBps == dl {
		return
	}

	applied, err := e.applier.Apply(ctx, r)
	if err != nil {
		e.log.Error("applying speed limit: %s", err.Error())
		e.emit(common.EventResponse{
			Action:        common.EventApplyFailed,
			UploadLimit:   up,
			DownloadLimit: dl,
			Error:         err.Error(),
			At:            now,
			Next:          nextPtr,
		})
		return
	}

	e.mu.Lock()
	e.lastApplied = applied
	e.mu.Unlock()
	e.emit(common.EventResponse{
		Action:        common.EventApplied,
		UploadLimit:   applied.UploadKBps,
		DownloadLimit: applied.DownloadKBps,
		UploadText:    applied.UploadText,
		DownloadText:  applied.DownloadText,
		At:            now,
		Next:          nextPtr,
	})
}

// warnInvalid logs each malformed rule once per rule list.
func (e *Engine) warnInvalid(invalid []rules.InvalidRule) {
	if len(invalid) == 0 {
		return
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	for _, inv := range invalid {
		if e.warned[inv.Index] {
			continue
		}
		e.warned[inv.Index] = true
		e.log.Warning("skipping rule %d (%s): %s", inv.Index, inv.Rule.Cron, inv.Err.Error())
	}
}

// Trigger requests an immediate re-evaluation and waits for it to finish.
func (e *Engine) Trigger(ctx context.Context) bool {
	done := make(chan bool, 1)
	select {
	case e.triggerCh <- done:
	case <-ctx.Done():
		return false
	}
	select {
	case ok := <-done:
		return ok
	case <-ctx.Done():
		return false
	}
}

// Reload swaps the rule list and re-evaluates. It returns the number of
// rules now in effect.
func (e *Engine) Reload(ctx context.Context, ruleList []rules.Rule) (int, bool) {
	req := reloadReq{rules: ruleList, done: make(chan int, 1)}
	select {
	case e.reloadCh <- req:
	case <-ctx.Done():
		return 0, false
	}
	select {
	case n := <-req.done:
		return n, true
	case <-ctx.Done():
		return 0, false
	}
}

// State resolves the limits in effect right now. Code 1 means the limiter
// has no rules configured; code 0 with null data means configured but no
// rule is currently active.
func (e *Engine) State() common.StateResponse {
	e.mu.RLock()
	rs := e.rules
	e.mu.RUnlock()
	if len(rs) == 0 {
		return common.StateResponse{
			Code: common.StateCodeNotConfigured,
			Msg:  "speed limiter is not configured",
		}
	}
	active, _ := rules.Resolve(rs, e.now())
	if active == nil {
		return common.StateResponse{Code: common.StateCodeOK, Msg: "no speed rule is currently active"}
	}
	return common.StateResponse{
		Code: common.StateCodeOK,
		Msg:  "ok",
		Data: &common.StateData{
			UploadLimit:   limiter.ToKBps(active.Rule.UploadLimit),
			DownloadLimit: limiter.ToKBps(active.Rule.DownloadLimit),
		},
	}
}

// RulesStatus reports every configured rule with its validity and, when
// open, its current window.
func (e *Engine) RulesStatus() common.RulesResponse {
	now := e.now()
	e.mu.RLock()
	rs := e.rules
	e.mu.RUnlock()

	active, _ := rules.Resolve(rs, now)
	infos := make([]common.RuleInfo, 0, len(rs))
	for i, r := range rs {
		info := common.RuleInfo{
			Cron:          r.Cron,
			UploadLimit:   r.UploadLimit,
			DownloadLimit: r.DownloadLimit,
		}
		w, open, err := rules.WindowAt(r.Cron, now)
		if err != nil {
			info.Error = err.Error()
		} else {
			info.Valid = true
			if open {
				start, end := w.Start, w.End
				info.WindowStart, info.WindowEnd = &start, &end
			}
			info.Active = active != nil && active.Index == i
		}
		infos = append(infos, info)
	}
	resp := common.RulesResponse{Rules: infos}
	if next, ok := rules.NextTransition(rs, now); ok {
		resp.NextTransition = &next
	}
	return resp
}
