package orchestrator

import (
	"context"
	"time"

	"ideaeval/internal/evaluation"
)

const subscriberBuffer = 8

// Snapshot is a read-only copy of the pipeline state. Result and Image are
// shared with the orchestrator and must not be mutated.
type Snapshot struct {
	State      State                      `json:"state"`
	Stage      Stage                      `json:"stage,omitempty"`
	Idea       string                     `json:"idea,omitempty"`
	Result     *evaluation.Result         `json:"result"`
	Image      *evaluation.PrototypeImage `json:"image"`
	Error      string                     `json:"error,omitempty"`
	Advisories []evaluation.Advisory      `json:"advisories,omitempty"`
	RiskChart  []evaluation.RiskPoint     `json:"riskChart,omitempty"`
	UpdatedAt  time.Time                  `json:"updatedAt"`
}

func (o *Orchestrator) Snapshot() Snapshot {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.snapshotLocked()
}

func (o *Orchestrator) snapshotLocked() Snapshot {
	s := Snapshot{
		State:     o.state,
		Stage:     o.stage,
		Result:    o.result,
		Image:     o.image,
		Error:     o.errMsg,
		UpdatedAt: o.updated,
	}
	if o.request != nil {
		s.Idea = o.request.Idea
	}
	if len(o.advice) > 0 {
		s.Advisories = append([]evaluation.Advisory(nil), o.advice...)
	}
	if o.result != nil {
		s.RiskChart = o.result.RiskChart()
	}
	return s
}

// Subscribe streams snapshots, starting with the current one, until ctx is
// done. A slow reader loses older snapshots rather than stalling the run.
func (o *Orchestrator) Subscribe(ctx context.Context) <-chan Snapshot {
	ch := make(chan Snapshot, subscriberBuffer)
	o.mu.Lock()
	id := o.nextSub
	o.nextSub++
	o.subs[id] = ch
	ch <- o.snapshotLocked()
	o.mu.Unlock()

	go func() {
		<-ctx.Done()
		o.mu.Lock()
		delete(o.subs, id)
		close(ch)
		o.mu.Unlock()
	}()
	return ch
}

func (o *Orchestrator) publishLocked() {
	o.updated = time.Now()
	if len(o.subs) == 0 {
		return
	}
	s := o.snapshotLocked()
	for _, ch := range o.subs {
		push(ch, s)
	}
}

func push(ch chan Snapshot, s Snapshot) {
	select {
	case ch <- s:
		return
	default:
	}
	select {
	case <-ch:
	default:
	}
	select {
	case ch <- s:
	default:
	}
}
