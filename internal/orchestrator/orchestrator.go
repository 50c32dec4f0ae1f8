// Package orchestrator runs the two-stage evaluation pipeline and owns the
// state the presentation layer reads.
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"ideaeval/internal/evaluation"
	"ideaeval/internal/llmclient"
	"ideaeval/internal/prompt"
)

type State string

const (
	StateIdle      State = "idle"
	StateRunning   State = "running"
	StateSucceeded State = "succeeded"
	StateFailed    State = "failed"
)

// Terminal reports whether the state only leaves through Reset.
func (s State) Terminal() bool { return s == StateSucceeded || s == StateFailed }

// Stage is the step a running pipeline is on.
type Stage string

const (
	StageEvaluation Stage = "evaluation"
	StagePrototype  Stage = "prototype"
)

var (
	ErrEmptyInput    = prompt.ErrEmptyInput
	ErrBusy          = errors.New("orchestrator: an evaluation is already running")
	ErrResetRequired = errors.New("orchestrator: reset before submitting another idea")
)

// Config wires an Orchestrator. Only Generator is mandatory.
type Config struct {
	// ID labels log lines, e.g. a session id.
	ID        string
	Generator llmclient.Generator
	Prompts   *prompt.Builder
	Advisor   *evaluation.Advisor
	Logger    *log.Logger
	// StageTimeout bounds each gateway call. Zero disables it.
	StageTimeout time.Duration
}

// Orchestrator is a single-flight pipeline. All methods are safe for
// concurrent use.
type Orchestrator struct {
	id      string
	gen     llmclient.Generator
	prompts *prompt.Builder
	advisor *evaluation.Advisor
	log     *log.Logger
	timeout time.Duration
	mu      sync.Mutex
	state   State
	stage   Stage
	request *evaluation.Request
	result  *evaluation.Result
	image   *evaluation.PrototypeImage
	errMsg  string
	advice  []evaluation.Advisory
	updated time.Time
	subs    map[int]chan Snapshot
	nextSub int
}

func New(cfg Config) (*Orchestrator, error) {
	if cfg.Generator == nil {
		return nil, fmt.Errorf("orchestrator: generator is nil")
	}
	if cfg.Prompts == nil {
		cfg.Prompts = prompt.NewBuilder(prompt.DefaultOptions())
	}
	if cfg.Logger == nil {
		cfg.Logger = log.Default()
	}
	id := strings.TrimSpace(cfg.ID)
	if id == "" {
		id = "-"
	}
	return &Orchestrator{
		id:      id,
		gen:     cfg.Generator,
		prompts: cfg.Prompts,
		advisor: cfg.Advisor,
		log:     cfg.Logger,
		timeout: cfg.StageTimeout,
		state:   StateIdle,
		updated: time.Now(),
		subs:    make(map[int]chan Snapshot),
	}, nil
}

// Submit runs the pipeline to a terminal state and returns that snapshot.
// Rejected intents return the unchanged snapshot and ErrEmptyInput, ErrBusy
// or ErrResetRequired.
func (o *Orchestrator) Submit(ctx context.Context, idea string) (Snapshot, error) {
	snap, req, err := o.begin(idea)
	if err != nil {
		return snap, err
	}
	o.execute(ctx, req)
	return o.Snapshot(), nil
}

// Start is Submit without waiting: the guarded transition happens before it
// returns, the stages run on their own goroutine bound to ctx.
func (o *Orchestrator) Start(ctx context.Context, idea string) (Snapshot, error) {
	snap, req, err := o.begin(idea)
	if err != nil {
		return snap, err
	}
	go o.execute(ctx, req)
	return snap, nil
}

// Reset discards the run from a terminal state. It reports false and does
// nothing from idle or running.
func (o *Orchestrator) Reset() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	if !o.state.Terminal() {
		return false
	}
	o.state = StateIdle
	o.stage = ""
	o.request = nil
	o.result = nil
	o.image = nil
	o.errMsg = ""
	o.advice = nil
	o.publishLocked()
	return true
}

func (o *Orchestrator) State() State {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state
}

func (o *Orchestrator) begin(idea string) (Snapshot, llmclient.Request, error) {
	req, buildErr := o.prompts.BuildEvaluation(idea)

	o.mu.Lock()
	defer o.mu.Unlock()
	switch {
	case buildErr != nil:
		return o.snapshotLocked(), llmclient.Request{}, buildErr
	case o.state == StateRunning:
		return o.snapshotLocked(), llmclient.Request{}, ErrBusy
	case o.state.Terminal():
		return o.snapshotLocked(), llmclient.Request{}, ErrResetRequired
	}
	o.state = StateRunning
	o.stage = StageEvaluation
	o.request = &evaluation.Request{Idea: idea}
	o.log.Printf("evaluation %s: started", o.id)
	o.publishLocked()
	return o.snapshotLocked(), req, nil
}

func (o *Orchestrator) execute(ctx context.Context, req llmclient.Request) {
	result, err := o.evaluate(ctx, req)
	if err != nil {
		o.fail(err)
		return
	}
	advice := o.advisor.Check(result)
	for _, a := range advice {
		o.log.Printf("evaluation %s: advisory %s: %s", o.id, a.Field, a.Message)
	}

	o.mu.Lock()
	o.request = nil
	o.result = result
	o.advice = advice
	o.stage = StagePrototype
	o.publishLocked()
	o.mu.Unlock()

	img := o.illustrate(ctx, result)

	o.mu.Lock()
	o.state = StateSucceeded
	o.stage = ""
	o.image = img
	o.log.Printf("evaluation %s: succeeded (image=%t)", o.id, img != nil)
	o.publishLocked()
	o.mu.Unlock()
}

func (o *Orchestrator) evaluate(ctx context.Context, req llmclient.Request) (*evaluation.Result, error) {
	ctx, cancel := o.stageContext(ctx, StageEvaluation)
	defer cancel()
	resp, err := o.gen.Generate(ctx, req)
	if err != nil {
		return nil, err
	}
	if resp == nil {
		return nil, &evaluation.MalformedResponseError{Err: llmclient.ErrNilResponse}
	}
	return evaluation.ParseResult(resp.Text)
}

// illustrate never fails the run; every problem degrades to "no image".
func (o *Orchestrator) illustrate(ctx context.Context, result *evaluation.Result) *evaluation.PrototypeImage {
	req, err := o.prompts.BuildPrototype(result)
	if err != nil {
		o.log.Printf("evaluation %s: prototype skipped: %v", o.id, err)
		return nil
	}
	ctx, cancel := o.stageContext(ctx, StagePrototype)
	defer cancel()
	resp, err := o.gen.Generate(ctx, req)
	if err != nil {
		o.log.Printf("evaluation %s: prototype failed: %s", o.id, o.describe(StagePrototype, err))
		return nil
	}
	img := evaluation.ExtractImage(resp)
	if img == nil {
		o.log.Printf("evaluation %s: prototype response carried no image", o.id)
	}
	return img
}

func (o *Orchestrator) fail(err error) {
	msg := o.describe(StageEvaluation, err)
	o.mu.Lock()
	defer o.mu.Unlock()
	o.state = StateFailed
	o.stage = ""
	o.request = nil
	o.result = nil
	o.image = nil
	o.advice = nil
	o.errMsg = msg
	o.log.Printf("evaluation %s: failed: %s", o.id, msg)
	o.publishLocked()
}

// describe turns a stage error into the single message shown to the user.
// Gateway errors already carry the provider's own wording.
func (o *Orchestrator) describe(stage Stage, err error) string {
	if o.timeout > 0 && errors.Is(err, context.DeadlineExceeded) {
		return fmt.Sprintf("%s timed out after %s", stage, o.timeout)
	}
	msg := strings.TrimSpace(err.Error())
	if msg == "" {
		msg = fmt.Sprintf("%s failed", stage)
	}
	return msg
}

func (o *Orchestrator) stageContext(ctx context.Context, stage Stage) (context.Context, context.CancelFunc) {
	ctx = llmclient.WithStage(ctx, string(stage))
	if o.timeout > 0 {
		return context.WithTimeout(ctx, o.timeout)
	}
	return context.WithCancel(ctx)
}
