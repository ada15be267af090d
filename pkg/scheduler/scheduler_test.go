package scheduler

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/stepwise/pkg/domain"
)

// recordingRunner echoes the input and records every call.
type recordingRunner struct {
	mu     sync.Mutex
	inputs []string
	steps  [][]domain.Step
	result func(input string, steps []domain.Step) domain.RunResult
}

func (r *recordingRunner) Execute(_ context.Context, input string, steps []domain.Step) domain.RunResult {
	r.mu.Lock()
	r.inputs = append(r.inputs, input)
	r.steps = append(r.steps, steps)
	r.mu.Unlock()
	if r.result != nil {
		return r.result(input, steps)
	}
	return domain.RunResult{Output: input, Errors: map[string]string{}}
}

func (r *recordingRunner) calls() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.inputs...)
}

func snap(input string) Snapshot {
	return Snapshot{
		HasGroup: true,
		Input:    input,
		Steps:    []domain.Step{{ID: "a", Title: "A"}, {ID: "b", Title: "B"}},
		Scope:    domain.ScopeAll,
	}
}

func TestScheduler_CoalescesBurst(t *testing.T) {
	runner := &recordingRunner{}
	s := New(runner, WithDelay(30*time.Millisecond))
	defer s.Close()

	published := make(chan Published, 4)
	s.Subscribe(func(p Published) { published <- p })

	for _, in := range []string{"h", "he", "hel", "hell", "hello"} {
		s.Observe(snap(in))
		assert.Equal(t, StatePending, s.State())
	}

	select {
	case p := <-published:
		assert.Equal(t, "hello", p.Output)
	case <-time.After(time.Second):
		t.Fatal("no publication")
	}

	// Give a stale timer the chance to misfire.
	time.Sleep(60 * time.Millisecond)
	assert.Equal(t, []string{"hello"}, runner.calls())
	assert.Equal(t, StateIdle, s.State())

	latest, ok := s.Latest()
	require.True(t, ok)
	assert.Equal(t, "hello", latest.Display)
}

func TestScheduler_IgnoresUnchangedSnapshot(t *testing.T) {
	runner := &recordingRunner{}
	s := New(runner, WithDelay(10*time.Millisecond))
	defer s.Close()

	s.Observe(snap("x"))
	require.Eventually(t, func() bool { return len(runner.calls()) == 1 }, time.Second, 5*time.Millisecond)

	s.Observe(snap("x"))
	assert.Equal(t, StateIdle, s.State())
	time.Sleep(30 * time.Millisecond)
	assert.Len(t, runner.calls(), 1)
}

func TestScheduler_NoActiveGroupSchedulesNothing(t *testing.T) {
	runner := &recordingRunner{}
	s := New(runner, WithDelay(10*time.Millisecond))
	defer s.Close()

	s.Observe(snap("pending"))
	s.Observe(Snapshot{HasGroup: false, Input: "x"})
	assert.Equal(t, StateIdle, s.State())

	time.Sleep(40 * time.Millisecond)
	assert.Empty(t, runner.calls(), "the pending run is cancelled too")
	_, ok := s.Latest()
	assert.False(t, ok)
}

func TestScheduler_CloseCancelsPending(t *testing.T) {
	runner := &recordingRunner{}
	s := New(runner, WithDelay(20*time.Millisecond))

	s.Observe(snap("x"))
	s.Close()
	assert.Equal(t, StateIdle, s.State())

	s.Observe(snap("y"))
	assert.Equal(t, StateIdle, s.State())

	time.Sleep(50 * time.Millisecond)
	assert.Empty(t, runner.calls())
}

func TestScheduler_ResolvesScope(t *testing.T) {
	runner := &recordingRunner{}
	s := New(runner, WithDelay(time.Hour))
	defer s.Close()

	sn := snap("x")
	sn.Scope = domain.ScopeTo
	sn.AnchorID = "a"
	s.Observe(sn)

	require.True(t, s.Flush(context.Background()))
	require.Len(t, runner.steps, 1)
	require.Len(t, runner.steps[0], 1)
	assert.Equal(t, "a", runner.steps[0][0].ID)

	assert.False(t, s.Flush(context.Background()), "nothing pending after a flush")
}

func TestScheduler_PublishesFailure(t *testing.T) {
	failing := domain.Step{ID: "b", Title: "Shout"}
	runner := &recordingRunner{
		result: func(input string, _ []domain.Step) domain.RunResult {
			return domain.RunResult{
				Output:     "HELLO",
				Errors:     map[string]string{"b": "bad"},
				FailedStep: &failing,
			}
		},
	}
	s := New(runner)
	defer s.Close()

	p := s.Run(context.Background(), snap("hello"))

	assert.True(t, p.Failed)
	assert.Equal(t, "HELLO", p.Output)
	assert.Equal(t, `Error in "Shout": bad`, p.Display)
	assert.Equal(t, "b", p.FailedStepID)
	assert.Equal(t, map[string]string{"b": "bad"}, p.Errors)
}

func TestPublish_Success(t *testing.T) {
	p := Publish(domain.RunResult{Output: "ok"})
	assert.False(t, p.Failed)
	assert.Equal(t, "ok", p.Display)
	assert.NotNil(t, p.Errors)
	assert.Empty(t, p.FailedStepID)
}

func TestSnapshot_EqualityCoversSteps(t *testing.T) {
	a := snap("x")
	b := snap("x")
	assert.True(t, a.equal(b))

	b.Steps[1].Muted = true
	assert.False(t, a.equal(b))

	c := snap("x")
	c.Scope = domain.ScopeFrom
	assert.False(t, a.equal(c))
}
