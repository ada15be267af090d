package stepwise_test

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/stepwise"
	"github.com/aretw0/stepwise/pkg/adapters/memory"
	"github.com/aretw0/stepwise/pkg/domain"
	"github.com/aretw0/stepwise/pkg/scheduler"
	"github.com/aretw0/stepwise/pkg/workspace"
)

func ptr[T any](v T) *T { return &v }

func sequentialIDs() workspace.Option {
	n := 0
	return workspace.WithIDGenerator(func() string {
		n++
		return fmt.Sprintf("id-%d", n)
	})
}

func newWorkbench(t *testing.T, opts ...stepwise.Option) *stepwise.Workbench {
	t.Helper()
	opts = append([]stepwise.Option{stepwise.WithWorkspaceOptions(sequentialIDs())}, opts...)
	wb, err := stepwise.New(context.Background(), opts...)
	require.NoError(t, err)
	t.Cleanup(wb.Close)
	return wb
}

func setCode(t *testing.T, ws *workspace.Workspace, id, code string) {
	t.Helper()
	_, err := ws.UpdateStep(id, domain.StepPatch{Code: ptr(code)})
	require.NoError(t, err)
}

func TestWorkbench_UppercaseScenario(t *testing.T) {
	ctx := context.Background()
	wb := newWorkbench(t)
	ws := wb.Workspace()

	ws.AddGroup()
	require.NoError(t, wb.SetInput("hello"))

	first, err := ws.AddStep("")
	require.NoError(t, err)
	setCode(t, ws, first.ID, "return input.toUpperCase()")

	res, err := wb.RunNow(ctx)
	require.NoError(t, err)
	assert.Equal(t, "HELLO", res.Output)
	assert.Empty(t, res.Errors)

	second, err := ws.AddStep("")
	require.NoError(t, err)
	setCode(t, ws, second.ID, `return input + "!"`)

	res, err = wb.RunNow(ctx)
	require.NoError(t, err)
	assert.Equal(t, "HELLO!", res.Output)

	_, err = ws.UpdateStep(second.ID, domain.StepPatch{Muted: ptr(true)})
	require.NoError(t, err)
	res, err = wb.RunNow(ctx)
	require.NoError(t, err)
	assert.Equal(t, "HELLO", res.Output)

	_, err = ws.UpdateStep(second.ID, domain.StepPatch{
		Muted: ptr(false),
		Code:  ptr(`throw new Error("bad")`),
	})
	require.NoError(t, err)
	res, err = wb.RunNow(ctx)
	require.NoError(t, err)
	assert.Equal(t, "HELLO", res.Output)
	assert.Equal(t, map[string]string{second.ID: "bad"}, res.Errors)
	assert.True(t, res.Failed)
	assert.Equal(t, `Error in "Step 2": bad`, res.Display)
}

func TestWorkbench_RunNowWithCanceledContext(t *testing.T) {
	wb := newWorkbench(t)
	ws := wb.Workspace()
	ws.AddGroup()
	require.NoError(t, wb.SetInput("hello"))
	step, err := ws.AddStep("")
	require.NoError(t, err)
	setCode(t, ws, step.ID, "return input.toUpperCase()")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	res, err := wb.RunNow(ctx)
	require.NoError(t, err)
	assert.Equal(t, "HELLO", res.Output)
	assert.Empty(t, res.Errors)
	latest, ok := wb.Latest()
	require.True(t, ok)
	assert.Equal(t, "HELLO", latest.Output)
	assert.False(t, latest.Failed)
}

func TestWorkbench_HelpersAvailable(t *testing.T) {
	wb := newWorkbench(t)
	ws := wb.Workspace()
	ws.AddGroup()
	require.NoError(t, wb.SetInput("  Mixed Case  "))
	step, err := ws.AddStep("")
	require.NoError(t, err)
	setCode(t, ws, step.ID, "return helpers.lowercase(helpers.trim(input));")

	res, err := wb.RunNow(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "mixed case", res.Output)
	assert.Contains(t, wb.Helpers(), "uppercase")
}

func TestWorkbench_PersistsEveryMutation(t *testing.T) {
	kv := memory.NewStore()
	wb := newWorkbench(t, stepwise.WithStore(kv))
	ws := wb.Workspace()

	group := ws.AddGroup()
	require.NoError(t, wb.SetInput("persist me"))
	step, err := ws.AddStep("")
	require.NoError(t, err)
	wb.Close()

	reloaded := newWorkbench(t, stepwise.WithStore(kv))
	state := reloaded.State()
	require.Len(t, state.StepGroups, 1)
	assert.Equal(t, group.ID, state.StepGroups[0].ID)
	assert.Equal(t, "persist me", state.StepGroups[0].InputText)
	require.Len(t, state.StepGroups[0].Steps, 1)
	assert.Equal(t, step.ID, state.StepGroups[0].Steps[0].ID)
	assert.Equal(t, step.ID, domain.Deref(state.SelectedStepID))
	assert.Equal(t, "persist me", reloaded.Input())
}

// gatedStore blocks the first Set after arm until release is closed.
type gatedStore struct {
	*memory.Store
	armed   atomic.Bool
	once    sync.Once
	entered chan struct{}
	release chan struct{}
}

func (s *gatedStore) Set(ctx context.Context, key string, value []byte) error {
	if s.armed.CompareAndSwap(true, false) {
		s.once.Do(func() { close(s.entered) })
		<-s.release
	}
	return s.Store.Set(ctx, key, value)
}

func TestWorkbench_ConcurrentMutationsPersistInOrder(t *testing.T) {
	kv := &gatedStore{
		Store:   memory.NewStore(),
		entered: make(chan struct{}),
		release: make(chan struct{}),
	}
	wb := newWorkbench(t, stepwise.WithStore(kv))
	ws := wb.Workspace()
	group := ws.AddGroup()

	kv.armed.Store(true)
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_, err := ws.UpdateGroupTitle(group.ID, "first")
		assert.NoError(t, err)
	}()
	<-kv.entered

	wg.Add(1)
	go func() {
		defer wg.Done()
		_, err := ws.UpdateGroupTitle(group.ID, "second")
		assert.NoError(t, err)
	}()
	time.Sleep(20 * time.Millisecond)
	close(kv.release)
	wg.Wait()
	wb.Close()

	assert.Equal(t, "second", wb.State().StepGroups[0].Title)
	reloaded := newWorkbench(t, stepwise.WithStore(kv.Store))
	require.Len(t, reloaded.State().StepGroups, 1)
	assert.Equal(t, "second", reloaded.State().StepGroups[0].Title)
}

func TestWorkbench_DebouncedRecompute(t *testing.T) {
	wb := newWorkbench(t, stepwise.WithDebounce(10*time.Millisecond))
	ws := wb.Workspace()

	published := make(chan scheduler.Published, 16)
	wb.Subscribe(func(p scheduler.Published) { published <- p })

	ws.AddGroup()
	step, err := ws.AddStep("")
	require.NoError(t, err)
	setCode(t, ws, step.ID, "return helpers.uppercase(input);")
	require.NoError(t, wb.SetInput("h"))
	require.NoError(t, wb.SetInput("hi"))

	timeout := time.After(2 * time.Second)
	for done := false; !done; {
		select {
		case p := <-published:
			done = p.Output == "HI"
		case <-timeout:
			t.Fatal("settled result never published")
		}
	}

	latest, ok := wb.Latest()
	require.True(t, ok)
	assert.Equal(t, "HI", latest.Output)
}

func TestWorkbench_Scope(t *testing.T) {
	ctx := context.Background()
	wb := newWorkbench(t)
	ws := wb.Workspace()
	ws.AddGroup()
	require.NoError(t, wb.SetInput(">"))

	var ids []string
	for _, suffix := range []string{"a", "b", "c"} {
		s, err := ws.AddStep("")
		require.NoError(t, err)
		setCode(t, ws, s.ID, fmt.Sprintf("return input + %q;", suffix))
		ids = append(ids, s.ID)
	}

	cases := []struct {
		scope  domain.Scope
		anchor string
		want   string
	}{
		{domain.ScopeAll, ids[1], ">abc"},
		{domain.ScopeFrom, ids[1], ">bc"},
		{domain.ScopeTo, ids[1], ">ab"},
		{domain.ScopeFrom, "missing", ">abc"},
		{domain.ScopeTo, "", ">abc"},
	}
	for _, tc := range cases {
		wb.SetScope(tc.scope, tc.anchor)
		res, err := wb.RunNow(ctx)
		require.NoError(t, err)
		assert.Equal(t, tc.want, res.Output, "scope %s anchor %q", tc.scope, tc.anchor)
	}

	scope, anchor := wb.Scope()
	assert.Equal(t, domain.ScopeTo, scope)
	assert.Empty(t, anchor)
}

func TestWorkbench_RunNowWithoutGroup(t *testing.T) {
	wb := newWorkbench(t)
	_, err := wb.RunNow(context.Background())
	assert.ErrorIs(t, err, domain.ErrNoActiveGroup)
	assert.ErrorIs(t, wb.SetInput("x"), domain.ErrNoActiveGroup)
}

func TestWorkbench_Search(t *testing.T) {
	wb := newWorkbench(t)
	ws := wb.Workspace()
	g := ws.AddGroup()
	_, err := ws.UpdateGroupTitle(g.ID, "Cleanup")
	require.NoError(t, err)
	step, err := ws.AddStep("")
	require.NoError(t, err)
	setCode(t, ws, step.ID, "return helpers.trim(input);")
	ws.AddLibraryStep()

	res := wb.Search("TRIM")
	assert.Empty(t, res.Groups)
	require.Len(t, res.Steps, 1)
	assert.Equal(t, step.ID, res.Steps[0].ID)
	assert.Empty(t, res.Library)

	res = wb.Search("")
	assert.Len(t, res.Groups, 1)
	assert.Len(t, res.Library, 1)
}

type stubPack struct {
	items []domain.LibraryStep
}

func (p *stubPack) Export(_ context.Context, items []domain.LibraryStep) error {
	p.items = append([]domain.LibraryStep(nil), items...)
	return nil
}

func (p *stubPack) Import(context.Context) ([]domain.LibraryStep, error) {
	return p.items, nil
}

func TestWorkbench_LibraryRoundTrip(t *testing.T) {
	ctx := context.Background()
	source := newWorkbench(t)
	lib := source.Workspace().AddLibraryStep()

	pack := &stubPack{}
	n, err := source.ExportLibrary(ctx, pack)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	target := newWorkbench(t, stepwise.WithWorkspaceOptions(workspace.WithIDGenerator(func() string { return "fresh" })))
	imported, err := target.ImportLibrary(ctx, pack)
	require.NoError(t, err)
	require.Len(t, imported, 1)
	assert.Equal(t, lib.Title, imported[0].Title)
	assert.Equal(t, "fresh", imported[0].ID)
}
