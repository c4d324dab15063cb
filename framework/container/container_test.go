package container_test

import (
	"bytes"
	"reflect"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/km-arc/go-inject/framework/container"
)

var greeterType = container.TypeOf[Greeter]()

// ── Registration ──────────────────────────────────────────────────────────────

func TestRegisterImplementation_ResolvesAsItself(t *testing.T) {
	c := newContainer(t)
	c.RegisterImplementation(NewRepo)

	repo, err := container.Resolve[*Repo](c)
	require.NoError(t, err)
	require.NotNil(t, repo)
	assert.Equal(t, "default", repo.Name)
}

func TestRegisterImplementation_As_ResolvesUnderBase(t *testing.T) {
	c := newContainer(t)
	c.RegisterImplementation(NewSpanishGreeter).As(greeterType)

	g, err := container.Resolve[Greeter](c)
	require.NoError(t, err)
	require.IsType(t, &SpanishGreeter{}, g)
	assert.Equal(t, "hola", g.Greet())

	assert.True(t, c.Bound(greeterType))
	assert.False(t, c.Bound(container.TypeOf[*SpanishGreeter]()), "As moves the binding off the implementation key")
}

func TestRegisterImplementation_LastWriteWins(t *testing.T) {
	c := newContainer(t)
	c.RegisterImplementation(NewEnglishGreeter).As(greeterType)
	c.RegisterImplementation(NewSpanishGreeter).As(greeterType)

	g := container.MustResolve[Greeter](c)
	assert.Equal(t, "hola", g.Greet())
}

func TestAs_StaleBuilderKeepsNewerBinding(t *testing.T) {
	c := newContainer(t)
	english := c.RegisterImplementation(NewEnglishGreeter).As(greeterType)
	c.RegisterImplementation(NewSpanishGreeter).As(greeterType)

	english.As(container.TypeOf[interface{ Greet() string }]())

	assert.IsType(t, &SpanishGreeter{}, container.MustResolve[Greeter](c))
}

func TestRegisterImplementation_PanicsOnInvalidConstructor(t *testing.T) {
	c := newContainer(t)

	assert.Panics(t, func() { c.RegisterImplementation("not a func") })
	assert.Panics(t, func() { c.RegisterImplementation(func() {}) })
}

func TestAs_PanicsWhenNotAssignable(t *testing.T) {
	c := newContainer(t)

	assert.Panics(t, func() { c.RegisterImplementation(NewRepo).As(greeterType) })
	assert.Panics(t, func() { c.RegisterInstance(&Repo{}).As(greeterType) })
}

func TestRegisterInstance_RoundTripIdentity(t *testing.T) {
	c := newContainer(t)
	g := &EnglishGreeter{}
	c.RegisterInstance(g).As(greeterType)

	got, err := container.Resolve[Greeter](c)
	require.NoError(t, err)
	assert.Same(t, g, got)
}

func TestRegisterInstance_ShortCircuitsImplementation(t *testing.T) {
	c := newContainer(t)
	c.RegisterImplementation(NewRepo)
	custom := &Repo{Name: "custom"}
	c.RegisterInstance(custom)

	got := container.MustResolve[*Repo](c)
	assert.Same(t, custom, got)
}

func TestRegisterInstance_PanicsOnNil(t *testing.T) {
	c := newContainer(t)
	assert.Panics(t, func() { c.RegisterInstance(nil) })
}

// ── Singletons ────────────────────────────────────────────────────────────────

func TestAsSingleton_ReturnsSameInstance(t *testing.T) {
	c := newContainer(t)
	c.RegisterImplementation(NewClock).AsSingleton()

	first := container.MustResolve[*Clock](c)
	second := container.MustResolve[*Clock](c)
	assert.Same(t, first, second)
}

func TestAsSingleton_WithBase(t *testing.T) {
	c := newContainer(t)
	c.RegisterImplementation(NewEnglishGreeter).AsSingleton(greeterType)

	first := container.MustResolve[Greeter](c)
	second := container.MustResolve[Greeter](c)
	assert.Same(t, first, second)
}

func TestTransient_ReturnsDistinctInstances(t *testing.T) {
	c := newContainer(t)
	c.RegisterImplementation(NewClock)

	first := container.MustResolve[*Clock](c)
	second := container.MustResolve[*Clock](c)
	assert.NotSame(t, first, second)
}

func TestSingletonFlag_SharedThroughMetadataStore(t *testing.T) {
	store := container.NewMetadataStore()
	a := container.New(container.WithMetadataStore(store))
	b := container.New(container.WithMetadataStore(store))

	a.RegisterImplementation(NewClock).AsSingleton()
	b.RegisterImplementation(NewClock)

	meta, ok := store.FindMetadata(container.TypeOf[*Clock]())
	require.True(t, ok)
	assert.True(t, meta.Singleton)

	// Each root keeps its own cache, but b now treats Clock as a singleton too.
	assert.Same(t, container.MustResolve[*Clock](b), container.MustResolve[*Clock](b))
	assert.NotSame(t, container.MustResolve[*Clock](a), container.MustResolve[*Clock](b))
}

func TestSingleton_ConcurrentScopesShareOneInstance(t *testing.T) {
	root := newContainer(t)
	root.RegisterImplementation(NewClock).AsSingleton()

	const workers = 16
	results := make([]*Clock, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			scope := root.Scope()
			defer scope.Close()
			results[i] = container.MustResolve[*Clock](scope)
		}(i)
	}
	wg.Wait()

	for _, r := range results {
		assert.Same(t, results[0], r)
	}
}

// ── Enrichment ────────────────────────────────────────────────────────────────

func TestEnrich_AppliedOncePerResolution(t *testing.T) {
	c := newContainer(t)
	calls := 0
	c.RegisterImplementation(NewRepo).Enrich(func(v any) any {
		calls++
		r := v.(*Repo)
		r.Name += "!"
		return r
	})
	c.RegisterImplementation(NewEnglishGreeter).As(greeterType)
	c.RegisterImplementation(NewService)
	c.RegisterImplementation(NewHandler)

	repo := container.MustResolve[*Repo](c)
	assert.Equal(t, "default!", repo.Name)
	assert.Equal(t, 1, calls)

	svc := container.MustResolve[*Service](c)
	assert.Equal(t, "default!", svc.Repo.Name)
	assert.Equal(t, 2, calls)

	h := container.MustResolve[*Handler](c)
	assert.Equal(t, "default!", h.Service.Repo.Name)
	assert.Equal(t, 3, calls)
}

func TestEnrich_FollowsAs(t *testing.T) {
	c := newContainer(t)
	c.RegisterImplementation(NewEnglishGreeter).
		Enrich(func(v any) any { return &SpanishGreeter{} }).
		As(greeterType)

	g := container.MustResolve[Greeter](c)
	assert.IsType(t, &SpanishGreeter{}, g)
}

func TestEnrich_OnInstance(t *testing.T) {
	c := newContainer(t)
	calls := 0
	c.RegisterInstance(&Repo{Name: "x"}).Enrich(func(v any) any {
		calls++
		return v
	})

	container.MustResolve[*Repo](c)
	container.MustResolve[*Repo](c)
	assert.Equal(t, 2, calls)
}

// ── Clear / Bound ─────────────────────────────────────────────────────────────

func TestClear_ForgetsRegistrations(t *testing.T) {
	c := newContainer(t)
	c.RegisterImplementation(NewRepo)
	c.RegisterInstance(&Repo{Name: "custom"})
	c.RegisterImplementation(NewEnglishGreeter).AsSingleton(greeterType)
	first := container.MustResolve[Greeter](c)

	c.Clear()

	assert.Empty(t, c.Bindings())
	assert.False(t, c.Bound(greeterType))

	g, err := container.Resolve[Greeter](c)
	require.NoError(t, err)
	assert.Nil(t, g, "unbound interface resolves to nil")

	repo := container.MustResolve[*Repo](c)
	require.NotNil(t, repo)
	assert.Empty(t, repo.Name, "constructor forgotten, Repo is zero-built")

	c.RegisterImplementation(NewEnglishGreeter).As(greeterType)
	assert.NotSame(t, first, container.MustResolve[Greeter](c), "singleton cache was cleared")
}

func TestClose_ClearsTables(t *testing.T) {
	c := newContainer(t)
	c.RegisterImplementation(NewRepo)
	require.NoError(t, c.Close())
	assert.False(t, c.Bound(container.TypeOf[*Repo]()))
}

func TestBindings_ListsLocalKeys(t *testing.T) {
	c := newContainer(t)
	c.RegisterImplementation(NewRepo)
	c.RegisterInstance(&Clock{})

	assert.ElementsMatch(t, []reflect.Type{
		container.TypeOf[*Repo](),
		container.TypeOf[*Clock](),
	}, c.Bindings())
}

// ── Logging ───────────────────────────────────────────────────────────────────

func TestLogger_ReceivesScopedEvents(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf).Level(zerolog.DebugLevel)
	c := newContainer(t, container.WithLogger(logger))

	c.RegisterImplementation(NewRepo)

	assert.Contains(t, buf.String(), "implementation registered")
	assert.Contains(t, buf.String(), c.ID())
}
