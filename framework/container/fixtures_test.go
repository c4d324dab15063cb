package container_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/km-arc/go-inject/framework/container"
)

// newContainer returns a root container with its own metadata store so tests
// never see each other's singleton or inject flags.
func newContainer(t *testing.T, opts ...container.Option) *container.Container {
	t.Helper()
	return container.New(append([]container.Option{
		container.WithMetadataStore(container.NewMetadataStore()),
	}, opts...)...)
}

// ── greeters ──────────────────────────────────────────────────────────────────

type Greeter interface{ Greet() string }

// Greeters carry a field so distinct instances never share an address.
type EnglishGreeter struct{ lang string }

func NewEnglishGreeter() *EnglishGreeter { return &EnglishGreeter{lang: "en"} }
func (g *EnglishGreeter) Greet() string { return "hello" }

type SpanishGreeter struct{ lang string }

func NewSpanishGreeter() *SpanishGreeter { return &SpanishGreeter{lang: "es"} }
func (g *SpanishGreeter) Greet() string { return "hola" }

// ── plain dependencies ────────────────────────────────────────────────────────

type Repo struct{ Name string }

func NewRepo() *Repo { return &Repo{Name: "default"} }

type Clock struct{ Zone string }

func NewClock() *Clock { return &Clock{Zone: "UTC"} }

type Service struct {
	Repo    *Repo
	Greeter Greeter
}

func NewService(repo *Repo, greeter Greeter) *Service {
	return &Service{Repo: repo, Greeter: greeter}
}

type Handler struct{ Service *Service }

func NewHandler(s *Service) *Handler { return &Handler{Service: s} }

type Pair struct{ First, Second *Repo }

func NewPair(first, second *Repo) *Pair { return &Pair{First: first, Second: second} }

// ── literal interleavings ─────────────────────────────────────────────────────

// Fields records what each constructor received, in declared order.
type Fields struct {
	Repo  *Repo
	Label string
	Clock *Clock
	Count int
}

type DepLitDepLit struct{ Fields }

func NewDepLitDepLit(r *Repo, label string, c *Clock, n int) *DepLitDepLit {
	return &DepLitDepLit{Fields{Repo: r, Label: label, Clock: c, Count: n}}
}

type LitDepLitDep struct{ Fields }

func NewLitDepLitDep(label string, r *Repo, n int, c *Clock) *LitDepLitDep {
	return &LitDepLitDep{Fields{Repo: r, Label: label, Clock: c, Count: n}}
}

type DepDepLitLit struct{ Fields }

func NewDepDepLitLit(r *Repo, c *Clock, label string, n int) *DepDepLitLit {
	return &DepDepLitLit{Fields{Repo: r, Label: label, Clock: c, Count: n}}
}

type LitLitDepDep struct{ Fields }

func NewLitLitDepDep(label string, n int, r *Repo, c *Clock) *LitLitDepDep {
	return &LitLitDepDep{Fields{Repo: r, Label: label, Clock: c, Count: n}}
}

type LitDepDepLit struct{ Fields }

func NewLitDepDepLit(label string, r *Repo, c *Clock, n int) *LitDepDepLit {
	return &LitDepDepLit{Fields{Repo: r, Label: label, Clock: c, Count: n}}
}

// ── misc constructors ─────────────────────────────────────────────────────────

type Joined struct{ Value string }

func NewJoined(sep string, parts ...string) *Joined {
	return &Joined{Value: strings.Join(parts, sep)}
}

type Timeout struct{ Millis int64 }

func NewTimeout(ms int64) *Timeout { return &Timeout{Millis: ms} }

type Limits struct {
	Small int8
	Count uint
	Ratio float32
}

func NewLimits(small int8, count uint, ratio float32) *Limits {
	return &Limits{Small: small, Count: count, Ratio: ratio}
}

// Banner is only used with the default metadata store.
type Banner struct{ Text string }

type Greeting struct {
	Greeter Greeter
	Name    string
}

func NewGreeting(g Greeter, name string) *Greeting { return &Greeting{Greeter: g, Name: name} }

var errBoom = errors.New("boom")

type Broken struct{}

func NewBroken() (*Broken, error) { return nil, errBoom }

type NeedsBroken struct{ B *Broken }

func NewNeedsBroken(b *Broken) *NeedsBroken { return &NeedsBroken{B: b} }

// ── cycles ────────────────────────────────────────────────────────────────────

type CycleA struct{ B *CycleB }
type CycleB struct{ A *CycleA }

func NewCycleA(b *CycleB) *CycleA { return &CycleA{B: b} }
func NewCycleB(a *CycleA) *CycleB { return &CycleB{A: a} }

type Ping interface{ Ping() }
type Pong interface{ Pong() }

type pinger struct{ pong Pong }
type ponger struct{ ping Ping }

func (*pinger) Ping() {}
func (*ponger) Pong() {}

func NewPinger(p Pong) *pinger { return &pinger{pong: p} }
func NewPonger(p Ping) *ponger { return &ponger{ping: p} }
