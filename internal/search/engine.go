// Package search implements proof search: given a context and a type, find
// an expression of that type.
//
// Search is breadth-first. Every attempt is a task in an arena; a task is
// either a single tactic (one), a race between alternatives (any) or a
// conjunction of sub-goals (all). The scheduler steps live tasks round-robin,
// so an alternative that recurses forever cannot starve one that terminates.
// Nested sub-searches carry a depth counter; past the last level they fail,
// and at the last level only the tactics that never spawn sub-searches run.
package search

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/raffopazzo/depc-sub002/internal/ast"
	"github.com/raffopazzo/depc-sub002/internal/config"
	"github.com/raffopazzo/depc-sub002/internal/diagnostics"
	"github.com/raffopazzo/depc-sub002/internal/prettyprinter"
	"github.com/raffopazzo/depc-sub002/internal/symbols"
)

// Status is the state of a search task. Succeeded and Failed are terminal.
type Status int

const (
	InProgress Status = iota
	Succeeded
	Failed
)

func (s Status) String() string {
	switch s {
	case InProgress:
		return "in progress"
	case Succeeded:
		return "succeeded"
	default:
		return "failed"
	}
}

type taskKind int

const (
	oneTask taskKind = iota
	anyTask
	allTask
)

type taskID int

// goal is what a task must produce: a value of typ under ctx, charging
// usage with mult for every runtime use of a variable.
type goal struct {
	ctx   *symbols.Context
	usage *symbols.Usage
	typ   *ast.Expr
	mult  ast.Qty
	depth int
}

type tactic func(e *engine, id taskID)

type task struct {
	kind   taskKind
	status Status
	goal   goal
	name   string
	tactic tactic
	result *ast.Expr

	// any: alternatives still alive, stepped round-robin from cursor.
	// all: every sub-goal, in argument order.
	children []taskID
	cursor   int

	// all: usage shared by the sub-goals and the constructor of the result.
	temp  *symbols.Usage
	build func(results []*ast.Expr) *ast.Expr
}

// Searcher holds what stays fixed across the goals of one search.
type Searcher struct {
	Env    *symbols.Environment
	Logger *slog.Logger

	// MaxDepth bounds nested sub-searches; MaxSteps bounds the total work.
	MaxDepth int
	MaxSteps int

	// Mutable allows mutable functions in found applications.
	Mutable bool
	// Exclude is never used by searchApp, typically the function being defined.
	Exclude *ast.Global
}

// New returns a searcher over env with the default limits.
func New(env *symbols.Environment) *Searcher {
	return &Searcher{
		Env:      env,
		MaxDepth: config.DefaultMaxSearchDepth,
		MaxSteps: config.DefaultMaxSearchSteps,
	}
}

func (s *Searcher) logger() *slog.Logger {
	if s.Logger == nil {
		return slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return s.Logger
}

// Search looks for a value of type typ in ctx. On success the usage of the
// found value, scaled by mult, is charged to usage. Pass mult zero for
// erased positions such as proofs.
func (s *Searcher) Search(ctx *symbols.Context, usage *symbols.Usage, typ *ast.Expr, mult ast.Qty) (*ast.Expr, error) {
	e := &engine{s: s, log: s.logger()}
	root := e.spawn("search", goal{ctx: ctx, usage: usage.Extend(), typ: typ, mult: mult}, fullSearch)
	e.run(root)
	t := e.tasks[root]
	e.log.Debug("search finished",
		"goal", prettyprinter.Expr(typ), "status", t.status, "steps", e.steps, "tasks", len(e.tasks))
	if t.status != Succeeded {
		return nil, notFound(typ, e.steps >= s.MaxSteps)
	}
	usage.Add(t.goal.usage)
	return t.result, nil
}

func notFound(typ *ast.Expr, exhausted bool) *diagnostics.Error {
	var msg string
	if cond, ok := ast.AsTrueT(typ); ok {
		msg = fmt.Sprintf("cannot prove `%s`", prettyprinter.Expr(cond))
	} else {
		msg = fmt.Sprintf("cannot find a value of type `%s`", prettyprinter.Expr(typ))
	}
	err := diagnostics.NewError(diagnostics.ErrT007, typ.Pos(), msg)
	if exhausted {
		err.WithReason(diagnostics.NewError(diagnostics.ErrT007, typ.Pos(), "search step limit reached"))
	}
	return err
}

type engine struct {
	s     *Searcher
	log   *slog.Logger
	tasks []*task
	steps int
}

func (e *engine) spawn(name string, g goal, t tactic) taskID {
	e.tasks = append(e.tasks, &task{kind: oneTask, name: name, goal: g, tactic: t})
	return taskID(len(e.tasks) - 1)
}

func (e *engine) setResult(id taskID, result *ast.Expr) {
	t := e.tasks[id]
	t.result = result
	t.status = Succeeded
}

func (e *engine) setFailed(id taskID) {
	e.tasks[id].status = Failed
}

// becomeAny turns a one task into a race between alternatives. Each
// alternative records usage in its own child of the task's usage.
func (e *engine) becomeAny(id taskID, alternatives []taskID) {
	t := e.tasks[id]
	t.kind = anyTask
	t.children = alternatives
	t.cursor = 0
}

// becomeAll turns a one task into a conjunction of sub-goals sharing temp.
func (e *engine) becomeAll(id taskID, subgoals []taskID, temp *symbols.Usage, build func([]*ast.Expr) *ast.Expr) {
	t := e.tasks[id]
	t.kind = allTask
	t.children = subgoals
	t.cursor = 0
	t.temp = temp
	t.build = build
}

func (e *engine) run(root taskID) {
	for e.tasks[root].status == InProgress {
		if e.steps >= e.s.MaxSteps {
			e.setFailed(root)
			return
		}
		e.step(root)
	}
}

// step advances id by one unit of work.
func (e *engine) step(id taskID) {
	t := e.tasks[id]
	if t.status != InProgress {
		return
	}
	e.steps++
	switch t.kind {
	case oneTask:
		e.log.Debug("tactic", "name", t.name, "goal", prettyprinter.Expr(t.goal.typ), "depth", t.goal.depth)
		t.tactic(e, id)
		// A tactic that neither produced a result nor delegated has failed.
		if t.kind == oneTask && t.status == InProgress {
			t.status = Failed
		}
	case anyTask:
		e.stepAny(t)
	case allTask:
		e.stepAll(t)
	}
}

func (e *engine) stepAny(t *task) {
	if len(t.children) == 0 {
		t.status = Failed
		return
	}
	i := t.cursor % len(t.children)
	c := e.tasks[t.children[i]]
	e.step(t.children[i])
	switch c.status {
	case Succeeded:
		// Siblings may have charged the same variables since c was spawned.
		if err := t.goal.usage.TryCommit(t.goal.ctx, c.goal.usage, t.goal.typ.Pos()); err != nil {
			e.log.Debug("alternative rejected", "name", c.name, "err", err)
			t.children = append(t.children[:i], t.children[i+1:]...)
			t.cursor = i
			return
		}
		t.result = c.result
		t.status = Succeeded
	case Failed:
		t.children = append(t.children[:i], t.children[i+1:]...)
		t.cursor = i
	default:
		t.cursor = i + 1
	}
}

func (e *engine) stepAll(t *task) {
	n := len(t.children)
	for k := 0; k < n; k++ {
		i := (t.cursor + k) % n
		c := e.tasks[t.children[i]]
		if c.status == Succeeded {
			continue
		}
		e.step(t.children[i])
		if c.status == Failed {
			t.status = Failed
			return
		}
		t.cursor = i + 1
		return
	}
	// Every sub-goal succeeded.
	results := make([]*ast.Expr, n)
	for i, c := range t.children {
		results[i] = e.tasks[c].result
	}
	if err := t.goal.usage.TryCommit(t.goal.ctx, t.temp, t.goal.typ.Pos()); err != nil {
		t.status = Failed
		return
	}
	t.result = t.build(results)
	t.status = Succeeded
}

// alternative spawns a task for g whose usage is private until it wins.
func (e *engine) alternative(name string, g goal, tac tactic) taskID {
	g.usage = g.usage.Extend()
	return e.spawn(name, g, tac)
}

// fullSearch races every tactic.
func fullSearch(e *engine, id taskID) {
	e.race(id, false)
}

// quickSearch races only the tactics that never spawn sub-searches.
func quickSearch(e *engine, id taskID) {
	e.race(id, true)
}

func (e *engine) race(id taskID, quick bool) {
	g := e.tasks[id].goal
	alts := []taskID{
		e.alternative("searchVar", g, searchVar),
		e.alternative("searchTrueT", g, searchTrueT),
		e.alternative("searchTrivialValue", g, searchTrivialValue),
	}
	if !quick {
		alts = append(alts, e.alternative("searchApp", g, searchApp))
	}
	e.becomeAny(id, alts)
}
