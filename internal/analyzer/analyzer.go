// Package analyzer is the bidirectional typechecker. It turns a module
// produced by the parser into a module where every expression carries its
// sort, or reports why it cannot.
package analyzer

import (
	"io"
	"log/slog"

	"github.com/google/uuid"

	"github.com/raffopazzo/depc-sub002/internal/ast"
	"github.com/raffopazzo/depc-sub002/internal/config"
	"github.com/raffopazzo/depc-sub002/internal/diagnostics"
	"github.com/raffopazzo/depc-sub002/internal/search"
	"github.com/raffopazzo/depc-sub002/internal/symbols"
)

// Session checks declarations against one environment. Each session has its
// own counter for generated variable indices, so sessions are independent
// and may run concurrently.
type Session struct {
	ID       uuid.UUID
	Settings config.Settings
	Logger   *slog.Logger
	// Env holds the prelude and every declaration checked so far.
	Env *symbols.Environment

	next int
}

// NewSession returns a session whose environment starts with the prelude.
// A nil logger discards everything.
func NewSession(settings config.Settings, logger *slog.Logger) (*Session, error) {
	prelude, err := Prelude()
	if err != nil {
		return nil, err
	}
	env := symbols.NewEnvironment()
	if err := env.Import(config.PreludeModuleName, prelude); err != nil {
		return nil, err
	}
	return newSession(env, settings, logger), nil
}

func newSession(env *symbols.Environment, settings config.Settings, logger *slog.Logger) *Session {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	id := uuid.New()
	return &Session{
		ID:       id,
		Settings: settings.WithDefaults(),
		Logger:   logger.With("session", id.String()),
		Env:      env,
	}
}

// CheckModule checks every declaration of m in order. A declaration that
// fails is reported and left out of the result; checking carries on with
// the next one.
func (s *Session) CheckModule(m *ast.Module) (*ast.Module, []*diagnostics.Error) {
	out := &ast.Module{File: m.File}
	var errs []*diagnostics.Error
	for _, d := range m.Decls {
		checked, err := s.CheckDecl(d)
		if err != nil {
			err.SetFile(m.File)
			errs = append(errs, err)
			continue
		}
		out.Decls = append(out.Decls, checked)
	}
	diagnostics.Sort(errs)
	return out, errs
}

// CheckDecl checks one declaration and adds it to the environment.
func (s *Session) CheckDecl(d ast.Decl) (ast.Decl, *diagnostics.Error) {
	s.Logger.Debug("checking declaration", "name", d.DeclName(), "pos", d.DeclPos().String())
	c := &checker{s: s}
	return c.checkDecl(d)
}

// Infer assigns a sort to e, charging usage with mult for every runtime use
// of a variable of ctx.
func (s *Session) Infer(ctx *symbols.Context, usage *symbols.Usage, e *ast.Expr, mult ast.Qty) (*ast.Expr, error) {
	c := &checker{s: s}
	out, err := c.infer(state{ctx: ctx, usage: usage, mult: mult}, e)
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Check checks e against expected.
func (s *Session) Check(ctx *symbols.Context, usage *symbols.Usage, e, expected *ast.Expr, mult ast.Qty) (*ast.Expr, error) {
	c := &checker{s: s}
	out, err := c.check(state{ctx: ctx, usage: usage, mult: mult}, e, expected)
	if err != nil {
		return nil, err
	}
	return out, nil
}

// checker holds what is fixed while checking one function.
type checker struct {
	s *Session
	// mutable is set inside mutable functions, which may invoke other mutable functions.
	mutable bool
	// self is the function being defined; proof search never uses it.
	self *ast.Global
}

// state is what changes from one expression to the next.
type state struct {
	ctx   *symbols.Context
	usage *symbols.Usage
	// mult scales every use of a variable: zero in types and proofs.
	mult ast.Qty
}

func (st state) erased() state {
	st.mult = ast.QtyZero
	return st
}

func (st state) scaled(q ast.Qty) state {
	st.mult = st.mult.Mul(q)
	return st
}

func (c *checker) searcher() *search.Searcher {
	return &search.Searcher{
		Env:      c.s.Env,
		Logger:   c.s.Logger,
		MaxDepth: c.s.Settings.Search.MaxDepth,
		MaxSteps: c.s.Settings.Search.MaxSteps,
		Mutable:  c.mutable,
		Exclude:  c.self,
	}
}
