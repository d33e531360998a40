package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/peterh/liner"

	"github.com/raffopazzo/depc-sub002/internal/analyzer"
	"github.com/raffopazzo/depc-sub002/internal/ast"
	"github.com/raffopazzo/depc-sub002/internal/diagnostics"
	"github.com/raffopazzo/depc-sub002/internal/lexer"
	"github.com/raffopazzo/depc-sub002/internal/parser"
	"github.com/raffopazzo/depc-sub002/internal/prettyprinter"
	"github.com/raffopazzo/depc-sub002/internal/symbols"
	"github.com/raffopazzo/depc-sub002/internal/token"
)

const (
	historyFile = ".depc_history"
	promptMain  = "depc> "
	promptCont  = "  ... "
	replBanner  = "depc REPL. Enter declarations or expressions; :env lists definitions, :quit exits."
)

func cmdRepl(args []string) int {
	fs := flag.NewFlagSet("repl", flag.ContinueOnError)
	var flags commonFlags
	flags.register(fs)
	if err := fs.Parse(args); err != nil {
		return 2
	}
	settings, err := flags.settings()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		return 1
	}
	session, err := analyzer.NewSession(settings, flags.logger())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		return 1
	}
	color := useColor(settings.Diagnostics.Color, os.Stdout)

	ln := liner.NewLiner()
	defer ln.Close()
	ln.SetCtrlCAborts(true)

	home, _ := os.UserHomeDir()
	histPath := filepath.Join(home, historyFile)
	if f, err := os.Open(histPath); err == nil {
		_, _ = ln.ReadHistory(f)
		_ = f.Close()
	}
	defer func() {
		if f, err := os.Create(histPath); err == nil {
			_, _ = ln.WriteHistory(f)
			_ = f.Close()
		}
	}()

	fmt.Println(replBanner)
	for {
		input, ok := readInput(ln)
		if !ok {
			fmt.Println()
			return 0
		}
		trimmed := strings.TrimSpace(input)
		switch {
		case trimmed == "":
			continue
		case trimmed == ":quit":
			return 0
		case trimmed == ":env":
			printEnv(os.Stdout, session.Env)
		case strings.HasPrefix(trimmed, ":"):
			fmt.Println("unknown command. Type :env or :quit.")
		default:
			evalInput(os.Stdout, session, input, color)
		}
		ln.AppendHistory(strings.ReplaceAll(input, "\n", " "))
	}
}

// readInput keeps prompting while brackets are left open.
func readInput(ln *liner.State) (string, bool) {
	var b strings.Builder
	for {
		prompt := promptMain
		if b.Len() > 0 {
			prompt = promptCont
		}
		line, err := ln.Prompt(prompt)
		if errors.Is(err, io.EOF) {
			return "", false
		}
		if err != nil {
			return "", true
		}
		if b.Len() > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(line)
		if openBrackets(lexer.New(b.String()).Tokenize()) <= 0 {
			return b.String(), true
		}
	}
}

func openBrackets(toks []token.Token) int {
	depth := 0
	for _, t := range toks {
		switch t.Type {
		case token.LPAREN, token.LBRACE, token.LBRACKET:
			depth++
		case token.RPAREN, token.RBRACE, token.RBRACKET:
			depth--
		}
	}
	return depth
}

// isDeclaration tells declarations from expressions by their first tokens:
// `auto (` starts a lambda but `auto f(` a function definition.
func isDeclaration(toks []token.Token) bool {
	at := func(i int) token.TokenType {
		if i < len(toks) {
			return toks[i].Type
		}
		return token.EOF
	}
	i := 0
	if at(i) == token.MUTABLE {
		i++
	}
	switch at(i) {
	case token.STRUCT, token.AXIOM, token.EXTERN:
		return true
	case token.AUTO:
		return at(i+1) == token.IDENT
	}
	return false
}

// evalInput checks declarations into the session, or infers the sort of an expression.
func evalInput(w io.Writer, session *analyzer.Session, input string, color bool) {
	toks := lexer.New(input).Tokenize()
	p := parser.New(toks, "<repl>")
	if isDeclaration(toks) {
		m := p.ParseModule()
		if printErrors(w, p.Errors(), color) {
			return
		}
		checked, errs := session.CheckModule(m)
		printErrors(w, errs, color)
		for _, d := range checked.Decls {
			fmt.Fprintf(w, "%s : %s\n", d.DeclName(), declSort(d))
		}
		return
	}

	e := p.ParseExpression()
	if printErrors(w, p.Errors(), color) || e == nil {
		return
	}
	out, err := session.Infer(symbols.NewContext(), symbols.NewUsage(), e, ast.QtyOne)
	if err != nil {
		printErrors(w, []*diagnostics.Error{diagnostics.AsError(err, diagnostics.ErrT008, e.Pos())}, color)
		return
	}
	fmt.Fprintf(w, "%s : %s\n", prettyprinter.Expr(out), prettyprinter.Sort(out.Props.Sort))
}

func declSort(d ast.Decl) string {
	switch x := d.(type) {
	case ast.StructDef:
		return "typename"
	case ast.Axiom:
		return prettyprinter.Expr(x.Sig)
	case ast.Extern:
		return prettyprinter.Expr(x.Sig)
	case ast.FuncDecl:
		return prettyprinter.Expr(x.Sig)
	case ast.FuncDef:
		return prettyprinter.Sort(x.Value.Props.Sort)
	}
	return "?"
}

// printEnv lists the symbols defined in the session, without the prelude.
func printEnv(w io.Writer, env *symbols.Environment) {
	for g, sym := range env.Entries() {
		if g.Imported {
			continue
		}
		if sym.IsType() {
			fmt.Fprintf(w, "%s %s\n", sym.Kind, g.Name)
			continue
		}
		fmt.Fprintf(w, "%s %s : %s\n", sym.Kind, g.Name, prettyprinter.Expr(sym.Type))
	}
}
