package pipeline

import (
	"github.com/raffopazzo/depc-sub002/internal/ast"
	"github.com/raffopazzo/depc-sub002/internal/diagnostics"
	"github.com/raffopazzo/depc-sub002/internal/symbols"
	"github.com/raffopazzo/depc-sub002/internal/token"
)

// Processor is one stage of the pipeline.
type Processor interface {
	Process(ctx *PipelineContext) *PipelineContext
}

// PipelineContext carries the state of one source file through the stages.
type PipelineContext struct {
	SourceCode string
	FilePath   string

	Tokens []token.Token
	// Module is the raw tree produced by the parser.
	Module *ast.Module
	// Checked is the annotated tree produced by the typechecker.
	Checked *ast.Module
	// Env holds the prelude and the declarations of Checked.
	Env *symbols.Environment

	Errors []*diagnostics.Error
}

func NewPipelineContext(sourceCode string) *PipelineContext {
	return &PipelineContext{SourceCode: sourceCode}
}

// AddError records err, tagging it with the file of this context.
func (ctx *PipelineContext) AddError(err *diagnostics.Error) {
	err.SetFile(ctx.FilePath)
	ctx.Errors = append(ctx.Errors, err)
}

func (ctx *PipelineContext) HasErrors() bool {
	return len(ctx.Errors) > 0
}
