package parser

import (
	"github.com/raffopazzo/depc-sub002/internal/pipeline"
)

type ParserProcessor struct{}

func (pp *ParserProcessor) Process(ctx *pipeline.PipelineContext) *pipeline.PipelineContext {
	if ctx.Tokens == nil {
		return ctx
	}

	parser := New(ctx.Tokens, ctx.FilePath)
	ctx.Module = parser.ParseModule()
	for _, err := range parser.Errors() {
		ctx.AddError(err)
	}
	return ctx
}
