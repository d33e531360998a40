package lexer

import (
	"github.com/raffopazzo/depc-sub002/internal/diagnostics"
	"github.com/raffopazzo/depc-sub002/internal/pipeline"
	"github.com/raffopazzo/depc-sub002/internal/token"
)

type LexerProcessor struct{}

func (lp *LexerProcessor) Process(ctx *pipeline.PipelineContext) *pipeline.PipelineContext {
	ctx.Tokens = New(ctx.SourceCode).Tokenize()
	for _, tok := range ctx.Tokens {
		if tok.Type != token.ILLEGAL {
			continue
		}
		msg, _ := tok.Literal.(string)
		if msg == "" || msg == tok.Lexeme {
			msg = "illegal character " + tok.Lexeme
		}
		ctx.AddError(diagnostics.NewError(diagnostics.ErrP001, tok.Pos(), msg))
	}
	return ctx
}
