package analyzer

import (
	"log/slog"

	"github.com/raffopazzo/depc-sub002/internal/config"
	"github.com/raffopazzo/depc-sub002/internal/diagnostics"
	"github.com/raffopazzo/depc-sub002/internal/pipeline"
	"github.com/raffopazzo/depc-sub002/internal/token"
)

// SemanticAnalyzerProcessor typechecks the module produced by the parser.
// Each file gets its own session, so processors may run concurrently.
type SemanticAnalyzerProcessor struct {
	Settings config.Settings
	Logger   *slog.Logger
}

func (sap *SemanticAnalyzerProcessor) Process(ctx *pipeline.PipelineContext) *pipeline.PipelineContext {
	if ctx.Module == nil {
		return ctx
	}

	session, err := NewSession(sap.Settings, sap.Logger)
	if err != nil {
		ctx.AddError(diagnostics.AsError(err, diagnostics.ErrC001, token.Pos{}))
		return ctx
	}
	checked, errs := session.CheckModule(ctx.Module)
	ctx.Checked = checked
	ctx.Env = session.Env
	for _, e := range errs {
		ctx.AddError(e)
	}
	return ctx
}
