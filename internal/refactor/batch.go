package refactor

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/dusk-indust/reshape/internal/source"
)

// Engine executes ordered operation batches against one project. Execution
// is strictly sequential: each operation observes every earlier mutation,
// and the first failure stops the batch. Operations already applied stay
// applied; there is no rollback, so the caller decides what to do with the
// files the batch mutated before failing.
type Engine struct {
	project *source.Project
	log     *zap.Logger

	remove *RemoveExecutor
	rename *RenameExecutor
	move   *MoveExecutor
}

// NewEngine creates an Engine over the given project.
func NewEngine(project *source.Project, log *zap.Logger) *Engine {
	if log == nil {
		log = zap.NewNop()
	}
	return &Engine{
		project: project,
		log:     log,
		remove:  NewRemoveExecutor(project),
		rename:  NewRenameExecutor(project),
		move:    NewMoveExecutor(project),
	}
}

// Execute runs the batch in array order, stopping at the first failing
// operation. The result carries one OperationResult per attempted operation;
// on failure it also records the failing index and error.
func (e *Engine) Execute(ctx context.Context, req BatchRequest) BatchResult {
	result := BatchResult{Success: true, FailedIndex: -1}

	for i, op := range req.Operations {
		if err := ctx.Err(); err != nil {
			result.Success = false
			result.FailedIndex = i
			result.Error = fmt.Sprintf("operation %d (%s) aborted: %v", i, op.Kind(), err)
			return result
		}

		e.log.Debug("executing operation",
			zap.Int("index", i),
			zap.String("operation", string(op.Kind())),
			zap.String("selector", op.Sel().String()),
			zap.String("reason", Reason(op)))

		affected, err := e.dispatch(op)
		if err != nil {
			e.log.Warn("operation failed",
				zap.Int("index", i),
				zap.String("operation", string(op.Kind())),
				zap.Error(err))
			result.Results = append(result.Results, OperationResult{
				Success:       false,
				AffectedFiles: []string{},
				Error:         err.Error(),
			})
			result.Success = false
			result.FailedIndex = i
			result.Error = fmt.Sprintf("operation %d (%s) failed: %v", i, op.Kind(), err)
			return result
		}

		e.log.Debug("operation applied",
			zap.Int("index", i),
			zap.Strings("affectedFiles", affected))
		result.Results = append(result.Results, OperationResult{
			Success:       true,
			AffectedFiles: affected,
		})
	}

	return result
}

// dispatch routes one operation to its executor. The union is closed, so an
// unknown variant is a programming error.
func (e *Engine) dispatch(op Operation) ([]string, error) {
	switch o := op.(type) {
	case RemoveOp:
		return e.remove.Apply(o)
	case RenameOp:
		return e.rename.Apply(o)
	case MoveOp:
		return e.move.Apply(o)
	default:
		return nil, fmt.Errorf("unknown operation kind %q", op.Kind())
	}
}
