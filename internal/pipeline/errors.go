package pipeline

import (
	"errors"
	"fmt"
)

// ErrPipelineOrder indicates a stage was invoked before its prerequisite.
var ErrPipelineOrder = errors.New("pipeline stage out of order")

// PipelineOrderError reports which operation was attempted too early and
// what state the pipeline must reach first. It is returned before any
// partial computation happens, so the pipeline's state is unchanged.
type PipelineOrderError struct {
	Operation string
	State     State
	Required  State
}

func (e *PipelineOrderError) Error() string {
	return fmt.Sprintf("%s requires pipeline state %s or later, current state is %s",
		e.Operation, e.Required, e.State)
}

func (e *PipelineOrderError) Is(target error) bool {
	return target == ErrPipelineOrder
}
