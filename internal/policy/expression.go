package policy

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/dop251/goja"
	"github.com/me/shopfloor/pkg/model"
)

// Expression scores each task with a JavaScript expression and orders by
// descending score. The expression sees these variables:
//
//	duration, machineId, jobId, index, remaining, jobTotal, deadline
//
// deadline is null when neither the task nor its job has one.
type Expression struct {
	source  string
	program *goja.Program
}

// NewExpression compiles src. Compilation errors are reported here so a bad
// expression fails before any scoring happens.
func NewExpression(src string) (*Expression, error) {
	src = strings.TrimSpace(src)
	if src == "" {
		return nil, fmt.Errorf("expression algorithm requires a non-empty expression")
	}
	prog, err := goja.Compile("priority", "("+src+")", true)
	if err != nil {
		return nil, fmt.Errorf("compile expression: %w", err)
	}
	return &Expression{source: src, program: prog}, nil
}

func (x *Expression) Name() model.Algorithm { return model.AlgorithmExpression }

// Score evaluates the expression for one entry in a fresh runtime.
func (x *Expression) Score(e Entry) (float64, error) {
	return x.score(goja.New(), e)
}

func (x *Expression) score(vm *goja.Runtime, e Entry) (float64, error) {
	vars := map[string]any{
		"duration":  e.Task.Duration,
		"machineId": e.Task.MachineID,
		"jobId":     e.Task.JobID,
		"index":     e.Position(),
		"remaining": e.Remaining(),
		"jobTotal":  e.JobTotal(),
		"deadline":  nil,
	}
	switch {
	case e.Task.Deadline != nil:
		vars["deadline"] = *e.Task.Deadline
	case e.Job != nil && e.Job.Deadline != nil:
		vars["deadline"] = *e.Job.Deadline
	}
	for k, v := range vars {
		if err := vm.Set(k, v); err != nil {
			return 0, fmt.Errorf("set %s: %w", k, err)
		}
	}

	val, err := vm.RunProgram(x.program)
	if err != nil {
		return 0, fmt.Errorf("task %s: JavaScript error: %w", e.Task.ID, err)
	}
	score := val.ToFloat()
	if math.IsNaN(score) {
		return 0, fmt.Errorf("task %s: expression %q did not produce a number", e.Task.ID, x.source)
	}
	return score, nil
}

// Order scores every entry in one runtime. When ctx is done the running
// script is interrupted and the context error is returned.
func (x *Expression) Order(ctx context.Context, pool []Entry) ([]Entry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	vm := goja.New()
	stop := context.AfterFunc(ctx, func() {
		vm.Interrupt(ctx.Err())
	})
	defer stop()

	for i := range pool {
		score, err := x.score(vm, pool[i])
		if err != nil {
			var interrupted *goja.InterruptedError
			if errors.As(err, &interrupted) {
				return nil, fmt.Errorf("expression interrupted at task %s: %w", pool[i].Task.ID, ctx.Err())
			}
			return nil, err
		}
		pool[i].Task.Priority = &score
	}
	sortByPriorityDesc(pool)
	return pool, nil
}
