// Package script compiles user-authored JavaScript into the predicate and
// mapping functions consumed by filter and transformer runtimes. Each
// compiled function owns a private sandboxed VM; a node's task loop is
// single-threaded, so no VM pooling is needed.
package script

import (
	"fmt"

	"github.com/dop251/goja"

	flowerrors "github.com/codenodeio/flow/pkg/errors"
	"github.com/codenodeio/flow/pkg/runtime"
)

// NewPredicate compiles src and returns a predicate calling the function
// named entry with each value. The script must define entry as a
// one-argument function; its return value is coerced to a boolean.
//
// Script evaluation errors at call time are user-logic failures and panic,
// matching the propagation policy for native predicates.
func NewPredicate[T any](src, entry string) (runtime.PredicateFunc[T], error) {
	vm, fn, err := compile(src, entry)
	if err != nil {
		return nil, err
	}
	return func(v T) bool {
		res, err := fn(goja.Undefined(), vm.ToValue(v))
		if err != nil {
			panic(fmt.Errorf("script predicate %q: %w", entry, err))
		}
		return res.ToBoolean()
	}, nil
}

// NewMapper compiles src and returns a mapping function calling entry with
// each value. The script's return value is exported into Out; export
// failures are user-logic failures and panic.
func NewMapper[In, Out any](src, entry string) (runtime.MapFunc[In, Out], error) {
	vm, fn, err := compile(src, entry)
	if err != nil {
		return nil, err
	}
	return func(v In) Out {
		res, err := fn(goja.Undefined(), vm.ToValue(v))
		if err != nil {
			panic(fmt.Errorf("script mapper %q: %w", entry, err))
		}
		var out Out
		if err := vm.ExportTo(res, &out); err != nil {
			panic(fmt.Errorf("script mapper %q: export: %w", entry, err))
		}
		return out
	}, nil
}

func compile(src, entry string) (*goja.Runtime, goja.Callable, error) {
	if src == "" {
		return nil, nil, flowerrors.NewError("SCRIPT_COMPILE", "script source cannot be empty", flowerrors.ErrInvalidScript)
	}
	if entry == "" {
		return nil, nil, flowerrors.NewError("SCRIPT_COMPILE", "entry function name cannot be empty", flowerrors.ErrInvalidScript)
	}

	vm := goja.New()
	if err := applySandbox(vm); err != nil {
		return nil, nil, flowerrors.NewError("SCRIPT_SANDBOX", "failed to apply sandbox", err)
	}
	if err := installHelpers(vm); err != nil {
		return nil, nil, flowerrors.NewError("SCRIPT_SANDBOX", "failed to install helpers", err)
	}

	if _, err := vm.RunString(src); err != nil {
		return nil, nil, flowerrors.NewError("SCRIPT_COMPILE", "script did not evaluate", err)
	}

	fn, ok := goja.AssertFunction(vm.Get(entry))
	if !ok {
		return nil, nil, flowerrors.NewError("SCRIPT_COMPILE",
			fmt.Sprintf("script does not define function %q", entry), flowerrors.ErrInvalidScript)
	}
	return vm, fn, nil
}
