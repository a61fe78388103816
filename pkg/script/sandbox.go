package script

import (
	"fmt"
	"strings"

	"github.com/dop251/goja"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// applySandbox removes host-environment globals so scripts stay pure
// value-to-value functions.
func applySandbox(vm *goja.Runtime) error {
	dangerousGlobals := []string{
		"require",        // Node.js require
		"module",         // Node.js module
		"exports",        // Node.js exports
		"process",        // Node.js process
		"global",         // Node.js global
		"__dirname",      // Node.js __dirname
		"__filename",     // Node.js __filename
		"Buffer",         // Node.js Buffer
		"setImmediate",   // Node.js setImmediate
		"clearImmediate", // Node.js clearImmediate
	}

	for _, name := range dangerousGlobals {
		if err := vm.Set(name, goja.Undefined()); err != nil {
			return fmt.Errorf("failed to remove %s: %w", name, err)
		}
	}
	return nil
}

// installHelpers exposes locale-correct string helpers to scripts, since
// JavaScript's own toUpperCase/toLowerCase ignore language rules.
func installHelpers(vm *goja.Runtime) error {
	helpers := map[string]any{
		"titleCase": func(s string) string { return cases.Title(language.Und).String(s) },
		"upperCase": func(s string) string { return cases.Upper(language.Und).String(s) },
		"lowerCase": func(s string) string { return cases.Lower(language.Und).String(s) },
		"trimSpace": strings.TrimSpace,
	}
	for name, fn := range helpers {
		if err := vm.Set(name, fn); err != nil {
			return fmt.Errorf("failed to install helper %s: %w", name, err)
		}
	}
	return nil
}
