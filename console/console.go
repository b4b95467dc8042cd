//go:build js && wasm

package console

import (
	"strings"
	"syscall/js"
)

func Log(args ...any) {
	js.Global().Get("console").Call("log", args...)
}

func Warn(args ...any) {
	js.Global().Get("console").Call("warn", args...)
}

func Error(args ...any) {
	js.Global().Get("console").Call("error", args...)
}

// sink writes each encoded log entry to the browser console, routing
// warnings and errors to the matching console method.
type sink struct{}

func (sink) Write(p []byte) (int, error) {
	line := strings.TrimRight(string(p), "\n")
	switch {
	case strings.HasPrefix(line, "ERROR"), strings.HasPrefix(line, "DPANIC"),
		strings.HasPrefix(line, "PANIC"), strings.HasPrefix(line, "FATAL"):
		Error(line)
	case strings.HasPrefix(line, "WARN"):
		Warn(line)
	default:
		Log(line)
	}
	return len(p), nil
}

func (sink) Sync() error { return nil }

func output() sink { return sink{} }
