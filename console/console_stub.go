//go:build !(js && wasm)

package console

import "os"

// Log is a no-op in non-WASM builds.
func Log(args ...any) {}

// Warn is a no-op in non-WASM builds.
func Warn(args ...any) {}

// Error is a no-op in non-WASM builds.
func Error(args ...any) {}

// output is stderr outside the browser.
func output() *os.File { return os.Stderr }
