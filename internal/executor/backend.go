package executor

import (
	"context"
	"fmt"
	"runtime"

	"valet/internal/action"
)

// Backend is one adapter behind the dispatch whitelist. Each whitelisted
// action kind maps to exactly one backend. Backends receive only validated
// descriptors and must not block on network I/O.
type Backend interface {
	Dispatch(ctx context.Context, desc *action.Descriptor) (BackendResult, error)
}

// BackendFunc adapts a function to the Backend interface.
type BackendFunc func(ctx context.Context, desc *action.Descriptor) (BackendResult, error)

// Dispatch calls f.
func (f BackendFunc) Dispatch(ctx context.Context, desc *action.Descriptor) (BackendResult, error) {
	return f(ctx, desc)
}

// liveExecutable is the closed dispatch whitelist: the actual ceiling on
// real-world effect. Permission grants alone never unlock new executable
// behavior; only extending this switch does. Exhaustive over action.Kind so
// a new kind is a compile-surface decision here, not a silent string miss.
func liveExecutable(kind action.Kind) bool {
	switch kind {
	case action.KindOpenApplication, action.KindQuerySystemInfo:
		return true
	case action.KindOpenFile,
		action.KindDeleteFile,
		action.KindOpenURL,
		action.KindCreateNote,
		action.KindReadNote,
		action.KindExecuteTerminal:
		return false
	case action.KindUnknown:
		return false
	default:
		return false
	}
}

// DefaultBackends returns the stub adapters for the whitelisted kinds.
func DefaultBackends() map[action.Kind]Backend {
	return map[action.Kind]Backend{
		action.KindOpenApplication: BackendFunc(openApplication),
		action.KindQuerySystemInfo: BackendFunc(querySystemInfo),
	}
}

// openApplication is a stand-in for a desktop launcher adapter.
func openApplication(ctx context.Context, desc *action.Descriptor) (BackendResult, error) {
	app, ok := desc.Param("app_name")
	if !ok || app == "" {
		app = desc.Target()
	}
	if app == "" {
		return BackendResult{}, fmt.Errorf("open_application: no application named")
	}
	return BackendResult{OK: true, Detail: fmt.Sprintf("opened %s", app)}, nil
}

// querySystemInfo answers read-only system questions from the runtime.
func querySystemInfo(ctx context.Context, desc *action.Descriptor) (BackendResult, error) {
	query, _ := desc.Param("query")
	switch query {
	case "os", "":
		return BackendResult{OK: true, Detail: fmt.Sprintf("os=%s arch=%s", runtime.GOOS, runtime.GOARCH)}, nil
	case "cpus":
		return BackendResult{OK: true, Detail: fmt.Sprintf("cpus=%d", runtime.NumCPU())}, nil
	default:
		return BackendResult{OK: false, Error: fmt.Sprintf("unknown system query %q", query)}, nil
	}
}
