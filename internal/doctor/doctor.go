// Package doctor runs runtime readiness diagnostics for config, credentials,
// storage, and the listen address.
package doctor

import (
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/sarathi-app/sarathi/internal/config"
)

// Check is one doctor assertion result.
type Check struct {
	Name    string
	Pass    bool
	Message string
}

// Report is the full doctor output contract.
type Report struct {
	Checks []Check
}

// OK returns true when all checks pass.
func (r Report) OK() bool {
	for _, check := range r.Checks {
		if !check.Pass {
			return false
		}
	}
	return true
}

// String renders the report as user-facing text output.
func (r Report) String() string {
	var b strings.Builder
	for _, check := range r.Checks {
		status := "OK"
		if !check.Pass {
			status = "FAIL"
		}
		b.WriteString(fmt.Sprintf("[%s] %s: %s\n", status, check.Name, check.Message))
	}
	return strings.TrimSuffix(b.String(), "\n")
}

// Run executes environment/config/runtime checks for a loaded config.
func Run(cfg config.Loaded) Report {
	checks := []Check{}

	configMsg := fmt.Sprintf("loaded %q", cfg.Path)
	if !cfg.Exists {
		configMsg = fmt.Sprintf("%q not found; defaults in effect", cfg.Path)
	}
	checks = append(checks, Check{Name: "config", Pass: true, Message: configMsg})

	for _, warning := range cfg.Warnings {
		checks = append(checks, Check{Name: "config.warning", Pass: true, Message: warning.Message})
	}

	checks = append(checks, checkAPIKey(cfg.Config.Summarize))
	checks = append(checks, checkStorePath(cfg.Config.RAG))
	checks = append(checks, checkListenAddr(cfg.Config.Server.Addr))
	checks = append(checks, checkRuntimeDir())

	return Report{Checks: checks}
}

// checkAPIKey verifies provider credentials for the configured default model.
func checkAPIKey(cfg config.SummarizeConfig) Check {
	model := strings.ToLower(strings.TrimSpace(cfg.DefaultModel))
	switch model {
	case "mock":
		return Check{Name: "provider.key", Pass: true, Message: "mock provider needs no credentials"}
	case "chat":
		if strings.TrimSpace(os.Getenv(cfg.ChatAPIKeyEnv)) == "" {
			return Check{Name: "provider.key", Pass: false, Message: fmt.Sprintf("%s is unset", cfg.ChatAPIKeyEnv)}
		}
		return Check{Name: "provider.key", Pass: true, Message: fmt.Sprintf("%s is set", cfg.ChatAPIKeyEnv)}
	default:
		if strings.TrimSpace(os.Getenv(cfg.GeminiAPIKeyEnv)) == "" {
			return Check{Name: "provider.key", Pass: false, Message: fmt.Sprintf("%s is unset; summaries fall back to mock", cfg.GeminiAPIKeyEnv)}
		}
		return Check{Name: "provider.key", Pass: true, Message: fmt.Sprintf("%s is set", cfg.GeminiAPIKeyEnv)}
	}
}

// checkStorePath verifies the chunk store directory is writable.
func checkStorePath(cfg config.RAGConfig) Check {
	path := strings.TrimSpace(cfg.StorePath)
	if path == "" {
		return Check{Name: "rag.store", Pass: true, Message: "store path resolves under the state directory"}
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return Check{Name: "rag.store", Pass: false, Message: fmt.Sprintf("cannot create %q: %v", dir, err)}
	}

	probe := filepath.Join(dir, ".doctor-probe")
	if err := os.WriteFile(probe, nil, 0o600); err != nil {
		return Check{Name: "rag.store", Pass: false, Message: fmt.Sprintf("directory %q is not writable: %v", dir, err)}
	}
	_ = os.Remove(probe)
	return Check{Name: "rag.store", Pass: true, Message: fmt.Sprintf("directory %q is writable", dir)}
}

// checkListenAddr verifies the configured address can be bound.
func checkListenAddr(addr string) Check {
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		if strings.Contains(err.Error(), "address already in use") {
			return Check{Name: "server.addr", Pass: true, Message: fmt.Sprintf("%s is in use (daemon may already be running)", addr)}
		}
		return Check{Name: "server.addr", Pass: false, Message: fmt.Sprintf("cannot bind %s: %v", addr, err)}
	}
	_ = listener.Close()
	// Give the kernel a moment to release the port before serve reuses it.
	time.Sleep(10 * time.Millisecond)
	return Check{Name: "server.addr", Pass: true, Message: fmt.Sprintf("%s is bindable", addr)}
}

// checkRuntimeDir verifies the control socket location is available.
func checkRuntimeDir() Check {
	runtimeDir := strings.TrimSpace(os.Getenv("XDG_RUNTIME_DIR"))
	if runtimeDir == "" {
		return Check{Name: "runtime.dir", Pass: false, Message: "XDG_RUNTIME_DIR is not set; control socket unavailable"}
	}
	return Check{Name: "runtime.dir", Pass: true, Message: fmt.Sprintf("control socket under %q", runtimeDir)}
}
