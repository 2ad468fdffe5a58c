//go:build linux

package process_linux

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"

	"openports/process"
)

// ProcResolver implements process.NameResolver by reading /proc
type ProcResolver struct {
	root string
}

// NewProcResolver creates a resolver rooted at /proc
func NewProcResolver() *ProcResolver {
	return &ProcResolver{root: "/proc"}
}

// NewProcResolverAt creates a resolver over a different procfs mount (e.g. a host /proc bind-mounted into a container)
func NewProcResolverAt(root string) *ProcResolver {
	return &ProcResolver{root: root}
}

// ProcessName returns the comm name of pid, falling back to the exe basename
// when comm is empty (kernel threads and some zombies).
func (r *ProcResolver) ProcessName(_ context.Context, pid process.ProcessID) (string, error) {
	if !pid.Valid() {
		return "", process.ErrNotRunning
	}
	procPath := filepath.Join(r.root, strconv.Itoa(int(pid)))

	comm, err := os.ReadFile(filepath.Join(procPath, "comm"))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) || !r.exists(pid) {
			return "", process.ErrNotRunning
		}
		return "", fmt.Errorf("failed to read process name: %w", err)
	}
	if name := string(bytesTrimNL(comm)); name != "" {
		return name, nil
	}

	// Resolve /proc/<pid>/exe symlink; may fail if zombie or permission
	exe, _ := os.Readlink(filepath.Join(procPath, "exe"))
	if exe != "" {
		return filepath.Base(exe), nil
	}
	return "", process.ErrNotRunning
}

func (r *ProcResolver) exists(pid process.ProcessID) bool {
	if r.root != "/proc" {
		_, err := os.Stat(filepath.Join(r.root, strconv.Itoa(int(pid))))
		return err == nil
	}
	return procExists(int(pid))
}
