package process

import (
	"context"
	"errors"
	"fmt"

	gopsProcess "github.com/shirou/gopsutil/v4/process"
)

// PsutilResolver resolves process names through gopsutil. It works on every
// platform gopsutil supports and is the fallback where /proc is not available.
type PsutilResolver struct{}

// NewPsutilResolver creates a new PsutilResolver
func NewPsutilResolver() *PsutilResolver {
	return &PsutilResolver{}
}

func (r *PsutilResolver) ProcessName(ctx context.Context, pid ProcessID) (string, error) {
	if !pid.Valid() {
		return "", ErrNotRunning
	}

	p, err := gopsProcess.NewProcessWithContext(ctx, int32(pid))
	if err != nil {
		if errors.Is(err, gopsProcess.ErrorProcessNotRunning) {
			return "", ErrNotRunning
		}
		return "", fmt.Errorf("open process %d: %w", pid, err)
	}

	name, err := p.NameWithContext(ctx)
	if err != nil {
		// the process can vanish after NewProcess succeeded
		if exists, _ := gopsProcess.PidExistsWithContext(ctx, int32(pid)); !exists {
			return "", ErrNotRunning
		}
		return "", fmt.Errorf("read name of process %d: %w", pid, err)
	}
	return name, nil
}
