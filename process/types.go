package process

import "strconv"

// ProcessID represents a unique identifier for a process
type ProcessID int

// NoProcess marks a connection that has no owning process (or one the OS would not report)
const NoProcess ProcessID = 0

// Valid reports whether the pid refers to a real process
func (p ProcessID) Valid() bool {
	return p > NoProcess
}

func (p ProcessID) String() string {
	if !p.Valid() {
		return "-"
	}
	return strconv.Itoa(int(p))
}

// ProcessInfo contains basic information about a process
type ProcessInfo struct {
	PID  ProcessID // Process ID
	Name string    // Process name from /proc/[pid]/comm or the platform equivalent
}
