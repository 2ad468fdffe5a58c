//go:build linux

package main

import (
	"openports/process"
	"openports/process_linux"
)

func newNameResolver() process.NameResolver {
	return process.Chain(process_linux.NewProcResolver(), process.NewPsutilResolver())
}
