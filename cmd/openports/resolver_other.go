//go:build !linux

package main

import "openports/process"

func newNameResolver() process.NameResolver {
	return process.NewPsutilResolver()
}
