// Package preflight validates the runtime environment before a batch run:
// directory access, external binaries, and available disk space.
package preflight

import (
	"fmt"

	"golang.org/x/sys/unix"

	"directplay/internal/config"
	"directplay/internal/deps"
)

// minFreeBytes is the floor of free space required in the output
// filesystem before a run is allowed to start.
const minFreeBytes = 1 << 30

// Check is one environment validation result.
type Check struct {
	Name   string
	Passed bool
	Detail string
}

// Result aggregates all preflight checks.
type Result struct {
	Checks []Check
}

// Ok reports whether every check passed.
func (r Result) Ok() bool {
	for _, check := range r.Checks {
		if !check.Passed {
			return false
		}
	}
	return true
}

// Failures returns the checks that did not pass.
func (r Result) Failures() []Check {
	var failed []Check
	for _, check := range r.Checks {
		if !check.Passed {
			failed = append(failed, check)
		}
	}
	return failed
}

// Run executes every preflight check against the configuration.
func Run(cfg *config.Config) Result {
	var result Result

	result.Checks = append(result.Checks, checkAccess("input directory readable", cfg.Paths.InputDir, unix.R_OK))

	if err := cfg.EnsureDirectories(); err != nil {
		result.Checks = append(result.Checks, Check{
			Name:   "output directories",
			Detail: err.Error(),
		})
	} else {
		result.Checks = append(result.Checks, checkAccess("output directory writable", cfg.Paths.OutputDir, unix.W_OK))
		result.Checks = append(result.Checks, checkFreeSpace(cfg.Paths.OutputDir))
	}

	for _, status := range deps.CheckBinaries(deps.For(cfg)) {
		check := Check{
			Name:   status.Name + " available",
			Passed: status.Available,
			Detail: status.Detail,
		}
		result.Checks = append(result.Checks, check)
	}

	return result
}

func checkAccess(name, path string, mode uint32) Check {
	check := Check{Name: name}
	if path == "" {
		check.Detail = "path not configured"
		return check
	}
	if err := unix.Access(path, mode); err != nil {
		check.Detail = fmt.Sprintf("%s: %v", path, err)
		return check
	}
	check.Passed = true
	return check
}

func checkFreeSpace(path string) Check {
	check := Check{Name: "output disk space"}
	var stat unix.Statfs_t
	if err := unix.Statfs(path, &stat); err != nil {
		check.Detail = fmt.Sprintf("statfs %s: %v", path, err)
		return check
	}
	free := stat.Bavail * uint64(stat.Bsize)
	if free < minFreeBytes {
		check.Detail = fmt.Sprintf("only %d MiB free in %s", free>>20, path)
		return check
	}
	check.Passed = true
	return check
}
