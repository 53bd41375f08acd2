package preflight

import (
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/sys/unix"

	"agentpack/internal/resources"
)

// CheckDirectoryAccess verifies that path is a directory with read, write and
// search permission.
func CheckDirectoryAccess(name, path string) Result {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", path)}
	}
	if err := unix.Access(path, unix.R_OK|unix.W_OK|unix.X_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (read/write ok)", path)}
}

// CheckWritableTarget passes when path is a writable directory or when its
// nearest existing ancestor is, so the directory can be created on demand.
func CheckWritableTarget(name, path string) Result {
	if path == "" {
		return Result{Name: name, Detail: "not configured"}
	}
	current := filepath.Clean(path)
	for {
		info, err := os.Stat(current)
		if err == nil {
			if !info.IsDir() {
				return Result{Name: name, Detail: fmt.Sprintf("%s (error: %s is not a directory)", path, current)}
			}
			if err := unix.Access(current, unix.W_OK|unix.X_OK); err != nil {
				return Result{Name: name, Detail: fmt.Sprintf("%s (error: %s not writable: %v)", path, current, err)}
			}
			if current == filepath.Clean(path) {
				return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (writable)", path)}
			}
			return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (will be created)", path)}
		}
		if !os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
		}
		parent := filepath.Dir(current)
		if parent == current {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: no existing parent)", path)}
		}
		current = parent
	}
}

// CheckBundle verifies that dir is readable and holds exactly one description.
func CheckBundle(dir string) Result {
	const name = "Bundle"
	if err := unix.Access(dir, unix.R_OK|unix.X_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: not readable: %v)", dir, err)}
	}
	description, err := resources.FindDescription(dir)
	if err != nil {
		return Result{Name: name, Detail: err.Error()}
	}
	loc, err := resources.OpenDir(dir)
	if err != nil {
		return Result{Name: name, Detail: err.Error()}
	}
	return Result{
		Name:   name,
		Passed: true,
		Detail: fmt.Sprintf("%s (%d images, %d sounds)", filepath.Base(description), loc.ImageCount(), loc.AudioCount()),
	}
}
