//go:build windows

package invoke

import (
	"errors"
	"os"
	"os/exec"
)

func isolate(*exec.Cmd) {}

// kill terminates the child. Windows has no process groups to signal here.
func kill(cmd *exec.Cmd) error {
	if cmd.Process == nil {
		return nil
	}
	err := cmd.Process.Kill()
	if errors.Is(err, os.ErrProcessDone) {
		return nil
	}
	return err
}
