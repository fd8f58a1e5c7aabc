//go:build !unix

package shell

import "os/exec"

func configureProcessGroup(_ *exec.Cmd) {}
