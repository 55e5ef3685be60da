package runner

import (
	"fmt"
	"os"
	"os/exec"
)

// Runner writes generated code to a temp file and launches it with the
// interpreter. The child runs with the user's full privileges and is not
// sandboxed or tracked. Temp files are never removed.
type Runner struct {
	Interpreter string
	TempDir     string

	start func(*exec.Cmd) error
}

// Launch describes a started child.
type Launch struct {
	Path string
	PID  int
}

func New() *Runner {
	return &Runner{Interpreter: FindInterpreter(), start: startDetached}
}

// FindInterpreter prefers python3 and falls back to python.
func FindInterpreter() string {
	for _, name := range []string{"python3", "python"} {
		if path, err := exec.LookPath(name); err == nil {
			return path
		}
	}
	return "python"
}

// Run returns as soon as the process has been started.
func (r *Runner) Run(sourceCode string) (Launch, error) {
	f, err := os.CreateTemp(r.TempDir, "appfactory-*.py")
	if err != nil {
		return Launch{}, fmt.Errorf("create temp file: %w", err)
	}
	path := f.Name()

	if _, err := f.WriteString(sourceCode); err != nil {
		f.Close()
		return Launch{Path: path}, fmt.Errorf("write temp file: %w", err)
	}
	if err := f.Close(); err != nil {
		return Launch{Path: path}, fmt.Errorf("close temp file: %w", err)
	}

	interpreter := r.Interpreter
	if interpreter == "" {
		interpreter = FindInterpreter()
	}
	cmd := exec.Command(interpreter, path)

	start := r.start
	if start == nil {
		start = startDetached
	}
	if err := start(cmd); err != nil {
		return Launch{Path: path}, fmt.Errorf("start %s: %w", interpreter, err)
	}

	launch := Launch{Path: path}
	if cmd.Process != nil {
		launch.PID = cmd.Process.Pid
	}
	return launch, nil
}

// startDetached starts cmd without stdio. The exit status is reaped in the
// background and discarded so no zombie is left behind.
func startDetached(cmd *exec.Cmd) error {
	if err := cmd.Start(); err != nil {
		return err
	}
	go func() {
		_ = cmd.Wait()
	}()
	return nil
}
