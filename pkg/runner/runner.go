// Package runner invokes external programs. Every call blocks until the
// child exits.
package runner

import (
	"bufio"
	"bytes"
	"context"
	"io"
	"os"
	"os/exec"
	"strings"
	"sync"

	"github.com/apex/log"
	"github.com/pkg/errors"
)

// Cmd describes one external program invocation.
type Cmd struct {
	Name string
	Args []string
	Dir  string
	// Env entries override the inherited environment.
	Env map[string]string
}

func (c Cmd) String() string {
	return strings.Join(append([]string{c.Name}, c.Args...), " ")
}

// Runner executes commands.
type Runner interface {
	// Run executes c, forwarding its output to the log.
	Run(ctx context.Context, c Cmd) error
	// Output executes c and returns its standard output.
	Output(ctx context.Context, c Cmd) ([]byte, error)
}

// Exec runs commands as child processes.
type Exec struct{}

func (Exec) Run(ctx context.Context, c Cmd) error {
	cmd := command(ctx, c)
	out := newLogWriter(c.Name)
	defer out.Close()
	cmd.Stdout = out
	cmd.Stderr = out

	log.WithField("dir", cmd.Dir).Debugf("running %s", c)
	if err := cmd.Run(); err != nil {
		return errors.Wrapf(err, "%s", c)
	}
	return nil
}

func (Exec) Output(ctx context.Context, c Cmd) ([]byte, error) {
	cmd := command(ctx, c)
	var stdout bytes.Buffer
	errOut := newLogWriter(c.Name)
	defer errOut.Close()
	cmd.Stdout = &stdout
	cmd.Stderr = errOut

	log.WithField("dir", cmd.Dir).Debugf("running %s", c)
	if err := cmd.Run(); err != nil {
		return stdout.Bytes(), errors.Wrapf(err, "%s", c)
	}
	return stdout.Bytes(), nil
}

// LookPath reports whether name resolves to an executable.
func LookPath(name string) bool {
	_, err := exec.LookPath(name)
	return err == nil
}

func command(ctx context.Context, c Cmd) *exec.Cmd {
	cmd := exec.CommandContext(ctx, c.Name, c.Args...)
	cmd.Dir = c.Dir
	if len(c.Env) > 0 {
		cmd.Env = MergeEnv(os.Environ(), c.Env)
	}
	return cmd
}

// MergeEnv returns base with every key in overrides replaced or appended.
func MergeEnv(base []string, overrides map[string]string) []string {
	merged := append([]string(nil), base...)
	idx := make(map[string]int, len(merged))
	for i, kv := range merged {
		if k, _, ok := strings.Cut(kv, "="); ok {
			idx[k] = i
		}
	}
	for k, v := range overrides {
		if i, ok := idx[k]; ok {
			merged[i] = k + "=" + v
		} else {
			merged = append(merged, k+"="+v)
		}
	}
	return merged
}

// logWriter forwards child output to the debug log one line at a time.
type logWriter struct {
	pw   *io.PipeWriter
	done sync.WaitGroup
}

func newLogWriter(name string) *logWriter {
	pr, pw := io.Pipe()
	w := &logWriter{pw: pw}
	w.done.Add(1)
	go func() {
		defer w.done.Done()
		s := bufio.NewScanner(pr)
		s.Buffer(make([]byte, 64*1024), 1024*1024)
		for s.Scan() {
			log.WithField("cmd", name).Debug(s.Text())
		}
		// Drain whatever the scanner refused so the child never blocks.
		_, _ = io.Copy(io.Discard, pr)
	}()
	return w
}

func (w *logWriter) Write(p []byte) (int, error) {
	return w.pw.Write(p)
}

func (w *logWriter) Close() error {
	err := w.pw.Close()
	w.done.Wait()
	return err
}
