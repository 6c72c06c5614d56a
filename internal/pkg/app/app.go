// Copyright 2021-2025 The spgit Authors.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package app provides the process-level scaffolding for commands: a
// Container abstraction over environment, stdio, and arguments, and error
// values that carry process exit codes.
package app

import (
	"context"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
)

// Container provides access to the process environment.
//
// Operations take a Container instead of reaching for os.Getenv, os.Stdin,
// and friends directly so that tests can substitute all of them.
type Container interface {
	// Env gets the environment variable value, or empty if unset.
	Env(key string) string
	// Stdin is the process stdin.
	Stdin() io.Reader
	// Stdout is the process stdout.
	Stdout() io.Writer
	// Stderr is the process stderr.
	Stderr() io.Writer
	// Args are the program arguments, including the program name at index 0.
	Args() []string
}

// NewContainerForOS returns a Container backed by the operating system.
func NewContainerForOS() Container {
	return newContainer(
		envToMap(os.Environ()),
		os.Stdin,
		os.Stdout,
		os.Stderr,
		os.Args,
	)
}

// NewContainer returns a new Container with the given values, for testing.
func NewContainer(
	env map[string]string,
	stdin io.Reader,
	stdout io.Writer,
	stderr io.Writer,
	args ...string,
) Container {
	return newContainer(env, stdin, stdout, stderr, args)
}

// NewContainerForArgs returns a copy of container with args replaced.
//
// The program name of the parent container is retained at index 0.
func NewContainerForArgs(container Container, newArgs ...string) Container {
	args := make([]string, 0, len(newArgs)+1)
	args = append(args, container.Args()[0])
	args = append(args, newArgs...)
	return newContainer(
		envToMap(Environ(container)),
		container.Stdin(),
		container.Stdout(),
		container.Stderr(),
		args,
	)
}

// Environ returns the environment of the container as sorted KEY=VALUE pairs.
func Environ(cont Container) []string {
	c, ok := cont.(*container)
	if !ok {
		return nil
	}
	environ := make([]string, 0, len(c.env))
	for key, value := range c.env {
		environ = append(environ, key+"="+value)
	}
	sort.Strings(environ)
	return environ
}

// Main runs f with an OS container and exits the process with the exit code
// of the returned error, printing the error message to stderr if non-empty.
func Main(ctx context.Context, f func(context.Context, Container) error) {
	container := NewContainerForOS()
	if err := f(ctx, container); err != nil {
		printError(container, err)
		os.Exit(GetExitCode(err))
	}
}

// Run runs f with the container, for testing Main without exiting.
func Run(ctx context.Context, container Container, f func(context.Context, Container) error) error {
	return f(ctx, container)
}

func printError(container Container, err error) {
	if errString := strings.TrimSpace(err.Error()); errString != "" {
		_, _ = fmt.Fprintln(container.Stderr(), errString)
	}
}

type container struct {
	env    map[string]string
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer
	args   []string
}

func newContainer(
	env map[string]string,
	stdin io.Reader,
	stdout io.Writer,
	stderr io.Writer,
	args []string,
) *container {
	if env == nil {
		env = make(map[string]string)
	}
	return &container{
		env:    env,
		stdin:  stdin,
		stdout: stdout,
		stderr: stderr,
		args:   args,
	}
}

func (c *container) Env(key string) string {
	return c.env[key]
}

func (c *container) Stdin() io.Reader {
	return c.stdin
}

func (c *container) Stdout() io.Writer {
	return c.stdout
}

func (c *container) Stderr() io.Writer {
	return c.stderr
}

func (c *container) Args() []string {
	return c.args
}

func envToMap(environ []string) map[string]string {
	env := make(map[string]string, len(environ))
	for _, pair := range environ {
		if i := strings.IndexByte(pair, '='); i >= 0 {
			env[pair[:i]] = pair[i+1:]
		}
	}
	return env
}
