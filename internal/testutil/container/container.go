// Package container starts throwaway docker containers for integration tests.
package container

import (
	"errors"
	"fmt"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"time"
)

// Spec describes one test container built from a Dockerfile at the repo root.
type Spec struct {
	Dockerfile    string
	Image         string
	Name          string
	HostPort      string
	ContainerPort string
	// Ready reports nil once the service inside the container answers.
	Ready        func() error
	ReadyTimeout time.Duration
}

// Container tracks the lifecycle of one Spec.
type Container struct {
	spec     Spec
	once     sync.Once
	setupErr error
}

func New(spec Spec) *Container {
	if spec.ReadyTimeout <= 0 {
		spec.ReadyTimeout = 10 * time.Second
	}
	return &Container{spec: spec}
}

// Addr returns host:port for connecting to the container.
func (c *Container) Addr() string { return "127.0.0.1:" + c.spec.HostPort }

// Setup builds the image, runs the container and waits until it is ready.
// Repeated calls return the first outcome.
func (c *Container) Setup() error {
	c.once.Do(func() {
		if _, err := exec.LookPath("docker"); err != nil {
			c.setupErr = fmt.Errorf("docker executable not found: %w", err)
			return
		}
		_ = c.stop()
		root := repoRoot()
		if err := runDocker("build", "-f", filepath.Join(root, c.spec.Dockerfile), "-t", c.spec.Image, root); err != nil {
			c.setupErr = err
			return
		}
		if err := runDocker("run", "-d", "--rm",
			"--name", c.spec.Name,
			"-p", fmt.Sprintf("%s:%s", c.spec.HostPort, c.spec.ContainerPort),
			c.spec.Image,
		); err != nil {
			c.setupErr = err
			return
		}
		c.setupErr = c.waitReady()
	})
	return c.setupErr
}

// Teardown stops the container started by Setup.
func (c *Container) Teardown() error {
	if c.setupErr != nil {
		return c.setupErr
	}
	return c.stop()
}

func (c *Container) waitReady() error {
	if c.spec.Ready == nil {
		return nil
	}
	deadline := time.Now().Add(c.spec.ReadyTimeout)
	for time.Now().Before(deadline) {
		if err := c.spec.Ready(); err == nil {
			return nil
		}
		time.Sleep(200 * time.Millisecond)
	}
	return errors.New(c.spec.Name + " did not become ready in time")
}

func (c *Container) stop() error {
	cmd := exec.Command("docker", "stop", c.spec.Name)
	cmd.Dir = repoRoot()
	output, err := cmd.CombinedOutput()
	if err != nil {
		if strings.Contains(string(output), "No such container") {
			return nil
		}
		return fmt.Errorf("docker stop failed: %w: %s", err, output)
	}
	return nil
}

func runDocker(args ...string) error {
	cmd := exec.Command("docker", args...)
	cmd.Dir = repoRoot()
	output, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("docker %s failed: %w: %s", args[0], err, output)
	}
	return nil
}

func repoRoot() string {
	_, file, _, _ := runtime.Caller(0)
	return filepath.Clean(filepath.Join(filepath.Dir(file), "..", "..", ".."))
}
