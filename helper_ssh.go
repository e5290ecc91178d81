package sftpmount

import (
	"io"
	"sync"
	"time"

	"github.com/pkg/errors"
	"golang.org/x/crypto/ssh"
)

// sshHelperController launches and supervises the remote companion helper
// process over an already-authenticated SSH client connection, grounded on
// managedserver.go's session/subsystem wiring (SPEC_FULL.md 7.2), turned
// around from "accept a helper's incoming subsystem request" into "launch
// and relaunch a helper on the remote side."
type sshHelperController struct {
	client *ssh.Client
	cfg    *Config
	log    Logger

	mu       sync.Mutex
	session  *ssh.Session
	exitCode int
	exited   bool
	waitErr  error
	done     chan struct{}
}

// helperPipe adapts an ssh.Session's stdin/stdout pipes plus the session
// itself into the io.ReadWriteCloser the rest of this repository treats as
// the wire transport.
type helperPipe struct {
	stdin  io.WriteCloser
	stdout io.Reader
	sess   *ssh.Session
}

func (p *helperPipe) Read(b []byte) (int, error)  { return p.stdout.Read(b) }
func (p *helperPipe) Write(b []byte) (int, error) { return p.stdin.Write(b) }
func (p *helperPipe) Close() error {
	p.stdin.Close()
	return p.sess.Close()
}

// NewSSHHelperController launches the helper for the first time and returns
// both the controller and the transport bound to that launch.
func NewSSHHelperController(client *ssh.Client, cfg *Config, log Logger) (*sshHelperController, io.ReadWriteCloser, error) {
	c := &sshHelperController{client: client, cfg: cfg, log: log}
	transport, err := c.launch()
	if err != nil {
		return nil, nil, err
	}
	return c, transport, nil
}

func (c *sshHelperController) launch() (io.ReadWriteCloser, error) {
	session, err := c.client.NewSession()
	if err != nil {
		return nil, errors.Wrap(err, "opening helper session")
	}

	stdin, err := session.StdinPipe()
	if err != nil {
		session.Close()
		return nil, errors.Wrap(err, "attaching helper stdin")
	}
	stdout, err := session.StdoutPipe()
	if err != nil {
		session.Close()
		return nil, errors.Wrap(err, "attaching helper stdout")
	}

	if err := session.Start(c.cfg.helperCommand()); err != nil {
		session.Close()
		return nil, errors.Wrap(err, "starting helper")
	}

	c.mu.Lock()
	c.session = session
	c.exited = false
	c.waitErr = nil
	c.done = make(chan struct{})
	done := c.done
	c.mu.Unlock()

	go c.watch(session, done)

	return &helperPipe{stdin: stdin, stdout: stdout, sess: session}, nil
}

func (c *sshHelperController) watch(session *ssh.Session, done chan struct{}) {
	err := session.Wait()

	code := 0
	if exitErr, ok := err.(*ssh.ExitError); ok {
		code = exitErr.ExitStatus()
		err = nil
	}

	c.mu.Lock()
	c.exitCode = code
	c.exited = true
	c.waitErr = err
	c.mu.Unlock()

	close(done)
}

// Wait implements HelperController.Wait: block up to timeout for the
// current helper session to exit, per spec.md 5's ~250ms bounded probe.
func (c *sshHelperController) Wait(timeout time.Duration) (code int, ok bool, err error) {
	c.mu.Lock()
	done := c.done
	c.mu.Unlock()

	select {
	case <-done:
		c.mu.Lock()
		defer c.mu.Unlock()
		return c.exitCode, c.exited, c.waitErr
	case <-time.After(timeout):
		return 0, false, nil
	}
}

// Relaunch implements HelperController.Relaunch, per spec.md's end-to-end
// recovery scenario (8.6): unmount the stale target on the remote side,
// then start a fresh helper and hand back its transport.
func (c *sshHelperController) Relaunch() (io.ReadWriteCloser, error) {
	if err := c.unmountStale(); err != nil {
		c.log.Warn("stale unmount before relaunch failed, continuing anyway", "error", err)
	}
	return c.launch()
}

// unmountStale runs findmnt+umount against the remote target, matching the
// literal recovery sequence spec.md 8's scenario 6 names. Only the
// configured target mountpoint is checked; a mount of the source path at
// any other location is not looked for.
func (c *sshHelperController) unmountStale() error {
	session, err := c.client.NewSession()
	if err != nil {
		return errors.Wrap(err, "opening unmount session")
	}
	defer session.Close()

	cmd := "findmnt " + shellQuote(c.cfg.Target) + " >/dev/null 2>&1 && sudo umount " + shellQuote(c.cfg.Target)
	return session.Run(cmd)
}
