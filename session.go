package sftpmount

import (
	"io"
	"sync"

	"github.com/pkg/errors"
	"github.com/spf13/afero"

	"github.com/vmforge/sftpmount/wire"
)

// Session is the single-per-connection state spec.md 3 describes: one SSH
// transport channel, one companion remote-helper process, the open-file and
// open-directory tables, and the configuration (source path, identity
// maps) fixed for the session's lifetime.
type Session struct {
	cfg      Config
	fs       fsops
	platform Platform
	helper   HelperController
	log      Logger
	handles  *handleTable

	mu        sync.Mutex
	transport io.ReadWriteCloser
	stopped   bool

	warnedConfinement bool
}

// NewSession validates source/target against the running helper and
// returns a Session ready to Run. Session construction failing is
// session-fatal (spec.md 7): a helper that has already exited with a
// non-zero status before the first message is read is reported here
// rather than left to surface as a
// confusing later recovery attempt (SPEC_FULL.md 10, "initial-launch
// failure detection", restored from original_source/'s constructor-time
// check).
func NewSession(cfg Config, fs afero.Fs, platform Platform, helper HelperController, log Logger, transport io.ReadWriteCloser) (*Session, error) {
	s := &Session{
		cfg:       cfg,
		fs:        newFsops(fs),
		platform:  platform,
		helper:    helper,
		log:       log,
		handles:   newHandleTable(),
		transport: transport,
	}

	if err := s.checkInitialLaunch(); err != nil {
		return nil, err
	}

	return s, nil
}

// checkInitialLaunch performs the ~250ms bounded probe of the helper's
// exit status once, immediately after construction, matching the C++
// original's run() constructor check (SPEC_FULL.md 10).
func (s *Session) checkInitialLaunch() error {
	code, ok, err := s.helper.Wait(s.cfg.Recovery.HelperProbe)
	if err != nil {
		return errors.Wrap(err, "probing helper at launch")
	}
	if ok && code != 0 {
		return errors.Errorf("helper exited with status %d before first message", code)
	}
	return nil
}

// Stop requests a graceful shutdown: it sets a flag the server loop
// observes between messages, and force-closes the transport so a blocking
// read unblocks immediately (spec.md 4.1, 5).
func (s *Session) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stopped {
		return
	}
	s.stopped = true
	s.transport.Close()
}

func (s *Session) stopRequested() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stopped
}

// Run is the dispatcher's server loop (spec.md 4.1): read one message,
// route it to its handler, log a non-zero reply-send result, and repeat
// until the session ends. It returns nil on a clean shutdown and a non-nil
// error only for a session-fatal transport failure.
func (s *Session) Run() error {
	for {
		typ, body, err := wire.ReadRawPacket(s.transport)
		if err != nil {
			if s.stopRequested() {
				return nil
			}

			recovered, rerr := s.handleEndOfStream()
			if rerr != nil {
				return rerr
			}
			if !recovered {
				return nil
			}
			continue
		}

		pkt, reqID, err := wire.DecodeRequest(typ, body)
		if err != nil {
			s.log.Warn("failed to decode sftp request", "type", typ, "error", err)
			if serr := s.sendStatus(reqID, errOpUnsupported); serr != nil {
				s.log.Warn("failed to send reply", "requestID", reqID, "error", serr)
			}
			continue
		}

		if err := s.dispatch(pkt, reqID); err != nil {
			s.log.Warn("failed to send reply", "requestID", reqID, "error", err)
		}
	}
}

// handleEndOfStream implements spec.md 4.1's end-of-stream policy: probe
// the helper, and either terminate cleanly or attempt one recovery.
// Returns recovered=true when the loop should keep running against a fresh
// transport.
func (s *Session) handleEndOfStream() (recovered bool, err error) {
	code, ok, waitErr := s.helper.Wait(s.cfg.Recovery.HelperProbe)

	// "exit status 0, or the wait itself indicates the helper is still
	// running with no status available": terminate normally.
	if waitErr == nil && (!ok || code == 0) {
		return false, nil
	}

	s.log.Warn("helper exited unexpectedly, attempting recovery", "code", code, "waitOK", ok, "waitErr", waitErr)

	transport, rerr := s.helper.Relaunch()
	if rerr != nil {
		s.log.Error("helper recovery failed", "error", rerr)
		return false, nil
	}

	s.mu.Lock()
	s.transport = transport
	s.mu.Unlock()

	s.log.Info("helper recovered, resuming session")
	return true, nil
}
