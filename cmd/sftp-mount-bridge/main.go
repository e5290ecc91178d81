// Command sftp-mount-bridge exposes a host directory to a remote peer over
// SSH, translating uid/gid between the host's and the peer's identity
// namespaces. See spec.md/SPEC_FULL.md at the repository root.
package main

import (
	"flag"
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/afero"
	"golang.org/x/crypto/ssh"

	sftpmount "github.com/vmforge/sftpmount"
)

func main() {
	configPath := flag.String("config", "", "path to the bridge's YAML config file")
	sshHost := flag.String("ssh-host", "", "host:port of the remote peer to dial out to")
	sshUser := flag.String("ssh-user", "root", "username to authenticate as on the remote peer")
	identityPath := flag.String("identity", "", "path to a private key for authenticating to the remote peer")
	dialTimeout := flag.Duration("dial-timeout", 10*time.Second, "timeout for the outbound SSH dial")
	flag.Parse()

	if *configPath == "" || *sshHost == "" || *identityPath == "" {
		fmt.Fprintln(os.Stderr, "usage: sftp-mount-bridge -config FILE -ssh-host HOST:PORT -identity KEYFILE [-ssh-user USER]")
		os.Exit(2)
	}

	cfg, err := sftpmount.LoadConfig(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "loading config:", err)
		os.Exit(1)
	}

	log := sftpmount.NewLogger(cfg.Logging.Level)

	client, err := dialPeer(*sshHost, *sshUser, *identityPath, *dialTimeout)
	if err != nil {
		log.Error("failed to dial remote peer", "host", *sshHost, "error", err)
		os.Exit(1)
	}
	defer client.Close()

	helper, transport, err := sftpmount.NewSSHHelperController(client, cfg, log)
	if err != nil {
		log.Error("failed to launch remote helper", "error", err)
		os.Exit(1)
	}

	session, err := sftpmount.NewSession(*cfg, afero.NewOsFs(), sftpmount.NewPlatform(), helper, log, transport)
	if err != nil {
		log.Error("session construction failed", "error", err)
		os.Exit(1)
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		log.Info("shutdown requested")
		session.Stop()
	}()

	log.Info("serving", "source", cfg.Source, "target", cfg.Target)
	if err := session.Run(); err != nil {
		log.Error("session ended with error", "error", err)
		os.Exit(1)
	}
}

// dialPeer opens the outbound SSH connection this bridge launches the
// remote companion helper over, grounded on managedserver.go's
// ssh.ParsePrivateKey usage (there for host keys on the accepting side,
// here for the client identity dialing out).
func dialPeer(addr, user, identityPath string, timeout time.Duration) (*ssh.Client, error) {
	keyBytes, err := os.ReadFile(identityPath)
	if err != nil {
		return nil, fmt.Errorf("reading identity file: %w", err)
	}

	signer, err := ssh.ParsePrivateKey(keyBytes)
	if err != nil {
		return nil, fmt.Errorf("parsing identity file: %w", err)
	}

	config := &ssh.ClientConfig{
		User:            user,
		Auth:            []ssh.AuthMethod{ssh.PublicKeys(signer)},
		HostKeyCallback: ssh.InsecureIgnoreHostKey(),
		Timeout:         timeout,
	}

	conn, err := net.DialTimeout("tcp", addr, timeout)
	if err != nil {
		return nil, fmt.Errorf("dialing %s: %w", addr, err)
	}

	sshConn, chans, reqs, err := ssh.NewClientConn(conn, addr, config)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("handshaking %s: %w", addr, err)
	}

	return ssh.NewClient(sshConn, chans, reqs), nil
}
