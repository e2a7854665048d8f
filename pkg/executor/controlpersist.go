package executor

import (
	"fmt"
	"os"
	"path"
	"time"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

// ControlPersistConfig is a configuration for the OpenSSH based executor.
type ControlPersistConfig struct {
	User    string
	Port    int
	KeyPath string
	// Persist is how long the master connection stays alive after the last
	// session; it is what makes connection reuse measurable against the
	// library transport.
	Persist time.Duration
	// ControlDir is where multiplexing sockets are created.
	ControlDir string
	// ConnectTimeout bounds the initial TCP/SSH handshake.
	ConnectTimeout time.Duration
}

// DefaultControlPersistConfig returns configuration filled from flags.
func DefaultControlPersistConfig() ControlPersistConfig {
	return ControlPersistConfig{
		User:           SSHUserFlag.Value(),
		Port:           SSHPortFlag.Value(),
		KeyPath:        expandHome(SSHKeyPathFlag.Value()),
		Persist:        ControlPersistFlag.Value(),
		ControlDir:     ControlDirFlag.Value(),
		ConnectTimeout: SSHConnectTimeoutFlag.Value(),
	}
}

// ControlPersist executes commands on a remote node through the OpenSSH
// client with ControlMaster multiplexing. The first execution against a node
// pays the connection setup cost, subsequent ones reuse the master socket.
type ControlPersist struct {
	target string
	config ControlPersistConfig
	local  Local
}

// NewControlPersist returns an executor running commands on given target node.
func NewControlPersist(target string, config ControlPersistConfig) *ControlPersist {
	return &ControlPersist{
		target: target,
		config: config,
		local:  NewLocal(),
	}
}

// NewControlPersistFactory returns a Factory producing ControlPersist
// executors sharing one configuration.
func NewControlPersistFactory(config ControlPersistConfig) Factory {
	return func(node string) (Executor, error) {
		if node == "" {
			return nil, errors.New("empty target node for ControlPersist executor")
		}
		return NewControlPersist(node, config), nil
	}
}

// Name returns user-friendly name of executor.
func (c *ControlPersist) Name() string {
	return fmt.Sprintf("ControlPersist(%s)", c.target)
}

// Execute wraps the command into an ssh invocation and runs it through the
// Local executor so that process group ownership stays structural.
func (c *ControlPersist) Execute(command string) (TaskHandle, error) {
	if err := os.MkdirAll(c.config.ControlDir, 0700); err != nil {
		return nil, errors.Wrapf(err, "could not create control socket dir %q", c.config.ControlDir)
	}

	sshCommand := fmt.Sprintf(
		"ssh -o BatchMode=yes "+
			"-o StrictHostKeyChecking=no "+
			"-o ControlMaster=auto "+
			"-o ControlPath=%s "+
			"-o ControlPersist=%ds "+
			"-o ConnectTimeout=%d "+
			"-i %s -p %d %s@%s -- %q",
		path.Join(c.config.ControlDir, "cm-%r@%h:%p"),
		int(c.config.Persist.Seconds()),
		int(c.config.ConnectTimeout.Seconds()),
		c.config.KeyPath,
		c.config.Port,
		c.config.User,
		c.target,
		command,
	)

	log.Debugf("Executing on %s over ControlPersist: %s", c.target, command)
	handle, err := c.local.Execute(sshCommand)
	if err != nil {
		return nil, err
	}
	return &remoteAddressHandle{TaskHandle: handle, address: c.target}, nil
}

// remoteAddressHandle overrides the address of a locally spawned ssh client
// process with the node it talks to.
type remoteAddressHandle struct {
	TaskHandle
	address string
}

// Address returns address of the node the task was executed on.
func (h *remoteAddressHandle) Address() string {
	return h.address
}
