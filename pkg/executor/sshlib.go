package executor

import (
	"bytes"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"golang.org/x/crypto/ssh"
)

// SSHLibConfig is a configuration for the pure library SSH executor.
type SSHLibConfig struct {
	User           string
	Port           int
	KeyPath        string
	ConnectTimeout time.Duration
}

// DefaultSSHLibConfig returns configuration filled from flags.
func DefaultSSHLibConfig() SSHLibConfig {
	return SSHLibConfig{
		User:           SSHUserFlag.Value(),
		Port:           SSHPortFlag.Value(),
		KeyPath:        expandHome(SSHKeyPathFlag.Value()),
		ConnectTimeout: SSHConnectTimeoutFlag.Value(),
	}
}

// SSHLib executes commands on a remote node through golang.org/x/crypto/ssh.
// Every execution dials a fresh connection; there is no multiplexing, which
// is exactly the behaviour being benchmarked against ControlPersist.
type SSHLib struct {
	target       string
	config       SSHLibConfig
	clientConfig *ssh.ClientConfig
}

// NewSSHLib returns an executor running commands on given target node.
func NewSSHLib(target string, config SSHLibConfig) (*SSHLib, error) {
	keyData, err := os.ReadFile(config.KeyPath)
	if err != nil {
		return nil, errors.Wrapf(err, "could not read private key %q", config.KeyPath)
	}

	signer, err := ssh.ParsePrivateKey(keyData)
	if err != nil {
		return nil, errors.Wrapf(err, "could not parse private key %q", config.KeyPath)
	}

	return &SSHLib{
		target: target,
		config: config,
		clientConfig: &ssh.ClientConfig{
			User:            config.User,
			Auth:            []ssh.AuthMethod{ssh.PublicKeys(signer)},
			HostKeyCallback: ssh.InsecureIgnoreHostKey(),
			Timeout:         config.ConnectTimeout,
		},
	}, nil
}

// NewSSHLibFactory returns a Factory producing SSHLib executors sharing one
// configuration.
func NewSSHLibFactory(config SSHLibConfig) Factory {
	return func(node string) (Executor, error) {
		if node == "" {
			return nil, errors.New("empty target node for SSHLib executor")
		}
		return NewSSHLib(node, config)
	}
}

// Name returns user-friendly name of executor.
func (s *SSHLib) Name() string {
	return fmt.Sprintf("SSHLib(%s)", s.target)
}

// Execute dials the node, starts the command in a new session and returns a
// handle owning both the session and the connection.
func (s *SSHLib) Execute(command string) (TaskHandle, error) {
	address := fmt.Sprintf("%s:%d", s.target, s.config.Port)

	client, err := ssh.Dial("tcp", address, s.clientConfig)
	if err != nil {
		return nil, errors.Wrapf(err, "could not dial %q", address)
	}

	session, err := client.NewSession()
	if err != nil {
		client.Close()
		return nil, errors.Wrapf(err, "could not open session to %q", address)
	}

	output := &bytes.Buffer{}
	session.Stdout = output
	session.Stderr = output

	log.Debugf("Executing on %s over SSHLib: %s", s.target, command)
	if err := session.Start(command); err != nil {
		session.Close()
		client.Close()
		return nil, errors.Wrapf(err, "could not start command %q on %q", command, address)
	}

	t := &sshTaskHandle{
		address: s.target,
		client:  client,
		session: session,
		output:  output,
		done:    make(chan struct{}),
	}

	go func() {
		err := session.Wait()

		switch typedError := err.(type) {
		case nil:
			t.exitCode = 0
		case *ssh.ExitError:
			t.exitCode = typedError.ExitStatus()
		default:
			// Connection level failure, not a remote exit status.
			t.exitCode = -1
			t.waitErr = err
		}

		session.Close()
		client.Close()
		close(t.done)
	}()

	return t, nil
}

// sshTaskHandle implements the TaskHandle interface for library based sessions.
type sshTaskHandle struct {
	address  string
	client   *ssh.Client
	session  *ssh.Session
	output   *bytes.Buffer
	done     chan struct{}
	exitCode int
	waitErr  error

	stopOnce sync.Once
	stopErr  error
}

// Stop terminates the remote task. Termination is best-effort; the remote
// side may ignore the signal, so the connection is closed as well.
func (t *sshTaskHandle) Stop() error {
	if t.Status() == TERMINATED {
		return nil
	}

	t.stopOnce.Do(func() {
		if err := t.session.Signal(ssh.SIGKILL); err != nil {
			log.Debugf("Could not signal remote task on %s: %v", t.address, err)
		}
		if err := t.client.Close(); err != nil {
			t.stopErr = errors.Wrapf(err, "could not close connection to %q", t.address)
		}
		<-t.done
	})

	return t.stopErr
}

// Status returns a state of the task.
func (t *sshTaskHandle) Status() TaskState {
	select {
	case <-t.done:
		return TERMINATED
	default:
		return RUNNING
	}
}

// ExitCode returns an exit code of the task. Returns error if task is not terminated.
func (t *sshTaskHandle) ExitCode() (int, error) {
	if t.Status() != TERMINATED {
		return 0, errors.New("task is not terminated")
	}
	return t.exitCode, nil
}

// Wait blocks until the task terminates or the timeout elapses.
func (t *sshTaskHandle) Wait(timeout time.Duration) bool {
	if timeout == 0 {
		<-t.done
		return true
	}

	select {
	case <-t.done:
		return true
	case <-time.After(timeout):
		return false
	}
}

// Output returns collected stdout and stderr of the task.
func (t *sshTaskHandle) Output() string {
	return t.output.String()
}

// Address returns address of the node the task was executed on.
func (t *sshTaskHandle) Address() string {
	return t.address
}
