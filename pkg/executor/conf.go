package executor

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/saeedmfat/ansible-ssh-backend-performance-benchmark-lab/pkg/conf"
)

// Flags shared by both SSH transports.
var (
	// SSHUserFlag is the user used to log into target nodes.
	SSHUserFlag = conf.NewStringFlag("ssh_user", "User which will be used to connect to target nodes", "root")
	// SSHPortFlag is the sshd port on target nodes.
	SSHPortFlag = conf.NewIntFlag("ssh_port", "Port of sshd on target nodes", 22)
	// SSHKeyPathFlag is the private key used for authentication.
	SSHKeyPathFlag = conf.NewStringFlag("ssh_key", "Path to private key used to connect to target nodes", "~/.ssh/id_rsa")
	// SSHConnectTimeoutFlag bounds connection establishment.
	SSHConnectTimeoutFlag = conf.NewDurationFlag("ssh_connect_timeout", "Timeout for establishing SSH connections", 10*time.Second)
	// ControlPersistFlag is how long OpenSSH master connections stay alive.
	ControlPersistFlag = conf.NewDurationFlag("ssh_control_persist", "How long OpenSSH master connections persist after last use", 60*time.Second)
	// ControlDirFlag is the directory for multiplexing sockets.
	ControlDirFlag = conf.NewStringFlag("ssh_control_dir", "Directory for OpenSSH ControlMaster sockets", "/tmp/benchlab-cm")
)

// expandHome substitutes a leading ~ with the current user's home directory.
// The key path reaches os.ReadFile for the library transport, where no shell
// ever expands it.
func expandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}
