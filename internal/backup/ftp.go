package backup

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/jlaffaye/ftp"
)

// FTPConfig mirrors conf.Settings.Backup.FTP.
type FTPConfig struct {
	Enabled  bool
	Host     string
	Port     int
	Username string
	Password string
	Path     string
}

// FTPTarget uploads files over plain FTP via jlaffaye/ftp.
type FTPTarget struct{ cfg FTPConfig }

func NewFTPTarget(cfg FTPConfig) *FTPTarget { return &FTPTarget{cfg: cfg} }

func (t *FTPTarget) Name() string { return "ftp" }

func (t *FTPTarget) Upload(ctx context.Context, localPath, remoteName string) error {
	addr := fmt.Sprintf("%s:%d", t.cfg.Host, t.cfg.Port)
	conn, err := ftp.Dial(addr, ftp.DialWithContext(ctx), ftp.DialWithTimeout(30*time.Second))
	if err != nil {
		return wrapErr("backup-ftp", "failed to connect", err)
	}
	defer conn.Quit()

	if err := conn.Login(t.cfg.Username, t.cfg.Password); err != nil {
		return wrapErr("backup-ftp", "failed to authenticate", err)
	}

	if t.cfg.Path != "" {
		_ = conn.MakeDir(t.cfg.Path)
		if err := conn.ChangeDir(t.cfg.Path); err != nil {
			return wrapErr("backup-ftp", "failed to change remote directory", err)
		}
	}

	f, err := os.Open(localPath)
	if err != nil {
		return wrapErr("backup-ftp", "failed to open local file", err)
	}
	defer f.Close()

	if err := conn.Stor(remoteName, f); err != nil {
		return wrapErr("backup-ftp", "failed to store remote file", err)
	}
	return nil
}
