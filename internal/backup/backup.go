// Package backup exports a finished session (its database row plus any
// exported detection-function artifact) to an FTP or SFTP target.
package backup

import (
	"context"
	"fmt"
	"os"

	"github.com/hashicorp/go-multierror"
	"github.com/onsetgo/correntropy/internal/errors"
	"github.com/onsetgo/correntropy/internal/logging"
)

// Target uploads one local file under a remote name.
type Target interface {
	Name() string
	Upload(ctx context.Context, localPath, remoteName string) error
}

// Config mirrors conf.Settings.Backup.
type Config struct {
	FTP  FTPConfig
	SFTP SFTPConfig
}

// Manager fans a local file out to every enabled target, continuing past
// individual failures and reporting all of them together.
type Manager struct {
	targets []Target
}

// NewManager builds a Manager from cfg, constructing only the targets
// whose Enabled flag is set.
func NewManager(cfg Config) *Manager {
	m := &Manager{}
	if cfg.FTP.Enabled {
		m.targets = append(m.targets, NewFTPTarget(cfg.FTP))
	}
	if cfg.SFTP.Enabled {
		m.targets = append(m.targets, NewSFTPTarget(cfg.SFTP))
	}
	return m
}

// Export uploads localPath, named remoteName, to every configured
// target. Individual target failures are collected and returned together
// rather than aborting the remaining uploads.
func (m *Manager) Export(ctx context.Context, localPath, remoteName string) error {
	if _, err := os.Stat(localPath); err != nil {
		return wrapErr("backup", "export source file not found", err)
	}

	logger := logging.ForService("backup")
	var failures []error
	for _, t := range m.targets {
		if err := t.Upload(ctx, localPath, remoteName); err != nil {
			logger.Error("backup target failed", "target", t.Name(), "error", err)
			failures = append(failures, fmt.Errorf("%s: %w", t.Name(), err))
		} else {
			logger.Debug("backup target succeeded", "target", t.Name(), "file", remoteName)
		}
	}

	if len(failures) > 0 {
		var joined error
		for _, e := range failures {
			joined = multierror.Append(joined, e)
		}
		return wrapErr("backup", fmt.Sprintf("%d of %d backup targets failed", len(failures), len(m.targets)), joined)
	}
	return nil
}

func wrapErr(component, msg string, cause error) error {
	return errors.New(errors.NewStd(msg)).
		Component(component).
		Category(errors.CategoryBackup).
		Context("cause", cause.Error()).
		Build()
}
