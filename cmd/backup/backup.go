// Package backup provides the backup command for exporting a finished
// session's datastore row (and any exported detection-function
// artifact) to the configured FTP/SFTP targets.
package backup

import (
	"context"
	"fmt"
	"log"
	"path/filepath"
	"time"

	"github.com/onsetgo/correntropy/internal/backup"
	"github.com/onsetgo/correntropy/internal/conf"
	"github.com/spf13/cobra"
)

// Command creates and returns the backup command.
func Command(settings *conf.Settings) *cobra.Command {
	var localPath, remoteName string

	cmd := &cobra.Command{
		Use:   "backup",
		Short: "Export a session file to the configured FTP/SFTP targets",
		Long:  `Backup uploads a local file (e.g. an exported session database or detection-function dump) to every enabled FTP/SFTP target.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBackup(settings, localPath, remoteName)
		},
	}

	cmd.Flags().StringVar(&localPath, "file", "", "local file to export (required)")
	cmd.Flags().StringVar(&remoteName, "as", "", "remote name to upload it under (defaults to the local file's base name)")
	_ = cmd.MarkFlagRequired("file")

	return cmd
}

func runBackup(settings *conf.Settings, localPath, remoteName string) error {
	if !settings.Backup.FTP.Enabled && !settings.Backup.SFTP.Enabled {
		return fmt.Errorf("no backup target is enabled in configuration")
	}
	if remoteName == "" {
		remoteName = filepath.Base(localPath)
	}

	manager := backup.NewManager(backup.Config{
		FTP:  backup.FTPConfig(settings.Backup.FTP),
		SFTP: backup.SFTPConfig(settings.Backup.SFTP),
	})

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	log.Println("starting backup export...")
	if err := manager.Export(ctx, localPath, remoteName); err != nil {
		return fmt.Errorf("backup failed: %w", err)
	}
	log.Println("backup export completed successfully")
	return nil
}
