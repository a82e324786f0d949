// Package transfer moves archived log files off the device for TAC
// cases: SFTP to arbitrary servers, S3-compatible object storage, and
// printed instructions for Arista's anonymous FTP drop box.
package transfer

import (
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/pkg/sftp"
	"go.uber.org/zap"
	"golang.org/x/crypto/ssh"

	"github.com/diogo-arista/arista-tac-utilities/internal/transport"
)

// Dest is a parsed user@host:/path upload destination.
type Dest struct {
	User string
	Host string
	Path string
}

// ParseDest splits a scp-style destination. The path may be empty or
// end in "/", in which case the local file name is kept on upload.
func ParseDest(s string) (Dest, error) {
	at := strings.Index(s, "@")
	if at <= 0 {
		return Dest{}, fmt.Errorf("destination %q: want user@host:/path", s)
	}
	rest := s[at+1:]
	colon := strings.Index(rest, ":")
	if colon <= 0 {
		return Dest{}, fmt.Errorf("destination %q: missing host or path separator", s)
	}
	return Dest{
		User: s[:at],
		Host: rest[:colon],
		Path: rest[colon+1:],
	}, nil
}

// SFTP uploads files over SSH using the same client configuration the
// remote-shell transport uses, so a destination reachable for checks is
// reachable for uploads.
type SFTP struct {
	Timeout time.Duration

	logger  *zap.Logger
	sshDial func(network, addr string, config *ssh.ClientConfig) (*ssh.Client, error)
}

// NewSFTP returns an uploader with production defaults.
func NewSFTP(logger *zap.Logger) *SFTP {
	return &SFTP{
		Timeout: 15 * time.Second,
		logger:  logger.Named("transfer"),
		sshDial: ssh.Dial,
	}
}

// Upload copies localPath to dest (user@host:/path). password may be
// empty when key or agent auth is available. Returns the remote path
// the file landed on.
func (s *SFTP) Upload(ctx context.Context, localPath, dest, password string) (string, error) {
	d, err := ParseDest(dest)
	if err != nil {
		return "", err
	}

	cfg := transport.SSHClientConfig(d.User, password, s.Timeout)
	client, err := s.sshDial("tcp", transport.HostPort(d.Host, "22"), cfg)
	if err != nil {
		return "", fmt.Errorf("dial %s: %w", d.Host, err)
	}
	defer client.Close()

	ftp, err := sftp.NewClient(client)
	if err != nil {
		return "", fmt.Errorf("open sftp session: %w", err)
	}
	defer ftp.Close()

	remote := remoteName(ftp, d.Path, localPath)

	src, err := os.Open(localPath)
	if err != nil {
		return "", fmt.Errorf("open local file: %w", err)
	}
	defer src.Close()

	dst, err := ftp.Create(remote)
	if err != nil {
		return "", fmt.Errorf("create remote file %q: %w", remote, err)
	}
	defer dst.Close()

	n, err := io.Copy(dst, src)
	if err != nil {
		return "", fmt.Errorf("copy to %q: %w", remote, err)
	}

	s.logger.Info("sftp upload complete",
		zap.String("host", d.Host),
		zap.String("remote", remote),
		zap.Int64("bytes", n))
	return remote, nil
}

// statter is the slice of the sftp client remoteName needs.
type statter interface {
	Stat(p string) (os.FileInfo, error)
}

// remoteName resolves the destination path: empty keeps the file name
// in the login directory, a trailing slash or an existing directory
// appends the file name, anything else is used verbatim.
func remoteName(fs statter, destPath, localPath string) string {
	base := filepath.Base(localPath)
	switch {
	case destPath == "":
		return base
	case strings.HasSuffix(destPath, "/"):
		return path.Join(destPath, base)
	default:
		if fi, err := fs.Stat(destPath); err == nil && fi.IsDir() {
			return path.Join(destPath, base)
		}
		return destPath
	}
}
