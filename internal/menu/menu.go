// Package menu drives the post-run interactive loop: review the report
// again, push the log file somewhere useful, or read the TAC upload
// steps. Check mode runs it only on a terminal.
package menu

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/diogo-arista/arista-tac-utilities/internal/transfer"
)

// Uploader pushes the archived log file to a remote destination.
// *transfer.SFTP satisfies it.
type Uploader interface {
	Upload(ctx context.Context, localPath, dest, password string) (string, error)
}

// Menu is the interactive post-run loop.
type Menu struct {
	In  io.Reader
	Out io.Writer

	// DefaultDest pre-fills the SFTP destination prompt.
	DefaultDest string

	uploader Uploader
	logger   *zap.Logger

	// readSecret is overridden in tests to avoid a controlling terminal.
	readSecret func(prompt string, reader *bufio.Reader) (string, error)
}

// New builds a menu reading stdin and writing stdout.
func New(uploader Uploader, defaultDest string, logger *zap.Logger) *Menu {
	return &Menu{
		In:          os.Stdin,
		Out:         os.Stdout,
		DefaultDest: defaultDest,
		uploader:    uploader,
		logger:      logger.Named("menu"),
	}
}

// Run loops until the user exits or input ends. Upload failures are
// reported to the user and the loop continues; only the exit choice or
// end of input returns.
func (m *Menu) Run(ctx context.Context, reportText, logPath string) error {
	reader := bufio.NewReader(m.In)
	for {
		fmt.Fprintln(m.Out, "\n--- Options Menu ---")
		fmt.Fprintln(m.Out, "1. Display summary report again")
		fmt.Fprintln(m.Out, "2. Send log file to a remote server (via SFTP)")
		fmt.Fprintln(m.Out, "3. Upload log file to Arista Support (via FTP)")
		fmt.Fprintln(m.Out, "4. Exit")

		choice, err := m.ask(reader, "Enter your choice [1-4]: ")
		if err != nil {
			return nil
		}

		switch choice {
		case "1":
			fmt.Fprintln(m.Out, reportText)
		case "2":
			m.sftpUpload(ctx, reader, logPath)
		case "3":
			m.ftpInstructions(reader, logPath)
		case "4":
			fmt.Fprintln(m.Out, "Exiting.")
			return nil
		default:
			fmt.Fprintln(m.Out, "Invalid choice, please try again.")
		}
	}
}

func (m *Menu) sftpUpload(ctx context.Context, reader *bufio.Reader, logPath string) {
	fmt.Fprintln(m.Out, "\n--- SFTP File Upload ---")
	if logPath == "" {
		fmt.Fprintln(m.Out, "No log file to upload.")
		return
	}

	label := "Enter remote path (e.g., user@host:/path/to/dir/): "
	if m.DefaultDest != "" {
		label = fmt.Sprintf("Enter remote path [%s]: ", m.DefaultDest)
	}
	dest, err := m.ask(reader, label)
	if err != nil {
		return
	}
	if dest == "" {
		dest = m.DefaultDest
	}
	if dest == "" {
		fmt.Fprintln(m.Out, "Upload cancelled.")
		return
	}

	password, err := m.secret("Password (empty for key/agent auth): ", reader)
	if err != nil {
		return
	}

	fmt.Fprintf(m.Out, "Uploading %s to %s...\n", logPath, dest)
	remote, err := m.uploader.Upload(ctx, logPath, dest, password)
	if err != nil {
		m.logger.Warn("sftp upload failed", zap.Error(err))
		fmt.Fprintf(m.Out, "Upload failed: %v\n", err)
		return
	}
	fmt.Fprintf(m.Out, "Upload successful: %s\n", remote)
}

func (m *Menu) ftpInstructions(reader *bufio.Reader, logPath string) {
	fmt.Fprintln(m.Out, "\n--- Arista Support FTP Upload ---")
	if logPath == "" {
		fmt.Fprintln(m.Out, "No log file to upload.")
		return
	}

	caseNumber, err := m.ask(reader, "Enter your Arista Support case number (e.g., 123456): ")
	if err != nil {
		return
	}
	if !transfer.ValidCaseNumber(caseNumber) {
		fmt.Fprintln(m.Out, "Invalid case number. Upload cancelled.")
		return
	}
	fmt.Fprintln(m.Out)
	fmt.Fprint(m.Out, transfer.FTPInstructions(logPath, caseNumber))
}

func (m *Menu) ask(reader *bufio.Reader, prompt string) (string, error) {
	fmt.Fprint(m.Out, prompt)
	line, err := reader.ReadString('\n')
	if err != nil && (!errors.Is(err, io.EOF) || line == "") {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

func (m *Menu) secret(prompt string, reader *bufio.Reader) (string, error) {
	if m.readSecret != nil {
		return m.readSecret(prompt, reader)
	}
	fmt.Fprint(m.Out, prompt)
	if f, ok := m.In.(*os.File); ok && isatty.IsTerminal(f.Fd()) {
		defer fmt.Fprintln(m.Out)
		b, err := term.ReadPassword(int(f.Fd()))
		if err != nil {
			return "", fmt.Errorf("read password: %w", err)
		}
		return string(b), nil
	}
	// Piped input: fall back to a plain line read.
	line, err := reader.ReadString('\n')
	if err != nil && (!errors.Is(err, io.EOF) || line == "") {
		return "", err
	}
	return strings.TrimSpace(line), nil
}
