package transfer

import (
	"fmt"
	"path/filepath"
	"strings"
)

// AristaFTPHost is the anonymous drop box TAC cases upload to.
const AristaFTPHost = "ftp.arista.com"

// ValidCaseNumber reports whether s looks like an Arista support case
// number: digits only, as the portal issues them.
func ValidCaseNumber(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// FTPInstructions renders the manual upload steps for a support case.
// The tool deliberately does not speak FTP: the drop box wants an
// interactive login, so engineers run the transfer themselves.
func FTPInstructions(logPath, caseNumber string) string {
	remote := caseNumber + "." + filepath.Base(logPath)

	var b strings.Builder
	b.WriteString("Please use a standard FTP client to upload the log file.\n")
	b.WriteString("This tool cannot automate the FTP password prompt.\n\n")
	b.WriteString("--- FTP Instructions ---\n")
	fmt.Fprintf(&b, "1. Open a terminal or command prompt.\n")
	fmt.Fprintf(&b, "2. Run the command: ftp %s\n", AristaFTPHost)
	fmt.Fprintf(&b, "3. Login with username anonymous and your email as the password.\n")
	fmt.Fprintf(&b, "4. Change to the incoming directory: cd incoming\n")
	fmt.Fprintf(&b, "5. Upload the file: put %s %s\n", logPath, remote)
	fmt.Fprintf(&b, "6. Exit the FTP client: quit\n")
	return b.String()
}
