package menu

import (
	"context"
	"errors"
	"strings"
	"testing"

	"go.uber.org/zap"
)

type fakeUploader struct {
	local    string
	dest     string
	password string
	calls    int
	err      error
}

func (f *fakeUploader) Upload(_ context.Context, localPath, dest, password string) (string, error) {
	f.calls++
	f.local, f.dest, f.password = localPath, dest, password
	if f.err != nil {
		return "", f.err
	}
	return "/srv/uploads/" + localPath, nil
}

// runMenu drives the loop with scripted input and captures the output.
func runMenu(t *testing.T, m *Menu, input, reportText, logPath string) string {
	t.Helper()
	var out strings.Builder
	m.In = strings.NewReader(input)
	m.Out = &out
	if err := m.Run(context.Background(), reportText, logPath); err != nil {
		t.Fatalf("Run: %v", err)
	}
	return out.String()
}

func newTestMenu(uploader Uploader, defaultDest string) *Menu {
	return New(uploader, defaultDest, zap.NewNop())
}

func TestRun_ExitImmediately(t *testing.T) {
	m := newTestMenu(&fakeUploader{}, "")
	out := runMenu(t, m, "4\n", "REPORT", "run.log")

	for _, want := range []string{
		"--- Options Menu ---",
		"1. Display summary report again",
		"2. Send log file to a remote server (via SFTP)",
		"3. Upload log file to Arista Support (via FTP)",
		"4. Exit",
		"Exiting.",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q", want)
		}
	}
}

func TestRun_EndOfInputEndsLoop(t *testing.T) {
	m := newTestMenu(&fakeUploader{}, "")
	out := runMenu(t, m, "", "REPORT", "run.log")
	if !strings.Contains(out, "--- Options Menu ---") {
		t.Error("menu should print once before input ends")
	}
}

func TestRun_InvalidChoice(t *testing.T) {
	m := newTestMenu(&fakeUploader{}, "")
	out := runMenu(t, m, "9\n4\n", "REPORT", "run.log")
	if !strings.Contains(out, "Invalid choice, please try again.") {
		t.Error("invalid choice not reported")
	}
}

func TestRun_DisplayReport(t *testing.T) {
	m := newTestMenu(&fakeUploader{}, "")
	out := runMenu(t, m, "1\n4\n", "=== THE REPORT ===", "run.log")
	if !strings.Contains(out, "=== THE REPORT ===") {
		t.Error("report not redisplayed")
	}
}

func TestRun_SFTPUpload(t *testing.T) {
	up := &fakeUploader{}
	m := newTestMenu(up, "admin@10.0.0.5:/srv/uploads/")

	// Empty destination accepts the default, then the password line.
	out := runMenu(t, m, "2\n\nsecretpw\n4\n", "REPORT", "run.log")

	if up.calls != 1 {
		t.Fatalf("uploader called %d times, want 1", up.calls)
	}
	if up.dest != "admin@10.0.0.5:/srv/uploads/" {
		t.Errorf("dest = %q, want the default", up.dest)
	}
	if up.password != "secretpw" {
		t.Errorf("password = %q", up.password)
	}
	if up.local != "run.log" {
		t.Errorf("local = %q, want run.log", up.local)
	}
	if !strings.Contains(out, "Upload successful") {
		t.Error("success not reported")
	}
}

func TestRun_SFTPUploadExplicitDest(t *testing.T) {
	up := &fakeUploader{}
	m := newTestMenu(up, "")

	runMenu(t, m, "2\ntac@files.example.com:/incoming/\npw\n4\n", "REPORT", "run.log")

	if up.dest != "tac@files.example.com:/incoming/" {
		t.Errorf("dest = %q", up.dest)
	}
}

func TestRun_SFTPUploadCancelled(t *testing.T) {
	up := &fakeUploader{}
	m := newTestMenu(up, "")

	out := runMenu(t, m, "2\n\n4\n", "REPORT", "run.log")

	if up.calls != 0 {
		t.Errorf("uploader called %d times for cancelled upload", up.calls)
	}
	if !strings.Contains(out, "Upload cancelled.") {
		t.Error("cancellation not reported")
	}
}

func TestRun_SFTPUploadFailure(t *testing.T) {
	up := &fakeUploader{err: errors.New("connection refused")}
	m := newTestMenu(up, "admin@10.0.0.5:/srv/")

	out := runMenu(t, m, "2\n\npw\n4\n", "REPORT", "run.log")

	if !strings.Contains(out, "Upload failed: connection refused") {
		t.Error("failure not reported")
	}
	if !strings.Contains(out, "Exiting.") {
		t.Error("loop should continue after a failed upload")
	}
}

func TestRun_SFTPNoLogFile(t *testing.T) {
	up := &fakeUploader{}
	m := newTestMenu(up, "")

	out := runMenu(t, m, "2\n4\n", "REPORT", "")

	if up.calls != 0 {
		t.Error("uploader must not run without a log file")
	}
	if !strings.Contains(out, "No log file to upload.") {
		t.Error("missing log file not reported")
	}
}

func TestRun_FTPInstructions(t *testing.T) {
	m := newTestMenu(&fakeUploader{}, "")
	out := runMenu(t, m, "3\n123456\n4\n", "REPORT", "/mnt/flash/leaf1.log")

	for _, want := range []string{
		"--- Arista Support FTP Upload ---",
		"ftp ftp.arista.com",
		"put /mnt/flash/leaf1.log 123456.leaf1.log",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q", want)
		}
	}
}

func TestRun_FTPInvalidCaseNumber(t *testing.T) {
	m := newTestMenu(&fakeUploader{}, "")
	out := runMenu(t, m, "3\nSR-42\n4\n", "REPORT", "/mnt/flash/leaf1.log")

	if !strings.Contains(out, "Invalid case number. Upload cancelled.") {
		t.Error("invalid case number not rejected")
	}
	if strings.Contains(out, "cd incoming") {
		t.Error("instructions printed despite invalid case number")
	}
}
