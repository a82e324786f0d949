package transport

import (
	"context"
	"fmt"
	"net"
	"runtime"
	"time"

	probing "github.com/prometheus-community/pro-bing"
)

// Diagnose checks whether the host answers ICMP, to sharpen the error
// message when every transport has failed: an unreachable host and a host
// with a dead management plane need different fixes.
func Diagnose(ctx context.Context, host string) string {
	target := host
	if h, _, err := net.SplitHostPort(host); err == nil {
		target = h
	}

	pinger, err := probing.NewPinger(target)
	if err != nil {
		return fmt.Sprintf("ping diagnosis unavailable: %v", err)
	}
	pinger.Count = 3
	pinger.Timeout = 3 * time.Second
	pinger.SetPrivileged(runtime.GOOS == "windows")

	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = pinger.Run()
	}()

	select {
	case <-done:
	case <-ctx.Done():
		pinger.Stop()
		return "ping diagnosis aborted"
	}

	stats := pinger.Statistics()
	if stats.PacketsRecv == 0 {
		return "host does not answer ICMP; check address, routing, and power"
	}
	return fmt.Sprintf("host answers ICMP (%d/%d replies, avg %s); the management plane is down or the credentials were rejected",
		stats.PacketsRecv, stats.PacketsSent, stats.AvgRtt.Round(time.Millisecond))
}
