package tools

import (
	"context"
	"fmt"
	"net"
	"os"
	"runtime"
	"strings"
	"time"

	"github.com/bnema/cascade-chat/internal/domain"
)

var SystemInfoSpec = domain.ToolSpec{
	Name:        "get_system_info",
	Description: "Returns the host name, outbound IP address and operating system of the machine running the assistant.",
}

const (
	probeAddress = "10.254.254.254:1"
	loopbackIP   = "127.0.0.1"
)

// SystemInfo reports host facts. The fields are seams for tests.
type SystemInfo struct {
	Hostname func() (string, error)
	Dial     func(network, address string) (net.Conn, error)
	Release  func() string
}

func (s SystemInfo) Handle(_ context.Context, _ map[string]any) (string, error) {
	hostname, err := s.hostname()
	if err != nil {
		return err.Error(), nil
	}

	osName := runtime.GOOS
	if release := s.release(); release != "" {
		osName += " " + release
	}

	return fmt.Sprintf("Host: %s | IP: %s | OS: %s", hostname, s.outboundIP(), osName), nil
}

// outboundIP finds the address of the default route interface. The UDP dial
// sends no packets.
func (s SystemInfo) outboundIP() string {
	dial := s.Dial
	if dial == nil {
		dial = func(network, address string) (net.Conn, error) {
			return net.DialTimeout(network, address, time.Second)
		}
	}

	conn, err := dial("udp", probeAddress)
	if err != nil {
		return loopbackIP
	}
	defer func() { _ = conn.Close() }()

	addr, ok := conn.LocalAddr().(*net.UDPAddr)
	if !ok || addr.IP == nil {
		return loopbackIP
	}
	return addr.IP.String()
}

func (s SystemInfo) hostname() (string, error) {
	if s.Hostname != nil {
		return s.Hostname()
	}
	return os.Hostname()
}

func (s SystemInfo) release() string {
	if s.Release != nil {
		return s.Release()
	}
	raw, err := os.ReadFile("/proc/sys/kernel/osrelease")
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(raw))
}
