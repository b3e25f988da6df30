package ping

import (
	"context"
	"errors"
	"fmt"
	"math"
	"os/exec"
	"regexp"
	"runtime"
	"strconv"
	"time"
)

// ErrNoReply is returned when ping exits cleanly but no RTT could be read
// from its output.
var ErrNoReply = errors.New("no reply in ping output")

// Pinger shells out to the system ping binary, one echo request per call.
type Pinger struct {
	timeout time.Duration
	goos    string
	command string
}

// New creates a new Pinger; timeout is passed to ping as its reply deadline
func New(timeout time.Duration) *Pinger {
	return &Pinger{
		timeout: timeout,
		goos:    runtime.GOOS,
		command: "ping",
	}
}

// Name identifies the ping method in logs
func (p *Pinger) Name() string { return "exec" }

// Ping executes a single ping to the target and returns the RTT in milliseconds
func (p *Pinger) Ping(ctx context.Context, target string) (float64, error) {
	cmd := exec.CommandContext(ctx, p.command, p.args(target)...)
	output, err := cmd.CombinedOutput()
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return 0, fmt.Errorf("ping %s: %w", target, ctxErr)
		}
		return 0, fmt.Errorf("ping %s: %w", target, err)
	}

	rtt, ok := parsePingOutput(string(output))
	if !ok {
		return 0, fmt.Errorf("ping %s: %w", target, ErrNoReply)
	}
	return rtt, nil
}

// args builds the platform-specific command line for one echo request.
func (p *Pinger) args(target string) []string {
	switch p.goos {
	case "windows":
		return []string{"-n", "1", "-w", strconv.FormatInt(p.timeout.Milliseconds(), 10), target}
	case "darwin", "freebsd", "netbsd", "openbsd":
		// BSD ping takes -W in milliseconds
		return []string{"-c", "1", "-W", strconv.FormatInt(p.timeout.Milliseconds(), 10), target}
	default:
		// iputils takes -W in whole seconds
		secs := int64(math.Ceil(p.timeout.Seconds()))
		if secs < 1 {
			secs = 1
		}
		return []string{"-c", "1", "-W", strconv.FormatInt(secs, 10), target}
	}
}

var rttPatterns = []*regexp.Regexp{
	regexp.MustCompile(`time[=<]\s*([0-9.]+)\s*ms`),
	regexp.MustCompile(`round-trip min/avg/max(?:/stddev)? = [0-9.]+/([0-9.]+)/`),
	regexp.MustCompile(`rtt min/avg/max/mdev = [0-9.]+/([0-9.]+)/`),
}

// parsePingOutput parses RTT from ping output
func parsePingOutput(output string) (float64, bool) {
	// Linux/Mac: "time=XX.X ms"
	// Windows: "time=XXms" or "time<1ms"
	for _, re := range rttPatterns {
		matches := re.FindStringSubmatch(output)
		if len(matches) > 1 {
			if rtt, err := strconv.ParseFloat(matches[1], 64); err == nil {
				return rtt, true
			}
		}
	}

	return 0, false
}
