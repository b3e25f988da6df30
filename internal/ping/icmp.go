package ping

import (
	"context"
	"fmt"
	"net"
	"sync"
	"time"

	goping "github.com/digineo/go-ping"
)

// ICMPPinger sends echo requests from a raw socket via go-ping. It needs
// root or CAP_NET_RAW. Target addresses are resolved once and cached.
type ICMPPinger struct {
	pinger  *goping.Pinger
	timeout time.Duration
	network string

	mu       sync.Mutex
	resolved map[string]*net.IPAddr
}

// NewICMP binds the ICMP sockets. An empty bind address disables that family.
func NewICMP(bind4, bind6 string, timeout time.Duration) (*ICMPPinger, error) {
	p, err := goping.New(bind4, bind6)
	if err != nil {
		return nil, fmt.Errorf("bind icmp sockets (running as root?): %w", err)
	}
	return &ICMPPinger{
		pinger:   p,
		timeout:  timeout,
		network:  resolveNetwork(bind4, bind6),
		resolved: make(map[string]*net.IPAddr),
	}, nil
}

// Name identifies the ping method in logs
func (p *ICMPPinger) Name() string { return "icmp" }

// Ping sends one echo request and waits for the reply or the timeout.
func (p *ICMPPinger) Ping(ctx context.Context, target string) (float64, error) {
	addr, err := p.resolve(target)
	if err != nil {
		return 0, err
	}

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	rtt, err := p.pinger.PingContext(ctx, addr)
	if err != nil {
		return 0, fmt.Errorf("ping %s (%s): %w", target, addr, err)
	}
	return float64(rtt) / float64(time.Millisecond), nil
}

// resolve looks up target, keeping successful lookups so that a slow
// resolver only costs the first cycle.
func (p *ICMPPinger) resolve(target string) (*net.IPAddr, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if addr, ok := p.resolved[target]; ok {
		return addr, nil
	}
	addr, err := net.ResolveIPAddr(p.network, target)
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", target, err)
	}
	p.resolved[target] = addr
	return addr, nil
}

// Close releases the ICMP sockets.
func (p *ICMPPinger) Close() error {
	p.pinger.Close()
	return nil
}

// resolveNetwork restricts name resolution to the families that have a
// bound socket; go-ping cannot send on an unbound family.
func resolveNetwork(bind4, bind6 string) string {
	switch {
	case bind6 == "":
		return "ip4"
	case bind4 == "":
		return "ip6"
	default:
		return "ip"
	}
}
