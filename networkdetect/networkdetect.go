package networkdetect

import (
	"fmt"
	"log"
	"net/url"
	"time"

	"github.com/go-ping/ping"

	"github.com/egaotan/solana-lending-balance/config"
)

type pingFunc func(host string, count int) (time.Duration, error)

var pingHost pingFunc = func(host string, count int) (time.Duration, error) {
	pinger, err := ping.NewPinger(host)
	if err != nil {
		return 0, err
	}
	pinger.Count = count
	pinger.Timeout = time.Duration(count) * 2 * time.Second
	if err := pinger.Run(); err != nil {
		return 0, err
	}
	stats := pinger.Statistics()
	if stats.PacketsRecv == 0 {
		return 0, fmt.Errorf("host %s is unreachable", host)
	}
	return stats.AvgRtt, nil
}

func nodeHost(node *config.Node) (string, error) {
	u, err := url.Parse(node.Rpc)
	if err != nil {
		return "", err
	}
	if u.Hostname() == "" {
		return "", fmt.Errorf("node rpc %s has no host", node.Rpc)
	}
	return u.Hostname(), nil
}

// DetectNodes pings the host of every node count times and returns the node
// with the lowest average rtt.
func DetectNodes(nodes []*config.Node, count int, logger *log.Logger) (*config.Node, time.Duration, error) {
	if logger == nil {
		logger = log.Default()
	}
	var best *config.Node
	var bestRtt time.Duration
	for _, node := range nodes {
		host, err := nodeHost(node)
		if err != nil {
			logger.Printf("node %s err: %s", node.Rpc, err)
			continue
		}
		rtt, err := pingHost(host, count)
		if err != nil {
			logger.Printf("ping node %s err: %s", node.Rpc, err)
			continue
		}
		logger.Printf("ping node %s rtt: %s", node.Rpc, rtt)
		if best == nil || rtt < bestRtt {
			best = node
			bestRtt = rtt
		}
	}
	if best == nil {
		return nil, 0, fmt.Errorf("all of %d nodes are unreachable", len(nodes))
	}
	return best, bestRtt, nil
}
