package repository

import "github.com/okian/intervue/pkg/logger"

// GatewayOption configures a Gateway.
type GatewayOption func(*Gateway)

// WithConsistency selects the save mode.
func WithConsistency(c Consistency) GatewayOption {
	return func(g *Gateway) {
		if c != "" {
			g.consistency = c
		}
	}
}

// WithMaxRetries sets how many extra attempts CompareAndSwap makes.
func WithMaxRetries(n int) GatewayOption {
	return func(g *Gateway) {
		if n >= 0 {
			g.maxRetries = n
		}
	}
}

// WithLogger sets the gateway logger.
func WithLogger(l logger.Logger) GatewayOption {
	return func(g *Gateway) {
		if l != nil {
			g.log = l
		}
	}
}
