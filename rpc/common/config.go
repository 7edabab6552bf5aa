package common

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// --------------------------------------------------------------------------
// RPC server configuration struct
// --------------------------------------------------------------------------

// ServerConfig holds all configuration parameters of a dTX server.
type ServerConfig struct {
	// HTTP api settings
	Endpoint    string
	MetricsPath string

	// Transaction settings
	LockTimeoutMillis int64

	// Logging configuration
	LogLevel string
}

// LockTimeout returns the configured lock wait bound. Zero means lock waits are unbounded.
// ok is false for a negative value, the transaction manager default applies then.
func (c *ServerConfig) LockTimeout() (timeout time.Duration, ok bool) {
	if c.LockTimeoutMillis < 0 {
		return 0, false
	}
	return time.Duration(c.LockTimeoutMillis) * time.Millisecond, true
}

// String returns a formatted string representation of the configuration
func (c *ServerConfig) String() string {
	var sb strings.Builder

	// Create helper functions for consistent formatting
	addSection := func(title string) {
		sb.WriteString("\n")
		sb.WriteString(fmt.Sprintf("%s\n", strings.ToUpper(title)))
	}

	addField := func(name, value string) {
		sb.WriteString(fmt.Sprintf("  %-22s: %s\n", name, value))
	}

	// RPC settings
	addSection("RPC Server")
	addField("Endpoint", c.Endpoint)
	if c.MetricsPath != "" {
		addField("Metrics Path", c.MetricsPath)
	} else {
		addField("Metrics Path", "disabled")
	}

	// Transactions
	addSection("Transactions")
	switch {
	case c.LockTimeoutMillis > 0:
		addField("Lock Timeout", fmt.Sprintf("%d ms", c.LockTimeoutMillis))
	case c.LockTimeoutMillis == 0:
		addField("Lock Timeout", "unbounded")
	default:
		addField("Lock Timeout", "default")
	}

	// Logging configuration
	addSection("Logging")
	addField("Log Level", c.LogLevel)

	return sb.String()
}

// --------------------------------------------------------------------------
// RPC client configuration struct
// --------------------------------------------------------------------------

type ClientConfig struct {
	Endpoints     []string
	TimeoutSecond int
	RetryCount    int // attempts for requests that were not delivered
}

// String returns a formatted string representation of the client configuration
func (c *ClientConfig) String() string {
	var sb strings.Builder

	addSection := func(title string) {
		sb.WriteString("\n")
		sb.WriteString(fmt.Sprintf("%s\n", strings.ToUpper(title)))
	}

	addField := func(name, value string) {
		sb.WriteString(fmt.Sprintf("  %-22s: %s\n", name, value))
	}

	// General Client Settings
	addSection("Client Configuration")
	addField("Timeout", fmt.Sprintf("%d sec", c.TimeoutSecond))
	addField("Retry Count", strconv.Itoa(c.RetryCount))

	// Endpoints
	addSection("Endpoints")
	for i, endpoint := range c.Endpoints {
		addField(strconv.Itoa(i), endpoint)
	}

	return sb.String()
}
