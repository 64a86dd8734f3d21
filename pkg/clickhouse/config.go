package clickhouse

import (
	"fmt"
	"net/url"
	"strconv"
	"time"
)

const (
	ProtocolNative = "native"
	ProtocolHTTP   = "http"
)

// Config describes the read-only price warehouse connection.
type Config struct {
	Host     string
	Port     int
	Database string
	User     string
	Password string
	// Protocol is "native" (default, port 9000) or "http" (port 8123).
	Protocol         string
	MaxOpenConns     int
	ConnMaxLifetime  time.Duration
	DialTimeout      time.Duration
	ReadTimeout      time.Duration
	MaxExecutionTime time.Duration
}

func (c *Config) applyDefaults() {
	if c.Protocol == "" {
		c.Protocol = ProtocolNative
	}
	if c.Port == 0 {
		c.Port = 9000
		if c.Protocol == ProtocolHTTP {
			c.Port = 8123
		}
	}
	if c.Database == "" {
		c.Database = "default"
	}
	if c.MaxOpenConns <= 0 {
		c.MaxOpenConns = 4
	}
	if c.ConnMaxLifetime <= 0 {
		c.ConnMaxLifetime = 5 * time.Minute
	}
	if c.DialTimeout <= 0 {
		c.DialTimeout = 5 * time.Second
	}
}

func (c Config) validate() error {
	if c.Host == "" {
		return fmt.Errorf("host is required")
	}
	if c.Protocol != ProtocolNative && c.Protocol != ProtocolHTTP {
		return fmt.Errorf("unknown protocol %q", c.Protocol)
	}
	return nil
}

func (c Config) dsn() string {
	u := url.URL{
		Scheme: "clickhouse",
		Host:   c.Host + ":" + strconv.Itoa(c.Port),
		Path:   "/" + c.Database,
	}
	if c.Protocol == ProtocolHTTP {
		u.Scheme = "http"
	}
	if c.User != "" {
		u.User = url.UserPassword(c.User, c.Password)
	}

	q := url.Values{}
	if c.DialTimeout > 0 {
		q.Set("dial_timeout", c.DialTimeout.String())
	}
	if c.ReadTimeout > 0 {
		q.Set("read_timeout", c.ReadTimeout.String())
	}
	if c.MaxExecutionTime > 0 {
		q.Set("max_execution_time", strconv.Itoa(int(c.MaxExecutionTime.Seconds())))
	}
	u.RawQuery = q.Encode()
	return u.String()
}
