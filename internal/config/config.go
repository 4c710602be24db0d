// Package config defines the server's YAML-configured parameters:
// network bind addresses, default sampling/publish intervals, and default
// queue policy. It is a much smaller sibling of the teacher's
// pkg/config/parameters.go, grounded on that file's yaml-tag-plus-Validate
// style but scoped to what the monitoring engine actually needs.
package config

import (
	"fmt"
	"time"

	"github.com/pkg/errors"

	"github.com/basyskom-jvoe/open62541-go/internal/interval"
)

// Parameters is the root of the server's YAML configuration file.
type Parameters struct {
	Server  ServerParameters  `yaml:"server,omitempty"`
	Metrics MetricsParameters `yaml:"metrics,omitempty"`
	Health  HealthParameters  `yaml:"health,omitempty"`

	Defaults MonitoringDefaults `yaml:"monitoringDefaults,omitempty"`
}

// ServerParameters holds the management API's bind address. It is
// validated and logged at start-up; no listener is opened on it.
type ServerParameters struct {
	Address string `yaml:"address,omitempty"`
	Port    int    `yaml:"port,omitempty"`
}

// MetricsParameters configures the Prometheus metrics listener.
type MetricsParameters struct {
	Address string `yaml:"address,omitempty"`
	Port    int    `yaml:"port,omitempty"`
}

// HealthParameters configures the liveness/readiness listener.
type HealthParameters struct {
	Address string `yaml:"address,omitempty"`
	Port    int    `yaml:"port,omitempty"`
}

// MonitoringDefaults supplies fallback values a management API create call
// may omit.
type MonitoringDefaults struct {
	SamplingInterval string `yaml:"samplingInterval,omitempty"`
	PublishInterval  string `yaml:"publishInterval,omitempty"`
	MaxQueueSize     uint32 `yaml:"maxQueueSize,omitempty"`
	DiscardOldest    bool   `yaml:"discardOldest,omitempty"`
}

// Defaults returns the zero-config set of Parameters.
func Defaults() Parameters {
	return Parameters{
		Server:  ServerParameters{Address: "0.0.0.0", Port: 4840},
		Metrics: MetricsParameters{Address: "0.0.0.0", Port: 8080},
		Health:  HealthParameters{Address: "0.0.0.0", Port: 8081},
		Defaults: MonitoringDefaults{
			SamplingInterval: "1s",
			PublishInterval:  "500ms",
			MaxQueueSize:     10,
			DiscardOldest:    true,
		},
	}
}

// Validate checks the parameters for internal consistency, in the manner
// of the teacher's pkg/config Validate methods: return the first error
// found, wrapped with github.com/pkg/errors for a useful call-site.
func (p *Parameters) Validate() error {
	if p.Server.Port <= 0 || p.Server.Port > 65535 {
		return errors.Errorf("server.port %d out of range", p.Server.Port)
	}
	if p.Metrics.Port <= 0 || p.Metrics.Port > 65535 {
		return errors.Errorf("metrics.port %d out of range", p.Metrics.Port)
	}
	if p.Health.Port <= 0 || p.Health.Port > 65535 {
		return errors.Errorf("health.port %d out of range", p.Health.Port)
	}
	if p.Defaults.MaxQueueSize == 0 {
		return errors.New("monitoringDefaults.maxQueueSize must be >= 1")
	}
	if _, err := interval.Parse(p.Defaults.SamplingInterval); err != nil {
		return errors.Wrap(err, "monitoringDefaults.samplingInterval")
	}
	if _, err := interval.Parse(p.Defaults.PublishInterval); err != nil {
		return errors.Wrap(err, "monitoringDefaults.publishInterval")
	}
	return nil
}

// SamplingInterval resolves the configured default sampling interval,
// falling back to 1s if unset or unparseable.
func (p *Parameters) SamplingInterval() time.Duration {
	s, err := interval.Parse(p.Defaults.SamplingInterval)
	if err != nil || s.UseDefault() {
		return time.Second
	}
	return s.Duration()
}

// PublishInterval resolves the configured default publish interval,
// falling back to 500ms if unset or unparseable.
func (p *Parameters) PublishInterval() time.Duration {
	s, err := interval.Parse(p.Defaults.PublishInterval)
	if err != nil || s.UseDefault() {
		return 500 * time.Millisecond
	}
	return s.Duration()
}

// String renders the parameters for a start-up log line.
func (p *Parameters) String() string {
	return fmt.Sprintf("server=%s:%d metrics=%s:%d health=%s:%d sampling=%s publish=%s",
		p.Server.Address, p.Server.Port,
		p.Metrics.Address, p.Metrics.Port,
		p.Health.Address, p.Health.Port,
		p.SamplingInterval(), p.PublishInterval())
}
