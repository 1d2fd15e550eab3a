// Package config contains everything related to configuration
package config

import "time"

// Upstream endpoints for Autodesk Platform Services.
const (
	// DefaultBaseURL is the Token Flex API root.
	DefaultBaseURL = "https://developer.api.autodesk.com/tokenflex/v1"

	// DefaultAuthURL is the APS OAuth v2 token endpoint.
	DefaultAuthURL = "https://developer.api.autodesk.com/authentication/v2/token"

	// DefaultServerURL is where the dashboard looks for the server.
	DefaultServerURL = "http://localhost:8080"
)

// Default values
const (
	defaultListenAddr         = ":8080"
	defaultRequestMaxAttempts = 3
	defaultPollInterval       = time.Second
	defaultHTTPTimeout        = 30 * time.Second
	defaultDashboardTimeout   = 5 * time.Minute
	defaultHistoryRetention   = 30 * 24 * time.Hour
	defaultRateLimitPerMinute = 120
	defaultLogLevel           = "info"
	defaultLogFormat          = "text"

	// disabledValue turns off an optional path-valued setting.
	disabledValue = "none"
)
