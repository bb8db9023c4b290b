package oanda

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

const (
	LiveURL     = "https://api-fxtrade.oanda.com"
	PracticeURL = "https://api-fxpractice.oanda.com"
)

var ErrUnknownEnvironment = errors.New("unknown environment")

// EnvironmentURL resolves "live" or "practice" to the broker base url. Any
// absolute http(s) url is accepted as an override.
func EnvironmentURL(environment string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(environment)) {
	case "live":
		return LiveURL, nil
	case "practice", "demo":
		return PracticeURL, nil
	}

	u, err := url.Parse(environment)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return "", fmt.Errorf("%q: %w", environment, ErrUnknownEnvironment)
	}
	return strings.TrimRight(environment, "/"), nil
}
