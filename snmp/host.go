package snmp

import (
	"net"
	"strconv"
	"strings"
)

const defaultSNMPPort = 161

// ParseHost resolves a host specification into a dial-ready "host:port"
// address. Accepts a bare IPv4/IPv6 address or hostname
// (defaultPort is used), a "host:port" pair, or a bracketed IPv6 form
// ("[::1]:1161"). The bracketed and host:port forms take precedence over
// defaultPort when they themselves specify a port.
func ParseHost(host string, defaultPort int) (string, error) {
	if defaultPort <= 0 {
		defaultPort = defaultSNMPPort
	}

	if strings.HasPrefix(host, "[") {
		h, portStr, err := net.SplitHostPort(host)
		if err != nil {
			return "", wrapf(err, ErrBadConfig, "invalid bracketed host %q", host)
		}
		port, err := validatePort(portStr)
		if err != nil {
			return "", err
		}
		return net.JoinHostPort(h, strconv.Itoa(port)), nil
	}

	// A bare IPv6 address contains more than one colon; host:port never
	// does, so that distinguishes them without needing to try-parse.
	if strings.Count(host, ":") > 1 {
		if net.ParseIP(host) == nil {
			return "", newManagerErr(ErrBadConfig, "invalid_ipv6: "+host, nil)
		}
		return net.JoinHostPort(host, strconv.Itoa(defaultPort)), nil
	}

	if strings.Contains(host, ":") {
		h, portStr, err := net.SplitHostPort(host)
		if err != nil {
			return "", wrapf(err, ErrBadConfig, "invalid host %q", host)
		}
		port, err := validatePort(portStr)
		if err != nil {
			return "", err
		}
		return net.JoinHostPort(h, strconv.Itoa(port)), nil
	}

	return net.JoinHostPort(host, strconv.Itoa(defaultPort)), nil
}

func validatePort(portStr string) (int, error) {
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return 0, wrapf(err, ErrBadConfig, "invalid_port: %q", portStr)
	}
	if port < 1 || port > 65535 {
		return 0, newManagerErr(ErrBadConfig, "invalid_port: "+portStr+" out of range 1..65535", nil)
	}
	return port, nil
}
