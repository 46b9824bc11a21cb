package config

import (
	"errors"
	"flag"
	"net"
	"strconv"
	"time"
)

// NetAddress holds structured network address data for host and port.
// It implements the flag.Value interface.
type NetAddress struct {
	Host string
	Port int
}

// ParseFlags parses configuration flags from args into a fresh
// [StructuredConfig]. Positional arguments left after the flags end up in
// [StructuredConfig.Args].
//
// Flags:
//
//	-a listen address in format [host]:[port]
//	-allow-list allow-list file path
//	-poll-interval serve loop polling interval (e.g., "100ms")
//	-welcome welcome message sent to accepted clients
//	-max-attempts failed logins before a session is closed
//	-p password file path
//	-log log file path
//	-c/-config json file path with configs
func ParseFlags(name string, args []string) (*StructuredConfig, error) {
	var address NetAddress
	var allowListFile string
	var pollInterval time.Duration
	var welcomeMessage string
	var maxLoginAttempts int
	var passwdFile string
	var logFile string
	var jsonConfigPath string

	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.Var(&address, "a", "Net address host:port")
	fs.StringVar(&allowListFile, "allow-list", "", "Allow-list file path")
	fs.DurationVar(&pollInterval, "poll-interval", 0, "Polling interval (e.g., 100ms)")
	fs.StringVar(&welcomeMessage, "welcome", "", "Welcome message")
	fs.IntVar(&maxLoginAttempts, "max-attempts", 0, "Failed logins before disconnect")
	fs.StringVar(&passwdFile, "p", "", "Password file path")
	fs.StringVar(&logFile, "log", "", "Log file path")
	fs.StringVar(&jsonConfigPath, "c", "", "JSON config file path")
	fs.StringVar(&jsonConfigPath, "config", "", "JSON config file path (alias)")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	return &StructuredConfig{
		Server: Server{
			Address:          address.String(),
			AllowListFile:    allowListFile,
			PollInterval:     pollInterval,
			WelcomeMessage:   welcomeMessage,
			MaxLoginAttempts: maxLoginAttempts,
		},
		Storage: Storage{
			PasswdFile: passwdFile,
		},
		Log: Log{
			File: logFile,
		},
		JSONFilePath: jsonConfigPath,
		Args:         fs.Args(),
	}, nil
}

// String returns a canonical host:port string for a NetAddress.
// If neither Host nor Port are set, it returns an empty string.
func (a *NetAddress) String() string {
	if a.Host == "" && a.Port == 0 {
		return ""
	}

	return net.JoinHostPort(a.Host, strconv.Itoa(a.Port))
}

// Set parses the input string of form host:port and populates the NetAddress.
// An empty host means every interface. Any other host must be "localhost" or
// an IP address.
func (a *NetAddress) Set(s string) error {
	host, portStr, err := net.SplitHostPort(s)
	if err != nil {
		return errors.New("need address in a form `host:port`")
	}

	port, err := strconv.Atoi(portStr)
	if err != nil {
		return err
	}

	if port < 1 || port > 65535 {
		return errors.New("port number must be between 1 and 65535")
	}

	if host != "" && host != "localhost" {
		if ip := net.ParseIP(host); ip == nil {
			return errors.New("incorrect IP-address provided")
		}
	}

	a.Host = host
	a.Port = port
	return nil
}
