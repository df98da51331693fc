// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package config

import (
	"errors"
	"flag"
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"
)

// NetAddress holds structured network address data for host and port.
// It implements the flag.Value interface.
type NetAddress struct {
	Host string
	Port int
}

// ParseFlags parses configuration flags from args (without the program name).
//
// Flags:
//
//	-a api address in format [host]:[port]
//	-d local database path
//	-c/-config config file path (JSON or YAML)
//	-token identity bearer token
//	-log log file path
//	-request-timeout remote call timeout (e.g., "10s")
//	-sync-interval background sync period (e.g., "5m")
//	-health-interval connectivity probe period (e.g., "30s")
//	-cache-ttl default cache lifetime (e.g., "5m")
func ParseFlags(args []string) (*StructuredConfig, error) {
	var (
		apiAddress     NetAddress
		databaseDSN    string
		configPath     string
		authToken      string
		logPath        string
		requestTimeout time.Duration
		syncInterval   time.Duration
		healthInterval time.Duration
		cacheTTL       time.Duration
	)

	fs := flag.NewFlagSet("livyflow", flag.ContinueOnError)
	fs.Var(&apiAddress, "a", "API net address host:port")
	fs.StringVar(&databaseDSN, "d", "", "Local database path")
	fs.StringVar(&configPath, "c", "", "Config file path")
	fs.StringVar(&configPath, "config", "", "Config file path (alias)")
	fs.StringVar(&authToken, "token", "", "Identity bearer token")
	fs.StringVar(&logPath, "log", "", "Log file path")
	fs.DurationVar(&requestTimeout, "request-timeout", 0, "Remote call timeout (e.g., 10s)")
	fs.DurationVar(&syncInterval, "sync-interval", 0, "Background sync period (e.g., 5m)")
	fs.DurationVar(&healthInterval, "health-interval", 0, "Connectivity probe period (e.g., 30s)")
	fs.DurationVar(&cacheTTL, "cache-ttl", 0, "Default cache lifetime (e.g., 5m)")

	if err := fs.Parse(args); err != nil {
		return nil, fmt.Errorf("error parsing flags: %w", err)
	}

	return &StructuredConfig{
		App: App{
			AuthToken: authToken,
			LogPath:   logPath,
		},
		Storage: Storage{
			DB: DB{DSN: databaseDSN},
		},
		Adapter: Adapter{
			HTTPAddress:    apiAddress.String(),
			RequestTimeout: requestTimeout,
		},
		Workers: Workers{
			SyncInterval:   syncInterval,
			HealthInterval: healthInterval,
		},
		Cache:          Cache{TTL: cacheTTL},
		ConfigFilePath: configPath,
	}, nil
}

// String returns a canonical host:port string for a NetAddress.
// If neither Host nor Port are set, it returns an empty string.
func (a *NetAddress) String() string {
	if a.Host == "" && a.Port == 0 {
		return ""
	}

	return a.Host + ":" + strconv.Itoa(a.Port)
}

// Set parses the input string of form host:port and populates the NetAddress.
// It validates the port range and checks IP correctness unless host is
// "localhost".
func (a *NetAddress) Set(s string) error {
	hostAndPort := strings.Split(s, ":")
	if len(hostAndPort) != 2 {
		return errors.New("need address in a form `host:port`")
	}

	host := hostAndPort[0]
	port, err := strconv.Atoi(hostAndPort[1])
	if err != nil {
		return err
	}

	if port < 1 || port > 65535 {
		return errors.New("port number must be in range 1-65535")
	}

	if host != "localhost" {
		if ip := net.ParseIP(host); ip == nil {
			return errors.New("incorrect IP-address provided")
		}
	}

	a.Host = host
	a.Port = port
	return nil
}
