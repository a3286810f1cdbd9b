// Package config handles loading and parsing of suite configuration from YAML
// files, an optional .env file and environment variables. It defines the target
// site, test accounts, checkout data, timeouts, retry policy, browser driver
// settings and artifact directories.
package config
