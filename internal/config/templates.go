package config

import (
	"fmt"
	"os"
)

// WriteTemplate writes a commented default config to path.
func WriteTemplate(path string, overwrite bool) error {
	if !overwrite {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("config already exists: %s", path)
		}
	}
	return os.WriteFile(path, []byte(Template), 0o600)
}

const Template = `# bitsctl configuration

[decoder]
# Longest accepted transmission in hex digits (0 = unbounded).
max_digits = 1048576
# Deepest accepted packet nesting (0 = unbounded).
max_depth = 4096
# Most transmissions accepted by one batch decode (0 = unbounded).
max_batch = 256
# Concurrent decodes for batch input (0 = GOMAXPROCS).
workers = 0

[server]
addr = ":9400"
cors_origins = ["http://localhost:3000"]
trusted_proxies = ["127.0.0.1", "::1"]
# Bearer token required on /decode routes (empty = open).
token = ""
# PEM cert and key enable HTTPS when both are set.
tls_cert = ""
tls_key = ""

[log]
level = "info"
timestamp = true
no_color = false
json = false
`
