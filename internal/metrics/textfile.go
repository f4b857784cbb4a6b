package metrics

import (
	"fmt"

	prom "github.com/prometheus/client_golang/prometheus"
)

// WriteTextfile writes everything gathered from reg to path in the
// Prometheus text format. The file is replaced atomically.
func WriteTextfile(reg *prom.Registry, path string) error {
	if path == "" {
		return nil
	}
	if err := prom.WriteToTextfile(path, reg); err != nil {
		return fmt.Errorf("write metrics textfile: %w", err)
	}
	return nil
}
