package instance

import "os"

const envWorkerID = "STOREFRONT_WORKER_ID"

// GetID names this worker process in logs. Falls back to the hostname.
func GetID() string {
	if id := os.Getenv(envWorkerID); id != "" {
		return id
	}
	if host, err := os.Hostname(); err == nil && host != "" {
		return host
	}
	return "worker-0"
}
