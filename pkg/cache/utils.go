package cache

import "fmt"

// GenerateKey creates a cache key with prefix and ID.
func GenerateKey(prefix string, id string) string {
	return fmt.Sprintf("%s:%s", prefix, id)
}

// LockKey is the key a job's run lock lives under.
func LockKey(job string) string {
	return GenerateKey("lock", job)
}
