package redis

import "fmt"

// Key prefix for all client data
const keyPrefix = "spiderleague"

// entryKey returns the Redis key for a local entry of a profile
func entryKey(profile, key string) string {
	return fmt.Sprintf("%s:%s:local:%s", keyPrefix, profile, key)
}
