package cache

// Cache is a byte-oriented TTL cache. Implementations are safe for
// concurrent use; Get returns (nil, false) on a miss or expired entry.
type Cache interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte)
	Delete(key string)
}
