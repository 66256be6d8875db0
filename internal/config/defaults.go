package config

// Storage backends
const (
	StoragePostgres = "postgres"
	StorageMemory   = "memory"
)

// Geo index backends
const (
	GeoStore = "store"
	GeoRedis = "redis"
)
