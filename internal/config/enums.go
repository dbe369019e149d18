package config

// Environment represents the runtime environment
type Environment string

const (
	EnvDevelopment Environment = "development"
	EnvProduction  Environment = "production"
)

func (e Environment) IsValid() bool {
	switch e {
	case EnvDevelopment, EnvProduction:
		return true
	}
	return false
}

func (e Environment) IsProduction() bool {
	return e == EnvProduction
}

// StorageDriver selects the backend for exported mix files
type StorageDriver string

const (
	StorageLocal StorageDriver = "local"
	StorageMinio StorageDriver = "minio"
)

func (d StorageDriver) IsValid() bool {
	switch d {
	case StorageLocal, StorageMinio:
		return true
	}
	return false
}

// CacheDriver selects the backend for rendered mix caching
type CacheDriver string

const (
	CacheMemory CacheDriver = "memory"
	CacheRedis  CacheDriver = "redis"
	CacheNone   CacheDriver = "none"
)

func (d CacheDriver) IsValid() bool {
	switch d {
	case CacheMemory, CacheRedis, CacheNone:
		return true
	}
	return false
}
