package config

import "os"

// MongoConfig returns the connection URI and database name.
func MongoConfig() (string, string) {
	uri := GetEnv("MONGODB_URI", "mongodb://localhost:27017")
	name := GetEnv("DB_NAME", "movi")
	return uri, name
}

// RedisConfig returns host, port, password. Redis is optional; an empty host
// disables catalog response caching.
func RedisConfig() (string, string, string) {
	host := GetEnv("R_HOST", "")
	port := GetEnv("R_PORT", "6379")
	password := GetEnv("R_PASS", "")
	return host, port, password
}

// TMDBKey returns the TMDB v3 API key. Movie lookups are disabled when empty.
func TMDBKey() string {
	return GetEnv("TMDB_V3_KEY", "")
}

// JWTConfig returns the signing secret and the token lifetime in seconds.
func JWTConfig() (string, string) {
	secret := GetEnv("JWT_SECRET", "dev-secret")
	expSeconds := GetEnv("JWT_EXP_SECONDS", "3600")
	return secret, expSeconds
}

// GetEnv retrieves values from environment files based on the key it matches,
// returns a string (value) if not empty
func GetEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
