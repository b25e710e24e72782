// Package settings loads server configuration from the environment.
//
// An optional .env file is read first with godotenv, then the process
// environment is parsed into Settings with caarlos0/env. Command-line flags
// in main override the parsed values.
//
//	HOST, PORT                      listen address (0.0.0.0:8080)
//	RULES_DIR                       rule set directory (configs)
//	STORE_BACKEND                   memory, file or sqlite (file)
//	SESSIONS_DIR, SQLITE_PATH       persistence locations
//	SESSION_TTL                     idle time before a game expires (24h)
//	SESSION_SWEEP_INTERVAL          expiry sweep period (10m)
//	LOG_LEVEL, LOG_FORMAT           zap level and encoding
//	NGROK_ENABLED, NGROK_AUTHTOKEN, NGROK_DOMAIN
package settings
