package config

import "os"

func IsDebug() bool {
	return os.Getenv("BIZBOT_DEBUG") == "1"
}

// LogFile returns the optional file sink path for the process logger.
func LogFile() string {
	return os.Getenv("BIZBOT_LOG_FILE")
}
