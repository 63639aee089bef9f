package common

import "fmt"

// ConfigError reports missing or malformed secret material at startup. It is
// fatal: the process must not start serving with a bad key.
//
// Dev only changes the wording so a developer is pointed at the local config
// file instead of the deployment environment.
type ConfigError struct {
	Setting string
	Reason  string
	Dev     bool
}

func (e *ConfigError) Error() string {
	if e.Dev {
		return fmt.Sprintf("%s is not configured correctly: %s. Set %s in the environment or in the development config file",
			e.Setting, e.Reason, e.Setting)
	}
	return fmt.Sprintf("%s is required in production: %s", e.Setting, e.Reason)
}
