package util

import (
	"os"
	"strings"
)

const environmentPrefix = "TRANSITDB_"

// GetEnvironmentVariables returns every TRANSITDB_ prefixed variable of the
// process environment, keyed by the name after the prefix.
func GetEnvironmentVariables() map[string]string {
	environmentVariables := map[string]string{}

	for _, variable := range os.Environ() {
		pair := strings.SplitN(variable, "=", 2)

		name, ok := strings.CutPrefix(pair[0], environmentPrefix)
		if !ok {
			continue
		}

		environmentVariables[name] = pair[1]
	}

	return environmentVariables
}
