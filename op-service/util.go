package op_service

import (
	"os"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/ethereum/go-ethereum/log"
)

// PrefixEnvVar returns the env var for the given name, prefixed with the service prefix.
func PrefixEnvVar(prefix, suffix string) []string {
	return []string{prefix + "_" + suffix}
}

// PrefixEnvVarWithLegacy is PrefixEnvVar, followed by the given unprefixed legacy names.
// urfave/cli takes the first env var that is set.
func PrefixEnvVarWithLegacy(prefix, suffix string, legacy ...string) []string {
	out := PrefixEnvVar(prefix, suffix)
	for _, name := range legacy {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		out = append(out, name)
	}
	return out
}

// ValidateEnvVars logs all env vars that carry the prefix but match no flag.
func ValidateEnvVars(prefix string, flags []cli.Flag, log log.Logger) {
	for _, envVar := range validateEnvVars(prefix, os.Environ(), cliFlagsToEnvVars(flags)) {
		log.Warn("Unknown env var", "prefix", prefix, "env_var", envVar)
	}
}

func cliFlagsToEnvVars(flags []cli.Flag) map[string]struct{} {
	definedEnvVars := make(map[string]struct{})
	for _, flag := range flags {
		envFlag, ok := flag.(interface {
			GetEnvVars() []string
		})
		if !ok {
			continue
		}
		for _, envVar := range envFlag.GetEnvVars() {
			definedEnvVars[envVar] = struct{}{}
		}
	}
	return definedEnvVars
}

// validateEnvVars returns the names of unknown environment variables that match the prefix.
// Values are dropped, they may hold secrets.
func validateEnvVars(prefix string, providedEnvVars []string, definedEnvVars map[string]struct{}) []string {
	var out []string
	for _, envVar := range providedEnvVars {
		parts := strings.SplitN(envVar, "=", 2)
		key := parts[0]
		if strings.HasPrefix(key, prefix+"_") {
			if _, ok := definedEnvVars[key]; !ok {
				out = append(out, key)
			}
		}
	}
	return out
}
