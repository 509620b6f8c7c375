package op_service

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v2"
)

func TestFormatVersion(t *testing.T) {
	require.Equal(t, "v1.0.0", FormatVersion("v1.0.0", "", "", ""))
	require.Equal(t, "v1.0.0-abcdef01-1700000000-dev", FormatVersion("v1.0.0", "abcdef0123456789", "1700000000", "dev"))
	require.Equal(t, "v1.0.0-abc", FormatVersion("v1.0.0", "abc", "", ""))
}

func TestPrefixEnvVar(t *testing.T) {
	require.Equal(t, []string{"FAUCET_RPC_URL"}, PrefixEnvVar("FAUCET", "RPC_URL"))
	require.Equal(t, []string{"FAUCET_RPC_URL", "RPC_URL"}, PrefixEnvVarWithLegacy("FAUCET", "RPC_URL", "RPC_URL", " "))
}

func TestValidateEnvVars(t *testing.T) {
	provided := []string{"FAUCET_RPC_URL=http://a", "FAUCET_RPC_UR=typo", "RPC_URL=x", "OTHER_THING=1"}
	defined := map[string]struct{}{"FAUCET_RPC_URL": {}, "RPC_URL": {}}
	require.Equal(t, []string{"FAUCET_RPC_UR"}, validateEnvVars("FAUCET", provided, defined))
}

func TestCLIFlagsToEnvVars(t *testing.T) {
	flags := []cli.Flag{
		&cli.StringFlag{Name: "rpc-url", EnvVars: PrefixEnvVarWithLegacy("FAUCET", "RPC_URL", "RPC_URL")},
		&cli.BoolFlag{Name: "check", EnvVars: PrefixEnvVar("FAUCET", "CHECK")},
	}
	require.Equal(t, map[string]struct{}{
		"FAUCET_RPC_URL": {},
		"RPC_URL":        {},
		"FAUCET_CHECK":   {},
	}, cliFlagsToEnvVars(flags))
}
