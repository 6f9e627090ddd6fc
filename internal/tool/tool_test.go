package tool

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/syou6162/cmrunner/internal/cmdargs"
)

func TestFromPath(t *testing.T) {
	assert.Equal(t, Unconfigured{}, FromPath("", true))
	assert.Equal(t, Unconfigured{}, FromPath("   ", false))

	got := FromPath(" /opt/plasticscm5/client/cm ", true)
	require.IsType(t, Configured{}, got)
	assert.Equal(t, Handle{Path: "/opt/plasticscm5/client/cm", UseInvariantCulture: true}, got.(Configured).Handle)
}

func TestHandle_Env(t *testing.T) {
	assert.Nil(t, Handle{Path: "cm"}.Env())
	assert.Equal(t, map[string]string{InvariantCultureEnv: "1"}, Handle{Path: "cm", UseInvariantCulture: true}.Env())
}

func TestClientConfig_Fill(t *testing.T) {
	cfg := NewClientConfig(ClientConfigOptions{
		Server:      "ssl://plastic.example.com:8088",
		Username:    "builder",
		Password:    "s3cret",
		WorkingMode: "UPWorkingMode",
		Extra:       []string{"--machinename", "ci 01"},
	})
	require.Equal(t, 6, cfg.Len())

	b := cfg.Fill(cmdargs.New("cm", "status"))
	assert.Equal(t, []string{
		"cm", "status",
		"--server=ssl://plastic.example.com:8088",
		"--username=builder",
		"--password=s3cret",
		"--workingmode=UPWorkingMode",
		"--machinename", "ci 01",
	}, b.Args())
	assert.NotContains(t, b.String(), "s3cret")
}

func TestClientConfig_ZeroValue(t *testing.T) {
	var cfg ClientConfig
	assert.Equal(t, 0, cfg.Len())
	assert.Equal(t, []string{"cm"}, cfg.Fill(cmdargs.New("cm")).Args())
}

func TestParseExtraArgs(t *testing.T) {
	args, err := ParseExtraArgs(`--machinename "build agent" --encoding=utf-8`)
	require.NoError(t, err)
	assert.Equal(t, []string{"--machinename", "build agent", "--encoding=utf-8"}, args)

	args, err = ParseExtraArgs("  ")
	require.NoError(t, err)
	assert.Nil(t, args)

	_, err = ParseExtraArgs(`--machinename "unterminated`)
	assert.Error(t, err)
}
