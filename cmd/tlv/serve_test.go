package main

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestServe_LoadProfiles(t *testing.T) {
	path := writeTemp(t, "profiles.toml", []byte(`
[emv]
stop_at_end_of_contents = true

[bulk]
max_value_size = 4096
`))

	c := &ServeCLI{Profiles: path}
	profiles, err := c.loadProfiles()
	require.NoError(t, err)
	require.Len(t, profiles, 2)
	require.True(t, profiles["emv"].StopAtEndOfContents)
	require.Equal(t, int64(4096), *profiles["bulk"].MaxValueSize)
}

func TestServe_NoProfiles(t *testing.T) {
	profiles, err := (&ServeCLI{}).loadProfiles()
	require.NoError(t, err)
	require.Nil(t, profiles)
}

func TestServe_InvalidProfile(t *testing.T) {
	path := writeTemp(t, "profiles.yaml", []byte("bad:\n  min_length_octets: 200\n"))

	_, err := (&ServeCLI{Profiles: path}).loadProfiles()
	require.ErrorContains(t, err, `profile "bad"`)
}
