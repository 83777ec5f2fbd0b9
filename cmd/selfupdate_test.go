package cmd

import (
	"testing"

	"github.com/creativeprojects/go-selfupdate"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSelfUpdate_ReleaseRepository(t *testing.T) {
	owner, repo, err := selfupdate.ParseSlug(githubRepoSlug).GetSlug()
	require.NoError(t, err)
	assert.Equal(t, "svcctl", owner)
	assert.Equal(t, "svcctl", repo)
}

func TestSelfUpdate_RefusesUnreleasedBuilds(t *testing.T) {
	original := rootCmd.Version
	t.Cleanup(func() { rootCmd.Version = original })

	for _, version := range []string{"", "dev"} {
		t.Run("version="+version, func(t *testing.T) {
			rootCmd.Version = version

			err := runSelfUpdate(newSelfUpdateCmd(), nil)
			require.Error(t, err)
			assert.EqualError(t, err, "cannot self-update a development version")
		})
	}
}

func TestSelfUpdate_RegisteredWithoutArgs(t *testing.T) {
	found, _, err := rootCmd.Find([]string{"self-update"})
	require.NoError(t, err)
	assert.Equal(t, "self-update", found.Name())
	assert.Contains(t, found.Long, "latest release of svcctl")

	_, err = execute(t, "self-update", "extra")
	assert.ErrorContains(t, err, "unknown command")
}
