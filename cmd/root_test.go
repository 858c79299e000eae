package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCommand_HasSubcommands(t *testing.T) {
	cmds := rootCmd.Commands()

	// Collect subcommand names.
	names := make(map[string]bool)
	for _, c := range cmds {
		names[c.Name()] = true
	}

	// Verify expected subcommands are registered.
	expected := []string{"fetch", "render", "publish", "presets", "serve", "runs"}
	for _, name := range expected {
		assert.True(t, names[name], "expected subcommand %q not found", name)
	}
}

func TestRootCommand_Metadata(t *testing.T) {
	assert.Equal(t, "listgen", rootCmd.Use)
	assert.NotEmpty(t, rootCmd.Short)
	assert.NotEmpty(t, rootCmd.Long)
}

func TestFetchCommand_Flags(t *testing.T) {
	for _, name := range []string{"city", "category", "query", "max-results", "min-reviews", "out", "html"} {
		assert.NotNil(t, fetchCmd.Flags().Lookup(name), "fetch should have --%s flag", name)
	}
	city := fetchCmd.Flags().Lookup("city")
	require.NotNil(t, city)
	assert.Equal(t, []string{"true"}, city.Annotations["cobra_annotation_bash_completion_one_required_flag"])
}

func TestRenderCommand_Flags(t *testing.T) {
	for _, name := range []string{"in", "run-id", "title", "out"} {
		assert.NotNil(t, renderCmd.Flags().Lookup(name), "render should have --%s flag", name)
	}
}

func TestPublishCommand_Flags(t *testing.T) {
	flag := publishCmd.Flags().Lookup("post-id")
	require.NotNil(t, flag, "publish command should have --post-id flag")
	assert.Equal(t, "0", flag.DefValue)
	assert.NotNil(t, publishCmd.Flags().Lookup("title"))
	assert.NotNil(t, publishCmd.Flags().Lookup("in"))
	assert.NotNil(t, publishCmd.Flags().Lookup("run-id"))
}

func TestRunsCommand_Subcommands(t *testing.T) {
	names := make(map[string]bool)
	for _, c := range runsCmd.Commands() {
		names[c.Name()] = true
	}
	assert.True(t, names["list"])
	assert.True(t, names["show"])

	limit := runsListCmd.Flags().Lookup("limit")
	require.NotNil(t, limit)
	assert.Equal(t, "20", limit.DefValue)
}

func TestServeCommand_Flags(t *testing.T) {
	flag := serveCmd.Flags().Lookup("port")
	require.NotNil(t, flag, "serve command should have --port flag")
	assert.Equal(t, "0", flag.DefValue)
}
