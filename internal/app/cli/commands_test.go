package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_Parse_NoArgsRunsHeadless(t *testing.T) {
	opts, err := Parse(nil)
	require.NoError(t, err)
	assert.Equal(t, CommandRun, opts.Type)
}

func Test_Parse_ShellSubcommand(t *testing.T) {
	opts, err := Parse([]string{"shell"})
	require.NoError(t, err)
	assert.Equal(t, CommandShell, opts.Type)
}

func Test_Parse_UnknownSubcommandErrors(t *testing.T) {
	_, err := Parse([]string{"bogus"})
	assert.Error(t, err)
}
