package cli

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseDefaultsToHelp(t *testing.T) {
	parsed, err := Parse(nil)
	require.NoError(t, err)
	require.True(t, parsed.ShowHelp)
	require.Equal(t, CommandHelp, parsed.Command)
}

func TestParseCommandWithConfig(t *testing.T) {
	parsed, err := Parse([]string{"--config", "/tmp/sarathi.yaml", "doctor"})
	require.NoError(t, err)
	require.Equal(t, CommandDoctor, parsed.Command)
	require.Equal(t, "/tmp/sarathi.yaml", parsed.ConfigPath)
	require.False(t, parsed.ShowHelp)
}

func TestParseArgMatrix(t *testing.T) {
	tests := []struct {
		name     string
		args     []string
		wantErr  string
		wantCmd  Command
		wantHelp bool
		wantPath string
	}{
		{
			name:     "help short flag",
			args:     []string{"-h"},
			wantCmd:  CommandHelp,
			wantHelp: true,
		},
		{
			name:     "help long flag",
			args:     []string{"--help"},
			wantCmd:  CommandHelp,
			wantHelp: true,
		},
		{
			name:     "version flag",
			args:     []string{"--version"},
			wantCmd:  CommandVersion,
			wantHelp: false,
		},
		{
			name:    "config after command",
			args:    []string{"status", "--config", "/tmp/cfg"},
			wantErr: "unexpected arguments after command",
		},
		{
			name:    "missing config path",
			args:    []string{"--config"},
			wantErr: "requires a path",
		},
		{
			name:    "missing document id",
			args:    []string{"--doc"},
			wantErr: "requires a document id",
		},
		{
			name:    "unknown flag",
			args:    []string{"--bogus"},
			wantErr: "unknown flag",
		},
		{
			name:    "unknown command",
			args:    []string{"bogus"},
			wantErr: "unknown command",
		},
		{
			name:    "extra args after command",
			args:    []string{"doctor", "extra"},
			wantErr: "unexpected arguments",
		},
		{
			name:     "valid serve command",
			args:     []string{"serve"},
			wantCmd:  CommandServe,
			wantHelp: false,
		},
		{
			name:     "valid stop with config",
			args:     []string{"--config", "/tmp/cfg", "stop"},
			wantCmd:  CommandStop,
			wantHelp: false,
			wantPath: "/tmp/cfg",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			parsed, err := Parse(tc.args)
			if tc.wantErr != "" {
				require.Error(t, err)
				require.Contains(t, err.Error(), tc.wantErr)
				return
			}

			require.NoError(t, err)
			require.Equal(t, tc.wantCmd, parsed.Command)
			require.Equal(t, tc.wantHelp, parsed.ShowHelp)
			require.Equal(t, tc.wantPath, parsed.ConfigPath)
		})
	}
}

func TestParseCommandsWithTrailingArgs(t *testing.T) {
	parsed, err := Parse([]string{"interpret", "hey", "sarathi"})
	require.NoError(t, err)
	require.Equal(t, CommandInterpret, parsed.Command)
	require.Equal(t, []string{"hey", "sarathi"}, parsed.Args)

	parsed, err = Parse([]string{"--model", "mock", "summarize", "/tmp/paper.pdf"})
	require.NoError(t, err)
	require.Equal(t, CommandSummarize, parsed.Command)
	require.Equal(t, "mock", parsed.Model)
	require.Equal(t, []string{"/tmp/paper.pdf"}, parsed.Args)

	parsed, err = Parse([]string{"--doc", "doc-1", "ask", "what", "is", "this"})
	require.NoError(t, err)
	require.Equal(t, CommandAsk, parsed.Command)
	require.Equal(t, "doc-1", parsed.DocumentID)
	require.Equal(t, []string{"what", "is", "this"}, parsed.Args)
}

func TestHelpTextIncludesCoreCommands(t *testing.T) {
	text := HelpText("sarathi")
	require.Contains(t, text, "serve")
	require.Contains(t, text, "interpret")
	require.Contains(t, text, "summarize")
	require.Contains(t, text, "ask")
	require.Contains(t, text, "doctor")
	require.Contains(t, text, "--config PATH")
}
