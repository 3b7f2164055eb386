package cli

import (
	"errors"
	"fmt"
	"strings"
)

type Command string

const (
	CommandServe     Command = "serve"
	CommandInterpret Command = "interpret"
	CommandSummarize Command = "summarize"
	CommandAsk       Command = "ask"
	CommandStatus    Command = "status"
	CommandStop      Command = "stop"
	CommandDoctor    Command = "doctor"
	CommandVersion   Command = "version"
	CommandHelp      Command = "help"
)

var validCommands = map[Command]struct{}{
	CommandServe:     {},
	CommandInterpret: {},
	CommandSummarize: {},
	CommandAsk:       {},
	CommandStatus:    {},
	CommandStop:      {},
	CommandDoctor:    {},
	CommandVersion:   {},
	CommandHelp:      {},
}

// commandsWithArgs accept trailing positional arguments.
var commandsWithArgs = map[Command]struct{}{
	CommandInterpret: {},
	CommandSummarize: {},
	CommandAsk:       {},
}

type Parsed struct {
	Command    Command
	ConfigPath string
	DocumentID string
	Model      string
	Args       []string
	ShowHelp   bool
}

func Parse(args []string) (Parsed, error) {
	parsed := Parsed{Command: CommandHelp, ShowHelp: true}

	for i := 0; i < len(args); i++ {
		arg := args[i]

		switch arg {
		case "-h", "--help":
			parsed.ShowHelp = true
			parsed.Command = CommandHelp
		case "--version":
			parsed.ShowHelp = false
			parsed.Command = CommandVersion
		case "--config":
			i++
			if i >= len(args) {
				return Parsed{}, errors.New("--config requires a path")
			}
			parsed.ConfigPath = args[i]
		case "--doc":
			i++
			if i >= len(args) {
				return Parsed{}, errors.New("--doc requires a document id")
			}
			parsed.DocumentID = args[i]
		case "--model":
			i++
			if i >= len(args) {
				return Parsed{}, errors.New("--model requires a model name")
			}
			parsed.Model = args[i]
		default:
			if strings.HasPrefix(arg, "-") {
				return Parsed{}, fmt.Errorf("unknown flag: %s", arg)
			}

			cmd := Command(arg)
			if _, ok := validCommands[cmd]; !ok {
				return Parsed{}, fmt.Errorf("unknown command: %s", arg)
			}

			parsed.Command = cmd
			parsed.ShowHelp = cmd == CommandHelp

			if _, ok := commandsWithArgs[cmd]; ok {
				parsed.Args = args[i+1:]
				return parsed, nil
			}
			if i != len(args)-1 {
				return Parsed{}, fmt.Errorf("unexpected arguments after command %q", arg)
			}
		}
	}

	return parsed, nil
}

func HelpText(binaryName string) string {
	return fmt.Sprintf(`Usage:
  %[1]s [--config PATH] <command> [args]

Commands:
  serve               Run the assistant daemon (HTTP API + WebSocket)
  interpret TEXT...   Interpret a transcript and print the dispatch result
  summarize FILE      Extract and summarize a document
  ask QUESTION...     Ask a question against an indexed document (--doc ID)
  status              Print daemon state
  stop                Stop a running daemon
  doctor              Run configuration and environment checks
  version             Print version information
  help                Show this help

Flags:
  --config PATH   Config file path (default: $XDG_CONFIG_HOME/sarathi/config.yaml)
  --doc ID        Document id for ask
  --model NAME    Summarization model (gemini, chat, mock)
  -h, --help      Show help
  --version       Show version
`, binaryName)
}
