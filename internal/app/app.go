package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/sarathi-app/sarathi/internal/assistant"
	"github.com/sarathi-app/sarathi/internal/cli"
	"github.com/sarathi-app/sarathi/internal/config"
	"github.com/sarathi-app/sarathi/internal/doctor"
	"github.com/sarathi-app/sarathi/internal/events"
	"github.com/sarathi-app/sarathi/internal/extract"
	"github.com/sarathi-app/sarathi/internal/interpreter"
	"github.com/sarathi-app/sarathi/internal/ipc"
	"github.com/sarathi-app/sarathi/internal/logging"
	"github.com/sarathi-app/sarathi/internal/navigate"
	"github.com/sarathi-app/sarathi/internal/rag"
	"github.com/sarathi-app/sarathi/internal/server"
	"github.com/sarathi-app/sarathi/internal/speech"
	"github.com/sarathi-app/sarathi/internal/summarize"
	"github.com/sarathi-app/sarathi/internal/version"
)

type Runner struct {
	Stdout io.Writer
	Stderr io.Writer
	Logger *slog.Logger
}

func Execute(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	r := Runner{Stdout: stdout, Stderr: stderr}
	return r.Execute(ctx, args)
}

func (r Runner) Execute(ctx context.Context, args []string) int {
	parsed, err := cli.Parse(args)
	if err != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n\n", err)
		fmt.Fprint(r.Stderr, cli.HelpText("sarathi"))
		return 2
	}

	if parsed.ShowHelp {
		fmt.Fprint(r.Stdout, cli.HelpText("sarathi"))
		return 0
	}

	if parsed.Command == cli.CommandVersion {
		fmt.Fprintln(r.Stdout, version.String())
		return 0
	}

	// Interpret runs before any logging/config setup: it is a pure function
	// and useful even on a broken install.
	if parsed.Command == cli.CommandInterpret {
		return r.commandInterpret(parsed.Args)
	}

	logRuntime, err := logging.New()
	if err != nil {
		fmt.Fprintf(r.Stderr, "error: setup logging: %v\n", err)
		return 1
	}
	defer func() { _ = logRuntime.Close() }()

	logger := r.Logger
	if logger == nil {
		logger = logRuntime.Logger
	}

	cfgLoaded, err := config.Load(parsed.ConfigPath)
	if err != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n", err)
		logger.Error("load config failed", "error", err.Error())
		return 1
	}
	for _, w := range cfgLoaded.Warnings {
		fmt.Fprintf(r.Stderr, "warning: %s\n", w.Message)
		logger.Warn("config warning", "message", w.Message)
	}

	logger.Info("command start",
		"command", parsed.Command,
		"config", cfgLoaded.Path,
		"log", logRuntime.Path,
	)

	switch parsed.Command {
	case cli.CommandDoctor:
		report := doctor.Run(cfgLoaded)
		fmt.Fprintln(r.Stdout, report.String())
		if report.OK() {
			return 0
		}
		return 1
	case cli.CommandStatus:
		return r.commandStatus(ctx)
	case cli.CommandStop:
		return r.forwardOrFail(ctx, "stop")
	case cli.CommandSummarize:
		return r.commandSummarize(ctx, cfgLoaded.Config, parsed, logger)
	case cli.CommandAsk:
		return r.commandAsk(ctx, cfgLoaded.Config, parsed, logger)
	case cli.CommandServe:
		return r.commandServe(ctx, cfgLoaded.Config, logger)
	default:
		fmt.Fprintf(r.Stderr, "error: unsupported command %q\n", parsed.Command)
		return 2
	}
}

// commandInterpret prints the dispatch result for a transcript. Commands are
// interpreted as if the assistant were awake.
func (r Runner) commandInterpret(args []string) int {
	transcript := strings.TrimSpace(strings.Join(args, " "))
	if transcript == "" {
		fmt.Fprintln(r.Stderr, "error: interpret requires transcript text")
		return 2
	}

	result := interpreter.Interpret(transcript, true)
	encoded, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n", err)
		return 1
	}
	fmt.Fprintln(r.Stdout, string(encoded))
	return 0
}

func (r Runner) commandStatus(ctx context.Context) int {
	socketPath, err := ipc.RuntimeSocketPath()
	if err != nil {
		fmt.Fprintln(r.Stdout, "stopped")
		return 0
	}

	resp, handled, err := tryForward(ctx, socketPath, "status")
	if handled {
		if err != nil {
			fmt.Fprintf(r.Stderr, "error: %v\n", err)
			return 1
		}
		state := resp.State
		if state == "" {
			state = "idle"
		}
		fmt.Fprintf(r.Stdout, "state=%s active=%t clients=%d addr=%s\n",
			state, resp.Active, resp.Clients, resp.Addr)
		return 0
	}

	fmt.Fprintln(r.Stdout, "stopped")
	return 0
}

func (r Runner) forwardOrFail(ctx context.Context, command string) int {
	socketPath, err := ipc.RuntimeSocketPath()
	if err != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n", err)
		return 1
	}

	resp, handled, err := tryForward(ctx, socketPath, command)
	if !handled {
		fmt.Fprintf(r.Stderr, "error: no running sarathi daemon\n")
		return 1
	}
	if err != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n", err)
		return 1
	}
	if resp.Message != "" {
		fmt.Fprintln(r.Stdout, resp.Message)
	}
	return 0
}

// commandSummarize extracts a local document and prints its summary.
func (r Runner) commandSummarize(ctx context.Context, cfg config.Config, parsed cli.Parsed, logger *slog.Logger) int {
	if len(parsed.Args) != 1 {
		fmt.Fprintln(r.Stderr, "error: summarize requires exactly one file path")
		return 2
	}

	text, err := extract.New().FromFile(ctx, parsed.Args[0], "")
	if err != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n", err)
		return 1
	}

	service := buildSummarizeService(ctx, cfg.Summarize, logger)
	model := parsed.Model
	if model == "" {
		model = cfg.Summarize.DefaultModel
	}

	result, err := service.Summarize(ctx, text, model, summarize.Options{
		Length: cfg.Summarize.Length,
		Style:  cfg.Summarize.Style,
		Focus:  cfg.Summarize.Focus,
	})
	if err != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n", err)
		return 1
	}

	fmt.Fprintln(r.Stdout, result.Summary)
	return 0
}

// commandAsk answers a question against a previously indexed document.
func (r Runner) commandAsk(ctx context.Context, cfg config.Config, parsed cli.Parsed, logger *slog.Logger) int {
	question := strings.TrimSpace(strings.Join(parsed.Args, " "))
	if question == "" || parsed.DocumentID == "" {
		fmt.Fprintln(r.Stderr, "error: ask requires --doc ID and question text")
		return 2
	}

	store, err := openStore(cfg.RAG)
	if err != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n", err)
		return 1
	}
	defer func() { _ = store.Close() }()

	embedder, err := buildEmbedder(ctx, cfg)
	if err != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n", err)
		return 1
	}

	model := parsed.Model
	if model == "" {
		model = cfg.Summarize.DefaultModel
	}
	service := buildSummarizeService(ctx, cfg.Summarize, logger)
	provider, err := service.Provider(model)
	if err != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n", err)
		return 1
	}

	answerer := rag.NewAnswerer(store, embedder, provider, ragConfig(cfg.RAG), logger)
	result, err := answerer.AnswerDocument(ctx, parsed.DocumentID, question, nil)
	if err != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n", err)
		return 1
	}

	fmt.Fprintln(r.Stdout, result.Answer)
	return 0
}

// commandServe runs the daemon: control socket, HTTP/WebSocket server, and
// the serialized assistant loop.
func (r Runner) commandServe(ctx context.Context, cfg config.Config, logger *slog.Logger) int {
	socketPath, err := ipc.RuntimeSocketPath()
	if err != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n", err)
		return 1
	}

	listener, err := ipc.Acquire(ctx, socketPath, 180*time.Millisecond, 8, nil)
	if err != nil {
		if errors.Is(err, ipc.ErrAlreadyRunning) {
			fmt.Fprintln(r.Stderr, "error: sarathi daemon already running")
			return 1
		}
		fmt.Fprintf(r.Stderr, "error: %v\n", err)
		return 1
	}
	defer func() {
		_ = listener.Close()
		_ = os.Remove(socketPath)
	}()

	store, err := openStore(cfg.RAG)
	if err != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n", err)
		return 1
	}
	defer func() { _ = store.Close() }()

	embedder, err := buildEmbedder(ctx, cfg)
	if err != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n", err)
		return 1
	}

	service := buildSummarizeService(ctx, cfg.Summarize, logger)
	answerProvider, err := service.Provider(cfg.Summarize.DefaultModel)
	if err != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n", err)
		return 1
	}

	processor := rag.NewProcessor(store, embedder, ragConfig(cfg.RAG), logger)
	answerer := rag.NewAnswerer(store, embedder, answerProvider, ragConfig(cfg.RAG), logger)

	bus := events.NewBus()
	defer bus.Close()

	speaker := speech.NewBusSpeaker(bus, logger, cfg.Assistant.Language)

	// The hub is created by the server below; the prober closure reads it
	// late so the chain can be wired first.
	var srv *server.Server
	chain := navigate.NewChain(
		navigate.TransportFunc(func(_ context.Context, tier navigate.Tier, destination string) error {
			bus.Publish(events.Event{
				Name: events.Navigate,
				Payload: map[string]string{
					events.FieldDestination: destination,
					events.FieldMethod:      tier.String(),
				},
			})
			return nil
		}),
		navigate.ProberFunc(func() string {
			if srv == nil {
				return ""
			}
			return srv.Hub().CurrentPath()
		}),
		logger,
		time.Duration(cfg.Assistant.NavFirstRetryMS)*time.Millisecond,
		time.Duration(cfg.Assistant.NavFinalRetryMS)*time.Millisecond,
	)

	controller := assistant.NewController(
		logger,
		speaker,
		assistant.AnswerFunc(func(ctx context.Context, query string) (string, error) {
			return answerQuery(ctx, answerer, srv, query)
		}),
		assistant.NavigateFunc(func(ctx context.Context, destination string) {
			chain.Go(ctx, destination)
		}),
		bus,
		time.Duration(cfg.Assistant.AnswerTimeoutMS)*time.Millisecond,
	)

	serverCfg := server.DefaultConfig()
	serverCfg.Addr = cfg.Server.Addr
	serverCfg.MaxUploadBytes = int64(cfg.Server.MaxUploadMB) << 20
	if cfg.Server.WriteTimeoutMS > 0 {
		serverCfg.WriteTimeout = time.Duration(cfg.Server.WriteTimeoutMS) * time.Millisecond
	}
	srv = server.New(logger, serverCfg, extract.New(), service, processor, answerer, controller, bus)

	serveCtx, stop := context.WithCancel(ctx)
	defer stop()

	ipcErrCh := make(chan error, 1)
	go func() {
		ipcErrCh <- ipc.Serve(serveCtx, listener, controlHandler(controller, srv, cfg.Server.Addr, stop))
	}()

	go controller.Run(serveCtx)

	fmt.Fprintf(r.Stdout, "sarathi listening on %s\n", cfg.Server.Addr)
	if err := srv.Run(serveCtx); err != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n", err)
		stop()
		<-ipcErrCh
		return 1
	}

	stop()
	if ipcErr := <-ipcErrCh; ipcErr != nil {
		fmt.Fprintf(r.Stderr, "error: ipc server failed: %v\n", ipcErr)
		return 1
	}
	return 0
}

// controlHandler answers status and stop over the control socket.
func controlHandler(controller *assistant.Controller, srv *server.Server, addr string, stop func()) ipc.Handler {
	return ipc.HandlerFunc(func(_ context.Context, req ipc.Request) ipc.Response {
		switch req.Command {
		case "status":
			return ipc.Response{
				OK:      true,
				State:   string(controller.State()),
				Active:  controller.Active(),
				Clients: srv.Hub().Clients(),
				Addr:    addr,
			}
		case "stop":
			stop()
			return ipc.Response{OK: true, Message: "stopping"}
		default:
			return ipc.Response{OK: false, Error: fmt.Sprintf("unknown command %q", req.Command)}
		}
	})
}

// answerQuery serves voice questions against the document the page most
// recently reported. Without one there is nothing to retrieve from, so the
// controller speaks its apology instead.
func answerQuery(ctx context.Context, answerer *rag.Answerer, srv *server.Server, query string) (string, error) {
	documentID := ""
	if srv != nil {
		documentID = srv.Hub().CurrentDocument()
	}
	if documentID == "" {
		return "", fmt.Errorf("no document selected for question %q", query)
	}

	result, err := answerer.AnswerDocument(ctx, documentID, query, nil)
	if err != nil {
		return "", err
	}
	return result.Answer, nil
}

func ragConfig(cfg config.RAGConfig) rag.Config {
	return rag.Config{
		ChunkSize: cfg.ChunkSize,
		Overlap:   cfg.Overlap,
		TopK:      cfg.TopK,
		MinScore:  cfg.MinScore,
	}
}

func openStore(cfg config.RAGConfig) (*rag.Store, error) {
	path := strings.TrimSpace(cfg.StorePath)
	if path == "" {
		resolved, err := defaultStorePath()
		if err != nil {
			return nil, err
		}
		path = resolved
	}
	return rag.OpenStore(path)
}

// defaultStorePath places the chunk database next to the log file.
func defaultStorePath() (string, error) {
	dir, err := logging.StateDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "rag.db"), nil
}

func buildEmbedder(ctx context.Context, cfg config.Config) (rag.Embedder, error) {
	if strings.EqualFold(cfg.RAG.Embedder, "hash") {
		return rag.NewHashEmbedder(0), nil
	}

	apiKey := os.Getenv(cfg.Summarize.GeminiAPIKeyEnv)
	if apiKey == "" {
		// Credential-free installs still index and retrieve locally.
		return rag.NewHashEmbedder(0), nil
	}
	return rag.NewGenAIEmbedder(ctx, apiKey, cfg.RAG.EmbedModel)
}

// buildSummarizeService wires every provider the config makes reachable.
// The mock provider is always present so summaries degrade instead of fail.
func buildSummarizeService(ctx context.Context, cfg config.SummarizeConfig, logger *slog.Logger) *summarize.Service {
	providers := []summarize.Provider{summarize.MockProvider{}}

	if apiKey := os.Getenv(cfg.GeminiAPIKeyEnv); apiKey != "" {
		if gemini, err := summarize.NewGeminiProvider(ctx, apiKey, cfg.GeminiModel); err == nil {
			providers = append(providers, gemini)
		} else if logger != nil {
			logger.Warn("gemini provider unavailable", "error", err.Error())
		}
	}

	if cfg.ChatBaseURL != "" {
		if chat, err := summarize.NewChatProvider("chat", cfg.ChatBaseURL, os.Getenv(cfg.ChatAPIKeyEnv), cfg.ChatModel); err == nil {
			providers = append(providers, chat)
		} else if logger != nil {
			logger.Warn("chat provider unavailable", "error", err.Error())
		}
	}

	return summarize.NewService(logger, summarize.MockProvider{}, providers...)
}

func tryForward(ctx context.Context, socketPath string, command string) (ipc.Response, bool, error) {
	resp, err := ipc.Send(ctx, socketPath, ipc.Request{Command: command}, 220*time.Millisecond)
	if err == nil {
		if resp.OK {
			return resp, true, nil
		}
		return resp, true, errors.New(resp.Error)
	}

	if isSocketMissing(err) {
		return ipc.Response{}, false, nil
	}
	if isConnectionRefused(err) {
		return ipc.Response{}, false, nil
	}

	return ipc.Response{}, true, fmt.Errorf("forward command %q: %w", command, err)
}

func isSocketMissing(err error) bool {
	if err == nil {
		return false
	}
	return errors.Is(err, os.ErrNotExist) ||
		strings.Contains(err.Error(), "no such file or directory")
}

func isConnectionRefused(err error) bool {
	if err == nil {
		return false
	}
	return errors.Is(err, syscall.ECONNREFUSED)
}
