package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/nightjar-app/nightjar/internal/agent"
	"github.com/nightjar-app/nightjar/internal/chat"
	"github.com/nightjar-app/nightjar/internal/config"
	"github.com/nightjar-app/nightjar/internal/embedder"
	"github.com/nightjar-app/nightjar/internal/graph"
	"github.com/nightjar-app/nightjar/internal/indexing"
	"github.com/nightjar-app/nightjar/internal/journal"
	"github.com/nightjar-app/nightjar/internal/llm"
	"github.com/nightjar-app/nightjar/internal/logger"
)

// localUserID is the journal owner in single-user console mode.
const localUserID = 1

const defaultSystemPrompt = `You are a thoughtful dream analysis companion. You help the dreamer
explore the symbols, characters, emotions, and themes recorded in their
dream journal. Use the available tools to ground every answer in the
journal itself; never invent dreams the journal does not contain. The
dreamer's own interpretation of a dream always takes precedence over
universal symbolism. Be warm, curious, and concise.`

func init() {
	godotenv.Load()
}

func loadSystemPrompt(path string) string {
	if path == "" {
		return defaultSystemPrompt
	}
	content, err := os.ReadFile(path)
	if err != nil {
		logger.Warn("prompt file unreadable, using default", "path", path, "error", err)
		return defaultSystemPrompt
	}
	return string(content)
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("failed to load config", "error", err)
	}

	model, err := llm.New(llm.Config{
		Provider: cfg.LLM.Provider,
		APIKey:   cfg.LLM.APIKey,
		Model:    cfg.LLM.Model,
		BaseURL:  cfg.LLM.BaseURL,
	})
	if err != nil {
		logger.Fatal("failed to create llm", "error", err)
	}

	store, err := journal.Open(cfg.JournalPath)
	if err != nil {
		logger.Fatal("failed to open journal", "error", err)
	}
	defer store.Close()

	chats, err := chat.NewStore(store.DB())
	if err != nil {
		logger.Fatal("failed to create chat store", "error", err)
	}

	emb, err := embedder.New(embedder.Config{
		Provider: cfg.Embedder.Provider,
		BaseURL:  cfg.Embedder.BaseURL,
		Model:    cfg.Embedder.Model,
	})
	if err != nil {
		logger.Fatal("failed to create embedder", "error", err)
	}

	profile, err := graph.LoadProfile(cfg.DomainFile)
	if err != nil {
		logger.Fatal("failed to load domain profile", "error", err)
	}

	graphs := graph.NewManager(cfg.GraphsPath, model, emb, profile)
	pipeline := indexing.NewPipeline(store, graphs)

	if cfg.IndexCron != "" {
		scheduler, err := indexing.NewScheduler(pipeline, store, cfg.IndexCron)
		if err != nil {
			logger.Fatal("invalid index cron spec", "spec", cfg.IndexCron, "error", err)
		}
		scheduler.Start()
		defer scheduler.Stop()
		logger.Info("index scheduler started", "spec", cfg.IndexCron)
	}

	service := agent.NewService(model, store, chats, graphs, pipeline, loadSystemPrompt(cfg.PromptPath))

	embedderProvider := cfg.Embedder.Provider
	if embedderProvider == "" {
		embedderProvider = "none"
	}
	logger.Info("nightjar started",
		"llm", cfg.LLM.Provider,
		"embedder", embedderProvider,
		"journal", cfg.JournalPath,
		"graphs", cfg.GraphsPath,
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		logger.Info("shutting down")
		cancel()
		os.Exit(0)
	}()

	repl(ctx, service)
}

// repl is the console chat surface. One conversation at a time; /new
// starts a fresh one.
func repl(ctx context.Context, service *agent.Service) {
	fmt.Println("nightjar dream journal. Commands: /index /reindex /new /clear /quit")

	scanner := bufio.NewScanner(os.Stdin)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	chatID := ""

	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			return
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		switch line {
		case "/quit", "/exit":
			return
		case "/new":
			chatID = ""
			fmt.Println("started a new conversation")
			continue
		case "/clear":
			if chatID != "" {
				service.ClearContext(localUserID, chatID)
			}
			fmt.Println("context cleared")
			continue
		case "/index":
			reportOutcome(service.IndexPending(ctx, localUserID))
			continue
		case "/reindex":
			reportOutcome(service.ReindexAll(ctx, localUserID))
			continue
		}

		reply, id, err := service.SendMessage(ctx, localUserID, chatID, line, nil)
		if err != nil {
			fmt.Println("error:", err)
			continue
		}
		chatID = id

		fmt.Println(reply.Answer)
		for _, src := range reply.Sources {
			fmt.Printf("  [Dream %d] %s\n", src.DreamID, src.Excerpt)
		}
	}
}

func reportOutcome(outcome *indexing.Outcome, err error) {
	if err != nil {
		fmt.Println("error:", err)
		return
	}
	fmt.Printf("indexed %d, failed %d\n", outcome.SuccessCount, outcome.FailureCount)
	for _, e := range outcome.Errors {
		fmt.Println("  ", e)
	}
}
