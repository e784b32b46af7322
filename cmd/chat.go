package cmd

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/schedwise/schedwise/internal/dialogue"
	"github.com/schedwise/schedwise/internal/extract"
	"github.com/schedwise/schedwise/internal/google"
	"github.com/schedwise/schedwise/internal/schedule"
	"github.com/schedwise/schedwise/internal/search"
	"github.com/schedwise/schedwise/internal/server"
)

func newChatCmd() *cobra.Command {
	var (
		account    string
		skillName  string
		timezone   string
		llmBaseURL string
		dbPath     string
	)

	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Run a scheduling conversation in the terminal",
		Long: `Run a single scheduling conversation interactively, without an MCP
client. Each line you type is one conversation turn; the assistant
either asks for the next missing detail or confirms the scheduled
event and exits.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			skill, err := parseSkillName(skillName)
			if err != nil {
				return err
			}
			if _, err := time.LoadLocation(timezone); err != nil {
				return fmt.Errorf("invalid timezone %q: %w", timezone, err)
			}

			extractorConfig := ExtractorConfig{BaseURL: llmBaseURL}
			loadExtractorEnvVars(cmd, &extractorConfig)
			if extractorConfig.APIKey == "" {
				return fmt.Errorf("no language model API key configured; set SCHEDWISE_LLM_API_KEY or OPENAI_API_KEY")
			}

			return runChat(account, skill, timezone, dbPath, extractorConfig)
		},
	}

	cmd.Flags().StringVar(&account, "account", google.DefaultAccount, "Account whose calendar to schedule on")
	cmd.Flags().StringVar(&skillName, "skill", string(schedule.SkillBlockTime), "Scheduling action: blockOffTime, sendMeetingInvite or rescheduleEvent")
	cmd.Flags().StringVar(&timezone, "timezone", "UTC", "IANA timezone for date resolution (e.g. Europe/Berlin)")
	cmd.Flags().StringVar(&llmBaseURL, "llm-base-url", "", "OpenAI-compatible API base URL. Can also use SCHEDWISE_LLM_BASE_URL env var.")
	cmd.Flags().StringVar(&dbPath, "db-path", "", "Path to the SQLite event store. Can also use SCHEDWISE_DB_PATH env var.")

	return cmd
}

func parseSkillName(name string) (schedule.Skill, error) {
	switch name {
	case "", string(schedule.SkillBlockTime):
		return schedule.SkillBlockTime, nil
	case string(schedule.SkillMeetingInvite):
		return schedule.SkillMeetingInvite, nil
	case string(schedule.SkillReschedule):
		return schedule.SkillReschedule, nil
	default:
		return "", fmt.Errorf("unknown skill %q: expected %q, %q or %q",
			name, schedule.SkillBlockTime, schedule.SkillMeetingInvite, schedule.SkillReschedule)
	}
}

func runChat(account string, skill schedule.Skill, timezone, dbPath string, extractorConfig ExtractorConfig) error {
	ctx, cancel := signal.NotifyContext(context.Background(),
		os.Interrupt, syscall.SIGTERM)
	defer cancel()

	extractor, err := extract.NewClient(extract.Config{
		BaseURL:    extractorConfig.BaseURL,
		APIKey:     extractorConfig.APIKey,
		ChatModel:  extractorConfig.ChatModel,
		EmbedModel: extractorConfig.EmbedModel,
	})
	if err != nil {
		return fmt.Errorf("failed to create extractor client: %w", err)
	}

	db, err := search.Open(resolveDBPath(dbPath))
	if err != nil {
		return fmt.Errorf("failed to open event store: %w", err)
	}
	defer db.Close()

	manager := dialogue.NewManager(dialogue.DefaultIdleTTL)
	serverContext, err := server.NewServerContext(ctx, server.Config{
		Extractor: extractor,
		Store:     search.NewStore(db),
		Manager:   manager,
	})
	if err != nil {
		return fmt.Errorf("failed to create server context: %w", err)
	}
	defer func() {
		_ = serverContext.Shutdown()
	}()

	controller, err := serverContext.ControllerFor(account, skill)
	if err != nil {
		return err
	}

	state := manager.Create(account, skill, timezone)
	fmt.Printf("Scheduling conversation started (%s, account %s). Type your request; Ctrl-D to quit.\n\n", skill, account)

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			break
		}
		message := strings.TrimSpace(scanner.Text())
		if message == "" {
			continue
		}

		var reply string
		err := manager.With(state.ID, func(s *dialogue.State) error {
			var turnErr error
			reply, turnErr = controller.HandleTurn(ctx, s, message)
			return turnErr
		})
		if err != nil {
			fmt.Printf("error: %v\n", err)
			continue
		}

		fmt.Printf("%s\n\n", reply)
		if state.Status == schedule.StatusCompleted {
			break
		}
	}
	manager.Delete(state.ID)
	return scanner.Err()
}
