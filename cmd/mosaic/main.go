package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/mark3labs/mcp-go/server"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/jarosser06/mosaic/internal/config"
	"github.com/jarosser06/mosaic/internal/db"
	"github.com/jarosser06/mosaic/internal/domain"
	mosaicmcp "github.com/jarosser06/mosaic/internal/mcp"
	"github.com/jarosser06/mosaic/internal/notify"
	"github.com/jarosser06/mosaic/internal/query"
	"github.com/jarosser06/mosaic/internal/repository"
	"github.com/jarosser06/mosaic/internal/scheduler"
	"github.com/jarosser06/mosaic/internal/service"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "mosaic",
		Short:         "Personal work-memory and time-tracking MCP server",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newServeCmd())
	root.AddCommand(newNotifyCmd())
	return root
}

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the MCP tool surface over stdio",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe()
		},
	}
}

func runServe() error {
	// .env is a development convenience; absence is not an error.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.LogLevel}))

	if isatty.IsTerminal(os.Stdin.Fd()) || isatty.IsCygwinTerminal(os.Stdin.Fd()) {
		// stdout carries the JSON-RPC framing; an interactive terminal is
		// almost certainly a mistake.
		fmt.Fprintln(os.Stderr, "mosaic serve speaks MCP over stdio and is meant to be launched by an MCP client")
	}

	database, err := db.OpenDB(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer database.Close()

	// Wire repositories
	personRepo := repository.NewSQLitePersonRepo(database)
	clientRepo := repository.NewSQLiteClientRepo(database)
	projectRepo := repository.NewSQLiteProjectRepo(database)
	employerRepo := repository.NewSQLiteEmployerRepo(database)
	sessionRepo := repository.NewSQLiteWorkSessionRepo(database)
	meetingRepo := repository.NewSQLiteMeetingRepo(database)
	noteRepo := repository.NewSQLiteNoteRepo(database)
	reminderRepo := repository.NewSQLiteReminderRepo(database)
	employmentRepo := repository.NewSQLiteEmploymentHistoryRepo(database)
	profileRepo := repository.NewSQLiteUserProfileRepo(database)

	uow := db.NewSQLiteUnitOfWork(database)

	if err := applyProfileConfig(profileRepo, cfg); err != nil {
		return fmt.Errorf("applying user profile config: %w", err)
	}

	observer := service.NewLogUseCaseObserver(os.Stderr)

	// Wire services
	sessionSvc := service.NewWorkSessionService(sessionRepo, profileRepo, uow, observer)
	meetingSvc := service.NewMeetingService(meetingRepo, profileRepo, uow, observer)
	reminderSvc := service.NewReminderService(reminderRepo, profileRepo, uow, observer)
	entitySvc := service.NewEntityService(personRepo, clientRepo, projectRepo, employerRepo,
		noteRepo, employmentRepo, profileRepo, observer)
	querySvc := service.NewQueryService(query.NewEngine(database),
		personRepo, clientRepo, projectRepo, employerRepo,
		sessionRepo, meetingRepo, noteRepo, reminderRepo, profileRepo, observer)

	dispatcherCfg := notify.DefaultConfig(cfg.BridgeURL)
	dispatcherCfg.Enabled = cfg.NotifyEnabled && cfg.BridgeURL != ""
	dispatcherCfg.DefaultSound = cfg.DefaultSound
	dispatcher := notify.NewDispatcher(dispatcherCfg, logger)
	defer dispatcher.Close()

	sched := scheduler.New(reminderRepo, dispatcher, cfg.CheckInterval, logger)
	if err := sched.Start(); err != nil {
		return err
	}
	defer sched.Stop()

	srv := mosaicmcp.NewServer(mosaicmcp.Services{
		Sessions:  sessionSvc,
		Meetings:  meetingSvc,
		Reminders: reminderSvc,
		Entities:  entitySvc,
		Queries:   querySvc,
		Notifier:  dispatcher,
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- server.ServeStdio(srv)
	}()

	logger.Info("mosaic serving MCP over stdio", "db", cfg.DBPath)
	select {
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("mcp server: %w", err)
		}
		return nil
	case <-ctx.Done():
		logger.Info("shutting down")
		return nil
	}
}

// applyProfileConfig pushes environment-provided defaults into the
// singleton user profile so timezone, week boundary, and default privacy
// are consistent everywhere they are read.
func applyProfileConfig(profiles repository.UserProfileRepo, cfg config.Config) error {
	ctx := context.Background()
	profile, err := profiles.Get(ctx)
	if err != nil {
		return err
	}
	profile.Timezone = cfg.Timezone
	profile.WeekBoundary = cfg.WeekBoundary
	profile.DefaultPrivacy = cfg.DefaultPrivacy
	if profile.DefaultPrivacy == "" {
		profile.DefaultPrivacy = domain.PrivacyPrivate
	}
	return profiles.Upsert(ctx, profile)
}

func newNotifyCmd() *cobra.Command {
	var title, message, sound string
	cmd := &cobra.Command{
		Use:   "notify",
		Short: "Send a one-shot test notification through the bridge",
		RunE: func(cmd *cobra.Command, args []string) error {
			_ = godotenv.Load()
			bridgeURL := os.Getenv("MOSAIC_BRIDGE_URL")
			if bridgeURL == "" {
				return fmt.Errorf("MOSAIC_BRIDGE_URL is required")
			}
			logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
			dispatcher := notify.NewDispatcher(notify.DefaultConfig(bridgeURL), logger)
			defer dispatcher.Close()

			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()
			attempts, err := dispatcher.Send(ctx, notify.Payload{
				Title:   title,
				Message: message,
				Sound:   sound,
			})
			if err != nil {
				return fmt.Errorf("after %d attempts: %w", attempts, err)
			}
			fmt.Printf("delivered in %d attempt(s)\n", attempts)
			return nil
		},
	}
	cmd.Flags().StringVar(&title, "title", "Mosaic", "notification title")
	cmd.Flags().StringVar(&message, "message", "Test notification", "notification message")
	cmd.Flags().StringVar(&sound, "sound", "", "notification sound")
	return cmd
}
