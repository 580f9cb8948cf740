package main

import (
	"context"
	"fmt"
	"os"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/fpang/media-picker/internal/acceptability"
	"github.com/fpang/media-picker/internal/cli"
	"github.com/fpang/media-picker/internal/config"
	"github.com/fpang/media-picker/internal/filehandler"
	"github.com/fpang/media-picker/internal/logging"
	"github.com/fpang/media-picker/internal/selection"
	"github.com/fpang/media-picker/internal/store"
)

var (
	configPath string
	sessionID  string
	newSession bool
)

var rootCmd = &cobra.Command{
	Use:   "media-pick",
	Short: "Select images and videos under a selection policy",
	Long: `Media Pick keeps a selection of local images and videos and enforces the
limits in your policy file: how many items, whether images and videos may be
mixed, which formats are accepted, and optional size or dimension filters.

The selection survives between invocations. Each command continues the
current session unless --session or --new-session is given.

Examples:
  media-pick scan ~/Pictures/trip
  media-pick add ~/Pictures/trip/IMG_0001.jpg ~/Pictures/trip/IMG_0002.jpg
  media-pick add --browse
  media-pick list
  media-pick check ~/Movies/clip.mkv
  media-pick clear`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		logging.Init()
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Policy file (default ~/.config/media-picker/policy.toml)")
	rootCmd.PersistentFlags().StringVar(&sessionID, "session", "", "Session ID to continue instead of the current one")
	rootCmd.PersistentFlags().BoolVar(&newSession, "new-session", false, "Start a fresh session and make it current")

	rootCmd.AddCommand(scanCmd, addCmd, removeCmd, listCmd, checkCmd, clearCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// session is one loaded selection: its policy, its persisted state and the
// store the commands act on.
type session struct {
	id       string
	cfg      config.Config
	resolver filehandler.LocalResolver
	states   store.FileStore
	store    *selection.Store
}

// openSession loads the policy and restores the session's last snapshot.
func openSession(ctx context.Context) (*session, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}

	id, err := resolveSessionID(cfg.StateDir)
	if err != nil {
		return nil, err
	}

	cwd, err := os.Getwd()
	if err != nil {
		cwd = ""
	}
	resolver := filehandler.LocalResolver{Root: cwd}

	policy, err := cfg.Policy(resolver)
	if err != nil {
		return nil, err
	}
	checker := acceptability.New(resolver, filehandler.NewContentClassifier(resolver), policy)

	states, err := store.NewFileStore(cfg.StateDir)
	if err != nil {
		return nil, err
	}

	s := &session{
		id:       id,
		cfg:      cfg,
		resolver: resolver,
		states:   states,
		store:    selection.NewStore(policy, checker),
	}

	snap, err := states.GetSnapshot(ctx, id)
	if err != nil {
		return nil, err
	}
	if snap != nil {
		s.store.Restore(*snap)
	}

	log.Debug().
		Str("sessionId", id).
		Int("selected", s.store.Count()).
		Str("collectionType", s.store.CollectionType().String()).
		Msg("Session opened")
	return s, nil
}

func resolveSessionID(stateDir string) (string, error) {
	switch {
	case newSession:
		id := store.NewSessionID()
		return id, cli.SetCurrentSession(stateDir, id)
	case sessionID != "":
		return sessionID, cli.SetCurrentSession(stateDir, sessionID)
	default:
		return cli.CurrentSession(stateDir)
	}
}

func (s *session) save(ctx context.Context) error {
	if err := s.states.PutSnapshot(ctx, s.id, s.store.Snapshot()); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

func (s *session) messages() *selection.Messages {
	if m := s.store.Policy().Messages; m != nil {
		return m
	}
	return selection.DefaultMessages()
}
