package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/ncruces/zenity"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/fpang/media-picker/internal/cli"
	"github.com/fpang/media-picker/internal/filehandler"
	"github.com/fpang/media-picker/internal/media"
	"github.com/fpang/media-picker/internal/selection"
)

var (
	scanDepth int
	scanLimit int
	addBrowse bool
	listPaths bool
)

var scanCmd = &cobra.Command{
	Use:   "scan [directory]",
	Short: "List the media in a directory, marking selected and rejected items",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		s, err := openSession(ctx)
		if err != nil {
			return err
		}

		var dir string
		if len(args) > 0 {
			dir = args[0]
		} else {
			dir = cli.PromptForDirectory(os.Stdin, os.Stdout)
		}
		dir, err = cli.ValidateAndResolveDirectory(dir)
		if err != nil {
			return err
		}

		items, err := filehandler.ScanDirectory(dir, filehandler.ScanOptions{
			MaxDepth:  scanDepth,
			Limit:     scanLimit,
			MimeTypes: s.store.Policy().AcceptedTypes(),
		})
		if err != nil {
			return err
		}

		fmt.Printf("%s (%d items)\n", dir, len(items))
		for _, item := range items {
			fmt.Println(cli.FormatItem(item, s.store.CheckedNumOf(item)))
			if s.store.IsSelected(item) {
				continue
			}
			if cause := s.store.IsAcceptable(ctx, item); cause != nil {
				fmt.Printf("      %s\n", cause.Message)
			}
		}
		return nil
	},
}

var addCmd = &cobra.Command{
	Use:   "add [files...]",
	Short: "Add files to the selection",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		s, err := openSession(ctx)
		if err != nil {
			return err
		}

		paths := args
		if addBrowse {
			picked, err := browse(s.store.Policy().AcceptedTypes())
			if err != nil {
				return err
			}
			paths = append(paths, picked...)
		}
		if len(paths) == 0 {
			return errors.New("no files given; pass paths or use --browse")
		}

		for _, path := range cli.ResolveFiles(paths) {
			item, ok := s.itemFor(path)
			if !ok {
				continue
			}
			if cause := s.store.IsAcceptable(ctx, item); cause != nil {
				fmt.Println(cli.FormatCause(item, cause))
				continue
			}
			added, err := s.store.Add(item)
			switch {
			case errors.Is(err, selection.ErrUnsupportedKind):
				fmt.Println(cli.FormatCause(item, selection.NewCause(selection.CauseUnsupportedFile, s.messages().UnsupportedFile())))
			case err != nil:
				fmt.Println(cli.FormatCause(item, selection.NewCause(selection.CauseTypeConflict, s.messages().TypeConflict())))
			case !added:
				fmt.Printf("· %s is already selected\n", item.Name())
			default:
				fmt.Printf("✓ %d. %s\n", s.store.CheckedNumOf(item), item.Name())
			}
		}
		return s.save(ctx)
	},
}

var removeCmd = &cobra.Command{
	Use:   "remove files...",
	Short: "Remove files from the selection",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		s, err := openSession(ctx)
		if err != nil {
			return err
		}

		for _, path := range cli.ResolveFiles(args) {
			item := media.Item{ID: path}
			if s.store.Remove(item) {
				fmt.Printf("- %s\n", item.Name())
			} else {
				fmt.Printf("· %s was not selected\n", item.Name())
			}
		}
		return s.save(ctx)
	},
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "Show the current selection in order",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		s, err := openSession(ctx)
		if err != nil {
			return err
		}

		if listPaths {
			for _, p := range s.store.Paths(ctx, s.resolver) {
				fmt.Println(p)
			}
			return nil
		}

		fmt.Printf("Session %s: %d/%d selected (%s)\n",
			s.id, s.store.Count(), s.store.CurrentMaxSelectable(), s.store.CollectionType())
		for _, item := range s.store.Items() {
			fmt.Println(cli.FormatItem(item, s.store.CheckedNumOf(item)))
		}
		return nil
	},
}

var checkCmd = &cobra.Command{
	Use:   "check files...",
	Short: "Report whether files could be added, without changing the selection",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		s, err := openSession(ctx)
		if err != nil {
			return err
		}

		for _, path := range cli.ResolveFiles(args) {
			item, ok := s.itemFor(path)
			if !ok {
				continue
			}
			if cause := s.store.IsAcceptable(ctx, item); cause != nil {
				fmt.Println(cli.FormatCause(item, cause))
				continue
			}
			fmt.Printf("✓ %s\n", item.Name())
		}
		return nil
	},
}

var clearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Deselect everything in the current session",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		s, err := openSession(ctx)
		if err != nil {
			return err
		}
		n := s.store.Count()
		s.store.Clear()
		if err := s.states.DeleteSnapshot(ctx, s.id); err != nil {
			return err
		}
		fmt.Printf("Cleared %d items\n", n)
		return nil
	},
}

func init() {
	scanCmd.Flags().IntVar(&scanDepth, "depth", 0, "Maximum recursion depth (0 = unlimited)")
	scanCmd.Flags().IntVar(&scanLimit, "limit", 0, "Maximum items to list (0 = unlimited)")
	addCmd.Flags().BoolVarP(&addBrowse, "browse", "b", false, "Choose files with the system file picker")
	listCmd.Flags().BoolVar(&listPaths, "paths", false, "Print only resolved paths, one per line")
}

// itemFor builds an item for a local file. Files with an unrecognised
// extension are reported as unsupported and skipped.
func (s *session) itemFor(path string) (media.Item, bool) {
	var size int64
	if info, err := os.Stat(path); err == nil {
		size = info.Size()
	}
	item, err := media.ItemFromPath(path, size)
	if err != nil {
		log.Debug().Err(err).Str("path", path).Msg("Unrecognised file extension")
		fmt.Println(cli.FormatCause(media.Item{ID: path}, selection.NewCause(selection.CauseUnsupportedFile, s.messages().UnsupportedFile())))
		return media.Item{}, false
	}
	return item, true
}

// browse opens the native multi-file picker filtered to the accepted types.
// Cancelling returns no paths and no error.
func browse(types []media.MimeType) ([]string, error) {
	var patterns []string
	for _, mt := range types {
		for _, ext := range mt.Extensions() {
			patterns = append(patterns, "*"+ext)
		}
	}

	selected, err := zenity.SelectFileMultiple(
		zenity.Title("Select media files"),
		zenity.FileFilters{
			{Name: "Media files", Patterns: patterns},
		},
	)
	if err != nil {
		if errors.Is(err, zenity.ErrCanceled) {
			log.Info().Msg("File picker canceled")
			return nil, nil
		}
		return nil, fmt.Errorf("file picker failed: %w", err)
	}
	log.Debug().Int("count", len(selected)).Str("files", strings.Join(selected, ", ")).Msg("Files picked")
	return selected, nil
}
