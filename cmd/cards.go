package cmd

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/arcanaland/feedview/internal/ansi"
	"github.com/arcanaland/feedview/internal/cardview"
	"github.com/arcanaland/feedview/internal/config"
	"github.com/arcanaland/feedview/internal/deck"
)

var cardsCmd = &cobra.Command{
	Use:   "cards",
	Short: "Draw cards and show them as a selectable grid",
	Long: `Cards draws a hand from the Deck of Cards API and shows each card with its
index, name and a thumbnail of its face. Type an index to show that card in
the Selected Card panel.

A failed draw is logged and an empty grid is shown.

Examples:
  feedview cards
  feedview cards --count 5 --select 2 --prompt never
  feedview cards --no-images`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		count, _ := cmd.Flags().GetInt("count")
		selectID, _ := cmd.Flags().GetInt("select")
		noImages, _ := cmd.Flags().GetBool("no-images")
		prompt, _ := cmd.Flags().GetString("prompt")

		interactive, err := wantPrompt(prompt)
		if err != nil {
			return err
		}

		if !cmd.Flags().Changed("count") {
			count = cfg.Cards.Count
		}
		if count < 1 || count > config.MaxCards {
			return fmt.Errorf("--count must be between 1 and %d, got %d", config.MaxCards, count)
		}
		drawURL, err := deck.WithCount(cfg.Cards.URL, count)
		if err != nil {
			return err
		}

		client, err := newFeedClient()
		if err != nil {
			return err
		}

		width, _ := terminalSize()
		view := cardview.New(nil, width, logger)
		if !noImages {
			view.Thumbs = ansi.NewThumbnailer(client, !color.NoColor)
		}

		ctx := cmd.Context()
		cards, err := deck.Draw(ctx, client, drawURL)
		if err != nil {
			logger.Error("card draw failed", zap.String("url", drawURL), zap.Error(err))
		} else {
			logger.Debug("cards drawn", zap.Int("count", len(cards)))
			if len(cards) < count {
				logger.Warn("deck ran short", zap.Int("requested", count), zap.Int("drawn", len(cards)))
			}
			view.SetCards(cards)
			if selectID >= 0 {
				if err := view.Select(selectID); err != nil {
					return fmt.Errorf("cannot select card %d: %v", selectID, err)
				}
			}
		}

		out := cmd.OutOrStdout()
		if err := view.Render(ctx, out); err != nil {
			return err
		}

		if !interactive {
			return nil
		}
		return cardview.Interact(ctx, cmd.InOrStdin(), out, view)
	},
}

func init() {
	RootCmd.AddCommand(cardsCmd)

	cardsCmd.Flags().IntP("count", "n", 0, "Number of cards to draw (default from config)")
	cardsCmd.Flags().IntP("select", "s", -1, "Index of a card to select before the first render")
	cardsCmd.Flags().Bool("no-images", false, "Skip fetching card images")
	cardsCmd.Flags().String("prompt", "auto", "Ask for selections: auto, always or never")
}

// wantPrompt resolves the --prompt flag; auto prompts only on a terminal
func wantPrompt(mode string) (bool, error) {
	switch mode {
	case "auto":
		return stdinIsTerminal(), nil
	case "always":
		return true, nil
	case "never":
		return false, nil
	default:
		return false, fmt.Errorf("invalid --prompt value %q: want auto, always or never", mode)
	}
}
