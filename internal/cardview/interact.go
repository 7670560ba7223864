package cardview

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Interact reads card numbers from in and selects them, re-rendering the
// view to out after every selection. It stops at EOF or on "q".
func Interact(ctx context.Context, in io.Reader, out io.Writer, v *View) error {
	if len(v.cards) == 0 {
		return nil
	}

	prompt := fmt.Sprintf("Select a card [%d-%d] or q to quit: ", v.cards[0].ID, v.cards[len(v.cards)-1].ID)
	scanner := bufio.NewScanner(in)
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		fmt.Fprint(out, prompt)
		if !scanner.Scan() {
			fmt.Fprintln(out)
			return scanner.Err()
		}

		input := strings.TrimSpace(scanner.Text())
		switch strings.ToLower(input) {
		case "":
			continue
		case "q", "quit", "exit":
			return nil
		}

		id, err := strconv.Atoi(input)
		if err != nil {
			fmt.Fprintf(out, "Not a card number: %q\n", input)
			continue
		}
		if err := v.Select(id); err != nil {
			fmt.Fprintf(out, "No card %d in this draw\n", id)
			continue
		}

		fmt.Fprintln(out)
		if err := v.Render(ctx, out); err != nil {
			return err
		}
	}
}
