/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"

	"github.com/skip2/go-qrcode"

	"github.com/Seednode/hitster/internal/catalog"
	"github.com/Seednode/hitster/internal/deck"
	"github.com/Seednode/hitster/internal/session"
)

const replHelp = `commands:
  next      advance to the next card and pass the turn
  prev      go back one card
  goto N    jump to card N, to line up with another screen
  reveal    show or hide the answer (game screen only)
  show      print the current card
  leave     end the session and forget it
  quit      exit, keeping the session for next time`

// lockedWriter serializes output from the prompt and from remote updates.
type lockedWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (l *lockedWriter) println(s string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	fmt.Fprintln(l.w, s)
}

func formatCard(c *catalog.SongCard) string {
	return fmt.Sprintf("%q by %s (%d, %s)", c.Title, c.Artist, c.Year, c.Genre)
}

func formatSnapshot(s session.Snapshot) string {
	if !s.Active {
		return "no active session"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "[%s %s] card %d/%d, player %d of %d",
		s.Code, genresLabel(s.Config), s.Index+1, s.Total, s.CurrentPlayer, s.PlayerCount)

	switch {
	case s.Card == nil:
	case s.Role == session.RoleDJ:
		fmt.Fprintf(&b, "\n  play: %s", formatCard(s.Card))
		if s.Links != nil {
			fmt.Fprintf(&b, "\n  open: %s", s.Links.Web)
		}
	case s.Reveal:
		fmt.Fprintf(&b, "\n  answer: %s", formatCard(s.Card))
	default:
		b.WriteString("\n  answer hidden, type reveal")
	}

	return b.String()
}

func genresLabel(cfg deck.SeedConfig) string {
	if len(cfg.Genres) == 0 {
		return "all genres"
	}
	return cfg.String()
}

// startOrResume resumes the persisted session unless a different code was
// asked for, in which case a fresh one replaces it.
func startOrResume(cfg *Config, ctl *session.Controller, role session.Role) (bool, error) {
	if ctl.Load() {
		if cfg.code == "" || deck.NormalizeCode(cfg.code) == ctl.Snapshot().Code {
			ctl.CatchUp()
			return true, nil
		}
		ctl.Leave()
	}

	code := cfg.code
	if code == "" {
		var err error
		code, err = deck.GenerateCode()
		if err != nil {
			return false, err
		}
	}

	if _, err := ctl.Start(role, code, deck.ParseGenres(cfg.genres), cfg.players); err != nil {
		return false, err
	}
	ctl.CatchUp()

	return false, nil
}

func runPlay(ctx context.Context, cfg *Config, b *backend, in io.Reader, out io.Writer) error {
	role, err := session.ParseRole(cfg.role)
	if err != nil {
		return err
	}

	ctl, err := b.controller(string(role))
	if err != nil {
		return err
	}
	defer ctl.Close()

	resumed, err := startOrResume(cfg, ctl, role)
	if err != nil {
		return err
	}

	w := &lockedWriter{w: out}

	snap := ctl.Snapshot()
	if resumed {
		w.println("resumed session " + snap.Code)
	} else {
		w.println("started session " + snap.Code + ", share this code with the other screen")
	}
	w.println(formatSnapshot(snap))

	ctl.OnChange(func(s session.Snapshot) { w.println(formatSnapshot(s)) })

	return runRepl(ctx, in, w, ctl)
}

var errQuit = errors.New("quit")

func execute(line string, w *lockedWriter, ctl *session.Controller) error {
	fields := strings.Fields(strings.ToLower(line))
	if len(fields) == 0 {
		return nil
	}

	var err error
	switch fields[0] {
	case "next", "n":
		_, err = ctl.Step(1, true)
	case "prev", "p":
		_, err = ctl.Step(-1, false)
	case "goto", "g":
		if len(fields) != 2 {
			return errors.New("usage: goto N")
		}
		n, convErr := strconv.Atoi(fields[1])
		if convErr != nil {
			return fmt.Errorf("not a card number: %q", fields[1])
		}
		_, err = ctl.ChangeIndex(n-1, false)
	case "reveal", "r":
		_, err = ctl.ToggleReveal()
	case "show", "s":
		w.println(formatSnapshot(ctl.Snapshot()))
	case "leave":
		ctl.Leave()
		return errQuit
	case "quit", "exit", "q":
		return errQuit
	case "help", "h", "?":
		w.println(replHelp)
	default:
		return fmt.Errorf("unknown command %q, type help", fields[0])
	}

	return err
}

func runRepl(ctx context.Context, in io.Reader, w *lockedWriter, ctl *session.Controller) error {
	lines := make(chan string)

	go func() {
		defer close(lines)

		sc := bufio.NewScanner(in)
		for sc.Scan() {
			select {
			case lines <- sc.Text():
			case <-ctx.Done():
				return
			}
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case line, ok := <-lines:
			if !ok {
				return nil
			}

			err := execute(line, w, ctl)
			if errors.Is(err, errQuit) {
				return nil
			}
			if err != nil {
				w.println("error: " + err.Error())
			}
		}
	}
}

func printDeck(out io.Writer, cards []catalog.SongCard) error {
	for i, c := range cards {
		if _, err := fmt.Fprintf(out, "%3d  %-10s %s\n", i+1, c.ID, formatCard(&c)); err != nil {
			return err
		}
	}
	return nil
}

func printCode(out io.Writer, genres string, qr bool) error {
	code, err := deck.GenerateCode()
	if err != nil {
		return err
	}

	if _, err := fmt.Fprintln(out, code); err != nil {
		return err
	}
	if !qr {
		return nil
	}

	q, err := qrcode.New(shareText(code, deck.ParseGenres(genres)), qrcode.Medium)
	if err != nil {
		return err
	}

	_, err = fmt.Fprint(out, q.ToSmallString(false))
	return err
}
