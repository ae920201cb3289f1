package main

import (
	"flag"
	"fmt"
	"strconv"
	"time"

	"github.com/fatih/color"
	"github.com/rs/zerolog"

	"github.com/qnkhuat/battlechess/pkg/config"
	"github.com/qnkhuat/battlechess/pkg/store"
)

var (
	headerColor = color.New(color.FgCyan, color.Bold)
	winColor    = color.New(color.FgGreen)
	drawColor   = color.New(color.FgYellow)
	openColor   = color.New(color.Faint)
	battleColor = color.New(color.FgRed)
)

// history prints the journal: every game, or the battles of one game when
// its id is given.
func history(args []string) error {
	fs := flag.NewFlagSet("history", flag.ExitOnError)
	configDir := fs.String("config", ".", "directory holding "+config.FileName)
	fs.Parse(args)

	if err := config.Load(*configDir); err != nil {
		return err
	}
	journal, err := store.New(config.GetStoreConfig(), zerolog.Nop())
	if err != nil {
		return err
	}
	defer journal.Close()

	if fs.NArg() == 0 {
		return printGames(journal)
	}
	id, err := strconv.ParseUint(fs.Arg(0), 10, 64)
	if err != nil {
		return fmt.Errorf("game id %q: %w", fs.Arg(0), err)
	}
	return printBattles(journal, uint(id))
}

func printGames(j store.Journal) error {
	games, err := j.Games()
	if err != nil {
		return err
	}
	headerColor.Printf("%-5s %-22s %-20s %-8s %s\n", "ID", "MATCH", "STARTED", "RESULT", "MOVES")
	for _, g := range games {
		c := openColor
		switch g.Outcome {
		case "1-0", "0-1":
			c = winColor
		case "1/2-1/2":
			c = drawColor
		}
		result := g.Outcome
		if g.Method != "" {
			result += " " + g.Method
		}
		fmt.Printf("%-5d %-22s %-20s ", g.ID, g.MatchID, g.StartedAt.Format("2006-01-02 15:04:05"))
		c.Printf("%-8s", result)
		fmt.Printf(" %d\n", g.Moves)
	}
	return nil
}

func printBattles(j store.Journal, gameID uint) error {
	battles, err := j.Battles(gameID)
	if err != nil {
		return err
	}
	headerColor.Printf("%-4s %-8s %-26s %-26s %s\n", "#", "MOVE", "ATTACKER", "DEFENDER", "DONE")
	for _, b := range battles {
		done := "-"
		switch {
		case b.StartedAt == nil:
			done = "never"
		case b.CompletedAt != nil:
			done = b.CompletedAt.Sub(*b.StartedAt).Round(time.Millisecond).String()
		}
		fmt.Printf("%-4d ", b.Seq)
		battleColor.Printf("%-8s", b.SAN)
		fmt.Printf(" %-26s %-26s %s\n",
			fmt.Sprintf("%s %s %s", b.AttackerSide, b.AttackerKind, b.AttackerFrom),
			fmt.Sprintf("%s %s %s", b.DefenderSide, b.DefenderKind, b.DefenderAt),
			done)
	}
	return nil
}
