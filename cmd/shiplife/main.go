package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"shiplife/internal/app/drops"
	"shiplife/internal/app/missions"
	"shiplife/internal/app/status"
	"shiplife/internal/bootstrap"
	"shiplife/internal/config"
	"shiplife/internal/domain/drop"
	"shiplife/internal/domain/narration"
)

const usage = `usage: shiplife <command> [flags]

commands:
  status                          print progress and statistics
  board                           list the displayed missions
  mission -id ID -squad a,b       launch a mission
  drop -location ID -guardian ID  play a drop with a fixed strategy
`

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := run(ctx, os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, "shiplife:", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, out io.Writer) error {
	if len(args) == 0 {
		fmt.Fprint(out, usage)
		return errors.New("missing command")
	}
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.SlogLevel()}))

	engine, err := bootstrap.Build(context.WithoutCancel(ctx), cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := engine.Close(context.WithoutCancel(ctx)); cerr != nil {
			logger.Error("final save failed", "error", cerr)
		}
	}()

	p := player{engine: engine, out: out}
	switch cmd, rest := args[0], args[1:]; cmd {
	case "status":
		return p.status(ctx)
	case "board":
		return p.board(ctx)
	case "mission":
		return p.mission(ctx, rest)
	case "drop":
		return p.drop(ctx, rest)
	default:
		fmt.Fprint(out, usage)
		return fmt.Errorf("unknown command %q", cmd)
	}
}

type player struct {
	engine *bootstrap.Engine
	out    io.Writer
	fast   bool
}

func (p player) status(ctx context.Context) error {
	resp, err := p.engine.Status.Execute(ctx, status.Request{})
	if err != nil {
		return err
	}
	st := resp.Statistics
	fmt.Fprintf(p.out, "Missions: %d completed / %d run (%d%% success)\n", st.Missions.Completed, st.Missions.Run, st.Missions.SuccessRate)
	if st.Guardians.MostUsed != "" {
		fmt.Fprintf(p.out, "Most used guardian: %s\n", p.engine.Catalog.GuardianName(st.Guardians.MostUsed))
	}
	fmt.Fprintf(p.out, "Drops: %d total, %d successful, %d failed\n", st.Drops.Total, st.Drops.Successful, st.Drops.Failed)
	fmt.Fprintf(p.out, "Resources: %d items across %d kinds\n", st.Resources.Total, st.Resources.UniqueItems)
	fmt.Fprintf(p.out, "Crafted: %d unique, %d total\n", st.Crafting.Unique, st.Crafting.Total)
	return nil
}

func (p player) board(ctx context.Context) error {
	resp, err := p.engine.Missions.Board(ctx)
	if err != nil {
		return err
	}
	if len(resp.Missions) == 0 {
		fmt.Fprintln(p.out, "No missions available.")
		return nil
	}
	for _, m := range resp.Missions {
		line := fmt.Sprintf("%-20s %-12s difficulty %d", m.ID, m.MissionType, m.Difficulty)
		if m.Anomaly != nil {
			line += "  [anomaly: " + m.Anomaly.Name + "]"
		}
		fmt.Fprintln(p.out, line)
	}
	return nil
}

func (p player) mission(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("mission", flag.ContinueOnError)
	fs.SetOutput(p.out)
	id := fs.String("id", "", "mission id (defaults to the first board mission)")
	squad := fs.String("squad", "", "comma separated guardian ids")
	fs.BoolVar(&p.fast, "fast", false, "print narration without delays")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *id == "" {
		board, err := p.engine.Missions.Board(ctx)
		if err != nil {
			return err
		}
		if len(board.Missions) == 0 {
			return errors.New("no missions on the board")
		}
		*id = board.Missions[0].ID
	}
	resp, err := p.engine.Missions.Launch(ctx, missions.LaunchRequest{MissionID: *id, Squad: splitList(*squad)})
	if err != nil {
		return err
	}
	if err := p.play(ctx, resp.Outcome.Beats); err != nil {
		return err
	}
	for _, r := range resp.Outcome.Rewards {
		fmt.Fprintf(p.out, "+%d %s\n", r.Quantity, p.engine.Catalog.ItemName(r.Item))
	}
	return p.drainNotifications(ctx)
}

func (p player) drop(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("drop", flag.ContinueOnError)
	fs.SetOutput(p.out)
	location := fs.String("location", "", "location id")
	guardian := fs.String("guardian", "", "guardian id")
	strategy := fs.String("strategy", "engage", "engage or avoid")
	fs.BoolVar(&p.fast, "fast", false, "print narration without delays")
	if err := fs.Parse(args); err != nil {
		return err
	}

	step, err := p.engine.Drops.Start(ctx, drops.StartRequest{LocationID: *location, GuardianID: *guardian})
	if err != nil {
		return err
	}
	for {
		if err := p.play(ctx, step.Step.Beats); err != nil {
			return err
		}
		if step.Step.Phase == drop.PhaseExtraction {
			break
		}
		choice := pickChoice(*strategy, step.Step.Phase)
		fmt.Fprintf(p.out, "> %s\n", choice)
		if step, err = p.engine.Drops.Choose(ctx, drops.ChoiceRequest{SessionID: step.Session.ID, Choice: string(choice)}); err != nil {
			return err
		}
	}

	res, err := p.engine.Drops.Extract(ctx, drops.ExtractRequest{SessionID: step.Session.ID})
	if err != nil {
		return err
	}
	if err := p.play(ctx, res.Results.Beats); err != nil {
		return err
	}
	for _, r := range res.Results.Recovered {
		fmt.Fprintf(p.out, "+%d %s\n", r.Quantity, p.engine.Catalog.ItemName(r.Item))
	}
	return p.drainNotifications(ctx)
}

func pickChoice(strategy string, phase drop.Phase) drop.Choice {
	if strategy == string(drop.ChoiceAvoid) {
		if phase == drop.PhaseDetected {
			return drop.ChoiceFlee
		}
		return drop.ChoiceAvoid
	}
	return drop.ChoiceEngage
}

// play reveals beats at their pace. An interrupt skips to the end instead of
// aborting, since the outcome is already decided.
func (p player) play(ctx context.Context, beats []narration.Beat) error {
	pb := narration.NewPlayback(beats)
	sleep := narration.RealSleep
	if p.fast {
		sleep = func(context.Context, time.Duration) error { return nil }
	}
	err := pb.Play(ctx, sleep, p.emit)
	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	for _, b := range pb.Skip() {
		p.emit(b)
	}
	return nil
}

func (p player) emit(b narration.Beat) {
	switch b.Kind {
	case narration.KindDialogue:
		fmt.Fprintf(p.out, "%s: %s\n", b.Speaker, b.Text)
	case narration.KindSystem, narration.KindExtraction:
		fmt.Fprintf(p.out, "** %s **\n", b.Text)
	case narration.KindProgress:
		fmt.Fprintf(p.out, "[%3.0f%%] %s\n", b.Progress, b.Text)
	default:
		fmt.Fprintln(p.out, b.Text)
	}
}

func (p player) drainNotifications(ctx context.Context) error {
	resp, err := p.engine.Notifications.Execute(ctx)
	if err != nil {
		return err
	}
	for _, n := range resp.Notifications {
		fmt.Fprintf(p.out, "(%s) %s\n", n.Kind, n.Message)
	}
	return nil
}

func splitList(raw string) []string {
	var out []string
	for _, v := range strings.Split(raw, ",") {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
