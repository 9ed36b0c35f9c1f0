// Package display renders statistics as plain-text tables for the terminal.
package display

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/ramonehamilton/EDH-Tracker/internal/colors"
	"github.com/ramonehamilton/EDH-Tracker/internal/friends"
	"github.com/ramonehamilton/EDH-Tracker/internal/storage/models"
)

const rule = "═══════════════════════════════════════════════════════════════"

// Printer writes tables to an output stream.
type Printer struct {
	w io.Writer
}

// NewPrinter creates a Printer writing to w.
func NewPrinter(w io.Writer) *Printer {
	return &Printer{w: w}
}

func (p *Printer) section(title string) {
	fmt.Fprintf(p.w, "\n%s\n%s\n%s\n", rule, title, rule)
}

func (p *Printer) table(header string, rows func(tw *tabwriter.Writer)) error {
	tw := tabwriter.NewWriter(p.w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, header)
	rows(tw)
	return tw.Flush()
}

// Dashboard prints every section of d.
func (p *Printer) Dashboard(d models.Dashboard) error {
	steps := []func() error{
		func() error { return p.Overview(d.Overview) },
		func() error { return p.Decks(d.Decks) },
		func() error { return p.Monthly(d.Monthly) },
		func() error { return p.Colors(d.Colors) },
		func() error { return p.Commanders(d.Commanders) },
		func() error { return p.Buddies(d.Buddies) },
	}
	for _, step := range steps {
		if err := step(); err != nil {
			return err
		}
	}
	return nil
}

// Overview prints the headline counters.
func (p *Printer) Overview(o models.OverviewStats) error {
	p.section("Overview")
	mostPlayed := "—"
	if o.MostPlayedDeck != nil {
		mostPlayed = *o.MostPlayedDeck
	}
	return p.table("STAT\tVALUE", func(tw *tabwriter.Writer) {
		fmt.Fprintf(tw, "Games\t%d\n", o.TotalGames)
		fmt.Fprintf(tw, "Record\t%d-%d\n", o.Wins, o.Losses)
		fmt.Fprintf(tw, "Win rate\t%d%%\n", o.WinRate)
		fmt.Fprintf(tw, "Current streak\t%s\n", o.CurrentStreak)
		fmt.Fprintf(tw, "Longest win streak\t%d\n", o.LongestWinStreak)
		fmt.Fprintf(tw, "Longest loss streak\t%d\n", o.LongestLossStreak)
		fmt.Fprintf(tw, "Most played deck\t%s\n", mostPlayed)
		fmt.Fprintf(tw, "Games per month\t%.1f\n", o.AvgGamesPerMonth)
		fmt.Fprintf(tw, "Decks\t%d (%d active)\n", o.TotalDecks, o.ActiveDecks)
	})
}

// Decks prints per-deck records.
func (p *Printer) Decks(stats []models.DeckStat) error {
	p.section("Decks")
	if len(stats) == 0 {
		fmt.Fprintln(p.w, "No decks yet.")
		return nil
	}
	return p.table("DECK\tW\tL\tGAMES\tWIN%", func(tw *tabwriter.Writer) {
		for _, s := range stats {
			fmt.Fprintf(tw, "%s\t%d\t%d\t%d\t%d%%\n", s.Name, s.Wins, s.Losses, s.Total, s.WinRate)
		}
	})
}

// Monthly prints wins and losses per month.
func (p *Printer) Monthly(stats []models.MonthlyStat) error {
	p.section("Monthly")
	if len(stats) == 0 {
		fmt.Fprintln(p.w, "No games logged.")
		return nil
	}
	return p.table("MONTH\tW\tL\t", func(tw *tabwriter.Writer) {
		for _, s := range stats {
			fmt.Fprintf(tw, "%s\t%d\t%d\t%s\n", s.Month, s.Wins, s.Losses, bar(s.Wins, s.Losses))
		}
	})
}

// Colors prints winning color identities.
func (p *Printer) Colors(stats []models.ColorStat) error {
	p.section("Winning colors")
	if len(stats) == 0 {
		fmt.Fprintln(p.w, "No winners recorded.")
		return nil
	}
	return p.table("COLORS\tWINS", func(tw *tabwriter.Writer) {
		for _, s := range stats {
			fmt.Fprintf(tw, "%s\t%d\n", colors.Label(s.Colors), s.Count)
		}
	})
}

// Commanders prints the most faced opposing commanders.
func (p *Printer) Commanders(stats []models.FacedCommanderStat) error {
	p.section("Most faced commanders")
	if len(stats) == 0 {
		fmt.Fprintln(p.w, "No opponents recorded.")
		return nil
	}
	return p.table("COMMANDER\tFACED\tWON\tWIN%", func(tw *tabwriter.Writer) {
		for _, s := range stats {
			fmt.Fprintf(tw, "%s\t%d\t%d\t%d%%\n", s.Name, s.TimesFaced, s.WinsAgainst, s.WinRate)
		}
	})
}

// Buddies prints the record against each pod buddy.
func (p *Printer) Buddies(stats []models.BuddyStat) error {
	p.section("Pod buddies")
	if len(stats) == 0 {
		fmt.Fprintln(p.w, "No pod buddies recorded.")
		return nil
	}
	return p.table("BUDDY\tW\tL\tGAMES\tWIN%", func(tw *tabwriter.Writer) {
		for _, s := range stats {
			fmt.Fprintf(tw, "%s\t%d\t%d\t%d\t%d%%\n", s.Name, s.Wins, s.Losses, s.Total, s.WinRate)
		}
	})
}

// Streaks prints streak counters.
func (p *Printer) Streaks(s models.StreakStats) error {
	p.section("Streaks")
	return p.table("STREAK\tGAMES", func(tw *tabwriter.Writer) {
		fmt.Fprintf(tw, "Current\t%d\n", s.CurrentStreak)
		fmt.Fprintf(tw, "Longest win\t%d\n", s.LongestWinStreak)
		fmt.Fprintf(tw, "Longest loss\t%d\n", s.LongestLossStreak)
	})
}

// Lifetime prints games played per month for each year.
func (p *Printer) Lifetime(l models.LifetimeGP) error {
	p.section("Games played by year")
	if len(l.Years) == 0 {
		fmt.Fprintln(p.w, "No games logged.")
		return nil
	}
	return p.table("MONTH\t"+strings.Join(l.Years, "\t"), func(tw *tabwriter.Writer) {
		for _, point := range l.Data {
			cells := make([]string, 0, len(l.Years)+1)
			cells = append(cells, point.Month)
			for _, y := range l.Years {
				cells = append(cells, fmt.Sprint(point.Counts[y]))
			}
			fmt.Fprintln(tw, strings.Join(cells, "\t"))
		}
	})
}

// Reconcile prints a repair report.
func (p *Printer) Reconcile(report *friends.ReconcileReport, dryRun bool) {
	verb := "Removed"
	if dryRun {
		verb = "Would remove"
	}
	fmt.Fprintf(p.w, "Scanned %d profiles\n", report.ProfilesScanned)
	fmt.Fprintf(p.w, "%s %d friend entries and %d requests\n", verb, report.FriendsRemoved, report.RequestsRemoved)
	for _, change := range report.Changes {
		fmt.Fprintf(p.w, "  • %s\n", change)
	}
}

// Any prints a statistic returned by stats.Compute.
func (p *Printer) Any(v interface{}) error {
	switch s := v.(type) {
	case models.Dashboard:
		return p.Dashboard(s)
	case models.OverviewStats:
		return p.Overview(s)
	case []models.DeckStat:
		return p.Decks(s)
	case []models.MonthlyStat:
		return p.Monthly(s)
	case []models.ColorStat:
		return p.Colors(s)
	case []models.FacedCommanderStat:
		return p.Commanders(s)
	case []models.BuddyStat:
		return p.Buddies(s)
	case models.LifetimeGP:
		return p.Lifetime(s)
	case models.StreakStats:
		return p.Streaks(s)
	default:
		return fmt.Errorf("cannot display %T", v)
	}
}

// bar draws wins as '█' and losses as '░'.
func bar(wins, losses int) string {
	return strings.Repeat("█", wins) + strings.Repeat("░", losses)
}
