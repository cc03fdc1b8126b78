package app

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/ncruces/zenity"

	"github.com/techtalk/clip-translator/internal/storage"
	"github.com/techtalk/clip-translator/internal/ui"
)

type usagePeriod struct {
	label string
	since time.Time
}

func usagePeriods(now time.Time) []usagePeriod {
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	return []usagePeriod{
		{"Today", today},
		{"Last 30 days", today.AddDate(0, 0, -29)},
		{"All time", time.Time{}},
	}
}

// usageReport summarizes the ledger for the Usage dialog.
func usageReport(ctx context.Context, db *storage.DB, now time.Time) (string, error) {
	var sb strings.Builder
	for i, p := range usagePeriods(now) {
		u, err := db.Totals(ctx, p.since)
		if err != nil {
			return "", err
		}
		if i > 0 {
			sb.WriteString("\n\n")
		}
		fmt.Fprintf(&sb, "%s: %d translation(s)", p.label, u.Translations)
		if u.Failures > 0 {
			fmt.Fprintf(&sb, ", %d failed", u.Failures)
		}
		fmt.Fprintf(&sb, "\n%d input / %d output tokens, $%.4f", u.InputTokens, u.OutputTokens, u.CostUSD)
	}

	recent, err := db.Recent(ctx, 1)
	if err != nil {
		return "", err
	}
	if len(recent) == 1 {
		t := recent[0]
		fmt.Fprintf(&sb, "\n\nLast translation: %s with %s", t.CreatedAt.Format("2006-01-02 15:04"), t.Model)
		if !t.Success {
			fmt.Fprintf(&sb, " (failed: %s)", t.ErrorMessage)
		}
	}
	return sb.String(), nil
}

func (a *Application) onUsage() {
	if a.ledger == nil {
		a.notifier.ShowAdminNotification(ui.LevelWarn, "Usage", "Usage history is not available.")
		return
	}
	report, err := usageReport(a.ctx, a.ledger, time.Now())
	if err != nil {
		log.Printf("Could not read usage: %v", err)
		a.notifier.ShowAdminNotification(ui.LevelError, "Usage", err.Error())
		return
	}
	if err := a.prompter.Info(report, zenity.Title(AppName+" - Usage")); err != nil {
		log.Printf("Error showing usage dialog: %v", err)
	}
}
