package cli

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/magabrotheeeer/notes-client/internal/models"
)

func table(w io.Writer, header string, rows [][]string) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, header)
	for _, r := range rows {
		fmt.Fprintln(tw, strings.Join(r, "\t"))
	}
	return tw.Flush()
}

func date(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Local().Format("2006-01-02")
}

func quota(acc *models.Account) string {
	if acc == nil {
		return "-"
	}
	if acc.Unlimited() {
		return fmt.Sprintf("%d notes (unlimited)", acc.NoteCount)
	}
	return fmt.Sprintf("%d/%d notes (%.0f%%)", acc.NoteCount, acc.Limit, acc.UsagePercent())
}

func pages(p models.Pagination, noun string) string {
	return fmt.Sprintf("page %d/%d, %d %s", p.Page, max(p.Pages, 1), p.Total, noun)
}

func tags(t []string) string {
	if len(t) == 0 {
		return "-"
	}
	return strings.Join(t, ", ")
}

func status(active bool) string {
	if active {
		return "Active"
	}
	return "Pending"
}
