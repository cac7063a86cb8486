package cmd

import (
	"fmt"
	"io"
	"text/tabwriter"

	"storefront/internal/model"

	"github.com/fatih/color"
)

var (
	offlineBanner = color.New(color.FgYellow, color.Bold)
	noticeColor   = color.New(color.FgYellow)
	errorColor    = color.New(color.FgRed)
)

func printView(out io.Writer, view model.CatalogView) {
	if !view.Online {
		offlineBanner.Fprintln(out, "Offline mode - showing cached data")
	}

	if len(view.Products) == 0 {
		if view.Online {
			fmt.Fprintln(out, "No products found")
		} else {
			fmt.Fprintln(out, "No cached products available")
		}
	} else {
		w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tTITLE\tPRICE\tCATEGORY\tRATING")
		for _, p := range view.Products {
			fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%.1f\n", p.ID, truncate(p.Title, 40), p.Price.StringFixed(2), p.Category, p.Rating)
		}
		w.Flush()
	}

	fmt.Fprintf(out, "\nShowing %d of %d products\n", len(view.Products), view.Total)
	printNotice(out, view.Notice)
}

func printNotice(out io.Writer, n *model.Notice) {
	if n == nil {
		return
	}
	c := noticeColor
	if n.Kind == model.NoticeNoData || n.Kind == model.NoticeOfflineEmpty {
		c = errorColor
	}
	c.Fprintln(out, n.Message)
}

func networkLabel(online bool) string {
	if online {
		return "online"
	}
	return "offline"
}

func truncate(s string, length int) string {
	if len(s) <= length {
		return s
	}
	return s[:length-3] + "..."
}
