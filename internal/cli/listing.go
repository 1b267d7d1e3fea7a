package cli

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"

	"github.com/dmitrijs2005/kbloader/internal/catalog"
	"github.com/dmitrijs2005/kbloader/internal/ledger"
)

const (
	labelPending = "pending upload"
	labelNone    = "-"
)

// statusText is the human-readable form of an entry state.
func statusText(s catalog.State, reason string) string {
	switch s {
	case catalog.StatePending:
		return labelPending
	case catalog.StatePublishingBlob:
		return "uploading blob..."
	case catalog.StateRegisteringMetadata:
		return "registering..."
	case catalog.StateSucceeded:
		return "✓ done"
	case catalog.StateFailed:
		return "✗ failed: " + reason
	default:
		return labelNone
	}
}

func statusColor(s catalog.State) *color.Color {
	switch {
	case s == catalog.StateSucceeded:
		return color.New(color.FgGreen)
	case s.InProgress():
		return color.New(color.FgBlue)
	case s == catalog.StateFailed:
		return color.New(color.FgRed)
	default:
		return color.New(color.Faint)
	}
}

// listingHeader summarizes the listing the way the table below it is
// filtered: hidden system files are only mentioned while they are hidden.
func listingHeader(st catalog.Stats, shown int, showNoise bool) string {
	h := fmt.Sprintf("Files (%d files", shown)
	if !showNoise && st.Hidden > 0 {
		h += fmt.Sprintf(", %d system files hidden", st.Hidden)
	}
	h += ")"

	if st.Eligible > 0 {
		h += fmt.Sprintf(" | %d PDF", st.Eligible)
		if st.Uploaded > 0 {
			h += fmt.Sprintf(" (%d uploaded)", st.Uploaded)
		}
	}
	if st.InFlight > 0 {
		h += fmt.Sprintf(" | %d uploading", st.InFlight)
	}
	return h
}

func remoteKeyText(e catalog.Entry) string {
	switch {
	case e.RemoteKey != "":
		return e.RemoteKey
	case e.Eligible:
		return labelPending
	default:
		return labelNone
	}
}

// renderListing writes the header and a table of entries to w. Only the
// status column is coloured so that column alignment is unaffected.
func renderListing(w io.Writer, st catalog.Stats, entries []catalog.Entry, showNoise, colorize bool) {
	fmt.Fprintln(w, listingHeader(st, len(entries), showNoise))
	if len(entries) == 0 {
		return
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tSIZE\tMD5\tREMOTE KEY\tSTATUS")
	for _, e := range entries {
		name := e.Path
		if e.Eligible {
			name += " [PDF]"
		}

		c := statusColor(e.State)
		if colorize {
			c.EnableColor()
		} else {
			c.DisableColor()
		}

		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
			name,
			humanize.IBytes(uint64(e.Size)),
			e.Fingerprint,
			remoteKeyText(e),
			c.Sprint(statusText(e.State, e.Reason)))
	}
	_ = tw.Flush()
}

func renderHistory(w io.Writer, recs []ledger.Record) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tWHEN\tENV\tFILE\tSIZE\tSTATE\tREMOTE KEY")
	for _, r := range recs {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\t%s\n",
			r.ID,
			humanize.Time(r.CreatedAt),
			r.Environment,
			r.FileName,
			humanize.IBytes(uint64(r.Size)),
			historyState(r),
			orNone(r.RemoteKey))
	}
	_ = tw.Flush()
}

func historyState(r ledger.Record) string {
	if r.Reason != "" {
		return r.State + ": " + r.Reason
	}
	return r.State
}

func orNone(s string) string {
	if s == "" {
		return labelNone
	}
	return s
}

