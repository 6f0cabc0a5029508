package main

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/mattn/go-isatty"

	"github.com/rpggio/lapledger/internal/domain/ledger"
)

const shortIDLen = 8

// shortID shows the tail of an id. Time-ordered uuids share their leading
// digits, so the tail is what tells them apart.
func shortID(id string) string {
	if len(id) <= shortIDLen {
		return id
	}
	return id[len(id)-shortIDLen:]
}

// matchesID reports whether ref names id in full or as a short form.
func matchesID(id, ref string) bool {
	if ref == "" {
		return false
	}
	return id == ref || strings.HasPrefix(id, ref) || strings.HasSuffix(id, ref)
}

// formatDate renders a stored entry date for display. Unreadable dates are
// shown as stored.
func formatDate(raw string, relative bool, now time.Time) string {
	t, ok := ledger.ParseDate(raw)
	if !ok {
		return raw
	}
	if relative {
		return humanize.RelTime(t, now, "ago", "from now")
	}
	return t.Local().Format("2006-01-02 15:04")
}

func medalLabel(p ledger.Placement) string {
	if p.Rank == 0 {
		return ""
	}
	if emoji := p.Medal.Emoji(); emoji != "" {
		return emoji
	}
	return humanize.Ordinal(p.Rank)
}

func isInteractive(r io.Reader) bool {
	file, ok := r.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}

func onOff(arg string) (bool, bool) {
	switch strings.ToLower(strings.TrimSpace(arg)) {
	case "on", "true", "yes", "1":
		return true, true
	case "off", "false", "no", "0":
		return false, true
	default:
		return false, false
	}
}
