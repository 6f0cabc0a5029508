package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rpggio/lapledger/internal/domain/ledger"
)

func TestFormatDate(t *testing.T) {
	now := time.Date(2024, 5, 3, 12, 0, 0, 0, time.UTC)

	assert.Equal(t, "2 days ago", formatDate("2024-05-01T12:00:00.000Z", true, now))
	assert.Equal(t, "not a date", formatDate("not a date", true, now))
	assert.NotEmpty(t, formatDate("2024-05-01T12:00:00.000Z", false, now))
}

func TestMedalLabel(t *testing.T) {
	assert.Equal(t, "🥇", medalLabel(ledger.Placement{Rank: 1, Medal: ledger.MedalGold}))
	assert.Equal(t, "4th", medalLabel(ledger.Placement{Rank: 4}))
	assert.Empty(t, medalLabel(ledger.Placement{}))
}

func TestShortIDAndMatch(t *testing.T) {
	id := "0190f5c2-7a1b-7c3d-8e4f-a1b2c3d4e5f6"
	assert.Equal(t, "c3d4e5f6", shortID(id))
	assert.True(t, matchesID(id, "c3d4e5f6"))
	assert.True(t, matchesID(id, "0190f5c2"))
	assert.False(t, matchesID(id, ""))
	assert.False(t, matchesID(id, "zzzz"))
}

func TestOnOff(t *testing.T) {
	on, ok := onOff("ON")
	assert.True(t, ok)
	assert.True(t, on)
	_, ok = onOff("sometimes")
	assert.False(t, ok)
}

func TestRenderTable(t *testing.T) {
	out := renderTable([]string{"Circuit", "Time"}, [][]string{{"Mario Circuit", "1:20.000"}, {"Short"}}, []columnAlignment{alignLeft, alignRight})
	assert.Contains(t, out, "Mario Circuit")
	assert.Contains(t, out, "1:20.000")
	assert.Equal(t, "", renderTable(nil, nil, nil))
}

func TestLogFileWriterTruncates(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "lapledger.log")
	w, file, err := newLogFileWriter(path)
	require.NoError(t, err)
	defer file.Close()
	w.maxSize = 64
	w.keepSize = 32

	_, err = w.Write([]byte(strings.Repeat("a", 60) + "\n"))
	require.NoError(t, err)
	_, err = w.Write([]byte(strings.Repeat("b", 20) + "\n"))
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Len(t, data, 32)
	assert.True(t, strings.HasSuffix(string(data), strings.Repeat("b", 20)+"\n"))
}

func TestParseLogLevel(t *testing.T) {
	assert.Equal(t, "DEBUG", parseLogLevel("debug").String())
	assert.Equal(t, "WARN", parseLogLevel(" WARN ").String())
	assert.Equal(t, "INFO", parseLogLevel("bogus").String())
}
