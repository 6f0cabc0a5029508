package laptime

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// MaxDigits is the number of keystroke digits the input mask keeps.
const MaxDigits = 7

// MaxMaskLength bounds ParseMask output: two minute digits, colon, two
// second digits, dot, three millisecond digits.
const MaxMaskLength = 9

var (
	strictPattern  = regexp.MustCompile(`^\d{1,2}:[0-5]\d\.\d{3}$`)
	lenientPattern = regexp.MustCompile(`^\d+:\d{2}\.\d{3}$`)

	// ErrInvalidTime indicates a string that cannot be read as a race time.
	ErrInvalidTime = errors.New("invalid race time")
)

// ParseMask turns raw keystrokes into the progressive M:SS.mmm mask.
// Non-digits are dropped and only the first MaxDigits digits are kept.
// Digits fill from the right: the last three are milliseconds once four or
// more are present, the two before them are seconds (clamped to 59) and the
// remainder is minutes.
func ParseMask(raw string) string {
	digits := make([]byte, 0, MaxDigits)
	for i := 0; i < len(raw) && len(digits) < MaxDigits; i++ {
		if raw[i] >= '0' && raw[i] <= '9' {
			digits = append(digits, raw[i])
		}
	}

	n := len(digits)
	switch {
	case n == 0:
		return ""
	case n == 1:
		return string(digits)
	case n <= 3:
		minutes := string(digits[:n-2])
		if minutes == "" {
			minutes = "0"
		}
		return minutes + ":" + clampSeconds(string(digits[n-2:]))
	default:
		millis := string(digits[n-3:])
		rest := string(digits[:n-3])
		if len(rest) < 2 {
			rest = "0" + rest
		}
		seconds := rest[len(rest)-2:]
		minutes := rest[:len(rest)-2]
		if minutes == "" {
			minutes = "0"
		}
		return minutes + ":" + clampSeconds(seconds) + "." + millis
	}
}

func clampSeconds(s string) string {
	v, err := strconv.Atoi(s)
	if err != nil || v > 59 {
		return "59"
	}
	return s
}

// IsValidStrict reports whether s is a complete time as typed by a user:
// one or two minute digits, seconds 00-59 and exactly three millisecond digits.
func IsValidStrict(s string) bool {
	return strictPattern.MatchString(s)
}

// IsValidLenient reports whether s is acceptable in an imported spreadsheet.
// Minutes are unbounded and seconds are not range checked.
func IsValidLenient(s string) bool {
	return lenientPattern.MatchString(s)
}

// ToSeconds converts a time string to seconds for comparison. It does not
// validate; anything unreadable yields NaN.
func ToSeconds(s string) float64 {
	parts := strings.Split(s, ":")
	switch len(parts) {
	case 1:
		return parseFloat(parts[0])
	case 2:
		return parseFloat(parts[0])*60 + parseFloat(parts[1])
	default:
		return math.NaN()
	}
}

func parseFloat(s string) float64 {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return math.NaN()
	}
	return v
}

// ToDuration parses a lenient-grammar time into a duration.
func ToDuration(s string) (time.Duration, error) {
	if !IsValidLenient(s) {
		return 0, fmt.Errorf("%w: %q", ErrInvalidTime, s)
	}
	minutes, rest, _ := strings.Cut(s, ":")
	secs, millis, _ := strings.Cut(rest, ".")
	m, err := strconv.ParseInt(minutes, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidTime, s)
	}
	sec, _ := strconv.ParseInt(secs, 10, 64)
	ms, _ := strconv.ParseInt(millis, 10, 64)
	return time.Duration(m)*time.Minute + time.Duration(sec)*time.Second + time.Duration(ms)*time.Millisecond, nil
}

// FromDuration formats d as M:SS.mmm. Negative durations format as zero.
func FromDuration(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	ms := d.Milliseconds()
	return fmt.Sprintf("%d:%02d.%03d", ms/60000, (ms/1000)%60, ms%1000)
}
