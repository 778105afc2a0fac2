package utils

import (
	"context"
	"log"
	"runtime/debug"
	"strings"
	"unicode/utf8"

	"golang-stock-insight/pkg/logger"
)

// GoSafe runs fn in a new goroutine and recovers from panics so a single
// misbehaving task cannot take the whole service down.
func GoSafe(fn func()) {
	go func() {
		defer func() {
			if r := recover(); r != nil {
				log.Printf("recovered from panic: %v\n%s", r, debug.Stack())
			}
		}()
		fn()
	}()
}

// ShouldContinue reports whether the context is still alive, logging once
// when it is not.
func ShouldContinue(ctx context.Context, log *logger.Logger) bool {
	select {
	case <-ctx.Done():
		log.Info("Context cancelled, stopping work", logger.ErrorField(ctx.Err()))
		return false
	default:
		return true
	}
}

// CleanToValidUTF8 strips invalid UTF-8 sequences and NUL bytes that Postgres
// rejects in text columns.
func CleanToValidUTF8(s string) string {
	s = strings.ToValidUTF8(s, "")
	return strings.ReplaceAll(s, "\x00", "")
}

// SafeText truncates s to a sane length and guarantees the result is valid
// UTF-8 at the cut point.
func SafeText(s string) string {
	const maxLen = 100_000
	s = CleanToValidUTF8(s)
	if len(s) <= maxLen {
		return s
	}
	cut := s[:maxLen]
	for !utf8.ValidString(cut) && len(cut) > 0 {
		cut = cut[:len(cut)-1]
	}
	return cut
}
