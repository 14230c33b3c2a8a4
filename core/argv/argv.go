// Package argv splits command lines into argument vectors.
//
// Splitting is on runs of whitespace only. There is no quoting, escaping
// or expansion; a token means exactly what was typed.
package argv

import (
	"strings"

	"golang.org/x/sys/unix"
)

// Linux reserves at least this much room for a new program's argument
// list regardless of the stack limit.
const argMaxFloor = 128 * 1024

// MaxTokens reports the most tokens a single command line may carry.
//
// The bound follows the platform's argument-list sizing: a quarter of
// the soft stack limit, never below argMaxFloor. Lookup failures and
// unlimited stacks fall back to the floor.
func MaxTokens() int {
	var lim unix.Rlimit
	if err := unix.Getrlimit(unix.RLIMIT_STACK, &lim); err != nil {
		return argMaxFloor
	}
	if lim.Cur == unix.RLIM_INFINITY {
		return argMaxFloor
	}
	if quarter := lim.Cur / 4; quarter > argMaxFloor {
		return int(quarter)
	}
	return argMaxFloor
}

// Tokenize splits line into whitespace separated tokens.
//
// Blank lines produce a nil vector. Each token is an independent copy so
// callers may keep the vector alive after the line's buffer is reused.
// Tokens beyond MaxTokens are silently dropped.
func Tokenize(line string) []string {
	return tokenize(line, MaxTokens())
}

func tokenize(line string, max int) []string {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return nil
	}
	if len(fields) > max {
		fields = fields[:max]
	}
	out := make([]string, len(fields))
	for i, field := range fields {
		out[i] = strings.Clone(field)
	}
	return out
}
