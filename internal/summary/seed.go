package summary

import (
	"regexp"
	"strconv"
	"strings"
)

const (
	argsPrefix = "# ARGS"
	seedPrefix = "SEED:"
)

var argsSeedPattern = regexp.MustCompile(`(?i)seed\s*=\s*(\d+)`)

// ExtractSeed recovers the run seed from header cells.
//
// The first cell starting with "# ARGS" is searched for "seed=<digits>"
// (case-insensitive). Failing that, the first cell starting with "SEED:"
// is parsed after the colon. Malformed or absent metadata yields false.
func ExtractSeed(headers []string) (int64, bool) {
	if args, ok := firstWithPrefix(headers, argsPrefix); ok {
		if m := argsSeedPattern.FindStringSubmatch(args); m != nil {
			if seed, err := strconv.ParseInt(m[1], 10, 64); err == nil {
				return seed, true
			}
		}
	}

	if cell, ok := firstWithPrefix(headers, seedPrefix); ok {
		_, rest, _ := strings.Cut(cell, ":")
		seed, err := strconv.ParseInt(strings.TrimSpace(rest), 10, 64)
		if err != nil {
			return 0, false
		}
		return seed, true
	}

	return 0, false
}

func firstWithPrefix(headers []string, prefix string) (string, bool) {
	for _, h := range headers {
		if strings.HasPrefix(h, prefix) {
			return h, true
		}
	}
	return "", false
}

// ParseArgs returns the simulator parameters recorded in the header.
// Every key=value token of the first "# ARGS" cell is kept as text. Without
// such a cell, a "SEED:" cell yields only "seed". Tokens without "=" are
// ignored; later duplicates win.
func ParseArgs(headers []string) map[string]string {
	args := make(map[string]string)

	if cell, ok := firstWithPrefix(headers, argsPrefix); ok {
		for _, token := range strings.Fields(strings.TrimPrefix(cell, argsPrefix)) {
			key, value, found := strings.Cut(token, "=")
			key = strings.TrimSpace(key)
			if !found || key == "" {
				continue
			}
			args[key] = strings.TrimSpace(value)
		}
		return args
	}

	if cell, ok := firstWithPrefix(headers, seedPrefix); ok {
		_, rest, _ := strings.Cut(cell, ":")
		args["seed"] = strings.TrimSpace(rest)
	}
	return args
}
