// Package authors loads the svn_user -> "Full Name <email>" mapping file
// and resolves dump-stream usernames to commit identities, synthesizing
// a fallback identity (with a once-per-user warning) for unmapped users.
package authors

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/gitbridge/svn2git/internal/gitstore"
)

// Map resolves svn usernames to git identities.
type Map struct {
	entries map[string]gitstore.Signature

	mu      sync.Mutex
	warned  map[string]bool
	onWarn  func(user string)
}

// New returns an empty Map; Resolve will synthesize identities for every
// user until entries are loaded via Load.
func New() *Map {
	return &Map{entries: make(map[string]gitstore.Signature), warned: make(map[string]bool)}
}

// OnUnmapped installs a callback invoked the first time a given username
// falls back to a synthetic identity (wired to logging by the CLI/
// converter layer).
func (m *Map) OnUnmapped(fn func(user string)) { m.onWarn = fn }

// Load parses a line-based authors file: "svn_user = Full Name
// <email@host>"; lines starting with "#" are comments, blank lines are
// ignored.
func Load(path string) (*Map, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("authors: opening %s: %w", path, err)
	}
	defer f.Close()
	return parse(f)
}

func parse(r io.Reader) (*Map, error) {
	m := New()
	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		user, sig, err := parseLine(line)
		if err != nil {
			return nil, fmt.Errorf("authors: line %d: %w", lineNo, err)
		}
		m.entries[user] = sig
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("authors: reading: %w", err)
	}
	return m, nil
}

func parseLine(line string) (user string, sig gitstore.Signature, err error) {
	parts := strings.SplitN(line, "=", 2)
	if len(parts) != 2 {
		return "", gitstore.Signature{}, fmt.Errorf("malformed line %q", line)
	}
	user = strings.TrimSpace(parts[0])
	rest := strings.TrimSpace(parts[1])

	open := strings.LastIndex(rest, "<")
	closeIdx := strings.LastIndex(rest, ">")
	if open < 0 || closeIdx < open {
		return "", gitstore.Signature{}, fmt.Errorf("malformed identity %q", rest)
	}
	name := strings.TrimSpace(rest[:open])
	email := strings.TrimSpace(rest[open+1 : closeIdx])
	if name == "" || email == "" {
		return "", gitstore.Signature{}, fmt.Errorf("malformed identity %q", rest)
	}
	return user, gitstore.Signature{Name: name, Email: email}, nil
}

// Resolve returns the mapped identity for user, or a synthetic
// "<user> <user@localhost>" identity if none is mapped. The synthetic
// fallback triggers OnUnmapped exactly once per distinct user.
func (m *Map) Resolve(user string) gitstore.Signature {
	if sig, ok := m.entries[user]; ok {
		return sig
	}

	m.mu.Lock()
	firstWarning := !m.warned[user]
	m.warned[user] = true
	m.mu.Unlock()

	if firstWarning && m.onWarn != nil {
		m.onWarn(user)
	}

	return gitstore.Signature{Name: user, Email: user + "@localhost"}
}
