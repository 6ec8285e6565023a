package scan

import (
	"fmt"
	"net/url"
	"slices"
	"strings"
)

// Outcome describes what happened to a path offered to the inventory.
type Outcome int

const (
	// OutcomeAppended means the path was added to the host's list.
	OutcomeAppended Outcome = iota

	// OutcomeDuplicate means the path was already listed for the host and
	// duplicate removal is enabled.
	OutcomeDuplicate

	// OutcomeDroppedScreenshotDisabled means duplicate removal is enabled
	// while screenshots are disabled. In that combination every path is
	// dropped without a duplicate check. See Policy.
	OutcomeDroppedScreenshotDisabled
)

// String returns a short name for the outcome.
func (o Outcome) String() string {
	switch o {
	case OutcomeAppended:
		return "appended"
	case OutcomeDuplicate:
		return "duplicate"
	case OutcomeDroppedScreenshotDisabled:
		return "dropped-screenshot-disabled"
	default:
		return fmt.Sprintf("outcome(%d)", int(o))
	}
}

// Policy governs how paths are stored in an Inventory.
//
// The insertion rule has three branches and is kept exactly as the
// configuration files in the field expect it:
//
//	RemoveDuplicateURL == false                       -> always append
//	RemoveDuplicateURL && EnabledScreenshot           -> append unless already present
//	RemoveDuplicateURL && !EnabledScreenshot          -> never append
//
// The last branch ties duplicate removal to the screenshot flag and almost
// certainly was not intended. It is preserved until the expected behavior is
// confirmed; Add reports it as OutcomeDroppedScreenshotDisabled so callers
// can tell it apart from a real duplicate.
type Policy struct {
	RemoveDuplicateURL bool
	EncodedURLs        bool
	EnabledScreenshot  bool
}

// Encode returns path as it will be stored: form-urlencoded when EncodedURLs
// is set, unchanged otherwise. Only letters, digits and "-_." stay
// literal and a space becomes "+", so "~" is escaped as well.
func (p Policy) Encode(path string) string {
	if p.EncodedURLs {
		return strings.ReplaceAll(url.QueryEscape(path), "~", "%7E")
	}
	return path
}

func (p Policy) decide(existing []string, path string) Outcome {
	if !p.RemoveDuplicateURL {
		return OutcomeAppended
	}
	if !p.EnabledScreenshot {
		return OutcomeDroppedScreenshotDisabled
	}
	if slices.Contains(existing, path) {
		return OutcomeDuplicate
	}
	return OutcomeAppended
}

// HostPaths is one host's entry in an inventory snapshot.
type HostPaths struct {
	Host  string
	Paths []string
}

// Inventory maps hosts to the ordered list of paths observed for them.
//
// Host order is the order in which hosts were first ensured; path order is
// insertion order. An Inventory is owned by a single run and is not safe
// for concurrent use.
type Inventory struct {
	policy Policy
	order  []string
	paths  map[string][]string
}

// NewInventory returns an empty inventory applying policy on insert.
func NewInventory(policy Policy) *Inventory {
	return &Inventory{
		policy: policy,
		paths:  make(map[string][]string),
	}
}

// Policy returns the insertion policy.
func (inv *Inventory) Policy() Policy {
	return inv.policy
}

// Ensure creates an empty entry for host if none exists. An existing entry
// is never replaced, so an inventory can be reused across several scans.
func (inv *Inventory) Ensure(host string) {
	if _, ok := inv.paths[host]; ok {
		return
	}
	inv.order = append(inv.order, host)
	inv.paths[host] = []string{}
}

// Has reports whether host has an entry.
func (inv *Inventory) Has(host string) bool {
	_, ok := inv.paths[host]
	return ok
}

// Add offers path for host and applies the policy.
// It returns ErrUnknownHost if host has no entry; no entry is created.
func (inv *Inventory) Add(host, path string) (Outcome, error) {
	existing, ok := inv.paths[host]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownHost, host)
	}

	stored := inv.policy.Encode(path)
	outcome := inv.policy.decide(existing, stored)
	if outcome == OutcomeAppended {
		inv.paths[host] = append(existing, stored)
	}
	return outcome, nil
}

// Hosts returns the hosts in insertion order.
func (inv *Inventory) Hosts() []string {
	return slices.Clone(inv.order)
}

// Paths returns a copy of the paths stored for host, or nil if host has no entry.
func (inv *Inventory) Paths(host string) []string {
	paths, ok := inv.paths[host]
	if !ok {
		return nil
	}
	return slices.Clone(paths)
}

// Len returns the total number of stored paths across all hosts.
func (inv *Inventory) Len() int {
	n := 0
	for _, paths := range inv.paths {
		n += len(paths)
	}
	return n
}

// Snapshot returns a deep copy of the inventory in host order.
func (inv *Inventory) Snapshot() []HostPaths {
	out := make([]HostPaths, 0, len(inv.order))
	for _, host := range inv.order {
		out = append(out, HostPaths{Host: host, Paths: slices.Clone(inv.paths[host])})
	}
	return out
}
