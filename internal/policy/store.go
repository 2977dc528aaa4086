// =============================================================================
// Genset Invoicer - Customer Policy Store
// =============================================================================
//
// The policy store maps a customer name to that customer's numbering prefix,
// starting serial and payment window.
//
// LIFECYCLE:
//   - A policy is created lazily the first time a customer name is seen
//     (Reconcile). Its default starting serial is 100 plus the number of
//     policies that existed at that moment, so customers first seen in the
//     same pass get 100, 101, 102... in the order they were seen.
//   - Reconcile never touches an existing policy.
//   - Update replaces a policy wholesale. Fields are not merged.
//   - Policies are never deleted.
//
// The store also remembers stable serials: when the invoicing serial mode is
// "stable", each booking is given a number once and keeps it across rebuilds.
//
// The store is not safe for concurrent use. The session owns it and guards it
// together with the row pool.
//
// =============================================================================

package policy

import (
	"strings"

	"github.com/agnivade/levenshtein"

	"github.com/nilefleet/genset-invoicer/internal/types"
)

// Defaults applied to newly discovered customers.
const (
	DefaultSerialPrefix = "INV-2026-"
	BaseStartingSerial  = 100
	DefaultDueDateDays  = 15
)

// Store holds customer policies in insertion order.
type Store struct {
	order    []string
	policies map[string]types.Policy

	// stable[customer][bookingRef] is the numeric serial a booking was given
	// on first sight.
	stable map[string]map[string]int
}

// Snapshot is the persisted form of a Store.
type Snapshot struct {
	Policies      []types.Policy            `yaml:"policies"`
	StableSerials map[string]map[string]int `yaml:"stable_serials,omitempty"`
}

// NewStore creates an empty policy store.
func NewStore() *Store {
	return &Store{
		policies: make(map[string]types.Policy),
		stable:   make(map[string]map[string]int),
	}
}

// =============================================================================
// RECONCILIATION AND UPDATES
// =============================================================================

// Reconcile inserts a default policy for every name that has none yet.
//
// PARAMETERS:
//   - names: Observed customer names, in the order they were observed.
//     Duplicates are fine.
//
// RETURNS:
//   - The policies that were created by this call, in creation order.
func (s *Store) Reconcile(names []string) []types.Policy {
	var created []types.Policy

	for _, name := range names {
		if _, exists := s.policies[name]; exists {
			continue
		}

		p := types.Policy{
			CustomerName:   name,
			SerialPrefix:   DefaultSerialPrefix,
			StartingSerial: BaseStartingSerial + len(s.policies),
			DueDateDays:    DefaultDueDateDays,
		}
		s.insert(p)
		created = append(created, p)
	}

	return created
}

// Update replaces the policy for name with p. The stored CustomerName is
// always name, whatever p carries.
func (s *Store) Update(name string, p types.Policy) {
	p.CustomerName = name
	s.insert(p)
}

func (s *Store) insert(p types.Policy) {
	if _, exists := s.policies[p.CustomerName]; !exists {
		s.order = append(s.order, p.CustomerName)
	}
	s.policies[p.CustomerName] = p
}

// =============================================================================
// QUERIES
// =============================================================================

// Get returns the policy for name.
func (s *Store) Get(name string) (types.Policy, bool) {
	p, ok := s.policies[name]
	return p, ok
}

// All returns every policy in insertion order.
func (s *Store) All() []types.Policy {
	out := make([]types.Policy, 0, len(s.order))
	for _, name := range s.order {
		out = append(out, s.policies[name])
	}
	return out
}

// Len returns the number of policies.
func (s *Store) Len() int {
	return len(s.order)
}

// Suggest returns the known customer name closest to name, for "did you
// mean" hints. Comparison ignores case. It returns false when the store is
// empty or the best candidate is too far away to be a plausible typo.
func (s *Store) Suggest(name string) (string, bool) {
	target := strings.ToUpper(strings.TrimSpace(name))
	if target == "" {
		return "", false
	}

	best := ""
	bestDist := -1
	for _, candidate := range s.order {
		dist := levenshtein.ComputeDistance(target, strings.ToUpper(candidate))
		if bestDist == -1 || dist < bestDist {
			best, bestDist = candidate, dist
		}
	}

	if bestDist == -1 || bestDist > maxSuggestDistance(target) {
		return "", false
	}
	return best, true
}

func maxSuggestDistance(s string) int {
	n := len([]rune(s)) / 3
	if n < 2 {
		return 2
	}
	return n
}

// =============================================================================
// STABLE SERIALS
// =============================================================================

// AssignStable returns the stable numeric serial of bookingRef for customer,
// assigning StartingSerial plus the number of bookings already numbered for
// that customer on first sight. The customer must have a policy; ok is false
// otherwise and nothing is recorded.
func (s *Store) AssignStable(customer, bookingRef string) (serial int, ok bool) {
	p, exists := s.policies[customer]
	if !exists {
		return 0, false
	}

	assigned := s.stable[customer]
	if assigned == nil {
		assigned = make(map[string]int)
		s.stable[customer] = assigned
	}

	if n, seen := assigned[bookingRef]; seen {
		return n, true
	}

	n := p.StartingSerial + len(assigned)
	assigned[bookingRef] = n
	return n, true
}

// =============================================================================
// PERSISTENCE
// =============================================================================

// Snapshot returns a deep copy of the store's contents.
func (s *Store) Snapshot() Snapshot {
	snap := Snapshot{Policies: s.All()}

	if len(s.stable) > 0 {
		snap.StableSerials = make(map[string]map[string]int, len(s.stable))
		for customer, assigned := range s.stable {
			inner := make(map[string]int, len(assigned))
			for ref, n := range assigned {
				inner[ref] = n
			}
			snap.StableSerials[customer] = inner
		}
	}

	return snap
}

// Restore replaces the store's contents with snap.
func (s *Store) Restore(snap Snapshot) {
	s.order = nil
	s.policies = make(map[string]types.Policy, len(snap.Policies))
	s.stable = make(map[string]map[string]int, len(snap.StableSerials))

	for _, p := range snap.Policies {
		s.insert(p)
	}
	for customer, assigned := range snap.StableSerials {
		inner := make(map[string]int, len(assigned))
		for ref, n := range assigned {
			inner[ref] = n
		}
		s.stable[customer] = inner
	}
}
