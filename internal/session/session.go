// =============================================================================
// Genset Invoicer - Session
// =============================================================================
//
// A Session is the application state one command works on:
//   - the row pool (imported bookings, in file order)
//   - the customer policy store
//   - the set of exported ("used") invoice ids
//   - the company profile
//
// Every read that aggregates takes rows and policies under one lock, so an
// invoice list is never built from rows of one import and policies of
// another. The session loads from and saves to the YAML state file.
//
// =============================================================================

package session

import (
	"maps"
	"slices"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/nilefleet/genset-invoicer/internal/invoicing"
	"github.com/nilefleet/genset-invoicer/internal/policy"
	"github.com/nilefleet/genset-invoicer/internal/statement"
	"github.com/nilefleet/genset-invoicer/internal/store"
	"github.com/nilefleet/genset-invoicer/internal/types"
)

// Session is safe for concurrent use.
type Session struct {
	mu       sync.RWMutex
	rows     []types.Row
	policies *policy.Store
	exported map[string]struct{}
	company  types.CompanyProfile

	opts   invoicing.Options
	logger *zap.Logger
}

// New creates an empty session.
func New(opts invoicing.Options, logger *zap.Logger) *Session {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Session{
		policies: policy.NewStore(),
		exported: make(map[string]struct{}),
		company:  types.DefaultCompanyProfile(),
		opts:     opts,
		logger:   logger,
	}
}

// FromState creates a session holding st.
func FromState(st *store.State, opts invoicing.Options, logger *zap.Logger) *Session {
	s := New(opts, logger)
	if st == nil {
		return s
	}

	s.rows = append([]types.Row(nil), st.Rows...)
	s.policies.Restore(st.Policies)
	for _, id := range st.Exported {
		s.exported[id] = struct{}{}
	}
	s.company = st.Company

	// A state file edited by hand may list customers without a policy.
	if created := s.policies.Reconcile(invoicing.CustomerNames(s.rows)); len(created) > 0 {
		s.logger.Info("created missing customer policies", zap.Int("count", len(created)))
	}
	return s
}

// State returns a snapshot suitable for store.Save.
func (s *Session) State() *store.State {
	s.mu.RLock()
	defer s.mu.RUnlock()

	st := store.NewState()
	st.Company = s.company
	st.Policies = s.policies.Snapshot()
	st.Rows = append([]types.Row(nil), s.rows...)
	st.Exported = slices.Sorted(maps.Keys(s.exported))
	return st
}

// =============================================================================
// ROW POOL
// =============================================================================

// Import replaces the row pool with rows and creates default policies for
// customers seen for the first time.
//
// RETURNS:
//   - The policies created by this import.
func (s *Session) Import(rows []types.Row) []types.Policy {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.rows = append([]types.Row(nil), rows...)
	created := s.policies.Reconcile(invoicing.CustomerNames(s.rows))

	s.logger.Info("bookings imported",
		zap.Int("rows", len(rows)),
		zap.Int("new_customers", len(created)))
	return created
}

// Clear empties the row pool. Policies are kept.
func (s *Session) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.rows = nil
	s.logger.Info("bookings cleared")
}

// Rows returns a copy of the row pool.
func (s *Session) Rows() []types.Row {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]types.Row(nil), s.rows...)
}

// =============================================================================
// AGGREGATION
// =============================================================================

// Invoices aggregates the row pool into invoices.
func (s *Session) Invoices() []types.Invoice {
	if s.opts.SerialMode == invoicing.SerialStable {
		// Stable numbering records assignments in the policy store.
		s.mu.Lock()
		defer s.mu.Unlock()
		return invoicing.Build(s.rows, s.policies, s.opts)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	return invoicing.Build(s.rows, s.policies, s.opts)
}

// Statement builds a statement of account from the row pool.
func (s *Session) Statement(req statement.Request, now time.Time) (*types.Statement, error) {
	s.mu.RLock()
	rows := s.rows
	s.mu.RUnlock()

	// rows is never mutated in place; Import and Clear swap the slice.
	return statement.Build(rows, req, now)
}

// =============================================================================
// POLICIES
// =============================================================================

// Policies returns every customer policy in creation order.
func (s *Session) Policies() []types.Policy {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.policies.All()
}

// Policy returns the policy for customer.
func (s *Session) Policy(customer string) (types.Policy, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.policies.Get(customer)
}

// UpdatePolicy replaces the policy for customer.
func (s *Session) UpdatePolicy(customer string, p types.Policy) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.policies.Update(customer, p)
	s.logger.Info("customer policy updated",
		zap.String("customer", customer),
		zap.String("prefix", p.SerialPrefix),
		zap.Int("starting_serial", p.StartingSerial),
		zap.Int("due_days", p.DueDateDays))
}

// SuggestCustomer returns the known customer closest to name.
func (s *Session) SuggestCustomer(name string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.policies.Suggest(name)
}

// =============================================================================
// EXPORTED INVOICES
// =============================================================================

// MarkExported records that the invoice with id has been produced.
func (s *Session) MarkExported(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.exported[id] = struct{}{}
}

// IsExported reports whether the invoice with id has been produced.
func (s *Session) IsExported(id string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.exported[id]
	return ok
}

// =============================================================================
// COMPANY PROFILE
// =============================================================================

// Company returns the company profile.
func (s *Session) Company() types.CompanyProfile {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.company
}

// UpdateCompany applies edit to the company profile. Fields edit leaves
// alone keep their values.
func (s *Session) UpdateCompany(edit func(p *types.CompanyProfile)) types.CompanyProfile {
	s.mu.Lock()
	defer s.mu.Unlock()

	edit(&s.company)
	return s.company
}
