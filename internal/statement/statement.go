// Package statement builds statements of account: one document listing a
// customer's operations across many bookings, optionally limited to a date
// window and a single shipper.
package statement

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/nilefleet/genset-invoicer/internal/invoicing"
	"github.com/nilefleet/genset-invoicer/internal/types"
)

var (
	// ErrNoMatches means no operation matched the request. No statement is
	// produced in that case.
	ErrNoMatches = errors.New("no operations found for the selected criteria")

	// ErrCustomerRequired is returned when the request names no customer.
	ErrCustomerRequired = errors.New("customer is required")

	// ErrInvalidDate is returned when a window bound is not YYYY-MM-DD.
	ErrInvalidDate = errors.New("invalid date")
)

// Request selects the operations that go on a statement.
type Request struct {
	Customer string

	// From and To are inclusive YYYY-MM-DD bounds. Empty means open.
	From string
	To   string

	// Shipper, when set, must match a row's shipper exactly.
	Shipper string
}

// Period describes the request window the way it is printed on the
// statement header.
func (r Request) Period() string {
	from, to := r.From, r.To
	if from == "" {
		from = "Start"
	}
	if to == "" {
		to = "End"
	}

	period := fmt.Sprintf("%s to %s", from, to)
	if r.Shipper != "" {
		period += " | Shipper: " + r.Shipper
	}
	return period
}

// Build collects the customer's operations that fall inside the request
// window. Rows come out booking by booking, in the same order the invoice
// list shows them, and in stored order inside each booking. They are not
// re-sorted by date.
//
// Rows whose date does not parse are kept only when neither bound is set.
func Build(rows []types.Row, req Request, now time.Time) (*types.Statement, error) {
	if req.Customer == "" {
		return nil, ErrCustomerRequired
	}

	from, hasFrom, err := parseBound(req.From)
	if err != nil {
		return nil, err
	}
	to, hasTo, err := parseBound(req.To)
	if err != nil {
		return nil, err
	}

	var matched []types.Row
	for _, inv := range invoicing.ForCustomer(invoicing.Build(rows, nil, invoicing.Options{}), req.Customer) {
		for _, item := range inv.LineItems {
			if req.Shipper != "" && item.Shipper != req.Shipper {
				continue
			}
			if hasFrom || hasTo {
				date, ok := item.Date()
				if !ok {
					continue
				}
				if hasFrom && date.Before(from) {
					continue
				}
				if hasTo && date.After(to) {
					continue
				}
			}
			matched = append(matched, item)
		}
	}

	if len(matched) == 0 {
		return nil, ErrNoMatches
	}

	millis := now.UnixMilli()
	return &types.Statement{
		ID:           fmt.Sprintf("statement-%s-%d", req.Customer, millis),
		CustomerName: req.Customer,
		IssueDate:    now.UTC().Format(types.DateLayout),
		Period:       req.Period(),
		SerialNumber: Serial(millis),
		LineItems:    matched,
		TotalRate:    types.SumRates(matched),
	}, nil
}

// Serial returns "SOA-" followed by the last six digits of a millisecond
// timestamp.
func Serial(unixMillis int64) string {
	digits := strconv.FormatInt(unixMillis, 10)
	if len(digits) > 6 {
		digits = digits[len(digits)-6:]
	}
	return "SOA-" + digits
}

func parseBound(s string) (time.Time, bool, error) {
	if s == "" {
		return time.Time{}, false, nil
	}
	t, ok := types.ParseDate(s)
	if !ok {
		return time.Time{}, false, fmt.Errorf("%w: %q (expected YYYY-MM-DD)", ErrInvalidDate, s)
	}
	return t, true, nil
}
