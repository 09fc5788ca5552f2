package billing

import (
	"context"
	"fmt"

	"github.com/warp/taxman/generic"
)

// RateOrigin says where a resolved rate came from.
type RateOrigin string

const (
	OriginClientRate   RateOrigin = "client_rate"
	OriginEmployeeBase RateOrigin = "employee_base"
	OriginOverride     RateOrigin = "override"
)

// Resolution is a rate in effect for a line.
type Resolution struct {
	RateCents generic.Cents
	Origin    RateOrigin
	RateID    string // set when Origin is OriginClientRate
}

// Resolver determines the rate per unit for (client, employee, date).
type Resolver struct {
	src RateSource
}

func NewResolver(src RateSource) *Resolver {
	return &Resolver{src: src}
}

// Resolve returns the rate in effect on the given day. ok is false when the
// employee does not exist, so no rate can be determined.
func (r *Resolver) Resolve(ctx context.Context, clientID, employeeID string, on generic.Date) (res Resolution, ok bool, err error) {
	matches, err := r.src.RatesEffectiveOn(ctx, clientID, employeeID, on)
	if err != nil {
		return Resolution{}, false, fmt.Errorf("loading rates for %s/%s: %w", clientID, employeeID, err)
	}

	// Overlaps are rejected on insert; if any slipped in, the latest start wins.
	var best *generic.RateRecord
	for i := range matches {
		if !matches[i].Range().Covers(on) {
			continue
		}
		if best == nil || matches[i].EffectiveFrom.After(best.EffectiveFrom) {
			best = &matches[i]
		}
	}
	if best != nil {
		return Resolution{RateCents: best.RateCents, Origin: OriginClientRate, RateID: best.ID}, true, nil
	}

	employee, err := r.src.GetEmployee(ctx, employeeID)
	if err != nil {
		return Resolution{}, false, fmt.Errorf("loading employee %s: %w", employeeID, err)
	}
	if employee == nil {
		return Resolution{}, false, nil
	}
	return Resolution{RateCents: employee.BaseRateCents, Origin: OriginEmployeeBase}, true, nil
}
