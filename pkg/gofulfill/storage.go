package gofulfill

import "context"

// Storage is the backing store for plan and entitlement data.
// Implementations must bind user-supplied values as query parameters.
type Storage interface {
	// HasAccess reports whether the plan currently assigned to userID grants
	// access to feature. An unknown user or feature yields false with a nil error.
	// Implementations may return ErrNoResult when the store produced no row at all.
	HasAccess(ctx context.Context, userID, feature string) (bool, error)

	// UpdatePlan sets the plan of userID and returns the number of affected rows.
	// An unknown user yields 0 with a nil error.
	UpdatePlan(ctx context.Context, userID, plan string) (int64, error)
}
