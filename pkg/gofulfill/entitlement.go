package gofulfill

import (
	"context"
	"errors"
	"time"
)

// CheckEntitlement reports whether the current plan of userID grants access to feature.
// It never returns an error: failures are logged and turned into a negative result
// carrying a user-safe message.
func (m *Manager) CheckEntitlement(ctx context.Context, userID, feature string) EntitlementResult {
	if userID == "" || feature == "" {
		m.logger.Error("Entitlement check rejected",
			Field{"error", ErrInvalidInput},
			Field{"userID", userID},
			Field{"feature", feature},
		)
		return EntitlementResult{Message: MsgEntitlementError}
	}

	start := time.Now()
	entitled, err := m.storage.HasAccess(ctx, userID, feature)
	m.metrics.RecordStorageOperation("has_access", time.Since(start), err)

	switch {
	case errors.Is(err, ErrNoResult):
		m.logger.Warn("Entitlement query returned no row",
			Field{"userID", userID},
			Field{"feature", feature},
		)
		return EntitlementResult{Message: MsgNotVerified}
	case err != nil:
		m.logger.Error("Entitlement check failed",
			Field{"error", err},
			Field{"userID", userID},
			Field{"feature", feature},
		)
		return EntitlementResult{Message: MsgEntitlementError}
	case entitled:
		return EntitlementResult{Entitled: true, Message: MsgAccessGranted}
	default:
		return EntitlementResult{Message: MsgNotIncluded}
	}
}
