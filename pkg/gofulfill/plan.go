package gofulfill

import (
	"context"
	"fmt"
	"time"
)

// UpgradePlan sets the plan of userID to newPlan.
// newPlan is written as given; it is not checked against a list of known tiers.
func (m *Manager) UpgradePlan(ctx context.Context, userID, newPlan string) UpgradeResult {
	if userID == "" || newPlan == "" {
		m.logger.Error("Plan upgrade rejected",
			Field{"error", ErrInvalidInput},
			Field{"userID", userID},
			Field{"plan", newPlan},
		)
		return UpgradeResult{Message: MsgUpgradeError}
	}

	start := time.Now()
	affected, err := m.storage.UpdatePlan(ctx, userID, newPlan)
	m.metrics.RecordStorageOperation("update_plan", time.Since(start), err)
	if err != nil {
		m.logger.Error("Plan upgrade failed",
			Field{"error", err},
			Field{"userID", userID},
			Field{"plan", newPlan},
		)
		return UpgradeResult{Message: MsgUpgradeError}
	}

	if affected == 0 {
		return UpgradeResult{Message: MsgAccountNotFound}
	}

	m.logger.Info("Plan upgraded",
		Field{"userID", userID},
		Field{"plan", newPlan},
		Field{"rows", affected},
	)
	return UpgradeResult{Updated: true, Message: fmt.Sprintf(MsgUpgradedFmt, newPlan)}
}
