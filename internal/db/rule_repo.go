package db

import (
	"context"
	"time"

	"lightwatch/internal/types"
)

// RuleRepository reads alert rules and records trigger transitions.
type RuleRepository struct {
	db DBTX
}

// NewRuleRepository creates a new RuleRepository backed by the given
// database connection (pool or transaction).
func NewRuleRepository(db DBTX) *RuleRepository {
	return &RuleRepository{db: db}
}

const listActiveRulesSQL = `
SELECT r.id, r.user_id, r.location_id, r.name, r.alert_type, r.conditions,
       r.time_window_start, r.time_window_end, r.days_of_week,
       r.lead_time_minutes, r.is_active, r.last_triggered_at, r.created_at,
       l.latitude, l.longitude, l.timezone
  FROM alert_rules r
  JOIN locations l ON l.id = r.location_id
 WHERE r.is_active = TRUE
 ORDER BY r.location_id, r.created_at, r.id`

// ListActiveRules returns every active rule joined with its location.
//
// A rule whose conditions document cannot be decoded is still returned, with
// nil Conditions, so that the evaluator reports it as an invalid rule instead
// of the whole listing failing.
func (r *RuleRepository) ListActiveRules(ctx context.Context) ([]types.AlertRule, error) {
	rows, err := r.db.Query(ctx, listActiveRulesSQL)
	if err != nil {
		return nil, types.NewAppError(types.ErrCodeInternalDB, "failed to list active rules", err)
	}
	defer rows.Close()

	var rules []types.AlertRule
	for rows.Next() {
		var (
			rule        types.AlertRule
			alertType   string
			conditions  []byte
			windowStart *int32
			windowEnd   *int32
			days        []int32
			leadTime    int32
			timezone    *string
		)
		if err := rows.Scan(
			&rule.ID,
			&rule.UserID,
			&rule.LocationID,
			&rule.Name,
			&alertType,
			&conditions,
			&windowStart,
			&windowEnd,
			&days,
			&leadTime,
			&rule.IsActive,
			&rule.LastTriggeredAt,
			&rule.CreatedAt,
			&rule.Location.Lat,
			&rule.Location.Lng,
			&timezone,
		); err != nil {
			return nil, types.NewAppError(types.ErrCodeInternalDB, "failed to scan alert rule", err)
		}

		rule.AlertType = types.AlertType(alertType)
		rule.Location.ID = rule.LocationID
		rule.Location.Timezone = stringOrEmpty(timezone)
		rule.LeadTimeMinutes = int(leadTime)
		if c, err := types.DecodeConditions(rule.AlertType, conditions); err == nil {
			rule.Conditions = c
		}
		if windowStart != nil && windowEnd != nil {
			rule.TimeWindow = &types.TimeWindow{StartHour: int(*windowStart), EndHour: int(*windowEnd)}
		}
		if len(days) > 0 {
			rule.DaysOfWeek = make([]int, len(days))
			for i, d := range days {
				rule.DaysOfWeek[i] = int(d)
			}
		}
		rules = append(rules, rule)
	}
	if err := rows.Err(); err != nil {
		return nil, types.NewAppError(types.ErrCodeInternalDB, "failed to iterate alert rules", err)
	}
	return rules, nil
}

// UpdateLastTriggered persists the trigger transition for one rule.
func (r *RuleRepository) UpdateLastTriggered(ctx context.Context, ruleID string, at time.Time) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE alert_rules SET last_triggered_at = $2, updated_at = NOW() WHERE id = $1`,
		ruleID, at,
	)
	if err != nil {
		return types.NewAppError(types.ErrCodeInternalDB, "failed to update last triggered time", err)
	}
	if tag.RowsAffected() == 0 {
		return types.NewAppError(types.ErrCodeNotFoundRule, "rule not found", nil)
	}
	return nil
}
