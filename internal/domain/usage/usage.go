// Package usage counts tenant resources against plan quotas.
package usage

import (
	"context"
	"fmt"

	"shopnotes-app/internal/domain/contacts"
	"shopnotes-app/internal/domain/mentions"
	"shopnotes-app/internal/domain/notes"
	"shopnotes-app/internal/domain/plans"

	"gorm.io/gorm"
)

const CodeLimitReached = "PLAN_LIMIT_REACHED"

type Counter struct {
	Used  int64 `json:"used"`
	Limit int64 `json:"limit"`
}

type Report map[plans.Resource]Counter

var models = map[plans.Resource]interface{}{
	plans.ResourceNotes:          &notes.Note{},
	plans.ResourceFolders:        &notes.Folder{},
	plans.ResourceContacts:       &contacts.Contact{},
	plans.ResourceContactFolders: &contacts.ContactFolder{},
	plans.ResourceCustomMentions: &mentions.CustomMention{},
}

// LimitError is returned when creating one more resource would exceed the plan.
type LimitError struct {
	Resource plans.Resource
	Plan     plans.Plan
	Usage    Report
}

func (e *LimitError) Error() string {
	return fmt.Sprintf("%s limit reached on %s plan", e.Resource, e.Plan)
}

func (e *LimitError) Message() string {
	c := e.Usage[e.Resource]
	if c.Limit == 0 {
		return fmt.Sprintf("Your %s plan does not include %s. Upgrade to PRO to unlock it.", e.Plan, e.Resource)
	}
	return fmt.Sprintf("You have reached the %d %s included in the %s plan. Upgrade to PRO for unlimited %s.",
		c.Limit, e.Resource, e.Plan, e.Resource)
}

func Count(ctx context.Context, db *gorm.DB, shopID uint, r plans.Resource) (int64, error) {
	model, ok := models[r]
	if !ok {
		return 0, fmt.Errorf("unknown resource %q", r)
	}
	var n int64
	if err := db.WithContext(ctx).Model(model).Where("shop_id = ?", shopID).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("count %s: %w", r, err)
	}
	return n, nil
}

// Compute returns used/limit for every resource under plan.
func Compute(ctx context.Context, db *gorm.DB, shopID uint, plan plans.Plan) (Report, error) {
	report := make(Report, len(plans.Resources))
	for _, r := range plans.Resources {
		n, err := Count(ctx, db, shopID, r)
		if err != nil {
			return nil, err
		}
		report[r] = Counter{Used: n, Limit: plans.Limit(plan, r)}
	}
	return report, nil
}

// Check returns a *LimitError when one more r does not fit in plan.
func Check(ctx context.Context, db *gorm.DB, shopID uint, plan plans.Plan, r plans.Resource) error {
	n, err := Count(ctx, db, shopID, r)
	if err != nil {
		return err
	}
	if plans.Allows(plan, r, n) {
		return nil
	}
	report, err := Compute(ctx, db, shopID, plan)
	if err != nil {
		return err
	}
	return &LimitError{Resource: r, Plan: plan, Usage: report}
}
