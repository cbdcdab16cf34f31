package admin

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// DeactivateExcept sets active=false on every active plan whose id is not
// in keep. Rows are never deleted.
func (a *Admin) DeactivateExcept(ctx context.Context, keep []string) (Result, error) {
	res := a.newResult("deactivate")

	allow := make(map[string]bool, len(keep))
	var ids []string
	for _, id := range keep {
		if id = strings.TrimSpace(id); id != "" && !allow[id] {
			allow[id] = true
			ids = append(ids, id)
		}
	}
	if len(allow) == 0 {
		return *res, errors.New("admin: refusing to deactivate every plan, allow-list is empty")
	}

	all, err := a.store.List(ctx)
	if err != nil {
		return *res, fmt.Errorf("admin: list plans: %w", err)
	}

	known := make(map[string]bool, len(all))
	for _, p := range all {
		known[p.ID] = true
		if allow[p.ID] || !p.Active {
			res.Unchanged = append(res.Unchanged, p.ID)
			continue
		}

		after := p
		after.Active = false
		if !a.dryRun {
			if _, err := a.store.SetActive(ctx, p.ID, false); err != nil {
				return *res, fmt.Errorf("admin: deactivate plan %q: %w", p.ID, err)
			}
		}
		a.record(res, p.ID, Diff(&p, after))
	}

	for _, id := range ids {
		if !known[id] {
			res.Skipped = append(res.Skipped, id)
			a.log.Warn("allow-listed plan does not exist", "plan_id", id)
		}
	}
	return *res, nil
}
