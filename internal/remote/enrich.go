package remote

import (
	"context"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/mediboard/mediboard/internal/activity"
)

const defaultEnrichLimit = 8

// EnrichUsers resolves the user snapshot for records that reference a user
// id without embedding the profile. Lookups run concurrently but bounded by
// the configured limit, and are cancelled with ctx. A failed lookup keeps the
// record without a snapshot; it never aborts the batch.
func (c *Client) EnrichUsers(ctx context.Context, records []activity.Record) []activity.Record {
	limit := c.enrichLimit
	if limit <= 0 {
		limit = defaultEnrichLimit
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)

	for i := range records {
		if records[i].User != nil || records[i].UserID <= 0 {
			continue
		}
		g.Go(func() error {
			user, err := c.GetUser(gctx, records[i].UserID)
			if err != nil {
				c.logger.Warn("enrich user lookup", slog.Int64("user_id", records[i].UserID), slog.Any("error", err))
				return nil
			}
			snapshot := activity.UserSnapshot{ID: user.ID, Name: user.Name, Email: user.Email}
			for _, ref := range user.Roles {
				snapshot.Roles = append(snapshot.Roles, activity.UserRole(ref))
			}
			records[i].User = &snapshot
			return nil
		})
	}

	_ = g.Wait()
	return records
}
