package attendance

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/trezcool/hostel/core"
)

type (
	Repository interface {
		// UpsertRecord inserts the record, or overwrites status and marker of the existing one for the same student and date.
		UpsertRecord(ctx context.Context, exec core.DBExecutor, r Record) (Record, error)
		// QueryRecords applies AND operation on available QueryFilter fields.
		QueryRecords(ctx context.Context, filter QueryFilter, ordering []core.DBOrdering, exec ...core.DBExecutor) ([]Record, error)
	}

	Service struct {
		db   core.DB
		repo Repository
	}
)

func NewService(db core.DB, repo Repository) *Service {
	return &Service{db: db, repo: repo}
}

// Mark records a batch of attendance entries in one transaction: either every entry is saved or none is.
func (svc *Service) Mark(ctx context.Context, markedBy string, m Mark) ([]Record, error) {
	records := make([]Record, 0, len(m.Entries))
	err := core.WithTx(ctx, svc.db, func(tx core.DBExecutor) error {
		now := time.Now().UTC()
		for _, e := range m.Entries {
			r, err := svc.repo.UpsertRecord(ctx, tx, Record{
				ID:        uuid.NewString(),
				StudentID: e.StudentID,
				Date:      m.Date,
				Status:    e.Status,
				MarkedBy:  markedBy,
				CreatedAt: now,
				UpdatedAt: now,
			})
			if err != nil {
				return errors.Wrapf(err, "marking %s", e.StudentID)
			}
			records = append(records, r)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return records, nil
}

func (svc *Service) Query(ctx context.Context, filter QueryFilter, ordering []core.DBOrdering) ([]Record, error) {
	return svc.repo.QueryRecords(ctx, filter, ordering)
}
