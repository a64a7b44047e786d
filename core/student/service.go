package student

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/hostel/core"
)

var (
	// errors
	ErrNotFound = errors.New("student profile not found")
)

type (
	Repository interface {
		GetProfile(ctx context.Context, userID string, exec ...core.DBExecutor) (Profile, error)
		// ReserveProfile inserts an empty profile row for userID unless one exists, so that LockProfile
		// has a row to lock even for a student saved for the first time.
		ReserveProfile(ctx context.Context, exec core.DBExecutor, userID string, at time.Time) error
		// LockProfile reads a profile and keeps its row locked until the transaction behind exec ends.
		// Returns ErrNotFound when the student has no profile yet.
		LockProfile(ctx context.Context, exec core.DBExecutor, userID string) (Profile, error)
		// QueryProfiles applies AND operation on available QueryFilter fields.
		// QueryFilter.Search does a case-insensitive match on Profile.Name or Profile.Email.
		QueryProfiles(ctx context.Context, filter QueryFilter, ordering []core.DBOrdering, exec ...core.DBExecutor) ([]Profile, error)
		// UpsertProfile inserts the profile, or updates every field of the existing one.
		UpsertProfile(ctx context.Context, exec core.DBExecutor, p Profile) (Profile, error)
		// CountByRoom returns how many profiles reference each non-null room number.
		CountByRoom(ctx context.Context, exec core.DBExecutor) (map[string]int, error)
	}

	Service struct {
		repo Repository
	}
)

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (svc *Service) Get(ctx context.Context, userID string) (Profile, error) {
	return svc.repo.GetProfile(ctx, core.CleanString(userID))
}

func (svc *Service) Query(ctx context.Context, filter QueryFilter, ordering []core.DBOrdering) ([]Profile, error) {
	return svc.repo.QueryProfiles(ctx, filter, ordering)
}
