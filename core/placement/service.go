package placement

import (
	"context"

	"github.com/pkg/errors"

	"github.com/trezcool/placement/core"
	"github.com/trezcool/placement/core/logbook"
)

var (
	ErrAlreadyExists = errors.New("a placement has already been recorded")
	ErrNotFound      = errors.New("no placement recorded yet")
)

type (
	Gateway interface {
		GetPlacement(ctx context.Context, studentID string) (Placement, bool, error)
		CreatePlacement(ctx context.Context, np NewPlacement) (Placement, error)
	}

	Service struct {
		gw        Gateway
		validator *core.Validator
	}
)

func NewService(gw Gateway, validator *core.Validator) *Service {
	return &Service{gw: gw, validator: validator}
}

// Get fetches the placement; an empty studentID means the caller's own.
func (svc *Service) Get(ctx context.Context, studentID string) (Placement, bool, error) {
	p, exists, err := svc.gw.GetPlacement(ctx, core.CleanString(studentID))
	if err != nil {
		return Placement{}, false, errors.Wrap(err, "fetching placement")
	}
	return p, exists, nil
}

// Create records the placement once. A second attempt fails with ErrAlreadyExists.
func (svc *Service) Create(ctx context.Context, np NewPlacement) (Placement, error) {
	if err := np.Validate(svc.validator); err != nil {
		return Placement{}, err
	}
	if _, exists, err := svc.Get(ctx, np.StudentID); err != nil {
		return Placement{}, err
	} else if exists {
		return Placement{}, ErrAlreadyExists
	}
	p, err := svc.gw.CreatePlacement(ctx, np)
	if err != nil {
		if apiErr, ok := core.AsAPIError(err); ok && apiErr.Conflict() {
			return Placement{}, ErrAlreadyExists
		}
		return Placement{}, errors.Wrap(err, "creating placement")
	}
	return p, nil
}

// Timeline implements logbook.TimelineSource.
func (svc *Service) Timeline(ctx context.Context, studentID string) (logbook.Timeline, error) {
	p, exists, err := svc.Get(ctx, studentID)
	if err != nil {
		return logbook.Timeline{}, err
	}
	if !exists {
		return logbook.Timeline{}, ErrNotFound
	}
	return p.Timeline(), nil
}
