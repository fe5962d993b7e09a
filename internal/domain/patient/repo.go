package patient

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	Create(ctx context.Context, p *Patient) error
	GetByID(ctx context.Context, id uuid.UUID) (*Patient, error)
	ExistsByIdentifier(ctx context.Context, identifier string) (bool, error)
	List(ctx context.Context) ([]*Patient, error)
}
