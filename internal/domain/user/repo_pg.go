package user

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/ywu256/MAPD713-Project/internal/platform/db"
)

type userRepoPG struct {
	coll *db.Collection
}

// NewRepo returns a Repository backed by the users collection.
func NewRepo(coll *db.Collection) Repository {
	return &userRepoPG{coll: coll}
}

func (r *userRepoPG) Create(ctx context.Context, u *User) error {
	u.ID = uuid.New()
	if err := r.coll.Insert(ctx, u.ID, u); err != nil {
		return fmt.Errorf("user create: %w", err)
	}
	return nil
}

func (r *userRepoPG) GetByEmail(ctx context.Context, email string) (*User, error) {
	doc, err := r.coll.FindOne(ctx, db.Filter{"email": email})
	if err != nil {
		return nil, fmt.Errorf("user get by email: %w", err)
	}
	var u User
	if err := doc.Decode(&u); err != nil {
		return nil, fmt.Errorf("user get by email: %w", err)
	}
	u.ID = doc.Key
	return &u, nil
}
