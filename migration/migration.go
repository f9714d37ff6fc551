package migration

import (
	"context"

	"github.com/teampulse/backend/internal/entity"
	"github.com/teampulse/backend/pkg/xcontext"
)

func Migrate(ctx context.Context) error {
	return xcontext.DB(ctx).AutoMigrate(
		&entity.User{},
		&entity.Community{},
		&entity.Member{},
		&entity.Sprint{},
		&entity.Transaction{},
	)
}
