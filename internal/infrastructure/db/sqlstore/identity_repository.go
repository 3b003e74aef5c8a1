package sqlstore

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/bizledger/records-api/internal/core/domain"
	"github.com/bizledger/records-api/internal/core/ports"
)

// IdentityRepository implements ports.IdentityRepository on the users table.
type IdentityRepository struct {
	db      *gorm.DB
	timeout time.Duration
}

func NewIdentityRepository(db *gorm.DB, timeout time.Duration) *IdentityRepository {
	return &IdentityRepository{db: db, timeout: timeout}
}

func identityScope(scope domain.Scope) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		switch {
		case scope.IsUnrestricted():
			return db
		case scope.Empty():
			return db.Where("1 = 0")
		default:
			return db.Where("users.id = ?", scope.OwnerID())
		}
	}
}

func (r *IdentityRepository) Create(ctx context.Context, identity *domain.Identity) error {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	if identity.ID == "" {
		identity.ID = uuid.NewString()
	}
	row := identityRowFrom(identity)
	if err := r.db.WithContext(ctx).Omit(clause.Associations).Create(&row).Error; err != nil {
		return translate("insert identity", err)
	}
	return nil
}

func (r *IdentityRepository) FindByUsername(ctx context.Context, username string) (*domain.Identity, error) {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	var row identityRow
	if err := r.db.WithContext(ctx).Where("username = ?", username).Take(&row).Error; err != nil {
		return nil, translate("find identity", err)
	}
	return row.toDomain(), nil
}

func (r *IdentityRepository) Get(ctx context.Context, scope domain.Scope, id string) (*domain.Identity, error) {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	var row identityRow
	err := r.db.WithContext(ctx).Scopes(identityScope(scope)).Where("users.id = ?", id).Take(&row).Error
	if err != nil {
		return nil, translate("get identity", err)
	}
	return row.toDomain(), nil
}

func (r *IdentityRepository) List(ctx context.Context, filter ports.ListIdentitiesFilter) ([]*domain.Identity, int64, error) {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	query := r.db.WithContext(ctx).Model(&identityRow{}).Scopes(identityScope(filter.Scope))
	if filter.Role != "" {
		query = query.Where("users.role = ?", string(filter.Role))
	}
	if filter.Search != "" {
		query = query.Where(
			searchClause("users.username", "users.email", "users.first_name", "users.last_name"),
			map[string]interface{}{"q": likePattern(filter.Search)},
		)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, translate("count identities", err)
	}

	var rows []identityRow
	err := query.Order("users.created_at DESC").Order("users.id").
		Offset(filter.Page.Offset()).Limit(filter.Page.PageSize).
		Find(&rows).Error
	if err != nil {
		return nil, 0, translate("list identities", err)
	}

	out := make([]*domain.Identity, len(rows))
	for i := range rows {
		out[i] = rows[i].toDomain()
	}
	return out, total, nil
}

func (r *IdentityRepository) Update(ctx context.Context, scope domain.Scope, id string, apply func(*domain.Identity) error) (*domain.Identity, error) {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	var updated *domain.Identity
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var row identityRow
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Scopes(identityScope(scope)).Where("users.id = ?", id).Take(&row).Error
		if err != nil {
			return err
		}

		identity := row.toDomain()
		if err := apply(identity); err != nil {
			return err
		}
		identity.ID = row.ID

		next := identityRowFrom(identity)
		if err := tx.Omit(clause.Associations).Save(&next).Error; err != nil {
			return err
		}
		updated = identity
		return nil
	})
	if err != nil {
		return nil, translate("update identity", err)
	}
	return updated, nil
}

func (r *IdentityRepository) Delete(ctx context.Context, scope domain.Scope, id string, guard func(*domain.Identity) error) error {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var row identityRow
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Scopes(identityScope(scope)).Where("users.id = ?", id).Take(&row).Error
		if err != nil {
			return err
		}
		if guard != nil {
			if err := guard(row.toDomain()); err != nil {
				return err
			}
		}
		return tx.Delete(&identityRow{}, "id = ?", row.ID).Error
	})
	return translate("delete identity", err)
}

func (r *IdentityRepository) CountByRole(ctx context.Context, role domain.Role) (int64, error) {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	query := r.db.WithContext(ctx).Model(&identityRow{})
	if role != "" {
		query = query.Where("role = ?", string(role))
	}

	var n int64
	if err := query.Count(&n).Error; err != nil {
		return 0, translate("count identities", err)
	}
	return n, nil
}
