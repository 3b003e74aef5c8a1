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

// CustomerRepository implements ports.CustomerRepository on the customers
// table. Reads join the creator to fill CreatedByName.
type CustomerRepository struct {
	db      *gorm.DB
	timeout time.Duration
}

func NewCustomerRepository(db *gorm.DB, timeout time.Duration) *CustomerRepository {
	return &CustomerRepository{db: db, timeout: timeout}
}

func customerScope(scope domain.Scope) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		switch {
		case scope.IsUnrestricted():
			return db
		case scope.Empty():
			return db.Where("1 = 0")
		default:
			return db.Where("customers.created_by = ?", scope.OwnerID())
		}
	}
}

func customerSearch(search string) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if search == "" {
			return db
		}
		return db.Where(
			searchClause("customers.first_name", "customers.last_name", "customers.email", "customers.phone", "customers.business_name"),
			map[string]interface{}{"q": likePattern(search)},
		)
	}
}

func (r *CustomerRepository) Create(ctx context.Context, c *domain.Customer) error {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	row := customerRowFrom(c)
	if err := r.db.WithContext(ctx).Omit(clause.Associations).Create(&row).Error; err != nil {
		return translate("insert customer", err)
	}
	return nil
}

func (r *CustomerRepository) Get(ctx context.Context, scope domain.Scope, id string) (*domain.Customer, error) {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	return r.get(r.db.WithContext(ctx), scope, id)
}

func (r *CustomerRepository) get(db *gorm.DB, scope domain.Scope, id string) (*domain.Customer, error) {
	var row customerRow
	err := db.Joins("Creator").Scopes(customerScope(scope)).Where("customers.id = ?", id).Take(&row).Error
	if err != nil {
		return nil, translate("get customer", err)
	}
	return row.toDomain(), nil
}

func (r *CustomerRepository) List(ctx context.Context, filter ports.ListCustomersFilter) ([]*domain.Customer, int64, error) {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	db := r.db.WithContext(ctx)

	var total int64
	err := db.Model(&customerRow{}).
		Scopes(customerScope(filter.Scope), customerSearch(filter.Search)).
		Count(&total).Error
	if err != nil {
		return nil, 0, translate("count customers", err)
	}

	var rows []customerRow
	err = db.Joins("Creator").
		Scopes(customerScope(filter.Scope), customerSearch(filter.Search)).
		Order("customers.created_at DESC").Order("customers.id").
		Offset(filter.Page.Offset()).Limit(filter.Page.PageSize).
		Find(&rows).Error
	if err != nil {
		return nil, 0, translate("list customers", err)
	}

	out := make([]*domain.Customer, len(rows))
	for i := range rows {
		out[i] = rows[i].toDomain()
	}
	return out, total, nil
}

func (r *CustomerRepository) Count(ctx context.Context, scope domain.Scope) (int64, error) {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	var n int64
	if err := r.db.WithContext(ctx).Model(&customerRow{}).Scopes(customerScope(scope)).Count(&n).Error; err != nil {
		return 0, translate("count customers", err)
	}
	return n, nil
}

func (r *CustomerRepository) Update(ctx context.Context, scope domain.Scope, id string, apply func(*domain.Customer) error) (*domain.Customer, error) {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	var updated *domain.Customer
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var row customerRow
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Scopes(customerScope(scope)).Where("customers.id = ?", id).Take(&row).Error
		if err != nil {
			return err
		}

		c := row.toDomain()
		if err := apply(c); err != nil {
			return err
		}
		c.ID, c.CreatedBy, c.CreatedAt = row.ID, row.CreatedBy, row.CreatedAt

		next := customerRowFrom(c)
		if err := tx.Omit(clause.Associations).Save(&next).Error; err != nil {
			return err
		}

		updated, err = r.get(tx, scope, id)
		return err
	})
	if err != nil {
		return nil, translate("update customer", err)
	}
	return updated, nil
}

func (r *CustomerRepository) Delete(ctx context.Context, scope domain.Scope, id string) error {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	res := r.db.WithContext(ctx).Scopes(customerScope(scope)).Where("customers.id = ?", id).Delete(&customerRow{})
	if res.Error != nil {
		return translate("delete customer", res.Error)
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}
