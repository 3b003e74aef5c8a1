package mongo

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/bizledger/records-api/internal/core/domain"
	"github.com/bizledger/records-api/internal/core/ports"
)

const collectionCustomers = "customers"

type customerDoc struct {
	ID                string    `bson:"_id"`
	FirstName         string    `bson:"first_name"`
	LastName          string    `bson:"last_name"`
	Email             string    `bson:"email"`
	Phone             string    `bson:"phone"`
	Address           string    `bson:"address,omitempty"`
	City              string    `bson:"city,omitempty"`
	State             string    `bson:"state,omitempty"`
	PostalCode        string    `bson:"postal_code,omitempty"`
	Country           string    `bson:"country"`
	BusinessName      string    `bson:"business_name"`
	BusinessType      string    `bson:"business_type"`
	BusinessRegNumber string    `bson:"business_reg_number,omitempty"`
	TINNumber         string    `bson:"tin_number"`
	VATNumber         string    `bson:"vat_number"`
	Activities        string    `bson:"activities,omitempty"`
	CreatedBy         string    `bson:"created_by"`
	CreatedAt         time.Time `bson:"created_at"`
	UpdatedAt         time.Time `bson:"updated_at"`
}

func customerDocFrom(c *domain.Customer) customerDoc {
	return customerDoc{
		ID:                c.ID,
		FirstName:         c.FirstName,
		LastName:          c.LastName,
		Email:             c.Email,
		Phone:             c.Phone,
		Address:           c.Address,
		City:              c.City,
		State:             c.State,
		PostalCode:        c.PostalCode,
		Country:           c.Country,
		BusinessName:      c.BusinessName,
		BusinessType:      c.BusinessType,
		BusinessRegNumber: c.BusinessRegNumber,
		TINNumber:         c.TINNumber,
		VATNumber:         c.VATNumber,
		Activities:        c.Activities,
		CreatedBy:         c.CreatedBy,
		CreatedAt:         c.CreatedAt.UTC(),
		UpdatedAt:         c.UpdatedAt.UTC(),
	}
}

func (d customerDoc) toDomain() *domain.Customer {
	return &domain.Customer{
		ID:                d.ID,
		FirstName:         d.FirstName,
		LastName:          d.LastName,
		Email:             d.Email,
		Phone:             d.Phone,
		Address:           d.Address,
		City:              d.City,
		State:             d.State,
		PostalCode:        d.PostalCode,
		Country:           d.Country,
		BusinessName:      d.BusinessName,
		BusinessType:      d.BusinessType,
		BusinessRegNumber: d.BusinessRegNumber,
		TINNumber:         d.TINNumber,
		VATNumber:         d.VATNumber,
		Activities:        d.Activities,
		CreatedBy:         d.CreatedBy,
		CreatedAt:         d.CreatedAt.UTC(),
		UpdatedAt:         d.UpdatedAt.UTC(),
	}
}

func customerIndexes() []mongo.IndexModel {
	return []mongo.IndexModel{
		{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "created_by", Value: 1}, {Key: "created_at", Value: -1}}},
		{Keys: bson.D{{Key: "created_at", Value: -1}}},
	}
}

// CustomerRepository implements ports.CustomerRepository on the customers
// collection. Creator names are resolved from the users collection on read.
type CustomerRepository struct {
	col     *mongo.Collection
	users   *mongo.Collection
	timeout time.Duration
}

func NewCustomerRepository(db *mongo.Database, timeout time.Duration) *CustomerRepository {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &CustomerRepository{
		col:     db.Collection(collectionCustomers),
		users:   db.Collection(collectionUsers),
		timeout: timeout,
	}
}

func (r *CustomerRepository) Create(ctx context.Context, c *domain.Customer) error {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	n, err := r.users.CountDocuments(ctx, bson.M{"_id": c.CreatedBy}, options.Count().SetLimit(1))
	if err != nil {
		return mapError("check creator", err)
	}
	if n == 0 {
		return fmt.Errorf("insert customer: unknown creator: %w", domain.ErrInvalidOperation)
	}

	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	if _, err := r.col.InsertOne(ctx, customerDocFrom(c)); err != nil {
		return mapError("insert customer", err)
	}
	return nil
}

func (r *CustomerRepository) Get(ctx context.Context, scope domain.Scope, id string) (*domain.Customer, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	return r.get(ctx, scope, id)
}

func (r *CustomerRepository) get(ctx context.Context, scope domain.Scope, id string) (*domain.Customer, error) {
	var doc customerDoc
	if err := r.col.FindOne(ctx, byID(id, scope, "created_by")).Decode(&doc); err != nil {
		return nil, mapError("get customer", err)
	}
	out := []*domain.Customer{doc.toDomain()}
	if err := r.fillCreatorNames(ctx, out); err != nil {
		return nil, err
	}
	return out[0], nil
}

func (r *CustomerRepository) List(ctx context.Context, filter ports.ListCustomersFilter) ([]*domain.Customer, int64, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	query := customerFilter(filter.Scope, filter.Search)

	total, err := r.col.CountDocuments(ctx, query)
	if err != nil {
		return nil, 0, mapError("count customers", err)
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: 1}}).
		SetSkip(int64(filter.Page.Offset())).
		SetLimit(int64(filter.Page.PageSize))

	cur, err := r.col.Find(ctx, query, opts)
	if err != nil {
		return nil, 0, mapError("list customers", err)
	}
	defer cur.Close(ctx)

	var docs []customerDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, 0, mapError("decode customers", err)
	}

	out := make([]*domain.Customer, len(docs))
	for i := range docs {
		out[i] = docs[i].toDomain()
	}
	if err := r.fillCreatorNames(ctx, out); err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

func (r *CustomerRepository) Count(ctx context.Context, scope domain.Scope) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	n, err := r.col.CountDocuments(ctx, scopeFilter(scope, "created_by"))
	if err != nil {
		return 0, mapError("count customers", err)
	}
	return n, nil
}

// Update replaces the document only if updated_at is unchanged since the read.
func (r *CustomerRepository) Update(ctx context.Context, scope domain.Scope, id string, apply func(*domain.Customer) error) (*domain.Customer, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	current, err := r.get(ctx, scope, id)
	if err != nil {
		return nil, err
	}
	readAt := current.UpdatedAt
	owner, createdAt, name := current.CreatedBy, current.CreatedAt, current.CreatedByName

	if err := apply(current); err != nil {
		return nil, err
	}
	current.ID, current.CreatedBy, current.CreatedAt, current.CreatedByName = id, owner, createdAt, name

	guard := and(byID(id, scope, "created_by"), bson.M{"updated_at": readAt})
	res, err := r.col.ReplaceOne(ctx, guard, customerDocFrom(current))
	if err != nil {
		return nil, mapError("update customer", err)
	}
	if res.MatchedCount == 0 {
		return nil, fmt.Errorf("update customer: modified concurrently: %w", domain.ErrConflict)
	}
	return current, nil
}

func (r *CustomerRepository) Delete(ctx context.Context, scope domain.Scope, id string) error {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	res, err := r.col.DeleteOne(ctx, byID(id, scope, "created_by"))
	if err != nil {
		return mapError("delete customer", err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *CustomerRepository) fillCreatorNames(ctx context.Context, customers []*domain.Customer) error {
	ids := make(bson.A, 0, len(customers))
	seen := make(map[string]bool, len(customers))
	for _, c := range customers {
		if !seen[c.CreatedBy] {
			seen[c.CreatedBy] = true
			ids = append(ids, c.CreatedBy)
		}
	}
	if len(ids) == 0 {
		return nil
	}

	opts := options.Find().SetProjection(bson.M{"username": 1, "first_name": 1, "last_name": 1})
	cur, err := r.users.Find(ctx, bson.M{"_id": bson.M{"$in": ids}}, opts)
	if err != nil {
		return mapError("resolve creators", err)
	}
	defer cur.Close(ctx)

	var docs []identityDoc
	if err := cur.All(ctx, &docs); err != nil {
		return mapError("decode creators", err)
	}

	names := make(map[string]string, len(docs))
	for _, d := range docs {
		names[d.ID] = d.toDomain().DisplayName()
	}
	for _, c := range customers {
		c.CreatedByName = names[c.CreatedBy]
	}
	return nil
}
