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

const collectionUsers = "users"

type identityDoc struct {
	ID           string    `bson:"_id"`
	Username     string    `bson:"username"`
	Email        string    `bson:"email"`
	PasswordHash string    `bson:"password_hash"`
	FirstName    string    `bson:"first_name"`
	LastName     string    `bson:"last_name"`
	Role         string    `bson:"role"`
	CreatedAt    time.Time `bson:"created_at"`
	UpdatedAt    time.Time `bson:"updated_at"`
}

func identityDocFrom(i *domain.Identity) identityDoc {
	return identityDoc{
		ID:           i.ID,
		Username:     i.Username,
		Email:        i.Email,
		PasswordHash: i.PasswordHash,
		FirstName:    i.FirstName,
		LastName:     i.LastName,
		Role:         string(i.Role),
		CreatedAt:    i.CreatedAt.UTC(),
		UpdatedAt:    i.UpdatedAt.UTC(),
	}
}

func (d identityDoc) toDomain() *domain.Identity {
	return &domain.Identity{
		ID:           d.ID,
		Username:     d.Username,
		Email:        d.Email,
		PasswordHash: d.PasswordHash,
		FirstName:    d.FirstName,
		LastName:     d.LastName,
		Role:         domain.Role(d.Role),
		CreatedAt:    d.CreatedAt.UTC(),
		UpdatedAt:    d.UpdatedAt.UTC(),
	}
}

func identityIndexes() []mongo.IndexModel {
	return []mongo.IndexModel{
		{Keys: bson.D{{Key: "username", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "role", Value: 1}}},
	}
}

// IdentityRepository implements ports.IdentityRepository on the users
// collection.
type IdentityRepository struct {
	col       *mongo.Collection
	customers *mongo.Collection
	timeout   time.Duration
}

func NewIdentityRepository(db *mongo.Database, timeout time.Duration) *IdentityRepository {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &IdentityRepository{
		col:       db.Collection(collectionUsers),
		customers: db.Collection(collectionCustomers),
		timeout:   timeout,
	}
}

func (r *IdentityRepository) Create(ctx context.Context, identity *domain.Identity) error {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	if !identity.Role.Valid() {
		return fmt.Errorf("insert identity: unknown role %q: %w", identity.Role, domain.ErrInvalidOperation)
	}
	if identity.ID == "" {
		identity.ID = uuid.NewString()
	}

	if _, err := r.col.InsertOne(ctx, identityDocFrom(identity)); err != nil {
		return mapError("insert identity", err)
	}
	return nil
}

func (r *IdentityRepository) FindByUsername(ctx context.Context, username string) (*domain.Identity, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	var doc identityDoc
	if err := r.col.FindOne(ctx, bson.M{"username": username}).Decode(&doc); err != nil {
		return nil, mapError("find identity", err)
	}
	return doc.toDomain(), nil
}

func (r *IdentityRepository) Get(ctx context.Context, scope domain.Scope, id string) (*domain.Identity, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	return r.get(ctx, scope, id)
}

func (r *IdentityRepository) get(ctx context.Context, scope domain.Scope, id string) (*domain.Identity, error) {
	var doc identityDoc
	if err := r.col.FindOne(ctx, byID(id, scope, "_id")).Decode(&doc); err != nil {
		return nil, mapError("get identity", err)
	}
	return doc.toDomain(), nil
}

func (r *IdentityRepository) List(ctx context.Context, filter ports.ListIdentitiesFilter) ([]*domain.Identity, int64, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	query := identityFilter(filter.Scope, filter.Role, filter.Search)

	total, err := r.col.CountDocuments(ctx, query)
	if err != nil {
		return nil, 0, mapError("count identities", err)
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: 1}}).
		SetSkip(int64(filter.Page.Offset())).
		SetLimit(int64(filter.Page.PageSize))

	cur, err := r.col.Find(ctx, query, opts)
	if err != nil {
		return nil, 0, mapError("list identities", err)
	}
	defer cur.Close(ctx)

	var docs []identityDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, 0, mapError("decode identities", err)
	}

	out := make([]*domain.Identity, len(docs))
	for i := range docs {
		out[i] = docs[i].toDomain()
	}
	return out, total, nil
}

// Update replaces the document only if updated_at is unchanged since the
// read, so concurrent writers cannot overwrite each other silently.
func (r *IdentityRepository) Update(ctx context.Context, scope domain.Scope, id string, apply func(*domain.Identity) error) (*domain.Identity, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	current, err := r.get(ctx, scope, id)
	if err != nil {
		return nil, err
	}
	readAt := current.UpdatedAt

	if err := apply(current); err != nil {
		return nil, err
	}
	current.ID = id

	guard := and(byID(id, scope, "_id"), bson.M{"updated_at": readAt})
	res, err := r.col.ReplaceOne(ctx, guard, identityDocFrom(current))
	if err != nil {
		return nil, mapError("update identity", err)
	}
	if res.MatchedCount == 0 {
		return nil, fmt.Errorf("update identity: modified concurrently: %w", domain.ErrConflict)
	}
	return current, nil
}

func (r *IdentityRepository) Delete(ctx context.Context, scope domain.Scope, id string, guard func(*domain.Identity) error) error {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	current, err := r.get(ctx, scope, id)
	if err != nil {
		return err
	}
	if guard != nil {
		if err := guard(current); err != nil {
			return err
		}
	}

	owned, err := r.customers.CountDocuments(ctx, bson.M{"created_by": id}, options.Count().SetLimit(1))
	if err != nil {
		return mapError("count owned customers", err)
	}
	if owned > 0 {
		return fmt.Errorf("delete identity: still owns customers: %w", domain.ErrInvalidOperation)
	}

	// The guard ran against this read; a role change since then must not
	// slip past it.
	res, err := r.col.DeleteOne(ctx, unchangedIdentity(scope, current))
	if err != nil {
		return mapError("delete identity", err)
	}
	if res.DeletedCount == 0 {
		return fmt.Errorf("delete identity: modified concurrently: %w", domain.ErrConflict)
	}
	return nil
}

func (r *IdentityRepository) CountByRole(ctx context.Context, role domain.Role) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	filter := bson.M{}
	if role != "" {
		filter["role"] = string(role)
	}
	n, err := r.col.CountDocuments(ctx, filter)
	if err != nil {
		return 0, mapError("count identities", err)
	}
	return n, nil
}
