package mongo

import (
	"regexp"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/bizledger/records-api/internal/core/domain"
)

// matchNothing is a filter no document satisfies.
func matchNothing() bson.M {
	return bson.M{"_id": bson.M{"$in": bson.A{}}}
}

// scopeFilter restricts a query to the rows scope permits. ownerField names
// the document field holding the owner id.
func scopeFilter(scope domain.Scope, ownerField string) bson.M {
	switch {
	case scope.IsUnrestricted():
		return bson.M{}
	case scope.Empty():
		return matchNothing()
	default:
		return bson.M{ownerField: scope.OwnerID()}
	}
}

// searchFilter ORs a case-insensitive substring match over fields.
func searchFilter(search string, fields ...string) bson.M {
	if search == "" {
		return nil
	}
	re := primitive.Regex{Pattern: regexp.QuoteMeta(search), Options: "i"}
	or := make(bson.A, 0, len(fields))
	for _, f := range fields {
		or = append(or, bson.M{f: re})
	}
	return bson.M{"$or": or}
}

// and combines non-empty filters.
func and(filters ...bson.M) bson.M {
	parts := make(bson.A, 0, len(filters))
	for _, f := range filters {
		if len(f) > 0 {
			parts = append(parts, f)
		}
	}
	switch len(parts) {
	case 0:
		return bson.M{}
	case 1:
		return parts[0].(bson.M)
	}
	return bson.M{"$and": parts}
}

func customerFilter(scope domain.Scope, search string) bson.M {
	return and(
		scopeFilter(scope, "created_by"),
		searchFilter(search, "first_name", "last_name", "email", "phone", "business_name"),
	)
}

func identityFilter(scope domain.Scope, role domain.Role, search string) bson.M {
	var byRole bson.M
	if role != "" {
		byRole = bson.M{"role": string(role)}
	}
	return and(
		scopeFilter(scope, "_id"),
		byRole,
		searchFilter(search, "username", "email", "first_name", "last_name"),
	)
}

// byID matches one document inside scope.
func byID(id string, scope domain.Scope, ownerField string) bson.M {
	return and(bson.M{"_id": id}, scopeFilter(scope, ownerField))
}

// unchangedIdentity matches the identity only while its role and updated_at
// still equal what current was read with.
func unchangedIdentity(scope domain.Scope, current *domain.Identity) bson.M {
	return and(byID(current.ID, scope, "_id"), bson.M{
		"updated_at": current.UpdatedAt,
		"role":       string(current.Role),
	})
}
