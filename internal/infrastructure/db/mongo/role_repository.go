package mongo

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/opskernel/admin-api/internal/core/domain"
)

const roleCollection = "sys_roles"

// RoleRepository loads role definitions. Permission strings are stored
// flattened on the role document.
type RoleRepository struct {
	coll *mongo.Collection
}

func NewRoleRepository(db *mongo.Database) *RoleRepository {
	return &RoleRepository{coll: db.Collection(roleCollection)}
}

type roleDoc struct {
	ID          primitive.ObjectID `bson:"_id,omitempty"`
	RoleCode    string             `bson:"role_code"`
	RoleName    string             `bson:"role_name,omitempty"`
	Permissions []string           `bson:"permissions,omitempty"`
}

// FindByIDs returns the roles for the given identifiers. Unknown ids and
// unparseable ids are skipped rather than failing the whole lookup.
func (r *RoleRepository) FindByIDs(ctx context.Context, ids []string) ([]domain.Role, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	oids := make([]primitive.ObjectID, 0, len(ids))
	for _, id := range ids {
		oid, err := primitive.ObjectIDFromHex(id)
		if err != nil {
			continue
		}
		oids = append(oids, oid)
	}
	if len(oids) == 0 {
		return nil, nil
	}

	cur, err := r.coll.Find(ctx, bson.M{"_id": bson.M{"$in": oids}})
	if err != nil {
		return nil, fmt.Errorf("find roles: %w", err)
	}
	defer cur.Close(ctx)

	var roles []domain.Role
	for cur.Next(ctx) {
		var doc roleDoc
		if err := cur.Decode(&doc); err != nil {
			return nil, fmt.Errorf("decode role: %w", err)
		}
		roles = append(roles, domain.Role{
			ID:          doc.ID.Hex(),
			RoleCode:    doc.RoleCode,
			RoleName:    doc.RoleName,
			Permissions: doc.Permissions,
		})
	}
	if err := cur.Err(); err != nil {
		return nil, fmt.Errorf("iterate roles: %w", err)
	}
	return roles, nil
}
