package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/opskernel/admin-api/internal/core/domain"
	"github.com/opskernel/admin-api/internal/core/principal"
)

const userCollection = "sys_users"

// UserRepository persists system accounts in MongoDB.
type UserRepository struct {
	coll *mongo.Collection
}

func NewUserRepository(db *mongo.Database) *UserRepository {
	return &UserRepository{coll: db.Collection(userCollection)}
}

type userDoc struct {
	ID           primitive.ObjectID `bson:"_id,omitempty"`
	UserName     string             `bson:"user_name"`
	PasswordHash string             `bson:"password_hash"`
	NickName     string             `bson:"nick_name,omitempty"`
	Status       bool               `bson:"status"`
	RoleIDs      []string           `bson:"role_ids,omitempty"`
	LoginIP      string             `bson:"login_ip,omitempty"`
	LoginTime    int64              `bson:"login_time,omitempty"`
	CreateBy     string             `bson:"create_by,omitempty"`
	UpdateBy     string             `bson:"update_by,omitempty"`
	CreatedAt    int64              `bson:"created_at"`
	UpdatedAt    int64              `bson:"updated_at"`
}

func (d *userDoc) toDomain() *domain.User {
	u := &domain.User{
		ID:           d.ID.Hex(),
		UserName:     d.UserName,
		PasswordHash: d.PasswordHash,
		NickName:     d.NickName,
		Status:       d.Status,
		RoleIDs:      d.RoleIDs,
		LoginIP:      d.LoginIP,
		CreateBy:     d.CreateBy,
		UpdateBy:     d.UpdateBy,
		CreatedAt:    time.Unix(d.CreatedAt, 0).UTC(),
		UpdatedAt:    time.Unix(d.UpdatedAt, 0).UTC(),
	}
	if d.LoginTime > 0 {
		u.LoginTime = time.Unix(d.LoginTime, 0).UTC()
	}
	return u
}

// Create inserts a new account. Attribution fields are stamped from the
// principal bound to ctx before the write.
func (r *UserRepository) Create(ctx context.Context, user *domain.User) (*domain.User, error) {
	principal.Stamp(ctx, user, true)

	now := time.Now().UTC()
	doc := userDoc{
		UserName:     user.UserName,
		PasswordHash: user.PasswordHash,
		NickName:     user.NickName,
		Status:       user.Status,
		RoleIDs:      user.RoleIDs,
		CreateBy:     user.CreateBy,
		UpdateBy:     user.UpdateBy,
		CreatedAt:    now.Unix(),
		UpdatedAt:    now.Unix(),
	}

	res, err := r.coll.InsertOne(ctx, doc)
	if err != nil {
		return nil, fmt.Errorf("insert user: %w", err)
	}

	created := *user
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		created.ID = oid.Hex()
	}
	created.CreatedAt = now
	created.UpdatedAt = now
	return &created, nil
}

// FindByUserName looks an account up by its login name.
func (r *UserRepository) FindByUserName(ctx context.Context, userName string) (*domain.User, error) {
	var doc userDoc
	if err := r.coll.FindOne(ctx, bson.M{"user_name": userName}).Decode(&doc); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("find user by name: %w", err)
	}
	return doc.toDomain(), nil
}

// FindByID looks an account up by its identifier.
func (r *UserRepository) FindByID(ctx context.Context, id string) (*domain.User, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrUserNotFound
	}

	var doc userDoc
	if err := r.coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("find user by id: %w", err)
	}
	return doc.toDomain(), nil
}

// RecordLogin stamps the last login IP and time on the account.
func (r *UserRepository) RecordLogin(ctx context.Context, id, ip string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return domain.ErrUserNotFound
	}

	now := time.Now().UTC().Unix()
	_, err = r.coll.UpdateByID(ctx, oid, bson.M{"$set": bson.M{
		"login_ip":   ip,
		"login_time": now,
		"updated_at": now,
	}})
	if err != nil {
		return fmt.Errorf("record login: %w", err)
	}
	return nil
}
