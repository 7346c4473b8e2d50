package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/opskernel/admin-api/internal/core/domain"
)

const auditCollection = "sys_logs"

// AuditRepository persists operation-log entries.
type AuditRepository struct {
	coll *mongo.Collection
}

func NewAuditRepository(db *mongo.Database) *AuditRepository {
	return &AuditRepository{coll: db.Collection(auditCollection)}
}

type auditDoc struct {
	ID            primitive.ObjectID `bson:"_id,omitempty"`
	LogType       string             `bson:"log_type,omitempty"`
	LogTitle      string             `bson:"log_title,omitempty"`
	RequestMethod string             `bson:"request_method,omitempty"`
	APIURL        string             `bson:"api_url,omitempty"`
	RequestData   string             `bson:"request_data,omitempty"`
	ResponseData  string             `bson:"response_data,omitempty"`
	UserName      string             `bson:"user_name,omitempty"`
	IP            string             `bson:"ip,omitempty"`
	Status        bool               `bson:"status"`
	Message       string             `bson:"message,omitempty"`
	TakeTimeMs    int64              `bson:"take_time"`
	RequestTime   int64              `bson:"request_time"`
}

// Insert writes one audit entry.
func (r *AuditRepository) Insert(ctx context.Context, entry *domain.AuditEntry) error {
	requestTime := entry.RequestTime
	if requestTime.IsZero() {
		requestTime = time.Now().UTC()
	}

	doc := auditDoc{
		LogType:       entry.LogType,
		LogTitle:      entry.LogTitle,
		RequestMethod: entry.RequestMethod,
		APIURL:        entry.APIURL,
		RequestData:   entry.RequestData,
		ResponseData:  entry.ResponseData,
		UserName:      entry.UserName,
		IP:            entry.IP,
		Status:        entry.Status,
		Message:       entry.Message,
		TakeTimeMs:    entry.TakeTimeMs,
		RequestTime:   requestTime.Unix(),
	}

	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("insert audit entry: %w", err)
	}
	return nil
}
