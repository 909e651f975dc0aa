package notification

import (
	"context"
	"errors"
	"time"

	"MentorDesk/internal/config"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var errNotificationNotFound = errors.New("notification not found")

type NotificationRepository struct {
	collection *mongo.Collection
	mentors    *mongo.Collection
	students   *mongo.Collection
}

func NewNotificationRepository(db *mongo.Database) *NotificationRepository {
	return &NotificationRepository{
		collection: db.Collection(config.NotificationsCollection),
		mentors:    db.Collection(config.MentorsCollection),
		students:   db.Collection(config.StudentsCollection),
	}
}

func (r *NotificationRepository) Create(ctx context.Context, n *Notification) error {
	res, err := r.collection.InsertOne(ctx, n)
	if err != nil {
		return err
	}
	n.ID = res.InsertedID.(primitive.ObjectID)
	return nil
}

// ClaimDue atomically moves one due notification from scheduled to sending
// and returns it, or nil when nothing is due. Concurrent schedulers never
// claim the same notification.
func (r *NotificationRepository) ClaimDue(ctx context.Context, now time.Time) (*Notification, error) {
	filter, update := claimQuery(now)
	opts := options.FindOneAndUpdate().
		SetSort(bson.D{{Key: "sendTime", Value: 1}}).
		SetReturnDocument(options.After)
	var n Notification
	err := r.collection.FindOneAndUpdate(ctx, filter, update, opts).Decode(&n)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, err
	}
	return &n, nil
}

func claimQuery(now time.Time) (filter, update bson.M) {
	filter = bson.M{"status": StatusScheduled, "sendTime": bson.M{"$lte": now}}
	update = bson.M{"$set": bson.M{"status": StatusSending, "updatedAt": now}}
	return filter, update
}

func (r *NotificationRepository) UpdateStatus(ctx context.Context, id primitive.ObjectID, status string, sentTo []string) error {
	update := bson.M{"$set": bson.M{"status": status, "sentTo": sentTo, "updatedAt": time.Now()}}
	res, err := r.collection.UpdateByID(ctx, id, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return errNotificationNotFound
	}
	return nil
}

func (r *NotificationRepository) ListByInstitute(ctx context.Context, institute primitive.ObjectID) ([]*Notification, error) {
	opts := options.Find().SetSort(bson.D{{Key: "sendTime", Value: -1}})
	cursor, err := r.collection.Find(ctx, bson.M{"institute": institute}, opts)
	if err != nil {
		return nil, err
	}
	notifications := []*Notification{}
	if err := cursor.All(ctx, &notifications); err != nil {
		return nil, err
	}
	return notifications, nil
}

func (r *NotificationRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*Notification, error) {
	var n Notification
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&n)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, err
	}
	return &n, nil
}

func (r *NotificationRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return errNotificationNotFound
	}
	return nil
}

// Recipients lists the emails of the institute's mentors and/or students.
func (r *NotificationRepository) Recipients(ctx context.Context, institute primitive.ObjectID, roles []string) ([]string, error) {
	var emails []string
	for _, role := range roles {
		var (
			coll   *mongo.Collection
			filter bson.M
		)
		switch role {
		case AudienceTeacher:
			coll, filter = r.mentors, bson.M{"institute": institute}
		case AudienceStudent:
			coll, filter = r.students, bson.M{"institute._id": institute}
		default:
			continue
		}
		cursor, err := coll.Find(ctx, filter, options.Find().SetProjection(bson.M{"email": 1}))
		if err != nil {
			return nil, err
		}
		var docs []struct {
			Email string `bson:"email"`
		}
		if err := cursor.All(ctx, &docs); err != nil {
			return nil, err
		}
		for _, d := range docs {
			emails = append(emails, d.Email)
		}
	}
	return emails, nil
}
