package mentor

import (
	"context"
	"errors"
	"time"

	"MentorDesk/internal/config"
	"MentorDesk/internal/store"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

var ErrDuplicateEmail = errors.New("mentor email already exists")

var studentSummary = bson.M{
	"_id":       1,
	"firstname": 1,
	"lastname":  1,
	"email":     1,
	"academic":  1,
	"mentor":    1,
}

type MentorRepository struct {
	store.Accounts
	collection *mongo.Collection
}

func NewMentorRepository(db *mongo.Database) *MentorRepository {
	coll := db.Collection(config.MentorsCollection)
	return &MentorRepository{Accounts: store.NewAccounts(coll), collection: coll}
}

func (r *MentorRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*Mentor, error) {
	var m Mentor
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&m)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, err
	}
	return &m, nil
}

func (r *MentorRepository) FindAll(ctx context.Context) ([]Mentor, error) {
	cursor, err := r.collection.Find(ctx, bson.M{})
	if err != nil {
		return nil, err
	}
	mentors := []Mentor{}
	if err := cursor.All(ctx, &mentors); err != nil {
		return nil, err
	}
	return mentors, nil
}

// FindRoster resolves the mentor's students with a $lookup into users.
func (r *MentorRepository) FindRoster(ctx context.Context, id primitive.ObjectID) (*Roster, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"_id": id}}},
		{{Key: "$lookup", Value: bson.M{
			"from": config.StudentsCollection,
			"let":  bson.M{"studentIds": bson.M{"$ifNull": bson.A{"$students._id", bson.A{}}}},
			"pipeline": bson.A{
				bson.M{"$match": bson.M{"$expr": bson.M{"$in": bson.A{"$_id", "$$studentIds"}}}},
				bson.M{"$project": studentSummary},
			},
			"as": "students",
		}}},
		{{Key: "$project", Value: bson.M{"_id": 1, "firstname": 1, "lastname": 1, "email": 1, "students": 1}}},
	}
	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	var out []Roster
	if err := cursor.All(ctx, &out); err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, nil
	}
	return &out[0], nil
}

// SetStatus reports whether a mentor with id exists.
func (r *MentorRepository) SetStatus(ctx context.Context, id primitive.ObjectID, status string) (bool, error) {
	res, err := r.collection.UpdateByID(ctx, id, bson.M{"$set": bson.M{"status": status, "updatedAt": time.Now()}})
	if err != nil {
		return false, err
	}
	return res.MatchedCount == 1, nil
}

// AddStudent puts studentID on the roster once.
func (r *MentorRepository) AddStudent(ctx context.Context, mentorID, studentID primitive.ObjectID) error {
	_, err := r.collection.UpdateByID(ctx, mentorID, bson.M{
		"$addToSet": bson.M{"students": bson.M{"_id": studentID}},
	})
	return err
}

// PullStudent removes studentID from every roster holding it.
func (r *MentorRepository) PullStudent(ctx context.Context, studentID primitive.ObjectID) (int64, error) {
	res, err := r.collection.UpdateMany(ctx,
		bson.M{"students._id": studentID},
		bson.M{"$pull": bson.M{"students": bson.M{"_id": studentID}}},
	)
	if err != nil {
		return 0, err
	}
	return res.ModifiedCount, nil
}

func (r *MentorRepository) Insert(ctx context.Context, m *Mentor) error {
	res, err := r.collection.InsertOne(ctx, m)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrDuplicateEmail
		}
		return err
	}
	m.ID = res.InsertedID.(primitive.ObjectID)
	return nil
}
