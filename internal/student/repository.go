package student

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

var ErrDuplicateEmail = errors.New("student email already exists")

type StudentRepository struct {
	store.Accounts
	collection *mongo.Collection
}

func NewStudentRepository(db *mongo.Database) *StudentRepository {
	coll := db.Collection(config.StudentsCollection)
	return &StudentRepository{Accounts: store.NewAccounts(coll), collection: coll}
}

func (r *StudentRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*Student, error) {
	var s Student
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&s)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, err
	}
	return &s, nil
}

// Find returns the students matching filter in store order.
func (r *StudentRepository) Find(ctx context.Context, filter bson.M) ([]Student, error) {
	cursor, err := r.collection.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	students := []Student{}
	if err := cursor.All(ctx, &students); err != nil {
		return nil, err
	}
	return students, nil
}

func (r *StudentRepository) FindByMentor(ctx context.Context, mentorID primitive.ObjectID) ([]Student, error) {
	return r.Find(ctx, bson.M{"mentor._id": mentorID})
}

func (r *StudentRepository) FindUnallocated(ctx context.Context) ([]Student, error) {
	return r.Find(ctx, bson.M{"mentor._id": nil})
}

// CountByIDs reports how many of ids exist.
func (r *StudentRepository) CountByIDs(ctx context.Context, ids []primitive.ObjectID) (int64, error) {
	return r.collection.CountDocuments(ctx, bson.M{"_id": bson.M{"$in": ids}})
}

func (r *StudentRepository) Insert(ctx context.Context, s *Student) error {
	res, err := r.collection.InsertOne(ctx, s)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrDuplicateEmail
		}
		return err
	}
	s.ID = res.InsertedID.(primitive.ObjectID)
	return nil
}

// AssignMentor sets the student's mentor only while it is still unallocated.
// It reports whether the document changed.
func (r *StudentRepository) AssignMentor(ctx context.Context, studentID, mentorID primitive.ObjectID) (bool, error) {
	filter, update := assignQuery(studentID, mentorID, time.Now())
	res, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return false, err
	}
	return res.ModifiedCount == 1, nil
}

// ClearMentor marks the student unallocated. An already unallocated student
// is left untouched and reported as unchanged.
func (r *StudentRepository) ClearMentor(ctx context.Context, studentID primitive.ObjectID) (bool, error) {
	filter, update := clearQuery(studentID, time.Now())
	res, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return false, err
	}
	return res.ModifiedCount == 1, nil
}

// assignQuery only matches a student without a mentor, so a concurrent
// allocation of the same student modifies nothing.
func assignQuery(studentID, mentorID primitive.ObjectID, now time.Time) (filter, update bson.M) {
	filter = bson.M{"_id": studentID, "mentor._id": nil}
	update = bson.M{"$set": bson.M{"mentor": bson.M{"_id": mentorID}, "updatedAt": now}}
	return filter, update
}

func clearQuery(studentID primitive.ObjectID, now time.Time) (filter, update bson.M) {
	filter = bson.M{"_id": studentID, "mentor._id": bson.M{"$ne": nil}}
	update = bson.M{"$set": bson.M{"mentor": bson.M{"_id": nil}, "updatedAt": now}}
	return filter, update
}
