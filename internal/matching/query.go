package matching

import (
	"regexp"

	"MentorDesk/internal/mentor"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var searchFields = []string{"firstname", "lastname", "email"}

// BaseFilter selects unallocated students that fit the mentor's preferences.
func BaseFilter(pref mentor.Preference) bson.M {
	filter := bson.M{"mentor._id": nil}
	if len(pref.Standard) > 0 {
		filter["academic.standard"] = bson.M{"$in": pref.Standard}
	}
	if len(pref.CompetitiveExam) > 0 {
		filter["academic.competitiveExam"] = bson.M{"$in": pref.CompetitiveExam}
	}
	return filter
}

// ExactFilter narrows base to students whose name or email equals query.
func ExactFilter(base bson.M, query string) bson.M {
	return withAny(base, func(string) any { return query })
}

// FuzzyFilter narrows base to students whose name or email contains query,
// ignoring case. query is matched literally.
func FuzzyFilter(base bson.M, query string) bson.M {
	pattern := regexp.QuoteMeta(query)
	return withAny(base, func(string) any {
		return primitive.Regex{Pattern: pattern, Options: "i"}
	})
}

func withAny(base bson.M, value func(field string) any) bson.M {
	out := make(bson.M, len(base)+1)
	for k, v := range base {
		out[k] = v
	}
	or := make(bson.A, 0, len(searchFields))
	for _, f := range searchFields {
		or = append(or, bson.M{f: value(f)})
	}
	out["$or"] = or
	return out
}
