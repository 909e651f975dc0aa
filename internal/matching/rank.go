package matching

import (
	"strings"

	"MentorDesk/internal/student"
)

// GenderBuckets orders candidates for a mentor: same gender first, then
// unknown gender, then a different known gender. Relative order inside each
// bucket is preserved.
func GenderBuckets(mentorGender string, candidates []student.Student) []student.Student {
	want := normalizeGender(mentorGender)
	same := make([]student.Student, 0, len(candidates))
	var other, unknown []student.Student
	for _, c := range candidates {
		g := normalizeGender(c.About.Gender)
		switch {
		case g == "":
			unknown = append(unknown, c)
		case want != "" && g == want:
			same = append(same, c)
		default:
			other = append(other, c)
		}
	}
	out := append(same, unknown...)
	return append(out, other...)
}

func normalizeGender(g string) string {
	return strings.ToLower(strings.TrimSpace(g))
}
