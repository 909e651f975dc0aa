package batch

import (
	"math"
	"time"
)

// ComputeReport derives the batch report from its classes. Every class that
// is neither completed nor cancelled counts as pending.
func ComputeReport(classes []ClassRecord, totalStudents int, now time.Time) Report {
	r := Report{
		TotalClasses:  len(classes),
		TotalStudents: totalStudents,
		LastUpdated:   now,
	}
	attended := 0
	for _, c := range classes {
		switch c.Status {
		case ClassCompleted:
			r.CompletedClasses++
			r.TotalDuration += c.Duration
		case ClassCancelled:
			r.CancelledClasses++
		case ClassRescheduled:
			r.RescheduledClasses++
		}
		attended += len(c.AttendedStudents)
	}
	r.PendingClasses = r.TotalClasses - r.CompletedClasses - r.CancelledClasses

	if totalStudents > 0 && r.TotalClasses > 0 {
		r.AverageAttendance = percent(float64(attended), float64(totalStudents*r.TotalClasses))
	}
	if r.TotalClasses > 0 {
		r.SyllabusProgress = percent(float64(r.CompletedClasses), float64(r.TotalClasses))
	}
	return r
}

func percent(part, whole float64) int {
	return int(math.Round(part / whole * 100))
}
