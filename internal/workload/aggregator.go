package workload

import (
	"math"

	"github.com/noah-isme/college-timetable-api/internal/models"
)

// DefaultAcademicYearMonths is the month count a duty is prorated against.
const DefaultAcademicYearMonths = 10

// Snapshot is the read-only input for one academic year.
type Snapshot struct {
	Instructors []models.Instructor
	Duties      []models.Duty
	Loads       []models.InstructorTeachingLoad
	Projects    []models.ResearchProject
	Members     []models.ResearchMember
	Internships []models.CreditHours
	Development []models.CreditHours
}

// Aggregator turns a snapshot into per-instructor balance rows.
type Aggregator struct {
	months float64
}

// NewAggregator uses DefaultAcademicYearMonths when months is not positive.
func NewAggregator(months int) *Aggregator {
	if months <= 0 {
		months = DefaultAcademicYearMonths
	}
	return &Aggregator{months: float64(months)}
}

// Compute returns one row per instructor in snapshot order. Missing quotas,
// ratios, duties or projects contribute zero.
func (a *Aggregator) Compute(snapshot Snapshot) []models.InstructorBalance {
	duties := make(map[string][]models.Duty)
	for _, duty := range snapshot.Duties {
		duties[duty.InstructorID] = append(duties[duty.InstructorID], duty)
	}
	teaching := TeachingHours(snapshot.Loads)
	research := ResearchHours(snapshot.Projects, snapshot.Members)
	internships := sumCredits(snapshot.Internships)
	development := sumCredits(snapshot.Development)

	rows := make([]models.InstructorBalance, 0, len(snapshot.Instructors))
	for _, instructor := range snapshot.Instructors {
		row := models.InstructorBalance{
			InstructorID:      instructor.ID,
			InstructorCode:    instructor.Code,
			InstructorName:    instructor.Name,
			BaseTeachingQuota: valueOrZero(instructor.TeachingQuota),
			BaseAdminQuota:    valueOrZero(instructor.AdminQuota),
			Duties:            make([]models.DutyReduction, 0, len(duties[instructor.ID])),
		}

		for _, duty := range duties[instructor.ID] {
			reduction := a.Reduce(row.BaseTeachingQuota, row.BaseAdminQuota, duty)
			row.TeachingReducedHours += reduction.TeachingHours
			row.AdminReducedHours += reduction.AdminHours
			row.Duties = append(row.Duties, reduction)
		}
		row.AdjustedTeachingQuota = math.Max(0, row.BaseTeachingQuota-row.TeachingReducedHours)
		row.AdjustedAdminQuota = math.Max(0, row.BaseAdminQuota-row.AdminReducedHours)

		row.TeachingHours = teaching[instructor.ID]
		row.ConversionHours = row.TeachingHours * valueOrZero(instructor.ConversionRatio)
		row.ResearchHours = research[instructor.ID]
		row.InternshipHours = internships[instructor.ID]
		row.DevelopmentHours = development[instructor.ID]
		row.AdminHoursTotal = row.ConversionHours + row.ResearchHours + row.InternshipHours + row.DevelopmentHours

		row.TeachingOverload = row.TeachingHours - row.AdjustedTeachingQuota
		row.AdminOverload = row.AdminHoursTotal - row.AdjustedAdminQuota
		rows = append(rows, row)
	}
	return rows
}

// Reduce prorates one duty's percentages against the base quotas.
func (a *Aggregator) Reduce(baseTeaching, baseAdmin float64, duty models.Duty) models.DutyReduction {
	factor := float64(duty.Months) / a.months
	return models.DutyReduction{
		DutyID:          duty.ID,
		ReductionName:   duty.ReductionName,
		Months:          duty.Months,
		TeachingPercent: duty.TeachingPercent,
		AdminPercent:    duty.AdminPercent,
		TeachingHours:   baseTeaching * (duty.TeachingPercent / 100) * factor,
		AdminHours:      baseAdmin * (duty.AdminPercent / 100) * factor,
	}
}

// TeachingHours sums periods times attached weeks per instructor. One period is one hour.
func TeachingHours(loads []models.InstructorTeachingLoad) map[string]float64 {
	hours := make(map[string]float64)
	for _, load := range loads {
		periods := load.EndPeriod - load.StartPeriod + 1
		if periods <= 0 || load.WeekCount <= 0 {
			continue
		}
		hours[load.InstructorID] += float64(periods * load.WeekCount)
	}
	return hours
}

// ResearchHours credits each member's share of its project's hours to the member's instructor.
// Projects without members contribute nothing.
func ResearchHours(projects []models.ResearchProject, members []models.ResearchMember) map[string]float64 {
	byProject := make(map[string][]models.ResearchMember)
	for _, member := range members {
		byProject[member.ProjectID] = append(byProject[member.ProjectID], member)
	}
	hours := make(map[string]float64)
	for _, project := range projects {
		projectMembers := byProject[project.ID]
		if len(projectMembers) == 0 {
			continue
		}
		shares := Shares(projectMembers)
		total := project.Hours()
		for _, member := range projectMembers {
			hours[member.InstructorID] += total * shares[member.ID]
		}
	}
	return hours
}

func sumCredits(credits []models.CreditHours) map[string]float64 {
	sums := make(map[string]float64, len(credits))
	for _, credit := range credits {
		sums[credit.InstructorID] += credit.Hours
	}
	return sums
}

func valueOrZero(value *float64) float64 {
	if value == nil {
		return 0
	}
	return *value
}
