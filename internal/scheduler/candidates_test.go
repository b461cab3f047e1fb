package scheduler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/college-timetable-api/internal/models"
)

func TestSessionLengthByCodePrefix(t *testing.T) {
	cases := []struct {
		code    string
		kind    models.SubjectKind
		periods int
	}{
		{"TT301", models.SubjectKindInternship, 0},
		{"MĐ201", models.SubjectKindPractical, 4},
		{"mđ201", models.SubjectKindPractical, 4},
		{"MD201", models.SubjectKindPractical, 4},
		{"MH101", models.SubjectKindLecture, 5},
		{" mh101 ", models.SubjectKindLecture, 5},
		{"XX900", models.SubjectKindUnclassified, 5},
		{"", models.SubjectKindUnclassified, 5},
	}
	for _, tc := range cases {
		t.Run(tc.code, func(t *testing.T) {
			kind := models.InferSubjectKind(tc.code)
			assert.Equal(t, tc.kind, kind)
			assert.Equal(t, tc.periods, PeriodsPerSession(kind))
		})
	}
}

func TestStoredKindOverridesCodePrefix(t *testing.T) {
	subject := models.Subject{Code: "MH101", Kind: models.SubjectKindPractical}
	assert.Equal(t, models.SubjectKindPractical, subject.ResolvedKind())
	assert.Equal(t, 4, PeriodsPerSession(subject.ResolvedKind()))

	subject.Kind = ""
	assert.Equal(t, models.SubjectKindLecture, subject.ResolvedKind())
}

func TestSessionsNeeded(t *testing.T) {
	assert.Equal(t, 2, SessionsNeeded(10, 5))
	assert.Equal(t, 3, SessionsNeeded(10.5, 5))
	assert.Equal(t, 0, SessionsNeeded(0, 5))
	assert.Equal(t, 0, SessionsNeeded(30, 0))
}

func catalogRooms() []models.Room {
	return []models.Room{
		{ID: "r-lec", Code: "A101", RoomType: "LECTURE", Capacity: 60},
		{ID: "r-small", Code: "A102", RoomType: "LECTURE", Capacity: 20},
		{ID: "r-lab", Code: "B201", RoomType: "LAB", Capacity: 40, Capabilities: []string{"networking"}},
		{ID: "r-cs", Code: "C301", RoomType: "LECTURE", Capacity: 50, AllowedMajors: []string{"maj-cs"}},
	}
}

func roomIDs(rooms []models.Room) []string {
	ids := make([]string, 0, len(rooms))
	for _, room := range rooms {
		ids = append(ids, room.ID)
	}
	return ids
}

func TestFilterRooms(t *testing.T) {
	lab := "LAB"
	lecture := "LECTURE"
	networking := "networking"
	welding := "welding"

	cases := []struct {
		name   string
		filter RoomFilter
		want   []string
	}{
		{"no constraints drops restricted rooms", RoomFilter{}, []string{"r-lec", "r-small", "r-lab"}},
		{"room type", RoomFilter{RoomType: &lab}, []string{"r-lab"}},
		{"capacity", RoomFilter{RoomType: &lecture, MinCapacity: 30}, []string{"r-lec"}},
		{"capability present", RoomFilter{Capability: &networking}, []string{"r-lab"}},
		{"capability missing", RoomFilter{Capability: &welding}, []string{}},
		{"matching major opens restricted room", RoomFilter{Majors: []string{"maj-cs"}}, []string{"r-lec", "r-small", "r-lab", "r-cs"}},
		{"other major keeps restricted room closed", RoomFilter{Majors: []string{"maj-ee"}}, []string{"r-lec", "r-small", "r-lab"}},
		{"allowed codes", RoomFilter{Majors: []string{"maj-cs"}, AllowedCodes: []string{"C301", "A102"}}, []string{"r-small", "r-cs"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, roomIDs(FilterRooms(catalogRooms(), tc.filter)))
		})
	}
}

func TestCandidateRoomsCohortWithoutMajor(t *testing.T) {
	ctx := lectureContext()
	ctx.Cohorts = []models.Cohort{{ID: "coh-1", Size: 30}}
	rooms := []models.Room{{ID: "r-cs", Code: "C301", Capacity: 50, AllowedMajors: []string{"maj-9"}}}

	assert.Empty(t, CandidateRooms(ctx, rooms))

	ctx.Cohorts = nil
	assert.Empty(t, CandidateRooms(ctx, rooms))
}

func TestCandidateRoomsUsesSectionContext(t *testing.T) {
	ctx := lectureContext()
	ctx.Cohorts = []models.Cohort{
		{ID: "coh-1", Size: 25, MajorID: "maj-cs"},
		{ID: "coh-2", Size: 20, MajorID: "maj-cs"},
	}

	// enrollment 45 rules out A102 and B201
	require.Equal(t, []string{"r-lec", "r-cs"}, roomIDs(CandidateRooms(ctx, catalogRooms())))

	ctx.Subject.Code = "TT301"
	assert.Nil(t, CandidateRooms(ctx, catalogRooms()))
}
