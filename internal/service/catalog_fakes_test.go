package service

import (
	"context"
	"database/sql"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/noah-isme/classgotcha-api/internal/models"
	"github.com/noah-isme/classgotcha-api/internal/repository"
	appErrors "github.com/noah-isme/classgotcha-api/pkg/errors"
)

type memCatalogState struct {
	majors          map[string]models.Major
	semesters       map[string]models.Semester
	professors      map[string]models.Professor
	professorMajors map[string]map[string]bool
	classrooms      map[string]models.Classroom
	classroomProfs  map[string]map[string]bool
	timeSlots       map[string]models.TimeSlot
	items           map[string]models.ScheduleItem
	chatRooms       map[string]models.ChatRoom
}

func newMemCatalogState() memCatalogState {
	return memCatalogState{
		majors:          map[string]models.Major{},
		semesters:       map[string]models.Semester{},
		professors:      map[string]models.Professor{},
		professorMajors: map[string]map[string]bool{},
		classrooms:      map[string]models.Classroom{},
		classroomProfs:  map[string]map[string]bool{},
		timeSlots:       map[string]models.TimeSlot{},
		items:           map[string]models.ScheduleItem{},
		chatRooms:       map[string]models.ChatRoom{},
	}
}

func copyMap[K comparable, V any](in map[K]V) map[K]V {
	out := make(map[K]V, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

func copySetMap(in map[string]map[string]bool) map[string]map[string]bool {
	out := make(map[string]map[string]bool, len(in))
	for k, v := range in {
		out[k] = copyMap(v)
	}
	return out
}

func (s memCatalogState) clone() memCatalogState {
	return memCatalogState{
		majors:          copyMap(s.majors),
		semesters:       copyMap(s.semesters),
		professors:      copyMap(s.professors),
		professorMajors: copySetMap(s.professorMajors),
		classrooms:      copyMap(s.classrooms),
		classroomProfs:  copySetMap(s.classroomProfs),
		timeSlots:       copyMap(s.timeSlots),
		items:           copyMap(s.items),
		chatRooms:       copyMap(s.chatRooms),
	}
}

// memCatalog is an in-memory catalog whose WithTx restores the previous state on error.
type memCatalog struct {
	state memCatalogState
	// raceOnCreate makes the next create of the named entity lose a race.
	raceOnCreate map[string]func(*memCatalog)
}

func newMemCatalog() *memCatalog {
	return &memCatalog{state: newMemCatalogState(), raceOnCreate: map[string]func(*memCatalog){}}
}

func (m *memCatalog) repos() repository.CatalogRepositories {
	return repository.CatalogRepositories{
		Majors:        memMajors{m},
		Semesters:     memSemesters{m},
		Professors:    memProfessors{m},
		Classrooms:    memClassrooms{m},
		TimeSlots:     memTimeSlots{m},
		ScheduleItems: memItems{m},
		ChatRooms:     memChatRooms{m},
	}
}

func (m *memCatalog) WithTx(ctx context.Context, fn func(ctx context.Context, repos repository.CatalogRepositories) error) error {
	snapshot := m.state.clone()
	if err := fn(ctx, m.repos()); err != nil {
		m.state = snapshot
		return err
	}
	return nil
}

func (m *memCatalog) race(entity string) {
	if hook, ok := m.raceOnCreate[entity]; ok {
		delete(m.raceOnCreate, entity)
		hook(m)
	}
}

func duplicate() error {
	return appErrors.ErrUniqueConstraintViolation
}

type memMajors struct{ m *memCatalog }

func (r memMajors) FindByShortCode(_ context.Context, code string) (*models.Major, error) {
	for _, major := range r.m.state.majors {
		if major.ShortCode == code {
			out := major
			return &out, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (r memMajors) Create(ctx context.Context, major *models.Major) error {
	r.m.race("major")
	if _, err := r.FindByShortCode(ctx, major.ShortCode); err == nil {
		return duplicate()
	}
	if major.ID == "" {
		major.ID = uuid.NewString()
	}
	r.m.state.majors[major.ID] = *major
	return nil
}

func (r memMajors) List(_ context.Context) ([]models.Major, error) {
	out := make([]models.Major, 0, len(r.m.state.majors))
	for _, major := range r.m.state.majors {
		out = append(out, major)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ShortCode < out[j].ShortCode })
	return out, nil
}

type memSemesters struct{ m *memCatalog }

func (r memSemesters) FindByName(_ context.Context, name string) (*models.Semester, error) {
	for _, semester := range r.m.state.semesters {
		if semester.Name == name {
			out := semester
			return &out, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (r memSemesters) FindByID(_ context.Context, id string) (*models.Semester, error) {
	semester, ok := r.m.state.semesters[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &semester, nil
}

func (r memSemesters) Create(ctx context.Context, semester *models.Semester) error {
	if _, err := r.FindByName(ctx, semester.Name); err == nil {
		return duplicate()
	}
	if semester.ID == "" {
		semester.ID = uuid.NewString()
	}
	r.m.state.semesters[semester.ID] = *semester
	return nil
}

type memProfessors struct{ m *memCatalog }

func (r memProfessors) FindByName(_ context.Context, first, last string) (*models.Professor, error) {
	for _, professor := range r.m.state.professors {
		if professor.FirstName == first && professor.LastName == last {
			out := professor
			return &out, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (r memProfessors) Create(ctx context.Context, professor *models.Professor) error {
	r.m.race("professor")
	if _, err := r.FindByName(ctx, professor.FirstName, professor.LastName); err == nil {
		return duplicate()
	}
	if professor.ID == "" {
		professor.ID = uuid.NewString()
	}
	r.m.state.professors[professor.ID] = *professor
	return nil
}

func (r memProfessors) ListMajorIDs(_ context.Context, professorID string) ([]string, error) {
	var ids []string
	for id := range r.m.state.professorMajors[professorID] {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

func (r memProfessors) AddMajor(_ context.Context, professorID, majorID string) error {
	if r.m.state.professorMajors[professorID] == nil {
		r.m.state.professorMajors[professorID] = map[string]bool{}
	}
	r.m.state.professorMajors[professorID][majorID] = true
	return nil
}

type memClassrooms struct{ m *memCatalog }

func (r memClassrooms) FindByCode(_ context.Context, code, semesterID string) (*models.Classroom, error) {
	for _, classroom := range r.m.state.classrooms {
		if classroom.ClassCode == code && classroom.SemesterID == semesterID {
			out := classroom
			return &out, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (r memClassrooms) Create(ctx context.Context, classroom *models.Classroom) error {
	r.m.race("classroom")
	if _, err := r.FindByCode(ctx, classroom.ClassCode, classroom.SemesterID); err == nil {
		return duplicate()
	}
	if classroom.ID == "" {
		classroom.ID = uuid.NewString()
	}
	if classroom.CreatedAt.IsZero() {
		classroom.CreatedAt = time.Now().UTC()
	}
	r.m.state.classrooms[classroom.ID] = *classroom
	return nil
}

func (r memClassrooms) AddProfessor(_ context.Context, classroomID, professorID string) error {
	if r.m.state.classroomProfs[classroomID] == nil {
		r.m.state.classroomProfs[classroomID] = map[string]bool{}
	}
	r.m.state.classroomProfs[classroomID][professorID] = true
	return nil
}

func (r memClassrooms) detail(c models.Classroom) models.ClassroomDetail {
	d := models.ClassroomDetail{Classroom: c}
	d.MajorShortCode = r.m.state.majors[c.MajorID].ShortCode
	d.SemesterName = r.m.state.semesters[c.SemesterID].Name
	if c.TimeSlotID != nil {
		slot := r.m.state.timeSlots[*c.TimeSlotID]
		d.WeekdayMask, d.StartMinute, d.EndMinute = &slot.WeekdayMask, &slot.StartMinute, &slot.EndMinute
	}
	var names []string
	for id := range r.m.state.classroomProfs[c.ID] {
		names = append(names, r.m.state.professors[id].FullName())
	}
	sort.Strings(names)
	d.Professors = strings.Join(names, ", ")
	return d
}

func (r memClassrooms) FindDetailByID(_ context.Context, id string) (*models.ClassroomDetail, error) {
	c, ok := r.m.state.classrooms[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	d := r.detail(c)
	return &d, nil
}

func (r memClassrooms) Search(_ context.Context, filter models.ClassroomFilter) ([]models.ClassroomDetail, error) {
	var out []models.ClassroomDetail
	for _, c := range r.m.state.classrooms {
		d := r.detail(c)
		if filter.SemesterID != "" && c.SemesterID != filter.SemesterID ||
			filter.ClassCode != "" && c.ClassCode != filter.ClassCode ||
			filter.MajorShortCode != "" && d.MajorShortCode != filter.MajorShortCode ||
			filter.ClassNumber != "" && c.ClassNumber != filter.ClassNumber {
			continue
		}
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ClassCode < out[j].ClassCode })
	return out, nil
}

type memTimeSlots struct{ m *memCatalog }

func (r memTimeSlots) Create(_ context.Context, slot *models.TimeSlot) error {
	if slot.ID == "" {
		slot.ID = uuid.NewString()
	}
	r.m.state.timeSlots[slot.ID] = *slot
	return nil
}

type memItems struct{ m *memCatalog }

func (r memItems) Create(_ context.Context, item *models.ScheduleItem) error {
	if item.ID == "" {
		item.ID = uuid.NewString()
	}
	r.m.state.items[item.ID] = *item
	return nil
}

func (r memItems) ListByClassroom(_ context.Context, classroomID string, kinds ...models.ScheduleKind) ([]models.ScheduleItem, error) {
	var out []models.ScheduleItem
	for _, item := range r.m.state.items {
		if item.ClassroomID == nil || *item.ClassroomID != classroomID {
			continue
		}
		if len(kinds) > 0 {
			match := false
			for _, k := range kinds {
				match = match || item.Kind == k
			}
			if !match {
				continue
			}
		}
		out = append(out, item)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

type memChatRooms struct{ m *memCatalog }

func (r memChatRooms) Create(_ context.Context, room *models.ChatRoom) error {
	for _, existing := range r.m.state.chatRooms {
		if existing.ClassroomID == room.ClassroomID {
			return duplicate()
		}
	}
	if room.ID == "" {
		room.ID = uuid.NewString()
	}
	r.m.state.chatRooms[room.ID] = *room
	return nil
}

func (m *memCatalog) classroomByCode(code string) *models.Classroom {
	for _, c := range m.state.classrooms {
		if c.ClassCode == code {
			out := c
			return &out
		}
	}
	return nil
}

func (m *memCatalog) majorByCode(code string) *models.Major {
	major, err := memMajors{m}.FindByShortCode(context.Background(), code)
	if err != nil {
		return nil
	}
	return major
}

var errNoRowsForTest = sql.ErrNoRows
