package study

import (
	"time"

	"github.com/sadopc/studyplan/internal/progress"
)

type ChapterStatus string

const (
	NotStarted ChapterStatus = "Not Started"
	InProgress ChapterStatus = "In Progress"
	Completed  ChapterStatus = "Completed"
)

func (s ChapterStatus) Valid() bool {
	switch s {
	case NotStarted, InProgress, Completed:
		return true
	}
	return false
}

type Book struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type Subject struct {
	ID       string    `json:"id"`
	Name     string    `json:"name"`
	Color    string    `json:"color"`
	Chapters []Chapter `json:"chapters"`
	Books    []Book    `json:"books,omitempty"`
}

type Chapter struct {
	ID            string                       `json:"id"`
	Name          string                       `json:"name"`
	Status        ChapterStatus                `json:"status"`
	TargetMinutes int                          `json:"targetMinutes,omitempty"`
	Notes         string                       `json:"notes,omitempty"`
	StudySessions []StudySession               `json:"studySessions,omitempty"`
	BookProgress  []progress.BookProgress      `json:"bookProgress,omitempty"`
	BookInfo      map[string]progress.BookInfo `json:"bookInfo,omitempty"` // keyed by book ID
}

// StudySession is an immutable log of one completed study interval. Names
// and color are snapshots taken when the session was recorded.
type StudySession struct {
	ID             string                  `json:"id"`
	Date           Date                    `json:"date"`
	Duration       int                     `json:"duration"` // minutes
	SubjectID      string                  `json:"subjectId"`
	ChapterID      string                  `json:"chapterId"`
	SubjectName    string                  `json:"subjectName"`
	ChapterName    string                  `json:"chapterName"`
	SubjectColor   string                  `json:"subjectColor"`
	BookID         string                  `json:"bookId,omitempty"`
	Book           string                  `json:"book,omitempty"`
	QuestionRange  *progress.QuestionRange `json:"bookQuestionRange,omitempty"`
	ExerciseNumber string                  `json:"exerciseNumber,omitempty"`
}

type ScheduleItem struct {
	ID             string                  `json:"id"`
	StartTime      time.Time               `json:"startTime"`
	EndTime        time.Time               `json:"endTime"`
	Subject        string                  `json:"subject"`
	Chapter        string                  `json:"chapter"`
	SubjectID      string                  `json:"subjectId"`
	ChapterID      string                  `json:"chapterId"`
	BookID         string                  `json:"bookId,omitempty"`
	Book           string                  `json:"book,omitempty"`
	QuestionRange  *progress.QuestionRange `json:"bookQuestionRange,omitempty"`
	ExerciseNumber string                  `json:"exerciseNumber,omitempty"`
	Completed      bool                    `json:"completed,omitempty"`
	GoogleEventID  string                  `json:"googleEventId,omitempty"`
}

func (s ScheduleItem) Minutes() int {
	return int(s.EndTime.Sub(s.StartTime).Minutes())
}

type TestType string

const (
	DAT TestType = "DAT" // daily assessment
	WAT TestType = "WAT" // weekly assessment
	MAT TestType = "MAT" // monthly assessment
	FLT TestType = "FLT" // full length
)

var TestTypes = []TestType{DAT, WAT, MAT, FLT}

// TestConfig fixes the question count and syllabus cardinality of a test type.
type TestConfig struct {
	TotalQuestions   int
	MultipleSubjects bool
	MultipleChapters bool
}

var testConfigs = map[TestType]TestConfig{
	DAT: {TotalQuestions: 10},
	WAT: {TotalQuestions: 25, MultipleChapters: true},
	MAT: {TotalQuestions: 75, MultipleSubjects: true, MultipleChapters: true},
	FLT: {TotalQuestions: 75, MultipleSubjects: true, MultipleChapters: true},
}

func (t TestType) Config() (TestConfig, bool) {
	c, ok := testConfigs[t]
	return c, ok
}

type TestRecord struct {
	ID             string   `json:"id"`
	Type           TestType `json:"type"`
	Date           Date     `json:"date"`
	SubjectIDs     []string `json:"subjectIds"`
	ChapterIDs     []string `json:"chapterIds"`
	Correct        int      `json:"correct"`
	Wrong          int      `json:"wrong"`
	Unattempted    int      `json:"unattempted"`
	Score          int      `json:"score"`
	TotalQuestions int      `json:"totalQuestions"`
	Remarks        string   `json:"remarks,omitempty"`
}

// Score applies the +4 / -1 marking scheme.
func Score(correct, wrong int) int {
	return correct*4 - wrong
}

// Plan is everything stored for a single user.
type Plan struct {
	Subjects    []Subject      `json:"subjects"`
	Schedule    []ScheduleItem `json:"schedule"`
	TestRecords []TestRecord   `json:"testRecords"`
}
