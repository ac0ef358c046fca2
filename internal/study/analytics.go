package study

import (
	"math"
	"sort"
)

type DayMinutes struct {
	Date    Date
	Minutes int
}

// MinutesByDay totals session minutes for every day in [from, to], including
// days with no study.
func (p *Plan) MinutesByDay(from, to Date) []DayMinutes {
	totals := make(map[Date]int)
	for _, s := range p.Sessions() {
		totals[s.Date] += s.Duration
	}
	var out []DayMinutes
	for d := from; !d.After(to); d = d.AddDays(1) {
		out = append(out, DayMinutes{Date: d, Minutes: totals[d]})
	}
	return out
}

type SubjectMinutes struct {
	SubjectID string
	Name      string
	Color     string
	Minutes   int
}

// MinutesBySubject totals session minutes per subject in plan order,
// skipping subjects with no sessions.
func (p *Plan) MinutesBySubject() []SubjectMinutes {
	var out []SubjectMinutes
	for _, s := range p.Subjects {
		total := 0
		for _, c := range s.Chapters {
			for _, sess := range c.StudySessions {
				total += sess.Duration
			}
		}
		if total > 0 {
			out = append(out, SubjectMinutes{SubjectID: s.ID, Name: s.Name, Color: s.Color, Minutes: total})
		}
	}
	return out
}

// ChapterMinutes returns minutes studied and the chapter's target.
func (p *Plan) ChapterMinutes(subjectID, chapterID string) (studied, target int, err error) {
	_, c, err := p.Chapter(subjectID, chapterID)
	if err != nil {
		return 0, 0, err
	}
	for _, s := range c.StudySessions {
		studied += s.Duration
	}
	return studied, c.TargetMinutes, nil
}

type SubjectProgress struct {
	SubjectID string
	Name      string
	Color     string
	Completed int
	Total     int
	Percent   int
}

type OverallProgress struct {
	Completed int
	Total     int
	Percent   int
	Subjects  []SubjectProgress
}

// Overall reports completed chapters against all chapters.
func (p *Plan) Overall() OverallProgress {
	var o OverallProgress
	for _, s := range p.Subjects {
		sp := SubjectProgress{SubjectID: s.ID, Name: s.Name, Color: s.Color, Total: len(s.Chapters)}
		for _, c := range s.Chapters {
			if c.Status == Completed {
				sp.Completed++
			}
		}
		sp.Percent = percentOf(sp.Completed, sp.Total)
		o.Completed += sp.Completed
		o.Total += sp.Total
		o.Subjects = append(o.Subjects, sp)
	}
	o.Percent = percentOf(o.Completed, o.Total)
	return o
}

func percentOf(n, total int) int {
	if total == 0 {
		return 0
	}
	return int(math.Round(100 * float64(n) / float64(total)))
}

type TestStats struct {
	Type          TestType
	Count         int
	AverageScore  float64
	BestScore     int
	WorstScore    int
	MaxScore      int
	AccuracyShare float64 // correct / attempted, 0-1
}

// TestStats summarizes the records of one type.
func (p *Plan) TestStats(t TestType) TestStats {
	st := TestStats{Type: t}
	if cfg, ok := t.Config(); ok {
		st.MaxScore = cfg.TotalQuestions * 4
	}
	sum, correct, attempted := 0, 0, 0
	for _, r := range p.TestRecords {
		if r.Type != t {
			continue
		}
		if st.Count == 0 || r.Score > st.BestScore {
			st.BestScore = r.Score
		}
		if st.Count == 0 || r.Score < st.WorstScore {
			st.WorstScore = r.Score
		}
		st.Count++
		sum += r.Score
		correct += r.Correct
		attempted += r.Correct + r.Wrong
	}
	if st.Count > 0 {
		st.AverageScore = float64(sum) / float64(st.Count)
	}
	if attempted > 0 {
		st.AccuracyShare = float64(correct) / float64(attempted)
	}
	return st
}

type ScorePoint struct {
	Date  Date
	Score int
}

// ScoreTrend returns the scores of one type in date order.
func (p *Plan) ScoreTrend(t TestType) []ScorePoint {
	var out []ScorePoint
	for _, r := range p.TestRecords {
		if r.Type == t {
			out = append(out, ScorePoint{Date: r.Date, Score: r.Score})
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out
}

// Streak counts consecutive study days ending today, or yesterday when
// nothing has been logged yet today.
func (p *Plan) Streak(today Date) int {
	days := make(map[Date]bool)
	for _, s := range p.Sessions() {
		days[s.Date] = true
	}
	d := today
	if !days[d] {
		d = d.AddDays(-1)
	}
	n := 0
	for days[d] {
		n++
		d = d.AddDays(-1)
	}
	return n
}
