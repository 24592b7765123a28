// Copyright 2024 Edulab GmbH - All Rights Reserved
// Unauthorized copying of this file, via any medium is strictly prohibited
// Proprietary and confidential
//

/*
Package score manages the scores of the currently selected student.

Exactly one student is selected at a time. Selecting another student
atomically replaces the selection and its score list: responses belonging
to a superseded selection are discarded, so the board never shows one
student's id with another student's scores.
*/
package score

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"sync"

	"github.com/edulab/sims-console/core/alert"
	"github.com/edulab/sims-console/core/client"
	"github.com/edulab/sims-console/core/dto"
	"github.com/edulab/sims-console/core/logger"
	"github.com/edulab/sims-console/core/validate"
	"github.com/edulab/sims-console/core/view"
)

// Form is the score form buffer. Only score and status are mutable when
// editing an existing record.
type Form struct {
	ScID       int
	StudentID  int
	OfferingID int
	Score      *float64
	Status     string
}

// Stats are the aggregates recomputed from the score list on every change.
type Stats struct {
	TotalCredits   float64
	AverageScore   float64
	HasAverage     bool
	CompletedCount int
}

// FormatAverage renders the average score with two decimals, or the no-data
// sentinel when no completed entry carries a score.
func (s Stats) FormatAverage() string {
	if !s.HasAverage {
		return "暂无数据"
	}
	return strconv.FormatFloat(s.AverageScore, 'f', 2, 64)
}

// Board is the score subsystem state.
type Board struct {
	api    client.Client
	alerts alert.Sink

	mu           sync.Mutex
	generation   int
	hasSelection bool
	selectedID   int
	student      dto.Student
	scores       []dto.Score
	filter       string
	form         Form
	editing      bool

	observerMu sync.Mutex
	observers  []func()
}

// NewBoard creates a board with no student selected.
func NewBoard(api client.Client, alerts alert.Sink) *Board {
	if alerts == nil {
		alerts = alert.Log()
	}
	return &Board{api: api, alerts: alerts}
}

// Subscribe registers an observer fired after every state change.
func (b *Board) Subscribe(fn func()) {
	b.observerMu.Lock()
	defer b.observerMu.Unlock()
	b.observers = append(b.observers, fn)
}

func (b *Board) notify() {
	b.observerMu.Lock()
	observers := make([]func(), len(b.observers))
	copy(observers, b.observers)
	b.observerMu.Unlock()
	for _, fn := range observers {
		fn()
	}
}

// SelectStudent fetches the student's info and full score list and replaces
// the prior selection. id 0 reloads the current selection; with no prior
// selection it is a no-op. A response that arrives after another selection
// has been started is discarded.
func (b *Board) SelectStudent(ctx context.Context, id int) error {
	b.mu.Lock()
	if id == 0 {
		if !b.hasSelection {
			b.mu.Unlock()
			return nil
		}
		id = b.selectedID
	}
	b.generation++
	gen := b.generation
	b.mu.Unlock()

	ctx, rlog := logger.ContextWithLogger(ctx)
	student, err := b.api.GetStudent(ctx, id)
	if err != nil {
		rlog.WithError(err).Errorf("fetching student %d failed", id)
		b.alerts.Notify(client.UserMessage(err, "获取学生信息失败"))
		return err
	}
	scores, err := b.api.StudentScores(ctx, id)
	if err != nil {
		rlog.WithError(err).Errorf("loading scores of student %d failed", id)
		b.alerts.Notify(client.UserMessage(err, "加载成绩数据失败"))
		return err
	}

	b.mu.Lock()
	if gen != b.generation {
		// a newer selection superseded this one
		b.mu.Unlock()
		return nil
	}
	b.hasSelection = true
	b.selectedID = id
	b.student = student
	b.scores = scores
	b.filter = ""
	b.mu.Unlock()
	b.notify()
	return nil
}

// validateForm enforces the status/score coupling before any network call.
// The backend is the authority; this is the fast-fail convenience.
func validateForm(form Form) error {
	if form.StudentID == 0 || form.OfferingID == 0 || form.Status == "" {
		return &validate.FormError{Message: "学生、授课安排和状态不能为空"}
	}
	if form.Status == dto.ScoreCompleted && form.Score == nil {
		return &validate.FormError{Message: "已修完状态必须填写成绩"}
	}
	if form.Score != nil && (*form.Score < 0 || *form.Score > 100) {
		return &validate.FormError{Message: "成绩必须在0-100之间"}
	}
	return nil
}

// payloadScore is nil unless the status is 已修完, regardless of what the
// form carries.
func payloadScore(form Form) *float64 {
	if form.Status != dto.ScoreCompleted {
		return nil
	}
	return form.Score
}

// SaveScore posts the form buffer as a new score record and reloads the
// selected student's scores.
func (b *Board) SaveScore(ctx context.Context) error {
	b.mu.Lock()
	form := b.form
	b.mu.Unlock()

	if err := validateForm(form); err != nil {
		b.alerts.Notify(err.Error())
		return err
	}

	payload := dto.Score{
		StudentID:  form.StudentID,
		OfferingID: form.OfferingID,
		Score:      payloadScore(form),
		Status:     form.Status,
	}

	ctx, rlog := logger.ContextWithLogger(ctx)
	if err := b.api.CreateScore(ctx, payload); err != nil {
		rlog.WithError(err).Errorln("creating score failed")
		b.alerts.Notify(client.UserMessage(err, "成绩添加失败，请稍后重试"))
		return err
	}

	b.ResetForm()
	return b.SelectStudent(ctx, form.StudentID)
}

// EditScore locates the record in the already loaded score list and seeds
// the mutable fields into the form buffer. No network fetch.
func (b *Board) EditScore(scID int) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, sc := range b.scores {
		if sc.ScID == scID {
			b.form = Form{
				ScID:       sc.ScID,
				StudentID:  sc.StudentID,
				OfferingID: sc.OfferingID,
				Score:      sc.Score,
				Status:     sc.Status,
			}
			b.editing = true
			return true
		}
	}
	return false
}

// UpdateScore puts the edited score and status. Without a record being
// edited it is a no-op.
func (b *Board) UpdateScore(ctx context.Context) error {
	b.mu.Lock()
	form, editing := b.form, b.editing
	b.mu.Unlock()
	if !editing {
		return nil
	}

	if err := validateForm(form); err != nil {
		b.alerts.Notify(err.Error())
		return err
	}

	update := client.ScoreUpdate{Score: payloadScore(form), Status: form.Status}

	ctx, rlog := logger.ContextWithLogger(ctx)
	if err := b.api.UpdateScore(ctx, form.ScID, update); err != nil {
		rlog.WithError(err).Errorf("updating score %d failed", form.ScID)
		b.alerts.Notify(client.UserMessage(err, "成绩更新失败，请稍后重试"))
		return err
	}

	b.ResetForm()
	return b.SelectStudent(ctx, 0)
}

// RemoveScore deletes a score record after the confirm gate has granted it.
func (b *Board) RemoveScore(ctx context.Context, scID int, confirm func(prompt string) bool) error {
	if confirm == nil || !confirm("确定要删除这条成绩记录吗？") {
		return nil
	}

	ctx, rlog := logger.ContextWithLogger(ctx)
	if err := b.api.DeleteScore(ctx, scID); err != nil {
		rlog.WithError(err).Errorf("deleting score %d failed", scID)
		b.alerts.Notify(client.UserMessage(err, "成绩记录删除失败，请稍后重试"))
		return err
	}
	return b.SelectStudent(ctx, 0)
}

// ResetForm clears the form buffer but keeps the selected student, so a new
// score for the same student can be entered right away.
func (b *Board) ResetForm() {
	b.mu.Lock()
	studentID := 0
	if b.hasSelection {
		studentID = b.selectedID
	}
	b.form = Form{StudentID: studentID}
	b.editing = false
	b.mu.Unlock()
	b.notify()
}

// Stats computes the aggregates over the current score list: credits earned
// and count over completed entries, and the average of their non-null
// scores. An empty completed set reports no average instead of dividing by
// zero.
func (b *Board) Stats() Stats {
	b.mu.Lock()
	scores := b.scores
	b.mu.Unlock()

	var stats Stats
	var sum float64
	var scored int
	for _, sc := range scores {
		if sc.Status != dto.ScoreCompleted {
			continue
		}
		stats.CompletedCount++
		stats.TotalCredits += sc.Credit
		if sc.Score != nil {
			sum += *sc.Score
			scored++
		}
	}
	stats.TotalCredits = math.Round(stats.TotalCredits*10) / 10
	if scored > 0 {
		stats.AverageScore = sum / float64(scored)
		stats.HasAverage = true
	}
	return stats
}

// FilteredScores returns the score list narrowed by the local text filter.
// The filter matches course name, teacher name, status and the
// "{year}年{semester}" composite.
func (b *Board) FilteredScores() []dto.Score {
	b.mu.Lock()
	scores, term := b.scores, b.filter
	b.mu.Unlock()

	return view.Filter(scores, term, func(sc dto.Score) []string {
		return []string{
			sc.CourseName,
			sc.TeacherName,
			sc.Status,
			fmt.Sprintf("%d年%s", sc.Year, sc.Semester),
		}
	})
}

// SetFilter sets the local-only text filter. No round trip.
func (b *Board) SetFilter(term string) {
	b.mu.Lock()
	b.filter = term
	b.mu.Unlock()
	b.notify()
}

// Filter returns the local text filter.
func (b *Board) Filter() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.filter
}

// SelectedStudent returns the selected student's info.
func (b *Board) SelectedStudent() (dto.Student, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.student, b.hasSelection
}

// SelectedStudentID returns the selected student's id.
func (b *Board) SelectedStudentID() (int, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.selectedID, b.hasSelection
}

// Scores returns a copy of the selected student's full score list.
func (b *Board) Scores() []dto.Score {
	b.mu.Lock()
	defer b.mu.Unlock()
	scores := make([]dto.Score, len(b.scores))
	copy(scores, b.scores)
	return scores
}

// Form returns the score form buffer.
func (b *Board) Form() Form {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.form
}

// SetForm overwrites the score form buffer.
func (b *Board) SetForm(form Form) {
	b.mu.Lock()
	b.form = form
	b.mu.Unlock()
	b.notify()
}
