package sqlxrepos

import (
	"context"
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/azedu/quizdesk/core"
	"github.com/azedu/quizdesk/core/quiz"
)

type quizRow struct {
	ID               int            `db:"id"`
	Title            string         `db:"title"`
	SubjectID        int            `db:"subject_id"`
	TeacherID        int            `db:"teacher_id"`
	StartTime        time.Time      `db:"start_time"`
	EndTime          time.Time      `db:"end_time"`
	IsClosed         bool           `db:"is_closed"`
	TotalMaxScore    float64        `db:"total_max_score"`
	CreatedAt        time.Time      `db:"created_at"`
	UpdatedAt        time.Time      `db:"updated_at"`
	SubjectName      sql.NullString `db:"subject_name"`
	TeacherFirstName sql.NullString `db:"teacher_first_name"`
	TeacherLastName  sql.NullString `db:"teacher_last_name"`
}

func (r quizRow) toQuiz() quiz.Quiz {
	qz := quiz.Quiz{
		ID:            r.ID,
		Title:         r.Title,
		SubjectID:     r.SubjectID,
		TeacherID:     r.TeacherID,
		StartTime:     r.StartTime,
		EndTime:       r.EndTime,
		IsClosed:      r.IsClosed,
		TotalMaxScore: r.TotalMaxScore,
		CreatedAt:     r.CreatedAt,
		UpdatedAt:     r.UpdatedAt,
	}
	if r.SubjectName.Valid {
		qz.Subject = &core.NamedRef{Name: r.SubjectName.String}
	}
	if r.TeacherFirstName.Valid {
		qz.Teacher = &quiz.TeacherRef{FirstName: r.TeacherFirstName.String, LastName: r.TeacherLastName.String}
	}
	return qz
}

type questionRow struct {
	ID       int     `db:"id"`
	QuizID   int     `db:"quiz_id"`
	Text     string  `db:"text"`
	Type     string  `db:"type"`
	MaxScore float64 `db:"max_score"`
}

type optionRow struct {
	ID         int    `db:"id"`
	QuestionID int    `db:"question_id"`
	Text       string `db:"text"`
	IsCorrect  bool   `db:"is_correct"`
}

type resultRow struct {
	ID               int             `db:"id"`
	QuizID           int             `db:"quiz_id"`
	StudentID        int             `db:"student_id"`
	TotalScore       float64         `db:"total_score"`
	SubmittedAt      time.Time       `db:"submitted_at"`
	StudentFirstName sql.NullString  `db:"student_first_name"`
	StudentLastName  sql.NullString  `db:"student_last_name"`
	GroupName        sql.NullString  `db:"group_name"`
	QuizTitle        sql.NullString  `db:"quiz_title"`
	QuizMaxScore     sql.NullFloat64 `db:"quiz_max_score"`
	SubjectName      sql.NullString  `db:"subject_name"`
}

func (r resultRow) toResult() quiz.Result {
	res := quiz.Result{
		ID:          r.ID,
		QuizID:      r.QuizID,
		StudentID:   r.StudentID,
		TotalScore:  r.TotalScore,
		SubmittedAt: r.SubmittedAt,
	}
	if r.StudentFirstName.Valid {
		res.Student = &quiz.StudentRef{
			FirstName: r.StudentFirstName.String,
			LastName:  r.StudentLastName.String,
			Group:     core.NamedRef{Name: r.GroupName.String},
		}
	}
	if r.QuizTitle.Valid {
		res.Quiz = &quiz.QuizRef{
			Title:         r.QuizTitle.String,
			TotalMaxScore: r.QuizMaxScore.Float64,
			Subject:       core.NamedRef{Name: r.SubjectName.String},
		}
	}
	return res
}

type answerRow struct {
	ID             int             `db:"id"`
	ResultID       int             `db:"result_id"`
	QuestionID     int             `db:"question_id"`
	ClosedOptionID sql.NullInt64   `db:"closed_option_id"`
	OpenAnswerText sql.NullString  `db:"open_answer_text"`
	Score          float64         `db:"score"`
	QuestionText   sql.NullString  `db:"question_text"`
	QuestionType   sql.NullString  `db:"question_type"`
	MaxScore       sql.NullFloat64 `db:"max_score"`
}

func (r answerRow) toAnswer() quiz.Answer {
	ans := quiz.Answer{
		ID:         r.ID,
		QuestionID: r.QuestionID,
		Score:      r.Score,
	}
	if r.ClosedOptionID.Valid {
		id := int(r.ClosedOptionID.Int64)
		ans.ClosedOptionID = &id
	}
	if r.OpenAnswerText.Valid {
		txt := r.OpenAnswerText.String
		ans.OpenAnswerText = &txt
	}
	if r.QuestionText.Valid {
		ans.Question = &quiz.Question{
			ID:       r.QuestionID,
			Text:     r.QuestionText.String,
			Type:     r.QuestionType.String,
			MaxScore: r.MaxScore.Float64,
		}
	}
	return ans
}

const quizCols = `q.id, q.title, q.subject_id, q.teacher_id, q.start_time, q.end_time,
	q.is_closed, q.total_max_score, q.created_at, q.updated_at,
	s.name AS subject_name, t.first_name AS teacher_first_name, t.last_name AS teacher_last_name`

const quizJoins = ` FROM quiz q
	LEFT JOIN subject s ON s.id = q.subject_id
	LEFT JOIN "user" t ON t.id = q.teacher_id`

const resultCols = `r.id, r.quiz_id, r.student_id, r.total_score, r.submitted_at,
	u.first_name AS student_first_name, u.last_name AS student_last_name, g.name AS group_name,
	q.title AS quiz_title, q.total_max_score AS quiz_max_score, s.name AS subject_name`

const resultJoins = ` FROM result r
	LEFT JOIN "user" u ON u.id = r.student_id
	LEFT JOIN "group" g ON g.id = u.group_id
	LEFT JOIN quiz q ON q.id = r.quiz_id
	LEFT JOIN subject s ON s.id = q.subject_id`

type quizRepository struct {
	db *sqlx.DB
}

var _ quiz.Repository = (*quizRepository)(nil)

func NewQuizRepository(db *sqlx.DB) *quizRepository {
	return &quizRepository{db: db}
}

func (repo quizRepository) CreateQuiz(ctx context.Context, qz quiz.Quiz) (quiz.Quiz, error) {
	tx, err := repo.db.BeginTxx(ctx, nil)
	if err != nil {
		return quiz.Quiz{}, errors.Wrap(err, "beginning tx")
	}
	defer tx.Rollback()

	query := `INSERT INTO quiz (title, subject_id, teacher_id, start_time, end_time, is_closed, total_max_score, created_at, updated_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9) RETURNING id`
	if err = tx.GetContext(ctx, &qz.ID, query,
		qz.Title, qz.SubjectID, qz.TeacherID, qz.StartTime, qz.EndTime, qz.IsClosed, qz.TotalMaxScore, qz.CreatedAt, qz.UpdatedAt,
	); err != nil {
		return quiz.Quiz{}, errors.Wrap(err, "inserting quiz")
	}
	if err = insertQuestions(ctx, tx, qz.ID, qz.Questions); err != nil {
		return quiz.Quiz{}, err
	}
	if err = tx.Commit(); err != nil {
		return quiz.Quiz{}, errors.Wrap(err, "committing quiz")
	}
	return repo.GetQuizByID(ctx, qz.ID)
}

func insertQuestions(ctx context.Context, tx *sqlx.Tx, quizID int, questions []quiz.Question) error {
	qQuery := `INSERT INTO question (quiz_id, text, type, max_score) VALUES ($1, $2, $3, $4) RETURNING id`
	oQuery := `INSERT INTO question_option (question_id, text, is_correct) VALUES ($1, $2, $3)`
	for _, q := range questions {
		var qid int
		if err := tx.GetContext(ctx, &qid, qQuery, quizID, q.Text, q.Type, q.MaxScore); err != nil {
			return errors.Wrap(err, "inserting question")
		}
		for _, opt := range q.Options {
			if _, err := tx.ExecContext(ctx, oQuery, qid, opt.Text, opt.IsCorrect); err != nil {
				return errors.Wrap(err, "inserting question option")
			}
		}
	}
	return nil
}

func (repo quizRepository) QueryQuizzes(ctx context.Context, filter *quiz.QueryFilter, ordering []core.DBOrdering) ([]quiz.Quiz, error) {
	query := `SELECT ` + quizCols + quizJoins
	var args []interface{}
	if filter != nil && filter.TeacherID > 0 {
		args = append(args, filter.TeacherID)
		query += " WHERE q.teacher_id = " + placeholder(len(args))
	}
	query += orderingClause(ordering, "q.start_time DESC")

	var rows []quizRow
	if err := repo.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, errors.Wrap(err, "querying quizzes")
	}
	quizzes := make([]quiz.Quiz, 0, len(rows))
	for _, r := range rows {
		quizzes = append(quizzes, r.toQuiz())
	}
	return quizzes, nil
}

func (repo quizRepository) GetQuizByID(ctx context.Context, id int) (quiz.Quiz, error) {
	var row quizRow
	query := `SELECT ` + quizCols + quizJoins + ` WHERE q.id = $1`
	if err := repo.db.GetContext(ctx, &row, query, id); err != nil {
		return quiz.Quiz{}, trapNoRowsErr(err, quiz.ErrNotFound, "finding quiz by ID")
	}
	qz := row.toQuiz()
	if err := repo.loadQuestions(ctx, &qz); err != nil {
		return quiz.Quiz{}, err
	}
	return qz, nil
}

func (repo quizRepository) loadQuestions(ctx context.Context, qz *quiz.Quiz) error {
	var qRows []questionRow
	query := `SELECT id, quiz_id, text, type, max_score FROM question WHERE quiz_id = $1 ORDER BY id`
	if err := repo.db.SelectContext(ctx, &qRows, query, qz.ID); err != nil {
		return errors.Wrap(err, "querying questions")
	}
	if len(qRows) == 0 {
		return nil
	}

	ids := make([]int, 0, len(qRows))
	for _, r := range qRows {
		ids = append(ids, r.ID)
	}
	oQuery, args, err := sqlx.In(`SELECT id, question_id, text, is_correct FROM question_option WHERE question_id IN (?) ORDER BY id`, ids)
	if err != nil {
		return errors.Wrap(err, "binding option query")
	}
	var oRows []optionRow
	if err = repo.db.SelectContext(ctx, &oRows, repo.db.Rebind(oQuery), args...); err != nil {
		return errors.Wrap(err, "querying question options")
	}

	options := make(map[int][]quiz.Option, len(qRows))
	for _, o := range oRows {
		options[o.QuestionID] = append(options[o.QuestionID], quiz.Option{ID: o.ID, Text: o.Text, IsCorrect: o.IsCorrect})
	}
	for _, r := range qRows {
		qz.Questions = append(qz.Questions, quiz.Question{
			ID:       r.ID,
			Text:     r.Text,
			Type:     r.Type,
			MaxScore: r.MaxScore,
			Options:  options[r.ID],
		})
	}
	return nil
}

func (repo quizRepository) UpdateQuiz(ctx context.Context, qz quiz.Quiz) (quiz.Quiz, error) {
	tx, err := repo.db.BeginTxx(ctx, nil)
	if err != nil {
		return quiz.Quiz{}, errors.Wrap(err, "beginning tx")
	}
	defer tx.Rollback()

	query := `UPDATE quiz SET title = $1, subject_id = $2, start_time = $3, end_time = $4, is_closed = $5, updated_at = $6 WHERE id = $7`
	res, err := tx.ExecContext(ctx, query, qz.Title, qz.SubjectID, qz.StartTime, qz.EndTime, qz.IsClosed, qz.UpdatedAt, qz.ID)
	if err != nil {
		return quiz.Quiz{}, errors.Wrap(err, "updating quiz")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return quiz.Quiz{}, quiz.ErrNotFound
	}

	// replace the whole question set; answers cascade with their questions
	if _, err = tx.ExecContext(ctx, `DELETE FROM question WHERE quiz_id = $1`, qz.ID); err != nil {
		return quiz.Quiz{}, errors.Wrap(err, "clearing questions")
	}
	if err = insertQuestions(ctx, tx, qz.ID, qz.Questions); err != nil {
		return quiz.Quiz{}, err
	}
	if err = tx.Commit(); err != nil {
		return quiz.Quiz{}, errors.Wrap(err, "committing quiz update")
	}
	return repo.GetQuizByID(ctx, qz.ID)
}

func (repo quizRepository) DeleteQuiz(ctx context.Context, id int) error {
	res, err := repo.db.ExecContext(ctx, `DELETE FROM quiz WHERE id = $1`, id)
	if err != nil {
		return errors.Wrap(err, "deleting quiz")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return quiz.ErrNotFound
	}
	return nil
}

func (repo quizRepository) QueryAvailableQuizzes(ctx context.Context, studentID, groupID int, now time.Time) ([]quiz.Quiz, error) {
	query := `SELECT ` + quizCols + quizJoins + `
	WHERE s.group_id = $1
	  AND NOT q.is_closed
	  AND q.start_time <= $2 AND q.end_time > $2
	  AND NOT EXISTS (SELECT 1 FROM result r WHERE r.quiz_id = q.id AND r.student_id = $3)
	ORDER BY q.end_time ASC`
	var rows []quizRow
	if err := repo.db.SelectContext(ctx, &rows, query, groupID, now, studentID); err != nil {
		return nil, errors.Wrap(err, "querying available quizzes")
	}
	quizzes := make([]quiz.Quiz, 0, len(rows))
	for _, r := range rows {
		qz := r.toQuiz()
		if err := repo.loadQuestions(ctx, &qz); err != nil {
			return nil, err
		}
		quizzes = append(quizzes, qz)
	}
	return quizzes, nil
}

func (repo quizRepository) HasResult(ctx context.Context, quizID, studentID int) (bool, error) {
	var exists bool
	query := `SELECT EXISTS (SELECT 1 FROM result WHERE quiz_id = $1 AND student_id = $2)`
	if err := repo.db.GetContext(ctx, &exists, query, quizID, studentID); err != nil {
		return false, errors.Wrap(err, "checking result existence")
	}
	return exists, nil
}

func (repo quizRepository) CreateResult(ctx context.Context, res quiz.Result) (quiz.Result, error) {
	tx, err := repo.db.BeginTxx(ctx, nil)
	if err != nil {
		return quiz.Result{}, errors.Wrap(err, "beginning tx")
	}
	defer tx.Rollback()

	query := `INSERT INTO result (quiz_id, student_id, total_score, submitted_at) VALUES ($1, $2, $3, $4) RETURNING id`
	if err = tx.GetContext(ctx, &res.ID, query, res.QuizID, res.StudentID, res.TotalScore, res.SubmittedAt); err != nil {
		if pqErrCode(err) == pqUniqueViolation {
			return quiz.Result{}, quiz.ErrAlreadyTaken
		}
		return quiz.Result{}, errors.Wrap(err, "inserting result")
	}
	aQuery := `INSERT INTO answer (result_id, question_id, closed_option_id, open_answer_text, score) VALUES ($1, $2, $3, $4, $5) RETURNING id`
	for i, ans := range res.Answers {
		if err = tx.GetContext(ctx, &res.Answers[i].ID, aQuery, res.ID, ans.QuestionID, ans.ClosedOptionID, ans.OpenAnswerText, ans.Score); err != nil {
			return quiz.Result{}, errors.Wrap(err, "inserting answer")
		}
	}
	if err = tx.Commit(); err != nil {
		return quiz.Result{}, errors.Wrap(err, "committing result")
	}
	return res, nil
}

func (repo quizRepository) QueryResults(ctx context.Context, filter *quiz.QueryFilter, ordering []core.DBOrdering) ([]quiz.Result, error) {
	query := `SELECT ` + resultCols + resultJoins
	var args []interface{}
	if filter != nil && filter.TeacherID > 0 {
		args = append(args, filter.TeacherID)
		query += " WHERE q.teacher_id = " + placeholder(len(args))
	}
	query += orderingClause(ordering, "r.submitted_at DESC")
	return repo.selectResults(ctx, query, args...)
}

func (repo quizRepository) QueryResultsByQuiz(ctx context.Context, quizID int) ([]quiz.Result, error) {
	query := `SELECT ` + resultCols + resultJoins + ` WHERE r.quiz_id = $1 ORDER BY r.total_score DESC`
	return repo.selectResults(ctx, query, quizID)
}

func (repo quizRepository) QueryResultsByStudent(ctx context.Context, studentID int) ([]quiz.Result, error) {
	query := `SELECT ` + resultCols + resultJoins + ` WHERE r.student_id = $1 ORDER BY r.submitted_at DESC`
	return repo.selectResults(ctx, query, studentID)
}

func (repo quizRepository) selectResults(ctx context.Context, query string, args ...interface{}) ([]quiz.Result, error) {
	var rows []resultRow
	if err := repo.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, errors.Wrap(err, "querying results")
	}
	results := make([]quiz.Result, 0, len(rows))
	for _, r := range rows {
		results = append(results, r.toResult())
	}
	return results, nil
}

func (repo quizRepository) GetResultByID(ctx context.Context, id int) (quiz.Result, error) {
	var row resultRow
	query := `SELECT ` + resultCols + resultJoins + ` WHERE r.id = $1`
	if err := repo.db.GetContext(ctx, &row, query, id); err != nil {
		return quiz.Result{}, trapNoRowsErr(err, quiz.ErrResultNotFound, "finding result by ID")
	}
	res := row.toResult()

	var aRows []answerRow
	aQuery := `SELECT a.id, a.result_id, a.question_id, a.closed_option_id, a.open_answer_text, a.score,
	qn.text AS question_text, qn.type AS question_type, qn.max_score
	FROM answer a LEFT JOIN question qn ON qn.id = a.question_id
	WHERE a.result_id = $1 ORDER BY a.id`
	if err := repo.db.SelectContext(ctx, &aRows, aQuery, id); err != nil {
		return quiz.Result{}, errors.Wrap(err, "querying answers")
	}
	for _, a := range aRows {
		res.Answers = append(res.Answers, a.toAnswer())
	}
	return res, nil
}

func (repo quizRepository) CloseExpiredQuizzes(ctx context.Context, now time.Time) (int, error) {
	res, err := repo.db.ExecContext(ctx, `UPDATE quiz SET is_closed = TRUE, updated_at = $1 WHERE NOT is_closed AND end_time <= $1`, now)
	if err != nil {
		return 0, errors.Wrap(err, "closing expired quizzes")
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, errors.Wrap(err, "counting closed quizzes")
	}
	return int(n), nil
}
