package store

import (
	"context"
	"fmt"

	"entgo.io/ent/dialect"
	"entgo.io/ent/dialect/sql/schema"
	"entgo.io/ent/schema/field"
)

// Table and column definitions migrated by ent's schema package. Column
// order matches the insert order used by the repositories.
var (
	// ContentSourcesColumns holds the columns for the "content_sources" table.
	ContentSourcesColumns = []*schema.Column{
		{Name: "id", Type: field.TypeString, Unique: true},
		{Name: "user_id", Type: field.TypeString},
		{Name: "type", Type: field.TypeString},
		{Name: "title", Type: field.TypeString, Nullable: true},
		{Name: "body", Type: field.TypeString, Size: 2147483647},
		{Name: "created_at", Type: field.TypeTime},
	}
	ContentSourcesTable = &schema.Table{
		Name:       "content_sources",
		Columns:    ContentSourcesColumns,
		PrimaryKey: []*schema.Column{ContentSourcesColumns[0]},
		Indexes: []*schema.Index{
			{Name: "contentsource_user_id", Columns: []*schema.Column{ContentSourcesColumns[1]}},
		},
	}

	// QuizzesColumns holds the columns for the "quizzes" table.
	QuizzesColumns = []*schema.Column{
		{Name: "id", Type: field.TypeString, Unique: true},
		{Name: "user_id", Type: field.TypeString},
		{Name: "source_id", Type: field.TypeString, Nullable: true},
		{Name: "title", Type: field.TypeString},
		{Name: "status", Type: field.TypeString, Default: string(StatusDraft)},
		{Name: "difficulty", Type: field.TypeString, Nullable: true},
		{Name: "question_count", Type: field.TypeInt, Default: 0},
		{Name: "max_attempts", Type: field.TypeInt, Default: 1},
		{Name: "created_at", Type: field.TypeTime},
		{Name: "updated_at", Type: field.TypeTime},
	}
	QuizzesTable = &schema.Table{
		Name:       "quizzes",
		Columns:    QuizzesColumns,
		PrimaryKey: []*schema.Column{QuizzesColumns[0]},
		ForeignKeys: []*schema.ForeignKey{
			{
				Symbol:     "quizzes_content_sources_source",
				Columns:    []*schema.Column{QuizzesColumns[2]},
				RefColumns: []*schema.Column{ContentSourcesColumns[0]},
				OnDelete:   schema.SetNull,
			},
		},
		Indexes: []*schema.Index{
			{Name: "quiz_user_id_created_at", Columns: []*schema.Column{QuizzesColumns[1], QuizzesColumns[8]}},
		},
	}

	// QuestionsColumns holds the columns for the "questions" table.
	QuestionsColumns = []*schema.Column{
		{Name: "id", Type: field.TypeString, Unique: true},
		{Name: "quiz_id", Type: field.TypeString},
		{Name: "type", Type: field.TypeString},
		{Name: "stem", Type: field.TypeString, Size: 2147483647},
		{Name: "options", Type: field.TypeJSON, Nullable: true},
		{Name: "answer", Type: field.TypeJSON},
		{Name: "explanation", Type: field.TypeString, Nullable: true, Size: 2147483647},
		{Name: "tags", Type: field.TypeJSON, Nullable: true},
		{Name: "position", Type: field.TypeInt},
		{Name: "created_at", Type: field.TypeTime},
	}
	QuestionsTable = &schema.Table{
		Name:       "questions",
		Columns:    QuestionsColumns,
		PrimaryKey: []*schema.Column{QuestionsColumns[0]},
		ForeignKeys: []*schema.ForeignKey{
			{
				Symbol:     "questions_quizzes_questions",
				Columns:    []*schema.Column{QuestionsColumns[1]},
				RefColumns: []*schema.Column{QuizzesColumns[0]},
				OnDelete:   schema.Cascade,
			},
		},
		Indexes: []*schema.Index{
			{Name: "question_quiz_id_position", Columns: []*schema.Column{QuestionsColumns[1], QuestionsColumns[8]}},
		},
	}

	// AttemptsColumns holds the columns for the "attempts" table.
	AttemptsColumns = []*schema.Column{
		{Name: "id", Type: field.TypeString, Unique: true},
		{Name: "quiz_id", Type: field.TypeString},
		{Name: "user_id", Type: field.TypeString},
		{Name: "started_at", Type: field.TypeTime},
		{Name: "submitted_at", Type: field.TypeTime, Nullable: true},
		{Name: "score", Type: field.TypeInt, Nullable: true},
		{Name: "max_score", Type: field.TypeInt, Nullable: true},
		{Name: "duration_seconds", Type: field.TypeInt, Nullable: true},
	}
	AttemptsTable = &schema.Table{
		Name:       "attempts",
		Columns:    AttemptsColumns,
		PrimaryKey: []*schema.Column{AttemptsColumns[0]},
		ForeignKeys: []*schema.ForeignKey{
			{
				Symbol:     "attempts_quizzes_attempts",
				Columns:    []*schema.Column{AttemptsColumns[1]},
				RefColumns: []*schema.Column{QuizzesColumns[0]},
				OnDelete:   schema.Cascade,
			},
		},
		Indexes: []*schema.Index{
			{Name: "attempt_user_id_quiz_id", Columns: []*schema.Column{AttemptsColumns[2], AttemptsColumns[1]}},
		},
	}

	// AnswersColumns holds the columns for the "answers" table.
	AnswersColumns = []*schema.Column{
		{Name: "id", Type: field.TypeString, Unique: true},
		{Name: "attempt_id", Type: field.TypeString},
		{Name: "question_id", Type: field.TypeString},
		{Name: "response", Type: field.TypeJSON},
		{Name: "is_correct", Type: field.TypeBool, Default: false},
		{Name: "score", Type: field.TypeInt, Default: 0},
		{Name: "created_at", Type: field.TypeTime},
	}
	AnswersTable = &schema.Table{
		Name:       "answers",
		Columns:    AnswersColumns,
		PrimaryKey: []*schema.Column{AnswersColumns[0]},
		ForeignKeys: []*schema.ForeignKey{
			{
				Symbol:     "answers_attempts_answers",
				Columns:    []*schema.Column{AnswersColumns[1]},
				RefColumns: []*schema.Column{AttemptsColumns[0]},
				OnDelete:   schema.Cascade,
			},
			{
				Symbol:     "answers_questions_answers",
				Columns:    []*schema.Column{AnswersColumns[2]},
				RefColumns: []*schema.Column{QuestionsColumns[0]},
				OnDelete:   schema.Cascade,
			},
		},
	}

	// ShareLinksColumns holds the columns for the "share_links" table.
	ShareLinksColumns = []*schema.Column{
		{Name: "id", Type: field.TypeString, Unique: true},
		{Name: "quiz_id", Type: field.TypeString},
		{Name: "token", Type: field.TypeString, Unique: true},
		{Name: "is_public", Type: field.TypeBool, Default: true},
		{Name: "expires_at", Type: field.TypeTime, Nullable: true},
		{Name: "created_at", Type: field.TypeTime},
	}
	ShareLinksTable = &schema.Table{
		Name:       "share_links",
		Columns:    ShareLinksColumns,
		PrimaryKey: []*schema.Column{ShareLinksColumns[0]},
		ForeignKeys: []*schema.ForeignKey{
			{
				Symbol:     "share_links_quizzes_share_links",
				Columns:    []*schema.Column{ShareLinksColumns[1]},
				RefColumns: []*schema.Column{QuizzesColumns[0]},
				OnDelete:   schema.Cascade,
			},
		},
	}

	// LLMRequestsColumns holds the columns for the "llm_requests" table.
	LLMRequestsColumns = []*schema.Column{
		{Name: "id", Type: field.TypeInt, Increment: true},
		{Name: "timestamp", Type: field.TypeTime},
		{Name: "provider", Type: field.TypeString},
		{Name: "model", Type: field.TypeString},
		{Name: "purpose", Type: field.TypeString},
		{Name: "input_tokens", Type: field.TypeInt},
		{Name: "output_tokens", Type: field.TypeInt},
		{Name: "latency_ms", Type: field.TypeInt64},
		{Name: "success", Type: field.TypeBool},
		{Name: "error_message", Type: field.TypeString, Nullable: true, Size: 2147483647},
		{Name: "request_body", Type: field.TypeString, Nullable: true, Size: 2147483647},
		{Name: "response_body", Type: field.TypeString, Nullable: true, Size: 2147483647},
	}
	LLMRequestsTable = &schema.Table{
		Name:       "llm_requests",
		Columns:    LLMRequestsColumns,
		PrimaryKey: []*schema.Column{LLMRequestsColumns[0]},
		Indexes: []*schema.Index{
			{Name: "llmrequest_purpose", Columns: []*schema.Column{LLMRequestsColumns[4]}},
		},
	}

	// Tables holds all the tables in the schema, parents first.
	Tables = []*schema.Table{
		ContentSourcesTable,
		QuizzesTable,
		QuestionsTable,
		AttemptsTable,
		AnswersTable,
		ShareLinksTable,
		LLMRequestsTable,
	}
)

func init() {
	QuizzesTable.ForeignKeys[0].RefTable = ContentSourcesTable
	QuestionsTable.ForeignKeys[0].RefTable = QuizzesTable
	AttemptsTable.ForeignKeys[0].RefTable = QuizzesTable
	AnswersTable.ForeignKeys[0].RefTable = AttemptsTable
	AnswersTable.ForeignKeys[1].RefTable = QuestionsTable
	ShareLinksTable.ForeignKeys[0].RefTable = QuizzesTable
}

// migrate creates or upgrades all tables.
func migrate(ctx context.Context, drv dialect.Driver) error {
	m, err := schema.NewMigrate(drv)
	if err != nil {
		return fmt.Errorf("create migrator: %w", err)
	}
	if err := m.Create(ctx, Tables...); err != nil {
		return fmt.Errorf("create tables: %w", err)
	}
	return nil
}
