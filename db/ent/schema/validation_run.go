package schema

import (
	"time"

	"entgo.io/ent"
	"entgo.io/ent/dialect"
	"entgo.io/ent/dialect/entsql"
	"entgo.io/ent/schema"
	"entgo.io/ent/schema/edge"
	"entgo.io/ent/schema/field"

	"github.com/google/uuid"

	"github.com/rajiviyer/medical-doc-extractor/db/ent/schema/utils"
)

type ValidationRun struct{ ent.Schema }

func (ValidationRun) Annotations() []schema.Annotation {
	return []schema.Annotation{
		entsql.Annotation{Table: "validation_runs"},
	}
}

func (ValidationRun) Fields() []ent.Field {
	return []ent.Field{
		field.UUID("id", uuid.UUID{}).
			Default(uuid.New).
			Immutable().
			StorageKey("id"),
		field.UUID("document_id", uuid.UUID{}),
		field.String("status").
			Default("QUEUED").
			Validate(utils.EnumValidator(
				"QUEUED", "RUNNING", "TEXT_OK", "LLM_OK", "VALIDATED", "FAILED",
			)),
		field.String("model_name").Optional(),
		// Sanitized LLM extraction and the full validation report.
		field.Bytes("fields_json").Optional().
			SchemaType(map[string]string{dialect.Postgres: "jsonb"}),
		field.Bytes("report_json").Optional().
			SchemaType(map[string]string{dialect.Postgres: "jsonb"}),
		field.String("risk_level").Optional().
			Validate(utils.EnumValidator("", "Low", "Medium", "High")),
		field.String("claim_status").Optional(),
		field.String("error_message").Optional(),
		field.Time("started_at").Default(time.Now).Immutable(),
		field.Time("finished_at").Optional().Nillable(),
	}
}

func (ValidationRun) Edges() []ent.Edge {
	return []ent.Edge{
		// MANY runs -> ONE document (FK: validation_runs.document_id)
		edge.From("document", Document.Type).
			Ref("runs").
			Field("document_id").
			Required().
			Unique(),
	}
}
