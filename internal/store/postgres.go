package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/finops-claw-gang/holdingpen/internal/domain"
)

// Schema creates the workflow_objects table used by PostgresStore.
const Schema = `
CREATE TABLE IF NOT EXISTS workflow_objects (
	id            BIGSERIAL PRIMARY KEY,
	status        TEXT        NOT NULL,
	data_type     TEXT        NOT NULL DEFAULT '',
	id_user       BIGINT      NOT NULL DEFAULT 0,
	id_parent     BIGINT      NULL,
	id_workflow   UUID        NULL,
	workflow_name TEXT        NOT NULL DEFAULT '',
	callback_pos  INTEGER[]   NOT NULL DEFAULT '{}',
	data          JSONB       NULL,
	extra_data    JSONB       NULL,
	created       TIMESTAMPTZ NOT NULL,
	modified      TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS workflow_objects_data_type_idx ON workflow_objects (data_type);
`

const selectColumns = `id, status, data_type, id_user, id_parent, id_workflow,
	workflow_name, callback_pos, data, extra_data, created, modified`

// PostgresStore is a PostgreSQL implementation of WorkflowStore.
type PostgresStore struct {
	db        *pgxpool.Pool
	listeners Listeners
	now       func() time.Time
}

// NewPostgresStore creates a new PostgresStore.
func NewPostgresStore(db *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{db: db, now: time.Now}
}

// EnsureSchema creates the table if it does not exist.
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.Exec(ctx, Schema); err != nil {
		return fmt.Errorf("store: ensure schema: %w", err)
	}
	return nil
}

// Subscribe registers a persistence listener.
func (s *PostgresStore) Subscribe(l Listener) {
	s.listeners.Subscribe(l)
}

// Get retrieves an object by id.
func (s *PostgresStore) Get(ctx context.Context, id int64) (*domain.WorkflowObject, error) {
	row := s.db.QueryRow(ctx, "SELECT "+selectColumns+" FROM workflow_objects WHERE id = $1", id)
	obj, err := scanObject(row)
	if err != nil {
		return nil, fmt.Errorf("store: get %d: %w", id, err)
	}
	return obj, nil
}

// Exists reports whether an object with id is persisted.
func (s *PostgresStore) Exists(ctx context.Context, id int64) (bool, error) {
	var ok bool
	if err := s.db.QueryRow(ctx, "SELECT EXISTS (SELECT 1 FROM workflow_objects WHERE id = $1)", id).Scan(&ok); err != nil {
		return false, fmt.Errorf("store: exists %d: %w", id, err)
	}
	return ok, nil
}

// Save inserts or updates obj in its own transaction.
func (s *PostgresStore) Save(ctx context.Context, obj *domain.WorkflowObject) error {
	if err := domain.ValidateWorkflowObject(*obj); err != nil {
		return fmt.Errorf("store: save: %w", err)
	}
	data, err := marshalPayload(obj.Data)
	if err != nil {
		return fmt.Errorf("store: encode data: %w", err)
	}
	extra, err := marshalPayload(obj.ExtraData)
	if err != nil {
		return fmt.Errorf("store: encode extra_data: %w", err)
	}

	now := s.now().UTC()
	created := obj.Created
	if created.IsZero() {
		created = now
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("store: begin: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	args := []any{
		string(obj.Status), obj.DataType, obj.IDUser, obj.IDParent, toPgUUID(obj.IDWorkflow),
		obj.WorkflowName, toInt32s(obj.CallbackPos), data, extra, created, now,
	}
	if obj.ID == 0 {
		err = tx.QueryRow(ctx, `INSERT INTO workflow_objects
			(status, data_type, id_user, id_parent, id_workflow, workflow_name, callback_pos, data, extra_data, created, modified)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11) RETURNING id`, args...).Scan(&obj.ID)
	} else {
		_, err = tx.Exec(ctx, `INSERT INTO workflow_objects
			(id, status, data_type, id_user, id_parent, id_workflow, workflow_name, callback_pos, data, extra_data, created, modified)
			VALUES ($12, $1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
			ON CONFLICT (id) DO UPDATE SET
				status = EXCLUDED.status, data_type = EXCLUDED.data_type, id_user = EXCLUDED.id_user,
				id_parent = EXCLUDED.id_parent, id_workflow = EXCLUDED.id_workflow,
				workflow_name = EXCLUDED.workflow_name, callback_pos = EXCLUDED.callback_pos,
				data = EXCLUDED.data, extra_data = EXCLUDED.extra_data, modified = EXCLUDED.modified`,
			append(args, obj.ID)...)
	}
	if err != nil {
		return fmt.Errorf("store: save %d: %w", obj.ID, err)
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("store: commit: %w", err)
	}

	obj.Created = created
	obj.Modified = now
	s.listeners.NotifyAfterSave(ctx, obj)
	return nil
}

// Delete removes the object. Listeners are notified inside the transaction,
// with the row locked, before it is removed.
func (s *PostgresStore) Delete(ctx context.Context, id int64) error {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("store: begin: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	row := tx.QueryRow(ctx, "SELECT "+selectColumns+" FROM workflow_objects WHERE id = $1 FOR UPDATE", id)
	obj, err := scanObject(row)
	if err != nil {
		return fmt.Errorf("store: delete %d: %w", id, err)
	}

	s.listeners.NotifyBeforeDelete(ctx, obj)

	if _, err := tx.Exec(ctx, "DELETE FROM workflow_objects WHERE id = $1", id); err != nil {
		return fmt.Errorf("store: delete %d: %w", id, err)
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("store: commit: %w", err)
	}
	return nil
}

// IDsByDataType returns the ids of all objects with one of the data types, ascending.
func (s *PostgresStore) IDsByDataType(ctx context.Context, dataTypes []string) ([]int64, error) {
	rows, err := s.db.Query(ctx, "SELECT id FROM workflow_objects WHERE data_type = ANY($1) ORDER BY id", dataTypes)
	if err != nil {
		return nil, fmt.Errorf("store: ids by data type: %w", err)
	}
	ids, err := pgx.CollectRows(rows, pgx.RowTo[int64])
	if err != nil {
		return nil, fmt.Errorf("store: ids by data type: %w", err)
	}
	return ids, nil
}

func scanObject(row pgx.Row) (*domain.WorkflowObject, error) {
	var (
		obj        domain.WorkflowObject
		status     string
		idWorkflow pgtype.UUID
		pos        []int32
		data       []byte
		extra      []byte
	)
	err := row.Scan(&obj.ID, &status, &obj.DataType, &obj.IDUser, &obj.IDParent, &idWorkflow,
		&obj.WorkflowName, &pos, &data, &extra, &obj.Created, &obj.Modified)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	obj.Status = domain.ObjectStatus(status)
	if idWorkflow.Valid {
		u := uuid.UUID(idWorkflow.Bytes)
		obj.IDWorkflow = &u
	}
	obj.CallbackPos = make([]int, len(pos))
	for i, p := range pos {
		obj.CallbackPos[i] = int(p)
	}
	if obj.Data, err = unmarshalPayload(data); err != nil {
		return nil, fmt.Errorf("decode data: %w", err)
	}
	if obj.ExtraData, err = unmarshalPayload(extra); err != nil {
		return nil, fmt.Errorf("decode extra_data: %w", err)
	}
	obj.Created = obj.Created.UTC()
	obj.Modified = obj.Modified.UTC()
	return &obj, nil
}

func marshalPayload(m map[string]any) ([]byte, error) {
	if m == nil {
		return nil, nil
	}
	return json.Marshal(m)
}

func unmarshalPayload(b []byte) (map[string]any, error) {
	if b == nil {
		return nil, nil
	}
	var m map[string]any
	if err := json.Unmarshal(b, &m); err != nil {
		return nil, err
	}
	return m, nil
}

func toPgUUID(u *uuid.UUID) pgtype.UUID {
	if u == nil {
		return pgtype.UUID{}
	}
	return pgtype.UUID{Bytes: *u, Valid: true}
}

func toInt32s(pos []int) []int32 {
	out := make([]int32, len(pos))
	for i, p := range pos {
		out[i] = int32(p)
	}
	return out
}
