package mainstore

import "context"

// Entity is a lightweight normalized reference extracted from fact content.
type Entity struct {
	ID          int64
	ProjectID   int64
	Kind        string
	EntityKey   string
	DisplayName string
}

// UpsertEntity inserts or merges an entity. The ON CONFLICT clause uses
// COALESCE(existing.display_name, excluded.display_name) so a later
// upsert with an empty display name never blanks out a known one, per
// spec §3.1/§4.E.
func (s *Store) UpsertEntity(ctx context.Context, projectID int64, kind, entityKey, displayName string) (int64, error) {
	var id int64
	var nameArg any
	if displayName == "" {
		nameArg = nil
	} else {
		nameArg = displayName
	}

	err := s.pool.DB.QueryRowContext(ctx,
		`INSERT INTO entities(project_id, kind, entity_key, display_name)
		 VALUES (?, ?, ?, ?)
		 ON CONFLICT(project_id, kind, entity_key) DO UPDATE SET
		   display_name = COALESCE(entities.display_name, excluded.display_name),
		   updated_at = CURRENT_TIMESTAMP
		 RETURNING id`,
		projectID, kind, entityKey, nameArg).Scan(&id)
	return id, err
}

// GetEntity fetches an entity by its natural key.
func (s *Store) GetEntity(ctx context.Context, projectID int64, kind, entityKey string) (*Entity, error) {
	var e Entity
	var name any
	err := s.pool.DB.QueryRowContext(ctx,
		`SELECT id, project_id, kind, entity_key, display_name FROM entities
		 WHERE project_id = ? AND kind = ? AND entity_key = ?`, projectID, kind, entityKey).
		Scan(&e.ID, &e.ProjectID, &e.Kind, &e.EntityKey, &name)
	if err != nil {
		return nil, err
	}
	if s, ok := name.(string); ok {
		e.DisplayName = s
	}
	return &e, nil
}
