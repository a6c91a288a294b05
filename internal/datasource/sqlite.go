package datasource

import (
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
	_ "modernc.org/sqlite"

	"github.com/tiohsa/flowboard/pkg/model"
)

// SQLiteReader provides read access to a flowboard SQLite database
type SQLiteReader struct {
	db   *sql.DB
	path string
}

// NewSQLiteReader opens a SQLite database for reading
func NewSQLiteReader(source DataSource) (*SQLiteReader, error) {
	if source.Type != SourceTypeSQLite {
		return nil, fmt.Errorf("source is not SQLite: %s", source.Type)
	}

	// Open in read-only mode with various pragmas for read performance
	dsn := fmt.Sprintf("file:%s?mode=ro&_busy_timeout=5000&_journal_mode=WAL", source.Path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("cannot open database: %w", err)
	}

	pragmas := []string{
		"PRAGMA cache_size = -64000",
		"PRAGMA temp_store = MEMORY",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			// Non-fatal
		}
	}

	return &SQLiteReader{
		db:   db,
		path: source.Path,
	}, nil
}

// Close closes the database connection
func (r *SQLiteReader) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// LoadSnapshot reads all board tables and assembles a snapshot. The four
// tables are read concurrently; sub-items are attached to their cards at
// the end.
func (r *SQLiteReader) LoadSnapshot() (*model.BoardSnapshot, error) {
	var (
		mu       sync.Mutex
		columns  []model.Column
		lanes    []model.Lane
		cards    []model.Card
		subitems map[int][]model.Subitem
		caps     model.Capabilities
	)

	var g errgroup.Group
	g.Go(func() error {
		cols, err := r.loadColumns()
		if err != nil {
			return err
		}
		mu.Lock()
		columns = cols
		mu.Unlock()
		return nil
	})
	g.Go(func() error {
		ls, err := r.loadLanes()
		if err != nil {
			return err
		}
		mu.Lock()
		lanes = ls
		mu.Unlock()
		return nil
	})
	g.Go(func() error {
		cs, err := r.loadCards()
		if err != nil {
			return err
		}
		mu.Lock()
		cards = cs
		mu.Unlock()
		return nil
	})
	g.Go(func() error {
		subs, err := r.loadSubitems()
		if err != nil {
			return err
		}
		mu.Lock()
		subitems = subs
		mu.Unlock()
		return nil
	})
	g.Go(func() error {
		c, err := r.loadCapabilities()
		if err != nil {
			return err
		}
		mu.Lock()
		caps = c
		mu.Unlock()
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	for i := range cards {
		cards[i].Subitems = subitems[cards[i].ID]
	}

	snap := &model.BoardSnapshot{
		Columns:      columns,
		Lanes:        lanes,
		Cards:        cards,
		Capabilities: caps,
		GeneratedAt:  time.Now(),
	}
	if err := snap.Validate(); err != nil {
		return nil, fmt.Errorf("invalid snapshot in %s: %w", r.path, err)
	}
	return snap, nil
}

func (r *SQLiteReader) loadColumns() ([]model.Column, error) {
	rows, err := r.db.Query(`
		SELECT id, name, closed, wip_limit
		FROM columns
		ORDER BY position, id
	`)
	if err != nil {
		return nil, fmt.Errorf("query columns: %w", err)
	}
	defer rows.Close()

	var columns []model.Column
	for rows.Next() {
		var col model.Column
		var closed sql.NullBool
		var wip sql.NullInt64
		if err := rows.Scan(&col.ID, &col.Name, &closed, &wip); err != nil {
			return nil, fmt.Errorf("scan column: %w", err)
		}
		col.Closed = closed.Valid && closed.Bool
		if wip.Valid {
			col.WIPLimit = int(wip.Int64)
		}
		columns = append(columns, col)
	}
	return columns, rows.Err()
}

func (r *SQLiteReader) loadLanes() ([]model.Lane, error) {
	rows, err := r.db.Query(`
		SELECT id, name, identity
		FROM lanes
		ORDER BY position, id
	`)
	if err != nil {
		// A board without a lanes table is a flat board.
		if isNoSuchTable(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("query lanes: %w", err)
	}
	defer rows.Close()

	var lanes []model.Lane
	for rows.Next() {
		var lane model.Lane
		var identity sql.NullString
		if err := rows.Scan(&lane.ID, &lane.Name, &identity); err != nil {
			return nil, fmt.Errorf("scan lane: %w", err)
		}
		if identity.Valid {
			lane.Identity = identity.String
		}
		lanes = append(lanes, lane)
	}
	return lanes, rows.Err()
}

func (r *SQLiteReader) loadCards() ([]model.Card, error) {
	rows, err := r.db.Query(`
		SELECT id, parent_id, subject, column_id, assigned_identity,
			project, category, priority, due_date, updated_at,
			done_ratio, url, editable, deletable
		FROM cards
		ORDER BY position, id
	`)
	if err != nil {
		return nil, fmt.Errorf("query cards: %w", err)
	}
	defer rows.Close()

	var cards []model.Card
	for rows.Next() {
		var card model.Card
		var parentID sql.NullInt64
		var assigned, project, category, url sql.NullString
		var priority, doneRatio sql.NullInt64
		var dueDate, updatedAt sql.NullTime
		var editable, deletable sql.NullBool

		err := rows.Scan(
			&card.ID, &parentID, &card.Subject, &card.ColumnID, &assigned,
			&project, &category, &priority, &dueDate, &updatedAt,
			&doneRatio, &url, &editable, &deletable,
		)
		if err != nil {
			return nil, fmt.Errorf("scan card: %w", err)
		}

		if parentID.Valid {
			v := int(parentID.Int64)
			card.ParentID = &v
		}
		if assigned.Valid {
			card.AssignedIdentity = assigned.String
		}
		if project.Valid {
			card.Project = project.String
		}
		if category.Valid {
			card.Category = category.String
		}
		if priority.Valid {
			card.Priority = model.Priority(priority.Int64)
		} else {
			card.Priority = model.PriorityNormal
		}
		if dueDate.Valid {
			t := dueDate.Time
			card.DueDate = &t
		}
		if updatedAt.Valid {
			card.UpdatedAt = updatedAt.Time
		}
		if doneRatio.Valid {
			card.DoneRatio = int(doneRatio.Int64)
		}
		if url.Valid {
			card.URL = url.String
		}
		card.Editable = editable.Valid && editable.Bool
		card.Deletable = deletable.Valid && deletable.Bool

		cards = append(cards, card)
	}
	return cards, rows.Err()
}

func (r *SQLiteReader) loadSubitems() (map[int][]model.Subitem, error) {
	rows, err := r.db.Query(`
		SELECT id, card_id, subject, closed
		FROM subitems
		ORDER BY card_id, position, id
	`)
	if err != nil {
		// Sub-items are optional.
		if isNoSuchTable(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("query subitems: %w", err)
	}
	defer rows.Close()

	subs := make(map[int][]model.Subitem)
	for rows.Next() {
		var sub model.Subitem
		var cardID int
		var closed sql.NullBool
		if err := rows.Scan(&sub.ID, &cardID, &sub.Subject, &closed); err != nil {
			return nil, fmt.Errorf("scan subitem: %w", err)
		}
		sub.Closed = closed.Valid && closed.Bool
		subs[cardID] = append(subs[cardID], sub)
	}
	return subs, rows.Err()
}

// loadCapabilities reads the single-row capabilities table. Missing
// table or row means a read-only board.
func (r *SQLiteReader) loadCapabilities() (model.Capabilities, error) {
	var caps model.Capabilities
	var canMove, canCreate, canDelete sql.NullBool
	err := r.db.QueryRow(`SELECT can_move, can_create, can_delete FROM capabilities LIMIT 1`).
		Scan(&canMove, &canCreate, &canDelete)
	if err != nil {
		if isNoSuchTable(err) || errors.Is(err, sql.ErrNoRows) {
			return model.Capabilities{}, nil
		}
		return model.Capabilities{}, fmt.Errorf("query capabilities: %w", err)
	}
	caps.CanMove = canMove.Valid && canMove.Bool
	caps.CanCreate = canCreate.Valid && canCreate.Bool
	caps.CanDelete = canDelete.Valid && canDelete.Bool
	return caps, nil
}

// isNoSuchTable reports sqlite's complaint about a table that does not
// exist. Optional tables may legitimately be absent; every other query
// error is real and must surface.
func isNoSuchTable(err error) bool {
	return err != nil && strings.Contains(err.Error(), "no such table")
}

// CountCards returns the number of cards in the database
func (r *SQLiteReader) CountCards() (int, error) {
	var count int
	err := r.db.QueryRow("SELECT COUNT(*) FROM cards").Scan(&count)
	if err != nil {
		return 0, err
	}
	return count, nil
}

// GetLastModified returns the most recent card update time
func (r *SQLiteReader) GetLastModified() (time.Time, error) {
	var updatedAt sql.NullTime
	err := r.db.QueryRow("SELECT MAX(updated_at) FROM cards").Scan(&updatedAt)
	if err != nil {
		return time.Time{}, err
	}
	if !updatedAt.Valid {
		return time.Time{}, nil
	}
	return updatedAt.Time, nil
}

// ColumnIDs returns the distinct column ids present on cards, sorted.
// Useful for diagnosing snapshots whose cards reference unknown columns.
func (r *SQLiteReader) ColumnIDs() ([]string, error) {
	rows, err := r.db.Query("SELECT DISTINCT column_id FROM cards")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, rows.Err()
}
