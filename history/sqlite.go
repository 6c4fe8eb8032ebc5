package history

import (
	"database/sql"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/pkg/errors"
)

var createTableSQL = `
CREATE TABLE IF NOT EXISTS groups (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	local_uid  TEXT NOT NULL,
	remote_uid TEXT NOT NULL,
	UNIQUE (local_uid, remote_uid)
);

CREATE TABLE IF NOT EXISTS events (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	group_id    INTEGER NOT NULL DEFAULT 0,
	mms_id      TEXT NOT NULL DEFAULT '',
	direction   INTEGER NOT NULL,
	status      INTEGER NOT NULL,
	read_status INTEGER NOT NULL DEFAULT 0,
	is_read     INTEGER NOT NULL DEFAULT 0,
	local_uid   TEXT NOT NULL DEFAULT '',
	remote_uid  TEXT NOT NULL DEFAULT '',
	to_list     TEXT NOT NULL DEFAULT '',
	cc_list     TEXT NOT NULL DEFAULT '',
	bcc_list    TEXT NOT NULL DEFAULT '',
	subject     TEXT NOT NULL DEFAULT '',
	free_text   TEXT NOT NULL DEFAULT '',
	report_read INTEGER NOT NULL DEFAULT 0,
	start_time  INTEGER NOT NULL DEFAULT 0,
	end_time    INTEGER NOT NULL DEFAULT 0
);

CREATE INDEX IF NOT EXISTS events_mms_id ON events (mms_id);

CREATE TABLE IF NOT EXISTS event_parts (
	event_id     INTEGER NOT NULL,
	content_id   TEXT NOT NULL,
	content_type TEXT NOT NULL,
	path         TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS event_properties (
	event_id INTEGER NOT NULL,
	key      TEXT NOT NULL,
	value    TEXT NOT NULL,
	UNIQUE (event_id, key)
);
`

// SQLiteStore keeps the message history in a local database. It
// implements both Store and GroupResolver.
type SQLiteStore struct {
	db *sql.DB
}

func OpenSQLite(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, errors.Wrap(err, "opening history database")
	}
	if _, err := db.Exec(createTableSQL); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "creating history schema")
	}
	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) GroupFor(localUID, remoteUID string) (int64, error) {
	var id int64
	err := s.db.QueryRow("SELECT id FROM groups WHERE local_uid = ? AND remote_uid = ?",
		localUID, remoteUID).Scan(&id)
	if err == nil {
		return id, nil
	}
	if err != sql.ErrNoRows {
		return 0, errors.Wrap(err, "querying group")
	}
	res, err := s.db.Exec("INSERT INTO groups (local_uid, remote_uid) VALUES (?, ?)",
		localUID, remoteUID)
	if err != nil {
		return 0, errors.Wrap(err, "creating group")
	}
	id, err = res.LastInsertId()
	if err != nil {
		return 0, errors.Wrap(err, "creating group")
	}
	return id, nil
}

func (s *SQLiteStore) Add(event *Event) error {
	tx, err := s.db.Begin()
	if err != nil {
		return errors.Wrap(err, "adding event")
	}
	defer tx.Rollback()

	res, err := tx.Exec(`
		INSERT INTO events (group_id, mms_id, direction, status, read_status,
			is_read, local_uid, remote_uid, to_list, cc_list, bcc_list,
			subject, free_text, report_read, start_time, end_time)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		event.GroupID, event.MmsID, event.Direction, event.Status,
		event.ReadStatus, event.IsRead, event.LocalUID, event.RemoteUID,
		joinList(event.To), joinList(event.Cc), joinList(event.Bcc),
		event.Subject, event.FreeText, event.ReportRead,
		event.StartTime.Unix(), event.EndTime.Unix())
	if err != nil {
		return errors.Wrap(err, "adding event")
	}
	id, err := res.LastInsertId()
	if err != nil {
		return errors.Wrap(err, "adding event")
	}
	if err := writeParts(tx, id, event.Parts); err != nil {
		return err
	}
	if err := writeProperties(tx, id, event.Extra); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return errors.Wrap(err, "adding event")
	}
	event.ID = id
	return nil
}

func (s *SQLiteStore) Update(event *Event) error {
	tx, err := s.db.Begin()
	if err != nil {
		return errors.Wrapf(err, "updating event %d", event.ID)
	}
	defer tx.Rollback()

	res, err := tx.Exec(`
		UPDATE events SET group_id = ?, mms_id = ?, direction = ?,
			status = ?, read_status = ?, is_read = ?, local_uid = ?,
			remote_uid = ?, to_list = ?, cc_list = ?, bcc_list = ?,
			subject = ?, free_text = ?, report_read = ?, start_time = ?,
			end_time = ?
		WHERE id = ?`,
		event.GroupID, event.MmsID, event.Direction, event.Status,
		event.ReadStatus, event.IsRead, event.LocalUID, event.RemoteUID,
		joinList(event.To), joinList(event.Cc), joinList(event.Bcc),
		event.Subject, event.FreeText, event.ReportRead,
		event.StartTime.Unix(), event.EndTime.Unix(), event.ID)
	if err != nil {
		return errors.Wrapf(err, "updating event %d", event.ID)
	}
	if n, err := res.RowsAffected(); err != nil {
		return errors.Wrapf(err, "updating event %d", event.ID)
	} else if n == 0 {
		return ErrEventNotFound
	}
	if _, err := tx.Exec("DELETE FROM event_parts WHERE event_id = ?", event.ID); err != nil {
		return errors.Wrapf(err, "updating event %d", event.ID)
	}
	if _, err := tx.Exec("DELETE FROM event_properties WHERE event_id = ?", event.ID); err != nil {
		return errors.Wrapf(err, "updating event %d", event.ID)
	}
	if err := writeParts(tx, event.ID, event.Parts); err != nil {
		return err
	}
	if err := writeProperties(tx, event.ID, event.Extra); err != nil {
		return err
	}
	return errors.Wrapf(tx.Commit(), "updating event %d", event.ID)
}

func (s *SQLiteStore) Get(id int64) (*Event, error) {
	event := &Event{}
	var to, cc, bcc string
	var start, end int64
	err := s.db.QueryRow(`
		SELECT id, group_id, mms_id, direction, status, read_status,
			is_read, local_uid, remote_uid, to_list, cc_list, bcc_list,
			subject, free_text, report_read, start_time, end_time
		FROM events WHERE id = ?`, id).Scan(
		&event.ID, &event.GroupID, &event.MmsID, &event.Direction,
		&event.Status, &event.ReadStatus, &event.IsRead, &event.LocalUID,
		&event.RemoteUID, &to, &cc, &bcc, &event.Subject, &event.FreeText,
		&event.ReportRead, &start, &end)
	if err == sql.ErrNoRows {
		return nil, ErrEventNotFound
	}
	if err != nil {
		return nil, errors.Wrapf(err, "querying event %d", id)
	}
	event.To = splitList(to)
	event.Cc = splitList(cc)
	event.Bcc = splitList(bcc)
	event.StartTime = time.Unix(start, 0)
	event.EndTime = time.Unix(end, 0)
	if event.Parts, err = s.loadParts(id); err != nil {
		return nil, err
	}
	if event.Extra, err = s.loadProperties(id); err != nil {
		return nil, err
	}
	return event, nil
}

func (s *SQLiteStore) GetByMmsID(mmsID string) (*Event, error) {
	if mmsID == "" {
		return nil, ErrEventNotFound
	}
	var id int64
	err := s.db.QueryRow("SELECT id FROM events WHERE mms_id = ? ORDER BY id LIMIT 1",
		mmsID).Scan(&id)
	if err == sql.ErrNoRows {
		return nil, ErrEventNotFound
	}
	if err != nil {
		return nil, errors.Wrapf(err, "querying event by message id %s", mmsID)
	}
	return s.Get(id)
}

func (s *SQLiteStore) Move(event *Event, newGroupID int64) error {
	res, err := s.db.Exec("UPDATE events SET group_id = ? WHERE id = ?",
		newGroupID, event.ID)
	if err != nil {
		return errors.Wrapf(err, "moving event %d to group %d", event.ID, newGroupID)
	}
	if n, err := res.RowsAffected(); err != nil {
		return errors.Wrapf(err, "moving event %d to group %d", event.ID, newGroupID)
	} else if n == 0 {
		return ErrEventNotFound
	}
	return nil
}

func (s *SQLiteStore) loadParts(id int64) ([]Part, error) {
	rows, err := s.db.Query(
		"SELECT content_id, content_type, path FROM event_parts WHERE event_id = ? ORDER BY rowid",
		id)
	if err != nil {
		return nil, errors.Wrapf(err, "querying parts of event %d", id)
	}
	defer rows.Close()

	var parts []Part
	for rows.Next() {
		var p Part
		if err := rows.Scan(&p.ContentID, &p.ContentType, &p.Path); err != nil {
			return nil, errors.Wrapf(err, "querying parts of event %d", id)
		}
		parts = append(parts, p)
	}
	return parts, errors.Wrapf(rows.Err(), "querying parts of event %d", id)
}

func (s *SQLiteStore) loadProperties(id int64) (map[string]string, error) {
	rows, err := s.db.Query(
		"SELECT key, value FROM event_properties WHERE event_id = ?", id)
	if err != nil {
		return nil, errors.Wrapf(err, "querying properties of event %d", id)
	}
	defer rows.Close()

	props := make(map[string]string)
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return nil, errors.Wrapf(err, "querying properties of event %d", id)
		}
		props[key] = value
	}
	return props, errors.Wrapf(rows.Err(), "querying properties of event %d", id)
}

func writeParts(tx *sql.Tx, id int64, parts []Part) error {
	for _, p := range parts {
		if _, err := tx.Exec(
			"INSERT INTO event_parts (event_id, content_id, content_type, path) VALUES (?, ?, ?, ?)",
			id, p.ContentID, p.ContentType, p.Path); err != nil {
			return errors.Wrapf(err, "storing part %s of event %d", p.ContentID, id)
		}
	}
	return nil
}

func writeProperties(tx *sql.Tx, id int64, props map[string]string) error {
	for key, value := range props {
		if _, err := tx.Exec(
			"INSERT INTO event_properties (event_id, key, value) VALUES (?, ?, ?)",
			id, key, value); err != nil {
			return errors.Wrapf(err, "storing property %s of event %d", key, id)
		}
	}
	return nil
}

func joinList(items []string) string {
	return strings.Join(items, ",")
}

func splitList(joined string) []string {
	if joined == "" {
		return nil
	}
	return strings.Split(joined, ",")
}
