package store

import (
	"strings"

	sq "github.com/Masterminds/squirrel"
)

const (
	createUser = `INSERT INTO users (login, password_hash)
    VALUES ($1, $2)
    RETURNING user_id, login, password_hash, created_at;`

	findUserByLogin = `SELECT user_id, login, password_hash, created_at
    FROM users
    WHERE login = $1;`

	insertRecord = `INSERT INTO records (
			record_id,
			owner_id,
			title,
			director,
			release_date,
			duration,
			watched,
			photo,
			location_lat,
			location_long,
			last_edit
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11);`

	// updateRecordIfNewer distinguishes "missing" (current_last_edit NULL)
	// from "stale" (updated_id NULL) in one round trip.
	updateRecordIfNewer = `
       WITH target_record AS (
          SELECT record_id, last_edit
          FROM records
          WHERE record_id = $1 AND owner_id = $2
          FOR UPDATE
       ),
       updated_record AS (
          UPDATE records
          SET title = $3, director = $4, release_date = $5, duration = $6,
              watched = $7, photo = $8, location_lat = $9, location_long = $10,
              last_edit = $11
          WHERE record_id = $1
            AND owner_id = $2
            AND last_edit < $11
          RETURNING record_id
       )
       SELECT
          (SELECT record_id FROM updated_record) AS updated_id,
          (SELECT last_edit FROM target_record)  AS current_last_edit`

	findRecordOwner = `SELECT owner_id FROM records WHERE record_id = $1 FOR UPDATE;`

	deleteRecord = `DELETE FROM records WHERE record_id = $1 AND owner_id = $2;`

	// bumpWatermark keeps the owner's watermark strictly increasing even when
	// two writes land within the same millisecond.
	bumpWatermark = `INSERT INTO owner_watermarks (owner_id, watermark)
    VALUES ($1, $2)
    ON CONFLICT (owner_id)
    DO UPDATE SET watermark = GREATEST(owner_watermarks.watermark + 1, EXCLUDED.watermark)
    RETURNING watermark;`

	getWatermark = `SELECT watermark FROM owner_watermarks WHERE owner_id = $1;`
)

var recordColumns = []string{
	"record_id",
	"owner_id",
	"title",
	"director",
	"release_date",
	"duration",
	"watched",
	"photo",
	"location_lat",
	"location_long",
	"last_edit",
}

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

// selectRecords is the base query shared by list, page and stale lookups.
func selectRecords(ownerID int64) sq.SelectBuilder {
	return psql.Select(recordColumns...).
		From("records").
		Where(sq.Eq{"owner_id": ownerID}).
		OrderBy("created_at", "record_id")
}

// buildPageQuery renders one page (1-based) of the owner's records whose
// title starts with titlePrefix.
func buildPageQuery(ownerID int64, page, pageSize int, titlePrefix string) (string, []any, error) {
	query := selectRecords(ownerID)
	if titlePrefix != "" {
		query = query.Where(sq.Like{"title": escapeLike(titlePrefix) + "%"})
	}

	return query.
		Limit(uint64(pageSize)).
		Offset(uint64((page - 1) * pageSize)).
		ToSql()
}

func buildFindRecordQuery(ownerID int64, recordID string) (string, []any, error) {
	return selectRecords(ownerID).
		Where(sq.Eq{"record_id": recordID}).
		ToSql()
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// escapeLike makes user input literal inside a LIKE pattern.
func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
