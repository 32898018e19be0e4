package prices

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"comichub/pkg/models"
)

type Repo struct {
	DB *sql.DB
}

type ListQuery struct {
	Q       string // keyword search in IST title
	OnlyUPC bool   // restrict to rows enrichment has resolved
	Limit   int
	Offset  int
}

func NewRepo(db *sql.DB) *Repo {
	return &Repo{DB: db}
}

const editionColumns = `
	ist_url, ist_title, opb_url, amazon_url, retail_price,
	ist_status, ist_current_price, opb_status, opb_current_price,
	amazon_status, amazon_current_price, min_current_price,
	all_time_low_price, upc, last_updated
`

func (r *Repo) GetByUPC(ctx context.Context, upc string) (*models.EditionDB, error) {
	row := r.DB.QueryRowContext(ctx, `
		SELECT `+editionColumns+`
		FROM editions
		WHERE upc = ?
	`, upc)

	e, err := scanEdition(row.Scan)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("scan getByUPC: %w", err)
	}
	return e, nil
}

func (r *Repo) Count(ctx context.Context, q ListQuery) (int, error) {
	sqlStr, args := buildListSQL(q, true)
	row := r.DB.QueryRowContext(ctx, sqlStr, args...)
	var total int
	if err := row.Scan(&total); err != nil {
		return 0, fmt.Errorf("count scan: %w", err)
	}
	return total, nil
}

func (r *Repo) List(ctx context.Context, q ListQuery) ([]models.EditionDB, error) {
	sqlStr, args := buildListSQL(q, false)

	rows, err := r.DB.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, fmt.Errorf("list query: %w", err)
	}
	defer rows.Close()

	out := make([]models.EditionDB, 0, q.Limit)
	for rows.Next() {
		e, err := scanEdition(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("list scan: %w", err)
		}
		out = append(out, *e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows err: %w", err)
	}
	return out, nil
}

func scanEdition(scan func(dest ...any) error) (*models.EditionDB, error) {
	var (
		e           models.EditionDB
		opbURL      sql.NullString
		amazonURL   sql.NullString
		retail      sql.NullString
		istStatus   sql.NullString
		istPrice    sql.NullString
		opbStatus   sql.NullString
		opbPrice    sql.NullString
		amzStatus   sql.NullString
		amzPrice    sql.NullString
		minPrice    sql.NullString
		allTimeLow  sql.NullString
		upc         sql.NullString
		lastUpdated sql.NullString
	)

	if err := scan(
		&e.ISTURL, &e.ISTTitle, &opbURL, &amazonURL, &retail,
		&istStatus, &istPrice, &opbStatus, &opbPrice,
		&amzStatus, &amzPrice, &minPrice, &allTimeLow, &upc, &lastUpdated,
	); err != nil {
		return nil, err
	}

	e.OPBURL = opbURL.String
	e.AmazonURL = amazonURL.String
	e.RetailPrice = retail.String
	e.ISTStatus = istStatus.String
	e.ISTCurrentPrice = istPrice.String
	e.OPBStatus = opbStatus.String
	e.OPBCurrentPrice = opbPrice.String
	e.AmazonStatus = amzStatus.String
	e.AmazonPrice = amzPrice.String
	e.MinCurrentPrice = minPrice.String
	e.AllTimeLow = allTimeLow.String
	e.UPC = upc.String
	e.LastUpdated = lastUpdated.String
	return &e, nil
}

// buildListSQL builds either the COUNT(*) or the SELECT list variant of
// the same filtered query.
func buildListSQL(q ListQuery, countOnly bool) (string, []any) {
	baseSelect := `SELECT ` + editionColumns + ` FROM editions`
	if countOnly {
		baseSelect = `SELECT COUNT(*) FROM editions`
	}

	var where []string
	var args []any

	if strings.TrimSpace(q.Q) != "" {
		where = append(where, "LOWER(ist_title) LIKE ?")
		args = append(args, "%"+strings.ToLower(strings.TrimSpace(q.Q))+"%")
	}
	if q.OnlyUPC {
		where = append(where, "upc IS NOT NULL AND upc != ''")
	}

	sqlStr := baseSelect
	if len(where) > 0 {
		sqlStr += " WHERE " + strings.Join(where, " AND ")
	}
	if !countOnly {
		sqlStr += " ORDER BY ist_title LIMIT ? OFFSET ?"
		args = append(args, q.Limit, q.Offset)
	}
	return sqlStr, args
}
