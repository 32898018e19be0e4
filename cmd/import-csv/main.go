package main

import (
	"context"
	"database/sql"
	"flag"
	"log"
	"time"

	"comichub/pkg/database"
	"comichub/pkg/models"
	"comichub/pkg/store"
	"comichub/pkg/utils"
)

// Lifts the canonical editions CSV into sqlite so the API server can
// query it. The CSV stays the source of truth; this import is rerun
// after every pipeline run and upserts by IST URL.
func main() {
	cfg := utils.LoadPipelineConfig()
	storePath := flag.String("store", cfg.StorePath, "canonical editions CSV path")
	flag.Parse()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	table, err := store.Load(*storePath)
	if err != nil {
		log.Fatalf("load store: %v", err)
	}

	db := database.MustOpen(database.DefaultConfig())
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		log.Fatalf("db migrate failed: %v", err)
	}

	if err := importEditions(ctx, db, table); err != nil {
		log.Fatalf("import editions failed: %v", err)
	}

	log.Printf("✅ imported %d editions from %s", len(table.Rows), *storePath)
}

func importEditions(ctx context.Context, db *sql.DB, table *store.Table) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO editions (
			ist_url, ist_title, opb_url, amazon_url, target_url,
			retail_price, opb_status, opb_current_price, ist_status, ist_current_price,
			amazon_status, amazon_current_price, target_status, target_current_price,
			min_current_price, all_time_low_price, upc, target_doc_name, last_updated
		)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(ist_url) DO UPDATE SET
		  ist_title = excluded.ist_title,
		  opb_url = excluded.opb_url,
		  amazon_url = excluded.amazon_url,
		  target_url = excluded.target_url,
		  retail_price = excluded.retail_price,
		  opb_status = excluded.opb_status,
		  opb_current_price = excluded.opb_current_price,
		  ist_status = excluded.ist_status,
		  ist_current_price = excluded.ist_current_price,
		  amazon_status = excluded.amazon_status,
		  amazon_current_price = excluded.amazon_current_price,
		  target_status = excluded.target_status,
		  target_current_price = excluded.target_current_price,
		  min_current_price = excluded.min_current_price,
		  all_time_low_price = excluded.all_time_low_price,
		  upc = excluded.upc,
		  target_doc_name = excluded.target_doc_name,
		  last_updated = excluded.last_updated
	`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, e := range table.Rows {
		if e.ISTURL == "" {
			// rows created by a non-IST pass that never linked up; the
			// API keys on IST URL so these stay CSV-only for now
			continue
		}
		updated := ""
		if !e.LastUpdated.IsZero() {
			updated = e.LastUpdated.UTC().Format(time.RFC3339)
		}
		if _, err := stmt.ExecContext(
			ctx,
			e.ISTURL,
			e.ISTTitle,
			nullString(e.OPBURL),
			nullString(e.AmazonURL),
			nullString(e.TargetURL),
			nullPrice(e.RetailPrice),
			nullString(e.OPBStatus),
			nullPrice(e.OPBCurrentPrice),
			nullString(e.ISTStatus),
			nullPrice(e.ISTCurrentPrice),
			nullString(e.AmazonStatus),
			nullPrice(e.AmazonCurrentPrice),
			nullString(e.TargetStatus),
			nullPrice(e.TargetCurrentPrice),
			nullPrice(e.MinCurrentPrice),
			nullPrice(e.AllTimeLowPrice),
			nullString(e.UPC),
			nullString(e.TargetDocName),
			nullString(updated),
		); err != nil {
			return err
		}
	}

	return tx.Commit()
}

func nullString(raw string) sql.NullString {
	if raw == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: raw, Valid: true}
}

func nullPrice(p models.Price) sql.NullString {
	return nullString(p.String())
}
