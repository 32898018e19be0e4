package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"

	"comichub/internal/connector"
	"comichub/internal/pipeline"
	"comichub/pkg/store"
	"comichub/pkg/utils"
)

func main() {
	cfg := utils.LoadPipelineConfig()

	var (
		istPass    = flag.Bool("ist", false, "scrape the IST listing feed for new editions and prices")
		opbPass    = flag.Bool("opb", false, "refresh OPB prices for known editions")
		amazonPass = flag.Bool("amazon", false, "refresh Amazon prices via code lookup")
		enrichPass = flag.Bool("enrich", false, "backfill missing UPCs from IST detail pages")
		storePath  = flag.String("store", cfg.StorePath, "canonical editions CSV path")
		batch      = flag.Int("batch", cfg.UPCBatch, "max detail fetches per enrichment run")
		maxPages   = flag.Int("max-pages", cfg.MaxPages, "IST feed page ceiling")
		workers    = flag.Int("workers", cfg.Workers, "lookup fan-out for the OPB/Amazon passes")
	)
	flag.Parse()

	selected := 0
	for _, on := range []bool{*istPass, *opbPass, *amazonPass, *enrichPass} {
		if on {
			selected++
		}
	}
	if selected > 1 {
		log.Println("flags -ist, -opb, -amazon and -enrich are mutually exclusive")
		flag.Usage()
		os.Exit(2)
	}
	if selected == 0 {
		log.Println("nothing to do: pass one of -ist, -opb, -amazon or -enrich")
		return
	}

	// Load before any network traffic. A corrupt or missing store file
	// aborts the run here; it must never be replaced by a fresh empty one.
	table, err := store.Load(*storePath)
	if err != nil {
		log.Fatalf("load store: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	ist := connector.NewIST()
	ist.MaxPage = *maxPages

	runner := &pipeline.Runner{
		Table:         table,
		Pages:         ist,
		UPC:           ist,
		OPB:           connector.NewOPB(),
		Amazon:        connector.NewAmazon(),
		RunID:         uuid.NewString()[:8],
		LookupWorkers: *workers,
	}

	now := time.Now().UTC()
	log.Printf("[pipeline %s] store %s: %d rows loaded", runner.RunID, *storePath, len(table.Rows))

	var counts pipeline.Counts
	switch {
	case *istPass:
		counts = runner.RunIST(ctx, now)
	case *opbPass:
		counts = runner.RunOPB(ctx, now)
	case *amazonPass:
		counts = runner.RunAmazon(ctx, now)
	case *enrichPass:
		filled, attempted := runner.RunEnrich(ctx, *batch, now)
		log.Printf("[pipeline %s] enrichment: %d fetches, %d UPCs filled", runner.RunID, attempted, filled)
	}

	// Merge is idempotent and additive, so partial progress from a
	// cancelled run is always safe to keep.
	if err := store.Save(table, *storePath); err != nil {
		log.Fatalf("save store: %v", err)
	}

	if !*enrichPass {
		log.Printf("[pipeline %s] done: %d new, %d updated, %d unchanged, %d conflicts",
			runner.RunID, counts.New, counts.Updated, counts.Skipped, counts.Conflicts)
	}
	if ctx.Err() != nil {
		log.Printf("[pipeline %s] stopped early on signal; progress saved", runner.RunID)
	}
}
