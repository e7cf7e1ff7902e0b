// Command bot is the external trigger for the automation pipeline. It runs
// one bulk advancement step (or all four in order with -all) against the
// store and exits; nothing in the system advances stages on a clock.
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/k4ishnakanth/ApplicationTrackingNEW/internal/config"
	"github.com/k4ishnakanth/ApplicationTrackingNEW/internal/pipeline"
	"github.com/k4ishnakanth/ApplicationTrackingNEW/internal/store"
	"github.com/k4ishnakanth/ApplicationTrackingNEW/internal/workflow"
)

func main() {
	var (
		from = flag.String("from", "", "stage the step starts from (e.g. Applied)")
		all  = flag.Bool("all", false, "run every pipeline step in order")
	)
	flag.Parse()

	if !*all && *from == "" {
		log.Fatalf("either -from or -all is required")
	}

	cfg := config.Load()
	if cfg.PostgresDSN == "" {
		log.Fatalf("POSTGRES_DSN is required: the bot shares state with the API through Postgres")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		ch := make(chan os.Signal, 1)
		signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM)
		<-ch
		cancel()
	}()

	st, err := store.NewPostgres(ctx, cfg.PostgresDSN)
	if err != nil {
		log.Fatalf("connect postgres: %v", err)
	}
	defer st.Close()
	if err := st.RunMigrations(ctx); err != nil {
		log.Fatalf("migrations: %v", err)
	}

	engine := workflow.NewEngine(st)
	pl := pipeline.New(engine, st)

	steps := []string{*from}
	if *all {
		steps = pipeline.Steps()
	}
	for _, step := range steps {
		advanced, err := pl.AdvanceAll(ctx, step)
		if err != nil {
			log.Fatalf("step %s: %v", step, err)
		}
		next, _ := workflow.NextStage(step)
		log.Printf("step %s -> %s advanced %d application(s)", step, next, advanced)
	}
}
