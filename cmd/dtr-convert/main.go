// dtr-convert is the batch CLI: it converts one or more punch-log files
// into monthly attendance workbooks in a single run.
//
// Usage:
//
//	dtr-convert [-dir employees.txt] [-out ./out] file1.dat [file2.dat ...]
//
// Every source is attempted independently; the exit code is 1 only when no
// source converted at all.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/dtrkit/dtr-backend/internal/dtr/events"
	"github.com/dtrkit/dtr-backend/internal/dtr/render"
	"github.com/dtrkit/dtr-backend/internal/dtr/service"
	"github.com/dtrkit/dtr-backend/pkg/config"
	"github.com/dtrkit/dtr-backend/pkg/logger"
)

func main() {
	dirPath := flag.String("dir", "./employees.txt", "employee list file")
	outDir := flag.String("out", "./out", "output directory for .xlsx artifacts")
	flag.Parse()

	sources := flag.Args()
	if len(sources) == 0 {
		fmt.Fprintln(os.Stderr, "usage: dtr-convert [-dir employees.txt] [-out ./out] file1.dat [file2.dat ...]")
		os.Exit(2)
	}

	log := logger.New("dtr-convert", config.GetEnvironment())

	cfg := &config.ConversionConfig{
		DirectoryPath: *dirPath,
		OutputDir:     *outDir,
	}

	// No database and no broker in CLI runs: history and events are off.
	svc := service.NewConversionService(
		cfg,
		render.NewExcelRenderer(log),
		nil,
		events.NewConversionEventPublisher(nil, log),
		log,
	)

	snapshot := svc.LoadDirectory()
	outcomes := svc.ConvertBatch(context.Background(), sources, snapshot)

	failures := 0
	for _, outcome := range outcomes {
		if outcome.Err != nil {
			failures++
			fmt.Printf("FAIL  %s: %v\n", outcome.Source, outcome.Err)
			continue
		}
		fmt.Printf("OK    %s -> %s (%d events, %d dropped)\n",
			outcome.Source, outcome.OutputPath, outcome.Events, outcome.Dropped)
	}

	if failures == len(outcomes) {
		os.Exit(1)
	}
}
