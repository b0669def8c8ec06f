// Command datasetexport builds a YOLO training dataset from saved
// annotation records without opening the editor.
//
// Usage: datasetexport [-fraction 0.8] <photo-dir> <annotation-dir> <output-dir>
package main

import (
	"errors"
	"flag"
	"fmt"
	"os"

	"mini-annotator/internal/annotation"
	"mini-annotator/internal/corpus"
	"mini-annotator/internal/export"

	"github.com/charmbracelet/log"
)

func main() {
	fraction := flag.Float64("fraction", 0.8, "fraction of images assigned to the train split")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [-fraction 0.8] <photo-dir> <annotation-dir> <output-dir>\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() != 3 {
		flag.Usage()
		os.Exit(1)
	}
	photoDir, annotationDir, outputDir := flag.Arg(0), flag.Arg(1), flag.Arg(2)

	logger := log.NewWithOptions(os.Stderr, log.Options{Prefix: "export"})

	store, err := corpus.NewDirStore(photoDir)
	if err != nil {
		logger.Fatal("open photo directory", "err", err)
	}
	annStore, err := annotation.NewFileStore(annotationDir)
	if err != nil {
		logger.Fatal("open annotation directory", "err", err)
	}

	records, err := annStore.List()
	if err != nil {
		logger.Fatal("list annotations", "err", err)
	}
	logger.Info("loaded annotations", "images", len(records))

	exporter := export.NewExporter(store)
	exporter.Logger = logger

	result, err := exporter.Export(records, outputDir, *fraction)
	if err != nil {
		var verr *export.ValidationError
		if errors.As(err, &verr) {
			for imageID, issues := range verr.Report.PerImage {
				for _, issue := range issues {
					if issue.Blocking() {
						fmt.Fprintf(os.Stderr, "%s: %s\n", imageID, issue.Message)
					}
				}
			}
		}
		logger.Fatal("export", "err", err)
	}

	fmt.Printf("Exported %d train / %d val images to %s\n",
		result.TrainCount, result.ValCount, outputDir)
	fmt.Printf("Classes: %v\n", result.Classes)
	if len(result.Failed) > 0 {
		fmt.Printf("Skipped %d images with I/O errors: %v\n", len(result.Failed), result.Failed)
		os.Exit(1)
	}
}
