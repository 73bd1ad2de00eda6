// Package pipeline runs the batch pass: read both raw snapshots, load and
// join them, and write the joined dataset and instructor corpus records.
package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"courserag/internal/catalog"
	"courserag/internal/config"
	"courserag/internal/corpus"
	"courserag/internal/domain"
	"courserag/internal/join"
	"courserag/internal/roster"
	"courserag/internal/snapshot"
)

// Options locate inputs and outputs. Empty output paths are skipped.
type Options struct {
	CatalogPath           string
	InstructorsPath       string
	CoursesPath           string
	InstructorRecordsPath string
	BoltPath              string

	Subject           string
	GraduateThreshold int
	Builder           *corpus.Builder
	Logger            zerolog.Logger
}

// OptionsFromConfig maps the application config onto pipeline options.
func OptionsFromConfig(cfg *config.AppConfig, builder *corpus.Builder, log zerolog.Logger) Options {
	return Options{
		CatalogPath:           cfg.Data.CatalogRaw,
		InstructorsPath:       cfg.Data.InstructorsRaw,
		CoursesPath:           cfg.Data.Courses,
		InstructorRecordsPath: cfg.Data.InstructorRecords,
		BoltPath:              cfg.Data.Bolt,
		Subject:               cfg.Catalog.Subject,
		GraduateThreshold:     cfg.Catalog.GraduateThreshold,
		Builder:               builder,
		Logger:                log,
	}
}

// Stats summarizes one run.
type Stats struct {
	CatalogRecords         int           `json:"catalog_records"`
	InstructorRecords      int           `json:"instructor_records"`
	Courses                int           `json:"courses"`
	Instructors            int           `json:"instructors"`
	CoursesWithInstructors int           `json:"courses_with_instructors"`
	Elapsed                time.Duration `json:"elapsed"`
}

// Result is the joined dataset produced by Run.
type Result struct {
	Courses     []domain.Course
	Instructors []domain.Instructor
	Stats       Stats
}

// Run executes the pipeline. A missing raw snapshot is fatal and wraps
// apperrors.ErrSnapshotMissing.
func Run(ctx context.Context, opts Options) (Result, error) {
	start := time.Now()
	log := opts.Logger
	if opts.Builder == nil {
		opts.Builder = corpus.NewBuilder()
	}

	var (
		catalogRecords    []domain.CatalogRecord
		instructorRecords []domain.InstructorRecord
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		recs, err := snapshot.ReadJSON[[]domain.CatalogRecord](opts.CatalogPath)
		if err != nil {
			return fmt.Errorf("catalog snapshot: %w", err)
		}
		catalogRecords = recs
		return gctx.Err()
	})
	g.Go(func() error {
		recs, err := snapshot.ReadJSON[[]domain.InstructorRecord](opts.InstructorsPath)
		if err != nil {
			return fmt.Errorf("instructor snapshot: %w", err)
		}
		instructorRecords = recs
		return gctx.Err()
	})
	if err := g.Wait(); err != nil {
		return Result{}, err
	}

	courses := catalog.NewLoader(
		catalog.WithGraduateThreshold(opts.GraduateThreshold),
		catalog.WithLogger(log),
	).Load(catalogRecords)
	instructors := roster.NewLoader(
		roster.WithSubject(opts.Subject),
		roster.WithLogger(log),
	).Load(instructorRecords)
	joined := join.Join(courses, instructors)

	if opts.CoursesPath != "" {
		if err := (snapshot.CourseFile{Path: opts.CoursesPath}).Save(ctx, joined); err != nil {
			return Result{}, fmt.Errorf("write courses: %w", err)
		}
	}
	if opts.InstructorRecordsPath != "" {
		if err := snapshot.WriteJSON(opts.InstructorRecordsPath, opts.Builder.InstructorRecords(instructors)); err != nil {
			return Result{}, fmt.Errorf("write instructor records: %w", err)
		}
	}
	if opts.BoltPath != "" {
		if err := saveBolt(ctx, opts.BoltPath, joined); err != nil {
			return Result{}, err
		}
	}

	stats := Stats{
		CatalogRecords:    len(catalogRecords),
		InstructorRecords: len(instructorRecords),
		Courses:           len(joined),
		Instructors:       len(instructors),
		Elapsed:           time.Since(start),
	}
	for _, c := range joined {
		if len(c.Professors) > 0 {
			stats.CoursesWithInstructors++
		}
	}
	log.Info().
		Int("catalog_records", stats.CatalogRecords).
		Int("courses", stats.Courses).
		Int("instructors", stats.Instructors).
		Int("courses_with_instructors", stats.CoursesWithInstructors).
		Dur("elapsed", stats.Elapsed).
		Msg("pipeline finished")
	return Result{Courses: joined, Instructors: instructors, Stats: stats}, nil
}

func saveBolt(ctx context.Context, path string, courses []domain.Course) error {
	store, err := snapshot.OpenBolt(path)
	if err != nil {
		return fmt.Errorf("open bolt snapshot: %w", err)
	}
	defer store.Close()
	if err := store.Save(ctx, courses); err != nil {
		return fmt.Errorf("write bolt snapshot: %w", err)
	}
	return nil
}
