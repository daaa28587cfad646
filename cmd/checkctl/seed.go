package main

import (
	"context"

	"github.com/spf13/cobra"

	"paybatch/internal/core/apperror"
	"paybatch/internal/domain/checkrange"
)

// seedRange is a check book range loaded by the seed command.
type seedRange struct {
	category   checkrange.Category
	priority   int
	start, end int64
}

// defaultRanges are the books in circulation when the system went live.
var defaultRanges = []seedRange{
	{category: checkrange.CategoryDeferred, priority: 1, start: 91181444, end: 91181843},
	{category: checkrange.CategoryCommon, priority: 1, start: 91181244, end: 91181443},
}

const sampleReference = "LABSE0000118"

func newSeedCmd() *cobra.Command {
	var withReference bool
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load the initial check ranges",
		Long: `Registers the initial common and deferred check ranges.
Categories that already have ranges are left untouched, so seed can be re-run.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withSession(cmd, func(ctx context.Context, s *session) error {
				for _, sr := range defaultRanges {
					existing, err := s.svc.Allocator.List(ctx, sr.category, true)
					if err != nil {
						return err
					}
					if len(existing) > 0 {
						cmd.Printf("skip %s: %d ranges already registered\n", sr.category, len(existing))
						continue
					}
					r, err := s.svc.Allocator.CreateRange(ctx, sr.category, sr.priority, sr.start, sr.end)
					if err != nil {
						return err
					}
					cmd.Printf("created %s range %d-%d\n", r.Category, r.Start, r.End)
				}

				if !withReference {
					return nil
				}
				_, err := s.svc.References.Create(ctx, sampleReference, "Sample reference")
				switch {
				case apperror.IsCode(err, apperror.CodeDuplicate):
					cmd.Printf("skip reference %s: already exists\n", sampleReference)
				case err != nil:
					return err
				default:
					cmd.Printf("created reference %s\n", sampleReference)
				}
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&withReference, "with-reference", false, "also create the sample reference "+sampleReference)
	return cmd
}
