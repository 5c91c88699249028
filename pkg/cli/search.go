package cli

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/nimburion/searchcriteria/pkg/criteria/dsl"
	"github.com/nimburion/searchcriteria/pkg/criteria/instruction"
	"github.com/nimburion/searchcriteria/pkg/search/query"
)

type searchResult struct {
	Index    string           `json:"index"`
	Criteria string           `json:"criteria"`
	Count    int              `json:"count"`
	Hits     []map[string]any `json:"hits"`
}

func newSearchCommand(env *environment) *cobra.Command {
	var flags specFlags
	cmd := &cobra.Command{
		Use:   "search <index> <instruction> [values...]",
		Short: "Run a finder against an index and print the matching documents",
		Example: `  searchctl search places getByCityAndCountry Paris FR --sort-field rating --sort-order desc
  searchctl search users getOneByEmail ada@example.com`,
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ins, err := instruction.Parse(args[1])
			if err != nil {
				return err
			}
			c, err := ins.Compile(parseValues(args[2:]))
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			b, err := env.openBackend(ctx, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer b.Close(ctx)

			svc, err := b.documentService(args[0])
			if err != nil {
				return err
			}
			spec, err := flags.specification(c, 0)
			if err != nil {
				return err
			}

			var hits []map[string]any
			if ins.Mode == instruction.FindOne {
				doc, err := svc.FindOne(ctx, spec)
				if err != nil {
					return err
				}
				hits = []map[string]any{doc}
			} else if hits, err = svc.FindMany(ctx, spec); err != nil {
				return err
			}
			return env.write(cmd, searchResult{Index: args[0], Criteria: c.String(), Count: len(hits), Hits: hits})
		},
	}
	flags.register(cmd.Flags())
	return cmd
}

type aggregateResult struct {
	Index       string          `json:"index"`
	Criteria    string          `json:"criteria"`
	Aggregation json.RawMessage `json:"aggregation"`
}

func newAggregateCommand(env *environment) *cobra.Command {
	var (
		aggType string
		field   string
		size    int
		body    string
		mode    string
	)
	cmd := &cobra.Command{
		Use:   "aggregate <index> <instruction> [values...]",
		Short: "Aggregate the documents matched by a finder",
		Example: `  searchctl aggregate places getByCountry FR --type terms --field city --size 5
  searchctl aggregate places getByCountry FR --mode direct --body '{"avg_rating":{"avg":{"field":"rating"}}}'`,
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ins, err := instruction.Parse(args[1])
			if err != nil {
				return err
			}
			c, err := ins.Compile(parseValues(args[2:]))
			if err != nil {
				return err
			}
			agg, err := buildAggregation(mode, aggType, field, size, body)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			b, err := env.openBackend(ctx, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer b.Close(ctx)

			svc, err := b.documentService(args[0])
			if err != nil {
				return err
			}
			node, err := svc.Aggregate(ctx, c, agg)
			if err != nil {
				return err
			}
			return env.write(cmd, aggregateResult{Index: args[0], Criteria: c.String(), Aggregation: node})
		},
	}
	cmd.Flags().StringVar(&mode, "mode", "named", "aggregation mode: named, passthrough or direct")
	cmd.Flags().StringVar(&aggType, "type", "terms", "aggregation type for named mode")
	cmd.Flags().StringVar(&field, "field", "", "aggregated field for named mode")
	cmd.Flags().IntVar(&size, "size", 0, "bucket count for named mode (0 omits it)")
	cmd.Flags().StringVar(&body, "body", "", "aggregation body JSON for passthrough and direct modes")
	return cmd
}

func buildAggregation(mode, aggType, field string, size int, body string) (*query.Aggregation, error) {
	switch strings.ToLower(strings.TrimSpace(mode)) {
	case "", "named":
		if field == "" {
			return nil, fmt.Errorf("--field is required for named aggregations")
		}
		return query.NamedAggregation(aggType, field, size), nil
	case "passthrough", "direct":
		if strings.TrimSpace(body) == "" {
			return nil, fmt.Errorf("--body is required for %s aggregations", mode)
		}
		var doc dsl.Document
		if err := json.Unmarshal([]byte(body), &doc); err != nil {
			return nil, fmt.Errorf("invalid --body: %w", err)
		}
		if strings.EqualFold(mode, "direct") {
			return query.DirectAggregation(doc), nil
		}
		return query.PassThroughAggregation(doc), nil
	default:
		return nil, fmt.Errorf("unsupported aggregation mode %q (supported: named, passthrough, direct)", mode)
	}
}
