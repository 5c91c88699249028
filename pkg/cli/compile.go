package cli

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/nimburion/searchcriteria/pkg/config"
	"github.com/nimburion/searchcriteria/pkg/criteria"
	"github.com/nimburion/searchcriteria/pkg/criteria/dsl"
	"github.com/nimburion/searchcriteria/pkg/criteria/instruction"
	"github.com/nimburion/searchcriteria/pkg/search/query"
)

// specFlags are the paging and ordering flags of query-building commands.
type specFlags struct {
	limit       int
	offset      int
	sortField   string
	sortOrder   string
	near        string
	searchAfter []string
}

func (f *specFlags) register(fs *pflag.FlagSet) {
	fs.IntVar(&f.limit, "limit", 0, "page size (0 uses query.default_limit)")
	fs.IntVar(&f.offset, "offset", 0, "number of hits to skip")
	fs.StringVar(&f.sortField, "sort-field", "", "field to sort by (defaults to the id field)")
	fs.StringVar(&f.sortOrder, "sort-order", string(query.Asc), "sort direction: asc or desc")
	fs.StringVar(&f.near, "near", "", "sort by distance from lat,lon on --sort-field")
	fs.StringSliceVar(&f.searchAfter, "search-after", nil, "sort values of the last hit of the previous page")
}

func (f *specFlags) specification(c criteria.Criteria, defaultLimit int) (query.Specification, error) {
	limit := f.limit
	if limit == 0 {
		limit = defaultLimit
	}
	spec := query.NewSpecification(c, f.offset, limit)

	switch {
	case f.near != "":
		if f.sortField == "" {
			return spec, fmt.Errorf("--near requires --sort-field naming a geo field")
		}
		lat, lon, err := parseLatLon(f.near)
		if err != nil {
			return spec, err
		}
		spec = spec.WithSort(query.SortByDistance(f.sortField, lat, lon))
	case f.sortField != "":
		direction, err := query.ParseDirection(f.sortOrder)
		if err != nil {
			return spec, err
		}
		spec = spec.WithSort(query.SortByField(f.sortField, direction))
	}

	if len(f.searchAfter) > 0 {
		spec = spec.WithSearchAfter(parseValues(f.searchAfter)...)
	}
	return spec, nil
}

func parseLatLon(raw string) (float64, float64, error) {
	parts := strings.Split(raw, ",")
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("invalid coordinates %q, expected lat,lon", raw)
	}
	lat, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid latitude %q: %w", parts[0], err)
	}
	lon, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid longitude %q: %w", parts[1], err)
	}
	if !(criteria.GeoPoint{Lat: lat, Lon: lon}).Valid() {
		return 0, 0, fmt.Errorf("coordinates %q out of range", raw)
	}
	return lat, lon, nil
}

// resolverFor builds the resolver for query.fields. Keys are matched ignoring
// case because viper lowercases them.
func resolverFor(cfg config.QueryConfig) *dsl.MapResolver {
	opts := []dsl.MapResolverOption{dsl.WithCaseInsensitiveFields()}
	if !cfg.StrictFields {
		opts = append(opts, dsl.WithPassthrough())
	}
	return dsl.NewMapResolver(cfg.Fields, opts...)
}

func assembleOptions(cfg config.QueryConfig) []query.Option {
	return []query.Option{
		query.WithIDField(cfg.IDField),
		query.WithTypeName(cfg.TypeName),
		query.WithAggregationName(cfg.AggregationName),
	}
}

type compileResult struct {
	Instruction string       `json:"instruction"`
	Mode        string       `json:"mode"`
	Fields      []string     `json:"fields"`
	Criteria    string       `json:"criteria"`
	Query       dsl.Document `json:"query"`
}

func newCompileCommand(env *environment) *cobra.Command {
	var flags specFlags
	cmd := &cobra.Command{
		Use:   "compile <instruction> [values...]",
		Short: "Compile a finder name such as getByNameAndCity into a search request",
		Example: `  searchctl compile getByNameAndCity Paris FR
  searchctl compile getOneByEmail ada@example.com --output yaml`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, err := env.loadConfig()
			if err != nil {
				return err
			}
			ins, err := instruction.Parse(args[0])
			if err != nil {
				return err
			}
			c, err := ins.Compile(parseValues(args[1:]))
			if err != nil {
				return err
			}
			fields, err := ins.Fields()
			if err != nil {
				return err
			}

			defaultLimit := cfg.Query.DefaultLimit
			if ins.Mode == instruction.FindOne {
				defaultLimit = 2
			}
			spec, err := flags.specification(c, defaultLimit)
			if err != nil {
				return err
			}
			body, err := query.Assemble(spec, resolverFor(cfg.Query), assembleOptions(cfg.Query)...)
			if err != nil {
				return err
			}
			return env.write(cmd, compileResult{
				Instruction: args[0],
				Mode:        ins.Mode.String(),
				Fields:      fields,
				Criteria:    c.String(),
				Query:       body,
			})
		},
	}
	flags.register(cmd.Flags())
	return cmd
}

type translateResult struct {
	Criteria string       `json:"criteria"`
	Nodes    int          `json:"nodes"`
	Filter   dsl.Document `json:"filter"`
	Query    dsl.Document `json:"query,omitempty"`
}

func newTranslateCommand(env *environment) *cobra.Command {
	var (
		file     string
		assemble bool
		flags    specFlags
	)
	cmd := &cobra.Command{
		Use:   "translate",
		Short: "Translate a JSON criteria document into query DSL",
		Example: `  searchctl translate --file criteria.json
  echo '{"op":"exists","field":"email"}' | searchctl translate --file -`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, err := env.loadConfig()
			if err != nil {
				return err
			}
			data, err := readInput(cmd.InOrStdin(), file)
			if err != nil {
				return err
			}
			c, err := criteria.Unmarshal(data)
			if err != nil {
				return err
			}
			resolver := resolverFor(cfg.Query)
			filter, err := dsl.Translate(c, resolver)
			if err != nil {
				return err
			}
			result := translateResult{Criteria: c.String(), Nodes: criteria.Count(c), Filter: filter}
			if assemble {
				spec, err := flags.specification(c, cfg.Query.DefaultLimit)
				if err != nil {
					return err
				}
				if result.Query, err = query.Assemble(spec, resolver, assembleOptions(cfg.Query)...); err != nil {
					return err
				}
			}
			return env.write(cmd, result)
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "criteria JSON file, - for stdin")
	cmd.Flags().BoolVar(&assemble, "assemble", false, "also print the full search request")
	flags.register(cmd.Flags())
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

func readInput(stdin io.Reader, path string) ([]byte, error) {
	if path == "-" {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return nil, fmt.Errorf("read stdin: %w", err)
		}
		return data, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return data, nil
}
