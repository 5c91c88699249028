package search_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/nimburion/searchcriteria/pkg/criteria"
	"github.com/nimburion/searchcriteria/pkg/observability/logger"
	"github.com/nimburion/searchcriteria/pkg/search"
	"github.com/nimburion/searchcriteria/pkg/search/query"
	"github.com/nimburion/searchcriteria/pkg/store/opensearch"
	"github.com/nimburion/searchcriteria/pkg/testutil"
)

type venue struct {
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	City     string   `json:"city"`
	Capacity int      `json:"capacity"`
	Location geoPoint `json:"location"`
}

type geoPoint struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

func startOpenSearch(t *testing.T) string {
	t.Helper()
	ctx := context.Background()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "opensearchproject/opensearch:2.11.1",
			ExposedPorts: []string{"9200/tcp"},
			Env: map[string]string{
				"discovery.type":          "single-node",
				"DISABLE_SECURITY_PLUGIN": "true",
				"OPENSEARCH_JAVA_OPTS":    "-Xms512m -Xmx512m",
			},
			WaitingFor: wait.ForHTTP("/").WithPort("9200/tcp").WithStartupTimeout(3 * time.Minute),
		},
		Started: true,
	})
	require.NoError(t, err, "failed to start opensearch container")
	t.Cleanup(func() {
		if err := testcontainers.TerminateContainer(container); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	})

	endpoint, err := container.PortEndpoint(ctx, "9200/tcp", "http")
	require.NoError(t, err)
	return endpoint
}

func TestServiceAgainstOpenSearch(t *testing.T) {
	testutil.RequireIntegration(t)
	testutil.RequireDocker(t)

	log, err := logger.NewZapLogger(logger.Config{Level: logger.InfoLevel, Format: logger.JSONFormat})
	require.NoError(t, err)

	client, err := opensearch.NewAdapter(opensearch.Config{
		URL:              startOpenSearch(t),
		OperationTimeout: 10 * time.Second,
	}, log)
	require.NoError(t, err)
	defer client.Close()

	mapper, err := search.NewJSONMapper(search.JSONMapperConfig[venue]{
		Index: "venues",
		Type:  "venue",
		ID:    func(v venue) string { return v.ID },
		Definition: map[string]any{
			"mappings": map[string]any{"properties": map[string]any{
				"id":       map[string]any{"type": "keyword"},
				"name":     map[string]any{"type": "keyword"},
				"city":     map[string]any{"type": "keyword"},
				"capacity": map[string]any{"type": "integer"},
				"location": map[string]any{"type": "geo_point"},
			}},
		},
	})
	require.NoError(t, err)

	svc, err := search.NewService[venue](client, mapper, log)
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, svc.CreateIndex(ctx))

	venues := []venue{
		{ID: "1", Name: "Olympia", City: "Paris", Capacity: 2000, Location: geoPoint{48.8702, 2.3283}},
		{ID: "2", Name: "Zenith", City: "Paris", Capacity: 6000, Location: geoPoint{48.8944, 2.3932}},
		{ID: "3", Name: "Fourviere", City: "Lyon", Capacity: 4500, Location: geoPoint{45.7597, 4.8196}},
	}
	for _, v := range venues[:2] {
		require.NoError(t, svc.IndexWithoutRefresh(ctx, v))
	}
	require.NoError(t, svc.Index(ctx, venues[2]))

	t.Run("find by instruction", func(t *testing.T) {
		got, err := svc.FindBy(ctx, "getByCity", "Paris")
		require.NoError(t, err)
		require.Len(t, got, 2)
		assert.Equal(t, "1", got[0].ID)
		assert.Equal(t, "2", got[1].ID)
	})

	t.Run("find one", func(t *testing.T) {
		got, err := svc.FindOneBy(ctx, "getOneByName", "Zenith")
		require.NoError(t, err)
		assert.Equal(t, 6000, got.Capacity)

		_, err = svc.FindOneBy(ctx, "getOneByCity", "Paris")
		assert.ErrorIs(t, err, search.ErrAmbiguousResult)
	})

	t.Run("range and geo", func(t *testing.T) {
		spec := query.NewSpecification(criteria.And(
			criteria.Between("capacity", 1000, 5000),
			criteria.WithinDistance("location", 48.8566, 2.3522, 10),
		), 0, 10)
		got, err := svc.FindMany(ctx, spec)
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, "Olympia", got[0].Name)
	})

	t.Run("sort by distance", func(t *testing.T) {
		spec := query.NewSpecification(criteria.Exists("name"), 0, 10).
			WithSort(query.SortByDistance("location", 45.76, 4.83))
		got, err := svc.FindMany(ctx, spec)
		require.NoError(t, err)
		require.Len(t, got, 3)
		assert.Equal(t, "3", got[0].ID)
	})

	t.Run("aggregate", func(t *testing.T) {
		raw, err := svc.Aggregate(ctx, criteria.Exists("city"), query.NamedAggregation("terms", "city", 10))
		require.NoError(t, err)
		assert.Contains(t, string(raw), `"Paris"`)
	})

	t.Run("delete by criteria", func(t *testing.T) {
		require.NoError(t, svc.DeleteBy(ctx, criteria.Equal("city", "Lyon")))
		got, err := svc.FindMany(ctx, query.NewSpecification(criteria.Exists("id"), 0, 10))
		require.NoError(t, err)
		assert.Len(t, got, 2)
	})
}
