package dsl

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nimburion/searchcriteria/pkg/criteria"
)

func translateJSON(t *testing.T, c criteria.Criteria, r FieldResolver) string {
	t.Helper()
	doc, err := Translate(c, r)
	require.NoError(t, err)
	b, err := doc.JSON()
	require.NoError(t, err)
	return string(b)
}

func TestTranslateLeaves(t *testing.T) {
	r := IdentityResolver()
	tests := []struct {
		name string
		node criteria.Criteria
		want string
	}{
		{"equal", criteria.Equal("name", "Paris"), `{"term":{"name":"Paris"}}`},
		{"not equal", criteria.NotEqual("name", "Paris"), `{"bool":{"must_not":{"term":{"name":"Paris"}}}}`},
		{"greater than", criteria.GreaterThan("age", 18), `{"range":{"age":{"gt":18}}}`},
		{"greater or equal", criteria.GreaterOrEqual("age", 18), `{"range":{"age":{"gte":18}}}`},
		{"less than", criteria.LessThan("age", 65), `{"range":{"age":{"lt":65}}}`},
		{"less or equal", criteria.LessOrEqual("age", 65), `{"range":{"age":{"lte":65}}}`},
		{"between", criteria.Between("price", 10, 20), `{"range":{"price":{"gt":10,"lt":20}}}`},
		{"exists", criteria.Exists("email"), `{"exists":{"field":"email"}}`},
		{
			"within distance",
			criteria.WithinDistance("location", 48.8566, 2.3522, 12.5),
			`{"geo_distance":{"distance":"12.5km","location":{"lat":48.8566,"lon":2.3522}}}`,
		},
		{
			"bounding box",
			criteria.WithinBoundingBox("location",
				criteria.GeoPoint{Lat: 49, Lon: 2}, criteria.GeoPoint{Lat: 48, Lon: 3}),
			`{"geo_bounding_box":{"location":{"top_left":{"lat":49,"lon":2},"bottom_right":{"lat":48,"lon":3}}}}`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.JSONEq(t, tt.want, translateJSON(t, tt.node, r))
		})
	}
}

func TestTranslateCombinators(t *testing.T) {
	r := IdentityResolver()
	a := criteria.Equal("name", "Paris")
	b := criteria.Equal("city", "FR")

	assert.JSONEq(t,
		`{"bool":{"must":[{"term":{"name":"Paris"}},{"term":{"city":"FR"}}]}}`,
		translateJSON(t, criteria.And(a, b), r))
	assert.JSONEq(t,
		`{"bool":{"should":[{"term":{"name":"Paris"}},{"term":{"city":"FR"}}],"minimum_should_match":1}}`,
		translateJSON(t, criteria.Or(a, b), r))
	assert.JSONEq(t,
		`{"bool":{"must_not":{"term":{"name":"Paris"}}}}`,
		translateJSON(t, criteria.Not(a), r))
}

func TestTranslatePreservesChildOrder(t *testing.T) {
	r := IdentityResolver()
	a := criteria.Equal("name", "Paris")
	b := criteria.Equal("city", "FR")

	ab := translateJSON(t, criteria.And(a, b), r)
	ba := translateJSON(t, criteria.And(b, a), r)
	assert.NotEqual(t, ab, ba)
}

func TestTranslateNestedFoldedTree(t *testing.T) {
	r := IdentityResolver()
	c := criteria.And(
		criteria.Equal("a", 1),
		criteria.Or(criteria.Exists("b"), criteria.Not(criteria.Exists("c"))),
		criteria.LessThan("d", 2),
	)
	want := `{"bool":{"must":[
		{"bool":{"must":[
			{"term":{"a":1}},
			{"bool":{"should":[{"exists":{"field":"b"}},{"bool":{"must_not":{"exists":{"field":"c"}}}}],"minimum_should_match":1}}
		]}},
		{"range":{"d":{"lt":2}}}
	]}}`
	assert.JSONEq(t, want, translateJSON(t, c, r))
}

func TestTranslateSharedSubtreeTranslatedOnce(t *testing.T) {
	calls := 0
	r := FieldResolverFunc(func(field string) (string, error) {
		calls++
		return field, nil
	})
	shared := criteria.Equal("name", "Paris")
	c := criteria.Or(criteria.And(shared, criteria.Exists("x")), shared)

	doc, err := Translate(c, r)
	require.NoError(t, err)
	assert.Equal(t, 2, calls)

	b, err := doc.JSON()
	require.NoError(t, err)
	assert.JSONEq(t, `{"bool":{"should":[
		{"bool":{"must":[{"term":{"name":"Paris"}},{"exists":{"field":"x"}}]}},
		{"term":{"name":"Paris"}}
	],"minimum_should_match":1}}`, string(b))
}

func TestTranslateResolvesColumns(t *testing.T) {
	r := NewMapResolver(map[string]string{"name": "profile.name", "city": "address.city"})

	got := translateJSON(t, criteria.And(criteria.Equal("name", "Paris"), criteria.Exists("city")), r)
	assert.JSONEq(t,
		`{"bool":{"must":[{"term":{"profile.name":"Paris"}},{"exists":{"field":"address.city"}}]}}`, got)
}

func TestTranslateUnknownField(t *testing.T) {
	r := NewMapResolver(map[string]string{"name": "name"})

	_, err := Translate(criteria.And(criteria.Equal("name", "Paris"), criteria.Equal("zip", "75001")), r)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnknownField))

	var unknown *UnknownFieldError
	require.True(t, errors.As(err, &unknown))
	assert.Equal(t, "zip", unknown.Field)
}

func TestTranslateRejectsEmptyColumn(t *testing.T) {
	r := FieldResolverFunc(func(string) (string, error) { return "", nil })

	_, err := Translate(criteria.Exists("a"), r)
	assert.ErrorIs(t, err, ErrUnknownField)
}

func TestTranslateRejectsNilChild(t *testing.T) {
	_, err := Translate(criteria.And(criteria.Exists("a"), nil), IdentityResolver())
	assert.ErrorIs(t, err, criteria.ErrInvalidCriteria)
}

func TestTranslateDoesNotMutateTree(t *testing.T) {
	c := criteria.Or(criteria.Equal("a", 1), criteria.Between("b", 1, 2))
	before := c.String()
	key := c.Key()

	_, err := Translate(c, IdentityResolver())
	require.NoError(t, err)
	assert.Equal(t, before, c.String())
	assert.Equal(t, key, c.Key())
}

func TestMapResolver(t *testing.T) {
	columns := map[string]string{"name": "n"}
	strict := NewMapResolver(columns)
	columns["name"] = "changed"

	col, err := strict.ColumnFor("name")
	require.NoError(t, err)
	assert.Equal(t, "n", col)

	_, err = strict.ColumnFor("other")
	assert.ErrorIs(t, err, ErrUnknownField)

	loose := NewMapResolver(map[string]string{"name": "n"}, WithPassthrough())
	col, err = loose.ColumnFor("other")
	require.NoError(t, err)
	assert.Equal(t, "other", col)

	_, err = loose.ColumnFor("")
	assert.ErrorIs(t, err, ErrUnknownField)
}

func TestMapResolverCaseInsensitive(t *testing.T) {
	r := NewMapResolver(map[string]string{"createdat": "meta.created_at"}, WithCaseInsensitiveFields())

	col, err := r.ColumnFor("createdAt")
	require.NoError(t, err)
	assert.Equal(t, "meta.created_at", col)

	_, err = NewMapResolver(map[string]string{"createdat": "x"}).ColumnFor("createdAt")
	assert.ErrorIs(t, err, ErrUnknownField)

	loose := NewMapResolver(nil, WithCaseInsensitiveFields(), WithPassthrough())
	col, err = loose.ColumnFor("updatedAt")
	require.NoError(t, err)
	assert.Equal(t, "updatedAt", col, "passthrough keeps the original case")
}

func TestKilometers(t *testing.T) {
	assert.Equal(t, "10km", Kilometers(10))
	assert.Equal(t, "0.5km", Kilometers(0.5))
}
