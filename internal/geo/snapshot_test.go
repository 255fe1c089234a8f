package geo

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testSnapshot(t *testing.T) *Snapshot {
	t.Helper()
	ds, err := ParseDataset([]byte(sampleJSON), ".json")
	require.NoError(t, err)
	return NewSnapshot(ds)
}

func TestSnapshot_Listings(t *testing.T) {
	s := testSnapshot(t)
	ctx := context.Background()

	ps, err := s.Provinces(ctx)
	require.NoError(t, err)
	assert.Equal(t, []Record{{"name": "Kigali"}, {"name": "North"}}, ps)

	vs, err := s.Villages(ctx)
	require.NoError(t, err)
	require.Len(t, vs, 2)
	assert.Equal(t, Record{
		"province": "Kigali",
		"district": "Gasabo",
		"sector":   "Remera",
		"cell":     "Nyabisindu",
		"name":     "Amarembo I",
	}, vs[0])
}

func TestSnapshot_EmptyLevelIsNotNil(t *testing.T) {
	ds := &Dataset{Provinces: []ProvinceNode{{Name: "Kigali"}}}
	s := NewSnapshot(ds)

	cells, err := s.Cells(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, cells)
	assert.Empty(t, cells)
}

func TestSnapshot_ScopedCaseInsensitive(t *testing.T) {
	s := testSnapshot(t)
	ctx := context.Background()

	a, err := s.SectorsOf(ctx, "kigali", "gasabo")
	require.NoError(t, err)
	b, err := s.SectorsOf(ctx, "KIGALI", "GaSaBo")
	require.NoError(t, err)
	assert.Equal(t, a, b)
	require.Len(t, a, 1)
	assert.Equal(t, "Remera", a[0]["name"])

	vs, err := s.VillagesOf(ctx, "Kigali", "Gasabo", "Remera", "nyabisindu")
	require.NoError(t, err)
	assert.Len(t, vs, 2)
}

func TestSnapshot_KnownParentWithoutChildren(t *testing.T) {
	s := testSnapshot(t)

	ds, err := s.DistrictsOf(context.Background(), "North")
	require.NoError(t, err)
	assert.NotNil(t, ds)
	assert.Empty(t, ds)
}

func TestSnapshot_UnknownAncestor(t *testing.T) {
	s := testSnapshot(t)
	ctx := context.Background()

	tests := []struct {
		name string
		call func() ([]Record, error)
		want string
	}{
		{"province", func() ([]Record, error) { return s.DistrictsOf(ctx, "Atlantis") }, `province "Atlantis" not found`},
		{"district", func() ([]Record, error) { return s.SectorsOf(ctx, "Kigali", "Musanze") }, `district "Musanze" not found in province "Kigali"`},
		{"sector under missing district", func() ([]Record, error) { return s.CellsOf(ctx, "Kigali", "Nowhere", "Remera") }, `district "Nowhere" not found in province "Kigali"`},
		{"cell", func() ([]Record, error) { return s.VillagesOf(ctx, "Kigali", "Gasabo", "Remera", "Rukiri II") }, `cell "Rukiri II" not found in sector "Remera"`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rs, err := tt.call()
			require.Error(t, err)
			assert.Nil(t, rs)
			assert.True(t, errors.Is(err, ErrNotFound))
			assert.Equal(t, tt.want, err.Error())
		})
	}
}

func TestLevel(t *testing.T) {
	assert.Equal(t, "sector", Sector.String())
	assert.Equal(t, "villages", Village.Plural())
	assert.Equal(t, []string{"province", "district"}, Sector.Ancestors())
	assert.Empty(t, Province.Ancestors())
	assert.Equal(t, "unknown", Level(9).String())
}

func TestNewRecord(t *testing.T) {
	r := NewRecord(Sector, "Remera", "Kigali", "Gasabo")
	assert.Equal(t, Record{"province": "Kigali", "district": "Gasabo", "name": "Remera"}, r)
}
