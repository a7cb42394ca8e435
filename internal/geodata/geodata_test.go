package geodata

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"religion-map/internal/religion"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testTopology = `{
  "type": "Topology",
  "transform": {"scale": [1, 1], "translate": [0, 0]},
  "objects": {
    "countries": {
      "type": "GeometryCollection",
      "geometries": [
        {"type": "Polygon", "id": "004", "properties": {"name": "Alpha"}, "arcs": [[0, 1]]},
        {"type": "MultiPolygon", "id": 8, "properties": {"name": "Beta"}, "arcs": [[[-2, -1]]]},
        {"type": null, "id": "-99", "properties": {"name": "Nowhere"}}
      ]
    },
    "land": {"type": "GeometryCollection", "geometries": []}
  },
  "arcs": [
    [[0, 0], [10, 0], [0, 10]],
    [[10, 10], [-10, 0], [0, -10]]
  ]
}`

func TestDecodeTopology(t *testing.T) {
	fs, err := Decode([]byte(testTopology), "")
	require.NoError(t, err)
	require.Len(t, fs, 2)

	assert.Equal(t, "004", fs[0].ID)
	assert.Equal(t, "Alpha", fs[0].Name)
	poly, ok := fs[0].Geometry.(orb.Polygon)
	require.True(t, ok)
	assert.Equal(t, orb.Ring{{0, 0}, {10, 0}, {10, 10}, {0, 10}, {0, 0}}, poly[0])

	assert.Equal(t, "8", fs[1].ID)
	mp, ok := fs[1].Geometry.(orb.MultiPolygon)
	require.True(t, ok)
	assert.Equal(t, orb.Ring{{0, 0}, {0, 10}, {10, 10}, {10, 0}, {0, 0}}, mp[0][0])
}

func TestDecodeTopologyTransform(t *testing.T) {
	topo := `{"type":"Topology","transform":{"scale":[0.5,2],"translate":[-180,-90]},
	  "objects":{"countries":{"type":"Polygon","properties":{"name":"Gamma"},"arcs":[[0]]}},
	  "arcs":[[[0,0],[4,0],[0,3],[-4,-3]]]}`
	fs, err := DecodeTopology([]byte(topo), "countries")
	require.NoError(t, err)
	require.Len(t, fs, 1)
	poly := fs[0].Geometry.(orb.Polygon)
	assert.Equal(t, orb.Ring{{-180, -90}, {-178, -90}, {-178, -84}, {-180, -90}}, poly[0])
	assert.Equal(t, "f0", fs[0].ID)
}

func TestDecodeTopologyUnquantized(t *testing.T) {
	topo := `{"type":"Topology","objects":{"countries":{"type":"GeometryCollection","geometries":[
	  {"type":"Polygon","id":"010","properties":{"name":"Delta"},"arcs":[[0,-2]]}]}},
	  "arcs":[[[1.5,2.5],[3.5,2.5],[3.5,4.5]],[[1.5,2.5],[1.5,4.5],[3.5,4.5]]]}`
	fs, err := DecodeTopology([]byte(topo), "countries")
	require.NoError(t, err)
	require.Len(t, fs, 1)
	poly := fs[0].Geometry.(orb.Polygon)
	assert.Equal(t, orb.Ring{{1.5, 2.5}, {3.5, 2.5}, {3.5, 4.5}, {1.5, 4.5}, {1.5, 2.5}}, poly[0])
}

func TestDecodeTopologyBadArcIndex(t *testing.T) {
	topo := `{"type":"Topology","objects":{"countries":{"type":"Polygon","arcs":[[3]]}},"arcs":[[[0,0],[1,1]]]}`
	_, err := DecodeTopology([]byte(topo), "countries")
	assert.ErrorContains(t, err, "out of range")
}

func TestDecodeTopologyMissingObject(t *testing.T) {
	_, err := DecodeTopology([]byte(testTopology), "states")
	assert.ErrorIs(t, err, ErrNoObject)
}

func TestDecodeGeoJSON(t *testing.T) {
	gj := `{"type":"FeatureCollection","features":[
	  {"type":"Feature","id":"A","properties":{"name":"Alpha"},"geometry":{"type":"Polygon","coordinates":[[[0,0],[1,0],[1,1],[0,0]]]}},
	  {"type":"Feature","properties":{"NAME":"Beta"},"geometry":{"type":"Point","coordinates":[3,3]}},
	  {"type":"Feature","id":"A","properties":{"ADMIN":"Gamma"},"geometry":{"type":"MultiPolygon","coordinates":[[[[5,5],[6,5],[6,6],[5,5]]]]}}
	]}`
	fs, err := Decode([]byte(gj), "")
	require.NoError(t, err)
	require.Len(t, fs, 2)
	assert.Equal(t, "A", fs[0].ID)
	assert.Equal(t, "Alpha", fs[0].Name)
	assert.Equal(t, "A-2", fs[1].ID)
	assert.Equal(t, "Gamma", fs[1].Name)
}

func TestLoadFromFile(t *testing.T) {
	p := filepath.Join(t.TempDir(), "50m.json")
	require.NoError(t, os.WriteFile(p, []byte(testTopology), 0o644))
	fs, err := Load(context.Background(), nil, p, DefaultObject)
	require.NoError(t, err)
	assert.Len(t, fs, 2)

	_, err = Load(context.Background(), nil, filepath.Join(t.TempDir(), "missing.json"), DefaultObject)
	assert.Error(t, err)
}

func TestJoin(t *testing.T) {
	fs, err := Decode([]byte(testTopology), "")
	require.NoError(t, err)
	idx, _ := religion.IndexRows([]religion.DatasetRow{{
		Name: "Alpha",
		Fields: map[religion.Category]string{
			religion.Christianity: "60", religion.Islam: "10", religion.Buddhism: "0",
			religion.Hinduism: "0", religion.Nondenominational: "20", religion.Other: "10",
		},
	}})
	joined, unmatched := Join(fs, idx)
	require.Len(t, joined, 2)
	v, ok := joined[0].Profile.Get(religion.Christianity)
	require.True(t, ok)
	assert.Equal(t, 60.0, v)
	assert.True(t, joined[1].Profile.Empty())
	assert.Equal(t, []string{"Beta"}, unmatched)
	assert.True(t, fs[0].Profile.Empty(), "input slice must stay untouched")
}
