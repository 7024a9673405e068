package urlstate_test

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stac-explorer/internal/common"
	"stac-explorer/internal/query"
	"stac-explorer/internal/urlstate"
)

func TestEncodeOmitsDefaults(t *testing.T) {
	t.Run("empty state encodes to empty string", func(t *testing.T) {
		assert.Equal(t, "", urlstate.Encode(query.Default()))
	})

	t.Run("default cloud cover never appears", func(t *testing.T) {
		state := query.Default()
		state.Collection = "sentinel-2-l2a"

		values, err := url.ParseQuery(urlstate.Encode(state))
		require.NoError(t, err)
		assert.Equal(t, "sentinel-2-l2a", values.Get("c"))
		assert.NotContains(t, values, "cc")
		assert.NotContains(t, values, "dt")
	})

	t.Run("anytime date type omitted", func(t *testing.T) {
		state := query.Default()
		state.DateType = query.DateTypeAnytime
		assert.Equal(t, "", urlstate.Encode(state))
	})
}

func TestRoundTrip(t *testing.T) {
	box := common.BoundingBox{West: -122.5, South: 37.2, East: -121.9, North: 37.9}

	states := map[string]query.State{
		"collection only": func() query.State {
			s := query.Default()
			s.Collection = "sentinel-2-l2a"
			return s
		}(),
		"all facets": {
			Collection:       "landsat-c2-l2",
			CollectionSource: "planetary_computer",
			LocationBbox:     &box,
			LocationName:     "San Francisco Bay",
			DateType:         query.DateTypeCustom,
			DateStart:        "2024-01-01",
			DateEnd:          "2024-01-31",
			CloudCover:       45,
		},
		"preset date type": {
			DateType:   "last-30-days",
			CloudCover: query.DefaultCloudCover,
		},
		"zero cloud cover": {
			DateType:   query.DateTypeAnytime,
			CloudCover: 0,
		},
	}

	for name, state := range states {
		t.Run(name, func(t *testing.T) {
			decoded := urlstate.Decode(urlstate.Encode(state))
			assert.True(t, decoded.Equal(state), "decode(encode(s)) != s:\nwant %+v\ngot  %+v", state, decoded)
		})
	}
}

func TestDecodePartial(t *testing.T) {
	t.Run("malformed bbox dropped, other facets kept", func(t *testing.T) {
		state := urlstate.Decode("c=sentinel-2&lb=bad,data&dt=custom")
		assert.Equal(t, "sentinel-2", state.Collection)
		assert.Nil(t, state.LocationBbox)
		assert.Equal(t, query.DateTypeCustom, state.DateType)
	})

	t.Run("unknown keys ignored", func(t *testing.T) {
		state := urlstate.Decode("c=sentinel-2&zoom=12&theme=dark")
		assert.Equal(t, "sentinel-2", state.Collection)
		assert.True(t, state.Equal(func() query.State {
			s := query.Default()
			s.Collection = "sentinel-2"
			return s
		}()))
	})

	t.Run("invalid date dropped", func(t *testing.T) {
		state := urlstate.Decode("ds=not-a-date&de=2024-02-01")
		assert.Empty(t, state.DateStart)
		assert.Equal(t, "2024-02-01", state.DateEnd)
	})

	t.Run("out of range cloud cover dropped", func(t *testing.T) {
		state := urlstate.Decode("cc=250")
		assert.Equal(t, query.DefaultCloudCover, state.CloudCover)
	})

	t.Run("inverted bbox dropped", func(t *testing.T) {
		state := urlstate.Decode("lb=10,20,5,30")
		assert.Nil(t, state.LocationBbox)
	})

	t.Run("garbage query yields defaults", func(t *testing.T) {
		state := urlstate.Decode("%%%zz;;;=")
		assert.True(t, state.IsDefault())
	})
}

func TestDecodeBbox(t *testing.T) {
	state := urlstate.Decode("lb=-122.5,37.2,-121.9,37.9&ln=Bay+Area")
	require.NotNil(t, state.LocationBbox)
	assert.InDelta(t, -122.5, state.LocationBbox.West, 1e-9)
	assert.InDelta(t, 37.9, state.LocationBbox.North, 1e-9)
	assert.Equal(t, "Bay Area", state.LocationName)
}
