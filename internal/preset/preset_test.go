package preset

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mahmoudd2003/list/internal/apperr"
)

func TestDefault_Cities(t *testing.T) {
	r, err := Default()
	require.NoError(t, err)

	keys := make([]string, 0)
	for _, c := range r.Cities() {
		keys = append(keys, c.Key)
	}
	assert.Equal(t, []string{"abudhabi", "dammam", "dubai", "jeddah", "riyadh", "sharjah"}, keys)

	riyadh, err := r.City("riyadh")
	require.NoError(t, err)
	assert.InDelta(t, 24.7136, riyadh.Latitude, 0.0001)
	assert.InDelta(t, 46.6753, riyadh.Longitude, 0.0001)
	assert.InDelta(t, 30000, riyadh.RadiusMeters, 0.1)
	assert.Equal(t, "SA", riyadh.RegionCode)
	assert.Equal(t, "الرياض", riyadh.Name)

	sharjah, err := r.City("sharjah")
	require.NoError(t, err)
	assert.InDelta(t, 25000, sharjah.RadiusMeters, 0.1)
	assert.Equal(t, "AE", sharjah.RegionCode)
}

func TestCity_CaseInsensitive(t *testing.T) {
	r, err := Default()
	require.NoError(t, err)

	c, err := r.City("  Dubai ")
	require.NoError(t, err)
	assert.Equal(t, "dubai", c.Key)
}

func TestCity_Unknown(t *testing.T) {
	r, err := Default()
	require.NoError(t, err)

	_, err = r.City("cairo")
	require.Error(t, err)
	assert.True(t, apperr.IsConfig(err))
	assert.Contains(t, err.Error(), "cairo")
}

func TestBuildQuery(t *testing.T) {
	r, err := Default()
	require.NoError(t, err)

	q, err := r.BuildQuery("burger", "riyadh")
	require.NoError(t, err)
	assert.Equal(t, "أفضل مطاعم برجر في الرياض", q)

	_, err = r.BuildQuery("tacos", "riyadh")
	assert.True(t, apperr.IsConfig(err))

	_, err = r.BuildQuery("burger", "paris")
	assert.True(t, apperr.IsConfig(err))
}

func TestParse_Invalid(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"empty city key", "cities:\n  - key: ''\n    radius: 10\n    region_code: SA\n"},
		{"missing radius", "cities:\n  - key: x\n    region_code: SA\n"},
		{"bad region", "cities:\n  - key: x\n    radius: 10\n    region_code: SAU\n"},
		{"empty category key", "categories:\n  - key: ' '\n    label: x\n"},
		{"not yaml", "cities: [unclosed"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			assert.Error(t, err)
		})
	}
}

func TestLoad_File(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "presets.yaml")
	data := "cities:\n  - key: Kuwait\n    lat: 29.37\n    lng: 47.97\n    radius: 20000\n    region_code: kw\n    name: الكويت\ncategories:\n  - key: grill\n    label: مشويات\n"
	require.NoError(t, os.WriteFile(path, []byte(data), 0o600))

	r, err := Load(path)
	require.NoError(t, err)

	c, err := r.City("kuwait")
	require.NoError(t, err)
	assert.Equal(t, "KW", c.RegionCode)

	q, err := r.BuildQuery("grill", "kuwait")
	require.NoError(t, err)
	assert.Equal(t, "أفضل مطاعم مشويات في الكويت", q)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLoad_EmptyPathUsesDefaults(t *testing.T) {
	r, err := Load("")
	require.NoError(t, err)
	assert.Len(t, r.Categories(), 10)
}
