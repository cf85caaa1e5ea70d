package registry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domain "github.com/Drayarch/genlayer-intelligent-contracts/internal/entity"
)

func testSeeds() []domain.KeyRecord {
	return []domain.KeyRecord{
		{Service: "weather", Key: "bbe7e79a414f003442cd9662246f7be7", Provider: "OpenWeatherMap", Description: "Get weather data for any city"},
		{Service: "price", Key: "your-coingecko-api-key-here", Provider: "CoinGecko"},
		{Service: "social", Key: "your-twitter-api-key-here", Provider: "Twitter/Web Scraping"},
	}
}

func TestNewRejectsBadSeeds(t *testing.T) {
	_, err := New([]domain.KeyRecord{{Service: "bad id", Key: "x"}})
	require.ErrorIs(t, err, domain.ErrInvalidServiceID)

	_, err = New([]domain.KeyRecord{{Service: "weather"}})
	require.ErrorIs(t, err, domain.ErrEmptyKey)

	_, err = New([]domain.KeyRecord{
		{Service: "weather", Key: "a"},
		{Service: "weather", Key: "b"},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate")
}

func TestGetReturnsConfiguredValue(t *testing.T) {
	reg, err := New(testSeeds())
	require.NoError(t, err)

	rec, err := reg.Get("weather")
	require.NoError(t, err)
	assert.Equal(t, "bbe7e79a414f003442cd9662246f7be7", rec.Key)

	_, err = reg.Get("stocks")
	require.ErrorIs(t, err, domain.ErrServiceNotFound)
}

func TestEmptyIdentifierIsPlainMiss(t *testing.T) {
	reg := MustNew(testSeeds())
	_, err := reg.Get("")
	require.ErrorIs(t, err, domain.ErrServiceNotFound)
	// a miss is a miss: no validation error for the empty string
	assert.NotErrorIs(t, err, domain.ErrInvalidServiceID)
}

func TestGetIsDeterministic(t *testing.T) {
	reg := MustNew(testSeeds())
	for i := 0; i < 3; i++ {
		key, err := reg.Key("weather")
		require.NoError(t, err)
		assert.Equal(t, "bbe7e79a414f003442cd9662246f7be7", key)
	}
}

func TestLookupIsCaseSensitive(t *testing.T) {
	reg := MustNew(testSeeds())
	_, err := reg.Get("Weather")
	require.ErrorIs(t, err, domain.ErrServiceNotFound)
}

func TestServicesSorted(t *testing.T) {
	reg := MustNew(testSeeds())
	assert.Equal(t, []domain.ServiceID{"price", "social", "weather"}, reg.Services())
	assert.Equal(t, 3, reg.Len())
}

func TestInfoOmitsKeyMaterial(t *testing.T) {
	reg := MustNew(testSeeds())

	info, err := reg.Info("weather")
	require.NoError(t, err)
	assert.Equal(t, "OpenWeatherMap", info.Provider)
	assert.Equal(t, 32, info.KeyLength)

	_, err = reg.Info("stocks")
	require.ErrorIs(t, err, domain.ErrServiceNotFound)
}

func TestSeedSliceIsCopied(t *testing.T) {
	seeds := testSeeds()
	reg := MustNew(seeds)

	seeds[0].Key = "mutated-after-construction"

	key, err := reg.Key("weather")
	require.NoError(t, err)
	assert.Equal(t, "bbe7e79a414f003442cd9662246f7be7", key)
}

func TestRegistriesAreIndependent(t *testing.T) {
	a := MustNew([]domain.KeyRecord{{Service: "weather", Key: "key-a"}})
	b := MustNew([]domain.KeyRecord{{Service: "weather", Key: "key-b"}})

	ka, _ := a.Key("weather")
	kb, _ := b.Key("weather")
	assert.Equal(t, "key-a", ka)
	assert.Equal(t, "key-b", kb)
}

func TestDefaults(t *testing.T) {
	reg, err := New(Defaults())
	require.NoError(t, err)
	assert.Equal(t, []domain.ServiceID{"price", "social", "weather"}, reg.Services())

	key, err := reg.Key("weather")
	require.NoError(t, err)
	assert.Equal(t, "bbe7e79a414f003442cd9662246f7be7", key)
}

func TestMustNewPanicsOnBadSeeds(t *testing.T) {
	assert.Panics(t, func() {
		MustNew([]domain.KeyRecord{{Service: "", Key: "x"}})
	})
}
