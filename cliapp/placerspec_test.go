package cliapp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePlacerSpecNameOnly(t *testing.T) {
	spec, err := parsePlacerSpec("random")
	require.NoError(t, err)

	assert.Equal(t, "random", spec.Name)
	assert.Empty(t, spec.Opts)
}

func TestParsePlacerSpecWithOpts(t *testing.T) {
	spec, err := parsePlacerSpec("SA[lambda=0.5,max_site_attempts=16]")
	require.NoError(t, err)

	assert.Equal(t, "SA", spec.Name)
	assert.Equal(t, 0.5, spec.Opts["lambda"])
	assert.Equal(t, float64(16), spec.Opts["max_site_attempts"])
}

func TestParsePlacerSpecRejectsMissingCloseBracket(t *testing.T) {
	_, err := parsePlacerSpec("SA[lambda=0.5")
	assert.Error(t, err)
}

func TestParsePlacerSpecRejectsNonNumericValue(t *testing.T) {
	_, err := parsePlacerSpec("SA[lambda=not-a-number]")
	assert.Error(t, err)
}

func TestResolvePlacerStagesDefaultsToRandomWithSeed(t *testing.T) {
	opts := &options{random: true}

	specs, err := resolvePlacerStages(opts)
	require.NoError(t, err)

	require.Len(t, specs, 1)
	assert.Equal(t, "random", specs[0].Name)
}

func TestResolvePlacerStagesSkipsPlacementWhenStartingFromPlaceFile(t *testing.T) {
	opts := &options{placePath: "x.place"}

	specs, err := resolvePlacerStages(opts)
	require.NoError(t, err)
	assert.Nil(t, specs)
}

func TestResolvePlacerStagesErrorsWithNeitherPlacerNorRandom(t *testing.T) {
	opts := &options{}

	_, err := resolvePlacerStages(opts)
	assert.Error(t, err)
}
