package models_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/AnhAnhii/veterans-verify-system/internal/models"
)

func TestBranchOrganization(t *testing.T) {
	assert.Equal(t, 4070, models.BranchOrganization(models.BranchArmy).ID)
	assert.Equal(t, 4544268, models.BranchOrganization(models.BranchSpaceForce).ID)
	assert.Equal(t, "Marine Corps Forces Reserve", models.BranchOrganization(models.BranchMarineCorpsReserve).Name)
	assert.Equal(t, 4070, models.BranchOrganization("Unknown").ID)
}

func TestNormalizeBranch(t *testing.T) {
	cases := map[string]models.MilitaryBranch{
		"US Army":                models.BranchArmy,
		"navy reserve":           models.BranchNavyReserve,
		"USMC Marine":            models.BranchMarineCorps,
		"Marines Reserve":        models.BranchMarineCorpsReserve,
		"ARMY NATIONAL GUARD":    models.BranchArmyNationalGuard,
		"US Air National Guard":  models.BranchAirNationalGuard,
		"air force":              models.BranchAirForce,
		"Coast Guard Reserve":    models.BranchCoastGuardReserve,
		"U.S. Coast Guard":       models.BranchCoastGuard,
		"Space":                  models.BranchSpaceForce,
		"Continental Militia":    models.BranchArmy,
		"  Air Force Reserve   ": models.BranchAirForceReserve,
	}
	for in, want := range cases {
		assert.Equal(t, want, models.NormalizeBranch(in), in)
	}
}
