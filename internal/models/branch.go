package models

import "strings"

// Organization is the provider-side organization a branch is verified against.
type Organization struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

var branchOrganizations = map[MilitaryBranch]Organization{
	BranchArmy:               {ID: 4070, Name: "Army"},
	BranchAirForce:           {ID: 4073, Name: "Air Force"},
	BranchNavy:               {ID: 4072, Name: "Navy"},
	BranchMarineCorps:        {ID: 4071, Name: "Marine Corps"},
	BranchCoastGuard:         {ID: 4074, Name: "Coast Guard"},
	BranchSpaceForce:         {ID: 4544268, Name: "Space Force"},
	BranchArmyNationalGuard:  {ID: 4075, Name: "Army National Guard"},
	BranchArmyReserve:        {ID: 4076, Name: "Army Reserve"},
	BranchAirNationalGuard:   {ID: 4079, Name: "Air National Guard"},
	BranchAirForceReserve:    {ID: 4080, Name: "Air Force Reserve"},
	BranchNavyReserve:        {ID: 4078, Name: "Navy Reserve"},
	BranchMarineCorpsReserve: {ID: 4077, Name: "Marine Corps Forces Reserve"},
	BranchCoastGuardReserve:  {ID: 4081, Name: "Coast Guard Reserve"},
}

// BranchOrganization returns the provider organization for b, falling back to Army.
func BranchOrganization(b MilitaryBranch) Organization {
	if org, ok := branchOrganizations[b]; ok {
		return org
	}
	return branchOrganizations[BranchArmy]
}

// NormalizeBranch maps free-form branch text (as found in registry records or CLI input)
// onto a MilitaryBranch. Unrecognised text maps to Army.
func NormalizeBranch(input string) MilitaryBranch {
	normalized := strings.TrimSpace(strings.ReplaceAll(strings.ToUpper(input), "US ", ""))
	normalized = strings.TrimPrefix(normalized, "U.S. ")

	for _, b := range AllBranches() {
		if strings.ToUpper(string(b)) == normalized {
			return b
		}
	}

	has := func(words ...string) bool {
		for _, w := range words {
			if !strings.Contains(normalized, w) {
				return false
			}
		}
		return true
	}

	switch {
	case has("MARINE", "RESERVE"):
		return BranchMarineCorpsReserve
	case has("MARINE"):
		return BranchMarineCorps
	case has("ARMY", "NATIONAL"):
		return BranchArmyNationalGuard
	case has("ARMY", "RESERVE"):
		return BranchArmyReserve
	case has("ARMY"):
		return BranchArmy
	case has("NAVY", "RESERVE"):
		return BranchNavyReserve
	case has("NAVY"):
		return BranchNavy
	case has("AIR", "NATIONAL"):
		return BranchAirNationalGuard
	case has("AIR", "RESERVE"):
		return BranchAirForceReserve
	case has("AIR"):
		return BranchAirForce
	case has("COAST", "RESERVE"):
		return BranchCoastGuardReserve
	case has("COAST"):
		return BranchCoastGuard
	case has("SPACE"):
		return BranchSpaceForce
	}
	return BranchArmy
}
