package lookup

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuildingClass(t *testing.T) {
	assert.Equal(t, "Walk Up Apartments", BuildingClass("C1"))
	assert.Equal(t, "Elevator Apartments", BuildingClass("D4"))
	assert.Equal(t, "Vacant Land", BuildingClass("V0"))
	assert.Empty(t, BuildingClass(""))
	assert.Empty(t, BuildingClass("99"))
}

func TestLandUse(t *testing.T) {
	assert.Equal(t, "Multi-Family Walk-Up Buildings", LandUse("02"))
	assert.Equal(t, "Vacant Land", LandUse("11"))
	assert.Empty(t, LandUse(""))
	assert.Empty(t, LandUse("99"))
}
