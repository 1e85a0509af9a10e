// Package lookup holds the static code-to-text dictionaries used when
// rendering reports. Pure lookups, no derivation logic.
package lookup

// buildingClasses maps DOF building class prefixes to descriptions. Only
// the two-character code's first letter carries the category.
var buildingClasses = map[string]string{
	"A": "One Family Dwellings",
	"B": "Two Family Dwellings",
	"C": "Walk Up Apartments",
	"D": "Elevator Apartments",
	"E": "Warehouses",
	"F": "Factory and Industrial Buildings",
	"G": "Garages",
	"H": "Hotels",
	"I": "Hospitals and Health Facilities",
	"J": "Theatres",
	"K": "Store Buildings",
	"L": "Loft Buildings",
	"M": "Religious Facilities",
	"N": "Asylums and Homes",
	"O": "Office Buildings",
	"P": "Places of Public Assembly",
	"Q": "Outdoor Recreation Facilities",
	"R": "Condominiums",
	"S": "Mixed Residence and Store Buildings",
	"T": "Transportation Facilities",
	"U": "Utility Bureau Properties",
	"V": "Vacant Land",
	"W": "Educational Facilities",
	"Y": "Government Facilities",
	"Z": "Miscellaneous",
}

// landUses maps PLUTO land use codes to descriptions.
var landUses = map[string]string{
	"01": "One & Two Family Buildings",
	"02": "Multi-Family Walk-Up Buildings",
	"03": "Multi-Family Elevator Buildings",
	"04": "Mixed Residential & Commercial Buildings",
	"05": "Commercial & Office Buildings",
	"06": "Industrial & Manufacturing",
	"07": "Transportation & Utility",
	"08": "Public Facilities & Institutions",
	"09": "Open Space & Outdoor Recreation",
	"10": "Parking Facilities",
	"11": "Vacant Land",
}

// BuildingClass returns the description for a building class code, or ""
// when the code is empty or unknown.
func BuildingClass(code string) string {
	if code == "" {
		return ""
	}
	return buildingClasses[code[:1]]
}

// LandUse returns the description for a land use code, or "" when unknown.
func LandUse(code string) string {
	return landUses[code]
}
