package rules

// SpaceUnits is the vocabulary of physical length units accepted for "unit".
var SpaceUnits = NewSet(
	"angstrom",
	"attometer",
	"centimeter",
	"decimeter",
	"dekameter",
	"exameter",
	"femtometer",
	"foot",
	"gigameter",
	"hectometer",
	"inch",
	"kilometer",
	"megameter",
	"meter",
	"micrometer",
	"mile",
	"millimeter",
	"nanometer",
	"parsec",
	"petameter",
	"picometer",
	"terameter",
	"yard",
	"yoctometer",
	"yottameter",
	"zeptometer",
	"zettameter",
)
