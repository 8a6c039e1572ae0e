// Package marine provides the marine analysis helpers available to notebook
// code cells.
//
// Every function is pure except the sample-data generators, which draw from
// a random source. Inside a code cell the package is imported as "marine":
//
//	p := marine.GenerateOceanData(200)
//	fmt.Println(marine.FormatDepth(marine.FindThermoclineDepth(p)))
//
// Units: temperatures in degrees Celsius, salinity in PSU, depth in metres,
// distance in kilometres, speed in knots, heading in degrees.
package marine
