package marine

import (
	"fmt"
	"math"
)

// FormatCoordinates renders a coordinate as "45.1234°N, 3.5000°W".
func FormatCoordinates(c Coordinate) string {
	hemi := "E"
	if c.Lon < 0 {
		hemi = "W"
	}
	return fmt.Sprintf("%.4f°N, %.4f°%s", c.Lat, math.Abs(c.Lon), hemi)
}

// FormatDepth renders a depth as "12.5m".
func FormatDepth(depth float64) string {
	return fmt.Sprintf("%.1fm", depth)
}

// FormatTemperature renders a temperature as "12.50°C".
func FormatTemperature(temp float64) string {
	return fmt.Sprintf("%.2f°C", temp)
}

// FormatSalinity renders a salinity as "35.00 PSU".
func FormatSalinity(salinity float64) string {
	return fmt.Sprintf("%.2f PSU", salinity)
}
