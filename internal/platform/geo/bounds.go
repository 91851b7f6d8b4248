package geo

import (
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
)

// Los puntos se guardan en orden (lng, lat), igual que en el storage.
// Cualquier conversión desde lat/lng de la API pasa por NewPoint para no
// mezclar el orden de coordenadas (si se mezcla, las queries de área
// devuelven resultados silenciosamente incorrectos).

// NewPoint construye un punto a partir de lat/lng de la API.
func NewPoint(lat, lng float64) orb.Point {
	return orb.Point{lng, lat}
}

// Lat devuelve la latitud de un punto almacenado.
func Lat(p orb.Point) float64 { return p[1] }

// Lng devuelve la longitud de un punto almacenado.
func Lng(p orb.Point) float64 { return p[0] }

// RectangleBounds arma el polígono cerrado (5 vértices, primero == último)
// que cubre el rectángulo definido por dos esquinas opuestas.
// Un rectángulo degenerado (ancho o alto cero) sigue produciendo un anillo
// válido; cruzar el antimeridiano queda fuera de alcance.
func RectangleBounds(topRight, bottomLeft orb.Point) orb.Polygon {
	ring := orb.Ring{
		{bottomLeft[0], bottomLeft[1]},
		{topRight[0], bottomLeft[1]},
		{topRight[0], topRight[1]},
		{bottomLeft[0], topRight[1]},
		{bottomLeft[0], bottomLeft[1]},
	}
	return orb.Polygon{ring}
}

// Contains reporta si el punto cae dentro del polígono.
// Lo usa el repo in-memory; en Postgres el contains lo resuelve PostGIS.
func Contains(bounds orb.Polygon, p orb.Point) bool {
	return planar.PolygonContains(bounds, p)
}
