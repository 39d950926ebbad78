package schema

import (
	"encoding/json"
	"regexp"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/encoding/wkt"
	"github.com/paulmach/orb/geojson"
	"github.com/shopspring/decimal"

	"datasets/internal/metadata"
)

// Messages shown for datatype violations.
const (
	MsgRequired        = "This field is required."
	MsgInvalidChoice   = "Not a valid choice."
	MsgCurie           = "Field must be in the format 'namespace:identifier'"
	MsgURL             = "Invalid URL."
	MsgGeoJSONType     = "GeoJSON must be a MultiPolygon"
	MsgWKTMultiPolygon = "Must be valid WKT MultiPolygon"
	MsgWKTPoint        = "Must be a valid WKT Point e.g. POINT (-0.813597 51.710921)"
	MsgDecimal         = "Must be a decimal number"
	MsgInteger         = "Must be a whole number"
)

var (
	curiePattern = regexp.MustCompile(`^[^:]+:[^:]+$`)
	validate     = validator.New()
)

// checkDatatype validates a non-empty value against the field's datatype.
// It returns the violation message, or "" when the value is acceptable.
func checkDatatype(dt metadata.Datatype, value string) string {
	switch dt {
	case metadata.DatatypeCurie:
		if !curiePattern.MatchString(value) {
			return MsgCurie
		}
	case metadata.DatatypeURL:
		if err := validate.Var(value, "url"); err != nil {
			return MsgURL
		}
	case metadata.DatatypeMultiPolygon:
		return checkMultiPolygon(value)
	case metadata.DatatypePoint:
		if _, err := wkt.UnmarshalPoint(value); err != nil {
			return MsgWKTPoint
		}
	case metadata.DatatypeDecimal:
		if _, err := decimal.NewFromString(value); err != nil {
			return MsgDecimal
		}
	case metadata.DatatypeInteger:
		if _, err := strconv.ParseInt(value, 10, 64); err != nil {
			return MsgInteger
		}
	}
	return ""
}

// checkMultiPolygon accepts a GeoJSON MultiPolygon geometry or WKT
// MULTIPOLYGON. A JSON object is judged as GeoJSON only; anything else
// is parsed as WKT.
func checkMultiPolygon(value string) string {
	trimmed := strings.TrimSpace(value)
	if strings.HasPrefix(trimmed, "{") && json.Valid([]byte(trimmed)) {
		g, err := geojson.UnmarshalGeometry([]byte(trimmed))
		if err != nil {
			return MsgGeoJSONType
		}
		if _, ok := g.Coordinates.(orb.MultiPolygon); !ok {
			return MsgGeoJSONType
		}
		return ""
	}

	if _, err := wkt.UnmarshalMultiPolygon(trimmed); err != nil {
		return MsgWKTMultiPolygon
	}
	return ""
}
