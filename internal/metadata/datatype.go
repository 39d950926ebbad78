package metadata

// Datatype is the declared value type of a field.
// The set is closed; anything the loader does not recognise is kept verbatim
// and handled by the free-text arm.
type Datatype string

const (
	DatatypeString       Datatype = "string"
	DatatypeText         Datatype = "text"
	DatatypeURL          Datatype = "url"
	DatatypeCurie        Datatype = "curie"
	DatatypeDatetime     Datatype = "datetime"
	DatatypeMultiPolygon Datatype = "multipolygon"
	DatatypePoint        Datatype = "point"
	DatatypeDecimal      Datatype = "decimal"
	DatatypeInteger      Datatype = "integer"
)

// Cardinality says whether a field holds one value or many.
type Cardinality string

const (
	CardinalityOne  Cardinality = "1"
	CardinalityMany Cardinality = "n"
)

// MultiValueSeparator joins the values of a cardinality "n" field.
const MultiValueSeparator = ";"
