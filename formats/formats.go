// Package formats declares the built-in neuron-morphology table formats.
//
// Each format is a package-level value built by extending a parent:
//
//	Base
//	├── Points
//	│   ├── Skeletons
//	│   └── Dotprops
//	└── Connections
package formats

import (
	neurarrow "github.com/neurarrow/neurarrow-go"
	"github.com/neurarrow/neurarrow-go/rules"
)

// Format identifiers accepted by Lookup.
const (
	NameBase        = "base"
	NamePoints      = "points"
	NameSkeleton    = "skeleton"
	NameDotprops    = "dotprops"
	NameConnections = "connections"
)

// Reserved metadata keys.
const (
	KeyVersion          = "version"
	KeyContext          = "context"
	KeyUnit             = "unit"
	KeySpace            = "space"
	KeyNeighborhoodSize = "neighborhood_size"
)

var (
	idType   = neurarrow.Uint64()
	realType = neurarrow.Float64()
)

// Base carries the metadata every format shares: a version, an opaque
// context and the free-form attr namespace.
var Base = neurarrow.MustFormat(NameBase, neurarrow.Extension{
	RequiredMeta: []neurarrow.MetaRule{
		neurarrow.Meta(KeyVersion, rules.VersionRule{}),
		neurarrow.Meta(KeyContext, nil),
	},
	OptionalMeta: []neurarrow.MetaRule{
		neurarrow.MetaNamespace(neurarrow.AttrNamespace, nil),
	},
})

// Points is a cloud of identified samples in a physical space.
var Points = Base.MustExtend(NamePoints, neurarrow.Extension{
	Required: []neurarrow.Column{
		neurarrow.Col("sample_id", idType),
		neurarrow.Col("fragment_id", idType),
		neurarrow.Col("x", realType),
		neurarrow.Col("y", realType),
		neurarrow.Col("z", realType),
	},
	RequiredMeta: []neurarrow.MetaRule{
		neurarrow.Meta(KeyUnit, rules.UnitRule{Allowed: rules.SpaceUnits}),
	},
	OptionalMeta: []neurarrow.MetaRule{
		neurarrow.MetaNamespace(KeySpace, nil),
	},
})

// Skeletons are point trees: each sample names its parent (null at roots).
var Skeletons = Points.MustExtend(NameSkeleton, neurarrow.Extension{
	Required: []neurarrow.Column{
		neurarrow.NullableCol("parent_id", idType),
	},
	Optional: []neurarrow.Column{
		neurarrow.NullableCol("radius", realType),
	},
	Derived: []neurarrow.Column{
		neurarrow.Col("child_ids", neurarrow.ListOf(idType)),
		neurarrow.Col("n_children", neurarrow.Uint32()),
		neurarrow.Col("strahler", neurarrow.Uint32()),
	},
})

// Dotprops are points with a local tangent vector.
var Dotprops = Points.MustExtend(NameDotprops, neurarrow.Extension{
	Required: []neurarrow.Column{
		neurarrow.Col("tangent_x", realType),
		neurarrow.Col("tangent_y", realType),
		neurarrow.Col("tangent_z", realType),
	},
	Optional: []neurarrow.Column{
		neurarrow.Col("colinearity", realType),
	},
	RequiredMeta: []neurarrow.MetaRule{
		neurarrow.Meta(KeyNeighborhoodSize, rules.Int()),
	},
})

// Connections link samples of (possibly different) entities.
var Connections = Base.MustExtend(NameConnections, neurarrow.Extension{
	Required: []neurarrow.Column{
		neurarrow.Col("connection_id", idType),
		neurarrow.Col("src_sample_id", idType),
		neurarrow.Col("tgt_sample_id", idType),
		neurarrow.Col("type", neurarrow.DictionaryOf(neurarrow.Uint16(), neurarrow.Utf8())),
	},
})

// Builtin lists the built-in formats, parents first.
func Builtin() []*neurarrow.FormatSchema {
	return []*neurarrow.FormatSchema{Base, Points, Skeletons, Dotprops, Connections}
}
