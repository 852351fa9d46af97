package schemafile

import (
	"github.com/tordrt/ddlkit/internal/schema"
)

type columnFunc func(b *schema.Blueprint, c *columnSpec) *schema.ColumnDefinition

func ints(values ...*int) []int {
	var out []int
	for _, v := range values {
		if v == nil {
			break
		}
		out = append(out, *v)
	}
	return out
}

func plain(add func(b *schema.Blueprint, name string) *schema.ColumnDefinition) columnFunc {
	return func(b *schema.Blueprint, c *columnSpec) *schema.ColumnDefinition { return add(b, c.Name) }
}

func timed(add func(b *schema.Blueprint, name string, precision ...int) *schema.ColumnDefinition) columnFunc {
	return func(b *schema.Blueprint, c *columnSpec) *schema.ColumnDefinition {
		return add(b, c.Name, ints(c.Precision)...)
	}
}

// columnTypes maps schema file type names to Blueprint column helpers.
var columnTypes = map[string]columnFunc{
	"id": plain(func(b *schema.Blueprint, name string) *schema.ColumnDefinition { return b.ID(name) }),

	"increments":        plain((*schema.Blueprint).Increments),
	"tiny_increments":   plain((*schema.Blueprint).TinyIncrements),
	"small_increments":  plain((*schema.Blueprint).SmallIncrements),
	"medium_increments": plain((*schema.Blueprint).MediumIncrements),
	"big_increments":    plain((*schema.Blueprint).BigIncrements),

	"char": func(b *schema.Blueprint, c *columnSpec) *schema.ColumnDefinition {
		return b.Char(c.Name, ints(c.Length)...)
	},
	"string": func(b *schema.Blueprint, c *columnSpec) *schema.ColumnDefinition {
		return b.String(c.Name, ints(c.Length)...)
	},
	"tiny_text":   plain((*schema.Blueprint).TinyText),
	"text":        plain((*schema.Blueprint).Text),
	"medium_text": plain((*schema.Blueprint).MediumText),
	"long_text":   plain((*schema.Blueprint).LongText),

	"tiny_integer":            plain((*schema.Blueprint).TinyInteger),
	"small_integer":           plain((*schema.Blueprint).SmallInteger),
	"medium_integer":          plain((*schema.Blueprint).MediumInteger),
	"integer":                 plain((*schema.Blueprint).Integer),
	"big_integer":             plain((*schema.Blueprint).BigInteger),
	"unsigned_tiny_integer":   plain((*schema.Blueprint).UnsignedTinyInteger),
	"unsigned_small_integer":  plain((*schema.Blueprint).UnsignedSmallInteger),
	"unsigned_medium_integer": plain((*schema.Blueprint).UnsignedMediumInteger),
	"unsigned_integer":        plain((*schema.Blueprint).UnsignedInteger),
	"unsigned_big_integer":    plain((*schema.Blueprint).UnsignedBigInteger),
	"foreign_id":              plain((*schema.Blueprint).ForeignID),
	"foreign_uuid":            plain((*schema.Blueprint).ForeignUUID),

	"float": func(b *schema.Blueprint, c *columnSpec) *schema.ColumnDefinition {
		return b.Float(c.Name, ints(c.Precision)...)
	},
	"double": plain((*schema.Blueprint).Double),
	"decimal": func(b *schema.Blueprint, c *columnSpec) *schema.ColumnDefinition {
		return b.Decimal(c.Name, ints(c.Precision, c.Scale)...)
	},
	"boolean": plain((*schema.Blueprint).Boolean),
	"enum": func(b *schema.Blueprint, c *columnSpec) *schema.ColumnDefinition {
		return b.Enum(c.Name, c.Allowed)
	},
	"set": func(b *schema.Blueprint, c *columnSpec) *schema.ColumnDefinition {
		return b.Set(c.Name, c.Allowed)
	},
	"json":  plain((*schema.Blueprint).JSON),
	"jsonb": plain((*schema.Blueprint).JSONB),

	"date":         plain((*schema.Blueprint).Date),
	"datetime":     timed((*schema.Blueprint).DateTime),
	"datetime_tz":  timed((*schema.Blueprint).DateTimeTz),
	"time":         timed((*schema.Blueprint).Time),
	"time_tz":      timed((*schema.Blueprint).TimeTz),
	"timestamp":    timed((*schema.Blueprint).Timestamp),
	"timestamp_tz": timed((*schema.Blueprint).TimestampTz),
	"year":         plain((*schema.Blueprint).Year),

	"binary":      plain((*schema.Blueprint).Binary),
	"uuid":        plain((*schema.Blueprint).UUID),
	"ulid":        plain((*schema.Blueprint).ULID),
	"ip_address":  plain((*schema.Blueprint).IPAddress),
	"mac_address": plain((*schema.Blueprint).MACAddress),

	"geometry":            plain((*schema.Blueprint).Geometry),
	"point":               plain((*schema.Blueprint).Point),
	"line_string":         plain((*schema.Blueprint).LineString),
	"polygon":             plain((*schema.Blueprint).Polygon),
	"geometry_collection": plain((*schema.Blueprint).GeometryCollection),
	"multi_point":         plain((*schema.Blueprint).MultiPoint),
	"multi_line_string":   plain((*schema.Blueprint).MultiLineString),
	"multi_polygon":       plain((*schema.Blueprint).MultiPolygon),

	"computed": func(b *schema.Blueprint, c *columnSpec) *schema.ColumnDefinition {
		return b.Computed(c.Name, c.Expression)
	},
}
