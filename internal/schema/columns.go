package schema

const (
	defaultStringLength = 255
	defaultPrecision    = 8
	defaultScale        = 2
	defaultFloat        = 53
)

func intOr(values []int, i, def int) int {
	if len(values) > i {
		return values[i]
	}
	return def
}

// ID adds an auto-incrementing unsigned big integer primary key, named id
// unless given.
func (b *Blueprint) ID(name ...string) *ColumnDefinition {
	if len(name) > 0 {
		return b.BigIncrements(name[0])
	}
	return b.BigIncrements("id")
}

func (b *Blueprint) Increments(name string) *ColumnDefinition {
	return b.UnsignedInteger(name).AutoIncrement()
}

func (b *Blueprint) IntegerIncrements(name string) *ColumnDefinition {
	return b.Increments(name)
}

func (b *Blueprint) TinyIncrements(name string) *ColumnDefinition {
	return b.UnsignedTinyInteger(name).AutoIncrement()
}

func (b *Blueprint) SmallIncrements(name string) *ColumnDefinition {
	return b.UnsignedSmallInteger(name).AutoIncrement()
}

func (b *Blueprint) MediumIncrements(name string) *ColumnDefinition {
	return b.UnsignedMediumInteger(name).AutoIncrement()
}

func (b *Blueprint) BigIncrements(name string) *ColumnDefinition {
	return b.UnsignedBigInteger(name).AutoIncrement()
}

// Char adds a fixed-length string column, 255 characters unless given.
func (b *Blueprint) Char(name string, length ...int) *ColumnDefinition {
	return b.AddColumn("char", name, map[string]any{"length": intOr(length, 0, defaultStringLength)})
}

// String adds a varchar column, 255 characters unless given.
func (b *Blueprint) String(name string, length ...int) *ColumnDefinition {
	return b.AddColumn("string", name, map[string]any{"length": intOr(length, 0, defaultStringLength)})
}

func (b *Blueprint) TinyText(name string) *ColumnDefinition {
	return b.AddColumn("tinyText", name, nil)
}

func (b *Blueprint) Text(name string) *ColumnDefinition {
	return b.AddColumn("text", name, nil)
}

func (b *Blueprint) MediumText(name string) *ColumnDefinition {
	return b.AddColumn("mediumText", name, nil)
}

func (b *Blueprint) LongText(name string) *ColumnDefinition {
	return b.AddColumn("longText", name, nil)
}

func (b *Blueprint) TinyInteger(name string) *ColumnDefinition {
	return b.AddColumn("tinyInteger", name, nil)
}

func (b *Blueprint) SmallInteger(name string) *ColumnDefinition {
	return b.AddColumn("smallInteger", name, nil)
}

func (b *Blueprint) MediumInteger(name string) *ColumnDefinition {
	return b.AddColumn("mediumInteger", name, nil)
}

func (b *Blueprint) Integer(name string) *ColumnDefinition {
	return b.AddColumn("integer", name, nil)
}

func (b *Blueprint) BigInteger(name string) *ColumnDefinition {
	return b.AddColumn("bigInteger", name, nil)
}

func (b *Blueprint) UnsignedTinyInteger(name string) *ColumnDefinition {
	return b.TinyInteger(name).Unsigned()
}

func (b *Blueprint) UnsignedSmallInteger(name string) *ColumnDefinition {
	return b.SmallInteger(name).Unsigned()
}

func (b *Blueprint) UnsignedMediumInteger(name string) *ColumnDefinition {
	return b.MediumInteger(name).Unsigned()
}

func (b *Blueprint) UnsignedInteger(name string) *ColumnDefinition {
	return b.Integer(name).Unsigned()
}

func (b *Blueprint) UnsignedBigInteger(name string) *ColumnDefinition {
	return b.BigInteger(name).Unsigned()
}

// ForeignID adds an unsigned big integer column meant to be Constrained.
func (b *Blueprint) ForeignID(name string) *ColumnDefinition {
	return b.UnsignedBigInteger(name)
}

// ForeignUUID adds a uuid column meant to be Constrained.
func (b *Blueprint) ForeignUUID(name string) *ColumnDefinition {
	return b.UUID(name)
}

// Float adds a float column with the given precision, 53 unless given.
func (b *Blueprint) Float(name string, precision ...int) *ColumnDefinition {
	return b.AddColumn("float", name, map[string]any{"precision": intOr(precision, 0, defaultFloat)})
}

func (b *Blueprint) Double(name string) *ColumnDefinition {
	return b.AddColumn("double", name, nil)
}

// Decimal adds a decimal column. Optional arguments are total digits and
// places, 8 and 2 unless given.
func (b *Blueprint) Decimal(name string, totalAndPlaces ...int) *ColumnDefinition {
	return b.AddColumn("decimal", name, map[string]any{
		"total":  intOr(totalAndPlaces, 0, defaultPrecision),
		"places": intOr(totalAndPlaces, 1, defaultScale),
	})
}

func (b *Blueprint) Boolean(name string) *ColumnDefinition {
	return b.AddColumn("boolean", name, nil)
}

func (b *Blueprint) Enum(name string, allowed []string) *ColumnDefinition {
	return b.AddColumn("enum", name, map[string]any{"allowed": allowed})
}

func (b *Blueprint) Set(name string, allowed []string) *ColumnDefinition {
	return b.AddColumn("set", name, map[string]any{"allowed": allowed})
}

func (b *Blueprint) JSON(name string) *ColumnDefinition {
	return b.AddColumn("json", name, nil)
}

func (b *Blueprint) JSONB(name string) *ColumnDefinition {
	return b.AddColumn("jsonb", name, nil)
}

func (b *Blueprint) Date(name string) *ColumnDefinition {
	return b.AddColumn("date", name, nil)
}

// DateTime adds a datetime column with optional fractional-second precision.
func (b *Blueprint) DateTime(name string, precision ...int) *ColumnDefinition {
	return b.AddColumn("dateTime", name, map[string]any{"precision": intOr(precision, 0, 0)})
}

func (b *Blueprint) DateTimeTz(name string, precision ...int) *ColumnDefinition {
	return b.AddColumn("dateTimeTz", name, map[string]any{"precision": intOr(precision, 0, 0)})
}

func (b *Blueprint) Time(name string, precision ...int) *ColumnDefinition {
	return b.AddColumn("time", name, map[string]any{"precision": intOr(precision, 0, 0)})
}

func (b *Blueprint) TimeTz(name string, precision ...int) *ColumnDefinition {
	return b.AddColumn("timeTz", name, map[string]any{"precision": intOr(precision, 0, 0)})
}

func (b *Blueprint) Timestamp(name string, precision ...int) *ColumnDefinition {
	return b.AddColumn("timestamp", name, map[string]any{"precision": intOr(precision, 0, 0)})
}

func (b *Blueprint) TimestampTz(name string, precision ...int) *ColumnDefinition {
	return b.AddColumn("timestampTz", name, map[string]any{"precision": intOr(precision, 0, 0)})
}

// Timestamps adds nullable created_at and updated_at columns.
func (b *Blueprint) Timestamps(precision ...int) {
	b.Timestamp("created_at", precision...).Nullable()
	b.Timestamp("updated_at", precision...).Nullable()
}

func (b *Blueprint) NullableTimestamps(precision ...int) {
	b.Timestamps(precision...)
}

func (b *Blueprint) TimestampsTz(precision ...int) {
	b.TimestampTz("created_at", precision...).Nullable()
	b.TimestampTz("updated_at", precision...).Nullable()
}

// SoftDeletes adds a nullable deleted_at timestamp, or the named column.
func (b *Blueprint) SoftDeletes(column ...string) *ColumnDefinition {
	name := "deleted_at"
	if len(column) > 0 {
		name = column[0]
	}
	return b.Timestamp(name).Nullable()
}

func (b *Blueprint) SoftDeletesTz(column ...string) *ColumnDefinition {
	name := "deleted_at"
	if len(column) > 0 {
		name = column[0]
	}
	return b.TimestampTz(name).Nullable()
}

func (b *Blueprint) Year(name string) *ColumnDefinition {
	return b.AddColumn("year", name, nil)
}

func (b *Blueprint) Binary(name string) *ColumnDefinition {
	return b.AddColumn("binary", name, nil)
}

func (b *Blueprint) UUID(name string) *ColumnDefinition {
	return b.AddColumn("uuid", name, nil)
}

func (b *Blueprint) ULID(name string) *ColumnDefinition {
	return b.AddColumn("ulid", name, nil)
}

func (b *Blueprint) IPAddress(name string) *ColumnDefinition {
	return b.AddColumn("ipAddress", name, nil)
}

func (b *Blueprint) MACAddress(name string) *ColumnDefinition {
	return b.AddColumn("macAddress", name, nil)
}

func (b *Blueprint) Geometry(name string) *ColumnDefinition {
	return b.AddColumn("geometry", name, nil)
}

func (b *Blueprint) Point(name string) *ColumnDefinition {
	return b.AddColumn("point", name, nil)
}

func (b *Blueprint) LineString(name string) *ColumnDefinition {
	return b.AddColumn("lineString", name, nil)
}

func (b *Blueprint) Polygon(name string) *ColumnDefinition {
	return b.AddColumn("polygon", name, nil)
}

func (b *Blueprint) GeometryCollection(name string) *ColumnDefinition {
	return b.AddColumn("geometryCollection", name, nil)
}

func (b *Blueprint) MultiPoint(name string) *ColumnDefinition {
	return b.AddColumn("multiPoint", name, nil)
}

func (b *Blueprint) MultiLineString(name string) *ColumnDefinition {
	return b.AddColumn("multiLineString", name, nil)
}

func (b *Blueprint) MultiPolygon(name string) *ColumnDefinition {
	return b.AddColumn("multiPolygon", name, nil)
}

// Computed adds a computed column defined by expression.
func (b *Blueprint) Computed(name, expression string) *ColumnDefinition {
	return b.AddColumn("computed", name, map[string]any{"expression": expression})
}

// RememberToken adds a nullable remember_token varchar(100).
func (b *Blueprint) RememberToken() *ColumnDefinition {
	return b.String("remember_token", 100).Nullable()
}

// Morphs adds <name>_type and <name>_id columns with a composite index.
func (b *Blueprint) Morphs(name string) {
	b.String(name + "_type")
	b.UnsignedBigInteger(name + "_id")
	b.Index(name+"_type", name+"_id")
}

func (b *Blueprint) NullableMorphs(name string) {
	b.String(name + "_type").Nullable()
	b.UnsignedBigInteger(name + "_id").Nullable()
	b.Index(name+"_type", name+"_id")
}

// ColumnTypes lists every type tag the Blueprint helpers produce.
var ColumnTypes = []string{
	"char", "string", "tinyText", "text", "mediumText", "longText",
	"tinyInteger", "smallInteger", "mediumInteger", "integer", "bigInteger",
	"float", "double", "decimal", "boolean", "enum", "set", "json", "jsonb",
	"date", "dateTime", "dateTimeTz", "time", "timeTz", "timestamp", "timestampTz", "year",
	"binary", "uuid", "ulid", "ipAddress", "macAddress",
	"geometry", "point", "lineString", "polygon", "geometryCollection",
	"multiPoint", "multiLineString", "multiPolygon", "computed",
}
