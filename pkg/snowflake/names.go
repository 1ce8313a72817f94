package snowflake

import "strings"

// PublicSchema is the default schema every database is created with.
const PublicSchema = "PUBLIC"

// Name joins identifier parts with '_' and upper-cases the result.
//
//	Name("acme", "wh1") // ACME_WH1
func Name(parts ...string) string {
	return strings.ToUpper(strings.Join(parts, "_"))
}

// QuoteIdentifier wraps an identifier in double quotes, doubling any quote
// it already contains.
func QuoteIdentifier(id string) string {
	return `"` + strings.ReplaceAll(id, `"`, `""`) + `"`
}

// QualifiedName returns the fully quoted "DATABASE"."SCHEMA" name the
// provider expects for schema scopes. Unquoted names fail to match
// case-sensitive identifiers.
func QualifiedName(database, schema string) string {
	return QuoteIdentifier(database) + "." + QuoteIdentifier(schema)
}

// Plural returns the upper-cased plural object type for a singular object
// kind, e.g. "table" -> "TABLES".
func Plural(kind string) string {
	return strings.ToUpper(kind + "s")
}
