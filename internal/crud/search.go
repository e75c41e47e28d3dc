package crud

import (
	"reflect"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/schema"
)

var namer = schema.NamingStrategy{}

// SearchScope returns a GORM scope that narrows the query to rows where any
// of the named fields contains term as a case-insensitive substring.
//
// Fields are matched by name (case-insensitive) against the struct type of
// model, embedded fields included. Only string-kind fields are eligible;
// names that resolve to other types, or to nothing at all, are silently
// skipped. When the term is blank, the field list is empty, or no eligible
// field remains, the scope is the identity.
//
// The term is bound as a parameter and its LIKE metacharacters are escaped,
// so it always matches as a literal substring.
func SearchScope(model any, fields []string, term string) func(*gorm.DB) *gorm.DB {
	identity := func(db *gorm.DB) *gorm.DB { return db }

	term = strings.TrimSpace(term)
	if term == "" || len(fields) == 0 {
		return identity
	}

	t := reflect.TypeOf(model)
	for t != nil && t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	if t == nil || t.Kind() != reflect.Struct {
		return identity
	}

	columns := make([]string, 0, len(fields))
	for _, name := range fields {
		field, ok := t.FieldByNameFunc(func(n string) bool {
			return strings.EqualFold(n, name)
		})
		if !ok || field.Type.Kind() != reflect.String {
			continue
		}
		columns = append(columns, columnName(field))
	}
	if len(columns) == 0 {
		return identity
	}

	pattern := "%" + escapeLike(strings.ToLower(term)) + "%"

	conds := make([]string, len(columns))
	args := make([]any, len(columns))
	for i, col := range columns {
		conds[i] = "LOWER(" + col + ") LIKE ? ESCAPE '\\'"
		args[i] = pattern
	}
	clause := strings.Join(conds, " OR ")

	return func(db *gorm.DB) *gorm.DB {
		return db.Where(clause, args...)
	}
}

// columnName resolves the database column for a struct field, honoring an
// explicit gorm column tag and falling back to GORM's naming strategy.
func columnName(field reflect.StructField) string {
	settings := schema.ParseTagSetting(field.Tag.Get("gorm"), ";")
	if col, ok := settings["COLUMN"]; ok && col != "" {
		return col
	}
	return namer.ColumnName("", field.Name)
}

// escapeLike escapes LIKE wildcards so the term matches literally.
func escapeLike(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `%`, `\%`)
	s = strings.ReplaceAll(s, `_`, `\_`)
	return s
}
