// Package gormwhere applies compiled filters to gorm queries.
package gormwhere

import (
	"cmp"

	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/theplant/docwhere"
	"github.com/theplant/docwhere/compiler"
)

const DefaultColumn = "data"

type Options struct {
	compiler   *compiler.Compiler
	domainType *docwhere.DomainType
	column     string
}

type Option func(o *Options)

// WithCompiler sets the compiler. It must use the Question placeholder,
// since gorm numbers the bind variables itself.
func WithCompiler(c *compiler.Compiler) Option {
	return func(o *Options) {
		o.compiler = c
	}
}

// WithDomainType resolves leaves against dt instead of classifying them.
func WithDomainType(dt *docwhere.DomainType) Option {
	return func(o *Options) {
		o.domainType = dt
	}
}

// WithColumn names the JSONB document column, by field name or column
// name. It defaults to "data".
func WithColumn(column string) Option {
	return func(o *Options) {
		o.column = column
	}
}

func newOptions(opts []Option) *Options {
	o := &Options{column: DefaultColumn}
	for _, opt := range opts {
		opt(o)
	}
	if o.compiler == nil {
		o.compiler = compiler.New(compiler.WithPlaceholder(compiler.Question))
	}
	return o
}

// Expr is a compiled filter. It renders wrapped in parentheses so that it
// composes with other conditions of the statement.
type Expr struct {
	SQL  string
	Vars []any
}

var (
	_ clause.Expression                = Expr{}
	_ clause.NegationExpressionBuilder = Expr{}
)

func (e Expr) Build(builder clause.Builder) {
	_ = builder.WriteByte('(')
	e.build(builder)
	_ = builder.WriteByte(')')
}

func (e Expr) NegationBuild(builder clause.Builder) {
	_, _ = builder.WriteString("NOT (")
	e.build(builder)
	_ = builder.WriteByte(')')
}

// build hands every ? outside of quoted literals to the builder as a
// bind variable.
func (e Expr) build(builder clause.Builder) {
	quoted := false
	idx := 0
	for i := 0; i < len(e.SQL); i++ {
		c := e.SQL[i]
		switch {
		case c == '\'':
			quoted = !quoted
		case c == '?' && !quoted:
			if idx >= len(e.Vars) {
				_ = builder.AddError(errors.Errorf("filter sql has more placeholders than the %d vars", len(e.Vars)))
				return
			}
			builder.AddVar(builder, e.Vars[idx])
			idx++
			continue
		}
		_ = builder.WriteByte(c)
	}
}

// Compile compiles expr against the document column of root, e.g.
// "devices.data".
func Compile(expr docwhere.Expression, root string, opts ...Option) (Expr, error) {
	o := newOptions(opts)
	sql, vars, err := o.compiler.CompileFor(o.domainType, expr, root)
	if err != nil {
		return Expr{}, err
	}
	return Expr{SQL: sql, Vars: vars}, nil
}

// Scope filters the statement's model by expr. Compilation errors are
// added to the db.
func Scope(expr docwhere.Expression, opts ...Option) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if db == nil {
			return nil
		}
		fdb, err := addFilter(db, expr, opts)
		if err != nil {
			db.AddError(err)
			return db
		}
		return fdb
	}
}

func addFilter(db *gorm.DB, expr docwhere.Expression, opts []Option) (*gorm.DB, error) {
	if expr == nil {
		return db, nil
	}
	o := newOptions(opts)

	root := o.column
	if model := cmp.Or(db.Statement.Model, db.Statement.Dest); model != nil {
		stmt := &gorm.Statement{DB: db}
		if err := stmt.Parse(model); err != nil {
			return nil, errors.Wrap(err, "parse schema with db")
		}
		field := stmt.Schema.LookUpField(o.column)
		if field == nil {
			return nil, errors.Errorf("missing document column %q in schema %s", o.column, stmt.Schema.Name)
		}
		root = stmt.Schema.Table + "." + field.DBName
	}
	sql, vars, err := o.compiler.CompileFor(o.domainType, expr, root)
	if err != nil {
		return nil, err
	}
	return db.Where(Expr{SQL: sql, Vars: vars}), nil
}
