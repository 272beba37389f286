package datascope

import (
	"context"

	"gorm.io/gorm"
)

// Apply ANDs the caller's predicate onto db. The returned query is bound to
// this caller; build a fresh one per request.
func (e *Engine) Apply(ctx context.Context, db *gorm.DB, deptCol, userCol string, u AuthUser) (*gorm.DB, error) {
	p, err := e.Build(ctx, deptCol, userCol, u)
	if err != nil {
		return nil, err
	}
	return Where(p)(db), nil
}

// Where is p as a gorm scope. An unrestricted predicate adds nothing.
func Where(p Predicate) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if p.Unrestricted() {
			return db
		}
		return db.Where(p.SQL, p.Args...)
	}
}

// Scope is Apply in gorm scope form. A build failure is recorded on the
// statement and surfaces from the finisher.
func (e *Engine) Scope(ctx context.Context, deptCol, userCol string, u AuthUser) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		scoped, err := e.Apply(ctx, db, deptCol, userCol, u)
		if err != nil {
			_ = db.AddError(err)
			return db
		}
		return scoped
	}
}
