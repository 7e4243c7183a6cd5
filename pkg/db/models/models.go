package models

// All lists every persisted model, in dependency order. Used by the
// sqlite dev auto-migration path.
func All() []any {
	return []any{
		&User{},
		&Post{},
		&Comment{},
		&PostLike{},
		&Alarm{},
	}
}
