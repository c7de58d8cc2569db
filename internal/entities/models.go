package entities

// Models lists every persisted entity in migration order.
func Models() []any {
	return []any{
		&User{},
		&Category{},
		&Book{},
		&BookCategory{},
		&Like{},
		&View{},
		&Comment{},
		&Download{},
		&AuditEvent{},
	}
}
