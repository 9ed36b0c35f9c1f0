package storage

// NewMemoryService opens a migrated in-memory database and returns its Service.
func NewMemoryService() (*Service, error) {
	config := DefaultConfig(MemoryPath)
	config.AutoMigrate = true

	db, err := Open(config)
	if err != nil {
		return nil, err
	}
	return NewService(db), nil
}
