package profile

import "context"

// Store определяет контракт хранилища профилей.
// Реализации находятся в infrastructure/persistence.
//
// Ошибки: ErrProfileNotFound для отсутствующих документов,
// ErrUsernameTaken при конфликте username, *shared.StoreError для сбоев
// транспорта/драйвера.
type Store interface {
	// GetProfile загружает профиль без дочерней коллекции напарников.
	GetProfile(ctx context.Context, id string) (*UserProfile, error)

	// CreateProfile сохраняет новый профиль.
	CreateProfile(ctx context.Context, p *UserProfile) error

	// UpdateProfile применяет только заданные поля патча.
	UpdateProfile(ctx context.Context, id string, patch Patch) error

	// DeleteProfile удаляет профиль вместе с коллекцией напарников.
	DeleteProfile(ctx context.Context, id string) error

	// ReserveUsername атомарно резервирует username, если он свободен.
	// Повторная резервация тем же владельцем не является ошибкой.
	ReserveUsername(ctx context.Context, usernameLower, id string) error

	// ReleaseUsername освобождает username. Отсутствие записи не ошибка.
	ReleaseUsername(ctx context.Context, usernameLower string) error

	// LookupUsername возвращает идентификатор владельца username.
	LookupUsername(ctx context.Context, usernameLower string) (string, error)

	// ListBuddies возвращает напарников владельца.
	ListBuddies(ctx context.Context, ownerID string) ([]BuddyLink, error)

	// PutBuddy создаёт или заменяет запись напарника.
	PutBuddy(ctx context.Context, ownerID string, link BuddyLink) error

	// DeleteBuddy удаляет запись напарника. Отсутствие записи не ошибка.
	DeleteBuddy(ctx context.Context, ownerID, buddyID string) error
}

// Transactor - опциональная возможность хранилища выполнять несколько
// операций атомарно. Store, переданный в fn, привязан к транзакции.
type Transactor interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context, tx Store) error) error
}

// SnapshotReader - опциональная возможность хранилища отдавать профиль из
// кэша. Снимок может отставать от хранилища, поэтому он годится только для
// чтения (поиск напарников) и никогда не служит основой для записи.
type SnapshotReader interface {
	GetProfileSnapshot(ctx context.Context, id string) (*UserProfile, error)
}
