// Package profile содержит доменную модель профиля пользователя Sync.
//
// Пакет определяет:
//
//   - Сущности: UserProfile, ClassSlot, StudySession, SyncEvent, Redemption, BuddyLink
//   - Patch - частичное обновление документа профиля
//   - Интерфейсы хранилища: Store, Transactor
//
// # Жизненный цикл
//
// Профиль создаётся один раз при регистрации (счётчики обнулены, серия = 1,
// расписание пустое) и удаляется вместе с записью в реестре username и
// коллекцией напарников. Все изменения между этими точками - частичные
// обновления через ProfileController:
//
//	p, err := profile.NewUserProfile(profile.NewUserProfileParams{
//	    ID:       id,
//	    Username: "JaneDoe", // хранится как "janedoe"
//	    Name:     "Jane Doe",
//	    Email:    "jane@example.com",
//	    Now:      clock.Now(),
//	})
//
// # Напарники
//
// Напарники хранятся дочерней коллекцией с ключом (ownerID, buddyID) и
// подмешиваются в снимок профиля при загрузке сессии.
package profile
