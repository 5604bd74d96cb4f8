package db

import (
	"big4-auction-service/internal/ports/outbound"
)

// RepositoryFactory creates and manages all database repositories
type RepositoryFactory struct {
	conn *Connection
}

// NewRepositoryFactory creates a new repository factory
func NewRepositoryFactory(conn *Connection) *RepositoryFactory {
	return &RepositoryFactory{conn: conn}
}

// GetBidRepository returns the bid repository
func (f *RepositoryFactory) GetBidRepository() outbound.BidRepository {
	return NewBidRepository(f.conn)
}

// GetItemRepository returns the item repository
func (f *RepositoryFactory) GetItemRepository() outbound.ItemRepository {
	return NewItemRepository(f.conn)
}

// GetUserRepository returns the user repository
func (f *RepositoryFactory) GetUserRepository() outbound.UserRepository {
	return NewUserRepository(f.conn)
}

// GetAllRepositories returns all repositories in a struct for easy dependency injection
func (f *RepositoryFactory) GetAllRepositories() outbound.Repositories {
	return outbound.Repositories{
		Users:          f.GetUserRepository(),
		Categories:     NewCategoryRepository(f.conn),
		PaymentMethods: NewPaymentMethodRepository(f.conn),
		Items:          f.GetItemRepository(),
		Bids:           f.GetBidRepository(),
		Settlements:    NewSettlementRepository(f.conn),
		Notifications:  NewNotificationRepository(f.conn),
		Feedback:       NewFeedbackRepository(f.conn),
		Reports:        NewReportRepository(f.conn),
		CardLinks:      NewCardLinkRepository(f.conn),
	}
}
