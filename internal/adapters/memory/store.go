package memory

import (
	"sync"

	"big4-auction-service/internal/domain/account"
	"big4-auction-service/internal/domain/bid"
	"big4-auction-service/internal/domain/catalog"
	"big4-auction-service/internal/domain/feedback"
	"big4-auction-service/internal/domain/listing"
	"big4-auction-service/internal/domain/notification"
	"big4-auction-service/internal/domain/payment"
	"big4-auction-service/internal/domain/settlement"
	"big4-auction-service/internal/ports/outbound"

	"github.com/google/uuid"
)

// Store is a concurrency-safe in-memory backing for every repository.
// One mutex guards all tables so cascades and compare-and-set updates are atomic.
type Store struct {
	mu             sync.RWMutex
	users          map[uuid.UUID]*account.User
	categories     map[uuid.UUID]*catalog.Category
	paymentMethods map[uuid.UUID]*catalog.PaymentMethod
	items          map[uuid.UUID]*listing.Item
	images         map[uuid.UUID][]*listing.Image // key: itemID
	bids           map[uuid.UUID][]*bid.Bid       // key: itemID
	transactions   map[uuid.UUID]*settlement.Transaction
	notifications  map[uuid.UUID]*notification.Notification
	feedback       map[uuid.UUID]*feedback.Feedback
	reports        map[uuid.UUID]*feedback.Report
	cardLinks      map[uuid.UUID]*payment.CardLink
}

// NewStore creates an empty store
func NewStore() *Store {
	return &Store{
		users:          make(map[uuid.UUID]*account.User),
		categories:     make(map[uuid.UUID]*catalog.Category),
		paymentMethods: make(map[uuid.UUID]*catalog.PaymentMethod),
		items:          make(map[uuid.UUID]*listing.Item),
		images:         make(map[uuid.UUID][]*listing.Image),
		bids:           make(map[uuid.UUID][]*bid.Bid),
		transactions:   make(map[uuid.UUID]*settlement.Transaction),
		notifications:  make(map[uuid.UUID]*notification.Notification),
		feedback:       make(map[uuid.UUID]*feedback.Feedback),
		reports:        make(map[uuid.UUID]*feedback.Report),
		cardLinks:      make(map[uuid.UUID]*payment.CardLink),
	}
}

// Repositories returns every repository backed by s
func (s *Store) Repositories() outbound.Repositories {
	return outbound.Repositories{
		Users:          &UserRepository{store: s},
		Categories:     &CategoryRepository{store: s},
		PaymentMethods: &PaymentMethodRepository{store: s},
		Items:          &ItemRepository{store: s},
		Bids:           &BidRepository{store: s},
		Settlements:    &SettlementRepository{store: s},
		Notifications:  &NotificationRepository{store: s},
		Feedback:       &FeedbackRepository{store: s},
		Reports:        &ReportRepository{store: s},
		CardLinks:      &CardLinkRepository{store: s},
	}
}

// deleteItemLocked removes an item and its dependents. Caller holds mu.
func (s *Store) deleteItemLocked(itemID uuid.UUID) {
	delete(s.items, itemID)
	delete(s.images, itemID)
	delete(s.bids, itemID)
	for id, tx := range s.transactions {
		if tx.ItemID == itemID {
			delete(s.transactions, id)
		}
	}
	for id, r := range s.reports {
		if r.ItemID != nil && *r.ItemID == itemID {
			delete(s.reports, id)
		}
	}
}

// deleteUserLocked removes a user and everything referencing it. Caller holds mu.
func (s *Store) deleteUserLocked(userID uuid.UUID) {
	for id, item := range s.items {
		if item.SellerID == userID {
			s.deleteItemLocked(id)
		}
	}
	for itemID, bids := range s.bids {
		kept := bids[:0]
		for _, b := range bids {
			if b.BidderID != userID {
				kept = append(kept, b)
			}
		}
		s.bids[itemID] = kept

		// An active item led by the deleted bidder falls back to the best
		// remaining bid. The version bump makes in-flight bids retry.
		item, ok := s.items[itemID]
		if !ok || !item.IsActive() || item.HighBidderID == nil || *item.HighBidderID != userID {
			continue
		}
		if winner := bid.Winner(kept); winner != nil {
			bidderID := winner.BidderID
			item.CurrentBid = winner.Amount
			item.HighBidderID = &bidderID
		} else {
			item.CurrentBid = item.StartingBid
			item.HighBidderID = nil
		}
		item.Version++
	}
	for id, tx := range s.transactions {
		if tx.BuyerID == userID || tx.SellerID == userID {
			delete(s.transactions, id)
		}
	}
	for id, n := range s.notifications {
		if n.UserID == userID {
			delete(s.notifications, id)
		}
	}
	for id, f := range s.feedback {
		if f.UserID == userID {
			delete(s.feedback, id)
		}
	}
	for id, r := range s.reports {
		if r.ReporterID == userID || r.ReportedUserID == userID {
			delete(s.reports, id)
		}
	}
	for id, l := range s.cardLinks {
		if l.UserID == userID {
			delete(s.cardLinks, id)
		}
	}
	delete(s.users, userID)
}

func copyItem(i *listing.Item) *listing.Item {
	c := *i
	if i.HighBidderID != nil {
		id := *i.HighBidderID
		c.HighBidderID = &id
	}
	return &c
}

func copyUser(u *account.User) *account.User {
	c := *u
	if u.Address != nil {
		a := *u.Address
		c.Address = &a
	}
	if u.PaymentCustomerID != nil {
		p := *u.PaymentCustomerID
		c.PaymentCustomerID = &p
	}
	return &c
}
