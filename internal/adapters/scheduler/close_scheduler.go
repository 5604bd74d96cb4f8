package scheduler

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"big4-auction-service/internal/domain/listing"
	"big4-auction-service/internal/domain/shared"
	"big4-auction-service/internal/ports/outbound"

	"github.com/alitto/pond"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

const (
	closingsKey  = "item:closings"
	batchSize    = 10
	resyncPage   = 100
	closeWorkers = 4
)

// ItemCloser settles an item whose bidding window has ended
type ItemCloser interface {
	CloseDueItem(ctx context.Context, itemID uuid.UUID) (*shared.ClosedOutcome, error)
}

// CloseScheduler keeps item end times in a Redis sorted set and closes due
// items on every tick.
type CloseScheduler struct {
	redis    *redis.Client
	closer   ItemCloser
	items    outbound.ItemRepository
	interval time.Duration
	pool     *pond.WorkerPool
	logger   zerolog.Logger
	ctx      context.Context
	cancel   context.CancelFunc
	wg       sync.WaitGroup
}

type CloseSchedulerParams struct {
	RedisClient *redis.Client
	Closer      ItemCloser
	// ItemRepo is used to reschedule active items on start
	ItemRepo outbound.ItemRepository
	Interval time.Duration
	Logger   zerolog.Logger
}

func NewCloseScheduler(params CloseSchedulerParams) *CloseScheduler {
	ctx, cancel := context.WithCancel(context.Background())
	interval := params.Interval
	if interval <= 0 {
		interval = time.Second
	}

	return &CloseScheduler{
		redis:    params.RedisClient,
		closer:   params.Closer,
		items:    params.ItemRepo,
		interval: interval,
		pool:     pond.New(closeWorkers, batchSize),
		logger:   params.Logger.With().Str("component", "close_scheduler").Logger(),
		ctx:      ctx,
		cancel:   cancel,
	}
}

// Schedule adds or moves an item in the close schedule
func (s *CloseScheduler) Schedule(ctx context.Context, itemID uuid.UUID, endTime time.Time) error {
	err := s.redis.ZAdd(ctx, closingsKey, redis.Z{
		Score:  float64(endTime.UnixMilli()),
		Member: itemID.String(),
	}).Err()
	if err != nil {
		s.logger.Error().Err(err).Str("item_id", itemID.String()).Msg("Failed to schedule item")
		return fmt.Errorf("failed to schedule item: %w", err)
	}

	s.logger.Info().
		Str("item_id", itemID.String()).
		Time("end_time", endTime).
		Msg("Item scheduled for closing")
	return nil
}

// Cancel removes an item from the close schedule
func (s *CloseScheduler) Cancel(ctx context.Context, itemID uuid.UUID) error {
	if err := s.redis.ZRem(ctx, closingsKey, itemID.String()).Err(); err != nil {
		return fmt.Errorf("failed to unschedule item: %w", err)
	}
	return nil
}

// Start reschedules every active item and begins the scheduler loop
func (s *CloseScheduler) Start() {
	s.logger.Info().Dur("interval", s.interval).Msg("Starting close scheduler")

	if err := s.resync(s.ctx); err != nil {
		s.logger.Error().Err(err).Msg("Failed to reschedule active items")
	}

	s.wg.Add(1)
	go s.schedulerLoop()
}

// Stop gracefully stops the scheduler
func (s *CloseScheduler) Stop() {
	s.logger.Info().Msg("Stopping close scheduler")
	s.cancel()
	s.wg.Wait()
	s.pool.StopAndWait()
}

// resync adds all active items so closes missed while down still happen
func (s *CloseScheduler) resync(ctx context.Context) error {
	if s.items == nil {
		return nil
	}
	active := listing.StatusActive
	scheduled := 0
	for page := 1; ; page++ {
		items, err := s.items.List(ctx, outbound.ItemFilter{Status: &active, Page: page, PageSize: resyncPage})
		if err != nil {
			return err
		}
		for _, item := range items {
			if err := s.Schedule(ctx, item.ID, item.EndTime); err != nil {
				return err
			}
			scheduled++
		}
		if len(items) < resyncPage {
			break
		}
	}
	s.logger.Info().Int("count", scheduled).Msg("Active items rescheduled")
	return nil
}

func (s *CloseScheduler) schedulerLoop() {
	defer s.wg.Done()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.closeDueItems(s.ctx, time.Now())
		case <-s.ctx.Done():
			s.logger.Info().Msg("Scheduler loop stopped")
			return
		}
	}
}

// closeDueItems closes up to one batch of items due at now and waits for them
func (s *CloseScheduler) closeDueItems(ctx context.Context, now time.Time) int {
	due, err := s.redis.ZRangeByScore(ctx, closingsKey, &redis.ZRangeBy{
		Min:   "-inf",
		Max:   strconv.FormatInt(now.UnixMilli(), 10),
		Count: batchSize,
	}).Result()
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to get due items")
		return 0
	}

	if len(due) > 0 {
		s.logger.Debug().Int("count", len(due)).Msg("Found due items")
	}

	group := s.pool.Group()
	for _, member := range due {
		itemID, err := uuid.Parse(member)
		if err != nil {
			s.logger.Error().Err(err).Str("item_id", member).Msg("Invalid item ID in schedule")
			s.redis.ZRem(ctx, closingsKey, member)
			continue
		}
		group.Submit(func() {
			s.closeItem(ctx, itemID)
		})
	}
	group.Wait()
	return len(due)
}

// closeItem closes one item. The schedule entry survives failures other
// than a missing item so the next tick retries.
func (s *CloseScheduler) closeItem(ctx context.Context, itemID uuid.UUID) {
	s.logger.Info().Str("item_id", itemID.String()).Msg("Processing item close")

	outcome, err := s.closer.CloseDueItem(ctx, itemID)
	switch {
	case errors.Is(err, shared.ErrItemNotFound):
		s.logger.Warn().Str("item_id", itemID.String()).Msg("Scheduled item no longer exists")
	case errors.Is(err, shared.ErrItemStillOpen):
		s.logger.Debug().Str("item_id", itemID.String()).Msg("Item not yet due")
		return
	case err != nil:
		s.logger.Error().Err(err).Str("item_id", itemID.String()).Msg("Failed to close item")
		return
	default:
		logger := s.logger.Info().
			Str("item_id", itemID.String()).
			Str("status", outcome.Status).
			Bool("already_closed", outcome.AlreadyClosed)
		if outcome.FinalPrice != nil {
			logger = logger.Str("final_price", outcome.FinalPrice.String())
		}
		logger.Msg("Item closed by scheduler")
	}

	if err := s.redis.ZRem(ctx, closingsKey, itemID.String()).Err(); err != nil {
		s.logger.Error().Err(err).Str("item_id", itemID.String()).Msg("Failed to remove item from schedule")
	}
}
