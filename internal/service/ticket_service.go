package service

import (
	"context"
	"fmt"
	"time"

	"clinic-booking/internal/domain/entity"
	"clinic-booking/internal/domain/repository"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// TicketCounter hands out sequential queue ticket numbers per calendar day.
type TicketCounter interface {
	// Next returns the next number for day. db is used to seed the counter
	// from the highest stored ticket when the redis key is missing.
	Next(ctx context.Context, db *gorm.DB, day time.Time) (int, error)
	// Resync raises the counters of the given days to the highest stored ticket.
	Resync(ctx context.Context, db *gorm.DB, days ...time.Time) error
}

const (
	RedisTicketKeyPrefix = "queue:ticket:"

	// Counters outlive their day so late bookings near midnight still find them.
	ticketKeyTTL = 48 * time.Hour

	redisTicketTimeout = 5 * time.Second
)

// incrExistingScript increments the counter only when it exists and returns -1 otherwise.
var incrExistingScript = redis.NewScript(`
	if redis.call('EXISTS', KEYS[1]) == 0 then
		return -1
	end
	return redis.call('INCR', KEYS[1])
`)

// seedIncrScript sets the counter to ARGV[1] when missing, then increments it.
var seedIncrScript = redis.NewScript(`
	redis.call('SET', KEYS[1], ARGV[1], 'NX', 'EX', ARGV[2])
	return redis.call('INCR', KEYS[1])
`)

// raiseScript moves the counter up to ARGV[1] and never down, so numbers
// already handed out by concurrent bookings are not reissued.
var raiseScript = redis.NewScript(`
	local current = tonumber(redis.call('GET', KEYS[1]) or '0')
	local floor = tonumber(ARGV[1])
	if current < floor then
		redis.call('SET', KEYS[1], floor, 'EX', ARGV[2])
		return floor
	end
	redis.call('EXPIRE', KEYS[1], ARGV[2])
	return current
`)

type redisTicketCounter struct {
	redisClient *redis.Client
	ticketRepo  repository.QueueTicketRepository
	log         *logrus.Logger
}

func NewRedisTicketCounter(redisClient *redis.Client, ticketRepo repository.QueueTicketRepository, log *logrus.Logger) TicketCounter {
	return &redisTicketCounter{
		redisClient: redisClient,
		ticketRepo:  ticketRepo,
		log:         log,
	}
}

// TicketKey is the redis key of the counter for day, e.g. queue:ticket:2026-10-19.
func TicketKey(day time.Time) string {
	return RedisTicketKeyPrefix + day.Format(entity.DateLayout)
}

func (c *redisTicketCounter) Next(ctx context.Context, db *gorm.DB, day time.Time) (int, error) {
	key := TicketKey(day)

	rctx, cancel := context.WithTimeout(ctx, redisTicketTimeout)
	defer cancel()

	n, err := incrExistingScript.Run(rctx, c.redisClient, []string{key}).Int()
	if err != nil {
		c.log.Warnf("Failed to increment ticket counter %s: %+v", key, err)
		return 0, fmt.Errorf("increment ticket counter: %w", err)
	}
	if n > 0 {
		return n, nil
	}

	max, err := c.ticketRepo.MaxNumber(ctx, db, day)
	if err != nil {
		c.log.Warnf("Failed to read highest ticket for %s: %+v", day.Format(entity.DateLayout), err)
		return 0, err
	}

	n, err = seedIncrScript.Run(rctx, c.redisClient, []string{key}, max, int(ticketKeyTTL.Seconds())).Int()
	if err != nil {
		c.log.Warnf("Failed to seed ticket counter %s: %+v", key, err)
		return 0, fmt.Errorf("seed ticket counter: %w", err)
	}

	c.log.Debugf("Seeded ticket counter %s from %d", key, max)
	return n, nil
}

func (c *redisTicketCounter) Resync(ctx context.Context, db *gorm.DB, days ...time.Time) error {
	start := time.Now()

	for _, day := range days {
		max, err := c.ticketRepo.MaxNumber(ctx, db, day)
		if err != nil {
			c.log.Errorf("Failed to read highest ticket for %s: %+v", day.Format(entity.DateLayout), err)
			return fmt.Errorf("read highest ticket: %w", err)
		}

		key := TicketKey(day)
		value, err := raiseScript.Run(ctx, c.redisClient, []string{key}, max, int(ticketKeyTTL.Seconds())).Int()
		if err != nil {
			c.log.Errorf("Failed to resync ticket counter %s: %+v", key, err)
			return fmt.Errorf("resync ticket counter %s: %w", key, err)
		}

		c.log.Debugf("Ticket counter %s at %d (db max %d)", key, value, max)
	}

	c.log.Infof("Ticket counters resynced: %d day(s) in %v", len(days), time.Since(start))
	return nil
}
