package holiday

import (
	"context"
	"errors"
	"time"

	holidayerrors "go-workforce/internal/holiday/errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

const (
	existsKeyPrefix = "holiday:exists:"
	existsCacheTTL  = 12 * time.Hour
)

//go:generate mockgen -source=holiday_service.go -destination=mock/holiday_service_mock.go -package=mock
type Service interface {
	AddHoliday(ctx context.Context, req CreateHolidayRequest) (HolidayResponse, error)
	GetAll(ctx context.Context) ([]HolidayResponse, error)
	Exists(ctx context.Context, date time.Time) (bool, error)
}

type service struct {
	repo   Repository
	rdb    *redis.Client
	sf     *singleflight.Group
	logger *zap.Logger
}

func NewService(repo Repository, rdb *redis.Client, logger ...*zap.Logger) Service {
	l := zap.L().Named("holiday.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("holiday.service")
	}
	return &service{
		repo:   repo,
		rdb:    rdb,
		sf:     &singleflight.Group{},
		logger: l,
	}
}

func (s *service) AddHoliday(ctx context.Context, req CreateHolidayRequest) (HolidayResponse, error) {
	date, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		return HolidayResponse{}, holidayerrors.ErrInvalidDateFormat
	}

	h := &Holiday{
		ID:   uuid.New(),
		Date: date,
		Name: req.Name,
	}

	if err := s.repo.Create(ctx, h); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return HolidayResponse{}, holidayerrors.ErrHolidayExists
		}
		s.logger.Error("add holiday persist failed", zap.Error(err))
		return HolidayResponse{}, err
	}

	s.invalidate(ctx, date)
	s.logger.Info("holiday added",
		zap.String("date", req.Date),
		zap.String("name", req.Name),
	)

	return mapToResponse(*h), nil
}

func (s *service) GetAll(ctx context.Context) ([]HolidayResponse, error) {
	holidays, err := s.repo.FindAll(ctx)
	if err != nil {
		return nil, err
	}

	resp := make([]HolidayResponse, len(holidays))
	for i, h := range holidays {
		resp[i] = mapToResponse(h)
	}
	return resp, nil
}

// Exists answers whether the date is a non-working day. Lookups are
// cached per date; concurrent misses for the same date collapse into a
// single repo round trip.
func (s *service) Exists(ctx context.Context, date time.Time) (bool, error) {
	key := existsKeyPrefix + date.Format("2006-01-02")

	if s.rdb != nil {
		cached, err := s.rdb.Get(ctx, key).Result()
		if err == nil {
			return cached == "1", nil
		}
		if !errors.Is(err, redis.Nil) {
			s.logger.Warn("holiday cache read failed", zap.Error(err))
		}
	}

	v, err, _ := s.sf.Do(key, func() (interface{}, error) {
		exists, err := s.repo.Exists(ctx, date)
		if err != nil {
			return false, err
		}

		if s.rdb != nil {
			val := "0"
			if exists {
				val = "1"
			}
			if err := s.rdb.Set(ctx, key, val, existsCacheTTL).Err(); err != nil {
				s.logger.Warn("holiday cache write failed", zap.Error(err))
			}
		}

		return exists, nil
	})
	if err != nil {
		return false, err
	}

	return v.(bool), nil
}

func (s *service) invalidate(ctx context.Context, date time.Time) {
	if s.rdb == nil {
		return
	}
	key := existsKeyPrefix + date.Format("2006-01-02")
	if err := s.rdb.Del(ctx, key).Err(); err != nil {
		s.logger.Warn("holiday cache invalidate failed", zap.Error(err))
	}
}

func mapToResponse(h Holiday) HolidayResponse {
	return HolidayResponse{
		ID:   h.ID.String(),
		Date: h.Date.Format("2006-01-02"),
		Name: h.Name,
	}
}
