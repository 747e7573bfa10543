package service_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"roadbook/config"
	otelMocks "roadbook/infras/otel/mocks"
	pgMocks "roadbook/infras/postgres/mocks"
	bookingMocks "roadbook/internal/domains/booking/mocks"
	roadMocks "roadbook/internal/domains/road/mocks"
	roadModel "roadbook/internal/domains/road/model"
	slotMocks "roadbook/internal/domains/slot/mocks"
	"roadbook/internal/domains/slot/model"
	"roadbook/internal/domains/slot/model/dto"
	"roadbook/internal/domains/slot/service"
	"roadbook/shared"
	"roadbook/shared/cache"
	"roadbook/shared/constant"
	gDto "roadbook/shared/dto"
	"roadbook/shared/failure"
	"roadbook/shared/timezone"
)

const (
	roadOne  = "5b0e7a3c-9d21-4f6a-8c47-1e2f3a4b5c60"
	roadNine = "9c8b7a6d-5e4f-4a3b-8c2d-1e0f9a8b7c61"
	slotOne  = "0d1e2f3a-4b5c-4d6e-8f70-8192a3b4c5d6"
)

// memCache keeps JSON copies in memory and reports every Clear on a channel.
type memCache struct {
	mu      sync.Mutex
	items   map[string][]byte
	cleared chan string
}

func newMemCache() *memCache {
	return &memCache{items: map[string][]byte{}, cleared: make(chan string, 8)}
}

func (c *memCache) Save(_ context.Context, key string, value any, _ int) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.items[key] = data

	return nil
}

func (c *memCache) Get(_ context.Context, key string, value any) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	data, ok := c.items[key]
	if !ok {
		return fmt.Errorf("failed to get cache value: %w", cache.Nil)
	}

	return json.Unmarshal(data, value)
}

func (c *memCache) Delete(_ context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.items, key)

	return nil
}

func (c *memCache) Clear(_ context.Context, prefix string) error {
	c.mu.Lock()
	for key := range c.items {
		if strings.HasPrefix(key, strings.TrimSuffix(prefix, "*")) {
			delete(c.items, key)
		}
	}
	c.mu.Unlock()

	c.cleared <- prefix

	return nil
}

func (c *memCache) Increment(_ context.Context, key string) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var val int64
	if data, ok := c.items[key]; ok {
		if err := json.Unmarshal(data, &val); err != nil {
			return 0, err
		}
	}

	val++
	c.items[key] = []byte(strconv.FormatInt(val, 10))

	return val, nil
}

func (c *memCache) size() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return len(c.items)
}

type fixture struct {
	svc   service.Slot
	repo  *slotMocks.MockSlot
	roads *roadMocks.MockRoad
	lines *bookingMocks.MockLine
	cache *memCache
	cfg   *config.Config
}

func newFixture(t *testing.T, now time.Time) *fixture {
	t.Helper()

	ctrl := gomock.NewController(t)

	f := &fixture{
		repo:  slotMocks.NewMockSlot(ctrl),
		roads: roadMocks.NewMockRoad(ctrl),
		lines: bookingMocks.NewMockLine(ctrl),
		cache: newMemCache(),
		cfg:   &config.Config{},
	}

	f.cfg.Booking.DefaultHorizonDays = 1
	f.cfg.Booking.MaxHorizonDays = 30
	f.cfg.Booking.FallbackHourlyCapacity = 100

	f.svc = service.New(f.repo, f.roads, f.lines, pgMocks.NewTransactor(), f.cfg, f.cache, timezone.FixedClock(now), otelMocks.NewOtel())

	return f
}

func TestSlotService_GetRoadAvailability(t *testing.T) {
	halfPast := time.Date(2030, time.March, 4, 8, 30, 0, 0, time.UTC)
	onTheHour := time.Date(2030, time.March, 4, 8, 0, 0, 0, time.UTC)

	tests := []struct {
		name      string
		now       time.Time
		horizon   int
		capacity  int
		existing  []model.Slot
		wantCount int
		wantCap   int
		wantCode  int
		wantErr   error
	}{
		{
			name:      "all virtual from the next whole hour",
			now:       halfPast,
			capacity:  40,
			wantCount: 24,
			wantCap:   40,
		},
		{
			name:      "an hour equal to now plus horizon is excluded",
			now:       onTheHour,
			capacity:  40,
			wantCount: 23,
			wantCap:   40,
		},
		{
			name:      "road without capacity falls back",
			now:       halfPast,
			horizon:   2,
			wantCount: 48,
			wantCap:   100,
		},
		{
			name:     "existing slot reported as stored",
			now:      halfPast,
			capacity: 40,
			existing: []model.Slot{
				{ID: slotOne, RoadID: roadOne, SlotTime: time.Date(2030, time.March, 4, 10, 0, 0, 0, time.UTC), Capacity: 35, AvailableCapacity: 0},
			},
			wantCount: 24,
			wantCap:   40,
		},
		{
			name:     "horizon above maximum",
			now:      halfPast,
			horizon:  31,
			wantCode: http.StatusBadRequest,
			wantErr:  service.ErrInvalidHorizon,
		},
		{
			name:     "negative horizon",
			now:      halfPast,
			horizon:  -1,
			wantCode: http.StatusBadRequest,
			wantErr:  service.ErrInvalidHorizon,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, tt.now)

			if tt.wantErr == nil {
				f.roads.EXPECT().Get(gomock.Any(), gomock.Any()).Return(roadModel.Road{ID: roadOne, HourlyCapacity: tt.capacity}, nil)
				f.repo.EXPECT().GetAll(gomock.Any(), gomock.Any(), gomock.Any()).Return(tt.existing, nil)
			}

			res, err := f.svc.GetRoadAvailability(context.Background(), roadOne, tt.horizon)

			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				assert.Equal(t, tt.wantCode, failure.GetCode(err))

				return
			}

			require.NoError(t, err)
			require.Len(t, res, tt.wantCount)

			first := timezone.StartOfHour(tt.now).Add(time.Hour)
			assert.Equal(t, timezone.Format(first, constant.DateFormat), res[0].StartTime)
			assert.Equal(t, timezone.Format(first.Add(time.Hour), constant.DateFormat), res[0].EndTime)

			for i, slot := range res {
				start, err := time.Parse(constant.DateFormat, slot.StartTime)
				require.NoError(t, err)
				assert.True(t, start.After(tt.now), "slot %d starts before now", i)

				if slot.SlotID != nil {
					assert.Equal(t, slotOne, *slot.SlotID)
					assert.Equal(t, 35, slot.Capacity)
					assert.Zero(t, slot.AvailableCapacity)
					assert.False(t, slot.Available)

					continue
				}

				assert.Equal(t, tt.wantCap, slot.Capacity)
				assert.Equal(t, tt.wantCap, slot.AvailableCapacity)
				assert.True(t, slot.Available)
			}
		})
	}
}

func TestSlotService_GetRoadAvailability_UnknownRoad(t *testing.T) {
	f := newFixture(t, time.Date(2030, time.March, 4, 8, 30, 0, 0, time.UTC))

	f.roads.EXPECT().Get(gomock.Any(), gomock.Any()).Return(roadModel.Road{}, nil)

	_, err := f.svc.GetRoadAvailability(context.Background(), roadNine, 0)
	require.ErrorIs(t, err, service.ErrRoadNotFound)
	assert.Equal(t, http.StatusNotFound, failure.GetCode(err))
}

func TestSlotService_GetRoadAvailability_Cached(t *testing.T) {
	f := newFixture(t, time.Date(2030, time.March, 4, 8, 30, 0, 0, time.UTC))

	f.roads.EXPECT().Get(gomock.Any(), gomock.Any()).Return(roadModel.Road{ID: roadOne, HourlyCapacity: 5}, nil).Times(1)
	f.repo.EXPECT().GetAll(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil, nil).Times(1)

	first, err := f.svc.GetRoadAvailability(context.Background(), roadOne, 1)
	require.NoError(t, err)
	assert.Equal(t, 1, f.cache.size())

	second, err := f.svc.GetRoadAvailability(context.Background(), roadOne, 1)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestSlotService_GetRoadAvailability_InvalidatedDuringRead(t *testing.T) {
	now := time.Date(2030, time.March, 4, 8, 30, 0, 0, time.UTC)
	f := newFixture(t, now)
	ctx := context.Background()

	booked := model.Slot{ID: slotOne, RoadID: roadOne, SlotTime: time.Date(2030, time.March, 4, 9, 0, 0, 0, time.UTC), Capacity: 5, AvailableCapacity: 1}

	f.roads.EXPECT().Get(gomock.Any(), gomock.Any()).Return(roadModel.Road{ID: roadOne, HourlyCapacity: 5}, nil).Times(2)
	gomock.InOrder(
		f.repo.EXPECT().
			GetAll(gomock.Any(), gomock.Any(), gomock.Any()).
			DoAndReturn(func(context.Context, gDto.QueryParams, gDto.FilterGroup) ([]model.Slot, error) {
				// a booking commits and invalidates after the ledger was read
				shared.InvalidateAvailability(ctx, f.cache, roadOne)

				return nil, nil
			}),
		f.repo.EXPECT().GetAll(gomock.Any(), gomock.Any(), gomock.Any()).Return([]model.Slot{booked}, nil),
	)

	stale, err := f.svc.GetRoadAvailability(ctx, roadOne, 1)
	require.NoError(t, err)
	assert.Nil(t, stale[0].SlotID)
	assert.Equal(t, "slot:availability:"+roadOne+"*", waitCleared(t, f.cache))

	fresh, err := f.svc.GetRoadAvailability(ctx, roadOne, 1)
	require.NoError(t, err)
	require.NotNil(t, fresh[0].SlotID)
	assert.Equal(t, slotOne, *fresh[0].SlotID)
	assert.Equal(t, 1, fresh[0].AvailableCapacity)

	cached, err := f.svc.GetRoadAvailability(ctx, roadOne, 1)
	require.NoError(t, err)
	assert.Equal(t, fresh, cached)
}

func TestSlotService_MalformedID(t *testing.T) {
	f := newFixture(t, time.Date(2030, time.March, 4, 8, 30, 0, 0, time.UTC))
	ctx := context.Background()

	_, err := f.svc.GetRoadAvailability(ctx, "road-1", 1)
	require.ErrorIs(t, err, service.ErrRoadNotFound)
	assert.Equal(t, http.StatusNotFound, failure.GetCode(err))

	_, err = f.svc.Get(ctx, "slot-1")
	require.ErrorIs(t, err, service.ErrSlotNotFound)
	assert.Equal(t, http.StatusNotFound, failure.GetCode(err))

	err = f.svc.UpdateCapacity(ctx, "slot-1", dto.UpdateSlotRequest{Capacity: ptr(3)})
	require.ErrorIs(t, err, service.ErrSlotNotFound)
	assert.Equal(t, http.StatusNotFound, failure.GetCode(err))

	err = f.svc.Delete(ctx, "1; DROP TABLE road_booking_slots")
	require.ErrorIs(t, err, service.ErrSlotNotFound)
	assert.Equal(t, http.StatusNotFound, failure.GetCode(err))
}

func TestSlotService_Get(t *testing.T) {
	tests := []struct {
		name      string
		setupMock func(f *fixture)
		wantCode  int
	}{
		{
			name: "slot found",
			setupMock: func(f *fixture) {
				f.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(model.Slot{ID: slotOne, RoadID: roadOne, Capacity: 10, AvailableCapacity: 7}, nil)
			},
		},
		{
			name: "slot missing",
			setupMock: func(f *fixture) {
				f.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(model.Slot{}, nil)
			},
			wantCode: http.StatusNotFound,
		},
		{
			name: "repository error",
			setupMock: func(f *fixture) {
				f.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(model.Slot{}, errors.New("database error"))
			},
			wantCode: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, time.Now())
			tt.setupMock(f)

			_, err := f.svc.Get(context.Background(), slotOne)

			if tt.wantCode != 0 {
				require.Error(t, err)
				assert.Equal(t, tt.wantCode, failure.GetCode(err))

				return
			}

			require.NoError(t, err)
		})
	}
}

func TestSlotService_GetAvailableSlots(t *testing.T) {
	f := newFixture(t, time.Date(2030, time.March, 4, 8, 30, 0, 0, time.UTC))

	f.roads.EXPECT().Get(gomock.Any(), gomock.Any()).Return(roadModel.Road{ID: roadOne, HourlyCapacity: 5}, nil)
	f.roads.EXPECT().Get(gomock.Any(), gomock.Any()).Return(roadModel.Road{}, nil)
	f.repo.EXPECT().GetAll(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil, nil)

	res, err := f.svc.GetAvailableSlots(context.Background(), []string{roadOne, roadNine, roadOne, "abc"}, 1)
	require.NoError(t, err)
	require.Len(t, res, 3)
	assert.Len(t, res[roadOne], 24)
	assert.NotNil(t, res[roadNine])
	assert.Empty(t, res[roadNine])
	assert.NotNil(t, res["abc"])
	assert.Empty(t, res["abc"])
}

func TestSlotService_GetAvailableSlots_StorageFailure(t *testing.T) {
	f := newFixture(t, time.Date(2030, time.March, 4, 8, 30, 0, 0, time.UTC))

	f.roads.EXPECT().Get(gomock.Any(), gomock.Any()).Return(roadModel.Road{}, errors.New("connection refused"))

	_, err := f.svc.GetAvailableSlots(context.Background(), []string{roadOne}, 1)
	require.Error(t, err)
	assert.Equal(t, http.StatusServiceUnavailable, failure.GetCode(err))
}

func TestSlotService_UpdateCapacity(t *testing.T) {
	locked := model.Slot{ID: slotOne, RoadID: roadOne, Capacity: 10, AvailableCapacity: 4}

	tests := []struct {
		name      string
		capacity  *int
		setupMock func(f *fixture)
		wantCode  int
		wantErr   error
	}{
		{
			name:     "keeps booked units",
			capacity: ptr(8),
			setupMock: func(f *fixture) {
				f.repo.EXPECT().GetForUpdateTx(gomock.Any(), gomock.Any(), gomock.Any()).Return(locked, nil)
				f.repo.EXPECT().
					UpdateTx(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, _ any, req map[string]any, _ any) error {
						assert.Equal(t, 8, req[model.FieldCapacity])
						assert.Equal(t, 2, req[model.FieldAvailableCapacity])

						return nil
					})
			},
		},
		{
			name:     "below booked",
			capacity: ptr(5),
			setupMock: func(f *fixture) {
				f.repo.EXPECT().GetForUpdateTx(gomock.Any(), gomock.Any(), gomock.Any()).Return(locked, nil)
			},
			wantCode: http.StatusBadRequest,
			wantErr:  service.ErrCapacityBelowBooked,
		},
		{
			name:     "slot missing",
			capacity: ptr(5),
			setupMock: func(f *fixture) {
				f.repo.EXPECT().GetForUpdateTx(gomock.Any(), gomock.Any(), gomock.Any()).Return(model.Slot{}, nil)
			},
			wantCode: http.StatusNotFound,
			wantErr:  service.ErrSlotNotFound,
		},
		{
			name:      "negative capacity",
			capacity:  ptr(-1),
			setupMock: func(*fixture) {},
			wantCode:  http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, time.Now())
			tt.setupMock(f)

			err := f.svc.UpdateCapacity(context.Background(), slotOne, dto.UpdateSlotRequest{Capacity: tt.capacity})

			if tt.wantCode != 0 {
				require.Error(t, err)
				assert.Equal(t, tt.wantCode, failure.GetCode(err))

				if tt.wantErr != nil {
					assert.ErrorIs(t, err, tt.wantErr)
				}

				return
			}

			require.NoError(t, err)
			assert.Equal(t, "slot:availability:"+roadOne+"*", waitCleared(t, f.cache))
		})
	}
}

func TestSlotService_Delete(t *testing.T) {
	locked := model.Slot{ID: slotOne, RoadID: roadOne, Capacity: 10, AvailableCapacity: 10}

	tests := []struct {
		name      string
		setupMock func(f *fixture)
		wantCode  int
	}{
		{
			name: "unreferenced slot",
			setupMock: func(f *fixture) {
				f.repo.EXPECT().GetForUpdateTx(gomock.Any(), gomock.Any(), gomock.Any()).Return(locked, nil)
				f.lines.EXPECT().ExistTx(gomock.Any(), gomock.Any(), gomock.Any()).Return(false, nil)
				f.repo.EXPECT().DeleteTx(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil)
			},
		},
		{
			name: "referenced slot",
			setupMock: func(f *fixture) {
				f.repo.EXPECT().GetForUpdateTx(gomock.Any(), gomock.Any(), gomock.Any()).Return(locked, nil)
				f.lines.EXPECT().ExistTx(gomock.Any(), gomock.Any(), gomock.Any()).Return(true, nil)
			},
			wantCode: http.StatusConflict,
		},
		{
			name: "lookup fails",
			setupMock: func(f *fixture) {
				f.repo.EXPECT().GetForUpdateTx(gomock.Any(), gomock.Any(), gomock.Any()).Return(model.Slot{}, errors.New("database error"))
			},
			wantCode: http.StatusServiceUnavailable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, time.Now())
			tt.setupMock(f)

			err := f.svc.Delete(context.Background(), slotOne)

			if tt.wantCode != 0 {
				require.Error(t, err)
				assert.Equal(t, tt.wantCode, failure.GetCode(err))

				return
			}

			require.NoError(t, err)
			assert.Equal(t, "slot:availability:"+roadOne+"*", waitCleared(t, f.cache))
		})
	}
}

func ptr(n int) *int {
	return &n
}

func waitCleared(t *testing.T, c *memCache) string {
	t.Helper()

	select {
	case prefix := <-c.cleared:
		return prefix
	case <-time.After(time.Second):
		t.Fatal("cache was not invalidated")
	}

	return ""
}
