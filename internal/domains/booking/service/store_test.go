package service_test

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"slices"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"roadbook/infras/postgres"
	"roadbook/internal/domains/booking/model"
	roadModel "roadbook/internal/domains/road/model"
	slotModel "roadbook/internal/domains/slot/model"
	slotRepo "roadbook/internal/domains/slot/repository"
	userModel "roadbook/internal/domains/user/model"
	gDto "roadbook/shared/dto"
)

const maxTxAttempts = 3

var errDuplicateSlot = &pq.Error{
	Code:       "23505",
	Message:    `duplicate key value violates unique constraint "road_booking_slots_road_id_slot_time_key"`,
	Constraint: "road_booking_slots_road_id_slot_time_key",
}

// uuidColumn fails the way Postgres does when a malformed id is compared to a UUID column.
func uuidColumn(id string) error {
	if id == "" {
		return nil
	}

	if _, err := uuid.Parse(id); err != nil || len(id) != 36 {
		return &pq.Error{Code: "22P02", Message: fmt.Sprintf("invalid input syntax for type uuid: %q", id)}
	}

	return nil
}

// store is an in-memory ledger honouring the repository contracts the booking service relies
// on. Transactions are serialized and roll back to a snapshot on error, which stands in for
// row locks plus serializable isolation. Retryable failures run the unit of work again.
type store struct {
	txMu sync.Mutex
	mu   sync.Mutex

	roads    map[string]roadModel.Road
	users    map[string]userModel.User
	slots    map[string]slotModel.Slot
	bookings map[string]model.Booking
	lines    map[string]model.BookingLine

	failLineInsert error

	// racingSlot is committed by another writer the moment this store is asked to insert a
	// slot for the same road and hour. It survives the rollback of the losing transaction.
	racingSlot *slotModel.Slot
	committed  []slotModel.Slot

	attempts int
}

type snapshot struct {
	slots    map[string]slotModel.Slot
	bookings map[string]model.Booking
	lines    map[string]model.BookingLine
}

func newStore() *store {
	return &store{
		roads:    map[string]roadModel.Road{},
		users:    map[string]userModel.User{},
		slots:    map[string]slotModel.Slot{},
		bookings: map[string]model.Booking{},
		lines:    map[string]model.BookingLine{},
	}
}

func (s *store) WithTx(_ context.Context, fn func(tx *sqlx.Tx) error) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()

	var err error

	for range maxTxAttempts {
		if err = s.attempt(fn); err == nil || !postgres.IsRetryable(err) {
			return err
		}
	}

	return fmt.Errorf("%w: %w", postgres.ErrConflict, err)
}

func (s *store) attempt(fn func(tx *sqlx.Tx) error) (err error) {
	s.mu.Lock()
	s.attempts++
	s.committed = nil
	snap := snapshot{slots: maps.Clone(s.slots), bookings: maps.Clone(s.bookings), lines: maps.Clone(s.lines)}
	s.mu.Unlock()

	defer func() {
		if p := recover(); p != nil {
			s.restore(snap)
			panic(p)
		}

		if err != nil {
			s.restore(snap)
		}
	}()

	return fn(nil)
}

func (s *store) restore(snap snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.slots = snap.slots
	s.bookings = snap.bookings
	s.lines = snap.lines

	for _, slot := range s.committed {
		s.slots[slot.ID] = slot
	}

	s.committed = nil
}

func (s *store) attemptCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.attempts
}

// booked sums line quantities per slot.
func (s *store) booked() map[string]int {
	s.mu.Lock()
	defer s.mu.Unlock()

	res := map[string]int{}
	for _, line := range s.lines {
		res[line.SlotID] += line.Quantity
	}

	return res
}

func (s *store) slotAt(roadID string, at time.Time) (slotModel.Slot, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, slot := range s.slots {
		if slot.RoadID == roadID && slot.SlotTime.Equal(at) {
			return slot, true
		}
	}

	return slotModel.Slot{}, false
}

func (s *store) counts() (slots, bookings, lines int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.slots), len(s.bookings), len(s.lines)
}

// filterValues collects the values of every filter on field with the given operator.
func filterValues(group gDto.FilterGroup, field, operator string) []any {
	values := []any{}

	for _, f := range group.Filters {
		switch fill := f.(type) {
		case gDto.Filter:
			if fill.Field == field && fill.Operator == operator {
				values = append(values, fill.Value)
			}
		case gDto.FilterGroup:
			values = append(values, filterValues(fill, field, operator)...)
		}
	}

	return values
}

func eqString(group gDto.FilterGroup, field string) (string, bool) {
	values := filterValues(group, field, gDto.FilterOperatorEq)
	if len(values) == 0 {
		return "", false
	}

	str, ok := values[0].(string)

	return str, ok
}

func matchSlot(slot slotModel.Slot, group gDto.FilterGroup) bool {
	if id, ok := eqString(group, slotModel.FieldID); ok && slot.ID != id {
		return false
	}

	if roadID, ok := eqString(group, slotModel.FieldRoadID); ok && slot.RoadID != roadID {
		return false
	}

	for _, v := range filterValues(group, slotModel.FieldSlotTime, gDto.FilterOperatorEq) {
		if !slot.SlotTime.Equal(v.(time.Time)) {
			return false
		}
	}

	for _, v := range filterValues(group, slotModel.FieldSlotTime, gDto.FilterOperatorGreater) {
		if !slot.SlotTime.After(v.(time.Time)) {
			return false
		}
	}

	for _, v := range filterValues(group, slotModel.FieldSlotTime, gDto.FilterOperatorLess) {
		if !slot.SlotTime.Before(v.(time.Time)) {
			return false
		}
	}

	return true
}

type roadStore struct{ *store }

func (r roadStore) Get(_ context.Context, filter gDto.FilterGroup) (roadModel.Road, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	id, _ := eqString(filter, roadModel.FieldID)
	if err := uuidColumn(id); err != nil {
		return roadModel.Road{}, err
	}

	return r.roads[id], nil
}

func (r roadStore) GetTx(ctx context.Context, _ *sqlx.Tx, filter gDto.FilterGroup) (roadModel.Road, error) {
	return r.Get(ctx, filter)
}

func (r roadStore) GetAll(context.Context, gDto.QueryParams, gDto.FilterGroup) ([]roadModel.Road, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	return slices.Collect(maps.Values(r.roads)), nil
}

func (r roadStore) Count(context.Context, gDto.FilterGroup) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	return len(r.roads), nil
}

func (r roadStore) Update(_ context.Context, req map[string]any, filter gDto.FilterGroup) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	id, _ := eqString(filter, roadModel.FieldID)
	road := r.roads[id]

	if capacity, ok := req[roadModel.FieldHourlyCapacity].(int); ok {
		road.HourlyCapacity = capacity
	}

	r.roads[id] = road

	return nil
}

type userStore struct{ *store }

func (u userStore) Get(_ context.Context, filter gDto.FilterGroup) (userModel.User, error) {
	u.mu.Lock()
	defer u.mu.Unlock()

	id, _ := eqString(filter, userModel.FieldID)
	if err := uuidColumn(id); err != nil {
		return userModel.User{}, err
	}

	return u.users[id], nil
}

func (u userStore) Count(context.Context, gDto.FilterGroup) (int, error) {
	u.mu.Lock()
	defer u.mu.Unlock()

	return len(u.users), nil
}

type slotStore struct{ *store }

func (s slotStore) Get(_ context.Context, filter gDto.FilterGroup) (slotModel.Slot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, field := range []string{slotModel.FieldID, slotModel.FieldRoadID} {
		if id, ok := eqString(filter, field); ok {
			if err := uuidColumn(id); err != nil {
				return slotModel.Slot{}, err
			}
		}
	}

	for _, slot := range s.slots {
		if matchSlot(slot, filter) {
			return slot, nil
		}
	}

	return slotModel.Slot{}, nil
}

func (s slotStore) GetAll(_ context.Context, _ gDto.QueryParams, filter gDto.FilterGroup) ([]slotModel.Slot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	res := []slotModel.Slot{}
	for _, slot := range s.slots {
		if matchSlot(slot, filter) {
			res = append(res, slot)
		}
	}

	sort.Slice(res, func(i, j int) bool { return res[i].SlotTime.Before(res[j].SlotTime) })

	return res, nil
}

func (s slotStore) Count(ctx context.Context, filter gDto.FilterGroup) (int, error) {
	res, err := s.GetAll(ctx, gDto.QueryParams{}, filter)

	return len(res), err
}

func (s slotStore) GetForUpdateTx(ctx context.Context, _ *sqlx.Tx, filter gDto.FilterGroup) (slotModel.Slot, error) {
	return s.Get(ctx, filter)
}

func (s slotStore) InsertTx(_ context.Context, _ *sqlx.Tx, slot slotModel.Slot) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if racing := s.racingSlot; racing != nil && racing.RoadID == slot.RoadID && racing.SlotTime.Equal(slot.SlotTime) {
		s.slots[racing.ID] = *racing
		s.committed = append(s.committed, *racing)
		s.racingSlot = nil
	}

	for _, existing := range s.slots {
		if existing.RoadID == slot.RoadID && existing.SlotTime.Equal(slot.SlotTime) {
			return errDuplicateSlot
		}
	}

	s.slots[slot.ID] = slot

	return nil
}

func (s slotStore) UpdateTx(_ context.Context, _ *sqlx.Tx, req map[string]any, filter gDto.FilterGroup) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	id, _ := eqString(filter, slotModel.FieldID)
	slot := s.slots[id]

	if capacity, ok := req[slotModel.FieldCapacity].(int); ok {
		slot.Capacity = capacity
	}

	if available, ok := req[slotModel.FieldAvailableCapacity].(int); ok {
		slot.AvailableCapacity = available
	}

	s.slots[id] = slot

	return nil
}

func (s slotStore) DeleteTx(_ context.Context, _ *sqlx.Tx, filter gDto.FilterGroup) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	id, _ := eqString(filter, slotModel.FieldID)
	delete(s.slots, id)

	return nil
}

func (s slotStore) DebitTx(_ context.Context, _ *sqlx.Tx, slotID string, quantity int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	slot, ok := s.slots[slotID]
	if !ok || slot.AvailableCapacity < quantity {
		return slotRepo.ErrInsufficientCapacity
	}

	slot.AvailableCapacity -= quantity
	s.slots[slotID] = slot

	return nil
}

func (s slotStore) CreditTx(_ context.Context, _ *sqlx.Tx, slotID string, quantity int) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	slot, ok := s.slots[slotID]
	if !ok || slot.AvailableCapacity+quantity > slot.Capacity {
		return "", slotRepo.ErrCapacityOverflow
	}

	slot.AvailableCapacity += quantity
	s.slots[slotID] = slot

	return slot.RoadID, nil
}

type bookingStore struct{ *store }

func (b bookingStore) Get(_ context.Context, filter gDto.FilterGroup) (model.Booking, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	id, _ := eqString(filter, model.FieldID)
	if err := uuidColumn(id); err != nil {
		return model.Booking{}, err
	}

	return b.bookings[id], nil
}

func (b bookingStore) GetForUpdateTx(ctx context.Context, _ *sqlx.Tx, filter gDto.FilterGroup) (model.Booking, error) {
	return b.Get(ctx, filter)
}

func (b bookingStore) GetAll(context.Context, gDto.QueryParams, gDto.FilterGroup) ([]model.Booking, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	return slices.Collect(maps.Values(b.bookings)), nil
}

func (b bookingStore) Count(context.Context, gDto.FilterGroup) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	return len(b.bookings), nil
}

func (b bookingStore) InsertTx(_ context.Context, _ *sqlx.Tx, booking model.Booking) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.bookings[booking.ID] = booking

	return nil
}

func (b bookingStore) DeleteTx(_ context.Context, _ *sqlx.Tx, filter gDto.FilterGroup) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	id, _ := eqString(filter, model.FieldID)
	delete(b.bookings, id)

	return nil
}

func (b bookingStore) GetSummaries(_ context.Context, userID string) ([]model.Summary, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	res := []model.Summary{}

	for _, booking := range b.bookings {
		if booking.UserID != userID {
			continue
		}

		summary := model.Summary{BookingID: booking.ID, Origin: booking.Origin, Destination: booking.Destination, CreatedAt: booking.CreatedAt}
		roads := map[string]bool{}

		for _, line := range b.lines {
			if line.BookingID != booking.ID {
				continue
			}

			slot := b.slots[line.SlotID]
			roads[slot.RoadID] = true
			summary.LineCount++
			summary.Quantity = max(summary.Quantity, line.Quantity)

			if !summary.StartTime.Valid || slot.SlotTime.Before(summary.StartTime.Time) {
				summary.StartTime.Time, summary.StartTime.Valid = slot.SlotTime, true
			}

			if !summary.LastSlotTime.Valid || slot.SlotTime.After(summary.LastSlotTime.Time) {
				summary.LastSlotTime.Time, summary.LastSlotTime.Valid = slot.SlotTime, true
			}
		}

		summary.RoadCount = len(roads)
		res = append(res, summary)
	}

	return res, nil
}

type lineStore struct{ *store }

func (l lineStore) GetAll(_ context.Context, _ gDto.QueryParams, filter gDto.FilterGroup) ([]model.BookingLine, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	bookingID, _ := eqString(filter, model.LineFieldBookingID)

	res := []model.BookingLine{}
	for _, line := range l.lines {
		if line.BookingID == bookingID {
			res = append(res, line)
		}
	}

	return res, nil
}

func (l lineStore) GetAllTx(ctx context.Context, _ *sqlx.Tx, params gDto.QueryParams, filter gDto.FilterGroup) ([]model.BookingLine, error) {
	return l.GetAll(ctx, params, filter)
}

func (l lineStore) Count(context.Context, gDto.FilterGroup) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	return len(l.lines), nil
}

func (l lineStore) ExistTx(_ context.Context, _ *sqlx.Tx, filter gDto.FilterGroup) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	slotID, _ := eqString(filter, model.LineFieldSlotID)
	for _, line := range l.lines {
		if line.SlotID == slotID {
			return true, nil
		}
	}

	return false, nil
}

func (l lineStore) InsertBulkTx(_ context.Context, _ *sqlx.Tx, lines []model.BookingLine) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.failLineInsert != nil {
		return l.failLineInsert
	}

	for _, line := range lines {
		l.lines[line.ID] = line
	}

	return nil
}

func (l lineStore) DeleteTx(_ context.Context, _ *sqlx.Tx, filter gDto.FilterGroup) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	bookingID, _ := eqString(filter, model.LineFieldBookingID)
	for id, line := range l.lines {
		if line.BookingID == bookingID {
			delete(l.lines, id)
		}
	}

	return nil
}

func (l lineStore) GetDetails(_ context.Context, bookingID string) ([]model.LineDetail, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	res := []model.LineDetail{}
	for _, line := range l.lines {
		if line.BookingID != bookingID {
			continue
		}

		slot := l.slots[line.SlotID]
		res = append(res, model.LineDetail{
			ID:        line.ID,
			BookingID: line.BookingID,
			SlotID:    line.SlotID,
			Quantity:  line.Quantity,
			SlotTime:  slot.SlotTime,
			RoadID:    slot.RoadID,
			RoadName:  l.roads[slot.RoadID].Name,
		})
	}

	return res, nil
}

func (l lineStore) CountByBooking(_ context.Context, bookingIDs []string) (map[string]int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	res := map[string]int{}
	for _, line := range l.lines {
		if slices.Contains(bookingIDs, line.BookingID) {
			res[line.BookingID]++
		}
	}

	return res, nil
}

// noopCache never hits and ignores writes.
type noopCache struct{}

func (noopCache) Save(context.Context, string, any, int) error { return nil }
func (noopCache) Get(context.Context, string, any) error       { return errors.New("cache miss") }
func (noopCache) Delete(context.Context, string) error         { return nil }
func (noopCache) Clear(context.Context, string) error          { return nil }

func (noopCache) Increment(context.Context, string) (int64, error) { return 0, nil }
