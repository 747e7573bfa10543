package service

import (
	"context"
	"errors"
	"fmt"
	"roadbook/internal/domains/booking/model"
	"roadbook/internal/domains/booking/model/dto"
	roadModel "roadbook/internal/domains/road/model"
	slotModel "roadbook/internal/domains/slot/model"
	slotRepo "roadbook/internal/domains/slot/repository"
	"roadbook/shared"
	gDto "roadbook/shared/dto"
	"slices"
	"strconv"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog/log"
)

// plannedSlot is a slot touched by the request. New slots have no ledger row yet and are
// inserted at commit with their whole debit already applied.
type plannedSlot struct {
	slot  slotModel.Slot
	isNew bool
	debit int
}

func (p *plannedSlot) available() int {
	return p.slot.AvailableCapacity - p.debit
}

type plannedLine struct {
	slot     *plannedSlot
	quantity int
}

// ledgerPlan holds the validated intents of one transaction attempt.
type ledgerPlan struct {
	slots      []*plannedSlot
	byID       map[string]*plannedSlot
	byHour     map[string]*plannedSlot
	capacities map[string]int
	lines      []plannedLine
}

func newLedgerPlan() *ledgerPlan {
	return &ledgerPlan{
		byID:       map[string]*plannedSlot{},
		byHour:     map[string]*plannedSlot{},
		capacities: map[string]int{},
	}
}

func hourKey(roadID string, slotTime time.Time) string {
	return roadID + "@" + strconv.FormatInt(slotTime.Unix(), 10)
}

func (p *ledgerPlan) add(slot slotModel.Slot, isNew bool) *plannedSlot {
	planned := &plannedSlot{slot: slot, isNew: isNew}

	p.slots = append(p.slots, planned)
	p.byID[slot.ID] = planned
	p.byHour[hourKey(slot.RoadID, slot.SlotTime)] = planned

	return planned
}

func (p *ledgerPlan) quantity() int {
	total := 0
	for _, line := range p.lines {
		total += line.quantity
	}

	return total
}

func (p *ledgerPlan) roadIDs() []string {
	ids := make([]string, 0, len(p.slots))
	for _, planned := range p.slots {
		ids = append(ids, planned.slot.RoadID)
	}

	return slices.Compact(slices.Sorted(slices.Values(ids)))
}

func (p *ledgerPlan) eventLines() []model.EventLine {
	lines := make([]model.EventLine, 0, len(p.lines))
	for _, line := range p.lines {
		lines = append(lines, model.EventLine{
			SlotID:   line.slot.slot.ID,
			RoadID:   line.slot.slot.RoadID,
			SlotTime: line.slot.slot.SlotTime,
			Quantity: line.quantity,
		})
	}

	return lines
}

// plan validates every intent in request order against the locked ledger. Nothing is
// written here; repeated references to one slot accumulate their debit.
func (s *serviceImpl) plan(ctx context.Context, tx *sqlx.Tx, intents []dto.Intent, actor string, now time.Time) (*ledgerPlan, error) {
	plan := newLedgerPlan()

	for _, intent := range intents {
		planned, err := s.locate(ctx, tx, plan, intent, actor, now)
		if err != nil {
			return nil, err
		}

		if available := planned.available(); available < intent.Quantity {
			log.Warn().
				Str("road_id", intent.RoadID).
				Str("slot_id", planned.slot.ID).
				Int("available", available).
				Int("requested", intent.Quantity).
				Msg("booking rejected, capacity exceeded")

			if planned.isNew {
				return nil, roadCapacityExceeded(intent.RoadID, available, intent.Quantity)
			}

			return nil, slotCapacityExceeded(planned.slot.ID, available, intent.Quantity)
		}

		planned.debit += intent.Quantity
		plan.lines = append(plan.lines, plannedLine{slot: planned, quantity: intent.Quantity})
	}

	return plan, nil
}

// locate finds the slot an intent books, taking its row lock on first reference. An hour
// without a row gets a new slot sized with the effective road capacity.
func (s *serviceImpl) locate(ctx context.Context, tx *sqlx.Tx, plan *ledgerPlan, intent dto.Intent, actor string, now time.Time) (*plannedSlot, error) {
	if intent.SlotID != "" {
		if planned, ok := plan.byID[intent.SlotID]; ok {
			if planned.slot.RoadID != intent.RoadID || !planned.slot.SlotTime.Equal(intent.SlotTime) {
				return nil, slotNotFound(intent.SlotID)
			}

			return planned, nil
		}

		slot, err := s.slotRepo.GetForUpdateTx(ctx, tx, shared.FilterByID(intent.SlotID, slotModel.FieldID, slotModel.TableName))
		if err != nil {
			return nil, fmt.Errorf("failed to lock slot: %w", err)
		}

		if slot.ID == "" || slot.RoadID != intent.RoadID || !slot.SlotTime.Equal(intent.SlotTime) {
			log.Warn().Str("road_id", intent.RoadID).Str("slot_id", intent.SlotID).Msg("booking rejected, slot does not match road and hour")

			return nil, slotNotFound(intent.SlotID)
		}

		return plan.add(slot, false), nil
	}

	if planned, ok := plan.byHour[hourKey(intent.RoadID, intent.SlotTime)]; ok {
		return planned, nil
	}

	slot, err := s.slotRepo.GetForUpdateTx(ctx, tx, gDto.And(
		gDto.Filter{Field: slotModel.FieldRoadID, Value: intent.RoadID, Operator: gDto.FilterOperatorEq, Table: slotModel.TableName},
		gDto.Filter{Field: slotModel.FieldSlotTime, Value: intent.SlotTime, Operator: gDto.FilterOperatorEq, Table: slotModel.TableName},
	))
	if err != nil {
		return nil, fmt.Errorf("failed to lock slot: %w", err)
	}

	if slot.ID != "" {
		return plan.add(slot, false), nil
	}

	capacity, err := s.roadCapacity(ctx, tx, plan, intent.RoadID)
	if err != nil {
		return nil, err
	}

	return plan.add(slotModel.NewSlot(intent.RoadID, intent.SlotTime, capacity, 0, actor, now), true), nil
}

func (s *serviceImpl) roadCapacity(ctx context.Context, tx *sqlx.Tx, plan *ledgerPlan, roadID string) (int, error) {
	if capacity, ok := plan.capacities[roadID]; ok {
		return capacity, nil
	}

	road, err := s.roadRepo.GetTx(ctx, tx, shared.FilterByID(roadID, roadModel.FieldID, roadModel.TableName))
	if err != nil {
		return 0, fmt.Errorf("failed to get road: %w", err)
	}

	if road.ID == "" {
		log.Warn().Str("road_id", roadID).Msg("booking rejected, unknown road")

		return 0, roadNotFound(roadID)
	}

	capacity, fallback := road.EffectiveCapacity(s.cfg.Booking.FallbackHourlyCapacity)
	if fallback {
		log.Warn().Str("road_id", roadID).Int("capacity", capacity).Msg("road has no hourly capacity, using fallback")
	}

	plan.capacities[roadID] = capacity

	return capacity, nil
}

// commit writes the header, then the ledger in first reference order, then the lines.
func (s *serviceImpl) commit(ctx context.Context, tx *sqlx.Tx, booking model.Booking, plan *ledgerPlan) error {
	if err := s.repo.InsertTx(ctx, tx, booking); err != nil {
		return fmt.Errorf("failed to insert booking: %w", err)
	}

	for _, planned := range plan.slots {
		if planned.isNew {
			planned.slot.AvailableCapacity = planned.slot.Capacity - planned.debit

			if err := s.slotRepo.InsertTx(ctx, tx, planned.slot); err != nil {
				return fmt.Errorf("failed to create slot: %w", err)
			}

			continue
		}

		err := s.slotRepo.DebitTx(ctx, tx, planned.slot.ID, planned.debit)
		if errors.Is(err, slotRepo.ErrInsufficientCapacity) {
			return slotCapacityExceeded(planned.slot.ID, planned.slot.AvailableCapacity, planned.debit)
		}

		if err != nil {
			return fmt.Errorf("failed to debit slot: %w", err)
		}
	}

	lines := make([]model.BookingLine, 0, len(plan.lines))
	for _, line := range plan.lines {
		lines = append(lines, model.NewBookingLine(booking.ID, line.slot.slot.ID, line.quantity))
	}

	if err := s.lineRepo.InsertBulkTx(ctx, tx, lines); err != nil {
		return fmt.Errorf("failed to insert booking lines: %w", err)
	}

	return nil
}
