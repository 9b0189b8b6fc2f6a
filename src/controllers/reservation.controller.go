package controllers

import (
	"bitlibro/src/config"
	"bitlibro/src/models"
	"bitlibro/src/repositories"
	"bitlibro/src/types"
	"bitlibro/src/utils"
	"context"
	"fmt"
	"log"
	"time"
)

const (
	EVENT_RESERVATION_CREATED = "reservation.created"
	EVENT_RESERVATION_UPDATED = "reservation.updated"
)

type ReservationEventPublisher interface {
	PublishReservationEvent(ctx context.Context, evt types.ReservationEvent)
}

type ReservationController struct {
	store  repositories.ReservationStore
	events ReservationEventPublisher
	now    func() time.Time
}

func NewReservationController(store repositories.ReservationStore, events ReservationEventPublisher) *ReservationController {
	return &ReservationController{store: store, events: events, now: time.Now}
}

// WithClock replaces the time source used for "today" and event stamps.
func (c *ReservationController) WithClock(now func() time.Time) *ReservationController {
	c.now = now
	return c
}

func (c *ReservationController) today() time.Time {
	return utils.StartOfDay(c.now())
}

func validateRange(start, end time.Time) []string {
	var details []string
	if !end.After(start) {
		details = append(details, "end_date must be after start_date")
	} else if end.Sub(start) > config.MAX_RESERVATION_DAYS*24*time.Hour {
		details = append(details, fmt.Sprintf("a reservation cannot span more than %d days", config.MAX_RESERVATION_DAYS))
	}
	return details
}

// ResolveClient returns the existing client or registers a new one on the given transaction.
func ResolveClient(tx repositories.ReservationTx, spec types.ClientSpec) (*models.User, error) {
	if err := spec.Validate(); err != nil {
		return nil, err
	}
	if spec.HasExisting() {
		return tx.FindClient(*spec.ClientID)
	}
	exists, err := tx.CiExists(spec.Ci)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, types.NewConflictError("ci %s is already registered", spec.Ci)
	}
	client := &models.User{
		Username: spec.Ci,
		Email:    fmt.Sprintf("%s@%s", spec.Ci, config.CLIENT_EMAIL_DOMAIN),
		Name:     spec.Name,
		LastName: spec.LastName,
		Ci:       spec.Ci,
		Role:     types.ROLE_CLIENT,
	}
	if err := tx.CreateClient(client); err != nil {
		return nil, utils.TranslatePgError(err)
	}
	return client, nil
}

func (c *ReservationController) CreateReservation(ctx context.Context, actor types.Actor, body *types.CreateReservationRequestBody) (*models.Reservation, error) {
	if !actor.Role.Can(types.CAP_CREATE_RESERVATIONS) {
		return nil, types.NewPermissionError("only employees can create reservations")
	}
	start, err := utils.ParseDate(body.StartDate)
	if err != nil {
		return nil, err
	}
	end, err := utils.ParseDate(body.EndDate)
	if err != nil {
		return nil, err
	}
	details := validateRange(start, end)
	if start.Before(c.today()) {
		details = append(details, "start_date cannot be in the past")
	}
	if len(details) > 0 {
		return nil, types.NewValidationErrors(details)
	}
	spec := body.ClientSpec()
	if err := spec.Validate(); err != nil {
		return nil, err
	}

	var created *models.Reservation
	err = c.store.Atomic(ctx, func(tx repositories.ReservationTx) error {
		book, err := tx.LockBook(body.BookID)
		if err != nil {
			return err
		}
		overlapping, err := tx.IsOverlapping(book.ID, start, end, 0)
		if err != nil {
			return err
		}
		if overlapping {
			return types.NewConflictError("book %d is already reserved between %s and %s", book.ID, body.StartDate, body.EndDate)
		}
		client, err := ResolveClient(tx, spec)
		if err != nil {
			return err
		}
		reservation := &models.Reservation{
			BookID:     book.ID,
			EmployeeID: actor.ID,
			ClientID:   client.ID,
			StartDate:  start,
			EndDate:    end,
			Status:     types.RESERVATION_PENDING,
		}
		if err := tx.CreateReservation(reservation); err != nil {
			return utils.TranslatePgError(err)
		}
		created, err = tx.LoadReservation(reservation.ID)
		return err
	})
	if err != nil {
		log.Printf("[Reservations] create by employee %d failed: %s\n", actor.ID, err.Error())
		return nil, err
	}
	c.publish(ctx, EVENT_RESERVATION_CREATED, created)
	return created, nil
}

func (c *ReservationController) UpdateReservation(ctx context.Context, actor types.Actor, id uint, body *types.UpdateReservationRequestBody) (*models.Reservation, error) {
	if !actor.Role.Can(types.CAP_UPDATE_RESERVATIONS) {
		return nil, types.NewPermissionError("you are not allowed to modify reservations")
	}
	var newEnd *time.Time
	if body.EndDate != nil {
		end, err := utils.ParseDate(*body.EndDate)
		if err != nil {
			return nil, err
		}
		newEnd = &end
	}
	if body.Status != nil && !body.Status.Valid() {
		return nil, types.NewValidationError("status must be one of Pending, Finished, Cancelled")
	}

	var updated *models.Reservation
	err := c.store.Atomic(ctx, func(tx repositories.ReservationTx) error {
		current, err := tx.LockReservation(id)
		if err != nil {
			return err
		}
		if !actor.Role.IsAdmin() && current.EmployeeID != actor.ID {
			return types.NewPermissionError("you can only modify your own reservations")
		}
		if current.Status.Terminal() {
			return types.NewConflictError("reservation %d is already %s", current.ID, current.Status)
		}

		next := *current
		if body.BookID != nil && *body.BookID != current.BookID {
			book, err := tx.LockBook(*body.BookID)
			if err != nil {
				return err
			}
			next.BookID = book.ID
		}
		if newEnd != nil {
			next.EndDate = *newEnd
		}
		if body.Status != nil {
			if !current.Status.CanTransitionTo(*body.Status) {
				return types.NewConflictError("cannot move reservation from %s to %s", current.Status, *body.Status)
			}
			next.Status = *body.Status
		}
		if details := validateRange(next.StartDate, next.EndDate); len(details) > 0 {
			return types.NewValidationErrors(details)
		}
		if next.IsPending() && (next.BookID != current.BookID || !next.EndDate.Equal(current.EndDate)) {
			overlapping, err := tx.IsOverlapping(next.BookID, next.StartDate, next.EndDate, current.ID)
			if err != nil {
				return err
			}
			if overlapping {
				return types.NewConflictError("book %d is already reserved for an overlapping period", next.BookID)
			}
		}
		next.UpdatedAt = c.now()
		if err := tx.SaveReservation(&next); err != nil {
			return utils.TranslatePgError(err)
		}
		updated, err = tx.LoadReservation(current.ID)
		return err
	})
	if err != nil {
		log.Printf("[Reservations] update of %d by %d failed: %s\n", id, actor.ID, err.Error())
		return nil, err
	}
	c.publish(ctx, EVENT_RESERVATION_UPDATED, updated)
	return updated, nil
}

func (c *ReservationController) FinishReservation(ctx context.Context, actor types.Actor, id uint) (*models.Reservation, error) {
	status := types.RESERVATION_FINISHED
	return c.UpdateReservation(ctx, actor, id, &types.UpdateReservationRequestBody{Status: &status})
}

func (c *ReservationController) CancelReservation(ctx context.Context, actor types.Actor, id uint) (*models.Reservation, error) {
	status := types.RESERVATION_CANCELLED
	return c.UpdateReservation(ctx, actor, id, &types.UpdateReservationRequestBody{Status: &status})
}

// GetReservation hides reservations owned by other employees behind NotFound.
func (c *ReservationController) GetReservation(ctx context.Context, actor types.Actor, id uint) (*models.Reservation, error) {
	if !actor.Role.Can(types.CAP_VIEW_RESERVATIONS) {
		return nil, types.NewPermissionError("you are not allowed to view reservations")
	}
	reservation, err := c.store.GetReservation(ctx, id)
	if err != nil {
		return nil, err
	}
	if !actor.Role.IsAdmin() && reservation.EmployeeID != actor.ID {
		return nil, types.NewNotFoundError("reservation %d not found", id)
	}
	return reservation, nil
}

func (c *ReservationController) ListReservations(ctx context.Context, actor types.Actor, q types.ReservationQueryFilters) (types.PagedResponse[models.Reservation], error) {
	if !actor.Role.Can(types.CAP_VIEW_RESERVATIONS) {
		return types.PagedResponse[models.Reservation]{}, types.NewPermissionError("you are not allowed to view reservations")
	}
	filter, err := filterFrom(q)
	if err != nil {
		return types.PagedResponse[models.Reservation]{}, err
	}
	if !actor.Role.IsAdmin() {
		filter.EmployeeID = actor.ID
		filter.EmployeeName = ""
	}
	filter.OrderBy = types.ORDER_CREATED_DESC
	return c.list(ctx, filter)
}

// ListClientReservations lists one client's reservations, newest start date first.
func (c *ReservationController) ListClientReservations(ctx context.Context, clientID uint, q types.ReservationQueryFilters) (types.PagedResponse[models.Reservation], error) {
	if _, err := c.store.GetUser(ctx, clientID, types.ROLE_CLIENT); err != nil {
		return types.PagedResponse[models.Reservation]{}, err
	}
	filter, err := filterFrom(q)
	if err != nil {
		return types.PagedResponse[models.Reservation]{}, err
	}
	filter.ClientID = clientID
	filter.ClientName = ""
	filter.OrderBy = types.ORDER_START_DESC
	return c.list(ctx, filter)
}

// ListEmployeeReservations lists one employee's reservations, newest start date first.
func (c *ReservationController) ListEmployeeReservations(ctx context.Context, employeeID uint, q types.ReservationQueryFilters) (types.PagedResponse[models.Reservation], error) {
	if _, err := c.store.GetUser(ctx, employeeID, types.ROLE_EMPLOYEE); err != nil {
		return types.PagedResponse[models.Reservation]{}, err
	}
	filter, err := filterFrom(q)
	if err != nil {
		return types.PagedResponse[models.Reservation]{}, err
	}
	filter.EmployeeID = employeeID
	filter.EmployeeName = ""
	filter.OrderBy = types.ORDER_START_DESC
	return c.list(ctx, filter)
}

func (c *ReservationController) CheckAvailability(ctx context.Context, bookID uint, q types.AvailabilityQuery) (*types.AvailabilityResponse, error) {
	start, err := utils.ParseDate(q.StartDate)
	if err != nil {
		return nil, err
	}
	end, err := utils.ParseDate(q.EndDate)
	if err != nil {
		return nil, err
	}
	if end.Before(start) {
		return nil, types.NewValidationError("end_date must not be before start_date")
	}
	exists, err := c.store.BookExists(ctx, bookID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, types.NewNotFoundError("book %d not found", bookID)
	}
	overlapping, err := c.store.IsOverlapping(ctx, bookID, start, end, 0)
	if err != nil {
		return nil, err
	}
	return &types.AvailabilityResponse{
		BookID:    bookID,
		StartDate: q.StartDate,
		EndDate:   q.EndDate,
		Available: !overlapping,
	}, nil
}

func (c *ReservationController) list(ctx context.Context, filter types.ReservationFilter) (types.PagedResponse[models.Reservation], error) {
	rows, total, err := c.store.ListReservations(ctx, filter)
	if err != nil {
		return types.PagedResponse[models.Reservation]{}, err
	}
	return types.NewPagedResponse(rows, filter.Page, filter.PageSize, total), nil
}

func filterFrom(q types.ReservationQueryFilters) (types.ReservationFilter, error) {
	page, size := utils.PageOf(q.PageQuery)
	from, err := utils.ParseOptionalDate(q.StartDate)
	if err != nil {
		return types.ReservationFilter{}, err
	}
	to, err := utils.ParseOptionalDate(q.EndDate)
	if err != nil {
		return types.ReservationFilter{}, err
	}
	return types.ReservationFilter{
		Status:       types.ReservationStatus(q.Status),
		ClientName:   q.ClientName,
		EmployeeName: q.EmployeeName,
		From:         from,
		To:           to,
		Page:         page,
		PageSize:     size,
	}, nil
}

func (c *ReservationController) publish(ctx context.Context, kind string, r *models.Reservation) {
	if c.events == nil || r == nil {
		return
	}
	c.events.PublishReservationEvent(ctx, r.Event(kind, c.now()))
}
