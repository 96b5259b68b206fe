package services

import (
	"cmp"
	"context"
	"fmt"
	"hotelmaint/src/config"
	"hotelmaint/src/models"
	"hotelmaint/src/policy"
	"hotelmaint/src/repository"
	"hotelmaint/src/session"
	"hotelmaint/src/types"
	"log"
	"slices"
	"strings"

	"github.com/google/uuid"
)

// DirectoryService manages hotels, users and rooms.
type DirectoryService struct {
	Store *repository.Store
	Cache session.Cache
	Hub   *session.Hub
}

func (d *DirectoryService) ListHotels(ctx context.Context, sess *session.Session) ([]models.Hotel, error) {
	hotels, err := d.Store.Hotels.List(ctx, policy.VisibleHotelIDs(sess))
	if err != nil {
		return nil, err
	}
	return policy.VisibleHotels(sess, hotels), nil
}

func (d *DirectoryService) CreateHotel(ctx context.Context, sess *session.Session, body *types.CreateHotelRequestBody) (*models.Hotel, error) {
	if !policy.CanManageDirectory(sess) {
		return nil, repository.ErrForbidden
	}
	hotel := &models.Hotel{
		Name:    strings.TrimSpace(body.Name),
		Address: body.Address,
		Phone:   body.Phone,
		Email:   body.Email,
		TaxID:   body.TaxID,
		Active:  true,
	}
	if err := d.Store.Hotels.Create(ctx, hotel); err != nil {
		return nil, err
	}
	return hotel, nil
}

func (d *DirectoryService) UpdateHotel(ctx context.Context, sess *session.Session, id uuid.UUID, body *types.CreateHotelRequestBody) (*models.Hotel, error) {
	if !policy.CanManageDirectory(sess) {
		return nil, repository.ErrForbidden
	}
	return d.Store.Hotels.Update(ctx, id, map[string]any{
		"name":    strings.TrimSpace(body.Name),
		"address": body.Address,
		"phone":   body.Phone,
		"email":   body.Email,
		"tax_id":  body.TaxID,
	})
}

// DeactivateHotel hides the hotel from new tickets. Existing tickets stay.
func (d *DirectoryService) DeactivateHotel(ctx context.Context, sess *session.Session, id uuid.UUID) (*models.Hotel, error) {
	if !policy.CanManageDirectory(sess) {
		return nil, repository.ErrForbidden
	}
	return d.Store.Hotels.Update(ctx, id, map[string]any{"active": false})
}

func (d *DirectoryService) ListUsers(ctx context.Context, sess *session.Session) ([]models.User, error) {
	if !policy.CanManageDirectory(sess) {
		return nil, repository.ErrForbidden
	}
	return d.Store.Users.List(ctx)
}

func (d *DirectoryService) checkHotels(ctx context.Context, ids []uuid.UUID) error {
	for _, id := range ids {
		if _, err := d.Store.Hotels.Get(ctx, id); err != nil {
			return fmt.Errorf("%w: hotel %s", ErrInvalidReference, id)
		}
	}
	return nil
}

func (d *DirectoryService) CreateUser(ctx context.Context, sess *session.Session, body *types.CreateUserRequestBody) (*models.User, error) {
	if !policy.CanManageDirectory(sess) {
		return nil, repository.ErrForbidden
	}
	role, err := types.ParseRole(body.Role)
	if err != nil {
		return nil, err
	}
	if err := d.checkHotels(ctx, body.HotelIDs); err != nil {
		return nil, err
	}
	locale := body.Locale
	if locale == "" {
		locale = config.DEFAULT_LOCALE
	}
	user := &models.User{
		Email:  strings.ToLower(strings.TrimSpace(body.Email)),
		Name:   strings.TrimSpace(body.Name),
		Role:   role,
		Locale: locale,
		Active: true,
	}
	if body.ID != nil {
		user.ID = *body.ID
	}
	for _, id := range body.HotelIDs {
		user.Hotels = append(user.Hotels, models.Hotel{ID: id})
	}
	if err := d.Store.Users.Create(ctx, user); err != nil {
		return nil, err
	}
	return d.Store.Users.Get(ctx, user.ID)
}

// UpdateUser changes role, locale, activation or hotel assignments. The
// user's cached session is evicted and live sessions are told to refresh.
func (d *DirectoryService) UpdateUser(ctx context.Context, sess *session.Session, id uuid.UUID, body *types.UpdateUserRequestBody) (*models.User, error) {
	if !policy.CanManageDirectory(sess) {
		return nil, repository.ErrForbidden
	}
	updates := map[string]any{}
	if body.Name != nil {
		updates["name"] = strings.TrimSpace(*body.Name)
	}
	if body.Role != nil {
		role, err := types.ParseRole(*body.Role)
		if err != nil {
			return nil, err
		}
		updates["role"] = role
	}
	if body.Locale != nil {
		updates["locale"] = *body.Locale
	}
	if body.Active != nil {
		updates["active"] = *body.Active
	}
	if body.HotelIDs != nil {
		if err := d.checkHotels(ctx, *body.HotelIDs); err != nil {
			return nil, err
		}
	}
	user, err := d.Store.Users.Update(ctx, id, updates, body.HotelIDs)
	if err != nil {
		return nil, err
	}
	if d.Cache != nil {
		if err := d.Cache.Evict(ctx, id); err != nil {
			log.Printf("Error evicting session %s: %s\n", id, err.Error())
		}
	}
	if d.Hub != nil {
		d.Hub.Publish(session.FromUser(user))
	}
	return user, nil
}

func (d *DirectoryService) Me(ctx context.Context, sess *session.Session) (*models.User, error) {
	return d.Store.Users.Get(ctx, sess.UserID)
}

// ListFloors returns the hotel's rooms grouped by floor, lowest first.
func (d *DirectoryService) ListFloors(ctx context.Context, sess *session.Session, hotelID uuid.UUID) ([]models.Floor, error) {
	if !policy.CanSeeHotel(sess, hotelID) {
		return nil, repository.ErrNotFound
	}
	rooms, err := d.Store.Rooms.ListByHotel(ctx, hotelID)
	if err != nil {
		return nil, err
	}
	return groupFloors(rooms), nil
}

func groupFloors(rooms []models.Room) []models.Floor {
	byFloor := map[int][]models.Room{}
	for _, r := range rooms {
		byFloor[r.Floor] = append(byFloor[r.Floor], r)
	}
	floors := make([]models.Floor, 0, len(byFloor))
	for floor, rs := range byFloor {
		slices.SortFunc(rs, func(a, b models.Room) int { return cmp.Compare(a.Number, b.Number) })
		floors = append(floors, models.Floor{Floor: floor, Rooms: rs})
	}
	slices.SortFunc(floors, func(a, b models.Floor) int { return cmp.Compare(a.Floor, b.Floor) })
	return floors
}

func (d *DirectoryService) CreateRoom(ctx context.Context, sess *session.Session, hotelID uuid.UUID, body *types.CreateRoomRequestBody) (*models.Room, error) {
	if !policy.CanManageDirectory(sess) {
		return nil, repository.ErrForbidden
	}
	if _, err := d.Store.Hotels.Get(ctx, hotelID); err != nil {
		return nil, err
	}
	room := &models.Room{HotelID: hotelID, Number: strings.TrimSpace(body.Number), Floor: body.Floor}
	if err := d.Store.Rooms.Create(ctx, room); err != nil {
		return nil, err
	}
	return room, nil
}

func (d *DirectoryService) DeleteRoom(ctx context.Context, sess *session.Session, id uuid.UUID) error {
	if !policy.CanManageDirectory(sess) {
		return repository.ErrForbidden
	}
	return d.Store.Rooms.Delete(ctx, id)
}
