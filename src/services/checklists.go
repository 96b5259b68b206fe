package services

import (
	"context"
	"hotelmaint/src/models"
	"hotelmaint/src/policy"
	"hotelmaint/src/repository"
	"hotelmaint/src/session"
	"hotelmaint/src/types"
	"strings"

	"github.com/google/uuid"
)

type ChecklistService struct {
	Store *repository.Store
}

type ChecklistView struct {
	*models.Checklist
	Summary models.ChecklistSummary `json:"summary"`
}

func view(c *models.Checklist) *ChecklistView {
	return &ChecklistView{Checklist: c, Summary: c.Summary()}
}

func (c *ChecklistService) List(ctx context.Context, sess *session.Session, hotelID uuid.UUID) ([]models.Checklist, error) {
	if !policy.CanSeeHotel(sess, hotelID) {
		return nil, repository.ErrNotFound
	}
	return c.Store.Checklists.ListByHotel(ctx, hotelID)
}

// Create opens a checklist with every room of the hotel not verified.
func (c *ChecklistService) Create(ctx context.Context, sess *session.Session, hotelID uuid.UUID, body *types.CreateChecklistRequestBody) (*ChecklistView, error) {
	if !policy.CanManageChecklists(sess, hotelID) {
		return nil, repository.ErrForbidden
	}
	if _, err := c.Store.Hotels.Get(ctx, hotelID); err != nil {
		return nil, err
	}
	rooms, err := c.Store.Rooms.ListByHotel(ctx, hotelID)
	if err != nil {
		return nil, err
	}
	checklist := &models.Checklist{
		HotelID:   hotelID,
		Title:     strings.TrimSpace(body.Title),
		CreatedBy: sess.UserID,
	}
	for _, r := range rooms {
		checklist.Rooms = append(checklist.Rooms, models.ChecklistRoomStatus{RoomID: r.ID, Status: types.ROOM_NOT_VERIFIED})
	}
	if err := c.Store.Checklists.Create(ctx, checklist); err != nil {
		return nil, err
	}
	return c.Get(ctx, sess, checklist.ID)
}

func (c *ChecklistService) Get(ctx context.Context, sess *session.Session, id uuid.UUID) (*ChecklistView, error) {
	checklist, err := c.Store.Checklists.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !policy.CanSeeHotel(sess, checklist.HotelID) {
		return nil, repository.ErrNotFound
	}
	return view(checklist), nil
}

func (c *ChecklistService) SetRoomStatus(ctx context.Context, sess *session.Session, id, roomID uuid.UUID, body *types.UpdateChecklistRoomRequestBody) (*ChecklistView, error) {
	checklist, err := c.Get(ctx, sess, id)
	if err != nil {
		return nil, err
	}
	if !policy.CanManageChecklists(sess, checklist.HotelID) {
		return nil, repository.ErrForbidden
	}
	status := types.RoomStatus(body.Status)
	if !status.Valid() {
		return nil, ErrInvalidReference
	}
	if err := c.Store.Checklists.SetRoomStatus(ctx, id, roomID, status, body.Note, sess.UserID); err != nil {
		return nil, err
	}
	return c.Get(ctx, sess, id)
}
