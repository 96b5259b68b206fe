package repository

import (
	"context"
	"errors"
	"fmt"
	"hotelmaint/src/models"
	"hotelmaint/src/models/scopes"
	"hotelmaint/src/types"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// NewGormStore expects a *gorm.DB opened with TranslateError so unique
// violations surface as gorm.ErrDuplicatedKey.
func NewGormStore(db *gorm.DB) *Store {
	return &Store{
		Tickets:       &gormTickets{db: db},
		Hotels:        &gormHotels{db: db},
		Users:         &gormUsers{db: db},
		Rooms:         &gormRooms{db: db},
		Checklists:    &gormChecklists{db: db},
		Notifications: &gormNotifications{db: db},
	}
}

func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey), errors.Is(err, gorm.ErrForeignKeyViolated):
		return fmt.Errorf("%w: %s", ErrConflict, err.Error())
	}
	return err
}

type gormTickets struct{ db *gorm.DB }

func (r *gormTickets) Create(ctx context.Context, t *models.Ticket) error {
	return translate(r.db.WithContext(ctx).Omit(clause.Associations).Create(t).Error)
}

func (r *gormTickets) Get(ctx context.Context, id uuid.UUID) (*models.Ticket, error) {
	var t models.Ticket
	if err := r.db.WithContext(ctx).
		Scopes(scopes.WithID(id)).
		Preload("Room").
		First(&t).Error; err != nil {
		return nil, translate(err)
	}
	return &t, nil
}

func (r *gormTickets) List(ctx context.Context, hotelIDs []uuid.UUID) ([]models.Ticket, error) {
	tickets := []models.Ticket{}
	if hotelIDs != nil && len(hotelIDs) == 0 {
		return tickets, nil
	}
	q := r.db.WithContext(ctx).Preload("Room").Order("created_at desc")
	if hotelIDs != nil {
		q = q.Scopes(scopes.WithHotels(hotelIDs...))
	}
	if err := q.Find(&tickets).Error; err != nil {
		return nil, err
	}
	return tickets, nil
}

func (r *gormTickets) Update(ctx context.Context, id uuid.UUID, updates map[string]any) (*models.Ticket, error) {
	var t models.Ticket
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Ticket{}).Scopes(scopes.WithID(id)).Updates(updates)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		return tx.Scopes(scopes.WithID(id)).Preload("Room").First(&t).Error
	})
	if err != nil {
		return nil, translate(err)
	}
	return &t, nil
}

func (r *gormTickets) AppendAttachment(ctx context.Context, id uuid.UUID, column string, url string) (*models.Ticket, error) {
	column, err := AttachmentColumn(column)
	if err != nil {
		return nil, err
	}
	var t models.Ticket
	err = r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).Scopes(scopes.WithID(id)).First(&t).Error; err != nil {
			return err
		}
		list := t.Attachments
		if column == "solution_attachments" {
			list = t.SolutionAttachments
		}
		list = append(list, url)
		if err := tx.Model(&t).Update(column, list).Error; err != nil {
			return err
		}
		if column == "solution_attachments" {
			t.SolutionAttachments = list
		} else {
			t.Attachments = list
		}
		return nil
	})
	if err != nil {
		return nil, translate(err)
	}
	return &t, nil
}

func (r *gormTickets) Delete(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Scopes(scopes.WithID(id)).Delete(&models.Ticket{})
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *gormTickets) EscalateStale(ctx context.Context, cutoff time.Time) ([]models.Ticket, int64, error) {
	var promoted []models.Ticket
	var unassigned int64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&promoted).
			Clauses(clause.Returning{}).
			Scopes(scopes.WithStatus(types.TICKET_NEW), scopes.CreatedBefore(cutoff), scopes.Assigned).
			Update("status", types.TICKET_IN_PROGRESS).Error; err != nil {
			return err
		}
		return tx.Model(&models.Ticket{}).
			Scopes(scopes.WithStatus(types.TICKET_NEW), scopes.CreatedBefore(cutoff)).
			Where("assignee_id IS NULL").
			Count(&unassigned).Error
	})
	if err != nil {
		return nil, 0, err
	}
	return promoted, unassigned, nil
}

type gormHotels struct{ db *gorm.DB }

func (r *gormHotels) List(ctx context.Context, ids []uuid.UUID) ([]models.Hotel, error) {
	hotels := []models.Hotel{}
	if ids != nil && len(ids) == 0 {
		return hotels, nil
	}
	q := r.db.WithContext(ctx).Order("name")
	if ids != nil {
		q = q.Where("id IN (?)", ids)
	}
	if err := q.Find(&hotels).Error; err != nil {
		return nil, err
	}
	return hotels, nil
}

func (r *gormHotels) Get(ctx context.Context, id uuid.UUID) (*models.Hotel, error) {
	var h models.Hotel
	if err := r.db.WithContext(ctx).Scopes(scopes.WithID(id)).First(&h).Error; err != nil {
		return nil, translate(err)
	}
	return &h, nil
}

func (r *gormHotels) Create(ctx context.Context, h *models.Hotel) error {
	return translate(r.db.WithContext(ctx).Omit(clause.Associations).Create(h).Error)
}

func (r *gormHotels) Update(ctx context.Context, id uuid.UUID, updates map[string]any) (*models.Hotel, error) {
	var h models.Hotel
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Hotel{}).Scopes(scopes.WithID(id)).Updates(updates)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		return tx.Scopes(scopes.WithID(id)).First(&h).Error
	})
	if err != nil {
		return nil, translate(err)
	}
	return &h, nil
}

type gormUsers struct{ db *gorm.DB }

func (r *gormUsers) List(ctx context.Context) ([]models.User, error) {
	users := []models.User{}
	if err := r.db.WithContext(ctx).Preload("Hotels").Order("name").Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

func (r *gormUsers) Get(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var u models.User
	if err := r.db.WithContext(ctx).Scopes(scopes.WithID(id)).Preload("Hotels").First(&u).Error; err != nil {
		return nil, translate(err)
	}
	return &u, nil
}

func (r *gormUsers) Create(ctx context.Context, u *models.User) error {
	return translate(r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		hotels := u.Hotels
		if err := tx.Omit(clause.Associations).Create(u).Error; err != nil {
			return err
		}
		for _, h := range hotels {
			if err := tx.Create(&models.UserHotel{UserID: u.ID, HotelID: h.ID}).Error; err != nil {
				return err
			}
		}
		return nil
	}))
}

func (r *gormUsers) Update(ctx context.Context, id uuid.UUID, updates map[string]any, hotelIDs *[]uuid.UUID) (*models.User, error) {
	var u models.User
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Scopes(scopes.WithID(id)).First(&u).Error; err != nil {
			return err
		}
		if len(updates) > 0 {
			if err := tx.Model(&u).Updates(updates).Error; err != nil {
				return err
			}
		}
		if hotelIDs != nil {
			if err := tx.Where("user_id = ?", id).Delete(&models.UserHotel{}).Error; err != nil {
				return err
			}
			for _, hid := range *hotelIDs {
				if err := tx.Create(&models.UserHotel{UserID: id, HotelID: hid}).Error; err != nil {
					return err
				}
			}
		}
		return tx.Scopes(scopes.WithID(id)).Preload("Hotels").First(&u).Error
	})
	if err != nil {
		return nil, translate(err)
	}
	return &u, nil
}

type gormRooms struct{ db *gorm.DB }

func (r *gormRooms) ListByHotel(ctx context.Context, hotelID uuid.UUID) ([]models.Room, error) {
	rooms := []models.Room{}
	if err := r.db.WithContext(ctx).
		Where("hotel_id = ?", hotelID).
		Order("floor, number").
		Find(&rooms).Error; err != nil {
		return nil, err
	}
	return rooms, nil
}

func (r *gormRooms) Get(ctx context.Context, id uuid.UUID) (*models.Room, error) {
	var room models.Room
	if err := r.db.WithContext(ctx).Scopes(scopes.WithID(id)).First(&room).Error; err != nil {
		return nil, translate(err)
	}
	return &room, nil
}

func (r *gormRooms) Create(ctx context.Context, room *models.Room) error {
	return translate(r.db.WithContext(ctx).Create(room).Error)
}

func (r *gormRooms) Delete(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Scopes(scopes.WithID(id)).Delete(&models.Room{})
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

type gormChecklists struct{ db *gorm.DB }

func (r *gormChecklists) ListByHotel(ctx context.Context, hotelID uuid.UUID) ([]models.Checklist, error) {
	lists := []models.Checklist{}
	if err := r.db.WithContext(ctx).
		Where("hotel_id = ?", hotelID).
		Preload("Rooms").
		Order("created_at desc").
		Find(&lists).Error; err != nil {
		return nil, err
	}
	return lists, nil
}

func (r *gormChecklists) Get(ctx context.Context, id uuid.UUID) (*models.Checklist, error) {
	var c models.Checklist
	if err := r.db.WithContext(ctx).
		Scopes(scopes.WithID(id)).
		Preload("Rooms").
		Preload("Rooms.Room").
		First(&c).Error; err != nil {
		return nil, translate(err)
	}
	return &c, nil
}

func (r *gormChecklists) Create(ctx context.Context, c *models.Checklist) error {
	return translate(r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		rooms := c.Rooms
		if err := tx.Omit(clause.Associations).Create(c).Error; err != nil {
			return err
		}
		for i := range rooms {
			rooms[i].ChecklistID = c.ID
		}
		if len(rooms) > 0 {
			if err := tx.Omit(clause.Associations).Create(&rooms).Error; err != nil {
				return err
			}
		}
		c.Rooms = rooms
		return nil
	}))
}

func (r *gormChecklists) SetRoomStatus(ctx context.Context, checklistID, roomID uuid.UUID, status types.RoomStatus, note string, by uuid.UUID) error {
	res := r.db.WithContext(ctx).
		Model(&models.ChecklistRoomStatus{}).
		Where("checklist_id = ? AND room_id = ?", checklistID, roomID).
		Updates(map[string]any{"status": status, "note": note, "updated_by": by})
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

type gormNotifications struct{ db *gorm.DB }

func (r *gormNotifications) Create(ctx context.Context, n *models.Notification) error {
	return translate(r.db.WithContext(ctx).Create(n).Error)
}

func (r *gormNotifications) ListForUser(ctx context.Context, userID uuid.UUID) ([]models.Notification, error) {
	list := []models.Notification{}
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at desc").
		Limit(100).
		Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

func (r *gormNotifications) MarkRead(ctx context.Context, userID, id uuid.UUID) error {
	res := r.db.WithContext(ctx).
		Model(&models.Notification{}).
		Scopes(scopes.WithID(id)).
		Where("user_id = ?", userID).
		Update("read", true)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *gormNotifications) MarkAllRead(ctx context.Context, userID uuid.UUID) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Notification{}).
		Where("user_id = ?", userID).
		Scopes(scopes.Unread).
		Update("read", true)
	return res.RowsAffected, res.Error
}
