package metrics

import (
	"cmp"
	"fmt"
	"hotelmaint/src/models"
	"hotelmaint/src/types"
	"math"
	"slices"
	"time"

	"github.com/google/uuid"
)

const topRoomsLimit = 10

// SLAHours is the resolution target for a priority.
func SLAHours(p types.TicketPriority) int64 {
	switch p {
	case types.PRIORITY_URGENT:
		return 12
	case types.PRIORITY_HIGH:
		return 24
	}
	return 48
}

// WithinSLA is false for tickets that have no resolution time.
func WithinSLA(t *models.Ticket) bool {
	h, ok := t.ResolutionHours()
	return ok && h <= SLAHours(t.Priority)
}

type HotelCount struct {
	HotelID uuid.UUID `json:"hotel_id"`
	Name    string    `json:"name"`
	Count   int       `json:"count"`
}

type HotelCategories struct {
	HotelID    uuid.UUID                    `json:"hotel_id"`
	Name       string                       `json:"name"`
	Categories map[types.TicketCategory]int `json:"categories"`
}

type Resolution struct {
	Key                string  `json:"key"`
	Name               string  `json:"name,omitempty"`
	Completed          int     `json:"completed"`
	AvgResolutionHours float64 `json:"avg_resolution_hours"`
	SLAPercentage      float64 `json:"sla_percentage"`
}

type WeekPoint struct {
	Week      string `json:"week"`
	Created   int    `json:"created"`
	Completed int    `json:"completed"`
}

type AgingBuckets struct {
	UpToDay     int `json:"0_24h"`
	UpToThree   int `json:"1_3d"`
	UpToSeven   int `json:"3_7d"`
	OverSeven   int `json:"over_7d"`
}

type HotelAging struct {
	HotelID uuid.UUID    `json:"hotel_id"`
	Name    string       `json:"name"`
	Buckets AgingBuckets `json:"buckets"`
}

type RoomCount struct {
	RoomID  uuid.UUID `json:"room_id"`
	HotelID uuid.UUID `json:"hotel_id"`
	Number  string    `json:"number"`
	Count   int       `json:"count"`
}

type TechnicianStats struct {
	UserID             uuid.UUID `json:"user_id"`
	Name               string    `json:"name"`
	Completed          int       `json:"completed"`
	AvgResolutionHours float64   `json:"avg_resolution_hours"`
}

type Dashboard struct {
	Total                  int     `json:"total"`
	Open                   int     `json:"open"`
	AvgResolutionHours     float64 `json:"avg_resolution_hours"`
	SLAPercentage          float64 `json:"sla_percentage"`
	HighPriorityPercentage float64 `json:"high_priority_percentage"`
	ScheduledCount         int     `json:"scheduled_count"`

	ByHotel           []HotelCount      `json:"by_hotel"`
	CategoriesByHotel []HotelCategories `json:"categories_by_hotel"`
	ByPriority        []Resolution      `json:"by_priority"`
	ResolutionByHotel []Resolution      `json:"resolution_by_hotel"`
	Weekly            []WeekPoint       `json:"weekly"`
	BacklogAging      []HotelAging      `json:"backlog_aging"`
	TopRooms          []RoomCount       `json:"top_rooms"`
	Technicians       []TechnicianStats `json:"technicians"`
}

// resolution accumulates whole hours; averages are only taken at the end.
type resolution struct {
	sum    int64
	n      int
	within int
}

type techAcc struct {
	completed int
	res       resolution
}

func (r *resolution) add(t *models.Ticket) {
	h, ok := t.ResolutionHours()
	if !ok {
		return
	}
	r.sum += h
	r.n++
	if h <= SLAHours(t.Priority) {
		r.within++
	}
}

func (r resolution) avg() float64 {
	if r.n == 0 {
		return 0
	}
	return float64(r.sum) / float64(r.n)
}

func (r resolution) sla() float64 {
	return percent(r.within, r.n)
}

func percent(part, whole int) float64 {
	if whole == 0 {
		return 0
	}
	return float64(part) * 100 / float64(whole)
}

func isoWeek(t time.Time) string {
	y, w := t.ISOWeek()
	return fmt.Sprintf("%04d-W%02d", y, w)
}

func agingBucket(b *AgingBuckets, hours int64) {
	switch {
	case hours < 24:
		b.UpToDay++
	case hours < 72:
		b.UpToThree++
	case hours < 168:
		b.UpToSeven++
	default:
		b.OverSeven++
	}
}

// Aggregate computes every KPI over tickets. hotels and users only supply
// display names; unknown ids keep an empty name.
func Aggregate(tickets []models.Ticket, hotels []models.Hotel, users []models.User, now time.Time) Dashboard {
	hotelNames := make(map[uuid.UUID]string, len(hotels))
	for _, h := range hotels {
		hotelNames[h.ID] = h.Name
	}
	userNames := make(map[uuid.UUID]string, len(users))
	for _, u := range users {
		userNames[u.ID] = u.Name
	}

	d := Dashboard{
		Total:             len(tickets),
		ByHotel:           []HotelCount{},
		CategoriesByHotel: []HotelCategories{},
		ByPriority:        []Resolution{},
		ResolutionByHotel: []Resolution{},
		Weekly:            []WeekPoint{},
		BacklogAging:      []HotelAging{},
		TopRooms:          []RoomCount{},
		Technicians:       []TechnicianStats{},
	}
	var (
		overall    resolution
		high       int
		perHotel   = map[uuid.UUID]int{}
		categories = map[uuid.UUID]map[types.TicketCategory]int{}
		byPriority = map[types.TicketPriority]*resolution{}
		byHotel    = map[uuid.UUID]*resolution{}
		weeks      = map[string]*WeekPoint{}
		aging      = map[uuid.UUID]*AgingBuckets{}
		rooms      = map[uuid.UUID]*RoomCount{}
		techs      = map[uuid.UUID]*techAcc{}
	)
	week := func(key string) *WeekPoint {
		if w, ok := weeks[key]; ok {
			return w
		}
		w := &WeekPoint{Week: key}
		weeks[key] = w
		return w
	}

	for i := range tickets {
		t := &tickets[i]
		// cancelled tickets are closed too; neither counts toward the backlog
		if !t.Status.Terminal() {
			d.Open++
			if _, ok := aging[t.HotelID]; !ok {
				aging[t.HotelID] = &AgingBuckets{}
			}
			agingBucket(aging[t.HotelID], int64(now.Sub(t.CreatedAt).Hours()))
		}
		if t.Status == types.TICKET_SCHEDULED {
			d.ScheduledCount++
		}
		if t.Priority.High() {
			high++
		}
		perHotel[t.HotelID]++
		if categories[t.HotelID] == nil {
			categories[t.HotelID] = map[types.TicketCategory]int{}
		}
		categories[t.HotelID][t.Category]++

		overall.add(t)
		if byPriority[t.Priority] == nil {
			byPriority[t.Priority] = &resolution{}
		}
		byPriority[t.Priority].add(t)
		if byHotel[t.HotelID] == nil {
			byHotel[t.HotelID] = &resolution{}
		}
		byHotel[t.HotelID].add(t)

		if !t.CreatedAt.IsZero() {
			week(isoWeek(t.CreatedAt)).Created++
		}
		if t.Status == types.TICKET_COMPLETED && t.ClosedAt != nil {
			week(isoWeek(*t.ClosedAt)).Completed++
		}

		if t.RoomID != nil {
			rc, ok := rooms[*t.RoomID]
			if !ok {
				rc = &RoomCount{RoomID: *t.RoomID, HotelID: t.HotelID}
				if t.Room != nil {
					rc.Number = t.Room.Number
				}
				rooms[*t.RoomID] = rc
			}
			rc.Count++
		}

		if t.AssigneeID != nil && t.Status == types.TICKET_COMPLETED {
			if techs[*t.AssigneeID] == nil {
				techs[*t.AssigneeID] = &techAcc{}
			}
			techs[*t.AssigneeID].completed++
			techs[*t.AssigneeID].res.add(t)
		}
	}

	d.AvgResolutionHours = overall.avg()
	d.SLAPercentage = overall.sla()
	d.HighPriorityPercentage = percent(high, d.Total)

	hotelIDs := sortedHotels(perHotel, hotelNames)
	for _, id := range hotelIDs {
		d.ByHotel = append(d.ByHotel, HotelCount{HotelID: id, Name: hotelNames[id], Count: perHotel[id]})
		d.CategoriesByHotel = append(d.CategoriesByHotel, HotelCategories{HotelID: id, Name: hotelNames[id], Categories: categories[id]})
		r := byHotel[id]
		d.ResolutionByHotel = append(d.ResolutionByHotel, Resolution{
			Key: id.String(), Name: hotelNames[id], Completed: r.n, AvgResolutionHours: r.avg(), SLAPercentage: r.sla(),
		})
		if a, ok := aging[id]; ok {
			d.BacklogAging = append(d.BacklogAging, HotelAging{HotelID: id, Name: hotelNames[id], Buckets: *a})
		}
	}

	for _, p := range types.TicketPriorities {
		r, ok := byPriority[p]
		if !ok {
			continue
		}
		d.ByPriority = append(d.ByPriority, Resolution{
			Key: p.String(), Completed: r.n, AvgResolutionHours: r.avg(), SLAPercentage: r.sla(),
		})
	}

	for _, w := range weeks {
		d.Weekly = append(d.Weekly, *w)
	}
	slices.SortFunc(d.Weekly, func(a, b WeekPoint) int { return cmp.Compare(a.Week, b.Week) })

	for _, rc := range rooms {
		d.TopRooms = append(d.TopRooms, *rc)
	}
	slices.SortFunc(d.TopRooms, func(a, b RoomCount) int {
		if c := cmp.Compare(b.Count, a.Count); c != 0 {
			return c
		}
		return cmp.Compare(a.Number, b.Number)
	})
	if len(d.TopRooms) > topRoomsLimit {
		d.TopRooms = d.TopRooms[:topRoomsLimit]
	}

	for id, acc := range techs {
		d.Technicians = append(d.Technicians, TechnicianStats{
			UserID: id, Name: userNames[id], Completed: acc.completed, AvgResolutionHours: acc.res.avg(),
		})
	}
	slices.SortFunc(d.Technicians, func(a, b TechnicianStats) int {
		if c := cmp.Compare(b.Completed, a.Completed); c != 0 {
			return c
		}
		return cmp.Compare(a.Name, b.Name)
	})
	return d
}

func sortedHotels(counts map[uuid.UUID]int, names map[uuid.UUID]string) []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(counts))
	for id := range counts {
		ids = append(ids, id)
	}
	slices.SortFunc(ids, func(a, b uuid.UUID) int {
		if c := cmp.Compare(names[a], names[b]); c != 0 {
			return c
		}
		return cmp.Compare(a.String(), b.String())
	})
	return ids
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

// Rounded returns a copy for display: averages and percentages rounded half
// away from zero to one decimal.
func (d Dashboard) Rounded() Dashboard {
	out := d
	out.AvgResolutionHours = round1(d.AvgResolutionHours)
	out.SLAPercentage = round1(d.SLAPercentage)
	out.HighPriorityPercentage = round1(d.HighPriorityPercentage)
	out.ByPriority = roundResolutions(d.ByPriority)
	out.ResolutionByHotel = roundResolutions(d.ResolutionByHotel)
	out.Technicians = make([]TechnicianStats, len(d.Technicians))
	for i, t := range d.Technicians {
		t.AvgResolutionHours = round1(t.AvgResolutionHours)
		out.Technicians[i] = t
	}
	return out
}

func roundResolutions(in []Resolution) []Resolution {
	out := make([]Resolution, len(in))
	for i, r := range in {
		r.AvgResolutionHours = round1(r.AvgResolutionHours)
		r.SLAPercentage = round1(r.SLAPercentage)
		out[i] = r
	}
	return out
}
