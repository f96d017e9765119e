package service

import (
	"context"
	"fmt"
	"time"

	"ticket-marketplace/internal/model"
	"ticket-marketplace/pkg/logger"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// SeedTarget 未來可販售票券的目標數量
const SeedTarget = 100

type seedTemplate struct {
	name     string
	location string
	original int64
	selling  int64
	seat     string
}

type seedCategory struct {
	categoryID int64
	count      int
	firstHour  int
	templates  []seedTemplate
}

var seedCategories = []seedCategory{
	{categoryID: 1, count: 30, firstHour: 18, templates: []seedTemplate{
		{"NewJeans Concert", "Olympic Gymnastics Arena", 150000, 145000, "VIP"},
		{"aespa World Tour", "Jamsil Arena", 180000, 175000, "R"},
		{"SEVENTEEN Fan Meeting", "Gocheok Sky Dome", 120000, 115000, "A"},
		{"IVE Concert", "Jamsil Arena", 160000, 155000, "S"},
		{"BLACKPINK Concert", "Jamsil Olympic Stadium", 200000, 195000, "VIP"},
	}},
	{categoryID: 2, count: 25, firstHour: 14, templates: []seedTemplate{
		{"Wicked the Musical", "Charlotte Theater", 150000, 145000, "VIP"},
		{"Mamma Mia!", "Blue Square", 130000, 128000, "R"},
		{"Les Miserables", "Charlotte Theater", 140000, 135000, "VIP"},
		{"The Phantom of the Opera", "Blue Square", 160000, 155000, "R"},
	}},
	{categoryID: 3, count: 25, firstHour: 15, templates: []seedTemplate{
		{"K League All-Star Match", "Seoul World Cup Stadium", 40000, 38000, "Center"},
		{"Doosan Bears Home Game", "Jamsil Baseball Stadium", 30000, 28000, "1st Base Table"},
		{"Lotte Giants Home Game", "Sajik Baseball Stadium", 30000, 28000, "Center Blue"},
	}},
	{categoryID: 4, count: 10, firstHour: 10, templates: []seedTemplate{
		{"Van Gogh and Gauguin", "National Museum of Korea", 20000, 19000, "Adult"},
		{"Picasso Special Exhibition", "Hangaram Art Museum", 22000, 20000, "Adult"},
	}},
	{categoryID: 5, count: 10, firstHour: 19, templates: []seedTemplate{
		{"Berliner Philharmoniker", "Lotte Concert Hall", 100000, 95000, "VIP"},
		{"Seoul Philharmonic Subscription Concert", "Seoul Arts Center", 60000, 58000, "R"},
	}},
}

// buildSeedTickets 從一個月後開始，每 10 張往後推一個月
func buildSeedTickets(ownerID int64, now time.Time) []*model.Ticket {
	tickets := make([]*model.Ticket, 0, SeedTarget)
	for _, category := range seedCategories {
		for i := 0; i < category.count && len(tickets) < SeedTarget; i++ {
			tpl := category.templates[i%len(category.templates)]
			monthOffset := 1 + i/10
			day := now.AddDate(0, monthOffset, i%30)
			eventDate := time.Date(day.Year(), day.Month(), day.Day(),
				category.firstHour+i%4, (i%2)*30, 0, 0, time.UTC)

			tradeType := model.TradeTypeDelivery
			if i%2 == 1 {
				tradeType = model.TradeTypeOnsite
			}
			seat := fmt.Sprintf("%s #%d", tpl.seat, i%20+1)
			description := tpl.name + " ticket"

			tickets = append(tickets, &model.Ticket{
				EventName:     fmt.Sprintf("%s %d", tpl.name, i+1),
				EventDate:     eventDate,
				EventLocation: tpl.location,
				OwnerID:       ownerID,
				Status:        model.TicketStatusAvailable,
				OriginalPrice: decimal.NewFromInt(tpl.original),
				SellingPrice:  decimal.NewNullDecimal(decimal.NewFromInt(tpl.selling)),
				SeatInfo:      &seat,
				CategoryID:    category.categoryID,
				Description:   &description,
				TradeType:     tradeType,
			})
		}
	}
	return tickets
}

func (s *TicketServiceImpl) SeedTickets(ctx context.Context, ownerID int64) (int64, error) {
	log := logger.WithComponent("service")
	now := s.now().UTC()

	available, err := s.repository.CountAvailableAfter(ctx, now)
	if err != nil {
		return 0, err
	}
	if available >= SeedTarget {
		log.Info("Sufficient available future tickets, skipping seed", zap.Int64("available", available))
		return 0, nil
	}

	created, err := s.repository.CreateMany(ctx, buildSeedTickets(ownerID, now))
	if err != nil {
		return 0, err
	}

	log.Info("Seeded demo tickets", zap.Int64("available_before", available), zap.Int64("created", created))
	return created, nil
}
